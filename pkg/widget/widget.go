package widget

import (
	"go.uber.org/zap"

	"github.com/vango-dev/filters/pkg/filterstate"
	"github.com/vango-dev/filters/pkg/schema"
	. "github.com/vango-dev/filters/pkg/vdom"
)

// SortKey is the filter key written by the sort-by select.
const SortKey = "sortby"

// Controller receives the events of rendered controls.
type Controller interface {
	// Change records an edit. Whether it commits depends on the source
	// and the apply mode.
	Change(c filterstate.Change)

	// Blur reports that a text input lost focus. It commits pending edits
	// and never changes the state.
	Blur(c filterstate.Change)

	// KeyDown handles a key press in a text input. Enter commits.
	KeyDown(c filterstate.Change, key string)

	// Apply commits buffered changes.
	Apply()
}

// Assets holds the image paths used by the form.
type Assets struct {
	Loader     string
	FilledStar string
	EmptyStar  string
}

// DefaultAssets returns the stock image paths.
func DefaultAssets() Assets {
	return Assets{
		Loader:     "/images/loader.gif",
		FilledStar: "/images/fillStar1.png",
		EmptyStar:  "/images/emptyStar1.png",
	}
}

// Renderer builds filter forms. It holds no per-form state and is safe for
// concurrent use.
type Renderer struct {
	apply  bool
	assets Assets
	logger *zap.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithApplyMode adds an Apply button to the form header.
func WithApplyMode(apply bool) RendererOption {
	return func(r *Renderer) { r.apply = apply }
}

// WithAssets overrides the image paths. Empty fields keep their defaults.
func WithAssets(a Assets) RendererOption {
	return func(r *Renderer) {
		if a.Loader != "" {
			r.assets.Loader = a.Loader
		}
		if a.FilledStar != "" {
			r.assets.FilledStar = a.FilledStar
		}
		if a.EmptyStar != "" {
			r.assets.EmptyStar = a.EmptyStar
		}
	}
}

// WithLogger sets the logger used to report skipped fields.
func WithLogger(logger *zap.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Renderer.
func New(opts ...RendererOption) *Renderer {
	r := &Renderer{
		assets: DefaultAssets(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Loader renders the placeholder shown before the state is decoded.
func (r *Renderer) Loader() *VNode {
	return Div(Class("divLoader"),
		Img(Src(r.assets.Loader), Alt("Loader")),
	)
}

// Form renders the whole filter form: an Apply header in apply mode, the
// sort-by row when the schema declares sort options, then one row per field.
func (r *Renderer) Form(s *schema.Schema, st *filterstate.State, ctl Controller) (*VNode, Report) {
	var report Report

	rows := make([]*VNode, 0, len(s.Elements)+1)
	if len(s.SortBy) > 0 {
		rows = append(rows, r.sortRow(s.SortBy, st, ctl))
	}
	for i, f := range s.Elements {
		control, err := r.Field(f, st, ctl)
		if err != nil {
			err.Index = i
			report.Unsupported = append(report.Unsupported, err)
			r.logger.Warn("skipping unsupported filter",
				zap.Int("index", i),
				zap.String("key", f.Key),
				zap.String("type", err.Type),
			)
			continue
		}
		rows = append(rows, Tr(Key(f.Key),
			Td(Class("fltrTitle"),
				Label(Class("title"), f.Title),
				control,
			),
		))
	}

	return Div(Class("fltrDiv"),
		Table(
			When(r.apply, func() *VNode { return applyHeader(ctl) }),
			Tbody(rows),
		),
	), report
}

// Field renders the control for one descriptor.
func (r *Renderer) Field(f schema.FieldDescriptor, st *filterstate.State, ctl Controller) (*VNode, *UnsupportedFieldError) {
	switch f.Type {
	case schema.FieldText:
		return textControl(f, st, ctl), nil
	case schema.FieldRangeSlider:
		return sliderControl(f, st, ctl), nil
	case schema.FieldRangeText:
		return rangeTextControl(f, st, ctl), nil
	case schema.FieldRating:
		return r.ratingControl(f, st, ctl), nil
	case schema.FieldImage:
		return imageControl(f, st, ctl), nil
	case schema.FieldCheckList:
		return checkListControl(f, st, ctl), nil
	case schema.FieldOptionList:
		return optionListControl(f, st, ctl), nil
	default:
		name := f.RawType
		if name == "" {
			name = f.Type.String()
		}
		return nil, &UnsupportedFieldError{Key: f.Key, Type: name}
	}
}

func applyHeader(ctl Controller) *VNode {
	return Thead(
		Tr(
			Td(Class("tdcenter"),
				Button(ID("btnAply"), Type("button"),
					OnClick(func(Event) { ctl.Apply() }),
					"Apply",
				),
			),
		),
	)
}

func (r *Renderer) sortRow(opts []schema.SortOption, st *filterstate.State, ctl Controller) *VNode {
	current := st.Value(SortKey)
	return Tr(Key(SortKey),
		Td(
			Label(Class("title"), "Sort"),
			Div(
				Select(ID(SortKey), Name(SortKey),
					OnChange(func(e Event) {
						ctl.Change(filterstate.Change{Key: SortKey, Value: e.Value, Source: filterstate.SourceSelect})
					}),
					Option(Value(""), "--Select--"),
					Range(opts, func(o schema.SortOption, _ int) *VNode {
						return Option(Value(o.Value), AttrIf(o.Value == current, Selected()), o.Title)
					}),
				),
			),
		),
	)
}
