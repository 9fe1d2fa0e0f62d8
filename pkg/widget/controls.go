package widget

import (
	"math"
	"strconv"

	"github.com/vango-dev/filters/pkg/filterstate"
	"github.com/vango-dev/filters/pkg/schema"
	. "github.com/vango-dev/filters/pkg/vdom"
)

// Default bounds for a slider without min or max.
const (
	defaultSliderMin = 0
	defaultSliderMax = 100
)

// textInput wires a text box to the controller: keystrokes buffer, blur and
// Enter commit.
func textInput(key, value, placeholder string, ctl Controller, attrs ...any) *VNode {
	change := func(e Event) filterstate.Change {
		return filterstate.Change{Key: key, Value: e.Value, Source: filterstate.SourceText, Placeholder: placeholder}
	}
	args := []any{
		Type("text"), ID(key), Name(key), Value(value),
		AttrIf(placeholder != "", Placeholder(placeholder)),
		OnInput(func(e Event) { ctl.Change(change(e)) }),
		OnBlur(func(e Event) { ctl.Blur(change(e)) }),
		OnKeyDown(func(e Event) { ctl.KeyDown(change(e), e.Key) }),
	}
	return Input(append(args, attrs...)...)
}

func textControl(f schema.FieldDescriptor, st *filterstate.State, ctl Controller) *VNode {
	return Div(textInput(f.Key, st.Value(f.Key), "", ctl))
}

func sliderControl(f schema.FieldDescriptor, st *filterstate.State, ctl Controller) *VNode {
	lo := f.MinOr(defaultSliderMin)
	hi := f.MaxOr(defaultSliderMax)
	value := st.Value(f.Key)
	if value == "" {
		value = formatNumber(hi)
	}
	ticksID := f.Key + "_ticks"

	slide := func(e Event) {
		ctl.Change(filterstate.Change{Key: f.Key, Value: e.Value, Source: filterstate.SourceSlider})
	}
	return Div(Class("rangeDiv"),
		When(f.Ticks, func() *VNode {
			return Datalist(ID(ticksID),
				Range(Ticks(lo, hi), func(t Tick, _ int) *VNode {
					return Option(
						Value(formatNumber(t.Value)),
						AttrIf(t.Label != "", Attr{Key: "label", Value: t.Label}),
						AttrIf(t.Class != "", Class(t.Class)),
					)
				}),
			)
		}),
		Input(Type("range"), ID(f.Key), Name(f.Key),
			Min(formatNumber(lo)), Max(formatNumber(hi)),
			Step(formatNumber(f.StepOr(1))),
			Value(value),
			AttrIf(f.Ticks, List(ticksID)),
			OnInput(slide),
			OnChange(slide),
		),
		Output(For(f.Key), value),
	)
}

// rangeTextControl renders the Min and Max inputs. Each input's placeholder
// is the opposite bound, which fills the sibling shadow key when only one
// side has been typed.
func rangeTextControl(f schema.FieldDescriptor, st *filterstate.State, ctl Controller) *VNode {
	lo, hi := boundString(f.Min), boundString(f.Max)

	minValue := st.Value(f.MinKey())
	if minValue == "" {
		minValue = lo
	}
	maxValue := st.Value(f.MaxKey())
	if maxValue == "" {
		maxValue = hi
	}

	return Div(Class("rangeDiv"),
		Div(Class("rangeInputDiv"),
			textInput(f.MinKey(), minValue, hi, ctl, Size(10)),
			"To",
			textInput(f.MaxKey(), maxValue, lo, ctl, Size(10)),
		),
	)
}

func (r *Renderer) ratingControl(f schema.FieldDescriptor, st *filterstate.State, ctl Controller) *VNode {
	lo := int(math.Ceil(f.MinOr(0)))
	hi := int(math.Floor(f.MaxOr(0)))
	current := st.Value(f.Key)

	var rows []*VNode
	for n := lo; n <= hi; n++ {
		value := strconv.Itoa(n)
		rows = append(rows, Div(Class("ratingDiv"), Key(value),
			Input(Type("radio"), ID(choiceID(f.Key, value)), Name(f.Key), Value(value),
				AttrIf(current == value, Checked()),
				OnChange(radio(f.Key, value, ctl)),
			),
			Repeat(n, func(int) *VNode { return Img(Src(r.assets.FilledStar), Alt("Star")) }),
			Repeat(hi-n, func(int) *VNode { return Img(Src(r.assets.EmptyStar), Alt("Star")) }),
		))
	}
	return Div(rows)
}

func imageControl(f schema.FieldDescriptor, st *filterstate.State, ctl Controller) *VNode {
	selected, hasSelection := st.Get(f.Key)
	return Div(
		Range(f.Choices.Images, func(img schema.ImageChoice, _ int) *VNode {
			class := "imgTag"
			if hasSelection && img.Value == selected {
				class = "selImg"
			}
			return Img(ID(choiceID(f.Key, img.Value)), Class(class),
				Src(img.URL), Alt("Icon"), Width(60), Height(60),
				OnClick(func(Event) {
					ctl.Change(filterstate.Change{Key: f.Key, Value: img.Value, Source: filterstate.SourceImage})
				}),
			)
		}),
	)
}

// checkListControl renders one checkbox per choice. With filterBy set, the
// choices are the keys of the group named by the referenced filter's value.
func checkListControl(f schema.FieldDescriptor, st *filterstate.State, ctl Controller) *VNode {
	var selector string
	if f.FilterBy != "" {
		selector = st.Value(f.FilterBy)
	}
	checked := make(map[string]bool)
	for _, v := range st.List(f.Key) {
		checked[v] = true
	}

	return Div(
		Range(f.Choices.Resolve(selector), func(item string, _ int) *VNode {
			id := choiceID(f.Key, item)
			return Div(Key(item),
				Input(Type("checkbox"), ID(id), Name(f.Key), Value(item),
					AttrIf(checked[item], Checked()),
					OnChange(func(e Event) {
						ctl.Change(filterstate.Change{Key: f.Key, Value: item, Source: filterstate.SourceCheckbox, Checked: e.Checked})
					}),
				),
				Label(For(id), item),
			)
		}),
	)
}

func optionListControl(f schema.FieldDescriptor, st *filterstate.State, ctl Controller) *VNode {
	current := st.Value(f.Key)
	return Div(
		Range(f.Choices.Resolve(""), func(item string, _ int) *VNode {
			id := choiceID(f.Key, item)
			return Div(Key(item),
				Input(Type("radio"), ID(id), Name(f.Key), Value(item),
					AttrIf(current == item, Checked()),
					OnChange(radio(f.Key, item, ctl)),
				),
				Label(For(id), item),
			)
		}),
	)
}

func radio(key, value string, ctl Controller) Handler {
	return func(Event) {
		ctl.Change(filterstate.Change{Key: key, Value: value, Source: filterstate.SourceRadio})
	}
}

// choiceID is the element id of one choice of a multi-choice control.
func choiceID(key, value string) string {
	return key + "_" + value
}

func boundString(n *schema.Number) string {
	if n == nil {
		return ""
	}
	return n.String()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
