package widget

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vango-dev/filters/pkg/filterstate"
	"github.com/vango-dev/filters/pkg/render"
	"github.com/vango-dev/filters/pkg/schema"
	"github.com/vango-dev/filters/pkg/vdom"
)

type call struct {
	kind   string
	change filterstate.Change
	key    string
}

type recorder struct {
	calls []call
}

func (r *recorder) Change(c filterstate.Change) { r.calls = append(r.calls, call{kind: "change", change: c}) }
func (r *recorder) Blur(c filterstate.Change)   { r.calls = append(r.calls, call{kind: "blur", change: c}) }
func (r *recorder) KeyDown(c filterstate.Change, key string) {
	r.calls = append(r.calls, call{kind: "keydown", change: c, key: key})
}
func (r *recorder) Apply() { r.calls = append(r.calls, call{kind: "apply"}) }

func (r *recorder) last(t *testing.T) call {
	t.Helper()
	require.NotEmpty(t, r.calls)
	return r.calls[len(r.calls)-1]
}

func productsSchema(t *testing.T) *schema.Schema {
	t.Helper()
	data, err := os.ReadFile("../schema/testdata/products.json")
	require.NoError(t, err)
	s, err := schema.Parse(data, schema.FormatJSON)
	require.NoError(t, err)
	return s
}

func byID(id string) func(*vdom.VNode) bool {
	return func(n *vdom.VNode) bool { return n.Kind == vdom.KindElement && n.Attr("id") == id }
}

func fire(t *testing.T, n *vdom.VNode, event string, e vdom.Event) {
	t.Helper()
	require.NotNil(t, n, "element not found")
	fn, ok := n.Handlers["on"+event]
	require.True(t, ok, "no %s handler on <%s id=%q>", event, n.Tag, n.Attr("id"))
	e.Type = event
	fn(e)
}

func TestFormLayout(t *testing.T) {
	s := productsSchema(t)
	tree, report := New().Form(s, filterstate.New(), &recorder{})

	require.NoError(t, report.Err())
	assert.Equal(t, "fltrDiv", tree.Attr("class"))
	assert.Nil(t, vdom.Find(tree, byID("btnAply")), "no apply button outside apply mode")

	rows := vdom.FindAll(tree, func(n *vdom.VNode) bool { return n.Tag == "tr" })
	require.Len(t, rows, 1+len(s.Elements))

	titles := vdom.FindAll(tree, func(n *vdom.VNode) bool { return n.Tag == "label" && n.Attr("class") == "title" })
	var got []string
	for _, l := range titles {
		got = append(got, l.TextContent())
	}
	assert.Equal(t, []string{"Sort", "Name", "Max Price", "Price", "Rating", "Icons", "Brands", "Colums", "RAM"}, got)

	sel := vdom.Find(tree, byID("sortby"))
	require.NotNil(t, sel)
	require.Len(t, sel.Children, 5)
	assert.Equal(t, "--Select--", sel.Children[0].TextContent())
}

func TestFormApplyMode(t *testing.T) {
	rec := &recorder{}
	tree, _ := New(WithApplyMode(true)).Form(productsSchema(t), filterstate.New(), rec)

	btn := vdom.Find(tree, byID("btnAply"))
	require.NotNil(t, btn)
	assert.Equal(t, "Apply", btn.TextContent())
	fire(t, btn, "click", vdom.Event{})
	assert.Equal(t, "apply", rec.last(t).kind)
}

func TestFormSkipsUnsupported(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := &schema.Schema{Elements: []schema.FieldDescriptor{
		{Title: "Name", Type: schema.FieldText, Key: "name"},
		{Title: "Date", Type: schema.FieldUnknown, RawType: "DATE", Key: "date"},
	}}

	tree, report := New(WithLogger(zap.New(core))).Form(s, filterstate.New(), &recorder{})

	require.Len(t, report.Unsupported, 1)
	assert.Equal(t, &UnsupportedFieldError{Index: 1, Key: "date", Type: "DATE"}, report.Unsupported[0])
	assert.ErrorContains(t, report.Err(), `"DATE"`)
	assert.Nil(t, vdom.Find(tree, byID("date")))
	assert.NotNil(t, vdom.Find(tree, byID("name")))
	assert.Equal(t, 1, logs.FilterMessage("skipping unsupported filter").Len())
}

func TestTextControl(t *testing.T) {
	rec := &recorder{}
	st := filterstate.FromMap(map[string]string{"name": "Nike"})
	tree, _ := New().Form(productsSchema(t), st, rec)

	in := vdom.Find(tree, byID("name"))
	require.NotNil(t, in)
	assert.Equal(t, "Nike", in.Attr("value"))

	fire(t, in, "input", vdom.Event{Value: "Nik"})
	assert.Equal(t, call{kind: "change", change: filterstate.Change{Key: "name", Value: "Nik", Source: filterstate.SourceText}}, rec.last(t))

	fire(t, in, "blur", vdom.Event{Value: "Nik"})
	assert.Equal(t, "blur", rec.last(t).kind)

	fire(t, in, "keydown", vdom.Event{Value: "Nik", Key: "Enter"})
	assert.Equal(t, "Enter", rec.last(t).key)
}

func TestSliderControl(t *testing.T) {
	rec := &recorder{}
	tree, _ := New().Form(productsSchema(t), filterstate.New(), rec)

	in := vdom.Find(tree, byID("maxprice"))
	require.NotNil(t, in)
	assert.Equal(t, "range", in.Attr("type"))
	assert.Equal(t, "65536", in.Attr("value"), "defaults to max")
	assert.Equal(t, "1", in.Attr("step"))
	assert.Equal(t, "maxprice_ticks", in.Attr("list"))

	out := vdom.Find(tree, func(n *vdom.VNode) bool { return n.Tag == "output" })
	assert.Equal(t, "65536", out.TextContent())

	ticks := vdom.Find(tree, byID("maxprice_ticks"))
	require.NotNil(t, ticks)
	require.Len(t, ticks.Children, 11)
	assert.Equal(t, "0", ticks.Children[0].Attr("label"))
	assert.Equal(t, "32768", ticks.Children[5].Attr("label"))
	assert.Equal(t, "lmargin20", ticks.Children[5].Attr("class"))
	assert.Equal(t, "65536", ticks.Children[10].Attr("label"))
	assert.Equal(t, "", ticks.Children[3].Attr("label"))

	fire(t, in, "input", vdom.Event{Value: "300"})
	assert.Equal(t, filterstate.Change{Key: "maxprice", Value: "300", Source: filterstate.SourceSlider}, rec.last(t).change)
}

func TestSliderWithoutTicks(t *testing.T) {
	f := schema.FieldDescriptor{Type: schema.FieldRangeSlider, Key: "w"}
	n, err := New().Field(f, filterstate.FromMap(map[string]string{"w": "7"}), &recorder{})
	require.Nil(t, err)

	assert.Nil(t, vdom.Find(n, func(n *vdom.VNode) bool { return n.Tag == "datalist" }))
	in := vdom.Find(n, byID("w"))
	assert.Equal(t, "0", in.Attr("min"))
	assert.Equal(t, "100", in.Attr("max"))
	assert.Equal(t, "7", in.Attr("value"))
	assert.Equal(t, "", in.Attr("list"))
}

func TestRangeTextControl(t *testing.T) {
	rec := &recorder{}
	st := filterstate.FromMap(map[string]string{"price_Min": "10"})
	tree, _ := New().Form(productsSchema(t), st, rec)

	lo := vdom.Find(tree, byID("price_Min"))
	hi := vdom.Find(tree, byID("price_Max"))
	require.NotNil(t, lo)
	require.NotNil(t, hi)

	assert.Equal(t, "10", lo.Attr("value"))
	assert.Equal(t, "65536", lo.Attr("placeholder"), "min input falls back to the max bound")
	assert.Equal(t, "65536", hi.Attr("value"))
	assert.Equal(t, "0", hi.Attr("placeholder"))
	assert.Equal(t, "10", lo.Attr("size"))

	fire(t, hi, "input", vdom.Event{Value: "500"})
	assert.Equal(t, filterstate.Change{Key: "price_Max", Value: "500", Source: filterstate.SourceText, Placeholder: "0"}, rec.last(t).change)
}

func TestRatingControl(t *testing.T) {
	rec := &recorder{}
	st := filterstate.FromMap(map[string]string{"rating": "4"})
	r := New(WithAssets(Assets{FilledStar: "/s/full.png"}))
	tree, _ := r.Form(productsSchema(t), st, rec)

	rows := vdom.FindAll(tree, func(n *vdom.VNode) bool { return n.Attr("class") == "ratingDiv" })
	require.Len(t, rows, 6)

	for n, row := range rows {
		full := vdom.FindAll(row, func(v *vdom.VNode) bool { return v.Attr("src") == "/s/full.png" })
		empty := vdom.FindAll(row, func(v *vdom.VNode) bool { return v.Attr("src") == "/images/emptyStar1.png" })
		assert.Len(t, full, n)
		assert.Len(t, empty, 5-n)
	}

	four := vdom.Find(tree, byID("rating_4"))
	assert.Equal(t, "true", four.Attr("checked"))
	assert.Equal(t, "", vdom.Find(tree, byID("rating_3")).Attr("checked"))

	fire(t, vdom.Find(tree, byID("rating_2")), "change", vdom.Event{Checked: true})
	assert.Equal(t, filterstate.Change{Key: "rating", Value: "2", Source: filterstate.SourceRadio}, rec.last(t).change)
}

func TestImageControl(t *testing.T) {
	rec := &recorder{}
	st := filterstate.FromMap(map[string]string{"icons": "2"})
	tree, _ := New().Form(productsSchema(t), st, rec)

	assert.Equal(t, "imgTag", vdom.Find(tree, byID("icons_1")).Attr("class"))
	assert.Equal(t, "selImg", vdom.Find(tree, byID("icons_2")).Attr("class"))
	assert.Equal(t, "60", vdom.Find(tree, byID("icons_3")).Attr("width"))

	fire(t, vdom.Find(tree, byID("icons_3")), "click", vdom.Event{})
	assert.Equal(t, filterstate.Change{Key: "icons", Value: "3", Source: filterstate.SourceImage}, rec.last(t).change)
}

func TestCheckListControl(t *testing.T) {
	rec := &recorder{}
	st := filterstate.FromMap(map[string]string{"brands": "Nike,Levis"})
	tree, _ := New().Form(productsSchema(t), st, rec)

	assert.Equal(t, "true", vdom.Find(tree, byID("brands_Nike")).Attr("checked"))
	assert.Equal(t, "", vdom.Find(tree, byID("brands_Addidas")).Attr("checked"))
	assert.Equal(t, "true", vdom.Find(tree, byID("brands_Levis")).Attr("checked"))

	fire(t, vdom.Find(tree, byID("brands_Addidas")), "change", vdom.Event{Checked: true, Value: "ignored"})
	assert.Equal(t, filterstate.Change{Key: "brands", Value: "Addidas", Source: filterstate.SourceCheckbox, Checked: true}, rec.last(t).change)
}

func TestDependentCheckList(t *testing.T) {
	s := productsSchema(t)
	r := New()

	tests := []struct {
		ram  string
		want []string
	}{
		{"Student", []string{"id", "name", "class", "section", "course"}},
		{"Staff", []string{"id", "name", "subject", "type"}},
		{"8GB", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.ram, func(t *testing.T) {
			st := filterstate.FromMap(map[string]string{"ram": tt.ram})
			tree, _ := r.Form(s, st, &recorder{})

			boxes := vdom.FindAll(tree, func(n *vdom.VNode) bool {
				return n.Tag == "input" && n.Attr("name") == "enCols"
			})
			var got []string
			for _, b := range boxes {
				got = append(got, b.Attr("value"))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionListControl(t *testing.T) {
	rec := &recorder{}
	st := filterstate.FromMap(map[string]string{"ram": "8GB"})
	tree, _ := New().Form(productsSchema(t), st, rec)

	radios := vdom.FindAll(tree, func(n *vdom.VNode) bool { return n.Attr("name") == "ram" })
	require.Len(t, radios, 6)
	for _, r := range radios {
		assert.Equal(t, "radio", r.Attr("type"))
		assert.Equal(t, r.Attr("value") == "8GB", r.Attr("checked") == "true")
	}

	fire(t, vdom.Find(tree, byID("ram_16GB")), "change", vdom.Event{})
	assert.Equal(t, filterstate.Change{Key: "ram", Value: "16GB", Source: filterstate.SourceRadio}, rec.last(t).change)
}

func TestSortSelect(t *testing.T) {
	rec := &recorder{}
	st := filterstate.FromMap(map[string]string{"sortby": "new"})
	tree, _ := New().Form(productsSchema(t), st, rec)

	sel := vdom.Find(tree, byID("sortby"))
	assert.Equal(t, "true", sel.Children[2].Attr("selected"))
	assert.Equal(t, "", sel.Children[1].Attr("selected"))

	fire(t, sel, "change", vdom.Event{Value: "lowFirst"})
	assert.Equal(t, filterstate.Change{Key: "sortby", Value: "lowFirst", Source: filterstate.SourceSelect}, rec.last(t).change)
}

func TestLoader(t *testing.T) {
	html, err := render.NewRenderer(render.RendererConfig{}).RenderToString(
		New(WithAssets(Assets{Loader: "/img/spin.gif"})).Loader(),
	)
	require.NoError(t, err)
	assert.Equal(t, `<div class="divLoader"><img alt="Loader" src="/img/spin.gif"></div>`, html)
}

func TestFormRendersToHTML(t *testing.T) {
	tree, _ := New(WithApplyMode(true)).Form(productsSchema(t), filterstate.New(), &recorder{})

	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToString(tree)
	require.NoError(t, err)

	assert.Contains(t, html, `<button id="btnAply" type="button" data-on-click="true" data-hid="h1">Apply</button>`)
	assert.Contains(t, html, `<option value="">--Select--</option>`)
	assert.Contains(t, html, `To`)
	assert.NotEmpty(t, r.Handlers())
}

func TestTicks(t *testing.T) {
	ticks := Ticks(10, 20)
	require.Len(t, ticks, 11)
	for i, tk := range ticks {
		assert.InDelta(t, 10+float64(i), tk.Value, 1e-9)
	}
	assert.Equal(t, Tick{Value: 15, Label: "15", Class: "lmargin20"}, ticks[5])
	assert.Equal(t, Tick{Value: 20, Label: "20"}, ticks[10])
}
