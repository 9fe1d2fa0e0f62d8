package filters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vango-dev/filters/pkg/commit"
	"github.com/vango-dev/filters/pkg/filterstate"
	"github.com/vango-dev/filters/pkg/schema"
	"github.com/vango-dev/filters/pkg/vdom"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func productsSchema(t *testing.T) *schema.Schema {
	t.Helper()
	data, err := os.ReadFile("../schema/testdata/products.json")
	require.NoError(t, err)
	s, err := schema.Parse(data, schema.FormatJSON)
	require.NoError(t, err)
	return s
}

// navigations collects scheduled navigations.
type navigations struct {
	mu   sync.Mutex
	urls []string
	hit  chan struct{}
}

func newNavigations() *navigations {
	return &navigations{hit: make(chan struct{}, 16)}
}

func (n *navigations) navigate(u string) {
	n.mu.Lock()
	n.urls = append(n.urls, u)
	n.mu.Unlock()
	n.hit <- struct{}{}
}

func (n *navigations) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.urls...)
}

func (n *navigations) wait(t *testing.T) {
	t.Helper()
	select {
	case <-n.hit:
	case <-time.After(2 * time.Second):
		t.Fatal("navigation did not fire")
	}
}

// filtersParam decodes the filters payload of a commit URL.
func filtersParam(t *testing.T, raw string) map[string]string {
	t.Helper()
	d, err := filterstate.Decode(raw)
	require.NoError(t, err)
	return d.State.Map()
}

func newNavigating(t *testing.T, cfg Config) (*Synchronizer, *navigations) {
	t.Helper()
	nav := newNavigations()
	if cfg.Schema == nil {
		cfg.Schema = productsSchema(t)
	}
	cfg.Navigate = nav.navigate
	if cfg.NavigateDelay == 0 {
		cfg.NavigateDelay = 10 * time.Millisecond
	}
	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, nav
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorContains(t, err, "schema is required")

	_, err = New(Config{Schema: &schema.Schema{}})
	assert.ErrorContains(t, err, "OnResult or Navigate")
}

func TestMount(t *testing.T) {
	t.Run("page url", func(t *testing.T) {
		s, _ := newNavigating(t, Config{PageURL: "http://shop.test/items?k1=v1&k2=1-5"})
		assert.Equal(t, PhaseLoading, s.Phase())

		require.NoError(t, s.Mount())
		assert.Equal(t, PhaseReady, s.Phase())
		assert.Equal(t, Idle, s.Activity())
		assert.Equal(t, map[string]string{
			"k1": "v1", "k2": "1-5", "k2_Min": "1", "k2_Max": "5",
		}, s.State().Map())
	})

	t.Run("schema base url wins", func(t *testing.T) {
		sc := productsSchema(t)
		sc.BaseURL = "http://api.test/search?brands=[Nike]"
		s, _ := newNavigating(t, Config{Schema: sc, PageURL: "http://shop.test/?brands=Levis"})

		require.NoError(t, s.Mount())
		assert.Equal(t, "Nike", s.State().Value("brands"))
		assert.Contains(t, s.URL(), "http://api.test/search?cls=")
	})

	t.Run("malformed query still mounts", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		s, _ := newNavigating(t, Config{PageURL: "/p?novalue&k=v", Logger: zap.New(core)})

		err := s.Mount()
		assert.Error(t, err)
		assert.Equal(t, PhaseReady, s.Phase())
		assert.Equal(t, "v", s.State().Value("k"))
		assert.Equal(t, 1, logs.FilterMessage("malformed filter query").Len())
	})

	t.Run("cls from url kept", func(t *testing.T) {
		s, _ := newNavigating(t, Config{PageURL: "/p?cls=shoes&k=v"})
		require.NoError(t, s.Mount())
		assert.Contains(t, s.URL(), "cls=shoes&")
	})

	t.Run("mount twice", func(t *testing.T) {
		s, _ := newNavigating(t, Config{PageURL: "/p?k=v"})
		require.NoError(t, s.Mount())
		s.Change(filterstate.Change{Key: "k", Value: "w", Source: filterstate.SourceText})
		require.NoError(t, s.Mount())
		assert.Equal(t, "w", s.State().Value("k"))
	})
}

func TestRender(t *testing.T) {
	s, _ := newNavigating(t, Config{PageURL: "/p"})

	tree, _ := s.Render()
	assert.Equal(t, "divLoader", tree.Attr("class"))

	require.NoError(t, s.Mount())
	tree, report := s.Render()
	require.NoError(t, report.Err())
	assert.Equal(t, "fltrDiv", tree.Attr("class"))
}

func TestImmediateCommitNavigates(t *testing.T) {
	s, nav := newNavigating(t, Config{Class: "products", PageURL: "http://shop.test/list"})
	require.NoError(t, s.Mount())

	s.Change(filterstate.Change{Key: "ram", Value: "8GB", Source: filterstate.SourceRadio})
	nav.wait(t)

	urls := nav.all()
	require.Len(t, urls, 1)
	u, err := url.Parse(urls[0])
	require.NoError(t, err)
	assert.Equal(t, "/list", u.Path)
	assert.Equal(t, "products", u.Query().Get("cls"))
	assert.Equal(t, `{"filters":[{"ram":"8GB"}]}`, u.Query().Get("filters"))
	assert.Equal(t, Idle, s.Activity())

	last, err := s.LastCommit()
	assert.NoError(t, err)
	assert.Equal(t, urls[0], last)
}

func TestCheckboxAccumulates(t *testing.T) {
	s, nav := newNavigating(t, Config{PageURL: "/p", NavigateDelay: time.Hour})
	require.NoError(t, s.Mount())

	s.Change(filterstate.Change{Key: "brands", Value: "Nike", Source: filterstate.SourceCheckbox, Checked: true})
	s.Change(filterstate.Change{Key: "brands", Value: "Levis", Source: filterstate.SourceCheckbox, Checked: true})

	assert.Equal(t, "Nike,Levis", s.State().Value("brands"))
	pending, ok := s.PendingNavigation()
	require.True(t, ok)
	assert.Equal(t, "Nike,Levis", filtersParam(t, pending)["brands"])
	assert.Empty(t, nav.all(), "superseded navigation must not fire")
}

func TestTextCommitPolicy(t *testing.T) {
	s, _ := newNavigating(t, Config{PageURL: "/p", NavigateDelay: time.Hour})
	require.NoError(t, s.Mount())

	s.Change(filterstate.Change{Key: "name", Value: "sh", Source: filterstate.SourceText})
	assert.Equal(t, Buffered, s.Activity())
	_, ok := s.PendingNavigation()
	assert.False(t, ok, "typing does not commit")

	s.Change(filterstate.Change{Key: "name", Value: "shoe", Source: filterstate.SourceText})
	s.KeyDown(filterstate.Change{Key: "name", Value: "shoe", Source: filterstate.SourceText}, "a")
	_, ok = s.PendingNavigation()
	assert.False(t, ok, "other keys do not commit")

	s.Blur(filterstate.Change{Key: "name", Value: "   ", Source: filterstate.SourceText})
	_, ok = s.PendingNavigation()
	assert.False(t, ok, "blank blur does not commit")

	s.KeyDown(filterstate.Change{Key: "name", Value: "shoe", Source: filterstate.SourceText}, "Enter")
	pending, ok := s.PendingNavigation()
	require.True(t, ok)
	assert.Equal(t, "shoe", filtersParam(t, pending)["name"])
	assert.Equal(t, Idle, s.Activity())
}

func TestBlurCommitsPendingEdit(t *testing.T) {
	s, _ := newNavigating(t, Config{PageURL: "/p", NavigateDelay: time.Hour})
	require.NoError(t, s.Mount())

	s.Change(filterstate.Change{Key: "name", Value: "boot", Source: filterstate.SourceText})
	s.Blur(filterstate.Change{Key: "name", Value: "boot", Source: filterstate.SourceText})

	pending, ok := s.PendingNavigation()
	require.True(t, ok)
	assert.Equal(t, map[string]string{"name": "boot"}, filtersParam(t, pending))
}

func TestBlurLeavesStateAlone(t *testing.T) {
	s, _ := newNavigating(t, Config{PageURL: "/shop", NavigateDelay: time.Hour})
	require.NoError(t, s.Mount())

	tree, _ := s.Render()
	for _, id := range []string{"name", "price_Min", "price_Max"} {
		in := vdom.Find(tree, func(n *vdom.VNode) bool { return n.Attr("id") == id })
		require.NotNil(t, in, id)
		in.Handlers["onblur"](vdom.Event{Type: "blur", Value: in.Attr("value")})
		in.Handlers["onkeydown"](vdom.Event{Type: "keydown", Value: in.Attr("value"), Key: "Tab"})
	}

	assert.Empty(t, s.State().Map())
	_, ok := s.PendingNavigation()
	assert.False(t, ok, "nothing was edited")
}

func TestRangeTextPlaceholder(t *testing.T) {
	s, _ := newNavigating(t, Config{PageURL: "/p", NavigateDelay: time.Hour})
	require.NoError(t, s.Mount())

	c := filterstate.Change{Key: "price_Min", Value: "10", Source: filterstate.SourceText, Placeholder: "65536"}
	s.Change(c)
	st := s.State()
	assert.Equal(t, "10-65536", st.Value("price"))
	assert.True(t, st.RangeConsistent("price"))

	s.Blur(c)
	pending, ok := s.PendingNavigation()
	require.True(t, ok)
	assert.Equal(t, "10-65536", filtersParam(t, pending)["price"])
}

func TestApplyModeBuffers(t *testing.T) {
	s, nav := newNavigating(t, Config{Apply: ParseApply("true"), PageURL: "/p"})
	require.NoError(t, s.Mount())

	tree, _ := s.Render()
	btn := vdom.Find(tree, func(n *vdom.VNode) bool { return n.Attr("id") == "btnAply" })
	require.NotNil(t, btn)

	s.Change(filterstate.Change{Key: "ram", Value: "4GB", Source: filterstate.SourceRadio})
	s.Change(filterstate.Change{Key: "maxprice", Value: "300", Source: filterstate.SourceSlider})
	s.Change(filterstate.Change{Key: "name", Value: "shoe", Source: filterstate.SourceText})
	s.Blur(filterstate.Change{Key: "name", Value: "shoe", Source: filterstate.SourceText})

	assert.Equal(t, Buffered, s.Activity())
	_, ok := s.PendingNavigation()
	assert.False(t, ok)

	btn.Handlers["onclick"](vdom.Event{Type: "click"})
	nav.wait(t)

	urls := nav.all()
	require.Len(t, urls, 1)
	assert.Equal(t, map[string]string{"ram": "4GB", "maxprice": "300", "name": "shoe"}, filtersParam(t, urls[0]))
	assert.Equal(t, Idle, s.Activity())
}

func TestFetchMode(t *testing.T) {
	var gotFilters string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilters = r.URL.Query().Get("filters")
		if r.URL.Path == "/broken" {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"sku":"A1"}]`))
	}))
	defer srv.Close()
	client := srv.Client()
	defer client.CloseIdleConnections()

	t.Run("result callback", func(t *testing.T) {
		var got []byte
		sc := productsSchema(t)
		sc.BaseURL = srv.URL + "/search"
		s, err := New(Config{
			Schema:   sc,
			Fetcher:  commit.NewFetcher(commit.WithClient(client)),
			OnResult: func(_ context.Context, body []byte) { got = body },
		})
		require.NoError(t, err)
		defer s.Close()
		require.NoError(t, s.Mount())

		s.Change(filterstate.Change{Key: "rating", Value: "4", Source: filterstate.SourceRadio})

		assert.Equal(t, `[{"sku":"A1"}]`, string(got))
		assert.Equal(t, `{"filters":[{"rating":"4"}]}`, gotFilters)
		_, ok := s.PendingNavigation()
		assert.False(t, ok)
	})

	t.Run("fetch error", func(t *testing.T) {
		called := false
		sc := productsSchema(t)
		sc.BaseURL = srv.URL + "/broken"
		s, err := New(Config{
			Schema:   sc,
			Fetcher:  commit.NewFetcher(commit.WithClient(client)),
			OnResult: func(context.Context, []byte) { called = true },
		})
		require.NoError(t, err)
		defer s.Close()
		require.NoError(t, s.Mount())

		err = s.Commit(context.Background())
		var fe *commit.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, http.StatusBadGateway, fe.Status)
		assert.False(t, called)
		assert.Equal(t, Idle, s.Activity())

		_, last := s.LastCommit()
		assert.ErrorAs(t, last, &fe)
	})
}

func TestCloseCancelsWork(t *testing.T) {
	t.Run("pending navigation", func(t *testing.T) {
		s, nav := newNavigating(t, Config{PageURL: "/p", NavigateDelay: 50 * time.Millisecond})
		require.NoError(t, s.Mount())
		s.Change(filterstate.Change{Key: "ram", Value: "2GB", Source: filterstate.SourceRadio})

		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
		time.Sleep(100 * time.Millisecond)

		assert.Empty(t, nav.all())
		assert.Equal(t, PhaseClosed, s.Phase())
		assert.ErrorIs(t, s.Commit(context.Background()), commit.ErrClosed)
		assert.ErrorIs(t, s.Mount(), commit.ErrClosed)

		s.Change(filterstate.Change{Key: "ram", Value: "4GB", Source: filterstate.SourceRadio})
		assert.Equal(t, "2GB", s.State().Value("ram"), "events after close are ignored")
	})

	t.Run("in-flight fetch", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-release:
			}
		}))
		defer srv.Close()
		defer close(release)
		client := srv.Client()
		defer client.CloseIdleConnections()

		sc := productsSchema(t)
		sc.BaseURL = srv.URL
		s, err := New(Config{
			Schema:   sc,
			Fetcher:  commit.NewFetcher(commit.WithClient(client)),
			OnResult: func(context.Context, []byte) { t.Error("callback after close") },
		})
		require.NoError(t, err)
		require.NoError(t, s.Mount())

		done := make(chan error, 1)
		go func() { done <- s.Commit(context.Background()) }()
		time.Sleep(50 * time.Millisecond)
		require.NoError(t, s.Close())

		select {
		case err := <-done:
			assert.ErrorIs(t, err, commit.ErrClosed)
		case <-time.After(2 * time.Second):
			t.Fatal("fetch not canceled by Close")
		}
	})
}

func TestCommitBeforeMount(t *testing.T) {
	s, _ := newNavigating(t, Config{PageURL: "/p"})
	err := s.Commit(context.Background())
	assert.ErrorContains(t, err, "commit while loading")

	s.Change(filterstate.Change{Key: "ram", Value: "2GB", Source: filterstate.SourceRadio})
	assert.False(t, s.State().Has("ram"))
}

func TestParseApply(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"TRUE", false},
		{"1", false},
		{"", false},
		{nil, false},
		{1, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseApply(tt.in), "ParseApply(%#v)", tt.in)
	}
}

func TestPhaseStrings(t *testing.T) {
	assert.Equal(t, "loading", PhaseLoading.String())
	assert.Equal(t, "closed", PhaseClosed.String())
	assert.Equal(t, "buffered", Buffered.String())
	assert.Equal(t, "unknown", Activity(9).String())
}
