package filters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vango-dev/filters/pkg/commit"
	"github.com/vango-dev/filters/pkg/filterstate"
	"github.com/vango-dev/filters/pkg/middleware"
	"github.com/vango-dev/filters/pkg/schema"
	"github.com/vango-dev/filters/pkg/vdom"
	"github.com/vango-dev/filters/pkg/widget"
)

// ResultFunc receives the body of a results fetch.
type ResultFunc func(ctx context.Context, body []byte)

// Commit kinds, as reported to metrics and logs.
const (
	CommitFetch    = "fetch"
	CommitNavigate = "navigate"
)

// Config configures a Synchronizer.
type Config struct {
	// Schema describes the form. Required.
	Schema *schema.Schema

	// Class is sent as the cls query parameter. When empty, the cls found
	// in the decoded URL is kept.
	Class string

	// Apply enables apply mode: changes are buffered until Apply.
	Apply bool

	// PageURL is decoded on mount when the schema has no baseUrl.
	PageURL string

	// OnResult switches commits to fetch mode. When nil, commits navigate.
	OnResult ResultFunc

	// Navigate performs a scheduled navigation. Required without OnResult.
	Navigate func(url string)

	// NavigateDelay defaults to commit.DefaultNavigateDelay.
	NavigateDelay time.Duration

	// Fetcher defaults to commit.NewFetcher().
	Fetcher *commit.Fetcher

	// Widget defaults to a renderer honoring Apply.
	Widget *widget.Renderer

	Logger *zap.Logger
}

// Synchronizer is one live filter widget. It is safe for concurrent use;
// events are applied one at a time.
type Synchronizer struct {
	cfg    Config
	logger *zap.Logger
	widget *widget.Renderer
	fetch  *commit.Fetcher
	sched  *commit.Scheduler

	// ctx is canceled by Close and bounds fetches started by events.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	phase    Phase
	activity Activity
	state    *filterstate.State
	base     string
	class    string
	lastURL  string
	lastErr  error
}

// New creates a Synchronizer in PhaseLoading.
func New(cfg Config) (*Synchronizer, error) {
	if cfg.Schema == nil {
		return nil, errors.New("filters: schema is required")
	}
	if cfg.OnResult == nil && cfg.Navigate == nil {
		return nil, errors.New("filters: either OnResult or Navigate is required")
	}

	s := &Synchronizer{
		cfg:    cfg,
		logger: cfg.Logger,
		widget: cfg.Widget,
		fetch:  cfg.Fetcher,
		state:  filterstate.New(),
		class:  cfg.Class,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.widget == nil {
		s.widget = widget.New(widget.WithApplyMode(cfg.Apply), widget.WithLogger(s.logger))
	}
	if cfg.OnResult != nil && s.fetch == nil {
		s.fetch = commit.NewFetcher()
	}
	if cfg.OnResult == nil {
		s.sched = commit.NewScheduler(cfg.NavigateDelay, cfg.Navigate)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

// Mount decodes the effective URL into the initial state and makes the
// widget ready. Problems in the query string are logged and returned, but
// the widget still mounts with whatever could be decoded. Mounting a ready
// widget does nothing.
func (s *Synchronizer) Mount() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseReady:
		return nil
	case PhaseClosed:
		return commit.ErrClosed
	}

	src := s.cfg.Schema.BaseURL
	if src == "" {
		src = s.cfg.PageURL
	}
	decoded, err := filterstate.Decode(src)
	s.base = decoded.Base
	s.state = decoded.State
	if s.class == "" {
		s.class = decoded.Class
	}
	s.phase = PhaseReady
	s.activity = Idle

	if err != nil {
		s.logger.Warn("malformed filter query", zap.String("url", src), zap.Error(err))
	}
	s.logger.Debug("filters mounted",
		zap.String("base", s.base),
		zap.Int("entries", s.state.Len()),
		zap.Bool("apply", s.cfg.Apply),
	)
	return err
}

// Phase returns the lifecycle stage.
func (s *Synchronizer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Activity returns the commit sub-state.
func (s *Synchronizer) Activity() Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activity
}

// State returns a copy of the current filter state.
func (s *Synchronizer) State() *filterstate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// URL returns the URL a commit would use now.
func (s *Synchronizer) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterstate.Encode(s.base, s.class, s.state)
}

// LastCommit returns the URL and error of the most recent commit.
func (s *Synchronizer) LastCommit() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastURL, s.lastErr
}

// Render returns the loader while loading and the form afterwards.
func (s *Synchronizer) Render() (*vdom.VNode, widget.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseLoading {
		return s.widget.Loader(), widget.Report{}
	}
	return s.widget.Form(s.cfg.Schema, s.state, s)
}

// Change applies a control edit and commits it when the policy allows.
func (s *Synchronizer) Change(c filterstate.Change) {
	s.update(c, c.Source.Immediate())
}

// Blur commits edits still pending when the text input it left holds a
// non-empty value. The state is not touched: input events already
// applied the edit.
func (s *Synchronizer) Blur(c filterstate.Change) {
	s.commitText(c, true)
}

// KeyDown commits the current state on Enter when the text input holds a
// non-empty value. Other keys are ignored.
func (s *Synchronizer) KeyDown(c filterstate.Change, key string) {
	if key == "Enter" {
		s.commitText(c, false)
	}
}

func (s *Synchronizer) commitText(c filterstate.Change, pendingOnly bool) {
	if strings.TrimSpace(c.Value) == "" {
		return
	}
	s.mu.Lock()
	skip := s.phase != PhaseReady || s.cfg.Apply || (pendingOnly && s.activity != Buffered)
	s.mu.Unlock()
	if skip {
		return
	}
	if err := s.Commit(s.ctx); err != nil && !errors.Is(err, commit.ErrClosed) {
		s.logger.Warn("commit failed", zap.String("key", c.Key), zap.Error(err))
	}
}

// Apply commits the current state. It is bound to the Apply button.
func (s *Synchronizer) Apply() {
	if err := s.Commit(s.ctx); err != nil && !errors.Is(err, commit.ErrClosed) {
		s.logger.Warn("apply failed", zap.Error(err))
	}
}

func (s *Synchronizer) update(c filterstate.Change, commitNow bool) {
	s.mu.Lock()
	if s.phase != PhaseReady {
		s.mu.Unlock()
		s.logger.Debug("event ignored", zap.String("phase", s.Phase().String()), zap.String("key", c.Key))
		return
	}
	s.state.Apply(c)
	if s.cfg.Apply || !commitNow {
		s.activity = Buffered
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err := s.Commit(s.ctx); err != nil && !errors.Is(err, commit.ErrClosed) {
		s.logger.Warn("commit failed", zap.String("key", c.Key), zap.Error(err))
	}
}

// Commit encodes the current state and performs the commit action: a fetch
// whose body goes to OnResult, or a delayed navigation that supersedes any
// navigation still pending.
func (s *Synchronizer) Commit(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseReady {
		phase := s.phase
		s.mu.Unlock()
		if phase == PhaseClosed {
			return commit.ErrClosed
		}
		return fmt.Errorf("filters: commit while %s", phase)
	}
	url := filterstate.Encode(s.base, s.class, s.state)
	s.activity = Committing
	s.lastURL = url
	s.mu.Unlock()

	var (
		kind string
		err  error
	)
	if s.cfg.OnResult != nil {
		kind = CommitFetch
		err = s.fetchResults(ctx, url)
	} else {
		kind = CommitNavigate
		err = s.sched.Schedule(url)
	}
	middleware.RecordCommit(kind, err)

	s.mu.Lock()
	if s.phase == PhaseReady {
		s.activity = Idle
	}
	s.lastErr = err
	s.mu.Unlock()

	if err == nil {
		s.logger.Info("filters committed", zap.String("kind", kind), zap.String("url", url))
	}
	return err
}

func (s *Synchronizer) fetchResults(ctx context.Context, url string) error {
	// Close must abort a fetch started from any context.
	ctx, stop := mergeCancel(ctx, s.ctx)
	defer stop()

	start := time.Now()
	body, err := s.fetch.Fetch(ctx, url)
	middleware.RecordFetch(time.Since(start))
	if err != nil {
		if s.ctx.Err() != nil {
			return commit.ErrClosed
		}
		return err
	}
	s.cfg.OnResult(ctx, body)
	return nil
}

// mergeCancel returns a context derived from ctx that is also canceled when
// other is done.
func mergeCancel(ctx, other context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(other, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Close cancels pending work and stops the widget from accepting events.
// It is safe to call more than once.
func (s *Synchronizer) Close() error {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseClosed {
		return nil
	}
	s.phase = PhaseClosed
	s.activity = Idle
	if s.sched != nil {
		s.sched.Close()
	}
	s.logger.Debug("filters closed")
	return nil
}

// PendingNavigation returns the URL of the scheduled navigation, if any.
func (s *Synchronizer) PendingNavigation() (string, bool) {
	if s.sched == nil {
		return "", false
	}
	return s.sched.Pending()
}

var _ widget.Controller = (*Synchronizer)(nil)
