package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vango-dev/filters/pkg/commit"
	"github.com/vango-dev/filters/pkg/filters"
	"github.com/vango-dev/filters/pkg/middleware"
	"github.com/vango-dev/filters/pkg/render"
	"github.com/vango-dev/filters/pkg/widget"
)

// Server hosts filter widgets over HTTP and WebSocket.
type Server struct {
	cfg       Config
	logger    *zap.Logger
	widgets   map[string]Widget
	instances *Registry
	upgrader  websocket.Upgrader
	fetcher   *commit.Fetcher

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithFetcher sets the fetcher used by widgets in fetch mode.
func WithFetcher(f *commit.Fetcher) Option {
	return func(s *Server) {
		s.fetcher = f
	}
}

// WithMetricsRegistry registers metrics with reg and serves them from
// /metrics instead of the default registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registerer = reg
		s.gatherer = reg
	}
}

// New creates a Server for the given widgets.
func New(cfg Config, widgets []Widget, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:        cfg.withDefaults(),
		logger:     zap.NewNop(),
		widgets:    make(map[string]Widget, len(widgets)),
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, w := range widgets {
		if err := w.validate(); err != nil {
			return nil, err
		}
		if _, dup := s.widgets[w.Name]; dup {
			return nil, fmt.Errorf("server: duplicate widget %q", w.Name)
		}
		s.widgets[w.Name] = w
	}
	if s.fetcher == nil {
		s.fetcher = commit.NewFetcher()
	}

	s.instances = NewRegistry(s.cfg.MaxInstances, s.cfg.IdleTimeout, s.logger)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  s.cfg.ReadBufferSize,
		WriteBufferSize: s.cfg.WriteBufferSize,
		CheckOrigin:     s.cfg.CheckOrigin,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(accessLog(s.logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Prometheus(middleware.WithRegistry(s.registerer)))
	r.Use(middleware.OpenTelemetry(middleware.WithRequestFilter(func(r *http.Request) bool {
		return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
	})))

	r.Get("/healthz", s.serveHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get(render.DefaultClientScript, s.serveThinClient)
	r.Head(render.DefaultClientScript, s.serveThinClient)
	r.Get(SocketPath, s.serveWebSocket)
	r.Get("/f/{widget}", s.servePage)
	return r
}

// Handler returns the HTTP handler of the host.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Instances returns the live instance registry.
func (s *Server) Instances() *Registry {
	return s.instances
}

// Run sweeps idle instances until ctx is done, then closes them all.
func (s *Server) Run(ctx context.Context) error {
	return s.instances.Run(ctx, s.cfg.SweepInterval)
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "widget")
	wdg, ok := s.widgets[name]
	if !ok {
		http.Error(w, ErrWidgetNotFound.Error(), http.StatusNotFound)
		return
	}

	inst, err := s.newInstance(wdg, r.URL.RequestURI())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrMaxInstances) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Warn("instance not created", zap.String("widget", name), zap.Error(err))
		http.Error(w, err.Error(), status)
		return
	}

	title := wdg.Title
	if title == "" {
		title = wdg.Name
	}
	var buf bytes.Buffer
	err = inst.RenderPage(&buf, render.PageData{
		Title:       title,
		StyleSheets: s.cfg.StyleSheets,
		SocketPath:  SocketPath,
	})
	if err != nil {
		s.instances.Remove(inst.ID)
		inst.logger.Error("page render failed", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// newInstance creates, mounts and registers a widget instance for a page
// loaded at pageURL.
func (s *Server) newInstance(wdg Widget, pageURL string) (*Instance, error) {
	inst := newInstance(uuid.NewString(), wdg, s.cfg.DevMode, s.logger)

	cfg := filters.Config{
		Schema:        wdg.Schema,
		Class:         wdg.Class,
		Apply:         wdg.Apply,
		PageURL:       pageURL,
		NavigateDelay: wdg.NavigateDelay,
		Widget: widget.New(
			widget.WithApplyMode(wdg.Apply),
			widget.WithAssets(s.cfg.Assets),
			widget.WithLogger(inst.logger),
		),
		Logger: inst.logger,
	}
	if wdg.Mode == ModeFetch {
		cfg.OnResult = inst.result
		cfg.Fetcher = s.fetcher
	} else {
		cfg.Navigate = inst.navigate
	}

	syncer, err := filters.New(cfg)
	if err != nil {
		return nil, err
	}
	inst.syncer = syncer

	// A malformed query is logged by Mount and does not stop the page.
	_ = syncer.Mount()

	if err := s.instances.Add(inst); err != nil {
		syncer.Close()
		return nil, err
	}
	return inst, nil
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"widgets":   len(s.widgets),
		"instances": s.instances.Count(),
	})
}

// accessLog emits one log line per request and echoes the request ID.
func accessLog(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
