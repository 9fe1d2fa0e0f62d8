package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/filters/internal/config"
	commitpkg "github.com/vango-dev/filters/pkg/commit"
	"github.com/vango-dev/filters/pkg/filters"
	"github.com/vango-dev/filters/pkg/schema"
	"github.com/vango-dev/filters/pkg/server"
	"github.com/vango-dev/filters/pkg/widget"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve filter widgets",
		Long: `Serve the widgets listed in the configuration file.

Each widget is available at /f/<name>. The configuration is read from
config/<env>.yaml unless --config is given.

Examples:
  filters serve
  filters serve --env prod
  filters serve --config ./config/local.yaml --port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.HTTP.Port = port
			}
			return runServe(cmd.Context(), cfg, log(cmd))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")

	return cmd
}

func loadConfig(cmd *cobra.Command, path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	env, _ := cmd.Flags().GetString("env")
	return config.Load(env)
}

func runServe(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	widgets, err := loadWidgets(ctx, cfg, logger)
	if err != nil {
		return err
	}

	fetcher := commitpkg.NewFetcher(
		commitpkg.WithTimeout(time.Duration(cfg.Fetch.TimeoutSec)*time.Second),
		commitpkg.WithMaxBody(cfg.Fetch.MaxBodyBytes),
	)
	host, err := server.New(hostConfig(cfg), widgets,
		server.WithLogger(logger),
		server.WithFetcher(fetcher),
	)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     host.Handler(),
		ReadTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		// WebSocket writes set their own deadlines.
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", addr), zap.Int("widgets", len(widgets)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return host.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// loadWidgets loads every configured schema. An S3 client is only built
// when some schema lives in S3.
func loadWidgets(ctx context.Context, cfg config.Config, logger *zap.Logger) ([]server.Widget, error) {
	opts := []schema.LoaderOption{schema.WithLogger(logger)}
	if slices.ContainsFunc(cfg.Widgets, func(w config.WidgetConfig) bool {
		return strings.HasPrefix(w.Schema, "s3://")
	}) {
		opts = append(opts, schema.WithS3(schema.NewS3Client(schema.S3Config{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})))
	}
	loader := schema.NewLoader(opts...)

	widgets := make([]server.Widget, 0, len(cfg.Widgets))
	for _, wc := range cfg.Widgets {
		sc, err := loader.Load(ctx, wc.Schema)
		if err != nil {
			return nil, fmt.Errorf("widget %s: %w", wc.Name, err)
		}
		widgets = append(widgets, server.Widget{
			Name:          wc.Name,
			Title:         wc.Title,
			Schema:        sc,
			Class:         wc.Class,
			Apply:         filters.ParseApply(wc.Apply),
			Mode:          wc.Mode,
			NavigateDelay: wc.NavigateDelay(),
		})
		logger.Debug("widget loaded", zap.String("name", wc.Name), zap.String("schema", wc.Schema))
	}
	return widgets, nil
}

func hostConfig(cfg config.Config) server.Config {
	return server.Config{
		IdleTimeout:    time.Duration(cfg.Host.IdleTimeoutSec) * time.Second,
		SweepInterval:  time.Duration(cfg.Host.SweepIntervalSec) * time.Second,
		MaxInstances:   cfg.Host.MaxInstances,
		MaxMessageSize: cfg.Host.MaxMessageBytes,
		StyleSheets:    cfg.Host.StyleSheets,
		DevMode:        cfg.Host.DevMode,
		CheckOrigin:    originChecker(cfg.Host.AllowedOrigins),
		Assets: widget.Assets{
			Loader:     cfg.Assets.Loader,
			FilledStar: cfg.Assets.FilledStar,
			EmptyStar:  cfg.Assets.EmptyStar,
		},
	}
}

// originChecker allows the listed origins in addition to the same origin.
// nil keeps the upgrader's same-origin default.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if slices.Contains(allowed, "*") || slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
