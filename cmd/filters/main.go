package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vango-dev/filters/internal/config"
	"github.com/vango-dev/filters/internal/logger"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		env      string
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:   "filters",
		Short: "Schema-driven filter forms",
		Long: `filters renders search filter forms from a declarative schema and keeps
the selected filters in sync with the page URL.

  • serve   host widgets over HTTP and WebSocket
  • render  print the HTML of a widget for a URL
  • encode  build a commit URL from key=value pairs
  • decode  show the filter state held by a URL`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logger.New(env, logLevel)
			if err != nil {
				return err
			}
			ctx := logger.Into(cmd.Context(), l)
			cmd.SetContext(logger.With(ctx, zap.String("cmd", cmd.Name()), zap.String("env", env)))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.From(cmd.Context()).Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "Environment: local, dev, prod")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		serveCmd(),
		renderCmd(),
		encodeCmd(),
		decodeCmd(),
		versionCmd(),
	)
	rootCmd.SetContext(context.Background())
	return rootCmd
}

// log returns the command's logger.
func log(cmd *cobra.Command) *zap.Logger {
	return logger.From(cmd.Context())
}

// warn prints a warning message.
func warn(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
