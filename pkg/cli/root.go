// Package cli implements the scopewalk command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/funvibe/langkit/internal/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

type settingsKey struct{}

type loggerKey struct{}

// NewRootCmd creates the scopewalk root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "scopewalk",
		Short: "Replay scope scripts against nested symbol and memory tables",
		Long: `scopewalk runs scope scripts: YAML files that declare, assign and look up
names across nested block scopes, checking the expected results of each step.

Settings are read from ./scopewalk.yaml (or --config), SCOPEWALK_* environment
variables and flags, in increasing order of precedence.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			settings, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			level, err := config.ParseLogLevel(settings.LogLevel)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if settings.ConfigFile != "" {
				logger.Debug("using config file", "path", settings.ConfigFile)
			}

			ctx := context.WithValue(cmd.Context(), settingsKey{}, settings)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./scopewalk.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("color", "", "colored diagnostics (auto|always|never)")

	_ = rootCmd.RegisterFlagCompletionFunc("color", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ColorAuto, config.ColorAlways, config.ColorNever}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewVersionCommand(Version))
	rootCmd.AddCommand(NewRunCommand())

	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// GetSettings retrieves the settings loaded for the running command.
func GetSettings(ctx context.Context) *config.Settings {
	if s, ok := ctx.Value(settingsKey{}).(*config.Settings); ok {
		return s
	}
	s := config.Defaults()
	return &s
}

// GetLogger retrieves the logger configured for the running command.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
