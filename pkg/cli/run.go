package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/langkit/internal/config"
	"github.com/funvibe/langkit/internal/script"
	"github.com/funvibe/langkit/pkg/diag"
)

// ErrScriptsFailed is returned when a script reported an error diagnostic.
var ErrScriptsFailed = errors.New("scripts reported errors")

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] script.yaml...",
		Short: "Run scope scripts",
		Long: `Run one or more scope scripts. Every script is parsed before any runs, so a
malformed script fails the command without output. Scripts then run concurrently, each against its
own arena; transcripts are printed in argument order. The command fails if any
script reported an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return runScripts(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), GetSettings(ctx), GetLogger(ctx), args)
		},
	}

	cmd.Flags().Bool("dump", false, "print the scope tables each script leaves behind")
	cmd.Flags().IntP("parallel", "j", config.DefaultParallel, "maximum number of scripts run at once")
	cmd.Flags().Bool("prelude", true, "declare the builtin types in each root scope")

	return cmd
}

type scriptRun struct {
	out    bytes.Buffer
	errOut bytes.Buffer
	failed bool
}

func runScripts(ctx context.Context, stdout, stderr io.Writer, settings *config.Settings, logger *slog.Logger, paths []string) error {
	for _, path := range paths {
		if !script.IsScriptFile(path) {
			return fmt.Errorf("%s: not a script file (expected %s)", path, strings.Join(config.ScriptFileExtensions, " or "))
		}
	}

	scripts := make([]*script.Script, len(paths))
	for i, path := range paths {
		s, err := script.LoadScript(path)
		if err != nil {
			return err
		}
		scripts[i] = s
	}

	color, forced := settings.ColorOverride()
	if !forced {
		color = diag.IsTerminal(stderr)
	}
	runner := script.NewRunner(script.WithLogger(logger), script.WithPrelude(settings.Prelude))

	runs := make([]*scriptRun, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(settings.Parallel)
	for i, s := range scripts {
		run := &scriptRun{}
		runs[i] = run
		g.Go(func() error {
			diags := diag.NewListener[string](&run.out, &run.errOut, diag.WithColor(color), diag.WithLogger(logger))
			res, err := runner.Run(gctx, s, diags)
			if err != nil {
				return err
			}

			highest, flushed, err := diags.Flush()
			if err != nil {
				return err
			}
			run.failed = flushed && highest == diag.Error
			if settings.Dump {
				return script.Dump(&run.out, res)
			}
			return nil
		})
	}
	err := g.Wait()

	failed := 0
	for _, run := range runs {
		_, _ = stdout.Write(run.out.Bytes())
		_, _ = stderr.Write(run.errOut.Bytes())
		if run.failed {
			failed++
		}
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrScriptsFailed, failed, len(paths))
	}
	logger.Info("scripts passed", "count", len(paths))
	return nil
}
