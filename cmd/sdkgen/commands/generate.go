package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/sdkgen/config"
	"github.com/teranos/sdkgen/errors"
	"github.com/teranos/sdkgen/logger"
	"github.com/teranos/sdkgen/pipeline"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [files...]",
		Short: "Generate Dart bindings",
		Long: `Generate one Dart binding per input module.

Inputs come from --files (and positional arguments) or from a directory
scanned with --input. A declaration file (.d.ts, .d.mts) next to its bundled
module (.js, .mjs) is used as is; TypeScript sources need --bundler.

Inputs that fail are reported and the batch continues. Directory inputs
without an SDK declaration are skipped.

Examples:
  sdkgen generate --input src --output lib/src
  sdkgen generate dist/weather.d.ts --package-version 1.2.0
  sdkgen generate --input src --watch --debounce 500`,
		RunE: runGenerate,
	}
	addPipelineFlags(cmd)
	cmd.Flags().BoolP("watch", "w", false, "Watch inputs and regenerate on change")
	cmd.Flags().Int("debounce", config.DefaultDebounceMS, "Watch debounce in milliseconds")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := applyFlags(cmd, args)
	if err != nil {
		return err
	}
	driver := pipeline.NewDriver(pipelineOptions(cfg))

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return runWatch(cmd, cfg, driver)
	}

	report, err := driver.Run(contextOf(cmd))
	if err != nil {
		return err
	}
	if !cfg.Log.JSON {
		report.Print(cmd.OutOrStdout())
	}

	if report.HasFailures() && !cfg.ContinueOnError {
		return &exitError{code: 1, err: errors.Newf("%d of %d inputs failed",
			report.Count(pipeline.StatusFailed), len(report.Results))}
	}
	return nil
}

func runWatch(cmd *cobra.Command, cfg *config.Config, driver *pipeline.Driver) error {
	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := driver.NewWatcher(debounce(cfg))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	watcher.OnResult = func(res pipeline.FileResult) {
		if cfg.Log.JSON {
			return
		}
		(&pipeline.Report{Results: []pipeline.FileResult{res}}).PrintResults(out)
	}

	if !cfg.Log.JSON {
		pterm.Fprintln(out, pterm.Gray("Watching for changes, press Ctrl+C to stop"))
	}
	if err := watcher.Run(ctx); err != nil {
		return err
	}
	logger.Infow("Watch stopped")
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
