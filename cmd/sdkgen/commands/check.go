package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/sdkgen/errors"
	"github.com/teranos/sdkgen/pipeline"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Check if generated bindings are up to date",
		Long: `Check if generated bindings match the current SDK inputs.

Bindings are generated into a temporary directory and compared with the
output directory, ignoring source provenance lines in the header.

Exit codes:
  0 - Bindings are up to date
  1 - Bindings are out of date
  2 - Error during check

Examples:
  sdkgen check --input src --output lib/src`,
		RunE: runCheck,
	}
	addPipelineFlags(cmd)
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := applyFlags(cmd, args)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	out := cmd.OutOrStdout()

	result, err := pipeline.NewDriver(pipelineOptions(cfg)).Check(contextOf(cmd))
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	if result.Report.HasFailures() {
		result.Report.PrintResults(out)
		return &exitError{code: 2, err: errors.Newf("%d inputs could not be generated",
			result.Report.Count(pipeline.StatusFailed))}
	}

	if result.UpToDate {
		pterm.Fprintln(out, pterm.LightGreen("✓ Bindings are up to date"))
		return nil
	}

	pterm.Fprintln(out, pterm.Red("✗ Bindings are out of date."))
	for _, path := range result.Stale {
		pterm.Fprintln(out, fmt.Sprintf("  %s %s", pterm.Yellow("stale:  "), path))
	}
	for _, path := range result.Missing {
		pterm.Fprintln(out, fmt.Sprintf("  %s %s", pterm.Yellow("missing:"), path))
	}
	return &exitError{code: 1, err: errors.Newf("%d bindings out of date",
		len(result.Stale)+len(result.Missing))}
}
