package pipeline

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/pterm/pterm"

	"github.com/teranos/sdkgen/errors"
)

// Print writes one line per input and a summary.
func (r *Report) Print(w io.Writer) {
	r.PrintResults(w)

	summary := fmt.Sprintf("%d generated, %d skipped, %d failed",
		r.Count(StatusGenerated), r.Count(StatusSkipped), r.Count(StatusFailed))
	if r.HasFailures() {
		pterm.Fprintln(w, pterm.Yellow(summary))
	} else {
		pterm.Fprintln(w, pterm.LightGreen(summary))
	}
}

// PrintResults writes one line per input.
func (r *Report) PrintResults(w io.Writer) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusGenerated:
			pterm.Fprintln(w, fmt.Sprintf("%s %s %s %s",
				pterm.LightGreen("✓"),
				pterm.White(res.Input),
				pterm.Gray("→"),
				pterm.LightCyan(filepath.ToSlash(res.Output))))
			for _, warning := range res.Warnings {
				pterm.Fprintln(w, fmt.Sprintf("  %s %s", pterm.Yellow("warning:"), warning))
			}
		case StatusSkipped:
			pterm.Fprintln(w, fmt.Sprintf("%s %s %s",
				pterm.Gray("-"),
				pterm.White(res.Input),
				pterm.Gray("("+res.Reason+")")))
		case StatusFailed:
			pterm.Fprintln(w, fmt.Sprintf("%s %s: %s",
				pterm.Red("✗"),
				pterm.White(res.Input),
				pterm.Red(res.Err.Error())))
			for _, hint := range errors.GetAllHints(res.Err) {
				pterm.Fprintln(w, fmt.Sprintf("  %s %s", pterm.LightCyan("hint:"), hint))
			}
		}
	}
}
