package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/sdkgen/errors"
)

// CheckResult compares freshly generated bindings with those on disk.
type CheckResult struct {
	UpToDate bool
	// Stale outputs exist but differ from what would be generated
	Stale []string
	// Missing outputs would be generated but do not exist
	Missing []string
	// Report is the generation run into the scratch directory
	Report *Report
}

// Check generates into a temporary directory and compares the results with
// the configured output directory. Provenance lines are ignored in the
// comparison. The error is set only when the check could not run.
func (d *Driver) Check(ctx context.Context) (*CheckResult, error) {
	scratch, err := os.MkdirTemp("", "sdkgen-check-")
	if err != nil {
		return nil, errors.Wrap(err, "create check directory")
	}
	defer os.RemoveAll(scratch)

	outputDir := d.Options.OutputDir
	if d.Options.PackageVersion == "" {
		// resolve against the real output location before redirecting
		version, _, err := ResolveVersion("", outputDir)
		if err != nil {
			return nil, err
		}
		d.Options.PackageVersion = version
		defer func() { d.Options.PackageVersion = "" }()
	}
	d.Options.OutputDir = scratch
	defer func() { d.Options.OutputDir = outputDir }()

	formatter := d.Formatter
	d.Formatter = nil
	defer func() { d.Formatter = formatter }()

	report, err := d.Run(ctx)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{Report: report}
	for _, generated := range report.Generated() {
		rel, err := filepath.Rel(scratch, generated)
		if err != nil {
			return nil, errors.Wrapf(err, "relate %s", generated)
		}
		existing := filepath.Join(outputDir, rel)
		if _, err := os.Stat(existing); err != nil {
			result.Missing = append(result.Missing, existing)
			continue
		}

		different, err := filesDiffer(generated, existing)
		if err != nil {
			return nil, err
		}
		if different {
			result.Stale = append(result.Stale, existing)
		}
	}
	sort.Strings(result.Stale)
	sort.Strings(result.Missing)
	result.UpToDate = len(result.Stale) == 0 && len(result.Missing) == 0
	return result, nil
}

func filesDiffer(generated, existing string) (bool, error) {
	want, err := os.ReadFile(generated)
	if err != nil {
		return false, errors.Wrapf(err, "read %s", generated)
	}
	have, err := os.ReadFile(existing)
	if err != nil {
		return false, errors.Wrapf(err, "read %s", existing)
	}
	return stripProvenance(want) != stripProvenance(have), nil
}

// stripProvenance drops header lines that change without the SDK changing.
func stripProvenance(content []byte) string {
	var sb strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "// Source last modified:") ||
			strings.HasPrefix(trimmed, "// Source version:") {
			continue
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
