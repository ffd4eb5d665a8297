package pipeline

import (
	"time"
)

// Status is the outcome of one input.
type Status int

const (
	StatusGenerated Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusGenerated:
		return "generated"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// FileResult records what happened to one input.
type FileResult struct {
	Input  string
	Output string
	Class  string
	Status Status
	// Reason explains a skip
	Reason   string
	Err      error
	Duration time.Duration
	// Warnings are non-fatal problems such as a failed formatter run
	Warnings []string
}

// Report is the outcome of a batch.
type Report struct {
	RunID   string
	Version string
	Results []FileResult
}

// Count returns how many results have status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// HasFailures reports whether any input failed.
func (r *Report) HasFailures() bool {
	return r.Count(StatusFailed) > 0
}

// Generated returns the output paths written by the batch.
func (r *Report) Generated() []string {
	var paths []string
	for _, res := range r.Results {
		if res.Status == StatusGenerated {
			paths = append(paths, res.Output)
		}
	}
	return paths
}
