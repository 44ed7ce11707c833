// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// OutcomeStatus indicates how the conversion of one work item ended.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeSkipped   OutcomeStatus = "skipped"
)

// WorkItem pairs one discovered source document with its mirrored
// destination path. Items are immutable after discovery and consumed
// exactly once by the engine.
type WorkItem struct {
	// SourcePath is the absolute path to the input document.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// RelPath is the path of the source relative to the input root.
	// The destination reproduces it under the output root.
	RelPath string `json:"rel_path" yaml:"rel_path"`

	// DestPath is the computed output path: the output root joined with
	// RelPath, extension swapped to the target format.
	DestPath string `json:"dest_path" yaml:"dest_path"`
}

// Outcome records how one WorkItem's conversion ended.
type Outcome struct {
	Item   WorkItem      `json:"item" yaml:"item"`
	Status OutcomeStatus `json:"status" yaml:"status"`

	// Diagnostic carries the engine's stderr or an error description
	// when Status is OutcomeFailed; empty otherwise.
	Diagnostic string `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
}

// Failure is one failed item in a RunReport, kept in completion order.
type Failure struct {
	SourcePath string `json:"source_path" yaml:"source_path"`
	Diagnostic string `json:"diagnostic" yaml:"diagnostic"`
}

// RunReport summarizes one batch run. Total == Succeeded + Failed + Skipped
// once the run is finalized.
type RunReport struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id" yaml:"run_id"`

	// InputRoot and OutputRoot are the resolved roots the run operated on.
	InputRoot  string `json:"input_root" yaml:"input_root"`
	OutputRoot string `json:"output_root" yaml:"output_root"`

	Total     int `json:"total" yaml:"total"`
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`

	// Skipped counts items bypassed by the skip-existing option. Zero in
	// the default configuration.
	Skipped int `json:"skipped" yaml:"skipped"`

	// Failures lists each failed item with its diagnostic, in the order
	// completions were recorded.
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`

	Started  time.Time     `json:"started" yaml:"started"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// HasFailures reports whether any item in the run failed.
func (r RunReport) HasFailures() bool {
	return r.Failed > 0
}
