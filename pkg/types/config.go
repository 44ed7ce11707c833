// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DiscoveryConfig holds settings for locating source documents.
type DiscoveryConfig struct {
	// InputRoot is the directory scanned recursively for source documents
	// (default ".").
	InputRoot string `json:"input_root" yaml:"input_root"`

	// SourceExt is the extension of eligible source files, with leading
	// dot (default ".md"). Matching is case-sensitive.
	SourceExt string `json:"source_ext" yaml:"source_ext"`

	// Exclude lists glob patterns matched against root-relative paths;
	// matching files are skipped. The top-level README exclusion applies
	// regardless of this list.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// SkipHidden prunes dot-prefixed directories during the walk.
	SkipHidden bool `json:"skip_hidden" yaml:"skip_hidden"`
}

// EngineConfig holds settings for the external conversion engine.
type EngineConfig struct {
	// Binary is the converter executable looked up on PATH
	// (default "pandoc").
	Binary string `json:"binary" yaml:"binary"`

	// Args are extra arguments inserted before the source/destination
	// pair on every invocation.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`

	// Timeout bounds a single conversion; zero means no limit. A timed-out
	// item is reported as failed, not as a batch error.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// RunConfig holds settings for the batch run itself.
type RunConfig struct {
	// OutputRoot is the directory the input tree is mirrored into
	// (default "converted").
	OutputRoot string `json:"output_root" yaml:"output_root"`

	// TargetExt replaces the source extension on destination paths,
	// with leading dot (default ".pdf").
	TargetExt string `json:"target_ext" yaml:"target_ext"`

	// Workers bounds concurrent engine invocations (default 1).
	Workers int `json:"workers" yaml:"workers"`

	// SkipExisting bypasses items whose destination file already exists.
	SkipExisting bool `json:"skip_existing" yaml:"skip_existing"`

	// DryRun plans and prints work items without converting anything.
	DryRun bool `json:"dry_run" yaml:"dry_run"`
}

// HistoryConfig holds settings for the optional run-history store.
type HistoryConfig struct {
	// Path is the SQLite database file recording run summaries. Empty
	// disables history entirely; a run leaves no state behind.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Config groups all docpress configuration.
type Config struct {
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Engine    EngineConfig    `json:"engine" yaml:"engine"`
	Run       RunConfig       `json:"run" yaml:"run"`
	History   HistoryConfig   `json:"history" yaml:"history"`
}
