// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docpress/pkg/types"
)

// reporter accumulates outcomes into a RunReport and emits the per-item
// progress line for each. A single mutex guards both so concurrent
// workers neither corrupt the counts nor interleave output lines.
type reporter struct {
	mu     sync.Mutex
	report types.RunReport
	w      io.Writer
}

func newReporter(report types.RunReport, w io.Writer) *reporter {
	return &reporter{report: report, w: w}
}

func (r *reporter) record(o types.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch o.Status {
	case types.OutcomeSucceeded:
		r.report.Succeeded++
		fmt.Fprintf(r.w, "converted: %s -> %s\n", o.Item.RelPath, o.Item.DestPath)
	case types.OutcomeSkipped:
		r.report.Skipped++
		fmt.Fprintf(r.w, "skipped:   %s (%s)\n", o.Item.RelPath, o.Diagnostic)
	case types.OutcomeFailed:
		r.report.Failed++
		r.report.Failures = append(r.report.Failures, types.Failure{
			SourcePath: o.Item.SourcePath,
			Diagnostic: o.Diagnostic,
		})
		fmt.Fprintf(r.w, "failed:    %s (%s)\n", o.Item.RelPath, o.Diagnostic)
	}
}

func (r *reporter) finalize(elapsed time.Duration) types.RunReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Duration = elapsed
	return r.report
}

// WriteReport marshals the report as YAML to path, creating parent
// directories as needed.
func WriteReport(report types.RunReport, path string) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
