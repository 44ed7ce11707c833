// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch orchestrates a document-conversion run: it discovers
// source files under an input root, mirrors their relative paths into an
// output root, drives the conversion engine once per file, and aggregates
// per-item outcomes into a RunReport. One item's failure never stops the
// rest of the batch.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/docpress/pkg/types"
)

// Engine converts one source document into one destination file. The
// error text of a failed conversion becomes the item's diagnostic.
type Engine interface {
	Convert(ctx context.Context, sourcePath, destPath string) error
}

// Runner executes one batch conversion run.
type Runner struct {
	engine    Engine
	discovery types.DiscoveryConfig
	run       types.RunConfig
	out       io.Writer
}

// New builds a Runner over the given engine and configuration. Progress
// lines and the batch summary are written to out.
func New(eng Engine, discovery types.DiscoveryConfig, run types.RunConfig, out io.Writer) *Runner {
	return &Runner{engine: eng, discovery: discovery, run: run, out: out}
}

// Run discovers work, converts every item, and returns the finalized
// report. The returned error is non-nil only for fatal conditions: an
// unreadable input root, or ctx cancellation mid-run (the partial report
// is still returned). Per-item failures live in the report, not the
// error.
func (r *Runner) Run(ctx context.Context) (types.RunReport, error) {
	started := time.Now().UTC()

	items, err := Discover(r.discovery, r.run.OutputRoot, r.run.TargetExt)
	if err != nil {
		return types.RunReport{}, err
	}

	rep := newReporter(types.RunReport{
		RunID:      uuid.NewString(),
		InputRoot:  r.discovery.InputRoot,
		OutputRoot: r.run.OutputRoot,
		Total:      len(items),
		Started:    started,
	}, r.out)

	if r.run.DryRun {
		for _, item := range items {
			rep.record(types.Outcome{Item: item, Status: types.OutcomeSkipped, Diagnostic: "dry run"})
		}
		report := rep.finalize(time.Since(started))
		r.printSummary(report)
		return report, nil
	}

	workers := r.run.Workers
	if workers < 1 {
		workers = 1
	}

	work := make(chan types.WorkItem)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				rep.record(r.processItem(ctx, item))
			}
		}()
	}

	fed := len(items)
feed:
	for i, item := range items {
		select {
		case <-ctx.Done():
			fed = i
			break feed
		case work <- item:
		}
	}
	close(work)
	wg.Wait()

	// Items never handed to a worker are recorded as skipped so the
	// partial report's counts still sum to the total.
	for _, item := range items[fed:] {
		rep.record(types.Outcome{Item: item, Status: types.OutcomeSkipped, Diagnostic: "aborted"})
	}

	report := rep.finalize(time.Since(started))
	r.printSummary(report)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("batch aborted: %w", err)
	}
	return report, nil
}

// processItem converts a single WorkItem. Every expected failure mode
// (uncreatable destination directory, missing engine, engine error,
// timeout) is downgraded to a Failed outcome here; nothing escapes to
// abort the batch.
func (r *Runner) processItem(ctx context.Context, item types.WorkItem) types.Outcome {
	if r.run.SkipExisting {
		if _, err := os.Stat(item.DestPath); err == nil {
			return types.Outcome{Item: item, Status: types.OutcomeSkipped, Diagnostic: "destination exists"}
		}
	}

	// MkdirAll succeeds when the chain already exists, so concurrent
	// items sharing a destination directory cannot trip each other.
	if err := os.MkdirAll(filepath.Dir(item.DestPath), 0o755); err != nil {
		return types.Outcome{
			Item:       item,
			Status:     types.OutcomeFailed,
			Diagnostic: fmt.Sprintf("creating output directory: %v", err),
		}
	}

	if err := r.engine.Convert(ctx, item.SourcePath, item.DestPath); err != nil {
		return types.Outcome{Item: item, Status: types.OutcomeFailed, Diagnostic: err.Error()}
	}
	return types.Outcome{Item: item, Status: types.OutcomeSucceeded}
}

func (r *Runner) printSummary(report types.RunReport) {
	fmt.Fprintf(r.out, "\nBatch summary: %d succeeded, %d failed, %d skipped (total: %d)\n",
		report.Succeeded, report.Failed, report.Skipped, report.Total)
}
