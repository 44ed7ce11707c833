// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docpress/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleReport(id string, started time.Time) types.RunReport {
	return types.RunReport{
		RunID:      id,
		InputRoot:  "/docs",
		OutputRoot: "/docs/converted",
		Total:      3,
		Succeeded:  2,
		Failed:     1,
		Failures: []types.Failure{
			{SourcePath: "/docs/bad.md", Diagnostic: "exit status 64: unclosed code block"},
		},
		Started:  started,
		Duration: 1500 * time.Millisecond,
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(ctx, sampleReport("run-1", started)))

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	assert.True(t, got.Started.Equal(started), "started = %v, want %v", got.Started, started)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	require.Len(t, got.Failures, 1)
	assert.Equal(t, "/docs/bad.md", got.Failures[0].SourcePath)
	assert.Contains(t, got.Failures[0].Diagnostic, "unclosed code block")
}

func TestRecent_NewestFirstAndLimited(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		report := sampleReport(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.Record(ctx, report))
	}

	runs, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-4", runs[0].RunID)
	assert.Equal(t, "run-3", runs[1].RunID)
	assert.Equal(t, "run-2", runs[2].RunID)
}

func TestRecent_EmptyStore(t *testing.T) {
	store := testStore(t)

	runs, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_ReopenKeepsRuns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), sampleReport("run-1", time.Now().UTC())))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
