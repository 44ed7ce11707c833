// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/pdiddy/docpress/pkg/types"
)

// writeTree creates the given relative files (empty content) under a new
// temp dir and returns its path.
func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("# doc\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// relSet extracts the sorted RelPaths from items. Discovery order is
// walk-order and not guaranteed, so tests compare sets.
func relSet(items []types.WorkItem) []string {
	rels := make([]string, len(items))
	for i, it := range items {
		rels[i] = filepath.ToSlash(it.RelPath)
	}
	sort.Strings(rels)
	return rels
}

func TestDiscover(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		cfg   types.DiscoveryConfig
		want  []string
	}{
		{
			name:  "flat tree",
			files: []string{"a.md", "b.md", "notes.txt"},
			want:  []string{"a.md", "b.md"},
		},
		{
			name:  "nested tree mirrors relative paths",
			files: []string{"a.md", "guide/setup.md", "guide/deep/advanced.md"},
			want:  []string{"a.md", "guide/deep/advanced.md", "guide/setup.md"},
		},
		{
			name:  "top-level README excluded case-insensitively",
			files: []string{"README.md", "a.md"},
			want:  []string{"a.md"},
		},
		{
			name:  "README exclusion covers odd capitalization",
			files: []string{"ReadMe.md", "a.md"},
			want:  []string{"a.md"},
		},
		{
			name:  "nested README is included",
			files: []string{"README.md", "guide/README.md"},
			want:  []string{"guide/README.md"},
		},
		{
			name:  "extension match is case-sensitive",
			files: []string{"a.md", "b.MD"},
			want:  []string{"a.md"},
		},
		{
			name:  "exclude globs apply to relative paths",
			files: []string{"a.md", "drafts/wip.md", "b.md"},
			cfg:   types.DiscoveryConfig{Exclude: []string{"drafts/*.md"}},
			want:  []string{"a.md", "b.md"},
		},
		{
			name:  "hidden directories pruned when configured",
			files: []string{"a.md", ".obsidian/cache.md"},
			cfg:   types.DiscoveryConfig{SkipHidden: true},
			want:  []string{"a.md"},
		},
		{
			name:  "hidden directories kept by default",
			files: []string{"a.md", ".obsidian/cache.md"},
			want:  []string{".obsidian/cache.md", "a.md"},
		},
		{
			name:  "empty tree",
			files: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeTree(t, tt.files...)
			cfg := tt.cfg
			cfg.InputRoot = root
			if cfg.SourceExt == "" {
				cfg.SourceExt = ".md"
			}

			items, err := Discover(cfg, filepath.Join(root, "out"), ".pdf")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := relSet(items)
			if len(got) != len(tt.want) {
				t.Fatalf("discovered %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("discovered %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDiscover_DestPathsMirrorSources(t *testing.T) {
	root := writeTree(t, "a.md", "guide/setup.md", "guide/deep/advanced.md")
	outputRoot := filepath.Join(root, "converted")

	items, err := Discover(types.DiscoveryConfig{InputRoot: root, SourceExt: ".md"}, outputRoot, ".pdf")
	if err != nil {
		t.Fatal(err)
	}

	for _, item := range items {
		rel, err := filepath.Rel(outputRoot, item.DestPath)
		if err != nil || strings.HasPrefix(rel, "..") {
			t.Errorf("dest %s escapes output root %s", item.DestPath, outputRoot)
		}
		wantRel := strings.TrimSuffix(item.RelPath, ".md") + ".pdf"
		if rel != wantRel {
			t.Errorf("dest rel = %s, want %s", rel, wantRel)
		}
		if item.DestPath == item.SourcePath {
			t.Errorf("dest must differ from source: %s", item.DestPath)
		}
	}
}

func TestDiscover_MissingRootIsFatal(t *testing.T) {
	cfg := types.DiscoveryConfig{
		InputRoot: filepath.Join(t.TempDir(), "does-not-exist"),
		SourceExt: ".md",
	}
	if _, err := Discover(cfg, "out", ".pdf"); err == nil {
		t.Fatal("expected error for missing input root")
	}
}

func TestDiscover_AlternateExtension(t *testing.T) {
	root := writeTree(t, "a.adoc", "README.adoc", "b.md")

	items, err := Discover(types.DiscoveryConfig{InputRoot: root, SourceExt: ".adoc"}, "out", ".pdf")
	if err != nil {
		t.Fatal(err)
	}

	got := relSet(items)
	if len(got) != 1 || got[0] != "a.adoc" {
		t.Fatalf("discovered %v, want [a.adoc]", got)
	}
}
