// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docpress/pkg/types"
)

// Discover walks the input root and returns a WorkItem for every eligible
// source file: extension matches cfg.SourceExt (case-sensitive), no
// exclusion rule applies, and the destination mirrors the root-relative
// path under outputRoot with the extension swapped to targetExt.
//
// Traversal order is whatever filepath.WalkDir yields; callers must treat
// the result as an unordered set. An unreadable input root is the only
// fatal condition; an unreadable subdirectory silently ends the walk of
// that subtree.
func Discover(cfg types.DiscoveryConfig, outputRoot, targetExt string) ([]types.WorkItem, error) {
	root := cfg.InputRoot
	if root == "" {
		root = "."
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("input root %s: %w", root, err)
	}

	var items []types.WorkItem
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			// Unreadable subtree: give up on it, keep the batch alive.
			return nil
		}
		if d.IsDir() {
			if cfg.SkipHidden && p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) != cfg.SourceExt {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil || strings.HasPrefix(rel, "..") {
			return nil
		}
		if excluded(cfg, rel, d.Name()) {
			return nil
		}

		dest := filepath.Join(outputRoot, strings.TrimSuffix(rel, cfg.SourceExt)+targetExt)
		items = append(items, types.WorkItem{
			SourcePath: p,
			RelPath:    rel,
			DestPath:   dest,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking input root %s: %w", root, err)
	}
	return items, nil
}

// excluded applies the skip rules to one discovered file. The top-level
// README rule is always on: a file whose full name case-insensitively
// equals "README"+SourceExt, sitting directly under the input root, never
// becomes a WorkItem. The same name in a subdirectory converts normally.
func excluded(cfg types.DiscoveryConfig, rel, name string) bool {
	atRoot := !strings.ContainsRune(rel, filepath.Separator)
	if atRoot && strings.EqualFold(name, "README"+cfg.SourceExt) {
		return true
	}
	slashRel := filepath.ToSlash(rel)
	for _, pattern := range cfg.Exclude {
		if ok, _ := path.Match(pattern, slashRel); ok {
			return true
		}
	}
	return false
}
