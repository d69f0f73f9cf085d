package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Files walks root and returns the matching file paths in lexical order.
// Entries that could not be walked are returned as failed outcomes.
func (r *Runner) Files(root string) ([]string, []Outcome, Stats, error) {
	var stats Stats
	if strings.TrimSpace(root) == "" {
		return nil, nil, stats, errors.New("root path is required")
	}
	exts := r.extensions()

	var paths []string
	var failed []Outcome
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			failed = append(failed, Outcome{Path: path, Err: walkErr.Error()})
			return nil
		}
		if r.cfg.SkipHidden && path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !matches(path, exts) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, failed, stats, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(paths)
	return paths, failed, stats, nil
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$")
}
