package batch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/pipeline"
)

// WatchConfig controls StartWatch.
type WatchConfig struct {
	InitialScan bool          // process files already under root
	Debounce    time.Duration // coalesce bursts of writes; default 500ms
}

// StartWatch watches root recursively and processes matching files as they
// are created or rewritten. Outcomes are delivered on the returned channel,
// which is closed when ctx ends.
func (r *Runner) StartWatch(ctx context.Context, root string, opts pipeline.Options, wc WatchConfig) (<-chan Outcome, error) {
	if root == "" {
		return nil, errors.New("root path is required")
	}
	if wc.Debounce <= 0 {
		wc.Debounce = 500 * time.Millisecond
	}
	exts := r.extensions()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	pending := map[string]struct{}{}
	addTree := func(dir string) error {
		return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if r.cfg.SkipHidden && path != dir && isHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if wc.InitialScan && matches(path, exts) {
				pending[path] = struct{}{}
			}
			return nil
		})
	}
	if err := addTree(root); err != nil {
		_ = w.Close()
		return nil, err
	}

	out := make(chan Outcome, 16)
	go func() {
		defer close(out)
		defer func() { _ = w.Close() }()

		timer := time.NewTimer(wc.Debounce)
		if len(pending) == 0 {
			timer.Stop()
		}
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
						if err := addTree(e.Name); err != nil {
							r.logger.Warn("batch.watch.add_dir", "path", e.Name, "error", err)
						}
						continue
					}
				}
				if r.cfg.SkipHidden && isHidden(e.Name) {
					continue
				}
				if matches(e.Name, exts) && e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					pending[e.Name] = struct{}{}
					timer.Reset(wc.Debounce)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				r.logger.Warn("batch.watch.error", "error", err)
			case <-timer.C:
				paths := make([]string, 0, len(pending))
				for p := range pending {
					if _, err := os.Stat(p); err == nil {
						paths = append(paths, p)
					}
					delete(pending, p)
				}
				sort.Strings(paths)
				outcomes, err := r.Run(ctx, paths, opts)
				if err != nil {
					return
				}
				for _, o := range outcomes {
					select {
					case out <- o:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out, nil
}

func (r *Runner) extensions() map[string]struct{} {
	if len(r.cfg.IncludeExts) == 0 {
		return constants.AllowedExtensions
	}
	exts := map[string]struct{}{}
	for _, e := range r.cfg.IncludeExts {
		if e = constants.NormalizeExt(e); e != "" {
			exts[e] = struct{}{}
		}
	}
	return exts
}

func matches(path string, exts map[string]struct{}) bool {
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}
