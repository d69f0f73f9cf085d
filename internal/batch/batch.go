// Package batch processes every document under a directory with a bounded
// number of workers and a per-document timeout.
package batch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/variance-drafts/internal/common"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/pipeline"
)

// Processor extracts one document. *pipeline.Engine implements it.
type Processor interface {
	Process(ctx context.Context, raw entity.RawDocument, opts pipeline.Options) (entity.Result, error)
}

type Config struct {
	Workers     int           // default 4
	DocTimeout  time.Duration // default 2m; <0 disables
	SkipHidden  bool
	IncludeExts []string // default constants.AllowedExtensions
}

// Outcome is the result for one file. Err is set instead of Result when the
// file could not be read or extraction timed out.
type Outcome struct {
	Path         string         `json:"path"`
	SHA256       string         `json:"sha256,omitempty"`
	Deduplicated bool           `json:"deduplicated,omitempty"`
	ElapsedMS    int64          `json:"-"`
	Result       *entity.Result `json:"result,omitempty"`
	Err          string         `json:"error,omitempty"`
	TimedOut     bool           `json:"timed_out,omitempty"`
}

type Stats struct {
	Scanned      uint32 `json:"scanned"`
	Matched      uint32 `json:"matched"`
	Succeeded    uint32 `json:"succeeded"`
	Deduplicated uint32 `json:"deduplicated"`
	TimedOut     uint32 `json:"timed_out"`
	Failed       uint32 `json:"failed"`
}

type Runner struct {
	cfg    Config
	proc   Processor
	logger *slog.Logger
}

func New(cfg Config, proc Processor, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.DocTimeout == 0 {
		cfg.DocTimeout = 2 * time.Minute
	}
	return &Runner{cfg: cfg, proc: proc, logger: logger}
}

// RunDirectory walks root and processes every matching file.
func (r *Runner) RunDirectory(ctx context.Context, root string, opts pipeline.Options) ([]Outcome, Stats, error) {
	paths, walkErrs, stats, err := r.Files(root)
	if err != nil {
		return walkErrs, stats, err
	}
	outcomes, err := r.Run(ctx, paths, opts)
	outcomes = append(walkErrs, outcomes...)
	for _, o := range outcomes {
		switch {
		case o.Err != "":
			stats.Failed++
			if o.TimedOut {
				stats.TimedOut++
			}
		case o.Deduplicated:
			stats.Succeeded++
			stats.Deduplicated++
		default:
			stats.Succeeded++
		}
	}
	return outcomes, stats, err
}

// Run processes paths and returns outcomes in input order. Files with the
// same content are extracted once. Per-file failures are reported in the
// outcome; the returned error is non-nil only when ctx ends.
func (r *Runner) Run(ctx context.Context, paths []string, opts pipeline.Options) ([]Outcome, error) {
	start := time.Now()
	outcomes := make([]Outcome, len(paths))
	docs := make([]entity.RawDocument, len(paths))
	owner := make([]int, len(paths))
	firstByHash := map[string]int{}

	for i, p := range paths {
		outcomes[i].Path = p
		owner[i] = i
		b, err := os.ReadFile(p)
		if err != nil {
			outcomes[i].Err = fmt.Sprintf("read: %v", err)
			owner[i] = -1
			continue
		}
		sum := sha256.Sum256(b)
		h := hex.EncodeToString(sum[:])
		outcomes[i].SHA256 = h
		if j, ok := firstByHash[h]; ok {
			owner[i] = j
			outcomes[i].Deduplicated = true
			continue
		}
		firstByHash[h] = i
		docs[i] = entity.RawDocument{Filename: p, Content: b}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i := range paths {
		if owner[i] != i {
			continue
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			docStart := time.Now()
			res, err := r.processOne(gCtx, docs[i], opts)
			outcomes[i].ElapsedMS = time.Since(docStart).Milliseconds()
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				outcomes[i].Err = err.Error()
				outcomes[i].TimedOut = errors.Is(err, common.ErrExtractionTimeout)
				r.logger.Warn("batch.doc.failed", "file", paths[i], "error", err)
				return nil
			}
			outcomes[i].Result = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	for i, o := range owner {
		if o >= 0 && o != i {
			outcomes[i].Result = outcomes[o].Result
			outcomes[i].Err = outcomes[o].Err
			outcomes[i].TimedOut = outcomes[o].TimedOut
		}
	}

	r.logger.Info("batch.run.ok",
		"files", len(paths),
		"unique", len(firstByHash),
		"workers", r.cfg.Workers,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return outcomes, nil
}

func (r *Runner) processOne(ctx context.Context, doc entity.RawDocument, opts pipeline.Options) (entity.Result, error) {
	if r.cfg.DocTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.DocTimeout)
		defer cancel()
	}
	res, err := r.proc.Process(ctx, doc, opts)
	if errors.Is(err, context.DeadlineExceeded) {
		return entity.Result{}, common.ErrExtractionTimeout
	}
	return res, err
}
