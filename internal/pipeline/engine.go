// Package pipeline runs a document through loading, table extraction and
// the text fallback, producing one mode-specific result.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/common"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/llm"
	"github.com/joseph-ayodele/variance-drafts/internal/loader"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
	"github.com/joseph-ayodele/variance-drafts/internal/textfallback"
)

// User-facing messages.
const (
	MsgNoSpreads   = "No items breached filters; showing vendor totals."
	MsgTotalsOnly  = "No line items detected; vendor totals shown from summary sheet."
	MsgNotMaterial = "No variance items met the materiality thresholds."
	MsgNoData      = "No budget-vs-actual or line item data found; returning raw text."
	MsgUnreadable  = "The document could not be read; no data found."
	MsgUnsupported = "Unsupported document format; no data found."
)

// Config holds engine settings that do not vary per document.
type Config struct {
	Loader       loader.Config
	SnippetChars int // default 2000
	LLMMaxChars  int // text passed to the optional model tier
}

// Options are the per-call inputs supplied by the caller.
type Options struct {
	MaterialityPct    float64
	MaterialityAmount float64
	CategoryMap       entity.CategoryMap
	VendorMap         *entity.VendorMap
	ChangeOrders      []entity.ChangeOrderRow
}

// DefaultOptions returns the default materiality thresholds.
func DefaultOptions() Options {
	return Options{MaterialityPct: 5, MaterialityAmount: 100000}
}

type Engine struct {
	cfg      Config
	rules    *rules.Rules
	loader   *loader.Loader
	fallback *textfallback.Extractor
	logger   *slog.Logger
}

// NewEngine wires the stages. A nil rules table uses the embedded defaults;
// a nil extractor leaves the model tier out of the text fallback.
func NewEngine(cfg Config, r *rules.Rules, extractor llm.ItemExtractor, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = rules.Default()
	}
	if cfg.SnippetChars <= 0 {
		cfg.SnippetChars = 2000
	}
	var extra []textfallback.Strategy
	if extractor != nil {
		extra = append(extra, textfallback.LLM{Source: extractor, MaxChars: cfg.LLMMaxChars})
	}
	return &Engine{
		cfg:      cfg,
		rules:    r,
		loader:   loader.New(cfg.Loader, logger),
		fallback: textfallback.New(r, logger, extra...),
		logger:   logger,
	}
}

// WithRunner swaps the command runner the loader uses for external PDF tools.
func (e *Engine) WithRunner(r loader.Runner) *Engine {
	e.loader.WithRunner(r)
	return e
}

// Process extracts one document. Parse failures become an unclassified
// result; the only errors returned are ErrExtractionTimeout and context
// cancellation.
func (e *Engine) Process(ctx context.Context, raw entity.RawDocument, opts Options) (entity.Result, error) {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	ctx = common.WithDocument(ctx, raw.Filename)

	doc, err := e.loader.Load(ctx, raw)
	if err != nil {
		if isFatal(err) {
			e.logger.Error("pipeline.process.failed", "req_id", rid, "file", raw.Filename, "error", err)
			return entity.Result{}, err
		}
		msg := MsgUnreadable
		if errors.Is(err, common.ErrUnsupportedFormat) {
			msg = MsgUnsupported
		}
		res := entity.Result{
			Mode:    constants.ModeUnclassified,
			Format:  doc.Format,
			Message: msg,
		}
		e.logger.Warn("pipeline.process.unreadable", "req_id", rid, "file", raw.Filename, "format", doc.Format, "error", err)
		return res, nil
	}

	res, ok := e.tableStage(doc, opts)
	if !ok {
		res, err = e.textStage(ctx, doc, opts, res.Sheets)
		if err != nil {
			e.logger.Error("pipeline.process.failed", "req_id", rid, "file", raw.Filename, "error", err)
			return entity.Result{}, err
		}
	}
	res.Format = doc.Format
	if res.Method == "" {
		res.Method = doc.Method
	}
	res.Warnings = append(res.Warnings, doc.Warnings...)

	e.logger.Info("pipeline.process.ok",
		"req_id", rid,
		"file", raw.Filename,
		"format", doc.Format,
		"method", res.Method,
		"mode", res.Mode,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func isFatal(err error) bool {
	return errors.Is(err, common.ErrExtractionTimeout) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// snippet returns the first n runes of text with surrounding whitespace trimmed.
func snippet(text string, n int) string {
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > n {
		return strings.TrimSpace(string(r[:n]))
	}
	return text
}
