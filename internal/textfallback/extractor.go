// Package textfallback recovers budget/actual pairs and line items from
// unstructured text through an ordered chain of strategies.
package textfallback

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/numeric"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
)

// Pair is a labeled budget/actual amount pair found in one text block.
type Pair struct {
	ProjectID string
	Period    string
	Category  string
	Label     string
	Budget    float64
	Actual    float64
}

// Extraction is what one strategy recovered.
type Extraction struct {
	Pairs []Pair
	Lines []entity.ProcurementLine
}

// Empty reports whether nothing was recovered.
func (e Extraction) Empty() bool { return len(e.Pairs) == 0 && len(e.Lines) == 0 }

// Strategy is one fallback tier. An empty extraction passes control to the next tier.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, text string) (Extraction, error)
}

// Extractor runs strategies in order until one recovers something.
type Extractor struct {
	strategies []Strategy
	logger     *slog.Logger
}

// DefaultStrategies returns the deterministic tiers in order.
func DefaultStrategies(r *rules.Rules) []Strategy {
	return []Strategy{
		BudgetActualBlocks{},
		ItemCodeBlocks{Rules: r},
		NumericTriplets{Rules: r},
		TwoAmounts{Rules: r},
	}
}

// New builds an extractor over the default tiers followed by any extra
// strategies, such as an LLM-backed one. A nil rules table uses the defaults.
func New(r *rules.Rules, logger *slog.Logger, extra ...Strategy) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{strategies: append(DefaultStrategies(r), extra...), logger: logger}
}

// Extract returns the first non-empty extraction and the strategy that
// produced it. Strategy errors are logged and treated as empty; only context
// cancellation is returned.
func (x *Extractor) Extract(ctx context.Context, text string) (Extraction, string, error) {
	text = numeric.TranslateDigits(text)
	for _, s := range x.strategies {
		if err := ctx.Err(); err != nil {
			return Extraction{}, "", err
		}
		start := time.Now()
		out, err := s.Extract(ctx, text)
		if err != nil {
			if ctx.Err() != nil {
				return Extraction{}, "", ctx.Err()
			}
			x.logger.Warn("textfallback.strategy.error", "strategy", s.Name(), "error", err)
			continue
		}
		if out.Empty() {
			x.logger.Debug("textfallback.strategy.empty", "strategy", s.Name())
			continue
		}
		x.logger.Info("textfallback.strategy.ok",
			"strategy", s.Name(),
			"pairs", len(out.Pairs),
			"lines", len(out.Lines),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return out, s.Name(), nil
	}
	return Extraction{}, "", nil
}
