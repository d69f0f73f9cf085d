package textfallback

import (
	"context"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/quotes"
)

// ItemSource extracts line items from raw text, typically through a language model.
type ItemSource interface {
	ExtractItems(ctx context.Context, text string) ([]entity.ProcurementLine, error)
}

// LLM is the last tier. It is only part of the chain when configured.
type LLM struct {
	Source   ItemSource
	MaxChars int
}

func (LLM) Name() string { return constants.SourceLLM }

func (s LLM) Extract(ctx context.Context, text string) (Extraction, error) {
	if s.Source == nil {
		return Extraction{}, nil
	}
	if s.MaxChars > 0 {
		r := []rune(text)
		if len(r) > s.MaxChars {
			text = string(r[:s.MaxChars])
		}
	}
	items, err := s.Source.ExtractItems(ctx, text)
	if err != nil {
		return Extraction{}, err
	}
	var out Extraction
	for _, it := range items {
		if it.Quantity == nil && it.UnitPrice == nil && it.Amount == nil {
			continue
		}
		it.Source = constants.SourceLLM
		out.Lines = append(out.Lines, quotes.DeriveAmount(it))
	}
	return out, nil
}
