package llm

import (
	"context"

	"github.com/joseph-ayodele/variance-drafts/internal/entity"
)

// LineItem is the normalized shape we want from the LLM.
type LineItem struct {
	ItemCode    string   `json:"item_code,omitempty"`
	Description string   `json:"description,omitempty"`
	Qty         *float64 `json:"qty,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Total       *float64 `json:"total,omitempty"`
	VendorName  string   `json:"vendor_name,omitempty"`
	Currency    string   `json:"currency,omitempty"` // ISO 4217
}

// ItemsResponse is the top-level JSON object the model must return.
type ItemsResponse struct {
	Items []LineItem `json:"items"`
}

type ExtractRequest struct {
	Text            string
	FilenameHint    string
	DefaultCurrency string
	MaxChars        int
}

// ItemExtractor is the interface the text fallback depends on.
type ItemExtractor interface {
	ExtractItems(ctx context.Context, text string) ([]entity.ProcurementLine, error)
}

// ToProcurementLines converts model items, keeping absent values absent.
func ToProcurementLines(items []LineItem) []entity.ProcurementLine {
	out := make([]entity.ProcurementLine, 0, len(items))
	for _, it := range items {
		out = append(out, entity.ProcurementLine{
			ItemCode:    optional(it.ItemCode),
			Description: optional(it.Description),
			Quantity:    it.Qty,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Total,
			VendorName:  optional(it.VendorName),
			Currency:    optional(it.Currency),
		})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
