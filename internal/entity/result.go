package entity

import (
	"encoding/json"

	"github.com/joseph-ayodele/variance-drafts/constants"
)

// SheetProfile records how one sheet was read and classified.
type SheetProfile struct {
	Sheet   string            `json:"sheet"`
	Schema  constants.Schema  `json:"schema"`
	Rows    int               `json:"rows"`
	Columns []string          `json:"columns"`
	Mapped  map[string]string `json:"mapped"`
}

// Result is the outcome of processing one document. Which fields are
// meaningful depends on Mode; MarshalJSON emits only those.
type Result struct {
	Mode constants.Mode

	// variance
	Items []VarianceItem

	// procurement
	Lines   []ProcurementLine
	Summary *ProcurementSummary

	// quote_compare
	Spreads      []QuoteSpreadRow
	VendorTotals []VendorTotal
	BestMix      *BestMixResult
	Highlights   []string

	// unclassified
	RawTextSnippet string

	Message  string
	Format   constants.Format
	Method   string
	Sheets   []SheetProfile
	Warnings []string
}

type resultMeta struct {
	Format   constants.Format `json:"format,omitempty"`
	Method   string           `json:"method,omitempty"`
	Message  string           `json:"message,omitempty"`
	Sheets   []SheetProfile   `json:"sheets,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

// MarshalJSON renders the mode-specific output shape.
func (r Result) MarshalJSON() ([]byte, error) {
	meta := resultMeta{Format: r.Format, Method: r.Method, Message: r.Message, Sheets: r.Sheets, Warnings: r.Warnings}
	switch r.Mode {
	case constants.ModeVariance:
		return json.Marshal(struct {
			Mode  constants.Mode `json:"mode"`
			Items []VarianceItem `json:"items"`
			resultMeta
		}{r.Mode, nonNil(r.Items), meta})
	case constants.ModeProcurement:
		return json.Marshal(struct {
			Mode    constants.Mode      `json:"mode"`
			Items   []ProcurementLine   `json:"items"`
			Summary *ProcurementSummary `json:"summary,omitempty"`
			resultMeta
		}{r.Mode, nonNil(r.Lines), r.Summary, meta})
	case constants.ModeQuoteCompare:
		return json.Marshal(struct {
			Mode         constants.Mode   `json:"mode"`
			Spreads      []QuoteSpreadRow `json:"spreads"`
			VendorTotals []VendorTotal    `json:"vendor_totals"`
			BestMix      *BestMixResult   `json:"best_mix"`
			Highlights   []string         `json:"highlights,omitempty"`
			resultMeta
		}{r.Mode, nonNil(r.Spreads), nonNil(r.VendorTotals), r.BestMix, r.Highlights, meta})
	default:
		return json.Marshal(struct {
			Mode           constants.Mode `json:"mode"`
			RawTextSnippet string         `json:"raw_text_snippet"`
			resultMeta
		}{constants.ModeUnclassified, r.RawTextSnippet, meta})
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
