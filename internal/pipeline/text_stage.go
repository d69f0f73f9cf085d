package pipeline

import (
	"context"
	"strings"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/loader"
	"github.com/joseph-ayodele/variance-drafts/internal/quotes"
	"github.com/joseph-ayodele/variance-drafts/internal/textfallback"
)

// textStage runs the ordered text strategies over the document text, or the
// flattened sheets when the format had no text of its own.
func (e *Engine) textStage(ctx context.Context, doc loader.Document, opts Options, sheets []entity.SheetProfile) (entity.Result, error) {
	text := doc.Text
	if strings.TrimSpace(text) == "" {
		text = flattenSheets(doc.Sheets)
	}
	res := entity.Result{Sheets: sheets}

	out, strategy, err := e.fallback.Extract(ctx, text)
	if err != nil {
		return entity.Result{}, err
	}
	res.Method = strategy

	switch {
	case len(out.Pairs) > 0:
		res.Mode = constants.ModeVariance
		res.Items = e.varianceItems(pairRows(out.Pairs), opts.ChangeOrders, opts)
		if len(res.Items) == 0 {
			res.Message = MsgNotMaterial
		}
	case len(out.Lines) > 0 && distinctVendors(out.Lines) >= 2:
		res.Mode = constants.ModeQuoteCompare
		e.compareQuotes(&res, out.Lines, opts)
		if len(res.Spreads) == 0 {
			res.Message = MsgNoSpreads
		}
	case len(out.Lines) > 0:
		res.Mode = constants.ModeProcurement
		res.Lines = out.Lines
		res.Summary = quotes.Summarize(out.Lines)
	default:
		res.Mode = constants.ModeUnclassified
		res.Method = doc.Method
		res.RawTextSnippet = snippet(text, e.cfg.SnippetChars)
		res.Message = MsgNoData
	}
	return res, nil
}

func pairRows(pairs []textfallback.Pair) []entity.BudgetActualRow {
	rows := make([]entity.BudgetActualRow, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, entity.BudgetActualRow{
			ProjectID: p.ProjectID,
			Period:    p.Period,
			Category:  p.Category,
			Budget:    p.Budget,
			Actual:    p.Actual,
			Currency:  constants.DefaultCurrency,
		})
	}
	return rows
}

func distinctVendors(lines []entity.ProcurementLine) int {
	seen := map[string]struct{}{}
	for _, l := range lines {
		if l.VendorName != nil {
			seen[strings.ToLower(strings.TrimSpace(*l.VendorName))] = struct{}{}
		}
	}
	return len(seen)
}

// flattenSheets renders raw grids as tab-separated lines, one blank line
// between sheets.
func flattenSheets(sheets []loader.Sheet) string {
	var b strings.Builder
	for i, s := range sheets {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, row := range s.Rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}
