package pipeline

import (
	"sort"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/classify"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/loader"
	"github.com/joseph-ayodele/variance-drafts/internal/quotes"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
	"github.com/joseph-ayodele/variance-drafts/internal/tabular"
	"github.com/joseph-ayodele/variance-drafts/internal/variance"
)

// tableStage maps and classifies every sheet and builds the result for the
// best mode that yields rows. ok is false when no mode does, in which case
// the returned result only carries sheet profiles.
func (e *Engine) tableStage(doc loader.Document, opts Options) (entity.Result, bool) {
	frames := make([]*tabular.Frame, 0, len(doc.Sheets))
	for _, s := range doc.Sheets {
		if f := tabular.Prepare(s.Name, s.Rows, e.rules); f != nil {
			frames = append(frames, f)
		}
	}
	sheets := classify.Workbook(frames, e.rules)
	res := entity.Result{Sheets: profiles(sheets)}

	for _, mode := range classify.Modes(sheets) {
		var (
			out entity.Result
			ok  bool
		)
		switch mode {
		case constants.ModeVariance:
			out, ok = e.varianceResult(res, sheets, opts)
		case constants.ModeQuoteCompare:
			out, ok = e.quoteResult(res, sheets, opts)
		case constants.ModeProcurement:
			out, ok = e.procurementResult(res, sheets)
		}
		if ok {
			return out, true
		}
	}
	return res, false
}

func (e *Engine) varianceResult(res entity.Result, sheets []classify.Sheet, opts Options) (entity.Result, bool) {
	var rows []entity.BudgetActualRow
	orders := append([]entity.ChangeOrderRow(nil), opts.ChangeOrders...)
	for _, s := range sheets {
		switch s.Schema {
		case constants.SchemaBudgetActual:
			rows = append(rows, variance.BuildBudgetActualRows(s.Frame, e.rules)...)
		case constants.SchemaChangeOrder:
			orders = append(orders, variance.BuildChangeOrderRows(s.Frame, e.rules)...)
		}
	}
	if len(rows) == 0 {
		return res, false
	}
	res.Mode = constants.ModeVariance
	res.Method = constants.SourceTable
	res.Items = e.varianceItems(rows, orders, opts)
	if len(res.Items) == 0 {
		res.Message = MsgNotMaterial
	}
	return res, true
}

func (e *Engine) varianceItems(rows []entity.BudgetActualRow, orders []entity.ChangeOrderRow, opts Options) []entity.VarianceItem {
	items := variance.Aggregate(rows, opts.CategoryMap)
	items = variance.AttachDrivers(items, orders, opts.VendorMap, opts.CategoryMap)
	return variance.FilterMateriality(items, opts.MaterialityPct, opts.MaterialityAmount)
}

func (e *Engine) quoteResult(res entity.Result, sheets []classify.Sheet, opts Options) (entity.Result, bool) {
	var (
		lines       []entity.ProcurementLine
		sheetTotals []entity.VendorTotal
		highlights  []string
		hasTotals   bool
	)
	for _, s := range sheets {
		switch s.Role {
		case rules.RoleTotals:
			hasTotals = true
			sheetTotals = append(sheetTotals, quotes.VendorTotalsFromSheet(s.Frame, e.rules)...)
			continue
		case rules.RoleHighlights:
			highlights = append(highlights, quotes.Highlights(s.Frame, e.rules)...)
			continue
		}
		switch s.Schema {
		case constants.SchemaQuoteCompare, constants.SchemaProcurementLine:
			lines = append(lines, quotes.BuildLines(s.Frame, e.rules)...)
		}
	}
	if len(lines) == 0 && len(sheetTotals) == 0 {
		return res, false
	}
	if limit := e.rules.MaxHighlights; limit > 0 && len(highlights) > limit {
		highlights = highlights[:limit]
	}
	res.Mode = constants.ModeQuoteCompare
	res.Method = constants.SourceTable
	res.Highlights = highlights
	e.compareQuotes(&res, lines, opts)
	if hasTotals && len(sheetTotals) > 0 {
		sortVendorTotals(sheetTotals)
		res.VendorTotals = sheetTotals
	}
	switch {
	case len(lines) == 0 && len(res.VendorTotals) > 0:
		res.Message = MsgTotalsOnly
	case len(res.Spreads) == 0 && len(lines) > 0:
		res.Message = MsgNoSpreads
	}
	return res, true
}

// compareQuotes fills spreads, best mix and line-derived vendor totals.
func (e *Engine) compareQuotes(res *entity.Result, lines []entity.ProcurementLine, opts Options) {
	cmp := quotes.Analyze(lines, quotes.Thresholds{Pct: opts.MaterialityPct, Amount: opts.MaterialityAmount})
	res.Spreads = cmp.Spreads
	res.BestMix = cmp.BestMix
	res.VendorTotals = quotes.VendorTotalsFromLines(lines)
}

func (e *Engine) procurementResult(res entity.Result, sheets []classify.Sheet) (entity.Result, bool) {
	var lines []entity.ProcurementLine
	for _, s := range sheets {
		if s.Schema == constants.SchemaProcurementLine {
			lines = append(lines, quotes.BuildLines(s.Frame, e.rules)...)
		}
	}
	if len(lines) == 0 {
		return res, false
	}
	res.Mode = constants.ModeProcurement
	res.Method = constants.SourceTable
	res.Lines = lines
	res.Summary = quotes.Summarize(lines)
	return res, true
}

func profiles(sheets []classify.Sheet) []entity.SheetProfile {
	out := make([]entity.SheetProfile, 0, len(sheets))
	for _, s := range sheets {
		mapped := make(map[string]string, len(s.Frame.Mapping))
		for field, header := range s.Frame.Mapping {
			mapped[string(field)] = header
		}
		out = append(out, entity.SheetProfile{
			Sheet:   s.Frame.Name,
			Schema:  s.Schema,
			Rows:    len(s.Frame.Rows),
			Columns: s.Frame.Columns,
			Mapped:  mapped,
		})
	}
	return out
}

func sortVendorTotals(ts []entity.VendorTotal) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Total > ts[j].Total })
}
