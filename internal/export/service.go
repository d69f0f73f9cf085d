// Package export renders extraction results as XLSX workbooks.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
)

// Service produces XLSX bytes for a Result, one sheet per table.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

type column struct {
	header string
	width  float64
}

// table is one rendered sheet. Nil cells are left blank.
type table struct {
	name    string
	columns []column
	rows    [][]any
}

// ResultXLSX returns a workbook for res. source is the uploaded filename and
// is written to the Info sheet.
func (s *Service) ResultXLSX(res entity.Result, source string) ([]byte, error) {
	start := time.Now()

	var tables []table
	switch res.Mode {
	case constants.ModeVariance:
		tables = append(tables, varianceTable(res.Items))
	case constants.ModeProcurement:
		tables = append(tables, linesTable(res.Lines))
	case constants.ModeQuoteCompare:
		tables = append(tables, spreadsTable(res.Spreads), vendorTotalsTable(res.VendorTotals))
		if res.BestMix != nil {
			tables = append(tables, bestMixTable(res.BestMix))
		}
		if len(res.Highlights) > 0 {
			tables = append(tables, highlightsTable(res.Highlights))
		}
	}
	tables = append(tables, infoTable(res, source))

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", t.name, err)
		}
		if err := writeTable(f, t); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"file", source,
		"mode", res.Mode,
		"sheets", len(tables),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, t table) error {
	for j, c := range t.columns {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := f.SetCellValue(t.name, cell, c.header); err != nil {
			return fmt.Errorf("write %s header: %w", t.name, err)
		}
		col, _ := excelize.ColumnNumberToName(j + 1)
		_ = f.SetColWidth(t.name, col, col, c.width)
	}
	for i, row := range t.rows {
		for j, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(t.name, cell, v); err != nil {
				return fmt.Errorf("write %s row %d: %w", t.name, i+2, err)
			}
		}
	}
	if len(t.columns) > 0 {
		if err := f.SetPanes(t.name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("freeze %s header: %w", t.name, err)
		}
	}
	return nil
}

func varianceTable(items []entity.VarianceItem) table {
	t := table{name: "Variance", columns: []column{
		{"Project", 14}, {"Period", 10}, {"Category", 22}, {"Budget", 14}, {"Actual", 14},
		{"Variance", 14}, {"Variance %", 12}, {"Drivers", 48}, {"Vendors", 28}, {"Evidence", 48},
	}}
	for _, it := range items {
		t.rows = append(t.rows, []any{
			it.ProjectID, it.Period, it.Category, it.BudgetAmount, it.ActualAmount,
			it.VarianceAmount, it.VariancePct,
			strings.Join(it.Drivers, "; "), strings.Join(it.Vendors, ", "), strings.Join(it.EvidenceLinks, "\n"),
		})
	}
	return t
}

func linesTable(lines []entity.ProcurementLine) table {
	t := table{name: "Lines", columns: []column{
		{"Item Code", 12}, {"Description", 40}, {"Qty", 10}, {"Unit Price", 14}, {"Amount", 14},
		{"Vendor", 24}, {"Date", 12}, {"Currency", 10}, {"VAT %", 8}, {"Source", 18},
	}}
	for _, l := range lines {
		t.rows = append(t.rows, []any{
			str(l.ItemCode), str(l.Description), num(l.Quantity), num(l.UnitPrice), num(l.Amount),
			str(l.VendorName), str(l.DocDate), str(l.Currency), num(l.VatRate), l.Source,
		})
	}
	return t
}

func spreadsTable(spreads []entity.QuoteSpreadRow) table {
	t := table{name: "Spreads", columns: []column{
		{"Item", 24}, {"Item Code", 12}, {"Description", 36}, {"Qty", 10},
		{"Min Vendor", 22}, {"Min Unit", 12}, {"Max Vendor", 22}, {"Max Unit", 12},
		{"Unit Spread", 12}, {"Spread %", 10}, {"Total Spread", 14}, {"Vendors", 8},
	}}
	for _, r := range spreads {
		t.rows = append(t.rows, []any{
			r.ItemKey, str(r.ItemCode), str(r.Description), num(r.QtyTotal),
			r.MinVendor, r.MinUnitPrice, r.MaxVendor, r.MaxUnitPrice,
			r.UnitSpread, r.SpreadPct, r.TotalSpread, r.VendorCount,
		})
	}
	return t
}

func vendorTotalsTable(totals []entity.VendorTotal) table {
	t := table{name: "Vendor Totals", columns: []column{{"Vendor", 28}, {"Total", 16}}}
	for _, v := range totals {
		t.rows = append(t.rows, []any{v.Vendor, v.Total})
	}
	return t
}

func bestMixTable(mix *entity.BestMixResult) table {
	t := table{name: "Best Mix", columns: []column{
		{"Item", 28}, {"Vendor", 24}, {"Unit Price", 12}, {"Qty", 10}, {"Cost", 14},
	}}
	for _, p := range mix.Picks {
		t.rows = append(t.rows, []any{p.ItemKey, p.Vendor, p.UnitPrice, p.Qty, p.Cost})
	}
	t.rows = append(t.rows,
		[]any{},
		[]any{"Best mix total", nil, nil, nil, mix.BestMixTotal},
		[]any{"Cheapest single vendor", str(mix.CheapestSingleVendor), nil, nil, num(mix.SingleVendorTotal)},
		[]any{"Estimated savings", nil, nil, nil, num(mix.EstimatedSavings)},
	)
	return t
}

func highlightsTable(lines []string) table {
	t := table{name: "Highlights", columns: []column{{"Highlight", 80}}}
	for _, h := range lines {
		t.rows = append(t.rows, []any{h})
	}
	return t
}

func infoTable(res entity.Result, source string) table {
	t := table{name: "Info", columns: []column{{"Field", 18}, {"Value", 80}}}
	add := func(k string, v any) { t.rows = append(t.rows, []any{k, v}) }
	add("File", source)
	add("Mode", string(res.Mode))
	add("Format", string(res.Format))
	add("Method", res.Method)
	if res.Message != "" {
		add("Message", res.Message)
	}
	for _, w := range res.Warnings {
		add("Warning", w)
	}
	for _, p := range res.Sheets {
		add("Sheet", fmt.Sprintf("%s: %s, %d rows", p.Sheet, p.Schema, p.Rows))
	}
	if res.RawTextSnippet != "" {
		add("Text", truncate(res.RawTextSnippet, 32000))
	}
	return t
}

func str(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func num(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// truncate cuts s to at most n runes; Excel rejects longer cell text.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
