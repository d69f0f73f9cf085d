package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/common"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/loader"
	"github.com/joseph-ayodele/variance-drafts/internal/loader/loadertest"
)

func newTestEngine() *Engine {
	return NewEngine(Config{}, nil, nil, nil)
}

func process(t *testing.T, name string, content []byte, opts Options) entity.Result {
	t.Helper()
	res, err := newTestEngine().Process(context.Background(), entity.RawDocument{Filename: name, Content: content}, opts)
	if err != nil {
		t.Fatalf("Process(%s): %v", name, err)
	}
	return res
}

func workbook(t *testing.T, sheets map[string][][]any, order ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, name := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatal(err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatal(err)
		}
		for r, row := range sheets[name] {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				if err := f.SetCellValue(name, cell, v); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func strp(s string) *string { return &s }

func TestBudgetActualCSV(t *testing.T) {
	csv := "Project,Period,Category,Budget,Actual\nP1,2024-01,Materials,1000,1200\nP1,2024-01,Labour,1000,1010\n"
	res := process(t, "budget.csv", []byte(csv), DefaultOptions())
	if res.Mode != constants.ModeVariance {
		t.Fatalf("mode = %s", res.Mode)
	}
	if len(res.Items) != 1 {
		t.Fatalf("items = %+v", res.Items)
	}
	it := res.Items[0]
	if it.Category != "Materials" || it.VariancePct != 20 || it.VarianceAmount != 200 {
		t.Errorf("item = %+v", it)
	}
}

func TestHeaderPromotedPastTitleRows(t *testing.T) {
	csv := "Monthly Cost Report\n\nProject,Period,Category,Budget,Actual\nP1,2024-01,Materials,1000,1200\n"
	res := process(t, "report.csv", []byte(csv), DefaultOptions())
	if res.Mode != constants.ModeVariance || len(res.Items) != 1 {
		t.Fatalf("res = %+v", res)
	}
	if res.Items[0].BudgetAmount != 1000 {
		t.Errorf("budget = %v", res.Items[0].BudgetAmount)
	}
}

func TestChangeOrderAttribution(t *testing.T) {
	csv := "Project,Period,Category,Budget,Actual\nP1,2024-01,Materials,1000,1200\n"
	opts := DefaultOptions()
	opts.ChangeOrders = []entity.ChangeOrderRow{
		{ProjectID: strp("P1"), CoID: strp("CO-1"), Date: strp("2024-01-15"), Category: strp("Materials"), Description: strp("Extra tiles")},
		{ProjectID: strp("P1"), CoID: strp("CO-2"), Date: strp("2024-02-01"), Category: strp("Materials"), Description: strp("Late order")},
	}
	res := process(t, "budget.csv", []byte(csv), opts)
	if len(res.Items) != 1 {
		t.Fatalf("items = %+v", res.Items)
	}
	d := res.Items[0].Drivers
	if len(d) != 1 || d[0] != "CO-1: Extra tiles" {
		t.Errorf("drivers = %q", d)
	}
}

func TestQuoteCompareWorkbook(t *testing.T) {
	content := workbook(t, map[string][][]any{
		"quotes": {
			{"Vendor", "Item Code", "Description", "Qty", "Unit Price"},
			{"Vendor A", "D01", "Door", 1, 100},
			{"Vendor B", "D01", "Door", 1, 120},
		},
	}, "quotes")
	res := process(t, "quotes.xlsx", content, DefaultOptions())
	if res.Mode != constants.ModeQuoteCompare {
		t.Fatalf("mode = %s", res.Mode)
	}
	if len(res.Spreads) != 1 {
		t.Fatalf("spreads = %+v", res.Spreads)
	}
	s := res.Spreads[0]
	if s.SpreadPct != 20 || s.UnitSpread != 20 || s.MinVendor != "Vendor A" {
		t.Errorf("spread = %+v", s)
	}
	if res.BestMix == nil || res.BestMix.BestMixTotal != 100 {
		t.Errorf("best mix = %+v", res.BestMix)
	}
	if len(res.VendorTotals) != 2 {
		t.Errorf("vendor totals = %+v", res.VendorTotals)
	}
}

func TestEmptyBudgetSheetFallsBackToQuotes(t *testing.T) {
	content := workbook(t, map[string][][]any{
		"Budget": {
			{"Project", "Budget", "Actual"},
			{"P1", "n/a", "n/a"},
		},
		"Quotes": {
			{"Vendor", "Description", "Qty", "Unit Price"},
			{"A", "Door", 1, 100},
			{"B", "Door", 1, 120},
		},
	}, "Budget", "Quotes")
	res := process(t, "mixed.xlsx", content, DefaultOptions())
	if res.Mode != constants.ModeQuoteCompare || res.Method != constants.SourceTable {
		t.Fatalf("mode = %s method = %s", res.Mode, res.Method)
	}
	if len(res.Spreads) != 1 || res.Spreads[0].MinVendor != "A" || res.Spreads[0].MaxVendor != "B" {
		t.Errorf("spreads = %+v", res.Spreads)
	}
}

func TestCompanyNameColumnIsVendor(t *testing.T) {
	csv := "Co. Name,Description,Qty,Unit Price\nA,Door,1,100\nB,Door,1,120\n"
	res := process(t, "quotes.csv", []byte(csv), DefaultOptions())
	if res.Mode != constants.ModeQuoteCompare || len(res.VendorTotals) != 2 {
		t.Fatalf("res = %+v", res)
	}
}

func TestQuoteComparePDF(t *testing.T) {
	content := loadertest.PDF(loadertest.Rows(
		[]string{"Vendor", "Description", "Qty", "Unit Price"},
		[]string{"A", "Door", "1", "100"},
		[]string{"B", "Door", "1", "120"},
	))
	res := process(t, "quotes.pdf", content, DefaultOptions())
	if res.Mode != constants.ModeQuoteCompare || res.Method != constants.SourceTable {
		t.Fatalf("mode = %s method = %s", res.Mode, res.Method)
	}
	if res.Format != constants.PDF || len(res.Spreads) != 1 || res.Spreads[0].SpreadPct != 20 {
		t.Errorf("res = %+v", res)
	}
}

// hungRunner blocks until the context ends, like a stuck pdftotext.
type hungRunner struct{}

func (hungRunner) Run(ctx context.Context, _ string, _ ...string) ([]byte, []byte, error) {
	<-ctx.Done()
	return nil, nil, ctx.Err()
}

func TestPDFTimeoutIsReturned(t *testing.T) {
	cfg := Config{Loader: loader.Config{PDFTimeout: 20 * time.Millisecond, Pdftotext: "pdftotext"}}
	e := NewEngine(cfg, nil, nil, nil).WithRunner(hungRunner{})
	_, err := e.Process(context.Background(), entity.RawDocument{Filename: "blank.pdf", Content: loadertest.PDF(nil)}, DefaultOptions())
	if !errors.Is(err, common.ErrExtractionTimeout) {
		t.Fatalf("err = %v", err)
	}
}

func TestTotalsSheetOnly(t *testing.T) {
	content := workbook(t, map[string][][]any{
		"price_comparison_totals": {
			{"Vendor", "Grand Total"},
			{"Acme", 1000},
			{"Beta", 1200},
		},
	}, "price_comparison_totals")
	res := process(t, "totals.xlsx", content, DefaultOptions())
	if res.Mode != constants.ModeQuoteCompare || res.Message != MsgTotalsOnly {
		t.Fatalf("res = %+v", res)
	}
	if res.VendorTotals[0].Vendor != "Beta" || res.VendorTotals[0].Total != 1200 {
		t.Errorf("totals = %+v", res.VendorTotals)
	}
}

func TestProcurementSingleVendor(t *testing.T) {
	csv := "Supplier: Acme Doors\nItem Code,Description,Qty,Unit Price\nD01,Door,2,150\nD02,Frame,,80\n"
	res := process(t, "po.csv", []byte(csv), DefaultOptions())
	if res.Mode != constants.ModeProcurement {
		t.Fatalf("mode = %s", res.Mode)
	}
	if len(res.Lines) != 2 {
		t.Fatalf("lines = %+v", res.Lines)
	}
	if *res.Lines[0].Amount != 300 || *res.Lines[0].VendorName != "Acme Doors" {
		t.Errorf("first = %+v", res.Lines[0])
	}
	if res.Lines[1].Quantity != nil || res.Lines[1].Amount != nil {
		t.Errorf("second line invented values: %+v", res.Lines[1])
	}
}

func TestTextBudgetActualBlock(t *testing.T) {
	text := "Project update\nBudget: SAR 50,000\nActual: SAR 65,000\n"
	res := process(t, "memo.txt", []byte(text), DefaultOptions())
	if res.Mode != constants.ModeVariance || res.Method != constants.SourceBudgetBlocks {
		t.Fatalf("res = %+v", res)
	}
	if len(res.Items) != 1 || res.Items[0].BudgetAmount != 50000 || res.Items[0].ActualAmount != 65000 {
		t.Errorf("items = %+v", res.Items)
	}
}

func TestTextWithoutDataIsUnclassified(t *testing.T) {
	text := "Budget: SAR 50,000\n\nThe committee will meet next week."
	res := process(t, "memo.txt", []byte(text), DefaultOptions())
	if res.Mode != constants.ModeUnclassified || res.Message != MsgNoData {
		t.Fatalf("res = %+v", res)
	}
	if res.RawTextSnippet != text {
		t.Errorf("snippet = %q", res.RawTextSnippet)
	}
}

func TestSnippetTruncated(t *testing.T) {
	e := NewEngine(Config{SnippetChars: 5}, nil, nil, nil)
	res, err := e.Process(context.Background(), entity.RawDocument{Filename: "a.txt", Content: []byte("hello world")}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.RawTextSnippet != "hello" {
		t.Errorf("snippet = %q", res.RawTextSnippet)
	}
}

func TestMalformedInputIsUnclassified(t *testing.T) {
	res := process(t, "broken.xlsx", []byte("definitely not a workbook"), DefaultOptions())
	if res.Mode != constants.ModeUnclassified || res.Message != MsgUnreadable {
		t.Errorf("res = %+v", res)
	}
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(b, []byte(`"raw_text_snippet":""`)) {
		t.Errorf("json = %s", b)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	content := workbook(t, map[string][][]any{
		"quotes": {
			{"Vendor", "Item Code", "Description", "Qty", "Unit Price"},
			{"Vendor A", "D01", "Door", 2, 100},
			{"Vendor B", "D01", "Door", 2, 130},
			{"Vendor A", "D02", "Handle", 4, 10},
			{"Vendor B", "D02", "Handle", 4, 9},
		},
	}, "quotes")
	opts := Options{}
	var first []byte
	for i := 0; i < 3; i++ {
		res := process(t, "quotes.xlsx", content, opts)
		b, err := json.Marshal(res)
		if err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			first = b
			continue
		}
		if !bytes.Equal(first, b) {
			t.Fatalf("run %d differs:\n%s\n%s", i, first, b)
		}
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestEngine().Process(ctx, entity.RawDocument{Filename: "memo.txt", Content: []byte("1 10 10")}, DefaultOptions())
	if err == nil {
		t.Error("expected cancellation error")
	}
}
