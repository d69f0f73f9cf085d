package export

import (
	"bytes"
	"slices"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
)

func open(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	if err != nil {
		t.Fatalf("%s!%s: %v", sheet, ref, err)
	}
	return v
}

func TestVarianceExport(t *testing.T) {
	res := entity.Result{
		Mode:   constants.ModeVariance,
		Format: constants.CSV,
		Items: []entity.VarianceItem{{
			ProjectID: "P1", Period: "2024-01", Category: "Materials",
			BudgetAmount: 1000, ActualAmount: 1200, VarianceAmount: 200, VariancePct: 20,
			Drivers: []string{"CO-1: Extra tiles", "CO-2: Rework"},
		}},
	}
	b, err := NewService(nil).ResultXLSX(res, "budget.csv")
	if err != nil {
		t.Fatal(err)
	}
	f := open(t, b)
	if got := f.GetSheetList(); !slices.Equal(got, []string{"Variance", "Info"}) {
		t.Fatalf("sheets = %v", got)
	}
	if got := cell(t, f, "Variance", "A2"); got != "P1" {
		t.Errorf("A2 = %q", got)
	}
	if got := cell(t, f, "Variance", "G2"); got != "20" {
		t.Errorf("G2 = %q", got)
	}
	if got := cell(t, f, "Variance", "H2"); got != "CO-1: Extra tiles; CO-2: Rework" {
		t.Errorf("H2 = %q", got)
	}
	if got := cell(t, f, "Info", "B1"); got != "budget.csv" {
		t.Errorf("Info B1 = %q", got)
	}
}

func TestQuoteExportLeavesUnknownBlank(t *testing.T) {
	vendor := "Vendor A"
	res := entity.Result{
		Mode: constants.ModeQuoteCompare,
		Spreads: []entity.QuoteSpreadRow{{
			ItemKey: "d01", MinVendor: "Vendor A", MinUnitPrice: 100, MaxVendor: "Vendor B",
			MaxUnitPrice: 120, UnitSpread: 20, SpreadPct: 20, TotalSpread: 20, VendorCount: 2,
		}},
		VendorTotals: []entity.VendorTotal{{Vendor: "Vendor B", Total: 120}, {Vendor: "Vendor A", Total: 100}},
		BestMix: &entity.BestMixResult{
			BestMixTotal:         100,
			CheapestSingleVendor: &vendor,
			Items:                1,
			Picks:                []entity.BestMixPick{{ItemKey: "d01", Vendor: "Vendor A", UnitPrice: 100, Qty: 1, Cost: 100}},
		},
	}
	b, err := NewService(nil).ResultXLSX(res, "quotes.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	f := open(t, b)
	want := []string{"Spreads", "Vendor Totals", "Best Mix", "Info"}
	if got := f.GetSheetList(); !slices.Equal(got, want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	if got := cell(t, f, "Spreads", "B2"); got != "" {
		t.Errorf("missing item code rendered as %q", got)
	}
	if got := cell(t, f, "Vendor Totals", "A2"); got != "Vendor B" {
		t.Errorf("first vendor = %q", got)
	}
	if got := cell(t, f, "Best Mix", "B5"); got != "Vendor A" {
		t.Errorf("single vendor = %q", got)
	}
	if got := cell(t, f, "Best Mix", "E6"); got != "" {
		t.Errorf("unknown savings rendered as %q", got)
	}
}

func TestUnclassifiedExport(t *testing.T) {
	res := entity.Result{Mode: constants.ModeUnclassified, RawTextSnippet: "hello", Message: "nothing"}
	b, err := NewService(nil).ResultXLSX(res, "memo.txt")
	if err != nil {
		t.Fatal(err)
	}
	f := open(t, b)
	rows, err := f.GetRows("Info")
	if err != nil {
		t.Fatal(err)
	}
	last := rows[len(rows)-1]
	if last[0] != "Text" || last[1] != "hello" {
		t.Errorf("last info row = %q", last)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("مرحبا بالعالم", 4); got != "مرح…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}
