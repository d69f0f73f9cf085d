package variance

import (
	"math"
	"testing"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
	"github.com/joseph-ayodele/variance-drafts/internal/tabular"
)

func sp(s string) *string { return &s }

func TestAggregate(t *testing.T) {
	rows := []entity.BudgetActualRow{
		{ProjectID: "P1", Period: "2024-01", CostCode: "CC1", Budget: 1000, Actual: 1200},
		{ProjectID: "P1", Period: "2024-01", CostCode: "CC2", Category: "Materials", Budget: 500, Actual: 400},
		{ProjectID: "P1", Period: "2024-01", CostCode: "CC3", Budget: 0, Actual: 50},
		{ProjectID: "P1", Period: "2024-01", CostCode: "CC1", Budget: 0.1, Actual: 0.2},
	}
	cats := entity.CategoryMap{"CC1": "Labour"}
	items := Aggregate(rows, cats)
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}

	wantOrder := []string{"Labour", "Materials", constants.Uncategorized}
	for i, c := range wantOrder {
		if items[i].Category != c {
			t.Errorf("items[%d].Category = %q, want %q", i, items[i].Category, c)
		}
	}
	if items[0].BudgetAmount != 1000.1 || items[0].ActualAmount != 1200.2 {
		t.Errorf("labour sums = %v/%v", items[0].BudgetAmount, items[0].ActualAmount)
	}
	if items[2].VariancePct != 0 {
		t.Errorf("zero budget pct = %v, want 0", items[2].VariancePct)
	}
	for _, it := range items {
		if math.Abs(it.VarianceAmount-(it.ActualAmount-it.BudgetAmount)) > 1e-6 {
			t.Errorf("%s: variance amount %v", it.Category, it.VarianceAmount)
		}
		if it.BudgetAmount != 0 && math.Abs(it.VariancePct-it.VarianceAmount/it.BudgetAmount*100) > 1e-6 {
			t.Errorf("%s: variance pct %v", it.Category, it.VariancePct)
		}
		if it.Drivers == nil || it.Vendors == nil || it.EvidenceLinks == nil {
			t.Errorf("%s: collections should be empty, not nil", it.Category)
		}
	}
}

func TestScenarioBudgetOverrun(t *testing.T) {
	items := Aggregate([]entity.BudgetActualRow{{ProjectID: "P1", Period: "2024-01", Budget: 1000, Actual: 1200}}, nil)
	if len(items) != 1 || items[0].VariancePct != 20 {
		t.Fatalf("items = %+v", items)
	}
	if got := FilterMateriality(items, 5, 100000); len(got) != 1 {
		t.Errorf("20%% variance should pass a 5%% threshold")
	}
}

func TestFilterMaterialityOrSemantics(t *testing.T) {
	tests := []struct {
		name   string
		pct    float64
		amount float64
		keep   bool
	}{
		{"amount clause", 3, 200000, true},
		{"percentage clause", 6, 500, true},
		{"neither", 3, 500, false},
		{"negative percentage", -7, -10, true},
		{"exact threshold", 5, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterMateriality([]entity.VarianceItem{{VariancePct: tt.pct, VarianceAmount: tt.amount}}, 5, 100000)
			if (len(got) == 1) != tt.keep {
				t.Errorf("kept = %v, want %v", len(got) == 1, tt.keep)
			}
		})
	}
}

func TestAttachDrivers(t *testing.T) {
	items := []entity.VarianceItem{{ProjectID: "P1", Period: "2024-01", Category: "Materials", Drivers: []string{}, Vendors: []string{}, EvidenceLinks: []string{}}}
	orders := []entity.ChangeOrderRow{
		{ProjectID: sp("P1"), CoID: sp("CO-1"), Date: sp("2024-01-15"), Category: sp("Materials"), Description: sp("Extra tiles"), LinkedCostCode: sp("CC1"), FileLink: sp("https://x/co1.pdf")},
		{ProjectID: sp("P1"), CoID: sp("CO-2"), Date: sp("2024-02-01"), Category: sp("Materials"), Description: sp("Next month")},
		{ProjectID: sp("P1"), CoID: sp("CO-3"), Date: sp("2024-01-20"), LinkedCostCode: sp("CC1"), VendorName: sp("Gamma")},
		{ProjectID: sp("P2"), CoID: sp("CO-4"), Date: sp("2024-01-10"), Category: sp("Materials")},
		{ProjectID: sp("P1"), CoID: sp("CO-5"), Date: sp("not a date"), Category: sp("Materials")},
		{ProjectID: sp("P1"), CoID: sp("CO-6"), Category: sp("Materials")},
		{ProjectID: sp("P1"), CoID: sp("CO-7"), Date: sp("2024-01-31"), Category: sp("Labour")},
		{ProjectID: sp("P1"), CoID: sp("CO-8"), Date: sp("2024-01-02"), Category: sp("materials"), FileLink: sp("https://x/co1.pdf")},
	}
	vendors := entity.NewVendorMap([]entity.VendorMapEntry{
		{ProjectID: "P1", CostCode: "CC1", VendorName: "Beta"},
		{ProjectID: "P1", CostCode: "CC1", VendorName: "Alpha"},
	})
	cats := entity.CategoryMap{"CC1": "Materials"}

	got := AttachDrivers(items, orders, vendors, cats)
	wantDrivers := []string{"CO-1: Extra tiles", "CO-3: Change Order CO-3", "CO-8: Change Order CO-8"}
	if len(got[0].Drivers) != len(wantDrivers) {
		t.Fatalf("drivers = %v, want %v", got[0].Drivers, wantDrivers)
	}
	for i, d := range wantDrivers {
		if got[0].Drivers[i] != d {
			t.Errorf("drivers[%d] = %q, want %q", i, got[0].Drivers[i], d)
		}
	}
	if want := []string{"Alpha", "Beta", "Gamma"}; !equal(got[0].Vendors, want) {
		t.Errorf("vendors = %v, want %v", got[0].Vendors, want)
	}
	if len(got[0].EvidenceLinks) != 1 {
		t.Errorf("evidence = %v, want one deduplicated link", got[0].EvidenceLinks)
	}
	if len(items[0].Drivers) != 0 {
		t.Error("input items must not be modified")
	}
}

func TestAttachDriversUnparseablePeriod(t *testing.T) {
	items := []entity.VarianceItem{{ProjectID: "P1", Period: "Q1 FY24", Category: "Materials"}}
	orders := []entity.ChangeOrderRow{{ProjectID: sp("P1"), CoID: sp("CO-1"), Date: sp("2024-01-15"), Category: sp("Materials")}}
	got := AttachDrivers(items, orders, nil, nil)
	if len(got[0].Drivers) != 0 || got[0].Vendors == nil {
		t.Errorf("got %+v", got[0])
	}
}

func TestBuildBudgetActualRows(t *testing.T) {
	r := rules.Default()
	grid := [][]string{
		{"Project", "Period", "Cost Code", "Category", "Budget (SAR)", "Actual (SAR)"},
		{"P1", "2024-01", "CC1", "Materials", "1,000", "1,200"},
		{"P1", "Jan 2024", "CC2", "", "SAR 500", "(50)"},
		{"P1", "2024-01", "CC3", "", "", "300"},
		{"Total", "", "", "", "1,500", "1,150"},
	}
	f := tabular.Prepare("Budget", grid, r)
	rows := BuildBudgetActualRows(f, r)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2: %+v", len(rows), rows)
	}
	if rows[0].Budget != 1000 || rows[0].Actual != 1200 || rows[0].Category != "Materials" {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[1].Period != "2024-01" || rows[1].Actual != -50 || rows[1].Currency != "SAR" {
		t.Errorf("rows[1] = %+v", rows[1])
	}
}

func TestBuildChangeOrderRows(t *testing.T) {
	r := rules.Default()
	grid := [][]string{
		{"CO ID", "Project", "Date", "Amount", "Description", "Linked Cost Code"},
		{"CO-1", "P1", "15/01/2024", "5,000", "Extra tiles", "CC1"},
		{"CO-2", "", "", "", "", ""},
	}
	rows := BuildChangeOrderRows(tabular.Prepare("COs", grid, r), r)
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Date == nil || *rows[0].Date != "2024-01-15" {
		t.Errorf("date = %v", rows[0].Date)
	}
	if rows[0].Amount == nil || *rows[0].Amount != 5000 {
		t.Errorf("amount = %v", rows[0].Amount)
	}
	if rows[1].ProjectID != nil || rows[1].Amount != nil || rows[1].Date != nil {
		t.Errorf("missing values should stay nil: %+v", rows[1])
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
