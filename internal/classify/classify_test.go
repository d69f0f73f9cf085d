package classify

import (
	"testing"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
	"github.com/joseph-ayodele/variance-drafts/internal/tabular"
)

func frame(t *testing.T, name string, grid [][]string) *tabular.Frame {
	t.Helper()
	f := tabular.Prepare(name, grid, rules.Default())
	if f == nil {
		t.Fatalf("Prepare(%s) returned nil", name)
	}
	return f
}

func TestSchema(t *testing.T) {
	tests := []struct {
		name string
		grid [][]string
		want constants.Schema
	}{
		{
			name: "budget actual",
			grid: [][]string{{"Project", "Period", "Cost Code", "Budget", "Actual"}, {"P1", "2024-01", "CC1", "100", "120"}},
			want: constants.SchemaBudgetActual,
		},
		{
			name: "budget only is not variance",
			grid: [][]string{{"Project", "Budget", "Notes"}, {"P1", "100", "x"}},
			want: constants.SchemaUnclassified,
		},
		{
			name: "multi vendor quote",
			grid: [][]string{{"Vendor", "Description", "Unit Price"}, {"A", "Door", "100"}, {"B", "Door", "120"}},
			want: constants.SchemaQuoteCompare,
		},
		{
			name: "single vendor lines are procurement",
			grid: [][]string{{"Vendor", "Description", "Unit Price"}, {"A", "Door", "100"}, {"A", "Frame", "20"}},
			want: constants.SchemaProcurementLine,
		},
		{
			name: "item codes without description are procurement",
			grid: [][]string{{"Vendor", "Item Code", "Unit Price"}, {"A", "D01", "100"}, {"B", "D01", "120"}},
			want: constants.SchemaProcurementLine,
		},
		{
			name: "lines without vendor",
			grid: [][]string{{"Item Code", "Qty", "Amount"}, {"D01", "2", "300"}},
			want: constants.SchemaProcurementLine,
		},
		{
			name: "change orders",
			grid: [][]string{{"CO ID", "Project", "Date", "Amount", "Description"}, {"CO-1", "P1", "2024-01-15", "5000", "Extra"}},
			want: constants.SchemaChangeOrder,
		},
		{
			name: "nothing recognisable",
			grid: [][]string{{"Name", "Phone"}, {"Sara", "0500"}},
			want: constants.SchemaUnclassified,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Schema(frame(t, "s", tt.grid), 0); got != tt.want {
				t.Errorf("Schema = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWorkbookVendorsAcrossSheets(t *testing.T) {
	a := frame(t, "Alpha", [][]string{{"Vendor: Alpha Co"}, {"Item", "Description", "Unit Price"}, {"D01", "Door", "100"}})
	b := frame(t, "Beta", [][]string{{"Supplier: Beta Est"}, {"Item", "Description", "Unit Price"}, {"D01", "Door", "120"}})

	if got := Schema(a, 0); got != constants.SchemaProcurementLine {
		t.Fatalf("alone = %s, want procurement_line", got)
	}
	sheets := Workbook([]*tabular.Frame{a, b}, rules.Default())
	for _, s := range sheets {
		if s.Schema != constants.SchemaQuoteCompare {
			t.Errorf("%s = %s, want quote_compare", s.Frame.Name, s.Schema)
		}
	}
	if got := Decide(sheets); got != constants.ModeQuoteCompare {
		t.Errorf("Decide = %s", got)
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		sheets []Sheet
		want   constants.Mode
	}{
		{"variance wins", []Sheet{{Schema: constants.SchemaProcurementLine}, {Schema: constants.SchemaBudgetActual}}, constants.ModeVariance},
		{"quote over procurement", []Sheet{{Schema: constants.SchemaProcurementLine}, {Schema: constants.SchemaQuoteCompare}}, constants.ModeQuoteCompare},
		{"line items sheet", []Sheet{{Schema: constants.SchemaProcurementLine, Role: rules.RoleLineItems}}, constants.ModeQuoteCompare},
		{"procurement", []Sheet{{Schema: constants.SchemaProcurementLine}}, constants.ModeProcurement},
		{"change orders alone", []Sheet{{Schema: constants.SchemaChangeOrder}}, ""},
		{"nothing", []Sheet{{Schema: constants.SchemaUnclassified}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.sheets); got != tt.want {
				t.Errorf("Decide = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModesKeepsFallbacks(t *testing.T) {
	sheets := []Sheet{{Schema: constants.SchemaBudgetActual}, {Schema: constants.SchemaQuoteCompare}, {Schema: constants.SchemaProcurementLine}}
	got := Modes(sheets)
	want := []constants.Mode{constants.ModeVariance, constants.ModeQuoteCompare, constants.ModeProcurement}
	if len(got) != len(want) {
		t.Fatalf("Modes = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Modes[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if m := Modes([]Sheet{{Schema: constants.SchemaUnclassified}}); len(m) != 0 {
		t.Errorf("Modes = %v", m)
	}
}

func TestDecideTotalsSheetAlone(t *testing.T) {
	r := rules.Default()
	f := frame(t, "price_comparison_totals", [][]string{{"Vendor", "Grand Total"}, {"Acme", "1,000"}, {"Beta", "1,200"}})
	sheets := Workbook([]*tabular.Frame{f}, r)
	if sheets[0].Role != rules.RoleTotals {
		t.Fatalf("role = %v", sheets[0].Role)
	}
	if got := Decide(sheets); got != constants.ModeQuoteCompare {
		t.Errorf("Decide = %q", got)
	}
}
