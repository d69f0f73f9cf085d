package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/variance-drafts/constants"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Unit Rate (SAR)", "unit rate sar"},
		{"  Budget_SAR ", "budget sar"},
		{"Period (YYYY-MM)", "period yyyy mm"},
		{"Cost-to-Date", "cost to date"},
		{"ＱＴＹ", "qty"},
		{"الميزانية", "الميزانية"},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeHeader(tt.in); got != tt.want {
				t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDefaultRules(t *testing.T) {
	r := Default()
	if r.HeaderScanRows != 10 || r.MinHeaderCues != 2 {
		t.Errorf("scan defaults = %d/%d", r.HeaderScanRows, r.MinHeaderCues)
	}
	for _, f := range []constants.Field{
		constants.FieldBudget, constants.FieldActual, constants.FieldVendorName, constants.FieldItemCode,
		constants.FieldQty, constants.FieldUnitPrice, constants.FieldAmount, constants.FieldDescription,
		constants.FieldProjectID, constants.FieldPeriod, constants.FieldCostCode, constants.FieldCategory,
	} {
		if len(r.Synonyms[f]) == 0 {
			t.Errorf("no synonyms for %s", f)
		}
	}
	found := false
	for _, s := range r.Synonyms[constants.FieldActual] {
		if s == "cost to date" {
			found = true
		}
	}
	if !found {
		t.Error("actual synonyms should be normalized (cost to date)")
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	body := "synonyms:\n  budget: [forecast]\nheader_scan_rows: 5\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := r.Synonyms[constants.FieldBudget]; len(got) != 1 || got[0] != "forecast" {
		t.Errorf("budget synonyms = %v", got)
	}
	if len(r.Synonyms[constants.FieldActual]) == 0 {
		t.Error("actual synonyms should keep defaults")
	}
	if r.HeaderScanRows != 5 {
		t.Errorf("HeaderScanRows = %d, want 5", r.HeaderScanRows)
	}
	if r.MinHeaderCues != 2 {
		t.Errorf("MinHeaderCues = %d, want default 2", r.MinHeaderCues)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLabelsAndRoles(t *testing.T) {
	r := Default()
	if !r.IsTotalLabel("Grand Total:") {
		t.Error("Grand Total should be a total label")
	}
	if r.IsTotalLabel("Total doors supply") {
		t.Error("descriptive text is not a total label")
	}
	if !r.IsVendorLabel("Supplier") {
		t.Error("Supplier should be a vendor label")
	}
	if got := r.SheetRole("Price_Comparison_Totals"); got != RoleTotals {
		t.Errorf("SheetRole = %v, want totals", got)
	}
	if got := r.SheetRole("line_items"); got != RoleLineItems {
		t.Errorf("SheetRole = %v, want line items", got)
	}
	if got := r.SheetRole("Sheet1"); got != RoleNone {
		t.Errorf("SheetRole = %v, want none", got)
	}
}

func TestItemCodeDeny(t *testing.T) {
	r := Default()
	for _, code := range []string{"Q1", "q4", "H2", "FY24", "FY-2024"} {
		if !r.IsDeniedItemCode(code) {
			t.Errorf("%s should be denied", code)
		}
	}
	for _, code := range []string{"D01", "Q12", "FY", "H3"} {
		if r.IsDeniedItemCode(code) {
			t.Errorf("%s should be allowed", code)
		}
	}
	if _, err := Parse([]byte("item_code_deny: ['(']")); err == nil {
		t.Error("expected error for bad pattern")
	}
}
