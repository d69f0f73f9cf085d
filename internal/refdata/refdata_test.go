package refdata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/variance-drafts/internal/common"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
)

func doc(name, body string) entity.RawDocument {
	return entity.RawDocument{Filename: name, Content: []byte(body)}
}

func TestCategoryMap(t *testing.T) {
	l := New(nil, nil, nil)
	m, err := l.CategoryMap(context.Background(), doc("categories.csv",
		"Cost Code,Category\nCC-100,  Site   Works \nCC-200,Materials\nTotal,\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 {
		t.Fatalf("map = %v", m)
	}
	if got, _ := m.Lookup("cc-100"); got != "Site Works" {
		t.Errorf("cc-100 = %q", got)
	}
}

func TestCategoryMapMissingColumns(t *testing.T) {
	_, err := New(nil, nil, nil).CategoryMap(context.Background(), doc("bad.csv", "Name,Phone\nSara,0500\n"))
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestVendorMapFromWorkbook(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"Project", "Cost Code", "Vendor", "Trade"},
		{"P1", "CC-100", "Acme Doors", "Joinery"},
		{"P1", "CC-100", "Beta Est", ""},
		{"P2", "CC-100", "Gamma", ""},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "vendors.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	raw, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	l := New(nil, nil, nil)
	entries, err := l.VendorEntries(context.Background(), raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 || entries[0].Trade == nil || *entries[0].Trade != "Joinery" || entries[1].Trade != nil {
		t.Fatalf("entries = %+v", entries)
	}
	vm, err := l.VendorMap(context.Background(), raw)
	if err != nil {
		t.Fatal(err)
	}
	if got := vm.Lookup("P1", "cc-100"); len(got) != 2 || got[0] != "Acme Doors" {
		t.Errorf("lookup = %v", got)
	}
}

func TestChangeOrders(t *testing.T) {
	body := "CO ID,Project,Date,Linked Cost Code,Description,File Link\n" +
		"CO-1,P1,15/01/2024,CC-100,Extra tiles,https://files/co1.pdf\n" +
		"CO-2,P1,,CC-200,,\n"
	orders, err := New(nil, nil, nil).ChangeOrders(context.Background(), doc("cos.csv", body))
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Fatalf("orders = %+v", orders)
	}
	co := orders[0]
	if *co.CoID != "CO-1" || *co.Date != "2024-01-15" || *co.LinkedCostCode != "CC-100" || *co.FileLink != "https://files/co1.pdf" {
		t.Errorf("first = %+v", co)
	}
	if orders[1].Date != nil || orders[1].Description != nil {
		t.Errorf("second invented values: %+v", orders[1])
	}
}

func TestRejectsTextDocuments(t *testing.T) {
	_, err := New(nil, nil, nil).CategoryMap(context.Background(), doc("notes.txt", "cost code CC-1 is materials"))
	if !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Errorf("err = %v", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "none.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v", err)
	}
}
