package loader

import (
	"bytes"
	"fmt"
	"os"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/variance-drafts/internal/common"
)

func loadXLSX(content []byte) (Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return Document{}, fmt.Errorf("%w: xlsx: %v", common.ErrMalformedInput, err)
	}
	defer func() { _ = f.Close() }()

	doc := Document{Method: MethodXLSX}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("sheet %q: %v", name, err))
			continue
		}
		doc.Sheets = append(doc.Sheets, Sheet{Name: name, Rows: rows})
	}
	return doc, nil
}

// loadXLS reads legacy BIFF workbooks. The reader only opens paths, so the
// bytes go through a temp file.
func loadXLS(content []byte) (doc Document, err error) {
	tmp, err := os.CreateTemp("", "variance-*.xls")
	if err != nil {
		return Document{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return Document{}, err
	}
	_ = tmp.Close()

	defer func() {
		if r := recover(); r != nil {
			doc, err = Document{}, fmt.Errorf("%w: xls: %v", common.ErrMalformedInput, r)
		}
	}()
	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return Document{}, fmt.Errorf("%w: xls: %v", common.ErrMalformedInput, err)
	}

	doc = Document{Method: MethodXLS}
	for i := 0; i < book.GetNumberSheets(); i++ {
		sheet, err := book.GetSheet(i)
		if err != nil || sheet == nil {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("sheet %d unreadable", i))
			continue
		}
		var rows [][]string
		for _, row := range sheet.GetRows() {
			var cells []string
			for _, col := range row.GetCols() {
				cells = append(cells, col.GetString())
			}
			rows = append(rows, cells)
		}
		doc.Sheets = append(doc.Sheets, Sheet{Name: sheet.GetName(), Rows: rows})
	}
	return doc, nil
}
