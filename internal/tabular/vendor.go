package tabular

import (
	"strings"

	"github.com/joseph-ayodele/variance-drafts/internal/rules"
)

// DetectVendorHint scans the top-left corner of a sheet for a vendor label
// such as "Vendor: AL AZAL" or a "Supplier" cell followed by a name cell.
// The header row is ignored. An empty result means no label was found.
func DetectVendorHint(grid [][]string, headerRow int, r *rules.Rules) string {
	rows := min(r.VendorScanRows, len(grid))
	for i := 0; i < rows; i++ {
		if i == headerRow {
			continue
		}
		row := grid[i]
		cols := min(r.VendorScanCols, len(row))
		for j := 0; j < cols; j++ {
			cell := strings.TrimSpace(row[j])
			if cell == "" {
				continue
			}
			label, value, hasColon := splitLabel(cell)
			if !r.IsVendorLabel(label) {
				continue
			}
			if hasColon && value != "" {
				return value
			}
			if next := nextNonEmpty(row, j+1); next != "" {
				return next
			}
		}
	}
	return ""
}

func splitLabel(cell string) (label, value string, ok bool) {
	for _, sep := range []string{":", "：", "-"} {
		if i := strings.Index(cell, sep); i > 0 {
			return strings.TrimSpace(cell[:i]), strings.Join(strings.Fields(cell[i+len(sep):]), " "), true
		}
	}
	return cell, "", false
}

func nextNonEmpty(row []string, from int) string {
	for k := from; k < len(row); k++ {
		if v := strings.Join(strings.Fields(row[k]), " "); v != "" {
			return v
		}
	}
	return ""
}
