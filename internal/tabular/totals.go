package tabular

import (
	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
)

var labelFields = []constants.Field{
	constants.FieldItemCode,
	constants.FieldDescription,
	constants.FieldProjectID,
	constants.FieldCostCode,
	constants.FieldCategory,
	constants.FieldVendorName,
}

// IsTotalRow reports whether a row is a summary line such as "Grand Total"
// rather than a data row. The first column and identifying fields are checked.
func (f *Frame) IsTotalRow(row map[string]string, r *rules.Rules) bool {
	if len(f.Columns) > 0 && r.IsTotalLabel(row[f.Columns[0]]) {
		return true
	}
	for _, field := range labelFields {
		if r.IsTotalLabel(f.Value(row, field)) {
			return true
		}
	}
	return false
}
