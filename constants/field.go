package constants

// Field is a canonical column name produced by column mapping.
type Field string

const (
	FieldBudget         Field = "budget"
	FieldActual         Field = "actual"
	FieldVendorName     Field = "vendor_name"
	FieldItemCode       Field = "item_code"
	FieldQty            Field = "qty"
	FieldUnitPrice      Field = "unit_price"
	FieldAmount         Field = "amount"
	FieldDescription    Field = "description"
	FieldProjectID      Field = "project_id"
	FieldPeriod         Field = "period"
	FieldCostCode       Field = "cost_code"
	FieldCategory       Field = "category"
	FieldDate           Field = "date"
	FieldCoID           Field = "co_id"
	FieldLinkedCostCode Field = "linked_cost_code"
	FieldFileLink       Field = "file_link"
	FieldCurrency       Field = "currency"
	FieldVatRate        Field = "vat_rate"
	FieldTrade          Field = "trade"
	FieldContractID     Field = "contract_id"
)

func (f Field) String() string { return string(f) }
