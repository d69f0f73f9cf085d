package constants

// Schema is the per-sheet classification outcome.
type Schema string

const (
	SchemaBudgetActual    Schema = "budget_actual"
	SchemaQuoteCompare    Schema = "quote_compare"
	SchemaProcurementLine Schema = "procurement_line"
	SchemaChangeOrder     Schema = "change_order"
	SchemaUnclassified    Schema = "unclassified"
)

// Mode is the shape of the result returned for one document.
type Mode string

const (
	ModeVariance     Mode = "variance"
	ModeProcurement  Mode = "procurement"
	ModeQuoteCompare Mode = "quote_compare"
	ModeUnclassified Mode = "unclassified"
)

// Source tags record which path produced a procurement line.
const (
	SourceTable        = "table"
	SourceItemBlocks   = "text_item_blocks"
	SourceTriplet      = "text_numeric_triplet"
	SourceTwoAmounts   = "text_two_amounts"
	SourceLLM          = "llm"
	SourceBudgetBlocks = "text_budget_blocks"
)
