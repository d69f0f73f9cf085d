package entity

// BudgetActualRow is one source row of a budget-vs-actual sheet.
type BudgetActualRow struct {
	ProjectID string  `json:"project_id"`
	Period    string  `json:"period"`
	CostCode  string  `json:"cost_code"`
	Category  string  `json:"category,omitempty"`
	Budget    float64 `json:"budget_amount"`
	Actual    float64 `json:"actual_amount"`
	Currency  string  `json:"currency"`
}

// VarianceItem is a (project, period, category) group with its drivers.
type VarianceItem struct {
	ProjectID      string   `json:"project_id"`
	Period         string   `json:"period"`
	Category       string   `json:"category"`
	BudgetAmount   float64  `json:"budget_amount"`
	ActualAmount   float64  `json:"actual_amount"`
	VarianceAmount float64  `json:"variance_amount"`
	VariancePct    float64  `json:"variance_pct"`
	Drivers        []string `json:"drivers"`
	Vendors        []string `json:"vendors"`
	EvidenceLinks  []string `json:"evidence_links"`
}

// ChangeOrderRow is a change-order record. Every field is optional.
type ChangeOrderRow struct {
	ProjectID      *string  `json:"project_id"`
	CoID           *string  `json:"co_id"`
	Date           *string  `json:"date"`
	Amount         *float64 `json:"amount"`
	Category       *string  `json:"category"`
	Description    *string  `json:"description"`
	LinkedCostCode *string  `json:"linked_cost_code"`
	VendorName     *string  `json:"vendor_name"`
	FileLink       *string  `json:"file_link"`
}

// VendorMapEntry ties a vendor to a project cost code.
type VendorMapEntry struct {
	ProjectID  string  `json:"project_id"`
	CostCode   string  `json:"cost_code"`
	VendorName string  `json:"vendor_name"`
	Trade      *string `json:"trade,omitempty"`
	ContractID *string `json:"contract_id,omitempty"`
}
