package entity

// ProcurementLine is one normalized quote or purchase line. Nil means unknown.
type ProcurementLine struct {
	ItemCode    *string  `json:"item_code"`
	Description *string  `json:"description"`
	Quantity    *float64 `json:"qty"`
	UnitPrice   *float64 `json:"unit_price"`
	Amount      *float64 `json:"amount_sar"`
	VendorName  *string  `json:"vendor_name"`
	DocDate     *string  `json:"doc_date"`
	Currency    *string  `json:"currency"`
	VatRate     *float64 `json:"vat_rate"`
	Source      string   `json:"source"`
	Sheet       string   `json:"sheet,omitempty"`
}

// QuoteSpreadRow compares the cheapest and dearest vendor for one item.
// QtyTotal is nil when no vendor quoted a quantity.
type QuoteSpreadRow struct {
	ItemKey      string   `json:"item_key"`
	ItemCode     *string  `json:"item_code"`
	Description  *string  `json:"description"`
	QtyTotal     *float64 `json:"qty_total"`
	MinVendor    string   `json:"min_vendor"`
	MinUnitPrice float64  `json:"min_unit_price"`
	MaxVendor    string   `json:"max_vendor"`
	MaxUnitPrice float64  `json:"max_unit_price"`
	UnitSpread   float64  `json:"unit_spread"`
	SpreadPct    float64  `json:"spread_pct"`
	TotalSpread  float64  `json:"total_spread"`
	VendorCount  int      `json:"vendor_count"`
}

// BestMixPick is the vendor chosen for one item in the best mix.
type BestMixPick struct {
	ItemKey   string  `json:"item_key"`
	Vendor    string  `json:"vendor"`
	UnitPrice float64 `json:"unit_price"`
	Qty       float64 `json:"qty"`
	Cost      float64 `json:"cost"`
}

// BestMixResult compares buying each item from its cheapest vendor with
// buying everything from the cheapest full-coverage vendor.
type BestMixResult struct {
	BestMixTotal         float64       `json:"best_mix_total"`
	CheapestSingleVendor *string       `json:"cheapest_single_vendor"`
	SingleVendorTotal    *float64      `json:"single_vendor_total"`
	EstimatedSavings     *float64      `json:"estimated_savings"`
	Items                int           `json:"items"`
	Picks                []BestMixPick `json:"picks"`
}

// VendorTotal is one vendor's quoted grand total.
type VendorTotal struct {
	Vendor string  `json:"vendor"`
	Total  float64 `json:"total"`
}

// ProcurementSummary describes a procurement result at a glance.
type ProcurementSummary struct {
	Lines       int      `json:"lines"`
	Vendors     []string `json:"vendors"`
	TotalAmount *float64 `json:"total_amount"`
}
