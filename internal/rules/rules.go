package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/variance-drafts/constants"
)

//go:embed default_rules.yaml
var defaultYAML []byte

// Rules is the read-only vocabulary used by header promotion, column mapping,
// classification and preamble scans. Values are shared; callers must not mutate them.
type Rules struct {
	FieldOrder      []constants.Field            `yaml:"field_order"`
	Synonyms        map[constants.Field][]string `yaml:"synonyms"`
	HeaderCues      []string                     `yaml:"header_cues"`
	VendorLabels    []string                     `yaml:"vendor_labels"`
	TotalRowLabels  []string                     `yaml:"total_row_labels"`
	HeaderScanRows  int                          `yaml:"header_scan_rows"`
	MinHeaderCues   int                          `yaml:"min_header_cues"`
	VendorScanRows  int                          `yaml:"vendor_scan_rows"`
	VendorScanCols  int                          `yaml:"vendor_scan_cols"`
	TotalsSheets    []string                     `yaml:"totals_sheets"`
	LineItemSheets  []string                     `yaml:"line_item_sheets"`
	HighlightSheets []string                     `yaml:"highlight_sheets"`
	MaxHighlights   int                          `yaml:"max_highlights"`

	// ItemCodeDeny holds patterns for tokens shaped like item codes that name
	// periods instead (Q1, FY24). Each must match the whole token.
	ItemCodeDeny []string `yaml:"item_code_deny"`

	itemCodeDeny []*regexp.Regexp
}

// Default returns the built-in vocabulary.
func Default() *Rules {
	r, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("rules: embedded defaults: %v", err))
	}
	return r
}

// Parse decodes a YAML rules document.
func Parse(b []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	r.normalize()
	if err := r.compile(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rules) compile() error {
	r.itemCodeDeny = r.itemCodeDeny[:0]
	for _, p := range r.ItemCodeDeny {
		re, err := regexp.Compile(`(?i)^(?:` + p + `)$`)
		if err != nil {
			return fmt.Errorf("item_code_deny %q: %w", p, err)
		}
		r.itemCodeDeny = append(r.itemCodeDeny, re)
	}
	return nil
}

// Load reads a YAML file and overlays it on the defaults. Keys absent from
// the file keep their default values; synonym lists replace per field.
func Load(path string) (*Rules, error) {
	base := Default()
	if strings.TrimSpace(path) == "" {
		return base, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	over, err := Parse(b)
	if err != nil {
		return nil, err
	}
	base.merge(over)
	return base, nil
}

func (r *Rules) merge(o *Rules) {
	if len(o.FieldOrder) > 0 {
		r.FieldOrder = o.FieldOrder
	}
	for f, syn := range o.Synonyms {
		r.Synonyms[f] = syn
		if !containsField(r.FieldOrder, f) {
			r.FieldOrder = append(r.FieldOrder, f)
		}
	}
	overlay := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	overlay(&r.HeaderCues, o.HeaderCues)
	overlay(&r.VendorLabels, o.VendorLabels)
	overlay(&r.TotalRowLabels, o.TotalRowLabels)
	overlay(&r.TotalsSheets, o.TotalsSheets)
	overlay(&r.LineItemSheets, o.LineItemSheets)
	overlay(&r.HighlightSheets, o.HighlightSheets)
	if len(o.ItemCodeDeny) > 0 {
		r.ItemCodeDeny, r.itemCodeDeny = o.ItemCodeDeny, o.itemCodeDeny
	}
	if o.HeaderScanRows > 0 {
		r.HeaderScanRows = o.HeaderScanRows
	}
	if o.MinHeaderCues > 0 {
		r.MinHeaderCues = o.MinHeaderCues
	}
	if o.VendorScanRows > 0 {
		r.VendorScanRows = o.VendorScanRows
	}
	if o.VendorScanCols > 0 {
		r.VendorScanCols = o.VendorScanCols
	}
	if o.MaxHighlights > 0 {
		r.MaxHighlights = o.MaxHighlights
	}
}

func (r *Rules) normalize() {
	if r.Synonyms == nil {
		r.Synonyms = map[constants.Field][]string{}
	}
	for f, syn := range r.Synonyms {
		out := make([]string, 0, len(syn))
		for _, s := range syn {
			if n := NormalizeHeader(s); n != "" {
				out = append(out, n)
			}
		}
		r.Synonyms[f] = out
	}
	for i, c := range r.HeaderCues {
		r.HeaderCues[i] = NormalizeHeader(c)
	}
	for i, c := range r.VendorLabels {
		r.VendorLabels[i] = NormalizeHeader(c)
	}
	for i, c := range r.TotalRowLabels {
		r.TotalRowLabels[i] = NormalizeHeader(c)
	}
	if r.HeaderScanRows <= 0 {
		r.HeaderScanRows = 10
	}
	if r.MinHeaderCues <= 0 {
		r.MinHeaderCues = 2
	}
	if r.VendorScanRows <= 0 {
		r.VendorScanRows = 10
	}
	if r.VendorScanCols <= 0 {
		r.VendorScanCols = 10
	}
	if r.MaxHighlights <= 0 {
		r.MaxHighlights = 20
	}
}

// IsTotalLabel reports whether a cell reads like a totals row label.
func (r *Rules) IsTotalLabel(cell string) bool {
	n := NormalizeHeader(cell)
	if n == "" {
		return false
	}
	for _, l := range r.TotalRowLabels {
		if n == l {
			return true
		}
	}
	return false
}

// IsDeniedItemCode reports whether an item-code-shaped token is listed as a
// period or other non-item word.
func (r *Rules) IsDeniedItemCode(code string) bool {
	code = strings.TrimSpace(code)
	for _, re := range r.itemCodeDeny {
		if re.MatchString(code) {
			return true
		}
	}
	return false
}

// IsVendorLabel reports whether normalized text is a vendor label.
func (r *Rules) IsVendorLabel(text string) bool {
	n := NormalizeHeader(text)
	for _, l := range r.VendorLabels {
		if n == l {
			return true
		}
	}
	return false
}

// SheetRole reports which workbook convention a sheet name follows.
func (r *Rules) SheetRole(name string) SheetRole {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case matchName(r.LineItemSheets, n):
		return RoleLineItems
	case matchName(r.TotalsSheets, n):
		return RoleTotals
	case matchName(r.HighlightSheets, n):
		return RoleHighlights
	default:
		return RoleNone
	}
}

// SheetRole names the workbook conventions for quote comparison exports.
type SheetRole int

const (
	RoleNone SheetRole = iota
	RoleLineItems
	RoleTotals
	RoleHighlights
)

func matchName(names []string, n string) bool {
	for _, s := range names {
		if strings.ToLower(strings.TrimSpace(s)) == n {
			return true
		}
	}
	return false
}

func containsField(fs []constants.Field, f constants.Field) bool {
	for _, x := range fs {
		if x == f {
			return true
		}
	}
	return false
}
