package textfallback

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/calendar"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/numeric"
	"github.com/joseph-ayodele/variance-drafts/internal/quotes"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
)

const (
	amountPattern = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`
	sarSuffix     = `(?:\s*\(?\s*(?:in\s*)?(?:sar|sr)\s*\)?)?`
)

var (
	reItemMarker = regexp.MustCompile(`(?i)\b(Item\s*No\.?\s*:?\s*\d+|[A-Z]{1,3}-?\d{1,4})\b`)
	reQtyLabel   = regexp.MustCompile(`(?i)\b(?:qty|quantity)\s*[:=]?\s*(\d+(?:\.\d+)?)`)
	reQtyUnit    = regexp.MustCompile(`(?i)\b(\d{1,4})\s*(?:pcs|pieces|sets?|nos|units)\b`)
	reTotalLabel = regexp.MustCompile(`(?i)\b(?:grand\s*total|total(?:\s*price|\s*amount)?|amount)` + sarSuffix + `\s*[:=]?\s*(?:sar\s*)?` + amountPattern)
	reUnitLabel  = regexp.MustCompile(`(?i)\b(?:unit\s*price|unit\s*rate|u\.?\s*rate|price)` + sarSuffix + `\s*[:=]?\s*(?:sar\s*)?` + amountPattern)
	reDescCut    = regexp.MustCompile(`(?i)\b(?:qty|quantity|unit|u\.?\s*rate|rate|price|total|amount|\d{1,4}\s*(?:pcs|pieces|sets?|nos|units))\b`)
	reVendorLine = regexp.MustCompile(`(?im)^[ \t]*(?:vendor|supplier|quoted by|bidder)(?:\s*name)?[ \t]*[:\-][ \t]*(.+?)[ \t]*$`)
	reDocDate    = regexp.MustCompile(`(?i)\bdate\s*[:\-]?\s*(\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2}|\d{1,2}-\d{1,2}-\d{4})`)
	reVat        = regexp.MustCompile(`(?i)\bvat\b[^\n%]{0,20}?(\d{1,2}(?:\.\d+)?)\s*%`)
	reSAR        = regexp.MustCompile(`(?i)\bSAR\b|ر\.س`)
	reBullet     = regexp.MustCompile(`^[\s\d.)\-•*#]*$`)
	reDocTotal   = regexp.MustCompile(`(?i)^\W*(?:grand\s*total|sub\s*-?\s*total|net\s*total|total\s+(?:incl|excl|including|excluding|with|before|after)\b|vat\b)`)
)

// ItemCodeBlocks reads item-code markers (D01, Item No 3) at the start of a
// line and collects labeled qty, unit price and total values until the next
// marker or a document-level total such as "Grand Total". Rules supplies the
// period tokens that are never item codes; nil uses the defaults.
type ItemCodeBlocks struct {
	Rules *rules.Rules
}

func (ItemCodeBlocks) Name() string { return constants.SourceItemBlocks }

func (b ItemCodeBlocks) Extract(_ context.Context, text string) (Extraction, error) {
	r := orDefault(b.Rules)
	doc := documentFacts(text)
	var out Extraction
	var cur *itemChunk
	flush := func() {
		if cur == nil {
			return
		}
		if l, ok := cur.line(doc); ok {
			out.Lines = append(out.Lines, l)
		}
		cur = nil
	}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if code, rest, ok := leadingMarker(line, r); ok {
			flush()
			cur = &itemChunk{code: code, head: rest}
			continue
		}
		if cur == nil {
			continue
		}
		if reDocTotal.MatchString(line) {
			flush()
			continue
		}
		if strings.TrimSpace(line) != "" {
			cur.body = append(cur.body, line)
		}
	}
	flush()
	return out, nil
}

var defaultRules = sync.OnceValue(rules.Default)

func orDefault(r *rules.Rules) *rules.Rules {
	if r == nil {
		return defaultRules()
	}
	return r
}

type itemChunk struct {
	code string
	head string
	body []string
}

func (c *itemChunk) line(doc docFacts) (entity.ProcurementLine, bool) {
	text := c.head + "\n" + strings.Join(c.body, "\n")

	l := entity.ProcurementLine{
		ItemCode:   strPtr(c.code),
		Source:     constants.SourceItemBlocks,
		VendorName: doc.vendor,
		DocDate:    doc.date,
		Currency:   doc.currency,
		VatRate:    doc.vat,
	}
	if m := reTotalLabel.FindStringSubmatchIndex(text); m != nil {
		l.Amount = numeric.Ptr(text[m[2]:m[3]])
		text = text[:m[0]] + strings.Repeat(" ", m[1]-m[0]) + text[m[1]:]
	}
	if m := reUnitLabel.FindStringSubmatch(text); m != nil {
		l.UnitPrice = numeric.Ptr(m[1])
	}
	if m := reQtyLabel.FindStringSubmatch(text); m != nil {
		l.Quantity = numeric.Ptr(m[1])
	} else if m := reQtyUnit.FindStringSubmatch(text); m != nil {
		l.Quantity = numeric.Ptr(m[1])
	}
	if l.Quantity == nil && l.UnitPrice == nil && l.Amount == nil {
		return entity.ProcurementLine{}, false
	}
	l.Description = strPtr(description(c.head))
	return quotes.DeriveAmount(l), true
}

// leadingMarker finds an item marker at the start of a line, after at most
// a bullet or list number.
func leadingMarker(line string, r *rules.Rules) (code, rest string, ok bool) {
	m := reItemMarker.FindStringSubmatchIndex(line)
	if m == nil || !reBullet.MatchString(line[:m[0]]) {
		return "", "", false
	}
	code = strings.Join(strings.Fields(line[m[2]:m[3]]), " ")
	if isUnitWord(code) || r.IsDeniedItemCode(code) {
		return "", "", false
	}
	return code, line[m[1]:], true
}

// isUnitWord rejects tokens like "SAR100" that are amounts, not item codes.
func isUnitWord(code string) bool {
	u := strings.ToUpper(code)
	for _, p := range []string{"SAR", "SR", "USD", "VAT", "QTY"} {
		if strings.HasPrefix(u, p) {
			return true
		}
	}
	return false
}

func description(head string) string {
	if loc := reDescCut.FindStringIndex(head); loc != nil {
		head = head[:loc[0]]
	}
	return strings.Trim(strings.Join(strings.Fields(head), " "), " -–:|.,")
}

type docFacts struct {
	vendor   *string
	date     *string
	currency *string
	vat      *float64
}

func documentFacts(text string) docFacts {
	var d docFacts
	if m := reVendorLine.FindStringSubmatch(text); m != nil {
		d.vendor = strPtr(m[1])
	}
	if m := reDocDate.FindStringSubmatch(text); m != nil {
		s := m[1]
		if t, ok := calendar.ParseDate(s); ok {
			s = t.Format("2006-01-02")
		}
		d.date = &s
	}
	if reSAR.MatchString(text) {
		s := constants.DefaultCurrency
		d.currency = &s
	}
	if m := reVat.FindStringSubmatch(text); m != nil {
		d.vat = numeric.Ptr(m[1])
	}
	return d
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
