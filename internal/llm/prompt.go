package llm

import (
	"strings"
)

// BuildSystemPrompt composes the system message for line-item extraction.
func BuildSystemPrompt(req ExtractRequest) string {
	defCur := strings.TrimSpace(req.DefaultCurrency)
	if defCur == "" {
		defCur = "SAR"
	}
	parts := []string{
		"You extract priced line items from procurement documents (quotations, invoices, BOQs). Return ONLY JSON that matches the provided JSON Schema.",
		"Copy item codes and descriptions exactly as written; text may be Arabic or English.",
		"qty, unit_price and total are plain numbers without thousands separators or currency symbols.",
		"Only report values printed in the text. Never compute, estimate or guess a missing value; omit it instead.",
		"Currency is a 3-letter ISO 4217 code and only when the text states one (" + defCur + " is the usual case).",
		"Never output null. If a field is not present, omit it.",
		"If no priced items appear, return {\"items\": []}.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt frames the document text, cut to maxChars runes when positive.
func BuildUserPrompt(req ExtractRequest) string {
	text := req.Text
	if req.MaxChars > 0 {
		if r := []rune(text); len(r) > req.MaxChars {
			text = string(r[:req.MaxChars])
		}
	}
	var b strings.Builder
	if req.FilenameHint != "" {
		b.WriteString("Filename: ")
		b.WriteString(req.FilenameHint)
		b.WriteString("\n\n")
	}
	b.WriteString("Document text:\n")
	b.WriteString(text)
	return b.String()
}
