package textfallback

import (
	"context"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/calendar"
	"github.com/joseph-ayodele/variance-drafts/internal/numeric"
)

const numberPattern = `\(?-?\d[\d,]*(?:\.\d+)?\)?`

var (
	reBlockSplit = regexp.MustCompile(`\n[ \t\r]*\n`)
	reBudget     = regexp.MustCompile(`(?i)(?:\bbudget(?:ed)?\b|\bplanned\b|الميزانية|الموازنة)[^\d\n(]{0,30}(` + numberPattern + `)`)
	reActual     = regexp.MustCompile(`(?i)(?:\bactuals?\b|\bspent\b|\bcost to date\b|المصروف|الفعلي)[^\d\n(]{0,30}(` + numberPattern + `)`)
	reContext    = regexp.MustCompile(`(?im)^[ \t]*(project(?: id)?|period|month|category|cost category)[ \t]*[:\-][ \t]*(.+?)[ \t]*$`)
)

// BudgetActualBlocks pairs a labeled budget amount with a labeled actual
// amount in the same paragraph. A block with only one of them yields nothing.
type BudgetActualBlocks struct{}

func (BudgetActualBlocks) Name() string { return constants.SourceBudgetBlocks }

func (BudgetActualBlocks) Extract(_ context.Context, text string) (Extraction, error) {
	var out Extraction
	for _, block := range reBlockSplit.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1) {
		b := reBudget.FindStringSubmatch(block)
		a := reActual.FindStringSubmatch(block)
		if b == nil || a == nil {
			continue
		}
		budget, okB := numeric.ParseString(b[1])
		actual, okA := numeric.ParseString(a[1])
		if !okB || !okA {
			continue
		}
		p := Pair{Budget: budget, Actual: actual, Label: blockLabel(block)}
		for _, m := range reContext.FindAllStringSubmatch(block, -1) {
			switch key := strings.ToLower(m[1]); {
			case strings.HasPrefix(key, "project"):
				p.ProjectID = m[2]
			case key == "period" || key == "month":
				p.Period = calendar.NormalizePeriod(m[2])
			default:
				p.Category = constants.NormalizeCategory(m[2])
			}
		}
		out.Pairs = append(out.Pairs, p)
	}
	return out, nil
}

// blockLabel is the block's first line when it is not itself an amount line.
func blockLabel(block string) string {
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if reBudget.MatchString(line) || reActual.MatchString(line) || reContext.MatchString(line) {
			return ""
		}
		return line
	}
	return ""
}
