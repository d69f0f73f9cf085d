package tabular

import (
	"strings"

	"github.com/joseph-ayodele/variance-drafts/internal/rules"
)

// PromoteHeader returns the index of the header row: the first of the
// leading rows with at least MinHeaderCues cue-bearing cells, otherwise the
// first non-blank row. It returns -1 for a grid with no content.
func PromoteHeader(grid [][]string, r *rules.Rules) int {
	limit := min(r.HeaderScanRows, len(grid))
	for i := 0; i < limit; i++ {
		if HeaderScore(grid[i], r) >= r.MinHeaderCues {
			return i
		}
	}
	for i, row := range grid {
		if !isBlankRow(row) {
			return i
		}
	}
	return -1
}

// HeaderScore counts the cells of row containing at least one header cue.
func HeaderScore(row []string, r *rules.Rules) int {
	score := 0
	for _, cell := range row {
		n := rules.NormalizeHeader(cell)
		if n == "" {
			continue
		}
		for _, cue := range r.HeaderCues {
			if cue != "" && strings.Contains(n, cue) {
				score++
				break
			}
		}
	}
	return score
}
