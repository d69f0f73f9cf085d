package tabular

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
)

// MapColumns renames columns to canonical fields. Exact synonym matches are
// resolved first across all columns, then whole-word substring matches, where
// the longest matching synonym wins. Synonyms shorter than three characters
// match exactly only, so "co" never claims "Co. Name". A field is claimed by one column only;
// unmatched columns keep their original names.
func MapColumns(f *Frame, r *rules.Rules) *Frame {
	out := &Frame{
		Name:       f.Name,
		Preamble:   f.Preamble,
		HeaderRow:  f.HeaderRow,
		VendorHint: f.VendorHint,
		Mapping:    Mapping{},
	}
	norm := make([]string, len(f.Columns))
	for j, c := range f.Columns {
		norm[j] = rules.NormalizeHeader(c)
	}
	assigned := make([]constants.Field, len(f.Columns))
	claimed := map[constants.Field]bool{}

	for j, h := range norm {
		if h == "" {
			continue
		}
		for _, field := range r.FieldOrder {
			if claimed[field] || !exactMatch(h, r.Synonyms[field]) {
				continue
			}
			assigned[j] = field
			claimed[field] = true
			break
		}
	}

	for j, h := range norm {
		if h == "" || assigned[j] != "" {
			continue
		}
		best, bestLen := constants.Field(""), 0
		for _, field := range r.FieldOrder {
			if claimed[field] {
				continue
			}
			if n := longestWordMatch(h, r.Synonyms[field]); n > bestLen {
				best, bestLen = field, n
			}
		}
		if best != "" {
			assigned[j] = best
			claimed[best] = true
		}
	}

	cols := make([]string, len(f.Columns))
	for j, c := range f.Columns {
		if assigned[j] != "" {
			cols[j] = string(assigned[j])
			out.Mapping[assigned[j]] = c
		} else {
			cols[j] = c
		}
	}
	cols = dedupeAgainstCanonical(cols, assigned)
	out.Columns = cols

	out.Rows = make([]map[string]string, len(f.Rows))
	for i, rec := range f.Rows {
		m := make(map[string]string, len(cols))
		for j, c := range f.Columns {
			m[cols[j]] = rec[c]
		}
		out.Rows[i] = m
	}
	return out
}

func exactMatch(h string, syns []string) bool {
	for _, s := range syns {
		if s == h {
			return true
		}
	}
	return false
}

// minWordSynonym is the shortest synonym tried as a substring.
const minWordSynonym = 3

func longestWordMatch(h string, syns []string) int {
	padded := " " + h + " "
	best := 0
	for _, s := range syns {
		if utf8.RuneCountInString(s) < minWordSynonym || len(s) <= best {
			continue
		}
		if strings.Contains(padded, " "+s+" ") {
			best = len(s)
		}
	}
	return best
}

// dedupeAgainstCanonical renames unmapped originals that collide with a
// canonical name already in use.
func dedupeAgainstCanonical(cols []string, assigned []constants.Field) []string {
	used := map[string]bool{}
	for j, c := range cols {
		if assigned[j] != "" {
			used[c] = true
		}
	}
	for j, c := range cols {
		if assigned[j] != "" {
			continue
		}
		name := c
		for n := 2; used[name]; n++ {
			name = c + "_" + strconv.Itoa(n)
		}
		used[name] = true
		cols[j] = name
	}
	return cols
}
