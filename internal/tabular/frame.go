// Package tabular holds the sheet model and the header, vendor-preamble and
// column-mapping passes applied to every loaded sheet.
package tabular

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/variance-drafts/constants"
)

// Frame is one sheet after header promotion. Column names are unique.
type Frame struct {
	Name       string
	Columns    []string
	Rows       []map[string]string
	Preamble   [][]string
	HeaderRow  int
	VendorHint string
	Mapping    Mapping
}

// Mapping records which source header each canonical field was taken from.
type Mapping map[constants.Field]string

// FromGrid builds a frame using grid[headerRow] as the header. Rows above
// the header are kept as preamble; blank rows below it are dropped.
func FromGrid(name string, grid [][]string, headerRow int) *Frame {
	f := &Frame{Name: name, HeaderRow: headerRow, Mapping: Mapping{}}
	if headerRow < 0 || headerRow >= len(grid) {
		return f
	}
	for _, row := range grid[:headerRow] {
		f.Preamble = append(f.Preamble, append([]string(nil), row...))
	}

	width := len(grid[headerRow])
	for _, row := range grid[headerRow+1:] {
		if n := trimmedLen(row); n > width {
			width = n
		}
	}

	header := grid[headerRow]
	cols := make([]string, width)
	for j := 0; j < width; j++ {
		h := ""
		if j < len(header) {
			h = strings.Join(strings.Fields(header[j]), " ")
		}
		if h == "" {
			h = fmt.Sprintf("column_%d", j+1)
		}
		cols[j] = h
	}
	f.Columns = dedupe(cols)

	for _, row := range grid[headerRow+1:] {
		if isBlankRow(row) {
			continue
		}
		rec := make(map[string]string, width)
		for j, c := range f.Columns {
			if j < len(row) {
				rec[c] = strings.TrimSpace(row[j])
			} else {
				rec[c] = ""
			}
		}
		f.Rows = append(f.Rows, rec)
	}
	return f
}

// Has reports whether a canonical field was mapped.
func (f *Frame) Has(field constants.Field) bool {
	if f == nil {
		return false
	}
	_, ok := f.Mapping[field]
	return ok
}

// Value returns the trimmed cell for a canonical field, or "" when unmapped.
func (f *Frame) Value(row map[string]string, field constants.Field) string {
	if !f.Has(field) {
		return ""
	}
	return strings.TrimSpace(row[string(field)])
}

// Distinct returns the distinct non-empty values of a field in first-seen order.
func (f *Frame) Distinct(field constants.Field) []string {
	if !f.Has(field) {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, row := range f.Rows {
		v := f.Value(row, field)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Text renders the sheet, preamble included, as tab-separated lines.
func (f *Frame) Text() string {
	var b strings.Builder
	for _, row := range f.Preamble {
		if isBlankRow(row) {
			continue
		}
		b.WriteString(strings.Join(trimAll(row), "\t"))
		b.WriteByte('\n')
	}
	if len(f.Columns) > 0 {
		b.WriteString(strings.Join(f.Columns, "\t"))
		b.WriteByte('\n')
	}
	for _, rec := range f.Rows {
		cells := make([]string, len(f.Columns))
		for j, c := range f.Columns {
			cells[j] = rec[c]
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

func dedupe(cols []string) []string {
	out := make([]string, len(cols))
	taken := make(map[string]bool, len(cols))
	for j, c := range cols {
		name := c
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", c, n)
		}
		taken[strings.ToLower(name)] = true
		out[j] = name
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimmedLen(row []string) int {
	n := len(row)
	for n > 0 && strings.TrimSpace(row[n-1]) == "" {
		n--
	}
	return n
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
