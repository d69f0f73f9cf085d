// Package loadertest builds small documents for loader and pipeline tests.
package loadertest

import (
	"bytes"
	"fmt"
	"strings"
)

// Cell is one string drawn at a point on a page.
type Cell struct {
	X, Y float64
	Text string
}

// Row places texts on one baseline, 100 points apart from x=72.
func Row(y float64, texts ...string) []Cell {
	cells := make([]Cell, len(texts))
	for i, s := range texts {
		cells[i] = Cell{X: 72 + 100*float64(i), Y: y, Text: s}
	}
	return cells
}

// Rows stacks rows top down, 20 points apart from y=700.
func Rows(rows ...[]string) []Cell {
	var cells []Cell
	for i, r := range rows {
		cells = append(cells, Row(700-20*float64(i), r...)...)
	}
	return cells
}

// PDF returns an uncompressed PDF with one page per cell list. Text uses a
// WinAnsi Helvetica font so ASCII decodes as-is.
func PDF(pages ...[]Cell) []byte {
	// 1 catalog, 2 page tree, 3 font, then a page and content pair per page
	n := 3 + 2*len(pages)
	objs := make([]string, n+1)
	kids := make([]string, len(pages))
	for i, cells := range pages {
		id := 4 + 2*i
		kids[i] = fmt.Sprintf("%d 0 R", id)

		var content strings.Builder
		content.WriteString("BT\n/F1 10 Tf\n")
		for _, c := range cells {
			fmt.Fprintf(&content, "1 0 0 1 %g %g Tm\n(%s) Tj\n", c.X, c.Y, escape(c.Text))
		}
		content.WriteString("ET\n")

		objs[id] = fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", id+1)
		objs[id+1] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String())
	}
	objs[1] = "<< /Type /Catalog /Pages 2 0 R >>"
	objs[2] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))
	objs[3] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, n+1)
	for id := 1; id <= n; id++ {
		offsets[id] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", id, objs[id])
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", n+1)
	for id := 1; id <= n; id++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[id])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", n+1, xref)
	return b.Bytes()
}

// BreakObject points the xref entry of object id at object as's bytes, so
// resolving id fails while the file still opens.
func BreakObject(data []byte, id, as int) []byte {
	out := bytes.Clone(data)
	start := bytes.LastIndex(out, []byte("xref\n"))
	body := start + len("xref\n")
	body += bytes.IndexByte(out[body:], '\n') + 1
	copy(out[body+20*id:body+20*id+20], data[body+20*as:body+20*as+20])
	return out
}

// PageObject is the object number of page i (1-based) in a PDF built here.
func PageObject(i int) int { return 2 + 2*i }

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
