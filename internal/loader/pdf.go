package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/variance-drafts/internal/common"
)

type pdfText struct {
	text     string
	sheets   []Sheet
	pages    int
	method   string
	warnings []string
	err      error
}

// reCellGap splits layout text into cells on runs of two or more spaces.
var reCellGap = regexp.MustCompile(`\s{2,}`)

// loadPDF extracts text and positioned rows under the configured timeout.
// The parser runs in its own goroutine since it cannot be interrupted. Tiers
// run in order: positioned rows, plain text, then pdftotext when configured.
func (l *Loader) loadPDF(ctx context.Context, content []byte) (Document, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.PDFTimeout)
	defer cancel()

	ch := make(chan pdfText, 1)
	go func() { ch <- readPDF(content, l.cfg.MaxPages) }()

	var res pdfText
	select {
	case <-ctx.Done():
		return Document{}, l.pdfCtxErr(ctx.Err())
	case res = <-ch:
	}

	if strings.TrimSpace(res.text) == "" && l.cfg.Pdftotext != "" {
		text, warns, err := l.pdftotext(ctx, content)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return Document{}, l.pdfCtxErr(cerr)
			}
			res.warnings = append(res.warnings, warns...)
		} else {
			res.text, res.method, res.err = text, MethodPdftotext, nil
			res.sheets = layoutSheets(strings.Split(text, "\f"))
		}
	}
	if res.err != nil {
		return Document{}, res.err
	}
	return Document{
		Sheets:   res.sheets,
		Text:     strings.ReplaceAll(res.text, "\f", "\n\n"),
		Method:   res.method,
		Pages:    res.pages,
		Warnings: res.warnings,
	}, nil
}

func (l *Loader) pdfCtxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: pdf after %s", common.ErrExtractionTimeout, l.cfg.PDFTimeout)
	}
	return err
}

func readPDF(content []byte, maxPages int) pdfText {
	r, n, err := openPDF(content)
	if err != nil {
		return pdfText{err: fmt.Errorf("%w: pdf reader: %v", common.ErrMalformedInput, err)}
	}
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}
	out := pdfText{pages: n, method: MethodPDFRows}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		rows, err := pageRows(r, i)
		if err != nil {
			out.warnings = append(out.warnings, fmt.Sprintf("page %d: %v", i, err))
			continue
		}
		grid := rowCells(rows)
		if len(grid) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		for _, cells := range grid {
			b.WriteString(strings.Join(cells, " "))
			b.WriteString("\n")
		}
		if s, ok := gridSheet(fmt.Sprintf("page_%d", i), grid); ok {
			out.sheets = append(out.sheets, s)
		}
	}
	out.text = b.String()
	if strings.TrimSpace(out.text) != "" {
		return out
	}

	text, err := plainText(r)
	if err != nil {
		out.warnings = append(out.warnings, "plain text: "+err.Error())
		return out
	}
	out.text, out.method = text, MethodPDFPlain
	return out
}

func openPDF(content []byte) (r *pdf.Reader, pages int, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, pages, err = nil, 0, fmt.Errorf("%v", p)
		}
	}()
	r, err = pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, 0, err
	}
	return r, r.NumPage(), nil
}

// pageRows reads one page. A broken page object panics inside the parser;
// that is reported for the page alone.
func pageRows(r *pdf.Reader, i int) (rows pdf.Rows, err error) {
	defer func() {
		if p := recover(); p != nil {
			rows, err = nil, fmt.Errorf("%v", p)
		}
	}()
	page := r.Page(i)
	if page.V.IsNull() {
		return nil, nil
	}
	return page.GetTextByRow()
}

func plainText(r *pdf.Reader) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("%v", p)
		}
	}()
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// rowCells turns positioned rows into cells. Fragments at the same x offset
// belong to one show-text array and are joined; a new offset starts a cell.
func rowCells(rows pdf.Rows) [][]string {
	var grid [][]string
	for _, row := range rows {
		var (
			pieces []string
			lastX  float64
		)
		for i, t := range row.Content {
			if i > 0 && t.X == lastX && len(pieces) > 0 {
				pieces[len(pieces)-1] += t.S
			} else {
				pieces = append(pieces, t.S)
			}
			lastX = t.X
		}
		var cells []string
		for _, p := range pieces {
			cells = append(cells, splitCells(p)...)
		}
		if len(cells) > 0 {
			grid = append(grid, cells)
		}
	}
	return grid
}

func splitCells(s string) []string {
	var cells []string
	for _, c := range reCellGap.Split(strings.TrimSpace(s), -1) {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

// layoutSheets builds page sheets from column-aligned text, one entry per page.
func layoutSheets(pages []string) []Sheet {
	var sheets []Sheet
	for i, page := range pages {
		var grid [][]string
		for _, line := range strings.Split(page, "\n") {
			if cells := splitCells(line); len(cells) > 0 {
				grid = append(grid, cells)
			}
		}
		if s, ok := gridSheet(fmt.Sprintf("page_%d", i+1), grid); ok {
			sheets = append(sheets, s)
		}
	}
	return sheets
}

// gridSheet keeps a page as a sheet only when at least two rows have more
// than one cell; prose pages stay text-only.
func gridSheet(name string, grid [][]string) (Sheet, bool) {
	multi := 0
	for _, cells := range grid {
		if len(cells) > 1 {
			multi++
		}
	}
	if multi < 2 {
		return Sheet{}, false
	}
	return Sheet{Name: name, Rows: grid}, true
}

// pdftotext shells out to poppler's pdftotext for PDFs the library reads as
// empty. Pages stay separated by form feeds.
func (l *Loader) pdftotext(ctx context.Context, content []byte) (string, []string, error) {
	tmp, err := os.CreateTemp("", "variance-*.pdf")
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return "", nil, err
	}
	_ = tmp.Close()

	start := time.Now()
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := l.runner.Run(ctx, l.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", tmp.Name(), "-")
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg == "" {
			msg = err.Error()
		}
		return "", []string{"pdftotext: " + msg}, err
	}
	l.logger.Debug("loader.pdftotext.ok", "bytes", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return string(out), nil, nil
}
