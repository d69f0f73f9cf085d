// Package loader turns raw document bytes into sheets of cells or plain text.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/common"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
)

// Load methods recorded on a Document.
const (
	MethodCSV       = "csv"
	MethodXLSX      = "xlsx"
	MethodXLS       = "xls"
	MethodPDFRows   = "pdf-rows"
	MethodPDFPlain  = "pdf-plain"
	MethodPdftotext = "pdftotext"
	MethodDOCX      = "docx"
	MethodText      = "text"
)

type Config struct {
	FallbackEncoding string        // used when bytes are not valid UTF-8; default windows-1256
	PDFTimeout       time.Duration // default 30s
	MaxPages         int           // 0 = no limit
	Pdftotext        string        // optional external binary tried when the PDF library finds no text
}

// Sheet is one grid of cells as read from the file.
type Sheet struct {
	Name string
	Rows [][]string
}

// Document is the loaded form of a RawDocument.
type Document struct {
	Format   constants.Format
	Sheets   []Sheet
	Text     string
	Method   string
	Pages    int
	Warnings []string
}

type Loader struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FallbackEncoding == "" {
		cfg.FallbackEncoding = "windows-1256"
	}
	if cfg.PDFTimeout <= 0 {
		cfg.PDFTimeout = 30 * time.Second
	}
	return &Loader{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner used for external PDF tools.
func (l *Loader) WithRunner(r Runner) *Loader {
	l.runner = r
	return l
}

// Load reads a document. Unreadable content is reported as ErrMalformedInput
// and slow PDFs as ErrExtractionTimeout.
func (l *Loader) Load(ctx context.Context, raw entity.RawDocument) (Document, error) {
	start := time.Now()
	if len(bytes.TrimSpace(raw.Content)) == 0 {
		return Document{Format: constants.Unknown}, common.WrapError(common.ErrMalformedInput, "empty document")
	}
	format := DetectFormat(raw.Filename, raw.DeclaredMIME, raw.Content)
	name := sheetName(raw.Filename)

	var (
		doc Document
		err error
	)
	switch format {
	case constants.CSV:
		doc, err = l.loadCSV(name, raw.Filename, raw.Content)
	case constants.XLSX:
		doc, err = loadXLSX(raw.Content)
	case constants.XLS:
		doc, err = loadXLS(raw.Content)
	case constants.PDF:
		doc, err = l.loadPDF(ctx, raw.Content)
	case constants.DOCX:
		doc, err = loadDOCX(raw.Content)
	case constants.TXT:
		var text string
		var warns []string
		text, warns, err = l.decodeText(raw.Content)
		doc = Document{Text: text, Method: MethodText, Warnings: warns}
	default:
		err = fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, mimetype.Detect(raw.Content).String())
	}
	doc.Format = format
	if err != nil {
		l.logger.Warn("loader.load.failed", "file", raw.Filename, "format", format, "error", err)
		return doc, err
	}
	l.logger.Debug("loader.load.ok",
		"file", raw.Filename,
		"format", format,
		"method", doc.Method,
		"sheets", len(doc.Sheets),
		"text_chars", len(doc.Text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

// DetectFormat picks a format from the extension, then the declared MIME
// type, then the content itself. Binary content behind a text extension is
// sniffed instead of trusted.
func DetectFormat(filename, declared string, content []byte) constants.Format {
	format := constants.MapExtToFormat(filepath.Ext(filename))
	sniffed := sniffFormat(content)
	switch {
	case format == constants.Unknown:
		if f := mimeToFormat(declared); f != constants.Unknown {
			return f
		}
		return sniffed
	case (format == constants.CSV || format == constants.TXT) && (sniffed == constants.PDF || sniffed == constants.XLSX || sniffed == constants.DOCX || sniffed == constants.XLS):
		return sniffed
	}
	return format
}

func sniffFormat(content []byte) constants.Format {
	m := mimetype.Detect(content)
	for ; m != nil; m = m.Parent() {
		if f := mimeToFormat(m.String()); f != constants.Unknown {
			return f
		}
	}
	if utf8.Valid(content) || !bytes.Contains(content, []byte{0}) {
		return constants.TXT
	}
	return constants.Unknown
}

func mimeToFormat(mime string) constants.Format {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "application/pdf":
		return constants.PDF
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/vnd.ms-excel.sheet.macroenabled.12":
		return constants.XLSX
	case "application/vnd.ms-excel":
		return constants.XLS
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return constants.DOCX
	case "text/csv", "text/tab-separated-values":
		return constants.CSV
	case "text/plain":
		return constants.TXT
	}
	return constants.Unknown
}

func sheetName(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." {
		return "sheet1"
	}
	return name
}
