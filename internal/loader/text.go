package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/common"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText returns content as UTF-8. UTF-16 is recognised by its BOM;
// other invalid UTF-8 is decoded with the configured fallback charset.
func (l *Loader) decodeText(content []byte) (string, []string, error) {
	var dec *encoding.Decoder
	var warns []string
	switch {
	case bytes.HasPrefix(content, utf8BOM):
		return string(content[len(utf8BOM):]), nil, nil
	case bytes.HasPrefix(content, []byte{0xFF, 0xFE}), bytes.HasPrefix(content, []byte{0xFE, 0xFF}):
		dec = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case utf8.Valid(content):
		return string(content), nil, nil
	default:
		enc, err := htmlindex.Get(l.cfg.FallbackEncoding)
		if err != nil {
			return "", nil, fmt.Errorf("%w: unknown fallback encoding %q", common.ErrMalformedInput, l.cfg.FallbackEncoding)
		}
		dec = enc.NewDecoder()
		warns = append(warns, "decoded with "+l.cfg.FallbackEncoding)
	}
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(content), dec))
	if err != nil {
		return "", warns, fmt.Errorf("%w: decode text: %v", common.ErrMalformedInput, err)
	}
	return string(out), warns, nil
}

func (l *Loader) loadCSV(name, filename string, content []byte) (Document, error) {
	text, warns, err := l.decodeText(content)
	if err != nil {
		return Document{}, err
	}
	delim := sniffDelimiter(text)
	if constants.NormalizeExt(filepath.Ext(filename)) == "tsv" {
		delim = '\t'
	}
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return Document{}, fmt.Errorf("%w: csv: %v", common.ErrMalformedInput, err)
	}
	return Document{Sheets: []Sheet{{Name: name, Rows: rows}}, Method: MethodCSV, Warnings: warns}, nil
}

// sniffDelimiter picks the candidate that splits the first lines most
// consistently, preferring comma on ties.
func sniffDelimiter(text string) rune {
	candidates := []rune{',', ';', '\t', '|'}
	var sample []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			sample = append(sample, line)
		}
		if len(sample) == 10 {
			break
		}
	}
	best, bestScore := ',', 0
	for _, c := range candidates {
		score := 0
		for _, line := range sample {
			if n := strings.Count(line, string(c)); n > 0 {
				score += 1 + n
			}
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}
