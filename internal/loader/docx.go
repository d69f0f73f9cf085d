package loader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/joseph-ayodele/variance-drafts/internal/common"
)

// loadDOCX reads word/document.xml. Body paragraphs become text lines and
// each table becomes a sheet; table rows also appear in the text tab-joined.
func loadDOCX(content []byte) (Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Document{}, fmt.Errorf("%w: docx: %v", common.ErrMalformedInput, err)
	}
	var body []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Document{}, fmt.Errorf("%w: docx: %v", common.ErrMalformedInput, err)
		}
		body, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return Document{}, fmt.Errorf("%w: docx: %v", common.ErrMalformedInput, err)
		}
	}
	if body == nil {
		return Document{}, fmt.Errorf("%w: docx: missing word/document.xml", common.ErrMalformedInput)
	}
	return parseDocumentXML(body)
}

func parseDocumentXML(body []byte) (Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	doc := Document{Method: MethodDOCX}

	var (
		text       strings.Builder
		para       strings.Builder
		cell       strings.Builder
		row        []string
		table      [][]string
		tableDepth int
		inCell     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Document{}, fmt.Errorf("%w: docx xml: %v", common.ErrMalformedInput, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					table = nil
				}
			case "tr":
				row = nil
			case "tc":
				inCell = true
				cell.Reset()
			case "t":
				var s string
				if err := dec.DecodeElement(&s, &t); err == nil {
					para.WriteString(s)
				}
			case "tab":
				para.WriteString(" ")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				line := strings.TrimSpace(para.String())
				para.Reset()
				if inCell {
					if line != "" {
						if cell.Len() > 0 {
							cell.WriteString(" ")
						}
						cell.WriteString(line)
					}
				} else if line != "" {
					text.WriteString(line)
					text.WriteString("\n")
				}
			case "tc":
				row = append(row, cell.String())
				inCell = false
			case "tr":
				if tableDepth == 1 {
					table = append(table, row)
					text.WriteString(strings.Join(row, "\t"))
					text.WriteString("\n")
				}
			case "tbl":
				tableDepth--
				if tableDepth == 0 && len(table) > 0 {
					doc.Sheets = append(doc.Sheets, Sheet{Name: fmt.Sprintf("table_%d", len(doc.Sheets)+1), Rows: table})
					text.WriteString("\n")
				}
			}
		}
	}
	doc.Text = text.String()
	return doc, nil
}
