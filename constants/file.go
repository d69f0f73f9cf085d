package constants

import "strings"

// Format is the container format a document was loaded as.
type Format string

const (
	CSV     Format = "CSV"
	XLSX    Format = "XLSX"
	XLS     Format = "XLS"
	PDF     Format = "PDF"
	DOCX    Format = "DOCX"
	TXT     Format = "TXT"
	Unknown Format = "UNKNOWN"
)

// AllowedExtensions holds the file extensions picked up by directory scans.
var AllowedExtensions = map[string]struct{}{
	"csv":  {},
	"tsv":  {},
	"xlsx": {},
	"xlsm": {},
	"xls":  {},
	"pdf":  {},
	"docx": {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat maps a file extension to a Format.
func MapExtToFormat(ext string) Format {
	switch NormalizeExt(ext) {
	case "csv", "tsv":
		return CSV
	case "xlsx", "xlsm":
		return XLSX
	case "xls":
		return XLS
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	case "txt", "text", "md":
		return TXT
	default:
		return Unknown
	}
}

// IsTabular reports whether the format yields sheets rather than text.
func (f Format) IsTabular() bool {
	return f == CSV || f == XLSX || f == XLS
}
