// Package calendar parses the period and date formats found in cost reports.
package calendar

import (
	"strings"
	"time"

	"github.com/joseph-ayodele/variance-drafts/internal/numeric"
)

var monthLayouts = []string{
	"2006-01", "2006/01", "2006-1", "2006/1", "01/2006", "1/2006", "01-2006",
	"Jan 2006", "January 2006", "Jan-2006", "Jan-06", "Jan 06", "200601",
}

var dateLayouts = []string{
	"2006-01-02", "2006/01/02", "2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00",
	"1/2/2006", "2/1/2006", "01-02-2006", "02-01-2006", "1/2/06", "01-02-06", "02.01.2006",
	"2 Jan 2006", "02 Jan 2006", "Jan 2, 2006", "2-Jan-2006", "2-Jan-06",
}

// ParseDate parses the date formats seen in cost reports, ISO first, then
// month-first, then day-first.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(numeric.TranslateDigits(s))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizePeriod returns the YYYY-MM form of a period or date cell. Text
// that cannot be read as a month is returned trimmed and unchanged.
func NormalizePeriod(s string) string {
	s = strings.TrimSpace(numeric.TranslateDigits(s))
	if s == "" {
		return ""
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01")
		}
	}
	if t, ok := ParseDate(s); ok {
		return t.Format("2006-01")
	}
	return s
}

// MonthRange returns the half-open calendar month [start, end) of a YYYY-MM period.
func MonthRange(period string) (start, end time.Time, ok bool) {
	t, err := time.Parse("2006-01", strings.TrimSpace(period))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return t, t.AddDate(0, 1, 0), true
}
