// Package timestamp parses and formats the two user-facing timestamp forms
// used on loads and ITCs: "MM/DD/YYYY HH:MM" and "MM/DD/YYYY".
package timestamp

import (
	"errors"
	"fmt"
	"time"
)

const (
	// Layout is the full form, 24-hour clock.
	Layout = "MM/DD/YYYY HH:MM"
	// DateLayout is the date-only form; the time is 00:00.
	DateLayout = "MM/DD/YYYY"

	// Missing is printed for an absent optional timestamp.
	Missing = "-"

	goLayout = "01/02/2006 15:04"
)

// ErrFormat is matched by every parse failure.
var ErrFormat = errors.New("invalid timestamp format")

// FormatError reports text that matches neither accepted form.
type FormatError struct {
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("invalid timestamp %q: expected %s or %s", e.Text, Layout, DateLayout)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// Parse reads text in one of the two accepted forms. Components are read by
// position, never through a locale-aware parser, and the result is in UTC.
func Parse(text string) (time.Time, error) {
	switch len(text) {
	case len(DateLayout), len(Layout):
	default:
		return time.Time{}, &FormatError{Text: text}
	}

	if text[2] != '/' || text[5] != '/' {
		return time.Time{}, &FormatError{Text: text}
	}
	month, ok1 := digits(text[0:2])
	day, ok2 := digits(text[3:5])
	year, ok3 := digits(text[6:10])
	if !ok1 || !ok2 || !ok3 {
		return time.Time{}, &FormatError{Text: text}
	}

	var hour, minute int
	if len(text) == len(Layout) {
		if text[10] != ' ' || text[13] != ':' {
			return time.Time{}, &FormatError{Text: text}
		}
		var okH, okM bool
		hour, okH = digits(text[11:13])
		minute, okM = digits(text[14:16])
		if !okH || !okM {
			return time.Time{}, &FormatError{Text: text}
		}
	}

	if month < 1 || month > 12 {
		return time.Time{}, &FormatError{Text: text, Reason: "month out of range"}
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, &FormatError{Text: text, Reason: "day out of range"}
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, &FormatError{Text: text, Reason: "time out of range"}
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), nil
}

// ParseOptional returns nil for blank text or "-".
func ParseOptional(text string) (*time.Time, error) {
	if text == "" || text == Missing {
		return nil, nil
	}
	t, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Format renders t as "MM/DD/YYYY HH:MM".
func Format(t time.Time) string {
	return t.Format(goLayout)
}

// FormatOptional renders t, or "-" when t is nil.
func FormatOptional(t *time.Time) string {
	if t == nil {
		return Missing
	}
	return Format(*t)
}

func digits(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
