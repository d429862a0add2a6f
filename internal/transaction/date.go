package transaction

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the statement date formats seen across supported banks,
// most specific first. Two-digit years are resolved by time.Parse (69 pivot).
var dateLayouts = []string{
	"02/01/2006",
	"02-01-06",
	"02/01/06",
}

// ParseDate normalizes a source-format statement date (DD/MM/YYYY, DD-MM-YY
// or DD/MM/YY) into a UTC time with the time-of-day stripped.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// DayOf strips the time-of-day for calendar comparisons.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
