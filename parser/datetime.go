package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aweist/league-calendar/models"
)

var placeholders = map[string]bool{
	"TBA":     true,
	"TBC":     true,
	"?":       true,
	"-":       true,
	"N/A":     true,
	"UNKNOWN": true,
}

// IsPlaceholder reports whether a source value stands in for data that is
// not known yet. Anything mentioning "TBD" counts, as do blanks.
func IsPlaceholder(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return true
	}
	if strings.Contains(s, "TBD") {
		return true
	}
	return placeholders[s]
}

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
	"2006/1/2",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
}

// ParseDate parses a calendar date. The result is midnight UTC on that date;
// only its year, month and day are meaningful.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", models.ErrMalformedRecord, s)
}

var clockLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"3:04:05 PM",
	"3 PM",
	"3PM",
	"15:04",
	"15:04:05",
}

// ParseClock parses a time of day, 12-hour with AM/PM or 24-hour, and
// returns the offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ".", "")
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second, nil
	}
	return 0, fmt.Errorf("%w: unrecognized time %q", models.ErrMalformedRecord, s)
}

// ParseDuration parses an HH:MM:SS length.
func ParseDuration(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: duration %q is not HH:MM:SS", models.ErrMalformedRecord, s)
	}

	var values [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: duration %q is not HH:MM:SS", models.ErrMalformedRecord, s)
		}
		values[i] = n
	}
	if values[1] > 59 || values[2] > 59 {
		return 0, fmt.Errorf("%w: duration %q out of range", models.ErrMalformedRecord, s)
	}

	d := time.Duration(values[0])*time.Hour +
		time.Duration(values[1])*time.Minute +
		time.Duration(values[2])*time.Second
	if d <= 0 {
		return 0, fmt.Errorf("%w: duration %q is not positive", models.ErrMalformedRecord, s)
	}
	return d, nil
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp parses an ISO 8601 instant. Values without a zone are read
// in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized timestamp %q", models.ErrMalformedRecord, s)
}
