package calendar

import (
	"time"
)

// ToUTC reads date (year, month, day only) plus clock as wall time in loc
// and returns the UTC instant.
//
// Whether daylight time applies is decided by the event's own date. Earlier
// scripts checked DST status at the moment the script ran, which put every
// winter match an hour off when the calendar was generated in summer and
// vice versa.
func ToUTC(date time.Time, clock time.Duration, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	clock = clock.Truncate(time.Second)
	h := int(clock / time.Hour)
	m := int(clock % time.Hour / time.Minute)
	s := int(clock % time.Minute / time.Second)
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, s, 0, loc).UTC()
}
