package calendar

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/aweist/league-calendar/models"
)

const ProductID = "-//League Calendar//league-calendar//EN"

// Sink stores serialized calendars. Paths are interpreted by the sink.
type Sink interface {
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
}

// Encode serializes doc as an iCalendar document with one VEVENT per entry.
func Encode(doc models.Document) string {
	cal := ics.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)

	if doc.Name != "" {
		cal.SetXWRCalName(doc.Name)
	}
	if doc.Description != "" {
		cal.SetXWRCalDesc(doc.Description)
	}
	if doc.Timezone != "" {
		cal.SetXWRTimezone(doc.Timezone)
	}
	if doc.RefreshInterval > 0 {
		interval := isoDuration(doc.RefreshInterval)
		cal.SetRefreshInterval(interval)
		cal.SetXPublishedTTL(interval)
	}

	stamp := time.Now().UTC()
	for _, entry := range doc.Entries {
		event := cal.AddEvent(entry.UID)
		event.SetDtStampTime(stamp)
		event.SetStartAt(entry.Start.UTC())
		event.SetEndAt(entry.End().UTC())
		event.SetSummary(entry.Title)
		if entry.Description != "" {
			event.SetDescription(entry.Description)
		}
		if entry.URL != "" {
			event.SetURL(entry.URL)
		}
	}

	return cal.Serialize()
}

// Decode parses an iCalendar document. Events without a parseable start are
// skipped; a missing end falls back to the default duration.
func Decode(r io.Reader) (models.Document, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return models.Document{}, fmt.Errorf("parsing calendar: %w", err)
	}

	doc := models.Document{Entries: []models.Entry{}}
	for _, prop := range cal.CalendarProperties {
		switch prop.IANAToken {
		case string(ics.PropertyXWRCalName):
			doc.Name = prop.Value
		case string(ics.PropertyXWRCalDesc):
			doc.Description = prop.Value
		case string(ics.PropertyXWRTimezone):
			doc.Timezone = prop.Value
		}
	}

	for _, event := range cal.Events() {
		start, err := event.GetStartAt()
		if err != nil {
			continue
		}

		duration := DefaultDuration
		if end, err := event.GetEndAt(); err == nil && end.After(start) {
			duration = end.Sub(start)
		}

		doc.Entries = append(doc.Entries, models.Entry{
			UID:         event.Id(),
			Title:       propertyText(event, ics.ComponentPropertySummary),
			Start:       start.UTC(),
			Duration:    duration,
			Description: propertyText(event, ics.ComponentPropertyDescription),
			URL:         propertyText(event, ics.ComponentPropertyUrl),
		})
	}

	return doc, nil
}

// Write serializes doc and hands it to sink in one piece.
func Write(ctx context.Context, sink Sink, doc models.Document, path string) error {
	if err := sink.Write(ctx, path, []byte(Encode(doc))); err != nil {
		return fmt.Errorf("%w: writing %s: %v", models.ErrSerialization, path, err)
	}
	return nil
}

// Merge reads every calendar in paths and unions their entries, in input
// order, under meta. Duplicate entries across inputs are kept.
func Merge(ctx context.Context, sink Sink, paths []string, meta Metadata) (models.Document, error) {
	merged := models.Document{
		Name:            meta.Name,
		Description:     meta.Description,
		RefreshInterval: meta.RefreshInterval,
		Timezone:        meta.Timezone,
		Entries:         []models.Entry{},
	}

	for _, path := range paths {
		data, err := sink.Read(ctx, path)
		if err != nil {
			return models.Document{}, fmt.Errorf("%w: reading %s: %v", models.ErrSourceUnavailable, path, err)
		}

		doc, err := Decode(strings.NewReader(string(data)))
		if err != nil {
			return models.Document{}, fmt.Errorf("%w: %s: %v", models.ErrSourceUnavailable, path, err)
		}
		merged.Entries = append(merged.Entries, doc.Entries...)
	}

	return merged, nil
}

func propertyText(event *ics.VEvent, prop ics.ComponentProperty) string {
	p := event.GetProperty(prop)
	if p == nil {
		return ""
	}
	return p.Value
}

// isoDuration renders d as an RFC 5545 duration such as PT1H or PT1H30M.
func isoDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d <= 0 {
		return "PT0S"
	}

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	var b strings.Builder
	b.WriteString("P")
	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	if h > 0 || m > 0 || s > 0 {
		b.WriteString("T")
		if h > 0 {
			fmt.Fprintf(&b, "%dH", h)
		}
		if m > 0 {
			fmt.Fprintf(&b, "%dM", m)
		}
		if s > 0 {
			fmt.Fprintf(&b, "%dS", s)
		}
	}
	return b.String()
}
