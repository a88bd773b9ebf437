// Package calendar turns normalized matches and events into calendar
// documents and reads and writes them as iCalendar files.
//
// Match times from spreadsheets are US Eastern wall times. They are
// converted to UTC using the daylight-saving status of the match date
// itself (see ToUTC).
package calendar

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aweist/league-calendar/models"
	"github.com/aweist/league-calendar/parser"
	"github.com/aweist/league-calendar/roster"
	"github.com/google/uuid"
)

const (
	DefaultDuration = 60 * time.Minute
	uidDomain       = "league-calendar"
)

// Metadata is copied onto every document a Builder produces.
type Metadata struct {
	Name            string
	Description     string
	RefreshInterval time.Duration
	Timezone        string
}

type Builder struct {
	Meta            Metadata
	Location        *time.Location
	DefaultDuration time.Duration
	// TitleSeparator sits between away and home team: "at" or "@".
	TitleSeparator string
	Index          *roster.Index
	Logger         *slog.Logger
}

// BuildStats counts what happened to the input records. Dropped records
// are not errors.
type BuildStats struct {
	Records int
	Emitted int
	Dropped int
}

func (b *Builder) location() *time.Location {
	if b.Location != nil {
		return b.Location
	}
	return time.UTC
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

func (b *Builder) duration(raw string) time.Duration {
	if raw != "" {
		if d, err := parser.ParseDuration(raw); err == nil {
			return d
		}
	}
	if b.DefaultDuration > 0 {
		return b.DefaultDuration
	}
	return DefaultDuration
}

func (b *Builder) newDocument() models.Document {
	tz := b.Meta.Timezone
	if tz == "" {
		tz = b.location().String()
	}
	return models.Document{
		Name:            b.Meta.Name,
		Description:     b.Meta.Description,
		RefreshInterval: b.Meta.RefreshInterval,
		Timezone:        tz,
		Entries:         []models.Entry{},
	}
}

// BuildMatches emits one entry per match that has both teams and a usable
// date. Everything else is dropped and counted.
func (b *Builder) BuildMatches(matches []models.Match) (models.Document, BuildStats) {
	doc := b.newDocument()
	stats := BuildStats{Records: len(matches)}

	for _, m := range matches {
		entry, err := b.MatchEntry(m)
		if err != nil {
			stats.Dropped++
			b.logger().Debug("dropping match", "away", m.Away, "home", m.Home, "date", m.Date, "reason", err)
			continue
		}
		doc.Entries = append(doc.Entries, entry)
		stats.Emitted++
	}

	return doc, stats
}

func (b *Builder) MatchEntry(m models.Match) (models.Entry, error) {
	if parser.IsPlaceholder(m.Away) || parser.IsPlaceholder(m.Home) {
		return models.Entry{}, fmt.Errorf("%w: unresolved team", models.ErrMalformedRecord)
	}

	start, err := b.matchStart(m)
	if err != nil {
		return models.Entry{}, err
	}

	title := b.MatchTitle(m)
	key := m.Concatenate
	if key == "" {
		key = title + "|" + start.Format(time.RFC3339)
	}

	return models.Entry{
		UID:         EntryUID(key),
		Title:       title,
		Start:       start,
		Duration:    b.duration(m.Duration),
		Description: MatchDescription(m, b.Index),
		URL:         NormalizeLink(m.StreamLink),
	}, nil
}

// matchStart prefers an explicit ISO start; otherwise it combines the date
// with the time of day, defaulting to midnight when the time is unknown.
func (b *Builder) matchStart(m models.Match) (time.Time, error) {
	if m.Start != "" {
		return parser.ParseTimestamp(m.Start, b.location())
	}

	if parser.IsPlaceholder(m.Date) {
		return time.Time{}, fmt.Errorf("%w: date not scheduled", models.ErrMalformedRecord)
	}
	date, err := parser.ParseDate(m.Date)
	if err != nil {
		return time.Time{}, err
	}

	var clock time.Duration
	if !parser.IsPlaceholder(m.Time) {
		clock, err = parser.ParseClock(m.Time)
		if err != nil {
			return time.Time{}, err
		}
	}

	return ToUTC(date, clock, b.location()), nil
}

func (b *Builder) MatchTitle(m models.Match) string {
	sep := b.TitleSeparator
	if sep == "" {
		sep = "at"
	}
	title := fmt.Sprintf("%s %s %s", m.Away, sep, m.Home)
	if prefix := strings.TrimSpace(m.Tier + m.Circuit); prefix != "" {
		title = prefix + " " + title
	}
	return title
}

func (b *Builder) BuildEvents(events []models.Event) (models.Document, BuildStats) {
	doc := b.newDocument()
	stats := BuildStats{Records: len(events)}

	for _, e := range events {
		entry, err := b.EventEntry(e)
		if err != nil {
			stats.Dropped++
			b.logger().Debug("dropping event", "name", e.Name, "start", e.StartTime, "reason", err)
			continue
		}
		doc.Entries = append(doc.Entries, entry)
		stats.Emitted++
	}

	return doc, stats
}

func (b *Builder) EventEntry(e models.Event) (models.Entry, error) {
	if e.Name == "" {
		return models.Entry{}, fmt.Errorf("%w: event without a name", models.ErrMalformedRecord)
	}
	if parser.IsPlaceholder(e.StartTime) {
		return models.Entry{}, fmt.Errorf("%w: event not scheduled", models.ErrMalformedRecord)
	}
	start, err := parser.ParseTimestamp(e.StartTime, b.location())
	if err != nil {
		return models.Entry{}, err
	}

	var url string
	if len(e.Links) > 0 {
		url = NormalizeLink(e.Links[0])
	}

	return models.Entry{
		UID:         EntryUID(e.Name + "|" + start.Format(time.RFC3339)),
		Title:       e.Name,
		Start:       start,
		Duration:    b.duration(e.Duration),
		Description: EventDescription(e),
		URL:         url,
	}, nil
}

// EntryUID derives a stable UID from a record key.
func EntryUID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String() + "@" + uidDomain
}
