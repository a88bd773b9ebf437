package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aweist/league-calendar/models"
)

type memSink struct {
	files map[string][]byte
	fail  bool
}

func newMemSink() *memSink {
	return &memSink{files: make(map[string][]byte)}
}

func (m *memSink) Write(ctx context.Context, path string, data []byte) error {
	if m.fail {
		return errors.New("disk full")
	}
	m.files[path] = append([]byte(nil), data...)
	return nil
}

func (m *memSink) Read(ctx context.Context, path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: not found", path)
	}
	return data, nil
}

func sampleDocument() models.Document {
	start := time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC)
	return models.Document{
		Name:            "League Matches",
		Description:     "Every scheduled match",
		RefreshInterval: time.Hour,
		Timezone:        "America/New_York",
		Entries: []models.Entry{
			{UID: EntryUID("a"), Title: "1E Foo at Bar", Start: start, Duration: time.Hour, Description: "Casted by Alice", URL: "https://twitch.tv/x"},
			{UID: EntryUID("b"), Title: "2W Baz at Qux", Start: start.Add(24 * time.Hour), Duration: 90 * time.Minute, Description: "No caster yet"},
		},
	}
}

func TestEncode(t *testing.T) {
	out := Encode(sampleDocument())

	required := []string{
		"BEGIN:VCALENDAR",
		"PRODID:" + ProductID,
		"METHOD:PUBLISH",
		"X-WR-CALNAME:League Matches",
		"X-WR-CALDESC:Every scheduled match",
		"X-WR-TIMEZONE:America/New_York",
		"REFRESH-INTERVAL",
		"X-PUBLISHED-TTL:PT1H",
		"BEGIN:VEVENT",
		"UID:" + EntryUID("a"),
		"DTSTART:20210302T000000Z",
		"DTEND:20210302T010000Z",
		"SUMMARY:1E Foo at Bar",
		"END:VCALENDAR",
	}
	for _, field := range required {
		if !strings.Contains(out, field) {
			t.Errorf("calendar missing %q", field)
		}
	}

	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("got %d VEVENT blocks, want 2", got)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	doc := sampleDocument()

	decoded, err := Decode(strings.NewReader(Encode(doc)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if decoded.Name != doc.Name {
		t.Errorf("Name = %q, want %q", decoded.Name, doc.Name)
	}
	if len(decoded.Entries) != len(doc.Entries) {
		t.Fatalf("got %d entries, want %d", len(decoded.Entries), len(doc.Entries))
	}
	for i, want := range doc.Entries {
		got := decoded.Entries[i]
		if got.Title != want.Title {
			t.Errorf("entry %d title = %q, want %q", i, got.Title, want.Title)
		}
		if !got.Start.Equal(want.Start) {
			t.Errorf("entry %d start = %v, want %v", i, got.Start, want.Start)
		}
		if got.Duration != want.Duration {
			t.Errorf("entry %d duration = %v, want %v", i, got.Duration, want.Duration)
		}
		if got.UID != want.UID {
			t.Errorf("entry %d uid = %q, want %q", i, got.UID, want.UID)
		}
	}
}

func TestEncodeDecode_RoundTripEscapedText(t *testing.T) {
	start := time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC)
	doc := models.Document{
		Name:        "League Matches",
		Description: "Season 5",
		Entries: []models.Entry{
			{
				UID:         EntryUID("escape"),
				Title:       `1E Foo, Jr. at Bar; Baz \ Q`,
				Start:       start,
				Duration:    time.Hour,
				Description: "Casted by A, B; C \\ D\n\nStream: https://twitch.tv/x?a=1;b=2\nliteral \\n stays",
				URL:         "https://twitch.tv/x?a=1,b=2",
			},
		},
	}

	decoded, err := Decode(strings.NewReader(Encode(doc)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if decoded.Name != doc.Name {
		t.Errorf("Name = %q, want %q", decoded.Name, doc.Name)
	}
	if decoded.Description != doc.Description {
		t.Errorf("Description = %q, want %q", decoded.Description, doc.Description)
	}
	if len(decoded.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(decoded.Entries))
	}
	got, want := decoded.Entries[0], doc.Entries[0]
	if got.Title != want.Title {
		t.Errorf("Title = %q, want %q", got.Title, want.Title)
	}
	if got.Description != want.Description {
		t.Errorf("Description = %q, want %q", got.Description, want.Description)
	}
	if got.URL != want.URL {
		t.Errorf("URL = %q, want %q", got.URL, want.URL)
	}
}

func TestWrite(t *testing.T) {
	sink := newMemSink()
	if err := Write(context.Background(), sink, sampleDocument(), "matches.ics"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(string(sink.files["matches.ics"]), "SUMMARY:2W Baz at Qux") {
		t.Error("written calendar missing entry")
	}

	sink.fail = true
	err := Write(context.Background(), sink, sampleDocument(), "matches.ics")
	if !errors.Is(err, models.ErrSerialization) {
		t.Errorf("Write() error = %v, want ErrSerialization", err)
	}
}

func TestMerge_KeepsDuplicatesInOrder(t *testing.T) {
	ctx := context.Background()
	sink := newMemSink()

	matches := sampleDocument()
	events := models.Document{
		Name: "Events",
		Entries: []models.Entry{
			{UID: EntryUID("draft"), Title: "Draft Night", Start: time.Date(2021, 5, 1, 23, 0, 0, 0, time.UTC), Duration: 2 * time.Hour},
		},
	}
	if err := Write(ctx, sink, matches, "matches.ics"); err != nil {
		t.Fatal(err)
	}
	if err := Write(ctx, sink, events, "events.ics"); err != nil {
		t.Fatal(err)
	}

	merged, err := Merge(ctx, sink, []string{"matches.ics", "events.ics", "matches.ics"}, Metadata{Name: "Everything"})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	if merged.Name != "Everything" {
		t.Errorf("Name = %q, want Everything", merged.Name)
	}
	titles := make([]string, 0, len(merged.Entries))
	for _, e := range merged.Entries {
		titles = append(titles, e.Title)
	}
	want := []string{"1E Foo at Bar", "2W Baz at Qux", "Draft Night", "1E Foo at Bar", "2W Baz at Qux"}
	if strings.Join(titles, "|") != strings.Join(want, "|") {
		t.Errorf("merged titles = %v, want %v", titles, want)
	}
}

func TestMerge_MissingInput(t *testing.T) {
	_, err := Merge(context.Background(), newMemSink(), []string{"nope.ics"}, Metadata{})
	if !errors.Is(err, models.ErrSourceUnavailable) {
		t.Errorf("Merge() error = %v, want ErrSourceUnavailable", err)
	}
}

func TestIsoDuration(t *testing.T) {
	tests := map[time.Duration]string{
		time.Hour:                    "PT1H",
		90 * time.Minute:             "PT1H30M",
		24 * time.Hour:               "P1D",
		25*time.Hour + 5*time.Second: "P1DT1H5S",
		0:                            "PT0S",
	}
	for in, want := range tests {
		if got := isoDuration(in); got != want {
			t.Errorf("isoDuration(%v) = %q, want %q", in, got, want)
		}
	}
}
