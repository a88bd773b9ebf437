package models

import (
	"time"
)

// Record is one source row keyed by canonical field name.
type Record map[string]string

// RawRecord is one JSON object from the REST API, kept unparsed so nested
// team, circuit and caster objects can be addressed by path.
type RawRecord []byte

type Match struct {
	Tier        string `json:"tier"`
	Circuit     string `json:"circuit"`
	Away        string `json:"away"`
	Home        string `json:"home"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Start       string `json:"start,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Caster      string `json:"caster"`
	CoCasters   string `json:"co_casters"`
	StreamLink  string `json:"stream_link"`
	VODLink     string `json:"vod_link"`
	Concatenate string `json:"concatenate,omitempty"`
}

type Event struct {
	Name        string   `json:"name"`
	StartTime   string   `json:"start_time"`
	Duration    string   `json:"duration"`
	Description string   `json:"description"`
	Links       []string `json:"links"`
	Organizers  []string `json:"organizers"`
}

// TeamStats is the aggregate record of one team. It is read-only once a
// roster index has been built from it.
type TeamStats struct {
	Name          string   `json:"name"`
	Tier          string   `json:"tier"`
	Circuit       string   `json:"circuit"`
	MatchWins     int      `json:"match_wins"`
	MatchesPlayed int      `json:"matches_played"`
	Losses        int      `json:"losses"`
	SetWins       int      `json:"set_wins"`
	Captain       string   `json:"captain"`
	Members       []string `json:"members"`
}

// Entry is a single calendar event ready to be serialized.
type Entry struct {
	UID         string        `json:"uid"`
	Title       string        `json:"title"`
	Start       time.Time     `json:"start"`
	Duration    time.Duration `json:"duration"`
	Description string        `json:"description"`
	URL         string        `json:"url,omitempty"`
}

func (e Entry) End() time.Time {
	return e.Start.Add(e.Duration)
}

// Document is an ordered set of entries plus calendar-level metadata.
type Document struct {
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	RefreshInterval time.Duration `json:"refresh_interval"`
	Timezone        string        `json:"timezone,omitempty"`
	Entries         []Entry       `json:"entries"`
}

type FetchRecord struct {
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
	Size      int       `json:"size"`
	Payload   []byte    `json:"payload"`
}

type RunSummary struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Output     string    `json:"output"`
	Entries    int       `json:"entries"`
	Dropped    int       `json:"dropped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}
