package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aweist/league-calendar/models"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "league-calendar" {
		t.Errorf("Use = %q", cmd.Use)
	}

	want := []string{"events", "history", "matches", "merge", "teams"}
	var got []string
	for _, sub := range cmd.Commands() {
		got = append(got, sub.Name())
	}
	for _, name := range want {
		found := false
		for _, g := range got {
			if g == name {
				found = true
			}
		}
		if !found {
			t.Errorf("missing subcommand %q (have %v)", name, got)
		}
	}

	if flag := cmd.PersistentFlags().Lookup("config"); flag == nil || flag.DefValue != "settings.json" {
		t.Errorf("config flag = %+v", flag)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSettings(t *testing.T, settings map[string]any) string {
	t.Helper()
	data, err := json.Marshal(settings)
	if err != nil {
		t.Fatalf("marshal settings: %v", err)
	}
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing settings: %v", err)
	}
	return path
}

func TestArgsValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "merge needs files", args: []string{"merge"}},
		{name: "matches takes one query", args: []string{"matches", "a=1", "b=2"}},
		{name: "teams takes no args", args: []string{"teams", "extra"}},
		{name: "bad teams format", args: []string{"teams", "--format", "xml"}},
		{name: "bad history limit", args: []string{"history", "--limit", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Errorf("expected error for %v", tt.args)
			}
		})
	}
}

func TestMatchesCommand_MissingSettings(t *testing.T) {
	_, err := run(t, "matches", "--config", filepath.Join(t.TempDir(), "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "reading settings") {
		t.Errorf("error = %v, want settings read failure", err)
	}
}

func TestMatchesTeamsAndHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/matches.csv":
			fmt.Fprint(w, "Tier,Circ,Away Team,Home Team,Time (Eastern),Date,Caster,Co-casters,Stream Link,VOD Link,Concatenate\n"+
				"1,W,Foo,Bar,7:00 PM,2021-03-01,,,,,1WFooBar\n")
		case "/teams.csv":
			fmt.Fprint(w, "Tier,Circuit,Team,Match Wins,Matches Played,Set Wins,Captain,M1\n"+
				"1,W,Foo,2,3,5,Ann,Ann\n")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "matches.ics")
	settings := writeSettings(t, map[string]any{
		"match_csv_url": server.URL + "/matches.csv",
		"team_csv_url":  server.URL + "/teams.csv",
		"timezone":      "UTC",
		"archive_path":  filepath.Join(dir, "archive.db"),
		"output": map[string]string{
			"artifact":      filepath.Join(dir, "matches.csv"),
			"team_artifact": filepath.Join(dir, "teams.csv"),
		},
	})

	stdout, err := run(t, "matches", "--config", settings, "--out", out)
	if err != nil {
		t.Fatalf("matches: %v", err)
	}
	if !strings.Contains(stdout, "Wrote 1 entries") {
		t.Errorf("stdout = %q", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("calendar not written: %v", err)
	}

	stdout, err = run(t, "teams", "--config", settings, "--format", "json")
	if err != nil {
		t.Fatalf("teams: %v", err)
	}
	var teams []models.TeamStats
	if err := json.Unmarshal([]byte(stdout), &teams); err != nil {
		t.Fatalf("teams output is not JSON: %v\n%s", err, stdout)
	}
	if len(teams) != 1 || teams[0].Name != "Foo" || teams[0].Losses != 1 {
		t.Errorf("teams = %+v", teams)
	}

	stdout, err = run(t, "history", "--config", settings)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(stdout, "matches") || !strings.Contains(stdout, out) {
		t.Errorf("history output = %q", stdout)
	}

	stdout, err = run(t, "history", "--config", settings, "--fetches")
	if err != nil {
		t.Fatalf("history --fetches: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d fetch lines, want 3 (matches, teams, teams):\n%s", len(lines), stdout)
	}
	if !strings.Contains(lines[0], "/teams.csv") || !strings.Contains(lines[2], "/matches.csv") {
		t.Errorf("fetches not listed newest first:\n%s", stdout)
	}
}

func TestWriteFetches_Limit(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fetches := []models.FetchRecord{
		{Source: "csv", URL: "https://example.com/a.csv", FetchedAt: at, Size: 10},
		{Source: "api:matches", URL: "https://api.example.com/matches", FetchedAt: at.Add(time.Minute), Size: 20},
	}
	if err := WriteFetches(&buf, fetches, 1); err != nil {
		t.Fatalf("WriteFetches() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "api:matches") || strings.Contains(out, "a.csv") {
		t.Errorf("output = %q, want only the newest fetch", out)
	}
}

func TestWriteTeams_Text(t *testing.T) {
	var buf bytes.Buffer
	teams := []models.TeamStats{
		{Name: "Foo", Tier: "1", Circuit: "E", MatchWins: 3, Losses: 1, SetWins: 7, Captain: "Ann", Members: []string{"Ann", "Bob"}},
	}
	if err := WriteTeams(&buf, teams, FormatText); err != nil {
		t.Fatalf("WriteTeams() error = %v", err)
	}
	want := "1E Foo (3-1, 7 sets)\n  Captain: Ann\n  Roster: Ann, Bob\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := WriteTeams(&buf, nil, FormatText); err != nil {
		t.Fatalf("WriteTeams() error = %v", err)
	}
	if buf.String() != "No teams found.\n" {
		t.Errorf("empty output = %q", buf.String())
	}
}

func TestWriteRuns(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	runs := []models.RunSummary{
		{Mode: "merge", Output: "all.ics", Entries: 4, StartedAt: start, FinishedAt: start.Add(time.Second)},
		{Mode: "events", Output: "events.ics", StartedAt: start, FinishedAt: start, Error: "source unavailable"},
	}
	if err := WriteRuns(&buf, runs); err != nil {
		t.Fatalf("WriteRuns() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "all.ics") || !strings.HasSuffix(lines[0], "ok") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "failed: source unavailable") {
		t.Errorf("line 1 = %q", lines[1])
	}
}
