package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aweist/league-calendar/models"
	"github.com/aweist/league-calendar/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func writeResult(w io.Writer, result pipeline.Result) error {
	_, err := fmt.Fprintf(w, "Wrote %d entries to %s (%d dropped)\n", result.Entries, result.Output, result.Dropped)
	return err
}

// WriteTeams writes the roster in the given format.
func WriteTeams(w io.Writer, teams []models.TeamStats, format OutputFormat) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(teams)
	case FormatText:
		return writeTeamsText(w, teams)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeTeamsText(w io.Writer, teams []models.TeamStats) error {
	if len(teams) == 0 {
		_, err := fmt.Fprintln(w, "No teams found.")
		return err
	}

	for _, team := range teams {
		fmt.Fprintf(w, "%s%s %s (%d-%d, %d sets)\n", team.Tier, team.Circuit, team.Name, team.MatchWins, team.Losses, team.SetWins)
		if team.Captain != "" {
			fmt.Fprintf(w, "  Captain: %s\n", team.Captain)
		}
		if len(team.Members) > 0 {
			fmt.Fprintf(w, "  Roster: %s\n", strings.Join(team.Members, ", "))
		}
	}
	return nil
}

// WriteRuns lists archived runs, newest first.
func WriteRuns(w io.Writer, runs []models.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed: " + run.Error
		}
		took := run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond)
		fmt.Fprintf(w, "%s  %-7s  %3d entries  %3d dropped  %-8s  %s  %s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Mode, run.Entries, run.Dropped, took, run.Output, status)
	}
	return nil
}

// WriteFetches lists up to limit archived downloads, newest first.
func WriteFetches(w io.Writer, fetches []models.FetchRecord, limit int) error {
	if len(fetches) == 0 {
		_, err := fmt.Fprintln(w, "No fetches recorded.")
		return err
	}

	shown := 0
	for i := len(fetches) - 1; i >= 0 && shown < limit; i-- {
		rec := fetches[i]
		fmt.Fprintf(w, "%s  %-12s  %8d bytes  %s\n",
			rec.FetchedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Source, rec.Size, rec.URL)
		shown++
	}
	return nil
}
