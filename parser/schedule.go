package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aweist/league-calendar/models"
)

// MatchHeaders are the columns a match sheet must carry.
var MatchHeaders = []string{
	"Tier",
	"Circ",
	"Away Team",
	"Home Team",
	"Time (Eastern)",
	"Date",
	"Caster",
	"Co-casters",
	"Stream Link",
	"VOD Link",
	"Concatenate",
}

// TeamHeaders are the columns a team sheet must carry. Member names follow
// the Captain column in a fixed-width block.
var TeamHeaders = []string{
	"Tier",
	"Circuit",
	"Team",
	"Match Wins",
	"Matches Played",
	"Set Wins",
	"Captain",
}

const DefaultMemberColumns = 8

// MatchRows parses a match sheet into typed matches.
func MatchRows(rows [][]string) ([]models.Match, error) {
	records, _, err := ParseTable(rows, MatchHeaders)
	if err != nil {
		return nil, err
	}
	return ParseMatches(records), nil
}

// ParseMatches maps canonical records from any source onto matches.
func ParseMatches(records []models.Record) []models.Match {
	matches := make([]models.Match, 0, len(records))
	for _, r := range records {
		matches = append(matches, models.Match{
			Tier:        field(r, "tier"),
			Circuit:     field(r, "circ"),
			Away:        field(r, "away team"),
			Home:        field(r, "home team"),
			Date:        field(r, "date"),
			Time:        field(r, "time (eastern)"),
			Start:       field(r, "start"),
			Duration:    field(r, "duration"),
			Caster:      field(r, "caster"),
			CoCasters:   field(r, "co-casters"),
			StreamLink:  field(r, "stream link"),
			VODLink:     field(r, "vod link"),
			Concatenate: field(r, "concatenate"),
		})
	}
	return matches
}

// TeamRows parses a team sheet. Wins, played and set wins must be numeric
// (set wins may be blank); rows failing that are skipped. Losses are derived
// as played minus won.
func TeamRows(rows [][]string, memberColumns int) ([]models.TeamStats, int, error) {
	if memberColumns <= 0 {
		memberColumns = DefaultMemberColumns
	}

	header, err := FindHeader(rows, TeamHeaders)
	if err != nil {
		return nil, 0, err
	}
	captainCol := header.Columns[CanonicalKey("Captain")]

	var teams []models.TeamStats
	skipped := 0
	for _, row := range rows[header.Row+1:] {
		if !hasContent(row) {
			continue
		}
		team, err := parseTeam(header, row, captainCol, memberColumns)
		if err != nil {
			skipped++
			continue
		}
		teams = append(teams, team)
	}

	return teams, skipped, nil
}

func parseTeam(header Header, row []string, captainCol, memberColumns int) (models.TeamStats, error) {
	name := header.Cell(row, "Team")
	if name == "" {
		return models.TeamStats{}, fmt.Errorf("%w: team row without a name", models.ErrMalformedRecord)
	}

	wins, err := atoi(header.Cell(row, "Match Wins"), false)
	if err != nil {
		return models.TeamStats{}, err
	}
	played, err := atoi(header.Cell(row, "Matches Played"), false)
	if err != nil {
		return models.TeamStats{}, err
	}
	setWins, err := atoi(header.Cell(row, "Set Wins"), true)
	if err != nil {
		return models.TeamStats{}, err
	}

	return models.TeamStats{
		Name:          name,
		Tier:          header.Cell(row, "Tier"),
		Circuit:       header.Cell(row, "Circuit"),
		MatchWins:     wins,
		MatchesPlayed: played,
		Losses:        played - wins,
		SetWins:       setWins,
		Captain:       header.Cell(row, "Captain"),
		Members:       memberSlice(row, captainCol+1, memberColumns),
	}, nil
}

// memberSlice returns the non-blank cells of row[start:start+width] in order.
func memberSlice(row []string, start, width int) []string {
	var members []string
	for i := start; i < start+width && i < len(row); i++ {
		if name := strings.TrimSpace(row[i]); name != "" {
			members = append(members, name)
		}
	}
	return members
}

func atoi(s string, blankIsZero bool) (int, error) {
	if s == "" && blankIsZero {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a count", models.ErrMalformedRecord, s)
	}
	return n, nil
}

func field(r models.Record, key string) string {
	return strings.TrimSpace(r[key])
}
