package calendar

import (
	"fmt"
	"strings"

	"github.com/aweist/league-calendar/models"
	"github.com/aweist/league-calendar/parser"
	"github.com/aweist/league-calendar/roster"
)

const NoCasterNotice = "No caster yet"

var circuitNames = map[string]string{
	"W":  "West",
	"E":  "East",
	"Wa": "West Conference A",
	"Wb": "West Conference B",
}

// CircuitName expands a region abbreviation. Unknown abbreviations expand
// to "".
func CircuitName(abbrev string) string {
	return circuitNames[strings.TrimSpace(abbrev)]
}

func circuitBlock(tier, circuit string) string {
	name := CircuitName(circuit)
	if tier == "" {
		return name
	}
	return strings.TrimSpace("Tier " + tier + " " + name)
}

func casterBlock(caster string) string {
	if parser.IsPlaceholder(caster) {
		return NoCasterNotice
	}
	return "Casted by " + caster
}

func coCasterBlock(coCasters string) string {
	if parser.IsPlaceholder(coCasters) {
		return ""
	}
	return "Co-casted by " + coCasters
}

// NormalizeLink prefixes https:// when no scheme is present. Placeholder
// links come back empty.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if parser.IsPlaceholder(link) {
		return ""
	}
	if !strings.Contains(link, "://") {
		link = "https://" + link
	}
	return link
}

func linkBlock(label, link string) string {
	link = NormalizeLink(link)
	if link == "" {
		return ""
	}
	return label + ": " + link
}

func teamBlock(side, name string, idx *roster.Index) string {
	team, ok := idx.Lookup(name)
	if !ok {
		return ""
	}
	block := fmt.Sprintf("%s: %s (%d-%d)", side, team.Name, team.MatchWins, team.Losses)
	if len(team.Members) > 0 {
		block += "\nRoster: " + strings.Join(team.Members, ", ")
	}
	return block
}

// MatchDescription assembles the description blocks of a match in a fixed
// order, leaving out every block whose data is empty.
func MatchDescription(m models.Match, idx *roster.Index) string {
	return joinBlocks(
		circuitBlock(m.Tier, m.Circuit),
		casterBlock(m.Caster),
		coCasterBlock(m.CoCasters),
		linkBlock("Stream", m.StreamLink),
		teamBlock("Away", m.Away, idx),
		teamBlock("Home", m.Home, idx),
		linkBlock("VOD", m.VODLink),
	)
}

func EventDescription(e models.Event) string {
	var links []string
	for _, link := range e.Links {
		if l := NormalizeLink(link); l != "" {
			links = append(links, l)
		}
	}

	var linkBlock, organizerBlock string
	if len(links) > 0 {
		linkBlock = "Links:\n" + strings.Join(links, "\n")
	}
	if len(e.Organizers) > 0 {
		organizerBlock = "Organized by " + strings.Join(e.Organizers, ", ")
	}

	return joinBlocks(e.Description, linkBlock, organizerBlock)
}

// joinBlocks separates non-empty blocks with a blank line and trims any
// trailing separator characters.
func joinBlocks(blocks ...string) string {
	var kept []string
	for _, b := range blocks {
		if b = strings.TrimSpace(b); b != "" {
			kept = append(kept, b)
		}
	}
	return strings.TrimRight(strings.Join(kept, "\n\n"), " \n,;")
}
