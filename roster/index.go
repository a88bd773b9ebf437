// Package roster indexes team statistics by team name for match
// description enrichment.
package roster

import (
	"github.com/aweist/league-calendar/models"
)

// Index is read-only after Build.
type Index struct {
	byName map[string]models.TeamStats
	all    []models.TeamStats
}

// Build indexes teams by exact name. When a name repeats, the first row
// wins for lookups; All still returns every row in source order.
func Build(teams []models.TeamStats) *Index {
	idx := &Index{
		byName: make(map[string]models.TeamStats, len(teams)),
		all:    make([]models.TeamStats, len(teams)),
	}
	copy(idx.all, teams)
	for _, team := range teams {
		if _, exists := idx.byName[team.Name]; !exists {
			idx.byName[team.Name] = team
		}
	}
	return idx
}

// Lookup matches by exact string equality. A nil index finds nothing.
func (idx *Index) Lookup(name string) (models.TeamStats, bool) {
	if idx == nil {
		return models.TeamStats{}, false
	}
	team, ok := idx.byName[name]
	return team, ok
}

func (idx *Index) All() []models.TeamStats {
	if idx == nil {
		return nil
	}
	out := make([]models.TeamStats, len(idx.all))
	copy(out, idx.all)
	return out
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.all)
}
