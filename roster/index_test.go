package roster

import (
	"testing"

	"github.com/aweist/league-calendar/models"
)

func TestIndex_Lookup(t *testing.T) {
	teams := []models.TeamStats{
		{Name: "Foo", MatchWins: 3, Losses: 1, Members: []string{"Ann", "Bob"}},
		{Name: "Bar", MatchWins: 0, Losses: 4},
		{Name: "Foo", MatchWins: 9},
	}
	idx := Build(teams)

	foo, ok := idx.Lookup("Foo")
	if !ok {
		t.Fatal("Foo should be indexed")
	}
	if foo.MatchWins != 3 {
		t.Errorf("first Foo row should win, got %+v", foo)
	}

	for _, name := range []string{"foo", "Foo ", "Baz", ""} {
		if _, ok := idx.Lookup(name); ok {
			t.Errorf("Lookup(%q) should miss: matching is exact", name)
		}
	}

	if idx.Len() != 3 || len(idx.All()) != 3 {
		t.Errorf("All() should keep every row, got %d", len(idx.All()))
	}
	if idx.All()[1].Name != "Bar" {
		t.Error("All() should preserve source order")
	}
}

func TestIndex_ReadOnly(t *testing.T) {
	teams := []models.TeamStats{{Name: "Foo"}}
	idx := Build(teams)

	teams[0].Name = "Changed"
	all := idx.All()
	all[0].Name = "Mutated"

	if idx.All()[0].Name != "Foo" {
		t.Error("index should not share backing storage with callers")
	}
}

func TestIndex_Nil(t *testing.T) {
	var idx *Index
	if _, ok := idx.Lookup("Foo"); ok {
		t.Error("nil index should find nothing")
	}
	if idx.All() != nil || idx.Len() != 0 {
		t.Error("nil index should be empty")
	}
}
