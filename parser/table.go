package parser

import (
	"fmt"
	"strings"

	"github.com/aweist/league-calendar/models"
)

// CanonicalKey lower-cases a header or key and collapses runs of whitespace
// so "Away  Team " and "away team" address the same field.
func CanonicalKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Header maps canonical field names to column positions.
type Header struct {
	Row     int
	Columns map[string]int
}

// FindHeader locates the first row that carries every required header and
// records the column of each header by name, so reordered source columns
// keep parsing. It fails with ErrSourceUnavailable naming the missing
// headers when no row qualifies.
func FindHeader(rows [][]string, required []string) (Header, error) {
	if len(rows) == 0 {
		return Header{}, fmt.Errorf("%w: no rows in source", models.ErrSourceUnavailable)
	}

	for i, row := range rows {
		columns := make(map[string]int, len(row))
		for col, cell := range row {
			key := CanonicalKey(cell)
			if key == "" {
				continue
			}
			if _, dup := columns[key]; !dup {
				columns[key] = col
			}
		}

		complete := true
		for _, name := range required {
			if _, ok := columns[CanonicalKey(name)]; !ok {
				complete = false
				break
			}
		}
		if complete {
			return Header{Row: i, Columns: columns}, nil
		}
	}

	return Header{}, fmt.Errorf("%w: missing required headers %s",
		models.ErrSourceUnavailable, strings.Join(requiredMissing(rows[0], required), ", "))
}

func requiredMissing(row []string, required []string) []string {
	present := make(map[string]bool, len(row))
	for _, cell := range row {
		present[CanonicalKey(cell)] = true
	}
	var missing []string
	for _, name := range required {
		if !present[CanonicalKey(name)] {
			missing = append(missing, name)
		}
	}
	return missing
}

// Cell returns the value of the named column, or "" when the row is short.
func (h Header) Cell(row []string, name string) string {
	col, ok := h.Columns[CanonicalKey(name)]
	if !ok || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// ParseTable turns every row below the header into a Record holding the
// required fields under their canonical names.
func ParseTable(rows [][]string, required []string) ([]models.Record, Header, error) {
	header, err := FindHeader(rows, required)
	if err != nil {
		return nil, Header{}, err
	}

	var records []models.Record
	for _, row := range rows[header.Row+1:] {
		if !hasContent(row) {
			continue
		}
		record := make(models.Record, len(required))
		for _, name := range required {
			record[CanonicalKey(name)] = header.Cell(row, name)
		}
		records = append(records, record)
	}

	return records, header, nil
}

func hasContent(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}
