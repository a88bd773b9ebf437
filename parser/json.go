package parser

import (
	"strings"

	"github.com/aweist/league-calendar/models"
	"github.com/tidwall/gjson"
)

// FieldMap maps canonical field names to gjson paths into an API object.
// Nested objects are reached with dotted paths and list members with the
// "#" operator, e.g. "secondary_casters.#.name".
type FieldMap map[string]string

// DefaultMatchFields locate match fields in a /matches result.
var DefaultMatchFields = FieldMap{
	"tier":        "circuit.tier",
	"circ":        "circuit.region",
	"away team":   "away.name",
	"home team":   "home.name",
	"start":       "start_time",
	"duration":    "duration",
	"caster":      "primary_caster.name",
	"co-casters":  "secondary_casters.#.name",
	"stream link": "stream_link",
	"vod link":    "vod_link",
	"concatenate": "id",
}

// NormalizeJSON extracts every mapped field from raw. Arrays are joined
// with ", " after dropping blank members; missing paths yield "".
func NormalizeJSON(raw models.RawRecord, fields FieldMap) models.Record {
	record := make(models.Record, len(fields))
	for key, path := range fields {
		record[CanonicalKey(key)] = stringValue(gjson.GetBytes(raw, path))
	}
	return record
}

// APIMatches normalizes /matches results into matches.
func APIMatches(raws []models.RawRecord, fields FieldMap) []models.Match {
	if fields == nil {
		fields = DefaultMatchFields
	}
	records := make([]models.Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, NormalizeJSON(raw, fields))
	}
	return ParseMatches(records)
}

// APIEvents normalizes /events results. Links and organizers may be plain
// strings or objects; objects contribute their url or name.
func APIEvents(raws []models.RawRecord) []models.Event {
	events := make([]models.Event, 0, len(raws))
	for _, raw := range raws {
		obj := gjson.ParseBytes(raw)
		events = append(events, models.Event{
			Name:        strings.TrimSpace(obj.Get("name").String()),
			StartTime:   strings.TrimSpace(obj.Get("start_time").String()),
			Duration:    strings.TrimSpace(obj.Get("duration").String()),
			Description: strings.TrimSpace(obj.Get("description").String()),
			Links:       listValues(obj.Get("links"), "url", "link", "href"),
			Organizers:  listValues(obj.Get("organizers"), "name", "username", "display_name"),
		})
	}
	return events
}

func stringValue(res gjson.Result) string {
	if !res.IsArray() {
		return strings.TrimSpace(res.String())
	}
	var parts []string
	res.ForEach(func(_, v gjson.Result) bool {
		if s := strings.TrimSpace(v.String()); s != "" {
			parts = append(parts, s)
		}
		return true
	})
	return strings.Join(parts, ", ")
}

func listValues(res gjson.Result, objectKeys ...string) []string {
	var values []string
	res.ForEach(func(_, v gjson.Result) bool {
		s := v.String()
		if v.IsObject() {
			s = ""
			for _, key := range objectKeys {
				if got := v.Get(key); got.Exists() && got.String() != "" {
					s = got.String()
					break
				}
			}
		}
		if s = strings.TrimSpace(s); s != "" {
			values = append(values, s)
		}
		return true
	})
	return values
}
