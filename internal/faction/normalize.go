// Load-boundary normalization. Saved documents come back from disk
// hand-edited, written by older tool versions, or truncated; Normalize
// turns whatever parsed out of them into a fully-populated Faction without
// ever failing on anything short of a non-object root.
package faction

import (
	"errors"
	"strconv"
	"strings"
)

// ErrMalformedDocument reports that a loaded document is not a JSON object
// at the top level. It is the only blocking load error: the caller keeps
// its current state and surfaces a warning. Everything below the root is
// recovered by defaulting.
var ErrMalformedDocument = errors.New("document root is not a JSON object")

// Normalize converts an untyped parsed document into a Faction. Every
// scalar gets its documented default when absent or mistyped, every
// collection normalizes element-wise, and elements missing an id are
// assigned one from the owning collection's allocator.
//
// Normalize is idempotent: feeding it an already-normalized document
// changes nothing — explicit values survive and ids are never reassigned.
func Normalize(raw any) (*Faction, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrMalformedDocument
	}

	f := New()
	f.Name = asString(doc["factionName"])
	f.Notes = asString(doc["factionNotes"])
	f.Coffers = normalizeCoffers(doc["coffers"])

	for _, v := range asArray(doc["hexes"]) {
		f.Hexes = append(f.Hexes, normalizeHex(v))
	}
	for _, v := range asArray(doc["events"]) {
		f.Events = append(f.Events, normalizeEvent(v))
	}
	for _, v := range asArray(doc["seasonGains"]) {
		f.SeasonGains = append(f.SeasonGains, normalizeGain(v))
	}

	assignMissingIDs(f)
	return f, nil
}

func normalizeCoffers(v any) Coffers {
	obj := asObject(v)
	return Coffers{
		Food:   asInt(obj["food"]),
		Wood:   asInt(obj["wood"]),
		Stone:  asInt(obj["stone"]),
		Ore:    asInt(obj["ore"]),
		Silver: asInt(obj["silver"]),
		Gold:   asInt(obj["gold"]),
	}.Clamped()
}

func normalizeHex(v any) Hex {
	obj := asObject(v)
	h := Hex{
		ID:         asString(obj["id"]),
		Name:       asString(obj["name"]),
		Coords:     asString(obj["coords"]),
		Terrain:    asString(obj["terrain"]),
		Structures: asString(obj["structures"]),
		Notes:      asString(obj["notes"]),
		Expanded:   asBool(obj["expanded"]),
	}
	if h.Terrain == "" {
		h.Terrain = TerrainPlains
	}
	return h
}

func normalizeEvent(v any) Event {
	obj := asObject(v)
	e := Event{
		ID:        asString(obj["id"]),
		Name:      asString(obj["name"]),
		Date:      asString(obj["date"]),
		Type:      asString(obj["type"]),
		Summary:   asString(obj["summary"]),
		Builds:    []Build{},
		Movements: []Movement{},
		Action:    normalizeAction(obj["offensiveAction"]),
		Expanded:  asBool(obj["expanded"]),
	}
	if e.Type == "" {
		e.Type = EventDay
	}
	for _, bv := range asArray(obj["builds"]) {
		bo := asObject(bv)
		e.Builds = append(e.Builds, Build{
			ID:        asString(bo["id"]),
			HexID:     asString(bo["hexId"]),
			Structure: asString(bo["structure"]),
			Notes:     asString(bo["notes"]),
			IsDeleted: asBool(bo["isDeleted"]),
		})
	}
	for _, mv := range asArray(obj["movements"]) {
		mo := asObject(mv)
		e.Movements = append(e.Movements, Movement{
			ID:        asString(mo["id"]),
			From:      asString(mo["from"]),
			To:        asString(mo["to"]),
			Assets:    asString(mo["assets"]),
			Notes:     asString(mo["notes"]),
			IsDeleted: asBool(mo["isDeleted"]),
		})
	}
	return e
}

// normalizeAction always yields a value, never nil: an absent or malformed
// action becomes the empty placeholder so downstream code never branches
// on presence.
func normalizeAction(v any) OffensiveAction {
	obj := asObject(v)
	a := OffensiveAction{
		Type:          asString(obj["type"]),
		Target:        asString(obj["target"]),
		TargetFaction: asString(obj["targetFaction"]),
		Outcome:       asString(obj["outcome"]),
		Notes:         asString(obj["notes"]),
	}
	if a.Outcome != OutcomeSuccess && a.Outcome != OutcomeFailure {
		a.Outcome = OutcomeUnknown
	}
	return a
}

func normalizeGain(v any) SeasonGain {
	obj := asObject(v)
	g := SeasonGain{
		ID:                 asString(obj["id"]),
		Season:             asString(obj["season"]),
		Year:               asInt(obj["year"]),
		Food:               asInt(obj["food"]),
		Wood:               asInt(obj["wood"]),
		Stone:              asInt(obj["stone"]),
		Ore:                asInt(obj["ore"]),
		Silver:             asInt(obj["silver"]),
		Gold:               asInt(obj["gold"]),
		Notes:              asString(obj["notes"]),
		Assignments:        asString(obj["assignments"]),
		AssignmentsApplied: asBool(obj["assignmentsApplied"]),
	}
	if g.Season == "" {
		g.Season = SeasonSpring
	}
	return g
}

// assignMissingIDs fills empty ids after all collections are in place.
// Build and movement ids are allocated against the flattened cross-event
// id set, keeping their numbering global.
func assignMissingIDs(f *Faction) {
	hexIDs := collectIDs(len(f.Hexes), func(i int) string { return f.Hexes[i].ID })
	for i := range f.Hexes {
		if f.Hexes[i].ID == "" {
			f.Hexes[i].ID = NextID(hexIDs, PrefixHex)
			hexIDs = append(hexIDs, f.Hexes[i].ID)
		}
	}

	eventIDs := collectIDs(len(f.Events), func(i int) string { return f.Events[i].ID })
	for i := range f.Events {
		if f.Events[i].ID == "" {
			f.Events[i].ID = NextID(eventIDs, PrefixEvent)
			eventIDs = append(eventIDs, f.Events[i].ID)
		}
	}

	gainIDs := collectIDs(len(f.SeasonGains), func(i int) string { return f.SeasonGains[i].ID })
	for i := range f.SeasonGains {
		if f.SeasonGains[i].ID == "" {
			f.SeasonGains[i].ID = NextID(gainIDs, PrefixGain)
			gainIDs = append(gainIDs, f.SeasonGains[i].ID)
		}
	}

	var buildIDs, moveIDs []string
	for i := range f.Events {
		for j := range f.Events[i].Builds {
			buildIDs = append(buildIDs, f.Events[i].Builds[j].ID)
		}
		for j := range f.Events[i].Movements {
			moveIDs = append(moveIDs, f.Events[i].Movements[j].ID)
		}
	}
	for i := range f.Events {
		for j := range f.Events[i].Builds {
			if f.Events[i].Builds[j].ID == "" {
				id := NextID(buildIDs, PrefixBuild)
				f.Events[i].Builds[j].ID = id
				buildIDs = append(buildIDs, id)
			}
		}
		for j := range f.Events[i].Movements {
			if f.Events[i].Movements[j].ID == "" {
				id := NextID(moveIDs, PrefixMovement)
				f.Events[i].Movements[j].ID = id
				moveIDs = append(moveIDs, id)
			}
		}
	}
}

func collectIDs(n int, get func(int) string) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, get(i))
	}
	return ids
}

// asString returns v when it is a string, "" otherwise.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asInt coerces v to an integer: JSON numbers truncate, numeric strings
// parse, everything else is 0.
func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if fl, err := strconv.ParseFloat(s, 64); err == nil {
			return int(fl)
		}
		return 0
	default:
		return 0
	}
}

// asBool returns v when it is a bool, false otherwise.
func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asObject returns v as a map when it is a JSON object, nil otherwise.
// Indexing a nil map is safe, so callers default every field of a
// malformed element without special-casing.
func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asArray returns v as a slice when it is a JSON array, nil otherwise.
func asArray(v any) []any {
	a, _ := v.([]any)
	return a
}
