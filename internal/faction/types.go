// Package faction defines the campaign document model: the faction itself,
// its coffers, controlled hexes, turn events, and seasonal gain log. The
// whole graph round-trips through a single exported JSON document.
package faction

import "strings"

// Terrain designates a hex's terrain type. Stored as a string so documents
// written by older versions with free-text terrain still load.
type Terrain = string

const (
	TerrainPlains   Terrain = "Plains"
	TerrainForest   Terrain = "Forest"
	TerrainMountain Terrain = "Mountain"
	TerrainSea      Terrain = "Sea"
	TerrainBlasted  Terrain = "Blasted Lands"
)

// Terrains lists the recognized terrain types in display order.
var Terrains = []Terrain{TerrainPlains, TerrainForest, TerrainMountain, TerrainSea, TerrainBlasted}

// Event types. The set is extensible; unrecognized values load as-is.
const (
	EventDay      = "Day Event"
	EventCampout  = "Campout"
	EventFestival = "Festival Event"
	EventVirtual  = "Virtual Event"
)

// EventTypes lists the recognized event types in display order.
var EventTypes = []string{EventDay, EventCampout, EventFestival, EventVirtual}

// Offensive action types.
const (
	ActionLandSearch = "Land Search"
	ActionInvasion   = "Invasion"
	ActionQuest      = "Quest"
)

// ActionTypes lists the offensive action types in display order.
var ActionTypes = []string{ActionLandSearch, ActionInvasion, ActionQuest}

// Offensive action outcomes. Empty string means not yet resolved.
const (
	OutcomeUnknown = ""
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Seasons in campaign order.
const (
	SeasonSpring = "Spring"
	SeasonSummer = "Summer"
	SeasonFall   = "Fall"
	SeasonWinter = "Winter"
)

// Seasons lists the four seasons in campaign order.
var Seasons = []string{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter}

// Structures is the buildable structure catalog. Hex structure lists and
// Build records draw from this set; the upkeep table is keyed by these names.
var Structures = []string{
	"Farm",
	"Granary",
	"Lumber Mill",
	"Quarry",
	"Mine",
	"Market",
	"Bank",
	"Barracks",
	"Watchtower",
	"Palisade",
	"Dock",
	"Shrine",
}

// Coffers is the faction's current resource stockpile. Every counter is
// kept non-negative; negative input is clamped to zero at the load boundary
// and by the store's setter.
type Coffers struct {
	Food   int `json:"food"`
	Wood   int `json:"wood"`
	Stone  int `json:"stone"`
	Ore    int `json:"ore"`
	Silver int `json:"silver"`
	Gold   int `json:"gold"`
}

// Clamped returns a copy with every negative counter raised to zero.
func (c Coffers) Clamped() Coffers {
	clamp := func(n int) int {
		if n < 0 {
			return 0
		}
		return n
	}
	return Coffers{
		Food:   clamp(c.Food),
		Wood:   clamp(c.Wood),
		Stone:  clamp(c.Stone),
		Ore:    clamp(c.Ore),
		Silver: clamp(c.Silver),
		Gold:   clamp(c.Gold),
	}
}

// Hex is one controlled territory cell on the campaign's hex grid.
type Hex struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Coords     string  `json:"coords"`
	Terrain    Terrain `json:"terrain"`
	Structures string  `json:"structures"` // Comma-joined structure names.
	Notes      string  `json:"notes"`
	Expanded   bool    `json:"expanded"` // UI expand/collapse state only.
}

// StructureList splits the comma-joined structure field into trimmed names.
// Empty entries are dropped.
func (h Hex) StructureList() []string {
	var out []string
	for _, s := range strings.Split(h.Structures, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Build records a structure built on a hex during an event. The hex
// reference is weak: deleting the hex leaves the build valid, rendering the
// location as "none".
type Build struct {
	ID        string `json:"id"`
	HexID     string `json:"hexId"`
	Structure string `json:"structure"`
	Notes     string `json:"notes"`
	IsDeleted bool   `json:"isDeleted"`
}

// Movement records assets moved between two locations during an event.
// From and To hold either a hex id or free text.
type Movement struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Assets    string `json:"assets"`
	Notes     string `json:"notes"`
	IsDeleted bool   `json:"isDeleted"`
}

// OffensiveAction is an event's single offensive action. The zero value is
// the "no action" placeholder; consumers never see a nil action.
type OffensiveAction struct {
	Type          string `json:"type"`
	Target        string `json:"target"`
	TargetFaction string `json:"targetFaction"`
	Outcome       string `json:"outcome"`
	Notes         string `json:"notes"`
}

// IsZero reports whether the action is the empty placeholder.
func (a OffensiveAction) IsZero() bool {
	return a == OffensiveAction{}
}

// Event is one entry on the campaign's turn timeline.
type Event struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Date      string          `json:"date"` // ISO date string.
	Type      string          `json:"type"`
	Summary   string          `json:"summary"`
	Builds    []Build         `json:"builds"`
	Movements []Movement      `json:"movements"`
	Action    OffensiveAction `json:"offensiveAction"`
	Expanded  bool            `json:"expanded"`
}

// ActiveBuilds returns the event's builds with soft-deleted entries
// filtered out. Readers aggregate over this, never over Builds directly,
// so soft and hard deletion look the same.
func (e Event) ActiveBuilds() []Build {
	var out []Build
	for _, b := range e.Builds {
		if !b.IsDeleted {
			out = append(out, b)
		}
	}
	return out
}

// ActiveMovements returns the event's movements with soft-deleted entries
// filtered out.
func (e Event) ActiveMovements() []Movement {
	var out []Movement
	for _, m := range e.Movements {
		if !m.IsDeleted {
			out = append(out, m)
		}
	}
	return out
}

// SeasonGain logs resources received during one seasonal cycle. Assignments
// and AssignmentsApplied are carried verbatim for documents written by
// earlier versions; nothing here interprets them.
type SeasonGain struct {
	ID                 string `json:"id"`
	Season             string `json:"season"`
	Year               int    `json:"year"`
	Food               int    `json:"food"`
	Wood               int    `json:"wood"`
	Stone              int    `json:"stone"`
	Ore                int    `json:"ore"`
	Silver             int    `json:"silver"`
	Gold               int    `json:"gold"`
	Notes              string `json:"notes"`
	Assignments        string `json:"assignments"`
	AssignmentsApplied bool   `json:"assignmentsApplied"`
}

// Faction is the document root: the single player faction this tool tracks.
type Faction struct {
	Name        string       `json:"factionName"`
	Notes       string       `json:"factionNotes"`
	Coffers     Coffers      `json:"coffers"`
	Hexes       []Hex        `json:"hexes"`
	Events      []Event      `json:"events"`
	SeasonGains []SeasonGain `json:"seasonGains"`
}

// New returns an empty faction with non-nil collections, matching what
// Normalize produces for an empty document.
func New() *Faction {
	return &Faction{
		Hexes:       []Hex{},
		Events:      []Event{},
		SeasonGains: []SeasonGain{},
	}
}

// HexByID returns the hex with the given id, or nil. Used to resolve the
// weak Build→Hex reference; a nil result renders as "none".
func (f *Faction) HexByID(id string) *Hex {
	for i := range f.Hexes {
		if f.Hexes[i].ID == id {
			return &f.Hexes[i]
		}
	}
	return nil
}

// EventByID returns the event with the given id, or nil.
func (f *Faction) EventByID(id string) *Event {
	for i := range f.Events {
		if f.Events[i].ID == id {
			return &f.Events[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the faction.
func (f *Faction) Clone() *Faction {
	out := *f
	out.Hexes = append([]Hex{}, f.Hexes...)
	out.SeasonGains = append([]SeasonGain{}, f.SeasonGains...)
	out.Events = make([]Event, len(f.Events))
	for i, e := range f.Events {
		e.Builds = append([]Build{}, e.Builds...)
		e.Movements = append([]Movement{}, e.Movements...)
		out.Events[i] = e
	}
	return &out
}
