// Identifier allocation for document entities.
//
// Two strategies coexist in saved documents: sequential ids ("hex_12")
// allocated by scanning the owning collection, and short random tokens
// ("build_k3f9x2") from earlier tool versions. Every consumer accepts both;
// only allocation cares which strategy produced an id.
package faction

import (
	"crypto/rand"
	"strconv"
	"strings"
)

// Canonical id prefixes per collection. Build and movement ids are numbered
// globally across all events, not per event, so flattening every event's
// builds still yields unique ids.
const (
	PrefixHex      = "hex_"
	PrefixEvent    = "event_"
	PrefixGain     = "gain_"
	PrefixBuild    = "build_"
	PrefixMovement = "move_"
)

// NextID returns prefix + (max numeric suffix under prefix + 1), or
// prefix + "1" when no id matches. Non-numeric suffixes (including random
// tokens) are ignored, not errors. The counter is always derived from the
// collection's current contents so merged documents with higher-numbered
// ids can never cause a collision.
func NextID(ids []string, prefix string) string {
	max := 0
	for _, id := range ids {
		suffix, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return prefix + strconv.Itoa(max+1)
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandomID returns prefix + a 6-character random base-36 token. Uniqueness
// is probabilistic; callers needing a guarantee use NextID instead.
func RandomID(prefix string) string {
	var buf [6]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// fixed token rather than propagate an error nobody can act on.
		return prefix + "000000"
	}
	for i, b := range buf {
		buf[i] = base36[int(b)%len(base36)]
	}
	return prefix + string(buf[:])
}

// NextHexID allocates the next sequential hex id for this faction.
func (f *Faction) NextHexID() string {
	ids := make([]string, 0, len(f.Hexes))
	for _, h := range f.Hexes {
		ids = append(ids, h.ID)
	}
	return NextID(ids, PrefixHex)
}

// NextEventID allocates the next sequential event id for this faction.
func (f *Faction) NextEventID() string {
	ids := make([]string, 0, len(f.Events))
	for _, e := range f.Events {
		ids = append(ids, e.ID)
	}
	return NextID(ids, PrefixEvent)
}

// NextGainID allocates the next sequential season-gain id for this faction.
func (f *Faction) NextGainID() string {
	ids := make([]string, 0, len(f.SeasonGains))
	for _, g := range f.SeasonGains {
		ids = append(ids, g.ID)
	}
	return NextID(ids, PrefixGain)
}

// NextBuildID allocates the next sequential build id, scanning builds
// across every event.
func (f *Faction) NextBuildID() string {
	var ids []string
	for _, e := range f.Events {
		for _, b := range e.Builds {
			ids = append(ids, b.ID)
		}
	}
	return NextID(ids, PrefixBuild)
}

// NextMovementID allocates the next sequential movement id, scanning
// movements across every event.
func (f *Faction) NextMovementID() string {
	var ids []string
	for _, e := range f.Events {
		for _, m := range e.Movements {
			ids = append(ids, m.ID)
		}
	}
	return NextID(ids, PrefixMovement)
}
