// Package seed builds a ready-to-edit demo campaign document. Terrain
// comes from layered simplex noise over the coordinate grid so the sample
// map looks like a map instead of a uniform plain.
package seed

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/hexhaven/factionledger/internal/faction"
)

// Options controls demo campaign generation.
type Options struct {
	Name  string // Faction name. Empty picks one from the stock list.
	Hexes int    // Hex count (grid is filled row-major). Min 1.
	Seed  int64  // Noise/random seed. 0 = random.
}

// Grid width for coordinate labels: columns A.., rows 1..
const gridWidth = 6

// Terrain thresholds, tuned so a small grid still shows variety.
const (
	seaLevel    = 0.30
	mountainLvl = 0.72
	forestRain  = 0.55
	blightLvl   = 0.92
)

var stockNames = []string{
	"The Ashen Banner",
	"Order of the Grey Vale",
	"Thornwall Compact",
	"Keepers of the Low Road",
}

// Campaign generates a complete demo faction: terrain-varied hexes, a
// starter event with a build and a movement, and one logged season gain.
// All ids come from the sequential allocator, so the result normalizes
// idempotently and new entities added afterward cannot collide.
func Campaign(opts Options) *faction.Faction {
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	if opts.Hexes < 1 {
		opts.Hexes = 12
	}

	rng := rand.New(rand.NewSource(seed))
	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)
	blightNoise := opensimplex.NewNormalized(seed + 2)

	f := faction.New()
	f.Name = opts.Name
	if f.Name == "" {
		f.Name = stockNames[rng.Intn(len(stockNames))]
	}
	f.Notes = "Demo campaign. Replace freely."
	f.Coffers = faction.Coffers{Food: 20, Wood: 15, Stone: 10, Ore: 5, Silver: 8, Gold: 3}

	for i := 0; i < opts.Hexes; i++ {
		col, row := i%gridWidth, i/gridWidth
		x, y := float64(col), float64(row)

		elev := octaveNoise(elevNoise, x, y, 4, 0.35, 0.5)
		rain := octaveNoise(rainNoise, x, y, 3, 0.30, 0.5)
		blight := blightNoise.Eval2(x*0.8, y*0.8)

		terrain := deriveTerrain(elev, rain, blight)

		h := faction.Hex{
			ID:      f.NextHexID(),
			Name:    hexName(terrain, i),
			Coords:  fmt.Sprintf("%c%d", 'A'+col, row+1),
			Terrain: terrain,
		}
		if terrain != faction.TerrainSea && rng.Float64() < 0.4 {
			h.Structures = starterStructure(terrain)
		}
		f.Hexes = append(f.Hexes, h)
	}

	homeID := firstLandHex(f)

	ev := faction.Event{
		ID:      f.NextEventID(),
		Name:    "Founding Muster",
		Date:    "2026-03-21",
		Type:    faction.EventDay,
		Summary: "The banner is raised and the first holdings are claimed.",
		Builds: []faction.Build{{
			ID:        f.NextBuildID(),
			HexID:     homeID,
			Structure: "Farm",
			Notes:     "First planting.",
		}},
		Movements: []faction.Movement{{
			ID:     f.NextMovementID(),
			From:   "muster grounds",
			To:     homeID,
			Assets: "2 scout bands, 1 supply wagon",
		}},
		Action: faction.OffensiveAction{
			Type:   faction.ActionLandSearch,
			Target: "the unclaimed marches",
		},
	}
	f.Events = append(f.Events, ev)

	f.SeasonGains = append(f.SeasonGains, faction.SeasonGain{
		ID:     f.NextGainID(),
		Season: faction.SeasonSpring,
		Year:   1,
		Food:   6,
		Wood:   4,
		Stone:  2,
		Notes:  "First spring levy.",
	})

	return f
}

// deriveTerrain maps noise samples to a terrain type. Blight overrides
// everything but open water.
func deriveTerrain(elev, rain, blight float64) faction.Terrain {
	if elev < seaLevel {
		return faction.TerrainSea
	}
	if blight > blightLvl {
		return faction.TerrainBlasted
	}
	if elev > mountainLvl {
		return faction.TerrainMountain
	}
	if rain > forestRain {
		return faction.TerrainForest
	}
	return faction.TerrainPlains
}

// octaveNoise samples multiple noise octaves for less uniform output.
func octaveNoise(n opensimplex.Noise, x, y float64, octaves int, freq, persistence float64) float64 {
	total, amplitude, maxValue := 0.0, 1.0, 0.0
	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*freq, y*freq) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		freq *= 2
	}
	return total / maxValue
}

func hexName(t faction.Terrain, i int) string {
	switch t {
	case faction.TerrainSea:
		return fmt.Sprintf("Open Water %d", i+1)
	case faction.TerrainMountain:
		return fmt.Sprintf("High Reach %d", i+1)
	case faction.TerrainForest:
		return fmt.Sprintf("Deepwood %d", i+1)
	case faction.TerrainBlasted:
		return fmt.Sprintf("The Scar %d", i+1)
	default:
		return fmt.Sprintf("Open Field %d", i+1)
	}
}

func starterStructure(t faction.Terrain) string {
	switch t {
	case faction.TerrainMountain:
		return "Quarry"
	case faction.TerrainForest:
		return "Lumber Mill"
	case faction.TerrainBlasted:
		return "Watchtower"
	default:
		return "Farm"
	}
}

func firstLandHex(f *faction.Faction) string {
	for _, h := range f.Hexes {
		if h.Terrain != faction.TerrainSea {
			return h.ID
		}
	}
	if len(f.Hexes) > 0 {
		return f.Hexes[0].ID
	}
	return ""
}
