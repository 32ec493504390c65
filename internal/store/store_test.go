package store

import (
	"testing"

	"github.com/hexhaven/factionledger/internal/faction"
)

func loaded(t *testing.T) *Store {
	t.Helper()
	f, err := faction.Normalize(map[string]any{
		"factionName": "Thornwall Compact",
		"hexes": []any{
			map[string]any{"id": "hex_1", "name": "Heartfield"},
		},
		"events": []any{
			map[string]any{"id": "event_1", "name": "First March"},
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	s := New()
	s.Replace(f)
	return s
}

func TestStoreStartsClean(t *testing.T) {
	if New().Dirty() {
		t.Fatal("new store must start clean")
	}
}

func TestMutationMarksDirty(t *testing.T) {
	s := loaded(t)
	if s.Dirty() {
		t.Fatal("store dirty right after load")
	}
	s.SetName("New Name")
	if !s.Dirty() {
		t.Fatal("mutation did not mark dirty")
	}
	s.MarkSaved()
	if s.Dirty() {
		t.Fatal("save did not reset dirty")
	}
}

func TestDirtyHookFiresOncePerTransition(t *testing.T) {
	s := loaded(t)
	var calls []bool
	s.OnDirtyChange(func(d bool) { calls = append(calls, d) })

	// A burst of mutations is one clean→dirty transition.
	s.SetName("A")
	s.SetNotes("B")
	s.SetCoffers(faction.Coffers{Food: 1})
	if len(calls) != 1 || !calls[0] {
		t.Fatalf("hook calls = %v, want [true]", calls)
	}

	s.MarkSaved()
	if len(calls) != 2 || calls[1] {
		t.Fatalf("hook calls = %v, want [true false]", calls)
	}

	// Saving again while clean must not re-fire the hook.
	s.MarkSaved()
	if len(calls) != 2 {
		t.Fatalf("hook re-fired while clean: %v", calls)
	}
}

func TestReplaceResetsDirtyAndNotifies(t *testing.T) {
	s := loaded(t)
	var notices []Notice
	s.Subscribe(func(n Notice) { notices = append(notices, n) })

	s.SetName("edited")
	if !s.Dirty() {
		t.Fatal("expected dirty")
	}

	f, _ := faction.Normalize(map[string]any{"factionName": "Fresh"})
	s.Replace(f)
	if s.Dirty() {
		t.Fatal("replace must reset dirty")
	}
	if len(notices) != 2 || notices[0] != EntityMutated || notices[1] != StateReplaced {
		t.Fatalf("notices = %v, want [EntityMutated StateReplaced]", notices)
	}
	if got := s.Snapshot().Name; got != "Fresh" {
		t.Fatalf("snapshot name = %q, want Fresh", got)
	}
}

func TestFailedMutationStaysClean(t *testing.T) {
	s := loaded(t)
	if s.UpdateHex(faction.Hex{ID: "hex_99"}) {
		t.Fatal("update of missing hex reported success")
	}
	if s.Dirty() {
		t.Fatal("failed mutation marked dirty")
	}
}

func TestCoffersNeverNegative(t *testing.T) {
	s := loaded(t)
	s.SetCoffers(faction.Coffers{Food: -5, Gold: 3})
	c := s.Snapshot().Coffers
	if c.Food != 0 || c.Gold != 3 {
		t.Fatalf("coffers = %+v, want food 0 gold 3", c)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := loaded(t)
	snap := s.Snapshot()
	snap.Hexes[0].Name = "tampered"
	if got := s.Snapshot().Hexes[0].Name; got != "Heartfield" {
		t.Fatalf("snapshot mutation leaked into store: %q", got)
	}
}

func TestHexLifecycle(t *testing.T) {
	s := loaded(t)

	var id string
	s.View(func(f *faction.Faction) { id = f.NextHexID() })
	if id != "hex_2" {
		t.Fatalf("allocated %q, want hex_2", id)
	}
	s.AddHex(faction.Hex{ID: id, Name: "Deepwood", Terrain: faction.TerrainForest})

	if !s.UpdateHex(faction.Hex{ID: id, Name: "Darker Deepwood", Terrain: faction.TerrainForest}) {
		t.Fatal("update failed")
	}
	if !s.RemoveHex("hex_1") {
		t.Fatal("remove failed")
	}

	f := s.Snapshot()
	if len(f.Hexes) != 1 || f.Hexes[0].Name != "Darker Deepwood" {
		t.Fatalf("unexpected hexes: %+v", f.Hexes)
	}
}

func TestSoftDeleteHidesFromActiveReads(t *testing.T) {
	s := loaded(t)
	s.AddBuild("event_1", faction.Build{ID: "build_1", HexID: "hex_1", Structure: "Farm"})
	s.AddBuild("event_1", faction.Build{ID: "build_2", HexID: "hex_1", Structure: "Mine"})
	if !s.SoftDeleteBuild("event_1", "build_1") {
		t.Fatal("soft delete failed")
	}

	e := s.Snapshot().EventByID("event_1")
	if len(e.Builds) != 2 {
		t.Fatalf("soft delete removed the row: %+v", e.Builds)
	}
	active := e.ActiveBuilds()
	if len(active) != 1 || active[0].ID != "build_2" {
		t.Fatalf("active builds = %+v, want just build_2", active)
	}

	// Hard removal reads the same through ActiveBuilds.
	if !s.RemoveBuild("event_1", "build_2") {
		t.Fatal("hard remove failed")
	}
	if got := len(s.Snapshot().EventByID("event_1").ActiveBuilds()); got != 0 {
		t.Fatalf("active builds after removal = %d, want 0", got)
	}
}

func TestOffensiveActionOverwrites(t *testing.T) {
	s := loaded(t)
	s.SetOffensiveAction("event_1", faction.OffensiveAction{Type: faction.ActionLandSearch, Target: "the marches"})
	s.SetOffensiveAction("event_1", faction.OffensiveAction{Type: faction.ActionInvasion, Target: "Thornwall", TargetFaction: "Grey Vale"})

	a := s.Snapshot().EventByID("event_1").Action
	if a.Type != faction.ActionInvasion {
		t.Fatalf("second set did not overwrite: %+v", a)
	}

	if !s.ClearOffensiveAction("event_1") {
		t.Fatal("clear failed")
	}
	if !s.Snapshot().EventByID("event_1").Action.IsZero() {
		t.Fatal("clear did not reset to placeholder")
	}
}

func TestDanglingBuildReferenceSurvivesHexRemoval(t *testing.T) {
	s := loaded(t)
	s.AddBuild("event_1", faction.Build{ID: "build_1", HexID: "hex_1", Structure: "Farm"})
	s.RemoveHex("hex_1")

	f := s.Snapshot()
	b := f.EventByID("event_1").ActiveBuilds()[0]
	if b.HexID != "hex_1" {
		t.Fatalf("dangling ref rewritten: %+v", b)
	}
	if f.HexByID(b.HexID) != nil {
		t.Fatal("hex should be gone")
	}
}

func TestSeasonGainLifecycle(t *testing.T) {
	s := loaded(t)
	s.AddSeasonGain(faction.SeasonGain{ID: "gain_1", Season: faction.SeasonFall, Year: 2, Food: 5})
	if !s.UpdateSeasonGain(faction.SeasonGain{ID: "gain_1", Season: faction.SeasonFall, Year: 2, Food: 8}) {
		t.Fatal("update failed")
	}
	if got := s.Snapshot().SeasonGains[0].Food; got != 8 {
		t.Fatalf("food = %d, want 8", got)
	}
	if !s.RemoveSeasonGain("gain_1") {
		t.Fatal("remove failed")
	}
	if got := len(s.Snapshot().SeasonGains); got != 0 {
		t.Fatalf("gains = %d, want 0", got)
	}
}
