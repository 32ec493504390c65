// Package store holds the session's single faction snapshot and funnels
// every mutation through a constrained API. One Store is constructed per
// session and passed explicitly to whatever consumes it; there is no
// package-level state.
package store

import (
	"log/slog"
	"sync"

	"github.com/hexhaven/factionledger/internal/faction"
)

// Notice identifies why subscribers are being re-notified.
type Notice int

const (
	// StateReplaced fires after a load swaps the whole snapshot.
	StateReplaced Notice = iota
	// EntityMutated fires after any in-place edit.
	EntityMutated
)

// Store owns the current faction snapshot and the unsaved-changes flag.
// The lock exists for the optional read-only viewer, which reads from its
// own goroutine; all mutation is single-threaded by construction.
type Store struct {
	mu      sync.RWMutex
	faction *faction.Faction
	dirty   bool

	// onDirtyChange fires exactly once per clean/dirty transition. The
	// host hangs its discard-interception hook here: registered when the
	// state becomes dirty, released when it is saved or replaced.
	onDirtyChange func(dirty bool)

	subs []func(Notice)
}

// New returns a store holding an empty faction, clean.
func New() *Store {
	return &Store{faction: faction.New()}
}

// OnDirtyChange installs the dirty-transition hook. Must be set before
// mutations begin; not safe to swap mid-session.
func (s *Store) OnDirtyChange(fn func(dirty bool)) {
	s.mu.Lock()
	s.onDirtyChange = fn
	s.mu.Unlock()
}

// Subscribe registers a notification callback for re-renders. Callbacks
// run outside the store lock and may read the store.
func (s *Store) Subscribe(fn func(Notice)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Dirty reports whether the snapshot has unsaved changes.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Snapshot returns a deep copy of the current faction, safe to serialize
// or render without holding the store lock.
func (s *Store) Snapshot() *faction.Faction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.faction.Clone()
}

// View runs fn with read access to the live faction. fn must not retain
// or mutate it.
func (s *Store) View(fn func(f *faction.Faction)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.faction)
}

// Replace atomically swaps in a freshly loaded faction and resets the
// dirty flag. Subscribers observe the new collections before any
// subsequent mutation is processed.
func (s *Store) Replace(f *faction.Faction) {
	s.mu.Lock()
	s.faction = f
	hook := s.transitionLocked(false)
	subs := append([]func(Notice){}, s.subs...)
	s.mu.Unlock()

	if hook != nil {
		hook(false)
	}
	for _, sub := range subs {
		sub(StateReplaced)
	}
}

// MarkSaved resets the dirty flag after a successful save.
func (s *Store) MarkSaved() {
	s.mu.Lock()
	hook := s.transitionLocked(false)
	s.mu.Unlock()
	if hook != nil {
		hook(false)
	}
}

// transitionLocked moves the dirty flag and returns the hook to fire, or
// nil when the flag did not change. Callers fire the hook after unlocking.
func (s *Store) transitionLocked(dirty bool) func(bool) {
	if s.dirty == dirty {
		return nil
	}
	s.dirty = dirty
	if s.onDirtyChange == nil {
		return nil
	}
	return s.onDirtyChange
}

// mutate applies fn to the live faction. When fn reports success the store
// marks itself dirty and notifies subscribers. Returns fn's result.
func (s *Store) mutate(fn func(f *faction.Faction) bool) bool {
	s.mu.Lock()
	ok := fn(s.faction)
	var hook func(bool)
	var subs []func(Notice)
	if ok {
		hook = s.transitionLocked(true)
		subs = append([]func(Notice){}, s.subs...)
	}
	s.mu.Unlock()

	if hook != nil {
		hook(true)
	}
	for _, sub := range subs {
		sub(EntityMutated)
	}
	return ok
}

// SetName updates the faction's display name.
func (s *Store) SetName(name string) {
	s.mutate(func(f *faction.Faction) bool {
		f.Name = name
		return true
	})
}

// SetNotes updates the faction's free-text notes.
func (s *Store) SetNotes(notes string) {
	s.mutate(func(f *faction.Faction) bool {
		f.Notes = notes
		return true
	})
}

// SetCoffers replaces the resource stockpile. Negative counters clamp to
// zero; the ≥0 invariant holds at all times.
func (s *Store) SetCoffers(c faction.Coffers) {
	s.mutate(func(f *faction.Faction) bool {
		f.Coffers = c.Clamped()
		return true
	})
}

// AddHex appends a hex. The caller supplies an already-allocated id.
func (s *Store) AddHex(h faction.Hex) {
	s.mutate(func(f *faction.Faction) bool {
		f.Hexes = append(f.Hexes, h)
		return true
	})
}

// UpdateHex replaces the hex with a matching id. Reports whether it existed.
func (s *Store) UpdateHex(h faction.Hex) bool {
	return s.mutate(func(f *faction.Faction) bool {
		for i := range f.Hexes {
			if f.Hexes[i].ID == h.ID {
				f.Hexes[i] = h
				return true
			}
		}
		return false
	})
}

// RemoveHex deletes a hex. Builds referencing it keep their dangling hex id
// and render the location as "none".
func (s *Store) RemoveHex(id string) bool {
	return s.mutate(func(f *faction.Faction) bool {
		for i := range f.Hexes {
			if f.Hexes[i].ID == id {
				f.Hexes = append(f.Hexes[:i], f.Hexes[i+1:]...)
				return true
			}
		}
		return false
	})
}

// AddEvent appends a timeline event.
func (s *Store) AddEvent(e faction.Event) {
	s.mutate(func(f *faction.Faction) bool {
		if e.Builds == nil {
			e.Builds = []faction.Build{}
		}
		if e.Movements == nil {
			e.Movements = []faction.Movement{}
		}
		f.Events = append(f.Events, e)
		return true
	})
}

// UpdateEvent replaces the event's scalar fields, keeping its builds,
// movements, and offensive action.
func (s *Store) UpdateEvent(e faction.Event) bool {
	return s.mutate(func(f *faction.Faction) bool {
		cur := f.EventByID(e.ID)
		if cur == nil {
			return false
		}
		cur.Name = e.Name
		cur.Date = e.Date
		cur.Type = e.Type
		cur.Summary = e.Summary
		cur.Expanded = e.Expanded
		return true
	})
}

// RemoveEvent deletes an event and everything it owns.
func (s *Store) RemoveEvent(id string) bool {
	return s.mutate(func(f *faction.Faction) bool {
		for i := range f.Events {
			if f.Events[i].ID == id {
				f.Events = append(f.Events[:i], f.Events[i+1:]...)
				return true
			}
		}
		return false
	})
}

// AddBuild appends a build to an event.
func (s *Store) AddBuild(eventID string, b faction.Build) bool {
	return s.mutate(func(f *faction.Faction) bool {
		e := f.EventByID(eventID)
		if e == nil {
			return false
		}
		e.Builds = append(e.Builds, b)
		return true
	})
}

// UpdateBuild replaces a build by id within an event.
func (s *Store) UpdateBuild(eventID string, b faction.Build) bool {
	return s.mutate(func(f *faction.Faction) bool {
		e := f.EventByID(eventID)
		if e == nil {
			return false
		}
		for i := range e.Builds {
			if e.Builds[i].ID == b.ID {
				e.Builds[i] = b
				return true
			}
		}
		return false
	})
}

// SoftDeleteBuild flags a build as deleted without removing it. Readers go
// through ActiveBuilds, so this is indistinguishable from removal.
func (s *Store) SoftDeleteBuild(eventID, buildID string) bool {
	return s.mutate(func(f *faction.Faction) bool {
		e := f.EventByID(eventID)
		if e == nil {
			return false
		}
		for i := range e.Builds {
			if e.Builds[i].ID == buildID {
				e.Builds[i].IsDeleted = true
				return true
			}
		}
		return false
	})
}

// RemoveBuild hard-deletes a build from its event.
func (s *Store) RemoveBuild(eventID, buildID string) bool {
	return s.mutate(func(f *faction.Faction) bool {
		e := f.EventByID(eventID)
		if e == nil {
			return false
		}
		for i := range e.Builds {
			if e.Builds[i].ID == buildID {
				e.Builds = append(e.Builds[:i], e.Builds[i+1:]...)
				return true
			}
		}
		return false
	})
}

// AddMovement appends a movement to an event.
func (s *Store) AddMovement(eventID string, m faction.Movement) bool {
	return s.mutate(func(f *faction.Faction) bool {
		e := f.EventByID(eventID)
		if e == nil {
			return false
		}
		e.Movements = append(e.Movements, m)
		return true
	})
}

// UpdateMovement replaces a movement by id within an event.
func (s *Store) UpdateMovement(eventID string, m faction.Movement) bool {
	return s.mutate(func(f *faction.Faction) bool {
		e := f.EventByID(eventID)
		if e == nil {
			return false
		}
		for i := range e.Movements {
			if e.Movements[i].ID == m.ID {
				e.Movements[i] = m
				return true
			}
		}
		return false
	})
}

// SoftDeleteMovement flags a movement as deleted without removing it.
func (s *Store) SoftDeleteMovement(eventID, movementID string) bool {
	return s.mutate(func(f *faction.Faction) bool {
		e := f.EventByID(eventID)
		if e == nil {
			return false
		}
		for i := range e.Movements {
			if e.Movements[i].ID == movementID {
				e.Movements[i].IsDeleted = true
				return true
			}
		}
		return false
	})
}

// RemoveMovement hard-deletes a movement from its event.
func (s *Store) RemoveMovement(eventID, movementID string) bool {
	return s.mutate(func(f *faction.Faction) bool {
		e := f.EventByID(eventID)
		if e == nil {
			return false
		}
		for i := range e.Movements {
			if e.Movements[i].ID == movementID {
				e.Movements = append(e.Movements[:i], e.Movements[i+1:]...)
				return true
			}
		}
		return false
	})
}

// SetOffensiveAction sets an event's single offensive action. A second set
// on the same event silently replaces the first; the replacement is logged
// so the data loss is at least observable.
func (s *Store) SetOffensiveAction(eventID string, a faction.OffensiveAction) bool {
	return s.mutate(func(f *faction.Faction) bool {
		e := f.EventByID(eventID)
		if e == nil {
			return false
		}
		if !e.Action.IsZero() {
			slog.Debug("replacing offensive action", "event", eventID, "previous", e.Action.Type, "next", a.Type)
		}
		e.Action = a
		return true
	})
}

// ClearOffensiveAction resets an event's action to the empty placeholder.
func (s *Store) ClearOffensiveAction(eventID string) bool {
	return s.mutate(func(f *faction.Faction) bool {
		e := f.EventByID(eventID)
		if e == nil {
			return false
		}
		e.Action = faction.OffensiveAction{}
		return true
	})
}

// AddSeasonGain appends a seasonal gain record.
func (s *Store) AddSeasonGain(g faction.SeasonGain) {
	s.mutate(func(f *faction.Faction) bool {
		f.SeasonGains = append(f.SeasonGains, g)
		return true
	})
}

// UpdateSeasonGain replaces a gain record by id.
func (s *Store) UpdateSeasonGain(g faction.SeasonGain) bool {
	return s.mutate(func(f *faction.Faction) bool {
		for i := range f.SeasonGains {
			if f.SeasonGains[i].ID == g.ID {
				f.SeasonGains[i] = g
				return true
			}
		}
		return false
	})
}

// RemoveSeasonGain deletes a gain record.
func (s *Store) RemoveSeasonGain(id string) bool {
	return s.mutate(func(f *faction.Faction) bool {
		for i := range f.SeasonGains {
			if f.SeasonGains[i].ID == id {
				f.SeasonGains = append(f.SeasonGains[:i], f.SeasonGains[i+1:]...)
				return true
			}
		}
		return false
	})
}
