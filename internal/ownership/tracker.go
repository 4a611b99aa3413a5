// Package ownership answers "is pet X obtained?" uniformly whether the data
// came from a fetched snapshot or from manual toggling, and keeps the
// obtained-count and invested-hours aggregates in step.
package ownership

import (
	"errors"
	"sync"

	"pet-progress-api/internal/catalog"
	"pet-progress-api/internal/models"
)

// IndividualSlot is the snapshot key for single-player data; transmog
// overlays always land here.
const IndividualSlot = "1"

var ErrNotManual = errors.New("manual mode is not active")

type Tracker struct {
	mu  sync.Mutex
	cat *catalog.Catalog

	manualMode  bool
	snapshots   map[string]models.PlayerProgress
	manual      map[string]int
	manualCount int
	manualHours float64
}

func New(cat *catalog.Catalog) *Tracker {
	return &Tracker{
		cat:       cat,
		snapshots: make(map[string]models.PlayerProgress),
		manual:    make(map[string]int),
	}
}

// SetFromSnapshot replaces the authoritative fetched data. Upstream shape is
// trusted; absent pets default to not-obtained.
func (t *Tracker) SetFromSnapshot(snaps map[string]models.PlayerProgress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshots = make(map[string]models.PlayerProgress, len(snaps))
	for k, v := range snaps {
		t.snapshots[k] = v
	}
}

func (t *Tracker) SetManualMode(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.manualMode = on
}

func (t *Tracker) ManualMode() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.manualMode
}

// ToggleManual flips one pet's obtained flag and returns the new flag.
// Cosmetic (dust/transmog) entries flip their own flag but never move the
// aggregates; unknown names are stored but not counted.
func (t *Tracker) ToggleManual(pet string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.manualMode {
		return 0, ErrNotManual
	}
	if t.manual[pet] == 1 {
		t.manual[pet] = 0
	} else {
		t.manual[pet] = 1
	}
	t.manualCount, t.manualHours = t.aggregate(t.manual, false)
	return t.manual[pet], nil
}

// SetManualFlags replaces the manual map wholesale, used when reconstructing
// ownership from an imported snapshot.
func (t *Tracker) SetManualFlags(flags map[string]int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.manual = make(map[string]int, len(flags))
	for k, v := range flags {
		t.manual[k] = v
	}
	t.manualCount, t.manualHours = t.aggregate(t.manual, false)
}

// MergeTransmogs overlays transmog flags onto the individual snapshot slot
// without touching other pets.
func (t *Tracker) MergeTransmogs(overrides map[string]int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := t.snapshots[IndividualSlot]
	if snap.Pets == nil {
		snap.Pets = make(map[string]int)
	}
	for k, v := range overrides {
		snap.Pets[k] = v
	}
	t.snapshots[IndividualSlot] = snap
}

// IsObtained looks up one pet, source-agnostic: the manual map in manual
// mode, the merged snapshots otherwise. Unknown pets are never an error.
func (t *Tracker) IsObtained(pet string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.manualMode {
		return t.manual[pet] >= 1
	}
	for _, snap := range t.snapshots {
		if snap.Pets[pet] >= 1 {
			return true
		}
	}
	return false
}

func (t *Tracker) ObtainedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.manualMode {
		return t.manualCount
	}
	count, _ := t.aggregate(t.snapshots[IndividualSlot].Pets, true)
	return count
}

func (t *Tracker) TotalHours() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.manualMode {
		return t.manualHours
	}
	_, hours := t.aggregate(t.snapshots[IndividualSlot].Pets, true)
	return hours
}

// Snapshot returns the fetched data for one source key.
func (t *Tracker) Snapshot(key string) (models.PlayerProgress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap, ok := t.snapshots[key]
	return snap, ok
}

// Sources lists snapshot keys with data.
func (t *Tracker) Sources() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.snapshots))
	for k := range t.snapshots {
		out = append(out, k)
	}
	return out
}

// ManualFlags returns a copy of the manual ownership map.
func (t *Tracker) ManualFlags() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, len(t.manual))
	for k, v := range t.manual {
		out[k] = v
	}
	return out
}

// aggregate counts obtained flags and sums hours, skipping cosmetic entries
// and names outside the catalogue. Manual flags count only when exactly 1;
// fetched counts are truthy at >= 1.
func (t *Tracker) aggregate(flags map[string]int, truthy bool) (int, float64) {
	count := 0
	hours := 0.0
	for name, v := range flags {
		if truthy {
			if v < 1 {
				continue
			}
		} else if v != 1 {
			continue
		}
		if !t.cat.Known(name) || t.cat.IsBonus(name) {
			continue
		}
		count++
		hours += t.cat.HoursFor(name)
	}
	return count, hours
}
