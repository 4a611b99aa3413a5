// Package snapshot flattens ownership, kill-count inputs, and display
// preferences into one portable JSON blob and restores them from it,
// including blobs written by older versions of the format.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"pet-progress-api/internal/catalog"
	"pet-progress-api/internal/likelihood"
	"pet-progress-api/internal/ownership"
)

// Value is a KC entry on the wire: a plain string (or number, from older
// exports) for simple pets, or a per-channel object for pets with split drop
// tables.
type Value struct {
	Scalar   string
	Channels map[string]string
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Channels != nil {
		return json.Marshal(v.Channels)
	}
	return json.Marshal(v.Scalar)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v.Scalar = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		v.Scalar = n.String()
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	v.Channels = m
	return nil
}

// Preferences are the display settings bundled into exports.
type Preferences struct {
	PetCountColor string `json:"petCountColor"`
	PetHoursColor string `json:"petHoursColor"`
	PetBgColor1   string `json:"petBgColor1"`
	PetBgColor2   string `json:"petBgColor2"`
	Player        string `json:"player"`
	HideAvatar    bool   `json:"hideAvatar"`
	IsCompact     bool   `json:"isCompact"`
}

// DefaultPreferences mirrors the dashboard's initial palette.
func DefaultPreferences() Preferences {
	return Preferences{
		PetCountColor: "#3a4f5a",
		PetHoursColor: "#9acfa3",
		PetBgColor1:   "#492023",
		PetBgColor2:   "#463827",
	}
}

// prefPatch is the import-side view: every field optional so a partially
// populated blob restores whatever it has.
type prefPatch struct {
	PetCountColor *string `json:"petCountColor"`
	PetHoursColor *string `json:"petHoursColor"`
	PetBgColor1   *string `json:"petBgColor1"`
	PetBgColor2   *string `json:"petBgColor2"`
	Player        *string `json:"player"`
	HideAvatar    *bool   `json:"hideAvatar"`
	IsCompact     *bool   `json:"isCompact"`
}

type envelope struct {
	Pets               map[string]map[string]Value `json:"pets"`
	LikelihoodKcValues map[string]map[string]Value `json:"likelihoodKcValues"`
	PetCountColor      string                      `json:"petCountColor"`
	PetHoursColor      string                      `json:"petHoursColor"`
	PetBgColor1        string                      `json:"petBgColor1"`
	PetBgColor2        string                      `json:"petBgColor2"`
	Player             string                      `json:"player"`
	HideAvatar         bool                        `json:"hideAvatar"`
	IsCompact          bool                        `json:"isCompact"`
}

// ExportState is the session state fed into Export alongside the tracker.
type ExportState struct {
	KC    map[string]map[string]string // sourceKey -> pet -> kc display value
	Rates likelihood.Inputs
	Prefs Preferences
}

// Imported is a fully parsed blob. Nothing is applied to live state until
// parsing has succeeded, so a failed import leaves everything untouched.
type Imported struct {
	KC    map[string]map[string]string
	Rates likelihood.Inputs

	prefs prefPatch
}

type Serializer struct {
	cat *catalog.Catalog
}

func New(cat *catalog.Catalog) *Serializer {
	return &Serializer{cat: cat}
}

// Export records, per source, every obtained pet's KC display value
// (defaulting to "0") and its likelihood input(s), bundles the display
// preferences, and serializes to formatted JSON.
func (s *Serializer) Export(tr *ownership.Tracker, st ExportState) ([]byte, error) {
	env := envelope{
		Pets:               make(map[string]map[string]Value),
		LikelihoodKcValues: make(map[string]map[string]Value),
		PetCountColor:      st.Prefs.PetCountColor,
		PetHoursColor:      st.Prefs.PetHoursColor,
		PetBgColor1:        st.Prefs.PetBgColor1,
		PetBgColor2:        st.Prefs.PetBgColor2,
		Player:             st.Prefs.Player,
		HideAvatar:         st.Prefs.HideAvatar,
		IsCompact:          st.Prefs.IsCompact,
	}

	for _, source := range s.sources(tr) {
		flags := s.flags(tr, source)
		pets := make(map[string]Value)
		rates := make(map[string]Value)
		for name, flag := range flags {
			if flag < 1 {
				continue
			}
			kc := "0"
			if v, ok := st.KC[source][name]; ok && v != "" {
				kc = v
			}
			pets[name] = Value{Scalar: kc}

			chs := s.cat.Channels(name)
			if len(chs) == 1 && chs[0].Name == "" {
				rates[name] = Value{Scalar: st.Rates.Get(name, "")}
				continue
			}
			sub := make(map[string]string, len(chs))
			for _, ch := range chs {
				sub[ch.Name] = st.Rates.Get(name, ch.Name)
			}
			rates[name] = Value{Channels: sub}
		}
		if len(pets) > 0 {
			env.Pets[source] = pets
			env.LikelihoodKcValues[source] = rates
		}
	}

	return json.MarshalIndent(env, "", "  ")
}

func (s *Serializer) sources(tr *ownership.Tracker) []string {
	if tr.ManualMode() {
		return []string{ownership.IndividualSlot}
	}
	out := tr.Sources()
	sort.Strings(out)
	return out
}

func (s *Serializer) flags(tr *ownership.Tracker, source string) map[string]int {
	if tr.ManualMode() {
		return tr.ManualFlags()
	}
	snap, _ := tr.Snapshot(source)
	return snap.Pets
}

// Import parses a blob into a new Imported value. The legacy shape (a bare
// sourceKey -> pet -> value object with no "pets" wrapper) is still
// accepted.
func (s *Serializer) Import(data []byte) (*Imported, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing import payload: %w", err)
	}

	imp := &Imported{
		KC:    make(map[string]map[string]string),
		Rates: make(likelihood.Inputs),
	}

	var pets map[string]map[string]Value
	var rates map[string]map[string]Value

	if petsRaw, ok := raw["pets"]; ok {
		if err := json.Unmarshal(petsRaw, &pets); err != nil {
			return nil, fmt.Errorf("parsing pets: %w", err)
		}
		if ratesRaw, ok := raw["likelihoodKcValues"]; ok {
			if err := json.Unmarshal(ratesRaw, &rates); err != nil {
				return nil, fmt.Errorf("parsing likelihoodKcValues: %w", err)
			}
		}
		if err := json.Unmarshal(data, &imp.prefs); err != nil {
			return nil, fmt.Errorf("parsing preferences: %w", err)
		}
	} else {
		// Legacy shape: the whole object is the pets field.
		if err := json.Unmarshal(data, &pets); err != nil {
			return nil, fmt.Errorf("parsing legacy payload: %w", err)
		}
	}

	for source, entries := range pets {
		kc := make(map[string]string, len(entries))
		for name, val := range entries {
			if val.Channels != nil {
				s.destructure(imp.Rates, name, val.Channels)
				continue
			}
			kc[name] = val.Scalar
		}
		imp.KC[source] = kc
	}

	for _, entries := range rates {
		for name, val := range entries {
			if val.Channels != nil {
				s.destructure(imp.Rates, name, val.Channels)
				continue
			}
			imp.Rates.Set(name, "", val.Scalar)
		}
	}

	// Seed missing likelihood inputs from the sanitized KC display value so
	// the calculator has data without the user re-entering it.
	for _, kc := range imp.KC {
		for name, display := range kc {
			chs := s.cat.Channels(name)
			if len(chs) == 0 {
				chs = []catalog.Channel{{Name: ""}}
			}
			if s.hasRate(imp.Rates, name, chs) {
				continue
			}
			imp.Rates.Set(name, chs[0].Name, sanitizeDigits(display))
		}
	}

	return imp, nil
}

// destructure maps a per-channel wire object onto input keys, falling back
// to the empty string for channels the blob does not carry.
func (s *Serializer) destructure(in likelihood.Inputs, pet string, sub map[string]string) {
	chs := s.cat.Channels(pet)
	if len(chs) <= 1 {
		// Unknown or simple pet carrying an object: keep the values keyed by
		// their recorded channel names so nothing is dropped.
		for ch, v := range sub {
			in.Set(pet, ch, v)
		}
		return
	}
	for _, ch := range chs {
		in.Set(pet, ch.Name, sub[ch.Name])
	}
}

func (s *Serializer) hasRate(in likelihood.Inputs, pet string, chs []catalog.Channel) bool {
	for _, ch := range chs {
		if in.Get(pet, ch.Name) != "" {
			return true
		}
	}
	return false
}

// ApplyPreferences copies each preference the blob carried onto p, leaving
// absent fields alone.
func (imp *Imported) ApplyPreferences(p *Preferences) {
	if imp.prefs.PetCountColor != nil {
		p.PetCountColor = *imp.prefs.PetCountColor
	}
	if imp.prefs.PetHoursColor != nil {
		p.PetHoursColor = *imp.prefs.PetHoursColor
	}
	if imp.prefs.PetBgColor1 != nil {
		p.PetBgColor1 = *imp.prefs.PetBgColor1
	}
	if imp.prefs.PetBgColor2 != nil {
		p.PetBgColor2 = *imp.prefs.PetBgColor2
	}
	if imp.prefs.Player != nil {
		p.Player = *imp.prefs.Player
	}
	if imp.prefs.HideAvatar != nil {
		p.HideAvatar = *imp.prefs.HideAvatar
	}
	if imp.prefs.IsCompact != nil {
		p.IsCompact = *imp.prefs.IsCompact
	}
}

// ManualFlags reconstructs manual ownership for one source: a pet counts as
// obtained when it has a non-empty, non-"0" KC entry.
func (imp *Imported) ManualFlags(source string) map[string]int {
	flags := make(map[string]int)
	for name, v := range imp.KC[source] {
		if v != "" && v != "0" {
			flags[name] = 1
		}
	}
	return flags
}

func sanitizeDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
