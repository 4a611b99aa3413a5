package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"pet-progress-api/internal/catalog"
	"pet-progress-api/internal/config"
	"pet-progress-api/internal/hiscores"
	"pet-progress-api/internal/likelihood"
	"pet-progress-api/internal/models"
	"pet-progress-api/internal/ownership"
	"pet-progress-api/internal/snapshot"
	"pet-progress-api/internal/store"
	"pet-progress-api/internal/temple"
)

// BlobKey is the durable local key the export snapshot persists under.
const BlobKey = "petData"

type Service struct {
	store    *store.SQLite
	temple   *temple.Client
	hiscores *hiscores.Scraper
	cat      *catalog.Catalog
	calc     *likelihood.Calculator
	tracker  *ownership.Tracker
	ser      *snapshot.Serializer
	cfg      config.Config

	mu    sync.Mutex
	kc    map[string]map[string]string // sourceKey -> pet -> kc display value
	rates likelihood.Inputs
	prefs snapshot.Preferences
}

func New(st *store.SQLite, tc *temple.Client, hs *hiscores.Scraper, cat *catalog.Catalog, cfg config.Config) *Service {
	svc := &Service{
		store:    st,
		temple:   tc,
		hiscores: hs,
		cat:      cat,
		calc:     likelihood.New(cat),
		tracker:  ownership.New(cat),
		ser:      snapshot.New(cat),
		cfg:      cfg,
		kc:       make(map[string]map[string]string),
		rates:    make(likelihood.Inputs),
		prefs:    snapshot.DefaultPreferences(),
	}

	// Restore the persisted snapshot, if any. A bad blob is reported and
	// ignored, never fatal.
	if payload, ok, err := st.LoadBlob(BlobKey); err != nil {
		log.Printf("service: loading persisted snapshot: %v", err)
	} else if ok {
		if err := svc.Import([]byte(payload)); err != nil {
			log.Printf("service: persisted snapshot unreadable, starting fresh: %v", err)
		}
	}

	return svc
}

func (s *Service) Catalog() *catalog.Catalog { return s.cat }

// RefreshPlayer fetches one player's collection log, replaces the individual
// snapshot slot, merges the transmog flags, and records a history point.
func (s *Service) RefreshPlayer(ctx context.Context, player string) (*models.PlayerProgress, error) {
	if player == "" {
		return nil, errors.New("player required")
	}
	prog, transmogs, err := s.temple.PlayerCollectionLog(ctx, player)
	if err != nil {
		return nil, err
	}
	prog.PetHours = s.hoursFor(prog.Pets)

	s.tracker.SetFromSnapshot(map[string]models.PlayerProgress{
		ownership.IndividualSlot: *prog,
	})
	s.tracker.MergeTransmogs(transmogs)

	if err := s.store.RecordProgress(string(prog.Player), prog.PetCount, prog.PetHours); err != nil {
		log.Printf("service: recording progress for %s: %v", prog.Player, err)
	}
	return prog, nil
}

// RefreshGroup replaces the snapshots with a group's per-member summaries.
func (s *Service) RefreshGroup(ctx context.Context, group string, count int) (map[string]models.PlayerProgress, error) {
	if group == "" {
		return nil, errors.New("group required")
	}
	members, err := s.temple.GroupPetCounts(ctx, group, count)
	if err != nil {
		return nil, err
	}
	s.tracker.SetFromSnapshot(members)
	for _, m := range members {
		if err := s.store.RecordProgress(string(m.Player), m.PetCount, m.PetHours); err != nil {
			log.Printf("service: recording progress for %s: %v", m.Player, err)
		}
	}
	return members, nil
}

func (s *Service) hoursFor(pets map[string]int) float64 {
	total := 0.0
	for name, v := range pets {
		if v >= 1 {
			total += s.cat.HoursFor(name)
		}
	}
	return total
}

func (s *Service) SetManualMode(on bool) { s.tracker.SetManualMode(on) }

func (s *Service) Toggle(pet string) (int, error) { return s.tracker.ToggleManual(pet) }

func (s *Service) IsObtained(pet string) bool { return s.tracker.IsObtained(pet) }

func (s *Service) Progress() models.Summary {
	s.mu.Lock()
	player := s.prefs.Player
	s.mu.Unlock()
	return models.Summary{
		Player:     player,
		Obtained:   s.tracker.ObtainedCount(),
		TotalPets:  s.cat.TotalPets(),
		Hours:      s.tracker.TotalHours(),
		TotalHours: s.cat.TotalHours(),
		ManualMode: s.tracker.ManualMode(),
	}
}

// SetKC stores one pet's display kill count for a source slot.
func (s *Service) SetKC(source, pet, value string) {
	if source == "" {
		source = ownership.IndividualSlot
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kc[source] == nil {
		s.kc[source] = make(map[string]string)
	}
	s.kc[source][pet] = value
}

// SetRateInput stores one likelihood kill-count input.
func (s *Service) SetRateInput(pet, channel, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates.Set(pet, channel, value)
}

func (s *Service) Likelihood(pet string) likelihood.Result {
	s.mu.Lock()
	in := s.rates.Clone()
	s.mu.Unlock()
	return s.calc.ForPet(pet, in)
}

// Likelihoods recomputes results for every pet with any recorded input.
func (s *Service) Likelihoods() map[string]likelihood.Result {
	s.mu.Lock()
	in := s.rates.Clone()
	s.mu.Unlock()
	return s.calc.Batch(in)
}

func (s *Service) Preferences() snapshot.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

func (s *Service) SetPreferences(p snapshot.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = p
}

// Export serializes the current state and persists it under the durable
// key. Persistence is best-effort: a store failure is logged and reported
// alongside the blob, not instead of it.
func (s *Service) Export() ([]byte, bool, error) {
	s.mu.Lock()
	kc := make(map[string]map[string]string, len(s.kc))
	for source, entries := range s.kc {
		inner := make(map[string]string, len(entries))
		for k, v := range entries {
			inner[k] = v
		}
		kc[source] = inner
	}
	st := snapshot.ExportState{
		KC:    kc,
		Rates: s.rates.Clone(),
		Prefs: s.prefs,
	}
	s.mu.Unlock()

	blob, err := s.ser.Export(s.tracker, st)
	if err != nil {
		return nil, false, err
	}

	persisted := true
	if err := s.store.SaveBlob(BlobKey, string(blob)); err != nil {
		log.Printf("service: persisting export: %v", err)
		persisted = false
	}
	return blob, persisted, nil
}

// Import parses a blob and, only on success, applies it: KC values and
// likelihood inputs merge in, preferences restore field by field, and in
// manual mode the ownership flags are rebuilt from the KC entries. A parse
// failure leaves every piece of prior state untouched.
func (s *Service) Import(payload []byte) error {
	imp, err := s.ser.Import(payload)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	s.mu.Lock()
	for source, entries := range imp.KC {
		if s.kc[source] == nil {
			s.kc[source] = make(map[string]string, len(entries))
		}
		for pet, v := range entries {
			s.kc[source][pet] = v
		}
	}
	for k, v := range imp.Rates {
		s.rates[k] = v
	}
	imp.ApplyPreferences(&s.prefs)
	s.mu.Unlock()

	if s.tracker.ManualMode() {
		s.tracker.SetManualFlags(imp.ManualFlags(ownership.IndividualSlot))
	}
	return nil
}

// SeedFromHiscores fills empty likelihood inputs from the player's hiscores
// kill counts, leaving anything the user already typed alone.
func (s *Service) SeedFromHiscores(ctx context.Context, player string) (likelihood.Inputs, error) {
	if player == "" {
		return nil, errors.New("player required")
	}
	seeded, err := s.hiscores.SeedKC(ctx, player)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range seeded {
		if s.rates[k] == "" {
			s.rates[k] = v
		}
	}
	return seeded, nil
}

func (s *Service) History(player string, limit int) ([]models.ProgressRecord, error) {
	return s.store.ProgressHistory(player, limit)
}

// StartScheduler refreshes the known players once a day at the configured
// time.
func (s *Service) StartScheduler() {
	log.Printf("Scheduler started. Next refresh at: %v", s.nextRun())
	for {
		next := s.nextRun()
		d := time.Until(next)
		log.Printf("Scheduler: sleeping until %v (in %v)", next, d)
		if d > 0 {
			time.Sleep(d)
		}

		players, err := s.store.Players()
		if err != nil {
			log.Printf("scheduled refresh: failed to list players: %v", err)
			continue
		}
		if len(players) == 0 {
			log.Printf("scheduled refresh: no players recorded yet")
			continue
		}

		log.Printf("Scheduler: refreshing %d players", len(players))
		for _, p := range players {
			if _, err := s.RefreshPlayer(context.Background(), p); err != nil {
				log.Printf("scheduled refresh %s: %v", p, err)
			}
		}
		log.Printf("Scheduler: refresh complete")
	}
}

func (s *Service) nextRun() time.Time {
	tz, err := time.LoadLocation(s.cfg.TZ)
	if err != nil {
		tz = time.Local
	}
	now := time.Now().In(tz)
	hour, min := 9, 0
	if v, err := time.Parse("15:04", s.cfg.RefreshAt); err == nil {
		hour, min = v.Hour(), v.Minute()
	}
	run := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, tz)
	if !run.After(now) {
		run = run.Add(24 * time.Hour)
	}
	return run
}
