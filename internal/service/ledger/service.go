// Package ledger owns the in-memory herd state for one farm. It serialises
// commands, persists each new state before publishing it, and answers
// read-only queries from the last committed snapshot.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/icsherer/Herd-Ledger/internal/domain/calc"
	"github.com/icsherer/Herd-Ledger/internal/domain/models"
	"github.com/icsherer/Herd-Ledger/internal/herd"
	"github.com/icsherer/Herd-Ledger/internal/metrics"
)

// ErrIntegrity is returned by Open in strict mode when the stored state
// breaks an internal invariant.
var ErrIntegrity = errors.New("stored ledger state failed integrity checks")

// ErrNotOpen is returned when the service is used before Open.
var ErrNotOpen = errors.New("ledger not opened")

// Store loads and saves the whole ledger state.
type Store interface {
	Load(ctx context.Context) (models.State, error)
	Save(ctx context.Context, state models.State) error
}

// Options tune a Service. Zero values fall back to UTC, the wall clock and
// random UUIDs.
type Options struct {
	// Strict makes Open fail on integrity violations instead of repairing.
	Strict   bool
	Location *time.Location
	Now      func() time.Time
	NewID    func() string
}

// Service is the single writer of the ledger.
type Service struct {
	store   Store
	opts    Options
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu     sync.RWMutex
	state  models.State
	opened bool
}

// NewService wires a ledger over store. Call Open before use.
func NewService(store Store, opts Options, m *metrics.Metrics, logger *zap.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	svc := &Service{
		store:   store,
		opts:    opts,
		metrics: m,
		logger:  logger,
		state:   models.NewState(),
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Open loads the stored state and checks its integrity. Outside strict mode
// violations are repaired, logged and the repaired state saved back.
func (s *Service) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		s.metrics.RecordPersistenceError("load")
		return fmt.Errorf("load ledger: %w", err)
	}
	state = state.Normalize()

	repaired, violations := herd.Repair(state)
	for _, v := range violations {
		s.metrics.RecordIntegrityViolation(v.Entity)
		s.logger.Warn("integrity violation",
			zap.String("entity", v.Entity),
			zap.String("id", v.ID),
			zap.String("detail", v.Detail),
		)
	}
	if len(violations) > 0 {
		if s.opts.Strict {
			return fmt.Errorf("%w: %d violation(s), first: %s", ErrIntegrity, len(violations), violations[0].Error())
		}
		if err := s.store.Save(ctx, repaired); err != nil {
			s.metrics.RecordPersistenceError("save")
			return fmt.Errorf("save repaired ledger: %w", err)
		}
		s.logger.Info("ledger repaired", zap.Int("violations", len(violations)))
		state = repaired
	}

	s.state = state
	s.opened = true
	s.refreshGauges()
	s.logger.Info("ledger opened",
		zap.Int("animals", len(state.Animals)),
		zap.Int("breeding_records", len(state.BreedingRecords)),
	)
	return nil
}

// Execute applies cmd and persists the result. The new state becomes
// visible only once the store has accepted it.
func (s *Service) Execute(ctx context.Context, cmd herd.Command) (herd.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened {
		return herd.Result{}, ErrNotOpen
	}

	op := cmd.Op()
	started := time.Now()
	res, err := herd.Apply(s.state, cmd, s.env())
	if err != nil {
		if models.IsValidation(err) || models.IsReference(err) {
			s.metrics.RecordCommand(op, metrics.ResultRejected, time.Since(started))
			s.logger.Warn("command rejected", zap.String("op", op), zap.Error(err))
		} else {
			s.metrics.RecordCommand(op, metrics.ResultFailed, time.Since(started))
			s.logger.Error("command failed", zap.String("op", op), zap.Error(err))
		}
		return herd.Result{}, err
	}

	if err := s.store.Save(ctx, res.State); err != nil {
		s.metrics.RecordPersistenceError("save")
		s.metrics.RecordCommand(op, metrics.ResultFailed, time.Since(started))
		s.logger.Error("failed to persist command", zap.String("op", op), zap.Error(err))
		return herd.Result{}, fmt.Errorf("save state: %w", err)
	}

	s.state = res.State
	s.metrics.RecordCommand(op, metrics.ResultCommitted, time.Since(started))
	s.refreshGauges()
	s.logger.Info("command committed",
		zap.String("op", op),
		zap.Int("changes", len(res.Changes)),
		zap.Strings("ids", res.IDs()),
	)
	res.State = res.State.Clone()
	return res, nil
}

// Snapshot returns a deep copy of the committed state.
func (s *Service) Snapshot() models.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Now is the service clock.
func (s *Service) Now() time.Time { return s.opts.Now() }

// Location is the farm timezone.
func (s *Service) Location() *time.Location { return s.opts.Location }

// Today is the farm-local calendar day.
func (s *Service) Today() models.Date {
	return models.DateOf(s.opts.Now().In(s.opts.Location))
}

// Verify re-checks the committed state.
func (s *Service) Verify() []models.IntegrityViolation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return herd.Verify(s.state)
}

func (s *Service) env() herd.Env {
	return herd.Env{Now: s.opts.Now(), Loc: s.opts.Location, NewID: s.opts.NewID}
}

// refreshGauges must be called with mu held.
func (s *Service) refreshGauges() {
	if s.metrics == nil {
		return
	}
	now := s.opts.Now()
	bySpecies := map[string]int{}
	for _, a := range herd.ActiveAnimals(s.state) {
		bySpecies[string(a.Species)]++
	}
	s.metrics.SetHerd(bySpecies,
		len(herd.Expecting(s.state, now, s.opts.Location)),
		len(herd.Overdue(s.state, now, s.opts.Location)),
	)
}

// Animals lists every animal, active or not, oldest first.
func (s *Service) Animals() []models.Animal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state.SortedAnimals()
	for i := range out {
		out[i] = out[i].Clone()
	}
	return out
}

// ActiveAnimals lists animals that are neither deceased nor sold.
func (s *Service) ActiveAnimals() []models.Animal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return herd.ActiveAnimals(s.state)
}

// HealthStatus grades the animal's recent treatments as of today.
func (s *Service) HealthStatus(id string) (calc.Health, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return herd.HealthStatusOf(s.state, id, s.Today())
}

// AgeBucket renders the animal's age; false when its birth date is unknown.
func (s *Service) AgeBucket(id string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return herd.AgeBucketOf(s.state, id, s.Today())
}

// EstimatedWeight projects the weight log to today. Nil with no error means
// fewer than two weigh-ins.
func (s *Service) EstimatedWeight(id string) (*float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return herd.EstimatedWeightOf(s.state, id, s.Today())
}

// Animal returns one animal by id.
func (s *Service) Animal(id string) (models.Animal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.Animals[id]
	if !ok {
		return models.Animal{}, models.Missing(herd.EntityAnimal, id)
	}
	return a.Clone(), nil
}

// FindByTag looks an active animal up by ear tag or name.
func (s *Service) FindByTag(tag string) (models.Animal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := herd.FindByTag(s.state, tag)
	return a.Clone(), ok
}

// BreedingRecords lists all records, or only animalID's when it is set.
func (s *Service) BreedingRecords(animalID string) []models.BreedingRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var recs []models.BreedingRecord
	if animalID == "" {
		recs = s.state.SortedBreedingRecords()
	} else {
		recs = s.state.BreedingRecordsFor(animalID)
	}
	for i := range recs {
		recs[i] = recs[i].Clone()
	}
	return recs
}

// Offspring lists motherID's offspring entries.
func (s *Service) Offspring(motherID string) ([]models.OffspringRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.state.Animals[motherID]; !ok {
		return nil, models.Missing(herd.EntityAnimal, motherID)
	}
	list := s.state.OffspringIndex[motherID]
	out := make([]models.OffspringRecord, len(list))
	for i, o := range list {
		out[i] = o.Clone()
	}
	return out, nil
}

// FeederPrograms lists every enrolment with its derived figures.
func (s *Service) FeederPrograms() []herd.FeederStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	today := s.Today()
	out := make([]herd.FeederStatus, 0, len(s.state.FeederPrograms))
	for _, a := range s.state.SortedAnimals() {
		if _, ok := s.state.FeederFor(a.ID); !ok {
			continue
		}
		if st, err := herd.FeederStatusOf(s.state, a.ID, today); err == nil {
			out = append(out, st)
		}
	}
	return out
}

// FeederStatus reports animalID's feeder program.
func (s *Service) FeederStatus(animalID string) (herd.FeederStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return herd.FeederStatusOf(s.state, animalID, s.Today())
}

// Notes lists the journal newest first.
func (s *Service) Notes() []models.JournalNote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.JournalNote(nil), s.state.Notes...)
}

// DueWithin lists open records due in the next days days.
func (s *Service) DueWithin(days int) []herd.DueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return herd.DueWithin(s.state, days, s.opts.Now(), s.opts.Location)
}

// Overdue lists open records past their due window.
func (s *Service) Overdue() []herd.DueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return herd.Overdue(s.state, s.opts.Now(), s.opts.Location)
}

// Expecting lists every open record.
func (s *Service) Expecting() []herd.DueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return herd.Expecting(s.state, s.opts.Now(), s.opts.Location)
}

// VaccinationsDue lists boosters due in the next days days, overdue included.
func (s *Service) VaccinationsDue(days int) []herd.VaccinationDue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return herd.VaccinationsDue(s.state, days, s.Today())
}

// AnimalSummary is an animal with its derived figures.
type AnimalSummary struct {
	Animal          models.Animal  `json:"animal"`
	DisplaySex      string         `json:"displaySex"`
	Health          calc.Health    `json:"health"`
	Age             string         `json:"age,omitempty"`
	EstimatedWeight *float64       `json:"estimatedWeight,omitempty"`
	Pasture         string         `json:"pasture,omitempty"`
	OnFeed          bool           `json:"onFeed"`
	Breeding        []herd.DueItem `json:"openBreeding,omitempty"`
}

// Summary derives id's health, age, weight and open breeding.
func (s *Service) Summary(id string) (AnimalSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.state.Animals[id]
	if !ok {
		return AnimalSummary{}, models.Missing(herd.EntityAnimal, id)
	}
	today := s.Today()
	sum := AnimalSummary{
		Animal:     a.Clone(),
		DisplaySex: a.DisplaySex(),
		Health:     calc.HealthStatus(a.Treatments, today),
	}
	if bucket, known := calc.AgeBucket(a.DOB, today); known {
		sum.Age = bucket
	}
	if w, err := herd.EstimatedWeightOf(s.state, id, today); err == nil {
		sum.EstimatedWeight = w
	}
	if m, ok := a.CurrentPasture(); ok {
		sum.Pasture = m.PastureName
	}
	_, sum.OnFeed = s.state.FeederFor(id)
	for _, item := range herd.Expecting(s.state, s.opts.Now(), s.opts.Location) {
		if item.Record.AnimalID == id {
			sum.Breeding = append(sum.Breeding, item)
		}
	}
	return sum, nil
}

// Dashboard summarises the herd as of now.
func (s *Service) Dashboard() herd.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return herd.BuildDashboard(s.state, s.opts.Now(), s.opts.Location)
}
