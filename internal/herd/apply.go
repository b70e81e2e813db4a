// Package herd is the command layer of the ledger. Every mutation is a
// Command applied by Apply to a private copy of the state, so a rejected
// command never leaves a partial write behind.
package herd

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// ReconcileSlackDays is the tolerance, either side of a due window, used to
// match births to open breeding records and to detect overlapping records.
const ReconcileSlackDays = 30

// Entity names used in Change.
const (
	EntityAnimal    = "animal"
	EntityBreeding  = "breeding"
	EntityOffspring = "offspring"
	EntityFeeder    = "feeder"
	EntityNote      = "note"
)

// Change actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Change is one record touched by a command.
type Change struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     string `json:"id"`
}

// Env supplies the clock, zone and id source a command runs with.
type Env struct {
	Now   time.Time
	Loc   *time.Location
	NewID func() string
}

func (e Env) withDefaults() Env {
	if e.Loc == nil {
		e.Loc = time.UTC
	}
	if e.Now.IsZero() {
		e.Now = time.Now()
	}
	if e.NewID == nil {
		e.NewID = uuid.NewString
	}
	return e
}

// Today is the farm-local calendar day of Now.
func (e Env) Today() models.Date {
	e = e.withDefaults()
	return models.DateOf(e.Now.In(e.Loc))
}

// Command is a single mutation of the ledger.
type Command interface {
	// Op names the command in logs and metrics.
	Op() string
	apply(t *tx) error
}

// Result is the outcome of a successful command.
type Result struct {
	State   models.State
	Changes []Change
}

// Created returns the id of the first record of entity the command created.
func (r Result) Created(entity string) string {
	for _, c := range r.Changes {
		if c.Entity == entity && c.Action == ActionCreate {
			return c.ID
		}
	}
	return ""
}

// IDs lists the distinct ids touched, in change order.
func (r Result) IDs() []string {
	seen := make(map[string]bool, len(r.Changes))
	out := make([]string, 0, len(r.Changes))
	for _, c := range r.Changes {
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c.ID)
		}
	}
	return out
}

// Apply runs cmd against a deep copy of state. On error the returned Result
// is empty and state is untouched.
func Apply(state models.State, cmd Command, env Env) (Result, error) {
	env = env.withDefaults()
	t := &tx{
		state: state.Clone().Normalize(),
		env:   env,
		today: env.Today(),
	}
	if err := cmd.apply(t); err != nil {
		return Result{}, err
	}
	return Result{State: t.state, Changes: t.changes}, nil
}

type tx struct {
	state   models.State
	env     Env
	today   models.Date
	changes []Change
}

// record notes a change once; repeats of the same change are dropped.
func (t *tx) record(entity, action, id string) {
	c := Change{Entity: entity, Action: action, ID: id}
	for _, seen := range t.changes {
		if seen == c {
			return
		}
	}
	t.changes = append(t.changes, c)
}

func (t *tx) animal(id string) (models.Animal, error) {
	if id == "" {
		return models.Animal{}, models.Invalid("animalId", "is required")
	}
	a, ok := t.state.Animals[id]
	if !ok {
		return models.Animal{}, models.Missing(EntityAnimal, id)
	}
	return a, nil
}

func (t *tx) putAnimal(a models.Animal, action string) {
	t.state.Animals[a.ID] = a
	t.record(EntityAnimal, action, a.ID)
}

func (t *tx) breeding(id string) (models.BreedingRecord, error) {
	if id == "" {
		return models.BreedingRecord{}, models.Invalid("breedingId", "is required")
	}
	rec, ok := t.state.BreedingRecords[id]
	if !ok {
		return models.BreedingRecord{}, models.Missing(EntityBreeding, id)
	}
	return rec, nil
}

func (t *tx) putBreeding(rec models.BreedingRecord, action string) {
	t.state.BreedingRecords[rec.ID] = rec
	t.record(EntityBreeding, action, rec.ID)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
