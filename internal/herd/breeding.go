package herd

import (
	"strings"

	"github.com/icsherer/Herd-Ledger/internal/domain/calc"
	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// BreedingDates selects the conception mode. Exactly one of Date or the
// Start/End pair must be set.
type BreedingDates struct {
	Date  *models.Date `json:"breedingDate,omitempty"`
	Start *models.Date `json:"breedingDateStart,omitempty"`
	End   *models.Date `json:"breedingDateEnd,omitempty"`
}

func (d BreedingDates) isSet() bool {
	return d.Date != nil || d.Start != nil || d.End != nil
}

func (d BreedingDates) resolve() (models.BreedingMode, models.Window, error) {
	single := d.Date != nil && !d.Date.IsZero()
	start := d.Start != nil && !d.Start.IsZero()
	end := d.End != nil && !d.End.IsZero()
	switch {
	case single && (start || end):
		return "", models.Window{}, models.Invalid("breedingDate", "give either a single date or a range, not both")
	case single:
		return models.ModeSingle, models.SingleDay(*d.Date), nil
	case start && end:
		if d.End.Before(*d.Start) {
			return "", models.Window{}, models.Invalid("breedingDateEnd", "cannot be before breedingDateStart")
		}
		return models.ModeRange, models.Window{Start: *d.Start, End: *d.End}, nil
	case start || end:
		return "", models.Window{}, models.Invalid("breedingDateEnd", "a range needs both start and end")
	default:
		return "", models.Window{}, models.Invalid("breedingDate", "is required")
	}
}

// LogBreeding opens a breeding record against a dam.
type LogBreeding struct {
	AnimalID string `json:"animalId"`
	BreedingDates
	Sire  string `json:"sire,omitempty"`
	Notes string `json:"notes,omitempty"`
}

func (LogBreeding) Op() string { return "log_breeding" }

func (c LogBreeding) apply(t *tx) error {
	dam, err := t.animal(c.AnimalID)
	if err != nil {
		return err
	}
	if !dam.CanBreed() {
		return models.InvalidBecause("animalId", models.ErrNotEligible)
	}
	mode, bred, err := c.resolve()
	if err != nil {
		return err
	}
	gd := models.GestationDays(dam.Species)
	rec := models.BreedingRecord{
		ID:            t.env.NewID(),
		AnimalID:      dam.ID,
		Mode:          mode,
		Bred:          bred,
		Due:           calc.DueWindow(bred, gd),
		GestationDays: gd,
		Sire:          strings.TrimSpace(c.Sire),
		Status:        models.StatusActive,
		Notes:         c.Notes,
		CreatedAt:     t.env.Now,
	}
	if err := t.checkOverlap(rec); err != nil {
		return err
	}
	t.putBreeding(rec, ActionCreate)
	return nil
}

// checkOverlap rejects a second open record for the same dam whose due
// window lands within the reconciliation tolerance of rec.
func (t *tx) checkOverlap(rec models.BreedingRecord) error {
	for _, other := range t.state.BreedingRecordsFor(rec.AnimalID) {
		if other.ID == rec.ID || !other.IsOpen() {
			continue
		}
		if other.Due.Overlaps(rec.Due, ReconcileSlackDays) {
			return models.InvalidBecause("breedingDate", models.ErrOverlappingBreeding)
		}
	}
	return nil
}

// EditBreeding changes the dates, sire or notes of a record. The captured
// gestation length never changes.
type EditBreeding struct {
	ID string `json:"-"`
	BreedingDates
	Sire  *string `json:"sire,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

func (EditBreeding) Op() string { return "edit_breeding" }

func (c EditBreeding) apply(t *tx) error {
	rec, err := t.breeding(c.ID)
	if err != nil {
		return err
	}
	if c.isSet() {
		mode, bred, err := c.resolve()
		if err != nil {
			return err
		}
		rec.Mode = mode
		rec.Bred = bred
		rec.Due = calc.DueWindow(bred, rec.GestationDays)
		if rec.IsOpen() {
			if err := t.checkOverlap(rec); err != nil {
				return err
			}
		}
	}
	if c.Sire != nil {
		rec.Sire = strings.TrimSpace(*c.Sire)
	}
	if c.Notes != nil {
		rec.Notes = *c.Notes
	}
	t.putBreeding(rec, ActionUpdate)
	return nil
}

// MarkDelivered moves a record to Delivered, optionally with an outcome.
// Repeating it keeps the original delivery timestamp.
type MarkDelivered struct {
	ID      string   `json:"-"`
	Outcome *Outcome `json:"outcome,omitempty"`
}

func (MarkDelivered) Op() string { return "mark_delivered" }

func (c MarkDelivered) apply(t *tx) error {
	rec, err := t.breeding(c.ID)
	if err != nil {
		return err
	}
	t.deliver(&rec)
	t.putBreeding(rec, ActionUpdate)
	if c.Outcome == nil {
		return nil
	}
	return t.setOutcome(rec, *c.Outcome, ActionUpdate)
}

func (t *tx) deliver(rec *models.BreedingRecord) {
	rec.Status = models.StatusDelivered
	if rec.DeliveredAt == nil {
		now := t.env.Now
		rec.DeliveredAt = &now
	}
}

// SetCalfOutcome adds or replaces the outcome of a delivered record.
type SetCalfOutcome struct {
	BreedingID string  `json:"-"`
	Outcome    Outcome `json:"outcome"`
}

func (SetCalfOutcome) Op() string { return "set_calf_outcome" }

func (c SetCalfOutcome) apply(t *tx) error {
	rec, err := t.breeding(c.BreedingID)
	if err != nil {
		return err
	}
	if rec.Status != models.StatusDelivered {
		return models.InvalidBecause("status", models.ErrInvalidTransition)
	}
	return t.setOutcome(rec, c.Outcome, ActionUpdate)
}

// RemoveCalfOutcome drops the outcome of a record and any animal it
// created. The record stays Delivered.
type RemoveCalfOutcome struct {
	BreedingID string `json:"-"`
}

func (RemoveCalfOutcome) Op() string { return "remove_calf_outcome" }

func (c RemoveCalfOutcome) apply(t *tx) error {
	rec, err := t.breeding(c.BreedingID)
	if err != nil {
		return err
	}
	if rec.Calf == nil {
		return models.Invalid("calf", "record has no calf outcome")
	}
	if rec.Calf.IsLive() && rec.Calf.AnimalID != "" {
		if _, ok := t.state.Animals[rec.Calf.AnimalID]; ok {
			t.cascade(rec.Calf.AnimalID)
		}
	}
	if linked, ok := t.linkedOffspring(rec); ok {
		t.dropOffspring(linked.MotherID, linked.ID)
	}
	rec.Calf = nil
	t.putBreeding(rec, ActionUpdate)
	return nil
}

// RemoveBreeding hard-deletes a record. The dam and any calf are kept, and
// offspring entries that pointed at it become standalone.
type RemoveBreeding struct {
	ID string `json:"-"`
}

func (RemoveBreeding) Op() string { return "remove_breeding" }

func (c RemoveBreeding) apply(t *tx) error {
	rec, err := t.breeding(c.ID)
	if err != nil {
		return err
	}
	if linked, ok := t.linkedOffspring(rec); ok {
		linked.BreedingID = ""
		t.putOffspring(linked)
	}
	delete(t.state.BreedingRecords, rec.ID)
	t.record(EntityBreeding, ActionDelete, rec.ID)
	return nil
}

// setOutcome applies an outcome to rec, creating, syncing or removing the
// calf animal, and mirrors the result onto a linked offspring entry, which
// is recorded with entryAction.
func (t *tx) setOutcome(rec models.BreedingRecord, in Outcome, entryAction string) error {
	dam, err := t.animal(rec.AnimalID)
	if err != nil {
		return err
	}
	linked, hasLinked := t.linkedOffspring(rec)
	liveID := ""
	if hasLinked {
		liveID = linked.ID
	}
	next, err := t.transitionCalf(rec.Calf, in, dam, rec.Sire, liveID)
	if err != nil {
		return err
	}
	rec.Calf = &next
	t.putBreeding(rec, ActionUpdate)
	if hasLinked {
		oldID := linked.ID
		linked.Outcome = next.Clone()
		t.saveOffspring(oldID, linked, entryAction)
	}
	return nil
}
