package herd

import (
	"github.com/icsherer/Herd-Ledger/internal/domain/calc"
	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// AddOffspring records a birth from the dam's profile. A dated birth is
// reconciled with the dam's open breeding records; when none matches, a
// delivered record is synthesized from the birth date.
type AddOffspring struct {
	MotherID   string  `json:"-"`
	BreedingID string  `json:"breedingId,omitempty"`
	Outcome    Outcome `json:"outcome"`
}

func (AddOffspring) Op() string { return "add_offspring" }

func (c AddOffspring) apply(t *tx) error {
	dam, err := t.animal(c.MotherID)
	if err != nil {
		return err
	}
	if dam.Gender() != models.GenderFemale || models.IsInfertile(dam.Species) {
		return models.InvalidBecause("motherId", models.ErrNotEligible)
	}
	// Validate up front so a bad outcome cannot leave a synthesized record.
	calf, err := c.Outcome.toCalf(dam.Species, t.today)
	if err != nil {
		return err
	}

	entry := models.OffspringRecord{
		ID:        t.env.NewID(),
		MotherID:  dam.ID,
		Species:   dam.Species,
		CreatedAt: t.env.Now,
	}

	rec, found, err := t.reconcile(dam, c.BreedingID, calf.BirthDate)
	if err != nil {
		return err
	}
	if found {
		t.deliver(&rec)
		entry.BreedingID = rec.ID
		entry.Outcome = calf
		t.putOffspring(entry)
		return t.setOutcome(rec, c.Outcome, ActionCreate)
	}

	next, err := t.transitionCalf(nil, c.Outcome, dam, "", entry.ID)
	if err != nil {
		return err
	}
	entry.Outcome = next
	t.saveOffspring(entry.ID, entry, ActionCreate)
	return nil
}

// reconcile finds or synthesizes the breeding record a birth belongs to.
// It reports false when the birth stands alone.
func (t *tx) reconcile(dam models.Animal, breedingID string, born *models.Date) (models.BreedingRecord, bool, error) {
	if breedingID != "" {
		rec, err := t.breeding(breedingID)
		if err != nil {
			return models.BreedingRecord{}, false, err
		}
		if rec.AnimalID != dam.ID {
			return models.BreedingRecord{}, false, models.Invalid("breedingId", "record belongs to another dam")
		}
		if rec.Calf != nil {
			return models.BreedingRecord{}, false, models.Invalid("breedingId", "record already has a calf outcome")
		}
		return rec, true, nil
	}
	if born == nil {
		return models.BreedingRecord{}, false, nil
	}

	var candidates []models.BreedingRecord
	for _, rec := range t.state.BreedingRecordsFor(dam.ID) {
		if rec.IsOpen() && rec.Due.Contains(*born, ReconcileSlackDays) {
			candidates = append(candidates, rec)
		}
	}
	switch len(candidates) {
	case 1:
		return candidates[0], true, nil
	case 0:
	default:
		return models.BreedingRecord{}, false, models.InvalidBecause("breedingId", models.ErrAmbiguousBreeding)
	}

	gd := models.GestationDays(dam.Species)
	bred := models.SingleDay(born.AddDays(-gd))
	now := t.env.Now
	rec := models.BreedingRecord{
		ID:            t.env.NewID(),
		AnimalID:      dam.ID,
		Mode:          models.ModeSingle,
		Bred:          bred,
		Due:           calc.DueWindow(bred, gd),
		GestationDays: gd,
		Status:        models.StatusDelivered,
		DeliveredAt:   &now,
		Retroactive:   true,
		CreatedAt:     now,
	}
	t.putBreeding(rec, ActionCreate)
	return rec, true, nil
}

// EditOffspring replaces the outcome of an offspring entry. A calf that
// turns live again gets a new animal, and the entry moves to its id.
type EditOffspring struct {
	MotherID string  `json:"-"`
	ID       string  `json:"-"`
	Outcome  Outcome `json:"outcome"`
}

func (EditOffspring) Op() string { return "edit_offspring" }

func (c EditOffspring) apply(t *tx) error {
	entry, err := t.offspring(c.MotherID, c.ID)
	if err != nil {
		return err
	}
	if entry.BreedingID != "" {
		if rec, ok := t.state.BreedingRecords[entry.BreedingID]; ok {
			return t.setOutcome(rec, c.Outcome, ActionUpdate)
		}
	}
	dam, err := t.animal(entry.MotherID)
	if err != nil {
		return err
	}
	oldID := entry.ID
	prev := entry.Outcome
	next, err := t.transitionCalf(&prev, c.Outcome, dam, "", "")
	if err != nil {
		return err
	}
	entry.Outcome = next
	t.saveOffspring(oldID, entry, ActionUpdate)
	return nil
}

// DeleteOffspring removes an offspring entry and, for a live birth, its
// animal. A linked breeding record keeps its Delivered status.
type DeleteOffspring struct {
	MotherID string `json:"-"`
	ID       string `json:"-"`
}

func (DeleteOffspring) Op() string { return "delete_offspring" }

func (c DeleteOffspring) apply(t *tx) error {
	entry, err := t.offspring(c.MotherID, c.ID)
	if err != nil {
		return err
	}
	if entry.Outcome.IsLive() && entry.Outcome.AnimalID != "" {
		if _, ok := t.state.Animals[entry.Outcome.AnimalID]; ok {
			t.cascade(entry.Outcome.AnimalID)
		}
	}
	if rec, ok := t.state.BreedingRecords[entry.BreedingID]; ok && rec.Calf != nil {
		rec.Calf = nil
		t.putBreeding(rec, ActionUpdate)
	}
	// The cascade already dropped a live entry keyed by its calf.
	if _, err := t.offspring(entry.MotherID, entry.ID); err == nil {
		t.dropOffspring(entry.MotherID, entry.ID)
		t.record(EntityOffspring, ActionDelete, entry.ID)
	}
	return nil
}

func (t *tx) offspring(motherID, id string) (models.OffspringRecord, error) {
	for _, o := range t.state.OffspringIndex[motherID] {
		if o.ID == id {
			return o, nil
		}
	}
	return models.OffspringRecord{}, models.Missing(EntityOffspring, id)
}

// linkedOffspring returns the offspring entry mirroring rec's outcome.
func (t *tx) linkedOffspring(rec models.BreedingRecord) (models.OffspringRecord, bool) {
	for _, o := range t.state.OffspringIndex[rec.AnimalID] {
		if o.BreedingID == rec.ID {
			return o, true
		}
	}
	return models.OffspringRecord{}, false
}

// putOffspring replaces the entry with the same id or appends it.
func (t *tx) putOffspring(o models.OffspringRecord) {
	list := t.state.OffspringIndex[o.MotherID]
	for i := range list {
		if list[i].ID == o.ID {
			list[i] = o
			return
		}
	}
	t.state.OffspringIndex[o.MotherID] = append(list, o)
}

// saveOffspring writes entry back in place of oldID. Live entries are keyed
// by their calf's animal id, so an entry whose calf was replaced moves to
// the new id and is recorded as a delete plus a create.
func (t *tx) saveOffspring(oldID string, entry models.OffspringRecord, action string) {
	if entry.Outcome.IsLive() && entry.Outcome.AnimalID != "" {
		entry.ID = entry.Outcome.AnimalID
	}
	list := t.state.OffspringIndex[entry.MotherID]
	replaced := false
	for i := range list {
		if list[i].ID == oldID {
			list[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		t.state.OffspringIndex[entry.MotherID] = append(list, entry)
	}
	if entry.ID != oldID {
		t.record(EntityOffspring, ActionDelete, oldID)
		action = ActionCreate
	}
	t.record(EntityOffspring, action, entry.ID)
}

func (t *tx) dropOffspring(motherID, id string) {
	list := t.state.OffspringIndex[motherID]
	kept := list[:0]
	for _, o := range list {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	if len(kept) == 0 {
		delete(t.state.OffspringIndex, motherID)
		return
	}
	t.state.OffspringIndex[motherID] = kept
}
