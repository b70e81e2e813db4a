package herd

import (
	"strings"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// Outcome is the calving result a caller reports.
type Outcome struct {
	Kind        models.OutcomeKind `json:"kind"`
	Name        string             `json:"name,omitempty"`
	Tag         string             `json:"tag,omitempty"`
	Sex         string             `json:"sex,omitempty"`
	BirthWeight *float64           `json:"birthWeight,omitempty"`
	BirthDate   *models.Date       `json:"birthDate,omitempty"`
	WeaningDate *models.Date       `json:"weaningDate,omitempty"`
}

func (o Outcome) toCalf(species models.Species, today models.Date) (models.CalfOutcome, error) {
	out := models.CalfOutcome{
		Kind: o.Kind,
		Name: strings.TrimSpace(o.Name),
		Tag:  strings.TrimSpace(o.Tag),
	}
	switch o.Kind {
	case models.OutcomeLive:
		sex, err := canonicalSex(species, o.Sex)
		if err != nil {
			return models.CalfOutcome{}, err
		}
		out.Sex = sex
	case models.OutcomeStillborn:
		if strings.TrimSpace(o.Sex) != "" {
			sex, err := canonicalSex(species, o.Sex)
			if err != nil {
				return models.CalfOutcome{}, err
			}
			out.Sex = sex
		}
	default:
		return models.CalfOutcome{}, models.Invalid("kind", "must be live or stillborn")
	}
	if o.BirthWeight != nil {
		if *o.BirthWeight <= 0 {
			return models.CalfOutcome{}, models.Invalid("birthWeight", "must be positive")
		}
		w := *o.BirthWeight
		out.BirthWeight = &w
	}
	if o.BirthDate != nil && !o.BirthDate.IsZero() {
		if o.BirthDate.After(today) {
			return models.CalfOutcome{}, models.Invalid("birthDate", "cannot be in the future")
		}
		out.BirthDate = o.BirthDate.Ptr()
	}
	if o.WeaningDate != nil && !o.WeaningDate.IsZero() {
		if out.BirthDate != nil && o.WeaningDate.Before(*out.BirthDate) {
			return models.CalfOutcome{}, models.Invalid("weaningDate", "cannot be before birthDate")
		}
		out.WeaningDate = o.WeaningDate.Ptr()
	}
	return out, nil
}

// transitionCalf moves a calf slot from prev to the reported outcome and
// keeps the linked animal in step. A live calf keeps its animal and a
// live-to-stillborn edit removes it. A new live calf is created under
// liveID only when the slot had no earlier outcome; otherwise it gets a
// fresh id, so the id of a removed calf is never handed to another animal.
func (t *tx) transitionCalf(prev *models.CalfOutcome, in Outcome, dam models.Animal, sire, liveID string) (models.CalfOutcome, error) {
	next, err := in.toCalf(dam.Species, t.today)
	if err != nil {
		return models.CalfOutcome{}, err
	}
	prevLive := prev != nil && prev.IsLive() && prev.AnimalID != ""

	switch {
	case prevLive && next.IsLive():
		next.AnimalID = prev.AnimalID
		if calf, ok := t.state.Animals[prev.AnimalID]; ok {
			calf.Name = next.Name
			calf.Tag = next.Tag
			if calf.Castration == nil || models.GenderOf(next.Sex) == models.GenderMale {
				calf.Sex = next.Sex
			}
			if next.BirthDate != nil {
				calf.DOB = next.BirthDate.Ptr()
			}
			t.putAnimal(calf, ActionUpdate)
		} else {
			next.AnimalID = t.env.NewID()
			t.createCalf(next.AnimalID, dam, next, sire)
		}
	case prevLive:
		if _, ok := t.state.Animals[prev.AnimalID]; ok {
			t.detachCalf(prev.AnimalID)
		}
	case next.IsLive():
		if liveID == "" || prev != nil {
			liveID = t.env.NewID()
		}
		t.createCalf(liveID, dam, next, sire)
		next.AnimalID = liveID
	}
	return next, nil
}

// createCalf registers the animal born from a live outcome.
func (t *tx) createCalf(id string, dam models.Animal, calf models.CalfOutcome, sire string) {
	dob := t.today
	if calf.BirthDate != nil {
		dob = *calf.BirthDate
	}
	a := models.Animal{
		ID:        id,
		Species:   dam.Species,
		Sex:       calf.Sex,
		Name:      calf.Name,
		Tag:       calf.Tag,
		DOB:       dob.Ptr(),
		Breed:     dam.Breed,
		MotherID:  dam.ID,
		SireName:  sire,
		CreatedAt: t.env.Now,
	}
	if sireAnimal, ok := t.state.Animals[sire]; ok && sire != "" {
		a.SireID = sireAnimal.ID
		a.SireName = sireAnimal.DisplayName()
	}
	if calf.BirthWeight != nil {
		a.Weights = []models.WeightEntry{{Date: dob, Weight: *calf.BirthWeight}}
	}
	t.putAnimal(a, ActionCreate)
}
