package herd

import (
	"sort"
	"strings"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// RegisterAnimal adds a new animal to the register.
type RegisterAnimal struct {
	Species  models.Species `json:"species"`
	Sex      string         `json:"sex"`
	Name     string         `json:"name,omitempty"`
	Tag      string         `json:"tag,omitempty"`
	Color    string         `json:"color,omitempty"`
	DOB      *models.Date   `json:"dob,omitempty"`
	Breed    string         `json:"breed,omitempty"`
	Notes    string         `json:"notes,omitempty"`
	MotherID string         `json:"motherId,omitempty"`
	SireID   string         `json:"sireId,omitempty"`
	SireName string         `json:"sireName,omitempty"`
}

func (RegisterAnimal) Op() string { return "register_animal" }

func (c RegisterAnimal) apply(t *tx) error {
	if c.Species == "" {
		return models.Invalid("species", "is required")
	}
	sex, err := canonicalSex(c.Species, c.Sex)
	if err != nil {
		return err
	}
	if c.DOB != nil && c.DOB.After(t.today) {
		return models.Invalid("dob", "cannot be in the future")
	}
	if c.MotherID != "" {
		if _, err := t.animal(c.MotherID); err != nil {
			return err
		}
	}
	a := models.Animal{
		ID:        t.env.NewID(),
		Species:   c.Species,
		Sex:       sex,
		Name:      strings.TrimSpace(c.Name),
		Tag:       strings.TrimSpace(c.Tag),
		Color:     c.Color,
		Breed:     c.Breed,
		Notes:     c.Notes,
		MotherID:  c.MotherID,
		SireID:    c.SireID,
		SireName:  c.SireName,
		CreatedAt: t.env.Now,
	}
	if c.DOB != nil && !c.DOB.IsZero() {
		a.DOB = c.DOB.Ptr()
	}
	t.putAnimal(a, ActionCreate)
	return nil
}

// EditAnimal patches identity fields. Nil fields are left unchanged.
type EditAnimal struct {
	ID       string          `json:"-"`
	Species  *models.Species `json:"species,omitempty"`
	Sex      *string         `json:"sex,omitempty"`
	Name     *string         `json:"name,omitempty"`
	Tag      *string         `json:"tag,omitempty"`
	Color    *string         `json:"color,omitempty"`
	DOB      *models.Date    `json:"dob,omitempty"`
	ClearDOB bool            `json:"clearDob,omitempty"`
	Breed    *string         `json:"breed,omitempty"`
	Notes    *string         `json:"notes,omitempty"`
	MotherID *string         `json:"motherId,omitempty"`
	SireID   *string         `json:"sireId,omitempty"`
	SireName *string         `json:"sireName,omitempty"`
}

func (EditAnimal) Op() string { return "edit_animal" }

func (c EditAnimal) apply(t *tx) error {
	a, err := t.animal(c.ID)
	if err != nil {
		return err
	}
	species := a.Species
	if c.Species != nil {
		if *c.Species == "" {
			return models.Invalid("species", "is required")
		}
		species = *c.Species
	}
	sexTerm := a.Sex
	if c.Sex != nil {
		sexTerm = *c.Sex
	}
	sex, err := canonicalSex(species, sexTerm)
	if err != nil {
		return err
	}
	gender := models.GenderOf(sex)
	if a.Castration != nil && gender != models.GenderMale {
		return models.Invalid("sex", "castrated animals must keep a male sex term")
	}
	if gender != models.GenderFemale || models.IsInfertile(species) {
		for _, rec := range t.state.BreedingRecordsFor(a.ID) {
			if rec.IsOpen() {
				return models.InvalidBecause("sex", models.ErrNotEligible)
			}
		}
	}
	if species != models.SpeciesCattle {
		if _, enrolled := t.state.FeederFor(a.ID); enrolled {
			return models.InvalidBecause("species", models.ErrNotEligible)
		}
	}
	if c.MotherID != nil && *c.MotherID != "" {
		if *c.MotherID == a.ID {
			return models.Invalid("motherId", "an animal cannot be its own mother")
		}
		if _, err := t.animal(*c.MotherID); err != nil {
			return err
		}
	}

	a.Species = species
	a.Sex = sex
	setString(&a.Name, c.Name)
	setString(&a.Tag, c.Tag)
	setString(&a.Color, c.Color)
	setString(&a.Breed, c.Breed)
	setString(&a.Notes, c.Notes)
	setString(&a.MotherID, c.MotherID)
	setString(&a.SireID, c.SireID)
	setString(&a.SireName, c.SireName)
	switch {
	case c.ClearDOB:
		a.DOB = nil
	case c.DOB != nil:
		if c.DOB.After(t.today) {
			return models.Invalid("dob", "cannot be in the future")
		}
		a.DOB = c.DOB.Ptr()
	}
	t.putAnimal(a, ActionUpdate)
	return nil
}

// AttachWeight records a weigh-in. Weights stay sorted by date.
type AttachWeight struct {
	AnimalID string             `json:"-"`
	Entry    models.WeightEntry `json:"entry"`
}

func (AttachWeight) Op() string { return "attach_weight" }

func (c AttachWeight) apply(t *tx) error {
	a, err := t.animal(c.AnimalID)
	if err != nil {
		return err
	}
	if c.Entry.Date.IsZero() {
		return models.Invalid("date", "is required")
	}
	if c.Entry.Weight <= 0 {
		return models.Invalid("weight", "must be positive")
	}
	a.Weights = append(a.Weights, c.Entry)
	sort.SliceStable(a.Weights, func(i, j int) bool {
		return a.Weights[i].Date.Before(a.Weights[j].Date)
	})
	t.putAnimal(a, ActionUpdate)
	return nil
}

// AttachTreatment records a health event.
type AttachTreatment struct {
	AnimalID  string           `json:"-"`
	Treatment models.Treatment `json:"treatment"`
}

func (AttachTreatment) Op() string { return "attach_treatment" }

func (c AttachTreatment) apply(t *tx) error {
	a, err := t.animal(c.AnimalID)
	if err != nil {
		return err
	}
	tr := c.Treatment
	if tr.Date.IsZero() {
		return models.Invalid("date", "is required")
	}
	if strings.TrimSpace(tr.Kind) == "" {
		return models.Invalid("type", "is required")
	}
	tr.ID = t.env.NewID()
	a.Treatments = append(a.Treatments, tr)
	sort.SliceStable(a.Treatments, func(i, j int) bool {
		return a.Treatments[i].Date.Before(a.Treatments[j].Date)
	})
	t.putAnimal(a, ActionUpdate)
	return nil
}

// RemoveTreatment deletes one treatment by id.
type RemoveTreatment struct {
	AnimalID    string `json:"-"`
	TreatmentID string `json:"-"`
}

func (RemoveTreatment) Op() string { return "remove_treatment" }

func (c RemoveTreatment) apply(t *tx) error {
	a, err := t.animal(c.AnimalID)
	if err != nil {
		return err
	}
	for i, tr := range a.Treatments {
		if tr.ID == c.TreatmentID {
			a.Treatments = append(a.Treatments[:i:i], a.Treatments[i+1:]...)
			t.putAnimal(a, ActionUpdate)
			return nil
		}
	}
	return models.Missing("treatment", c.TreatmentID)
}

// AttachVaccination records a vaccine and its booster date.
type AttachVaccination struct {
	AnimalID    string             `json:"-"`
	Vaccination models.Vaccination `json:"vaccination"`
}

func (AttachVaccination) Op() string { return "attach_vaccination" }

func (c AttachVaccination) apply(t *tx) error {
	a, err := t.animal(c.AnimalID)
	if err != nil {
		return err
	}
	v := c.Vaccination
	if strings.TrimSpace(v.VaccineName) == "" {
		return models.Invalid("vaccineName", "is required")
	}
	if v.DateGiven.IsZero() {
		return models.Invalid("dateGiven", "is required")
	}
	if v.NextDueDate != nil && v.NextDueDate.IsZero() {
		v.NextDueDate = nil
	}
	if v.NextDueDate != nil && v.NextDueDate.Before(v.DateGiven) {
		return models.Invalid("nextDueDate", "cannot be before dateGiven")
	}
	v.ID = t.env.NewID()
	a.Vaccinations = append(a.Vaccinations, v)
	sort.SliceStable(a.Vaccinations, func(i, j int) bool {
		return a.Vaccinations[i].DateGiven.Before(a.Vaccinations[j].DateGiven)
	})
	t.putAnimal(a, ActionUpdate)
	return nil
}

// RemoveVaccination deletes one vaccination by id.
type RemoveVaccination struct {
	AnimalID      string `json:"-"`
	VaccinationID string `json:"-"`
}

func (RemoveVaccination) Op() string { return "remove_vaccination" }

func (c RemoveVaccination) apply(t *tx) error {
	a, err := t.animal(c.AnimalID)
	if err != nil {
		return err
	}
	for i, v := range a.Vaccinations {
		if v.ID == c.VaccinationID {
			a.Vaccinations = append(a.Vaccinations[:i:i], a.Vaccinations[i+1:]...)
			t.putAnimal(a, ActionUpdate)
			return nil
		}
	}
	return models.Missing("vaccination", c.VaccinationID)
}

// AttachMovement records a pasture move. Movements are kept newest first.
type AttachMovement struct {
	AnimalID string          `json:"-"`
	Movement models.Movement `json:"movement"`
}

func (AttachMovement) Op() string { return "attach_movement" }

func (c AttachMovement) apply(t *tx) error {
	a, err := t.animal(c.AnimalID)
	if err != nil {
		return err
	}
	m := c.Movement
	m.PastureName = strings.TrimSpace(m.PastureName)
	if m.PastureName == "" {
		return models.Invalid("pastureName", "is required")
	}
	if m.DateMovedIn.IsZero() {
		m.DateMovedIn = t.today
	}
	a.Movements = append([]models.Movement{m}, a.Movements...)
	sort.SliceStable(a.Movements, func(i, j int) bool {
		return a.Movements[i].DateMovedIn.After(a.Movements[j].DateMovedIn)
	})
	t.putAnimal(a, ActionUpdate)
	return nil
}

// MarkDeceased flags the animal as dead. The record is kept.
type MarkDeceased struct {
	AnimalID string       `json:"-"`
	Death    models.Death `json:"death"`
}

func (MarkDeceased) Op() string { return "mark_deceased" }

func (c MarkDeceased) apply(t *tx) error {
	a, err := t.animal(c.AnimalID)
	if err != nil {
		return err
	}
	d := c.Death
	if d.Date.IsZero() {
		return models.Invalid("date", "is required")
	}
	a.Deceased = &d
	t.putAnimal(a, ActionUpdate)
	return nil
}

// MarkSold flags the animal as sold. The record is kept.
type MarkSold struct {
	AnimalID string      `json:"-"`
	Sale     models.Sale `json:"sale"`
}

func (MarkSold) Op() string { return "mark_sold" }

func (c MarkSold) apply(t *tx) error {
	a, err := t.animal(c.AnimalID)
	if err != nil {
		return err
	}
	s := c.Sale
	if s.DateSold.IsZero() {
		return models.Invalid("dateSold", "is required")
	}
	if s.Price < 0 {
		return models.Invalid("price", "cannot be negative")
	}
	a.Sale = &s
	t.putAnimal(a, ActionUpdate)
	return nil
}

// MarkCastrated records a castration on a male animal.
type MarkCastrated struct {
	AnimalID   string            `json:"-"`
	Castration models.Castration `json:"castration"`
}

func (MarkCastrated) Op() string { return "mark_castrated" }

func (c MarkCastrated) apply(t *tx) error {
	a, err := t.animal(c.AnimalID)
	if err != nil {
		return err
	}
	if a.Gender() != models.GenderMale {
		return models.InvalidBecause("sex", models.ErrNotEligible)
	}
	cs := c.Castration
	if cs.Date.IsZero() {
		return models.Invalid("date", "is required")
	}
	a.Castration = &cs
	t.putAnimal(a, ActionUpdate)
	return nil
}

// RemoveAnimal hard-deletes an animal and everything that depends on it.
type RemoveAnimal struct {
	AnimalID string `json:"-"`
}

func (RemoveAnimal) Op() string { return "remove_animal" }

func (c RemoveAnimal) apply(t *tx) error {
	if _, err := t.animal(c.AnimalID); err != nil {
		return err
	}
	t.cascade(c.AnimalID)
	return nil
}

// canonicalSex matches term against the species vocabulary, ignoring case,
// and returns the registry spelling.
func canonicalSex(species models.Species, term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", models.Invalid("sex", "is required")
	}
	for _, v := range models.SexVocabulary(species) {
		if strings.EqualFold(v, term) {
			return v, nil
		}
	}
	return "", models.Invalid("sex", term+" is not a valid term for "+string(species))
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
