package models

import "time"

// TreatmentIllness marks treatments that flag an animal as sick.
const TreatmentIllness = "Illness"

// WeightEntry is one dated weigh-in, in pounds.
type WeightEntry struct {
	Date   Date    `bson:"date" json:"date"`
	Weight float64 `bson:"weight" json:"weight"`
}

// Treatment captures a health event such as a dosing or an illness.
type Treatment struct {
	ID      string `bson:"id" json:"id"`
	Date    Date   `bson:"date" json:"date"`
	Kind    string `bson:"type" json:"type"`
	Product string `bson:"product,omitempty" json:"product,omitempty"`
	Dosage  string `bson:"dosage,omitempty" json:"dosage,omitempty"`
	Notes   string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Vaccination records a vaccine given and when the booster is due.
type Vaccination struct {
	ID          string `bson:"id" json:"id"`
	VaccineName string `bson:"vaccineName" json:"vaccineName"`
	DateGiven   Date   `bson:"dateGiven" json:"dateGiven"`
	NextDueDate *Date  `bson:"nextDueDate,omitempty" json:"nextDueDate,omitempty"`
}

// Movement records an animal entering a pasture.
type Movement struct {
	PastureName string `bson:"pastureName" json:"pastureName"`
	DateMovedIn Date   `bson:"dateMovedIn" json:"dateMovedIn"`
}

// Castration records when and how a male was castrated.
type Castration struct {
	Date   Date   `bson:"date" json:"date"`
	Method string `bson:"method,omitempty" json:"method,omitempty"`
}

// Sale records the disposal of an animal by sale.
type Sale struct {
	DateSold Date    `bson:"dateSold" json:"dateSold"`
	Price    float64 `bson:"price,omitempty" json:"price,omitempty"`
	Buyer    string  `bson:"buyer,omitempty" json:"buyer,omitempty"`
}

// Death records when and why an animal died.
type Death struct {
	Date  Date   `bson:"date" json:"date"`
	Cause string `bson:"cause,omitempty" json:"cause,omitempty"`
}

// Animal is one head of livestock in the register.
type Animal struct {
	ID           string        `bson:"id" json:"id"`
	Species      Species       `bson:"species" json:"species"`
	Sex          string        `bson:"sex" json:"sex"`
	Name         string        `bson:"name,omitempty" json:"name,omitempty"`
	Tag          string        `bson:"tag,omitempty" json:"tag,omitempty"`
	Color        string        `bson:"color,omitempty" json:"color,omitempty"`
	DOB          *Date         `bson:"dob,omitempty" json:"dob,omitempty"`
	Breed        string        `bson:"breed,omitempty" json:"breed,omitempty"`
	Notes        string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Weights      []WeightEntry `bson:"weights,omitempty" json:"weights,omitempty"`
	Treatments   []Treatment   `bson:"treatments,omitempty" json:"treatments,omitempty"`
	Vaccinations []Vaccination `bson:"vaccinations,omitempty" json:"vaccinations,omitempty"`
	Movements    []Movement    `bson:"movements,omitempty" json:"movements,omitempty"`
	Castration   *Castration   `bson:"castration,omitempty" json:"castration,omitempty"`
	Sale         *Sale         `bson:"sale,omitempty" json:"sale,omitempty"`
	Deceased     *Death        `bson:"deceased,omitempty" json:"deceased,omitempty"`
	MotherID     string        `bson:"motherId,omitempty" json:"motherId,omitempty"`
	SireID       string        `bson:"sireId,omitempty" json:"sireId,omitempty"`
	SireName     string        `bson:"sireName,omitempty" json:"sireName,omitempty"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
}

// Gender returns the gender implied by the animal's sex term.
func (a Animal) Gender() Gender {
	return GenderOf(a.Sex)
}

// DisplaySex returns the sex term to show, switching to the species'
// castrated term once a castration is recorded.
func (a Animal) DisplaySex() string {
	if a.Castration != nil {
		if term := CastratedTerm(a.Species); term != "" {
			return term
		}
	}
	return a.Sex
}

// DisplayName prefers the name, then the tag, then the id.
func (a Animal) DisplayName() string {
	switch {
	case a.Name != "":
		return a.Name
	case a.Tag != "":
		return a.Tag
	default:
		return a.ID
	}
}

// IsActive reports whether the animal still counts toward the herd.
func (a Animal) IsActive() bool {
	return a.Deceased == nil && a.Sale == nil
}

// CanBreed reports whether breeding records may be logged against the animal.
func (a Animal) CanBreed() bool {
	return a.IsActive() && a.Gender() == GenderFemale && !IsInfertile(a.Species)
}

// CurrentPasture returns the most recent pasture, if any.
func (a Animal) CurrentPasture() (Movement, bool) {
	if len(a.Movements) == 0 {
		return Movement{}, false
	}
	return a.Movements[0], true
}

// Clone returns a deep copy so callers cannot alias slices held in state.
func (a Animal) Clone() Animal {
	out := a
	if a.DOB != nil {
		out.DOB = a.DOB.Ptr()
	}
	out.Weights = append([]WeightEntry(nil), a.Weights...)
	out.Treatments = append([]Treatment(nil), a.Treatments...)
	if a.Vaccinations != nil {
		out.Vaccinations = make([]Vaccination, len(a.Vaccinations))
		for i, v := range a.Vaccinations {
			if v.NextDueDate != nil {
				v.NextDueDate = v.NextDueDate.Ptr()
			}
			out.Vaccinations[i] = v
		}
	}
	out.Movements = append([]Movement(nil), a.Movements...)
	if a.Castration != nil {
		c := *a.Castration
		out.Castration = &c
	}
	if a.Sale != nil {
		s := *a.Sale
		out.Sale = &s
	}
	if a.Deceased != nil {
		d := *a.Deceased
		out.Deceased = &d
	}
	return out
}
