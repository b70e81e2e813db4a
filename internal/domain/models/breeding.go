package models

import "time"

// BreedingStatus is the lifecycle state of a breeding record.
type BreedingStatus string

const (
	StatusActive    BreedingStatus = "Active"
	StatusDelivered BreedingStatus = "Delivered"
)

// BreedingMode says how the conception date is known.
type BreedingMode string

const (
	// ModeSingle is a known breeding date; both window bounds are equal.
	ModeSingle BreedingMode = "single"
	// ModeRange is an exposure window, e.g. running with the bull.
	ModeRange BreedingMode = "range"
)

// OutcomeKind tags a calving outcome.
type OutcomeKind string

const (
	OutcomeLive      OutcomeKind = "live"
	OutcomeStillborn OutcomeKind = "stillborn"
)

// Window is an inclusive span of calendar days.
type Window struct {
	Start Date `bson:"start" json:"start"`
	End   Date `bson:"end" json:"end"`
}

// SingleDay returns a window covering just d.
func SingleDay(d Date) Window {
	return Window{Start: d, End: d}
}

// Shift moves both bounds by n days.
func (w Window) Shift(n int) Window {
	return Window{Start: w.Start.AddDays(n), End: w.End.AddDays(n)}
}

// Contains reports whether d falls inside the window widened by slack days
// on each side.
func (w Window) Contains(d Date, slack int) bool {
	return !d.Before(w.Start.AddDays(-slack)) && !d.After(w.End.AddDays(slack))
}

// Overlaps reports whether the windows, each widened by slack days, meet.
func (w Window) Overlaps(other Window, slack int) bool {
	return !w.End.AddDays(slack).Before(other.Start.AddDays(-slack)) &&
		!other.End.AddDays(slack).Before(w.Start.AddDays(-slack))
}

// CalfOutcome is the result of a delivery. AnimalID is set only for live
// births and names the Animal created for the newborn.
type CalfOutcome struct {
	Kind        OutcomeKind `bson:"kind" json:"kind"`
	Name        string      `bson:"name,omitempty" json:"name,omitempty"`
	Tag         string      `bson:"tag,omitempty" json:"tag,omitempty"`
	Sex         string      `bson:"sex,omitempty" json:"sex,omitempty"`
	BirthWeight *float64    `bson:"birthWeight,omitempty" json:"birthWeight,omitempty"`
	BirthDate   *Date       `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	WeaningDate *Date       `bson:"weaningDate,omitempty" json:"weaningDate,omitempty"`
	AnimalID    string      `bson:"animalId,omitempty" json:"animalId,omitempty"`
}

// IsLive reports whether the outcome is a live birth.
func (c CalfOutcome) IsLive() bool { return c.Kind == OutcomeLive }

// Clone deep-copies the optional fields.
func (c CalfOutcome) Clone() CalfOutcome {
	out := c
	if c.BirthWeight != nil {
		w := *c.BirthWeight
		out.BirthWeight = &w
	}
	if c.BirthDate != nil {
		out.BirthDate = c.BirthDate.Ptr()
	}
	if c.WeaningDate != nil {
		out.WeaningDate = c.WeaningDate.Ptr()
	}
	return out
}

// BreedingRecord tracks one breeding attempt for one dam.
type BreedingRecord struct {
	ID            string         `bson:"id" json:"id"`
	AnimalID      string         `bson:"animalId" json:"animalId"`
	Mode          BreedingMode   `bson:"mode" json:"mode"`
	Bred          Window         `bson:"bred" json:"bred"`
	Due           Window         `bson:"due" json:"due"`
	GestationDays int            `bson:"gestationDays" json:"gestationDays"`
	Sire          string         `bson:"sire,omitempty" json:"sire,omitempty"`
	Status        BreedingStatus `bson:"status" json:"status"`
	Notes         string         `bson:"notes,omitempty" json:"notes,omitempty"`
	DeliveredAt   *time.Time     `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	Retroactive   bool           `bson:"retroactive,omitempty" json:"retroactive,omitempty"`
	Calf          *CalfOutcome   `bson:"calf,omitempty" json:"calf,omitempty"`
	CreatedAt     time.Time      `bson:"createdAt" json:"createdAt"`
}

// IsRange reports whether the record tracks an exposure window.
func (b BreedingRecord) IsRange() bool { return b.Mode == ModeRange }

// IsOpen reports whether the record still awaits delivery.
func (b BreedingRecord) IsOpen() bool { return b.Status == StatusActive }

// BreedingDate returns the single breeding date, or the window start for
// ranged records.
func (b BreedingRecord) BreedingDate() Date { return b.Bred.Start }

// DueDate returns the single due date, or the earliest due date for ranged
// records.
func (b BreedingRecord) DueDate() Date { return b.Due.Start }

// Clone deep-copies the record.
func (b BreedingRecord) Clone() BreedingRecord {
	out := b
	if b.DeliveredAt != nil {
		t := *b.DeliveredAt
		out.DeliveredAt = &t
	}
	if b.Calf != nil {
		c := b.Calf.Clone()
		out.Calf = &c
	}
	return out
}
