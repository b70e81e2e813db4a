package models

import "time"

// OffspringRecord is a calving outcome entered from the dam's profile.
// For live births ID equals the newborn Animal's id.
type OffspringRecord struct {
	ID         string      `bson:"id" json:"id"`
	MotherID   string      `bson:"motherId" json:"motherId"`
	Species    Species     `bson:"species" json:"species"`
	BreedingID string      `bson:"breedingId,omitempty" json:"breedingId,omitempty"`
	Outcome    CalfOutcome `bson:"outcome" json:"outcome"`
	CreatedAt  time.Time   `bson:"createdAt" json:"createdAt"`
}

// Clone deep-copies the record.
func (o OffspringRecord) Clone() OffspringRecord {
	out := o
	out.Outcome = o.Outcome.Clone()
	return out
}
