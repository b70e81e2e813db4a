package models

import "sort"

// State is the full ledger: an arena of animals plus the collections that
// reference them by id.
type State struct {
	Animals         map[string]Animal            `bson:"animals" json:"animals"`
	BreedingRecords map[string]BreedingRecord    `bson:"breedingRecords" json:"breedingRecords"`
	OffspringIndex  map[string][]OffspringRecord `bson:"offspringIndex" json:"offspringIndex"`
	FeederPrograms  map[string]FeederProgram     `bson:"feederPrograms" json:"feederPrograms"`
	Notes           []JournalNote                `bson:"notes" json:"notes"`
}

// NewState returns an empty, fully initialised state.
func NewState() State {
	return State{
		Animals:         map[string]Animal{},
		BreedingRecords: map[string]BreedingRecord{},
		OffspringIndex:  map[string][]OffspringRecord{},
		FeederPrograms:  map[string]FeederProgram{},
		Notes:           []JournalNote{},
	}
}

// Normalize replaces nil collections with empty ones. Stores call it after
// decoding so a missing bucket reads as empty.
func (s State) Normalize() State {
	if s.Animals == nil {
		s.Animals = map[string]Animal{}
	}
	if s.BreedingRecords == nil {
		s.BreedingRecords = map[string]BreedingRecord{}
	}
	if s.OffspringIndex == nil {
		s.OffspringIndex = map[string][]OffspringRecord{}
	}
	if s.FeederPrograms == nil {
		s.FeederPrograms = map[string]FeederProgram{}
	}
	if s.Notes == nil {
		s.Notes = []JournalNote{}
	}
	return s
}

// Clone returns a deep copy that shares no mutable memory with s.
func (s State) Clone() State {
	out := State{
		Animals:         make(map[string]Animal, len(s.Animals)),
		BreedingRecords: make(map[string]BreedingRecord, len(s.BreedingRecords)),
		OffspringIndex:  make(map[string][]OffspringRecord, len(s.OffspringIndex)),
		FeederPrograms:  make(map[string]FeederProgram, len(s.FeederPrograms)),
		Notes:           make([]JournalNote, len(s.Notes)),
	}
	for id, a := range s.Animals {
		out.Animals[id] = a.Clone()
	}
	for id, b := range s.BreedingRecords {
		out.BreedingRecords[id] = b.Clone()
	}
	for mother, list := range s.OffspringIndex {
		cp := make([]OffspringRecord, len(list))
		for i, o := range list {
			cp[i] = o.Clone()
		}
		out.OffspringIndex[mother] = cp
	}
	for id, f := range s.FeederPrograms {
		out.FeederPrograms[id] = f.Clone()
	}
	copy(out.Notes, s.Notes)
	return out
}

// SortedAnimals lists animals by creation time, then id.
func (s State) SortedAnimals() []Animal {
	out := make([]Animal, 0, len(s.Animals))
	for _, a := range s.Animals {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SortedBreedingRecords lists records by due date, then id.
func (s State) SortedBreedingRecords() []BreedingRecord {
	out := make([]BreedingRecord, 0, len(s.BreedingRecords))
	for _, b := range s.BreedingRecords {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Due.Start.Equal(out[j].Due.Start) {
			return out[i].Due.Start.Before(out[j].Due.Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// BreedingRecordsFor lists the records whose dam is animalID.
func (s State) BreedingRecordsFor(animalID string) []BreedingRecord {
	var out []BreedingRecord
	for _, b := range s.SortedBreedingRecords() {
		if b.AnimalID == animalID {
			out = append(out, b)
		}
	}
	return out
}

// FeederFor returns the feeder program enrolling animalID, if any.
func (s State) FeederFor(animalID string) (FeederProgram, bool) {
	for _, f := range s.FeederPrograms {
		if f.AnimalID == animalID {
			return f, true
		}
	}
	return FeederProgram{}, false
}
