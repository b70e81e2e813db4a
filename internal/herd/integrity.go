package herd

import (
	"sort"

	"github.com/icsherer/Herd-Ledger/internal/domain/calc"
	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// Verify reports every broken invariant in s without changing it.
func Verify(s models.State) []models.IntegrityViolation {
	_, violations := Repair(s)
	return violations
}

// Repair returns a copy of s with broken invariants degraded to the nearest
// valid form, and the violations it fixed. Dangling references are pruned
// the way the delete cascade would have; malformed ranged records become
// single-date records.
func Repair(s models.State) (models.State, []models.IntegrityViolation) {
	out := s.Clone().Normalize()
	r := &repairer{state: out}
	r.breedingRecords()
	r.offspringIndex()
	r.feederPrograms()
	return r.state, r.violations
}

type repairer struct {
	state      models.State
	violations []models.IntegrityViolation
}

func (r *repairer) report(entity, id, detail string) {
	r.violations = append(r.violations, models.IntegrityViolation{Entity: entity, ID: id, Detail: detail})
}

func (r *repairer) breedingRecords() {
	for _, id := range sortedKeys(r.state.BreedingRecords) {
		rec := r.state.BreedingRecords[id]
		dam, ok := r.state.Animals[rec.AnimalID]
		if !ok {
			r.report(EntityBreeding, id, "dam "+rec.AnimalID+" does not exist")
			delete(r.state.BreedingRecords, id)
			continue
		}
		if rec.GestationDays <= 0 {
			r.report(EntityBreeding, id, "gestation length missing")
			rec.GestationDays = models.GestationDays(dam.Species)
		}
		switch {
		case rec.Mode == models.ModeRange && !rec.Bred.Start.IsZero() && !rec.Bred.End.IsZero() && !rec.Bred.End.Before(rec.Bred.Start):
		case rec.Mode == models.ModeSingle && !rec.Bred.Start.IsZero() && rec.Bred.Start.Equal(rec.Bred.End):
		default:
			r.report(EntityBreeding, id, "breeding dates do not match mode "+string(rec.Mode))
			start := rec.Bred.Start
			if start.IsZero() {
				start = rec.Bred.End
			}
			rec.Mode = models.ModeSingle
			rec.Bred = models.SingleDay(start)
		}
		if due := calc.DueWindow(rec.Bred, rec.GestationDays); !due.Start.Equal(rec.Due.Start) || !due.End.Equal(rec.Due.End) {
			r.report(EntityBreeding, id, "due dates disagree with breeding dates")
			rec.Due = due
		}
		switch rec.Status {
		case models.StatusActive:
			if rec.Calf != nil {
				r.report(EntityBreeding, id, "active record carries a calf outcome")
				rec.Status = models.StatusDelivered
			}
		case models.StatusDelivered:
		default:
			r.report(EntityBreeding, id, "unknown status "+string(rec.Status))
			rec.Status = models.StatusActive
			if rec.Calf != nil {
				rec.Status = models.StatusDelivered
			}
		}
		if rec.Calf != nil {
			switch {
			case rec.Calf.IsLive() && rec.Calf.AnimalID == "":
				r.report(EntityBreeding, id, "live calf without an animal")
				rec.Calf = nil
			case rec.Calf.IsLive():
				if _, ok := r.state.Animals[rec.Calf.AnimalID]; !ok {
					r.report(EntityBreeding, id, "calf animal "+rec.Calf.AnimalID+" does not exist")
					rec.Calf = nil
				}
			case rec.Calf.AnimalID != "":
				r.report(EntityBreeding, id, "stillborn calf linked to an animal")
				rec.Calf.AnimalID = ""
			}
		}
		r.state.BreedingRecords[id] = rec
	}
}

func (r *repairer) offspringIndex() {
	for _, mother := range sortedKeys(r.state.OffspringIndex) {
		if _, ok := r.state.Animals[mother]; !ok {
			r.report(EntityOffspring, mother, "mother does not exist")
			delete(r.state.OffspringIndex, mother)
			continue
		}
		var kept []models.OffspringRecord
		for _, o := range r.state.OffspringIndex[mother] {
			if o.MotherID != mother {
				r.report(EntityOffspring, o.ID, "filed under the wrong mother")
				o.MotherID = mother
			}
			if o.Outcome.IsLive() {
				if _, ok := r.state.Animals[o.Outcome.AnimalID]; !ok {
					r.report(EntityOffspring, o.ID, "live offspring without an animal")
					continue
				}
			}
			if o.BreedingID != "" {
				if _, ok := r.state.BreedingRecords[o.BreedingID]; !ok {
					r.report(EntityOffspring, o.ID, "breeding record "+o.BreedingID+" does not exist")
					o.BreedingID = ""
				}
			}
			kept = append(kept, o)
		}
		if len(kept) == 0 {
			delete(r.state.OffspringIndex, mother)
			continue
		}
		r.state.OffspringIndex[mother] = kept
	}
}

func (r *repairer) feederPrograms() {
	byAnimal := map[string][]models.FeederProgram{}
	for _, id := range sortedKeys(r.state.FeederPrograms) {
		p := r.state.FeederPrograms[id]
		if _, ok := r.state.Animals[p.AnimalID]; !ok {
			r.report(EntityFeeder, id, "animal "+p.AnimalID+" does not exist")
			delete(r.state.FeederPrograms, id)
			continue
		}
		byAnimal[p.AnimalID] = append(byAnimal[p.AnimalID], p)
	}
	for _, animalID := range sortedKeys(byAnimal) {
		programs := byAnimal[animalID]
		if len(programs) < 2 {
			continue
		}
		sort.SliceStable(programs, func(i, j int) bool {
			return programs[i].CreatedAt.Before(programs[j].CreatedAt)
		})
		for _, p := range programs[1:] {
			r.report(EntityFeeder, p.ID, "second program for animal "+animalID)
			delete(r.state.FeederPrograms, p.ID)
		}
	}
}
