package herd

import (
	"sort"
	"strings"
	"time"

	"github.com/icsherer/Herd-Ledger/internal/domain/calc"
	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// DashboardWindowDays is the horizon of the "due soon" list.
const DashboardWindowDays = 30

// ActiveAnimals is the canonical headcount set: not deceased and not sold.
func ActiveAnimals(s models.State) []models.Animal {
	var out []models.Animal
	for _, a := range s.SortedAnimals() {
		if a.IsActive() {
			out = append(out, a.Clone())
		}
	}
	return out
}

// FindByTag looks an animal up by tag, then by name, ignoring case.
func FindByTag(s models.State, tag string) (models.Animal, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return models.Animal{}, false
	}
	animals := s.SortedAnimals()
	for _, a := range animals {
		if strings.EqualFold(a.Tag, tag) {
			return a.Clone(), true
		}
	}
	for _, a := range animals {
		if strings.EqualFold(a.Name, tag) {
			return a.Clone(), true
		}
	}
	return models.Animal{}, false
}

// DueItem is an open breeding record with its derived timing.
type DueItem struct {
	Record   models.BreedingRecord `json:"record"`
	DamName  string                `json:"damName"`
	Offset   calc.DueOffset        `json:"daysUntilDue"`
	Progress float64               `json:"progressPercent"`
	Overdue  bool                  `json:"overdue"`
}

func openItems(s models.State, now time.Time, loc *time.Location, keep func(DueItem) bool) []DueItem {
	if loc == nil {
		loc = time.UTC
	}
	today := models.DateOf(now.In(loc))
	var out []DueItem
	for _, rec := range s.SortedBreedingRecords() {
		if !rec.IsOpen() {
			continue
		}
		dam, ok := s.Animals[rec.AnimalID]
		if !ok || !dam.IsActive() {
			continue
		}
		item := DueItem{
			Record:   rec.Clone(),
			DamName:  dam.DisplayName(),
			Offset:   calc.DaysUntilDue(rec, today),
			Progress: calc.ProgressPercent(rec, now, loc),
			Overdue:  calc.IsOverdue(rec, today),
		}
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// DueWithin lists open records whose due window meets the next days days.
func DueWithin(s models.State, days int, now time.Time, loc *time.Location) []DueItem {
	return openItems(s, now, loc, func(it DueItem) bool {
		return !it.Overdue && it.Offset.Start <= days
	})
}

// Overdue lists open records whose latest due date has passed.
func Overdue(s models.State, now time.Time, loc *time.Location) []DueItem {
	return openItems(s, now, loc, func(it DueItem) bool { return it.Overdue })
}

// Expecting lists every open record with an active dam.
func Expecting(s models.State, now time.Time, loc *time.Location) []DueItem {
	return openItems(s, now, loc, func(DueItem) bool { return true })
}

// HealthStatusOf grades one animal.
func HealthStatusOf(s models.State, animalID string, today models.Date) (calc.Health, error) {
	a, ok := s.Animals[animalID]
	if !ok {
		return "", models.Missing(EntityAnimal, animalID)
	}
	return calc.HealthStatus(a.Treatments, today), nil
}

// AgeBucketOf renders one animal's age. The boolean is false when its
// date of birth is unknown.
func AgeBucketOf(s models.State, animalID string, today models.Date) (string, bool, error) {
	a, ok := s.Animals[animalID]
	if !ok {
		return "", false, models.Missing(EntityAnimal, animalID)
	}
	bucket, known := calc.AgeBucket(a.DOB, today)
	return bucket, known, nil
}

// EstimatedWeightOf projects one animal's weight to today. It returns nil
// when the weight log is too short.
func EstimatedWeightOf(s models.State, animalID string, today models.Date) (*float64, error) {
	a, ok := s.Animals[animalID]
	if !ok {
		return nil, models.Missing(EntityAnimal, animalID)
	}
	w, ok := calc.EstimateWeight(a.Weights, today)
	if !ok {
		return nil, nil
	}
	return &w, nil
}

// VaccinationDue is a booster coming up, or already late.
type VaccinationDue struct {
	AnimalID    string             `json:"animalId"`
	AnimalName  string             `json:"animalName"`
	Vaccination models.Vaccination `json:"vaccination"`
	DaysUntil   int                `json:"daysUntil"`
}

// VaccinationsDue lists boosters of active animals due within days, late
// ones included.
func VaccinationsDue(s models.State, days int, today models.Date) []VaccinationDue {
	var out []VaccinationDue
	for _, a := range ActiveAnimals(s) {
		for _, v := range a.Vaccinations {
			if v.NextDueDate == nil {
				continue
			}
			if until := today.DaysUntil(*v.NextDueDate); until <= days {
				out = append(out, VaccinationDue{
					AnimalID:    a.ID,
					AnimalName:  a.DisplayName(),
					Vaccination: v,
					DaysUntil:   until,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysUntil < out[j].DaysUntil })
	return out
}

// Dashboard is the at-a-glance summary of the farm.
type Dashboard struct {
	Date           models.Date            `json:"date"`
	Season         string                 `json:"season"`
	Moon           calc.MoonPhase         `json:"moon"`
	Tip            string                 `json:"tip"`
	HeadCount      int                    `json:"headCount"`
	StockBySpecies map[models.Species]int `json:"stockBySpecies"`
	Expecting      int                    `json:"expecting"`
	DueSoon        []DueItem              `json:"dueSoon"`
	Overdue        []DueItem              `json:"overdue"`
	OnFeed         int                    `json:"onFeed"`
	Sick           []string               `json:"sick"`
	Vaccinations   []VaccinationDue       `json:"vaccinationsDue"`
}

// BuildDashboard summarises s as of now.
func BuildDashboard(s models.State, now time.Time, loc *time.Location) Dashboard {
	if loc == nil {
		loc = time.UTC
	}
	today := models.DateOf(now.In(loc))
	active := ActiveAnimals(s)
	d := Dashboard{
		Date:           today,
		Season:         calc.Season(today),
		Moon:           calc.Moon(today),
		Tip:            calc.AlmanacTip(today),
		HeadCount:      len(active),
		StockBySpecies: map[models.Species]int{},
		Expecting:      len(Expecting(s, now, loc)),
		DueSoon:        DueWithin(s, DashboardWindowDays, now, loc),
		Overdue:        Overdue(s, now, loc),
		Vaccinations:   VaccinationsDue(s, DashboardWindowDays, today),
	}
	for _, a := range active {
		d.StockBySpecies[a.Species]++
		if calc.HealthStatus(a.Treatments, today) == calc.HealthRed {
			d.Sick = append(d.Sick, a.ID)
		}
		if _, ok := s.FeederFor(a.ID); ok {
			d.OnFeed++
		}
	}
	return d
}
