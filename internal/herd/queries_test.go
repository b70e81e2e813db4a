package herd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icsherer/Herd-Ledger/internal/domain/calc"
	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

func TestDueAndOverdueQueries(t *testing.T) {
	l := newLedger(t)
	late := l.register(models.SpeciesCattle, "Cow", "C-1")
	soon := l.register(models.SpeciesPig, "Sow", "P-1")
	later := l.register(models.SpeciesCattle, "Cow", "C-2")
	sold := l.register(models.SpeciesCattle, "Cow", "C-3")

	l.breed(late, "2024-01-01")
	soonRec := l.breed(soon, "2024-07-01")
	l.breed(later, "2024-06-01")
	l.breed(sold, "2024-01-05")
	l.do(MarkSold{AnimalID: sold, Sale: models.Sale{DateSold: date("2024-10-01")}})

	due := DueWithin(l.state, 30, l.env.Now, time.UTC)
	require.Len(t, due, 1)
	assert.Equal(t, soonRec, due[0].Record.ID)
	assert.Equal(t, "P-1", due[0].DamName)
	assert.Equal(t, 8, due[0].Offset.Start)

	overdue := Overdue(l.state, l.env.Now, time.UTC)
	require.Len(t, overdue, 1)
	assert.Equal(t, late, overdue[0].Record.AnimalID)
	assert.Equal(t, 100.0, overdue[0].Progress)

	assert.Len(t, Expecting(l.state, l.env.Now, time.UTC), 3)
}

func TestPerAnimalQueries(t *testing.T) {
	l := newLedger(t)
	id := l.do(RegisterAnimal{Species: models.SpeciesCattle, Sex: "Heifer", Tag: "H-9", DOB: datePtr("2024-03-01")}).Created(EntityAnimal)
	l.do(AttachTreatment{AnimalID: id, Treatment: models.Treatment{Date: date("2024-10-10"), Kind: models.TreatmentIllness}})
	l.do(AttachWeight{AnimalID: id, Entry: models.WeightEntry{Date: date("2024-09-01"), Weight: 400}})
	l.do(AttachWeight{AnimalID: id, Entry: models.WeightEntry{Date: date("2024-10-01"), Weight: 460}})
	today := l.env.Today()

	health, err := HealthStatusOf(l.state, id, today)
	require.NoError(t, err)
	assert.Equal(t, calc.HealthRed, health)

	bucket, known, err := AgeBucketOf(l.state, id, today)
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, "7 months", bucket)

	w, err := EstimatedWeightOf(l.state, id, today)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.InDelta(t, 488.0, *w, 1e-9)

	_, err = HealthStatusOf(l.state, "ghost", today)
	assert.True(t, models.IsReference(err))

	found, ok := FindByTag(l.state, "h-9")
	require.True(t, ok)
	assert.Equal(t, id, found.ID)
	_, ok = FindByTag(l.state, "nobody")
	assert.False(t, ok)
}

func TestVaccinationsDue(t *testing.T) {
	l := newLedger(t)
	id := l.register(models.SpeciesGoat, "Doe", "G-1")
	l.do(AttachVaccination{AnimalID: id, Vaccination: models.Vaccination{VaccineName: "CDT", DateGiven: date("2024-04-01"), NextDueDate: datePtr("2024-10-25")}})
	l.do(AttachVaccination{AnimalID: id, Vaccination: models.Vaccination{VaccineName: "Rabies", DateGiven: date("2023-10-01"), NextDueDate: datePtr("2024-10-01")}})
	l.do(AttachVaccination{AnimalID: id, Vaccination: models.Vaccination{VaccineName: "Annual", DateGiven: date("2024-06-01"), NextDueDate: datePtr("2025-06-01")}})

	due := VaccinationsDue(l.state, 30, l.env.Today())
	require.Len(t, due, 2)
	assert.Equal(t, "Rabies", due[0].Vaccination.VaccineName)
	assert.Equal(t, -14, due[0].DaysUntil)
	assert.Equal(t, 10, due[1].DaysUntil)
}

func TestBuildDashboard(t *testing.T) {
	l := newLedger(t)
	cow := l.register(models.SpeciesCattle, "Cow", "C-1")
	l.register(models.SpeciesCattle, "Steer", "S-1")
	l.register(models.SpeciesSheep, "Ewe", "E-1")
	gone := l.register(models.SpeciesSheep, "Ram", "R-1")
	l.do(MarkDeceased{AnimalID: gone, Death: models.Death{Date: date("2024-08-01")}})
	l.breed(cow, "2024-01-01")
	l.do(EnrollFeeder{AnimalID: cow})

	d := BuildDashboard(l.state, l.env.Now, nil)

	assert.Equal(t, "2024-10-15", d.Date.String())
	assert.Equal(t, "Autumn", d.Season)
	assert.Equal(t, 3, d.HeadCount)
	assert.Equal(t, map[models.Species]int{models.SpeciesCattle: 2, models.SpeciesSheep: 1}, d.StockBySpecies)
	assert.Equal(t, 1, d.Expecting)
	assert.Len(t, d.Overdue, 1)
	assert.Empty(t, d.DueSoon)
	assert.Equal(t, 1, d.OnFeed)
	assert.NotEmpty(t, d.Moon.Name)
	assert.Equal(t, "Harvest when the moon wanes for longest storage.", d.Tip)
}

func TestJournalNotes(t *testing.T) {
	l := newLedger(t)

	first := l.do(AddNote{Body: "Fixed the north fence"}).Created(EntityNote)
	older := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	l.do(AddNote{Title: "Hay", Body: "Bought 40 bales", Date: &older})
	l.env.Now = l.env.Now.Add(time.Hour)
	l.do(AddNote{Body: "Vet visit"})

	require.Len(t, l.state.Notes, 3)
	assert.Equal(t, "Vet visit", l.state.Notes[0].Body)
	assert.Equal(t, "Hay", l.state.Notes[2].Title)
	assert.Equal(t, "Entry: October 15, 2024", l.state.Notes[1].Title)

	assert.True(t, models.IsValidation(l.fail(AddNote{Body: "  "})))

	l.do(RemoveNote{ID: first})
	assert.Len(t, l.state.Notes, 2)
	assert.True(t, models.IsReference(l.fail(RemoveNote{ID: first})))
}
