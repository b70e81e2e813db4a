package herd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

func ptr[T any](v T) *T { return &v }

func TestEnrollFeeder(t *testing.T) {
	l := newLedger(t)
	steer := l.register(models.SpeciesCattle, "Steer", "S-1")
	horse := l.register(models.SpeciesHorse, "Gelding", "H-1")

	res := l.do(EnrollFeeder{AnimalID: steer, StartDate: date("2024-09-15"), DailyFeedLbs: ptr(22.0), CostPerLb: ptr(0.12), FeedType: "Corn"})
	require.NotEmpty(t, res.Created(EntityFeeder))

	err := l.fail(EnrollFeeder{AnimalID: steer, StartDate: date("2024-10-01")})
	assert.ErrorIs(t, err, models.ErrAlreadyEnrolled)

	err = l.fail(EnrollFeeder{AnimalID: horse})
	assert.ErrorIs(t, err, models.ErrNotEligible)

	err = l.fail(EnrollFeeder{AnimalID: "ghost"})
	assert.True(t, models.IsReference(err))

	horseSpecies := models.SpeciesHorse
	gelding := "Gelding"
	err = l.fail(EditAnimal{ID: steer, Species: &horseSpecies, Sex: &gelding})
	assert.ErrorIs(t, err, models.ErrNotEligible)
}

func TestEnrollFeederDefaultsStartToToday(t *testing.T) {
	l := newLedger(t)
	steer := l.register(models.SpeciesCattle, "Steer", "S-1")

	id := l.do(EnrollFeeder{AnimalID: steer}).Created(EntityFeeder)
	assert.Equal(t, "2024-10-15", l.state.FeederPrograms[id].StartDate.String())

	err := l.fail(UpdateFeeder{ID: id, CostPerLb: ptr(-1.0)})
	assert.True(t, models.IsValidation(err))
}

func TestFeederStatus(t *testing.T) {
	l := newLedger(t)
	steer := l.register(models.SpeciesCattle, "Steer", "S-1")
	l.do(AttachWeight{AnimalID: steer, Entry: models.WeightEntry{Date: date("2024-09-15"), Weight: 800}})
	l.do(AttachWeight{AnimalID: steer, Entry: models.WeightEntry{Date: date("2024-10-05"), Weight: 860}})
	id := l.do(EnrollFeeder{
		AnimalID:         steer,
		StartDate:        date("2024-09-15"),
		TargetDaysOnFeed: ptr(120),
		DailyFeedLbs:     ptr(20.0),
		CostPerLb:        ptr(0.10),
	}).Created(EntityFeeder)

	st, err := FeederStatusOf(l.state, steer, l.env.Today())
	require.NoError(t, err)
	assert.Equal(t, id, st.Program.ID)
	assert.Equal(t, 30, st.DaysOnFeed)
	assert.InDelta(t, 60.0, st.FeedCostToDate, 1e-9)
	require.NotNil(t, st.EstimatedWeight)
	assert.InDelta(t, 890.0, *st.EstimatedWeight, 1e-9)
	require.NotNil(t, st.DaysRemaining)
	assert.Equal(t, 90, *st.DaysRemaining)
	assert.Equal(t, "2025-01-13", st.ProjectedFinish.String())

	l.do(UpdateFeeder{ID: id, DailyFeedLbs: ptr(25.0)})
	st, err = FeederStatusOf(l.state, steer, l.env.Today())
	require.NoError(t, err)
	assert.InDelta(t, 75.0, st.FeedCostToDate, 1e-9)

	l.do(RemoveFeeder{ID: id})
	_, err = FeederStatusOf(l.state, steer, l.env.Today())
	assert.True(t, models.IsReference(err))
}

func TestFeederCostZeroWhenInputsMissing(t *testing.T) {
	l := newLedger(t)
	steer := l.register(models.SpeciesCattle, "Steer", "S-1")
	l.do(EnrollFeeder{AnimalID: steer, StartDate: date("2024-10-01"), DailyFeedLbs: ptr(20.0)})

	st, err := FeederStatusOf(l.state, steer, l.env.Today())
	require.NoError(t, err)
	assert.Equal(t, 14, st.DaysOnFeed)
	assert.Equal(t, 0.0, st.FeedCostToDate)
	assert.Nil(t, st.EstimatedWeight)
	assert.Nil(t, st.DaysRemaining)
}
