package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

func sampleState() models.State {
	d := models.MustParseDate
	st := models.NewState()
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	delivered := time.Date(2024, 2, 10, 7, 30, 0, 0, time.UTC)
	st.Animals["dam"] = models.Animal{
		ID:        "dam",
		Species:   models.SpeciesCattle,
		Sex:       "Cow",
		Tag:       "C-1",
		DOB:       d("2020-04-02").Ptr(),
		Weights:   []models.WeightEntry{{Date: d("2024-01-01"), Weight: 1150}},
		CreatedAt: created,
	}
	st.Animals["calf"] = models.Animal{ID: "calf", Species: models.SpeciesCattle, Sex: "Heifer", MotherID: "dam", CreatedAt: created}
	st.BreedingRecords["b1"] = models.BreedingRecord{
		ID:            "b1",
		AnimalID:      "dam",
		Mode:          models.ModeRange,
		Bred:          models.Window{Start: d("2023-05-01"), End: d("2023-05-20")},
		Due:           models.Window{Start: d("2024-02-08"), End: d("2024-02-27")},
		GestationDays: 283,
		Status:        models.StatusDelivered,
		DeliveredAt:   &delivered,
		Calf:          &models.CalfOutcome{Kind: models.OutcomeLive, Sex: "Heifer", BirthDate: d("2024-02-10").Ptr(), AnimalID: "calf"},
		CreatedAt:     created,
	}
	st.OffspringIndex["dam"] = []models.OffspringRecord{{
		ID: "calf", MotherID: "dam", Species: models.SpeciesCattle, BreedingID: "b1",
		Outcome: models.CalfOutcome{Kind: models.OutcomeLive, Sex: "Heifer", AnimalID: "calf"}, CreatedAt: created,
	}}
	lbs := 22.5
	st.FeederPrograms["f1"] = models.FeederProgram{ID: "f1", AnimalID: "calf", StartDate: d("2024-09-01"), DailyFeedLbs: &lbs, CreatedAt: created}
	st.Notes = []models.JournalNote{{ID: "n1", Title: "Hay", Body: "40 bales", Date: created}}
	return st
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")

	store, err := NewStore(ctx, path, "farm-a", nil)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Animals)
	assert.NotNil(t, empty.OffspringIndex)

	want := sampleState()
	require.NoError(t, store.Save(ctx, want))
	require.NoError(t, store.Save(ctx, want))
	require.NoError(t, store.Close())

	reopened, err := NewStore(ctx, path, "farm-a", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Animals["dam"].DOB.String(), got.Animals["dam"].DOB.String())
	assert.Equal(t, want.BreedingRecords["b1"].Due, got.BreedingRecords["b1"].Due)
	assert.Equal(t, models.ModeRange, got.BreedingRecords["b1"].Mode)
	assert.Equal(t, "calf", got.BreedingRecords["b1"].Calf.AnimalID)
	require.Len(t, got.OffspringIndex["dam"], 1)
	assert.Equal(t, "b1", got.OffspringIndex["dam"][0].BreedingID)
	assert.InDelta(t, 22.5, *got.FeederPrograms["f1"].DailyFeedLbs, 1e-9)
	require.Len(t, got.Notes, 1)
	assert.True(t, want.Notes[0].Date.Equal(got.Notes[0].Date))
}

func TestStoreSeparatesFarms(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	a, err := NewStore(ctx, path, "farm-a", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, a.Save(ctx, sampleState()))

	b, err := NewStore(ctx, path, "farm-b", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Animals)
}

func TestStoreSaveHonoursContext(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, filepath.Join(t.TempDir(), "ledger.db"), "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, store.Save(cancelled, sampleState()))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Animals)
}
