package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

func TestStoreIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Animals)

	st := models.NewState()
	st.Animals["a1"] = models.Animal{ID: "a1", Species: models.SpeciesCattle, Sex: "Cow",
		Weights: []models.WeightEntry{{Date: models.MustParseDate("2024-01-01"), Weight: 900}}}
	require.NoError(t, store.Save(ctx, st))

	st.Animals["a1"].Weights[0].Weight = 1
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 900.0, loaded.Animals["a1"].Weights[0].Weight)

	loaded.Animals["a2"] = models.Animal{ID: "a2"}
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, again.Animals, 1)
	assert.Equal(t, 1, store.Saves())
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewStore(nil)
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Save(ctx, models.NewState()), context.Canceled)
}
