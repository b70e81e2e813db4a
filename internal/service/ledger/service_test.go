package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/icsherer/Herd-Ledger/internal/domain/calc"
	"github.com/icsherer/Herd-Ledger/internal/domain/models"
	"github.com/icsherer/Herd-Ledger/internal/herd"
	"github.com/icsherer/Herd-Ledger/internal/metrics"
	"github.com/icsherer/Herd-Ledger/internal/repository/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errDiskFull = errors.New("disk full")

// flakyStore wraps a memory store and fails saves while broken is set.
type flakyStore struct {
	*memory.Store
	mu     sync.Mutex
	broken bool
}

func (f *flakyStore) Save(ctx context.Context, st models.State) error {
	f.mu.Lock()
	broken := f.broken
	f.mu.Unlock()
	if broken {
		return errDiskFull
	}
	return f.Store.Save(ctx, st)
}

func (f *flakyStore) setBroken(b bool) {
	f.mu.Lock()
	f.broken = b
	f.mu.Unlock()
}

func fixedOptions() Options {
	n := 0
	var mu sync.Mutex
	return Options{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id-%02d", n)
		},
	}
}

func openService(t *testing.T, store Store, opts Options) (*Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	svc := NewService(store, opts, m, zap.New(core))
	require.NoError(t, svc.Open(context.Background()))
	return svc, logs
}

func TestExecuteCommitsAfterSave(t *testing.T) {
	store := &flakyStore{Store: memory.NewStore(nil)}
	svc, logs := openService(t, store, fixedOptions())
	ctx := context.Background()

	res, err := svc.Execute(ctx, herd.RegisterAnimal{Species: models.SpeciesCattle, Sex: "Cow", Tag: "C-1"})
	require.NoError(t, err)
	cow := res.Created(herd.EntityAnimal)
	assert.Equal(t, "id-01", cow)
	assert.Equal(t, 1, logs.FilterMessage("command committed").Len())

	persisted, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, persisted.Animals, cow)

	store.setBroken(true)
	_, err = svc.Execute(ctx, herd.LogBreeding{AnimalID: cow, BreedingDates: herd.BreedingDates{Date: models.MustParseDate("2024-05-01").Ptr()}})
	require.ErrorIs(t, err, errDiskFull)
	assert.Empty(t, svc.BreedingRecords(cow), "failed save must not publish state")
	assert.Equal(t, 1, logs.FilterMessage("failed to persist command").Len())

	store.setBroken(false)
	_, err = svc.Execute(ctx, herd.LogBreeding{AnimalID: cow, BreedingDates: herd.BreedingDates{Date: models.MustParseDate("2024-05-01").Ptr()}})
	require.NoError(t, err)
	assert.Len(t, svc.BreedingRecords(cow), 1)
}

func TestExecuteRejectsInvalidCommands(t *testing.T) {
	store := memory.NewStore(nil)
	svc, logs := openService(t, store, fixedOptions())
	ctx := context.Background()

	_, err := svc.Execute(ctx, herd.RegisterAnimal{Species: models.SpeciesCattle, Sex: "Stallion"})
	assert.True(t, models.IsValidation(err))

	_, err = svc.Execute(ctx, herd.MarkDelivered{ID: "ghost"})
	assert.True(t, models.IsReference(err))

	assert.Equal(t, 2, logs.FilterMessage("command rejected").Len())
	assert.Equal(t, 0, store.Saves())
}

func TestExecuteBeforeOpen(t *testing.T) {
	svc := NewService(memory.NewStore(nil), Options{}, nil, nil)
	_, err := svc.Execute(context.Background(), herd.AddNote{Body: "x"})
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestSnapshotIsIsolated(t *testing.T) {
	svc, _ := openService(t, memory.NewStore(nil), fixedOptions())
	res, err := svc.Execute(context.Background(), herd.RegisterAnimal{Species: models.SpeciesSheep, Sex: "Ewe", Name: "Dolly"})
	require.NoError(t, err)
	id := res.Created(herd.EntityAnimal)

	snap := svc.Snapshot()
	a := snap.Animals[id]
	a.Name = "Changed"
	snap.Animals[id] = a
	delete(res.State.Animals, id)

	got, err := svc.Animal(id)
	require.NoError(t, err)
	assert.Equal(t, "Dolly", got.Name)
}

func brokenSeed() models.State {
	st := models.NewState()
	st.Animals["cow"] = models.Animal{ID: "cow", Species: models.SpeciesCattle, Sex: "Cow"}
	st.BreedingRecords["orphan"] = models.BreedingRecord{
		ID: "orphan", AnimalID: "gone", Mode: models.ModeSingle,
		Bred: models.SingleDay(models.MustParseDate("2024-01-01")), GestationDays: 283,
		Status: models.StatusActive,
	}
	return st
}

func TestOpenRepairsOutsideStrictMode(t *testing.T) {
	seed := brokenSeed()
	store := memory.NewStore(&seed)
	svc, logs := openService(t, store, fixedOptions())

	assert.Empty(t, svc.BreedingRecords(""))
	assert.Empty(t, svc.Verify())
	assert.Equal(t, 1, logs.FilterMessage("integrity violation").Len())
	assert.Equal(t, 1, store.Saves())
}

func TestOpenFailsInStrictMode(t *testing.T) {
	seed := brokenSeed()
	opts := fixedOptions()
	opts.Strict = true
	svc := NewService(memory.NewStore(&seed), opts, nil, nil)

	err := svc.Open(context.Background())
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestQueries(t *testing.T) {
	svc, _ := openService(t, memory.NewStore(nil), fixedOptions())
	ctx := context.Background()

	res, err := svc.Execute(ctx, herd.RegisterAnimal{Species: models.SpeciesCattle, Sex: "Cow", Tag: "C-7", DOB: models.MustParseDate("2022-10-01").Ptr()})
	require.NoError(t, err)
	cow := res.Created(herd.EntityAnimal)
	_, err = svc.Execute(ctx, herd.LogBreeding{AnimalID: cow, BreedingDates: herd.BreedingDates{Date: models.MustParseDate("2024-01-20").Ptr()}})
	require.NoError(t, err)
	_, err = svc.Execute(ctx, herd.AttachMovement{AnimalID: cow, Movement: models.Movement{PastureName: "North", DateMovedIn: models.MustParseDate("2024-10-01")}})
	require.NoError(t, err)
	_, err = svc.Execute(ctx, herd.EnrollFeeder{AnimalID: cow})
	require.NoError(t, err)

	found, ok := svc.FindByTag("c-7")
	require.True(t, ok)
	assert.Equal(t, cow, found.ID)

	// 2024-01-20 + 283 days = 2024-10-29, 14 days out.
	due := svc.DueWithin(30)
	require.Len(t, due, 1)
	assert.Equal(t, 14, due[0].Offset.Start)
	assert.Empty(t, svc.Overdue())
	assert.Len(t, svc.Expecting(), 1)

	sum, err := svc.Summary(cow)
	require.NoError(t, err)
	assert.Equal(t, "North", sum.Pasture)
	assert.Equal(t, "2 years", sum.Age)
	assert.Equal(t, calc.HealthGreen, sum.Health)
	assert.True(t, sum.OnFeed)
	assert.Len(t, sum.Breeding, 1)

	health, err := svc.HealthStatus(cow)
	require.NoError(t, err)
	assert.Equal(t, calc.HealthGreen, health)
	age, known, err := svc.AgeBucket(cow)
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, "2 years", age)
	w, err := svc.EstimatedWeight(cow)
	require.NoError(t, err)
	assert.Nil(t, w, "no weigh-ins yet")
	_, err = svc.EstimatedWeight("ghost")
	assert.True(t, models.IsReference(err))
	assert.Len(t, svc.ActiveAnimals(), 1)

	assert.Len(t, svc.FeederPrograms(), 1)
	offspring, err := svc.Offspring(cow)
	require.NoError(t, err)
	assert.Empty(t, offspring)
	_, err = svc.Offspring("ghost")
	assert.True(t, models.IsReference(err))

	d := svc.Dashboard()
	assert.Equal(t, 1, d.HeadCount)
	assert.Equal(t, 1, d.Expecting)
}

func TestConcurrentExecute(t *testing.T) {
	svc, _ := openService(t, memory.NewStore(nil), Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Execute(ctx, herd.RegisterAnimal{Species: models.SpeciesPig, Sex: "Gilt", Tag: fmt.Sprintf("P-%d", i)})
			assert.NoError(t, err)
			_ = svc.Dashboard()
		}()
	}
	wg.Wait()

	assert.Len(t, svc.Animals(), 20)
}
