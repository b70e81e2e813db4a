package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icsherer/Herd-Ledger/internal/domain/calc"
	"github.com/icsherer/Herd-Ledger/internal/domain/models"
	"github.com/icsherer/Herd-Ledger/internal/herd"
	"github.com/icsherer/Herd-Ledger/internal/repository/memory"
	"github.com/icsherer/Herd-Ledger/internal/service/ledger"
	"github.com/icsherer/Herd-Ledger/pkg/clients/anthropic"
)

type stubReporting struct {
	days int
}

func (s *stubReporting) DueSummary(days int) string {
	s.days = days
	return "Nothing due within 30 days."
}

func newLedger(t *testing.T) (*ledger.Service, string) {
	t.Helper()
	svc := ledger.NewService(memory.NewStore(nil), ledger.Options{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 10, 15, 9, 0, 0, 0, time.UTC) },
	}, nil, nil)
	require.NoError(t, svc.Open(context.Background()))

	res, err := svc.Execute(context.Background(), herd.RegisterAnimal{
		Species: models.SpeciesCattle,
		Sex:     "Cow",
		Tag:     "C-12",
		Name:    "Daisy",
		DOB:     models.MustParseDate("2021-04-02").Ptr(),
	})
	require.NoError(t, err)
	return svc, res.Created(herd.EntityAnimal)
}

func TestHandleWeight(t *testing.T) {
	l, id := newLedger(t)
	svc := NewService(l, nil, nil)
	ctx := context.Background()

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/weight c-12 845"), "2217000000")
	require.NoError(t, err)
	assert.Equal(t, "Weight saved for Daisy: 845 lbs on 2024-10-15.", reply)

	_, err = svc.HandleCommand(ctx, models.ParseCommand("/weight C-12 830.5 2024-09-01"), "2217000000")
	require.NoError(t, err)

	a, err := l.Animal(id)
	require.NoError(t, err)
	require.Len(t, a.Weights, 2)
	assert.Equal(t, "2024-09-01", a.Weights[0].Date.String())
	assert.Equal(t, 845.0, a.Weights[1].Weight)

	for _, text := range []string{"/weight C-12", "/weight C-12 heavy", "/weight C-12 800 soon", "/weight C-12 -3"} {
		_, err = svc.HandleCommand(ctx, models.ParseCommand(text), "")
		assert.ErrorIs(t, err, ErrInvalidArguments, text)
	}
	_, err = svc.HandleCommand(ctx, models.ParseCommand("/weight X-1 800"), "")
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestHandleTreatMoveNote(t *testing.T) {
	l, id := newLedger(t)
	svc := NewService(l, nil, nil)
	ctx := context.Background()

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/treat Daisy illness LA-200"), "")
	require.NoError(t, err)
	assert.Equal(t, "Illness treatment logged for Daisy. Marked sick.", reply)

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/treat C-12 deworm"), "")
	require.NoError(t, err)
	assert.Equal(t, "Deworm treatment logged for Daisy.", reply)

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/move C-12 North Meadow"), "")
	require.NoError(t, err)
	assert.Equal(t, "Daisy moved to North Meadow.", reply)

	a, err := l.Animal(id)
	require.NoError(t, err)
	require.Len(t, a.Treatments, 2)
	assert.Equal(t, "LA-200", a.Treatments[0].Product)
	pasture, ok := a.CurrentPasture()
	require.True(t, ok)
	assert.Equal(t, "North Meadow", pasture.PastureName)

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("note fixed the creek fence"), "")
	require.NoError(t, err)
	assert.Equal(t, "Journal entry saved: Entry: October 15, 2024.", reply)
	notes := l.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, "fixed the creek fence", notes[0].Body)

	_, err = svc.HandleCommand(ctx, models.ParseCommand("/note"), "")
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestHandleStatus(t *testing.T) {
	l, _ := newLedger(t)
	svc := NewService(l, nil, nil)
	ctx := context.Background()

	_, err := svc.HandleCommand(ctx, models.ParseCommand("/treat C-12 illness"), "")
	require.NoError(t, err)
	_, err = svc.HandleCommand(ctx, models.ParseCommand("/move C-12 Creek"), "")
	require.NoError(t, err)

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/status C-12"), "")
	require.NoError(t, err)
	assert.Contains(t, reply, "Daisy (Cattle Cow), 3 years")
	assert.Contains(t, reply, "Health: "+string(calc.HealthRed))
	assert.Contains(t, reply, "Pasture: Creek")
}

func TestHandleDueAndHelp(t *testing.T) {
	l, _ := newLedger(t)
	rep := &stubReporting{}
	svc := NewService(l, rep, nil)
	ctx := context.Background()

	_, err := svc.HandleCommand(ctx, models.ParseCommand("/due"), "")
	require.NoError(t, err)
	assert.Equal(t, 30, rep.days)

	_, err = svc.HandleCommand(ctx, models.ParseCommand("/due 7"), "")
	require.NoError(t, err)
	assert.Equal(t, 7, rep.days)

	_, err = svc.HandleCommand(ctx, models.ParseCommand("/due week"), "")
	assert.ErrorIs(t, err, ErrInvalidArguments)

	help, err := svc.HandleCommand(ctx, models.ParseCommand("help"), "")
	require.NoError(t, err)
	assert.Contains(t, help, "/weight <tag> <lbs>")

	_, err = svc.HandleCommand(ctx, models.ParseCommand("how is the herd"), "")
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
}

func TestHandleRejectedByLedger(t *testing.T) {
	l, _ := newLedger(t)
	svc := NewService(l, nil, nil)

	// Whitespace-only pasture names are rejected by the ledger.
	_, err := svc.HandleCommand(context.Background(), models.Command{Type: models.CommandMove, Args: []string{"C-12", " "}}, "")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}

type stubForecaster struct {
	place string
	err   error
}

func (s *stubForecaster) Forecast(_ context.Context, place string) (anthropic.Forecast, error) {
	s.place = place
	if s.err != nil {
		return anthropic.Forecast{}, s.err
	}
	return anthropic.Forecast{
		Current: anthropic.Conditions{Temp: "58°F", Condition: "Overcast", Wind: "NW 9 mph", AlmanacDesc: "A grey and sober morning."},
		Days: []anthropic.ForecastDay{
			{Day: "Tue", High: "61", Low: "44", Condition: "Rain", FarmNote: "Keep livestock sheltered"},
		},
		FarmingAdvice: "Bring the calves in tonight.",
	}, nil
}

func TestHandleWeather(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	_, err := NewService(l, nil, nil).HandleCommand(ctx, models.ParseCommand("/weather Lancaster"), "")
	assert.ErrorIs(t, err, ErrUnsupportedCommand, "no forecaster configured")

	f := &stubForecaster{}
	svc := NewService(l, nil, nil).WithForecaster(f)

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/weather Lancaster PA"), "")
	require.NoError(t, err)
	assert.Equal(t, "Lancaster PA", f.place)
	assert.Contains(t, reply, "Weather for Lancaster PA: 58°F, Overcast (wind NW 9 mph)")
	assert.Contains(t, reply, "A grey and sober morning.")
	assert.Contains(t, reply, "- Tue Rain 61/44, Keep livestock sheltered")
	assert.Contains(t, reply, "Advice: Bring the calves in tonight.")
	assert.NotContains(t, reply, "Best days")

	_, err = svc.HandleCommand(ctx, models.ParseCommand("/weather"), "")
	assert.ErrorIs(t, err, ErrInvalidArguments)

	f.err = assert.AnError
	_, err = svc.HandleCommand(ctx, models.ParseCommand("forecast Lancaster"), "")
	assert.ErrorIs(t, err, ErrWeatherUnavailable)
	assert.ErrorIs(t, err, assert.AnError)
}
