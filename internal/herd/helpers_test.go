package herd

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

func date(s string) models.Date { return models.MustParseDate(s) }

func datePtr(s string) *models.Date { return date(s).Ptr() }

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// testEnv returns an environment with a fixed clock and sequential ids.
func testEnv(now string) Env {
	n := 0
	return Env{
		Now: at(now),
		Loc: time.UTC,
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%02d", n)
		},
	}
}

type ledger struct {
	t     *testing.T
	env   Env
	state models.State
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	return &ledger{t: t, env: testEnv("2024-10-15T12:00:00Z"), state: models.NewState()}
}

func (l *ledger) do(cmd Command) Result {
	l.t.Helper()
	res, err := Apply(l.state, cmd, l.env)
	require.NoError(l.t, err, cmd.Op())
	l.state = res.State
	return res
}

func (l *ledger) fail(cmd Command) error {
	l.t.Helper()
	before := l.state.Clone()
	_, err := Apply(l.state, cmd, l.env)
	require.Error(l.t, err, cmd.Op())
	require.Equal(l.t, before, l.state)
	return err
}

func (l *ledger) register(species models.Species, sex, tag string) string {
	l.t.Helper()
	res := l.do(RegisterAnimal{Species: species, Sex: sex, Tag: tag})
	return res.Created(EntityAnimal)
}

func (l *ledger) breed(damID, on string) string {
	l.t.Helper()
	res := l.do(LogBreeding{AnimalID: damID, BreedingDates: BreedingDates{Date: datePtr(on)}})
	return res.Created(EntityBreeding)
}

func live(sex, name string) Outcome {
	return Outcome{Kind: models.OutcomeLive, Sex: sex, Name: name}
}

func stillborn() Outcome {
	return Outcome{Kind: models.OutcomeStillborn}
}
