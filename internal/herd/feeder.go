package herd

import (
	"strings"

	"github.com/icsherer/Herd-Ledger/internal/domain/calc"
	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// EnrollFeeder puts an active Cattle animal on a feeder program.
type EnrollFeeder struct {
	AnimalID         string      `json:"animalId"`
	StartDate        models.Date `json:"startDate"`
	StartingWeight   *float64    `json:"startingWeight,omitempty"`
	TargetDaysOnFeed *int        `json:"targetDaysOnFeed,omitempty"`
	DailyFeedLbs     *float64    `json:"dailyFeedLbs,omitempty"`
	FeedType         string      `json:"feedType,omitempty"`
	CostPerLb        *float64    `json:"costPerLb,omitempty"`
}

func (EnrollFeeder) Op() string { return "enroll_feeder" }

func (c EnrollFeeder) apply(t *tx) error {
	a, err := t.animal(c.AnimalID)
	if err != nil {
		return err
	}
	if a.Species != models.SpeciesCattle || !a.IsActive() {
		return models.InvalidBecause("animalId", models.ErrNotEligible)
	}
	if _, enrolled := t.state.FeederFor(a.ID); enrolled {
		return models.InvalidBecause("animalId", models.ErrAlreadyEnrolled)
	}
	if err := checkFeedInputs(c.StartingWeight, c.TargetDaysOnFeed, c.DailyFeedLbs, c.CostPerLb); err != nil {
		return err
	}
	start := c.StartDate
	if start.IsZero() {
		start = t.today
	}
	p := models.FeederProgram{
		ID:               t.env.NewID(),
		AnimalID:         a.ID,
		StartDate:        start,
		StartingWeight:   c.StartingWeight,
		TargetDaysOnFeed: c.TargetDaysOnFeed,
		DailyFeedLbs:     c.DailyFeedLbs,
		FeedType:         strings.TrimSpace(c.FeedType),
		CostPerLb:        c.CostPerLb,
		CreatedAt:        t.env.Now,
	}
	t.state.FeederPrograms[p.ID] = p.Clone()
	t.record(EntityFeeder, ActionCreate, p.ID)
	return nil
}

// UpdateFeeder patches a program. Nil fields are left unchanged.
type UpdateFeeder struct {
	ID               string       `json:"-"`
	StartDate        *models.Date `json:"startDate,omitempty"`
	StartingWeight   *float64     `json:"startingWeight,omitempty"`
	TargetDaysOnFeed *int         `json:"targetDaysOnFeed,omitempty"`
	DailyFeedLbs     *float64     `json:"dailyFeedLbs,omitempty"`
	FeedType         *string      `json:"feedType,omitempty"`
	CostPerLb        *float64     `json:"costPerLb,omitempty"`
}

func (UpdateFeeder) Op() string { return "update_feeder" }

func (c UpdateFeeder) apply(t *tx) error {
	p, ok := t.state.FeederPrograms[c.ID]
	if !ok {
		return models.Missing(EntityFeeder, c.ID)
	}
	if err := checkFeedInputs(c.StartingWeight, c.TargetDaysOnFeed, c.DailyFeedLbs, c.CostPerLb); err != nil {
		return err
	}
	if c.StartDate != nil && !c.StartDate.IsZero() {
		p.StartDate = *c.StartDate
	}
	if c.StartingWeight != nil {
		p.StartingWeight = c.StartingWeight
	}
	if c.TargetDaysOnFeed != nil {
		p.TargetDaysOnFeed = c.TargetDaysOnFeed
	}
	if c.DailyFeedLbs != nil {
		p.DailyFeedLbs = c.DailyFeedLbs
	}
	if c.FeedType != nil {
		p.FeedType = strings.TrimSpace(*c.FeedType)
	}
	if c.CostPerLb != nil {
		p.CostPerLb = c.CostPerLb
	}
	t.state.FeederPrograms[p.ID] = p.Clone()
	t.record(EntityFeeder, ActionUpdate, p.ID)
	return nil
}

// RemoveFeeder ends a program.
type RemoveFeeder struct {
	ID string `json:"-"`
}

func (RemoveFeeder) Op() string { return "remove_feeder" }

func (c RemoveFeeder) apply(t *tx) error {
	if _, ok := t.state.FeederPrograms[c.ID]; !ok {
		return models.Missing(EntityFeeder, c.ID)
	}
	delete(t.state.FeederPrograms, c.ID)
	t.record(EntityFeeder, ActionDelete, c.ID)
	return nil
}

func checkFeedInputs(startWeight *float64, target *int, lbs, cost *float64) error {
	switch {
	case startWeight != nil && *startWeight <= 0:
		return models.Invalid("startingWeight", "must be positive")
	case target != nil && *target <= 0:
		return models.Invalid("targetDaysOnFeed", "must be positive")
	case lbs != nil && *lbs < 0:
		return models.Invalid("dailyFeedLbs", "cannot be negative")
	case cost != nil && *cost < 0:
		return models.Invalid("costPerLb", "cannot be negative")
	}
	return nil
}

// FeederStatus is the derived view of a feeder program on a given day.
type FeederStatus struct {
	Program         models.FeederProgram `json:"program"`
	DaysOnFeed      int                  `json:"daysOnFeed"`
	EstimatedWeight *float64             `json:"estimatedWeight,omitempty"`
	FeedCostToDate  float64              `json:"feedCostToDate"`
	DaysRemaining   *int                 `json:"daysRemaining,omitempty"`
	ProjectedFinish *models.Date         `json:"projectedFinish,omitempty"`
}

// FeederStatusOf derives the feeder status of animalID.
func FeederStatusOf(s models.State, animalID string, today models.Date) (FeederStatus, error) {
	a, ok := s.Animals[animalID]
	if !ok {
		return FeederStatus{}, models.Missing(EntityAnimal, animalID)
	}
	p, ok := s.FeederFor(animalID)
	if !ok {
		return FeederStatus{}, models.Missing(EntityFeeder, animalID)
	}
	dof := calc.DaysOnFeed(p.StartDate, today)
	st := FeederStatus{
		Program:        p.Clone(),
		DaysOnFeed:     dof,
		FeedCostToDate: calc.FeedCost(dof, p.DailyFeedLbs, p.CostPerLb),
	}
	if w, ok := calc.EstimateWeight(a.Weights, today); ok {
		st.EstimatedWeight = &w
	}
	if p.TargetDaysOnFeed != nil {
		remaining := *p.TargetDaysOnFeed - dof
		if remaining < 0 {
			remaining = 0
		}
		st.DaysRemaining = &remaining
		st.ProjectedFinish = p.StartDate.AddDays(*p.TargetDaysOnFeed).Ptr()
	}
	return st, nil
}
