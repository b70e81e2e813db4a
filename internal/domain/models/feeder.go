package models

import "time"

// FeederProgram tracks one animal on feed.
type FeederProgram struct {
	ID               string    `bson:"id" json:"id"`
	AnimalID         string    `bson:"animalId" json:"animalId"`
	StartDate        Date      `bson:"startDate" json:"startDate"`
	StartingWeight   *float64  `bson:"startingWeight,omitempty" json:"startingWeight,omitempty"`
	TargetDaysOnFeed *int      `bson:"targetDaysOnFeed,omitempty" json:"targetDaysOnFeed,omitempty"`
	DailyFeedLbs     *float64  `bson:"dailyFeedLbs,omitempty" json:"dailyFeedLbs,omitempty"`
	FeedType         string    `bson:"feedType,omitempty" json:"feedType,omitempty"`
	CostPerLb        *float64  `bson:"costPerLb,omitempty" json:"costPerLb,omitempty"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
}

// Clone deep-copies the optional fields.
func (f FeederProgram) Clone() FeederProgram {
	out := f
	out.StartingWeight = cloneFloat(f.StartingWeight)
	out.DailyFeedLbs = cloneFloat(f.DailyFeedLbs)
	out.CostPerLb = cloneFloat(f.CostPerLb)
	if f.TargetDaysOnFeed != nil {
		v := *f.TargetDaysOnFeed
		out.TargetDaysOnFeed = &v
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
