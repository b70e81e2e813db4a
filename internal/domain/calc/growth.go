package calc

import (
	"sort"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// AverageDailyGain estimates pounds gained per day from the chronologically
// first and last weigh-ins. It needs two entries on different days.
func AverageDailyGain(weights []models.WeightEntry) (float64, bool) {
	first, last, ok := endpoints(weights)
	if !ok {
		return 0, false
	}
	span := first.Date.DaysUntil(last.Date)
	if span <= 0 {
		return 0, false
	}
	return (last.Weight - first.Weight) / float64(span), true
}

// EstimateWeight projects the last recorded weight forward to today using
// the average daily gain.
func EstimateWeight(weights []models.WeightEntry, today models.Date) (float64, bool) {
	adg, ok := AverageDailyGain(weights)
	if !ok {
		return 0, false
	}
	_, last, _ := endpoints(weights)
	since := last.Date.DaysUntil(today)
	if since < 0 {
		since = 0
	}
	return last.Weight + adg*float64(since), true
}

// SortWeights orders weigh-ins by date, keeping entry order for ties.
func SortWeights(weights []models.WeightEntry) {
	sort.SliceStable(weights, func(i, j int) bool {
		return weights[i].Date.Before(weights[j].Date)
	})
}

func endpoints(weights []models.WeightEntry) (models.WeightEntry, models.WeightEntry, bool) {
	if len(weights) < 2 {
		return models.WeightEntry{}, models.WeightEntry{}, false
	}
	sorted := append([]models.WeightEntry(nil), weights...)
	SortWeights(sorted)
	return sorted[0], sorted[len(sorted)-1], true
}
