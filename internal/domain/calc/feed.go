package calc

import "github.com/icsherer/Herd-Ledger/internal/domain/models"

// DaysOnFeed counts whole days since start, never negative.
func DaysOnFeed(start, today models.Date) int {
	days := start.DaysUntil(today)
	if days < 0 {
		return 0
	}
	return days
}

// FeedCost is days × daily pounds × cost per pound, or zero when any input
// is missing.
func FeedCost(days int, dailyLbs, costPerLb *float64) float64 {
	if dailyLbs == nil || costPerLb == nil || days <= 0 {
		return 0
	}
	return float64(days) * *dailyLbs * *costPerLb
}
