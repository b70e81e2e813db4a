package calc

import "github.com/icsherer/Herd-Ledger/internal/domain/models"

// HealthWindowDays is how far back treatments affect the health tier.
const HealthWindowDays = 30

// Health is the traffic-light health tier of an animal.
type Health string

const (
	HealthGreen  Health = "green"
	HealthYellow Health = "yellow"
	HealthRed    Health = "red"
)

// HealthStatus grades an animal from its recent treatments. Any treatment
// in the window is yellow; an illness in the window is red.
func HealthStatus(treatments []models.Treatment, today models.Date) Health {
	status := HealthGreen
	for _, t := range treatments {
		ago := t.Date.DaysUntil(today)
		if ago < 0 || ago > HealthWindowDays {
			continue
		}
		if t.Kind == models.TreatmentIllness {
			return HealthRed
		}
		status = HealthYellow
	}
	return status
}
