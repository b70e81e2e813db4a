package calc

import (
	"fmt"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// MonthsBetween counts whole elapsed months from start to end. A month only
// counts once the day of month has been reached.
func MonthsBetween(start, end models.Date) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// AgeBucket renders an age for display. It returns false when dob is unset.
func AgeBucket(dob *models.Date, today models.Date) (string, bool) {
	if dob == nil || dob.IsZero() {
		return "", false
	}
	months := MonthsBetween(*dob, today)
	switch {
	case months < 1:
		return "Under 1 month", true
	case months == 1:
		return "1 month", true
	case months < 12:
		return fmt.Sprintf("%d months", months), true
	case months < 24:
		return "1 year", true
	default:
		return fmt.Sprintf("%d years", months/12), true
	}
}
