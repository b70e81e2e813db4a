// Package calc holds the pure date and derived-state computations used by
// the ledger: due dates, gestation progress, ages, health tiers and growth.
package calc

import (
	"math"
	"time"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// DueOffset is the number of days from today to a record's due date. For
// single-date records Start and End are equal.
type DueOffset struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DueDate adds the gestation length to a breeding date.
func DueDate(bred models.Date, gestationDays int) models.Date {
	return bred.AddDays(gestationDays)
}

// DueWindow applies DueDate to both bounds of a breeding window.
func DueWindow(bred models.Window, gestationDays int) models.Window {
	return models.Window{
		Start: DueDate(bred.Start, gestationDays),
		End:   DueDate(bred.End, gestationDays),
	}
}

// DaysUntilDue returns the offset from today to the record's due window.
func DaysUntilDue(rec models.BreedingRecord, today models.Date) DueOffset {
	start := today.DaysUntil(rec.Due.Start)
	if !rec.IsRange() {
		return DueOffset{Start: start, End: start}
	}
	return DueOffset{Start: start, End: today.DaysUntil(rec.Due.End)}
}

// IsOverdue reports whether the latest possible due date has passed.
func IsOverdue(rec models.BreedingRecord, today models.Date) bool {
	off := DaysUntilDue(rec, today)
	if rec.IsRange() {
		return off.End < 0
	}
	return off.Start < 0
}

// ProgressPercent returns how far through gestation the record is, in
// [0, 100]. Ranged records are measured from the end of the exposure window,
// the latest possible conception.
func ProgressPercent(rec models.BreedingRecord, now time.Time, loc *time.Location) float64 {
	if rec.GestationDays <= 0 {
		return 0
	}
	anchor := rec.Bred.Start
	if rec.IsRange() {
		anchor = rec.Bred.End
	}
	elapsedDays := now.Sub(anchor.Midnight(loc)).Hours() / 24
	pct := elapsedDays / float64(rec.GestationDays) * 100
	return math.Min(100, math.Max(0, pct))
}
