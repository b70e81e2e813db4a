package sheets

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// HerdLogRange is where daily herd reports are appended, one row per day.
const HerdLogRange = "Herd!A:L"

// herdLogDataRange skips the header row.
const herdLogDataRange = "Herd!A2:L"

// HerdLogHeader names the columns written by ReportRow.
var HerdLogHeader = []interface{}{
	"Date", "Farm", "Head count", "Expecting", "Due soon", "Overdue",
	"On feed", "Sick", "Vaccinations due", "Season", "Moon", "Stock",
}

// HerdLog appends daily herd reports to a sheet and reads them back.
type HerdLog struct {
	repo Repository
}

// NewHerdLog wraps repo.
func NewHerdLog(repo Repository) *HerdLog {
	return &HerdLog{repo: repo}
}

// Append writes report as a new row.
func (l *HerdLog) Append(ctx context.Context, report models.HerdReport) error {
	return l.repo.WriteRow(ctx, HerdLogRange, ReportRow(report))
}

// Latest returns the most recent report for farmID dated strictly earlier
// than before. Rows that do not parse are skipped.
func (l *HerdLog) Latest(ctx context.Context, farmID string, before models.Date) (models.HerdReport, bool, error) {
	rows, err := l.repo.ReadRange(ctx, herdLogDataRange)
	if err != nil {
		return models.HerdReport{}, false, fmt.Errorf("load herd log: %w", err)
	}

	var (
		best  models.HerdReport
		found bool
	)
	for _, row := range rows {
		report, err := ParseReportRow(row)
		if err != nil || report.FarmID != farmID || !report.Date.Before(before) {
			continue
		}
		if !found || report.Date.After(best.Date) {
			best, found = report, true
		}
	}
	return best, found, nil
}

// ReportRow renders report in HerdLogHeader order. Stock is written as
// "Species=N" pairs sorted by species.
func ReportRow(r models.HerdReport) []interface{} {
	species := make([]string, 0, len(r.StockBySpecies))
	for s := range r.StockBySpecies {
		species = append(species, s)
	}
	sort.Strings(species)
	stock := make([]string, 0, len(species))
	for _, s := range species {
		stock = append(stock, fmt.Sprintf("%s=%d", s, r.StockBySpecies[s]))
	}

	return []interface{}{
		r.Date.String(), r.FarmID, r.HeadCount, r.Expecting, r.DueSoon, r.Overdue,
		r.OnFeed, r.Sick, r.VaccinationsDue, r.Season, r.MoonPhase, strings.Join(stock, "; "),
	}
}

// ParseReportRow reads a row written by ReportRow. Sheets may hand numbers
// back as strings or float64, so cells are parsed from their printed form.
func ParseReportRow(row []interface{}) (models.HerdReport, error) {
	if len(row) < 9 {
		return models.HerdReport{}, fmt.Errorf("short row: %d cells", len(row))
	}
	date, err := models.ParseDate(fmt.Sprint(row[0]))
	if err != nil {
		return models.HerdReport{}, err
	}
	r := models.HerdReport{Date: date, FarmID: fmt.Sprint(row[1])}

	ints := []*int{&r.HeadCount, &r.Expecting, &r.DueSoon, &r.Overdue, &r.OnFeed, &r.Sick, &r.VaccinationsDue}
	for i, dst := range ints {
		n, err := parseInt(row[2+i])
		if err != nil {
			return models.HerdReport{}, fmt.Errorf("column %d: %w", 3+i, err)
		}
		*dst = n
	}
	if len(row) > 9 {
		r.Season = fmt.Sprint(row[9])
	}
	if len(row) > 10 {
		r.MoonPhase = fmt.Sprint(row[10])
	}
	if len(row) > 11 {
		r.StockBySpecies = parseStock(fmt.Sprint(row[11]))
	}
	return r, nil
}

func parseStock(cell string) map[string]int {
	out := map[string]int{}
	for _, pair := range strings.Split(cell, ";") {
		name, count, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(count); err == nil {
			out[name] = n
		}
	}
	return out
}

func parseInt(value interface{}) (int, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	if n, err := strconv.Atoi(str); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
