package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
	"github.com/icsherer/Herd-Ledger/internal/herd"
	"github.com/icsherer/Herd-Ledger/internal/metrics"
)

// Report sinks, used as metric labels.
const (
	SinkMongoDB = "mongodb"
	SinkSheets  = "sheets"
)

// LedgerReader is the read side of the ledger the digest needs.
type LedgerReader interface {
	Dashboard() herd.Dashboard
	DueWithin(days int) []herd.DueItem
	Overdue() []herd.DueItem
}

// ReportStore keeps the daily report history.
type ReportStore interface {
	SaveDailyReport(ctx context.Context, report models.HerdReport) error
}

// HerdLog is the spreadsheet log of daily reports.
type HerdLog interface {
	Append(ctx context.Context, report models.HerdReport) error
	Latest(ctx context.Context, farmID string, before models.Date) (models.HerdReport, bool, error)
}

// Service builds the daily herd digest and records it to the optional sinks.
type Service struct {
	ledger  LedgerReader
	farmID  string
	store   ReportStore
	sheet   HerdLog
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance. store and sheet may be nil.
func NewService(ledger LedgerReader, farmID string, store ReportStore, sheet HerdLog, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:  ledger,
		farmID:  farmID,
		store:   store,
		sheet:   sheet,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// BuildReport snapshots the dashboard as a HerdReport.
func (s *Service) BuildReport() models.HerdReport {
	return ReportFromDashboard(s.farmID, s.ledger.Dashboard(), s.now())
}

// ReportFromDashboard flattens d into the stored report shape.
func ReportFromDashboard(farmID string, d herd.Dashboard, createdAt time.Time) models.HerdReport {
	stock := make(map[string]int, len(d.StockBySpecies))
	for species, n := range d.StockBySpecies {
		stock[string(species)] = n
	}
	return models.HerdReport{
		FarmID:          farmID,
		Date:            d.Date,
		HeadCount:       d.HeadCount,
		StockBySpecies:  stock,
		Expecting:       d.Expecting,
		DueSoon:         len(d.DueSoon),
		Overdue:         len(d.Overdue),
		OnFeed:          d.OnFeed,
		Sick:            len(d.Sick),
		VaccinationsDue: len(d.Vaccinations),
		Season:          d.Season,
		MoonPhase:       d.Moon.Name,
		CreatedAt:       createdAt.UTC(),
	}
}

// GenerateDailyDigest builds today's report, records it to every configured
// sink and returns the message text. Sink failures are logged and counted
// but never block the digest.
func (s *Service) GenerateDailyDigest(ctx context.Context) (string, error) {
	d := s.ledger.Dashboard()
	report := ReportFromDashboard(s.farmID, d, s.now())

	var previous *models.HerdReport
	if s.sheet != nil {
		prev, ok, err := s.sheet.Latest(ctx, s.farmID, report.Date)
		switch {
		case err != nil:
			s.logger.Warn("failed to read previous report", zap.Error(err))
		case ok:
			previous = &prev
		}
	}

	if s.store != nil {
		s.record(SinkMongoDB, s.store.SaveDailyReport(ctx, report))
	}
	if s.sheet != nil {
		s.record(SinkSheets, s.sheet.Append(ctx, report))
	}

	s.logger.Info("daily digest generated",
		zap.String("date", report.Date.String()),
		zap.Int("head_count", report.HeadCount),
		zap.Int("overdue", report.Overdue),
	)
	return FormatDigest(d, previous), nil
}

func (s *Service) record(sink string, err error) {
	if err != nil {
		s.metrics.RecordReport(sink, metrics.StatusError)
		s.logger.Error("failed to store daily report", zap.String("sink", sink), zap.Error(err))
		return
	}
	s.metrics.RecordReport(sink, metrics.StatusSent)
}

// DueSummary lists dams due within days plus every overdue dam.
func (s *Service) DueSummary(days int) string {
	return FormatDue(s.ledger.DueWithin(days), s.ledger.Overdue(), days)
}

// FormatDigest renders the dashboard as a WhatsApp message. previous, when
// set, adds the head count change since that report.
func FormatDigest(d herd.Dashboard, previous *models.HerdReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Herd digest %s (%s, %s)\n", d.Date, d.Season, d.Moon.Name)
	fmt.Fprintf(&b, "Head count: %d", d.HeadCount)
	if previous != nil {
		fmt.Fprintf(&b, " (%+d since %s)", d.HeadCount-previous.HeadCount, previous.Date)
	}
	b.WriteString("\n")

	if len(d.StockBySpecies) > 0 {
		species := make([]string, 0, len(d.StockBySpecies))
		for sp := range d.StockBySpecies {
			species = append(species, string(sp))
		}
		sort.Strings(species)
		parts := make([]string, 0, len(species))
		for _, sp := range species {
			parts = append(parts, fmt.Sprintf("%s %d", sp, d.StockBySpecies[models.Species(sp)]))
		}
		fmt.Fprintf(&b, "Stock: %s\n", strings.Join(parts, ", "))
	}

	fmt.Fprintf(&b, "Expecting: %d\n", d.Expecting)
	b.WriteString(FormatDue(d.DueSoon, d.Overdue, herd.DashboardWindowDays))
	fmt.Fprintf(&b, "\nOn feed: %d\nSick: %d", d.OnFeed, len(d.Sick))

	if len(d.Vaccinations) > 0 {
		b.WriteString("\nVaccinations due:")
		for _, v := range d.Vaccinations {
			fmt.Fprintf(&b, "\n- %s %s %s", v.AnimalName, v.Vaccination.VaccineName, relativeDays(v.DaysUntil))
		}
	}
	if d.Tip != "" {
		fmt.Fprintf(&b, "\nAlmanac: %s", d.Tip)
	}
	return b.String()
}

// FormatDue renders the due and overdue lists.
func FormatDue(due, overdue []herd.DueItem, days int) string {
	var b strings.Builder
	if len(due) == 0 {
		fmt.Fprintf(&b, "Nothing due within %d days.", days)
	} else {
		fmt.Fprintf(&b, "Due within %d days:", days)
		for _, it := range due {
			fmt.Fprintf(&b, "\n- %s %s", it.DamName, dueWhen(it))
		}
	}
	if len(overdue) > 0 {
		b.WriteString("\nOverdue:")
		for _, it := range overdue {
			fmt.Fprintf(&b, "\n- %s %d days past due (%s)", it.DamName, -it.Offset.End, it.Record.Due.End)
		}
	}
	return b.String()
}

func dueWhen(it herd.DueItem) string {
	if it.Record.IsRange() && it.Offset.Start != it.Offset.End {
		return fmt.Sprintf("in %d-%d days (%s to %s)", max(it.Offset.Start, 0), it.Offset.End, it.Record.Due.Start, it.Record.Due.End)
	}
	return fmt.Sprintf("%s (%s)", relativeDays(it.Offset.Start), it.Record.Due.Start)
}

func relativeDays(n int) string {
	switch {
	case n == 0:
		return "today"
	case n == 1:
		return "tomorrow"
	case n < 0:
		return fmt.Sprintf("%d days late", -n)
	default:
		return fmt.Sprintf("in %d days", n)
	}
}
