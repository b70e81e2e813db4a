package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
	"github.com/icsherer/Herd-Ledger/internal/herd"
	"github.com/icsherer/Herd-Ledger/internal/service/ledger"
	"github.com/icsherer/Herd-Ledger/pkg/clients/anthropic"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// ErrUnknownTag is returned when no active animal carries the given tag.
var ErrUnknownTag = errors.New("unknown tag")

// ErrWeatherUnavailable wraps a failed forecast lookup.
var ErrWeatherUnavailable = errors.New("weather unavailable")

const defaultDueDays = 30

// Ledger is the slice of the ledger service the dispatcher writes through.
type Ledger interface {
	Execute(ctx context.Context, cmd herd.Command) (herd.Result, error)
	FindByTag(tag string) (models.Animal, bool)
	Summary(id string) (ledger.AnimalSummary, error)
	Today() models.Date
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	DueSummary(days int) string
}

// Forecaster looks up the weather for the /weather command.
type Forecaster interface {
	Forecast(ctx context.Context, place string) (anthropic.Forecast, error)
}

// Dispatcher executes parsed commands against the ledger.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	ledger     Ledger
	reporting  ReportingAdapter
	forecaster Forecaster
	logger     *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(l Ledger, reporting ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:    l,
		reporting: reporting,
		logger:    logger,
	}
}

// WithForecaster enables /weather. Without one the command is unsupported.
func (s *Service) WithForecaster(f Forecaster) *Service {
	s.forecaster = f
	return s
}

// HandleCommand turns the command into a ledger write or query and returns
// the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandWeight:
		return s.weight(ctx, cmd)
	case models.CommandTreat:
		return s.treat(ctx, cmd)
	case models.CommandMove:
		return s.move(ctx, cmd)
	case models.CommandNote:
		return s.note(ctx, cmd)
	case models.CommandDue:
		return s.due(cmd)
	case models.CommandStatus:
		return s.status(cmd)
	case models.CommandWeather:
		return s.weather(ctx, cmd)
	case models.CommandHelp:
		return HelpText(), nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) weight(ctx context.Context, cmd models.Command) (string, error) {
	if len(cmd.Args) < 2 {
		return "", usageError(models.CommandWeight)
	}
	animal, err := s.lookup(cmd.Args[0])
	if err != nil {
		return "", err
	}
	lbs, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(cmd.Args[1]), "lbs"), 64)
	if err != nil || lbs <= 0 {
		return "", usageError(models.CommandWeight)
	}
	date := s.ledger.Today()
	if len(cmd.Args) > 2 {
		if date, err = models.ParseDate(cmd.Args[2]); err != nil {
			return "", usageError(models.CommandWeight)
		}
	}

	if _, err := s.ledger.Execute(ctx, herd.AttachWeight{
		AnimalID: animal.ID,
		Entry:    models.WeightEntry{Date: date, Weight: lbs},
	}); err != nil {
		return "", err
	}
	return fmt.Sprintf("Weight saved for %s: %s lbs on %s.", animal.DisplayName(), formatWeight(lbs), date), nil
}

func (s *Service) treat(ctx context.Context, cmd models.Command) (string, error) {
	if len(cmd.Args) < 2 {
		return "", usageError(models.CommandTreat)
	}
	animal, err := s.lookup(cmd.Args[0])
	if err != nil {
		return "", err
	}
	treatment := models.Treatment{
		Date: s.ledger.Today(),
		Kind: treatmentKind(cmd.Args[1]),
	}
	if len(cmd.Args) > 2 {
		treatment.Product = strings.Join(cmd.Args[2:], " ")
	}

	if _, err := s.ledger.Execute(ctx, herd.AttachTreatment{AnimalID: animal.ID, Treatment: treatment}); err != nil {
		return "", err
	}
	message := fmt.Sprintf("%s treatment logged for %s.", treatment.Kind, animal.DisplayName())
	if treatment.Kind == models.TreatmentIllness {
		message += " Marked sick."
	}
	return message, nil
}

func (s *Service) move(ctx context.Context, cmd models.Command) (string, error) {
	if len(cmd.Args) < 2 {
		return "", usageError(models.CommandMove)
	}
	animal, err := s.lookup(cmd.Args[0])
	if err != nil {
		return "", err
	}
	movement := models.Movement{
		PastureName: strings.Join(cmd.Args[1:], " "),
		DateMovedIn: s.ledger.Today(),
	}
	if _, err := s.ledger.Execute(ctx, herd.AttachMovement{AnimalID: animal.ID, Movement: movement}); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s moved to %s.", animal.DisplayName(), movement.PastureName), nil
}

func (s *Service) note(ctx context.Context, cmd models.Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", usageError(models.CommandNote)
	}
	res, err := s.ledger.Execute(ctx, herd.AddNote{Body: strings.Join(cmd.Args, " ")})
	if err != nil {
		return "", err
	}
	for _, n := range res.State.Notes {
		if n.ID == res.Created(herd.EntityNote) {
			return fmt.Sprintf("Journal entry saved: %s.", n.Title), nil
		}
	}
	return "Journal entry saved.", nil
}

func (s *Service) due(cmd models.Command) (string, error) {
	days := defaultDueDays
	if len(cmd.Args) > 0 {
		n, err := strconv.Atoi(cmd.Args[0])
		if err != nil || n < 0 {
			return "", usageError(models.CommandDue)
		}
		days = n
	}
	if s.reporting == nil {
		return "", ErrUnsupportedCommand
	}
	return s.reporting.DueSummary(days), nil
}

func (s *Service) status(cmd models.Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", usageError(models.CommandStatus)
	}
	animal, err := s.lookup(cmd.Args[0])
	if err != nil {
		return "", err
	}
	summary, err := s.ledger.Summary(animal.ID)
	if err != nil {
		return "", err
	}
	return FormatSummary(summary), nil
}

func (s *Service) lookup(tag string) (models.Animal, error) {
	animal, ok := s.ledger.FindByTag(tag)
	if !ok {
		return models.Animal{}, fmt.Errorf("%w: %s", ErrUnknownTag, tag)
	}
	return animal, nil
}

// FormatSummary renders an animal summary as a short WhatsApp reply.
func FormatSummary(sum ledger.AnimalSummary) string {
	a := sum.Animal
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s %s)", a.DisplayName(), a.Species, sum.DisplaySex)
	if sum.Age != "" {
		fmt.Fprintf(&b, ", %s", sum.Age)
	}
	fmt.Fprintf(&b, "\nHealth: %s", sum.Health)
	if sum.EstimatedWeight != nil {
		fmt.Fprintf(&b, "\nWeight: ~%.0f lbs", *sum.EstimatedWeight)
	}
	if sum.Pasture != "" {
		fmt.Fprintf(&b, "\nPasture: %s", sum.Pasture)
	}
	if sum.OnFeed {
		b.WriteString("\nOn feed")
	}
	for _, it := range sum.Breeding {
		if it.Record.IsRange() {
			fmt.Fprintf(&b, "\nDue %s to %s", it.Record.Due.Start, it.Record.Due.End)
		} else {
			fmt.Fprintf(&b, "\nDue %s", it.Record.Due.Start)
		}
	}
	return b.String()
}

func (s *Service) weather(ctx context.Context, cmd models.Command) (string, error) {
	if s.forecaster == nil {
		return "", ErrUnsupportedCommand
	}
	if len(cmd.Args) == 0 {
		return "", usageError(models.CommandWeather)
	}
	place := strings.Join(cmd.Args, " ")
	f, err := s.forecaster.Forecast(ctx, place)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWeatherUnavailable, err)
	}
	return FormatForecast(place, f), nil
}

// FormatForecast renders a forecast as a chat reply.
func FormatForecast(place string, f anthropic.Forecast) string {
	var b strings.Builder
	c := f.Current
	fmt.Fprintf(&b, "Weather for %s: %s, %s", place, c.Temp, c.Condition)
	var extra []string
	if c.Feels != "" {
		extra = append(extra, "feels "+c.Feels)
	}
	if c.Humidity != "" {
		extra = append(extra, "humidity "+c.Humidity)
	}
	if c.Wind != "" {
		extra = append(extra, "wind "+c.Wind)
	}
	if len(extra) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(extra, ", "))
	}
	if c.AlmanacDesc != "" {
		fmt.Fprintf(&b, "\n%s", c.AlmanacDesc)
	}
	if len(f.Days) > 0 {
		b.WriteString("\nOutlook:")
		for _, d := range f.Days {
			fmt.Fprintf(&b, "\n- %s %s %s/%s", d.Day, d.Condition, d.High, d.Low)
			if d.FarmNote != "" {
				fmt.Fprintf(&b, ", %s", d.FarmNote)
			}
		}
	}
	if f.FarmingAdvice != "" {
		fmt.Fprintf(&b, "\nAdvice: %s", f.FarmingAdvice)
	}
	if f.BestDaysToWork != "" {
		fmt.Fprintf(&b, "\nBest days to work: %s", f.BestDaysToWork)
	}
	return b.String()
}

// HelpText lists every command with its usage.
func HelpText() string {
	lines := make([]string, 0, len(models.CommandUsage)+1)
	lines = append(lines, "Commands:")
	for _, u := range models.CommandUsage {
		lines = append(lines, fmt.Sprintf("- %s: %s", u.Reply.Title, u.Reply.Message))
	}
	return strings.Join(lines, "\n")
}

// Usage returns the usage line for t, or the help text when t has none.
func Usage(t models.CommandType) string {
	for _, u := range models.CommandUsage {
		if u.Type == t {
			return u.Reply.Message
		}
	}
	return HelpText()
}

func usageError(t models.CommandType) error {
	return fmt.Errorf("%w: %s", ErrInvalidArguments, Usage(t))
}

func treatmentKind(raw string) string {
	switch kind := strings.ToLower(raw); kind {
	case "illness", "sick", "ill":
		return models.TreatmentIllness
	default:
		return strings.ToUpper(kind[:1]) + kind[1:]
	}
}

func formatWeight(lbs float64) string {
	return strconv.FormatFloat(lbs, 'f', -1, 64)
}
