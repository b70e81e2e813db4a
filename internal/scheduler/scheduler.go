package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

const digestTimeout = 2 * time.Minute

// DigestSource builds the daily herd digest.
type DigestSource interface {
	GenerateDailyDigest(ctx context.Context) (string, error)
}

// Notifier delivers a message to a farmhand or group.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	digest    DigestSource
	notifier  Notifier
	recipient string
	logger    *zap.Logger
}

// NewScheduler creates a scheduler that runs the digest on spec, evaluated
// in loc. notifier may be nil, in which case the digest is only logged.
func NewScheduler(spec string, loc *time.Location, digest DigestSource, notifier Notifier, recipient string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		spec:      spec,
		digest:    digest,
		notifier:  notifier,
		recipient: recipient,
		logger:    logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.sendDailyDigest); err != nil {
		return fmt.Errorf("schedule daily digest %q: %w", s.spec, err)
	}
	s.logger.Info("starting scheduler", zap.String("digest_schedule", s.spec))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Next reports when the digest runs next. It is zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunDigest builds the digest and sends it to the configured recipient.
func (s *Scheduler) RunDigest(ctx context.Context) error {
	text, err := s.digest.GenerateDailyDigest(ctx)
	if err != nil {
		return fmt.Errorf("generate daily digest: %w", err)
	}

	if s.notifier == nil || s.recipient == "" {
		s.logger.Info("daily digest generated without a recipient", zap.String("digest", text))
		return nil
	}

	req := models.OutboundMessageRequest{To: s.recipient, Message: text}
	if err := s.notifier.SendOutbound(ctx, req); err != nil {
		return fmt.Errorf("send daily digest: %w", err)
	}
	s.logger.Info("daily digest sent successfully", zap.String("to", s.recipient))
	return nil
}

func (s *Scheduler) sendDailyDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	if err := s.RunDigest(ctx); err != nil {
		s.logger.Error("daily digest failed", zap.Error(err))
	}
}
