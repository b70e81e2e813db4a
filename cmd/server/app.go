package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/icsherer/Herd-Ledger/internal/config"
	"github.com/icsherer/Herd-Ledger/internal/metrics"
	"github.com/icsherer/Herd-Ledger/internal/repository/memory"
	"github.com/icsherer/Herd-Ledger/internal/repository/mongodb"
	"github.com/icsherer/Herd-Ledger/internal/repository/sheets"
	"github.com/icsherer/Herd-Ledger/internal/repository/sqlite"
	"github.com/icsherer/Herd-Ledger/internal/service/commands"
	"github.com/icsherer/Herd-Ledger/internal/service/ledger"
	reportingsvc "github.com/icsherer/Herd-Ledger/internal/service/reporting"
	whatsappsvc "github.com/icsherer/Herd-Ledger/internal/service/whatsapp"
	"github.com/icsherer/Herd-Ledger/pkg/clients/anthropic"
	whatsappclient "github.com/icsherer/Herd-Ledger/pkg/clients/whatsapp"
	"github.com/icsherer/Herd-Ledger/pkg/logger"
)

// app holds the components shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	store   ledger.Store
	reports reportingsvc.ReportStore
	closers []func(context.Context) error

	ledger *ledger.Service
}

func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}

	baseLogger, err := logger.New(cfg.Log.Level, cfg.IsDevelopment())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(baseLogger)

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   baseLogger,
		registry: registry,
		metrics:  m,
	}
	if err := a.openStore(ctx); err != nil {
		_ = baseLogger.Sync()
		return nil, err
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Storage.Driver {
	case config.DriverMemory:
		a.logger.Warn("memory storage selected, the ledger will not survive a restart")
		a.store = memory.NewStore(nil)

	case config.DriverSQLite:
		store, err := sqlite.NewStore(ctx, a.cfg.Storage.SQLitePath, a.cfg.Farm.ID, logger.Named(a.logger, "repo.sqlite"))
		if err != nil {
			return fmt.Errorf("init sqlite store: %w", err)
		}
		a.store = store
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })

	case config.DriverMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, a.cfg.MongoDB.URI, a.cfg.MongoDB.DBName, a.cfg.Farm.ID)
		if err != nil {
			return fmt.Errorf("init mongodb repository: %w", err)
		}
		a.store = repo
		a.reports = repo
		a.closers = append(a.closers, repo.Close)

	default:
		return fmt.Errorf("unsupported storage driver %q", a.cfg.Storage.Driver)
	}

	a.logger.Info("storage ready", zap.String("driver", a.cfg.Storage.Driver), zap.String("farm", a.cfg.Farm.ID))
	return nil
}

// openLedger loads the herd. strict makes integrity violations fatal
// instead of repairing them.
func (a *app) openLedger(ctx context.Context, strict bool) error {
	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}

	a.ledger = ledger.NewService(a.store, ledger.Options{
		Strict:   strict,
		Location: loc,
	}, a.metrics, logger.Named(a.logger, "svc.ledger"))

	if err := a.ledger.Open(ctx); err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	return nil
}

func (a *app) reporting(ctx context.Context) (*reportingsvc.Service, error) {
	var sheet reportingsvc.HerdLog
	if a.cfg.SheetsEnabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, a.cfg.Sheets, logger.Named(a.logger, "repo.sheets"))
		if err != nil {
			return nil, fmt.Errorf("init sheets repository: %w", err)
		}
		sheet = sheets.NewHerdLog(repo)
	} else {
		a.logger.Info("google sheets not configured, daily reports will not be published")
	}

	// a.reports stays a nil interface unless the mongodb driver set it.
	return reportingsvc.NewService(a.ledger, a.cfg.Farm.ID, a.reports, sheet, a.metrics, logger.Named(a.logger, "svc.reporting")), nil
}

// forecaster returns nil when no Anthropic key is configured.
func (a *app) forecaster() anthropic.Forecaster {
	if a.cfg.AI.AnthropicKey == "" {
		return nil
	}
	return anthropic.NewForecaster(a.cfg.AI.AnthropicKey)
}

// messaging returns nil when WhatsApp is not configured.
func (a *app) messaging(reporting *reportingsvc.Service) *whatsappsvc.MetaWhatsAppService {
	if !a.cfg.WhatsAppEnabled() {
		a.logger.Warn("whatsapp credentials missing, chat commands and digests are disabled")
		return nil
	}

	var aiClient anthropic.Client
	if a.cfg.AI.AnthropicKey != "" {
		aiClient = anthropic.NewClient(a.cfg.AI.AnthropicKey)
		a.logger.Info("anthropic ai client enabled")
	} else {
		a.logger.Warn("anthropic api key missing, natural language processing disabled")
	}

	dispatcher := commands.NewService(a.ledger, reporting, logger.Named(a.logger, "svc.commands"))
	if f := a.forecaster(); f != nil {
		dispatcher.WithForecaster(f)
	}
	return whatsappsvc.NewMetaWhatsAppService(
		a.cfg.WhatsApp,
		whatsappclient.NewClient(a.cfg.WhatsApp),
		aiClient,
		dispatcher,
		a.metrics,
		logger.Named(a.logger, "svc.whatsapp"),
	)
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
