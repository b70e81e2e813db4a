package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/icsherer/Herd-Ledger/internal/scheduler"
	"github.com/icsherer/Herd-Ledger/internal/server/handlers"
	"github.com/icsherer/Herd-Ledger/internal/server/router"
	"github.com/icsherer/Herd-Ledger/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the WhatsApp webhook and the digest scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, flags)
		},
	}
}

func serve(ctx context.Context, flags *globalFlags) error {
	a, err := newApp(ctx, flags)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(context.Background()); err != nil {
			a.logger.Error("failed to close storage", zap.Error(err))
		}
	}()

	if err := a.openLedger(ctx, a.cfg.IsDevelopment()); err != nil {
		a.logger.Error("ledger unavailable", zap.Error(err))
		return err
	}

	reporting, err := a.reporting(ctx)
	if err != nil {
		return err
	}

	deps := router.Deps{
		Ledger:   handlers.NewLedgerHandler(a.ledger, logger.Named(a.logger, "handlers.ledger")),
		Metrics:  a.metrics,
		Gatherer: a.registry,
		Logger:   logger.Named(a.logger, "router"),
	}
	if f := a.forecaster(); f != nil {
		deps.Weather = handlers.NewWeatherHandler(f, logger.Named(a.logger, "handlers.weather"))
	}
	var notifier scheduler.Notifier
	if messaging := a.messaging(reporting); messaging != nil {
		deps.Webhook = handlers.NewWebhookHandler(messaging, logger.Named(a.logger, "handlers.whatsapp"))
		notifier = messaging
	}

	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}
	sched := scheduler.NewScheduler(a.cfg.Reporting.CronSchedule, loc, reporting, notifier, a.cfg.Recipient(), logger.Named(a.logger, "scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()
	a.logger.Info("next daily digest", zap.Time("at", sched.Next()))

	srv := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      router.New(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server crashed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
