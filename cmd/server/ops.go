package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/icsherer/Herd-Ledger/internal/herd"
	"github.com/icsherer/Herd-Ledger/internal/scheduler"
	"github.com/icsherer/Herd-Ledger/pkg/logger"
)

const opTimeout = 2 * time.Minute

// errViolations makes check exit non-zero.
var errViolations = errors.New("ledger has integrity violations")

func digestCommand(flags *globalFlags) *cobra.Command {
	var send bool

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Build today's herd digest and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(context.Background()) }()

			if err := a.openLedger(ctx, false); err != nil {
				return err
			}
			reporting, err := a.reporting(ctx)
			if err != nil {
				return err
			}

			if !send {
				text, err := reporting.GenerateDailyDigest(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}

			messaging := a.messaging(reporting)
			if messaging == nil || a.cfg.Recipient() == "" {
				return errors.New("--send needs WhatsApp credentials and WHATSAPP_MANAGER_ID or WHATSAPP_GROUP_ID")
			}
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}
			sched := scheduler.NewScheduler(a.cfg.Reporting.CronSchedule, loc, reporting, messaging, a.cfg.Recipient(), logger.Named(a.logger, "scheduler"))
			return sched.RunDigest(ctx)
		},
	}

	cmd.Flags().BoolVar(&send, "send", false, "Send the digest over WhatsApp instead of printing it")
	return cmd
}

func checkCommand(flags *globalFlags) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the stored ledger against its integrity rules",
		Long: "Loads the stored ledger and lists every integrity violation. With --repair the\n" +
			"ledger is opened non-strictly, which repairs the violations and saves the result.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(context.Background()) }()

			state, err := a.store.Load(ctx)
			if err != nil {
				return fmt.Errorf("load ledger: %w", err)
			}
			violations := herd.Verify(state.Normalize())

			out := cmd.OutOrStdout()
			for _, v := range violations {
				fmt.Fprintln(out, v.Error())
			}
			if len(violations) == 0 {
				fmt.Fprintln(out, "ledger ok")
				return nil
			}

			if !repair {
				cmd.SilenceErrors = true
				fmt.Fprintf(out, "%d violation(s) found, rerun with --repair to fix them\n", len(violations))
				return errViolations
			}

			if err := a.openLedger(ctx, false); err != nil {
				return err
			}
			a.logger.Info("ledger repaired", zap.Int("violations", len(violations)))
			fmt.Fprintf(out, "%d violation(s) repaired\n", len(violations))
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "Repair violations and save the ledger")
	return cmd
}
