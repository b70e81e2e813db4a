package main

import (
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFile  string
	logLevel string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:          "herd-ledger",
		Short:        "Livestock record and breeding ledger",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Read environment variables from this file instead of .env")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(
		serveCommand(flags),
		digestCommand(flags),
		checkCommand(flags),
	)

	return rootCmd
}
