package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "bmsort",
		Short: "Sort bookmarks into folders with a language model",
		Long: `bmsort organizes saved bookmarks into a folder hierarchy.

Bookmarks are sent to a language model in batches of five together with the
existing folder paths; each one is moved into the folder the model picks.
Runs can be stopped at any time; the batch in flight finishes first.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default ~/.config/bmsort/config.json, or $BMSORT_CONFIG)")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newOrganizeCmd(flags),
		newAddCmd(flags),
		newCheckCmd(flags),
		newImportCmd(flags),
		newExportCmd(flags),
		newServeCmd(flags),
	)

	return cmd
}
