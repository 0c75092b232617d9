package main

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsort/internal/organizer"
	"github.com/nikbrunner/bmsort/internal/report"
	"github.com/nikbrunner/bmsort/internal/runctl"
	"github.com/nikbrunner/bmsort/internal/tui"
)

func newOrganizeCmd(flags *globalFlags) *cobra.Command {
	var (
		plain      bool
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Classify every bookmark and move it into a folder",
		Example: `  # Live progress view (s to stop, y to copy the log)
  bmsort organize

  # Plain output and a YAML run report
  bmsort organize --plain --report runs/latest.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sink := logFile
			if plain {
				sink = logStderr
			}
			a, err := flags.open(sink)
			if err != nil {
				return err
			}
			defer a.Close()

			var sum *organizer.Summary
			if plain {
				unsubscribe := a.org.Controller().Subscribe(plainPrinter(cmd.OutOrStdout()))
				sum, err = a.org.OrganizeAll(cmd.Context())
				unsubscribe()
			} else {
				sum, err = tui.Run(cmd.Context(), a.org, tea.WithAltScreen())
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), sum.Message)

			if reportPath != "" {
				err := report.WriteYAML(reportPath, report.Report{
					Config: report.RunConfig{
						Provider:     a.cfg.AI.Provider,
						Model:        a.cfg.AI.ModelName(),
						Storage:      a.store.Path(),
						RootFolder:   a.cfg.Organize.RootFolder,
						BatchRetries: a.cfg.Organize.BatchRetries,
					},
					Summary: sum,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", reportPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print progress as plain lines instead of the live view")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a YAML run report to this file")

	return cmd
}

// plainPrinter writes run events as one line each.
func plainPrinter(w io.Writer) runctl.Listener {
	return func(ev runctl.Event) {
		switch ev.Kind {
		case runctl.EventProgress:
			p := ev.Progress
			if p == nil {
				return
			}
			fmt.Fprintf(w, "[%3d%%] batch %d/%d  processed %d  ok %d  failed %d\n",
				p.PercentComplete, p.CurrentBatch, p.TotalBatches, p.Processed, p.SuccessCount, p.FailureCount)
		case runctl.EventLog:
			fmt.Fprintln(w, ev.Text)
		}
	}
}
