package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newExportCommand() *cobra.Command {
	var (
		format string
		what   string
	)

	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export the results of a persisted run",
		Long: `Export the decision log, material constraint audit, or investment cycle
schedules of a run to stdout as CSV or JSON.`,
		Example: `  # Export decisions as CSV
  steelpath export 2f1c... > decisions.csv

  # Export the constraint audit as JSON
  steelpath export 2f1c... --what audit --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runID := args[0]

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if _, err := store.GetRun(ctx, runID); err != nil {
				return err
			}

			switch what {
			case "decisions":
				rows, err := store.ListDecisions(ctx, runID)
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(rows)
				}
				w := csv.NewWriter(os.Stdout)
				if err := w.Write([]string{"year", "plant", "start_tech", "chosen_tech", "switch_type", "rationale"}); err != nil {
					return err
				}
				for _, d := range rows {
					record := []string{strconv.Itoa(d.Year), d.Plant, d.StartTech, d.ChosenTech, d.SwitchType, d.Rationale}
					if err := w.Write(record); err != nil {
						return err
					}
				}
				w.Flush()
				return w.Error()

			case "audit":
				rows, err := store.ListMaterialAudit(ctx, runID)
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(rows)
				}
				w := csv.NewWriter(os.Stdout)
				if err := w.Write([]string{"plant", "year", "start_tech", "candidate_tech", "result", "failed_resources"}); err != nil {
					return err
				}
				for _, e := range rows {
					record := []string{e.Plant, strconv.Itoa(e.Year), e.StartTech, e.CandidateTech, e.Result, e.FailedResources}
					if err := w.Write(record); err != nil {
						return err
					}
				}
				w.Flush()
				return w.Error()

			case "schedules":
				rows, err := store.ListCycleSchedules(ctx, runID)
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(rows)
				}
				w := csv.NewWriter(os.Stdout)
				if err := w.Write([]string{"plant", "years"}); err != nil {
					return err
				}
				for _, s := range rows {
					if err := w.Write([]string{s.Plant, s.Years}); err != nil {
						return err
					}
				}
				w.Flush()
				return w.Error()

			default:
				return fmt.Errorf("unknown export target: %s (want decisions, audit, or schedules)", what)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "output format (csv, json)")
	cmd.Flags().StringVar(&what, "what", "decisions", "what to export (decisions, audit, schedules)")

	return cmd
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
