package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/steelpath/steelpath/pkg/batch"
)

func newBatchCommand() *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "batch <scenario.yaml>...",
		Short: "Run several scenarios concurrently",
		Long: `Solve multiple scenario files with a bounded worker pool.

Each scenario gets its own cycle tracker, ledger, and database connection,
so runs are fully independent. Metrics endpoints and tracing are disabled
in batch mode; use 'steelpath run' for an instrumented single run.`,
		Example: `  # Run three scenarios, two at a time
  steelpath batch baseline.yaml moratorium.yaml max-abatement.yaml --parallel 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs := make([]batch.Job, len(args))
			for i, path := range args {
				jobs[i] = batch.Job{Path: path}
			}

			runner := batch.NewRunner(parallel, func(ctx context.Context, job batch.Job) (string, error) {
				return runScenarioForBatch(ctx, job.Path)
			}, log.Logger)

			summary := runner.Run(cmd.Context(), jobs)

			for _, outcome := range summary.Outcomes {
				switch outcome.Status {
				case batch.JobSucceeded:
					fmt.Printf("ok    %-40s run=%s (%s)\n", outcome.Job.Name, outcome.RunID, outcome.Duration.Round(time.Millisecond))
				default:
					fmt.Printf("%-5s %-40s %v\n", outcome.Status, outcome.Job.Name, outcome.Err)
				}
			}

			if summary.Failed > 0 || summary.Cancelled > 0 {
				return fmt.Errorf("batch %s: %d succeeded, %d failed, %d cancelled",
					summary.BatchID, summary.Succeeded, summary.Failed, summary.Cancelled)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&parallel, "parallel", 4, "maximum concurrent scenarios")

	return cmd
}
