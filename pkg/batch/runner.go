// Package batch runs several scenarios concurrently with a bounded worker
// pool. Scenarios are independent: each job builds its own tracker, ledger,
// and store connection, so outcomes never interact.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JobStatus is the terminal state of one batch job.
type JobStatus string

const (
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Job is one scenario file to solve.
type Job struct {
	// Name labels the job in logs and the summary. Defaults to Path.
	Name string

	// Path is the scenario file.
	Path string
}

// Outcome is the result of one job.
type Outcome struct {
	Job      Job
	Status   JobStatus
	RunID    string
	Err      error
	Duration time.Duration
}

// Summary aggregates a batch execution.
type Summary struct {
	BatchID   string
	Outcomes  []Outcome
	Succeeded int
	Failed    int
	Cancelled int
	Duration  time.Duration
}

// RunFunc solves a single scenario and returns its run ID.
type RunFunc func(ctx context.Context, job Job) (string, error)

// Runner executes jobs with bounded parallelism.
type Runner struct {
	maxParallel int
	run         RunFunc
	logger      zerolog.Logger

	mu       sync.Mutex
	outcomes []Outcome
}

// NewRunner creates a batch runner. maxParallel values below one fall back
// to a small default.
func NewRunner(maxParallel int, run RunFunc, logger zerolog.Logger) *Runner {
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &Runner{
		maxParallel: maxParallel,
		run:         run,
		logger:      logger.With().Str("component", "batch-runner").Logger(),
	}
}

// Run executes all jobs and blocks until every worker finishes. Jobs not yet
// started when ctx is cancelled are recorded as cancelled.
func (r *Runner) Run(ctx context.Context, jobs []Job) *Summary {
	batchID := uuid.New().String()
	started := time.Now()

	r.mu.Lock()
	r.outcomes = make([]Outcome, 0, len(jobs))
	r.mu.Unlock()

	r.logger.Info().
		Str("batch_id", batchID).
		Int("jobs", len(jobs)).
		Int("max_parallel", r.maxParallel).
		Msg("Batch started")

	jobCh := make(chan Job)
	var wg sync.WaitGroup

	for i := 0; i < r.maxParallel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				r.runJob(ctx, batchID, job)
			}
		}()
	}

dispatch:
	for _, job := range jobs {
		if job.Name == "" {
			job.Name = job.Path
		}
		select {
		case jobCh <- job:
		case <-ctx.Done():
			r.record(Outcome{Job: job, Status: JobCancelled, Err: ctx.Err()})
			// Drain the rest as cancelled.
			continue dispatch
		}
	}
	close(jobCh)
	wg.Wait()

	summary := r.summarize(batchID, time.Since(started))

	r.logger.Info().
		Str("batch_id", batchID).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("cancelled", summary.Cancelled).
		Dur("duration", summary.Duration).
		Msg("Batch finished")

	return summary
}

// runJob executes one job and records its outcome.
func (r *Runner) runJob(ctx context.Context, batchID string, job Job) {
	logger := r.logger.With().Str("batch_id", batchID).Str("job", job.Name).Logger()
	logger.Info().Msg("Job started")

	started := time.Now()
	runID, err := r.run(ctx, job)
	elapsed := time.Since(started)

	outcome := Outcome{
		Job:      job,
		RunID:    runID,
		Err:      err,
		Duration: elapsed,
	}
	switch {
	case err == nil:
		outcome.Status = JobSucceeded
		logger.Info().Str("run_id", runID).Dur("duration", elapsed).Msg("Job succeeded")
	case ctx.Err() != nil:
		outcome.Status = JobCancelled
		logger.Warn().Dur("duration", elapsed).Msg("Job cancelled")
	default:
		outcome.Status = JobFailed
		logger.Error().Err(err).Dur("duration", elapsed).Msg("Job failed")
	}

	r.record(outcome)
}

func (r *Runner) record(outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *Runner) summarize(batchID string, elapsed time.Duration) *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := &Summary{
		BatchID:  batchID,
		Outcomes: make([]Outcome, len(r.outcomes)),
		Duration: elapsed,
	}
	copy(summary.Outcomes, r.outcomes)

	for i := range summary.Outcomes {
		switch summary.Outcomes[i].Status {
		case JobSucceeded:
			summary.Succeeded++
		case JobFailed:
			summary.Failed++
		case JobCancelled:
			summary.Cancelled++
		}
	}
	return summary
}
