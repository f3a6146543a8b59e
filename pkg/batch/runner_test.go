package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunner_Run_AllJobsSucceed(t *testing.T) {
	var calls int32
	run := func(_ context.Context, job Job) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "run-" + job.Name, nil
	}

	runner := NewRunner(2, run, zerolog.Nop())
	jobs := []Job{{Name: "a", Path: "a.yaml"}, {Name: "b", Path: "b.yaml"}, {Name: "c", Path: "c.yaml"}}
	summary := runner.Run(context.Background(), jobs)

	if summary.Succeeded != 3 {
		t.Errorf("Expected 3 succeeded, got %d", summary.Succeeded)
	}
	if summary.Failed != 0 || summary.Cancelled != 0 {
		t.Errorf("Expected no failures or cancellations, got %d/%d", summary.Failed, summary.Cancelled)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 run invocations, got %d", got)
	}
	if len(summary.Outcomes) != 3 {
		t.Errorf("Expected 3 outcomes, got %d", len(summary.Outcomes))
	}
}

func TestRunner_Run_FailureCounted(t *testing.T) {
	run := func(_ context.Context, job Job) (string, error) {
		if job.Name == "bad" {
			return "", errors.New("scenario invalid")
		}
		return "run-" + job.Name, nil
	}

	runner := NewRunner(2, run, zerolog.Nop())
	summary := runner.Run(context.Background(), []Job{
		{Name: "good", Path: "good.yaml"},
		{Name: "bad", Path: "bad.yaml"},
	})

	if summary.Succeeded != 1 {
		t.Errorf("Expected 1 succeeded, got %d", summary.Succeeded)
	}
	if summary.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", summary.Failed)
	}

	for _, o := range summary.Outcomes {
		if o.Job.Name == "bad" {
			if o.Status != JobFailed {
				t.Errorf("Expected bad job to fail, got %q", o.Status)
			}
			if o.Err == nil {
				t.Error("Expected failed outcome to carry the error")
			}
		}
	}
}

func TestRunner_Run_ParallelismBounded(t *testing.T) {
	var mu sync.Mutex
	current, peak := 0, 0

	run := func(_ context.Context, _ Job) (string, error) {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
		return "ok", nil
	}

	runner := NewRunner(2, run, zerolog.Nop())
	var jobs []Job
	for i := 0; i < 6; i++ {
		jobs = append(jobs, Job{Name: fmt.Sprintf("job-%d", i), Path: "x.yaml"})
	}
	summary := runner.Run(context.Background(), jobs)

	if summary.Succeeded != 6 {
		t.Errorf("Expected 6 succeeded, got %d", summary.Succeeded)
	}
	mu.Lock()
	defer mu.Unlock()
	if peak > 2 {
		t.Errorf("Expected at most 2 concurrent jobs, observed %d", peak)
	}
}

func TestRunner_Run_CancelledJobsRecorded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	var once sync.Once
	run := func(ctx context.Context, _ Job) (string, error) {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return "", ctx.Err()
	}

	runner := NewRunner(1, run, zerolog.Nop())
	jobs := []Job{
		{Name: "running", Path: "a.yaml"},
		{Name: "queued", Path: "b.yaml"},
	}

	go func() {
		<-started
		cancel()
	}()
	summary := runner.Run(ctx, jobs)

	if summary.Cancelled != 2 {
		t.Errorf("Expected 2 cancelled jobs, got %d", summary.Cancelled)
	}
	if summary.Succeeded != 0 {
		t.Errorf("Expected no successes, got %d", summary.Succeeded)
	}
}

func TestRunner_Run_DefaultsJobName(t *testing.T) {
	run := func(_ context.Context, job Job) (string, error) {
		return "run-" + job.Name, nil
	}
	runner := NewRunner(1, run, zerolog.Nop())
	summary := runner.Run(context.Background(), []Job{{Path: "scenario.yaml"}})

	if len(summary.Outcomes) != 1 {
		t.Fatalf("Expected 1 outcome, got %d", len(summary.Outcomes))
	}
	if summary.Outcomes[0].Job.Name != "scenario.yaml" {
		t.Errorf("Expected job name to default to the path, got %q", summary.Outcomes[0].Job.Name)
	}
}

func TestNewRunner_DefaultParallelism(t *testing.T) {
	runner := NewRunner(0, func(_ context.Context, _ Job) (string, error) { return "", nil }, zerolog.Nop())
	if runner.maxParallel != 4 {
		t.Errorf("Expected default parallelism 4, got %d", runner.maxParallel)
	}
}

func TestRunner_Run_EmptyJobList(t *testing.T) {
	runner := NewRunner(2, func(_ context.Context, _ Job) (string, error) { return "", nil }, zerolog.Nop())
	summary := runner.Run(context.Background(), nil)
	if len(summary.Outcomes) != 0 {
		t.Errorf("Expected no outcomes for empty batch, got %d", len(summary.Outcomes))
	}
	if summary.BatchID == "" {
		t.Error("Expected a batch ID even for an empty batch")
	}
}
