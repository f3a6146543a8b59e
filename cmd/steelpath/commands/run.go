package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/steelpath/steelpath/pkg/config"
	"github.com/steelpath/steelpath/pkg/cycles"
	"github.com/steelpath/steelpath/pkg/ledger"
	"github.com/steelpath/steelpath/pkg/policy"
	"github.com/steelpath/steelpath/pkg/solver"
	"github.com/steelpath/steelpath/pkg/stores"
	"github.com/steelpath/steelpath/pkg/techref"
	"github.com/steelpath/steelpath/pkg/telemetry"
)

func newRunCommand() *cobra.Command {
	var (
		metricsAddr   string
		traceExporter string
		traceEndpoint string
		watchPolicies bool
		noStore       bool
	)

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a decarbonization scenario",
		Long: `Solve the technology choices for every plant and year of a scenario.

The scenario file defines the plant roster, cost and abatement tables,
resource constraints, and solver settings. Results are persisted to the
SQLite database unless --no-store is given.`,
		Example: `  # Run a scenario
  steelpath run scenarios/baseline.yaml

  # Run with a Prometheus endpoint
  steelpath run scenarios/baseline.yaml --metrics :9090

  # Run with stdout trace spans and hot policy reload
  steelpath run scenarios/baseline.yaml --trace stdout --watch-policies`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd.Context(), args[0], runOptions{
				metricsAddr:   metricsAddr,
				traceExporter: traceExporter,
				traceEndpoint: traceEndpoint,
				watchPolicies: watchPolicies,
				noStore:       noStore,
			})
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics", "", "listen address for the Prometheus endpoint (disabled when empty)")
	cmd.Flags().StringVar(&traceExporter, "trace", "none", "trace exporter (none, stdout, otlp)")
	cmd.Flags().StringVar(&traceEndpoint, "trace-endpoint", "localhost:4317", "OTLP trace endpoint")
	cmd.Flags().BoolVar(&watchPolicies, "watch-policies", false, "reload policy files on change during the run")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "skip persisting results to the database")

	return cmd
}

type runOptions struct {
	metricsAddr   string
	traceExporter string
	traceEndpoint string
	watchPolicies bool
	noStore       bool
}

func runScenario(ctx context.Context, scenarioPath string, opts runOptions) error {
	loaded, err := config.NewLoader().Load(scenarioPath)
	if err != nil {
		return err
	}
	sc := &loaded.Scenario

	logger := log.Logger.With().Str("scenario", sc.Name).Logger()
	logger.Info().
		Int("plants", len(sc.Data.Plants)).
		Int("year_start", sc.YearStart).
		Int("year_end", sc.YearEnd).
		Str("mode", sc.Mode).
		Msg("Scenario loaded")

	metrics, err := telemetry.NewMetrics(telemetry.MetricsConfig{
		Enabled:       opts.metricsAddr != "",
		ListenAddress: opts.metricsAddr,
		Namespace:     "steelpath",
	})
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	if err := metrics.StartServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	defer func() { _ = metrics.Close() }()

	tracer, err := telemetry.NewTracer(telemetry.TracingConfig{
		Enabled:      opts.traceExporter != "none",
		Exporter:     opts.traceExporter,
		Endpoint:     opts.traceEndpoint,
		SamplingRate: 1.0,
		Insecure:     true,
	}, "steelpath", "dev", "cli")
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracer.Shutdown(shutdownCtx)
	}()

	engine, err := policy.NewEngine(logger)
	if err != nil {
		return fmt.Errorf("failed to create policy engine: %w", err)
	}
	engine.SetScenario(policy.ScenarioInput{
		MoratoriumEnabled: sc.Moratorium,
		MoratoriumYear:    techref.TechMoratoriumYear,
	})
	if len(sc.PolicyPaths) > 0 {
		if err := engine.LoadPolicies(ctx, sc.PolicyPaths); err != nil {
			return err
		}
		if opts.watchPolicies {
			loader := policy.NewLoader(logger)
			err := loader.Watch(ctx, sc.PolicyPaths, func(policies []policy.Policy) error {
				return engine.ApplyPolicies(ctx, policies)
			})
			if err != nil {
				return fmt.Errorf("failed to watch policy paths: %w", err)
			}
			defer func() { _ = loader.StopWatching() }()
		}
	}

	roster := sc.BuildRoster()
	tracker, err := cycles.NewTracker(sc.TrackerConfig(), roster.StartYears())
	if err != nil {
		return fmt.Errorf("failed to build cycle tracker: %w", err)
	}

	led := ledger.New(logger)
	sc.LoadConstraints(led)

	sol, err := solver.New(sc.SolverOptions(), solver.Deps{
		Roster:       roster,
		Tracker:      tracker,
		Ledger:       led,
		Tables:       sc.BuildCostTables(),
		Usage:        sc.BuildUsage(),
		Availability: sc.BuildAvailability(),
		Policy:       engine,
		Logger:       logger,
		Metrics:      metrics,
		Tracer:       tracer,
	})
	if err != nil {
		return err
	}

	metrics.ObserveRunStarted()
	startedAt := time.Now()

	result, err := sol.Run(ctx)
	if err != nil {
		metrics.ObserveRunCompleted("failed")
		return err
	}
	metrics.ObserveRunCompleted("completed")

	logger.Info().
		Str("run_id", result.RunID).
		Int("decisions", len(result.Decisions)).
		Dur("elapsed", time.Since(startedAt)).
		Msg("Scenario solved")

	if !opts.noStore {
		if err := persistRun(ctx, loaded, result, startedAt); err != nil {
			return err
		}
	}

	return printRunSummary(result)
}

// runScenarioForBatch solves one scenario without metrics or tracing and
// returns its run ID. Used by the batch command.
func runScenarioForBatch(ctx context.Context, scenarioPath string) (string, error) {
	loaded, err := config.NewLoader().Load(scenarioPath)
	if err != nil {
		return "", err
	}
	sc := &loaded.Scenario
	logger := log.Logger.With().Str("scenario", sc.Name).Logger()

	engine, err := policy.NewEngine(logger)
	if err != nil {
		return "", err
	}
	engine.SetScenario(policy.ScenarioInput{
		MoratoriumEnabled: sc.Moratorium,
		MoratoriumYear:    techref.TechMoratoriumYear,
	})
	if len(sc.PolicyPaths) > 0 {
		if err := engine.LoadPolicies(ctx, sc.PolicyPaths); err != nil {
			return "", err
		}
	}

	roster := sc.BuildRoster()
	tracker, err := cycles.NewTracker(sc.TrackerConfig(), roster.StartYears())
	if err != nil {
		return "", err
	}

	led := ledger.New(logger)
	sc.LoadConstraints(led)

	sol, err := solver.New(sc.SolverOptions(), solver.Deps{
		Roster:       roster,
		Tracker:      tracker,
		Ledger:       led,
		Tables:       sc.BuildCostTables(),
		Usage:        sc.BuildUsage(),
		Availability: sc.BuildAvailability(),
		Policy:       engine,
		Logger:       logger,
	})
	if err != nil {
		return "", err
	}

	startedAt := time.Now()
	result, err := sol.Run(ctx)
	if err != nil {
		return "", err
	}
	if err := persistRun(ctx, loaded, result, startedAt); err != nil {
		return "", err
	}
	return result.RunID, nil
}

// persistRun writes the run record and its outcome to the database.
func persistRun(ctx context.Context, loaded *config.LoadedScenario, result *solver.Result, startedAt time.Time) error {
	sc := &loaded.Scenario
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	now := time.Now()
	run := &stores.Run{
		ID:        result.RunID,
		Scenario:  sc.Name,
		Mode:      sc.Mode,
		YearStart: sc.YearStart,
		YearEnd:   sc.YearEnd,
		Status:    stores.RunStatusRunning,
		StartedAt: startedAt,
		Metadata:  runMetadata(loaded),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateRun(ctx, run); err != nil {
		return err
	}
	if err := stores.SaveResult(ctx, store, result); err != nil {
		return err
	}
	return store.UpdateRunStatus(ctx, result.RunID, stores.RunStatusCompleted, nil)
}

// runMetadata encodes the scenario source and its content hash so a stored
// run can be matched back to the exact config that produced it.
func runMetadata(loaded *config.LoadedScenario) string {
	meta := map[string]string{"source": loaded.SourcePath}
	if loaded.SourcePath != "" {
		if data, err := os.ReadFile(loaded.SourcePath); err == nil {
			sum := sha256.Sum256(data)
			meta["config_sha256"] = hex.EncodeToString(sum[:])
		}
	}
	encoded, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

// openStore opens and migrates the SQLite store at the --db path.
func openStore(ctx context.Context) (*stores.SQLiteStore, error) {
	store, err := stores.NewSQLiteStore(stores.Config{Path: dbPath})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// printRunSummary prints the final-year technology mix.
func printRunSummary(result *solver.Result) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Decisions)
	}

	finalYear := 0
	for year := range result.Choices {
		if year > finalYear {
			finalYear = year
		}
	}

	mix := make(map[techref.Technology]int)
	for _, tech := range result.Choices[finalYear] {
		mix[tech]++
	}

	fmt.Printf("Run %s: %d decisions\n", result.RunID, len(result.Decisions))
	fmt.Printf("Technology mix in %d:\n", finalYear)
	for _, tech := range techref.MasterList {
		if n := mix[tech]; n > 0 {
			fmt.Printf("  %-28s %d\n", tech, n)
		}
	}
	for _, terminal := range []techref.Technology{techref.TechClosePlant, techref.TechNotOperating} {
		if n := mix[terminal]; n > 0 {
			fmt.Printf("  %-28s %d\n", terminal, n)
		}
	}
	return nil
}
