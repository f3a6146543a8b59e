package solver

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/steelpath/steelpath/pkg/cycles"
	"github.com/steelpath/steelpath/pkg/ledger"
	"github.com/steelpath/steelpath/pkg/ranker"
	"github.com/steelpath/steelpath/pkg/techref"
)

func testCycleConfig() cycles.Config {
	return cycles.Config{
		CycleDurationYears: 20,
		VarianceYears:      3,
		BufferTopYears:     3,
		BufferTailYears:    8,
		ModelStartYear:     2020,
		ModelEndYear:       2050,
		Deterministic:      true,
	}
}

func testOptions(yearStart, yearEnd int) Options {
	return Options{
		YearStart: yearStart,
		YearEnd:   yearEnd,
		Mode:      ranker.ModeScaled,
		Weights:   ranker.Weights{TCO: 0.6, Emissions: 0.4},
	}
}

// newTestSolver wires a solver over a static roster with a deterministic
// cycle schedule. Plants starting in 2000 hit a main cycle in 2020 and 2040.
func newTestSolver(t *testing.T, opts Options, plants []Plant, tables *CostTableSet, usage UsageEstimator, led *ledger.Ledger) *Solver {
	t.Helper()
	roster := NewStaticRoster(plants)
	tracker, err := cycles.NewTracker(testCycleConfig(), roster.StartYears())
	if err != nil {
		t.Fatalf("Failed to create tracker: %v", err)
	}
	if led == nil {
		led = ledger.New(zerolog.Nop())
	}
	sol, err := New(opts, Deps{
		Roster:  roster,
		Tracker: tracker,
		Ledger:  led,
		Tables:  tables,
		Usage:   usage,
		Logger:  zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("Failed to create solver: %v", err)
	}
	return sol
}

func TestOptions_Validate_EndBeforeStart(t *testing.T) {
	opts := testOptions(2025, 2020)
	if err := opts.Validate(); err == nil {
		t.Error("Expected error when year end precedes year start")
	}
}

func TestOptions_Validate_UnknownMode(t *testing.T) {
	opts := testOptions(2020, 2025)
	opts.Mode = ranker.Mode("fancy")
	if err := opts.Validate(); err == nil {
		t.Error("Expected error for unknown ranking mode")
	}
}

func TestOptions_Validate_NegativeWeights(t *testing.T) {
	opts := testOptions(2020, 2025)
	opts.Weights = ranker.Weights{TCO: -1, Emissions: 0.4}
	if err := opts.Validate(); err == nil {
		t.Error("Expected error for negative weights")
	}
}

func TestNew_MissingDependencies(t *testing.T) {
	_, err := New(testOptions(2020, 2025), Deps{Logger: zerolog.Nop()})
	if err == nil {
		t.Error("Expected error when core dependencies are missing")
	}
}

func TestNew_ConstraintsRequireUsageEstimator(t *testing.T) {
	opts := testOptions(2020, 2025)
	opts.EnforceConstraints = true
	roster := NewStaticRoster(nil)
	tracker, _ := cycles.NewTracker(testCycleConfig(), nil)
	_, err := New(opts, Deps{
		Roster:  roster,
		Tracker: tracker,
		Ledger:  ledger.New(zerolog.Nop()),
		Tables:  NewCostTableSet(),
		Logger:  zerolog.Nop(),
	})
	if err == nil {
		t.Error("Expected error enforcing constraints without a usage estimator")
	}
}

func TestSolver_NonSwitchYearCarriesForward(t *testing.T) {
	plants := []Plant{{
		Name:         "Acme Steel",
		CountryCode:  "USA",
		Primary:      true,
		CapacityTpy:  1000,
		StartYear:    2000,
		BaselineTech: techref.TechAvgBFBOF,
	}}
	sol := newTestSolver(t, testOptions(2021, 2022), plants, NewCostTableSet(), nil, nil)

	result, err := sol.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for year := 2021; year <= 2022; year++ {
		tech, ok := result.TechnologyIn(year, "Acme Steel")
		if !ok {
			t.Fatalf("Expected a choice for Acme Steel in %d", year)
		}
		if tech != techref.TechAvgBFBOF {
			t.Errorf("Expected %q in %d, got %q", techref.TechAvgBFBOF, year, tech)
		}
	}
	if result.Decisions[0].Rationale != "not a switch year" {
		t.Errorf("Expected non-switch rationale, got %q", result.Decisions[0].Rationale)
	}
}

func TestSolver_MainCycleSwitchPicksRankedWinner(t *testing.T) {
	plants := []Plant{{
		Name:         "Acme Steel",
		CountryCode:  "USA",
		Primary:      true,
		CapacityTpy:  1000,
		StartYear:    2000,
		BaselineTech: techref.TechAvgBFBOF,
	}}
	tables := NewCostTableSet()
	tables.SetTCO(2020, "Acme Steel", techref.TechAvgBFBOF, techref.TechAvgBFBOF, 100)
	tables.SetAbatement(2020, "USA", techref.TechAvgBFBOF, techref.TechAvgBFBOF, 0)
	tables.SetTCO(2020, "Acme Steel", techref.TechAvgBFBOF, techref.TechBATBFBOF, 90)
	tables.SetAbatement(2020, "USA", techref.TechAvgBFBOF, techref.TechBATBFBOF, 2.4)
	tables.SetTCO(2020, "Acme Steel", techref.TechAvgBFBOF, techref.TechDRIEAF, 150)
	tables.SetAbatement(2020, "USA", techref.TechAvgBFBOF, techref.TechDRIEAF, 1.0)

	sol := newTestSolver(t, testOptions(2020, 2021), plants, tables, nil, nil)
	result, err := sol.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	tech, _ := result.TechnologyIn(2020, "Acme Steel")
	if tech != techref.TechBATBFBOF {
		t.Errorf("Expected %q in 2020, got %q", techref.TechBATBFBOF, tech)
	}
	// The committed choice becomes the next year's starting technology.
	tech, _ = result.TechnologyIn(2021, "Acme Steel")
	if tech != techref.TechBATBFBOF {
		t.Errorf("Expected %q carried into 2021, got %q", techref.TechBATBFBOF, tech)
	}
}

func TestSolver_TerminalStatePersists(t *testing.T) {
	plants := []Plant{{
		Name:         "Shuttered Works",
		CountryCode:  "DEU",
		Primary:      true,
		CapacityTpy:  500,
		StartYear:    2000,
		BaselineTech: techref.TechNotOperating,
	}}
	sol := newTestSolver(t, testOptions(2020, 2022), plants, NewCostTableSet(), nil, nil)

	result, err := sol.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for year := 2020; year <= 2022; year++ {
		tech, _ := result.TechnologyIn(year, "Shuttered Works")
		if tech != techref.TechNotOperating {
			t.Errorf("Expected %q in %d, got %q", techref.TechNotOperating, year, tech)
		}
	}
}

func TestSolver_SecondaryEAFPinned(t *testing.T) {
	plants := []Plant{{
		Name:         "Mini Mill",
		CountryCode:  "USA",
		Primary:      false,
		CapacityTpy:  300,
		StartYear:    2000,
		BaselineTech: techref.TechEAF,
	}}
	// 2020 is a main-cycle year; the pin wins over the candidate pipeline.
	sol := newTestSolver(t, testOptions(2020, 2020), plants, NewCostTableSet(), nil, nil)

	result, err := sol.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	tech, _ := result.TechnologyIn(2020, "Mini Mill")
	if tech != techref.TechEAF {
		t.Errorf("Expected pinned %q, got %q", techref.TechEAF, tech)
	}
	if result.Decisions[0].Rationale != "secondary EAF plant pinned to EAF" {
		t.Errorf("Expected pin rationale, got %q", result.Decisions[0].Rationale)
	}
}

func TestSolver_ConstraintRejectionAudited(t *testing.T) {
	plants := []Plant{{
		Name:         "Acme Steel",
		CountryCode:  "USA",
		Primary:      true,
		CapacityTpy:  1000,
		StartYear:    2000,
		BaselineTech: techref.TechAvgBFBOF,
	}}
	tables := NewCostTableSet()
	tables.SetTCO(2020, "Acme Steel", techref.TechAvgBFBOF, techref.TechAvgBFBOF, 100)
	tables.SetAbatement(2020, "USA", techref.TechAvgBFBOF, techref.TechAvgBFBOF, 0)
	// The biomass candidate would win on cost and abatement if feasible.
	tables.SetTCO(2020, "Acme Steel", techref.TechAvgBFBOF, techref.TechBATBFBOFBioPCI, 50)
	tables.SetAbatement(2020, "USA", techref.TechAvgBFBOF, techref.TechBATBFBOFBioPCI, 3.0)

	usage := &IntensityUsage{PerTon: map[techref.Technology]map[techref.ResourceCategory]float64{
		techref.TechBATBFBOFBioPCI: {techref.ResourceBiomass: 2.0},
	}}
	led := ledger.New(zerolog.Nop())
	led.LoadConstraint(techref.ResourceBiomass, ledger.CapacityCurve{2020: 100})

	opts := testOptions(2020, 2020)
	opts.EnforceConstraints = true
	sol := newTestSolver(t, opts, plants, tables, usage, led)

	result, err := sol.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	tech, _ := result.TechnologyIn(2020, "Acme Steel")
	if tech != techref.TechAvgBFBOF {
		t.Errorf("Expected constrained plant to retain %q, got %q", techref.TechAvgBFBOF, tech)
	}

	var found bool
	for _, entry := range result.MaterialAudit {
		if entry.CandidateTech == techref.TechBATBFBOFBioPCI {
			found = true
			if entry.Result != ledger.AuditFail {
				t.Errorf("Expected FAIL audit for biomass candidate, got %v", entry.Result)
			}
			if len(entry.FailedResources) != 1 || entry.FailedResources[0] != techref.ResourceBiomass {
				t.Errorf("Expected failed resources [biomass], got %v", entry.FailedResources)
			}
		}
	}
	if !found {
		t.Error("Expected an audit entry for the rejected biomass candidate")
	}
}

func TestSolver_BaselineUsageCommittedBeforeSwitchers(t *testing.T) {
	// Zulu sorts after Alpha but is a non-switcher in 2020, so its scrap
	// baseline is committed first and exhausts the pool.
	plants := []Plant{
		{
			Name:         "Alpha Works",
			CountryCode:  "USA",
			Primary:      true,
			CapacityTpy:  50,
			StartYear:    2000,
			BaselineTech: techref.TechAvgBFBOF,
		},
		{
			Name:         "Zulu Mill",
			CountryCode:  "USA",
			Primary:      true,
			CapacityTpy:  100,
			StartYear:    2005,
			BaselineTech: techref.TechEAF,
		},
	}
	tables := NewCostTableSet()
	tables.SetTCO(2020, "Alpha Works", techref.TechAvgBFBOF, techref.TechAvgBFBOF, 100)
	tables.SetAbatement(2020, "USA", techref.TechAvgBFBOF, techref.TechAvgBFBOF, 0)
	tables.SetTCO(2020, "Alpha Works", techref.TechAvgBFBOF, techref.TechEAF, 10)
	tables.SetAbatement(2020, "USA", techref.TechAvgBFBOF, techref.TechEAF, 3.0)

	usage := &IntensityUsage{PerTon: map[techref.Technology]map[techref.ResourceCategory]float64{
		techref.TechEAF: {techref.ResourceScrap: 1.0},
	}}
	led := ledger.New(zerolog.Nop())
	led.LoadConstraint(techref.ResourceScrap, ledger.CapacityCurve{2020: 100})

	opts := testOptions(2020, 2020)
	opts.EnforceConstraints = true
	sol := newTestSolver(t, opts, plants, tables, usage, led)

	result, err := sol.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	tech, _ := result.TechnologyIn(2020, "Alpha Works")
	if tech != techref.TechAvgBFBOF {
		t.Errorf("Expected Alpha Works to retain %q after scrap exhaustion, got %q", techref.TechAvgBFBOF, tech)
	}
	if got := led.Balance(techref.ResourceScrap, 2020); got != 100 {
		t.Errorf("Expected scrap balance 100 from the non-switcher baseline, got %v", got)
	}
}

func TestSolver_MoratoriumBlocksTransitionalAdoption(t *testing.T) {
	// Start year 2010 puts the main cycle in 2030, the moratorium year.
	plants := []Plant{{
		Name:         "Acme Steel",
		CountryCode:  "USA",
		Primary:      true,
		CapacityTpy:  1000,
		StartYear:    2010,
		BaselineTech: techref.TechAvgBFBOF,
	}}
	tables := NewCostTableSet()
	tables.SetTCO(2030, "Acme Steel", techref.TechAvgBFBOF, techref.TechAvgBFBOF, 100)
	tables.SetAbatement(2030, "USA", techref.TechAvgBFBOF, techref.TechAvgBFBOF, 0)
	tables.SetTCO(2030, "Acme Steel", techref.TechAvgBFBOF, techref.TechDRIEAF, 10)
	tables.SetAbatement(2030, "USA", techref.TechAvgBFBOF, techref.TechDRIEAF, 5.0)

	opts := testOptions(2030, 2030)
	opts.Moratorium = true
	sol := newTestSolver(t, opts, plants, tables, nil, nil)

	result, err := sol.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	tech, _ := result.TechnologyIn(2030, "Acme Steel")
	if tech != techref.TechAvgBFBOF {
		t.Errorf("Expected moratorium to block transitional adoption, got %q", tech)
	}

	// Without the moratorium the cheap high-abatement candidate wins.
	sol = newTestSolver(t, testOptions(2030, 2030), plants, tables, nil, nil)
	result, err = sol.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	tech, _ = result.TechnologyIn(2030, "Acme Steel")
	if tech != techref.TechDRIEAF {
		t.Errorf("Expected %q without moratorium, got %q", techref.TechDRIEAF, tech)
	}
}

func TestSolver_TransitionalSwitchRestrictedToFurnaceGroup(t *testing.T) {
	// 2025 sits in the transitional window between the 2020 and 2040
	// cycles. DRI-EAF has the best numbers but crosses furnace groups.
	plants := []Plant{{
		Name:         "Acme Steel",
		CountryCode:  "USA",
		Primary:      true,
		CapacityTpy:  1000,
		StartYear:    2000,
		BaselineTech: techref.TechAvgBFBOF,
	}}
	tables := NewCostTableSet()
	tables.SetTCO(2025, "Acme Steel", techref.TechAvgBFBOF, techref.TechAvgBFBOF, 100)
	tables.SetAbatement(2025, "USA", techref.TechAvgBFBOF, techref.TechAvgBFBOF, 0)
	tables.SetTCO(2025, "Acme Steel", techref.TechAvgBFBOF, techref.TechBATBFBOF, 90)
	tables.SetAbatement(2025, "USA", techref.TechAvgBFBOF, techref.TechBATBFBOF, 2.4)
	tables.SetTCO(2025, "Acme Steel", techref.TechAvgBFBOF, techref.TechDRIEAF, 1)
	tables.SetAbatement(2025, "USA", techref.TechAvgBFBOF, techref.TechDRIEAF, 10)

	sol := newTestSolver(t, testOptions(2025, 2025), plants, tables, nil, nil)
	result, err := sol.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	tech, _ := result.TechnologyIn(2025, "Acme Steel")
	if tech != techref.TechBATBFBOF {
		t.Errorf("Expected in-group winner %q, got %q", techref.TechBATBFBOF, tech)
	}
	if result.Decisions[0].SwitchType != cycles.SwitchTransitional {
		t.Errorf("Expected transitional switch type, got %q", result.Decisions[0].SwitchType)
	}

	// The early switch pushes the next main cycle back by the top buffer.
	want := []int{2020, 2043}
	got := result.Schedules["Acme Steel"]
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Expected shifted schedule %v, got %v", want, got)
	}
}

func TestSolver_TransitionalRetainDoesNotShiftSchedule(t *testing.T) {
	plants := []Plant{{
		Name:         "Acme Steel",
		CountryCode:  "USA",
		Primary:      true,
		CapacityTpy:  1000,
		StartYear:    2000,
		BaselineTech: techref.TechAvgBFBOF,
	}}
	// No cost data at all: the plant retains its technology without
	// consuming the transitional window.
	sol := newTestSolver(t, testOptions(2025, 2025), plants, NewCostTableSet(), nil, nil)
	result, err := sol.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	tech, _ := result.TechnologyIn(2025, "Acme Steel")
	if tech != techref.TechAvgBFBOF {
		t.Errorf("Expected retained %q, got %q", techref.TechAvgBFBOF, tech)
	}
	got := result.Schedules["Acme Steel"]
	if len(got) != 2 || got[1] != 2040 {
		t.Errorf("Expected unshifted schedule [2020 2040], got %v", got)
	}
}

func TestSolver_InvalidBaselineTechnologyFatal(t *testing.T) {
	plants := []Plant{{
		Name:         "Acme Steel",
		CountryCode:  "USA",
		Primary:      true,
		CapacityTpy:  1000,
		StartYear:    2000,
		BaselineTech: techref.Technology("Puddling"),
	}}
	sol := newTestSolver(t, testOptions(2021, 2021), plants, NewCostTableSet(), nil, nil)
	if _, err := sol.Run(context.Background()); err == nil {
		t.Error("Expected fatal error for unknown baseline technology")
	}
}

func TestSolver_PlantAppearsAtStartYear(t *testing.T) {
	plants := []Plant{{
		Name:         "Greenfield Mill",
		CountryCode:  "SWE",
		Primary:      true,
		CapacityTpy:  800,
		StartYear:    2025,
		BaselineTech: techref.TechDRIEAF,
	}}
	sol := newTestSolver(t, testOptions(2020, 2026), plants, NewCostTableSet(), nil, nil)
	result, err := sol.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, ok := result.TechnologyIn(2024, "Greenfield Mill"); ok {
		t.Error("Expected no choice before the plant's start year")
	}
	tech, ok := result.TechnologyIn(2025, "Greenfield Mill")
	if !ok {
		t.Fatal("Expected a choice in the plant's start year")
	}
	if tech != techref.TechDRIEAF {
		t.Errorf("Expected %q, got %q", techref.TechDRIEAF, tech)
	}
	if _, ok := result.Schedules["Greenfield Mill"]; !ok {
		t.Error("Expected the new plant to receive an investment schedule")
	}
}

// denyAllPolicy blocks every adoption, leaving only the grandfathered
// current technology.
type denyAllPolicy struct{}

func (denyAllPolicy) Allowed(_ context.Context, _ techref.Technology, _ int) (bool, error) {
	return false, nil
}

func TestSolver_PolicyDenialGrandfathersCurrentTech(t *testing.T) {
	plants := []Plant{{
		Name:         "Acme Steel",
		CountryCode:  "USA",
		Primary:      true,
		CapacityTpy:  1000,
		StartYear:    2000,
		BaselineTech: techref.TechAvgBFBOF,
	}}
	tables := NewCostTableSet()
	tables.SetTCO(2020, "Acme Steel", techref.TechAvgBFBOF, techref.TechAvgBFBOF, 100)
	tables.SetAbatement(2020, "USA", techref.TechAvgBFBOF, techref.TechAvgBFBOF, 0)
	tables.SetTCO(2020, "Acme Steel", techref.TechAvgBFBOF, techref.TechBATBFBOF, 10)
	tables.SetAbatement(2020, "USA", techref.TechAvgBFBOF, techref.TechBATBFBOF, 5.0)

	roster := NewStaticRoster(plants)
	tracker, err := cycles.NewTracker(testCycleConfig(), roster.StartYears())
	if err != nil {
		t.Fatalf("Failed to create tracker: %v", err)
	}
	sol, err := New(testOptions(2020, 2020), Deps{
		Roster:  roster,
		Tracker: tracker,
		Ledger:  ledger.New(zerolog.Nop()),
		Tables:  tables,
		Policy:  denyAllPolicy{},
		Logger:  zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("Failed to create solver: %v", err)
	}

	result, err := sol.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	tech, _ := result.TechnologyIn(2020, "Acme Steel")
	if tech != techref.TechAvgBFBOF {
		t.Errorf("Expected grandfathered %q under a deny-all policy, got %q", techref.TechAvgBFBOF, tech)
	}
}

func TestSolver_CandidateValuesInflateTransitionalTCO(t *testing.T) {
	plant := Plant{
		Name:         "Acme Steel",
		CountryCode:  "USA",
		Primary:      true,
		CapacityTpy:  1000,
		StartYear:    2000,
		BaselineTech: techref.TechAvgBFBOF,
	}
	tables := NewCostTableSet()
	tables.SetTCO(2025, "Acme Steel", techref.TechAvgBFBOF, techref.TechBATBFBOF, 100)
	tables.SetAbatement(2025, "USA", techref.TechAvgBFBOF, techref.TechBATBFBOF, 2.4)

	sol := newTestSolver(t, testOptions(2025, 2025), []Plant{plant}, tables, nil, nil)
	inflator := sol.tracker.TransitionalHorizonFactor()

	values := sol.candidateValues(2025, plant, techref.TechAvgBFBOF,
		[]techref.Technology{techref.TechBATBFBOF}, inflator)
	if len(values) != 1 {
		t.Fatalf("Expected 1 candidate value, got %d", len(values))
	}
	// cycle/(cycle - top - tail) = 20/9 stretches a TCO of 100 to 222.2...
	if want := 100 * (20.0 / 9.0); math.Abs(values[0].TCO-want) > 1e-9 {
		t.Errorf("Expected inflated TCO %v, got %v", want, values[0].TCO)
	}
	if values[0].Abatement != 2.4 {
		t.Errorf("Expected abatement untouched at 2.4, got %v", values[0].Abatement)
	}

	// A main-cycle evaluation passes the raw values through.
	values = sol.candidateValues(2025, plant, techref.TechAvgBFBOF,
		[]techref.Technology{techref.TechBATBFBOF}, 1.0)
	if values[0].TCO != 100 {
		t.Errorf("Expected uninflated TCO 100, got %v", values[0].TCO)
	}
}
