package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/steelpath/steelpath/pkg/techref"
)

const minimalScenario = `
name: test-scenario
data:
  plants:
    - name: Acme Steel
      country_code: USA
      capacity_tpy: 1000
      start_year: 2000
      baseline_tech: Avg BF-BOF
`

func TestLoader_Parse_AppliesDefaults(t *testing.T) {
	sc, err := NewLoader().Parse([]byte(minimalScenario))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if sc.YearStart != techref.ModelYearStart {
		t.Errorf("Expected default year start %d, got %d", techref.ModelYearStart, sc.YearStart)
	}
	if sc.YearEnd != techref.ModelYearEnd {
		t.Errorf("Expected default year end %d, got %d", techref.ModelYearEnd, sc.YearEnd)
	}
	if sc.Mode != "scaled" {
		t.Errorf("Expected default mode scaled, got %q", sc.Mode)
	}
	if sc.Cycle.DurationYears != techref.InvestmentCycleDurationYears {
		t.Errorf("Expected default cycle duration %d, got %d",
			techref.InvestmentCycleDurationYears, sc.Cycle.DurationYears)
	}
	if sc.Weights == nil || sc.Weights.TCO != 0.6 || sc.Weights.Emissions != 0.4 {
		t.Errorf("Expected balanced default weights, got %+v", sc.Weights)
	}
}

func TestLoader_Parse_PresetResolution(t *testing.T) {
	doc := minimalScenario + "preset: lowest_cost\n"
	sc, err := NewLoader().Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if sc.Weights == nil || sc.Weights.TCO != 1.0 || sc.Weights.Emissions != 0.0 {
		t.Errorf("Expected lowest_cost weights, got %+v", sc.Weights)
	}
}

func TestLoader_Parse_ExplicitWeightsOverridePreset(t *testing.T) {
	doc := minimalScenario + `preset: lowest_cost
weights:
  tco: 0.3
  emissions: 0.7
`
	sc, err := NewLoader().Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if sc.Weights.TCO != 0.3 || sc.Weights.Emissions != 0.7 {
		t.Errorf("Expected explicit weights to win, got %+v", sc.Weights)
	}
}

func TestLoader_Parse_RejectsUnknownFields(t *testing.T) {
	doc := minimalScenario + "no_such_field: true\n"
	if _, err := NewLoader().Parse([]byte(doc)); err == nil {
		t.Error("Expected error for unknown field")
	}
}

func TestLoader_Parse_RejectsMissingName(t *testing.T) {
	doc := `
data:
  plants:
    - name: Acme Steel
      country_code: USA
      capacity_tpy: 1000
      start_year: 2000
      baseline_tech: Avg BF-BOF
`
	if _, err := NewLoader().Parse([]byte(doc)); err == nil {
		t.Error("Expected error for missing scenario name")
	}
}

func TestLoader_Parse_RejectsInvalidMode(t *testing.T) {
	doc := minimalScenario + "mode: fancy\n"
	if _, err := NewLoader().Parse([]byte(doc)); err == nil {
		t.Error("Expected error for unknown ranking mode")
	}
}

func TestLoader_Parse_RejectsDuplicatePlants(t *testing.T) {
	doc := `
name: dupes
data:
  plants:
    - name: Acme Steel
      country_code: USA
      capacity_tpy: 1000
      start_year: 2000
      baseline_tech: Avg BF-BOF
    - name: Acme Steel
      country_code: DEU
      capacity_tpy: 500
      start_year: 2005
      baseline_tech: EAF
`
	if _, err := NewLoader().Parse([]byte(doc)); err == nil {
		t.Error("Expected error for duplicate plant names")
	}
}

func TestLoader_Parse_RejectsUnknownBaselineTech(t *testing.T) {
	doc := `
name: bad-tech
data:
  plants:
    - name: Acme Steel
      country_code: USA
      capacity_tpy: 1000
      start_year: 2000
      baseline_tech: Puddling
`
	if _, err := NewLoader().Parse([]byte(doc)); err == nil {
		t.Error("Expected error for unknown baseline technology")
	}
}

func TestLoader_Parse_AcceptsTerminalBaseline(t *testing.T) {
	doc := `
name: closed-plant
data:
  plants:
    - name: Shuttered Works
      country_code: DEU
      capacity_tpy: 500
      start_year: 2000
      baseline_tech: Not operating
`
	if _, err := NewLoader().Parse([]byte(doc)); err != nil {
		t.Errorf("Expected terminal baseline to be accepted, got %v", err)
	}
}

func TestLoader_Parse_RejectsUnknownConstraintResource(t *testing.T) {
	doc := minimalScenario + `  constraints:
    unobtanium:
      2025: 100
`
	if _, err := NewLoader().Parse([]byte(doc)); err == nil {
		t.Error("Expected error for unknown constraint resource")
	}
}

func TestLoader_Parse_RejectsZeroWeights(t *testing.T) {
	doc := minimalScenario + `weights:
  tco: 0
  emissions: 0
`
	if _, err := NewLoader().Parse([]byte(doc)); err == nil {
		t.Error("Expected error when both weights are zero")
	}
}

func TestLoader_Load_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(minimalScenario), 0o644); err != nil {
		t.Fatalf("Failed to write scenario file: %v", err)
	}

	loaded, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Scenario.Name != "test-scenario" {
		t.Errorf("Expected scenario name test-scenario, got %q", loaded.Scenario.Name)
	}
	if loaded.SourcePath != path {
		t.Errorf("Expected source path %q, got %q", path, loaded.SourcePath)
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	if _, err := NewLoader().Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing scenario file")
	}
}

func TestScenarioConfig_BuildRoster(t *testing.T) {
	sc, err := NewLoader().Parse([]byte(minimalScenario))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	roster := sc.BuildRoster()
	plants := roster.ActivePlants(2020)
	if len(plants) != 1 {
		t.Fatalf("Expected 1 active plant, got %d", len(plants))
	}
	if plants[0].BaselineTech != techref.TechAvgBFBOF {
		t.Errorf("Expected baseline %q, got %q", techref.TechAvgBFBOF, plants[0].BaselineTech)
	}
}

func TestScenarioConfig_SolverOptions(t *testing.T) {
	doc := minimalScenario + `mode: ranked
moratorium: true
enforce_constraints: true
`
	sc, err := NewLoader().Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	opts := sc.SolverOptions()
	if string(opts.Mode) != "ranked" {
		t.Errorf("Expected ranked mode, got %q", opts.Mode)
	}
	if !opts.Moratorium || !opts.EnforceConstraints {
		t.Errorf("Expected moratorium and constraint flags set, got %+v", opts)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("Expected derived options to validate, got %v", err)
	}
}

func TestScenarioConfig_TrackerConfig(t *testing.T) {
	sc, err := NewLoader().Parse([]byte(minimalScenario))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cfg := sc.TrackerConfig()
	if cfg.CycleDurationYears != techref.InvestmentCycleDurationYears {
		t.Errorf("Expected cycle duration %d, got %d",
			techref.InvestmentCycleDurationYears, cfg.CycleDurationYears)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected derived cycle config to validate, got %v", err)
	}
}
