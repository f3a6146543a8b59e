package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/steelpath/steelpath/pkg/techref"
)

// Weight presets for scaled ranking.
var presets = map[string]WeightsConfig{
	"balanced":      {TCO: 0.6, Emissions: 0.4},
	"lowest_cost":   {TCO: 1.0, Emissions: 0.0},
	"max_abatement": {TCO: 0.0, Emissions: 1.0},
}

// Presets returns the built-in weight preset names.
func Presets() []string {
	return []string{"balanced", "lowest_cost", "max_abatement"}
}

// PresetWeights returns the weights for a named preset.
func PresetWeights(name string) (WeightsConfig, bool) {
	w, ok := presets[name]
	return w, ok
}

// Loader parses and validates scenario files.
type Loader struct {
	validator *validator.Validate
}

// NewLoader creates a scenario loader.
func NewLoader() *Loader {
	return &Loader{
		validator: validator.New(),
	}
}

// Load reads, defaults, and validates a scenario YAML file.
func (l *Loader) Load(path string) (*LoadedScenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &LoadedScenario{
		Scenario:   *scenario,
		SourcePath: path,
		LoadedAt:   time.Now(),
	}, nil
}

// Parse decodes and validates scenario YAML.
func (l *Loader) Parse(data []byte) (*ScenarioConfig, error) {
	var sc ScenarioConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	applyDefaults(&sc)

	if err := l.validator.Struct(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if err := validateSemantics(&sc); err != nil {
		return nil, err
	}

	return &sc, nil
}

// applyDefaults fills unset fields with model defaults.
func applyDefaults(sc *ScenarioConfig) {
	if sc.YearStart == 0 {
		sc.YearStart = techref.ModelYearStart
	}
	if sc.YearEnd == 0 {
		sc.YearEnd = techref.ModelYearEnd
	}
	if sc.Mode == "" {
		sc.Mode = "scaled"
	}
	if sc.Cycle.DurationYears == 0 {
		sc.Cycle.DurationYears = techref.InvestmentCycleDurationYears
	}
	if sc.Cycle.VarianceYears == 0 && !sc.Cycle.Deterministic {
		sc.Cycle.VarianceYears = techref.InvestmentCycleVarianceYears
	}
	if sc.Weights == nil {
		preset := sc.Preset
		if preset == "" {
			preset = "balanced"
		}
		if w, ok := presets[preset]; ok {
			sc.Weights = &w
		}
	}
}

// validateSemantics checks cross-field rules the struct tags cannot express.
func validateSemantics(sc *ScenarioConfig) error {
	if sc.Weights != nil && sc.Weights.TCO+sc.Weights.Emissions == 0 {
		return fmt.Errorf("invalid scenario: weights must not both be zero")
	}

	seen := make(map[string]bool, len(sc.Data.Plants))
	for i := range sc.Data.Plants {
		p := &sc.Data.Plants[i]
		if seen[p.Name] {
			return fmt.Errorf("invalid scenario: duplicate plant %q", p.Name)
		}
		seen[p.Name] = true

		bt := techref.Technology(p.BaselineTech)
		if !techref.IsKnown(bt) && !techref.IsTerminal(bt) {
			return fmt.Errorf("invalid scenario: plant %q has unknown baseline technology %q", p.Name, p.BaselineTech)
		}
	}

	for tech := range sc.Data.Availability {
		if !techref.IsKnown(techref.Technology(tech)) {
			return fmt.Errorf("invalid scenario: availability lists unknown technology %q", tech)
		}
	}

	for resource := range sc.Data.Constraints {
		if !knownResource(resource) {
			return fmt.Errorf("invalid scenario: constraint on unknown resource %q", resource)
		}
	}
	for i := range sc.Data.Usage {
		if !techref.IsKnown(techref.Technology(sc.Data.Usage[i].Tech)) {
			return fmt.Errorf("invalid scenario: usage lists unknown technology %q", sc.Data.Usage[i].Tech)
		}
	}

	return nil
}

func knownResource(name string) bool {
	for _, cat := range techref.ConstrainedResources {
		if string(cat) == name {
			return true
		}
	}
	return false
}
