package config

import (
	"time"
)

// ScenarioConfig is the top-level scenario definition parsed from YAML.
type ScenarioConfig struct {
	// Name is the scenario name, also used as the run label.
	Name string `yaml:"name" validate:"required"`

	// Description provides a human-readable description.
	Description string `yaml:"description,omitempty"`

	// YearStart and YearEnd bound the simulated year range, inclusive.
	YearStart int `yaml:"year_start" validate:"required,min=1900"`
	YearEnd   int `yaml:"year_end" validate:"required,gtefield=YearStart"`

	// Mode selects the ranking algorithm: scaled or ranked.
	Mode string `yaml:"mode" validate:"required,oneof=scaled ranked"`

	// Preset names a built-in weight preset. Ignored when Weights is set.
	Preset string `yaml:"preset,omitempty" validate:"omitempty,oneof=balanced lowest_cost max_abatement"`

	// Weights balances cost against abatement in scaled mode. Overrides
	// Preset when present.
	Weights *WeightsConfig `yaml:"weights,omitempty"`

	// Moratorium blocks transitional technologies from the cutoff year.
	Moratorium bool `yaml:"moratorium"`

	// EnforceConstraints enables shared-resource filtering of candidates.
	EnforceConstraints bool `yaml:"enforce_constraints"`

	// Cycle configures the investment cycle tracker.
	Cycle CycleConfig `yaml:"cycle"`

	// PolicyPaths lists extra Rego policy files or directories to load.
	PolicyPaths []string `yaml:"policy_paths,omitempty"`

	// Data holds the reference datasets driving the run.
	Data DatasetConfig `yaml:"data"`
}

// WeightsConfig is the cost/abatement weighting for scaled ranking.
type WeightsConfig struct {
	TCO       float64 `yaml:"tco" validate:"min=0"`
	Emissions float64 `yaml:"emissions" validate:"min=0"`
}

// CycleConfig configures investment cycle generation.
type CycleConfig struct {
	// DurationYears is the main investment cycle length.
	DurationYears int `yaml:"duration_years" validate:"omitempty,min=2"`

	// VarianceYears is the maximum random offset applied to first cycles.
	VarianceYears int `yaml:"variance_years" validate:"min=0"`

	// Seed makes cycle offsets reproducible across runs.
	Seed int64 `yaml:"seed"`

	// Deterministic disables random offsets entirely.
	Deterministic bool `yaml:"deterministic"`
}

// DatasetConfig bundles the reference tables a scenario runs against.
type DatasetConfig struct {
	// Plants is the steel plant roster.
	Plants []PlantConfig `yaml:"plants" validate:"required,min=1,dive"`

	// Availability maps technology names to the first year they can be
	// adopted. Technologies not listed are available from the model start.
	Availability map[string]int `yaml:"availability,omitempty"`

	// TCO lists total cost of ownership values per switch.
	TCO []CostEntry `yaml:"tco" validate:"dive"`

	// Abatement lists emissions abatement values per switch.
	Abatement []AbatementEntry `yaml:"abatement" validate:"dive"`

	// Constraints maps resource categories to per-year capacity ceilings.
	Constraints map[string]map[int]float64 `yaml:"constraints,omitempty"`

	// Usage lists per-ton resource consumption intensities by technology.
	Usage []UsageEntry `yaml:"usage,omitempty" validate:"dive"`
}

// PlantConfig describes one steel plant.
type PlantConfig struct {
	// Name is the unique plant key.
	Name string `yaml:"name" validate:"required"`

	// CountryCode is the ISO-3166 alpha-3 country of the plant.
	CountryCode string `yaml:"country_code" validate:"required,len=3"`

	// Region is the reporting region the plant belongs to.
	Region string `yaml:"region,omitempty"`

	// Primary marks a primary steelmaking plant.
	Primary bool `yaml:"primary"`

	// CapacityTpy is crude steel capacity in tonnes per year.
	CapacityTpy float64 `yaml:"capacity_tpy" validate:"required,gt=0"`

	// StartYear is the first simulated year the plant operates.
	StartYear int `yaml:"start_year" validate:"required"`

	// BaselineTech is the technology the plant runs before any switch.
	BaselineTech string `yaml:"baseline_tech" validate:"required"`
}

// CostEntry is one total-cost-of-ownership table row. The locus is the
// plant name.
type CostEntry struct {
	Year   int     `yaml:"year" validate:"required"`
	Plant  string  `yaml:"plant" validate:"required"`
	Start  string  `yaml:"start" validate:"required"`
	Switch string  `yaml:"switch" validate:"required"`
	Value  float64 `yaml:"value"`
}

// AbatementEntry is one emissions abatement table row. The locus is the
// plant's country code.
type AbatementEntry struct {
	Year    int     `yaml:"year" validate:"required"`
	Country string  `yaml:"country" validate:"required"`
	Start   string  `yaml:"start" validate:"required"`
	Switch  string  `yaml:"switch" validate:"required"`
	Value   float64 `yaml:"value"`
}

// UsageEntry is one per-ton resource intensity row.
type UsageEntry struct {
	Tech     string  `yaml:"tech" validate:"required"`
	Resource string  `yaml:"resource" validate:"required,oneof=biomass scrap ccs co2"`
	PerTon   float64 `yaml:"per_ton" validate:"min=0"`
}

// LoadedScenario pairs a parsed scenario with load metadata.
type LoadedScenario struct {
	// Scenario is the validated scenario configuration.
	Scenario ScenarioConfig `yaml:"scenario"`

	// SourcePath is the file the scenario was loaded from.
	SourcePath string `yaml:"-"`

	// LoadedAt is when the file was parsed.
	LoadedAt time.Time `yaml:"-"`
}
