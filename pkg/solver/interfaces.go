package solver

import (
	"context"

	"github.com/steelpath/steelpath/pkg/techref"
)

// PlantRoster yields the active fleet per year. The snapshot is externally
// supplied: plant openings and forced closures between years are roster
// concerns, not solver concerns.
type PlantRoster interface {
	// ActivePlants returns the plants operating in year. Order does not
	// matter; the solver sorts by plant name for determinism.
	ActivePlants(year int) []Plant
}

// CostTables provides the precomputed TCO and abatement reference values the
// ranker consumes. TCO is keyed by (year, plant, start tech, switch tech);
// abatement by (year, country code, start tech, switch tech). The boolean
// return is false when no value exists for the key.
type CostTables interface {
	TCO(year int, plant string, start, switchTech techref.Technology) (float64, bool)
	Abatement(year int, countryCode string, start, switchTech techref.Technology) (float64, bool)
}

// UsageEstimator projects a plant's annual consumption of a constrained
// resource category when operating a given technology.
type UsageEstimator interface {
	ProjectedUsage(plant Plant, tech techref.Technology, year int, cat techref.ResourceCategory) float64
}

// TechPolicy gates technology adoption per year. Implemented by pkg/policy's
// Rego engine; the moratorium and scenario technology bans are policy rules.
type TechPolicy interface {
	// Allowed reports whether tech may be adopted in year.
	Allowed(ctx context.Context, tech techref.Technology, year int) (bool, error)
}
