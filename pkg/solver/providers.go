package solver

import (
	"context"
	"sort"

	"github.com/steelpath/steelpath/pkg/techref"
)

// StaticRoster is a PlantRoster backed by a fixed plant list. Plants are
// active from their start year onward; the solver handles closure through the
// terminal technology states.
type StaticRoster struct {
	plants []Plant
}

// NewStaticRoster creates a roster from a fixed plant list.
func NewStaticRoster(plants []Plant) *StaticRoster {
	sorted := make([]Plant, len(plants))
	copy(sorted, plants)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &StaticRoster{plants: sorted}
}

// ActivePlants implements PlantRoster.
func (r *StaticRoster) ActivePlants(year int) []Plant {
	out := make([]Plant, 0, len(r.plants))
	for _, p := range r.plants {
		if p.StartYear <= year {
			out = append(out, p)
		}
	}
	return out
}

// StartYears returns plant name -> start-of-operation year for the full
// roster, the shape the investment cycle tracker initializes from.
func (r *StaticRoster) StartYears() map[string]int {
	out := make(map[string]int, len(r.plants))
	for _, p := range r.plants {
		out[p.Name] = p.StartYear
	}
	return out
}

// costKey is the composite lookup key for cost reference tables. Locus is the
// plant name for TCO rows and the country code for abatement rows; the key
// order (year, locus, start, switch) is a documented contract, not an
// implementation detail.
type costKey struct {
	Year   int
	Locus  string
	Start  techref.Technology
	Switch techref.Technology
}

// CostTableSet is an in-memory CostTables implementation over composite-key
// maps.
type CostTableSet struct {
	tco       map[costKey]float64
	abatement map[costKey]float64
}

// NewCostTableSet creates an empty cost table set.
func NewCostTableSet() *CostTableSet {
	return &CostTableSet{
		tco:       make(map[costKey]float64),
		abatement: make(map[costKey]float64),
	}
}

// SetTCO registers a TCO value for (year, plant, start, switch).
func (c *CostTableSet) SetTCO(year int, plant string, start, switchTech techref.Technology, value float64) {
	c.tco[costKey{year, plant, start, switchTech}] = value
}

// SetAbatement registers an abated-emissions value for (year, country, start, switch).
func (c *CostTableSet) SetAbatement(year int, countryCode string, start, switchTech techref.Technology, value float64) {
	c.abatement[costKey{year, countryCode, start, switchTech}] = value
}

// TCO implements CostTables.
func (c *CostTableSet) TCO(year int, plant string, start, switchTech techref.Technology) (float64, bool) {
	v, ok := c.tco[costKey{year, plant, start, switchTech}]
	return v, ok
}

// Abatement implements CostTables.
func (c *CostTableSet) Abatement(year int, countryCode string, start, switchTech techref.Technology) (float64, bool) {
	v, ok := c.abatement[costKey{year, countryCode, start, switchTech}]
	return v, ok
}

// IntensityUsage is a UsageEstimator that scales fixed per-ton resource
// intensities by plant capacity.
type IntensityUsage struct {
	// PerTon maps technology -> resource category -> consumption per ton of
	// annual capacity.
	PerTon map[techref.Technology]map[techref.ResourceCategory]float64
}

// ProjectedUsage implements UsageEstimator.
func (u *IntensityUsage) ProjectedUsage(plant Plant, tech techref.Technology, year int, cat techref.ResourceCategory) float64 {
	byCat, ok := u.PerTon[tech]
	if !ok {
		return 0
	}
	return byCat[cat] * plant.CapacityTpy
}

// AllowAllPolicy is a TechPolicy that never blocks adoption, used when a
// scenario loads no technology policies.
type AllowAllPolicy struct{}

// Allowed implements TechPolicy.
func (AllowAllPolicy) Allowed(_ context.Context, _ techref.Technology, _ int) (bool, error) {
	return true, nil
}
