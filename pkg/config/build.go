package config

import (
	"github.com/steelpath/steelpath/pkg/cycles"
	"github.com/steelpath/steelpath/pkg/ledger"
	"github.com/steelpath/steelpath/pkg/ranker"
	"github.com/steelpath/steelpath/pkg/solver"
	"github.com/steelpath/steelpath/pkg/techref"
)

// BuildRoster converts the plant dataset into a solver roster.
func (sc *ScenarioConfig) BuildRoster() *solver.StaticRoster {
	plants := make([]solver.Plant, len(sc.Data.Plants))
	for i, p := range sc.Data.Plants {
		plants[i] = solver.Plant{
			Name:         p.Name,
			CountryCode:  p.CountryCode,
			Region:       p.Region,
			Primary:      p.Primary,
			CapacityTpy:  p.CapacityTpy,
			StartYear:    p.StartYear,
			BaselineTech: techref.Technology(p.BaselineTech),
		}
	}
	return solver.NewStaticRoster(plants)
}

// BuildCostTables converts the TCO and abatement rows into lookup tables.
func (sc *ScenarioConfig) BuildCostTables() *solver.CostTableSet {
	tables := solver.NewCostTableSet()
	for _, e := range sc.Data.TCO {
		tables.SetTCO(e.Year, e.Plant, techref.Technology(e.Start), techref.Technology(e.Switch), e.Value)
	}
	for _, e := range sc.Data.Abatement {
		tables.SetAbatement(e.Year, e.Country, techref.Technology(e.Start), techref.Technology(e.Switch), e.Value)
	}
	return tables
}

// BuildUsage converts the intensity rows into a usage estimator.
func (sc *ScenarioConfig) BuildUsage() *solver.IntensityUsage {
	perTon := make(map[techref.Technology]map[techref.ResourceCategory]float64)
	for _, e := range sc.Data.Usage {
		tech := techref.Technology(e.Tech)
		if perTon[tech] == nil {
			perTon[tech] = make(map[techref.ResourceCategory]float64)
		}
		perTon[tech][techref.ResourceCategory(e.Resource)] = e.PerTon
	}
	return &solver.IntensityUsage{PerTon: perTon}
}

// BuildAvailability converts the availability map into first-year lookups.
func (sc *ScenarioConfig) BuildAvailability() techref.Availability {
	av := make(techref.Availability, len(sc.Data.Availability))
	for tech, year := range sc.Data.Availability {
		av[techref.Technology(tech)] = year
	}
	return av
}

// LoadConstraints installs the scenario capacity curves into the ledger.
func (sc *ScenarioConfig) LoadConstraints(l *ledger.Ledger) {
	for resource, curve := range sc.Data.Constraints {
		c := make(ledger.CapacityCurve, len(curve))
		for year, limit := range curve {
			c[year] = limit
		}
		l.LoadConstraint(techref.ResourceCategory(resource), c)
	}
}

// SolverOptions derives solver options from the scenario.
func (sc *ScenarioConfig) SolverOptions() solver.Options {
	var weights ranker.Weights
	if sc.Weights != nil {
		weights = ranker.Weights{TCO: sc.Weights.TCO, Emissions: sc.Weights.Emissions}
	}
	return solver.Options{
		YearStart:          sc.YearStart,
		YearEnd:            sc.YearEnd,
		Mode:               ranker.Mode(sc.Mode),
		Weights:            weights,
		Moratorium:         sc.Moratorium,
		EnforceConstraints: sc.EnforceConstraints,
	}
}

// TrackerConfig derives the investment cycle configuration.
func (sc *ScenarioConfig) TrackerConfig() cycles.Config {
	return cycles.Config{
		CycleDurationYears: sc.Cycle.DurationYears,
		VarianceYears:      sc.Cycle.VarianceYears,
		BufferTopYears:     techref.InvestmentBufferTopYears,
		BufferTailYears:    techref.InvestmentBufferTailYears,
		ModelStartYear:     sc.YearStart,
		ModelEndYear:       sc.YearEnd,
		Seed:               sc.Cycle.Seed,
		Deterministic:      sc.Cycle.Deterministic,
	}
}
