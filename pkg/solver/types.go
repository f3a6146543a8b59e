// Package solver implements the annual technology-choice solver: for every
// simulated year it determines which plants are eligible to switch, narrows
// the candidate technology set, enforces shared resource constraints across
// the fleet, ranks the survivors by cost and abatement, and records every
// decision with its rationale.
package solver

import (
	"github.com/steelpath/steelpath/pkg/cycles"
	"github.com/steelpath/steelpath/pkg/ledger"
	"github.com/steelpath/steelpath/pkg/techref"
)

// Plant is one industrial plant in the simulated fleet. Identity fields come
// from the roster provider; Technology is mutated once per simulated year by
// the solver.
type Plant struct {
	// Name is the unique plant key.
	Name string `json:"name"`

	// CountryCode is the ISO-3166 alpha-3 country of the plant.
	CountryCode string `json:"country_code"`

	// Region is the reporting region the plant belongs to.
	Region string `json:"region"`

	// Primary marks a primary steelmaking plant. Non-primary (secondary)
	// plants baselined on EAF are pinned to EAF by policy.
	Primary bool `json:"primary"`

	// CapacityTpy is annual production capacity in tons per year.
	CapacityTpy float64 `json:"capacity_tpy"`

	// StartYear is the plant's start-of-operation year.
	StartYear int `json:"start_year"`

	// BaselineTech is the technology operated in the model start year.
	BaselineTech techref.Technology `json:"baseline_tech"`
}

// DecisionRecord is one entry of the append-only decision audit log: the
// outcome of evaluating one plant in one year. Records are never mutated
// after creation.
type DecisionRecord struct {
	Plant      string             `json:"plant"`
	Year       int                `json:"year"`
	StartTech  techref.Technology `json:"start_tech"`
	ChosenTech techref.Technology `json:"chosen_tech"`
	SwitchType cycles.SwitchType  `json:"switch_type"`
	Rationale  string             `json:"rationale"`
}

// Result is the full outcome of a scenario run.
type Result struct {
	// RunID identifies the scenario run.
	RunID string

	// Choices maps year -> plant name -> committed technology.
	Choices map[int]map[string]techref.Technology

	// Decisions is the append-only decision log in commit order.
	Decisions []DecisionRecord

	// MaterialAudit is the flattened ledger audit trail.
	MaterialAudit []ledger.AuditEntry

	// Schedules maps plant name -> final main-cycle years, reflecting any
	// shifts committed by transitional switches during the run.
	Schedules map[string][]int
}

// TechnologyIn returns the committed technology for plant in year.
func (r *Result) TechnologyIn(year int, plant string) (techref.Technology, bool) {
	byPlant, ok := r.Choices[year]
	if !ok {
		return "", false
	}
	tech, ok := byPlant[plant]
	return tech, ok
}
