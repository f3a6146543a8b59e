// Package ledger implements the material usage ledger: a per-resource,
// per-year balance tracker that serializes allocation requests against shared
// capacity ceilings and keeps an append-only audit trail of every check.
//
// Ordering is part of the contract. Within a year, baseline usage of
// non-switching plants must be committed with override set before any
// switching plant is evaluated; later requests then see the remaining
// capacity left by earlier ones, in plant iteration order.
package ledger

import (
	"github.com/rs/zerolog"

	"github.com/steelpath/steelpath/pkg/techref"
)

// CapacityCurve is a per-year capacity ceiling for one resource category.
type CapacityCurve map[int]float64

// Ledger owns the year-scoped balances for every constrained resource
// category. Not safe for concurrent use; a scenario run owns its ledger.
type Ledger struct {
	logger      zerolog.Logger
	constraints map[techref.ResourceCategory]CapacityCurve
	balances    map[techref.ResourceCategory]map[int]float64
	began       map[techref.ResourceCategory]map[int]bool
	audit       []AuditEntry
}

// New creates an empty ledger.
func New(logger zerolog.Logger) *Ledger {
	return &Ledger{
		logger:      logger.With().Str("component", "material-ledger").Logger(),
		constraints: make(map[techref.ResourceCategory]CapacityCurve),
		balances:    make(map[techref.ResourceCategory]map[int]float64),
		began:       make(map[techref.ResourceCategory]map[int]bool),
	}
}

// LoadConstraint registers the per-year capacity ceiling for a resource
// category. Categories without a registered constraint are unconstrained and
// accept every request.
func (l *Ledger) LoadConstraint(cat techref.ResourceCategory, curve CapacityCurve) {
	c := make(CapacityCurve, len(curve))
	for year, cap := range curve {
		c[year] = cap
	}
	l.constraints[cat] = c
}

// BeginYear resets the running balance for (cat, year) to zero. Idempotent:
// repeated calls for the same year leave committed transactions intact.
func (l *Ledger) BeginYear(cat techref.ResourceCategory, year int) {
	if l.began[cat] == nil {
		l.began[cat] = make(map[int]bool)
	}
	if l.began[cat][year] {
		return
	}
	if l.balances[cat] == nil {
		l.balances[cat] = make(map[int]float64)
	}
	l.balances[cat][year] = 0
	l.began[cat][year] = true
}

// Request records a projected consumption of cat in year. With override set
// the transaction is unconditionally accepted; this establishes the baseline
// priority of non-switching plants. Otherwise the transaction is accepted
// only if it fits under the remaining capacity for the year. Returns whether
// the transaction was committed. Committed transactions are not reversible
// within the same year.
func (l *Ledger) Request(cat techref.ResourceCategory, year int, quantity float64, override bool) bool {
	l.BeginYear(cat, year)
	balance := l.balances[cat][year]

	if override {
		l.balances[cat][year] = balance + quantity
		return true
	}

	capacity, constrained := l.capacityFor(cat, year)
	if constrained && balance+quantity > capacity {
		l.logger.Debug().
			Str("resource", string(cat)).
			Int("year", year).
			Float64("requested", quantity).
			Float64("balance", balance).
			Float64("capacity", capacity).
			Msg("Resource request rejected")
		return false
	}

	l.balances[cat][year] = balance + quantity
	return true
}

// Balance returns the consumed-so-far balance for (cat, year).
func (l *Ledger) Balance(cat techref.ResourceCategory, year int) float64 {
	if l.balances[cat] == nil {
		return 0
	}
	return l.balances[cat][year]
}

// capacityFor returns the registered ceiling for (cat, year). The second
// return is false when the category or year is unconstrained.
func (l *Ledger) capacityFor(cat techref.ResourceCategory, year int) (float64, bool) {
	curve, ok := l.constraints[cat]
	if !ok {
		return 0, false
	}
	capacity, ok := curve[year]
	return capacity, ok
}
