// Package ranker implements the cost and abatement trade-off that picks the
// best technology switch from a filtered candidate set. Two scoring modes are
// supported: min-max scaling of raw values ("scaled") and threshold tiering
// relative to the cheapest candidate ("ranked"). Both are pure functions of
// their inputs; repeated calls with identical inputs return the same choice.
package ranker

import (
	"fmt"
	"sort"

	"github.com/steelpath/steelpath/pkg/techref"
)

// Mode selects the scoring algorithm.
type Mode string

const (
	ModeScaled Mode = "scaled"
	ModeRanked Mode = "ranked"
)

// Validate checks that m is a known mode.
func (m Mode) Validate() error {
	switch m {
	case ModeScaled, ModeRanked:
		return nil
	}
	return fmt.Errorf("unknown ranking mode %q", m)
}

// Weights balances cost against abatement in the combined score. The two
// weights conventionally sum to 1 but the math does not require it.
type Weights struct {
	TCO       float64
	Emissions float64
}

// Candidate is one reachable technology with its reference values for the
// plant and year under evaluation. TCO is total cost of ownership (lower is
// better); Abatement is abated combined emissions versus the starting
// technology (higher is better).
type Candidate struct {
	Tech      techref.Technology
	TCO       float64
	Abatement float64
}

// Best returns the winning technology for the candidate set. Candidates must
// already be filtered for availability and resource constraints; min-max
// normalization operates over exactly the set given.
//
// In scaled mode fewer than two candidates resolve to the starting
// technology: with no real choice the normalization would divide by zero. In
// ranked mode a single candidate short-circuits to that candidate. An empty
// candidate set is an error; callers are expected to fall back to the
// starting technology before reaching the ranker.
func Best(candidates []Candidate, startTech techref.Technology, mode Mode, weights Weights) (techref.Technology, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("empty candidate set for start technology %q", startTech)
	}

	switch mode {
	case ModeScaled:
		if len(candidates) < 2 {
			return startTech, nil
		}
		return bestScaled(candidates, weights), nil
	case ModeRanked:
		if len(candidates) == 1 {
			return candidates[0].Tech, nil
		}
		return bestRanked(candidates, weights), nil
	}
	return "", fmt.Errorf("unknown ranking mode %q", mode)
}

// bestScaled min-max normalizes TCO (lower is better) and abatement
// (normalization reversed, higher is better) over the candidate set, combines
// them by the weights, and picks the minimum combined score. Ties resolve to
// the lexicographically smallest technology name.
func bestScaled(candidates []Candidate, weights Weights) techref.Technology {
	tcoScaled := normalize(values(candidates, func(c Candidate) float64 { return c.TCO }))
	abatementScaled := normalize(values(candidates, func(c Candidate) float64 { return c.Abatement }))

	best := candidates[0].Tech
	bestScore := 0.0
	for i, c := range candidates {
		score := weights.TCO*tcoScaled[i] + weights.Emissions*(1-abatementScaled[i])
		if i == 0 || score < bestScore || (score == bestScore && c.Tech < best) {
			best = c.Tech
			bestScore = score
		}
	}
	return best
}

// bestRanked assigns each candidate a TCO tier relative to the cheapest
// candidate and an abatement tier against the fixed absolute cutoffs, then
// picks the minimum weighted tier sum. Ties resolve to the lowest raw TCO
// among the tied candidates, then lexicographically by technology name.
func bestRanked(candidates []Candidate, weights Weights) techref.Technology {
	minTCO := candidates[0].TCO
	for _, c := range candidates[1:] {
		if c.TCO < minTCO {
			minTCO = c.TCO
		}
	}

	type scored struct {
		Candidate
		rank float64
	}
	ranked := make([]scored, len(candidates))
	minRank := 0.0
	for i, c := range candidates {
		rank := weights.TCO*float64(tcoTier(c.TCO, minTCO)) +
			weights.Emissions*float64(abatementTier(c.Abatement))
		ranked[i] = scored{Candidate: c, rank: rank}
		if i == 0 || rank < minRank {
			minRank = rank
		}
	}

	tied := ranked[:0:0]
	for _, s := range ranked {
		if s.rank == minRank {
			tied = append(tied, s)
		}
	}
	sort.Slice(tied, func(i, j int) bool {
		if tied[i].TCO != tied[j].TCO {
			return tied[i].TCO < tied[j].TCO
		}
		return tied[i].Tech < tied[j].Tech
	})
	return tied[0].Tech
}

// tcoTier tiers a TCO value against the cheapest candidate: 3 beyond 30%
// above the minimum, 2 beyond 10%, otherwise 1.
func tcoTier(v, minValue float64) int {
	switch {
	case v > minValue*techref.TCORank2Scaler:
		return 3
	case v > minValue*techref.TCORank1Scaler:
		return 2
	default:
		return 1
	}
}

// abatementTier tiers an abatement value against the fixed absolute cutoffs:
// 3 below the low cutoff, 2 below the high cutoff, otherwise 1.
func abatementTier(v float64) int {
	switch {
	case v < techref.AbatementRank3Cutoff:
		return 3
	case v < techref.AbatementRank2Cutoff:
		return 2
	default:
		return 1
	}
}

// normalize min-max scales vs to [0,1]. A degenerate set where every value is
// equal scales to all zeros.
func normalize(vs []float64) []float64 {
	minV, maxV := vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	out := make([]float64, len(vs))
	if maxV == minV {
		return out
	}
	for i, v := range vs {
		out[i] = (v - minV) / (maxV - minV)
	}
	return out
}

func values(candidates []Candidate, f func(Candidate) float64) []float64 {
	out := make([]float64, len(candidates))
	for i, c := range candidates {
		out[i] = f(c)
	}
	return out
}
