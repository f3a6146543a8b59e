package solver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/steelpath/steelpath/pkg/cycles"
	"github.com/steelpath/steelpath/pkg/ledger"
	"github.com/steelpath/steelpath/pkg/ranker"
	"github.com/steelpath/steelpath/pkg/techref"
	"github.com/steelpath/steelpath/pkg/telemetry"
)

// Options holds the scenario parameters of a solver run.
type Options struct {
	// YearStart and YearEnd bound the simulated year range, inclusive.
	YearStart int
	YearEnd   int

	// Mode selects the ranking algorithm.
	Mode ranker.Mode

	// Weights balances cost against abatement in the combined score.
	Weights ranker.Weights

	// Moratorium blocks adoption of transitional technologies from the
	// moratorium cutoff year onward.
	Moratorium bool

	// EnforceConstraints enables shared-resource filtering of candidates
	// through the material usage ledger.
	EnforceConstraints bool
}

// Validate checks the option invariants.
func (o Options) Validate() error {
	if o.YearEnd < o.YearStart {
		return NewValidationError(
			fmt.Sprintf("year end %d precedes year start %d", o.YearEnd, o.YearStart), nil).
			WithCode(ErrCodeValidation)
	}
	if err := o.Mode.Validate(); err != nil {
		return NewValidationError("invalid ranking mode", err).WithCode(ErrCodeValidation)
	}
	if o.Weights.TCO < 0 || o.Weights.Emissions < 0 {
		return NewValidationError("ranking weights must be non-negative", nil).
			WithCode(ErrCodeValidation)
	}
	return nil
}

// Deps are the collaborators a solver consumes. Roster, Tracker, Ledger and
// Tables are required; Usage is required when constraints are enforced;
// Policy defaults to allow-all; Metrics and Tracer may be nil.
type Deps struct {
	Roster       PlantRoster
	Tracker      *cycles.Tracker
	Ledger       *ledger.Ledger
	Tables       CostTables
	Usage        UsageEstimator
	Availability techref.Availability
	Policy       TechPolicy
	Logger       zerolog.Logger
	Metrics      *telemetry.Metrics
	Tracer       *telemetry.Tracer
}

// Solver runs the per-plant, per-year technology choice state machine. A
// solver owns its tracker, ledger, and decision log; parallel scenarios must
// each construct their own.
type Solver struct {
	opts    Options
	roster  PlantRoster
	tracker *cycles.Tracker
	ledger  *ledger.Ledger
	tables  CostTables
	usage   UsageEstimator
	avail   techref.Availability
	policy  TechPolicy
	logger  zerolog.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
}

// New creates a solver for one scenario run.
func New(opts Options, deps Deps) (*Solver, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if deps.Roster == nil || deps.Tracker == nil || deps.Ledger == nil || deps.Tables == nil {
		return nil, NewValidationError("roster, tracker, ledger and cost tables are required", nil).
			WithCode(ErrCodeValidation)
	}
	if opts.EnforceConstraints && deps.Usage == nil {
		return nil, NewValidationError("constraint enforcement requires a usage estimator", nil).
			WithCode(ErrCodeValidation)
	}
	if deps.Policy == nil {
		deps.Policy = AllowAllPolicy{}
	}
	if deps.Availability == nil {
		deps.Availability = techref.Availability{}
	}
	return &Solver{
		opts:    opts,
		roster:  deps.Roster,
		tracker: deps.Tracker,
		ledger:  deps.Ledger,
		tables:  deps.Tables,
		usage:   deps.Usage,
		avail:   deps.Availability,
		policy:  deps.Policy,
		logger:  deps.Logger.With().Str("component", "solver").Logger(),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
	}, nil
}

// Run executes the scenario over the configured year range. Years are
// processed in ascending order and, within a year, non-switching plants are
// fully committed before switching plants are evaluated, in sorted plant name
// order. Fatal precondition failures abort the whole run.
func (s *Solver) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	logger := s.logger.With().Str("run_id", runID).Logger()

	ctx, span := s.tracer.StartSpan(ctx, "scenario_run")
	defer span.End()

	result := &Result{
		RunID:   runID,
		Choices: make(map[int]map[string]techref.Technology),
	}

	for year := s.opts.YearStart; year <= s.opts.YearEnd; year++ {
		started := time.Now()
		if err := s.solveYear(ctx, year, result, logger); err != nil {
			return nil, err
		}
		s.metrics.ObserveYearDuration(time.Since(started).Seconds())
	}

	result.MaterialAudit = s.ledger.ExportAudit()
	result.Schedules = make(map[string][]int)
	for _, plant := range s.tracker.Plants() {
		schedule, err := s.tracker.Schedule(plant)
		if err != nil {
			return nil, NewFatalError("schedule lookup failed after run", err).
				WithCode(ErrCodeScheduleInvariant).WithPlant(plant)
		}
		result.Schedules[plant] = schedule
	}

	logger.Info().
		Int("years", s.opts.YearEnd-s.opts.YearStart+1).
		Int("decisions", len(result.Decisions)).
		Msg("Scenario run completed")
	return result, nil
}

// solveYear evaluates every active plant for one year.
func (s *Solver) solveYear(ctx context.Context, year int, result *Result, logger zerolog.Logger) error {
	ctx, span := s.tracer.StartSpan(ctx, fmt.Sprintf("solve_year_%d", year))
	defer span.End()

	plants := s.roster.ActivePlants(year)
	sort.Slice(plants, func(i, j int) bool { return plants[i].Name < plants[j].Name })

	for _, cat := range techref.ConstrainedResources {
		s.ledger.BeginYear(cat, year)
	}

	result.Choices[year] = make(map[string]techref.Technology, len(plants))

	// Newly opened plants get a schedule on first sight.
	var switchers, nonSwitchers []evaluation
	for _, p := range plants {
		if _, err := s.tracker.Schedule(p.Name); err != nil {
			if addErr := s.tracker.AddPlant(p.Name, p.StartYear); addErr != nil {
				return NewFatalError("failed to schedule new plant", addErr).
					WithCode(ErrCodeScheduleInvariant).WithPlant(p.Name).WithYear(year)
			}
		}
		st, err := s.tracker.SwitchType(p.Name, year)
		if err != nil {
			return NewFatalError("switch type lookup failed", err).
				WithCode(ErrCodeUnknownPlant).WithPlant(p.Name).WithYear(year)
		}
		ev := evaluation{plant: p, switchType: st}
		if st == cycles.SwitchNone {
			nonSwitchers = append(nonSwitchers, ev)
		} else {
			switchers = append(switchers, ev)
		}
	}

	logger.Debug().
		Int("year", year).
		Int("switchers", len(switchers)).
		Int("non_switchers", len(nonSwitchers)).
		Msg("Running investment decisions")

	// Non-switching plants commit their baseline usage first, establishing
	// the first-come priority base that switching plants compete under.
	for _, ev := range nonSwitchers {
		if err := s.commitNonSwitcher(year, ev, result); err != nil {
			return err
		}
	}
	for _, ev := range switchers {
		if err := s.evaluateSwitcher(ctx, year, ev, result); err != nil {
			return err
		}
	}
	return nil
}

// evaluation pairs a plant with its switch eligibility for the year.
type evaluation struct {
	plant      Plant
	switchType cycles.SwitchType
}

// commitNonSwitcher carries the prior year's technology forward and
// pre-allocates the plant's baseline resource usage with override priority.
func (s *Solver) commitNonSwitcher(year int, ev evaluation, result *Result) error {
	p := ev.plant
	current, err := s.startingTech(year, p, result)
	if err != nil {
		return err
	}

	if techref.IsTerminal(current) {
		s.commit(year, p.Name, current, current, cycles.SwitchNone,
			"plant closed; terminal state", result)
		return nil
	}

	chosen := current
	rationale := "not a switch year"
	if s.isPinnedSecondaryEAF(p) {
		chosen = techref.TechEAF
		rationale = "secondary EAF plant pinned to EAF"
	}

	s.commitBaselineUsage(year, p, chosen)
	s.commit(year, p.Name, current, chosen, cycles.SwitchNone, rationale, result)
	return nil
}

// evaluateSwitcher runs the candidate pipeline for a plant facing a main
// cycle or transitional switch decision.
func (s *Solver) evaluateSwitcher(ctx context.Context, year int, ev evaluation, result *Result) error {
	p := ev.plant
	current, err := s.startingTech(year, p, result)
	if err != nil {
		return err
	}

	if techref.IsTerminal(current) {
		s.commit(year, p.Name, current, current, cycles.SwitchNone,
			"plant closed; terminal state", result)
		return nil
	}

	if s.isPinnedSecondaryEAF(p) {
		s.commitBaselineUsage(year, p, techref.TechEAF)
		s.commit(year, p.Name, current, techref.TechEAF, ev.switchType,
			"secondary EAF plant pinned to EAF", result)
		return nil
	}

	candidates, err := s.buildCandidates(ctx, year, p, current, ev.switchType)
	if err != nil {
		return err
	}
	if s.opts.EnforceConstraints {
		candidates = s.filterConstrained(year, p, current, candidates)
	}
	if len(candidates) == 0 {
		s.commitBaselineUsage(year, p, current)
		s.commit(year, p.Name, current, current, ev.switchType,
			"no feasible switch candidates; retaining current technology", result)
		return nil
	}

	best, rationale, err := s.rankCandidates(year, p, current, candidates, ev.switchType)
	if err != nil {
		return err
	}

	if ev.switchType == cycles.SwitchTransitional && best != current {
		if err := s.tracker.CommitTransitionalSwitch(p.Name, year); err != nil {
			return NewFatalError("failed to commit transitional switch", err).
				WithCode(ErrCodeScheduleInvariant).WithPlant(p.Name).WithYear(year)
		}
	}
	s.commit(year, p.Name, current, best, ev.switchType, rationale, result)
	return nil
}

// buildCandidates narrows the reachable-switch set by the transitional
// furnace-group restriction, the availability window, and the technology
// policy. The plant's own current technology is never filtered out: a plant
// already operating a technology keeps it regardless of when new adoption
// becomes available (grandfathering).
func (s *Solver) buildCandidates(ctx context.Context, year int, p Plant, current techref.Technology, st cycles.SwitchType) ([]techref.Technology, error) {
	candidates := techref.SwitchTargets(current)
	if candidates == nil {
		return nil, NewFatalError(
			fmt.Sprintf("starting technology %q has no switch relation", current), nil).
			WithCode(ErrCodeMissingTech).WithPlant(p.Name).WithYear(year)
	}

	if st == cycles.SwitchTransitional && !techref.IsEndState(current) {
		group := make(map[techref.Technology]bool)
		for _, t := range techref.FurnaceGroupOf(current) {
			group[t] = true
		}
		filtered := candidates[:0]
		for _, c := range candidates {
			if group[c] {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if c == current {
			kept = append(kept, c)
			continue
		}
		if !s.avail.Check(c, year, s.opts.Moratorium) {
			continue
		}
		allowed, err := s.policy.Allowed(ctx, c, year)
		if err != nil {
			return nil, NewFatalError("technology policy evaluation failed", err).
				WithCode(ErrCodePolicyEvaluation).WithPlant(p.Name).WithYear(year)
		}
		if !allowed {
			continue
		}
		kept = append(kept, c)
	}
	return kept, nil
}

// filterConstrained submits non-overriding ledger requests for every
// candidate's constrained resources and drops candidates whose requests fail.
// An audit entry is recorded per candidate regardless of outcome. Accepted
// requests stay committed even when the candidate is not ultimately chosen;
// within a year the allocation order across plants is part of the contract.
func (s *Solver) filterConstrained(year int, p Plant, current techref.Technology, candidates []techref.Technology) []techref.Technology {
	kept := candidates[:0:0]
	for _, c := range candidates {
		var failed []techref.ResourceCategory
		for _, cat := range techref.ConstrainedResourcesFor(c) {
			quantity := s.usage.ProjectedUsage(p, c, year, cat)
			if !s.ledger.Request(cat, year, quantity, false) {
				failed = append(failed, cat)
				s.metrics.ObserveConstraintRejection(string(cat))
			}
		}
		outcome := ledger.AuditPass
		if len(failed) > 0 {
			outcome = ledger.AuditFail
		}
		s.ledger.RecordAudit(ledger.AuditEntry{
			Plant:           p.Name,
			Year:            year,
			StartTech:       current,
			CandidateTech:   c,
			Result:          outcome,
			FailedResources: failed,
		})
		if len(failed) == 0 {
			kept = append(kept, c)
		}
	}
	return kept
}

// rankCandidates looks up reference values for the surviving candidates and
// invokes the ranker. Transitional evaluations inflate TCO by the shortened
// horizon factor: switching early forfeits amortization time.
func (s *Solver) rankCandidates(year int, p Plant, current techref.Technology, candidates []techref.Technology, st cycles.SwitchType) (techref.Technology, string, error) {
	inflator := 1.0
	if st == cycles.SwitchTransitional {
		inflator = s.tracker.TransitionalHorizonFactor()
	}

	values := s.candidateValues(year, p, current, candidates, inflator)
	if len(values) == 0 {
		return current, "no cost reference data for candidates; retaining current technology", nil
	}

	s.metrics.ObserveRankerInvocation(string(s.opts.Mode))
	best, err := ranker.Best(values, current, s.opts.Mode, s.opts.Weights)
	if err != nil {
		return "", "", NewFatalError("ranking failed to resolve a technology", err).
			WithCode(ErrCodeRankingUnresolved).WithPlant(p.Name).WithYear(year)
	}
	if !techref.IsKnown(best) {
		return "", "", NewFatalError(
			fmt.Sprintf("ranking resolved to unknown technology %q", best), nil).
			WithCode(ErrCodeRankingUnresolved).WithPlant(p.Name).WithYear(year)
	}

	if best == current {
		return best, fmt.Sprintf("evaluated %d candidates (mode=%s); retained current technology",
			len(values), s.opts.Mode), nil
	}
	return best, fmt.Sprintf("evaluated %d candidates (mode=%s); switching from %s",
		len(values), s.opts.Mode, current), nil
}

// candidateValues looks up reference values for each candidate, dropping
// candidates without complete cost data. Transitional evaluations pass an
// inflator above 1: switching early forfeits amortization time, so the
// effective TCO rises by the shortened-horizon factor.
func (s *Solver) candidateValues(year int, p Plant, current techref.Technology, candidates []techref.Technology, inflator float64) []ranker.Candidate {
	values := make([]ranker.Candidate, 0, len(candidates))
	for _, c := range candidates {
		tco, okTCO := s.tables.TCO(year, p.Name, current, c)
		abatement, okAb := s.tables.Abatement(year, p.CountryCode, current, c)
		if !okTCO || !okAb {
			s.logger.Debug().
				Str("plant", p.Name).
				Int("year", year).
				Str("candidate", string(c)).
				Msg("No cost reference data for candidate")
			continue
		}
		values = append(values, ranker.Candidate{Tech: c, TCO: tco * inflator, Abatement: abatement})
	}
	return values
}

// startingTech resolves the plant's technology entering year: the prior
// year's committed choice, or the roster baseline for the first year a plant
// is seen. A missing or unknown starting technology is a fatal precondition
// failure; it signals a corrupted roster, not a recoverable condition.
func (s *Solver) startingTech(year int, p Plant, result *Result) (techref.Technology, error) {
	tech := p.BaselineTech
	if prior, ok := result.Choices[year-1]; ok {
		if t, ok := prior[p.Name]; ok {
			tech = t
		}
	}
	if tech == "" || (!techref.IsKnown(tech) && !techref.IsTerminal(tech)) {
		return "", NewFatalError(
			fmt.Sprintf("missing or invalid starting technology %q", tech), nil).
			WithCode(ErrCodeMissingTech).WithPlant(p.Name).WithYear(year)
	}
	return tech, nil
}

// isPinnedSecondaryEAF reports whether the plant is pinned to EAF by the
// secondary-plant policy rule.
func (s *Solver) isPinnedSecondaryEAF(p Plant) bool {
	return !p.Primary && p.BaselineTech == techref.TechEAF
}

// commitBaselineUsage pre-allocates the plant's usage of every constrained
// resource its technology draws on, with override priority.
func (s *Solver) commitBaselineUsage(year int, p Plant, tech techref.Technology) {
	if !s.opts.EnforceConstraints || s.usage == nil {
		return
	}
	for _, cat := range techref.ConstrainedResourcesFor(tech) {
		s.ledger.Request(cat, year, s.usage.ProjectedUsage(p, tech, year, cat), true)
	}
}

// commit records the year's technology for the plant and appends the decision
// record.
func (s *Solver) commit(year int, plant string, startTech, tech techref.Technology, st cycles.SwitchType, rationale string, result *Result) {
	result.Choices[year][plant] = tech
	result.Decisions = append(result.Decisions, DecisionRecord{
		Plant:      plant,
		Year:       year,
		StartTech:  startTech,
		ChosenTech: tech,
		SwitchType: st,
		Rationale:  rationale,
	})
	s.metrics.ObserveDecision(string(st))
}
