// Package cycles tracks per-plant investment cycle state: when each plant is
// due for a mandatory main-cycle technology re-evaluation and when it may take
// an optional transitional switch ahead of one.
package cycles

import (
	"fmt"
	"math/rand"
	"sort"
)

// SwitchType classifies a plant's decision eligibility in a given year.
type SwitchType string

const (
	SwitchNone         SwitchType = "no switch"
	SwitchMainCycle    SwitchType = "main cycle"
	SwitchTransitional SwitchType = "trans switch"
)

// ErrPlantNotFound is returned when a plant has no schedule in the tracker.
type ErrPlantNotFound struct {
	Plant string
}

func (e *ErrPlantNotFound) Error() string {
	return fmt.Sprintf("no investment schedule for plant %q", e.Plant)
}

// Config holds the cycle scheduling parameters for a scenario run.
type Config struct {
	// CycleDurationYears is the spacing between main-cycle years.
	CycleDurationYears int

	// VarianceYears bounds the offset applied to each plant's first cycle
	// year so fleet-wide re-investments do not all land in the same year.
	VarianceYears int

	// BufferTopYears is the number of years after a main cycle during which
	// no transitional switch is permitted.
	BufferTopYears int

	// BufferTailYears is the number of years before the next main cycle
	// during which no transitional switch is permitted.
	BufferTailYears int

	// ModelStartYear and ModelEndYear bound the scheduled cycle years.
	ModelStartYear int
	ModelEndYear   int

	// Seed drives the stochastic first-cycle offset. With Deterministic set,
	// the offset is always zero and Seed is ignored.
	Seed          int64
	Deterministic bool
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.CycleDurationYears <= 0 {
		return fmt.Errorf("cycle duration must be positive, got %d", c.CycleDurationYears)
	}
	if c.VarianceYears < 0 {
		return fmt.Errorf("cycle variance must be non-negative, got %d", c.VarianceYears)
	}
	if c.BufferTopYears < 0 || c.BufferTailYears < 0 {
		return fmt.Errorf("cycle buffers must be non-negative, got top=%d tail=%d",
			c.BufferTopYears, c.BufferTailYears)
	}
	if c.BufferTopYears+c.BufferTailYears >= c.CycleDurationYears {
		return fmt.Errorf("cycle buffers (%d+%d) must leave room inside a %d-year cycle",
			c.BufferTopYears, c.BufferTailYears, c.CycleDurationYears)
	}
	if c.ModelEndYear < c.ModelStartYear {
		return fmt.Errorf("model end year %d precedes start year %d", c.ModelEndYear, c.ModelStartYear)
	}
	return nil
}

// schedule holds one plant's cycle state. cycleYears is strictly increasing;
// transUsed records which upcoming cycle year already consumed its
// transitional window.
type schedule struct {
	cycleYears []int
	transUsed  map[int]bool
}

// Tracker owns the investment schedules for every plant in a scenario run.
// It is not safe for concurrent use; scenario runs are strictly sequential.
type Tracker struct {
	cfg       Config
	rng       *rand.Rand
	schedules map[string]*schedule
}

// NewTracker creates a tracker and schedules every plant in the roster.
// plantStartYears maps plant name to its start-of-operation year.
func NewTracker(cfg Config, plantStartYears map[string]int) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Tracker{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		schedules: make(map[string]*schedule, len(plantStartYears)),
	}

	// Insertion order must be deterministic or the per-plant stochastic
	// offsets change between runs with identical configs.
	names := make([]string, 0, len(plantStartYears))
	for name := range plantStartYears {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := t.AddPlant(name, plantStartYears[name]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddPlant inserts a newly opened plant with a freshly computed schedule.
func (t *Tracker) AddPlant(plant string, startYear int) error {
	if _, exists := t.schedules[plant]; exists {
		return fmt.Errorf("plant %q already scheduled", plant)
	}

	offset := 0
	if !t.cfg.Deterministic && t.cfg.VarianceYears > 0 {
		offset = t.rng.Intn(2*t.cfg.VarianceYears+1) - t.cfg.VarianceYears
	}

	first := startYear + t.cfg.CycleDurationYears + offset
	for first < t.cfg.ModelStartYear {
		first += t.cfg.CycleDurationYears
	}

	var years []int
	for y := first; y <= t.cfg.ModelEndYear; y += t.cfg.CycleDurationYears {
		years = append(years, y)
	}
	if err := checkIncreasing(plant, years); err != nil {
		return err
	}
	t.schedules[plant] = &schedule{cycleYears: years, transUsed: make(map[int]bool)}
	return nil
}

// SwitchType returns the decision eligibility of plant in year: a main cycle
// on a scheduled cycle year, a transitional switch inside the unused window
// ahead of the next cycle year, otherwise no switch.
func (t *Tracker) SwitchType(plant string, year int) (SwitchType, error) {
	s, ok := t.schedules[plant]
	if !ok {
		return SwitchNone, &ErrPlantNotFound{Plant: plant}
	}
	for _, cy := range s.cycleYears {
		if cy == year {
			return SwitchMainCycle, nil
		}
	}
	if next, ok := t.nextCycleYear(s, year); ok && t.inTransWindow(year, next) && !s.transUsed[next] {
		return SwitchTransitional, nil
	}
	return SwitchNone, nil
}

// CommitTransitionalSwitch records that plant used the transitional window in
// year. The next main-cycle year is pushed back by the top buffer, and the
// window is marked used so the same cycle cannot trigger a second early
// switch.
func (t *Tracker) CommitTransitionalSwitch(plant string, year int) error {
	s, ok := t.schedules[plant]
	if !ok {
		return &ErrPlantNotFound{Plant: plant}
	}
	next, ok := t.nextCycleYear(s, year)
	if !ok || !t.inTransWindow(year, next) {
		return fmt.Errorf("plant %q has no open transitional window in %d", plant, year)
	}
	if s.transUsed[next] {
		return fmt.Errorf("plant %q already used its transitional window before %d", plant, next)
	}

	shifted := next + t.cfg.BufferTopYears
	for i, cy := range s.cycleYears {
		if cy == next {
			s.cycleYears[i] = shifted
			break
		}
	}
	// Shifting by less than the cycle spacing cannot reorder the schedule,
	// but the invariant is cheap to re-check after any mutation.
	if err := checkIncreasing(plant, s.cycleYears); err != nil {
		return err
	}
	s.transUsed[shifted] = true
	return nil
}

// Schedule returns the plant's scheduled main-cycle years in ascending order.
func (t *Tracker) Schedule(plant string) ([]int, error) {
	s, ok := t.schedules[plant]
	if !ok {
		return nil, &ErrPlantNotFound{Plant: plant}
	}
	out := make([]int, len(s.cycleYears))
	copy(out, s.cycleYears)
	return out, nil
}

// Plants returns the scheduled plant names in sorted order.
func (t *Tracker) Plants() []string {
	names := make([]string, 0, len(t.schedules))
	for name := range t.schedules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TransitionalHorizonFactor is the TCO inflation applied when evaluating a
// transitional switch: the full cycle duration divided by the shortened
// effective investment horizon left inside the window.
func (t *Tracker) TransitionalHorizonFactor() float64 {
	horizon := t.cfg.CycleDurationYears - t.cfg.BufferTopYears - t.cfg.BufferTailYears
	return float64(t.cfg.CycleDurationYears) / float64(horizon)
}

// nextCycleYear returns the first scheduled cycle year strictly after year.
func (t *Tracker) nextCycleYear(s *schedule, year int) (int, bool) {
	for _, cy := range s.cycleYears {
		if cy > year {
			return cy, true
		}
	}
	return 0, false
}

// inTransWindow reports whether year falls inside the transitional window
// ahead of the next cycle year: past the top buffer after the previous cycle
// and clear of the tail buffer before the next.
func (t *Tracker) inTransWindow(year, next int) bool {
	prev := next - t.cfg.CycleDurationYears
	return year >= prev+t.cfg.BufferTopYears && year <= next-t.cfg.BufferTailYears-1
}

func checkIncreasing(plant string, years []int) error {
	for i := 1; i < len(years); i++ {
		if years[i] <= years[i-1] {
			return fmt.Errorf("plant %q cycle years not strictly increasing: %v", plant, years)
		}
	}
	return nil
}
