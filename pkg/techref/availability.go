package techref

// Availability maps each technology to the first year it can be adopted.
// Technologies absent from the map are treated as available from the model
// start.
type Availability map[Technology]int

// AvailableFrom returns the first adoption year for t.
func (a Availability) AvailableFrom(t Technology) int {
	if year, ok := a[t]; ok {
		return year
	}
	return ModelYearStart
}

// Check reports whether t can be adopted in year. Under a technology
// moratorium, transitional-phase technologies are blocked from the moratorium
// cutoff year onward: late adoption of an interim technology would strand the
// remainder of its investment cycle past the net-zero target.
func (a Availability) Check(t Technology, year int, moratorium bool) bool {
	if year < a.AvailableFrom(t) {
		return false
	}
	if moratorium && year >= TechMoratoriumYear && PhaseOf(t) == PhaseTransitional {
		return false
	}
	return true
}
