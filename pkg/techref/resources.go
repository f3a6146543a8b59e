package techref

// ResourceCategory identifies a globally constrained resource pool that
// competing plants draw from within a simulation year.
type ResourceCategory string

const (
	ResourceBiomass ResourceCategory = "biomass"
	ResourceScrap   ResourceCategory = "scrap"
	ResourceCCS     ResourceCategory = "ccs"
	ResourceUsedCO2 ResourceCategory = "co2"
)

// ConstrainedResources is the fixed list of resource categories subject to
// shared capacity ceilings, in evaluation order.
var ConstrainedResources = []ResourceCategory{
	ResourceBiomass,
	ResourceScrap,
	ResourceCCS,
	ResourceUsedCO2,
}

// ResourceContainerRef maps each constrained category to the underlying
// material flows it aggregates.
var ResourceContainerRef = map[ResourceCategory][]string{
	ResourceBiomass: {"Biomass", "Biomethane"},
	ResourceScrap:   {"Scrap"},
	ResourceCCS:     {"Captured CO2"},
	ResourceUsedCO2: {"Used CO2"},
}

// TechResourceChecks lists, per technology, the constrained resource
// categories its operation draws on. Technologies absent from the map consume
// no globally constrained resource.
var TechResourceChecks = map[Technology][]ResourceCategory{
	TechBATBFBOFBioPCI:        {ResourceBiomass},
	TechDRIEAFBioCH4:          {ResourceBiomass},
	TechBATBFBOFBECCUS:        {ResourceBiomass, ResourceCCS},
	TechBATBFBOFCCUS:          {ResourceCCS},
	TechBATBFBOFCCU:           {ResourceUsedCO2},
	TechDRIMeltBOFCCUS:        {ResourceCCS},
	TechDRIEAFCCUS:            {ResourceCCS},
	TechSmeltingReductionCCUS: {ResourceCCS},
	TechEAF:                   {ResourceScrap},
	TechElectrolyzerEAF:       {ResourceScrap},
	TechElectrowinningEAF:     {ResourceScrap},
}

// ConstrainedResourcesFor returns the resource categories checked for t, in
// evaluation order. Returns nil when t is unconstrained.
func ConstrainedResourcesFor(t Technology) []ResourceCategory {
	cats, ok := TechResourceChecks[t]
	if !ok {
		return nil
	}
	out := make([]ResourceCategory, len(cats))
	copy(out, cats)
	return out
}
