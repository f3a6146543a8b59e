package techref

// Model year bounds.
const (
	ModelYearStart = 2020
	ModelYearEnd   = 2050
)

// Investment cycle parameters. A plant re-evaluates its technology every
// InvestmentCycleDurationYears, with the first cycle year offset by up to
// InvestmentCycleVarianceYears to spread re-investments across the fleet.
// The transitional window between cycles excludes the first BufferTop years
// after the previous cycle and the last BufferTail years before the next.
const (
	InvestmentCycleDurationYears = 20
	InvestmentCycleVarianceYears = 3
	InvestmentBufferTopYears     = 3
	InvestmentBufferTailYears    = 8
)

// TechMoratoriumYear is the cutoff after which transitional technologies can
// no longer be adopted when a scenario enables the technology moratorium.
const TechMoratoriumYear = 2030

// Ranked-mode thresholds. TCO tiers are relative to the cheapest candidate;
// abatement tiers are absolute cutoffs in tCO2/ton of abated emissions.
const (
	TCORank2Scaler = 1.3
	TCORank1Scaler = 1.1

	// From switching Avg BF-BOF to BAT BF-BOF+CCUS.
	AbatementRank2Cutoff = 2.37656461606311
	// From switching Avg BF-BOF to BAT BF-BOF_bio PCI.
	AbatementRank3Cutoff = 0.932690243851946
)
