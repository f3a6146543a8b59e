// Package techref holds the static reference data for the steel technology
// landscape: the technology master list, the allowed switch adjacency, furnace
// groupings, lifecycle phases, and the resource categories each technology
// draws on. Pure data and lookups, no mutable state.
package techref

// Technology is an enumerated steelmaking technology drawn from the fixed
// master list. The zero value is not a valid technology.
type Technology string

// Production technologies.
const (
	TechAvgBFBOF              Technology = "Avg BF-BOF"
	TechBATBFBOF              Technology = "BAT BF-BOF"
	TechBATBFBOFBioPCI        Technology = "BAT BF-BOF_bio PCI"
	TechBATBFBOFH2PCI         Technology = "BAT BF-BOF_H2 PCI"
	TechBATBFBOFCCUS          Technology = "BAT BF-BOF+CCUS"
	TechBATBFBOFBECCUS        Technology = "BAT BF-BOF+BECCUS"
	TechBATBFBOFCCU           Technology = "BAT BF-BOF+CCU"
	TechDRIMeltBOF            Technology = "DRI-Melt-BOF"
	TechDRIMeltBOFZeroCH2     Technology = "DRI-Melt-BOF_100% zero-C H2"
	TechDRIMeltBOFCCUS        Technology = "DRI-Melt-BOF+CCUS"
	TechDRIEAF                Technology = "DRI-EAF"
	TechDRIEAFBioCH4          Technology = "DRI-EAF_50% bio-CH4"
	TechDRIEAFGreenH2         Technology = "DRI-EAF_50% green H2"
	TechDRIEAFCCUS            Technology = "DRI-EAF+CCUS"
	TechDRIEAF100GreenH2      Technology = "DRI-EAF_100% green H2"
	TechSmeltingReduction     Technology = "Smelting Reduction"
	TechSmeltingReductionCCUS Technology = "Smelting Reduction+CCUS"
	TechEAF                   Technology = "EAF"
	TechElectrolyzerEAF       Technology = "Electrolyzer-EAF"
	TechElectrowinningEAF     Technology = "Electrowinning-EAF"
)

// Terminal (non-producing) states. A plant in either state never switches
// again.
const (
	TechClosePlant   Technology = "Close plant"
	TechNotOperating Technology = "Not operating"
)

// MasterList is the fixed list of switchable technologies, in canonical order.
var MasterList = []Technology{
	TechAvgBFBOF,
	TechBATBFBOF,
	TechBATBFBOFBioPCI,
	TechBATBFBOFH2PCI,
	TechBATBFBOFCCUS,
	TechBATBFBOFBECCUS,
	TechBATBFBOFCCU,
	TechDRIMeltBOF,
	TechDRIMeltBOFZeroCH2,
	TechDRIMeltBOFCCUS,
	TechDRIEAF,
	TechDRIEAFBioCH4,
	TechDRIEAFGreenH2,
	TechDRIEAFCCUS,
	TechDRIEAF100GreenH2,
	TechSmeltingReduction,
	TechSmeltingReductionCCUS,
	TechEAF,
	TechElectrolyzerEAF,
	TechElectrowinningEAF,
}

// SwitchDict is the directed technology switch relation. Technology A may
// switch to technology B only if B appears in SwitchDict[A]. The relation is
// reflexive: every technology can switch to itself, representing no change.
var SwitchDict = map[Technology][]Technology{
	TechAvgBFBOF: {
		TechAvgBFBOF,
		TechBATBFBOF,
		TechBATBFBOFBioPCI,
		TechBATBFBOFH2PCI,
		TechBATBFBOFCCUS,
		TechBATBFBOFBECCUS,
		TechBATBFBOFCCU,
		TechDRIMeltBOF,
		TechDRIMeltBOFZeroCH2,
		TechDRIMeltBOFCCUS,
		TechDRIEAF,
		TechDRIEAFBioCH4,
		TechDRIEAFGreenH2,
		TechDRIEAFCCUS,
		TechDRIEAF100GreenH2,
		TechSmeltingReduction,
		TechSmeltingReductionCCUS,
		TechEAF,
		TechElectrolyzerEAF,
		TechElectrowinningEAF,
	},
	TechBATBFBOF: {
		TechBATBFBOF,
		TechBATBFBOFBioPCI,
		TechBATBFBOFH2PCI,
		TechBATBFBOFCCUS,
		TechBATBFBOFBECCUS,
		TechBATBFBOFCCU,
		TechDRIMeltBOF,
		TechDRIMeltBOFZeroCH2,
		TechDRIMeltBOFCCUS,
		TechDRIEAF,
		TechDRIEAFBioCH4,
		TechDRIEAFGreenH2,
		TechDRIEAFCCUS,
		TechDRIEAF100GreenH2,
		TechSmeltingReduction,
		TechSmeltingReductionCCUS,
		TechEAF,
		TechElectrolyzerEAF,
		TechElectrowinningEAF,
	},
	TechBATBFBOFBioPCI: {
		TechBATBFBOFBioPCI,
		TechBATBFBOFCCUS,
		TechBATBFBOFBECCUS,
		TechBATBFBOFCCU,
		TechDRIMeltBOFZeroCH2,
		TechDRIMeltBOFCCUS,
		TechDRIEAFCCUS,
		TechDRIEAF100GreenH2,
		TechSmeltingReductionCCUS,
		TechEAF,
		TechElectrolyzerEAF,
		TechElectrowinningEAF,
	},
	TechBATBFBOFH2PCI: {
		TechBATBFBOFH2PCI,
		TechBATBFBOFCCUS,
		TechBATBFBOFBECCUS,
		TechBATBFBOFCCU,
		TechDRIMeltBOFZeroCH2,
		TechDRIMeltBOFCCUS,
		TechDRIEAFCCUS,
		TechDRIEAF100GreenH2,
		TechSmeltingReductionCCUS,
		TechEAF,
		TechElectrolyzerEAF,
		TechElectrowinningEAF,
	},
	TechDRIMeltBOF: {
		TechDRIMeltBOF,
		TechDRIMeltBOFZeroCH2,
		TechDRIMeltBOFCCUS,
	},
	TechDRIEAF: {
		TechDRIEAF,
		TechDRIEAFBioCH4,
		TechDRIEAFGreenH2,
		TechDRIEAFCCUS,
		TechDRIEAF100GreenH2,
		TechSmeltingReduction,
		TechSmeltingReductionCCUS,
		TechElectrolyzerEAF,
		TechElectrowinningEAF,
	},
	TechDRIEAFBioCH4: {
		TechDRIEAFBioCH4,
		TechSmeltingReductionCCUS,
		TechElectrolyzerEAF,
		TechDRIEAFCCUS,
		TechDRIEAF100GreenH2,
	},
	TechDRIEAFGreenH2: {
		TechDRIEAFGreenH2,
		TechSmeltingReductionCCUS,
		TechElectrolyzerEAF,
		TechDRIEAFCCUS,
		TechDRIEAF100GreenH2,
	},
	TechSmeltingReduction: {
		TechSmeltingReduction,
		TechSmeltingReductionCCUS,
	},
	TechBATBFBOFCCUS:          {TechBATBFBOFCCUS},
	TechBATBFBOFBECCUS:        {TechBATBFBOFBECCUS},
	TechBATBFBOFCCU:           {TechBATBFBOFCCU},
	TechDRIMeltBOFZeroCH2:     {TechDRIMeltBOFZeroCH2},
	TechDRIMeltBOFCCUS:        {TechDRIMeltBOFCCUS},
	TechDRIEAFCCUS:            {TechDRIEAFCCUS},
	TechDRIEAF100GreenH2:      {TechDRIEAF100GreenH2},
	TechSmeltingReductionCCUS: {TechSmeltingReductionCCUS},
	TechEAF:                   {TechEAF},
	TechElectrolyzerEAF:       {TechElectrolyzerEAF},
	TechElectrowinningEAF:     {TechElectrowinningEAF},
}

// SwitchTargets returns the technologies reachable from t, including t itself.
// The returned slice is a copy and safe to mutate.
func SwitchTargets(t Technology) []Technology {
	targets, ok := SwitchDict[t]
	if !ok {
		return nil
	}
	out := make([]Technology, len(targets))
	copy(out, targets)
	return out
}

// IsKnown reports whether t is a member of the switchable master list.
func IsKnown(t Technology) bool {
	_, ok := SwitchDict[t]
	return ok
}

// IsTerminal reports whether t is a terminal non-producing state.
func IsTerminal(t Technology) bool {
	return t == TechClosePlant || t == TechNotOperating
}

// FurnaceGroup identifies a family of technologies sharing core process
// equipment. Transitional switches may not cross family boundaries unless the
// current technology is already an end-state technology.
type FurnaceGroup string

const (
	GroupBlastFurnace      FurnaceGroup = "blast_furnace"
	GroupDRIBOF            FurnaceGroup = "dri-bof"
	GroupDRIEAF            FurnaceGroup = "dri-eaf"
	GroupSmeltingReduction FurnaceGroup = "smelting_reduction"
	GroupEAFBasic          FurnaceGroup = "eaf-basic"
	GroupEAFAdvanced       FurnaceGroup = "eaf-advanced"
)

// FurnaceGroups maps each production family to its member technologies.
var FurnaceGroups = map[FurnaceGroup][]Technology{
	GroupBlastFurnace: {
		TechAvgBFBOF,
		TechBATBFBOF,
		TechBATBFBOFBioPCI,
		TechBATBFBOFH2PCI,
		TechBATBFBOFCCUS,
		TechBATBFBOFBECCUS,
		TechBATBFBOFCCU,
	},
	GroupDRIBOF: {TechDRIMeltBOF, TechDRIMeltBOFZeroCH2, TechDRIMeltBOFCCUS},
	GroupDRIEAF: {
		TechDRIEAF,
		TechDRIEAFBioCH4,
		TechDRIEAFGreenH2,
		TechDRIEAFCCUS,
		TechDRIEAF100GreenH2,
	},
	GroupSmeltingReduction: {TechSmeltingReduction, TechSmeltingReductionCCUS},
	GroupEAFBasic:          {TechEAF},
	GroupEAFAdvanced:       {TechElectrolyzerEAF, TechElectrowinningEAF},
}

// FurnaceGroupOf returns the production family members of t, including t.
// Returns nil for technologies outside the master list.
func FurnaceGroupOf(t Technology) []Technology {
	for _, members := range FurnaceGroups {
		for _, m := range members {
			if m == t {
				out := make([]Technology, len(members))
				copy(out, members)
				return out
			}
		}
	}
	return nil
}

// GroupNameOf returns the production family name of t, or the empty
// group for technologies outside the master list.
func GroupNameOf(t Technology) FurnaceGroup {
	for name, members := range FurnaceGroups {
		for _, m := range members {
			if m == t {
				return name
			}
		}
	}
	return ""
}

// Phase is the lifecycle phase of a technology on the decarbonization path.
type Phase string

const (
	PhaseInitial      Phase = "initial"
	PhaseTransitional Phase = "transitional"
	PhaseEndState     Phase = "end_state"
)

// TechnologyPhases maps each lifecycle phase to its member technologies.
var TechnologyPhases = map[Phase][]Technology{
	PhaseInitial: {TechAvgBFBOF},
	PhaseTransitional: {
		TechBATBFBOF,
		TechBATBFBOFBioPCI,
		TechBATBFBOFH2PCI,
		TechDRIEAF,
		TechDRIEAFBioCH4,
		TechDRIEAFGreenH2,
		TechSmeltingReduction,
		TechDRIMeltBOF,
	},
	PhaseEndState: {
		TechBATBFBOFCCUS,
		TechDRIEAF100GreenH2,
		TechDRIEAFCCUS,
		TechEAF,
		TechBATBFBOFCCU,
		TechBATBFBOFBECCUS,
		TechElectrolyzerEAF,
		TechSmeltingReductionCCUS,
		TechDRIMeltBOFCCUS,
		TechDRIMeltBOFZeroCH2,
		TechElectrowinningEAF,
	},
}

// PhaseOf returns the lifecycle phase of t. The empty phase is returned for
// technologies outside the master list (including terminal states).
func PhaseOf(t Technology) Phase {
	for phase, members := range TechnologyPhases {
		for _, m := range members {
			if m == t {
				return phase
			}
		}
	}
	return ""
}

// IsEndState reports whether t is a long-term decarbonized destination
// technology. End-state technologies are exempt from furnace-group
// restrictions on transitional switches.
func IsEndState(t Technology) bool {
	return PhaseOf(t) == PhaseEndState
}
