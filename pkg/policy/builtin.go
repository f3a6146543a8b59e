package policy

import (
	"time"
)

// GetBuiltinPolicies returns all built-in policies.
func GetBuiltinPolicies() []Policy {
	return []Policy{
		techMoratoriumPolicy(),
		unknownTechnologyPolicy(),
		endStateOnlyPolicy(),
	}
}

// techMoratoriumPolicy blocks transitional technologies once the scenario
// moratorium is in force. The rule is inert unless the scenario enables it.
func techMoratoriumPolicy() Policy {
	return Policy{
		Name:        "tech-moratorium",
		Description: "Blocks adoption of transitional technologies from the moratorium year onward",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"moratorium", "scenario"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package steelpath.tech

import rego.v1

deny contains violation if {
	input.scenario.moratorium_enabled
	input.year >= input.scenario.moratorium_year
	input.phase == "transitional"
	violation := {
		"message": sprintf("transitional technology %s blocked by moratorium in %d", [input.technology, input.year]),
		"severity": "error",
	}
}
`,
	}
}

// unknownTechnologyPolicy flags candidates outside the known master list.
func unknownTechnologyPolicy() Policy {
	return Policy{
		Name:        "unknown-technology",
		Description: "Warns when a candidate technology has no lifecycle phase, meaning it is not in the master list",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"validation"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package steelpath.validation

import rego.v1

deny contains violation if {
	input.phase == ""
	violation := {
		"message": sprintf("technology %s is not in the master technology list", [input.technology]),
		"severity": "warning",
	}
}
`,
	}
}

// endStateOnlyPolicy restricts adoption to end-state technologies. Disabled
// by default; scenarios opt in for aggressive decarbonization pathways.
func endStateOnlyPolicy() Policy {
	return Policy{
		Name:        "end-state-only",
		Description: "Blocks every candidate that is not an end-state technology",
		Severity:    SeverityError,
		Enabled:     false,
		Tags:        []string{"scenario", "strict"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package steelpath.strict

import rego.v1

deny contains violation if {
	input.phase != "end_state"
	violation := {
		"message": sprintf("technology %s is not an end-state technology", [input.technology]),
		"severity": "error",
	}
}
`,
	}
}
