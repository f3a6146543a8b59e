package policy

import (
	"time"

	"github.com/steelpath/steelpath/pkg/techref"
)

// Severity represents the severity level of a policy violation.
type Severity string

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = "info"

	// SeverityWarning is for warnings that should be reviewed.
	SeverityWarning Severity = "warning"

	// SeverityError is for violations that block technology adoption.
	SeverityError Severity = "error"
)

// Policy represents a technology adoption rule with its Rego code.
type Policy struct {
	// Name is the unique name of the policy.
	Name string `json:"name"`

	// Description provides a human-readable description.
	Description string `json:"description"`

	// Rego contains the Rego policy code.
	Rego string `json:"rego"`

	// Severity is the default severity for violations.
	Severity Severity `json:"severity"`

	// Enabled indicates if the policy is active.
	Enabled bool `json:"enabled"`

	// Tags are labels for organizing policies.
	Tags []string `json:"tags,omitempty"`

	// Metadata contains additional policy metadata.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// CreatedAt is when the policy was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the policy was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// Violation represents a single policy violation.
type Violation struct {
	// Policy is the name of the policy that was violated.
	Policy string `json:"policy"`

	// Technology is the technology that violated the policy.
	Technology string `json:"technology,omitempty"`

	// Message is a human-readable violation message.
	Message string `json:"message"`

	// Severity is the violation severity level.
	Severity Severity `json:"severity"`
}

// Result represents the outcome of evaluating the loaded policies
// against a single technology adoption.
type Result struct {
	// Allowed indicates if the adoption is allowed.
	Allowed bool `json:"allowed"`

	// Violations lists all policy violations, blocking or not.
	Violations []Violation `json:"violations,omitempty"`

	// Warnings lists evaluation problems that did not block the decision.
	Warnings []string `json:"warnings,omitempty"`

	// EvaluatedAt is when the policies were evaluated.
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// TechInput is the input document handed to Rego for each evaluation.
type TechInput struct {
	// Technology is the candidate technology name.
	Technology string `json:"technology"`

	// Year is the simulated year of the adoption decision.
	Year int `json:"year"`

	// Phase is the rollout phase of the technology.
	Phase string `json:"phase"`

	// FurnaceGroup is the production family of the technology.
	FurnaceGroup string `json:"furnace_group"`

	// Scenario carries scenario-level toggles visible to rules.
	Scenario ScenarioInput `json:"scenario"`
}

// ScenarioInput exposes scenario settings to policy rules.
type ScenarioInput struct {
	// MoratoriumEnabled reports whether the transitional-technology
	// moratorium applies in this run.
	MoratoriumEnabled bool `json:"moratorium_enabled"`

	// MoratoriumYear is the first year the moratorium applies.
	MoratoriumYear int `json:"moratorium_year"`
}

// NewTechInput builds the evaluation input for a candidate technology.
func NewTechInput(tech techref.Technology, year int, scenario ScenarioInput) TechInput {
	return TechInput{
		Technology:   string(tech),
		Year:         year,
		Phase:        string(techref.PhaseOf(tech)),
		FurnaceGroup: string(techref.GroupNameOf(tech)),
		Scenario:     scenario,
	}
}
