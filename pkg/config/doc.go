// Package config loads and validates scenario definitions.
//
// A scenario is a single YAML document that names the run, bounds the year
// range, selects the ranking mode and weights, toggles the technology
// moratorium and resource constraints, and carries the reference datasets:
// the plant roster, technology availability years, TCO and abatement
// tables, resource capacity curves, and per-ton usage intensities.
//
// Parsing rejects unknown fields, struct tags are enforced with
// go-playground/validator, and cross-field rules (duplicate plants,
// unknown technologies or resources) are checked afterwards. The Build*
// methods convert a validated scenario into the concrete data providers
// the solver consumes.
//
// Usage:
//
//	loaded, err := config.NewLoader().Load("scenario.yaml")
//	roster := loaded.Scenario.BuildRoster()
//	tables := loaded.Scenario.BuildCostTables()
package config
