// Package policy provides Open Policy Agent (OPA) integration for
// technology adoption rules.
//
// Scenario-level restrictions such as the transitional-technology
// moratorium are expressed as Rego rules rather than hard-coded checks, so
// operators can ship additional .rego files next to a scenario and have
// them enforced during solving. A rule blocks a candidate technology by
// adding an entry to its package's deny set.
//
// The evaluation input for each candidate has this shape:
//
//	{
//	  "technology": "DRI-EAF",
//	  "year": 2035,
//	  "phase": "transitional",
//	  "furnace_group": "dri-eaf",
//	  "scenario": {"moratorium_enabled": true, "moratorium_year": 2030}
//	}
//
// Built-in policies cover the moratorium, master-list validation, and an
// opt-in end-state-only restriction. Custom policies are loaded from files
// or directories with Engine.LoadPolicies, and the Loader can watch those
// paths and hot-reload on change.
//
// Usage:
//
//	engine, err := policy.NewEngine(logger)
//	engine.SetScenario(policy.ScenarioInput{MoratoriumEnabled: true, MoratoriumYear: 2030})
//	ok, err := engine.Allowed(ctx, techref.TechDRIEAF, 2035)
package policy
