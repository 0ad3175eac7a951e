// Package engine adapts github.com/kaptinlin/jsonschema, the Draft
// 2020-12 validation engine this core delegates payload validation to
// (spec.md §1 Non-goals: "full JSON Schema draft compliance ... the engine
// is delegated").
//
// Engine compiles a resolved/bundled/strictified schema once and validates
// payloads against it, translating the engine's hierarchical
// EvaluationResult into the flat []ucpschema.ValidationIssue shape
// spec.md §6 specifies for the validate surface.
package engine
