// Package resolver implements the Annotation Resolver (spec.md §4.1): it
// rewrites a UCP-annotated schema into a direction- and operation-specific
// plain JSON Schema.
//
// Resolve descends the same nested-schema keywords the strict injector
// descends (properties, items, additionalProperties, $defs/definitions,
// allOf/anyOf/oneOf, not), applying the visibility rule at every annotated
// property:
//
//	omit      -> remove the property and its name from required
//	required  -> keep the property, strip the annotation, add to required
//	optional  -> keep the property, strip the annotation, remove from required
//	unannotated for the requested operation -> leave untouched
//
// Resolve is idempotent: resolving already-resolved output with the same
// (direction, operation) is a no-op: the first pass strips every annotation
// that applies to that (direction, operation), and a per-operation
// annotation that does not name the operation is kept unchanged by both
// passes alike.
package resolver
