// Package lint implements the static linter (spec.md §1/§6): a thin,
// non-resolving traversal over UCP-annotated schema JSON that surfaces the
// shape problems the resolver would otherwise turn into a fatal
// SchemaError, plus a couple of advisory warnings.
//
// Diagnostics accumulate rather than short-circuit, mirroring the
// teacher's own soft-validation style (collect every problem, sort
// deterministically, let the caller decide what counts as failure).
// Codes: E001 invalid JSON, E002 missing file ref, E003 missing anchor,
// E004 invalid ucp_* shape, E005 unknown visibility, W001 missing $id,
// W002 unknown operation name.
package lint
