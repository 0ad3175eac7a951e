// Package ucpschema provides the core data model and error taxonomy for
// UCP-annotated JSON Schema tooling: schemas whose properties carry
// visibility annotations (ucp_request / ucp_response) declaring how each
// field appears per operation and per direction.
//
// The core is organized as a pipeline of independent components, each in its
// own subpackage:
//
//   - resolver:    rewrites an annotated schema into a plain JSON Schema for
//     a given (direction, operation).
//   - bundler:     inlines cross-file $ref targets into a self-contained
//     schema.
//   - capability:  discovers a root capability and its extensions from a
//     self-describing payload and composes them via allOf.
//   - strictify:   closes object schemas by inserting
//     additionalProperties: false at every nested object site.
//   - engine:      adapts a third-party JSON Schema validation engine to the
//     narrow interface the core needs.
//   - driver:      orchestrates the above into the resolve/validate
//     operations described in SPEC_FULL.md.
//   - lint:        a thin traversal over the annotation rules that flags
//     malformed schemas without resolving them.
//
// cmd/ucp wires all of the above into a CLI (resolve/validate/lint
// subcommands); it is ambient, not part of the hard core.
//
// This package itself holds only the data model shared by all of them:
// Schema, Visibility, Direction, Operation, Annotation, CapabilityEntry, and
// the stable error-kind taxonomy (SchemaError, SchemaValidationError,
// IoError, UsageError).
//
// # Lossless JSON
//
// CapabilityEntry preserves unknown and "x-*" fields on unmarshal → marshal,
// the same forward-compatibility discipline the wider UCP tooling pack
// applies to its own wire types.
//
// # Concurrency
//
// All types here are immutable after construction; read-only concurrent use
// is safe. No component in this module retains state between calls.
package ucpschema
