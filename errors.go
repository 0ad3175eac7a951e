package ucpschema

import "fmt"

// Exit codes shared by the validate/resolve CLI surface (spec.md §6).
const (
	ExitSuccess         = 0
	ExitPayloadInvalid  = 1
	ExitSchemaError     = 2
	ExitIoError         = 3
	ExitPathNotFound    = 2 // lint only; see lint package for its own table
	ExitLintClean       = 0
	ExitLintDiagnostics = 1
)

// SchemaError indicates a malformed or semantically invalid schema,
// annotation, or capability graph. Maps to exit code 2.
type SchemaError struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	if e == nil {
		return "schema error"
	}
	if e.Path == "" {
		return fmt.Sprintf("schema error: %s", e.Message)
	}
	return fmt.Sprintf("schema error at %s: %s", e.Path, e.Message)
}

func (e *SchemaError) ExitCode() int { return ExitSchemaError }

// SchemaValidationError reports that a payload did not conform to a schema.
// This is distinct from SchemaError: the schema itself was fine, the
// payload wasn't. Maps to exit code 1. Named SchemaValidationError (not
// spec.md's bare "ValidationError") to keep it unambiguous next to
// SchemaError.
type SchemaValidationError struct {
	Issues []ValidationIssue
}

// ValidationIssue is one engine-reported nonconformance.
type ValidationIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e *SchemaValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "payload does not conform to schema"
	}
	return fmt.Sprintf("payload does not conform to schema: %s: %s", e.Issues[0].Path, e.Issues[0].Message)
}

func (e *SchemaValidationError) ExitCode() int { return ExitPayloadInvalid }

// IoError wraps a file or network failure. Maps to exit code 3.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string {
	if e == nil {
		return "io error"
	}
	if e.Op == "" {
		return fmt.Sprintf("io error: %v", e.Err)
	}
	return fmt.Sprintf("io error: %s: %v", e.Op, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

func (e *IoError) ExitCode() int { return ExitIoError }

// UsageError indicates conflicting or missing inputs (e.g. an explicit
// schema without an explicit direction). Maps to exit code 2.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	if e == nil {
		return "usage error"
	}
	return "usage error: " + e.Message
}

func (e *UsageError) ExitCode() int { return ExitSchemaError }

// ExitCoder is implemented by every error kind in this taxonomy.
type ExitCoder interface {
	error
	ExitCode() int
}

// CodeFor returns the process exit code for err, defaulting to
// ExitSchemaError for any error that isn't one of this package's typed
// kinds (an unrecognized error is always treated as a schema-shaped
// failure, never as a silent success).
func CodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if ec, ok := err.(ExitCoder); ok {
		return ec.ExitCode()
	}
	return ExitSchemaError
}
