package engine

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/kaptinlin/jsonschema"

	"github.com/ucp-tools/ucpschema"
)

// Engine validates payloads against a compiled schema using
// github.com/kaptinlin/jsonschema.
type Engine struct {
	compiler *jsonschema.Compiler
}

// New returns an Engine with a fresh jsonschema.Compiler.
func New() *Engine {
	return &Engine{compiler: jsonschema.NewCompiler()}
}

// Compile builds a validator from schema. schema should already be
// resolved, bundled, and (if requested) strict-injected.
func (e *Engine) Compile(schema ucpschema.Schema) (*Compiled, error) {
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, &ucpschema.SchemaError{Message: fmt.Sprintf("marshal schema for engine: %v", err)}
	}
	compiled, err := e.compiler.Compile(b)
	if err != nil {
		return nil, &ucpschema.SchemaError{Message: fmt.Sprintf("compile schema: %v", err)}
	}
	return &Compiled{schema: compiled}, nil
}

// Compiled wraps a single compiled schema ready for repeated validation.
type Compiled struct {
	schema *jsonschema.Schema
}

// Validate checks payload against the compiled schema and returns the
// flattened list of non-conformances, empty when payload is valid.
func (c *Compiled) Validate(payload any) []ucpschema.ValidationIssue {
	result := c.schema.Validate(payload)
	list := result.ToList(false)

	var issues []ucpschema.ValidationIssue
	collectIssues(list, &issues)
	return issues
}

func collectIssues(list *jsonschema.List, issues *[]ucpschema.ValidationIssue) {
	if list == nil {
		return
	}
	path := list.InstanceLocation
	if path == "" {
		path = "/"
	}
	keys := make([]string, 0, len(list.Errors))
	for k := range list.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		*issues = append(*issues, ucpschema.ValidationIssue{Path: path, Message: list.Errors[k]})
	}
	for i := range list.Details {
		collectIssues(&list.Details[i], issues)
	}
}
