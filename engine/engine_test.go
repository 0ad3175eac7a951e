package engine

import (
	"testing"

	"github.com/ucp-tools/ucpschema"
)

func TestEngine_ValidAndInvalid(t *testing.T) {
	schema := ucpschema.Schema{
		"type":                 "object",
		"properties":           map[string]any{"name": map[string]any{"type": "string"}},
		"required":             []any{"name"},
		"additionalProperties": false,
	}

	e := New()
	compiled, err := e.Compile(schema)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if issues := compiled.Validate(map[string]any{"name": "ok"}); len(issues) != 0 {
		t.Fatalf("expected valid payload to produce no issues, got %v", issues)
	}

	issues := compiled.Validate(map[string]any{"id": "x"})
	if len(issues) == 0 {
		t.Fatalf("expected issues for missing required field and unexpected property")
	}
}

func TestEngine_CompileInvalidSchema(t *testing.T) {
	e := New()
	_, err := e.Compile(ucpschema.Schema{"type": 42})
	if err == nil {
		t.Fatalf("expected error compiling malformed schema")
	}
}
