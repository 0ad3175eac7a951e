package strictify

import (
	"reflect"
	"testing"

	"github.com/ucp-tools/ucpschema"
)

func TestInject_MissingBecomesClosed(t *testing.T) {
	schema := ucpschema.Schema{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
	}
	got, err := Inject(schema)
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if got["additionalProperties"] != false {
		t.Fatalf("expected additionalProperties: false, got %v", got["additionalProperties"])
	}
}

func TestInject_ExplicitTrueBecomesClosed(t *testing.T) {
	schema := ucpschema.Schema{
		"properties":           map[string]any{"a": map[string]any{"type": "string"}},
		"additionalProperties": true,
	}
	got, err := Inject(schema)
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if got["additionalProperties"] != false {
		t.Fatalf("expected true rewritten to false, got %v", got["additionalProperties"])
	}
}

func TestInject_ExplicitFalseUntouched(t *testing.T) {
	schema := ucpschema.Schema{
		"properties":           map[string]any{"a": map[string]any{"type": "string"}},
		"additionalProperties": false,
	}
	got, err := Inject(schema)
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if got["additionalProperties"] != false {
		t.Fatalf("expected false left as-is, got %v", got["additionalProperties"])
	}
}

func TestInject_SchemaAdditionalPropertiesUntouched(t *testing.T) {
	schema := ucpschema.Schema{
		"properties": map[string]any{"a": map[string]any{"type": "string"}},
		"additionalProperties": map[string]any{
			"type": "string",
		},
	}
	got, err := Inject(schema)
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	ap, ok := got["additionalProperties"].(map[string]any)
	if !ok {
		t.Fatalf("expected additionalProperties to remain a schema, got %v", got["additionalProperties"])
	}
	if ap["type"] != "string" {
		t.Fatalf("nested additionalProperties schema not preserved: %v", ap)
	}
}

func TestInject_Nested(t *testing.T) {
	schema := ucpschema.Schema{
		"type": "object",
		"properties": map[string]any{
			"address": map[string]any{
				"type":       "object",
				"properties": map[string]any{"city": map[string]any{"type": "string"}},
			},
		},
		"$defs": map[string]any{
			"Widget": map[string]any{
				"type":       "object",
				"properties": map[string]any{"id": map[string]any{"type": "string"}},
			},
		},
	}
	got, err := Inject(schema)
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	addr := got["properties"].(map[string]any)["address"].(map[string]any)
	if addr["additionalProperties"] != false {
		t.Fatalf("nested object under properties not closed: %v", addr)
	}
	widget := got["$defs"].(map[string]any)["Widget"].(map[string]any)
	if widget["additionalProperties"] != false {
		t.Fatalf("nested object under $defs not closed: %v", widget)
	}
}

func TestInject_NonObjectSchemaUntouched(t *testing.T) {
	schema := ucpschema.Schema{"type": "string"}
	got, err := Inject(schema)
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if _, ok := got["additionalProperties"]; ok {
		t.Fatalf("non-object schema must not get additionalProperties, got %v", got)
	}
}

func TestInject_Idempotent(t *testing.T) {
	schema := ucpschema.Schema{
		"type":       "object",
		"properties": map[string]any{"name": map[string]any{"type": "string"}},
	}
	once, err := Inject(schema)
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	twice, err := Inject(once)
	if err != nil {
		t.Fatalf("second Inject: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Inject is not idempotent:\nonce=%#v\ntwice=%#v", once, twice)
	}
}
