package bundler

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/ucp-tools/ucpschema"
)

type fetcherFunc func(u *url.URL) ([]byte, error)

func (f fetcherFunc) Fetch(u *url.URL) ([]byte, error) { return f(u) }

type fileReaderFunc func(p string) ([]byte, error)

func (f fileReaderFunc) ReadFile(p string) ([]byte, error) { return f(p) }

func mustBase(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

func TestBundle_SelfRefPreserved(t *testing.T) {
	schema := ucpschema.Schema{"$ref": "#"}
	b := &Bundler{Base: mustBase(t, "schemas/root.json")}
	got, err := b.Bundle(schema)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	if got["$ref"] != "#" {
		t.Fatalf("expected self $ref preserved, got %v", got)
	}
}

func TestBundle_InternalRefPreserved(t *testing.T) {
	schema := ucpschema.Schema{
		"properties": map[string]any{
			"node": map[string]any{"$ref": "#/$defs/Node"},
		},
	}
	b := &Bundler{Base: mustBase(t, "schemas/root.json")}
	got, err := b.Bundle(schema)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	node := got["properties"].(map[string]any)["node"].(map[string]any)
	if node["$ref"] != "#/$defs/Node" {
		t.Fatalf("expected internal $ref preserved, got %v", node)
	}
}

func TestBundle_ExternalRelativeInlined(t *testing.T) {
	reads := map[string]string{
		"schemas/types/buyer.json": `{"type":"object","properties":{"email":{"type":"string"}}}`,
	}
	fr := fileReaderFunc(func(p string) ([]byte, error) {
		content, ok := reads[p]
		if !ok {
			return nil, fmt.Errorf("no such file: %s", p)
		}
		return []byte(content), nil
	})

	schema := ucpschema.Schema{
		"properties": map[string]any{
			"buyer": map[string]any{"$ref": "types/buyer.json"},
		},
	}
	b := &Bundler{Base: mustBase(t, "schemas/root.json"), ReadFile: fr}
	got, err := b.Bundle(schema)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	buyer := got["properties"].(map[string]any)["buyer"].(map[string]any)
	if buyer["type"] != "object" {
		t.Fatalf("expected inlined document, got %v", buyer)
	}
	if _, hasRef := buyer["$ref"]; hasRef {
		t.Fatalf("expected $ref replaced by inlined content, still present: %v", buyer)
	}
}

func TestBundle_ExternalRelativeWithFragment(t *testing.T) {
	reads := map[string]string{
		"schemas/types/buyer.json": `{"$defs":{"Buyer":{"type":"object","properties":{"email":{"type":"string"}}}}}`,
	}
	fr := fileReaderFunc(func(p string) ([]byte, error) {
		content, ok := reads[p]
		if !ok {
			return nil, fmt.Errorf("no such file: %s", p)
		}
		return []byte(content), nil
	})

	schema := ucpschema.Schema{
		"properties": map[string]any{
			"buyer": map[string]any{"$ref": "types/buyer.json#/$defs/Buyer"},
		},
	}
	b := &Bundler{Base: mustBase(t, "schemas/root.json"), ReadFile: fr}
	got, err := b.Bundle(schema)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	buyer := got["properties"].(map[string]any)["buyer"].(map[string]any)
	if buyer["type"] != "object" {
		t.Fatalf("expected navigated fragment inlined, got %v", buyer)
	}
}

func TestBundle_ExternalDocInternalRefResolvesAgainstLoadedDoc(t *testing.T) {
	reads := map[string]string{
		"schemas/types/buyer.json": `{
			"$defs": {
				"address": {"type": "object", "properties": {"city": {"type": "string"}}}
			},
			"type": "object",
			"properties": {
				"shipping": {"$ref": "#/$defs/address"}
			}
		}`,
	}
	fr := fileReaderFunc(func(p string) ([]byte, error) {
		content, ok := reads[p]
		if !ok {
			return nil, fmt.Errorf("no such file: %s", p)
		}
		return []byte(content), nil
	})

	schema := ucpschema.Schema{
		"properties": map[string]any{
			"buyer": map[string]any{"$ref": "types/buyer.json"},
		},
	}
	b := &Bundler{Base: mustBase(t, "schemas/root.json"), ReadFile: fr}
	got, err := b.Bundle(schema)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}

	buyer := got["properties"].(map[string]any)["buyer"].(map[string]any)
	shipping, ok := buyer["properties"].(map[string]any)["shipping"].(map[string]any)
	if !ok {
		t.Fatalf("expected shipping property, got %v", buyer)
	}
	if _, hasRef := shipping["$ref"]; hasRef {
		t.Fatalf("expected sibling $defs ref inlined, still present: %v", shipping)
	}
	if shipping["type"] != "object" {
		t.Fatalf("expected address $defs entry inlined, got %v", shipping)
	}
	city, ok := shipping["properties"].(map[string]any)["city"].(map[string]any)
	if !ok || city["type"] != "string" {
		t.Fatalf("expected nested address schema carried over, got %v", shipping)
	}
}

func TestBundle_AbsoluteURLFetched(t *testing.T) {
	fetch := fetcherFunc(func(u *url.URL) ([]byte, error) {
		if u.String() != "https://ucp.dev/schemas/buyer.json" {
			return nil, fmt.Errorf("unexpected fetch: %s", u)
		}
		return []byte(`{"type":"string"}`), nil
	})
	schema := ucpschema.Schema{
		"properties": map[string]any{
			"buyer": map[string]any{"$ref": "https://ucp.dev/schemas/buyer.json"},
		},
	}
	b := &Bundler{Base: mustBase(t, "https://ucp.dev/schemas/root.json"), Fetch: fetch}
	got, err := b.Bundle(schema)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	buyer := got["properties"].(map[string]any)["buyer"].(map[string]any)
	if buyer["type"] != "string" {
		t.Fatalf("expected fetched document inlined, got %v", buyer)
	}
}

func TestBundle_CycleRejected(t *testing.T) {
	reads := map[string]string{
		"schemas/a.json": `{"$ref":"b.json"}`,
		"schemas/b.json": `{"$ref":"a.json"}`,
	}
	fr := fileReaderFunc(func(p string) ([]byte, error) {
		content, ok := reads[p]
		if !ok {
			return nil, fmt.Errorf("no such file: %s", p)
		}
		return []byte(content), nil
	})

	schema := ucpschema.Schema{"$ref": "a.json"}
	b := &Bundler{Base: mustBase(t, "schemas/root.json"), ReadFile: fr}
	if _, err := b.Bundle(schema); err == nil {
		t.Fatalf("expected cycle error, got nil")
	}
}

func TestBundle_MissingFileIsIoError(t *testing.T) {
	fr := fileReaderFunc(func(p string) ([]byte, error) {
		return nil, fmt.Errorf("not found")
	})
	schema := ucpschema.Schema{"$ref": "missing.json"}
	b := &Bundler{Base: mustBase(t, "schemas/root.json"), ReadFile: fr}
	_, err := b.Bundle(schema)
	if err == nil {
		t.Fatalf("expected error")
	}
	var ioErr *ucpschema.IoError
	if !asIoError(err, &ioErr) {
		t.Fatalf("expected *ucpschema.IoError, got %T: %v", err, err)
	}
}

func asIoError(err error, target **ucpschema.IoError) bool {
	ioErr, ok := err.(*ucpschema.IoError)
	if !ok {
		return false
	}
	*target = ioErr
	return true
}
