package capability

import (
	"fmt"
	"net/url"
	"testing"
)

type fetcherFunc func(u *url.URL) ([]byte, error)

func (f fetcherFunc) Fetch(u *url.URL) ([]byte, error) { return f(u) }

type fileReaderFunc func(p string) ([]byte, error)

func (f fileReaderFunc) ReadFile(p string) ([]byte, error) { return f(p) }

func TestInferDirection(t *testing.T) {
	response := map[string]any{"ucp": map[string]any{"capabilities": map[string]any{}}}
	d, err := InferDirection(response)
	if err != nil || d != "response" {
		t.Fatalf("InferDirection(response) = %v, %v", d, err)
	}

	request := map[string]any{"ucp": map[string]any{"meta": map[string]any{"profile": "v1"}}}
	d, err = InferDirection(request)
	if err != nil || d != "request" {
		t.Fatalf("InferDirection(request) = %v, %v", d, err)
	}

	if _, err := InferDirection(map[string]any{}); err == nil {
		t.Fatalf("expected error for non-self-describing payload")
	}
}

func TestCompose_S4(t *testing.T) {
	docs := map[string]string{
		"https://ucp.dev/schemas/checkout.json": `{"type":"object","properties":{"total":{"type":"number"}},"required":["total"]}`,
		"https://ucp.dev/schemas/discount.json": `{"$defs":{"checkout":{"properties":{"discounts":{"type":"array"}}}}}`,
	}
	fetch := fetcherFunc(func(u *url.URL) ([]byte, error) {
		content, ok := docs[u.String()]
		if !ok {
			return nil, fmt.Errorf("no such doc: %s", u)
		}
		return []byte(content), nil
	})

	payload := []byte(`{
		"ucp": {
			"capabilities": {
				"checkout": [{"version": "1.0", "schema": "https://ucp.dev/schemas/checkout.json"}],
				"discount": [{"version": "1.0", "schema": "https://ucp.dev/schemas/discount.json", "extends": "checkout"}]
			}
		}
	}`)

	c := &Composer{Fetch: fetch}
	got, err := c.Compose(payload)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	allOf, ok := got["allOf"].([]any)
	if !ok || len(allOf) != 2 {
		t.Fatalf("expected allOf with 2 entries, got %v", got["allOf"])
	}
	root := allOf[0].(map[string]any)
	if root["type"] != "object" {
		t.Fatalf("expected root doc first in allOf, got %v", root)
	}
	contribution := allOf[1].(map[string]any)
	props, ok := contribution["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected discount contribution to carry properties, got %v", contribution)
	}
	if _, ok := props["discounts"]; !ok {
		t.Fatalf("expected discounts property in contribution: %v", props)
	}
}

func TestCompose_MissingDefsIsEmptyObject(t *testing.T) {
	docs := map[string]string{
		"https://ucp.dev/schemas/checkout.json": `{"type":"object"}`,
		"https://ucp.dev/schemas/discount.json": `{"type":"object"}`,
	}
	fetch := fetcherFunc(func(u *url.URL) ([]byte, error) {
		content, ok := docs[u.String()]
		if !ok {
			return nil, fmt.Errorf("no such doc: %s", u)
		}
		return []byte(content), nil
	})
	payload := []byte(`{"ucp":{"capabilities":{
		"checkout": [{"version":"1.0","schema":"https://ucp.dev/schemas/checkout.json"}],
		"discount": [{"version":"1.0","schema":"https://ucp.dev/schemas/discount.json","extends":"checkout"}]
	}}}`)
	c := &Composer{Fetch: fetch}
	got, err := c.Compose(payload)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	allOf := got["allOf"].([]any)
	contribution := allOf[1].(map[string]any)
	if len(contribution) != 0 {
		t.Fatalf("expected empty-object contribution when $defs missing, got %v", contribution)
	}
}

func TestCompose_NoRootIsSchemaError(t *testing.T) {
	payload := []byte(`{"ucp":{"capabilities":{
		"a": [{"version":"1.0","schema":"https://x/a.json","extends":"b"}],
		"b": [{"version":"1.0","schema":"https://x/b.json","extends":"a"}]
	}}}`)
	c := &Composer{}
	if _, err := c.Compose(payload); err == nil {
		t.Fatalf("expected error for graph with no root")
	}
}

func TestCompose_MultipleRootsIsSchemaError(t *testing.T) {
	payload := []byte(`{"ucp":{"capabilities":{
		"a": [{"version":"1.0","schema":"https://x/a.json"}],
		"b": [{"version":"1.0","schema":"https://x/b.json"}]
	}}}`)
	c := &Composer{}
	if _, err := c.Compose(payload); err == nil {
		t.Fatalf("expected error for multiple roots")
	}
}

func TestCompose_OrphanIsSchemaError(t *testing.T) {
	payload := []byte(`{"ucp":{"capabilities":{
		"root": [{"version":"1.0","schema":"https://x/root.json"}],
		"orphan": [{"version":"1.0","schema":"https://x/orphan.json","extends":"unknown"}]
	}}}`)
	c := &Composer{}
	if _, err := c.Compose(payload); err == nil {
		t.Fatalf("expected error for unresolvable extends")
	}
}

func TestMapper_PrefixStrip(t *testing.T) {
	m := Mapper{LocalBase: "./site", RemoteBase: "https://ucp.dev/draft"}
	got, ok := m.Map("https://ucp.dev/draft/schemas/x.json")
	if !ok {
		t.Fatalf("expected mapping to apply")
	}
	want := "site/schemas/x.json"
	if got != want {
		t.Fatalf("Map() = %q, want %q", got, want)
	}
}

func TestMapper_NoLocalBaseMeansFetch(t *testing.T) {
	m := Mapper{}
	if _, ok := m.Map("https://ucp.dev/x.json"); ok {
		t.Fatalf("expected no mapping without a local base")
	}
}

func TestMapper_WithoutRemoteBaseUsesURLPath(t *testing.T) {
	m := Mapper{LocalBase: "site"}
	got, ok := m.Map("https://ucp.dev/schemas/x.json")
	if !ok {
		t.Fatalf("expected mapping to apply")
	}
	if got != "site/schemas/x.json" {
		t.Fatalf("Map() = %q", got)
	}
}

func TestCompose_LocalBaseUsesFileReader(t *testing.T) {
	files := map[string]string{
		"site/checkout.json": `{"type":"object"}`,
	}
	fr := fileReaderFunc(func(p string) ([]byte, error) {
		content, ok := files[p]
		if !ok {
			return nil, fmt.Errorf("no such file: %s", p)
		}
		return []byte(content), nil
	})
	payload := []byte(`{"ucp":{"capabilities":{
		"checkout": [{"version":"1.0","schema":"https://ucp.dev/checkout.json"}]
	}}}`)
	c := &Composer{ReadFile: fr, Mapper: &Mapper{LocalBase: "site"}}
	got, err := c.Compose(payload)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	allOf := got["allOf"].([]any)
	if len(allOf) != 1 {
		t.Fatalf("expected single-entry allOf, got %v", allOf)
	}
}
