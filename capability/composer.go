package capability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ucp-tools/ucpschema"
	"github.com/ucp-tools/ucpschema/bundler"
	"github.com/ucp-tools/ucpschema/internal/schemawalk"
)

// Composer implements the Capability Composer (spec.md §4.3): it discovers
// the root capability and its extensions from a self-describing payload,
// loads their schemas, and composes them via allOf.
type Composer struct {
	Fetch    bundler.Fetcher
	ReadFile bundler.FileReader
	Mapper   *Mapper

	// BundleRefs, when true, runs each loaded capability document through
	// a bundler.Bundler (based at that document's own schema_url) before
	// it is folded into the composed allOf. This is necessary because the
	// composed schema mixes documents from distinct origins, so a single
	// Bundler.Base for the composed whole cannot resolve every document's
	// relative $refs correctly — each document must be bundled against its
	// own base first (see DESIGN.md).
	BundleRefs bool

	// Logger receives a debug note whenever a capability name lists more
	// than one version entry (only the first is used, per spec.md §9).
	// Defaults to slog.Default() if nil.
	Logger *slog.Logger
}

func (c *Composer) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// InferDirection implements the payload self-description rule shared by
// the composer and the driver's direction state machine: a payload with
// ucp.capabilities is a response, a payload with ucp.meta.profile is a
// request, and a payload with neither is not self-describing.
func InferDirection(payload map[string]any) (ucpschema.Direction, error) {
	ucpVal, ok := schemawalk.AsMap(payload["ucp"])
	if ok {
		if _, hasCaps := ucpVal["capabilities"]; hasCaps {
			return ucpschema.DirectionResponse, nil
		}
		if meta, ok := schemawalk.AsMap(ucpVal["meta"]); ok {
			if _, hasProfile := meta["profile"]; hasProfile {
				return ucpschema.DirectionRequest, nil
			}
		}
	}
	return "", &ucpschema.UsageError{Message: "payload not self-describing"}
}

// Compose parses payloadJSON's ucp.capabilities graph and returns the
// composed `{"allOf": [...]}` schema. payloadJSON (rather than an
// already-decoded map) is the entry point because spec.md §5 requires
// composition order to follow declaration order of the ucp.capabilities
// keys, an ordering encoding/json's map[string]any decoding does not
// preserve.
func (c *Composer) Compose(payloadJSON []byte) (ucpschema.Schema, error) {
	order, rawByName, err := extractCapabilitiesOrdered(payloadJSON)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]ucpschema.CapabilityEntry, len(order))
	for _, name := range order {
		entry, err := c.parseEntry(name, rawByName[name])
		if err != nil {
			return nil, err
		}
		entries[name] = entry
	}

	root, err := validateGraph(order, entries)
	if err != nil {
		return nil, err
	}

	rootDoc, err := c.loadSchemaDoc(root.SchemaURL)
	if err != nil {
		return nil, err
	}

	allOf := []any{ucpschema.Schema(rootDoc)}
	for _, name := range order {
		if name == root.Name {
			continue
		}
		entry := entries[name]
		doc, err := c.loadSchemaDoc(entry.SchemaURL)
		if err != nil {
			return nil, err
		}
		allOf = append(allOf, extensionContribution(doc, root.Name))
	}

	return ucpschema.Schema{"allOf": allOf}, nil
}

func (c *Composer) parseEntry(name string, listRaw json.RawMessage) (ucpschema.CapabilityEntry, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(listRaw, &list); err != nil {
		return ucpschema.CapabilityEntry{}, &ucpschema.SchemaError{Path: "ucp.capabilities[" + name + "]", Message: "must be an array of version entries"}
	}
	if len(list) == 0 {
		return ucpschema.CapabilityEntry{}, &ucpschema.SchemaError{Path: "ucp.capabilities[" + name + "]", Message: "must list at least one version entry"}
	}
	if len(list) > 1 {
		c.logger().Debug("capability has multiple version entries, using the first", "capability", name, "count", len(list))
	}

	var entry ucpschema.CapabilityEntry
	if err := json.Unmarshal(list[0], &entry); err != nil {
		return ucpschema.CapabilityEntry{}, &ucpschema.SchemaError{Path: "ucp.capabilities[" + name + "][0]", Message: err.Error()}
	}
	entry.Name = name
	return entry, nil
}

func (c *Composer) loadSchemaDoc(schemaURL string) (ucpschema.Schema, error) {
	u, err := url.Parse(schemaURL)
	if err != nil {
		return nil, &ucpschema.SchemaError{Message: fmt.Sprintf("invalid schema_url %q: %v", schemaURL, err)}
	}

	var doc ucpschema.Schema
	if c.Mapper != nil {
		if localPath, ok := c.Mapper.Map(schemaURL); ok {
			if c.ReadFile == nil {
				return nil, &ucpschema.IoError{Op: "read_file", Err: fmt.Errorf("no file reader configured for %s", localPath)}
			}
			b, err := c.ReadFile.ReadFile(localPath)
			if err != nil {
				return nil, &ucpschema.IoError{Op: "read_file", Err: fmt.Errorf("%s: %w", localPath, err)}
			}
			doc, err = decodeSchemaDoc(b)
			if err != nil {
				return nil, err
			}
		}
	}
	if doc == nil {
		if c.Fetch == nil {
			return nil, &ucpschema.IoError{Op: "fetch", Err: fmt.Errorf("no fetcher configured for %s", schemaURL)}
		}
		b, err := c.Fetch.Fetch(u)
		if err != nil {
			return nil, &ucpschema.IoError{Op: "fetch", Err: fmt.Errorf("%s: %w", schemaURL, err)}
		}
		doc, err = decodeSchemaDoc(b)
		if err != nil {
			return nil, err
		}
	}

	if c.BundleRefs {
		fetch := c.Fetch
		if c.Mapper != nil {
			fetch = c.Mapper.AsFetcher(c.ReadFile)
		}
		bundled, err := (&bundler.Bundler{Base: u, Fetch: fetch, ReadFile: c.ReadFile}).Bundle(doc)
		if err != nil {
			return nil, err
		}
		doc = bundled
	}

	return doc, nil
}

func decodeSchemaDoc(b []byte) (ucpschema.Schema, error) {
	v, err := schemawalk.DecodeJSON(b)
	if err != nil {
		return nil, &ucpschema.SchemaError{Message: fmt.Sprintf("invalid schema document: %v", err)}
	}
	m, ok := schemawalk.AsMap(v)
	if !ok {
		return nil, &ucpschema.SchemaError{Message: "schema document must be a JSON object"}
	}
	return m, nil
}

// extensionContribution returns D.$defs[rootName], or the empty-object
// schema if absent (spec.md §9 Open Questions).
func extensionContribution(doc ucpschema.Schema, rootName string) ucpschema.Schema {
	defs, ok := schemawalk.AsMap(doc["$defs"])
	if !ok {
		return ucpschema.Schema{}
	}
	contribution, ok := schemawalk.AsMap(defs[rootName])
	if !ok {
		return ucpschema.Schema{}
	}
	return contribution
}

// validateGraph checks the capability-graph invariants from spec.md §4.3:
// exactly one root (no extends), every extends resolvable, no orphans.
func validateGraph(order []string, entries map[string]ucpschema.CapabilityEntry) (ucpschema.CapabilityEntry, error) {
	var root ucpschema.CapabilityEntry
	rootCount := 0
	for _, name := range order {
		if entries[name].IsRoot() {
			rootCount++
			root = entries[name]
		}
	}
	if rootCount == 0 {
		return ucpschema.CapabilityEntry{}, &ucpschema.SchemaError{Message: "capability graph has no root (every entry has extends)"}
	}
	if rootCount > 1 {
		return ucpschema.CapabilityEntry{}, &ucpschema.SchemaError{Message: "capability graph has more than one root"}
	}

	for _, name := range order {
		entry := entries[name]
		if entry.IsRoot() {
			continue
		}
		visited := map[string]bool{name: true}
		cur := entry
		for {
			if cur.IsRoot() {
				break
			}
			next, ok := entries[cur.Extends]
			if !ok {
				return ucpschema.CapabilityEntry{}, &ucpschema.SchemaError{Message: fmt.Sprintf("capability %q extends unknown capability %q", name, cur.Extends)}
			}
			if visited[cur.Extends] {
				return ucpschema.CapabilityEntry{}, &ucpschema.SchemaError{Message: fmt.Sprintf("capability %q does not reach the root (cycle at %q)", name, cur.Extends)}
			}
			visited[cur.Extends] = true
			cur = next
		}
	}

	return root, nil
}

// extractCapabilitiesOrdered reads ucp.capabilities from payloadJSON,
// preserving the declaration order of its keys.
func extractCapabilitiesOrdered(payloadJSON []byte) ([]string, map[string]json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payloadJSON, &top); err != nil {
		return nil, nil, &ucpschema.SchemaError{Message: fmt.Sprintf("invalid payload JSON: %v", err)}
	}
	ucpRaw, ok := top["ucp"]
	if !ok {
		return nil, nil, &ucpschema.UsageError{Message: "payload not self-describing: missing ucp"}
	}
	var ucpObj map[string]json.RawMessage
	if err := json.Unmarshal(ucpRaw, &ucpObj); err != nil {
		return nil, nil, &ucpschema.SchemaError{Message: fmt.Sprintf("ucp: %v", err)}
	}
	capsRaw, ok := ucpObj["capabilities"]
	if !ok {
		return nil, nil, &ucpschema.UsageError{Message: "payload not self-describing: missing ucp.capabilities"}
	}
	return decodeOrderedObject(capsRaw)
}

// decodeOrderedObject walks raw as a JSON object via token scanning so the
// caller can see key declaration order, which encoding/json's
// map[string]any decoding discards.
func decodeOrderedObject(raw json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, &ucpschema.SchemaError{Message: fmt.Sprintf("ucp.capabilities: %v", err)}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, &ucpschema.SchemaError{Message: "ucp.capabilities: must be an object"}
	}

	var keys []string
	values := map[string]json.RawMessage{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, &ucpschema.SchemaError{Message: fmt.Sprintf("ucp.capabilities: %v", err)}
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, &ucpschema.SchemaError{Message: "ucp.capabilities: key must be a string"}
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, nil, &ucpschema.SchemaError{Message: fmt.Sprintf("ucp.capabilities[%q]: %v", key, err)}
		}
		keys = append(keys, key)
		values[key] = val
	}
	return keys, values, nil
}
