// Package schemawalk provides the low-level map/slice helpers shared by the
// components that descend a UCP schema tree (resolver, bundler, strictify,
// capability). None of it is UCP-specific; it exists so the four components
// agree on one notion of "what is a nested object schema" and one path
// notation for error messages.
package schemawalk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// AsMap type-asserts v as a JSON object.
func AsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// AsSlice type-asserts v as a JSON array.
func AsSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// CloneMap returns a shallow copy of in, or nil if in is nil.
func CloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// PathOrRoot renders an empty path as "<root>" for error messages.
func PathOrRoot(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}

// PtrJoin appends next to prefix, inserting a "." separator unless next
// already looks like an index/field suffix ("[...]" or ".foo").
func PtrJoin(prefix, next string) string {
	if prefix == "" {
		return next
	}
	if next == "" {
		return prefix
	}
	if strings.HasPrefix(next, "[") || strings.HasPrefix(next, ".") {
		return prefix + next
	}
	return prefix + "." + next
}

// DecodeJSON decodes a single JSON value from b, using json.Number so
// numeric literals round-trip without float64 precision loss, and rejecting
// trailing garbage after the value.
func DecodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, errors.New("invalid JSON: trailing data")
	}
	return v, nil
}

// ResolveJSONPointer navigates doc per RFC 6901 using the fragment that
// follows a "#" in a $ref (so fragment is "" or starts with "/").
func ResolveJSONPointer(doc any, fragment string) (any, error) {
	if fragment == "" {
		return doc, nil
	}
	if !strings.HasPrefix(fragment, "/") {
		return nil, errors.New("unsupported fragment (must be JSON Pointer)")
	}
	toks := strings.Split(fragment, "/")[1:]
	cur := doc
	for _, tok := range toks {
		tok = strings.ReplaceAll(tok, "~1", "/")
		tok = strings.ReplaceAll(tok, "~0", "~")
		switch x := cur.(type) {
		case map[string]any:
			nxt, ok := x[tok]
			if !ok {
				return nil, fmt.Errorf("pointer not found: %q", tok)
			}
			cur = nxt
		case []any:
			if tok == "-" {
				return nil, errors.New("pointer '-' is not valid for array lookup")
			}
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(x) {
				return nil, fmt.Errorf("array index out of range: %q", tok)
			}
			cur = x[idx]
		default:
			return nil, errors.New("pointer traversed non-container")
		}
	}
	return cur, nil
}

// NestedSchemaKeywords lists the keywords the resolver and strict injector
// both descend into, in a fixed order so path-building stays consistent
// between the two components.
var NestedSchemaKeywords = []string{"allOf", "anyOf", "oneOf"}
