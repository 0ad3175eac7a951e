package bundler

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/ucp-tools/ucpschema"
	"github.com/ucp-tools/ucpschema/internal/schemawalk"
)

// Fetcher loads bytes for a $ref target reachable over HTTP(S).
type Fetcher interface {
	Fetch(u *url.URL) ([]byte, error)
}

// FileReader loads bytes for a $ref target resolved to a local filesystem
// path (no scheme, or "file").
type FileReader interface {
	ReadFile(p string) ([]byte, error)
}

// Bundler inlines external $ref targets relative to Base. A Bundler is not
// safe for concurrent use; Bundle is the only entry point and allocates its
// own cycle-detection stack per call.
type Bundler struct {
	// Base identifies the document being bundled: a URL (scheme http/https)
	// or a bare/"file"-scheme local path. Relative $refs resolve against it.
	Base *url.URL

	Fetch    Fetcher
	ReadFile FileReader

	refStack map[string]bool
}

// Bundle returns a copy of schema with every external $ref inlined.
func (b *Bundler) Bundle(schema ucpschema.Schema) (ucpschema.Schema, error) {
	b.refStack = map[string]bool{}
	return b.bundleAt(schema, b.Base, nil, "")
}

// bundleAt walks schema, inlining external $refs. docCtx is nil while
// walking the top-level document being bundled, in which case a bare
// internal $ref ("#" or "#/...") is preserved verbatim — it already
// resolves correctly against the document Bundle will return. Once an
// external document has been loaded (inlineRef), docCtx holds that
// document's full parsed value, and every internal $ref encountered while
// walking its content is resolved against docCtx and inlined in place
// instead, since the fragment is being spliced into a different document
// and a literal "#/..." left in the output would no longer point anywhere
// sensible (spec.md §4.2).
func (b *Bundler) bundleAt(schema map[string]any, base *url.URL, docCtx any, path string) (map[string]any, error) {
	if schema == nil {
		return nil, nil
	}

	if ref, ok := schema["$ref"].(string); ok && strings.TrimSpace(ref) != "" {
		if isInternalRef(ref) {
			if docCtx == nil {
				return schemawalk.CloneMap(schema), nil
			}
			return b.inlineInternalRef(ref, docCtx, base, path)
		}
		return b.inlineRef(ref, base, docCtx, path)
	}

	out := schemawalk.CloneMap(schema)

	if props, ok := out["properties"]; ok {
		propsMap, ok := schemawalk.AsMap(props)
		if !ok {
			return nil, &ucpschema.SchemaError{Path: schemawalk.PathOrRoot(path), Message: "properties: must be object"}
		}
		newProps := make(map[string]any, len(propsMap))
		for name, raw := range propsMap {
			propMap, ok := schemawalk.AsMap(raw)
			if !ok {
				newProps[name] = raw
				continue
			}
			nv, err := b.bundleAt(propMap, base, docCtx, schemawalk.PtrJoin(path, fmt.Sprintf("properties[%q]", name)))
			if err != nil {
				return nil, err
			}
			newProps[name] = nv
		}
		out["properties"] = newProps
	}

	if ap, ok := out["additionalProperties"]; ok {
		if apMap, isSchema := schemawalk.AsMap(ap); isSchema {
			nv, err := b.bundleAt(apMap, base, docCtx, schemawalk.PtrJoin(path, "additionalProperties"))
			if err != nil {
				return nil, err
			}
			out["additionalProperties"] = nv
		}
	}

	if items, ok := out["items"]; ok {
		switch v := items.(type) {
		case map[string]any:
			nv, err := b.bundleAt(v, base, docCtx, schemawalk.PtrJoin(path, "items"))
			if err != nil {
				return nil, err
			}
			out["items"] = nv
		case []any:
			newItems := make([]any, len(v))
			for i, it := range v {
				itMap, ok := schemawalk.AsMap(it)
				if !ok {
					newItems[i] = it
					continue
				}
				nv, err := b.bundleAt(itMap, base, docCtx, schemawalk.PtrJoin(path, fmt.Sprintf("items[%d]", i)))
				if err != nil {
					return nil, err
				}
				newItems[i] = nv
			}
			out["items"] = newItems
		}
	}

	for _, key := range []string{"$defs", "definitions"} {
		if defs, ok := out[key]; ok {
			defsMap, ok := schemawalk.AsMap(defs)
			if !ok {
				return nil, &ucpschema.SchemaError{Path: schemawalk.PathOrRoot(path), Message: key + ": must be object"}
			}
			newDefs := make(map[string]any, len(defsMap))
			for name, raw := range defsMap {
				defMap, ok := schemawalk.AsMap(raw)
				if !ok {
					newDefs[name] = raw
					continue
				}
				nv, err := b.bundleAt(defMap, base, docCtx, schemawalk.PtrJoin(path, fmt.Sprintf("%s[%q]", key, name)))
				if err != nil {
					return nil, err
				}
				newDefs[name] = nv
			}
			out[key] = newDefs
		}
	}

	for _, key := range schemawalk.NestedSchemaKeywords {
		if arr, ok := out[key]; ok {
			items, ok := schemawalk.AsSlice(arr)
			if !ok {
				return nil, &ucpschema.SchemaError{Path: schemawalk.PathOrRoot(path), Message: key + ": must be array"}
			}
			newArr := make([]any, len(items))
			for i, it := range items {
				itMap, ok := schemawalk.AsMap(it)
				if !ok {
					newArr[i] = it
					continue
				}
				nv, err := b.bundleAt(itMap, base, docCtx, schemawalk.PtrJoin(path, fmt.Sprintf("%s[%d]", key, i)))
				if err != nil {
					return nil, err
				}
				newArr[i] = nv
			}
			out[key] = newArr
		}
	}

	if not, ok := out["not"]; ok {
		notMap, ok := schemawalk.AsMap(not)
		if ok {
			nv, err := b.bundleAt(notMap, base, docCtx, schemawalk.PtrJoin(path, "not"))
			if err != nil {
				return nil, err
			}
			out["not"] = nv
		}
	}

	return out, nil
}

// isInternalRef reports whether ref targets the current document ("#" or
// "#/...") rather than an external one.
func isInternalRef(ref string) bool {
	return ref == "#" || strings.HasPrefix(ref, "#/")
}

// internalRefKey returns the (document, pointer) cycle-detection key for an
// internal $ref resolved against base, in the same form inlineRef's own
// u.String() produces for an external $ref targeting the same location —
// the two share one cycle-detection stack (spec.md §4.2).
func internalRefKey(base *url.URL, fragment string) string {
	if base == nil {
		return "#" + fragment
	}
	u := *base
	u.Fragment = fragment
	return u.String()
}

// inlineInternalRef resolves ref's fragment against docCtx (the full parsed
// value of the external document currently being spliced in) and inlines
// the result in place, so that a $ref like "#/$defs/Buyer" inside a loaded
// external document resolves against that document's own $defs rather than
// being left as a dangling literal pointer once embedded elsewhere.
//
// The one exception is the self-recursive whole-document ref ("#" pointing
// back to a location already being expanded): spec.md §4.2 permits and
// preserves that case rather than looping forever trying to inline it.
func (b *Bundler) inlineInternalRef(ref string, docCtx any, base *url.URL, path string) (map[string]any, error) {
	fragment := ""
	if ref != "#" {
		fragment = strings.TrimPrefix(ref, "#")
	}

	key := internalRefKey(base, fragment)
	if b.refStack[key] {
		if ref == "#" {
			return map[string]any{"$ref": "#"}, nil
		}
		return nil, &ucpschema.SchemaError{Path: schemawalk.PathOrRoot(path), Message: fmt.Sprintf("circular reference between files: %s", key)}
	}
	b.refStack[key] = true
	defer delete(b.refStack, key)

	target, err := schemawalk.ResolveJSONPointer(docCtx, fragment)
	if err != nil {
		return nil, &ucpschema.SchemaError{Path: schemawalk.PathOrRoot(path), Message: fmt.Sprintf("$ref %q: %v", ref, err)}
	}

	targetMap, ok := schemawalk.AsMap(target)
	if !ok {
		return nil, &ucpschema.SchemaError{Path: schemawalk.PathOrRoot(path), Message: fmt.Sprintf("$ref %q: target is not an object schema", ref)}
	}

	return b.bundleAt(targetMap, base, docCtx, path)
}

// inlineRef loads the document ref points at (relative to base), navigates
// to its fragment, and recursively bundles the result against the loaded
// document's own base and its own parsed value (so internal refs nested
// inside it — spec.md §4.2's "#/$defs/foo appearing inside types/buyer.json"
// case — resolve against that document rather than whichever document
// started the walk).
func (b *Bundler) inlineRef(ref string, base *url.URL, docCtx any, path string) (map[string]any, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, &ucpschema.SchemaError{Path: schemawalk.PathOrRoot(path), Message: fmt.Sprintf("$ref %q: %v", ref, err)}
	}

	if !u.IsAbs() && u.Path != "" && base != nil {
		if base.Scheme == "" && base.Host == "" && !strings.HasPrefix(base.Path, "/") {
			// ResolveReference always yields a rooted path; keep the result
			// of a relative base relative too.
			rooted := *base
			rooted.Path = "/" + base.Path
			u = rooted.ResolveReference(u)
			u.Path = strings.TrimPrefix(u.Path, "/")
		} else {
			u = base.ResolveReference(u)
		}
	}

	key := u.String()
	if b.refStack[key] {
		return nil, &ucpschema.SchemaError{Path: schemawalk.PathOrRoot(path), Message: fmt.Sprintf("circular reference between files: %s", key)}
	}
	b.refStack[key] = true
	defer delete(b.refStack, key)

	docBytes, err := b.load(u, path, ref)
	if err != nil {
		return nil, err
	}

	doc, err := schemawalk.DecodeJSON(docBytes)
	if err != nil {
		return nil, &ucpschema.SchemaError{Path: schemawalk.PathOrRoot(path), Message: fmt.Sprintf("$ref %q: invalid JSON: %v", ref, err)}
	}

	target, err := schemawalk.ResolveJSONPointer(doc, u.Fragment)
	if err != nil {
		return nil, &ucpschema.SchemaError{Path: schemawalk.PathOrRoot(path), Message: fmt.Sprintf("$ref %q: %v", ref, err)}
	}

	targetMap, ok := schemawalk.AsMap(target)
	if !ok {
		return nil, &ucpschema.SchemaError{Path: schemawalk.PathOrRoot(path), Message: fmt.Sprintf("$ref %q: target is not an object schema", ref)}
	}

	docBase := *u
	docBase.Fragment = ""
	return b.bundleAt(targetMap, &docBase, doc, path)
}

func (b *Bundler) load(u *url.URL, refPath, ref string) ([]byte, error) {
	if u.Scheme == "http" || u.Scheme == "https" {
		if b.Fetch == nil {
			return nil, &ucpschema.IoError{Op: "fetch", Err: fmt.Errorf("$ref %q: no fetcher configured", ref)}
		}
		b2, err := b.Fetch.Fetch(u)
		if err != nil {
			return nil, &ucpschema.IoError{Op: "fetch", Err: fmt.Errorf("$ref %q: %w", ref, err)}
		}
		return b2, nil
	}

	if b.ReadFile == nil {
		return nil, &ucpschema.IoError{Op: "read_file", Err: fmt.Errorf("$ref %q: no file reader configured", ref)}
	}
	p := u.Path
	if u.Opaque != "" {
		p = u.Opaque
	}
	p = path.Clean(p)
	b2, err := b.ReadFile.ReadFile(p)
	if err != nil {
		return nil, &ucpschema.IoError{Op: "read_file", Err: fmt.Errorf("$ref %q (%s): %w", ref, p, err)}
	}
	return b2, nil
}
