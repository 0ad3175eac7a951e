package resolver

import (
	"fmt"
	"sort"

	"github.com/ucp-tools/ucpschema"
	"github.com/ucp-tools/ucpschema/internal/schemawalk"
)

// Resolve rewrites schema for the given direction and operation, per
// spec.md §4.1. schema is never mutated; Resolve always returns a fresh
// tree.
func Resolve(schema ucpschema.Schema, d ucpschema.Direction, op ucpschema.Operation) (ucpschema.Schema, error) {
	return resolveAt(schema, d, op, "")
}

func resolveAt(schema map[string]any, d ucpschema.Direction, op ucpschema.Operation, path string) (map[string]any, error) {
	if schema == nil {
		return nil, nil
	}

	out := schemawalk.CloneMap(schema)

	if props, ok := out["properties"]; ok {
		propsMap, ok := schemawalk.AsMap(props)
		if !ok {
			return nil, &ucpschema.SchemaError{Path: schemawalk.PathOrRoot(path), Message: "properties: must be object"}
		}

		required, _ := stringSet(out["required"])

		newProps := make(map[string]any, len(propsMap))
		for name, raw := range propsMap {
			propPath := schemawalk.PtrJoin(path, fmt.Sprintf("properties[%q]", name))
			propSchema, ok := schemawalk.AsMap(raw)
			if !ok {
				return nil, &ucpschema.SchemaError{Path: propPath, Message: "property schema must be an object"}
			}

			vis, annotated, err := visibilityFor(propSchema, d, op)
			if err != nil {
				return nil, &ucpschema.SchemaError{Path: propPath, Message: err.Error()}
			}

			if annotated && vis == ucpschema.VisibilityOmit {
				delete(required, name)
				continue
			}

			next := propSchema
			if annotated {
				next = stripAnnotation(propSchema, d)
			}
			resolvedProp, err := resolveAt(next, d, op, propPath)
			if err != nil {
				return nil, err
			}
			newProps[name] = resolvedProp

			if annotated {
				switch vis {
				case ucpschema.VisibilityRequired:
					required[name] = struct{}{}
				case ucpschema.VisibilityOptional:
					delete(required, name)
				}
			}
		}

		out["properties"] = newProps
		if len(required) > 0 {
			out["required"] = sortedKeys(required)
		} else {
			delete(out, "required")
		}
	}

	if ap, ok := out["additionalProperties"]; ok {
		if apSchema, isSchema := schemawalk.AsMap(ap); isSchema {
			resolved, err := resolveAt(apSchema, d, op, schemawalk.PtrJoin(path, "additionalProperties"))
			if err != nil {
				return nil, err
			}
			out["additionalProperties"] = resolved
		}
	}

	if items, ok := out["items"]; ok {
		switch v := items.(type) {
		case map[string]any:
			resolved, err := resolveAt(v, d, op, schemawalk.PtrJoin(path, "items"))
			if err != nil {
				return nil, err
			}
			out["items"] = resolved
		case []any:
			newItems := make([]any, len(v))
			for i, it := range v {
				itMap, ok := schemawalk.AsMap(it)
				if !ok {
					newItems[i] = it
					continue
				}
				resolved, err := resolveAt(itMap, d, op, schemawalk.PtrJoin(path, fmt.Sprintf("items[%d]", i)))
				if err != nil {
					return nil, err
				}
				newItems[i] = resolved
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
				resolved, err := resolveAt(defMap, d, op, schemawalk.PtrJoin(path, fmt.Sprintf("%s[%q]", key, name)))
				if err != nil {
					return nil, err
				}
				newDefs[name] = resolved
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
				resolved, err := resolveAt(itMap, d, op, schemawalk.PtrJoin(path, fmt.Sprintf("%s[%d]", key, i)))
				if err != nil {
					return nil, err
				}
				newArr[i] = resolved
			}
			out[key] = newArr
		}
	}

	if not, ok := out["not"]; ok {
		notMap, ok := schemawalk.AsMap(not)
		if ok {
			resolved, err := resolveAt(notMap, d, op, schemawalk.PtrJoin(path, "not"))
			if err != nil {
				return nil, err
			}
			out["not"] = resolved
		}
	}

	return out, nil
}

// visibilityFor inspects propSchema's ucp_<d> annotation (if any) and
// returns the visibility that applies to op, and whether the annotation had
// anything to say about op at all.
func visibilityFor(propSchema map[string]any, d ucpschema.Direction, op ucpschema.Operation) (ucpschema.Visibility, bool, error) {
	key := ucpschema.AnnotationKey(d)
	raw, ok := propSchema[key]
	if !ok {
		return "", false, nil
	}
	ann, err := ucpschema.ParseAnnotation(raw)
	if err != nil {
		return "", false, err
	}
	vis, annotated := ann.VisibilityFor(op)
	return vis, annotated, nil
}

// stripAnnotation returns a copy of propSchema with the ucp_<d> key
// removed. Other ucp_* keys (forward-compat, or the other direction's
// annotation) are left untouched.
func stripAnnotation(propSchema map[string]any, d ucpschema.Direction) map[string]any {
	out := schemawalk.CloneMap(propSchema)
	delete(out, ucpschema.AnnotationKey(d))
	return out
}

func stringSet(v any) (map[string]struct{}, bool) {
	set := map[string]struct{}{}
	arr, ok := schemawalk.AsSlice(v)
	if !ok {
		return set, false
	}
	for _, it := range arr {
		if s, ok := it.(string); ok {
			set[s] = struct{}{}
		}
	}
	return set, true
}

func sortedKeys(set map[string]struct{}) []any {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}
