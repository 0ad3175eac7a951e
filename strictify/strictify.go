package strictify

import (
	"fmt"

	"github.com/ucp-tools/ucpschema"
	"github.com/ucp-tools/ucpschema/internal/schemawalk"
)

// Inject returns a copy of schema with additionalProperties: false inserted
// at every nested object-schema site that doesn't already forbid or
// schema-constrain additional properties.
func Inject(schema ucpschema.Schema) (ucpschema.Schema, error) {
	return injectAt(schema, "")
}

func injectAt(schema map[string]any, path string) (map[string]any, error) {
	if schema == nil {
		return nil, nil
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
			nv, err := injectAt(propMap, schemawalk.PtrJoin(path, fmt.Sprintf("properties[%q]", name)))
			if err != nil {
				return nil, err
			}
			newProps[name] = nv
		}
		out["properties"] = newProps
	}

	if items, ok := out["items"]; ok {
		switch v := items.(type) {
		case map[string]any:
			nv, err := injectAt(v, schemawalk.PtrJoin(path, "items"))
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
				nv, err := injectAt(itMap, schemawalk.PtrJoin(path, fmt.Sprintf("items[%d]", i)))
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
				nv, err := injectAt(defMap, schemawalk.PtrJoin(path, fmt.Sprintf("%s[%q]", key, name)))
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
				nv, err := injectAt(itMap, schemawalk.PtrJoin(path, fmt.Sprintf("%s[%d]", key, i)))
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
			nv, err := injectAt(notMap, schemawalk.PtrJoin(path, "not"))
			if err != nil {
				return nil, err
			}
			out["not"] = nv
		}
	}

	if ap, hasAP := out["additionalProperties"]; hasAP {
		if apMap, isSchema := schemawalk.AsMap(ap); isSchema {
			nv, err := injectAt(apMap, schemawalk.PtrJoin(path, "additionalProperties"))
			if err != nil {
				return nil, err
			}
			out["additionalProperties"] = nv
		}
	}

	if isObjectSchema(out) {
		switch ap := out["additionalProperties"].(type) {
		case bool:
			if ap {
				out["additionalProperties"] = false
			}
		default:
			if _, present := out["additionalProperties"]; !present {
				out["additionalProperties"] = false
			}
		}
	}

	return out, nil
}

func isObjectSchema(schema map[string]any) bool {
	if _, ok := schema["properties"]; ok {
		return true
	}
	if t, ok := schema["type"].(string); ok && t == "object" {
		return true
	}
	return false
}
