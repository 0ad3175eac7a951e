package ucpschema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Schema is a JSON Schema node. It is intentionally untyped so that keys the
// core does not recognize are preserved structurally rather than dropped.
type Schema = map[string]any

// Direction selects which of the two annotation keys (ucp_request /
// ucp_response) applies.
type Direction string

const (
	DirectionRequest  Direction = "request"
	DirectionResponse Direction = "response"
)

// Operation is a free-form operation tag (e.g. "create", "read"). The core
// treats it opaquely; only the linter's W002 check has an opinion about
// conventional names.
type Operation string

// Visibility is the per-(direction,operation) fate of an annotated property.
type Visibility string

const (
	VisibilityOmit     Visibility = "omit"
	VisibilityRequired Visibility = "required"
	VisibilityOptional Visibility = "optional"
)

// ParseVisibility validates s against the Visibility enum, failing fast on
// typos rather than letting an unrecognized value silently pass through as
// "unannotated".
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityOmit, VisibilityRequired, VisibilityOptional:
		return Visibility(s), nil
	default:
		return "", &SchemaError{Message: fmt.Sprintf("unknown visibility %q", s)}
	}
}

// Annotation is the value of a ucp_request / ucp_response key: either a
// shorthand visibility (applies to every operation) or a per-operation map.
// Exactly one of the two forms is populated.
type Annotation struct {
	// Shorthand is set when the annotation was a bare visibility string.
	Shorthand Visibility
	// PerOperation is set when the annotation was an operation->visibility
	// object. A nil map together with an empty Shorthand means "no
	// annotation", which never occurs for a successfully parsed Annotation.
	PerOperation map[Operation]Visibility
}

// IsShorthand reports whether this annotation is the shorthand (single
// visibility for every operation) form.
func (a Annotation) IsShorthand() bool {
	return a.Shorthand != "" && a.PerOperation == nil
}

// VisibilityFor returns the visibility that applies to op, and whether the
// annotation actually says anything about op at all. For a per-operation
// annotation, an operation key that is absent from the map means "no
// annotation for that operation" — the caller must leave the field alone.
func (a Annotation) VisibilityFor(op Operation) (Visibility, bool) {
	if a.IsShorthand() {
		return a.Shorthand, true
	}
	v, ok := a.PerOperation[op]
	return v, ok
}

// ParseAnnotation parses the raw value of a ucp_request/ucp_response key.
// Per spec.md §4.1, a value that is neither a string nor an object is a
// fatal schema error, and so is any visibility string outside the enum.
func ParseAnnotation(raw any) (Annotation, error) {
	switch v := raw.(type) {
	case string:
		vis, err := ParseVisibility(v)
		if err != nil {
			return Annotation{}, err
		}
		return Annotation{Shorthand: vis}, nil
	case map[string]any:
		perOp := make(map[Operation]Visibility, len(v))
		for opName, rawVis := range v {
			s, ok := rawVis.(string)
			if !ok {
				return Annotation{}, &SchemaError{Message: fmt.Sprintf("operation %q: visibility must be a string", opName)}
			}
			vis, err := ParseVisibility(s)
			if err != nil {
				return Annotation{}, &SchemaError{Message: fmt.Sprintf("operation %q: %v", opName, err)}
			}
			perOp[Operation(opName)] = vis
		}
		return Annotation{PerOperation: perOp}, nil
	default:
		return Annotation{}, &SchemaError{Message: "ucp_request/ucp_response must be a string or an object"}
	}
}

// ProfileVersionKeyword is the top-level schema keyword a UCP-annotated
// schema document may use to declare the annotation profile version it was
// authored against, e.g. {"ucp_profile": "0.1.0", "properties": {...}}.
// Checked against IsSupportedProfileVersion by the lint and driver
// collaborators; the resolver itself ignores it (it isn't a per-property
// annotation).
const ProfileVersionKeyword = "ucp_profile"

// AnnotationKey returns the schema keyword that carries d's annotation.
func AnnotationKey(d Direction) string {
	switch d {
	case DirectionRequest:
		return "ucp_request"
	case DirectionResponse:
		return "ucp_response"
	default:
		return ""
	}
}

// LosslessFields is embedded in wire types that must round-trip unknown
// fields (forward compatibility) and "x-*" extensions without modeling them.
type LosslessFields struct {
	Extensions map[string]json.RawMessage `json:"-"`
	Unknown    map[string]json.RawMessage `json:"-"`
}

var knownCapabilityEntrySet = knownSet("version", "schema_url", "schema", "extends")

// CapabilityEntry is one entry of a payload's ucp.capabilities[name] list:
// { version, schema_url (or schema), extends? }. Exactly one entry across a
// whole capability graph has an empty Extends — the root (spec.md §3).
type CapabilityEntry struct {
	// Name is the capability registry key this entry was found under; it is
	// not itself part of the JSON entry, it is filled in by the caller that
	// walks ucp.capabilities.
	Name string `json:"-"`

	Version   string `json:"version,omitempty"`
	SchemaURL string `json:"schema_url,omitempty"`
	Extends   string `json:"extends,omitempty"`

	LosslessFields
}

type capabilityEntryWire struct {
	Version   string `json:"version,omitempty"`
	SchemaURL string `json:"schema_url,omitempty"`
	Schema    string `json:"schema,omitempty"`
	Extends   string `json:"extends,omitempty"`
}

// UnmarshalJSON accepts either "schema_url" or "schema" as the schema
// location key — reference payloads in the wild use both spellings.
func (c *CapabilityEntry) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var w capabilityEntryWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	schemaURL := w.SchemaURL
	if schemaURL == "" {
		schemaURL = w.Schema
	}

	*c = CapabilityEntry{
		Version:   w.Version,
		SchemaURL: schemaURL,
		Extends:   w.Extends,
	}

	c.Extensions, c.Unknown = splitLossless(raw, knownCapabilityEntrySet)
	return nil
}

func (c CapabilityEntry) MarshalJSON() ([]byte, error) {
	w := capabilityEntryWire{
		Version:   c.Version,
		SchemaURL: c.SchemaURL,
		Extends:   c.Extends,
	}
	return marshalLossless(c.Unknown, c.Extensions, w)
}

// IsRoot reports whether this entry is the capability graph's root (the one
// entry with no Extends).
func (c CapabilityEntry) IsRoot() bool {
	return strings.TrimSpace(c.Extends) == ""
}
