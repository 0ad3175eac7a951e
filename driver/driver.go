package driver

import (
	"fmt"
	"net/url"

	"github.com/ucp-tools/ucpschema"
	"github.com/ucp-tools/ucpschema/bundler"
	"github.com/ucp-tools/ucpschema/capability"
	"github.com/ucp-tools/ucpschema/engine"
	"github.com/ucp-tools/ucpschema/internal/schemawalk"
	"github.com/ucp-tools/ucpschema/resolver"
	"github.com/ucp-tools/ucpschema/strictify"
)

// Driver wires the collaborators behind the resolve/validate operations.
// The zero value is unusable; construct one with New.
type Driver struct {
	Fetch    bundler.Fetcher
	ReadFile bundler.FileReader

	// Mapper, if non-nil, puts the driver into self-describing local mode
	// (spec.md §4.4): capability schemas are read from disk instead of
	// fetched. A nil Mapper means self-describing remote mode.
	Mapper *capability.Mapper

	Engine *engine.Engine
}

// New returns a Driver with a fresh Engine.
func New(fetch bundler.Fetcher, readFile bundler.FileReader, mapper *capability.Mapper) *Driver {
	return &Driver{Fetch: fetch, ReadFile: readFile, Mapper: mapper, Engine: engine.New()}
}

// Request is the input shared by Resolve and Validate.
type Request struct {
	// PayloadJSON is the request/response payload under test. Required for
	// self-describing mode (the composer reads ucp.capabilities/ucp.meta
	// from it) and for Validate; optional for Resolve in Explicit mode.
	PayloadJSON []byte

	// ExplicitSchema puts the driver into Explicit mode (spec.md §4.6): this
	// document is used as-is, and any ucp.capabilities in PayloadJSON is
	// ignored. Nil selects self-describing mode.
	ExplicitSchema ucpschema.Schema
	// ExplicitSchemaBase is the location ExplicitSchema was loaded from
	// (file path or URL), used to resolve its own relative $refs.
	ExplicitSchemaBase *url.URL

	// Direction, if non-empty, overrides direction inference.
	Direction ucpschema.Direction
	Operation ucpschema.Operation

	// Strict requests additionalProperties: false injection (spec.md §4.5).
	Strict bool
}

// Result is Validate's outcome.
type Result struct {
	Valid  bool
	Issues []ucpschema.ValidationIssue

	// ProfileVersion is the resolved schema's declared ucp_profile, or "" if
	// it declared none.
	ProfileVersion string
	// ProfileSupported reports whether ProfileVersion falls within this
	// core's supported range (ucpschema.IsSupportedProfileVersion). True
	// when the schema declared no ucp_profile at all.
	ProfileSupported bool
}

// profileVersionOf reads the resolved schema's ucp_profile keyword, if any,
// and checks it against ucpschema.IsSupportedProfileVersion. A schema with
// no ucp_profile is treated as supported — the keyword is optional.
func profileVersionOf(schema ucpschema.Schema) (string, bool, error) {
	raw, ok := schema[ucpschema.ProfileVersionKeyword]
	if !ok {
		return "", true, nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", false, &ucpschema.SchemaError{Message: "ucp_profile must be a string"}
	}
	supported, err := ucpschema.IsSupportedProfileVersion(v)
	if err != nil {
		return v, false, &ucpschema.SchemaError{Message: fmt.Sprintf("ucp_profile %q: %v", v, err)}
	}
	return v, supported, nil
}

// Resolve runs the full pipeline short of validation: mode selection,
// direction determination, composition or direct load, bundling,
// annotation resolution, and (if requested) strict injection. It returns
// the schema an engine would compile.
func (d *Driver) Resolve(req Request) (ucpschema.Schema, ucpschema.Direction, error) {
	schema, dir, err := d.loadSchema(req)
	if err != nil {
		return nil, "", err
	}

	resolved, err := resolver.Resolve(schema, dir, req.Operation)
	if err != nil {
		return nil, "", err
	}

	if req.Strict {
		resolved, err = strictify.Inject(resolved)
		if err != nil {
			return nil, "", err
		}
	}

	return resolved, dir, nil
}

// Validate runs Resolve and then checks req.PayloadJSON against the
// resulting schema, returning a *ucpschema.SchemaValidationError (never a
// bare Result-level false) when the payload fails to conform, so callers
// can translate it via ucpschema.CodeFor uniformly with every other
// pipeline failure.
func (d *Driver) Validate(req Request) (*Result, error) {
	resolved, _, err := d.Resolve(req)
	if err != nil {
		return nil, err
	}

	profileVersion, profileSupported, err := profileVersionOf(resolved)
	if err != nil {
		return nil, err
	}

	compiled, err := d.Engine.Compile(resolved)
	if err != nil {
		return nil, err
	}

	payload, err := schemawalk.DecodeJSON(req.PayloadJSON)
	if err != nil {
		return nil, &ucpschema.SchemaError{Message: "invalid payload JSON: " + err.Error()}
	}

	issues := compiled.Validate(payload)
	if len(issues) > 0 {
		return &Result{Valid: false, Issues: issues, ProfileVersion: profileVersion, ProfileSupported: profileSupported},
			&ucpschema.SchemaValidationError{Issues: issues}
	}
	return &Result{Valid: true, ProfileVersion: profileVersion, ProfileSupported: profileSupported}, nil
}

// loadSchema implements mode selection (spec.md §4.6): Explicit mode uses
// req.ExplicitSchema directly, bundled against req.ExplicitSchemaBase;
// self-describing mode composes the payload's capability graph, bundling
// each capability document against its own schema_url.
func (d *Driver) loadSchema(req Request) (ucpschema.Schema, ucpschema.Direction, error) {
	if req.ExplicitSchema != nil {
		if req.Direction == "" {
			return nil, "", &ucpschema.UsageError{Message: "--direction is required when --schema is explicit"}
		}
		bundled, err := (&bundler.Bundler{Base: req.ExplicitSchemaBase, Fetch: d.Fetch, ReadFile: d.ReadFile}).Bundle(req.ExplicitSchema)
		if err != nil {
			return nil, "", err
		}
		return bundled, req.Direction, nil
	}

	dir := req.Direction
	if dir == "" {
		payload, err := schemawalk.DecodeJSON(req.PayloadJSON)
		if err != nil {
			return nil, "", &ucpschema.SchemaError{Message: "invalid payload JSON: " + err.Error()}
		}
		payloadMap, ok := schemawalk.AsMap(payload)
		if !ok {
			return nil, "", &ucpschema.UsageError{Message: "payload must be a JSON object"}
		}
		inferred, err := capability.InferDirection(payloadMap)
		if err != nil {
			return nil, "", err
		}
		dir = inferred
	}

	// Self-describing mode has no schema-bearing field on the request side:
	// ucp.meta.profile is an opaque identifier, and only ucp.capabilities
	// drives the composer. A request-direction self-describing payload
	// without an explicit schema has nothing for the driver to load.
	if dir != ucpschema.DirectionResponse {
		return nil, "", &ucpschema.UsageError{Message: "self-describing mode requires a response payload (ucp.capabilities); request payloads need an explicit schema"}
	}

	composer := &capability.Composer{
		Fetch:      d.Fetch,
		ReadFile:   d.ReadFile,
		Mapper:     d.Mapper,
		BundleRefs: true,
	}
	composed, err := composer.Compose(req.PayloadJSON)
	if err != nil {
		return nil, "", err
	}
	return composed, dir, nil
}
