package lint

import (
	"fmt"
	"sort"

	"github.com/ucp-tools/ucpschema"
	"github.com/ucp-tools/ucpschema/bundler"
	"github.com/ucp-tools/ucpschema/internal/schemawalk"
)

// Severity levels for a Diagnostic.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Diagnostic codes, per spec.md §6, plus W003 (added): a schema's
// ucp_profile keyword (ucpschema.ProfileVersionKeyword) names a profile
// version outside this core's supported range.
const (
	CodeInvalidJSON        = "E001"
	CodeMissingFileRef     = "E002"
	CodeMissingAnchor      = "E003"
	CodeInvalidUCPShape    = "E004"
	CodeUnknownVisibility  = "E005"
	CodeMissingID          = "W001"
	CodeUnknownOperation   = "W002"
	CodeUnsupportedProfile = "W003"
)

// Diagnostic is one lint finding.
type Diagnostic struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Path     string `json:"path"`
	Message  string `json:"message"`
}

// Options configures a Lint pass.
type Options struct {
	// Bundler, if set, is used to surface E002/E003 by attempting a full
	// bundle of the schema; a nil Bundler skips that check (lint still
	// covers the annotation-shape and $id/operation-name checks).
	Bundler *bundler.Bundler

	// AllowedOperations, if non-empty, gates W002: any per-operation
	// annotation key outside this set is flagged.
	AllowedOperations []string
}

// Lint walks schema (and, if configured, attempts to bundle it) and
// returns every diagnostic found, sorted by path then code for
// deterministic output.
func Lint(schema ucpschema.Schema, opts Options) []Diagnostic {
	var diags []Diagnostic

	if _, hasID := schema["$id"]; !hasID {
		diags = append(diags, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeMissingID,
			Path:     "/",
			Message:  "schema has no $id",
		})
	}

	if rawProfile, hasProfile := schema[ucpschema.ProfileVersionKeyword]; hasProfile {
		profile, ok := rawProfile.(string)
		if !ok {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeInvalidUCPShape,
				Path:     "/" + ucpschema.ProfileVersionKeyword,
				Message:  "ucp_profile must be a string",
			})
		} else if supported, err := ucpschema.IsSupportedProfileVersion(profile); err != nil {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeInvalidUCPShape,
				Path:     "/" + ucpschema.ProfileVersionKeyword,
				Message:  err.Error(),
			})
		} else if !supported {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeUnsupportedProfile,
				Path:     "/" + ucpschema.ProfileVersionKeyword,
				Message:  fmt.Sprintf("ucp_profile %q is outside the supported range [%s, %s]", profile, ucpschema.MinSupportedProfileVersion, ucpschema.MaxTestedProfileVersion),
			})
		}
	}

	var allowed map[string]bool
	if len(opts.AllowedOperations) > 0 {
		allowed = make(map[string]bool, len(opts.AllowedOperations))
		for _, op := range opts.AllowedOperations {
			allowed[op] = true
		}
	}

	walkAnnotations(schema, "", allowed, &diags)

	if opts.Bundler != nil {
		if _, err := opts.Bundler.Bundle(schema); err != nil {
			diags = append(diags, classifyRefError(err))
		}
	}

	sort.Slice(diags, func(i, j int) bool {
		if diags[i].Path != diags[j].Path {
			return diags[i].Path < diags[j].Path
		}
		return diags[i].Code < diags[j].Code
	})
	return diags
}

// ExitCode translates a diagnostic list and the --strict flag into the
// lint exit code table from spec.md §6 (path-not-found, exit 2, is a
// filesystem condition handled by the caller before Lint ever runs).
func ExitCode(diags []Diagnostic, strict bool) int {
	var hasError, hasWarning bool
	for _, d := range diags {
		switch d.Severity {
		case SeverityError:
			hasError = true
		case SeverityWarning:
			hasWarning = true
		}
	}
	if hasError || (strict && hasWarning) {
		return ucpschema.ExitLintDiagnostics
	}
	return ucpschema.ExitLintClean
}

func walkAnnotations(schema map[string]any, path string, allowed map[string]bool, diags *[]Diagnostic) {
	if schema == nil {
		return
	}

	if props, ok := schemawalk.AsMap(schema["properties"]); ok {
		for name, raw := range props {
			propPath := schemawalk.PtrJoin(path, fmt.Sprintf("properties[%q]", name))
			propSchema, ok := schemawalk.AsMap(raw)
			if !ok {
				continue
			}
			for _, dir := range []ucpschema.Direction{ucpschema.DirectionRequest, ucpschema.DirectionResponse} {
				key := ucpschema.AnnotationKey(dir)
				if annRaw, present := propSchema[key]; present {
					lintAnnotation(annRaw, schemawalk.PtrJoin(propPath, "."+key), allowed, diags)
				}
			}
			walkAnnotations(propSchema, propPath, allowed, diags)
		}
	}

	if items, ok := schema["items"]; ok {
		switch v := items.(type) {
		case map[string]any:
			walkAnnotations(v, schemawalk.PtrJoin(path, "items"), allowed, diags)
		case []any:
			for i, it := range v {
				if itMap, ok := schemawalk.AsMap(it); ok {
					walkAnnotations(itMap, schemawalk.PtrJoin(path, fmt.Sprintf("items[%d]", i)), allowed, diags)
				}
			}
		}
	}

	if apMap, ok := schemawalk.AsMap(schema["additionalProperties"]); ok {
		walkAnnotations(apMap, schemawalk.PtrJoin(path, "additionalProperties"), allowed, diags)
	}

	for _, key := range []string{"$defs", "definitions"} {
		if defsMap, ok := schemawalk.AsMap(schema[key]); ok {
			for name, raw := range defsMap {
				if defMap, ok := schemawalk.AsMap(raw); ok {
					walkAnnotations(defMap, schemawalk.PtrJoin(path, fmt.Sprintf("%s[%q]", key, name)), allowed, diags)
				}
			}
		}
	}

	for _, key := range schemawalk.NestedSchemaKeywords {
		if arr, ok := schemawalk.AsSlice(schema[key]); ok {
			for i, it := range arr {
				if itMap, ok := schemawalk.AsMap(it); ok {
					walkAnnotations(itMap, schemawalk.PtrJoin(path, fmt.Sprintf("%s[%d]", key, i)), allowed, diags)
				}
			}
		}
	}

	if notMap, ok := schemawalk.AsMap(schema["not"]); ok {
		walkAnnotations(notMap, schemawalk.PtrJoin(path, "not"), allowed, diags)
	}
}

func lintAnnotation(raw any, path string, allowed map[string]bool, diags *[]Diagnostic) {
	switch v := raw.(type) {
	case string:
		if _, err := ucpschema.ParseVisibility(v); err != nil {
			*diags = append(*diags, Diagnostic{Severity: SeverityError, Code: CodeUnknownVisibility, Path: path, Message: fmt.Sprintf("unknown visibility %q", v)})
		}
	case map[string]any:
		for opName, visRaw := range v {
			opPath := schemawalk.PtrJoin(path, fmt.Sprintf("[%q]", opName))
			s, ok := visRaw.(string)
			if !ok {
				*diags = append(*diags, Diagnostic{Severity: SeverityError, Code: CodeInvalidUCPShape, Path: opPath, Message: "visibility must be a string"})
				continue
			}
			if _, err := ucpschema.ParseVisibility(s); err != nil {
				*diags = append(*diags, Diagnostic{Severity: SeverityError, Code: CodeUnknownVisibility, Path: opPath, Message: fmt.Sprintf("unknown visibility %q", s)})
			}
			if allowed != nil && !allowed[opName] {
				*diags = append(*diags, Diagnostic{Severity: SeverityWarning, Code: CodeUnknownOperation, Path: opPath, Message: fmt.Sprintf("unconventional operation name %q", opName)})
			}
		}
	default:
		*diags = append(*diags, Diagnostic{Severity: SeverityError, Code: CodeInvalidUCPShape, Path: path, Message: "must be a string or an object"})
	}
}

func classifyRefError(err error) Diagnostic {
	if ioErr, ok := err.(*ucpschema.IoError); ok {
		return Diagnostic{Severity: SeverityError, Code: CodeMissingFileRef, Path: "/", Message: ioErr.Error()}
	}
	return Diagnostic{Severity: SeverityError, Code: CodeMissingAnchor, Path: "/", Message: err.Error()}
}
