package main

import (
	"os"

	goccyjson "github.com/goccy/go-json"

	"github.com/ucp-tools/ucpschema"
	"github.com/ucp-tools/ucpschema/canonicaljson"
)

// decodeSchemaJSON decodes b (already YAML-transcoded by the caller's
// FileReader/Fetcher) into a schema document.
func decodeSchemaJSON(b []byte) (ucpschema.Schema, error) {
	var v map[string]any
	if err := goccyjson.Unmarshal(b, &v); err != nil {
		return nil, &ucpschema.SchemaError{Message: "invalid schema JSON: " + err.Error()}
	}
	return v, nil
}

// writeJSON renders v per cfg.Pretty (indented goccy/go-json, or RFC 8785
// canonical bytes) and writes it to cfg.Output (stdout for "-").
func writeJSON(cfg *Config, v any) error {
	var out []byte
	var err error
	if cfg.Pretty {
		out, err = goccyjson.MarshalIndent(v, "", "  ")
	} else {
		out, err = canonicaljson.Marshal(v)
	}
	if err != nil {
		return &ucpschema.IoError{Op: "marshal_output", Err: err}
	}
	out = append(out, '\n')

	if cfg.Output == "" || cfg.Output == "-" {
		_, err = os.Stdout.Write(out)
	} else {
		err = os.WriteFile(cfg.Output, out, 0o644)
	}
	if err != nil {
		return &ucpschema.IoError{Op: "write_output", Err: err}
	}
	return nil
}
