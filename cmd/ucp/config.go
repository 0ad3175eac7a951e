package main

import (
	"net/url"

	"github.com/spf13/pflag"

	"github.com/ucp-tools/ucpschema/capability"
	"github.com/ucp-tools/ucpschema/driver"
	"github.com/ucp-tools/ucpschema/internal/ucplog"
)

// Flags holds CLI flag names for the pipeline configuration, following the
// Config/Flags/RegisterFlags split used throughout this tooling's reference
// ecosystem (one struct owning names, one owning values).
type Flags struct {
	Schema     string
	Direction  string
	Operation  string
	Strict     string
	LocalBase  string
	RemoteBase string
	Pretty     string
	Output     string
}

// Config holds CLI flag values shared by the resolve/validate/lint
// subcommands. Create one with NewConfig, register its flags with
// RegisterFlags, and build a Driver from it with NewDriver once flags are
// parsed.
type Config struct {
	Flags Flags

	Schema     string
	Direction  string
	Operation  string
	Strict     bool
	LocalBase  string
	RemoteBase string
	Pretty     bool
	Output     string

	Log *ucplog.Config
}

// NewConfig returns a Config with conventional flag names.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Schema:     "schema",
			Direction:  "direction",
			Operation:  "operation",
			Strict:     "strict",
			LocalBase:  "local-base",
			RemoteBase: "remote-base",
			Pretty:     "pretty",
			Output:     "output",
		},
		Pretty: true,
		Log:    ucplog.NewConfig(),
	}
}

// RegisterFlags adds the pipeline flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Schema, c.Flags.Schema, "",
		"path or URL to an explicit schema document (selects Explicit mode)")
	flags.StringVar(&c.Direction, c.Flags.Direction, "",
		"ucp_request/ucp_response direction: request or response")
	flags.StringVar(&c.Operation, c.Flags.Operation, "",
		"operation name used to resolve per-operation annotations")
	flags.BoolVar(&c.Strict, c.Flags.Strict, false,
		"inject additionalProperties: false at every object-schema site")
	flags.StringVar(&c.LocalBase, c.Flags.LocalBase, "",
		"local directory capability schema URLs map to (selects self-describing local mode)")
	flags.StringVar(&c.RemoteBase, c.Flags.RemoteBase, "",
		"URL prefix stripped before mapping a schema URL under --local-base")
	flags.BoolVar(&c.Pretty, c.Flags.Pretty, true,
		"pretty-print output JSON; false emits RFC 8785 canonical bytes")
	flags.StringVarP(&c.Output, c.Flags.Output, "o", "-",
		"output file path (- for stdout)")

	c.Log.RegisterFlags(flags)
}

// NewDriver builds a driver.Driver from the parsed flag values.
func (c *Config) NewDriver() *driver.Driver {
	var mapper *capability.Mapper
	if c.LocalBase != "" {
		mapper = &capability.Mapper{LocalBase: c.LocalBase, RemoteBase: c.RemoteBase}
	}
	return driver.New(newHTTPFetcher(), osFileReader{}, mapper)
}

// resolveExplicitSchema loads --schema, if set, into a schema document plus
// its base location for relative $ref resolution.
func (c *Config) resolveExplicitSchema() (map[string]any, *url.URL, error) {
	if c.Schema == "" {
		return nil, nil, nil
	}

	var b []byte
	var base *url.URL
	var err error

	if u, parseErr := url.Parse(c.Schema); parseErr == nil && (u.Scheme == "http" || u.Scheme == "https") {
		b, err = newHTTPFetcher().Fetch(u)
		base = u
	} else {
		b, err = osFileReader{}.ReadFile(c.Schema)
		base = &url.URL{Path: c.Schema}
	}
	if err != nil {
		return nil, nil, err
	}

	doc, err := decodeSchemaJSON(b)
	if err != nil {
		return nil, nil, err
	}
	return doc, base, nil
}
