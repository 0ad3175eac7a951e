package main

import (
	"github.com/spf13/cobra"

	"github.com/ucp-tools/ucpschema"
	"github.com/ucp-tools/ucpschema/driver"
)

func newResolveCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [payload-file]",
		Short: "Resolve a UCP-annotated schema for one direction and operation",
		Long: `resolve composes or loads a schema (self-describing from the payload's
ucp.capabilities, or explicitly via --schema), strips ucp_request/ucp_response
annotations for the given --direction and --operation, and prints the
resulting plain JSON Schema.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runResolve(cfg, args)
		},
	}
}

func runResolve(cfg *Config, args []string) error {
	req, err := buildRequest(cfg, args)
	if err != nil {
		return err
	}

	d := cfg.NewDriver()
	resolved, _, err := d.Resolve(req)
	if err != nil {
		return err
	}
	return writeJSON(cfg, resolved)
}

func buildRequest(cfg *Config, args []string) (driver.Request, error) {
	var payload []byte
	if len(args) == 1 {
		b, err := readInputFile(args[0])
		if err != nil {
			return driver.Request{}, err
		}
		payload = b
	}

	explicitSchema, base, err := cfg.resolveExplicitSchema()
	if err != nil {
		return driver.Request{}, err
	}

	var dir ucpschema.Direction
	if cfg.Direction != "" {
		dir, err = parseDirection(cfg.Direction)
		if err != nil {
			return driver.Request{}, err
		}
	}

	return driver.Request{
		PayloadJSON:        payload,
		ExplicitSchema:     explicitSchema,
		ExplicitSchemaBase: base,
		Direction:          dir,
		Operation:          ucpschema.Operation(cfg.Operation),
		Strict:             cfg.Strict,
	}, nil
}

func parseDirection(s string) (ucpschema.Direction, error) {
	switch ucpschema.Direction(s) {
	case ucpschema.DirectionRequest, ucpschema.DirectionResponse:
		return ucpschema.Direction(s), nil
	default:
		return "", &ucpschema.UsageError{Message: "unknown --direction " + s + ", want request or response"}
	}
}
