// Command ucp resolves and validates UCP-annotated JSON Schema documents:
// it strips ucp_request/ucp_response annotations for a direction and
// operation, composes self-describing capability graphs, validates payloads
// against the result, and lints schema files for malformed annotations.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ucp-tools/ucpschema"
)

func main() {
	cfg := NewConfig()

	rootCmd := &cobra.Command{
		Use:           "ucp",
		Short:         "Tooling for UCP-annotated JSON Schema",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			handler, err := cfg.Log.NewHandler(os.Stderr)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(handler))
			return nil
		},
	}
	cfg.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newResolveCmd(cfg))
	rootCmd.AddCommand(newValidateCmd(cfg))
	rootCmd.AddCommand(newLintCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(ucpschema.CodeFor(err))
	}
}
