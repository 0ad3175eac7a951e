package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ucp-tools/ucpschema"
)

type validateFlags struct {
	json bool
}

func newValidateCmd(cfg *Config) *cobra.Command {
	vf := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate <payload-file>",
		Short: "Validate a payload against its resolved UCP schema",
		Long: `validate resolves a schema exactly like resolve, then checks the payload
against it and reports every nonconformance. Exit code 1 means the payload
doesn't conform; 2 means the schema/capability graph itself was invalid; 3
means a file or network operation failed.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(cfg, vf, args)
		},
	}
	cmd.Flags().BoolVar(&vf.json, "json", false, `emit {"valid": bool, "errors": [...]} instead of human-readable output`)
	return cmd
}

// validationReport is the --json shape for validate's outcome.
type validationReport struct {
	Valid  bool                        `json:"valid"`
	Errors []ucpschema.ValidationIssue `json:"errors"`
}

func runValidate(cfg *Config, vf *validateFlags, args []string) error {
	req, err := buildRequest(cfg, args)
	if err != nil {
		return err
	}

	d := cfg.NewDriver()
	result, verr := d.Validate(req)
	issueErr, isValidationErr := verr.(*ucpschema.SchemaValidationError)
	if verr != nil && !isValidationErr {
		return verr
	}

	var issues []ucpschema.ValidationIssue
	if isValidationErr {
		issues = issueErr.Issues
	}

	if vf.json {
		report := validationReport{Valid: verr == nil, Errors: issues}
		if report.Errors == nil {
			report.Errors = []ucpschema.ValidationIssue{}
		}
		if err := writeJSON(cfg, report); err != nil {
			return err
		}
		if isValidationErr {
			return issueErr
		}
		return nil
	}

	if isValidationErr {
		printIssues(issues)
		return issueErr
	}
	if cfg.Output == "" || cfg.Output == "-" {
		fmt.Println("ok")
	}
	_ = result
	return nil
}

func printIssues(issues []ucpschema.ValidationIssue) {
	for _, issue := range issues {
		fmt.Printf("%s: %s\n", issue.Path, issue.Message)
	}
}
