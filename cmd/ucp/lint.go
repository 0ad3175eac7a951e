package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	goccyjson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ucp-tools/ucpschema"
	"github.com/ucp-tools/ucpschema/bundler"
	"github.com/ucp-tools/ucpschema/lint"
)

type lintFlags struct {
	format            string
	strict            bool
	allowedOperations string
}

func newLintCmd(cfg *Config) *cobra.Command {
	lf := &lintFlags{format: "human"}
	cmd := &cobra.Command{
		Use:   "lint <path...>",
		Short: "Statically check UCP annotation shape without resolving",
		Long: `lint walks one or more schema files (or directories of them) looking for
malformed ucp_request/ucp_response annotations, unknown visibilities,
missing $ids, and unreachable $refs, without performing full annotation
resolution. Exit code is 0 for a clean run (or warnings-only without
--strict), 1 if any error (or, with --strict, any warning) was found,
2 if a given path doesn't exist.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runLint(cfg, lf, args)
		},
	}
	cmd.Flags().StringVar(&lf.format, "format", "human", "output format: human or json")
	cmd.Flags().BoolVar(&lf.strict, "strict", false, "treat warnings as failing diagnostics")
	cmd.Flags().StringVar(&lf.allowedOperations, "allowed-operations", "",
		"comma-separated conventional operation names (gates W002)")
	return cmd
}

type fileReport struct {
	Path        string           `json:"path"`
	Diagnostics []lint.Diagnostic `json:"diagnostics"`
}

func runLint(cfg *Config, lf *lintFlags, args []string) error {
	files, err := expandLintPaths(args)
	if err != nil {
		return err
	}

	var allowed []string
	if lf.allowedOperations != "" {
		allowed = strings.Split(lf.allowedOperations, ",")
		for i := range allowed {
			allowed[i] = strings.TrimSpace(allowed[i])
		}
	}

	reports := make([]fileReport, len(files))
	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			diags, lintErr := lintFile(path, allowed)
			mu.Lock()
			reports[i] = fileReport{Path: path, Diagnostics: diags}
			mu.Unlock()
			return lintErr
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Path < reports[j].Path })

	var worst []lint.Diagnostic
	for _, r := range reports {
		worst = append(worst, r.Diagnostics...)
	}

	if lf.format == "json" {
		out, err := goccyjson.MarshalIndent(reports, "", "  ")
		if err != nil {
			return &ucpschema.IoError{Op: "marshal_output", Err: err}
		}
		fmt.Println(string(out))
	} else {
		printHuman(reports)
	}

	os.Exit(lint.ExitCode(worst, lf.strict))
	return nil
}

func lintFile(path string, allowed []string) ([]lint.Diagnostic, error) {
	b, err := readInputFile(path)
	if err != nil {
		if ioErr, ok := err.(*ucpschema.IoError); ok {
			return []lint.Diagnostic{{Severity: lint.SeverityError, Code: lint.CodeInvalidJSON, Path: "/", Message: ioErr.Error()}}, nil
		}
		return nil, err
	}

	schema, err := decodeSchemaJSON(b)
	if err != nil {
		return []lint.Diagnostic{{Severity: lint.SeverityError, Code: lint.CodeInvalidJSON, Path: "/", Message: err.Error()}}, nil
	}

	b2 := &bundler.Bundler{
		Base:     &url.URL{Path: path},
		Fetch:    newHTTPFetcher(),
		ReadFile: osFileReader{},
	}
	diags := lint.Lint(schema, lint.Options{Bundler: b2, AllowedOperations: allowed})
	return diags, nil
}

func printHuman(reports []fileReport) {
	errColor := color.New(color.FgRed).SprintFunc()
	warnColor := color.New(color.FgYellow).SprintFunc()
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			label := errColor(d.Code)
			if d.Severity == lint.SeverityWarning {
				label = warnColor(d.Code)
			}
			fmt.Printf("%s: %s %s: %s\n", r.Path, label, d.Path, d.Message)
		}
	}
}

func expandLintPaths(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, &ucpschema.SchemaError{Path: arg, Message: "path not found: " + err.Error()}
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(p)) {
			case ".json", ".yaml", ".yml":
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, &ucpschema.IoError{Op: "walk_dir", Err: err}
		}
	}
	return files, nil
}
