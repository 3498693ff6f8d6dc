package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mercator-hq/gatekeeper/pkg/catalog"
	"mercator-hq/gatekeeper/pkg/cli"
)

var lintFlags struct {
	catalogFile string
	dir         string
	format      string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate policy catalog files",
	Long: `Validate policy catalog files for syntax and semantic errors.

The lint command parses catalog files and performs full validation:
  - YAML syntax validation
  - Policy structure validation (required fields, known severities and
    categories, closed rule variant set)
  - Rule spec validation (patterns compile, predicates carry their arguments)
  - Duplicate id detection

Examples:
  # Lint a single catalog
  gatekeeper lint --catalog policies/catalog.yaml

  # Lint every catalog in a directory
  gatekeeper lint --dir policies/

  # JSON output for CI/CD
  gatekeeper lint --catalog policies/catalog.yaml --format json`,
	RunE: lintCatalogs,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVar(&lintFlags.catalogFile, "catalog", "", "catalog file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of catalog files")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the validation outcome for a single catalog file.
type LintResult struct {
	File     string `json:"file"`
	Valid    bool   `json:"valid"`
	Policies int    `json:"policies"`
	Error    string `json:"error,omitempty"`
}

func lintCatalogs(cmd *cobra.Command, args []string) error {
	if lintFlags.catalogFile == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --catalog or --dir must be specified")
	}
	format, err := cli.ParseOutputFormat(lintFlags.format)
	if err != nil {
		return err
	}

	var files []string
	if lintFlags.catalogFile != "" {
		files = append(files, lintFlags.catalogFile)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list catalog files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no catalog files found")
	}

	results := make([]LintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintCatalogFile(file))
	}

	if format == cli.FormatJSON {
		if err := cli.WriteJSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		printLintResults(results)
	}

	for _, result := range results {
		if !result.Valid {
			return cli.NewPolicyFailure("lint", fmt.Errorf("catalog validation failed"))
		}
	}
	return nil
}

func lintCatalogFile(path string) LintResult {
	result := LintResult{File: path}

	defs, err := catalog.LoadFile(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Valid = true
	result.Policies = len(defs)
	return result
}

func printLintResults(results []LintResult) {
	failed := 0
	for _, result := range results {
		if result.Valid {
			fmt.Printf("✓ %s: %d policies\n", result.File, result.Policies)
		} else {
			fmt.Printf("✗ %s: %s\n", result.File, result.Error)
			failed++
		}
	}
	fmt.Printf("\nSummary: %d file(s), %d invalid\n", len(results), failed)
}
