package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mercator-hq/gatekeeper/pkg/catalog"
	"mercator-hq/gatekeeper/pkg/cli"
	"mercator-hq/gatekeeper/pkg/config"
	"mercator-hq/gatekeeper/pkg/contract"
	"mercator-hq/gatekeeper/pkg/engine"
	"mercator-hq/gatekeeper/pkg/evidence"
	"mercator-hq/gatekeeper/pkg/evidence/recorder"
	"mercator-hq/gatekeeper/pkg/evidence/storage"
	"mercator-hq/gatekeeper/pkg/risk"
	"mercator-hq/gatekeeper/pkg/semantic"
	"mercator-hq/gatekeeper/pkg/strategy"
	"mercator-hq/gatekeeper/pkg/telemetry/logging"
	"mercator-hq/gatekeeper/pkg/validation"
)

var validateFlags struct {
	contractFile string
	catalogFile  string
	mode         string
	format       string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a contract against the policy catalog",
	Long: `Validate a data-sharing contract against the governance policy catalog.

The run assesses the contract's risk, selects which policies to evaluate
based on the chosen mode, runs rule-based and semantic policies, and prints
the merged report. A contract with critical or high severity violations
fails the command.

Semantic policies degrade gracefully: when the reasoning backend is down or
unconfigured they are reported as skipped, never as failures.

Examples:
  # Validate with the default BALANCED mode
  gatekeeper validate --contract orders.yaml --catalog policies/catalog.yaml

  # Exhaustive review
  gatekeeper validate --contract orders.yaml --mode THOROUGH

  # JSON output for CI/CD
  gatekeeper validate --contract orders.yaml --format json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.contractFile, "contract", "f", "", "contract file to validate (required)")
	validateCmd.Flags().StringVar(&validateFlags.catalogFile, "catalog", "", "policy catalog file (overrides config)")
	validateCmd.Flags().StringVarP(&validateFlags.mode, "mode", "m", string(strategy.ModeBalanced), "validation mode: FAST, BALANCED, THOROUGH, ADAPTIVE")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
	validateCmd.MarkFlagRequired("contract")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig(cmd)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	} else {
		cfg.Telemetry.Logging.Writer = os.Stderr
	}

	mode, err := strategy.ParseMode(validateFlags.mode)
	if err != nil {
		return err
	}
	format, err := cli.ParseOutputFormat(validateFlags.format)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Telemetry.Logging)
	if err != nil {
		return err
	}

	catalogPath := cfg.Catalog.Path
	if validateFlags.catalogFile != "" {
		catalogPath = validateFlags.catalogFile
	}
	defs, err := catalog.LoadFile(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	registry, err := catalog.NewRegistry(defs)
	if err != nil {
		return fmt.Errorf("failed to build catalog registry: %w", err)
	}

	c, err := loadContract(validateFlags.contractFile)
	if err != nil {
		return err
	}

	opts := engine.Options{
		Registry: registry,
		Assessor: risk.NewAssessor(cfg.Risk.Weights, cfg.Risk.Bands),
		Logger:   logger,
	}

	// The semantic path needs a configured backend; without one the engine
	// reports planned semantic policies as skipped.
	if cfg.Backend.BaseURL != "" {
		client, err := semantic.NewClient(cfg.Backend, logger)
		if err != nil {
			return fmt.Errorf("failed to create backend client: %w", err)
		}
		evaluator := semantic.NewEvaluator(client, cfg.Semantic, logger)
		defer evaluator.Close()
		opts.Semantic = evaluator
	}

	if cfg.Evidence.Recorder.Enabled {
		store, err := openEvidenceStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		rec := recorder.NewRecorder(store, &cfg.Evidence.Recorder, logger)
		defer rec.Close()
		opts.Recorder = rec
	}

	eng, err := engine.New(opts)
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
	if cfg.Backend.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Backend.Timeout*4)
		defer cancel()
	}

	report, err := eng.Validate(ctx, c, mode)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	if format == cli.FormatJSON {
		if err := cli.WriteJSON(os.Stdout, report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	if report.Result.Status == validation.StatusFailed {
		return cli.NewPolicyFailure("validate", fmt.Errorf("contract failed validation"))
	}
	return nil
}

// loadContract reads and structurally parses a contract YAML file.
func loadContract(path string) (*contract.Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract file %q: %w", path, err)
	}
	var c contract.Contract
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse contract file %q: %w", path, err)
	}
	return &c, nil
}

// openEvidenceStorage opens the configured evidence backend.
func openEvidenceStorage(cfg *config.Config) (evidence.Storage, error) {
	switch cfg.Evidence.Backend {
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		store, err := storage.NewSQLiteStorage(&cfg.Evidence.SQLite)
		if err != nil {
			return nil, fmt.Errorf("failed to open evidence storage: %w", err)
		}
		return store, nil
	}
}

// printReport renders a human-readable validation report.
func printReport(report *engine.Report) {
	fmt.Printf("Contract:  %s (%s)\n", report.ContractName, short(report.ContractDigest))
	fmt.Printf("Catalog:   %s\n", short(report.CatalogVersion))
	fmt.Printf("Mode:      %s\n", report.Mode)
	fmt.Printf("Risk:      %s (score %g)\n", report.Risk.Level, report.Risk.Score)
	for _, factor := range report.Risk.Factors {
		fmt.Printf("           - %s\n", factor)
	}
	fmt.Println()

	result := report.Result
	for _, v := range result.Violations {
		fmt.Printf("✗ [%s] %s: %s\n", v.Severity, v.PolicyID, v.Message)
		if len(v.AffectedFields) > 0 {
			fmt.Printf("    fields: %v\n", v.AffectedFields)
		}
		if v.Confidence != nil {
			fmt.Printf("    confidence: %.0f\n", *v.Confidence)
		}
		if v.Remediation != "" {
			fmt.Printf("    remediation: %s\n", v.Remediation)
		}
	}
	for _, s := range result.Skipped {
		fmt.Printf("⚠  skipped %s (%s)\n", s.PolicyID, s.Reason)
	}
	if len(result.Violations) == 0 && len(result.Skipped) == 0 {
		fmt.Println("✓ All policies passed")
	}

	fmt.Println()
	fmt.Printf("Status: %s  (%d passed, %d warnings, %d failures, %d skipped)\n",
		result.Status, result.PassedCount, result.WarningCount,
		result.FailureCount, len(result.Skipped))
	fmt.Printf("Run %s completed in %dms\n", report.RunID, report.Duration().Milliseconds())
}

// short abbreviates a content hash for display.
func short(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
