package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/gatekeeper/pkg/catalog"
	"mercator-hq/gatekeeper/pkg/contract"
	"mercator-hq/gatekeeper/pkg/evidence"
	"mercator-hq/gatekeeper/pkg/evidence/recorder"
	"mercator-hq/gatekeeper/pkg/risk"
	"mercator-hq/gatekeeper/pkg/rules"
	"mercator-hq/gatekeeper/pkg/semantic"
	"mercator-hq/gatekeeper/pkg/strategy"
	"mercator-hq/gatekeeper/pkg/telemetry/logging"
	"mercator-hq/gatekeeper/pkg/telemetry/metrics"
	"mercator-hq/gatekeeper/pkg/validation"
)

// Options wires the engine's collaborators. Registry is required; the rest
// are optional and degrade gracefully when absent.
type Options struct {
	// Registry provides catalog snapshots. Required.
	Registry *catalog.Registry

	// Assessor computes contract risk. Defaults to one with default weights.
	Assessor *risk.Assessor

	// Rules is the deterministic evaluator. Defaults to a fresh one.
	Rules *rules.Evaluator

	// Semantic is the reasoning-backend evaluator. When nil, planned
	// semantic policies are skipped as backend-unavailable.
	Semantic *semantic.Evaluator

	// Recorder persists evidence records. Nil disables evidence.
	Recorder *recorder.Recorder

	// Metrics observes runs. Nil disables metrics.
	Metrics *metrics.Collector

	// Logger is the base logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// Engine orchestrates one validation run end to end: risk assessment,
// strategy selection, rule and semantic evaluation, merging, evidence and
// metrics. Backend trouble degrades a run (skips), it never fails one.
type Engine struct {
	registry *catalog.Registry
	assessor *risk.Assessor
	rules    *rules.Evaluator
	semantic *semantic.Evaluator
	recorder *recorder.Recorder
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// New creates a validation engine.
func New(opts Options) (*Engine, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("engine requires a catalog registry")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Assessor == nil {
		opts.Assessor = risk.NewAssessor(risk.Weights{}, risk.Bands{})
	}
	if opts.Rules == nil {
		opts.Rules = rules.NewEvaluator(opts.Logger)
	}

	return &Engine{
		registry: opts.Registry,
		assessor: opts.Assessor,
		rules:    opts.Rules,
		semantic: opts.Semantic,
		recorder: opts.Recorder,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With("component", "engine"),
	}, nil
}

// Validate runs the full validation sequence for one contract. It returns
// an error only for a structurally invalid contract or an unknown mode;
// every other failure (backend down, deadline expiry, storage trouble)
// degrades the report instead of failing the run.
//
// The run takes one catalog snapshot up front and uses it throughout, so a
// concurrent catalog reload never produces a mixed report.
func (e *Engine) Validate(ctx context.Context, c *contract.Contract, mode strategy.Mode) (*Report, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	ctx = logging.WithContract(ctx, c.Name)
	ctx = logging.WithMode(ctx, string(mode))
	logger := logging.FromContext(ctx, e.logger)

	snap := e.registry.Snapshot()
	startedAt := time.Now()

	assessment := e.assessor.Assess(c)
	plan, err := strategy.Select(assessment.Level, mode, snap)
	if err != nil {
		return nil, err
	}

	logger.Info("validation run started",
		"risk_score", assessment.Score,
		"risk_level", assessment.Level,
		"rule_policies", len(snap.RulePolicyIDs()),
		"semantic_policies", len(plan.SemanticPolicyIDs),
	)

	// Semantic evaluation fans out to the backend; rules run here in the
	// meantime.
	outcomeCh := make(chan []semantic.Outcome, 1)
	go func() {
		outcomeCh <- e.evaluateSemantic(ctx, c, snap, plan.SemanticPolicyIDs)
	}()

	ruleIDs := snap.RulePolicyIDs()
	violations := e.rules.Evaluate(c, snap, ruleIDs)
	outcomes := <-outcomeCh

	var skipped []validation.SkippedPolicy
	evaluated := len(ruleIDs)
	for _, out := range outcomes {
		switch {
		case out.Skip != nil:
			skipped = append(skipped, *out.Skip)
		case out.Violation != nil:
			violations = append(violations, *out.Violation)
			evaluated++
		default:
			evaluated++
		}
	}

	result := validation.Merge(violations, skipped, evaluated)
	completedAt := time.Now()

	report := &Report{
		RunID:          runID,
		ContractName:   c.Name,
		ContractDigest: c.Digest(),
		CatalogVersion: snap.Version(),
		Mode:           mode,
		Risk:           assessment,
		Plan:           plan,
		Result:         result,
		StartedAt:      startedAt,
		CompletedAt:    completedAt,
	}

	e.observe(report, outcomes)
	e.record(ctx, report, logger)

	logger.Info("validation run completed",
		"status", result.Status,
		"violations", len(result.Violations),
		"skipped", len(result.Skipped),
		"duration_ms", report.Duration().Milliseconds(),
	)

	return report, nil
}

// evaluateSemantic runs the planned semantic subset, degrading to
// backend-unavailable skips when no evaluator is configured.
func (e *Engine) evaluateSemantic(ctx context.Context, c *contract.Contract, snap *catalog.Snapshot, policyIDs []string) []semantic.Outcome {
	if len(policyIDs) == 0 {
		return nil
	}
	if e.semantic == nil {
		outcomes := make([]semantic.Outcome, 0, len(policyIDs))
		for _, id := range policyIDs {
			outcomes = append(outcomes, semantic.Outcome{
				PolicyID: id,
				Skip: &validation.SkippedPolicy{
					PolicyID: id,
					Reason:   validation.SkipBackendUnavailable,
				},
			})
		}
		return outcomes
	}
	return e.semantic.Evaluate(ctx, c, snap, policyIDs)
}

// observe emits run metrics.
func (e *Engine) observe(report *Report, outcomes []semantic.Outcome) {
	if e.metrics == nil {
		return
	}

	e.metrics.RecordRun(string(report.Mode), string(report.Result.Status), report.Duration())
	e.metrics.RecordRiskLevel(string(report.Risk.Level))

	for _, v := range report.Result.Violations {
		e.metrics.RecordViolation(string(v.Source), string(v.Severity))
	}
	for _, s := range report.Result.Skipped {
		e.metrics.RecordSkip(string(s.Reason))
	}
	for _, out := range outcomes {
		if out.Cached {
			e.metrics.RecordVerdictCacheHit()
		} else {
			e.metrics.RecordVerdictCacheMiss()
		}
	}
	if e.semantic != nil {
		e.metrics.UpdateCacheSize("verdict", e.semantic.CacheSize())
	}
}

// record persists the run as an evidence record. Recording failures are
// logged, never propagated: evidence must not block validation.
func (e *Engine) record(ctx context.Context, report *Report, logger *slog.Logger) {
	if e.recorder == nil {
		return
	}

	if err := e.recorder.Record(ctx, buildRecord(report)); err != nil {
		logger.Warn("failed to record evidence", "error", err)
	}
}

// buildRecord flattens a report into its evidence form.
func buildRecord(report *Report) *evidence.Record {
	result := report.Result

	violations := make([]evidence.ViolationRecord, 0, len(result.Violations))
	for _, v := range result.Violations {
		violations = append(violations, evidence.ViolationRecord{
			PolicyID:       v.PolicyID,
			Severity:       string(v.Severity),
			Message:        v.Message,
			AffectedFields: v.AffectedFields,
			Source:         string(v.Source),
			Confidence:     v.Confidence,
		})
	}

	skipped := make([]evidence.SkipRecord, 0, len(result.Skipped))
	for _, s := range result.Skipped {
		skipped = append(skipped, evidence.SkipRecord{
			PolicyID: s.PolicyID,
			Reason:   string(s.Reason),
		})
	}

	return &evidence.Record{
		ID:             uuid.NewString(),
		RunID:          report.RunID,
		ContractName:   report.ContractName,
		ContractDigest: report.ContractDigest,
		CatalogVersion: report.CatalogVersion,
		Mode:           string(report.Mode),
		RiskScore:      int(report.Risk.Score),
		RiskLevel:      string(report.Risk.Level),
		RiskFactors:    report.Risk.Factors,
		Status:         string(result.Status),
		Violations:     violations,
		Skipped:        skipped,
		PassedCount:    result.PassedCount,
		WarningCount:   result.WarningCount,
		FailureCount:   result.FailureCount,
		StartedAt:      report.StartedAt,
		CompletedAt:    report.CompletedAt,
		DurationMs:     report.Duration().Milliseconds(),
	}
}
