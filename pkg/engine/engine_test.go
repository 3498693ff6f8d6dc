package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/gatekeeper/pkg/catalog"
	"mercator-hq/gatekeeper/pkg/contract"
	"mercator-hq/gatekeeper/pkg/evidence"
	"mercator-hq/gatekeeper/pkg/evidence/recorder"
	"mercator-hq/gatekeeper/pkg/evidence/storage"
	"mercator-hq/gatekeeper/pkg/semantic"
	"mercator-hq/gatekeeper/pkg/strategy"
	"mercator-hq/gatekeeper/pkg/validation"
)

// stubBackend scripts reasoning-backend behavior per test.
type stubBackend struct {
	calls    atomic.Int32
	complete func(ctx context.Context, req *semantic.Request) (*semantic.Response, error)
}

func (s *stubBackend) Complete(ctx context.Context, req *semantic.Request) (*semantic.Response, error) {
	s.calls.Add(1)
	return s.complete(ctx, req)
}

func compliantBackend() *stubBackend {
	return &stubBackend{
		complete: func(ctx context.Context, req *semantic.Request) (*semantic.Response, error) {
			return &semantic.Response{Text: `{"compliant": true, "confidence": 95, "reasoning": "ok"}`}, nil
		},
	}
}

func downBackend() *stubBackend {
	return &stubBackend{
		complete: func(ctx context.Context, req *semantic.Request) (*semantic.Response, error) {
			return nil, &semantic.BackendError{StatusCode: 503, Message: "unavailable"}
		},
	}
}

// testRegistry holds one rule policy (PII requires retention) and two
// semantic policies, one of them always-run.
func testRegistry(t *testing.T) *catalog.Registry {
	t.Helper()

	defs := []*catalog.PolicyDefinition{
		{
			ID:          "gov-001",
			Category:    catalog.CategorySensitiveData,
			Severity:    catalog.SeverityCritical,
			Remediation: "declare a retention period",
			Rule: &catalog.RuleSpec{
				Type: catalog.RuleConditional,
				Conditional: &catalog.ConditionalSpec{
					If:   catalog.Predicate{Kind: catalog.PredicateContainsPII},
					Then: catalog.Predicate{Kind: catalog.PredicateRetentionDeclared},
				},
			},
		},
		{
			ID:                  "sem-001",
			Category:            catalog.CategorySemantic,
			Severity:            catalog.SeverityHigh,
			PromptTemplate:      "Assess {{name}} purpose limitation",
			ConfidenceThreshold: 70,
			AlwaysRun:           true,
		},
		{
			ID:                  "sem-002",
			Category:            catalog.CategorySemantic,
			Severity:            catalog.SeverityMedium,
			PromptTemplate:      "Assess {{name}} data minimization",
			ConfidenceThreshold: 70,
		},
	}

	registry, err := catalog.NewRegistry(defs)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return registry
}

// piiContract violates gov-001 (PII, no retention) and lands at HIGH risk.
func piiContract() *contract.Contract {
	return &contract.Contract{
		Name:           "customers",
		Classification: contract.ClassificationConfidential,
		ContainsPII:    true,
		Fields: []contract.Field{
			{Name: "email", Type: "string", Description: "customer email"},
		},
		UseCases: []string{"billing"},
	}
}

// lowRiskContract passes gov-001 and lands at LOW risk.
func lowRiskContract() *contract.Contract {
	return &contract.Contract{
		Name:           "inventory",
		Classification: contract.ClassificationInternal,
		RetentionDays:  30,
		Fields: []contract.Field{
			{Name: "sku", Type: "string", Description: "stock keeping unit"},
		},
	}
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Registry == nil {
		opts.Registry = testRegistry(t)
	}
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func newSemanticEvaluator(t *testing.T, backend semantic.Backend) *semantic.Evaluator {
	t.Helper()
	e := semantic.NewEvaluator(backend, semantic.EvaluatorConfig{Workers: 2}, nil)
	t.Cleanup(e.Close)
	return e
}

func TestEngine_FastModeRunsRulesOnly(t *testing.T) {
	backend := compliantBackend()
	e := newTestEngine(t, Options{Semantic: newSemanticEvaluator(t, backend)})

	report, err := e.Validate(context.Background(), piiContract(), strategy.ModeFast)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if report.RunID == "" {
		t.Error("RunID is empty")
	}
	if len(report.Plan.SemanticPolicyIDs) != 0 {
		t.Errorf("FAST plan included semantic policies: %v", report.Plan.SemanticPolicyIDs)
	}
	if got := backend.calls.Load(); got != 0 {
		t.Errorf("backend calls = %d, want 0", got)
	}

	result := report.Result
	if result.Status != validation.StatusFailed {
		t.Errorf("Status = %q, want failed", result.Status)
	}
	if len(result.Violations) != 1 || result.Violations[0].PolicyID != "gov-001" {
		t.Errorf("Violations = %+v, want one from gov-001", result.Violations)
	}
	if result.Violations[0].Source != validation.SourceRule {
		t.Errorf("Source = %q, want rule", result.Violations[0].Source)
	}
}

func TestEngine_BalancedRunsAlwaysRunSubset(t *testing.T) {
	backend := compliantBackend()
	e := newTestEngine(t, Options{Semantic: newSemanticEvaluator(t, backend)})

	report, err := e.Validate(context.Background(), piiContract(), strategy.ModeBalanced)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if got := report.Plan.SemanticPolicyIDs; len(got) != 1 || got[0] != "sem-001" {
		t.Errorf("BALANCED plan = %v, want [sem-001]", got)
	}
	if got := backend.calls.Load(); got != 1 {
		t.Errorf("backend calls = %d, want 1", got)
	}

	// One rule violation, one semantic pass: rule policy failed, semantic passed
	result := report.Result
	if result.PassedCount != 1 {
		t.Errorf("PassedCount = %d, want 1", result.PassedCount)
	}
	if result.FailureCount != 1 {
		t.Errorf("FailureCount = %d, want 1", result.FailureCount)
	}
}

func TestEngine_ThoroughRunsAllSemantic(t *testing.T) {
	backend := compliantBackend()
	e := newTestEngine(t, Options{Semantic: newSemanticEvaluator(t, backend)})

	report, err := e.Validate(context.Background(), piiContract(), strategy.ModeThorough)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if got := report.Plan.SemanticPolicyIDs; len(got) != 2 {
		t.Errorf("THOROUGH plan = %v, want both semantic policies", got)
	}
	if got := backend.calls.Load(); got != 2 {
		t.Errorf("backend calls = %d, want 2", got)
	}
}

func TestEngine_AdaptiveScalesWithRisk(t *testing.T) {
	tests := []struct {
		name         string
		contract     *contract.Contract
		wantSemantic int
	}{
		{"low risk skips semantic", lowRiskContract(), 0},
		{"high risk runs all semantic", piiContract(), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, Options{Semantic: newSemanticEvaluator(t, compliantBackend())})

			report, err := e.Validate(context.Background(), tt.contract, strategy.ModeAdaptive)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if got := len(report.Plan.SemanticPolicyIDs); got != tt.wantSemantic {
				t.Errorf("plan semantic count = %d, want %d (risk %s)",
					got, tt.wantSemantic, report.Risk.Level)
			}
		})
	}
}

func TestEngine_BackendDownDegradesToSkips(t *testing.T) {
	e := newTestEngine(t, Options{Semantic: newSemanticEvaluator(t, downBackend())})

	report, err := e.Validate(context.Background(), piiContract(), strategy.ModeThorough)
	if err != nil {
		t.Fatalf("Validate() error = %v, want degraded report", err)
	}

	result := report.Result
	if len(result.Skipped) != 2 {
		t.Fatalf("Skipped = %v, want both semantic policies", result.Skipped)
	}
	for _, s := range result.Skipped {
		if s.Reason != validation.SkipBackendUnavailable {
			t.Errorf("skip reason = %q, want backend-unavailable", s.Reason)
		}
	}
	// The rule violation still makes the run fail
	if result.Status != validation.StatusFailed {
		t.Errorf("Status = %q, want failed", result.Status)
	}
}

func TestEngine_NoSemanticEvaluatorSkips(t *testing.T) {
	e := newTestEngine(t, Options{})

	report, err := e.Validate(context.Background(), piiContract(), strategy.ModeThorough)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(report.Result.Skipped) != 2 {
		t.Errorf("Skipped = %v, want both semantic policies", report.Result.Skipped)
	}
}

func TestEngine_ExpiredDeadlineSkipsAsTimeout(t *testing.T) {
	slow := &stubBackend{
		complete: func(ctx context.Context, req *semantic.Request) (*semantic.Response, error) {
			select {
			case <-time.After(time.Second):
				return &semantic.Response{Text: `{"compliant": true, "confidence": 95}`}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	e := newTestEngine(t, Options{Semantic: newSemanticEvaluator(t, slow)})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	report, err := e.Validate(ctx, piiContract(), strategy.ModeThorough)
	if err != nil {
		t.Fatalf("Validate() error = %v, want degraded report", err)
	}
	for _, s := range report.Result.Skipped {
		if s.Reason != validation.SkipTimeout {
			t.Errorf("skip reason for %s = %q, want timeout", s.PolicyID, s.Reason)
		}
	}
	if len(report.Result.Skipped) != 2 {
		t.Errorf("Skipped = %v, want both semantic policies", report.Result.Skipped)
	}
}

func TestEngine_InvalidContractIsTerminal(t *testing.T) {
	e := newTestEngine(t, Options{})

	_, err := e.Validate(context.Background(), &contract.Contract{Name: "empty"}, strategy.ModeFast)
	if err == nil {
		t.Fatal("Validate() accepted a contract with no fields")
	}
	var ce *contract.Error
	if !errors.As(err, &ce) {
		t.Errorf("error = %v, want *contract.Error", err)
	}
}

func TestEngine_UnknownModeIsTerminal(t *testing.T) {
	e := newTestEngine(t, Options{})

	if _, err := e.Validate(context.Background(), piiContract(), strategy.Mode("TURBO")); err == nil {
		t.Error("Validate() accepted an unknown mode")
	}
}

func TestEngine_RequiresRegistry(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("New() accepted options without a registry")
	}
}

func TestEngine_RecordsEvidence(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := recorder.NewRecorder(store, nil, nil)
	e := newTestEngine(t, Options{
		Semantic: newSemanticEvaluator(t, downBackend()),
		Recorder: rec,
	})

	report, err := e.Validate(context.Background(), piiContract(), strategy.ModeThorough)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	rec.Close()

	records, err := store.Query(context.Background(), &evidence.Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("stored %d records, want 1", len(records))
	}

	got := records[0]
	if got.RunID != report.RunID {
		t.Errorf("RunID = %q, want %q", got.RunID, report.RunID)
	}
	if got.Status != string(report.Result.Status) {
		t.Errorf("Status = %q, want %q", got.Status, report.Result.Status)
	}
	if got.Mode != string(strategy.ModeThorough) {
		t.Errorf("Mode = %q", got.Mode)
	}
	if got.RiskLevel != string(report.Risk.Level) {
		t.Errorf("RiskLevel = %q, want %q", got.RiskLevel, report.Risk.Level)
	}
	if len(got.Violations) != 1 || got.Violations[0].PolicyID != "gov-001" {
		t.Errorf("Violations = %+v", got.Violations)
	}
	if len(got.Skipped) != 2 {
		t.Errorf("Skipped = %+v, want 2", got.Skipped)
	}
	if got.CatalogVersion == "" || got.ContractDigest == "" {
		t.Error("catalog version or contract digest missing from evidence")
	}
}

func TestEngine_SnapshotStableAcrossReload(t *testing.T) {
	registry := testRegistry(t)
	release := make(chan struct{})
	backend := &stubBackend{
		complete: func(ctx context.Context, req *semantic.Request) (*semantic.Response, error) {
			<-release
			return &semantic.Response{Text: `{"compliant": true, "confidence": 95}`}, nil
		},
	}
	e := newTestEngine(t, Options{
		Registry: registry,
		Semantic: newSemanticEvaluator(t, backend),
	})

	wantVersion := registry.Snapshot().Version()

	type res struct {
		report *Report
		err    error
	}
	done := make(chan res, 1)
	go func() {
		report, err := e.Validate(context.Background(), piiContract(), strategy.ModeBalanced)
		done <- res{report, err}
	}()

	// Swap the catalog out from under the in-flight run
	time.Sleep(10 * time.Millisecond)
	if err := registry.Replace([]*catalog.PolicyDefinition{
		{
			ID:                  "sem-new",
			Category:            catalog.CategorySemantic,
			Severity:            catalog.SeverityLow,
			PromptTemplate:      "Assess {{name}}",
			ConfidenceThreshold: 50,
		},
	}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	close(release)

	r := <-done
	if r.err != nil {
		t.Fatalf("Validate() error = %v", r.err)
	}
	if r.report.CatalogVersion != wantVersion {
		t.Errorf("CatalogVersion = %q, want the pre-reload snapshot %q",
			r.report.CatalogVersion, wantVersion)
	}
	// The run's violations come from the old snapshot's rule policy
	if len(r.report.Result.Violations) != 1 || r.report.Result.Violations[0].PolicyID != "gov-001" {
		t.Errorf("Violations = %+v", r.report.Result.Violations)
	}
}
