package semantic

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"mercator-hq/gatekeeper/pkg/cache"
	"mercator-hq/gatekeeper/pkg/catalog"
	"mercator-hq/gatekeeper/pkg/contract"
	"mercator-hq/gatekeeper/pkg/validation"
)

// Outcome is the result of evaluating one semantic policy against one
// contract. Exactly one of Violation and Skip is set when the policy did
// not pass; both are nil for a pass.
type Outcome struct {
	// PolicyID is the evaluated policy.
	PolicyID string

	// Violation is set when the backend judged the contract non-compliant
	// with sufficient confidence.
	Violation *validation.Violation

	// Skip is set when the policy could not be conclusively evaluated.
	Skip *validation.SkippedPolicy

	// Verdict is the parsed backend verdict, nil when the call failed or
	// the response was uninterpretable.
	Verdict *Verdict

	// Cached reports whether the verdict came from the cache.
	Cached bool
}

// EvaluatorConfig configures the semantic evaluation pool.
type EvaluatorConfig struct {
	// Workers bounds concurrent backend calls per run. Default: 4.
	Workers int `yaml:"workers"`

	// CacheTTL is how long a (policy, contract) verdict is reused.
	// Default: 5m.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// CacheSize bounds the verdict cache entry count. Default: 1024.
	CacheSize int `yaml:"cache_size"`
}

// ApplyDefaults fills unset fields with defaults.
func (c *EvaluatorConfig) ApplyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 1024
	}
}

// Evaluator runs semantic policies against the reasoning backend with a
// bounded worker pool and a verdict cache. Backend failures never fail a
// run: every policy that cannot be conclusively evaluated becomes a skip
// with a recorded reason.
type Evaluator struct {
	backend Backend
	cache   *cache.TTLCache[*Verdict]
	workers int
	logger  *slog.Logger
}

// NewEvaluator creates a semantic evaluator on top of a backend.
func NewEvaluator(backend Backend, config EvaluatorConfig, logger *slog.Logger) *Evaluator {
	config.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		backend: backend,
		cache:   cache.New[*Verdict](config.CacheTTL, config.CacheSize),
		workers: config.Workers,
		logger:  logger.With("component", "semantic.evaluator"),
	}
}

// Close releases the verdict cache.
func (e *Evaluator) Close() {
	e.cache.Close()
}

// CacheSize returns the number of cached verdicts.
func (e *Evaluator) CacheSize() int {
	return e.cache.Size()
}

// Evaluate runs the given semantic policy ids against the contract,
// fanning out over the worker pool. Ids that are unknown or not semantic
// in the snapshot are ignored. The returned outcomes are sorted by policy
// id so a run's output is deterministic regardless of completion order.
func (e *Evaluator) Evaluate(ctx context.Context, c *contract.Contract, snap *catalog.Snapshot, policyIDs []string) []Outcome {
	defs := make([]*catalog.PolicyDefinition, 0, len(policyIDs))
	for _, id := range policyIDs {
		def, ok := snap.Get(id)
		if !ok || !def.Semantic() {
			continue
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil
	}

	digest := c.Digest()
	outcomes := make([]Outcome, len(defs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := e.workers
	if workers > len(defs) {
		workers = len(defs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = e.evaluatePolicy(ctx, c, digest, defs[i])
			}
		}()
	}
	for i := range defs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].PolicyID < outcomes[j].PolicyID
	})
	return outcomes
}

// evaluatePolicy runs one semantic policy, consulting the verdict cache
// before calling the backend. Only parsed verdicts are cached: failed or
// uninterpretable calls are retried on the next run.
func (e *Evaluator) evaluatePolicy(ctx context.Context, c *contract.Contract, digest string, def *catalog.PolicyDefinition) Outcome {
	key := cacheKey(def.ID, digest)

	if verdict, ok := e.cache.Get(key); ok {
		out := e.outcomeFromVerdict(def, verdict)
		out.Cached = true
		return out
	}

	if ctx.Err() != nil {
		return e.skipOutcome(def.ID, validation.SkipTimeout, ctx.Err())
	}

	prompt := BuildPrompt(def.PromptTemplate, c)
	resp, err := e.backend.Complete(ctx, &Request{Prompt: prompt})
	if err != nil {
		return e.skipOutcome(def.ID, skipReasonFor(err), err)
	}

	verdict, err := ParseVerdict(resp.Text)
	if err != nil {
		return e.skipOutcome(def.ID, validation.SkipParseError, err)
	}

	e.cache.Set(key, verdict)
	return e.outcomeFromVerdict(def, verdict)
}

// outcomeFromVerdict applies the policy's confidence threshold to a
// parsed verdict. Low-confidence verdicts are skips, not violations: an
// unsure backend must not block a contract.
func (e *Evaluator) outcomeFromVerdict(def *catalog.PolicyDefinition, verdict *Verdict) Outcome {
	out := Outcome{PolicyID: def.ID, Verdict: verdict}

	if verdict.Confidence < def.ConfidenceThreshold {
		out.Skip = &validation.SkippedPolicy{
			PolicyID: def.ID,
			Reason:   validation.SkipLowConfidence,
		}
		return out
	}

	if !verdict.Compliant {
		confidence := verdict.Confidence
		message := verdict.Reasoning
		if message == "" {
			message = "reasoning backend judged the contract non-compliant"
		}
		remediation := def.Remediation
		if remediation == "" && len(verdict.RecommendedActions) > 0 {
			remediation = strings.Join(verdict.RecommendedActions, "; ")
		}
		out.Violation = &validation.Violation{
			PolicyID:    def.ID,
			Severity:    def.Severity,
			Message:     message,
			Remediation: remediation,
			Source:      validation.SourceSemantic,
			Confidence:  &confidence,
		}
	}

	return out
}

// skipOutcome builds a skip outcome and logs the underlying failure.
func (e *Evaluator) skipOutcome(policyID string, reason validation.SkipReason, err error) Outcome {
	e.logger.Warn("semantic policy skipped",
		"policy_id", policyID,
		"reason", reason,
		"error", err,
	)
	return Outcome{
		PolicyID: policyID,
		Skip: &validation.SkippedPolicy{
			PolicyID: policyID,
			Reason:   reason,
		},
	}
}

// skipReasonFor maps a backend error to a skip reason.
func skipReasonFor(err error) validation.SkipReason {
	var te *TimeoutError
	if errors.As(err, &te) {
		return validation.SkipTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return validation.SkipTimeout
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return validation.SkipParseError
	}
	return validation.SkipBackendUnavailable
}

// cacheKey derives the verdict cache key from the policy id and the
// contract content digest, so any contract edit invalidates the entry.
func cacheKey(policyID, digest string) string {
	sum := sha256.Sum256([]byte(policyID + "\x00" + digest))
	return fmt.Sprintf("%x", sum)
}
