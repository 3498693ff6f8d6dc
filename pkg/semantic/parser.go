package semantic

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Verdict is the structured interpretation of a backend response.
type Verdict struct {
	// Compliant reports whether the backend judged the contract compliant
	// with the policy.
	Compliant bool `json:"compliant"`

	// Confidence is the backend's self-reported confidence, 0-100.
	Confidence float64 `json:"confidence"`

	// Reasoning is the backend's explanation.
	Reasoning string `json:"reasoning"`

	// RecommendedActions lists the backend's suggested remediations.
	RecommendedActions []string `json:"recommended_actions"`
}

var (
	confidenceRe = regexp.MustCompile(`(?i)confidence\D{0,10}(\d{1,3}(?:\.\d+)?)`)
	negativeRe   = regexp.MustCompile(`(?i)\b(non-compliant|not compliant|violates|violation|fails)\b`)
	positiveRe   = regexp.MustCompile(`(?i)\b(compliant|passes|no violation|acceptable)\b`)
)

// ParseVerdict interprets a free-text backend response. It first looks for
// a JSON object (whole response or embedded), then falls back to keyword
// heuristics. The backend is never trusted to be well-formed: anything
// uninterpretable returns a *ParseError, which callers degrade to a skip.
func ParseVerdict(text string) (*Verdict, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &ParseError{Cause: fmt.Errorf("empty response")}
	}

	if v, ok := parseJSONVerdict(trimmed); ok {
		if err := v.validate(); err != nil {
			return nil, &ParseError{RawResponse: truncate(trimmed, 200), Cause: err}
		}
		return v, nil
	}

	if v, ok := parseTextVerdict(trimmed); ok {
		return v, nil
	}

	return nil, &ParseError{
		RawResponse: truncate(trimmed, 200),
		Cause:       fmt.Errorf("no verdict found in response"),
	}
}

// parseJSONVerdict tries the whole response as JSON, then the first
// balanced JSON object embedded in it (backends often wrap JSON in prose
// or markdown fences).
func parseJSONVerdict(text string) (*Verdict, bool) {
	candidates := []string{text}
	if obj := extractJSONObject(text); obj != "" && obj != text {
		candidates = append(candidates, obj)
	}

	for _, candidate := range candidates {
		var v Verdict
		if err := json.Unmarshal([]byte(candidate), &v); err == nil {
			// An object without a confidence key decodes to zero; require
			// the key to be present to count as a JSON verdict.
			if strings.Contains(candidate, "confidence") {
				return &v, true
			}
		}
	}
	return nil, false
}

// extractJSONObject returns the first balanced {...} span in the text.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// parseTextVerdict applies keyword heuristics to prose responses.
// It requires an explicit confidence figure; compliance defaults to
// non-compliant only when negative language is present.
func parseTextVerdict(text string) (*Verdict, bool) {
	m := confidenceRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	confidence, err := strconv.ParseFloat(m[1], 64)
	if err != nil || confidence < 0 || confidence > 100 {
		return nil, false
	}

	v := &Verdict{
		Confidence: confidence,
		Reasoning:  truncate(text, 500),
	}

	switch {
	case negativeRe.MatchString(text):
		v.Compliant = false
	case positiveRe.MatchString(text):
		v.Compliant = true
	default:
		return nil, false
	}

	return v, true
}

// validate checks a decoded verdict's invariants.
func (v *Verdict) validate() error {
	if v.Confidence < 0 || v.Confidence > 100 {
		return fmt.Errorf("confidence %v outside [0,100]", v.Confidence)
	}
	return nil
}
