// Package evaluate audits a generated response against the retrieved
// context and assigns a confidence verdict. Every check is pure text
// processing; evaluation never calls a generation model.
package evaluate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/clearpathhq/beacon/internal/retrieve"
)

// Confidence is the verdict level. Low confidence is an ordinary, frequent
// outcome — it is how the collaborator layer learns to show a caveat.
type Confidence string

const (
	High Confidence = "high"
	Low  Confidence = "low"
)

// FlagKind names one evaluator check. Kinds appear in flags in
// check-definition order, for reproducibility.
type FlagKind string

const (
	FlagNoContext     FlagKind = "no_context"
	FlagRefusal       FlagKind = "refusal_detected"
	FlagKeyword       FlagKind = "hallucination_keyword"
	FlagLowOverlap    FlagKind = "potential_hallucination"
	FlagUnsourcedCost FlagKind = "unsourced_pricing"
)

// Flag is one fired check, with a human-readable detail where the check
// has one (matched keywords, overlap ratio, offending amounts).
type Flag struct {
	Kind   FlagKind `json:"kind"`
	Detail string   `json:"detail,omitempty"`
}

func (f Flag) String() string {
	if f.Detail == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s (%s)", f.Kind, f.Detail)
}

// Verdict is the outcome of evaluating one response. Confidence is low iff
// at least one flag fired.
type Verdict struct {
	Confidence Confidence `json:"confidence"`
	Flags      []Flag     `json:"flags"`
}

// Has reports whether the given check fired.
func (v Verdict) Has(kind FlagKind) bool {
	for _, f := range v.Flags {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// FlagStrings renders the flags with their details, in firing order.
func (v Verdict) FlagStrings() []string {
	out := make([]string, len(v.Flags))
	for i, f := range v.Flags {
		out[i] = f.String()
	}
	return out
}

// DefaultOverlapThreshold is the content-word overlap ratio below which a
// response is flagged as a potential hallucination. Acknowledged heuristic:
// it is both too permissive and too strict in different cases, and is kept
// as designed rather than tuned per release.
const DefaultOverlapThreshold = 0.30

// Evaluator runs the fixed check set. The zero threshold means the default.
type Evaluator struct {
	overlapThreshold float64
}

// New creates an Evaluator. A non-positive threshold uses the default.
func New(overlapThreshold float64) *Evaluator {
	if overlapThreshold <= 0 {
		overlapThreshold = DefaultOverlapThreshold
	}
	return &Evaluator{overlapThreshold: overlapThreshold}
}

// Evaluate runs every check against the response and retrieved context.
// All checks execute regardless of which others fired.
func (e *Evaluator) Evaluate(response string, context []retrieve.Result) Verdict {
	var flags []Flag
	lower := strings.ToLower(response)

	// Check 1: nothing was retrieved, so nothing grounds the answer.
	if len(context) == 0 {
		flags = append(flags, Flag{Kind: FlagNoContext})
	}

	// Check 2: the model declined to answer.
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			flags = append(flags, Flag{Kind: FlagRefusal})
			break
		}
	}

	// Check 3: out-of-domain blacklist terms.
	var matched []string
	for _, kw := range hallucinationKeywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	if len(matched) > 0 {
		flags = append(flags, Flag{Kind: FlagKeyword, Detail: strings.Join(matched, ", ")})
	}

	contextText := joinContext(context)

	// Check 4: content-word overlap between response and context. Skipped
	// when there is no context or the response carries no content words.
	if len(context) > 0 {
		responseWords := contentWords(response)
		if len(responseWords) > 0 {
			contextWords := contentWords(contextText)
			overlap := 0
			for w := range responseWords {
				if _, ok := contextWords[w]; ok {
					overlap++
				}
			}
			ratio := float64(overlap) / float64(len(responseWords))
			if ratio < e.overlapThreshold {
				flags = append(flags, Flag{
					Kind:   FlagLowOverlap,
					Detail: fmt.Sprintf("overlap=%.1f%%, threshold=%.0f%%", ratio*100, e.overlapThreshold*100),
				})
			}
		}
	}

	// Check 5: monetary amounts in the response that no retrieved chunk
	// mentions. Catches invented pricing, the costliest hallucination for a
	// support bot.
	if len(context) > 0 {
		if detail := unsourcedPrices(response, contextText); detail != "" {
			flags = append(flags, Flag{Kind: FlagUnsourcedCost, Detail: detail})
		}
	}

	v := Verdict{Confidence: High, Flags: flags}
	if len(flags) > 0 {
		v.Confidence = Low
	}
	return v
}

var (
	wordRegex  = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)
	priceRegex = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?(?:/\w+)?`)
)

// contentWords extracts the lowercased non-stopword words of length ≥ 3.
func contentWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range wordRegex.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopwords[w]; !stop {
			words[w] = struct{}{}
		}
	}
	return words
}

// unsourcedPrices returns a detail string naming every monetary amount in
// the response that the context never mentions, or "" when all are sourced.
func unsourcedPrices(response, contextText string) string {
	responsePrices := priceRegex.FindAllString(response, -1)
	if len(responsePrices) == 0 {
		return ""
	}

	contextPrices := make(map[string]struct{})
	for _, p := range priceRegex.FindAllString(contextText, -1) {
		contextPrices[p] = struct{}{}
	}

	unsourced := make(map[string]struct{})
	for _, p := range responsePrices {
		if _, ok := contextPrices[p]; !ok {
			unsourced[p] = struct{}{}
		}
	}
	if len(unsourced) == 0 {
		return ""
	}

	sorted := make([]string, 0, len(unsourced))
	for p := range unsourced {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)
	return fmt.Sprintf("response mentions %s not found in retrieved docs", strings.Join(sorted, ", "))
}

func joinContext(context []retrieve.Result) string {
	parts := make([]string, len(context))
	for i, r := range context {
		parts[i] = r.Chunk.Text
	}
	return strings.Join(parts, " ")
}
