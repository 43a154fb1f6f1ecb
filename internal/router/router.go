// Package router classifies queries as simple or complex with a
// deterministic additive scoring model, and maps the class to a generation
// model tier. No generation call is ever involved in classification.
package router

import (
	"regexp"
	"strings"
)

// Classification is the generation tier chosen for a query.
type Classification string

const (
	Simple  Classification = "simple"
	Complex Classification = "complex"
)

// DefaultThreshold is the score at which a query becomes complex.
const DefaultThreshold = 2

// Default model tiers. The 8B model is an order of magnitude cheaper and
// faster; the 70B model handles multi-step reasoning.
const (
	DefaultSimpleModel  = "llama-3.1-8b-instant"
	DefaultComplexModel = "llama-3.3-70b-versatile"
)

// Decision is the outcome of classifying one query. It is a pure function
// of the query text: same input, same decision, every time.
type Decision struct {
	Classification Classification `json:"classification"`
	Model          string         `json:"model_used"`
	Score          int            `json:"complex_score"`
	Signals        []string       `json:"signals"`
}

// Config tunes the router. Zero values use the defaults.
type Config struct {
	Threshold    int
	SimpleModel  string
	ComplexModel string
}

// Router scores queries against a fixed, ordered list of signals.
type Router struct {
	threshold    int
	simpleModel  string
	complexModel string
	signals      []signal
}

// signal is one independent scoring rule. All signals are evaluated on
// every query; firing appends the weight and a named entry to the decision.
type signal struct {
	weight int
	eval   func(q *queryFeatures) (bool, string)
}

// New creates a Router with the complete signal list. Signals are
// independent and additive, never mutually exclusive: a single strong
// signal can outweigh several weak ones, which is intentional even though
// it misclassifies short-but-deep queries.
func New(cfg Config) *Router {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.SimpleModel == "" {
		cfg.SimpleModel = DefaultSimpleModel
	}
	if cfg.ComplexModel == "" {
		cfg.ComplexModel = DefaultComplexModel
	}
	return &Router{
		threshold:    cfg.Threshold,
		simpleModel:  cfg.SimpleModel,
		complexModel: cfg.ComplexModel,
		signals: []signal{
			{+2, signalLongQuery},
			{+2, signalReasoningKeywords},
			{+1, signalMultipleQuestions},
			{+1, signalMultiSentence},
			{+1, signalComparisonPattern},
			{+1, signalComplaint},
			{-2, signalShortQuery},
			{-2, signalGreeting},
			{-1, signalYesNo},
		},
	}
}

// Classify evaluates every signal against the query and sums the weights of
// those that fire. The decision threshold turns the score into a tier.
func (r *Router) Classify(query string) Decision {
	q := extractFeatures(query)

	score := 0
	var fired []string
	for _, s := range r.signals {
		if ok, name := s.eval(q); ok {
			score += s.weight
			fired = append(fired, name)
		}
	}

	d := Decision{Score: score, Signals: fired}
	if score >= r.threshold {
		d.Classification = Complex
		d.Model = r.complexModel
	} else {
		d.Classification = Simple
		d.Model = r.simpleModel
	}
	return d
}

// queryFeatures holds the precomputed text features shared by all signals.
type queryFeatures struct {
	text      string // trimmed, lowercased
	wordCount int
	sentences int
	questions int
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

func extractFeatures(query string) *queryFeatures {
	text := strings.ToLower(strings.TrimSpace(query))

	sentences := 0
	for _, s := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}

	return &queryFeatures{
		text:      text,
		wordCount: len(strings.Fields(text)),
		sentences: sentences,
		questions: strings.Count(text, "?"),
	}
}
