// Package harness runs scripted queries through the full pipeline and
// checks routing, retrieval and evaluation expectations against the
// results. It exercises a live engine, including real generation calls.
package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/clearpathhq/beacon/internal/chat"
)

// Case is one scripted query with its expected pipeline behavior. Zero
// fields mean "don't check".
type Case struct {
	ID          string `json:"id"`
	Query       string `json:"query"`
	Description string `json:"description"`

	ExpectClassification    string   `json:"expect_classification,omitempty"`
	ExpectModel             string   `json:"expect_model,omitempty"`
	ExpectSourcesContain    string   `json:"expect_sources_contain,omitempty"`
	ExpectNoRelevantSources bool     `json:"expect_no_relevant_sources,omitempty"`
	ExpectFlagContains      string   `json:"expect_flag_contains,omitempty"`
	ExpectConfidence        string   `json:"expect_confidence,omitempty"`
	ExpectAnswerContains    []string `json:"expect_answer_contains,omitempty"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	ID             string   `json:"id"`
	Query          string   `json:"query"`
	Description    string   `json:"description"`
	Passed         bool     `json:"passed"`
	FailReasons    []string `json:"fail_reasons,omitempty"`
	Error          string   `json:"error,omitempty"`
	Classification string   `json:"classification,omitempty"`
	Model          string   `json:"model,omitempty"`
	Confidence     string   `json:"confidence,omitempty"`
	Flags          []string `json:"flags,omitempty"`
	Sources        []string `json:"sources,omitempty"`
}

// Report summarizes a harness run.
type Report struct {
	Timestamp time.Time    `json:"timestamp"`
	Total     int          `json:"total"`
	Passed    int          `json:"passed"`
	Failed    int          `json:"failed"`
	Errors    int          `json:"errors"`
	Results   []CaseResult `json:"results"`
}

// Passed reports whether every case passed.
func (r *Report) AllPassed() bool { return r.Passed == r.Total }

// Save writes the report as indented JSON.
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("harness report encode: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Run executes every case against the engine. delay spaces the generation
// calls out for rate-limited API tiers.
func Run(ctx context.Context, engine *chat.Engine, cases []Case, delay time.Duration, logger *slog.Logger) *Report {
	if logger == nil {
		logger = slog.Default()
	}

	report := &Report{Timestamp: time.Now().UTC(), Total: len(cases)}
	for i, tc := range cases {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return report
			case <-time.After(delay):
			}
		}

		result := runCase(ctx, engine, tc)
		report.Results = append(report.Results, result)
		switch {
		case result.Error != "":
			report.Errors++
			logger.Error("harness case error", "id", tc.ID, "error", result.Error)
		case result.Passed:
			report.Passed++
			logger.Info("harness case passed", "id", tc.ID)
		default:
			report.Failed++
			logger.Warn("harness case failed", "id", tc.ID, "reasons", result.FailReasons)
		}
	}
	return report
}

func runCase(ctx context.Context, engine *chat.Engine, tc Case) CaseResult {
	result := CaseResult{ID: tc.ID, Query: tc.Query, Description: tc.Description}

	// Each case gets a fresh session so conversation memory cannot bleed
	// between cases.
	answer, err := engine.Ask(ctx, "harness-"+tc.ID, tc.Query)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Classification = answer.Debug.Classification
	result.Model = answer.Debug.Model
	result.Confidence = answer.Debug.Confidence
	result.Flags = answer.Debug.Flags
	for _, s := range answer.Sources {
		result.Sources = append(result.Sources, s.DocumentName)
	}

	var reasons []string
	if tc.ExpectClassification != "" && answer.Debug.Classification != tc.ExpectClassification {
		reasons = append(reasons, fmt.Sprintf("classification: expected %q, got %q",
			tc.ExpectClassification, answer.Debug.Classification))
	}
	if tc.ExpectModel != "" && answer.Debug.Model != tc.ExpectModel {
		reasons = append(reasons, fmt.Sprintf("model: expected %q, got %q", tc.ExpectModel, answer.Debug.Model))
	}
	if tc.ExpectSourcesContain != "" {
		found := false
		for _, name := range result.Sources {
			if strings.Contains(name, tc.ExpectSourcesContain) {
				found = true
				break
			}
		}
		if !found {
			reasons = append(reasons, fmt.Sprintf("sources: expected %q in %v", tc.ExpectSourcesContain, result.Sources))
		}
	}
	if tc.ExpectNoRelevantSources && len(answer.Sources) > 0 {
		// Low-scoring leakage is tolerated; a strong match is not.
		var maxScore float32
		for _, s := range answer.Sources {
			if s.Score > maxScore {
				maxScore = s.Score
			}
		}
		if maxScore > 0.4 {
			reasons = append(reasons, fmt.Sprintf("expected no relevant sources, got %d (max_score=%.2f)",
				len(answer.Sources), maxScore))
		}
	}
	if tc.ExpectFlagContains != "" {
		flagsStr := strings.ToLower(strings.Join(answer.Debug.Flags, " "))
		if !strings.Contains(flagsStr, tc.ExpectFlagContains) {
			reasons = append(reasons, fmt.Sprintf("flags: expected %q in %v", tc.ExpectFlagContains, answer.Debug.Flags))
		}
	}
	if tc.ExpectConfidence != "" && answer.Debug.Confidence != tc.ExpectConfidence {
		reasons = append(reasons, fmt.Sprintf("confidence: expected %q, got %q", tc.ExpectConfidence, answer.Debug.Confidence))
	}
	for _, kw := range tc.ExpectAnswerContains {
		if !strings.Contains(strings.ToLower(answer.Response), strings.ToLower(kw)) {
			reasons = append(reasons, fmt.Sprintf("answer missing keyword %q", kw))
		}
	}

	result.FailReasons = reasons
	result.Passed = len(reasons) == 0
	return result
}
