package router

import (
	"fmt"
	"regexp"
	"strings"
)

// reasoningKeywords suggest the query needs multi-step reasoning.
var reasoningKeywords = []string{
	"explain", "compare", "analyze", "difference", "why", "how does",
	"what happens", "describe", "elaborate", "detail", "advantages",
	"disadvantages", "trade-off", "tradeoff", "versus", "vs",
	"recommend", "suggest", "best practice", "architecture", "design",
	"strategy", "approach", "workflow", "process", "troubleshoot",
	"debug", "diagnose", "investigate", "complex", "advanced",
}

// complaintKeywords mark escalation-worthy issue reports.
var complaintKeywords = []string{
	"not working", "broken", "bug", "crash", "error", "issue",
	"problem", "fail", "can't", "cannot", "unable", "stuck",
	"wrong", "fix", "help me", "urgent", "frustrated",
}

var comparisonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bvs\.?\b`),
	regexp.MustCompile(`\bversus\b`),
	regexp.MustCompile(`\bcompared?\s+to\b`),
	regexp.MustCompile(`\bdifference\s+between\b`),
	regexp.MustCompile(`\bwhich\s+(one|plan|option)\b`),
	regexp.MustCompile(`\bbetter\s+than\b`),
	regexp.MustCompile(`\bpros?\s+and\s+cons?\b`),
}

var greetingPattern = regexp.MustCompile(
	`^(hi|hello|hey|howdy|greetings|good\s*(morning|afternoon|evening)|yo|sup)\b`)

var yesNoPattern = regexp.MustCompile(
	`^(yes|no|yeah|nah|yep|nope|sure|ok|okay|absolutely|definitely|correct|right)\b`)

func signalLongQuery(q *queryFeatures) (bool, string) {
	if q.wordCount >= 20 {
		return true, fmt.Sprintf("long_query (word_count=%d)", q.wordCount)
	}
	return false, ""
}

func signalReasoningKeywords(q *queryFeatures) (bool, string) {
	var found []string
	for _, kw := range reasoningKeywords {
		if strings.Contains(q.text, kw) {
			found = append(found, kw)
			if len(found) == 3 {
				break
			}
		}
	}
	if len(found) > 0 {
		return true, fmt.Sprintf("reasoning_keywords (%s)", strings.Join(found, ", "))
	}
	return false, ""
}

func signalMultipleQuestions(q *queryFeatures) (bool, string) {
	if q.questions > 1 {
		return true, fmt.Sprintf("multiple_questions (count=%d)", q.questions)
	}
	return false, ""
}

func signalMultiSentence(q *queryFeatures) (bool, string) {
	if q.sentences >= 3 {
		return true, fmt.Sprintf("multi_sentence (count=%d)", q.sentences)
	}
	return false, ""
}

func signalComparisonPattern(q *queryFeatures) (bool, string) {
	for _, pat := range comparisonPatterns {
		if pat.MatchString(q.text) {
			return true, "comparison_pattern"
		}
	}
	return false, ""
}

func signalComplaint(q *queryFeatures) (bool, string) {
	var found []string
	for _, kw := range complaintKeywords {
		if strings.Contains(q.text, kw) {
			found = append(found, kw)
			if len(found) == 2 {
				break
			}
		}
	}
	if len(found) > 0 {
		return true, fmt.Sprintf("complaint_detected (%s)", strings.Join(found, ", "))
	}
	return false, ""
}

func signalShortQuery(q *queryFeatures) (bool, string) {
	if q.wordCount < 8 {
		return true, fmt.Sprintf("short_query (word_count=%d)", q.wordCount)
	}
	return false, ""
}

func signalGreeting(q *queryFeatures) (bool, string) {
	if greetingPattern.MatchString(q.text) {
		return true, "greeting_detected"
	}
	return false, ""
}

func signalYesNo(q *queryFeatures) (bool, string) {
	if yesNoPattern.MatchString(q.text) {
		return true, "yes_no_response"
	}
	return false, ""
}
