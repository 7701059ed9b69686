package qa

import (
	"context"
	"fmt"
	"strings"
)

const questionTemplate = "Explain your experience with %s. Provide an example project and technical details."

var credibilityKeywords = []string{"example", "project", "implemented"}

// Fallback is a deterministic generator and evaluator used when no LLM is
// configured or the LLM call fails. Both methods are pure.
type Fallback struct{}

// GenerateQuestions cycles through the skills until exactly count questions
// exist. Blank skills are dropped, an empty list falls back to the default triad.
func (Fallback) GenerateQuestions(_ context.Context, skills []string, count int) ([]string, error) {
	if count <= 0 {
		return []string{}, nil
	}
	tags := NormalizeSkills(skills)
	questions := make([]string, count)
	for i := 0; i < count; i++ {
		questions[i] = fmt.Sprintf(questionTemplate, tags[i%len(tags)])
	}
	return questions, nil
}

// EvaluateAnswer scores by answer length plus a credibility-keyword bonus.
// Confidence grows at one point per two words from a base of 40, technical at
// one per three from 30 with a 10 point keyword bonus, communication at one
// per four from 35. Every sub-score is capped at 100.
func (Fallback) EvaluateAnswer(_ context.Context, question, answer string) (ScoreReport, error) {
	_ = question
	words := len(strings.Fields(answer))

	confidence := 40 + min(words/2, 30)
	technical := 30 + min(words/3, 30)
	if containsAny(strings.ToLower(answer), credibilityKeywords) {
		technical += 10
	}
	communication := 35 + min(words/4, 35)

	return ScoreReport{
		Confidence:     Clamp(confidence),
		Technical:      Clamp(technical),
		Communication:  Clamp(communication),
		Summary:        "Answer evaluated based on length and keyword usage",
		Feedback:       "Consider providing more specific examples and technical details",
		Strengths:      []string{"Attempted to answer the question"},
		AreasToImprove: []string{"Add more technical specifics", "Provide concrete examples"},
	}, nil
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
