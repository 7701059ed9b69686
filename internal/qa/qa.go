package qa

import (
	"context"
	"strings"
)

// DefaultSkills seeds question generation when a user has no extracted skills.
var DefaultSkills = []string{"experience", "projects", "team"}

// ScoreReport is a structured evaluation of one answer. Sub-scores are 0-100.
type ScoreReport struct {
	Confidence     int      `json:"confidence"`
	Technical      int      `json:"technical"`
	Communication  int      `json:"communication"`
	Summary        string   `json:"summary"`
	Feedback       string   `json:"feedback"`
	Strengths      []string `json:"strengths"`
	AreasToImprove []string `json:"areas_to_improve"`
}

// Generator produces an ordered question list from skill tags.
type Generator interface {
	GenerateQuestions(ctx context.Context, skills []string, count int) ([]string, error)
}

// Evaluator scores one question/answer pair.
type Evaluator interface {
	EvaluateAnswer(ctx context.Context, question, answer string) (ScoreReport, error)
}

// Clamp bounds a score to [0,100].
func Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// NormalizeSkills drops blank entries and substitutes the default triad when
// nothing is left, so a generator is never asked about zero tags.
func NormalizeSkills(skills []string) []string {
	cleaned := make([]string, 0, len(skills))
	for _, s := range skills {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return append([]string(nil), DefaultSkills...)
	}
	return cleaned
}
