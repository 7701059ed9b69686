package interview

import (
	"time"

	"interview-backend/internal/qa"
)

// OutcomeRecord is the evaluation of one answered question.
type OutcomeRecord struct {
	Question       string         `json:"question"`
	Answer         string         `json:"answer"`
	QuestionNumber int            `json:"questionNumber"`
	Result         qa.ScoreReport `json:"result"`
}

// Session tracks one candidate's progress through a fixed-length question
// sequence. Skills and questions are set once at start and never regenerated.
// Results grow by answer submissions only and are cleared the moment they are
// flushed to the durable record.
type Session struct {
	UserID       string
	Skills       []string
	Questions    []string
	Results      []OutcomeRecord
	CurrentIndex int
	StartedAt    time.Time
}

// Complete reports whether every question of a total-question interview has
// been answered.
func (s *Session) Complete(total int) bool {
	return len(s.Results) >= total
}
