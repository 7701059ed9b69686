package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"interview-backend/internal/qa"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/users"
)

var (
	// ErrNoSession is returned when an answer arrives without a live session.
	ErrNoSession = errors.New("no active interview session")
	// ErrOutOfSequence is returned when a submission's index does not match the
	// session's current position. Duplicate and out-of-order submissions are
	// rejected rather than appended blindly.
	ErrOutOfSequence = errors.New("answer index out of sequence")
	// ErrSessionComplete is returned when answers keep arriving after the last
	// question was answered.
	ErrSessionComplete = errors.New("interview already complete")
)

// CompletionPublisher announces finished interviews to interested consumers.
type CompletionPublisher interface {
	PublishInterviewCompleted(ctx context.Context, userID string, records []OutcomeRecord) error
}

// Service drives a candidate through a fixed-length question sequence and
// guarantees a completed result set reaches durable storage exactly once.
type Service struct {
	sessions  *SessionStore
	generator qa.Generator
	evaluator qa.Evaluator
	users     *users.Service
	publisher CompletionPublisher

	questionCount int
	strict        bool

	submitMu sync.Mutex
}

// Question is the current-question payload for the client.
type Question struct {
	Question        *string  `json:"question"`
	Index           int      `json:"index"`
	Total           int      `json:"total"`
	ProgressPercent int      `json:"progressPercent"`
	IsLast          bool     `json:"isLast"`
	Skills          []string `json:"skills"`
}

// Submission is the outcome of one answer.
type Submission struct {
	Record    OutcomeRecord
	Completed bool
}

// NewService builds the session flow controller. questionCount fixes interview
// length N. With strict enabled a failed flush fails the submission instead of
// degrading to a logged warning.
func NewService(generator qa.Generator, evaluator qa.Evaluator, userSvc *users.Service, publisher CompletionPublisher, questionCount int, strict bool) *Service {
	if questionCount <= 0 {
		questionCount = 5
	}
	return &Service{
		sessions:      NewSessionStore(),
		generator:     generator,
		evaluator:     evaluator,
		users:         userSvc,
		publisher:     publisher,
		questionCount: questionCount,
		strict:        strict,
	}
}

// QuestionCount returns the configured interview length.
func (s *Service) QuestionCount() int {
	return s.questionCount
}

// StartSession creates a fresh session for the user, replacing any existing
// one. Empty skills fall back to the default triad so the generator is never
// called with zero tags. When generation fails the session still exists, with
// zero questions, and the error is returned so the caller can degrade.
func (s *Service) StartSession(ctx context.Context, userID string, skills []string) (*Session, error) {
	tags := qa.NormalizeSkills(skills)
	sess := &Session{
		UserID:    userID,
		Skills:    tags,
		Questions: []string{},
		Results:   []OutcomeRecord{},
		StartedAt: time.Now().UTC(),
	}

	questions, err := s.generator.GenerateQuestions(ctx, tags, s.questionCount)
	if err != nil {
		telemetry.Warn("interview.generate.failed", map[string]any{
			"err":     err.Error(),
			"user_id": userID,
		})
	} else {
		sess.Questions = questions
	}

	s.sessions.Put(sess)
	metrics.IncInterviewStarted()
	return sess, err
}

// Session returns the user's live session, or nil.
func (s *Service) Session(userID string) *Session {
	return s.sessions.Get(userID)
}

// CurrentQuestion resolves the question at index. Without a live session one is
// started on demand from the user's stored skills. An index beyond the
// generated list yields a nil question, not an error. Total, progress and the
// last-question signal all derive from the configured count, not from how many
// questions the generator actually returned.
func (s *Service) CurrentQuestion(ctx context.Context, userID string, index int) (*Question, error) {
	if index < 0 {
		return nil, fmt.Errorf("negative question index %d", index)
	}

	sess := s.sessions.Get(userID)
	if sess == nil {
		stored, err := s.users.Skills(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load stored skills: %w", err)
		}
		// Generation failure still yields a usable zero-question session.
		sess, _ = s.StartSession(ctx, userID, stored)
	}

	q := &Question{
		Index:           index,
		Total:           s.questionCount,
		ProgressPercent: index * 100 / s.questionCount,
		IsLast:          index == s.questionCount-1,
		Skills:          sess.Skills,
	}
	if index < len(sess.Questions) {
		text := sess.Questions[index]
		q.Question = &text
	}
	return q, nil
}

// SubmitAnswer evaluates one answer and appends the outcome to the session.
// The submission index must equal the session's current position. Answering the
// final question flushes all accumulated results to the durable record as a
// single append, clears the session, and reports completion.
func (s *Service) SubmitAnswer(ctx context.Context, userID, question, answer string, index int) (*Submission, error) {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	sess := s.sessions.Get(userID)
	if sess == nil {
		return nil, ErrNoSession
	}
	if sess.Complete(s.questionCount) {
		return nil, ErrSessionComplete
	}
	if index != sess.CurrentIndex {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrOutOfSequence, index, sess.CurrentIndex)
	}

	started := time.Now()
	report, err := s.evaluator.EvaluateAnswer(ctx, question, answer)
	if err != nil {
		// The degrading evaluator should make this unreachable, but scoring
		// still must not lose the submission slot.
		return nil, fmt.Errorf("evaluate answer: %w", err)
	}
	metrics.ObserveEvaluationDurationMs(float64(time.Since(started).Milliseconds()))

	record := OutcomeRecord{
		Question:       question,
		Answer:         answer,
		QuestionNumber: index,
		Result:         report,
	}
	sess.Results = append(sess.Results, record)
	sess.CurrentIndex++

	completed := index == s.questionCount-1
	if completed {
		if err := s.flush(ctx, sess); err != nil {
			// Roll back the append so the client can retry the final answer.
			sess.Results = sess.Results[:len(sess.Results)-1]
			sess.CurrentIndex--
			return nil, err
		}
	}

	return &Submission{Record: record, Completed: completed}, nil
}

// flush appends the session's results to the user record once, then clears the
// session. In best-effort mode a storage failure is logged and counted but the
// interview still completes.
func (s *Service) flush(ctx context.Context, sess *Session) error {
	records := make([]users.ResultRecord, 0, len(sess.Results))
	for _, r := range sess.Results {
		encoded, err := json.Marshal(r.Result)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		records = append(records, users.ResultRecord{
			Question:       r.Question,
			Answer:         r.Answer,
			QuestionNumber: r.QuestionNumber,
			Result:         encoded,
		})
	}

	if err := s.users.AppendResults(ctx, sess.UserID, records); err != nil {
		metrics.IncPersistFailed()
		if s.strict {
			return fmt.Errorf("persist results: %w", err)
		}
		telemetry.Warn("interview.flush.failed", map[string]any{
			"err":     err.Error(),
			"user_id": sess.UserID,
			"records": len(records),
		})
	}

	outcomes := sess.Results
	sess.Results = []OutcomeRecord{}
	s.sessions.Delete(sess.UserID)
	metrics.IncInterviewCompleted()

	if s.publisher != nil {
		if err := s.publisher.PublishInterviewCompleted(ctx, sess.UserID, outcomes); err != nil {
			telemetry.Warn("interview.publish.failed", map[string]any{
				"err":     err.Error(),
				"user_id": sess.UserID,
			})
		}
	}
	return nil
}
