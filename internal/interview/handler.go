package interview

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/get_questions", h.getQuestion)
	rg.POST("/api/evaluate", h.evaluate)
}

// StartSession lets the upload flow kick off an interview and return the fresh
// question list in the same response.
func (h *Handler) StartSession(ctx context.Context, userID string, skills []string) ([]string, error) {
	sess, err := h.Svc.StartSession(ctx, userID, skills)
	if err != nil {
		return nil, err
	}
	return sess.Questions, nil
}

func (h *Handler) getQuestion(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	index := 0
	if raw := c.Query("question"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respond.Error(c, http.StatusBadRequest, "invalid_request", "question must be a non-negative integer", nil)
			return
		}
		index = parsed
	}

	question, err := h.Svc.CurrentQuestion(c.Request.Context(), userID, index)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to resolve question", nil)
		return
	}
	respond.JSON(c, http.StatusOK, question)
}

type evaluateRequest struct {
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	QuestionNumber *int   `json:"questionNumber"`
}

func (h *Handler) evaluate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	if req.Question == "" || req.QuestionNumber == nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "question and questionNumber are required", nil)
		return
	}

	submission, err := h.Svc.SubmitAnswer(c.Request.Context(), userID, req.Question, req.Answer, *req.QuestionNumber)
	switch {
	case errors.Is(err, ErrNoSession):
		respond.Error(c, http.StatusConflict, "no_session", "no active interview session", nil)
		return
	case errors.Is(err, ErrOutOfSequence):
		respond.Error(c, http.StatusConflict, "out_of_sequence", err.Error(), nil)
		return
	case errors.Is(err, ErrSessionComplete):
		respond.Error(c, http.StatusConflict, "session_complete", "interview already complete", nil)
		return
	case err != nil:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to evaluate answer", nil)
		return
	}

	body := gin.H{
		"result":         submission.Record.Result,
		"questionNumber": submission.Record.QuestionNumber,
	}
	if submission.Completed {
		body["redirect"] = "/results"
	}
	respond.JSON(c, http.StatusOK, body)
}
