package resumes

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/shared/telemetry"
)

// SessionStarter begins an interview session from freshly extracted skills so
// the upload response can carry the first question list.
type SessionStarter interface {
	StartSession(ctx context.Context, userID string, skills []string) ([]string, error)
}

type Handler struct {
	Svc     *Service
	Starter SessionStarter
}

func NewHandler(svc *Service, starter SessionStarter) *Handler {
	return &Handler{Svc: svc, Starter: starter}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.POST("/upload_resume", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "multipart field 'resume' is required", nil)
		return
	}
	if fileHeader.Filename == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "file name is required", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "could not read upload", nil)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "could not read upload", nil)
		return
	}

	upload, err := h.Svc.Process(c.Request.Context(), userID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	switch {
	case errors.Is(err, ErrUnsupportedFile):
		respond.Error(c, http.StatusBadRequest, "unsupported_file", err.Error(), nil)
		return
	case errors.Is(err, ErrTooLarge):
		respond.Error(c, http.StatusBadRequest, "file_too_large", "file exceeds the size limit", nil)
		return
	case errors.Is(err, ErrUnreadableFile):
		respond.Error(c, http.StatusBadRequest, "unreadable_file", "document could not be decoded", nil)
		return
	case err != nil:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process resume", nil)
		return
	}

	body := gin.H{
		"status": "ok",
		"skills": upload.Skills,
	}

	// Starting the interview here saves the client a round trip. A generation
	// failure degrades to skills only.
	if h.Starter != nil {
		questions, err := h.Starter.StartSession(c.Request.Context(), userID, upload.Skills)
		if err != nil {
			telemetry.Warn("resumes.start_session.failed", map[string]any{
				"err":     err.Error(),
				"user_id": userID,
			})
		} else {
			body["questions"] = questions
		}
	}

	respond.JSON(c, http.StatusOK, body)
}
