package transcribe

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/server/respond"
)

type Handler struct {
	Supervisor *Supervisor
}

func NewHandler(supervisor *Supervisor) *Handler {
	return &Handler{Supervisor: supervisor}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/start_transcription", h.start)
	rg.POST("/stop_transcription", h.stop)
}

func (h *Handler) start(c *gin.Context) {
	status, err := h.Supervisor.Start()
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "stream_unavailable", "could not start transcription stream", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"status": status})
}

func (h *Handler) stop(c *gin.Context) {
	transcript, status, err := h.Supervisor.Stop()
	if errors.Is(err, ErrStopTimeout) {
		respond.Error(c, http.StatusInternalServerError, "stop_timeout", "transcription worker did not stop in time", map[string]any{
			"transcript": transcript,
		})
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"status":     status,
		"transcript": transcript,
	})
}
