package audio

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/shared/telemetry"
)

const maxAudioBytes = 10 << 20

type Handler struct {
	Client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{Client: client}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/api/tts", h.tts)
	rg.POST("/api/stt", h.stt)
}

type ttsBody struct {
	Text string `json:"text"`
}

// tts returns an audio URL for the text, or null so the client falls back to
// browser-side synthesis.
func (h *Handler) tts(c *gin.Context) {
	var req ttsBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}

	audioURL, err := h.Client.Synthesize(c.Request.Context(), req.Text)
	if err != nil {
		telemetry.Warn("audio.tts.failed", map[string]any{"err": err.Error()})
		audioURL = ""
	}

	var url any
	if audioURL != "" {
		url = audioURL
	}
	respond.JSON(c, http.StatusOK, gin.H{"audio_url": url})
}

// stt transcribes an uploaded audio blob from the multipart field "audio".
func (h *Handler) stt(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "multipart field 'audio' is required", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "could not read audio", nil)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxAudioBytes))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "could not read audio", nil)
		return
	}

	transcript, err := h.Client.Transcribe(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		telemetry.Warn("audio.stt.failed", map[string]any{"err": err.Error()})
		transcript = ""
	}
	respond.JSON(c, http.StatusOK, gin.H{"transcript": transcript})
}
