package audio

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAudioRouter(t *testing.T, client *Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(client).RegisterRoutes(r.Group("/"))
	return r
}

func TestTTSUnconfiguredReturnsNull(t *testing.T) {
	r := newAudioRouter(t, NewClient("", ""))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tts", strings.NewReader(`{"text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["audio_url"] != nil {
		t.Fatalf("audio_url = %v, want null", resp["audio_url"])
	}
}

func TestTTSProxiesConfiguredService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tts" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"audio_url":"https://cdn.example.com/a.mp3"}`))
	}))
	defer srv.Close()

	r := newAudioRouter(t, NewClient(srv.URL, "key"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tts", strings.NewReader(`{"text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["audio_url"] != "https://cdn.example.com/a.mp3" {
		t.Fatalf("audio_url = %v", resp["audio_url"])
	}
}

func TestSTTMissingAudioRejected(t *testing.T) {
	r := newAudioRouter(t, NewClient("", ""))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/stt", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSTTUnconfiguredReturnsEmptyTranscript(t *testing.T) {
	r := newAudioRouter(t, NewClient("", ""))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "clip.webm")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write([]byte("fake-audio"))
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/stt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["transcript"] != "" {
		t.Fatalf("transcript = %q, want empty", resp["transcript"])
	}
}

func TestSTTDegradesOnServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	r := newAudioRouter(t, NewClient(srv.URL, ""))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("audio", "clip.webm")
	fw.Write([]byte("fake-audio"))
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/stt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want degraded 200", w.Code)
	}
}
