package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/storage/object/local"
	"interview-backend/internal/users"
)

type stubStarter struct {
	questions []string
	err       error
	calls     int
}

func (s *stubStarter) StartSession(_ context.Context, _ string, _ []string) ([]string, error) {
	s.calls++
	return s.questions, s.err
}

func newUploadRouter(t *testing.T, starter SessionStarter) (*gin.Engine, *users.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	userSvc := users.NewService(users.NewMemoryRepo())
	svc := NewService(local.New(t.TempDir()), userSvc, false)
	h := NewHandler(svc, starter)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	h.RegisterRoutes(r.Group("/"))
	return r, userSvc
}

func multipartBody(t *testing.T, field, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadTxtResumeReturnsSkillsAndQuestions(t *testing.T) {
	starter := &stubStarter{questions: []string{"q1", "q2"}}
	r, _ := newUploadRouter(t, starter)

	body, contentType := multipartBody(t, "resume", "cv.txt", []byte("Python Python Docker"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload_resume", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Status    string   `json:"status"`
		Skills    []string `json:"skills"`
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("status = %q", resp.Status)
	}
	if len(resp.Skills) != 2 || resp.Skills[0] != "Python" || resp.Skills[1] != "Docker" {
		t.Fatalf("skills = %v", resp.Skills)
	}
	if len(resp.Questions) != 2 {
		t.Fatalf("questions = %v", resp.Questions)
	}
	if starter.calls != 1 {
		t.Fatalf("starter calls = %d, want 1", starter.calls)
	}
}

func TestUploadMissingFileRejected(t *testing.T) {
	r, _ := newUploadRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUploadDisallowedExtensionRejected(t *testing.T) {
	r, _ := newUploadRouter(t, nil)

	body, contentType := multipartBody(t, "resume", "cv.exe", []byte("MZ"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUploadEmptyFileRejected(t *testing.T) {
	r, _ := newUploadRouter(t, nil)

	body, contentType := multipartBody(t, "resume", "cv.txt", nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUploadDegradesWhenSessionStartFails(t *testing.T) {
	starter := &stubStarter{err: errors.New("generator down")}
	r, _ := newUploadRouter(t, starter)

	body, contentType := multipartBody(t, "resume", "cv.txt", []byte("Python Docker"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, present := resp["questions"]; present {
		t.Fatalf("questions should be absent on generation failure: %s", w.Body.String())
	}
}

func TestProcessSavesSkillsForKnownUser(t *testing.T) {
	userSvc := users.NewService(users.NewMemoryRepo())
	u, err := userSvc.Register(context.Background(), "alice", "a@b.com", "password1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	svc := NewService(local.New(t.TempDir()), userSvc, false)
	if _, err := svc.Process(context.Background(), u.ID, "cv.txt", "text/plain", []byte("Python Docker Python")); err != nil {
		t.Fatalf("process: %v", err)
	}
	skills, err := userSvc.Skills(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("skills: %v", err)
	}
	if len(skills) != 2 || skills[0] != "Python" {
		t.Fatalf("skills = %v", skills)
	}
}
