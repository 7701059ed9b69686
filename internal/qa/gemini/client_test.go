package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient("test-key", "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.baseURL = srv.URL
	return c
}

func candidateResponse(text string) []byte {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return body
}

func TestGenerateQuestionsParsesLines(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/gemini-2.0-flash") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write(candidateResponse("1. What is a goroutine?\n\n2) Explain channels.\nDescribe interfaces."))
	})

	questions, err := c.GenerateQuestions(context.Background(), []string{"go"}, 5)
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	want := []string{"What is a goroutine?", "Explain channels.", "Describe interfaces."}
	if len(questions) != len(want) {
		t.Fatalf("got %v", questions)
	}
	for i := range want {
		if questions[i] != want[i] {
			t.Fatalf("question %d = %q, want %q", i, questions[i], want[i])
		}
	}
}

func TestQuestionParsingKeepsLeadingDigits(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"1. What is a goroutine?", "What is a goroutine?"},
		{"12) Explain channels.", "Explain channels."},
		{"- Describe interfaces.", "Describe interfaces."},
		{"* Describe maps.", "Describe maps."},
		{"2FA: how does it harden logins?", "2FA: how does it harden logins?"},
		{"3NF vs BCNF, when does it matter?", "3NF vs BCNF, when does it matter?"},
		{"64-bit integers: when do they overflow?", "64-bit integers: when do they overflow?"},
		{"42", "42"},
	}
	for _, tc := range cases {
		got := parseQuestionLines(tc.line, 1)
		if len(got) != 1 || got[0] != tc.want {
			t.Errorf("parse %q = %v, want [%q]", tc.line, got, tc.want)
		}
	}
}

func TestGenerateQuestionsCapsAtCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(candidateResponse("q1\nq2\nq3\nq4\nq5"))
	})

	questions, err := c.GenerateQuestions(context.Background(), []string{"go"}, 2)
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
}

func TestGenerateQuestionsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	if _, err := c.GenerateQuestions(context.Background(), []string{"go"}, 3); err == nil {
		t.Fatal("expected error for API error response")
	}
}

func TestEvaluateAnswerParsesFencedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(candidateResponse("```json\n{\"confidence\": 80, \"technical\": 150, \"communication\": -5, \"summary\": \"ok\"}\n```"))
	})

	report, err := c.EvaluateAnswer(context.Background(), "q", "a")
	if err != nil {
		t.Fatalf("EvaluateAnswer: %v", err)
	}
	if report.Confidence != 80 {
		t.Fatalf("confidence = %d, want 80", report.Confidence)
	}
	if report.Technical != 100 || report.Communication != 0 {
		t.Fatalf("scores not clamped: %+v", report)
	}
}

func TestEvaluateAnswerBadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(candidateResponse("sorry, I cannot help with that"))
	})

	if _, err := c.EvaluateAnswer(context.Background(), "q", "a"); err == nil {
		t.Fatal("expected parse error for non-JSON content")
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "gemini-2.0-flash"); err == nil {
		t.Fatal("missing key should error")
	}
	if _, err := NewClient("key", ""); err == nil {
		t.Fatal("missing model should error")
	}
	c, err := NewClient("key", "models/gemini-2.0-flash")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.model != "models/gemini-2.0-flash" {
		t.Fatalf("model = %q", c.model)
	}
}
