package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"interview-backend/internal/qa"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client calls the Gemini generateContent API. It implements both qa.Generator
// and qa.Evaluator.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Gemini client. The model name keeps its "models/"
// prefix, e.g. "models/gemini-2.0-flash".
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	timeout := 60 * time.Second
	if raw := strings.TrimSpace(os.Getenv("GEMINI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// GenerateQuestions asks the model for count questions and parses one per line.
func (c *Client) GenerateQuestions(ctx context.Context, skills []string, count int) ([]string, error) {
	if count <= 0 {
		return []string{}, nil
	}
	tags := qa.NormalizeSkills(skills)
	text, err := c.generate(ctx, questionsPrompt(tags, count))
	if err != nil {
		return nil, err
	}
	questions := parseQuestionLines(text, count)
	if len(questions) == 0 {
		return nil, errors.New("gemini returned no questions")
	}
	return questions, nil
}

// EvaluateAnswer asks the model for a JSON score report.
func (c *Client) EvaluateAnswer(ctx context.Context, question, answer string) (qa.ScoreReport, error) {
	text, err := c.generate(ctx, evaluationPrompt(question, answer))
	if err != nil {
		return qa.ScoreReport{}, err
	}

	var report qa.ScoreReport
	if err := json.Unmarshal([]byte(stripFences(text)), &report); err != nil {
		return qa.ScoreReport{}, fmt.Errorf("gemini evaluation parse: %w", err)
	}
	report.Confidence = qa.Clamp(report.Confidence)
	report.Technical = qa.Clamp(report.Technical)
	report.Communication = qa.Clamp(report.Communication)
	return report, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("gemini request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gemini response parse: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini error: %s (%s)", parsed.Error.Message, parsed.Error.Status)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini response missing candidates")
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("gemini response empty content")
	}
	return text, nil
}
