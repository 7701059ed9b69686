package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client wraps a request/response speech API for text-to-speech and
// speech-to-text. Without a configured endpoint both operations degrade: TTS
// reports no audio so the browser synthesizes locally, STT returns an empty
// transcript.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a speech client. An empty baseURL yields a degraded client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether a speech endpoint is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

type ttsRequest struct {
	Text string `json:"text"`
}

type ttsResponse struct {
	AudioURL string `json:"audio_url"`
}

// Synthesize converts text to speech and returns an audio URL, or empty when
// the service is unconfigured.
func (c *Client) Synthesize(ctx context.Context, text string) (string, error) {
	if !c.Configured() {
		return "", nil
	}

	payload, err := json.Marshal(ttsRequest{Text: text})
	if err != nil {
		return "", err
	}
	body, err := c.post(ctx, "/tts", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	var parsed ttsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("tts response parse: %w", err)
	}
	return parsed.AudioURL, nil
}

type sttResponse struct {
	Transcript string `json:"transcript"`
}

// Transcribe converts an audio payload to text, or returns an empty transcript
// when the service is unconfigured.
func (c *Client) Transcribe(ctx context.Context, data []byte, contentType string) (string, error) {
	if !c.Configured() {
		return "", nil
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	body, err := c.post(ctx, "/stt", contentType, bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	var parsed sttResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("stt response parse: %w", err)
	}
	return parsed.Transcript, nil
}

func (c *Client) post(ctx context.Context, path, contentType string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
