package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sampleRate     = 16000
	connectTimeout = 10 * time.Second
)

// WSStreamer connects to a streaming speech API over websocket and accumulates
// finalized turns. The remote protocol sends JSON events; "Turn" events carry
// transcript text, formatted turns marking the end of an utterance.
type WSStreamer struct {
	Endpoint string
	APIKey   string
}

func NewWSStreamer(endpoint, apiKey string) *WSStreamer {
	return &WSStreamer{Endpoint: endpoint, APIKey: apiKey}
}

type turnEvent struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript"`
	EndOfTurn  bool   `json:"end_of_turn"`
	Error      string `json:"error"`
}

// Run holds the websocket open until ctx cancels, signaling ready once the
// dial succeeds and pushing each finished turn into sink. Teardown is
// cooperative: cancellation sends a terminate message and closes the
// connection, which unblocks the read loop.
func (w *WSStreamer) Run(ctx context.Context, ready func(), sink func(text string)) error {
	if w.Endpoint == "" {
		return errors.New("streaming endpoint not configured")
	}

	endpoint, err := url.Parse(w.Endpoint)
	if err != nil {
		return fmt.Errorf("parse streaming endpoint: %w", err)
	}
	query := endpoint.Query()
	query.Set("sample_rate", fmt.Sprintf("%d", sampleRate))
	query.Set("format_turns", "true")
	endpoint.RawQuery = query.Encode()

	header := http.Header{}
	if w.APIKey != "" {
		header.Set("Authorization", w.APIKey)
	}

	dialer := websocket.Dialer{HandshakeTimeout: connectTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint.String(), header)
	if err != nil {
		return fmt.Errorf("dial streaming api: %w", err)
	}
	ready()

	go func() {
		<-ctx.Done()
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "terminate"), deadline)
		_ = conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read streaming message: %w", err)
		}

		var event turnEvent
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}
		switch event.Type {
		case "Turn":
			if event.EndOfTurn && event.Transcript != "" {
				sink(event.Transcript)
			}
		case "Termination":
			return nil
		case "Error":
			return fmt.Errorf("streaming api error: %s", event.Error)
		}
	}
}
