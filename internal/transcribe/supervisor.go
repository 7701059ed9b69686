package transcribe

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"interview-backend/internal/shared/telemetry"
)

// Status strings returned to the client.
const (
	StatusStarted        = "started"
	StatusAlreadyRunning = "already running"
	StatusStopped        = "stopped"
	StatusNotRunning     = "not running"
)

// ErrStopTimeout is returned when the capture worker does not exit within the
// bounded wait. The worker is abandoned, not killed; the supervisor resets so a
// new session can start.
var ErrStopTimeout = errors.New("transcription worker did not stop in time")

// DefaultStopWait bounds how long Stop blocks for the worker to settle.
const DefaultStopWait = 5 * time.Second

// Streamer runs one live transcription until the context is canceled. It calls
// ready exactly once when the stream is live, then pushes each finalized text
// segment into sink. Returning before ready means the stream never came up.
type Streamer interface {
	Run(ctx context.Context, ready func(), sink func(text string)) error
}

// Supervisor owns the single live transcription session for the process.
// Start is rejected, not queued, while a session is active. This at-most-one
// model matches a single-candidate deployment and is the documented scaling
// limit of the streaming feature.
type Supervisor struct {
	streamer Streamer
	stopWait time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	bufMu sync.Mutex
	buf   strings.Builder
}

// NewSupervisor builds a supervisor around the given streamer. A non-positive
// stopWait falls back to DefaultStopWait.
func NewSupervisor(streamer Streamer, stopWait time.Duration) *Supervisor {
	if stopWait <= 0 {
		stopWait = DefaultStopWait
	}
	return &Supervisor{streamer: streamer, stopWait: stopWait}
}

// Start launches the capture worker and blocks until the stream is live. A
// second Start while running reports StatusAlreadyRunning without touching the
// live worker. A worker that exits before signaling ready never becomes the
// active session; Start returns its error and the supervisor stays stopped. A
// worker that dies mid-session clears the supervisor itself so the next Start
// is not wedged on a dead stream.
func (s *Supervisor) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return StatusAlreadyRunning, nil
	}

	s.bufMu.Lock()
	s.buf.Reset()
	s.bufMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ready := make(chan struct{})
	var runErr error

	go func() {
		var once sync.Once
		runErr = s.streamer.Run(ctx, func() {
			once.Do(func() { close(ready) })
		}, s.append)
		close(done)

		// Self-exit after a successful start: clear the session so the
		// supervisor does not report a worker that no longer exists. Stale
		// exits (Stop already reset, or Start never adopted this worker)
		// leave state alone.
		s.mu.Lock()
		if s.done == done {
			s.reset()
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				telemetry.Warn("transcribe.stream.failed", map[string]any{
					"err": runErr.Error(),
				})
			}
		}
		s.mu.Unlock()
	}()

	select {
	case <-ready:
		s.cancel = cancel
		s.done = done
		s.running = true
		return StatusStarted, nil
	case <-done:
		cancel()
		if runErr == nil {
			runErr = errors.New("stream ended before it was ready")
		}
		return "", runErr
	}
}

// Stop signals the worker to tear down and waits up to the bounded wait for it
// to settle, then returns the accumulated transcript. Without a live session it
// reports StatusNotRunning and whatever the buffer holds. A worker that
// survives the wait is abandoned and reported via ErrStopTimeout.
func (s *Supervisor) Stop() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return s.transcript(), StatusNotRunning, nil
	}

	s.cancel()
	select {
	case <-s.done:
	case <-time.After(s.stopWait):
		s.reset()
		return s.transcript(), StatusStopped, ErrStopTimeout
	}

	s.reset()
	return s.transcript(), StatusStopped, nil
}

// Running reports whether a capture worker is active.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Supervisor) reset() {
	s.running = false
	s.cancel = nil
	s.done = nil
}

func (s *Supervisor) append(text string) {
	if text == "" {
		return
	}
	s.bufMu.Lock()
	s.buf.WriteString(text)
	s.buf.WriteString(" ")
	s.bufMu.Unlock()
}

func (s *Supervisor) transcript() string {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()
	return strings.TrimSpace(s.buf.String())
}
