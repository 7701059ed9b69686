package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	interviewStartedTotal   atomic.Uint64
	interviewCompletedTotal atomic.Uint64
	persistFailedTotal      atomic.Uint64
	evaluationFallbackTotal atomic.Uint64

	evaluationDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncInterviewStarted increments the started counter.
func IncInterviewStarted() {
	interviewStartedTotal.Add(1)
}

// IncInterviewCompleted increments the completed counter.
func IncInterviewCompleted() {
	interviewCompletedTotal.Add(1)
}

// IncPersistFailed counts result flushes that did not reach durable storage.
func IncPersistFailed() {
	persistFailedTotal.Add(1)
}

// IncEvaluationFallback counts answers scored by the local heuristic instead of the LLM.
func IncEvaluationFallback() {
	evaluationFallbackTotal.Add(1)
}

// ObserveEvaluationDurationMs records one answer-evaluation duration in milliseconds.
func ObserveEvaluationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	evaluationDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "interview_started_total", "Total interview sessions started", interviewStartedTotal.Load())
	writeCounter(&buf, "interview_completed_total", "Total interview sessions completed", interviewCompletedTotal.Load())
	writeCounter(&buf, "interview_persist_failed_total", "Total result flushes that failed to persist", persistFailedTotal.Load())
	writeCounter(&buf, "evaluation_fallback_total", "Total answers scored by the local fallback", evaluationFallbackTotal.Load())
	writeHistogram(&buf, "evaluation_duration_ms", "Answer evaluation duration in milliseconds", evaluationDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
