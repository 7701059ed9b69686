package metrics

import (
	"strings"
	"testing"
)

func TestRenderIncludesCountersAndHistogram(t *testing.T) {
	IncInterviewStarted()
	IncInterviewCompleted()
	ObserveEvaluationDurationMs(120)

	out := Render()
	for _, want := range []string{
		"interview_started_total",
		"interview_completed_total",
		"interview_persist_failed_total",
		"evaluation_fallback_total",
		"evaluation_duration_ms_bucket{le=\"+Inf\"}",
		"evaluation_duration_ms_sum",
		"evaluation_duration_ms_count",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render output missing %q:\n%s", want, out)
		}
	}
}

func TestHistogramCumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("count = %d, want 3", snap.count)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 2 {
		t.Fatalf("bucket counts = %v, want [1 2]", snap.counts)
	}
	if snap.sum != 555 {
		t.Fatalf("sum = %v, want 555", snap.sum)
	}
}
