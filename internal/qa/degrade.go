package qa

import (
	"context"

	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/telemetry"
)

// DegradingEvaluator tries the primary evaluator and falls back to the local
// heuristic when it fails. Scoring an answer must never fail the submission.
type DegradingEvaluator struct {
	Primary  Evaluator
	Fallback Evaluator
}

func NewDegradingEvaluator(primary Evaluator) *DegradingEvaluator {
	return &DegradingEvaluator{Primary: primary, Fallback: Fallback{}}
}

func (d *DegradingEvaluator) EvaluateAnswer(ctx context.Context, question, answer string) (ScoreReport, error) {
	if d.Primary != nil {
		report, err := d.Primary.EvaluateAnswer(ctx, question, answer)
		if err == nil {
			return report, nil
		}
		telemetry.Warn("qa.evaluate.fallback", map[string]any{
			"err": err.Error(),
		})
		metrics.IncEvaluationFallback()
	}
	return d.Fallback.EvaluateAnswer(ctx, question, answer)
}
