package core

import (
	"context"
	"math"
)

// PerformanceSignal is the aggregate feedback the training loop reports back
// to the curriculum after a policy update. Loss is the primary signal;
// SuccessRate is optional (NaN when unavailable). PerDifficulty, when
// present, carries mean loss per difficulty bin from a validation pass.
type PerformanceSignal struct {
	Loss          float64
	SuccessRate   float64
	PerDifficulty []float64
}

// IsFinite reports whether the signal carries a usable loss value. The
// scheduler ignores non-finite signals rather than failing.
func (p PerformanceSignal) IsFinite() bool {
	return !math.IsNaN(p.Loss) && !math.IsInf(p.Loss, 0)
}

// Policy is the trainable policy boundary. The curriculum core never looks
// inside it; the training loop calls Update with sampled fragments and feeds
// the returned signal to the scheduler.
type Policy interface {
	// Predict maps a flattened multi-agent observation to an action.
	Predict(ctx context.Context, observation []float64) ([]float64, error)

	// Update performs one learning step on a batch of fragments and
	// returns the aggregate performance signal for that step.
	Update(ctx context.Context, batch []Fragment) (PerformanceSignal, error)
}

// ProgressReporter receives coarse progress callbacks from long-running
// loops.
type ProgressReporter interface {
	Report(stage string, processed, total int)
}
