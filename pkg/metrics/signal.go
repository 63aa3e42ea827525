package metrics

import (
	"math"

	"github.com/curricula-dev/curricula/pkg/core"
)

// EMA is an exponential moving average of a scalar signal. With decay d the
// update is v <- d*v + (1-d)*x. The average reports 0 until the first
// observation.
type EMA struct {
	decay       float64
	value       float64
	initialized bool
}

// NewEMA creates an EMA with the given decay in (0, 1).
func NewEMA(decay float64) *EMA {
	return &EMA{decay: decay}
}

// Observe folds x into the average. Non-finite values are ignored.
func (e *EMA) Observe(x float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return
	}
	if !e.initialized {
		e.value = x
		e.initialized = true
		return
	}
	e.value = e.decay*e.value + (1-e.decay)*x
}

// Value returns the current average.
func (e *EMA) Value() float64 {
	return e.value
}

// Initialized reports whether any observation has been folded in.
func (e *EMA) Initialized() bool {
	return e.initialized
}

// LossDistribution accumulates per-difficulty-bin losses from validation
// passes, mirroring the per-difficulty normalization of the imitation
// training loop: each bin reports the mean loss of the samples that landed
// in it.
type LossDistribution struct {
	sums   []float64
	counts []int
}

// NewLossDistribution creates a distribution with the given number of
// difficulty bins.
func NewLossDistribution(bins int) *LossDistribution {
	return &LossDistribution{
		sums:   make([]float64, bins),
		counts: make([]int, bins),
	}
}

// Bins returns the number of difficulty bins.
func (d *LossDistribution) Bins() int {
	return len(d.sums)
}

// Observe records one sample's loss in the given bin. Out-of-range bins and
// non-finite losses are dropped.
func (d *LossDistribution) Observe(bin int, loss float64) {
	if bin < 0 || bin >= len(d.sums) {
		return
	}
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return
	}
	d.sums[bin] += loss
	d.counts[bin]++
}

// Means returns the mean loss per bin; bins with no samples report 0.
func (d *LossDistribution) Means() []float64 {
	out := make([]float64, len(d.sums))
	for i, sum := range d.sums {
		if d.counts[i] > 0 {
			out[i] = sum / float64(d.counts[i])
		}
	}
	return out
}

// Average returns the mean of the per-bin means over non-empty bins, so
// unsampled difficulties do not drag the aggregate down.
func (d *LossDistribution) Average() float64 {
	var sum float64
	var nonEmpty int
	for i := range d.sums {
		if d.counts[i] > 0 {
			sum += d.sums[i] / float64(d.counts[i])
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return 0
	}
	return sum / float64(nonEmpty)
}

// BinFor maps a difficulty score in [0, 1] to a bin index.
func BinFor(score float64, bins int) int {
	if bins <= 0 {
		return 0
	}
	idx := int(score * float64(bins))
	if idx >= bins {
		idx = bins - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// SuccessRate returns the fraction of losses at or below the threshold.
// Non-finite losses count as failures.
func SuccessRate(losses []float64, threshold float64) float64 {
	if len(losses) == 0 {
		return 0
	}
	var ok int
	for _, l := range losses {
		if !math.IsNaN(l) && !math.IsInf(l, 0) && l <= threshold {
			ok++
		}
	}
	return float64(ok) / float64(len(losses))
}

// Progress collapses a performance signal into a single "higher is better"
// scalar in [0, 1] for the scheduler. A finite success rate wins; otherwise
// the loss is squashed.
func Progress(sig core.PerformanceSignal) float64 {
	if !math.IsNaN(sig.SuccessRate) && !math.IsInf(sig.SuccessRate, 0) && sig.SuccessRate >= 0 {
		if sig.SuccessRate > 1 {
			return 1
		}
		return sig.SuccessRate
	}
	if math.IsNaN(sig.Loss) || math.IsInf(sig.Loss, 0) || sig.Loss < 0 {
		return 0
	}
	return 1 / (1 + sig.Loss)
}
