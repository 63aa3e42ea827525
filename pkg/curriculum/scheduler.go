// Package curriculum owns the difficulty schedule of a training run. A
// Scheduler consumes performance signals from the training loop and moves a
// difficulty band through [0, 1]: held low during warm-up, advanced while the
// policy keeps up, backed off on sustained regression, and pinned once the
// ceiling is reached.
package curriculum

import (
	"context"
	"sync"

	"github.com/curricula-dev/curricula/pkg/config"
	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/curricula-dev/curricula/pkg/errors"
	"github.com/curricula-dev/curricula/pkg/logging"
	"github.com/curricula-dev/curricula/pkg/metrics"
)

// Phase is the scheduler's position in the curriculum.
type Phase string

const (
	// PhaseWarmup holds the band at its initial easy range until the policy
	// shows a pulse or the warm-up step budget runs out.
	PhaseWarmup Phase = "warmup"

	// PhaseRamping moves the band upward while performance stays above the
	// success threshold.
	PhaseRamping Phase = "ramping"

	// PhaseSaturated pins the band at the difficulty ceiling.
	PhaseSaturated Phase = "saturated"
)

// difficultyBins is the resolution of the per-difficulty histograms kept in
// the run history.
const difficultyBins = 10

// Snapshot is an immutable view of the scheduler for sampler workers. Workers
// sample an entire batch against one snapshot, so a mid-batch advance never
// mixes two bands in one batch.
type Snapshot struct {
	Phase       Phase
	Step        int
	Band        core.Band
	Mix         core.ScenarioMix
	Performance float64
	Backoffs    int
}

// Scheduler is the curriculum state machine. All mutation goes through
// Advance; readers take cheap snapshots.
type Scheduler struct {
	mu  sync.Mutex
	cfg config.CurriculumConfig

	phase         Phase
	step          int
	band          core.Band
	perf          *metrics.EMA
	regressStreak int
	backoffs      int

	// Accumulators for the current validation epoch.
	epochCounts []int
	lastPerDiff []float64

	history []EpochRecord
}

// New creates a scheduler in the warm-up phase.
func New(cfg config.CurriculumConfig) *Scheduler {
	return &Scheduler{
		cfg:         cfg,
		phase:       PhaseWarmup,
		band:        cfg.InitialBand,
		perf:        metrics.NewEMA(cfg.EMADecay),
		epochCounts: make([]int, difficultyBins),
	}
}

// Advance consumes one performance signal and moves the schedule forward a
// step. A non-finite signal fails with SignalIgnored and leaves the state
// untouched, including the step counter.
func (s *Scheduler) Advance(ctx context.Context, sig core.PerformanceSignal) error {
	if !sig.IsFinite() {
		return errors.WithFields(
			errors.New(errors.SignalIgnored, "non-finite performance signal"),
			errors.Fields{"loss": sig.Loss},
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.step++
	progress := metrics.Progress(sig)
	s.perf.Observe(progress)
	if len(sig.PerDifficulty) > 0 {
		s.lastPerDiff = append([]float64(nil), sig.PerDifficulty...)
	}

	switch s.phase {
	case PhaseWarmup:
		s.advanceWarmup(ctx)
	case PhaseRamping:
		s.advanceRamping(ctx, progress)
	case PhaseSaturated:
		s.advanceSaturated(ctx, progress)
	}

	if s.cfg.ValidationPeriod > 0 && s.step%s.cfg.ValidationPeriod == 0 {
		s.recordEpoch()
	}
	return nil
}

func (s *Scheduler) advanceWarmup(ctx context.Context) {
	ready := s.perf.Initialized() && s.perf.Value() >= s.cfg.PerformanceFloor
	if s.step < s.cfg.WarmupSteps && !ready {
		return
	}

	s.phase = PhaseRamping
	s.band = s.clampBand(core.Band{
		Lo: s.cfg.InitialBand.Lo,
		Hi: s.cfg.InitialBand.Lo + s.cfg.BandWidth,
	})
	logging.GetLogger().Info(ctx, "warm-up complete at step %d, ramping from band [%.3f, %.3f]",
		s.step, s.band.Lo, s.band.Hi)
}

func (s *Scheduler) advanceRamping(ctx context.Context, progress float64) {
	if s.regressed(progress) {
		s.backoff(ctx)
		return
	}
	// An active regression streak holds the band even while the EMA is still
	// above the success threshold; regressing signals never raise difficulty.
	if s.regressStreak > 0 || s.perf.Value() < s.cfg.SuccessThreshold {
		return
	}

	s.band = s.clampBand(core.Band{
		Lo: s.band.Lo + s.cfg.GrowthRate,
		Hi: s.band.Lo + s.cfg.GrowthRate + s.cfg.BandWidth,
	})
	if s.band.Hi >= s.cfg.MaxDifficulty {
		s.phase = PhaseSaturated
		logging.GetLogger().Info(ctx, "curriculum saturated at step %d, band [%.3f, %.3f]",
			s.step, s.band.Lo, s.band.Hi)
	}
}

func (s *Scheduler) advanceSaturated(ctx context.Context, progress float64) {
	if s.regressed(progress) {
		s.backoff(ctx)
	}
}

// regressed tracks consecutive below-threshold signals and reports true once
// the streak fills the regression window.
func (s *Scheduler) regressed(progress float64) bool {
	if progress >= s.cfg.RegressionThreshold {
		s.regressStreak = 0
		return false
	}
	s.regressStreak++
	return s.regressStreak >= s.cfg.RegressionWindow
}

// backoff surrenders part of the band's climb above its starting point and
// resumes ramping from there.
func (s *Scheduler) backoff(ctx context.Context) {
	climbed := s.band.Lo - s.cfg.InitialBand.Lo
	lo := s.band.Lo - climbed*s.cfg.BackoffShrink
	s.band = s.clampBand(core.Band{Lo: lo, Hi: lo + s.cfg.BandWidth})
	s.phase = PhaseRamping
	s.regressStreak = 0
	s.backoffs++
	logging.GetLogger().Warn(ctx, "sustained regression at step %d, backing off to band [%.3f, %.3f]",
		s.step, s.band.Lo, s.band.Hi)
}

// clampBand keeps the band inside [InitialBand.Lo, MaxDifficulty] without
// changing its width unless the range forces it.
func (s *Scheduler) clampBand(b core.Band) core.Band {
	if b.Hi > s.cfg.MaxDifficulty {
		shift := b.Hi - s.cfg.MaxDifficulty
		b.Hi = s.cfg.MaxDifficulty
		b.Lo -= shift
	}
	if b.Lo < s.cfg.InitialBand.Lo {
		b.Lo = s.cfg.InitialBand.Lo
	}
	if b.Hi < b.Lo {
		b.Hi = b.Lo
	}
	return b
}

// NextRequest returns the scenario mix and difficulty band for the next
// sampling step.
func (s *Scheduler) NextRequest() (core.ScenarioMix, core.Band) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.ActiveMix(s.step), s.band
}

// Snapshot returns a consistent copy of the scheduler state.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Phase:       s.phase,
		Step:        s.step,
		Band:        s.band,
		Mix:         s.cfg.ActiveMix(s.step),
		Performance: s.perf.Value(),
		Backoffs:    s.backoffs,
	}
}

// DifficultyDistribution returns the distribution over difficulty bins
// implied by the current band: uniform mass over the band, apportioned to
// each bin by overlap. Sums to 1.
func (s *Scheduler) DifficultyDistribution() []float64 {
	s.mu.Lock()
	band := s.band
	s.mu.Unlock()

	out := make([]float64, difficultyBins)
	width := band.Width()
	if width <= 0 {
		out[metrics.BinFor(band.Lo, difficultyBins)] = 1
		return out
	}

	binWidth := 1.0 / difficultyBins
	for i := range out {
		lo := float64(i) * binWidth
		hi := lo + binWidth
		overlap := min(hi, band.Hi) - max(lo, band.Lo)
		if overlap > 0 {
			out[i] = overlap / width
		}
	}
	return out
}

// ObserveScore records the difficulty of a sampled fragment into the current
// validation epoch's difficulty histogram.
func (s *Scheduler) ObserveScore(score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epochCounts[metrics.BinFor(score, difficultyBins)]++
}
