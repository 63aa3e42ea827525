// Package difficulty scores trajectory windows on a normalized [0, 1] scale.
// Scores are derived purely from kinematic state and the swap log, so the
// same (trajectory, window, agents) request always produces the same score;
// that determinism is what makes score caching safe.
package difficulty

import (
	"context"

	"github.com/curricula-dev/curricula/pkg/cache"
	"github.com/curricula-dev/curricula/pkg/config"
	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/curricula-dev/curricula/pkg/errors"
	"github.com/curricula-dev/curricula/pkg/logging"
)

// Estimator combines per-scenario difficulty features into a single score.
type Estimator struct {
	weights map[core.ScenarioType]map[string]float64
	cal     config.CalibrationConfig
	cache   cache.ScoreCache
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithCache attaches a write-through score cache. The estimator stays usable
// if cache reads or writes fail; failures are logged and scoring proceeds.
func WithCache(c cache.ScoreCache) Option {
	return func(e *Estimator) {
		e.cache = c
	}
}

// New creates an estimator from the given difficulty configuration. Missing
// weight maps or calibration constants fall back to defaults.
func New(cfg config.DifficultyConfig, opts ...Option) *Estimator {
	defaults := config.GetDefaultConfig().Difficulty

	weights := map[core.ScenarioType]map[string]float64{
		core.FixedSwap:       cfg.FixedSwapWeights,
		core.TimeVaryingSwap: cfg.TimeVaryingSwapWeights,
		core.Flocking:        cfg.FlockingWeights,
	}
	if len(weights[core.FixedSwap]) == 0 {
		weights[core.FixedSwap] = defaults.FixedSwapWeights
	}
	if len(weights[core.TimeVaryingSwap]) == 0 {
		weights[core.TimeVaryingSwap] = defaults.TimeVaryingSwapWeights
	}
	if len(weights[core.Flocking]) == 0 {
		weights[core.Flocking] = defaults.FlockingWeights
	}

	cal := cfg.Calibration
	if cal == (config.CalibrationConfig{}) {
		cal = defaults.Calibration
	}

	e := &Estimator{weights: weights, cal: cal}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the difficulty of the window [start, end) restricted to the
// given agent subset. The window must satisfy the fragment invariants; a
// malformed request fails with InvalidWindow.
func (e *Estimator) Score(ctx context.Context, traj *core.Trajectory, start, end int, agents []int) (core.DifficultyScore, error) {
	if err := errors.CheckContext(ctx, "difficulty scoring"); err != nil {
		return core.DifficultyScore{}, err
	}
	if err := core.ValidateWindow(traj, start, end, agents, 1); err != nil {
		return core.DifficultyScore{}, err
	}

	var key string
	if e.cache != nil {
		key = cache.Key(traj.ID, start, end, agents)
		if score, found, err := e.cache.Get(ctx, key); err == nil && found {
			return score, nil
		} else if err != nil {
			logging.GetLogger().Warn(ctx, "score cache read failed: %v", err)
		}
	}

	sub := e.features(traj, start, end, agents)

	weights := e.weights[traj.Scenario]
	var value float64
	for name, w := range weights {
		value += w * sub[name]
	}
	value = clip01(value)

	score := core.DifficultyScore{Value: value, Sub: sub}

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, score); err != nil {
			logging.GetLogger().Warn(ctx, "score cache write failed: %v", err)
		}
	}

	return score, nil
}

// features computes the raw sub-scores for the trajectory's scenario, each
// already clipped to [0, 1].
func (e *Estimator) features(traj *core.Trajectory, start, end int, agents []int) map[string]float64 {
	sub := map[string]float64{
		"horizon": clip01(float64(end-start) / e.cal.HorizonScale),
	}

	switch traj.Scenario {
	case core.FixedSwap:
		sub["swap_density"] = e.swapDensity(traj, start, end, agents)
		sub["clearance"] = e.clearance(traj, start, end, agents)

	case core.TimeVaryingSwap:
		sub["swap_density"] = e.swapDensity(traj, start, end, agents)
		sub["swap_rate"] = e.swapBurstiness(traj, start, end, agents)
		sub["schedule_variance"] = e.scheduleVariance(traj, start, end, agents)
		sub["clearance"] = e.clearance(traj, start, end, agents)

	case core.Flocking:
		sub["alignment_variance"] = e.alignmentVariance(traj, start, end, agents)
		sub["density_variance"] = e.densityVariance(traj, start, end, agents)
		sub["clearance"] = e.clearance(traj, start, end, agents)
		sub["cohesion"] = e.fragmentation(traj, start, end, agents)
	}

	return sub
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
