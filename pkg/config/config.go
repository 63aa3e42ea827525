package config

import (
	"github.com/curricula-dev/curricula/pkg/core"
)

// Config represents the complete configuration for a curriculum training run.
type Config struct {
	// Curriculum scheduling configuration
	Curriculum CurriculumConfig `yaml:"curriculum" validate:"required"`

	// Fragmenter configuration
	Fragmenter FragmenterConfig `yaml:"fragmenter" validate:"required"`

	// Difficulty estimation configuration
	Difficulty DifficultyConfig `yaml:"difficulty,omitempty" validate:"omitempty"`

	// Sampler configuration
	Sampler SamplerConfig `yaml:"sampler,omitempty" validate:"omitempty"`

	// Trajectory store configuration
	Store StoreConfig `yaml:"store,omitempty" validate:"omitempty"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging,omitempty" validate:"omitempty"`
}

// CurriculumConfig holds the schedule parameters for the curriculum state
// machine.
type CurriculumConfig struct {
	// Number of steps spent in the warm-up phase before ramping begins
	WarmupSteps int `yaml:"warmup_steps" validate:"min=0"`

	// Initial difficulty band used during warm-up
	InitialBand core.Band `yaml:"initial_band" validate:"band"`

	// Band lower/upper bound growth per advance while ramping
	GrowthRate float64 `yaml:"growth_rate" validate:"gt=0,lte=1"`

	// Width of the moving band
	BandWidth float64 `yaml:"band_width" validate:"gt=0,lte=1"`

	// Upper bound the band saturates at
	MaxDifficulty float64 `yaml:"max_difficulty" validate:"gt=0,lte=1"`

	// Warm-up exits early once the performance EMA reaches this floor
	PerformanceFloor float64 `yaml:"performance_floor" validate:"min=0,max=1"`

	// Ramping advances only while the performance EMA stays at or above
	// this threshold
	SuccessThreshold float64 `yaml:"success_threshold" validate:"min=0,max=1"`

	// Sustained performance below this threshold triggers a backoff
	RegressionThreshold float64 `yaml:"regression_threshold" validate:"min=0,max=1"`

	// Number of consecutive below-threshold signals before backing off
	RegressionWindow int `yaml:"regression_window" validate:"min=1"`

	// Fraction of the band's lower range surrendered on each backoff
	BackoffShrink float64 `yaml:"backoff_shrink" validate:"min=0,max=1"`

	// Decay for the exponential moving average of performance
	EMADecay float64 `yaml:"ema_decay" validate:"gt=0,lt=1"`

	// Validation cadence: a validation pass is recorded every this many
	// steps
	ValidationPeriod int `yaml:"validation_period" validate:"min=1"`

	// Scenario mix schedule: phases activate at FromStep, later phases
	// override earlier ones
	MixSchedule []MixPhase `yaml:"mix_schedule,omitempty" validate:"omitempty,dive"`
}

// MixPhase binds a scenario mix to the training step it activates at.
type MixPhase struct {
	FromStep int              `yaml:"from_step" validate:"min=0"`
	Mix      core.ScenarioMix `yaml:"mix" validate:"scenario_mix"`
}

// FragmenterConfig bounds the fragment search.
type FragmenterConfig struct {
	// Minimum fragment length in timesteps
	MinFragmentLength int `yaml:"min_fragment_length" validate:"min=1"`

	// Maximum number of difficulty probes per fragment call
	MaxProbes int `yaml:"max_probes" validate:"min=1"`

	// Number of anchor points seeding the window search
	AnchorCount int `yaml:"anchor_count" validate:"min=1"`
}

// DifficultyConfig carries per-scenario feature weights and calibration
// constants. Weights for each scenario must sum to 1.
type DifficultyConfig struct {
	FixedSwapWeights       map[string]float64 `yaml:"fixed_swap_weights,omitempty" validate:"omitempty,weights"`
	TimeVaryingSwapWeights map[string]float64 `yaml:"time_varying_swap_weights,omitempty" validate:"omitempty,weights"`
	FlockingWeights        map[string]float64 `yaml:"flocking_weights,omitempty" validate:"omitempty,weights"`

	Calibration CalibrationConfig `yaml:"calibration,omitempty"`
}

// CalibrationConfig holds the fixed scaling constants that normalize raw
// difficulty features into [0, 1]. Outliers clip at 1.
type CalibrationConfig struct {
	// Clearance below which proximity difficulty saturates
	ClearanceScale float64 `yaml:"clearance_scale" validate:"omitempty,gt=0"`

	// Swaps per timestep at which swap density saturates
	SwapDensityScale float64 `yaml:"swap_density_scale" validate:"omitempty,gt=0"`

	// Swap schedule variance at which the variance feature saturates
	ScheduleVarianceScale float64 `yaml:"schedule_variance_scale" validate:"omitempty,gt=0"`

	// Velocity alignment variance saturation point
	AlignmentScale float64 `yaml:"alignment_scale" validate:"omitempty,gt=0"`

	// Local density variance saturation point
	DensityScale float64 `yaml:"density_scale" validate:"omitempty,gt=0"`

	// Pairwise distance defining flock connectivity
	CohesionRadius float64 `yaml:"cohesion_radius" validate:"omitempty,gt=0"`

	// Window length at which the horizon feature saturates
	HorizonScale float64 `yaml:"horizon_scale" validate:"omitempty,gt=0"`
}

// SamplerConfig owns the retry policy and the data-loading parallelism.
type SamplerConfig struct {
	// Bounded retries across trajectories before a sampling step is
	// declared a skip
	MaxRetries int `yaml:"max_retries" validate:"min=1"`

	// Number of failed attempts before the band is widened for the
	// remaining retries (0 disables widening)
	WidenAfter int `yaml:"widen_after" validate:"min=0"`

	// Amount the band is widened by on each side
	WidenDelta float64 `yaml:"widen_delta" validate:"min=0,max=1"`

	// Parallel workers for batch sampling
	Workers int `yaml:"workers" validate:"min=1"`

	// Fragments per training batch
	BatchSize int `yaml:"batch_size" validate:"min=1"`
}

// StoreConfig configures corpus loading and the difficulty score cache.
type StoreConfig struct {
	// Path to the parquet corpus (optional, corpora can be added
	// programmatically)
	Path string `yaml:"path,omitempty"`

	// Cache backend for difficulty scores: "memory" or "sqlite"
	CacheType string `yaml:"cache_type,omitempty" validate:"omitempty,oneof=memory sqlite"`

	// SQLite database path when cache_type is sqlite
	CachePath string `yaml:"cache_path,omitempty"`

	// Maximum entries for the memory cache (0 = unlimited)
	CacheMaxEntries int `yaml:"cache_max_entries,omitempty" validate:"min=0"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Log level: DEBUG, INFO, WARN, ERROR, FATAL
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`

	// Optional log file path (console output is always on)
	File string `yaml:"file,omitempty"`

	// Whether console output uses ANSI colors
	UseColors bool `yaml:"use_colors,omitempty"`
}

// ActiveMix returns the scenario mix in force at the given step, falling back
// to a uniform mix when no phase applies.
func (c *CurriculumConfig) ActiveMix(step int) core.ScenarioMix {
	var active core.ScenarioMix
	for _, phase := range c.MixSchedule {
		if step >= phase.FromStep {
			active = phase.Mix
		}
	}
	if active == nil {
		return core.ScenarioMix{
			core.FixedSwap:       1.0 / 3,
			core.TimeVaryingSwap: 1.0 / 3,
			core.Flocking:        1.0 / 3,
		}
	}
	return active.Clone()
}
