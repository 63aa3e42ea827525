package config

import (
	"github.com/curricula-dev/curricula/pkg/core"
)

// GetDefaultConfig returns the default configuration for a curriculum run.
func GetDefaultConfig() *Config {
	return &Config{
		Curriculum: getDefaultCurriculumConfig(),
		Fragmenter: getDefaultFragmenterConfig(),
		Difficulty: getDefaultDifficultyConfig(),
		Sampler:    getDefaultSamplerConfig(),
		Store:      getDefaultStoreConfig(),
		Logging:    getDefaultLoggingConfig(),
	}
}

// getDefaultCurriculumConfig returns default curriculum schedule parameters.
func getDefaultCurriculumConfig() CurriculumConfig {
	return CurriculumConfig{
		WarmupSteps:         200,
		InitialBand:         core.Band{Lo: 0.0, Hi: 0.1},
		GrowthRate:          0.002,
		BandWidth:           0.2,
		MaxDifficulty:       1.0,
		PerformanceFloor:    0.4,
		SuccessThreshold:    0.6,
		RegressionThreshold: 0.3,
		RegressionWindow:    10,
		BackoffShrink:       0.5,
		EMADecay:            0.9,
		ValidationPeriod:    50,
		MixSchedule: []MixPhase{
			{
				FromStep: 0,
				Mix:      core.ScenarioMix{core.Flocking: 1.0},
			},
			{
				FromStep: 500,
				Mix: core.ScenarioMix{
					core.FixedSwap:       0.25,
					core.TimeVaryingSwap: 0.25,
					core.Flocking:        0.5,
				},
			},
			{
				FromStep: 1500,
				Mix: core.ScenarioMix{
					core.FixedSwap:       1.0 / 3,
					core.TimeVaryingSwap: 1.0 / 3,
					core.Flocking:        1.0 / 3,
				},
			},
		},
	}
}

// getDefaultFragmenterConfig returns default fragment search bounds.
func getDefaultFragmenterConfig() FragmenterConfig {
	return FragmenterConfig{
		MinFragmentLength: 10,
		MaxProbes:         64,
		AnchorCount:       8,
	}
}

// getDefaultDifficultyConfig returns default per-scenario weights and
// calibration constants. Weights per scenario sum to 1.
func getDefaultDifficultyConfig() DifficultyConfig {
	return DifficultyConfig{
		FixedSwapWeights: map[string]float64{
			"swap_density": 0.45,
			"clearance":    0.35,
			"horizon":      0.20,
		},
		TimeVaryingSwapWeights: map[string]float64{
			"swap_density":      0.30,
			"swap_rate":         0.20,
			"schedule_variance": 0.15,
			"clearance":         0.20,
			"horizon":           0.15,
		},
		FlockingWeights: map[string]float64{
			"alignment_variance": 0.30,
			"density_variance":   0.20,
			"clearance":          0.25,
			"cohesion":           0.15,
			"horizon":            0.10,
		},
		Calibration: getDefaultCalibration(),
	}
}

// getDefaultCalibration returns the fixed normalization constants. Tuned
// against the analytical generators; see the estimator tests for the regime
// each constant covers.
func getDefaultCalibration() CalibrationConfig {
	return CalibrationConfig{
		ClearanceScale:        2.0,
		SwapDensityScale:      0.1,
		ScheduleVarianceScale: 400.0,
		AlignmentScale:        1.0,
		DensityScale:          4.0,
		CohesionRadius:        3.0,
		HorizonScale:          100.0,
	}
}

// getDefaultSamplerConfig returns default retry and parallelism settings.
func getDefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		MaxRetries: 8,
		WidenAfter: 5,
		WidenDelta: 0.05,
		Workers:    4,
		BatchSize:  100,
	}
}

// getDefaultStoreConfig returns default corpus/cache settings.
func getDefaultStoreConfig() StoreConfig {
	return StoreConfig{
		CacheType:       "memory",
		CacheMaxEntries: 65536,
	}
}

// getDefaultLoggingConfig returns default logging settings.
func getDefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:     "INFO",
		UseColors: true,
	}
}
