package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	config := GetDefaultConfig()
	assert.NoError(t, v.ValidateConfig(config))
}

func TestValidateConfig(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	t.Run("nil config", func(t *testing.T) {
		assert.Error(t, v.ValidateConfig(nil))
	})

	t.Run("inverted band", func(t *testing.T) {
		config := GetDefaultConfig()
		config.Curriculum.InitialBand = core.Band{Lo: 0.5, Hi: 0.2}
		assert.Error(t, v.ValidateConfig(config))
	})

	t.Run("mix does not sum to one", func(t *testing.T) {
		config := GetDefaultConfig()
		config.Curriculum.MixSchedule = []MixPhase{
			{FromStep: 0, Mix: core.ScenarioMix{core.Flocking: 0.7}},
		}
		assert.Error(t, v.ValidateConfig(config))
	})

	t.Run("weights must sum to one", func(t *testing.T) {
		config := GetDefaultConfig()
		config.Difficulty.FlockingWeights = map[string]float64{"clearance": 0.5}
		assert.Error(t, v.ValidateConfig(config))
	})

	t.Run("regression threshold above success threshold", func(t *testing.T) {
		config := GetDefaultConfig()
		config.Curriculum.RegressionThreshold = 0.9
		config.Curriculum.SuccessThreshold = 0.5
		assert.Error(t, v.ValidateConfig(config))
	})

	t.Run("max difficulty below initial band", func(t *testing.T) {
		config := GetDefaultConfig()
		config.Curriculum.InitialBand = core.Band{Lo: 0.3, Hi: 0.6}
		config.Curriculum.MaxDifficulty = 0.5
		assert.Error(t, v.ValidateConfig(config))
	})

	t.Run("zero min fragment length", func(t *testing.T) {
		config := GetDefaultConfig()
		config.Fragmenter.MinFragmentLength = 0
		assert.Error(t, v.ValidateConfig(config))
	})
}

func TestActiveMix(t *testing.T) {
	cur := getDefaultCurriculumConfig()

	t.Run("initial phase", func(t *testing.T) {
		mix := cur.ActiveMix(0)
		assert.Equal(t, 1.0, mix[core.Flocking])
	})

	t.Run("later phase overrides", func(t *testing.T) {
		mix := cur.ActiveMix(600)
		assert.Equal(t, 0.5, mix[core.Flocking])
		assert.Equal(t, 0.25, mix[core.FixedSwap])
	})

	t.Run("no schedule falls back to uniform", func(t *testing.T) {
		bare := CurriculumConfig{}
		mix := bare.ActiveMix(100)
		require.NoError(t, mix.Validate())
		assert.InDelta(t, 1.0/3, mix[core.FixedSwap], 1e-9)
	})

	t.Run("returned mix is a copy", func(t *testing.T) {
		mix := cur.ActiveMix(0)
		mix[core.Flocking] = 0.1
		assert.Equal(t, 1.0, cur.ActiveMix(0)[core.Flocking])
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing path uses defaults", func(t *testing.T) {
		config, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, GetDefaultConfig().Curriculum.WarmupSteps, config.Curriculum.WarmupSteps)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "run.yaml")
		content := []byte("curriculum:\n  warmup_steps: 37\nfragmenter:\n  min_fragment_length: 5\n")
		require.NoError(t, os.WriteFile(path, content, 0644))

		config, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 37, config.Curriculum.WarmupSteps)
		assert.Equal(t, 5, config.Fragmenter.MinFragmentLength)
		// Untouched fields keep their defaults.
		assert.Equal(t, 64, config.Fragmenter.MaxProbes)
	})

	t.Run("invalid file fails validation", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bad.yaml")
		content := []byte("curriculum:\n  growth_rate: -1\n")
		require.NoError(t, os.WriteFile(path, content, 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv(envWarmupSteps, "11")
		config, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 11, config.Curriculum.WarmupSteps)
	})
}
