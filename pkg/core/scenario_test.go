package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScenarioMixValidate(t *testing.T) {
	tests := []struct {
		name    string
		mix     ScenarioMix
		wantErr bool
	}{
		{
			name: "uniform mix",
			mix:  ScenarioMix{FixedSwap: 1.0 / 3, TimeVaryingSwap: 1.0 / 3, Flocking: 1.0 / 3},
		},
		{
			name: "concentrated mix",
			mix:  ScenarioMix{Flocking: 1.0},
		},
		{
			name:    "empty mix",
			mix:     ScenarioMix{},
			wantErr: true,
		},
		{
			name:    "does not sum to one",
			mix:     ScenarioMix{Flocking: 0.5},
			wantErr: true,
		},
		{
			name:    "negative probability",
			mix:     ScenarioMix{Flocking: 1.5, FixedSwap: -0.5},
			wantErr: true,
		},
		{
			name:    "unknown scenario",
			mix:     ScenarioMix{ScenarioType("orbit"): 1.0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mix.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScenarioMixSample(t *testing.T) {
	t.Run("degenerate mix always returns its scenario", func(t *testing.T) {
		mix := ScenarioMix{TimeVaryingSwap: 1.0}
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 100; i++ {
			assert.Equal(t, TimeVaryingSwap, mix.Sample(rng))
		}
	})

	t.Run("deterministic for a seeded rng", func(t *testing.T) {
		mix := ScenarioMix{FixedSwap: 0.3, TimeVaryingSwap: 0.3, Flocking: 0.4}

		draw := func() []ScenarioType {
			rng := rand.New(rand.NewSource(7))
			out := make([]ScenarioType, 50)
			for i := range out {
				out[i] = mix.Sample(rng)
			}
			return out
		}

		assert.Equal(t, draw(), draw())
	})

	t.Run("covers all scenarios eventually", func(t *testing.T) {
		mix := ScenarioMix{FixedSwap: 0.3, TimeVaryingSwap: 0.3, Flocking: 0.4}
		rng := rand.New(rand.NewSource(42))
		seen := map[ScenarioType]bool{}
		for i := 0; i < 1000; i++ {
			seen[mix.Sample(rng)] = true
		}
		assert.Len(t, seen, 3)
	})
}

func TestScenarioMixClone(t *testing.T) {
	mix := ScenarioMix{Flocking: 1.0}
	clone := mix.Clone()
	clone[Flocking] = 0.5
	assert.Equal(t, 1.0, mix[Flocking])
}
