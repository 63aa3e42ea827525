package core

import (
	"math/rand"
	"sort"

	"github.com/curricula-dev/curricula/pkg/errors"
)

// ScenarioType identifies the family of analytical generator a trajectory
// came from. The difficulty features and calibration constants are scenario
// specific.
type ScenarioType string

const (
	// FixedSwap covers scenarios where agent goal assignments exchange at
	// fixed points in time.
	FixedSwap ScenarioType = "fixed_swap"

	// TimeVaryingSwap covers scenarios with a continuously changing
	// assignment schedule.
	TimeVaryingSwap ScenarioType = "time_varying_swap"

	// Flocking covers cohesion/velocity-alignment scenarios.
	Flocking ScenarioType = "flocking"
)

// AllScenarios lists every supported scenario type in a stable order.
func AllScenarios() []ScenarioType {
	return []ScenarioType{FixedSwap, TimeVaryingSwap, Flocking}
}

// IsValid reports whether s names a known scenario family.
func (s ScenarioType) IsValid() bool {
	switch s {
	case FixedSwap, TimeVaryingSwap, Flocking:
		return true
	}
	return false
}

// ScenarioMix is a probability distribution over scenario types, consulted by
// the sampler when choosing which corpus slice to draw from.
type ScenarioMix map[ScenarioType]float64

const mixTolerance = 1e-9

// Validate checks that the mix is a proper distribution over known scenarios.
func (m ScenarioMix) Validate() error {
	if len(m) == 0 {
		return errors.New(errors.InvalidInput, "scenario mix is empty")
	}
	var sum float64
	for s, p := range m {
		if !s.IsValid() {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "unknown scenario type in mix"),
				errors.Fields{"scenario": string(s)},
			)
		}
		if p < 0 {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "negative probability in scenario mix"),
				errors.Fields{"scenario": string(s), "probability": p},
			)
		}
		sum += p
	}
	if sum < 1-1e-6 || sum > 1+1e-6 {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "scenario mix probabilities must sum to 1"),
			errors.Fields{"sum": sum},
		)
	}
	return nil
}

// Sample draws a scenario type from the mix. Iteration is over sorted keys so
// the draw is deterministic for a seeded rng.
func (m ScenarioMix) Sample(rng *rand.Rand) ScenarioType {
	keys := make([]string, 0, len(m))
	for s := range m {
		keys = append(keys, string(s))
	}
	sort.Strings(keys)

	r := rng.Float64()
	var acc float64
	for _, k := range keys {
		acc += m[ScenarioType(k)]
		if r < acc+mixTolerance {
			return ScenarioType(k)
		}
	}
	// Floating point slack: fall back to the last key.
	return ScenarioType(keys[len(keys)-1])
}

// Clone returns an independent copy of the mix.
func (m ScenarioMix) Clone() ScenarioMix {
	out := make(ScenarioMix, len(m))
	for s, p := range m {
		out[s] = p
	}
	return out
}
