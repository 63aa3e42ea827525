// Package testutil provides synthetic trajectory fixtures and mocks shared
// by the curriculum tests. The builders are deliberately simple analytical
// motions, not full scenario generators.
package testutil

import (
	"math"
	"math/rand"

	"github.com/curricula-dev/curricula/pkg/core"
)

const defaultDt = 0.04

// UniformFlock builds a flocking trajectory where every agent moves with the
// same constant velocity: perfectly aligned, fixed spacing, zero variance.
// The easiest possible flocking data.
func UniformFlock(agents, horizon int) (*core.Trajectory, error) {
	steps := make([]core.TimestepState, horizon)
	for t := 0; t < horizon; t++ {
		st := make(core.TimestepState, agents)
		for a := 0; a < agents; a++ {
			st[a] = core.AgentState{
				Position:   core.Vec2{float64(t) * defaultDt, float64(a) * 2.0},
				Velocity:   core.Vec2{1, 0},
				Assignment: -1,
			}
		}
		steps[t] = st
	}
	return core.NewTrajectory(core.Flocking, defaultDt, steps, nil)
}

// TurbulentFlock builds a flocking trajectory with strongly divergent
// velocities, jittered positions and close encounters around the middle of
// the horizon.
func TurbulentFlock(agents, horizon int, seed int64) (*core.Trajectory, error) {
	rng := rand.New(rand.NewSource(seed))
	steps := make([]core.TimestepState, horizon)
	for t := 0; t < horizon; t++ {
		st := make(core.TimestepState, agents)
		// Agents converge toward the origin mid-horizon, then scatter.
		phase := math.Sin(float64(t) / float64(horizon) * math.Pi)
		for a := 0; a < agents; a++ {
			angle := 2*math.Pi*float64(a)/float64(agents) + rng.Float64()*0.5
			radius := 5.0*(1-phase) + 0.2
			st[a] = core.AgentState{
				Position: core.Vec2{
					radius*math.Cos(angle) + rng.Float64()*0.3,
					radius*math.Sin(angle) + rng.Float64()*0.3,
				},
				Velocity: core.Vec2{
					math.Cos(angle*3) * (1 + rng.Float64()),
					math.Sin(angle*2) * (1 + rng.Float64()),
				},
				Assignment: -1,
			}
		}
		steps[t] = st
	}
	return core.NewTrajectory(core.Flocking, defaultDt, steps, nil)
}

// SingleSwap builds a fixed-swap trajectory of two crossing agent pairs with
// exactly one assignment exchange at swapStep. Agents approach each other
// around the swap and separate afterwards.
func SingleSwap(agents, horizon, swapStep int) (*core.Trajectory, error) {
	steps := make([]core.TimestepState, horizon)
	for t := 0; t < horizon; t++ {
		st := make(core.TimestepState, agents)
		// Distance to the swap controls how close the crossing pair gets.
		closeness := 1.0 - math.Min(1, math.Abs(float64(t-swapStep))/float64(horizon)*4)
		for a := 0; a < agents; a++ {
			assignment := a
			if t >= swapStep {
				// Agents 0 and 1 exchanged goals.
				switch a {
				case 0:
					assignment = 1
				case 1:
					assignment = 0
				}
			}
			sep := 4.0 - 3.5*closeness
			st[a] = core.AgentState{
				Position:   core.Vec2{float64(t) * defaultDt, float64(a) * sep},
				Velocity:   core.Vec2{1, closeness * 0.5},
				Assignment: assignment,
			}
		}
		steps[t] = st
	}
	swaps := []core.SwapEvent{{Step: swapStep, A: 0, B: 1}}
	return core.NewTrajectory(core.FixedSwap, defaultDt, steps, swaps)
}

// TimeVaryingSwaps builds a time-varying-swap trajectory with exchanges at
// the given steps, rotating through agent pairs.
func TimeVaryingSwaps(agents, horizon int, swapSteps []int) (*core.Trajectory, error) {
	swaps := make([]core.SwapEvent, 0, len(swapSteps))
	for i, step := range swapSteps {
		a := i % agents
		b := (i + 1) % agents
		swaps = append(swaps, core.SwapEvent{Step: step, A: a, B: b})
	}

	steps := make([]core.TimestepState, horizon)
	assignments := make([]int, agents)
	for a := range assignments {
		assignments[a] = a
	}
	next := 0
	for t := 0; t < horizon; t++ {
		for next < len(swaps) && swaps[next].Step == t {
			sw := swaps[next]
			assignments[sw.A], assignments[sw.B] = assignments[sw.B], assignments[sw.A]
			next++
		}
		st := make(core.TimestepState, agents)
		for a := 0; a < agents; a++ {
			st[a] = core.AgentState{
				Position:   core.Vec2{float64(t) * defaultDt, float64(a) * 1.5},
				Velocity:   core.Vec2{1, 0},
				Assignment: assignments[a],
			}
		}
		steps[t] = st
	}
	return core.NewTrajectory(core.TimeVaryingSwap, defaultDt, steps, swaps)
}
