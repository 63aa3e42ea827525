package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineTrajectory(t *testing.T, scenario ScenarioType, agents, horizon int, swaps []SwapEvent) *Trajectory {
	t.Helper()
	steps := make([]TimestepState, horizon)
	for ts := 0; ts < horizon; ts++ {
		st := make(TimestepState, agents)
		for a := 0; a < agents; a++ {
			st[a] = AgentState{
				Position:   Vec2{float64(ts), float64(a)},
				Velocity:   Vec2{1, 0},
				Assignment: a,
			}
		}
		steps[ts] = st
	}
	traj, err := NewTrajectory(scenario, 0.04, steps, swaps)
	require.NoError(t, err)
	return traj
}

func TestNewTrajectoryValidation(t *testing.T) {
	t.Run("valid trajectory", func(t *testing.T) {
		traj := lineTrajectory(t, Flocking, 4, 20, nil)
		assert.Equal(t, 20, traj.Horizon())
		assert.Equal(t, 4, traj.NumAgents())
		assert.Equal(t, []int{0, 1, 2, 3}, traj.AgentIDs())
	})

	t.Run("rejects unknown scenario", func(t *testing.T) {
		_, err := NewTrajectory(ScenarioType("orbit"), 0.04, []TimestepState{{0: {}}}, nil)
		assert.Error(t, err)
	})

	t.Run("rejects empty steps", func(t *testing.T) {
		_, err := NewTrajectory(Flocking, 0.04, nil, nil)
		assert.Error(t, err)
	})

	t.Run("rejects changing agent set", func(t *testing.T) {
		steps := []TimestepState{
			{0: {}, 1: {}},
			{0: {}},
		}
		_, err := NewTrajectory(Flocking, 0.04, steps, nil)
		assert.Error(t, err)
	})

	t.Run("rejects swap outside horizon", func(t *testing.T) {
		steps := []TimestepState{{0: {}, 1: {}}}
		_, err := NewTrajectory(FixedSwap, 0.04, steps, []SwapEvent{{Step: 5, A: 0, B: 1}})
		assert.Error(t, err)
	})

	t.Run("rejects self swap", func(t *testing.T) {
		steps := []TimestepState{{0: {}, 1: {}}}
		_, err := NewTrajectory(FixedSwap, 0.04, steps, []SwapEvent{{Step: 0, A: 1, B: 1}})
		assert.Error(t, err)
	})
}

func TestSwapsIn(t *testing.T) {
	swaps := []SwapEvent{
		{Step: 10, A: 0, B: 1},
		{Step: 50, A: 2, B: 3},
		{Step: 80, A: 0, B: 2},
	}
	traj := lineTrajectory(t, FixedSwap, 4, 100, swaps)

	assert.Len(t, traj.SwapsIn(0, 100), 3)
	assert.Len(t, traj.SwapsIn(0, 50), 1, "end is exclusive")
	assert.Len(t, traj.SwapsIn(50, 81), 2)
	assert.Empty(t, traj.SwapsIn(11, 50))
}

func TestVec2(t *testing.T) {
	v := Vec2{3, 4}
	assert.InDelta(t, 5.0, v.Norm(), 1e-12)
	assert.Equal(t, Vec2{2, 2}, v.Sub(Vec2{1, 2}))
	assert.InDelta(t, 11.0, v.Dot(Vec2{1, 2}), 1e-12)
}
