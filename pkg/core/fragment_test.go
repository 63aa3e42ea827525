package core

import (
	stderrors "errors"
	"testing"

	"github.com/curricula-dev/curricula/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	var structured *errors.Error
	if assert.True(t, stderrors.As(err, &structured)) {
		assert.Equal(t, code, structured.Code())
	}
}

func TestBand(t *testing.T) {
	t.Run("validate", func(t *testing.T) {
		assert.NoError(t, Band{Lo: 0.2, Hi: 0.4}.Validate())
		assert.NoError(t, Band{Lo: 0, Hi: 1}.Validate())
		assert.Error(t, Band{Lo: 0.5, Hi: 0.4}.Validate())
		assert.Error(t, Band{Lo: -0.1, Hi: 0.4}.Validate())
		assert.Error(t, Band{Lo: 0.5, Hi: 1.1}.Validate())
	})

	t.Run("contains is closed", func(t *testing.T) {
		b := Band{Lo: 0.2, Hi: 0.4}
		assert.True(t, b.Contains(0.2))
		assert.True(t, b.Contains(0.4))
		assert.False(t, b.Contains(0.41))
	})

	t.Run("widen clamps", func(t *testing.T) {
		b := Band{Lo: 0.05, Hi: 0.95}.Widen(0.1)
		assert.Equal(t, Band{Lo: 0, Hi: 1}, b)
	})
}

func TestValidateWindow(t *testing.T) {
	traj := lineTrajectory(t, FixedSwap, 4, 100, []SwapEvent{{Step: 50, A: 1, B: 2}})
	agents := traj.AgentIDs()

	t.Run("valid window", func(t *testing.T) {
		assert.NoError(t, ValidateWindow(traj, 10, 60, agents, 10))
	})

	t.Run("out of bounds", func(t *testing.T) {
		assertCode(t, ValidateWindow(traj, -1, 60, agents, 10), errors.InvalidWindow)
		assertCode(t, ValidateWindow(traj, 10, 101, agents, 10), errors.InvalidWindow)
		assertCode(t, ValidateWindow(traj, 60, 60, agents, 10), errors.InvalidWindow)
	})

	t.Run("too short", func(t *testing.T) {
		assertCode(t, ValidateWindow(traj, 10, 15, agents, 10), errors.InvalidWindow)
	})

	t.Run("empty agent subset", func(t *testing.T) {
		assertCode(t, ValidateWindow(traj, 10, 60, nil, 10), errors.InvalidWindow)
	})

	t.Run("unknown agent", func(t *testing.T) {
		assertCode(t, ValidateWindow(traj, 10, 60, []int{0, 99}, 10), errors.InvalidWindow)
	})

	t.Run("swap counterpart missing", func(t *testing.T) {
		// Window covers the swap at t=50 but only selects agent 1.
		assertCode(t, ValidateWindow(traj, 10, 60, []int{0, 1}, 10), errors.InvalidWindow)
	})

	t.Run("swap pair both selected", func(t *testing.T) {
		assert.NoError(t, ValidateWindow(traj, 10, 60, []int{1, 2}, 10))
	})

	t.Run("swap outside window ignored", func(t *testing.T) {
		assert.NoError(t, ValidateWindow(traj, 0, 50, []int{0, 1}, 10), "end exclusive, swap at 50 not covered")
	})

	t.Run("flocking skips swap consistency", func(t *testing.T) {
		flock := lineTrajectory(t, Flocking, 4, 100, nil)
		assert.NoError(t, ValidateWindow(flock, 0, 50, []int{0, 1}, 10))
	})
}

func TestFragmentValidate(t *testing.T) {
	traj := lineTrajectory(t, Flocking, 3, 40, nil)

	frag := Fragment{
		TrajectoryID: traj.ID,
		Start:        5,
		End:          25,
		Agents:       traj.AgentIDs(),
	}
	assert.NoError(t, frag.Validate(traj, 10))
	assert.Equal(t, 20, frag.Len())

	other := lineTrajectory(t, Flocking, 3, 40, nil)
	assertCode(t, frag.Validate(other, 10), errors.InvalidWindow)
}
