package fragment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curricula-dev/curricula/internal/testutil"
	"github.com/curricula-dev/curricula/pkg/config"
	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/curricula-dev/curricula/pkg/difficulty"
	"github.com/curricula-dev/curricula/pkg/errors"
)

func newFragmenter(t *testing.T) *Fragmenter {
	t.Helper()
	cfg := config.GetDefaultConfig()
	return New(cfg.Fragmenter, difficulty.New(cfg.Difficulty))
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var cerr *errors.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, code, cerr.Code())
}

func TestFragmentInBand(t *testing.T) {
	ctx := context.Background()
	f := newFragmenter(t)

	traj, err := testutil.TurbulentFlock(5, 200, 11)
	require.NoError(t, err)

	band := core.Band{Lo: 0.2, Hi: 0.8}
	frag, err := f.Fragment(ctx, traj, Request{Band: band})
	require.NoError(t, err)

	assert.Equal(t, traj.ID, frag.TrajectoryID)
	assert.GreaterOrEqual(t, frag.Len(), 10)
	assert.True(t, band.Contains(frag.Score.Value),
		"score %v outside [%v, %v]", frag.Score.Value, band.Lo, band.Hi)

	require.NoError(t, frag.Validate(traj, 10))
}

func TestFragmentDeterministic(t *testing.T) {
	ctx := context.Background()
	f := newFragmenter(t)

	traj, err := testutil.SingleSwap(4, 120, 60)
	require.NoError(t, err)

	req := Request{Band: core.Band{Lo: 0.3, Hi: 0.9}}
	first, err := f.Fragment(ctx, traj, req)
	require.NoError(t, err)
	second, err := f.Fragment(ctx, traj, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFragmentTooEasyCorpus(t *testing.T) {
	ctx := context.Background()
	f := newFragmenter(t)

	// Perfectly aligned constant-velocity flock: no window reaches 0.2.
	traj, err := testutil.UniformFlock(5, 100)
	require.NoError(t, err)

	_, err = f.Fragment(ctx, traj, Request{Band: core.Band{Lo: 0.2, Hi: 0.4}})
	assertCode(t, err, errors.NoFeasibleFragment)
}

func TestFragmentCoversSwap(t *testing.T) {
	ctx := context.Background()
	f := newFragmenter(t)

	traj, err := testutil.SingleSwap(4, 100, 50)
	require.NoError(t, err)

	frag, err := f.Fragment(ctx, traj, Request{Band: core.Band{Lo: 0.5, Hi: 1.0}})
	require.NoError(t, err)

	// Only windows containing the exchange are hard enough for this band.
	assert.LessOrEqual(t, frag.Start, 50)
	assert.Greater(t, frag.End, 50)
}

func TestFragmentPreferShort(t *testing.T) {
	ctx := context.Background()
	f := newFragmenter(t)

	traj, err := testutil.SingleSwap(4, 100, 50)
	require.NoError(t, err)

	band := core.Band{Lo: 0.4, Hi: 1.0}
	long, err := f.Fragment(ctx, traj, Request{Band: band})
	require.NoError(t, err)
	short, err := f.Fragment(ctx, traj, Request{Band: band, PreferShort: true})
	require.NoError(t, err)

	assert.LessOrEqual(t, short.Len(), long.Len())
}

func TestFragmentShortTrajectory(t *testing.T) {
	ctx := context.Background()
	f := newFragmenter(t)

	traj, err := testutil.UniformFlock(3, 5)
	require.NoError(t, err)

	_, err = f.Fragment(ctx, traj, Request{Band: core.Band{Lo: 0, Hi: 1}})
	assertCode(t, err, errors.NoFeasibleFragment)
}

func TestFragmentMalformedRequest(t *testing.T) {
	ctx := context.Background()
	f := newFragmenter(t)

	traj, err := testutil.UniformFlock(3, 50)
	require.NoError(t, err)

	t.Run("nil trajectory", func(t *testing.T) {
		_, err := f.Fragment(ctx, nil, Request{Band: core.Band{Lo: 0, Hi: 1}})
		assertCode(t, err, errors.InvalidWindow)
	})

	t.Run("inverted band", func(t *testing.T) {
		_, err := f.Fragment(ctx, traj, Request{Band: core.Band{Lo: 0.8, Hi: 0.2}})
		assertCode(t, err, errors.InvalidWindow)
	})

	t.Run("unknown agent", func(t *testing.T) {
		_, err := f.Fragment(ctx, traj, Request{Band: core.Band{Lo: 0, Hi: 1}, Agents: []int{42}})
		assertCode(t, err, errors.InvalidWindow)
	})
}

func TestFragmentAgentSubsetKeepsSwapPairs(t *testing.T) {
	ctx := context.Background()
	f := newFragmenter(t)

	traj, err := testutil.SingleSwap(4, 100, 50)
	require.NoError(t, err)

	// Subset includes both swap participants: any window is referentially
	// consistent.
	frag, err := f.Fragment(ctx, traj, Request{
		Band:   core.Band{Lo: 0.0, Hi: 1.0},
		Agents: []int{0, 1},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1}, frag.Agents)
	require.NoError(t, frag.Validate(traj, 10))
}

func TestAnchorsIncludeSwapSteps(t *testing.T) {
	f := newFragmenter(t)

	traj, err := testutil.TimeVaryingSwaps(4, 100, []int{23, 67})
	require.NoError(t, err)

	anchors := f.anchors(traj)
	assert.Contains(t, anchors, 23)
	assert.Contains(t, anchors, 67)
	assert.True(t, len(anchors) >= 8)

	// Sorted and in range.
	for i, a := range anchors {
		assert.GreaterOrEqual(t, a, 0)
		assert.Less(t, a, 100)
		if i > 0 {
			assert.Greater(t, a, anchors[i-1])
		}
	}
}
