// Package fragment searches trajectories for training windows whose
// difficulty falls inside a requested band. The search is bounded: each call
// spends at most a configured number of difficulty probes, and a trajectory
// with no in-band window is reported as infeasible rather than searched
// exhaustively.
package fragment

import (
	"context"
	"sort"

	"github.com/curricula-dev/curricula/pkg/config"
	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/curricula-dev/curricula/pkg/difficulty"
	"github.com/curricula-dev/curricula/pkg/errors"
)

// Fragmenter extracts in-band fragments from trajectories.
type Fragmenter struct {
	cfg config.FragmenterConfig
	est *difficulty.Estimator
}

// Request describes one fragment extraction.
type Request struct {
	// Band the fragment's difficulty must fall inside.
	Band core.Band

	// Agents restricts the fragment to a subset of the trajectory's agents.
	// Nil selects all of them.
	Agents []int

	// PreferShort makes ties resolve toward the shortest in-band window
	// instead of the longest.
	PreferShort bool
}

// New creates a fragmenter using the given search bounds and estimator.
func New(cfg config.FragmenterConfig, est *difficulty.Estimator) *Fragmenter {
	return &Fragmenter{cfg: cfg, est: est}
}

// Fragment searches traj for a window whose difficulty lies inside the
// requested band. It fails with NoFeasibleFragment when the probe budget is
// exhausted without finding one, and with InvalidWindow when the request
// itself is malformed.
func (f *Fragmenter) Fragment(ctx context.Context, traj *core.Trajectory, req Request) (core.Fragment, error) {
	if traj == nil {
		return core.Fragment{}, errors.New(errors.InvalidWindow, "nil trajectory")
	}
	if err := req.Band.Validate(); err != nil {
		return core.Fragment{}, errors.Wrap(err, errors.InvalidWindow, "invalid difficulty band")
	}

	agents := req.Agents
	if len(agents) == 0 {
		agents = traj.AgentIDs()
	}
	for _, id := range agents {
		if !traj.HasAgent(id) {
			return core.Fragment{}, errors.WithFields(
				errors.New(errors.InvalidWindow, "agent not in trajectory"),
				errors.Fields{"agent": id},
			)
		}
	}

	minLen := f.cfg.MinFragmentLength
	if traj.Horizon() < minLen {
		return core.Fragment{}, errors.WithFields(
			errors.New(errors.NoFeasibleFragment, "trajectory shorter than minimum fragment length"),
			errors.Fields{"horizon": traj.Horizon(), "min_length": minLen},
		)
	}

	search := &bandSearch{
		fragmenter: f,
		traj:       traj,
		agents:     agents,
		band:       req.Band,
		minLen:     minLen,
		probes:     f.cfg.MaxProbes,
	}

	for _, anchor := range f.anchors(traj) {
		if search.probes <= 0 {
			break
		}
		if err := search.fromAnchor(ctx, anchor, req.PreferShort); err != nil {
			return core.Fragment{}, err
		}
		if search.found && req.PreferShort && search.best.Len() == minLen {
			break
		}
	}

	if !search.found {
		return core.Fragment{}, errors.WithFields(
			errors.New(errors.NoFeasibleFragment, "no window in the requested difficulty band"),
			errors.Fields{
				"trajectory": traj.ID.String(),
				"band_lo":    req.Band.Lo,
				"band_hi":    req.Band.Hi,
				"probes":     f.cfg.MaxProbes - search.probes,
			},
		)
	}
	return search.best, nil
}

// anchors returns the deduplicated, sorted timesteps the window search starts
// from: an even spread across the horizon plus every swap step, since
// difficulty concentrates around assignment exchanges.
func (f *Fragmenter) anchors(traj *core.Trajectory) []int {
	T := traj.Horizon()
	seen := make(map[int]bool)
	var out []int

	add := func(step int) {
		if step < 0 {
			step = 0
		}
		if step >= T {
			step = T - 1
		}
		if !seen[step] {
			seen[step] = true
			out = append(out, step)
		}
	}

	for _, sw := range traj.Swaps {
		add(sw.Step)
	}
	count := f.cfg.AnchorCount
	for i := 0; i < count; i++ {
		add(T * (2*i + 1) / (2 * count))
	}

	sort.Ints(out)
	return out
}

// bandSearch tracks the probe budget and the best in-band window found so
// far across anchors.
type bandSearch struct {
	fragmenter *Fragmenter
	traj       *core.Trajectory
	agents     []int
	band       core.Band
	minLen     int

	probes int
	found  bool
	best   core.Fragment
}

// fromAnchor grows a window outward from one anchor. Each scored window costs
// one probe. Windows that score under the band grow, windows that score over
// it shrink back toward the minimum length, and windows whose agent subset
// splits a swap pair are widened without scoring.
func (s *bandSearch) fromAnchor(ctx context.Context, anchor int, preferShort bool) error {
	T := s.traj.Horizon()
	grow := s.minLen / 2
	if grow < 1 {
		grow = 1
	}

	start := anchor - s.minLen/2
	if start < 0 {
		start = 0
	}
	if start > T-s.minLen {
		start = T - s.minLen
	}
	end := start + s.minLen

	for s.probes > 0 {
		if err := core.ValidateWindow(s.traj, start, end, s.agents, s.minLen); err != nil {
			// The only reachable violation here is a split swap pair;
			// widening pulls the counterpart's exchange inside the window.
			var widened bool
			start, end, widened = widen(start, end, grow, T)
			if !widened {
				return nil
			}
			continue
		}

		s.probes--
		score, err := s.fragmenter.est.Score(ctx, s.traj, start, end, s.agents)
		if err != nil {
			return err
		}

		switch {
		case s.band.Contains(score.Value):
			s.record(core.Fragment{
				TrajectoryID: s.traj.ID,
				Start:        start,
				End:          end,
				Agents:       s.agents,
				Score:        score,
			}, preferShort)
			if preferShort {
				return nil
			}
			var widened bool
			start, end, widened = widen(start, end, grow, T)
			if !widened {
				return nil
			}

		case score.Value < s.band.Lo:
			var widened bool
			start, end, widened = widen(start, end, grow, T)
			if !widened {
				return nil
			}

		default: // over the band
			if end-start <= s.minLen {
				return nil
			}
			end -= grow
			if end-start < s.minLen {
				end = start + s.minLen
			}
		}
	}
	return nil
}

// record keeps the better of the current best and the candidate: longest
// wins by default, shortest when preferShort is set, earlier start on ties.
func (s *bandSearch) record(candidate core.Fragment, preferShort bool) {
	if !s.found {
		s.found = true
		s.best = candidate
		return
	}
	better := candidate.Len() > s.best.Len()
	if preferShort {
		better = candidate.Len() < s.best.Len()
	}
	if candidate.Len() == s.best.Len() && candidate.Start < s.best.Start {
		better = true
	}
	if better {
		s.best = candidate
	}
}

// widen extends the window by step, preferring the end and falling back to
// the start at the horizon edge. Reports false when the window already spans
// the whole trajectory.
func widen(start, end, step, T int) (int, int, bool) {
	if end < T {
		end += step
		if end > T {
			end = T
		}
		return start, end, true
	}
	if start > 0 {
		start -= step
		if start < 0 {
			start = 0
		}
		return start, end, true
	}
	return start, end, false
}
