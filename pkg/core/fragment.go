package core

import (
	"github.com/curricula-dev/curricula/pkg/errors"
	"github.com/google/uuid"
)

// Band is a closed difficulty interval [Lo, Hi] within [0, 1]. Fragments
// sampled for training must score inside the scheduler's current band.
type Band struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// Validate checks 0 <= Lo <= Hi <= 1.
func (b Band) Validate() error {
	if b.Lo < 0 || b.Hi > 1 || b.Lo > b.Hi {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "difficulty band must satisfy 0 <= lo <= hi <= 1"),
			errors.Fields{"lo": b.Lo, "hi": b.Hi},
		)
	}
	return nil
}

// Contains reports whether v falls inside the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Lo && v <= b.Hi
}

// Width returns Hi - Lo.
func (b Band) Width() float64 {
	return b.Hi - b.Lo
}

// Widen grows the band symmetrically by delta on each side, clamped to [0, 1].
func (b Band) Widen(delta float64) Band {
	lo := b.Lo - delta
	hi := b.Hi + delta
	if lo < 0 {
		lo = 0
	}
	if hi > 1 {
		hi = 1
	}
	return Band{Lo: lo, Hi: hi}
}

// DifficultyScore is a normalized difficulty in [0, 1] plus the named
// sub-scores it was combined from. Purely derived; recomputable on demand.
type DifficultyScore struct {
	Value float64
	Sub   map[string]float64
}

// Fragment is a view over a trajectory: offsets and an agent subset, never a
// copy of the state data. Fragments are ephemeral, created per sampling
// request.
type Fragment struct {
	TrajectoryID uuid.UUID
	Start        int // inclusive
	End          int // exclusive
	Agents       []int
	Score        DifficultyScore
}

// Len returns the number of timesteps covered by the fragment.
func (f Fragment) Len() int {
	return f.End - f.Start
}

// ValidateWindow checks the window invariants of a candidate fragment request
// against a trajectory, before any scoring happens:
//
//	0 <= start < end <= T, end-start >= minLen,
//	agent subset non-empty and contained in the trajectory's agent set,
//	and for swap scenarios, referential consistency: any swap executing
//	inside the window that touches a selected agent must have its
//	counterpart selected too.
//
// Violations surface as InvalidWindow, which callers treat as a contract
// violation rather than a data condition.
func ValidateWindow(traj *Trajectory, start, end int, agents []int, minLen int) error {
	if traj == nil {
		return errors.New(errors.InvalidWindow, "nil trajectory")
	}
	T := traj.Horizon()
	if start < 0 || end > T || start >= end {
		return errors.WithFields(
			errors.New(errors.InvalidWindow, "window out of bounds"),
			errors.Fields{"start": start, "end": end, "horizon": T},
		)
	}
	if end-start < minLen {
		return errors.WithFields(
			errors.New(errors.InvalidWindow, "window shorter than minimum fragment length"),
			errors.Fields{"length": end - start, "min_length": minLen},
		)
	}
	if len(agents) == 0 {
		return errors.New(errors.InvalidWindow, "agent subset is empty")
	}

	selected := make(map[int]bool, len(agents))
	for _, id := range agents {
		if !traj.HasAgent(id) {
			return errors.WithFields(
				errors.New(errors.InvalidWindow, "agent not in trajectory"),
				errors.Fields{"agent": id},
			)
		}
		selected[id] = true
	}

	if traj.Scenario == FixedSwap || traj.Scenario == TimeVaryingSwap {
		for _, sw := range traj.SwapsIn(start, end) {
			if selected[sw.A] != selected[sw.B] {
				return errors.WithFields(
					errors.New(errors.InvalidWindow, "agent referenced mid-swap without its counterpart"),
					errors.Fields{"a": sw.A, "b": sw.B, "swap_step": sw.Step},
				)
			}
		}
	}

	return nil
}

// Validate checks the fragment against its trajectory. The fragment must
// reference traj by id.
func (f Fragment) Validate(traj *Trajectory, minLen int) error {
	if traj == nil || traj.ID != f.TrajectoryID {
		return errors.New(errors.InvalidWindow, "fragment does not reference the given trajectory")
	}
	return ValidateWindow(traj, f.Start, f.End, f.Agents, minLen)
}
