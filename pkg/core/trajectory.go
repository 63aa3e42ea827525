package core

import (
	"math"
	"sort"

	"github.com/curricula-dev/curricula/pkg/errors"
	"github.com/google/uuid"
)

// Vec2 is a planar position or velocity.
type Vec2 [2]float64

// Sub returns v - w.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{v[0] - w[0], v[1] - w[1]}
}

// Norm returns the Euclidean length of v.
func (v Vec2) Norm() float64 {
	return math.Hypot(v[0], v[1])
}

// Dot returns the inner product of v and w.
func (v Vec2) Dot(w Vec2) float64 {
	return v[0]*w[0] + v[1]*w[1]
}

// AgentState is one agent's kinematic state at a single timestep.
// Assignment is the index of the goal/role currently assigned to the agent,
// or -1 when the scenario carries no assignment relation.
type AgentState struct {
	Position   Vec2
	Velocity   Vec2
	Assignment int
}

// TimestepState maps agent id to state at one tick.
type TimestepState map[int]AgentState

// SwapEvent records one assignment exchange between a pair of agents.
// The exchange takes effect at Step.
type SwapEvent struct {
	Step int
	A, B int
}

// Trajectory is an immutable, analytically generated multi-agent
// demonstration. Fragments reference it by offsets; the step slice is never
// copied or mutated after construction.
type Trajectory struct {
	ID       uuid.UUID
	Scenario ScenarioType
	Dt       float64
	Steps    []TimestepState
	Swaps    []SwapEvent

	agentIDs []int
}

// NewTrajectory validates and wraps generator output into a Trajectory.
// Every timestep must cover the same agent set, and swap events must fall
// inside the horizon and reference known agents.
func NewTrajectory(scenario ScenarioType, dt float64, steps []TimestepState, swaps []SwapEvent) (*Trajectory, error) {
	if !scenario.IsValid() {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unknown scenario type"),
			errors.Fields{"scenario": string(scenario)},
		)
	}
	if dt <= 0 {
		return nil, errors.New(errors.InvalidInput, "timestep size must be positive")
	}
	if len(steps) == 0 {
		return nil, errors.New(errors.InvalidInput, "trajectory has no timesteps")
	}

	ids := make([]int, 0, len(steps[0]))
	for id := range steps[0] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	if len(ids) == 0 {
		return nil, errors.New(errors.InvalidInput, "trajectory has no agents")
	}

	for t, st := range steps {
		if len(st) != len(ids) {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "agent set changes across timesteps"),
				errors.Fields{"step": t},
			)
		}
		for _, id := range ids {
			if _, ok := st[id]; !ok {
				return nil, errors.WithFields(
					errors.New(errors.InvalidInput, "agent missing from timestep"),
					errors.Fields{"step": t, "agent": id},
				)
			}
		}
	}

	agentSet := make(map[int]bool, len(ids))
	for _, id := range ids {
		agentSet[id] = true
	}
	for _, sw := range swaps {
		if sw.Step < 0 || sw.Step >= len(steps) {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "swap event outside horizon"),
				errors.Fields{"step": sw.Step, "horizon": len(steps)},
			)
		}
		if !agentSet[sw.A] || !agentSet[sw.B] || sw.A == sw.B {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "swap event references invalid agent pair"),
				errors.Fields{"a": sw.A, "b": sw.B},
			)
		}
	}

	return &Trajectory{
		ID:       uuid.New(),
		Scenario: scenario,
		Dt:       dt,
		Steps:    steps,
		Swaps:    swaps,
		agentIDs: ids,
	}, nil
}

// Horizon returns the total number of timesteps T.
func (t *Trajectory) Horizon() int {
	return len(t.Steps)
}

// AgentIDs returns the sorted agent ids present at every timestep.
func (t *Trajectory) AgentIDs() []int {
	out := make([]int, len(t.agentIDs))
	copy(out, t.agentIDs)
	return out
}

// NumAgents returns the agent count.
func (t *Trajectory) NumAgents() int {
	return len(t.agentIDs)
}

// SwapsIn returns the swap events whose execution step falls in [start, end).
func (t *Trajectory) SwapsIn(start, end int) []SwapEvent {
	var out []SwapEvent
	for _, sw := range t.Swaps {
		if sw.Step >= start && sw.Step < end {
			out = append(out, sw)
		}
	}
	return out
}

// HasAgent reports whether id is part of the trajectory's agent set.
func (t *Trajectory) HasAgent(id int) bool {
	i := sort.SearchInts(t.agentIDs, id)
	return i < len(t.agentIDs) && t.agentIDs[i] == id
}
