// Package store holds the immutable corpus of ground-truth demonstrations
// for a training run. Trajectories are loaded once at run start, the store
// is frozen, and every sampler worker reads it lock-free from then on.
package store

import (
	"math/rand"
	"sync"

	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/curricula-dev/curricula/pkg/errors"
	"github.com/google/uuid"
)

// Store indexes trajectories by id and scenario type.
type Store struct {
	mu         sync.RWMutex
	frozen     bool
	byID       map[uuid.UUID]*core.Trajectory
	byScenario map[core.ScenarioType][]uuid.UUID
}

// New creates an empty store.
func New() *Store {
	return &Store{
		byID:       make(map[uuid.UUID]*core.Trajectory),
		byScenario: make(map[core.ScenarioType][]uuid.UUID),
	}
}

// Add registers a trajectory. Fails once the store is frozen.
func (s *Store) Add(traj *core.Trajectory) error {
	if traj == nil {
		return errors.New(errors.InvalidInput, "nil trajectory")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return errors.New(errors.InvalidInput, "store is frozen")
	}
	if _, exists := s.byID[traj.ID]; exists {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "duplicate trajectory id"),
			errors.Fields{"id": traj.ID.String()},
		)
	}

	s.byID[traj.ID] = traj
	s.byScenario[traj.Scenario] = append(s.byScenario[traj.Scenario], traj.ID)
	return nil
}

// Freeze marks the end of corpus loading. Reads after Freeze take no lock.
func (s *Store) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

// Frozen reports whether loading has finished.
func (s *Store) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// Get returns the trajectory with the given id.
func (s *Store) Get(id uuid.UUID) (*core.Trajectory, error) {
	if !s.Frozen() {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}

	traj, ok := s.byID[id]
	if !ok {
		return nil, errors.WithFields(
			errors.New(errors.ResourceNotFound, "trajectory not found"),
			errors.Fields{"id": id.String()},
		)
	}
	return traj, nil
}

// Random returns a uniformly drawn trajectory of the given scenario.
func (s *Store) Random(rng *rand.Rand, scenario core.ScenarioType) (*core.Trajectory, error) {
	if !s.Frozen() {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}

	ids := s.byScenario[scenario]
	if len(ids) == 0 {
		return nil, errors.WithFields(
			errors.New(errors.ResourceNotFound, "no trajectories for scenario"),
			errors.Fields{"scenario": string(scenario)},
		)
	}
	return s.byID[ids[rng.Intn(len(ids))]], nil
}

// Len returns the number of trajectories in the store.
func (s *Store) Len() int {
	if !s.Frozen() {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return len(s.byID)
}

// CountByScenario returns the per-scenario trajectory counts.
func (s *Store) CountByScenario() map[core.ScenarioType]int {
	if !s.Frozen() {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}

	out := make(map[core.ScenarioType]int, len(s.byScenario))
	for scenario, ids := range s.byScenario {
		out[scenario] = len(ids)
	}
	return out
}
