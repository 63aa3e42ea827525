// Package sampler turns the scheduler's requests into batches of training
// fragments. A sampling step draws a scenario from the active mix, picks a
// trajectory, and asks the fragmenter for an in-band window; infeasible draws
// are retried a bounded number of times, optionally widening the band, and a
// step that exhausts its retries is reported as a skip rather than an error
// the run dies on.
package sampler

import (
	"context"
	"math/rand"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/curricula-dev/curricula/pkg/config"
	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/curricula-dev/curricula/pkg/curriculum"
	"github.com/curricula-dev/curricula/pkg/errors"
	"github.com/curricula-dev/curricula/pkg/fragment"
	"github.com/curricula-dev/curricula/pkg/logging"
	"github.com/curricula-dev/curricula/pkg/store"
)

// Sampler draws in-band fragments from a frozen trajectory store.
type Sampler struct {
	cfg   config.SamplerConfig
	store *store.Store
	frag  *fragment.Fragmenter
	sched *curriculum.Scheduler

	mu  sync.Mutex
	rng *rand.Rand

	skips int64
}

// New creates a sampler. The store must be frozen before sampling starts.
func New(cfg config.SamplerConfig, st *store.Store, frag *fragment.Fragmenter, sched *curriculum.Scheduler, seed int64) *Sampler {
	return &Sampler{
		cfg:   cfg,
		store: st,
		frag:  frag,
		sched: sched,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Next draws a single fragment for the scheduler's current request.
func (s *Sampler) Next(ctx context.Context) (core.Fragment, error) {
	mix, band := s.sched.NextRequest()

	s.mu.Lock()
	rng := rand.New(rand.NewSource(s.rng.Int63()))
	s.mu.Unlock()

	return s.draw(ctx, rng, mix, band)
}

// draw runs the bounded retry loop against a fixed mix and band.
func (s *Sampler) draw(ctx context.Context, rng *rand.Rand, mix core.ScenarioMix, band core.Band) (core.Fragment, error) {
	current := band
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		if err := errors.CheckContext(ctx, "fragment sampling"); err != nil {
			return core.Fragment{}, err
		}
		if s.cfg.WidenAfter > 0 && attempt >= s.cfg.WidenAfter {
			current = current.Widen(s.cfg.WidenDelta)
		}

		scenario := mix.Sample(rng)
		traj, err := s.store.Random(rng, scenario)
		if err != nil {
			// Scenario absent from the corpus; the mix may reference it
			// before its trajectories are generated.
			continue
		}

		frag, err := s.frag.Fragment(ctx, traj, fragment.Request{Band: current})
		if err == nil {
			s.sched.ObserveScore(frag.Score.Value)
			return frag, nil
		}
		if errors.Code(err) == errors.NoFeasibleFragment {
			continue
		}
		return core.Fragment{}, err
	}

	return core.Fragment{}, errors.WithFields(
		errors.New(errors.NoFeasibleFragment, "retries exhausted without an in-band fragment"),
		errors.Fields{
			"retries": s.cfg.MaxRetries,
			"band_lo": band.Lo,
			"band_hi": band.Hi,
		},
	)
}

// Batch samples a full training batch in parallel. The scheduler is consulted
// once, so every fragment in the batch targets the same mix and band even if
// an advance lands mid-batch. Individual draws that exhaust their retries are
// dropped; Batch fails with NoFeasibleFragment only when the whole batch
// comes back empty.
func (s *Sampler) Batch(ctx context.Context) ([]core.Fragment, error) {
	mix, band := s.sched.NextRequest()

	// Pre-seed one rng per draw so results do not depend on worker
	// interleaving.
	seeds := make([]int64, s.cfg.BatchSize)
	s.mu.Lock()
	for i := range seeds {
		seeds[i] = s.rng.Int63()
	}
	s.mu.Unlock()

	fragments := make([]core.Fragment, s.cfg.BatchSize)
	ok := make([]bool, s.cfg.BatchSize)

	var firstErr error
	var errMu sync.Mutex

	p := pool.New().WithMaxGoroutines(s.cfg.Workers)
	for i := 0; i < s.cfg.BatchSize; i++ {
		i := i
		p.Go(func() {
			frag, err := s.draw(ctx, rand.New(rand.NewSource(seeds[i])), mix, band)
			if err == nil {
				fragments[i] = frag
				ok[i] = true
				return
			}
			if errors.Code(err) == errors.NoFeasibleFragment {
				return
			}
			errMu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			errMu.Unlock()
		})
	}
	p.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	batch := make([]core.Fragment, 0, s.cfg.BatchSize)
	for i, frag := range fragments {
		if ok[i] {
			batch = append(batch, frag)
		}
	}
	if dropped := s.cfg.BatchSize - len(batch); dropped > 0 {
		s.mu.Lock()
		s.skips += int64(dropped)
		s.mu.Unlock()
		logging.GetLogger().Debug(ctx, "dropped %d of %d draws in batch", dropped, s.cfg.BatchSize)
	}

	if len(batch) == 0 {
		return nil, errors.WithFields(
			errors.New(errors.NoFeasibleFragment, "no draw in the batch produced an in-band fragment"),
			errors.Fields{"batch_size": s.cfg.BatchSize, "band_lo": band.Lo, "band_hi": band.Hi},
		)
	}
	return batch, nil
}

// Skips returns the number of dropped draws so far.
func (s *Sampler) Skips() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skips
}
