package sampler

import (
	"context"

	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/curricula-dev/curricula/pkg/curriculum"
	"github.com/curricula-dev/curricula/pkg/errors"
	"github.com/curricula-dev/curricula/pkg/logging"
)

// Trainer is the thin glue loop between the sampler, the policy and the
// scheduler: sample a batch, update the policy, feed the resulting signal
// back. The policy itself stays opaque.
type Trainer struct {
	policy  core.Policy
	sampler *Sampler
	sched   *curriculum.Scheduler

	reporter core.ProgressReporter
}

// NewTrainer creates a trainer. The reporter is optional.
func NewTrainer(policy core.Policy, s *Sampler, sched *curriculum.Scheduler, reporter core.ProgressReporter) *Trainer {
	return &Trainer{
		policy:   policy,
		sampler:  s,
		sched:    sched,
		reporter: reporter,
	}
}

// Run executes the given number of training steps. A step whose batch comes
// back empty is skipped without advancing the schedule; a policy update
// failure aborts the run.
func (t *Trainer) Run(ctx context.Context, steps int) error {
	log := logging.GetLogger()

	for step := 0; step < steps; step++ {
		stepCtx := logging.WithTrainingStep(ctx, step)
		if err := errors.CheckContext(stepCtx, "training"); err != nil {
			return err
		}

		batch, err := t.sampler.Batch(stepCtx)
		if err != nil {
			if errors.Code(err) == errors.NoFeasibleFragment {
				log.Warn(stepCtx, "skipping step %d, no feasible batch: %v", step, err)
				continue
			}
			return err
		}

		sig, err := t.policy.Update(stepCtx, batch)
		if err != nil {
			return errors.Wrap(err, errors.Unknown, "policy update failed")
		}

		if err := t.sched.Advance(stepCtx, sig); err != nil {
			if errors.Code(err) == errors.SignalIgnored {
				log.Warn(stepCtx, "ignoring signal at step %d: %v", step, err)
				continue
			}
			return err
		}

		if t.reporter != nil {
			t.reporter.Report("train", step+1, steps)
		}
	}
	return nil
}
