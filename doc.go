// Package curricula implements curriculum scheduling and dynamic
// demonstration fragmentation for imitation learning of multi-agent
// navigation policies.
//
// A training run works over a frozen corpus of analytically generated
// trajectories in three scenario families: fixed swapping, time-varying
// swapping, and flocking. Instead of feeding whole trajectories to the
// learner, the library extracts fragments (bounded windows over an agent
// subset) whose estimated difficulty matches the policy's current
// competence, and moves that difficulty target as training progresses.
//
// Key components:
//
//   - store: the immutable trajectory corpus, loaded from parquet and
//     frozen before sampling starts.
//
//   - difficulty: a pure, deterministic estimator mapping (trajectory,
//     window, agent subset) to a normalized [0, 1] score from per-scenario
//     kinematic features.
//
//   - fragment: a bounded search for windows whose score falls inside a
//     requested difficulty band.
//
//   - curriculum: the scheduling state machine that warms up on easy data,
//     ramps the band while the policy keeps up, backs off on sustained
//     regression, and saturates at the difficulty ceiling.
//
//   - sampler: the glue drawing scenario types from the scheduler's mix,
//     retrying infeasible trajectories, and assembling training batches in
//     parallel.
//
// The policy itself stays behind the core.Policy interface; the library
// never inspects model internals, only the performance signals the training
// loop reports back.
package curricula
