package logging

import "context"

type contextKey int

const (
	runIDKey contextKey = iota
	trainingStepKey
)

// WithRunID attaches a training-run identifier to the context so every log
// entry emitted under it can be correlated with the run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID extracts the run identifier from the context.
func GetRunID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok
}

// WithTrainingStep attaches the current training step to the context.
func WithTrainingStep(ctx context.Context, step int) context.Context {
	return context.WithValue(ctx, trainingStepKey, step)
}

// GetTrainingStep extracts the training step from the context.
func GetTrainingStep(ctx context.Context) (int, bool) {
	step, ok := ctx.Value(trainingStepKey).(int)
	return step, ok
}
