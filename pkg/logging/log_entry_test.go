package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()

	// Test RunID
	ctxWithRun := WithRunID(ctx, "run-7")
	retrievedRunID, ok := GetRunID(ctxWithRun)
	assert.True(t, ok)
	assert.Equal(t, "run-7", retrievedRunID)

	// Test TrainingStep
	ctxWithStep := WithTrainingStep(ctx, 250)
	retrievedStep, ok := GetTrainingStep(ctxWithStep)
	assert.True(t, ok)
	assert.Equal(t, 250, retrievedStep)

	// Test invalid context values
	_, ok = GetRunID(ctx)
	assert.False(t, ok)
	_, ok = GetTrainingStep(ctx)
	assert.False(t, ok)
}
