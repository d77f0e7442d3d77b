package sweep

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ca-modeler/internal/core"
	"ca-modeler/internal/ruleset"
	"ca-modeler/internal/session"
)

func lifePlan() Plan {
	return Plan{
		Preset:        "life",
		Rule:          2,
		Probabilities: []float32{1, 0},
		Seeds:         3,
		Steps:         4,
		Width:         12,
		Height:        12,
		Neighborhood:  core.Moore,
		Workers:       2,
	}
}

func TestRunAveragesPerProbability(t *testing.T) {
	plan := lifePlan()
	calls := 0
	res, err := Run(context.Background(), plan, func() { calls++ })
	require.NoError(t, err)
	assert.Equal(t, plan.Jobs(), calls)

	require.Len(t, res, 2)
	assert.Equal(t, float32(0), res[0].Probability)
	assert.Equal(t, float32(1), res[1].Probability)
	for _, r := range res {
		assert.Equal(t, 3, r.Runs)
		assert.InDelta(t, 144, r.Mean["Dead"]+r.Mean["Alive"], 1e-9)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	a, err := Run(context.Background(), lifePlan(), nil)
	require.NoError(t, err)
	plan := lifePlan()
	plan.Workers = 1
	b, err := Run(context.Background(), plan, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunValidatesPlan(t *testing.T) {
	plan := lifePlan()
	plan.Preset = "nope"
	_, err := Run(context.Background(), plan, nil)
	assert.ErrorIs(t, err, session.ErrUnknownPreset)

	plan = lifePlan()
	plan.Rule = 9
	_, err = Run(context.Background(), plan, nil)
	assert.Error(t, err)

	plan = lifePlan()
	plan.Seeds = 0
	_, err = Run(context.Background(), plan, nil)
	assert.ErrorIs(t, err, ErrEmptyPlan)
}

func TestRunRejectsOutOfRangeProbability(t *testing.T) {
	for _, p := range []float32{1.5, -0.1, float32(math.NaN())} {
		plan := lifePlan()
		plan.Preset = "forestfire"
		plan.Rule = 0
		plan.Probabilities = []float32{0.5, p}
		calls := 0
		res, err := Run(context.Background(), plan, func() { calls++ })
		assert.ErrorIs(t, err, ruleset.ErrProbability, "p=%v", p)
		assert.Nil(t, res)
		assert.Zero(t, calls)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, lifePlan(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
