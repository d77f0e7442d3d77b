package batch

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ca-modeler/internal/persistence"
	"ca-modeler/internal/session"
	"ca-modeler/internal/stopcond"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	cfg := session.DefaultConfig()
	cfg.Width, cfg.Height = 20, 20
	cfg.Seed = 9
	s, err := session.New(cfg)
	require.NoError(t, err)
	return s
}

func TestRunSteps(t *testing.T) {
	s := newSession(t)
	var seen []int
	res, err := Run(context.Background(), s, Options{Steps: 5, OnStep: func(g int) { seen = append(seen, g) }})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Generations)
	assert.Equal(t, StoppedSteps, res.StoppedBy)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
	assert.Equal(t, 400, res.Population["Dead"]+res.Population["Alive"])
	assert.Empty(t, res.RunID)
}

func TestRunRejectsZeroSteps(t *testing.T) {
	_, err := Run(context.Background(), newSession(t), Options{})
	assert.ErrorIs(t, err, ErrNoSteps)
}

func TestRunUntil(t *testing.T) {
	t.Run("generation bound", func(t *testing.T) {
		cond, err := stopcond.Compile("generation >= 3")
		require.NoError(t, err)
		res, err := Run(context.Background(), newSession(t), Options{Steps: 100, Until: cond})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Generations)
		assert.Equal(t, StoppedCondition, res.StoppedBy)
	})
	t.Run("already met", func(t *testing.T) {
		cond, err := stopcond.Compile(`population["Alive"] >= 0`)
		require.NoError(t, err)
		res, err := Run(context.Background(), newSession(t), Options{Steps: 10, Until: cond})
		require.NoError(t, err)
		assert.Zero(t, res.Generations)
		assert.Equal(t, StoppedCondition, res.StoppedBy)
	})
	t.Run("evaluation error", func(t *testing.T) {
		cond, err := stopcond.Compile(`population["Ghost"] > 0`)
		require.NoError(t, err)
		_, err = Run(context.Background(), newSession(t), Options{Steps: 10, Until: cond})
		require.Error(t, err)
		assert.Equal(t, 1, strings.Count(err.Error(), "evaluate"), err.Error())
	})
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Run(ctx, newSession(t), Options{Steps: 10})
	require.NoError(t, err)
	assert.Zero(t, res.Generations)
	assert.Equal(t, StoppedCancelled, res.StoppedBy)
}

func TestRunRecordsHistory(t *testing.T) {
	h, err := persistence.OpenHistory(":memory:")
	require.NoError(t, err)
	defer h.Close()

	ctx := context.Background()
	res, err := Run(ctx, newSession(t), Options{Steps: 5, History: h, RecordEvery: 2, Seed: 9})
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)

	rows, err := h.Census(ctx, res.RunID)
	require.NoError(t, err)
	gens := map[int]bool{}
	for _, r := range rows {
		gens[r.Generation] = true
	}
	assert.Equal(t, map[int]bool{0: true, 2: true, 4: true, 5: true}, gens)
	assert.Len(t, rows, 8)

	runs, err := h.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 5, runs[0].Generations)
	assert.Equal(t, "life", runs[0].Model)
	assert.Equal(t, int64(9), runs[0].Seed)
	assert.False(t, runs[0].FinishedAt.IsZero())
}
