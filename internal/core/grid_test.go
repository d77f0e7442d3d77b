package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ca-modeler/pkg/rng"
)

func filled(w, h int, nb Neighborhood, id uint8) *Grid {
	g := NewGrid(w, h, nb)
	g.Fill(id)
	return g
}

func TestNewGridClampsDimensions(t *testing.T) {
	g := NewGrid(0, -3, Moore)
	assert.Equal(t, 1, g.W)
	assert.Equal(t, 1, g.H)
	assert.Len(t, g.Cells(), 1)

	g = NewGrid(MaxDimension+1, 100000, Moore)
	assert.Equal(t, MaxDimension, g.W)
	assert.Equal(t, MaxDimension, g.H)
}

func TestCountNeighborsClipsAtEdges(t *testing.T) {
	tests := []struct {
		nb           Neighborhood
		centre, edge uint8
		corner       uint8
	}{
		{VonNeumann, 4, 3, 2},
		{Moore, 8, 5, 3},
		{ExtendedMoore, 24, 14, 8},
	}
	for _, tc := range tests {
		t.Run(tc.nb.String(), func(t *testing.T) {
			g := filled(5, 5, tc.nb, 1)
			assert.Equal(t, tc.centre, g.CountNeighbors(2, 2, 1))
			assert.Equal(t, tc.edge, g.CountNeighbors(0, 2, 1))
			assert.Equal(t, tc.corner, g.CountNeighbors(0, 0, 1))
			assert.Zero(t, g.CountNeighbors(2, 2, 0))
		})
	}
}

func TestCountNeighborsExcludesCentre(t *testing.T) {
	g := NewGrid(3, 3, Moore)
	g.Set(1, 1, 1)
	assert.Zero(t, g.CountNeighbors(1, 1, 1))
	assert.Equal(t, uint8(1), g.CountNeighbors(0, 0, 1))
}

func TestRandomizeRespectsWeights(t *testing.T) {
	g := NewGrid(100, 100, Moore)
	g.Randomize([]Weighted{{ID: 0, Weight: 3}, {ID: 1, Weight: 1}, {ID: 2, Weight: 0}}, rng.NewRNG(42))

	census := g.Census()
	assert.Zero(t, census[2], "zero-weight state must never be sampled")
	frac := float64(census[1]) / float64(len(g.Cells()))
	assert.InDelta(t, 0.25, frac, 0.03)
}

func TestRandomizeAllZeroFallsBackToStateZero(t *testing.T) {
	g := filled(4, 4, Moore, 7)
	g.Randomize([]Weighted{{ID: 3, Weight: 0}}, rng.NewRNG(1))
	assert.Equal(t, map[uint8]int{0: 16}, g.Census())
}

func TestAtSetAndReplace(t *testing.T) {
	g := NewGrid(3, 2, VonNeumann)
	require.True(t, g.Set(1, 2, 5))
	assert.False(t, g.Set(2, 0, 5))

	v, ok := g.At(1, 2)
	require.True(t, ok)
	assert.Equal(t, uint8(5), v)
	_, ok = g.At(-1, 0)
	assert.False(t, ok)

	assert.Equal(t, 1, g.Replace(5, 1))
	v, _ = g.At(1, 2)
	assert.Equal(t, uint8(1), v)
}

func TestCloneAndRows(t *testing.T) {
	g := NewGrid(2, 2, Moore)
	g.Set(0, 1, 1)
	c := g.Clone()
	c.Set(0, 1, 2)

	assert.Equal(t, [][]uint8{{0, 1}, {0, 0}}, g.Rows())
	assert.Equal(t, [][]uint8{{0, 2}, {0, 0}}, c.Rows())
}

func TestSwap(t *testing.T) {
	g := NewGrid(2, 1, Moore)
	old := g.Swap([]uint8{3, 4})
	assert.Equal(t, []uint8{0, 0}, old)
	assert.Equal(t, []uint8{3, 4}, g.Cells())
	assert.Panics(t, func() { g.Swap([]uint8{1}) })
}
