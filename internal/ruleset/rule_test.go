package ruleset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorEvaluate(t *testing.T) {
	tests := []struct {
		op       Operator
		count    uint8
		expected bool
	}{
		{Equal, 3, true},
		{Equal, 2, false},
		{NotEqual, 2, true},
		{Less, 2, true},
		{Less, 3, false},
		{LessOrEqual, 3, true},
		{Greater, 4, true},
		{Greater, 3, false},
		{GreaterOrEqual, 3, true},
		{GreaterOrEqual, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.op.Evaluate(tt.count, 3))
		})
	}
}

func TestOperatorSymbolsRoundTrip(t *testing.T) {
	for _, op := range Operators {
		got, ok := ParseOperator(op.String())
		require.True(t, ok)
		assert.Equal(t, op, got)
	}
	_, ok := ParseOperator("=")
	assert.False(t, ok)
}

func TestXorOfTwoTrueConditionsFails(t *testing.T) {
	both := TransitionRule{
		Conditions: []Condition{
			{Neighbor: 1, Op: GreaterOrEqual, Threshold: 2},
			{Neighbor: 2, Op: Equal, Threshold: 2},
		},
		Combiners:   []Combiner{Xor},
		Probability: 1,
	}
	counts := func(uint8) uint8 { return 2 }
	assert.False(t, both.Satisfied(counts))

	both.Combiners[0] = And
	assert.True(t, both.Satisfied(counts))
}

func TestSatisfiedFoldsLeftToRight(t *testing.T) {
	// (true XOR true) OR true is true; true XOR (true OR true) would be false.
	r := TransitionRule{
		Conditions: []Condition{
			{Neighbor: 0, Op: Equal, Threshold: 0},
			{Neighbor: 0, Op: Equal, Threshold: 0},
			{Neighbor: 0, Op: Equal, Threshold: 0},
		},
		Combiners: []Combiner{Xor, Or},
	}
	assert.True(t, r.Satisfied(func(uint8) uint8 { return 0 }))
}

func TestEmptyConditionsAlwaysSatisfied(t *testing.T) {
	r := TransitionRule{Current: 1, Next: 2, Probability: 1}
	assert.True(t, r.Satisfied(func(uint8) uint8 { return 0 }))
	assert.NoError(t, r.Validate())
}

func TestValidate(t *testing.T) {
	r := TransitionRule{
		Conditions:  []Condition{{}, {}},
		Probability: 0.5,
	}
	assert.ErrorIs(t, r.Validate(), ErrCombinerCount)

	r.Normalize()
	assert.Equal(t, []Combiner{And}, r.Combiners)
	assert.NoError(t, r.Validate())

	r.Probability = 1.5
	assert.ErrorIs(t, r.Validate(), ErrProbability)
	r.Probability = float32(math.NaN())
	assert.ErrorIs(t, r.Validate(), ErrProbability)
}

func TestNormalizeDropsSurplusCombiners(t *testing.T) {
	r := TransitionRule{Conditions: []Condition{{}}, Combiners: []Combiner{Or, Xor}}
	r.Normalize()
	assert.Empty(t, r.Combiners)
}

func TestReferencesAndNeighborIDs(t *testing.T) {
	r := TransitionRule{
		Current: 1,
		Next:    2,
		Conditions: []Condition{
			{Neighbor: 5}, {Neighbor: 3}, {Neighbor: 5},
		},
	}
	assert.True(t, r.References(1))
	assert.True(t, r.References(2))
	assert.True(t, r.References(3))
	assert.False(t, r.References(4))
	assert.Equal(t, []uint8{3, 5}, r.NeighborIDs())
}
