package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ca-modeler/internal/ruleset"
)

func forest() *ruleset.Registry {
	return ruleset.NewRegistry(
		ruleset.State{ID: 0, Name: "Empty", Weight: 10},
		ruleset.State{ID: 1, Name: "Tree", Weight: 7},
		ruleset.State{ID: 2, Name: "Burning", Weight: 3},
	)
}

func TestParseRuleForestFire(t *testing.T) {
	rule, err := ParseRule("IF current is 'Tree' AND count(Burning) >= 1 THEN next is 'Burning' WITH PROB 0.5", forest())
	require.NoError(t, err)
	assert.Equal(t, ruleset.TransitionRule{
		Current:     1,
		Conditions:  []ruleset.Condition{{Neighbor: 2, Op: ruleset.GreaterOrEqual, Threshold: 1}},
		Next:        2,
		Probability: 0.5,
	}, rule)
}

func TestParseRuleNoConditions(t *testing.T) {
	rule, err := ParseRule("  IF current is 'Burning' AND (no conditions) THEN next is 'Empty' WITH PROB 0.8  ", forest())
	require.NoError(t, err)
	assert.Empty(t, rule.Conditions)
	assert.Equal(t, uint8(2), rule.Current)
	assert.Equal(t, uint8(0), rule.Next)
	assert.Equal(t, float32(0.8), rule.Probability)
}

func TestParseRuleCombiners(t *testing.T) {
	line := "IF current is 'Empty' AND count(Tree) > 2 OR count(Burning) != 0 XOR count(Empty) <= 8 THEN next is 'Tree' WITH PROB 1.0"
	rule, err := ParseRule(line, forest())
	require.NoError(t, err)
	require.Len(t, rule.Conditions, 3)
	assert.Equal(t, []ruleset.Combiner{ruleset.Or, ruleset.Xor}, rule.Combiners)
	assert.Equal(t, ruleset.Condition{Neighbor: 0, Op: ruleset.LessOrEqual, Threshold: 8}, rule.Conditions[2])
}

func TestParseRuleLenientDefaults(t *testing.T) {
	tests := []struct {
		name string
		line string
		cond ruleset.Condition
		prob float32
	}{
		{"unknown neighbour", "IF current is 'Tree' AND count(Ash) > 1 THEN next is 'Empty' WITH PROB 0.25",
			ruleset.Condition{Neighbor: 0, Op: ruleset.Greater, Threshold: 1}, 0.25},
		{"unknown operator", "IF current is 'Tree' AND count(Tree) => 4 THEN next is 'Empty'",
			ruleset.Condition{Neighbor: 1, Op: ruleset.Equal, Threshold: 4}, 1},
		{"bad threshold", "IF current is 'Tree' AND count(Tree) < many THEN next is 'Empty' WITH PROB x",
			ruleset.Condition{Neighbor: 1, Op: ruleset.Less, Threshold: 0}, 1},
		{"trailing comma", "IF current is 'Tree' AND count(Tree) < 3, THEN next is 'Empty' WITH PROB 7",
			ruleset.Condition{Neighbor: 1, Op: ruleset.Less, Threshold: 3}, 1},
		{"negative probability", "IF current is 'Tree' AND count(Tree) < 3 THEN next is 'Empty' WITH PROB -2",
			ruleset.Condition{Neighbor: 1, Op: ruleset.Less, Threshold: 3}, 0},
		{"threshold overflow", "IF current is 'Tree' AND count(Tree) == 300 THEN next is 'Empty' WITH PROB",
			ruleset.Condition{Neighbor: 1, Op: ruleset.Equal, Threshold: 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := ParseRule(tt.line, forest())
			require.NoError(t, err)
			require.Len(t, rule.Conditions, 1)
			assert.Equal(t, tt.cond, rule.Conditions[0])
			assert.Equal(t, tt.prob, rule.Probability)
		})
	}
}

func TestParseRuleNormalizesCombiners(t *testing.T) {
	rule, err := ParseRule("IF current is 'Tree' AND count(Tree) > 1 count(Burning) > 0 THEN next is 'Burning'", forest())
	require.NoError(t, err)
	assert.Equal(t, []ruleset.Combiner{ruleset.And}, rule.Combiners)

	rule, err = ParseRule("IF current is 'Tree' AND count(Tree) > 1 OR XOR THEN next is 'Burning'", forest())
	require.NoError(t, err)
	assert.Empty(t, rule.Combiners)
}

func TestParseRuleFailures(t *testing.T) {
	tests := []struct {
		line string
		err  error
	}{
		{"WHEN current is 'Tree' THEN next is 'Burning'", ErrMissingIf},
		{"IF current is 'Tree' AND count(Tree) > 1", ErrMissingThen},
		{"IF current is Tree THEN next is 'Burning'", ErrMalformedCurrent},
		{"IF current is 'Tree THEN next is 'Burning'", ErrMalformedCurrent},
		{"IF current is 'Tree' THEN next is Burning", ErrMalformedNext},
		{"IF current is 'Ash' THEN next is 'Burning'", ruleset.ErrUnknownState},
		{"IF current is 'Tree' THEN next is 'Ash'", ruleset.ErrUnknownState},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := ParseRule(tt.line, forest())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestFormatProbability(t *testing.T) {
	assert.Equal(t, "1.0", FormatProbability(1))
	assert.Equal(t, "0.0", FormatProbability(0))
	assert.Equal(t, "0.5", FormatProbability(0.5))
	assert.Equal(t, "0.3", FormatProbability(0.3))
}

func TestFormatRule(t *testing.T) {
	reg := forest()
	rule := ruleset.TransitionRule{
		Current: 0,
		Conditions: []ruleset.Condition{
			{Neighbor: 1, Op: ruleset.Greater, Threshold: 2},
			{Neighbor: 2, Op: ruleset.Equal, Threshold: 0},
		},
		Combiners:   []ruleset.Combiner{ruleset.Xor},
		Next:        1,
		Probability: 1,
	}
	assert.Equal(t,
		"IF current is 'Empty' AND count(Tree) > 2 XOR count(Burning) == 0 THEN next is 'Tree' WITH PROB 1.0",
		FormatRule(rule, reg))

	rule.Conditions, rule.Combiners = nil, nil
	assert.Equal(t,
		"IF current is 'Empty' AND (no conditions) THEN next is 'Tree' WITH PROB 1.0",
		FormatRule(rule, reg))
}
