package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"ca-modeler/internal/ruleset"
)

// NoConditions is written in place of an empty condition list.
const NoConditions = "(no conditions)"

// FormatConditions renders the condition list joined by its combiners.
func FormatConditions(r ruleset.TransitionRule, reg *ruleset.Registry) string {
	if len(r.Conditions) == 0 {
		return NoConditions
	}
	var b strings.Builder
	for i, c := range r.Conditions {
		if i > 0 {
			comb := ruleset.And
			if i-1 < len(r.Combiners) {
				comb = r.Combiners[i-1]
			}
			b.WriteByte(' ')
			b.WriteString(comb.String())
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "count(%s) %s %d", reg.NameOf(c.Neighbor), c.Op, c.Threshold)
	}
	return b.String()
}

// FormatProbability always keeps a decimal point so the value reads as a
// probability rather than a count.
func FormatProbability(p float32) string {
	s := strconv.FormatFloat(float64(p), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatRule renders one rule line without indentation.
func FormatRule(r ruleset.TransitionRule, reg *ruleset.Registry) string {
	return fmt.Sprintf("IF current is '%s' AND %s THEN next is '%s' WITH PROB %s",
		reg.NameOf(r.Current), FormatConditions(r, reg), reg.NameOf(r.Next), FormatProbability(r.Probability))
}

// FormatState renders a state-block entry without indentation.
func FormatState(s ruleset.State) string {
	return fmt.Sprintf("%s(%d, %d, %d, %d)", s.Name, s.Color.R, s.Color.G, s.Color.B, s.Weight)
}
