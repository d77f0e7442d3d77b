package ruleset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ConditionForm is one editable condition row. Combiner joins the row to the
// previous one and is ignored on the first row.
type ConditionForm struct {
	Combiner  string
	Neighbor  string
	Operator  string
	Threshold string
}

// RuleForm is the editable, string-typed shape of a rule as entered by a user.
type RuleForm struct {
	Current     string
	Next        string
	Probability string
	Conditions  []ConditionForm
}

// AddCondition appends an empty condition row joined with AND.
func (f *RuleForm) AddCondition() {
	f.Conditions = append(f.Conditions, ConditionForm{Combiner: And.String(), Operator: Equal.String()})
}

// RemoveCondition deletes row i.
func (f *RuleForm) RemoveCondition(i int) error {
	if i < 0 || i >= len(f.Conditions) {
		return fmt.Errorf("remove condition %d: %w", i, ErrIndexOutOfRange)
	}
	f.Conditions = append(f.Conditions[:i], f.Conditions[i+1:]...)
	return nil
}

// Build resolves the form against reg. All problems are reported together in
// a *ValidationError.
func (f RuleForm) Build(reg *Registry) (TransitionRule, error) {
	verr := &ValidationError{}
	var rule TransitionRule

	resolve := func(field, name string) uint8 {
		if strings.TrimSpace(name) == "" {
			verr.add(field + " state not selected")
			return 0
		}
		id, ok := reg.Lookup(name)
		if !ok {
			verr.add(fmt.Sprintf("%s state %q does not exist", field, name))
		}
		return id
	}
	rule.Current = resolve("current", f.Current)
	rule.Next = resolve("next", f.Next)

	for i, cf := range f.Conditions {
		row := i + 1
		var c Condition
		if strings.TrimSpace(cf.Neighbor) == "" {
			verr.add(fmt.Sprintf("condition %d: neighbor state not selected", row))
		} else if id, ok := reg.Lookup(cf.Neighbor); !ok {
			verr.add(fmt.Sprintf("condition %d: neighbor state %q does not exist", row, cf.Neighbor))
		} else {
			c.Neighbor = id
		}
		op, ok := ParseOperator(strings.TrimSpace(cf.Operator))
		if !ok {
			verr.add(fmt.Sprintf("condition %d: operator %q not recognised", row, cf.Operator))
		}
		c.Op = op
		th, err := strconv.ParseUint(strings.TrimSpace(cf.Threshold), 10, 8)
		if err != nil {
			verr.add(fmt.Sprintf("condition %d: threshold %q must be 0-255", row, cf.Threshold))
		}
		c.Threshold = uint8(th)
		rule.Conditions = append(rule.Conditions, c)

		if i > 0 {
			comb := And
			if s := strings.TrimSpace(cf.Combiner); s != "" {
				if comb, ok = ParseCombiner(strings.ToUpper(s)); !ok {
					verr.add(fmt.Sprintf("condition %d: combiner %q not recognised", row, cf.Combiner))
				}
			}
			rule.Combiners = append(rule.Combiners, comb)
		}
	}

	rule.Probability = 1
	if s := strings.TrimSpace(f.Probability); s != "" {
		p, err := strconv.ParseFloat(s, 32)
		if err != nil || math.IsNaN(p) || p < 0 || p > 1 {
			verr.add(fmt.Sprintf("probability %q must be a number between 0 and 1", f.Probability))
		} else {
			rule.Probability = float32(p)
		}
	}

	if len(verr.Problems) > 0 {
		return TransitionRule{}, verr
	}
	return rule, nil
}
