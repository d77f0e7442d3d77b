package ruleset

import (
	"fmt"
	"sort"
)

// Ruleset is an ordered list of rules. Order decides which rule wins.
type Ruleset struct {
	rules []TransitionRule
}

// New builds a ruleset from rules, validating each one.
func New(rules ...TransitionRule) (*Ruleset, error) {
	rs := &Ruleset{}
	for i, r := range rules {
		if err := rs.Add(r); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return rs, nil
}

// Len reports the number of rules.
func (rs *Ruleset) Len() int { return len(rs.rules) }

// Rules returns deep copies of the rules in order.
func (rs *Ruleset) Rules() []TransitionRule {
	out := make([]TransitionRule, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.Clone()
	}
	return out
}

// At returns a copy of rule i.
func (rs *Ruleset) At(i int) (TransitionRule, bool) {
	if i < 0 || i >= len(rs.rules) {
		return TransitionRule{}, false
	}
	return rs.rules[i].Clone(), true
}

// Add appends r after validating it.
func (rs *Ruleset) Add(r TransitionRule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	rs.rules = append(rs.rules, r.Clone())
	return nil
}

// RemoveAt deletes rule i, keeping the order of the rest.
func (rs *Ruleset) RemoveAt(i int) (TransitionRule, error) {
	if i < 0 || i >= len(rs.rules) {
		return TransitionRule{}, fmt.Errorf("remove rule %d: %w", i, ErrIndexOutOfRange)
	}
	r := rs.rules[i]
	rs.rules = append(rs.rules[:i], rs.rules[i+1:]...)
	return r, nil
}

// RemoveReferencing drops every rule that mentions id and returns how many
// were removed.
func (rs *Ruleset) RemoveReferencing(id uint8) int {
	kept := rs.rules[:0]
	for _, r := range rs.rules {
		if !r.References(id) {
			kept = append(kept, r)
		}
	}
	removed := len(rs.rules) - len(kept)
	for i := len(kept); i < len(rs.rules); i++ {
		rs.rules[i] = TransitionRule{}
	}
	rs.rules = kept
	return removed
}

// ReferencedNeighborIDs returns every state id some condition counts, in
// ascending order.
func (rs *Ruleset) ReferencedNeighborIDs() []uint8 {
	var seen [256]bool
	var ids []uint8
	for _, r := range rs.rules {
		for _, c := range r.Conditions {
			if !seen[c.Neighbor] {
				seen[c.Neighbor] = true
				ids = append(ids, c.Neighbor)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clear removes every rule.
func (rs *Ruleset) Clear() { rs.rules = nil }

// Clone returns an independent copy.
func (rs *Ruleset) Clone() *Ruleset {
	return &Ruleset{rules: rs.Rules()}
}
