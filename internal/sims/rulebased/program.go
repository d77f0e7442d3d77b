package rulebased

import (
	"ca-modeler/internal/core"
	"ca-modeler/internal/ruleset"
	"ca-modeler/pkg/rng"
)

// compiledCondition refers to its neighbour by count-table slot.
type compiledCondition struct {
	slot      int
	op        ruleset.Operator
	threshold uint8
}

type compiledRule struct {
	conds     []compiledCondition
	combiners []ruleset.Combiner
	next      uint8
	prob      float32
}

// program is a ruleset flattened for the per-cell loop: rules grouped by
// source state in declaration order, and one count table slot per neighbour
// state that any condition references.
type program struct {
	byState   [256][]compiledRule
	neighbors []uint8
	slotOf    [256]int
}

func compile(rs *ruleset.Ruleset) *program {
	p := &program{}
	for i := range p.slotOf {
		p.slotOf[i] = -1
	}
	p.neighbors = rs.ReferencedNeighborIDs()
	for slot, id := range p.neighbors {
		p.slotOf[id] = slot
	}
	for _, r := range rs.Rules() {
		cr := compiledRule{combiners: r.Combiners, next: r.Next, prob: r.Probability}
		for _, c := range r.Conditions {
			cr.conds = append(cr.conds, compiledCondition{slot: p.slotOf[c.Neighbor], op: c.Op, threshold: c.Threshold})
		}
		p.byState[r.Current] = append(p.byState[r.Current], cr)
	}
	return p
}

// countRange fills tables[slot][i] for cells lo..hi-1 with the number of
// in-bounds neighbours holding p.neighbors[slot].
func (p *program) countRange(g *core.Grid, tables [][]uint8, lo, hi int) {
	if len(tables) == 0 {
		return
	}
	cells := g.Cells()
	offsets := g.Neighborhood.Offsets()
	w, h := g.W, g.H
	for i := lo; i < hi; i++ {
		for _, t := range tables {
			t[i] = 0
		}
		r, c := i/w, i%w
		for _, o := range offsets {
			nr, nc := r+o.DR, c+o.DC
			if nr < 0 || nr >= h || nc < 0 || nc >= w {
				continue
			}
			if slot := p.slotOf[cells[nr*w+nc]]; slot >= 0 {
				tables[slot][i]++
			}
		}
	}
}

// applyRange writes the next state of cells lo..hi-1 into next and returns
// how many differ from the current generation.
func (p *program) applyRange(g *core.Grid, tables [][]uint8, next []uint8, lo, hi int, r *rng.RNG) int {
	cells := g.Cells()
	changed := 0
	for i := lo; i < hi; i++ {
		cur := cells[i]
		out := cur
		for k := range p.byState[cur] {
			rule := &p.byState[cur][k]
			if rule.prob < 1 && r.Float32() > rule.prob {
				continue
			}
			if rule.satisfied(tables, i) {
				out = rule.next
				break
			}
		}
		next[i] = out
		if out != cur {
			changed++
		}
	}
	return changed
}

// satisfied folds every condition left to right. There is no short circuit.
func (r *compiledRule) satisfied(tables [][]uint8, i int) bool {
	if len(r.conds) == 0 {
		return true
	}
	acc := r.conds[0].op.Evaluate(tables[r.conds[0].slot][i], r.conds[0].threshold)
	for k := 1; k < len(r.conds); k++ {
		c := r.conds[k]
		acc = r.combiners[k-1].Apply(acc, c.op.Evaluate(tables[c.slot][i], c.threshold))
	}
	return acc
}
