package rulebased

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"ca-modeler/internal/core"
	"ca-modeler/internal/ruleset"
	"ca-modeler/pkg/rng"
)

// DefaultParallelThreshold is the cell count at which Step fans out.
const DefaultParallelThreshold = 10_000

// Options tunes how a Stepper schedules work.
type Options struct {
	// ParallelThreshold is the smallest grid (in cells) stepped in parallel.
	// Zero selects DefaultParallelThreshold; negative disables the parallel
	// path.
	ParallelThreshold int
	// Workers bounds the number of goroutines. Zero uses GOMAXPROCS.
	Workers int
}

// DefaultOptions returns the stock scheduling parameters.
func DefaultOptions() Options {
	return Options{ParallelThreshold: DefaultParallelThreshold, Workers: runtime.GOMAXPROCS(0)}
}

// Stepper advances a grid one generation at a time. It owns the
// next-generation buffer and the neighbour count tables, so a Stepper must
// not be shared by concurrent callers.
type Stepper struct {
	opts   Options
	next   []uint8
	tables [][]uint8
}

// New returns a Stepper using opts.
func New(opts Options) *Stepper {
	if opts.ParallelThreshold == 0 {
		opts.ParallelThreshold = DefaultParallelThreshold
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Stepper{opts: opts}
}

// Options reports the effective scheduling parameters.
func (s *Stepper) Options() Options { return s.opts }

// Parallel reports whether a grid with n cells takes the parallel path.
func (s *Stepper) Parallel(n int) bool {
	return s.opts.ParallelThreshold > 0 && n >= s.opts.ParallelThreshold && s.opts.Workers > 1
}

// Step computes the next generation of g under rules and swaps it in. Every
// cell reads the frozen current generation; the first rule whose probability
// gate passes and whose conditions hold decides the cell. It returns the
// number of cells that changed state.
func (s *Stepper) Step(g *core.Grid, rules *ruleset.Ruleset, r *rng.RNG) int {
	n := len(g.Cells())
	if rules == nil || rules.Len() == 0 {
		return 0
	}
	p := compile(rules)
	if cap(s.next) < n {
		s.next = make([]uint8, n)
	}
	s.next = s.next[:n]
	s.prepareTables(len(p.neighbors), n)

	var changed int
	if s.Parallel(n) {
		changed = s.stepParallel(g, p, r)
	} else {
		p.countRange(g, s.tables, 0, n)
		changed = p.applyRange(g, s.tables, s.next, 0, n, r)
	}

	s.next = g.Swap(s.next)
	core.Logger().Debug("generation computed", "cells", n, "changed", changed, "parallel", s.Parallel(n))
	return changed
}

func (s *Stepper) prepareTables(k, n int) {
	if cap(s.tables) < k {
		s.tables = make([][]uint8, k)
	}
	s.tables = s.tables[:k]
	for i := range s.tables {
		if cap(s.tables[i]) < n {
			s.tables[i] = make([]uint8, n)
		}
		s.tables[i] = s.tables[i][:n]
	}
}

// stepParallel splits the flattened grid into contiguous chunks. Each chunk
// writes only its own slots in the count tables and the next buffer, so no
// locking is needed. Counting finishes for the whole grid before any chunk
// applies rules, and the final Wait is the barrier before the swap.
func (s *Stepper) stepParallel(g *core.Grid, p *program, r *rng.RNG) int {
	n := len(g.Cells())
	size := (n + s.opts.Workers*4 - 1) / (s.opts.Workers * 4)
	changed := make([]int, (n+size-1)/size)

	var counting errgroup.Group
	counting.SetLimit(s.opts.Workers)
	for lo := 0; lo < n; lo += size {
		lo, hi := lo, min(lo+size, n)
		counting.Go(func() error {
			p.countRange(g, s.tables, lo, hi)
			return nil
		})
	}
	_ = counting.Wait()

	var applying errgroup.Group
	applying.SetLimit(s.opts.Workers)
	for c := range changed {
		lo := c * size
		hi := min(lo+size, n)
		local := r.Split()
		applying.Go(func() error {
			changed[c] = p.applyRange(g, s.tables, s.next, lo, hi, local)
			return nil
		})
	}
	_ = applying.Wait()

	total := 0
	for _, c := range changed {
		total += c
	}
	return total
}
