package core

import "ca-modeler/pkg/rng"

// Weighted pairs a state id with its share of the random initial fill.
type Weighted struct {
	ID     uint8
	Weight uint8
}

// Grid stores a 2D grid of state ids in row-major order together with the
// neighbourhood used to count around each cell. Off-grid neighbours are
// skipped, never wrapped.
type Grid struct {
	W, H         int
	Neighborhood Neighborhood
	data         []uint8
}

// MaxDimension bounds both grid sides.
const MaxDimension = 1000

// ClampDimension limits a side length to 1..MaxDimension.
func ClampDimension(n int) int {
	return max(1, min(n, MaxDimension))
}

// NewGrid allocates a grid with every cell set to state 0. Both sides are
// clamped to 1..MaxDimension.
func NewGrid(w, h int, nb Neighborhood) *Grid {
	w, h = ClampDimension(w), ClampDimension(h)
	return &Grid{W: w, H: h, Neighborhood: nb, data: make([]uint8, w*h)}
}

// NewRandomGrid allocates a grid and samples every cell from weights.
func NewRandomGrid(w, h int, nb Neighborhood, weights []Weighted, r *rng.RNG) *Grid {
	g := NewGrid(w, h, nb)
	g.Randomize(weights, r)
	return g
}

// Randomize independently samples every cell. A state is picked with
// probability proportional to its weight; zero-weight states never appear.
// When no state has a positive weight every cell becomes state 0.
func (g *Grid) Randomize(weights []Weighted, r *rng.RNG) {
	var pool []Weighted
	total := 0
	for _, w := range weights {
		if w.Weight == 0 {
			continue
		}
		pool = append(pool, w)
		total += int(w.Weight)
	}
	if len(pool) == 0 {
		pool = []Weighted{{ID: 0, Weight: 1}}
		total = 1
	}
	for i := range g.data {
		roll := r.IntN(total)
		picked := pool[0].ID
		for _, w := range pool {
			if roll < int(w.Weight) {
				picked = w.ID
				break
			}
			roll -= int(w.Weight)
		}
		g.data[i] = picked
	}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *Grid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for row r and column c.
func (g *Grid) Index(r, c int) int { return r*g.W + c }

// InBounds reports whether (r, c) addresses a cell of the grid.
func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && r < g.H && c >= 0 && c < g.W
}

// At returns the state at (r, c). Out of range coordinates report false.
func (g *Grid) At(r, c int) (uint8, bool) {
	if !g.InBounds(r, c) {
		return 0, false
	}
	return g.data[g.Index(r, c)], true
}

// Set writes id at (r, c) and reports whether the coordinates were valid.
func (g *Grid) Set(r, c int, id uint8) bool {
	if !g.InBounds(r, c) {
		return false
	}
	g.data[g.Index(r, c)] = id
	return true
}

// CountNeighbors counts the in-bounds neighbours of (r, c) holding target.
func (g *Grid) CountNeighbors(r, c int, target uint8) uint8 {
	var count uint8
	for _, o := range g.Neighborhood.Offsets() {
		nr, nc := r+o.DR, c+o.DC
		if nr < 0 || nr >= g.H || nc < 0 || nc >= g.W {
			continue
		}
		if g.data[nr*g.W+nc] == target {
			count++
		}
	}
	return count
}

// Replace rewrites every cell holding from to to and returns how many changed.
func (g *Grid) Replace(from, to uint8) int {
	n := 0
	for i, v := range g.data {
		if v == from {
			g.data[i] = to
			n++
		}
	}
	return n
}

// Census counts cells per state id.
func (g *Grid) Census() map[uint8]int {
	counts := make(map[uint8]int)
	for _, v := range g.data {
		counts[v]++
	}
	return counts
}

// Swap installs buf as the cell buffer and returns the previous one. buf must
// hold exactly W*H cells.
func (g *Grid) Swap(buf []uint8) []uint8 {
	if len(buf) != len(g.data) {
		panic("core: swap buffer size mismatch")
	}
	old := g.data
	g.data = buf
	return old
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{W: g.W, H: g.H, Neighborhood: g.Neighborhood, data: make([]uint8, len(g.data))}
	copy(c.data, g.data)
	return c
}

// Rows returns the cells as one slice per row.
func (g *Grid) Rows() [][]uint8 {
	rows := make([][]uint8, g.H)
	for r := range rows {
		rows[r] = append([]uint8(nil), g.data[r*g.W:(r+1)*g.W]...)
	}
	return rows
}

// Fill sets every cell to id.
func (g *Grid) Fill(id uint8) {
	for i := range g.data {
		g.data[i] = id
	}
}
