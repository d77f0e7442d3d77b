package render

import (
	"fmt"
	"io"

	"github.com/gogpu/gg"

	"ca-modeler/internal/core"
)

// WritePNG rasterises g at scale pixels per cell and encodes it as PNG.
// Cells are grouped into one rectangle path per state so each colour is
// filled once.
func WritePNG(w io.Writer, g *core.Grid, p *Palette, scale int) error {
	if scale <= 0 {
		scale = 1
	}
	dc := gg.NewContext(g.W*scale, g.H*scale)
	defer dc.Close()

	var used [256]bool
	cells := g.Cells()
	for _, v := range cells {
		used[v] = true
	}
	s := float64(scale)
	for id := range used {
		if !used[id] {
			continue
		}
		for i, v := range cells {
			if int(v) != id {
				continue
			}
			r, c := i/g.W, i%g.W
			dc.DrawRectangle(float64(c)*s, float64(r)*s, s, s)
		}
		dc.SetColor(p[id])
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("fill state %d: %w", id, err)
		}
	}
	return dc.EncodePNG(w)
}
