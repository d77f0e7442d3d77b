package render

import (
	"image/color"

	"ca-modeler/internal/ruleset"
)

// Unknown is drawn for cells whose id has no registered state.
var Unknown = color.RGBA{R: 255, G: 0, B: 0, A: 255}

// Palette maps every possible state id to a colour.
type Palette [256]color.RGBA

// NewPalette builds a palette from states. Ids without a state use Unknown.
func NewPalette(states []ruleset.State) *Palette {
	p := &Palette{}
	for i := range p {
		p[i] = Unknown
	}
	for _, s := range states {
		c := s.Color
		c.A = 255
		p[s.ID] = c
	}
	return p
}

// FillRGBA converts cells into RGBA pixels in buf, which must hold 4 bytes
// per cell.
func FillRGBA(buf []byte, cells []uint8, p *Palette) {
	fillPaletteRGBA(buf, cells, p)
}

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is nil the buffer is cleared to transparent black.
func fillPaletteRGBA(buf []byte, cells []uint8, palette *Palette) {
	if palette == nil {
		clear(buf[:4*len(cells)])
		return
	}
	for i, c := range cells {
		base := i * 4
		col := palette[c]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
