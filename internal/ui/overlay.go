//go:build ebiten

package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"ca-modeler/internal/session"
)

// Overlay draws optional diagnostics on top of the grid: cell gridlines and
// the neighbourhood of the hovered cell with per-state neighbour counts.
type Overlay struct {
	sess      *session.Session
	scale     int
	showGrid  bool
	showHover bool

	hoverR, hoverC int
	hovering       bool

	pixel *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sess *session.Session, scale int) *Overlay {
	o := &Overlay{sess: sess, scale: scale, showHover: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles overlays (G gridlines, H hover) and tracks the cursor.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		o.showGrid = !o.showGrid
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		o.showHover = !o.showHover
	}
	scale := max(o.scale, 1)
	mx, my := ebiten.CursorPosition()
	size := o.sess.Size()
	o.hoverR, o.hoverC = my/scale, mx/scale
	o.hovering = mx >= 0 && my >= 0 && o.hoverR < size.H && o.hoverC < size.W
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sess.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}
	scale := max(o.scale, 1)
	if o.showGrid && scale >= 4 {
		o.drawGridLines(screen, size.W, size.H, float64(scale))
	}
	if o.showHover && o.hovering {
		o.drawHover(screen, float64(scale))
	}
}

func (o *Overlay) drawGridLines(screen *ebiten.Image, w, h int, scale float64) {
	col := color.RGBA{R: 60, G: 60, B: 70, A: 140}
	for c := 0; c <= w; c++ {
		x := float64(c) * scale
		o.drawLine(screen, x, 0, x, float64(h)*scale, 1, col)
	}
	for r := 0; r <= h; r++ {
		y := float64(r) * scale
		o.drawLine(screen, 0, y, float64(w)*scale, y, 1, col)
	}
}

func (o *Overlay) drawHover(screen *ebiten.Image, scale float64) {
	g := o.sess.Grid()
	highlight := color.RGBA{R: 255, G: 255, B: 255, A: 90}
	for _, off := range g.Neighborhood.Offsets() {
		nr, nc := o.hoverR+off.DR, o.hoverC+off.DC
		if !g.InBounds(nr, nc) {
			continue
		}
		cx := (float64(nc) + 0.5) * scale
		cy := (float64(nr) + 0.5) * scale
		o.drawPoint(screen, cx, cy, scale*0.6, highlight)
	}
	x0 := float64(o.hoverC) * scale
	y0 := float64(o.hoverR) * scale
	frame := color.RGBA{R: 255, G: 220, B: 80, A: 255}
	o.drawLine(screen, x0, y0, x0+scale, y0, 1, frame)
	o.drawLine(screen, x0, y0+scale, x0+scale, y0+scale, 1, frame)
	o.drawLine(screen, x0, y0, x0, y0+scale, 1, frame)
	o.drawLine(screen, x0+scale, y0, x0+scale, y0+scale, 1, frame)

	face := basicfont.Face7x13
	cur, _ := g.At(o.hoverR, o.hoverC)
	lines := []string{fmt.Sprintf("(%d,%d) %s", o.hoverR, o.hoverC, o.sess.Registry().NameOf(cur))}
	for _, st := range o.sess.States() {
		n, ok := o.sess.NeighborCount(o.hoverR, o.hoverC, st.ID)
		if !ok || n == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %d", st.Name, n))
	}
	tx := int(x0+scale) + 6
	ty := int(y0) + 12
	bounds := screen.Bounds()
	if tx+120 > bounds.Dx() {
		tx = int(x0) - 126
	}
	if ty+len(lines)*14 > bounds.Dy() {
		ty = bounds.Dy() - len(lines)*14
	}
	o.drawPanel(screen, float64(tx-4), float64(ty-12), 124, float64(len(lines)*14+4))
	for i, line := range lines {
		text.Draw(screen, line, face, tx, ty+i*14, color.RGBA{R: 235, G: 235, B: 240, A: 255})
	}
}

func (o *Overlay) drawPanel(screen *ebiten.Image, x, y, w, h float64) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(color.RGBA{R: 10, G: 10, B: 14, A: 200})
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	if o.pixel == nil || size <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
