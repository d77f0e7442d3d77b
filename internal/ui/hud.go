//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"ca-modeler/internal/core"
	"ca-modeler/internal/session"
)

// HUD renders the control and legend panel to the right of the grid.
type HUD struct {
	sess       *session.Session
	width      int
	panel      *ebiten.Image
	lastHeight int
	snapshot   core.ParameterSnapshot

	controls     []hudControlState
	legend       []legendEntry
	panelOffsetX int

	pixel *ebiten.Image
}

type legendEntry struct {
	count session.Count
	color color.RGBA
	rect  image.Rectangle
}

// NewHUD constructs a HUD for the session and panel width.
func NewHUD(sess *session.Session, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{sess: sess, width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	controls := sess.ParameterControls()
	h.controls = make([]hudControlState, len(controls))
	for i, ctrl := range controls {
		h.controls[i] = hudControlState{control: ctrl, value: "--"}
	}
	h.layoutControls()
	return h
}

// Update refreshes the cached snapshot and handles clicks on the panel.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	h.snapshot = h.sess.Parameters()
	h.refreshControlValues()
	h.refreshLegend()
	h.handleInput()
}

// Draw paints the HUD panel at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil || h.width <= 0 {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	height := max(h.sess.Size().H*scale, h.minHeight())
	if h.panel == nil || h.panel.Bounds().Dx() != h.width || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawControls()
	h.drawLegend()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) minHeight() int {
	return h.legendTop() + (len(h.legend)+1)*legendLine + panelPadding
}

func (h *HUD) title() string {
	gen := "--"
	if p, ok := h.snapshot.Lookup("generation"); ok {
		gen = p.Value
	}
	state := "paused"
	if h.sess.Running() {
		state = "running"
	}
	return fmt.Sprintf("%s  gen %s  %s", h.sess.Name(), gen, state)
}

func (h *HUD) refreshControlValues() {
	for i := range h.controls {
		state := &h.controls[i]
		param, ok := h.snapshot.Lookup(state.control.Key)
		if !ok {
			state.hasValue = false
			state.value = "--"
			continue
		}
		parsed, err := strconv.Atoi(param.Value)
		if err != nil {
			state.hasValue = false
			state.value = "--"
			continue
		}
		state.intValue = parsed
		state.value = strconv.Itoa(parsed)
		state.hasValue = true
	}
}

func (h *HUD) refreshLegend() {
	census := h.sess.Census()
	colors := map[uint8]color.RGBA{}
	for _, s := range h.sess.States() {
		colors[s.ID] = s.Color
	}
	h.legend = h.legend[:0]
	top := h.legendTop()
	for i, c := range census {
		col, ok := colors[c.ID]
		if !ok {
			col = color.RGBA{R: 255, A: 255}
		}
		y := top + (i+1)*legendLine
		h.legend = append(h.legend, legendEntry{
			count: c,
			color: col,
			rect:  image.Rect(panelPadding, y-legendLine+4, h.width-panelPadding, y+4),
		})
	}
}

func (h *HUD) legendTop() int {
	return controlsTop + len(h.controls)*lineHeight + panelPadding
}

func (h *HUD) handleInput() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i := range h.controls {
		state := &h.controls[i]
		if !state.hasValue {
			continue
		}
		if pointInRect(px, my, state.minusRect) {
			h.applyAdjustment(state, -1)
			return
		}
		if pointInRect(px, my, state.plusRect) {
			h.applyAdjustment(state, 1)
			return
		}
	}
	for _, e := range h.legend {
		if pointInRect(px, my, e.rect) {
			_ = h.sess.SetPaintState(e.count.ID)
			return
		}
	}
}

func (h *HUD) applyAdjustment(state *hudControlState, direction int) {
	if state == nil || direction == 0 {
		return
	}
	step := int(math.Round(state.control.Step))
	if step <= 0 {
		step = 1
	}
	target := int(state.control.Clamp(float64(state.intValue + direction*step)))
	if target == state.intValue {
		return
	}
	if h.sess.SetIntParameter(state.control.Key, target) {
		state.intValue = target
		state.value = strconv.Itoa(target)
	}
}

func (h *HUD) canAdjust(state *hudControlState, direction int) bool {
	step := int(math.Round(state.control.Step))
	if step <= 0 {
		step = 1
	}
	target := state.intValue + direction*step
	if state.control.HasMin && direction < 0 && float64(target) < state.control.Min {
		return false
	}
	if state.control.HasMax && direction > 0 && float64(target) > state.control.Max {
		return false
	}
	return true
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	headerY := panelPadding + headerBaseline
	text.Draw(h.panel, h.title(), face, panelPadding, headerY, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	for i := range h.controls {
		state := &h.controls[i]
		labelY := state.top + labelBaseline
		text.Draw(h.panel, state.control.Label, face, panelPadding, labelY, color.RGBA{R: 220, G: 220, B: 230, A: 255})
		valueColor := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		if !state.hasValue {
			valueColor = color.RGBA{R: 160, G: 160, B: 170, A: 255}
		}
		bounds := text.BoundString(face, state.value)
		valueX := state.minusRect.Min.X - buttonGap - bounds.Dx()
		text.Draw(h.panel, state.value, face, valueX, labelY, valueColor)

		h.drawButton(state.minusRect, "-", state.hasValue && h.canAdjust(state, -1))
		h.drawButton(state.plusRect, "+", state.hasValue && h.canAdjust(state, 1))
	}
}

func (h *HUD) drawLegend() {
	face := basicfont.Face7x13
	top := h.legendTop()
	text.Draw(h.panel, "States (click to paint)", face, panelPadding, top, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	paint := h.sess.PaintState()
	for _, e := range h.legend {
		if e.count.ID == paint {
			h.fillRect(e.rect, color.RGBA{R: 44, G: 46, B: 56, A: 255})
		}
		sw := image.Rect(e.rect.Min.X+2, e.rect.Min.Y+3, e.rect.Min.X+14, e.rect.Max.Y-3)
		h.fillRect(sw, e.color)
		label := fmt.Sprintf("%d %s", e.count.ID, e.count.Name)
		text.Draw(h.panel, label, face, sw.Max.X+6, e.rect.Max.Y-6, color.RGBA{R: 220, G: 220, B: 230, A: 255})
		n := strconv.Itoa(e.count.Cells)
		b := text.BoundString(face, n)
		text.Draw(h.panel, n, face, e.rect.Max.X-b.Dx()-2, e.rect.Max.Y-6, color.RGBA{R: 160, G: 160, B: 170, A: 255})
	}
}

func (h *HUD) fillRect(rect image.Rectangle, col color.RGBA) {
	if h.pixel == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(col)
	h.panel.DrawImage(h.pixel, op)
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	h.fillRect(rect, bg)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	if len(h.controls) == 0 || h.width <= 0 {
		return
	}
	for i := range h.controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plusRect := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minusRect := image.Rect(plusRect.Min.X-buttonGap-buttonSize, buttonY, plusRect.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].top = top
		h.controls[i].minusRect = minusRect
		h.controls[i].plusRect = plusRect
	}
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

type hudControlState struct {
	control core.ParameterControl
	value   string

	intValue int
	hasValue bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

const (
	panelPadding   = 12
	lineHeight     = 36
	legendLine     = 20
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	controlsTop    = panelPadding + headerBaseline + 14
)
