//go:build ebiten

package app

import (
	"time"

	"ca-modeler/internal/core"
	"ca-modeler/internal/render"
	"ca-modeler/internal/session"
	"ca-modeler/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// HUDWidth is the width in pixels of the control panel beside the grid.
const HUDWidth = 260

var digitKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// Game adapts a session to the ebiten.Game interface.
type Game struct {
	sess    *session.Session
	painter *render.GridPainter
	palette *render.Palette
	overlay *ui.Overlay
	hud     *ui.HUD
	timer   *core.FixedStep

	scale    int
	tickOnce bool
	seed     int64
}

// New constructs a Game for the provided session.
func New(sess *session.Session, scale int, seed int64) *Game {
	if scale <= 0 {
		scale = 1
	}
	size := sess.Size()
	return &Game{
		sess:    sess,
		painter: render.NewGridPainter(size.W, size.H),
		palette: render.NewPalette(sess.States()),
		overlay: ui.NewOverlay(sess, scale),
		hud:     ui.NewHUD(sess, HUDWidth),
		timer:   core.NewFixedStep(sess.Interval()),
		scale:   scale,
		seed:    seed,
	}
}

// Reset reinitializes the grid with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sess.Reset(seed)
	g.tickOnce = false
	g.timer.Reset()
}

// Update handles per-frame input and advances the simulation at the session
// interval.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.sess.ToggleRunning() {
			g.timer.Reset()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.sess.SetRunning(true)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.sess.SetNeighborhood(g.sess.Grid().Neighborhood.Next())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.nudgeSpeed(5)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.nudgeSpeed(-5)
	}
	g.selectPaintState()

	g.overlay.Update()
	g.hud.Update(g.gridWidth())
	g.paint()
	g.syncLayout()

	g.timer.SetInterval(g.sess.Interval())
	if g.tickOnce || (g.sess.Running() && g.timer.ShouldStep()) {
		g.sess.Step()
		g.tickOnce = false
	}
	return nil
}

func (g *Game) nudgeSpeed(delta int) {
	cur := int(session.IntervalToSpeed(g.sess.Interval()) + 0.5)
	g.sess.SetIntParameter("speed", cur+delta)
}

func (g *Game) selectPaintState() {
	states := g.sess.States()
	for i, key := range digitKeys {
		if i >= len(states) {
			return
		}
		if inpututil.IsKeyJustPressed(key) {
			_ = g.sess.SetPaintState(states[i].ID)
			return
		}
	}
}

func (g *Game) paint() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < 0 || my < 0 || mx >= g.gridWidth() {
		return
	}
	g.sess.Paint(my/g.scale, mx/g.scale)
}

// syncLayout rebuilds the painter and palette after size or state edits.
func (g *Game) syncLayout() {
	size := g.sess.Size()
	if w, h := g.painter.Size(); w != size.W || h != size.H {
		g.painter = render.NewGridPainter(size.W, size.H)
	}
	g.palette = render.NewPalette(g.sess.States())
}

func (g *Game) gridWidth() int { return g.sess.Size().W * g.scale }

// Draw renders the current grid, overlay and HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sess.Cells(), g.palette, g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.gridWidth(), g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sess.Size()
	return s.W*g.scale + HUDWidth, max(s.H*g.scale, 480)
}
