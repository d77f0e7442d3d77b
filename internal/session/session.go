package session

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"sort"
	"time"

	"ca-modeler/internal/core"
	"ca-modeler/internal/grammar"
	"ca-modeler/internal/presets"
	"ca-modeler/internal/ruleset"
	"ca-modeler/internal/sims/rulebased"
	"ca-modeler/pkg/rng"
)

// FallbackStateID replaces cells whose state has been removed.
const FallbackStateID uint8 = 1

// CustomName names a session whose model no longer matches a preset.
const CustomName = "custom"

// ErrUnknownPreset is returned by LoadPreset for unregistered names.
var ErrUnknownPreset = errors.New("unknown preset")

// Session owns the editable automaton: its states, rules and grid, plus the
// run state an interactive front end needs. A Session is not safe for
// concurrent use; front ends drive it from a single goroutine.
type Session struct {
	cfg Config

	name    string
	reg     *ruleset.Registry
	rules   *ruleset.Ruleset
	grid    *core.Grid
	stepper *rulebased.Stepper
	rng     *rng.RNG

	generation  int
	lastChanged int
	running     bool
	interval    time.Duration
	paint       uint8
}

// New constructs a session with cfg's preset and a freshly filled grid.
func New(cfg Config) (*Session, error) {
	s := &Session{
		cfg:      cfg,
		reg:      ruleset.NewRegistry(),
		rules:    &ruleset.Ruleset{},
		stepper:  rulebased.New(rulebased.Options{ParallelThreshold: cfg.ParallelThreshold, Workers: cfg.Workers}),
		interval: cfg.Interval,
		paint:    FallbackStateID,
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	s.seed(cfg.Seed)
	s.grid = core.NewGrid(cfg.Width, cfg.Height, cfg.Neighborhood)
	if cfg.Preset != "" {
		if err := s.LoadPreset(cfg.Preset); err != nil {
			return nil, err
		}
	} else {
		s.name = CustomName
	}
	s.ResetGrid()
	return s, nil
}

func (s *Session) seed(seed int64) {
	if seed == 0 {
		s.rng = rng.NewRandom()
		return
	}
	s.rng = rng.NewRNG(seed)
}

// Name returns the preset the session was loaded from, or "custom".
func (s *Session) Name() string { return s.name }

// Size returns the grid dimensions.
func (s *Session) Size() core.Size { return core.Size{W: s.grid.W, H: s.grid.H} }

// Cells exposes the current grid values.
func (s *Session) Cells() []uint8 { return s.grid.Cells() }

// Grid returns the live grid. Callers must not keep it across edits that
// rebuild the grid.
func (s *Session) Grid() *core.Grid { return s.grid }

// Reset reseeds the random source and refills the grid.
func (s *Session) Reset(seed int64) {
	s.seed(seed)
	s.ResetGrid()
}

// Step advances one generation.
func (s *Session) Step() {
	s.lastChanged = s.stepper.Step(s.grid, s.rules, s.rng)
	s.generation++
}

// Generation reports how many generations have run since the last reset.
func (s *Session) Generation() int { return s.generation }

// LastChanged reports how many cells changed in the latest generation.
func (s *Session) LastChanged() int { return s.lastChanged }

// States lists the states in registry order.
func (s *Session) States() []ruleset.State { return s.reg.States() }

// Registry returns a snapshot of the state registry.
func (s *Session) Registry() *ruleset.Registry { return s.reg.Clone() }

// Rules lists the rules in evaluation order.
func (s *Session) Rules() []ruleset.TransitionRule { return s.rules.Rules() }

// Ruleset returns a snapshot of the rules.
func (s *Session) Ruleset() *ruleset.Ruleset { return s.rules.Clone() }

// RuleLines renders each rule in the text format for listing.
func (s *Session) RuleLines() []string {
	rules := s.rules.Rules()
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = grammar.FormatRule(r, s.reg)
	}
	return out
}

// AddState registers a new state with weight 1 under the smallest free id.
func (s *Session) AddState(name string, c color.RGBA) (ruleset.State, error) {
	st, err := s.reg.Add(name, c)
	if err != nil {
		return ruleset.State{}, err
	}
	s.name = CustomName
	core.Logger().Info("state added", "name", st.Name, "id", st.ID)
	return st, nil
}

// Removal summarises the cascade triggered by RemoveState.
type Removal struct {
	State          ruleset.State
	RulesDropped   int
	CellsRewritten int
}

// RemoveState deletes the state at position index, drops every rule that
// mentions it and rewrites its cells to FallbackStateID.
func (s *Session) RemoveState(index int) (Removal, error) {
	st, err := s.reg.RemoveAt(index)
	if err != nil {
		return Removal{}, err
	}
	rm := Removal{
		State:          st,
		RulesDropped:   s.rules.RemoveReferencing(st.ID),
		CellsRewritten: s.grid.Replace(st.ID, FallbackStateID),
	}
	if s.paint == st.ID {
		s.paint = FallbackStateID
	}
	s.name = CustomName
	core.Logger().Info("state removed", "name", st.Name, "id", st.ID,
		"rules_dropped", rm.RulesDropped, "cells_rewritten", rm.CellsRewritten)
	return rm, nil
}

// SetStateWeight parses input leniently; see ruleset.ParseWeight.
func (s *Session) SetStateWeight(index int, input string) (uint8, error) {
	return s.reg.SetWeight(index, input)
}

// AddRule appends r after checking every id it mentions is registered.
func (s *Session) AddRule(r ruleset.TransitionRule) error {
	ids := append(r.NeighborIDs(), r.Current, r.Next)
	for _, id := range ids {
		if _, ok := s.reg.ByID(id); !ok {
			return fmt.Errorf("add rule: %w: id %d", ruleset.ErrUnknownState, id)
		}
	}
	if err := s.rules.Add(r); err != nil {
		return fmt.Errorf("add rule: %w", err)
	}
	s.name = CustomName
	return nil
}

// AddRuleFromForm builds the form against the current registry and appends
// the result.
func (s *Session) AddRuleFromForm(f ruleset.RuleForm) (ruleset.TransitionRule, error) {
	r, err := f.Build(s.reg)
	if err != nil {
		return ruleset.TransitionRule{}, err
	}
	if err := s.AddRule(r); err != nil {
		return ruleset.TransitionRule{}, err
	}
	return r, nil
}

// RemoveRule deletes the rule at position index.
func (s *Session) RemoveRule(index int) error {
	if _, err := s.rules.RemoveAt(index); err != nil {
		return err
	}
	s.name = CustomName
	return nil
}

// LoadPreset replaces states and rules with the named model. The grid is
// kept as is.
func (s *Session) LoadPreset(name string) error {
	m, ok := presets.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	s.reg = m.Registry()
	s.rules = m.Ruleset()
	s.name = m.Name
	s.ensurePaintState()
	core.Logger().Info("preset loaded", "preset", m.Name, "states", s.reg.Len(), "rules", s.rules.Len())
	return nil
}

// Resize replaces the grid with a freshly filled one of the given size.
func (s *Session) Resize(w, h int) {
	s.grid = core.NewGrid(w, h, s.grid.Neighborhood)
	s.ResetGrid()
}

// ResetGrid refills the grid from the state weights and resets the
// generation counter.
func (s *Session) ResetGrid() {
	s.grid.Randomize(s.reg.Weights(), s.rng)
	s.generation = 0
	s.lastChanged = 0
}

// SetNeighborhood switches the topology used by subsequent generations.
// Cells are kept.
func (s *Session) SetNeighborhood(nb core.Neighborhood) {
	s.grid.Neighborhood = nb
}

// ReplaceGrid installs g, typically loaded from a grid file.
func (s *Session) ReplaceGrid(g *core.Grid) {
	s.grid = g
	s.generation = 0
	s.lastChanged = 0
}

// PaintState reports the state used by Paint.
func (s *Session) PaintState() uint8 { return s.paint }

// SetPaintState selects the state written by Paint.
func (s *Session) SetPaintState(id uint8) error {
	if _, ok := s.reg.ByID(id); !ok {
		return fmt.Errorf("paint: %w: id %d", ruleset.ErrUnknownState, id)
	}
	s.paint = id
	return nil
}

// Paint writes the selected paint state at (r, c).
func (s *Session) Paint(r, c int) bool {
	return s.grid.Set(r, c, s.paint)
}

func (s *Session) ensurePaintState() {
	if _, ok := s.reg.ByID(s.paint); ok {
		return
	}
	s.paint = FallbackStateID
	if _, ok := s.reg.ByID(s.paint); !ok {
		if st, ok := s.reg.At(0); ok {
			s.paint = st.ID
		}
	}
}

// NeighborCount counts the neighbours of (r, c) holding id.
func (s *Session) NeighborCount(r, c int, id uint8) (uint8, bool) {
	if !s.grid.InBounds(r, c) {
		return 0, false
	}
	return s.grid.CountNeighbors(r, c, id), true
}

// Running reports whether continuous simulation is enabled.
func (s *Session) Running() bool { return s.running }

// SetRunning enables or disables continuous simulation.
func (s *Session) SetRunning(on bool) { s.running = on }

// ToggleRunning flips continuous simulation and returns the new value.
func (s *Session) ToggleRunning() bool {
	s.running = !s.running
	return s.running
}

// Interval is the delay between generations while running.
func (s *Session) Interval() time.Duration { return s.interval }

// SetInterval changes the delay between generations.
func (s *Session) SetInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultInterval
	}
	s.interval = d
}

// SetSpeed applies a 0..100 speed slider value.
func (s *Session) SetSpeed(v float64) { s.interval = SpeedToInterval(v) }

// Import replaces states, rules and grid with the contents of a rules
// document. The grid takes the document's dimensions, or keeps the current
// ones when it has none, and is refilled from the imported weights. Lines
// that failed to parse are returned.
func (s *Session) Import(r io.Reader) ([]*grammar.ParseError, error) {
	doc, err := grammar.Import(r)
	if err != nil {
		return nil, err
	}
	s.reg = doc.Registry
	s.rules = doc.Rules
	s.name = CustomName
	w, h := s.grid.W, s.grid.H
	if doc.HasSize {
		w, h = doc.Width, doc.Height
	}
	s.ensurePaintState()
	s.Resize(w, h)
	for _, d := range doc.Dropped {
		core.Logger().Warn("rule file line skipped", "line", d.Line, "err", d.Err)
	}
	core.Logger().Info("rules imported", "states", s.reg.Len(), "rules", s.rules.Len(), "dropped", len(doc.Dropped))
	return doc.Dropped, nil
}

// Export writes the grid size, states and rules in the text format.
func (s *Session) Export(w io.Writer) error {
	return grammar.Export(w, s.grid.W, s.grid.H, s.reg, s.rules)
}

// Count is the population of one state.
type Count struct {
	ID    uint8
	Name  string
	Cells int
}

// Census counts cells per state in registry order. Ids present in the grid
// but absent from the registry follow in ascending order.
func (s *Session) Census() []Count {
	counts := s.grid.Census()
	out := make([]Count, 0, len(counts))
	for _, st := range s.reg.States() {
		out = append(out, Count{ID: st.ID, Name: st.Name, Cells: counts[st.ID]})
		delete(counts, st.ID)
	}
	var stray []uint8
	for id := range counts {
		stray = append(stray, id)
	}
	sort.Slice(stray, func(i, j int) bool { return stray[i] < stray[j] })
	for _, id := range stray {
		out = append(out, Count{ID: id, Name: s.reg.NameOf(id), Cells: counts[id]})
	}
	return out
}

// Population maps state names to cell counts.
func (s *Session) Population() map[string]int {
	out := make(map[string]int)
	for _, c := range s.Census() {
		out[c.Name] = c.Cells
	}
	return out
}

func init() {
	for _, name := range presets.Names() {
		core.Register(name, func(cfg map[string]string) core.Sim {
			c := FromMap(cfg)
			c.Preset = name
			s, err := New(c)
			if err != nil {
				panic(err)
			}
			return s
		})
	}
}
