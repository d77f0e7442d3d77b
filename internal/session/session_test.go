package session

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ca-modeler/internal/core"
	"ca-modeler/internal/ruleset"
)

func newSession(t *testing.T, preset string) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.Preset = preset
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestNewDefaults(t *testing.T) {
	s := newSession(t, "life")
	assert.Equal(t, "life", s.Name())
	assert.Equal(t, core.Size{W: 50, H: 40}, s.Size())
	assert.Equal(t, core.Moore, s.Grid().Neighborhood)
	assert.Equal(t, 200*time.Millisecond, s.Interval())
	assert.Len(t, s.States(), 2)
	assert.Len(t, s.Rules(), 5)

	_, err := New(Config{Preset: "nope"})
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestRemoveStateCascades(t *testing.T) {
	s := newSession(t, "forestfire")
	s.Grid().Fill(0)
	s.Grid().Set(0, 0, 2)
	s.Grid().Set(1, 1, 2)

	rm, err := s.RemoveState(2) // Burning
	require.NoError(t, err)
	assert.Equal(t, "Burning", rm.State.Name)
	assert.Equal(t, 2, rm.RulesDropped)
	assert.Equal(t, 2, rm.CellsRewritten)

	rules := s.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, uint8(0), rules[0].Current)
	assert.Equal(t, uint8(1), rules[0].Next)

	v, _ := s.Grid().At(1, 1)
	assert.Equal(t, FallbackStateID, v)
	assert.Equal(t, CustomName, s.Name())

	_, err = s.RemoveState(9)
	assert.ErrorIs(t, err, ruleset.ErrIndexOutOfRange)
}

func TestAddStateAndRule(t *testing.T) {
	s := newSession(t, "life")
	st, err := s.AddState("Zombie", ruleset.RGB(120, 0, 120))
	require.NoError(t, err)
	assert.Equal(t, uint8(2), st.ID)

	err = s.AddRule(ruleset.TransitionRule{Current: 1, Next: 7, Probability: 1})
	assert.ErrorIs(t, err, ruleset.ErrUnknownState)

	f := ruleset.RuleForm{Current: "Dead", Next: "Zombie", Probability: "0.1"}
	f.AddCondition()
	f.Conditions[0] = ruleset.ConditionForm{Neighbor: "Zombie", Operator: ">", Threshold: "0"}
	r, err := s.AddRuleFromForm(f)
	require.NoError(t, err)
	assert.Equal(t, float32(0.1), r.Probability)
	assert.Len(t, s.Rules(), 6)
	assert.Contains(t, s.RuleLines()[5], "count(Zombie) > 0")

	require.NoError(t, s.RemoveRule(0))
	assert.Len(t, s.Rules(), 5)
	assert.Error(t, s.RemoveRule(42))
}

func TestPaintAndNeighborCount(t *testing.T) {
	s := newSession(t, "life")
	s.Grid().Fill(0)
	require.NoError(t, s.SetPaintState(1))
	assert.True(t, s.Paint(0, 1))
	assert.True(t, s.Paint(1, 0))
	assert.False(t, s.Paint(-1, 0))

	n, ok := s.NeighborCount(0, 0, 1)
	require.True(t, ok)
	assert.Equal(t, uint8(2), n)
	_, ok = s.NeighborCount(99, 0, 1)
	assert.False(t, ok)

	assert.ErrorIs(t, s.SetPaintState(9), ruleset.ErrUnknownState)
}

func TestStepCountsGenerations(t *testing.T) {
	s := newSession(t, "greenberg")
	s.Step()
	s.Step()
	assert.Equal(t, 2, s.Generation())
	s.ResetGrid()
	assert.Zero(t, s.Generation())
}

func TestImportExportRoundTrip(t *testing.T) {
	s := newSession(t, "wireworld")
	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "WIDTH 50 HEIGHT 40\n"))

	other := newSession(t, "life")
	other.Resize(10, 10)
	dropped, err := other.Import(strings.NewReader(strings.Replace(buf.String(), "WIDTH 50 HEIGHT 40", "WIDTH 30 HEIGHT 20", 1)))
	require.NoError(t, err)
	assert.Empty(t, dropped)
	assert.Equal(t, core.Size{W: 30, H: 20}, other.Size())
	assert.Equal(t, s.States(), other.States())
	assert.Equal(t, s.Rules(), other.Rules())
}

func TestImportWithoutSizeKeepsDimensions(t *testing.T) {
	s := newSession(t, "life")
	s.Resize(12, 8)
	dropped, err := s.Import(strings.NewReader("STATE {\n    A(1, 1, 1, 0)\n    B(2, 2, 2, 3)\n}\nRULES {\n    bogus\n}\n"))
	require.NoError(t, err)
	assert.Len(t, dropped, 1)
	assert.Equal(t, core.Size{W: 12, H: 8}, s.Size())
	assert.Equal(t, []Count{{ID: 0, Name: "A", Cells: 0}, {ID: 1, Name: "B", Cells: 96}}, s.Census())
}

func TestImportCapsOversizedGrid(t *testing.T) {
	s := newSession(t, "life")
	_, err := s.Import(strings.NewReader("WIDTH 100000 HEIGHT 100000\nSTATE {\n    A(1, 1, 1, 1)\n}\n"))
	require.NoError(t, err)
	assert.Equal(t, core.Size{W: core.MaxDimension, H: core.MaxDimension}, s.Size())
	assert.Len(t, s.Cells(), core.MaxDimension*core.MaxDimension)
}

func TestCensusListsStrayIDsLast(t *testing.T) {
	s := newSession(t, "life")
	s.Resize(2, 2)
	copy(s.Grid().Cells(), []uint8{0, 1, 9, 1})
	assert.Equal(t, []Count{
		{ID: 0, Name: "Dead", Cells: 1},
		{ID: 1, Name: "Alive", Cells: 2},
		{ID: 9, Name: "#9", Cells: 1},
	}, s.Census())
	assert.Equal(t, map[string]int{"Dead": 1, "Alive": 2, "#9": 1}, s.Population())
}

func TestSpeedMapping(t *testing.T) {
	assert.Equal(t, 10*time.Millisecond, SpeedToInterval(100))
	assert.Equal(t, 1000*time.Millisecond, SpeedToInterval(0))
	assert.Equal(t, 505*time.Millisecond, SpeedToInterval(50))
	assert.Equal(t, 1000*time.Millisecond, SpeedToInterval(-20))
	assert.InDelta(t, 50, IntervalToSpeed(505*time.Millisecond), 1e-9)

	s := newSession(t, "life")
	s.SetSpeed(100)
	assert.Equal(t, 10*time.Millisecond, s.Interval())
	assert.True(t, s.SetIntParameter("speed", 250))
	assert.Equal(t, 10*time.Millisecond, s.Interval())
	assert.False(t, s.SetIntParameter("bogus", 1))
}

func TestLoadPresetKeepsGrid(t *testing.T) {
	s := newSession(t, "life")
	before := append([]uint8(nil), s.Cells()...)
	require.NoError(t, s.LoadPreset("turing"))
	assert.Equal(t, "turing", s.Name())
	assert.Equal(t, before, s.Cells())
	assert.ErrorIs(t, s.LoadPreset("bogus"), ErrUnknownPreset)
}

func TestFromMap(t *testing.T) {
	c := FromMap(map[string]string{
		"w": "80", "h": "-2", "seed": "5", "neighborhood": "vonneumann",
		"preset": "forestfire", "interval_ms": "40", "workers": "3",
	})
	assert.Equal(t, 80, c.Width)
	assert.Equal(t, DefaultHeight, c.Height)
	assert.Equal(t, int64(5), c.Seed)
	assert.Equal(t, core.VonNeumann, c.Neighborhood)
	assert.Equal(t, "forestfire", c.Preset)
	assert.Equal(t, 40*time.Millisecond, c.Interval)
	assert.Equal(t, 3, c.Workers)
}

func TestPresetsRegisteredAsSims(t *testing.T) {
	f, ok := core.Sims()["wireworld"]
	require.True(t, ok)
	sim := f(map[string]string{"w": "16", "h": "8", "seed": "1"})
	assert.Equal(t, "wireworld", sim.Name())
	assert.Equal(t, core.Size{W: 16, H: 8}, sim.Size())
	assert.Len(t, sim.Cells(), 128)
}
