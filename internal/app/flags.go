package app

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"ca-modeler/internal/core"
	"ca-modeler/internal/persistence"
	"ca-modeler/internal/presets"
	"ca-modeler/internal/session"
)

// Config represents the command-line parameters for the application.
type Config struct {
	Sim          string
	Rules        string
	Grid         string
	Scale        int
	Width        int
	Height       int
	Neighborhood string
	Interval     time.Duration
	Seed         int64
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Sim:          presets.Default,
		Scale:        12,
		Width:        session.DefaultWidth,
		Height:       session.DefaultHeight,
		Neighborhood: core.Moore.String(),
		Interval:     session.DefaultInterval,
		Seed:         42,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "preset model to run")
	fs.StringVar(&c.Rules, "rules", c.Rules, "rules file to import instead of a preset")
	fs.StringVar(&c.Grid, "grid", c.Grid, "grid file (.json or .json.zst) to start from")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.Width, "w", c.Width, "grid width")
	fs.IntVar(&c.Height, "h", c.Height, "grid height")
	fs.StringVar(&c.Neighborhood, "neighborhood", c.Neighborhood, "VonNeumann, Moore or ExtendedMoore")
	fs.DurationVar(&c.Interval, "interval", c.Interval, "time between generations")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
}

// Open builds the session described by the configuration through the
// registered sim factories. A rules file replaces the preset and a grid file
// replaces the random fill.
func (c *Config) Open() (*session.Session, error) {
	if _, err := core.ParseNeighborhood(c.Neighborhood); err != nil {
		return nil, err
	}
	factory, ok := core.Sims()[c.Sim]
	if !ok {
		return nil, fmt.Errorf("%w: %q", session.ErrUnknownPreset, c.Sim)
	}
	sim := factory(map[string]string{
		"w":            strconv.Itoa(c.Width),
		"h":            strconv.Itoa(c.Height),
		"seed":         strconv.FormatInt(c.Seed, 10),
		"neighborhood": c.Neighborhood,
		"interval_ms":  strconv.FormatInt(c.Interval.Milliseconds(), 10),
	})
	sess, ok := sim.(*session.Session)
	if !ok {
		return nil, fmt.Errorf("sim %q is not rule-based", c.Sim)
	}
	if c.Rules != "" {
		f, err := os.Open(c.Rules)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if _, err := sess.Import(f); err != nil {
			return nil, fmt.Errorf("import %s: %w", c.Rules, err)
		}
	}
	if c.Grid != "" {
		g, err := persistence.LoadGrid(c.Grid)
		if err != nil {
			return nil, err
		}
		sess.ReplaceGrid(g)
	}
	return sess, nil
}
