// Package config loads the ruleca YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ca-modeler/internal/core"
	"ca-modeler/internal/presets"
	"ca-modeler/internal/session"
)

type Grid struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	Neighborhood string `yaml:"neighborhood"`
}

type Simulation struct {
	Preset            string `yaml:"preset"`
	Rules             string `yaml:"rules"`
	IntervalMS        int    `yaml:"interval_ms"`
	ParallelThreshold int    `yaml:"parallel_threshold"`
	Workers           int    `yaml:"workers"`
	Seed              int64  `yaml:"seed"`
}

type Render struct {
	Scale int `yaml:"scale"`
}

type History struct {
	DB string `yaml:"db"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full file layout.
type Config struct {
	Grid       Grid       `yaml:"grid"`
	Simulation Simulation `yaml:"simulation"`
	Render     Render     `yaml:"render"`
	History    History    `yaml:"history"`
	Log        Log        `yaml:"log"`
}

// Default mirrors session.DefaultConfig.
func Default() Config {
	d := session.DefaultConfig()
	return Config{
		Grid: Grid{Width: d.Width, Height: d.Height, Neighborhood: d.Neighborhood.String()},
		Simulation: Simulation{
			Preset:            d.Preset,
			IntervalMS:        int(d.Interval.Milliseconds()),
			ParallelThreshold: d.ParallelThreshold,
		},
		Render: Render{Scale: 8},
		Log:    Log{Level: "info", Format: "text"},
	}
}

// Load reads path on top of Default. Keys absent from the file keep their
// defaults.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate reports every out-of-range value.
func (c Config) Validate() error {
	var errs []error
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		errs = append(errs, fmt.Errorf("grid size %dx%d must be positive", c.Grid.Width, c.Grid.Height))
	}
	if c.Grid.Width > core.MaxDimension || c.Grid.Height > core.MaxDimension {
		errs = append(errs, fmt.Errorf("grid size %dx%d exceeds %d per side", c.Grid.Width, c.Grid.Height, core.MaxDimension))
	}
	if _, err := core.ParseNeighborhood(c.Grid.Neighborhood); err != nil {
		errs = append(errs, err)
	}
	if c.Simulation.Preset != "" {
		if _, ok := presets.Lookup(c.Simulation.Preset); !ok {
			errs = append(errs, fmt.Errorf("unknown preset %q", c.Simulation.Preset))
		}
	}
	if c.Simulation.IntervalMS < 0 {
		errs = append(errs, fmt.Errorf("interval_ms %d must not be negative", c.Simulation.IntervalMS))
	}
	if c.Simulation.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", c.Simulation.Workers))
	}
	if c.Render.Scale <= 0 {
		errs = append(errs, fmt.Errorf("render scale %d must be positive", c.Render.Scale))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format %q must be text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// SessionConfig converts the file settings into a session configuration.
func (c Config) SessionConfig() session.Config {
	sc := session.DefaultConfig()
	sc.Width, sc.Height = c.Grid.Width, c.Grid.Height
	if nb, err := core.ParseNeighborhood(c.Grid.Neighborhood); err == nil {
		sc.Neighborhood = nb
	}
	sc.Preset = c.Simulation.Preset
	sc.Seed = c.Simulation.Seed
	if c.Simulation.IntervalMS > 0 {
		sc.Interval = time.Duration(c.Simulation.IntervalMS) * time.Millisecond
	}
	sc.ParallelThreshold = c.Simulation.ParallelThreshold
	sc.Workers = c.Simulation.Workers
	return sc
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// NewLogger builds the process logger described by c.Log.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
