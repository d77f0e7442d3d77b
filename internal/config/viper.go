package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. RULECA_GRID_WIDTH.
const EnvPrefix = "RULECA"

// NewViper returns a viper instance reading RULECA_* environment variables
// for the dotted config keys.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Apply overrides c with every key explicitly set in v (bound flag changed
// or environment variable present), then validates the result.
func (c *Config) Apply(v *viper.Viper) error {
	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setInt("grid.width", &c.Grid.Width)
	setInt("grid.height", &c.Grid.Height)
	setString("grid.neighborhood", &c.Grid.Neighborhood)
	setString("simulation.preset", &c.Simulation.Preset)
	setString("simulation.rules", &c.Simulation.Rules)
	setInt("simulation.interval_ms", &c.Simulation.IntervalMS)
	setInt("simulation.parallel_threshold", &c.Simulation.ParallelThreshold)
	setInt("simulation.workers", &c.Simulation.Workers)
	if v.IsSet("simulation.seed") {
		c.Simulation.Seed = v.GetInt64("simulation.seed")
	}
	setInt("render.scale", &c.Render.Scale)
	setString("history.db", &c.History.DB)
	setString("log.level", &c.Log.Level)
	setString("log.format", &c.Log.Format)
	return c.Validate()
}
