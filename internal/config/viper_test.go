package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvironment(t *testing.T) {
	t.Setenv("RULECA_GRID_WIDTH", "120")
	t.Setenv("RULECA_SIMULATION_PRESET", "wireworld")
	t.Setenv("RULECA_LOG_FORMAT", "json")

	c := Default()
	require.NoError(t, c.Apply(NewViper()))
	assert.Equal(t, 120, c.Grid.Width)
	assert.Equal(t, Default().Grid.Height, c.Grid.Height)
	assert.Equal(t, "wireworld", c.Simulation.Preset)
	assert.Equal(t, "json", c.Log.Format)
}

func TestApplyOnlyChangedFlags(t *testing.T) {
	fs := pflag.NewFlagSet("ruleca", pflag.ContinueOnError)
	fs.Int("width", 999, "")
	fs.Int64("seed", 0, "")
	require.NoError(t, fs.Parse([]string{"--seed", "77"}))

	v := NewViper()
	require.NoError(t, v.BindPFlag("grid.width", fs.Lookup("width")))
	require.NoError(t, v.BindPFlag("simulation.seed", fs.Lookup("seed")))

	c := Default()
	require.NoError(t, c.Apply(v))
	assert.Equal(t, Default().Grid.Width, c.Grid.Width)
	assert.Equal(t, int64(77), c.Simulation.Seed)
}

func TestApplyValidates(t *testing.T) {
	t.Setenv("RULECA_GRID_NEIGHBORHOOD", "hex")
	c := Default()
	assert.Error(t, c.Apply(NewViper()))
}
