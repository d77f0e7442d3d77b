package session

import (
	"strconv"
	"time"

	"ca-modeler/internal/core"
	"ca-modeler/internal/presets"
	"ca-modeler/internal/sims/rulebased"
)

const (
	DefaultWidth    = 50
	DefaultHeight   = 40
	DefaultInterval = 200 * time.Millisecond
)

// Config controls a new session.
type Config struct {
	Width        int
	Height       int
	Neighborhood core.Neighborhood
	// Seed drives both the initial fill and the probability gates. Zero
	// picks a random seed.
	Seed     int64
	Preset   string
	Interval time.Duration

	ParallelThreshold int
	Workers           int
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		Neighborhood:      core.Moore,
		Preset:            presets.Default,
		Interval:          DefaultInterval,
		ParallelThreshold: rulebased.DefaultParallelThreshold,
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["neighborhood"]; ok {
		if parsed, err := core.ParseNeighborhood(v); err == nil {
			c.Neighborhood = parsed
		}
	}
	if v, ok := cfg["preset"]; ok {
		if _, known := presets.Lookup(v); known {
			c.Preset = v
		}
	}
	if v, ok := cfg["interval_ms"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Interval = time.Duration(parsed) * time.Millisecond
		}
	}
	if v, ok := cfg["parallel_threshold"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.ParallelThreshold = parsed
		}
	}
	if v, ok := cfg["workers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Workers = parsed
		}
	}
	return c
}

// SpeedToInterval maps a 0..100 speed slider to the delay between
// generations: 0 is slowest (1s), 100 is fastest (10ms).
func SpeedToInterval(speed float64) time.Duration {
	speed = max(0, min(100, speed))
	ms := 10 + (100-speed)*9.9
	return time.Duration(ms * float64(time.Millisecond))
}

// IntervalToSpeed is the inverse of SpeedToInterval, clamped to 0..100.
func IntervalToSpeed(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	return max(0, min(100, 100-(ms-10)/9.9))
}
