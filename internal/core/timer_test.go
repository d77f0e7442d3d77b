package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedStepPacesGenerations(t *testing.T) {
	clock := time.Unix(0, 0)
	fs := NewFixedStep(100 * time.Millisecond)
	fs.now = func() time.Time { return clock }

	assert.True(t, fs.ShouldStep(), "first call fires immediately")
	clock = clock.Add(50 * time.Millisecond)
	assert.False(t, fs.ShouldStep())
	clock = clock.Add(60 * time.Millisecond)
	assert.True(t, fs.ShouldStep())

	clock = clock.Add(time.Second)
	assert.True(t, fs.ShouldStep())
	assert.False(t, fs.ShouldStep(), "backlog is discarded")
}

func TestFixedStepNonPositiveInterval(t *testing.T) {
	fs := NewFixedStep(0)
	assert.Equal(t, time.Second/60, fs.Interval())
}
