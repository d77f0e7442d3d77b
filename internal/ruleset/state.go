package ruleset

import (
	"fmt"
	"image/color"
	"strings"
)

// State is a named, coloured category a cell can occupy.
type State struct {
	ID     uint8
	Name   string
	Color  color.RGBA
	Weight uint8
}

// RGB builds an opaque colour.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func (s State) String() string {
	return fmt.Sprintf("%s#%d", s.Name, s.ID)
}

// ValidName reports whether name can be written to and read back from the
// rule text format: non-blank, free of quotes and parentheses, and without
// surrounding whitespace.
func ValidName(name string) bool {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(name) != name {
		return false
	}
	return !strings.ContainsAny(name, "'()")
}
