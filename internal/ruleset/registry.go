package ruleset

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"ca-modeler/internal/core"
)

// Registry holds the ordered list of states. Ids are unique; positions are
// the display order used by positional removal and weight edits.
type Registry struct {
	states []State
}

// NewRegistry returns a registry holding copies of states.
func NewRegistry(states ...State) *Registry {
	return &Registry{states: append([]State(nil), states...)}
}

// Len reports the number of states.
func (r *Registry) Len() int { return len(r.states) }

// States returns a copy of the states in registry order.
func (r *Registry) States() []State {
	return append([]State(nil), r.states...)
}

// At returns the state at position i.
func (r *Registry) At(i int) (State, bool) {
	if i < 0 || i >= len(r.states) {
		return State{}, false
	}
	return r.states[i], true
}

// ByID finds a state by id.
func (r *Registry) ByID(id uint8) (State, bool) {
	for _, s := range r.states {
		if s.ID == id {
			return s, true
		}
	}
	return State{}, false
}

// Lookup resolves an exact state name to its id.
func (r *Registry) Lookup(name string) (uint8, bool) {
	for _, s := range r.states {
		if s.Name == name {
			return s.ID, true
		}
	}
	return 0, false
}

// NameOf returns the name for id, or "#<id>" when the id is unknown.
func (r *Registry) NameOf(id uint8) string {
	if s, ok := r.ByID(id); ok {
		return s.Name
	}
	return "#" + strconv.Itoa(int(id))
}

// NextID returns the smallest id not used by any state.
func (r *Registry) NextID() (uint8, error) {
	var used [256]bool
	for _, s := range r.states {
		used[s.ID] = true
	}
	for id := range used {
		if !used[id] {
			return uint8(id), nil
		}
	}
	return 0, ErrRegistryFull
}

// Add appends a new state with weight 1 under the smallest free id.
func (r *Registry) Add(name string, c color.RGBA) (State, error) {
	name = strings.TrimSpace(name)
	if !ValidName(name) {
		return State{}, fmt.Errorf("%w: %q", ErrInvalidStateName, name)
	}
	if _, dup := r.Lookup(name); dup {
		return State{}, fmt.Errorf("%w: %q", ErrDuplicateState, name)
	}
	id, err := r.NextID()
	if err != nil {
		return State{}, err
	}
	s := State{ID: id, Name: name, Color: c, Weight: 1}
	r.states = append(r.states, s)
	return s, nil
}

// Append inserts s verbatim. It rejects id or name collisions.
func (r *Registry) Append(s State) error {
	if !ValidName(s.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidStateName, s.Name)
	}
	if _, dup := r.Lookup(s.Name); dup {
		return fmt.Errorf("%w: %q", ErrDuplicateState, s.Name)
	}
	if _, taken := r.ByID(s.ID); taken {
		return fmt.Errorf("%w: id %d already used", ErrDuplicateState, s.ID)
	}
	r.states = append(r.states, s)
	return nil
}

// RemoveAt deletes the state at position i and returns it. Cascading into
// rules and grid is the caller's job.
func (r *Registry) RemoveAt(i int) (State, error) {
	if i < 0 || i >= len(r.states) {
		return State{}, fmt.Errorf("remove state %d: %w", i, ErrIndexOutOfRange)
	}
	s := r.states[i]
	r.states = append(r.states[:i], r.states[i+1:]...)
	return s, nil
}

// SetWeight parses input as the new weight of the state at position i.
// Empty or unparseable input becomes 0 and values are clamped to 0..255.
func (r *Registry) SetWeight(i int, input string) (uint8, error) {
	if i < 0 || i >= len(r.states) {
		return 0, fmt.Errorf("set weight %d: %w", i, ErrIndexOutOfRange)
	}
	w := ParseWeight(input)
	r.states[i].Weight = w
	return w, nil
}

// ParseWeight applies the lenient weight parsing used by editors and imports.
func ParseWeight(input string) uint8 {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0
	}
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// Weights returns the weighted-fill table in registry order.
func (r *Registry) Weights() []core.Weighted {
	out := make([]core.Weighted, len(r.states))
	for i, s := range r.states {
		out[i] = core.Weighted{ID: s.ID, Weight: s.Weight}
	}
	return out
}

// Palette maps ids to colours.
func (r *Registry) Palette() map[uint8]color.RGBA {
	p := make(map[uint8]color.RGBA, len(r.states))
	for _, s := range r.states {
		p[s.ID] = s.Color
	}
	return p
}

// Clear removes every state.
func (r *Registry) Clear() { r.states = r.states[:0] }

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry { return NewRegistry(r.states...) }
