package ruleset

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownState is returned when a name or id is not in the registry.
	ErrUnknownState = errors.New("unknown state")
	// ErrDuplicateState is returned when adding a name that already exists.
	ErrDuplicateState = errors.New("duplicate state name")
	// ErrInvalidStateName rejects names the text format cannot round-trip.
	ErrInvalidStateName = errors.New("invalid state name")
	// ErrRegistryFull is returned once all 256 ids are taken.
	ErrRegistryFull = errors.New("state registry full")
	// ErrIndexOutOfRange is returned by positional operations.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrCombinerCount flags rules whose combiners do not join their conditions.
	ErrCombinerCount = errors.New("combiner count must be one less than condition count")
	// ErrProbability flags probabilities outside [0,1].
	ErrProbability = errors.New("probability must be within [0,1]")
)

// ValidationError collects every problem found while building a rule from
// user input.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid rule: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(msg string) {
	e.Problems = append(e.Problems, msg)
}
