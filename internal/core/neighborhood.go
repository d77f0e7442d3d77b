package core

import (
	"fmt"
	"strings"
)

// Neighborhood selects the fixed offset set used to count neighbours.
type Neighborhood uint8

const (
	// VonNeumann counts the four orthogonal cells.
	VonNeumann Neighborhood = iota
	// Moore counts the eight cells at Chebyshev distance 1.
	Moore
	// ExtendedMoore counts every cell of the surrounding 5x5 square.
	ExtendedMoore
)

// Neighborhoods lists every supported topology in display order.
var Neighborhoods = []Neighborhood{VonNeumann, Moore, ExtendedMoore}

// Offset is a (row, column) displacement from the centre cell.
type Offset struct {
	DR, DC int
}

var vonNeumannOffsets = []Offset{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
}

var mooreOffsets = []Offset{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

var extendedMooreOffsets = append(append([]Offset(nil), mooreOffsets...),
	Offset{-2, -2}, Offset{-2, -1}, Offset{-2, 0}, Offset{-2, 1}, Offset{-2, 2},
	Offset{-1, -2}, Offset{-1, 2},
	Offset{0, -2}, Offset{0, 2},
	Offset{1, -2}, Offset{1, 2},
	Offset{2, -2}, Offset{2, -1}, Offset{2, 0}, Offset{2, 1}, Offset{2, 2},
)

// Offsets returns the displacement list for n. Callers must not modify it.
func (n Neighborhood) Offsets() []Offset {
	switch n {
	case VonNeumann:
		return vonNeumannOffsets
	case ExtendedMoore:
		return extendedMooreOffsets
	default:
		return mooreOffsets
	}
}

// String returns the identifier used in grid files.
func (n Neighborhood) String() string {
	switch n {
	case VonNeumann:
		return "VonNeumann"
	case Moore:
		return "Moore"
	case ExtendedMoore:
		return "ExtendedMoore"
	default:
		return fmt.Sprintf("Neighborhood(%d)", uint8(n))
	}
}

// Label is the human readable name including the neighbour count.
func (n Neighborhood) Label() string {
	return fmt.Sprintf("%s (%d)", strings.Join(splitCamel(n.String()), " "), len(n.Offsets()))
}

// Next cycles through the supported neighbourhoods.
func (n Neighborhood) Next() Neighborhood {
	return Neighborhoods[(int(n)+1)%len(Neighborhoods)]
}

// ParseNeighborhood accepts the identifiers produced by String as well as the
// lower-case and dashed spellings used on the command line.
func ParseNeighborhood(s string) (Neighborhood, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.TrimSpace(s)))
	switch key {
	case "vonneumann", "vn", "4":
		return VonNeumann, nil
	case "moore", "8":
		return Moore, nil
	case "extendedmoore", "extended", "24":
		return ExtendedMoore, nil
	}
	return Moore, fmt.Errorf("unknown neighborhood %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (n Neighborhood) MarshalText() ([]byte, error) {
	if int(n) >= len(Neighborhoods) {
		return nil, fmt.Errorf("invalid neighborhood %d", uint8(n))
	}
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Neighborhood) UnmarshalText(b []byte) error {
	parsed, err := ParseNeighborhood(string(b))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i := 1; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}
