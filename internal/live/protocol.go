package live

import (
	"fmt"
	"image/color"

	"ca-modeler/internal/session"
)

// Message types exchanged over the websocket.
const (
	TypeFrame  = "FRAME"
	TypeError  = "ERROR"
	TypeStep   = "STEP"
	TypeToggle = "TOGGLE"
	TypeReset  = "RESET"
	TypePaint  = "PAINT"
	TypeSpeed  = "SPEED"
	TypeSelect = "SELECT"
	TypeNbhd   = "NEIGHBORHOOD"
)

// Command is a client request. Fields beyond Type are used by the command
// that needs them.
type Command struct {
	Type  string `json:"type"`
	Row   int    `json:"row,omitempty"`
	Col   int    `json:"col,omitempty"`
	State *uint8 `json:"state,omitempty"`
	Speed int    `json:"speed,omitempty"`
	Seed  int64  `json:"seed,omitempty"`
	Name  string `json:"neighborhood,omitempty"`
}

// StateInfo describes one state for client-side colouring.
type StateInfo struct {
	ID    uint8  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Cells int    `json:"cells"`
}

// Frame is the full grid snapshot pushed to clients.
type Frame struct {
	Type         string      `json:"type"`
	Model        string      `json:"model"`
	Generation   int         `json:"generation"`
	Changed      int         `json:"changed"`
	Running      bool        `json:"running"`
	IntervalMS   int64       `json:"interval_ms"`
	Neighborhood string      `json:"neighborhood"`
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	Cells        []int       `json:"cells"`
	States       []StateInfo `json:"states"`
	Paint        uint8       `json:"paint"`
}

// ErrorMsg reports a rejected command to the client that sent it.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func snapshot(s *session.Session) Frame {
	size := s.Size()
	raw := s.Cells()
	cells := make([]int, len(raw))
	for i, v := range raw {
		cells[i] = int(v)
	}
	census := s.Census()
	colors := make(map[uint8]color.RGBA, len(census))
	for _, st := range s.States() {
		colors[st.ID] = st.Color
	}
	states := make([]StateInfo, 0, len(census))
	for _, c := range census {
		col, ok := colors[c.ID]
		if !ok {
			col = color.RGBA{R: 255, A: 255}
		}
		states = append(states, StateInfo{
			ID:    c.ID,
			Name:  c.Name,
			Color: fmt.Sprintf("#%02x%02x%02x", col.R, col.G, col.B),
			Cells: c.Cells,
		})
	}
	return Frame{
		Type:         TypeFrame,
		Model:        s.Name(),
		Generation:   s.Generation(),
		Changed:      s.LastChanged(),
		Running:      s.Running(),
		IntervalMS:   s.Interval().Milliseconds(),
		Neighborhood: s.Grid().Neighborhood.String(),
		Width:        size.W,
		Height:       size.H,
		Cells:        cells,
		States:       states,
		Paint:        s.PaintState(),
	}
}
