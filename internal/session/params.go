package session

import (
	"strconv"

	"ca-modeler/internal/core"
)

// Parameters describes the session for the HUD and the CLI summary.
func (s *Session) Parameters() core.ParameterSnapshot {
	groups := []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				intParam("w", "Width", s.grid.W),
				intParam("h", "Height", s.grid.H),
				{Key: "neighborhood", Label: "Neighborhood", Type: core.ParamTypeChoice, Value: s.grid.Neighborhood.String()},
			},
		},
		{
			Name: "Simulation",
			Params: []core.Parameter{
				{Key: "model", Label: "Model", Type: core.ParamTypeChoice, Value: s.name},
				intParam("generation", "Generation", s.generation),
				intParam("changed", "Changed cells", s.lastChanged),
				intParam("interval_ms", "Interval (ms)", int(s.interval.Milliseconds())),
				intParam("speed", "Speed", int(IntervalToSpeed(s.interval)+0.5)),
				{Key: "running", Label: "Running", Type: core.ParamTypeBool, Value: strconv.FormatBool(s.running)},
			},
		},
		{
			Name:    "Model",
			Summary: strconv.Itoa(s.reg.Len()) + " states, " + strconv.Itoa(s.rules.Len()) + " rules",
			Params: []core.Parameter{
				{Key: "paint", Label: "Paint state", Type: core.ParamTypeChoice, Value: s.reg.NameOf(s.paint)},
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the values the HUD may adjust.
func (s *Session) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "speed", Label: "Speed", Type: core.ParamTypeInt, Step: 5, Min: 0, Max: 100, HasMin: true, HasMax: true},
		{Key: "w", Label: "Width", Type: core.ParamTypeInt, Step: 10, Min: 1, Max: core.MaxDimension, HasMin: true, HasMax: true},
		{Key: "h", Label: "Height", Type: core.ParamTypeInt, Step: 10, Min: 1, Max: core.MaxDimension, HasMin: true, HasMax: true},
	}
}

// SetIntParameter applies a HUD adjustment. Width and height changes rebuild
// the grid.
func (s *Session) SetIntParameter(key string, value int) bool {
	for _, ctrl := range s.ParameterControls() {
		if ctrl.Key != key {
			continue
		}
		v := int(ctrl.Clamp(float64(value)))
		switch key {
		case "speed":
			s.SetSpeed(float64(v))
		case "w":
			s.Resize(v, s.grid.H)
		case "h":
			s.Resize(s.grid.W, v)
		}
		return true
	}
	return false
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}
