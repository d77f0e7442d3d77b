package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const gridSchemaURL = "mem://ca-modeler/grid.schema.json"

const gridSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["width", "height", "cells", "neighborhood"],
  "properties": {
    "width": {"type": "integer", "minimum": 1, "maximum": 1000},
    "height": {"type": "integer", "minimum": 1, "maximum": 1000},
    "neighborhood": {"enum": ["VonNeumann", "Moore", "ExtendedMoore"]},
    "cells": {
      "type": "array",
      "items": {
        "type": "array",
        "items": {"type": "integer", "minimum": 0, "maximum": 255}
      }
    }
  }
}`

var gridSchema = jsonschema.MustCompileString(gridSchemaURL, gridSchemaJSON)

// validateGridJSON checks raw against the grid file schema.
func validateGridJSON(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode grid json: %w", err)
	}
	if err := gridSchema.Validate(v); err != nil {
		return fmt.Errorf("grid file: %w", err)
	}
	return nil
}
