package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/patchplan/pkg/deposit"
	"github.com/matzehuels/patchplan/pkg/render"
	"github.com/matzehuels/patchplan/pkg/world"
)

// Scene builds the render scene of a result. obstacles should be the ones
// still standing after the run.
func (r *Result) Scene(field *deposit.Field, obstacles []world.Obstacle, glyphs map[string]rune) render.Scene {
	return render.Scene{
		Bounds:    r.Selection,
		Field:     field,
		Glyphs:    glyphs,
		Obstacles: obstacles,
		Markers:   r.Markers,
	}
}

// Render generates output artifacts in the requested formats.
func Render(r *Result, scene render.Scene, formats []string) (map[string][]byte, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		var data []byte
		var err error

		switch format {
		case FormatText:
			data = render.Text(scene)
		case FormatJSON:
			data, err = json.MarshalIndent(r, "", "  ")
		case FormatSVG:
			data, err = render.RenderSVG(render.ToDOT(scene))
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
