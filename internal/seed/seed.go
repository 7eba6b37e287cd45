// Package seed holds the starter workout catalog.
package seed

import (
	_ "embed"
	"fmt"

	"liftlog/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed starter.yaml
var starterYAML []byte

// Starter decodes the embedded starter catalog.
func Starter() ([]models.WorkoutTemplate, error) {
	return Parse(starterYAML)
}

// Parse decodes a YAML list of templates and checks each one.
func Parse(data []byte) ([]models.WorkoutTemplate, error) {
	var templates []models.WorkoutTemplate
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("decode starter catalog: %w", err)
	}

	seen := make(map[string]bool, len(templates))
	for i, t := range templates {
		switch {
		case t.ID == "":
			return nil, fmt.Errorf("starter template %d: missing id", i)
		case seen[t.ID]:
			return nil, fmt.Errorf("starter template %q: duplicate id", t.ID)
		case t.Title == "":
			return nil, fmt.Errorf("starter template %q: missing title", t.ID)
		case !t.TrackingType.Valid():
			return nil, fmt.Errorf("starter template %q: unknown tracking type %q", t.ID, t.TrackingType)
		}
		seen[t.ID] = true
	}
	return templates, nil
}
