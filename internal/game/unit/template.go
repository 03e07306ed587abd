// Package unit provides unit type definitions, the unit catalog, and live
// combat unit instances.
package unit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ability tags recognised by the combat engine. Templates may carry other
// tags (dash, heal, ...); the engine ignores them.
const (
	AbilityFreezeArea = "freeze_area"
	AbilityConvert    = "convert"
)

// Template defines a unit type loaded from the catalog source. Templates
// are immutable once loaded; live units are spawned from them.
type Template struct {
	// ID is the stable identifier requests refer to.
	ID string `yaml:"id" json:"id"`
	// Name is the display name, opaque to combat math.
	Name string `yaml:"display_name" json:"display_name"`
	// Aliases are alternate lookup keys (shorthand accepted in requests).
	Aliases []string `yaml:"aliases" json:"aliases"`
	// Hidden marks units that clients may want to omit from pick lists.
	Hidden bool `yaml:"hidden" json:"hidden"`
	// Health, Attack and Defence are the base combat stats.
	Health  float64 `yaml:"health" json:"health"`
	Attack  float64 `yaml:"attack" json:"attack"`
	Defence float64 `yaml:"defence" json:"defence"`
	// Range is the attack range in tiles; above 1 the unit is ranged.
	Range int `yaml:"range" json:"range"`
	// Abilities holds the unit's ability tags.
	Abilities []string `yaml:"abilities" json:"abilities"`
}

// HasAbility reports whether the template carries the given ability tag.
func (t *Template) HasAbility(tag string) bool {
	for _, a := range t.Abilities {
		if a == tag {
			return true
		}
	}
	return false
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Health > 0,
// Attack >= 0, Defence >= 0, Range >= 1, and no alias or ability is empty;
// returns an error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("unit template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("unit template %q: display_name must not be empty", t.ID)
	}
	if t.Health <= 0 {
		return fmt.Errorf("unit template %q: health must be > 0, got %g", t.ID, t.Health)
	}
	if t.Attack < 0 {
		return fmt.Errorf("unit template %q: attack must be >= 0, got %g", t.ID, t.Attack)
	}
	if t.Defence < 0 {
		return fmt.Errorf("unit template %q: defence must be >= 0, got %g", t.ID, t.Defence)
	}
	if t.Range < 1 {
		return fmt.Errorf("unit template %q: range must be >= 1, got %d", t.ID, t.Range)
	}
	for i, alias := range t.Aliases {
		if alias == "" {
			return fmt.Errorf("unit template %q: alias[%d] must not be empty", t.ID, i)
		}
	}
	for i, ability := range t.Abilities {
		if ability == "" {
			return fmt.Errorf("unit template %q: ability[%d] must not be empty", t.ID, i)
		}
	}
	return nil
}

// LoadTemplateFromBytes parses a single unit template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed
// templates, sorted by file name so the load order is stable.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading unit dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
