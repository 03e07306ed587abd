package unit

import (
	"errors"
	"fmt"
)

// ErrUnitNotFound is returned when a lookup key matches no template ID or
// alias in the catalog.
var ErrUnitNotFound = errors.New("unit not found")

// Catalog holds every loaded unit template and resolves lookup keys.
// It is immutable after construction and safe for concurrent use.
type Catalog struct {
	templates []*Template
	byID      map[string]*Template
	byAlias   map[string]*Template
}

// NewCatalog builds a catalog from templates, indexing IDs and aliases.
//
// Precondition: templates must not contain nil entries.
// Postcondition: Returns an error if any template fails validation, if two
// templates share an ID, if two share an alias, or if an alias collides
// with any ID.
func NewCatalog(templates []*Template) (*Catalog, error) {
	c := &Catalog{
		templates: templates,
		byID:      make(map[string]*Template, len(templates)),
		byAlias:   make(map[string]*Template),
	}
	for _, tmpl := range templates {
		if err := tmpl.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.byID[tmpl.ID]; exists {
			return nil, fmt.Errorf("duplicate unit id %q", tmpl.ID)
		}
		c.byID[tmpl.ID] = tmpl
	}
	for _, tmpl := range templates {
		for _, alias := range tmpl.Aliases {
			if _, exists := c.byID[alias]; exists {
				return nil, fmt.Errorf("unit %q: alias %q collides with a unit id", tmpl.ID, alias)
			}
			if other, exists := c.byAlias[alias]; exists {
				return nil, fmt.Errorf("unit %q: alias %q already belongs to %q", tmpl.ID, alias, other.ID)
			}
			c.byAlias[alias] = tmpl
		}
	}
	return c, nil
}

// Len returns the number of templates in the catalog.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Templates returns all templates in load order. Callers must not modify
// the returned slice or its elements.
func (c *Catalog) Templates() []*Template {
	return c.templates
}

// Lookup resolves key to a template, checking IDs before aliases.
func (c *Catalog) Lookup(key string) (*Template, bool) {
	if tmpl, ok := c.byID[key]; ok {
		return tmpl, true
	}
	tmpl, ok := c.byAlias[key]
	return tmpl, ok
}

// Spawn creates a live unit from the template key resolves to, applying
// flags and then the optional starting health. A nil health leaves the unit
// at its flag-adjusted maximum.
//
// Postcondition: Returns ErrUnitNotFound (wrapped) if key resolves to no
// template.
func (c *Catalog) Spawn(key string, health *float64, flags Flags) (*Unit, error) {
	tmpl, ok := c.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("unit %q: %w", key, ErrUnitNotFound)
	}
	u := NewUnit(tmpl, flags)
	if health != nil {
		u.Health = *health
	}
	return u, nil
}
