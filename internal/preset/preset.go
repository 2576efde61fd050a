// Package preset maps named presets to fixed lists of logical table names.
package preset

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"db-sync/internal/kvstore"
)

const (
	// Custom selects a caller-supplied table list.
	Custom = "custom"
	// Default is used for unknown preset keys.
	Default = "development"

	CustomName = "Custom"

	keyPreset = "preset"
	keyTables = "tables"
)

// Preset is a named set of logical table names.
type Preset struct {
	Key         string   `mapstructure:"key" yaml:"key"`
	Name        string   `mapstructure:"name" yaml:"name"`
	Description string   `mapstructure:"description" yaml:"description,omitempty"`
	Tables      []string `mapstructure:"tables" yaml:"tables"`
}

// Builtins returns the presets that are always available.
func Builtins() []Preset {
	return []Preset{
		{
			Key:         "development",
			Name:        "Development",
			Description: "Full development environment sync",
			Tables: []string{
				"posts", "postmeta", "terms", "term_relationships", "term_taxonomy",
				"termmeta", "options", "widgets", "widget_areas", "users", "usermeta",
			},
		},
		{
			Key:         "content",
			Name:        "Content Only",
			Description: "Content and structure only",
			Tables:      []string{"posts", "postmeta", "terms", "term_relationships", "termmeta"},
		},
	}
}

// Catalogue holds the built-in presets plus configured ones.
type Catalogue struct {
	presets []Preset
}

// New builds a catalogue. Extra presets replace built-ins with the same key
// and are otherwise appended in order.
func New(extra []Preset) (*Catalogue, error) {
	c := &Catalogue{presets: Builtins()}
	for _, p := range extra {
		if p.Key == "" {
			return nil, fmt.Errorf("preset %q has no key", p.Name)
		}
		if p.Key == Custom {
			return nil, fmt.Errorf("preset key %q is reserved", Custom)
		}
		if len(p.Tables) == 0 {
			return nil, fmt.Errorf("preset %q has no tables", p.Key)
		}
		if p.Name == "" {
			p.Name = p.Key
		}
		if i := c.index(p.Key); i >= 0 {
			c.presets[i] = p
		} else {
			c.presets = append(c.presets, p)
		}
	}
	return c, nil
}

func (c *Catalogue) index(key string) int {
	return slices.IndexFunc(c.presets, func(p Preset) bool { return p.Key == key })
}

// List returns all presets in definition order.
func (c *Catalogue) List() []Preset {
	return slices.Clone(c.presets)
}

// Get returns the preset for key.
func (c *Catalogue) Get(key string) (Preset, bool) {
	if i := c.index(key); i >= 0 {
		return c.presets[i], true
	}
	return Preset{}, false
}

// Resolve returns the table list for key. Custom returns custom as given and
// unknown keys fall back to the default preset.
func (c *Catalogue) Resolve(key string, custom []string) []string {
	if key == Custom {
		return slices.Clone(custom)
	}
	if p, ok := c.Get(key); ok {
		return slices.Clone(p.Tables)
	}
	p, _ := c.Get(Default)
	return slices.Clone(p.Tables)
}

// DisplayName is the label used in file names: the preset name, or "Custom"
// for anything that is not a known preset.
func (c *Catalogue) DisplayName(key string) string {
	if p, ok := c.Get(key); ok {
		return p.Name
	}
	return CustomName
}

// Selection is the last preset and table list used for an export.
type Selection struct {
	Preset string
	Tables []string
}

// SaveSelection persists sel for the next export.
func SaveSelection(ctx context.Context, store kvstore.Store, sel Selection) error {
	if err := store.Set(ctx, keyPreset, sel.Preset); err != nil {
		return err
	}
	return kvstore.SetJSON(ctx, store, keyTables, sel.Tables)
}

// LoadSelection returns the saved selection. ok is false if none was saved.
func LoadSelection(ctx context.Context, store kvstore.Store) (sel Selection, ok bool, err error) {
	key, err := store.Get(ctx, keyPreset)
	if errors.Is(err, kvstore.ErrNotFound) {
		return Selection{}, false, nil
	}
	if err != nil {
		return Selection{}, false, err
	}
	sel.Preset = key
	if _, err := kvstore.GetJSON(ctx, store, keyTables, &sel.Tables); err != nil {
		return Selection{}, false, err
	}
	return sel, true, nil
}
