// Package catalog holds the static pet reference data: the closed catalogue
// of pets grouped into categories, TempleOSRS collection-log item ids, the
// drop-rate table (keyed by variant name for pets with several acquisition
// methods), and the average hours-per-pet figures.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var embedded []byte

// Channel is one acquisition method for a pet. Simple pets have a single
// unnamed channel whose variant is the pet's own name; pets with split drop
// tables list two or four named channels. Boss, when set, is the hiscores
// activity name whose kill count feeds this channel.
type Channel struct {
	Name    string `yaml:"name" json:"name"`
	Variant string `yaml:"variant" json:"variant"`
	Boss    string `yaml:"boss,omitempty" json:"boss,omitempty"`
}

type Pet struct {
	Name     string    `yaml:"-" json:"name"`
	ItemID   int       `yaml:"item_id" json:"item_id"`
	Hours    float64   `yaml:"hours,omitempty" json:"hours,omitempty"`
	Boss     string    `yaml:"boss,omitempty" json:"boss,omitempty"`
	Log      string    `yaml:"log,omitempty" json:"log,omitempty"`
	Channels []Channel `yaml:"channels,omitempty" json:"channels,omitempty"`
	Category string    `yaml:"-" json:"category"`
	Bonus    bool      `yaml:"-" json:"bonus,omitempty"`
}

// DropRate is the expected number of qualifying kills per drop. Main and
// Iron are the published odds strings for the two account types; they are
// informational only and no calculation reads them.
type DropRate struct {
	Rate float64 `yaml:"rate" json:"rate"`
	Main string  `yaml:"main,omitempty" json:"main,omitempty"`
	Iron string  `yaml:"iron,omitempty" json:"iron,omitempty"`
}

type Category struct {
	Name  string   `yaml:"name" json:"name"`
	Bonus bool     `yaml:"bonus,omitempty" json:"bonus,omitempty"`
	Pets  []string `yaml:"pets" json:"pets"`
}

type file struct {
	Categories []Category          `yaml:"categories"`
	Pets       map[string]Pet      `yaml:"pets"`
	Rates      map[string]DropRate `yaml:"rates"`
}

type Catalog struct {
	categories []Category
	pets       map[string]Pet
	byItemID   map[int]string
	rates      map[string]DropRate
	order      []string // non-bonus pet names in category order
	totalHours float64
}

// Load reads a catalogue from path, or the embedded default when path is
// empty.
func Load(path string) (*Catalog, error) {
	data := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading catalogue: %w", err)
		}
		data = b
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalogue: %w", err)
	}
	return build(f)
}

func build(f file) (*Catalog, error) {
	c := &Catalog{
		categories: f.Categories,
		pets:       make(map[string]Pet, len(f.Pets)),
		byItemID:   make(map[int]string, len(f.Pets)),
		rates:      f.Rates,
	}

	for _, cat := range f.Categories {
		for _, name := range cat.Pets {
			p, ok := f.Pets[name]
			if !ok {
				return nil, fmt.Errorf("catalogue: category %q lists unknown pet %q", cat.Name, name)
			}
			p.Name = name
			p.Category = cat.Name
			p.Bonus = cat.Bonus
			c.pets[name] = p
			if p.ItemID != 0 {
				c.byItemID[p.ItemID] = name
			}
			if !cat.Bonus {
				c.order = append(c.order, name)
				c.totalHours += p.Hours
			}
		}
	}

	for name, p := range c.pets {
		for _, ch := range p.Channels {
			if _, ok := c.rates[ch.Variant]; !ok {
				return nil, fmt.Errorf("catalogue: pet %q channel %q names unknown variant %q", name, ch.Name, ch.Variant)
			}
		}
	}

	return c, nil
}

func (c *Catalog) Lookup(name string) (Pet, bool) {
	p, ok := c.pets[name]
	return p, ok
}

func (c *Catalog) Known(name string) bool {
	_, ok := c.pets[name]
	return ok
}

// IsBonus reports whether name is a cosmetic (dust/transmog) entry that must
// never affect pet counts or hours.
func (c *Catalog) IsBonus(name string) bool {
	p, ok := c.pets[name]
	return ok && p.Bonus
}

// Channels returns the acquisition channels for a pet. A pet without an
// explicit channel list gets a single unnamed channel keyed by its own name.
func (c *Catalog) Channels(name string) []Channel {
	p, ok := c.pets[name]
	if !ok {
		return nil
	}
	if len(p.Channels) > 0 {
		return p.Channels
	}
	return []Channel{{Name: "", Variant: name, Boss: p.Boss}}
}

// Rate returns the effective drop rate for a variant name.
func (c *Catalog) Rate(variant string) (float64, bool) {
	r, ok := c.rates[variant]
	if !ok {
		return 0, false
	}
	return r.Rate, true
}

func (c *Catalog) DropRate(variant string) (DropRate, bool) {
	r, ok := c.rates[variant]
	return r, ok
}

// HoursFor returns the average hours invested per obtained pet, 0 when the
// pet is unknown or cosmetic.
func (c *Catalog) HoursFor(name string) float64 {
	p, ok := c.pets[name]
	if !ok || p.Bonus {
		return 0
	}
	return p.Hours
}

func (c *Catalog) PetByItemID(id int) (string, bool) {
	name, ok := c.byItemID[id]
	return name, ok
}

// PetNames returns the non-bonus pet names in display order.
func (c *Catalog) PetNames() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// BonusPets returns the cosmetic entries (dusts and transmogs).
func (c *Catalog) BonusPets() []Pet {
	var out []Pet
	for _, cat := range c.categories {
		if !cat.Bonus {
			continue
		}
		for _, name := range cat.Pets {
			out = append(out, c.pets[name])
		}
	}
	return out
}

func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// TotalPets is the denominator of the pet-count ring.
func (c *Catalog) TotalPets() int { return len(c.order) }

// TotalHours is the denominator of the pet-hours ring.
func (c *Catalog) TotalHours() float64 { return c.totalHours }
