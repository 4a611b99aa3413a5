// Package likelihood turns kill-count inputs into a "rolls consumed" ratio
// against the catalogue drop rates and classifies the result into a luck
// band. All functions are pure; "no data" is a defined result, never an
// error.
package likelihood

import (
	"math"
	"strconv"
	"strings"

	"pet-progress-api/internal/catalog"
)

type Band int

const (
	BandNone Band = iota
	BandLucky
	BandNeutral
	BandUnlucky
	BandVeryUnlucky
)

func (b Band) String() string {
	switch b {
	case BandLucky:
		return "lucky"
	case BandNeutral:
		return "neutral"
	case BandUnlucky:
		return "unlucky"
	case BandVeryUnlucky:
		return "very-unlucky"
	default:
		return ""
	}
}

// Color returns the display color for a band; empty for no data.
func (b Band) Color() string {
	switch b {
	case BandLucky:
		return "#9acfa3"
	case BandNeutral:
		return "#ffffff"
	case BandUnlucky:
		return "#ffb300"
	case BandVeryUnlucky:
		return "#e74c3c"
	default:
		return ""
	}
}

// BandFor maps a rolls-consumed ratio to its band.
func BandFor(x float64) Band {
	switch {
	case x < 1.25:
		return BandLucky
	case x < 2:
		return BandNeutral
	case x < 3:
		return BandUnlucky
	default:
		return BandVeryUnlucky
	}
}

// Format renders a ratio as "<x>x": two decimals below 10, rounded integer
// from 10 up.
func Format(x float64) string {
	if x < 10 {
		return strconv.FormatFloat(x, 'f', 2, 64) + "x"
	}
	return strconv.Itoa(int(math.Round(x))) + "x"
}

// Key identifies one kill-count input: a pet plus one of its acquisition
// channels. Simple pets use the empty channel name.
type Key struct {
	Pet     string
	Channel string
}

// Inputs is the consolidated set of user-entered kill counts. Values are
// free text and stay display-only until parsed for rate math.
type Inputs map[Key]string

func (in Inputs) Set(pet, channel, value string) {
	in[Key{Pet: pet, Channel: channel}] = value
}

func (in Inputs) Get(pet, channel string) string {
	return in[Key{Pet: pet, Channel: channel}]
}

// Pets returns the set of pets with any recorded input.
func (in Inputs) Pets() []string {
	seen := make(map[string]bool)
	var out []string
	for k := range in {
		if !seen[k.Pet] {
			seen[k.Pet] = true
			out = append(out, k.Pet)
		}
	}
	return out
}

func (in Inputs) Clone() Inputs {
	out := make(Inputs, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Result is derived state, recomputed from inputs and never persisted.
type Result struct {
	Pet     string  `json:"pet"`
	Ratio   float64 `json:"ratio,omitempty"`
	Display string  `json:"display,omitempty"`
	Band    string  `json:"band,omitempty"`
	Color   string  `json:"color,omitempty"`
	HasData bool    `json:"has_data"`
}

type Calculator struct {
	cat *catalog.Catalog
}

func New(cat *catalog.Catalog) *Calculator {
	return &Calculator{cat: cat}
}

// ForPet accumulates kc/rate across every channel of a pet that has both a
// positive kill count and a positive drop rate. A channel with empty or
// non-numeric input contributes nothing; if no channel contributes, the
// result is empty.
func (c *Calculator) ForPet(pet string, in Inputs) Result {
	var total float64
	contributed := false
	for _, ch := range c.cat.Channels(pet) {
		kc, ok := parseKC(in.Get(pet, ch.Name))
		if !ok {
			continue
		}
		rate, ok := c.cat.Rate(ch.Variant)
		if !ok || rate <= 0 {
			continue
		}
		total += kc / rate
		contributed = true
	}
	if !contributed {
		return Result{Pet: pet}
	}
	b := BandFor(total)
	return Result{
		Pet:     pet,
		Ratio:   total,
		Display: Format(total),
		Band:    b.String(),
		Color:   b.Color(),
		HasData: true,
	}
}

// Batch computes results for every pet with any recorded input.
func (c *Calculator) Batch(in Inputs) map[string]Result {
	out := make(map[string]Result)
	for _, pet := range in.Pets() {
		out[pet] = c.ForPet(pet, in)
	}
	return out
}

func parseKC(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
