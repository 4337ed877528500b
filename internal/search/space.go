package search

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Space describes the searchable dimensions of a configuration space: either
// a set of named dimensions under binary inclusion (subset selection) or an
// ordered list of Domains (hyperparameter search).
type Space struct {
	names   []string
	domains []Domain
}

// NewSubsetSpace creates a space where each named dimension is independently
// included or excluded.
func NewSubsetSpace(names ...string) (*Space, error) {
	if len(names) == 0 {
		return nil, WrapError(ErrEmptySearchSpace, "subset space")
	}
	return &Space{names: append([]string(nil), names...)}, nil
}

// NewLagSpace creates a subset space over the lagged predictors of an
// autoregressive design, naming dimension j "lag<j+1>".
func NewLagSpace(maxLag int) (*Space, error) {
	if maxLag < 1 {
		return nil, WrapError(ErrEmptySearchSpace, "lag space")
	}
	names := make([]string, maxLag)
	for i := range names {
		names[i] = fmt.Sprintf("lag%d", i+1)
	}
	return &Space{names: names}, nil
}

// NewParameterSpace creates a space whose dimensions are the given Domains.
func NewParameterSpace(domains ...Domain) (*Space, error) {
	if len(domains) == 0 {
		return nil, WrapError(ErrEmptySearchSpace, "parameter space")
	}
	names := make([]string, len(domains))
	for i, d := range domains {
		names[i] = d.Name()
	}
	return &Space{names: names, domains: append([]Domain(nil), domains...)}, nil
}

// Dimensions returns the number of declared dimensions.
func (s *Space) Dimensions() int { return len(s.names) }

// IsSubset reports whether the space is a binary-inclusion subset space.
func (s *Space) IsSubset() bool { return s.domains == nil }

// Names returns the dimension identifiers in declaration order.
func (s *Space) Names() []string {
	return append([]string(nil), s.names...)
}

// Domains returns the per-dimension domains of a parameter space, or nil for
// subset spaces.
func (s *Space) Domains() []Domain {
	return append([]Domain(nil), s.domains...)
}

// Full returns the all-included configuration of a subset space.
func (s *Space) Full() Configuration {
	include := make([]bool, len(s.names))
	for i := range include {
		include[i] = true
	}
	return Configuration{Include: include}
}

// RandomSubset draws a uniform random subset configuration with at least one
// dimension included.
func (s *Space) RandomSubset(rng *rand.Rand) Configuration {
	include := make([]bool, len(s.names))
	any := false
	for i := range include {
		include[i] = rng.Float64() < 0.5
		any = any || include[i]
	}
	if !any {
		include[rng.Intn(len(include))] = true
	}
	return Configuration{Include: include}
}

// RandomVector draws a uniform random position in [0,1]^n for a parameter
// space.
func (s *Space) RandomVector(rng *rand.Rand) Configuration {
	coords := make([]float64, len(s.names))
	for i := range coords {
		coords[i] = rng.Float64()
	}
	return Configuration{Coords: coords}
}

// Decode maps a parameter-space configuration's normalized coordinates to
// concrete values through each dimension's Domain.
func (s *Space) Decode(cfg Configuration) ([]float64, error) {
	if s.IsSubset() {
		return nil, NewError("decode requires a parameter space")
	}
	if err := cfg.Validate(s); err != nil {
		return nil, err
	}
	values := make([]float64, len(s.domains))
	for i, d := range s.domains {
		values[i] = d.Map(cfg.Coords[i])
	}
	return values, nil
}

// FromSelected reconstructs a subset configuration from a list of selected
// dimension indices.
func FromSelected(s *Space, selected []int) (Configuration, error) {
	if !s.IsSubset() {
		return Configuration{}, NewError("selected indices require a subset space")
	}
	if len(selected) == 0 {
		return Configuration{}, Invalidf("no dimensions selected")
	}
	include := make([]bool, s.Dimensions())
	for _, idx := range selected {
		if idx < 0 || idx >= len(include) {
			return Configuration{}, Invalidf("dimension index %d out of range [0,%d)", idx, len(include))
		}
		include[idx] = true
	}
	return Configuration{Include: include}, nil
}

// Configuration is one candidate point in a configuration space: an ordered,
// fixed-length vector over the space's dimensions. Exactly one of Include
// (subset spaces) and Coords (parameter spaces) is set.
type Configuration struct {
	// Include marks each dimension of a subset space as included.
	Include []bool
	// Coords holds normalized [0,1] coordinates for a parameter space.
	Coords []float64
}

// Clone returns a deep copy of the configuration.
func (c Configuration) Clone() Configuration {
	out := Configuration{}
	if c.Include != nil {
		out.Include = append([]bool(nil), c.Include...)
	}
	if c.Coords != nil {
		out.Coords = append([]float64(nil), c.Coords...)
	}
	return out
}

// Selected returns the indices of the included dimensions in increasing
// order.
func (c Configuration) Selected() []int {
	var out []int
	for i, in := range c.Include {
		if in {
			out = append(out, i)
		}
	}
	return out
}

// IncludedCount returns the number of included dimensions.
func (c Configuration) IncludedCount() int {
	n := 0
	for _, in := range c.Include {
		if in {
			n++
		}
	}
	return n
}

// Validate checks the configuration against the space it is scored in. An
// all-excluded subset configuration, an out-of-range coordinate, or a
// dimension-count mismatch all wrap ErrInvalidConfiguration.
func (c Configuration) Validate(s *Space) error {
	if s.IsSubset() {
		if c.Include == nil {
			return Invalidf("subset space requires an inclusion vector")
		}
		if len(c.Include) != s.Dimensions() {
			return Invalidf("configuration has %d dimensions, space declares %d", len(c.Include), s.Dimensions())
		}
		if c.IncludedCount() == 0 {
			return Invalidf("no dimensions included")
		}
		return nil
	}
	if c.Coords == nil {
		return Invalidf("parameter space requires a coordinate vector")
	}
	if len(c.Coords) != s.Dimensions() {
		return Invalidf("configuration has %d dimensions, space declares %d", len(c.Coords), s.Dimensions())
	}
	for i, u := range c.Coords {
		if u < 0 || u > 1 {
			return Invalidf("coordinate %d = %v outside [0,1]", i, u)
		}
	}
	return nil
}

// Key returns a stable identity string for caching scored configurations.
func (c Configuration) Key() string {
	var b strings.Builder
	if c.Include != nil {
		b.Grow(len(c.Include))
		for _, in := range c.Include {
			if in {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		return b.String()
	}
	for i, u := range c.Coords {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(u, 'g', -1, 64))
	}
	return b.String()
}
