package search

import (
	"fmt"
	"math"
)

// Domain describes the legal values of one searchable dimension and how a
// normalized coordinate in [0,1] is rescaled onto them. Domains are immutable
// once a search begins.
type Domain interface {
	// Name returns the dimension's identifier.
	Name() string

	// Map rescales a normalized coordinate in [0,1] to a concrete value.
	Map(u float64) float64

	// Normalize returns a coordinate that Map resolves to the i-th value.
	Normalize(i int) float64

	// Values returns the ordered candidate values of the domain.
	Values() []float64
}

// Categorical is an ordered discrete set of values. The normalized coordinate
// selects a value by uniform binning.
type Categorical struct {
	name   string
	values []float64
}

// NewCategorical creates a categorical domain over the given values.
func NewCategorical(name string, values ...float64) *Categorical {
	if len(values) == 0 {
		panic(fmt.Sprintf("categorical domain %q must have at least one value", name))
	}
	return &Categorical{
		name:   name,
		values: append([]float64(nil), values...),
	}
}

// Name returns the dimension's identifier.
func (d *Categorical) Name() string { return d.name }

// Map selects the value whose bin contains u.
func (d *Categorical) Map(u float64) float64 {
	return d.values[binIndex(u, len(d.values))]
}

// Normalize returns the center of the i-th bin.
func (d *Categorical) Normalize(i int) float64 {
	return (float64(i) + 0.5) / float64(len(d.values))
}

// Values returns the ordered candidate values.
func (d *Categorical) Values() []float64 {
	return append([]float64(nil), d.values...)
}

// DiscreteLinear is an inclusive integer range scaled linearly, suitable for
// hyperparameters like tree depth where candidates are evenly spaced.
type DiscreteLinear struct {
	name string
	min  int
	max  int
}

// NewDiscreteLinear creates an integer domain covering [min, max].
func NewDiscreteLinear(name string, min, max int) *DiscreteLinear {
	if max < min {
		panic(fmt.Sprintf("linear domain %q: max %d < min %d", name, max, min))
	}
	return &DiscreteLinear{name: name, min: min, max: max}
}

// Name returns the dimension's identifier.
func (d *DiscreteLinear) Name() string { return d.name }

// Map floors the rescaled coordinate into [min, max].
func (d *DiscreteLinear) Map(u float64) float64 {
	return float64(d.min + binIndex(u, d.max-d.min+1))
}

// Normalize returns the center of the i-th bin.
func (d *DiscreteLinear) Normalize(i int) float64 {
	return (float64(i) + 0.5) / float64(d.max-d.min+1)
}

// Values returns every integer in the range.
func (d *DiscreteLinear) Values() []float64 {
	vals := make([]float64, 0, d.max-d.min+1)
	for v := d.min; v <= d.max; v++ {
		vals = append(vals, float64(v))
	}
	return vals
}

// DiscreteLog is an inclusive integer range scaled logarithmically, so a
// bounded-precision coordinate covers orders of magnitude (e.g. number of
// estimators). The mapping is floor(max^u) + min - 1, clamped to the range.
type DiscreteLog struct {
	name string
	min  int
	max  int
}

// NewDiscreteLog creates a log-scaled integer domain covering [min, max].
func NewDiscreteLog(name string, min, max int) *DiscreteLog {
	if min < 1 {
		panic(fmt.Sprintf("log domain %q: min must be >= 1, got %d", name, min))
	}
	if max <= min {
		panic(fmt.Sprintf("log domain %q: max %d must exceed min %d", name, max, min))
	}
	return &DiscreteLog{name: name, min: min, max: max}
}

// Name returns the dimension's identifier.
func (d *DiscreteLog) Name() string { return d.name }

// Map rescales u through the exponential curve before flooring.
func (d *DiscreteLog) Map(u float64) float64 {
	if u < 0 {
		u = 0
	} else if u > 1 {
		u = 1
	}
	// The epsilon guards against pow returning fractionally under an exact
	// integer and flooring one value too low.
	v := int(math.Pow(float64(d.max), u)+1e-9) + d.min - 1
	if v < d.min {
		v = d.min
	} else if v > d.max {
		v = d.max
	}
	return float64(v)
}

// Normalize inverts Map for the value min+i.
func (d *DiscreteLog) Normalize(i int) float64 {
	v := d.min + i
	if v < d.min {
		v = d.min
	} else if v > d.max {
		v = d.max
	}
	return math.Log(float64(v-d.min+1)) / math.Log(float64(d.max))
}

// Values returns every integer in the range.
func (d *DiscreteLog) Values() []float64 {
	vals := make([]float64, 0, d.max-d.min+1)
	for v := d.min; v <= d.max; v++ {
		vals = append(vals, float64(v))
	}
	return vals
}

// binIndex buckets a normalized coordinate into one of n equal bins,
// clamping out-of-range coordinates to the boundary bins.
func binIndex(u float64, n int) int {
	idx := int(u * float64(n))
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
