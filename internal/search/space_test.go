package search

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubsetSpaceEmpty(t *testing.T) {
	_, err := NewSubsetSpace()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySearchSpace))

	_, err = NewParameterSpace()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySearchSpace))
}

func TestLagSpaceNames(t *testing.T) {
	s, err := NewLagSpace(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"lag1", "lag2", "lag3"}, s.Names())
	assert.True(t, s.IsSubset())
}

func TestConfigurationValidate(t *testing.T) {
	subset, err := NewSubsetSpace("a", "b", "c")
	require.NoError(t, err)

	params, err := NewParameterSpace(
		NewDiscreteLog("n_estimators", 10, 100),
		NewCategorical("max_depth", 2, 5),
	)
	require.NoError(t, err)

	tests := []struct {
		name    string
		space   *Space
		cfg     Configuration
		wantErr bool
	}{
		{
			name:  "valid subset",
			space: subset,
			cfg:   Configuration{Include: []bool{true, false, true}},
		},
		{
			name:    "all excluded",
			space:   subset,
			cfg:     Configuration{Include: []bool{false, false, false}},
			wantErr: true,
		},
		{
			name:    "dimension mismatch",
			space:   subset,
			cfg:     Configuration{Include: []bool{true, true}},
			wantErr: true,
		},
		{
			name:    "missing inclusion vector",
			space:   subset,
			cfg:     Configuration{Coords: []float64{0.5, 0.5, 0.5}},
			wantErr: true,
		},
		{
			name:  "valid vector",
			space: params,
			cfg:   Configuration{Coords: []float64{0.2, 0.9}},
		},
		{
			name:    "coordinate out of range",
			space:   params,
			cfg:     Configuration{Coords: []float64{0.2, 1.1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(tt.space)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidConfiguration), "want ErrInvalidConfiguration, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSelectedRoundTrip(t *testing.T) {
	s, err := NewSubsetSpace("a", "b", "c", "d", "e")
	require.NoError(t, err)

	original := Configuration{Include: []bool{true, false, true, false, true}}
	rebuilt, err := FromSelected(s, original.Selected())
	require.NoError(t, err)
	assert.Equal(t, original.Include, rebuilt.Include)
	assert.Equal(t, original.Key(), rebuilt.Key())

	// A round-tripped configuration must score identically.
	scorer := ScorerFunc(countScorer)
	a, err := scorer.Evaluate(original)
	require.NoError(t, err)
	b, err := scorer.Evaluate(rebuilt)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFromSelectedRejectsBadInput(t *testing.T) {
	s, err := NewSubsetSpace("a", "b")
	require.NoError(t, err)

	_, err = FromSelected(s, nil)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))

	_, err = FromSelected(s, []int{2})
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestRandomSubsetNeverEmpty(t *testing.T) {
	s, err := NewSubsetSpace("a", "b", "c")
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		cfg := s.RandomSubset(rng)
		require.NoError(t, cfg.Validate(s))
	}
}

func TestDecode(t *testing.T) {
	s, err := NewParameterSpace(
		NewDiscreteLog("n_estimators", 10, 100),
		NewCategorical("max_depth", 2, 5),
	)
	require.NoError(t, err)

	values, err := s.Decode(Configuration{Coords: []float64{1.0, 0.0}})
	require.NoError(t, err)
	assertFloat64SlicesEqual(t, values, []float64{100, 2}, 0)

	_, err = s.Decode(Configuration{Coords: []float64{0.5}})
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestConfigurationCloneIsDeep(t *testing.T) {
	cfg := Configuration{Include: []bool{true, false}}
	cp := cfg.Clone()
	cp.Include[1] = true
	assert.False(t, cfg.Include[1])
}
