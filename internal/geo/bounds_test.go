package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBounds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		bounds  Bounds
		wantErr bool
	}{
		{"regular box", Bounds{West: -105, East: -104, South: 39, North: 40}, false},
		{"antimeridian box", Bounds{West: 170, East: -170, South: -10, North: 10}, false},
		{"south above north", Bounds{West: -105, East: -104, South: 41, North: 40}, true},
		{"latitude out of range", Bounds{West: -105, East: -104, South: -91, North: 40}, true},
		{"longitude out of range", Bounds{West: -181, East: -104, South: 39, North: 40}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidBounds))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBounds_Contains(t *testing.T) {
	b := Bounds{West: -105, East: -104, South: 39, North: 40}

	assert.True(t, b.Contains(39.5, -104.5))
	assert.True(t, b.Contains(39, -105), "edges are inside")
	assert.False(t, b.Contains(41, -104.5))
	assert.False(t, b.Contains(39.5, -103))
}

func TestBounds_ContainsAcrossAntimeridian(t *testing.T) {
	b := Bounds{West: 170, East: -170, South: -10, North: 10}

	require.True(t, b.CrossesAntimeridian())
	envs, err := b.Envelopes()
	require.NoError(t, err)
	assert.Len(t, envs, 2)
	assert.True(t, b.Contains(0, 175))
	assert.True(t, b.Contains(0, -175))
	assert.False(t, b.Contains(0, 0))
}

func TestCheckLatLng(t *testing.T) {
	assert.NoError(t, CheckLatLng(90, -180))
	assert.ErrorIs(t, CheckLatLng(90.1, 0), ErrInvalidCoordinate)
	assert.ErrorIs(t, CheckLatLng(0, 180.5), ErrInvalidCoordinate)
}

func TestBounds_Envelopes(t *testing.T) {
	envs, err := Bounds{West: -105, East: -104, South: 39, North: 40}.Envelopes()
	require.NoError(t, err)
	require.Len(t, envs, 1)

	lo, hi, ok := envs[0].MinMaxXYs()
	require.True(t, ok)
	assert.Equal(t, -105.0, lo.X)
	assert.Equal(t, 39.0, lo.Y)
	assert.Equal(t, -104.0, hi.X)
	assert.Equal(t, 40.0, hi.Y)

	envs, err = Bounds{West: 170, East: -170, South: -10, North: 10}.Envelopes()
	require.NoError(t, err)
	require.Len(t, envs, 2)
	lo, _, _ = envs[1].MinMaxXYs()
	assert.Equal(t, -180.0, lo.X)
}

func TestBounds_InvalidContainsNothing(t *testing.T) {
	b := Bounds{West: -105, East: -104, South: 41, North: 40}
	assert.False(t, b.Contains(40.5, -104.5))

	_, err := Bounds{West: math.NaN(), East: -104, South: 39, North: 40}.Envelopes()
	assert.ErrorIs(t, err, ErrInvalidBounds)
}
