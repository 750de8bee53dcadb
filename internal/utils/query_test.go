package utils

import (
	"net/url"
	"testing"

	"streetlight-map/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntParam(t *testing.T) {
	q := url.Values{"pageNo": {"3"}, "size": {"-1"}, "bad": {"x"}}

	assert.Equal(t, 3, ParseIntParam(q, "pageNo", 1))
	assert.Equal(t, 500, ParseIntParam(q, "size", 500))
	assert.Equal(t, 1, ParseIntParam(q, "bad", 1))
	assert.Equal(t, 7, ParseIntParam(q, "missing", 7))
}

func TestParseBounds(t *testing.T) {
	q := url.Values{"west": {"-105.1"}, "east": {"-104.6"}, "south": {"39.6"}, "north": {" 39.9 "}}

	b, err := ParseBounds(q)
	require.NoError(t, err)
	assert.Equal(t, geo.Bounds{West: -105.1, East: -104.6, South: 39.6, North: 39.9}, b)
}

func TestParseBounds_Errors(t *testing.T) {
	tests := []struct {
		name string
		q    url.Values
	}{
		{"missing north", url.Values{"west": {"1"}, "east": {"2"}, "south": {"3"}}},
		{"not a number", url.Values{"west": {"w"}, "east": {"2"}, "south": {"3"}, "north": {"4"}}},
		{"inverted", url.Values{"west": {"1"}, "east": {"2"}, "south": {"5"}, "north": {"4"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBounds(tt.q)
			assert.ErrorIs(t, err, geo.ErrInvalidBounds)
		})
	}
}
