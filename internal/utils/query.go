package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"streetlight-map/internal/geo"
)

// ParseIntParam reads a positive integer query parameter, falling back when
// it is missing or not a positive number.
func ParseIntParam(q url.Values, key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// ParseFloatParam reads a required float query parameter.
func ParseFloatParam(q url.Values, key string) (float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

// ParseBounds reads west/east/south/north from the query and validates them.
// Example:
//
//	?west=-105.1&east=-104.6&south=39.6&north=39.9
func ParseBounds(q url.Values) (geo.Bounds, error) {
	var b geo.Bounds
	fields := []struct {
		key string
		dst *float64
	}{
		{"west", &b.West},
		{"east", &b.East},
		{"south", &b.South},
		{"north", &b.North},
	}
	for _, f := range fields {
		v, err := ParseFloatParam(q, f.key)
		if err != nil {
			return geo.Bounds{}, fmt.Errorf("%w: %v", geo.ErrInvalidBounds, err)
		}
		*f.dst = v
	}
	if err := b.Validate(); err != nil {
		return geo.Bounds{}, err
	}
	return b, nil
}
