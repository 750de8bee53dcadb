// Package geo holds the coordinate and bounding-box helpers shared by the
// streetlight store, the HTTP client and the map view.
package geo

import (
	"errors"
	"fmt"

	"github.com/peterstace/simplefeatures/geom"
)

var (
	ErrInvalidBounds     = errors.New("invalid bounding box")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// Bounds is a west/east/south/north rectangle in WGS84 degrees. West may be
// greater than East when the box crosses the antimeridian.
type Bounds struct {
	West  float64 `json:"west"`
	East  float64 `json:"east"`
	South float64 `json:"south"`
	North float64 `json:"north"`
}

// ValidLatLng reports whether lat is in -90..90 and lng in -180..180.
func ValidLatLng(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// CheckLatLng returns ErrInvalidCoordinate when the pair is out of range.
func CheckLatLng(lat, lng float64) error {
	if !ValidLatLng(lat, lng) {
		return fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinate, lat, lng)
	}
	return nil
}

func (b Bounds) Validate() error {
	if !ValidLatLng(b.South, b.West) || !ValidLatLng(b.North, b.East) {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidBounds)
	}
	if b.South > b.North {
		return fmt.Errorf("%w: south %v is above north %v", ErrInvalidBounds, b.South, b.North)
	}
	return nil
}

// CrossesAntimeridian reports whether the box wraps around longitude 180.
func (b Bounds) CrossesAntimeridian() bool {
	return b.West > b.East
}

// Envelopes returns the planar envelopes covering the box: one normally,
// two when the box crosses the antimeridian.
func (b Bounds) Envelopes() ([]geom.Envelope, error) {
	corners := [][2]geom.XY{{{X: b.West, Y: b.South}, {X: b.East, Y: b.North}}}
	if b.CrossesAntimeridian() {
		corners = [][2]geom.XY{
			{{X: b.West, Y: b.South}, {X: 180, Y: b.North}},
			{{X: -180, Y: b.South}, {X: b.East, Y: b.North}},
		}
	}

	envs := make([]geom.Envelope, 0, len(corners))
	for _, c := range corners {
		env, err := geom.NewEnvelope(c[:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBounds, err)
		}
		envs = append(envs, env)
	}
	return envs, nil
}

// Contains reports whether the point lies inside the box, edges included.
// An invalid box contains nothing.
func (b Bounds) Contains(lat, lng float64) bool {
	if b.Validate() != nil {
		return false
	}
	envs, err := b.Envelopes()
	if err != nil {
		return false
	}
	pt := geom.XY{X: lng, Y: lat}
	for _, env := range envs {
		if env.Contains(pt) {
			return true
		}
	}
	return false
}

func (b Bounds) String() string {
	return fmt.Sprintf("w=%f,e=%f,s=%f,n=%f", b.West, b.East, b.South, b.North)
}
