package models

import (
	"errors"
	"fmt"
	"strings"

	"streetlight-map/internal/geo"
)

var ErrMissingID = errors.New("streetlight record has no id")

// Marker is the map pin for one streetlight.
type Marker struct {
	ID            string  `json:"id"`
	PoleID        string  `json:"poleID"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Wireless      bool    `json:"wireless"`
	PoleOwner     string  `json:"poleOwner"`
	AttachedTech  any     `json:"attachedTech"`
	Wattage       float64 `json:"wattage"`
	LightbulbType string  `json:"lightbulbType"`
	Label         string  `json:"label,omitempty"`
}

// NewMarker builds the marker for a backend record. Records without an id
// or with coordinates outside WGS84 ranges are rejected.
func NewMarker(rec Streetlight) (Marker, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return Marker{}, ErrMissingID
	}
	if err := geo.CheckLatLng(rec.Latitude, rec.Longitude); err != nil {
		return Marker{}, fmt.Errorf("streetlight %s: %w", rec.ID, err)
	}

	return Marker{
		ID:            rec.ID,
		PoleID:        rec.PoleID,
		Lat:           rec.Latitude,
		Lng:           rec.Longitude,
		Wireless:      rec.FiberWifiEnabled,
		PoleOwner:     rec.PoleOwner,
		AttachedTech:  rec.AttachedTech,
		Wattage:       rec.Wattage,
		LightbulbType: rec.LightbulbType,
		Label:         rec.PoleID,
	}, nil
}
