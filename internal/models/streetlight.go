package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Streetlight is one pole record as stored by the backend and sent over the wire.
type Streetlight struct {
	bun.BaseModel `bun:"table:app.streetlights,alias:sl"`

	ID               string     `bun:"id,pk" json:"_id" yaml:"id"`
	PoleID           string     `bun:"pole_id,notnull" json:"poleID" yaml:"poleID"`
	Longitude        float64    `bun:"longitude,notnull" json:"longitude" yaml:"longitude"`
	Latitude         float64    `bun:"latitude,notnull" json:"latitude" yaml:"latitude"`
	FiberWifiEnabled bool       `bun:"fiber_wifi_enabled,notnull,default:false" json:"fiberWifiEnabled" yaml:"fiberWifiEnabled"`
	PoleOwner        string     `bun:"pole_owner" json:"poleOwner" yaml:"poleOwner"`
	AttachedTech     any        `bun:"attached_tech,type:jsonb" json:"attachedTech" yaml:"attachedTech"`
	Wattage          float64    `bun:"wattage" json:"wattage" yaml:"wattage"`
	LightbulbType    string     `bun:"lightbulb_type" json:"lightbulbType" yaml:"lightbulbType"`
	UpdatedAt        *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty" yaml:"-"`
}

// StreetlightsResponse wraps record lists for the paged and map endpoints.
type StreetlightsResponse struct {
	Streetlights []Streetlight `json:"streetlights"`
}

type WattageOptionsResponse struct {
	WattageOptions []float64 `json:"wattageOptions"`
}

type PoleOwnerOptionsResponse struct {
	PoleOwnerOptions []string `json:"poleOwnerOptions"`
}

// StreetlightPageParams selects one page; PageNo is 1-based.
type StreetlightPageParams struct {
	PageNo   int
	PageSize int
}

// Offset returns the row offset of the page.
func (p StreetlightPageParams) Offset() int {
	if p.PageNo < 1 {
		return 0
	}
	return (p.PageNo - 1) * p.PageSize
}
