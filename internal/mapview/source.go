package mapview

import (
	"context"

	"streetlight-map/internal/geo"
	"streetlight-map/internal/models"
)

// Source is the streetlight backend a view loads from. The local database
// service and the remote HTTP client both satisfy it.
type Source interface {
	Streetlights(ctx context.Context, params models.StreetlightPageParams) ([]models.Streetlight, error)
	StreetlightsInBounds(ctx context.Context, b geo.Bounds) ([]models.Streetlight, error)
	WattageOptions(ctx context.Context) ([]float64, error)
	PoleOwnerOptions(ctx context.Context) ([]string, error)
}
