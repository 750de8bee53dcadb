package services

import (
	"context"
	"strings"
	"time"

	"streetlight-map/internal/geo"
	"streetlight-map/internal/models"

	"github.com/uptrace/bun"
)

// maxBoundsResults caps a single map query; a fully zoomed-out viewport
// would otherwise pull the whole inventory.
const maxBoundsResults = 5000

type StreetlightService struct {
	db *bun.DB
}

func NewStreetlightService(db *bun.DB) *StreetlightService {
	return &StreetlightService{db: db}
}

func (s *StreetlightService) pageQuery(params models.StreetlightPageParams) *bun.SelectQuery {
	return s.db.NewSelect().
		Model((*models.Streetlight)(nil)).
		OrderExpr("pole_id ASC, id ASC").
		Offset(params.Offset()).
		Limit(params.PageSize)
}

func (s *StreetlightService) boundsQuery(b geo.Bounds) *bun.SelectQuery {
	q := s.db.NewSelect().
		Model((*models.Streetlight)(nil)).
		Where("latitude BETWEEN ? AND ?", b.South, b.North)

	if b.CrossesAntimeridian() {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("longitude >= ?", b.West).WhereOr("longitude <= ?", b.East)
		})
	} else {
		q = q.Where("longitude BETWEEN ? AND ?", b.West, b.East)
	}

	return q.OrderExpr("pole_id ASC, id ASC").Limit(maxBoundsResults)
}

// Streetlights returns one page of streetlights ordered by pole id.
func (s *StreetlightService) Streetlights(ctx context.Context, params models.StreetlightPageParams) ([]models.Streetlight, error) {
	lights := []models.Streetlight{}
	if err := s.pageQuery(params).Scan(ctx, &lights); err != nil {
		return nil, err
	}
	return lights, nil
}

// StreetlightsInBounds returns every streetlight inside the box.
func (s *StreetlightService) StreetlightsInBounds(ctx context.Context, b geo.Bounds) ([]models.Streetlight, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	lights := []models.Streetlight{}
	if err := s.boundsQuery(b).Scan(ctx, &lights); err != nil {
		return nil, err
	}
	return lights, nil
}

// GetStreetlightByID returns a single streetlight
func (s *StreetlightService) GetStreetlightByID(ctx context.Context, id string) (*models.Streetlight, error) {
	light := new(models.Streetlight)
	err := s.db.NewSelect().Model(light).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return light, nil
}

// WattageOptions returns the distinct wattages for the filter dropdown
func (s *StreetlightService) WattageOptions(ctx context.Context) ([]float64, error) {
	wattages := []float64{}
	err := s.db.NewSelect().
		Model((*models.Streetlight)(nil)).
		ColumnExpr("DISTINCT wattage").
		Where("wattage IS NOT NULL").
		OrderExpr("wattage ASC").
		Scan(ctx, &wattages)
	return wattages, err
}

// PoleOwnerOptions returns the distinct pole owners for the filter dropdown
func (s *StreetlightService) PoleOwnerOptions(ctx context.Context) ([]string, error) {
	owners := []string{}
	err := s.db.NewSelect().
		Model((*models.Streetlight)(nil)).
		ColumnExpr("DISTINCT pole_owner").
		Where("pole_owner IS NOT NULL").
		Where("pole_owner <> ''").
		OrderExpr("pole_owner ASC").
		Scan(ctx, &owners)
	return owners, err
}

// UpsertStreetlights inserts the records, overwriting rows with the same id.
func (s *StreetlightService) UpsertStreetlights(ctx context.Context, lights []models.Streetlight) (int64, error) {
	if len(lights) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	for i := range lights {
		lights[i].ID = strings.TrimSpace(lights[i].ID)
		lights[i].UpdatedAt = &now
	}

	res, err := s.db.NewInsert().
		Model(&lights).
		On("CONFLICT (id) DO UPDATE").
		Set("pole_id = EXCLUDED.pole_id").
		Set("longitude = EXCLUDED.longitude").
		Set("latitude = EXCLUDED.latitude").
		Set("fiber_wifi_enabled = EXCLUDED.fiber_wifi_enabled").
		Set("pole_owner = EXCLUDED.pole_owner").
		Set("attached_tech = EXCLUDED.attached_tech").
		Set("wattage = EXCLUDED.wattage").
		Set("lightbulb_type = EXCLUDED.lightbulb_type").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
