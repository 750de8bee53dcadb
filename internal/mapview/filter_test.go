package mapview

import (
	"testing"

	"streetlight-map/internal/geo"
	"streetlight-map/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMarkers() []models.Marker {
	return []models.Marker{
		{ID: "a", PoleID: "P1", Lat: 39.70, Lng: -104.90, Wattage: 100, PoleOwner: "City", LightbulbType: "LED", Wireless: true, AttachedTech: "camera"},
		{ID: "b", PoleID: "P2", Lat: 39.80, Lng: -104.80, Wattage: 150, PoleOwner: "Xcel", LightbulbType: "HPS"},
		{ID: "c", PoleID: "P10", Lat: 40.50, Lng: -105.10, Wattage: 100, PoleOwner: "Xcel", LightbulbType: "LED", AttachedTech: map[string]any{"sensor": "air", "cam": 2}},
	}
}

func ids(markers []models.Marker) []string {
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		out = append(out, m.ID)
	}
	return out
}

func mustWith(t *testing.T, f FilterState, attr string, value any) FilterState {
	t.Helper()
	next, err := f.With(attr, value)
	require.NoError(t, err)
	return next
}

func TestFilter_ByWattage(t *testing.T) {
	markers := []models.Marker{
		{ID: "A", PoleID: "P1", Wattage: 100},
		{ID: "B", PoleID: "P2", Wattage: 150},
	}
	f := mustWith(t, NewFilterState(), "wattage", 100)

	assert.Equal(t, []string{"A"}, ids(Filter(markers, f)))
}

func TestFilter_ByPoleIDQuery(t *testing.T) {
	markers := []models.Marker{
		{ID: "A", PoleID: "P1", Wattage: 100},
		{ID: "B", PoleID: "P2", Wattage: 150},
	}
	q := "P1"
	f := NewFilterState().WithPoleIDQuery(&q)

	assert.Equal(t, []string{"A"}, ids(Filter(markers, f)))
}

func TestFilter_PoleIDQueryIsCaseSensitiveSubstring(t *testing.T) {
	q := "P1"
	f := NewFilterState().WithPoleIDQuery(&q)
	assert.Equal(t, []string{"a", "c"}, ids(Filter(sampleMarkers(), f)))

	lower := "p1"
	f = NewFilterState().WithPoleIDQuery(&lower)
	assert.Empty(t, Filter(sampleMarkers(), f))
}

func TestFilter_CriteriaAreAnded(t *testing.T) {
	f := mustWith(t, NewFilterState(), "wattage", 100)
	f = mustWith(t, f, "poleOwner", "Xcel")

	assert.Equal(t, []string{"c"}, ids(Filter(sampleMarkers(), f)))
}

func TestFilter_EmptyStateKeepsOrder(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ids(Filter(sampleMarkers(), NewFilterState())))
}

func TestFilter_NumericStringMatchesNumber(t *testing.T) {
	f := mustWith(t, NewFilterState(), "wattage", "100")
	assert.Equal(t, []string{"a", "c"}, ids(Filter(sampleMarkers(), f)))
}

func TestFilter_Bool(t *testing.T) {
	f := mustWith(t, NewFilterState(), "wireless", "true")
	assert.Equal(t, []string{"a"}, ids(Filter(sampleMarkers(), f)))

	f = mustWith(t, NewFilterState(), "wireless", false)
	assert.Equal(t, []string{"b", "c"}, ids(Filter(sampleMarkers(), f)))
}

func TestFilter_AttachedTech(t *testing.T) {
	f := mustWith(t, NewFilterState(), "attachedTech", "camera")
	assert.Equal(t, []string{"a"}, ids(Filter(sampleMarkers(), f)))

	f = mustWith(t, NewFilterState(), "attachedTech", map[string]any{"cam": 2, "sensor": "air"})
	assert.Equal(t, []string{"c"}, ids(Filter(sampleMarkers(), f)))
}

func TestFilter_Bounds(t *testing.T) {
	f, err := NewFilterState().WithBounds(&geo.Bounds{West: -105, East: -104.5, South: 39, North: 40})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ids(Filter(sampleMarkers(), f)))
}

func TestFilterState_InvalidValueLeavesStateUnchanged(t *testing.T) {
	base := mustWith(t, NewFilterState(), "poleOwner", "City")

	tests := []struct {
		name  string
		attr  string
		value any
	}{
		{"unknown attribute", "color", "red"},
		{"non numeric wattage", "wattage", "abc"},
		{"object for text field", "poleOwner", map[string]any{"x": 1}},
		{"bad bool", "wireless", "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := base.With(tt.attr, tt.value)
			require.ErrorIs(t, err, ErrInvalidFilterValue)
			assert.Equal(t, base, next)
		})
	}
}

func TestFilterState_RoundTrip(t *testing.T) {
	start := mustWith(t, NewFilterState(), "poleOwner", "City")

	set := mustWith(t, start, "wattage", 100)
	require.Equal(t, 2, set.Len())

	restored := mustWith(t, set, "wattage", nil)
	assert.Equal(t, start, restored)

	empty := mustWith(t, mustWith(t, NewFilterState(), "wattage", 100), "wattage", nil)
	assert.Equal(t, NewFilterState(), empty)
}

func TestFilterState_OverwriteAndNoopRemove(t *testing.T) {
	f := mustWith(t, NewFilterState(), "wattage", 100)
	f = mustWith(t, f, "wattage", 150)
	assert.Equal(t, map[string]any{"wattage": 150.0}, f.Criteria())

	same := mustWith(t, f, "poleOwner", nil)
	assert.Equal(t, f, same)
}

func TestFilterState_TransitionsDoNotMutateReceiver(t *testing.T) {
	base := mustWith(t, NewFilterState(), "wattage", 100)
	_ = mustWith(t, base, "poleOwner", "City")
	_ = base.Without("wattage")

	assert.Equal(t, map[string]any{"wattage": 100.0}, base.Criteria())
}

func TestFilterState_RemovingWidens(t *testing.T) {
	markers := sampleMarkers()
	narrow := mustWith(t, mustWith(t, NewFilterState(), "wattage", 100), "poleOwner", "Xcel")
	wide := narrow.Without("poleOwner")

	narrowIDs := ids(Filter(markers, narrow))
	wideIDs := ids(Filter(markers, wide))
	for _, id := range narrowIDs {
		assert.Contains(t, wideIDs, id)
	}
	assert.GreaterOrEqual(t, len(wideIDs), len(narrowIDs))
}

func TestFilterState_Cleared(t *testing.T) {
	q := "P"
	f := mustWith(t, NewFilterState(), "wattage", 100).WithPoleIDQuery(&q)
	f, err := f.WithBounds(&geo.Bounds{West: -106, East: -104, South: 39, North: 41})
	require.NoError(t, err)

	cleared := f.Cleared()
	assert.True(t, cleared.IsEmpty())
	assert.Equal(t, cleared, cleared.Cleared())
	assert.Equal(t, ids(sampleMarkers()), ids(Filter(sampleMarkers(), cleared)))
}

func TestFilterState_InvalidBounds(t *testing.T) {
	base := NewFilterState()
	next, err := base.WithBounds(&geo.Bounds{West: 0, East: 1, South: 5, North: 1})
	require.ErrorIs(t, err, ErrInvalidBounds)
	assert.Equal(t, base, next)
}

func TestAttributes(t *testing.T) {
	assert.Equal(t, []string{
		"attachedTech", "id", "label", "lat", "lightbulbType", "lng", "poleID", "poleOwner", "wattage", "wireless",
	}, Attributes())
}

func TestNewCriterion(t *testing.T) {
	c, err := newCriterion("wattage", "100")
	require.NoError(t, err)
	assert.Equal(t, 100.0, c.value())
	assert.True(t, c.matches(models.Marker{Wattage: 100}))

	_, err = newCriterion("brightness", 10)
	assert.ErrorIs(t, err, ErrInvalidFilterValue)

	_, err = newCriterion("wireless", "maybe")
	assert.ErrorIs(t, err, ErrInvalidFilterValue)
}
