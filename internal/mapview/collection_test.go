package mapview

import (
	"testing"

	"streetlight-map/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCollection_UpsertKeepsFirstPosition(t *testing.T) {
	c := NewCollection()

	assert.True(t, c.Upsert(models.Marker{ID: "a", Wattage: 100}))
	assert.True(t, c.Upsert(models.Marker{ID: "b", Wattage: 150}))
	assert.False(t, c.Upsert(models.Marker{ID: "a", Wattage: 70}))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a", "b"}, ids(c.Markers()))

	m, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 70.0, m.Wattage)
}

func TestCollection_IdenticalDataDistinctIDs(t *testing.T) {
	c := NewCollection()
	c.Upsert(models.Marker{ID: "a", PoleID: "P1", Wattage: 100})
	c.Upsert(models.Marker{ID: "b", PoleID: "P1", Wattage: 100})

	assert.Equal(t, 2, c.Len())
}

func TestCollection_Reset(t *testing.T) {
	c := NewCollection()
	c.Upsert(models.Marker{ID: "a"})
	c.Reset()

	assert.Zero(t, c.Len())
	assert.Empty(t, c.Markers())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCollection_MarkersIsACopy(t *testing.T) {
	c := NewCollection()
	c.Upsert(models.Marker{ID: "a", PoleOwner: "City"})

	out := c.Markers()
	out[0].PoleOwner = "changed"

	m, _ := c.Get("a")
	assert.Equal(t, "City", m.PoleOwner)
}
