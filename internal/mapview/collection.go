package mapview

import "streetlight-map/internal/models"

// Collection stores markers keyed by id and remembers insertion order.
// Upserting an existing id replaces the marker in place.
type Collection struct {
	order []string
	byID  map[string]models.Marker
}

func NewCollection() *Collection {
	return &Collection{byID: make(map[string]models.Marker)}
}

// Upsert adds or replaces the marker and reports whether it was new.
func (c *Collection) Upsert(m models.Marker) bool {
	if _, ok := c.byID[m.ID]; ok {
		c.byID[m.ID] = m
		return false
	}
	c.byID[m.ID] = m
	c.order = append(c.order, m.ID)
	return true
}

func (c *Collection) Get(id string) (models.Marker, bool) {
	m, ok := c.byID[id]
	return m, ok
}

func (c *Collection) Len() int {
	return len(c.order)
}

// Reset drops every marker.
func (c *Collection) Reset() {
	c.order = nil
	c.byID = make(map[string]models.Marker)
}

// Markers returns a copy of the markers in insertion order.
func (c *Collection) Markers() []models.Marker {
	out := make([]models.Marker, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
