package mapview

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(ttl time.Duration) (*Registry, *time.Time) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(func() *Controller { return newTestController(newFakeSource()) }, ttl, nil)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRegistry_CreateGetDelete(t *testing.T) {
	r, _ := newTestRegistry(time.Hour)

	id, ctrl := r.Create()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(id)
	require.NoError(t, err)
	assert.Same(t, ctrl, got)

	assert.True(t, r.Delete(id))
	assert.False(t, r.Delete(id))

	_, err = r.Get(id)
	assert.ErrorIs(t, err, ErrViewNotFound)
}

func TestRegistry_ViewsAreIndependent(t *testing.T) {
	r, _ := newTestRegistry(time.Hour)

	_, a := r.Create()
	_, b := r.Create()
	a.OpenWindow("P1")

	assert.True(t, a.IsInfoWindowOpen("P1"))
	assert.False(t, b.IsInfoWindowOpen("P1"))
}

func TestRegistry_Sweep(t *testing.T) {
	r, now := newTestRegistry(30 * time.Minute)

	idle, _ := r.Create()
	*now = now.Add(20 * time.Minute)
	active, _ := r.Create()

	*now = now.Add(15 * time.Minute)
	_, err := r.Get(active)
	require.NoError(t, err)

	removed := r.Sweep(*now)
	assert.Equal(t, 1, removed)

	_, err = r.Get(idle)
	assert.ErrorIs(t, err, ErrViewNotFound)
	_, err = r.Get(active)
	assert.NoError(t, err)
}

func TestRegistry_SweepDisabled(t *testing.T) {
	r, now := newTestRegistry(0)
	r.Create()

	assert.Zero(t, r.Sweep(now.Add(24*time.Hour)))
	assert.Equal(t, 1, r.Len())
}
