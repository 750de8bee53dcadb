// Package mapview holds the per-session state behind the streetlight map:
// the loaded markers, the visible subset, filter selections and the open
// info window.
package mapview

import (
	"context"
	"errors"
	"sync"
	"time"

	"streetlight-map/internal/geo"
	"streetlight-map/internal/metrics"
	"streetlight-map/internal/models"

	"go.uber.org/zap"
)

const (
	maxFetchAttempts  = 2
	defaultRetryDelay = 250 * time.Millisecond

	opPage           = "page"
	opBounds         = "bounds"
	opWattageOptions = "wattage_options"
	opPoleOwners     = "pole_owner_options"
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Options struct {
	PageSize      int
	DefaultCenter LatLng
	// FetchTimeout bounds each source attempt; zero leaves it to the caller's context.
	FetchTimeout time.Duration
	RetryDelay   time.Duration
}

// Controller owns one map view. Source calls are made without holding the
// lock, so a slow backend never blocks reads of the current state.
type Controller struct {
	source Source
	logr   *zap.Logger
	opts   Options

	mu               sync.Mutex
	markers          *Collection
	visible          []models.Marker
	filters          FilterState
	openWindow       string
	location         *LatLng
	wattageOptions   []float64
	poleOwnerOptions []string
	lastErr          error

	boundsGen    uint64
	cancelBounds context.CancelFunc
	closed       bool
}

func NewController(source Source, logr *zap.Logger, opts Options) *Controller {
	if logr == nil {
		logr = zap.NewNop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 500
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	return &Controller{
		source:           source,
		logr:             logr,
		opts:             opts,
		markers:          NewCollection(),
		visible:          []models.Marker{},
		filters:          NewFilterState(),
		wattageOptions:   []float64{},
		poleOwnerOptions: []string{},
	}
}

// LoadPage fetches one page and upserts its markers. Returns how many
// markers were new to the view.
func (c *Controller) LoadPage(ctx context.Context, pageNo, pageSize int) (int, error) {
	if pageNo < 1 {
		pageNo = 1
	}
	if pageSize <= 0 {
		pageSize = c.opts.PageSize
	}
	params := models.StreetlightPageParams{PageNo: pageNo, PageSize: pageSize}

	records, err := fetch(ctx, c, opPage, func(ctx context.Context) ([]models.Streetlight, error) {
		return c.source.Streetlights(ctx, params)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.recordError(err)
		return 0, err
	}

	added := c.addRecords(records)
	c.lastErr = nil
	c.refresh()

	c.logr.Debug("page loaded",
		zap.Int("page_no", pageNo),
		zap.Int("page_size", pageSize),
		zap.Int("records", len(records)),
		zap.Int("added", added))
	return added, nil
}

// LoadByBounds replaces the loaded markers with those inside b. A newer
// call cancels an older one still in flight, and a response that arrives
// after being superseded is dropped with ErrStaleResponse.
func (c *Controller) LoadByBounds(ctx context.Context, b geo.Bounds) (int, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.boundsGen++
	gen := c.boundsGen
	if c.cancelBounds != nil {
		c.cancelBounds()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancelBounds = cancel
	c.mu.Unlock()
	defer cancel()

	records, err := fetch(ctx, c, opBounds, func(ctx context.Context) ([]models.Streetlight, error) {
		return c.source.StreetlightsInBounds(ctx, b)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrViewNotFound
	}
	if gen != c.boundsGen {
		metrics.IncStaleResponse()
		c.logr.Debug("discarding stale bounds response", zap.Uint64("generation", gen), zap.Stringer("bounds", b))
		return 0, ErrStaleResponse
	}
	c.cancelBounds = nil

	if err != nil {
		c.recordError(err)
		return 0, err
	}

	c.markers.Reset()
	added := c.addRecords(records)
	c.lastErr = nil
	c.refresh()

	c.logr.Debug("bounds loaded",
		zap.Stringer("bounds", b),
		zap.Int("records", len(records)),
		zap.Int("markers", added))
	return added, nil
}

// LoadOptions refreshes the wattage and pole owner dropdown values. A
// failed list keeps its previous values.
func (c *Controller) LoadOptions(ctx context.Context) error {
	wattages, wErr := fetch(ctx, c, opWattageOptions, c.source.WattageOptions)
	owners, oErr := fetch(ctx, c, opPoleOwners, c.source.PoleOwnerOptions)

	c.mu.Lock()
	defer c.mu.Unlock()

	if wErr == nil {
		c.wattageOptions = append([]float64{}, wattages...)
	}
	if oErr == nil {
		c.poleOwnerOptions = append([]string{}, owners...)
	}

	err := errors.Join(wErr, oErr)
	if err != nil {
		c.recordError(err)
	}
	return err
}

// UpdateFilters sets attr to value, or removes it when value is nil.
// Invalid input returns ErrInvalidFilterValue and changes nothing.
func (c *Controller) UpdateFilters(attr string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateFilters(attr, value)
}

func (c *Controller) updateFilters(attr string, value any) error {
	next, err := c.filters.With(attr, value)
	if err != nil {
		c.logr.Debug("ignoring filter value", zap.String("attribute", attr), zap.Any("value", value), zap.Error(err))
		return err
	}
	c.filters = next
	return nil
}

// ApplyFilter updates one filter and recomputes the visible markers.
func (c *Controller) ApplyFilter(attr string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.updateFilters(attr, value); err != nil {
		return err
	}
	c.refresh()
	return nil
}

// ApplyFilters recomputes the visible markers from the current filters.
func (c *Controller) ApplyFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresh()
}

// SetPoleIDQuery sets the case-sensitive pole id substring; nil clears it.
func (c *Controller) SetPoleIDQuery(q *string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = c.filters.WithPoleIDQuery(q)
	c.refresh()
}

// SetBounds limits visible markers to b; nil clears the limit.
func (c *Controller) SetBounds(b *geo.Bounds) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.filters.WithBounds(b)
	if err != nil {
		return err
	}
	c.filters = next
	c.refresh()
	return nil
}

// ClearFilters drops every filter and shows all loaded markers.
func (c *Controller) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = c.filters.Cleared()
	c.refresh()
}

// Filter computes the visible subset for the current state without storing it.
func (c *Controller) Filter() []models.Marker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Filter(c.markers.Markers(), c.filters)
}

// Visible returns a copy of the visible markers.
func (c *Controller) Visible() []models.Marker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Marker{}, c.visible...)
}

// All returns every loaded marker.
func (c *Controller) All() []models.Marker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markers.Markers()
}

func (c *Controller) Filters() FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// OpenWindow marks poleID as the one open info window, closing any other.
// An empty id closes all.
func (c *Controller) OpenWindow(poleID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openWindow = poleID
}

func (c *Controller) IsInfoWindowOpen(poleID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return poleID != "" && c.openWindow == poleID
}

// SetCurrentLocation records the position reported by the browser.
func (c *Controller) SetCurrentLocation(lat, lng float64) error {
	if err := geo.CheckLatLng(lat, lng); err != nil {
		return errors.Join(ErrGeolocationUnavailable, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.location = &LatLng{Lat: lat, Lng: lng}
	return nil
}

// Center returns the reported position, or the default center together
// with ErrGeolocationUnavailable.
func (c *Controller) Center() (LatLng, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center()
}

func (c *Controller) center() (LatLng, error) {
	if c.location == nil {
		return c.opts.DefaultCenter, ErrGeolocationUnavailable
	}
	return *c.location, nil
}

// LastError is the most recent load failure, cleared by the next successful load.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Close cancels an in-flight bounds request. The cancelled load returns
// ErrViewNotFound.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.cancelBounds != nil {
		c.cancelBounds()
		c.cancelBounds = nil
	}
}

// ViewState is what the rendering layer sees of a view.
type ViewState struct {
	Markers          []models.Marker `json:"markers"`
	Total            int             `json:"total"`
	Visible          int             `json:"visible"`
	Filters          map[string]any  `json:"filters"`
	PoleIDQuery      *string         `json:"poleIdQuery"`
	Bounds           *geo.Bounds     `json:"bounds"`
	OpenWindow       string          `json:"openWindow"`
	Center           LatLng          `json:"center"`
	CenterSource     string          `json:"centerSource"`
	WattageOptions   []float64       `json:"wattageOptions"`
	PoleOwnerOptions []string        `json:"poleOwnerOptions"`
	Error            string          `json:"error,omitempty"`
}

func (c *Controller) Snapshot() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := ViewState{
		Markers:          append([]models.Marker{}, c.visible...),
		Total:            c.markers.Len(),
		Visible:          len(c.visible),
		Filters:          c.filters.Criteria(),
		OpenWindow:       c.openWindow,
		CenterSource:     "geolocation",
		WattageOptions:   append([]float64{}, c.wattageOptions...),
		PoleOwnerOptions: append([]string{}, c.poleOwnerOptions...),
	}
	if q, ok := c.filters.PoleIDQuery(); ok {
		state.PoleIDQuery = &q
	}
	if b, ok := c.filters.Bounds(); ok {
		state.Bounds = &b
	}
	center, err := c.center()
	state.Center = center
	if err != nil {
		state.CenterSource = "default"
	}
	if c.lastErr != nil {
		state.Error = c.lastErr.Error()
	}
	return state
}

// addRecords converts and upserts records; callers hold c.mu.
func (c *Controller) addRecords(records []models.Streetlight) int {
	added, rejected := 0, 0
	for _, rec := range records {
		m, err := models.NewMarker(rec)
		if err != nil {
			rejected++
			c.logr.Warn("skipping streetlight record", zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		if c.markers.Upsert(m) {
			added++
		}
	}
	metrics.AddRejectedRecords(rejected)
	return added
}

func (c *Controller) refresh() {
	if c.filters.IsEmpty() {
		c.visible = c.markers.Markers()
		return
	}
	c.visible = Filter(c.markers.Markers(), c.filters)
}

func (c *Controller) recordError(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	c.lastErr = err
	c.logr.Warn("streetlight load failed", zap.Error(err))
}

// fetch runs call, retrying once, and wraps the final failure in a FetchError.
func fetch[T any](ctx context.Context, c *Controller, op string, call func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		started := time.Now()
		result, err := callWithTimeout(ctx, c.opts.FetchTimeout, call)
		metrics.ObserveFetch(op, started, err)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil || errors.Is(err, geo.ErrInvalidBounds) {
			return zero, &FetchError{Op: op, Attempts: attempt, Err: err}
		}
		if attempt == maxFetchAttempts {
			break
		}

		metrics.IncFetchRetry(op)
		c.logr.Debug("retrying fetch", zap.String("op", op), zap.Error(err))
		select {
		case <-ctx.Done():
			return zero, &FetchError{Op: op, Attempts: attempt, Err: ctx.Err()}
		case <-time.After(c.opts.RetryDelay):
		}
	}
	return zero, &FetchError{Op: op, Attempts: maxFetchAttempts, Err: lastErr}
}

func callWithTimeout[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return call(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return call(ctx)
}
