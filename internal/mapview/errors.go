package mapview

import (
	"errors"
	"fmt"

	"streetlight-map/internal/geo"
)

var (
	ErrInvalidFilterValue     = errors.New("invalid filter value")
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")
	ErrStaleResponse          = errors.New("response superseded by a newer bounds request")
	ErrViewNotFound           = errors.New("view not found")
	ErrInvalidBounds          = geo.ErrInvalidBounds
)

// FetchError reports a source call that still failed after the automatic retry.
type FetchError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
