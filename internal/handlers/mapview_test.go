package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"streetlight-map/internal/mapview"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWriteViewError_StatusMapping(t *testing.T) {
	h := NewMapViewHandler(nil, zap.NewNop(), 500)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid filter", fmt.Errorf("%w: wattage", mapview.ErrInvalidFilterValue), http.StatusBadRequest},
		{"invalid bounds", fmt.Errorf("%w: south above north", mapview.ErrInvalidBounds), http.StatusBadRequest},
		{"stale", mapview.ErrStaleResponse, http.StatusConflict},
		{"view closed", mapview.ErrViewNotFound, http.StatusNotFound},
		{"fetch", &mapview.FetchError{Op: "page", Attempts: 2, Err: errors.New("connection refused")}, http.StatusBadGateway},
		{"cancelled fetch", &mapview.FetchError{Op: "bounds", Attempts: 1, Err: context.Canceled}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.writeViewError(rec, tc.err, "failed")
			assert.Equal(t, tc.want, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}
