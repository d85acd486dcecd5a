package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(context.Context) error {
	return s.err
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("health and live always answer", func(t *testing.T) {
		handler := NewHealthHandler(&stubPinger{}, "v1.0.0", testLogger())
		router := handler.Routes()

		for _, path := range []string{"/", "/live"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code, path)
		}
	})

	t.Run("ready reflects database connectivity", func(t *testing.T) {
		handler := NewHealthHandler(&stubPinger{}, "v1.0.0", testLogger())
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		down := NewHealthHandler(&stubPinger{err: errors.New("connection refused")}, "v1.0.0", testLogger())
		rec = httptest.NewRecorder()
		down.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}
