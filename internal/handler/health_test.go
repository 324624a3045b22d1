package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	h := newTestHandler()

	rr := serve(h.Health, createRequest(t, http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestReadyHandler(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		h := newTestHandler()

		rr := serve(h.Ready, createRequest(t, http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("database unavailable", func(t *testing.T) {
		h := newTestHandler()
		h.health = &MockPinger{
			MockPing: func(ctx context.Context) error { return errors.New("no connection") },
		}

		rr := serve(h.Ready, createRequest(t, http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
