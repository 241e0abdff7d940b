package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AzielCF/az-hotelbot/pkg/msgworker"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolStats_Uninitialized(t *testing.T) {
	app := fiber.New()
	InitRestWorkerPool(app.Group("/api"), nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/workers", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWorkerPoolStats_Initialized(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := msgworker.NewPool(2, 10)
	pool.Start(ctx)
	t.Cleanup(func() {
		cancel()
		pool.Stop()
	})

	app := fiber.New()
	InitRestWorkerPool(app.Group("/api"), pool)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/workers", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Message string              `json:"message"`
		Results msgworker.PoolStats `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Results.NumWorkers)
	assert.Equal(t, "0 events processed", body.Message)
}
