// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/api"
)

type readinessBody struct {
	Data struct {
		Status string `json:"status"`
		Checks []struct {
			Name  string `json:"name"`
			OK    bool   `json:"ok"`
			Error string `json:"error"`
		} `json:"checks"`
	} `json:"data"`
}

func callHealth(t *testing.T, handler http.HandlerFunc) (int, readinessBody) {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body readinessBody
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return recorder.Code, body
}

func TestReadiness(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	healthy := func(context.Context) error { return nil }

	t.Run("all_healthy", func(t *testing.T) {
		_, readiness := api.NewHealthHandlers(api.HealthDependencies{CheckDatabase: healthy, CheckCache: healthy}, logger)

		code, body := callHealth(t, readiness)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ready", body.Data.Status)
		require.Len(t, body.Data.Checks, 2)
		assert.Equal(t, "postgres", body.Data.Checks[0].Name)
		assert.Equal(t, "redis", body.Data.Checks[1].Name)
	})

	t.Run("redis_down", func(t *testing.T) {
		failing := func(context.Context) error { return errors.New("connection refused") }
		_, readiness := api.NewHealthHandlers(api.HealthDependencies{CheckDatabase: healthy, CheckCache: failing}, logger)

		code, body := callHealth(t, readiness)
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "degraded", body.Data.Status)
		require.Len(t, body.Data.Checks, 2)
		assert.True(t, body.Data.Checks[0].OK)
		assert.False(t, body.Data.Checks[1].OK)
		assert.Equal(t, "connection refused", body.Data.Checks[1].Error)
	})
}

func TestLiveness(t *testing.T) {
	liveness, _ := api.NewHealthHandlers(api.HealthDependencies{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	recorder := httptest.NewRecorder()
	liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"}}`, recorder.Body.String())
}
