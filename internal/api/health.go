// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/folio/internal/platform/constants"
	"github.com/taibuivan/folio/internal/platform/respond"
)

const readinessTimeout = 3 * time.Second

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase func(ctx context.Context) error

	// CheckCache pings the Redis client.
	CheckCache func(ctx context.Context) error
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (liveness check).
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

/*
readiness handles GET /ready (readiness check).

Checks run concurrently under one deadline. Every check reports its own
result; one failing dependency never hides the state of the others.
*/
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	checks := []struct {
		name  string
		check func(ctx context.Context) error
	}{
		{"postgres", handler.dependencies.CheckDatabase},
		{"redis", handler.dependencies.CheckCache},
	}

	ctx, cancel := context.WithTimeout(request.Context(), readinessTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make([]checkResult, 0, len(checks))
		ready   = true
	)

	var group errgroup.Group
	for _, dependency := range checks {
		if dependency.check == nil {
			continue
		}
		group.Go(func() error {
			result := checkResult{Name: dependency.name, IsOK: true}
			if err := dependency.check(ctx); err != nil {
				result.IsOK = false
				result.Error = err.Error()
				handler.logger.Error("readiness_check_failed", slog.String("dependency", dependency.name), slog.Any("error", err))
			}

			mu.Lock()
			defer mu.Unlock()
			results = append(results, result)
			ready = ready && result.IsOK
			return nil
		})
	}
	_ = group.Wait()

	slices.SortFunc(results, func(a, b checkResult) int { return strings.Compare(a.Name, b.Name) })

	status, httpStatus := "ready", http.StatusOK
	if !ready {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		constants.FieldStatus: status,
		constants.FieldChecks: results,
	}})
}
