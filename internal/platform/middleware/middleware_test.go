// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/taibuivan/folio/internal/platform/ctxutil"
	"github.com/taibuivan/folio/internal/platform/middleware"
	"github.com/taibuivan/folio/internal/platform/sec"
)

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

type stubVerifier struct {
	claims *sec.AuthClaims
}

func (verifier stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return verifier.claims, nil
}

/*
TestAPIKey checks header gating and the empty-list bypass.
*/
func TestAPIKey(t *testing.T) {
	guarded := middleware.APIKey([]string{"key-a", " key-b "})(okHandler)

	tests := []struct {
		name   string
		method string
		key    string
		status int
	}{
		{"valid_key", http.MethodGet, "key-a", http.StatusOK},
		{"trimmed_key", http.MethodGet, "key-b", http.StatusOK},
		{"wrong_key", http.MethodGet, "key-c", http.StatusUnauthorized},
		{"missing_key", http.MethodGet, "", http.StatusUnauthorized},
		{"preflight", http.MethodOptions, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, "/api/v1/books", nil)
			if tt.key != "" {
				request.Header.Set("X-API-Key", tt.key)
			}
			recorder := httptest.NewRecorder()
			guarded.ServeHTTP(recorder, request)
			assert.Equal(t, tt.status, recorder.Code)
		})
	}

	open := middleware.APIKey(nil)(okHandler)
	recorder := httptest.NewRecorder()
	open.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestAuthenticate_And_RequireRole walks anonymous, invalid and authorized callers.
*/
func TestAuthenticate_And_RequireRole(t *testing.T) {
	verifier := stubVerifier{claims: &sec.AuthClaims{UserID: 5, Role: string(sec.RoleEditor)}}

	var seen *sec.AuthClaims
	capture := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetAuthUser(request.Context())
		writer.WriteHeader(http.StatusOK)
	})

	editorOnly := middleware.Authenticate(verifier)(middleware.RequireRole(sec.RoleEditor)(capture))
	adminOnly := middleware.Authenticate(verifier)(middleware.RequireRole(sec.RoleAdmin)(capture))

	serve := func(handler http.Handler, header string) int {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			request.Header.Set("Authorization", header)
		}
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(editorOnly, ""))
	assert.Equal(t, http.StatusUnauthorized, serve(editorOnly, "Token good"))
	assert.Equal(t, http.StatusUnauthorized, serve(editorOnly, "Bearer bad"))
	assert.Equal(t, http.StatusForbidden, serve(adminOnly, "Bearer good"))

	assert.Equal(t, http.StatusOK, serve(editorOnly, "Bearer good"))
	require.NotNil(t, seen)
	assert.Equal(t, int64(5), seen.UserID)
}

/*
TestRateLimit rejects requests beyond the burst from a single IP.
*/
func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limited := middleware.RateLimitWith(ctx, rate.Limit(0.001), 2)(okHandler)

	codes := make([]int, 0, 3)
	for range 3 {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("X-Real-IP", "10.0.0.1")
		recorder := httptest.NewRecorder()
		limited.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

/*
TestRequestID echoes the client id or generates one.
*/
func TestRequestID(t *testing.T) {
	handler := middleware.RequestID()(okHandler)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "trace-1")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "trace-1", recorder.Header().Get("X-Request-ID"))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}

/*
TestPanicRecovery turns a panic into a 500.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
