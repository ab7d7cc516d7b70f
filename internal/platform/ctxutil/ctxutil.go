// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ctxutil reads and writes the per-request values Folio threads through
[context.Context]: the correlation id, the request logger, the caller's token
claims and the body size cap.

Middleware writes them; handlers, services and the hierarchy engine only read.
*/
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/folio/internal/platform/constants"
	"github.com/taibuivan/folio/internal/platform/ctxkey"
	"github.com/taibuivan/folio/internal/platform/sec"
)

// # Request Tracing

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns "" outside an HTTP request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger stores the logger used for cascade and draft events of this request.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger falls back to [slog.Default] so background callers can still log.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithAuthUser attaches the verified token claims of the caller.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetAuthUser returns nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, ok := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// # Body Limits

// WithBodyLimit sets the largest request body, in bytes, a handler may decode.
func WithBodyLimit(ctx context.Context, limit int64) context.Context {
	return context.WithValue(ctx, ctxkey.KeyBodyLimit, limit)
}

// GetBodyLimit returns [constants.MaxRequestBodyBytes] when no limit was set.
func GetBodyLimit(ctx context.Context) int64 {
	limit, ok := ctx.Value(ctxkey.KeyBodyLimit).(int64)
	if !ok || limit <= 0 {
		return constants.MaxRequestBodyBytes
	}
	return limit
}
