// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey defines typed context keys used by middleware and handlers.
//
// # Safety
//
// A private key type prevents collisions with third-party packages that also
// store values in a [context.Context].
package ctxkey

// key is an unexported type used for context keys.
type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyUser is the context key for the authenticated user claims ([sec.AuthClaims]).
	KeyUser key = "user"

	// KeyLogger is the context key for the per-request [*log/slog.Logger].
	KeyLogger key = "logger"

	// KeyTx is the context key for the active database transaction.
	KeyTx key = "tx"

	// KeyBodyLimit carries the maximum request body size in bytes.
	KeyBodyLimit key = "body_limit"
)
