// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It hides the router's parameter extraction and the body decoding pattern,
so handlers get consistent errors and typed identifiers.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/ctxutil"
	"github.com/taibuivan/folio/internal/platform/sec"
	"github.com/taibuivan/folio/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

The body is capped at the limit stored by middleware.BodyLimit (see
[ctxutil.GetBodyLimit]); unknown fields are ignored.

Returns:
  - error: apperr.PayloadTooLarge when the cap is hit,
    validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target interface{}) error {
	limit := ctxutil.GetBodyLimit(request.Context())
	request.Body = http.MaxBytesReader(writer, request.Body, limit)

	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.PayloadTooLarge(tooLarge.Limit)
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Int64ID parses a named URL parameter as a positive numeric identifier.

Returns:
  - error: a VALIDATION_ERROR naming the parameter when it is not a positive integer
*/
func Int64ID(request *http.Request, name string) (int64, error) {
	raw := chi.URLParam(request, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validate.RequiredError(name, "Must be a positive integer")
	}
	return id, nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredUserID returns the id of the currently logged-in user.

Returns:
  - int64: user id
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (int64, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return 0, apperr.Unauthorized("Authentication required")
	}
	return claims.UserID, nil
}
