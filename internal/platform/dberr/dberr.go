// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/folio/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
//
// resource names the entity for NotFound messages; action describes the
// statement for server-side logs.
func Wrap(err error, resource, action string) error {
	if err == nil {
		return nil
	}

	// Application errors pass through untouched.
	if apperr.IsAppError(err) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	cause := fmt.Errorf("postgres: %s: %w", action, err)

	if IsUniqueViolation(err) {
		return apperr.Conflict(resource + " already exists").WithCause(cause)
	}
	if IsForeignKeyViolation(err) {
		return apperr.Conflict(resource + " is still referenced or references a missing row").WithCause(cause)
	}

	return apperr.Internal(cause)
}

// IsUniqueViolation reports whether err is a SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	return hasCode(err, pgerrcode.UniqueViolation)
}

// IsForeignKeyViolation reports whether err is a SQLSTATE 23503.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, pgerrcode.ForeignKeyViolation)
}

// ConstraintName returns the violated constraint, or "" if err is not a Postgres error.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
