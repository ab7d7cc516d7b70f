// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/folio/internal/platform/ctxkey"
)

// DBTX is the query surface shared by [*pgxpool.Pool] and [pgx.Tx].
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithTx returns a copy of ctx carrying tx.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, ctxkey.KeyTx, tx)
}

// TxFromContext returns the transaction bound to ctx, if any.
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(ctxkey.KeyTx).(pgx.Tx)
	return tx, ok && tx != nil
}

// Executor returns the active transaction from ctx or the pool.
func Executor(ctx context.Context, pool *pgxpool.Pool) DBTX {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return pool
}

// TxManager runs functions inside a single database transaction.
type TxManager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTxManager creates a new [TxManager].
func NewTxManager(pool *pgxpool.Pool, logger *slog.Logger) *TxManager {
	return &TxManager{pool: pool, logger: logger}
}

/*
ExecTx executes fn within a READ COMMITTED transaction.

The transaction travels in the context passed to fn; repositories pick it up
through [Executor]. When ctx already carries a transaction, fn joins it and
the outermost caller owns commit and rollback.

Returns:
  - error: whatever fn returned, or the begin/commit failure
*/
func (manager *TxManager) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := manager.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("postgres: begin transaction: %w", err)
	}

	// Safe even after commit
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			manager.logger.WarnContext(ctx, "transaction_rollback_failed", slog.Any("error", rollbackErr))
		}
	}()

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit transaction: %w", err)
	}

	return nil
}
