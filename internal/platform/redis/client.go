// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis holds Folio's coordination state that must be shared between API
instances but never outlives a request: the per-user draft locks.

Nothing here is a cache or a source of truth. Losing Redis makes SaveDraft
answer 503 and /ready report degraded; books and chapters stay readable.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/folio/internal/platform/constants"
)

// Lock traffic is one SET NX plus one EVAL per draft save, so the pool stays small
// and timeouts stay below the draft lock wait.
const (
	poolSize     = 8
	minIdleConns = 1
	dialTimeout  = 2 * time.Second
	ioTimeout    = time.Second
	pingTimeout  = 2 * time.Second
)

// NewClient connects to the Redis named by redisURL and pings it once.
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.ClientName = constants.AppName
	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.DialTimeout = dialTimeout
	options.ReadTimeout = ioTimeout
	options.WriteTimeout = ioTimeout

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
	)
	return client, nil
}

// Ping backs GET /ready and the startup check.
func Ping(context stdctx.Context, client redis.UniversalClient) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}
