// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis

import (
	stdctx "context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/folio/pkg/uuid"
)

// ErrLockTimeout is returned when a lock could not be acquired before the wait budget ran out.
var ErrLockTimeout = errors.New("redis: lock wait timed out")

// releaseScript deletes the key only if it still holds our token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

const (
	defaultRetryInterval = 50 * time.Millisecond
	defaultMaxWait       = 5 * time.Second
)

// LockClient is the subset of the Redis API the locker needs.
type LockClient interface {
	SetNX(ctx stdctx.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx stdctx.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Locker hands out short-lived mutual-exclusion locks backed by SET NX.
//
// The TTL bounds how long a crashed holder can block others.
type Locker struct {
	client        LockClient
	prefix        string
	ttl           time.Duration
	retryInterval time.Duration
	maxWait       time.Duration
}

// NewLocker creates a [Locker] whose keys start with prefix.
func NewLocker(client LockClient, prefix string, ttl time.Duration) *Locker {
	return &Locker{
		client:        client,
		prefix:        prefix,
		ttl:           ttl,
		retryInterval: defaultRetryInterval,
		maxWait:       min(ttl, defaultMaxWait),
	}
}

/*
Acquire blocks until the lock for key is held, ctx ends, or the wait budget is spent.

Returns:
  - func(context.Context): releases the lock; safe to call once the TTL expired
  - error: [ErrLockTimeout], the context error, or a Redis failure
*/
func (locker *Locker) Acquire(context stdctx.Context, key string) (func(stdctx.Context), error) {
	fullKey := locker.prefix + key
	token := uuid.New()
	deadline := time.Now().Add(locker.maxWait)

	for {
		acquired, err := locker.client.SetNX(context, fullKey, token, locker.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis: acquire %s: %w", fullKey, err)
		}
		if acquired {
			return func(releaseCtx stdctx.Context) {
				_ = locker.client.Eval(releaseCtx, releaseScript, []string{fullKey}, token).Err()
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		timer := time.NewTimer(locker.retryInterval)
		select {
		case <-context.Done():
			timer.Stop()
			return nil, context.Err()
		case <-timer.C:
		}
	}
}
