// Package ratelimit keeps a per-address sliding window of admitted view events in Redis.
//
// The window is an accelerator in front of the view ledger: a reservation is added
// atomically before the ledger transaction and removed again unless the caller commits
// it, so the Redis count only ever reflects views that were actually recorded.
package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "reelspay:view_window:"

type RedisWindow struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
	ttl    time.Duration
}

func NewRedisWindow(rdb *redis.Client, limit int, window time.Duration) *RedisWindow {
	return &RedisWindow{
		rdb:    rdb,
		limit:  int64(limit),
		window: window,
		// slightly longer than the window so a quiet key still covers a full window
		ttl: window + 5*time.Second,
	}
}

// Reservation is one provisional entry in an address window.
type Reservation struct {
	w         *RedisWindow
	key       string
	member    string
	count     int64
	committed bool
}

// Count is the number of entries in the window including this reservation.
func (r *Reservation) Count() int64 {
	return r.count
}

// Exceeded reports whether this reservation pushed the address over the limit.
func (r *Reservation) Exceeded() bool {
	return r.count > r.w.limit
}

// Commit keeps the reservation in the window.
func (r *Reservation) Commit() {
	r.committed = true
}

// RollbackUnlessCommitted removes the reservation unless Commit was called. Meant for defer.
func (r *Reservation) RollbackUnlessCommitted(ctx context.Context) {
	if r == nil || r.committed {
		return
	}
	if err := r.w.rdb.ZRem(context.WithoutCancel(ctx), r.key, r.member).Err(); err != nil {
		slog.Error("view window rollback failed", "key", r.key, "err", err)
	}
}

// Reserve atomically trims expired entries, adds one for now and returns the resulting count.
func (w *RedisWindow) Reserve(ctx context.Context, address string, now time.Time) (*Reservation, error) {
	if address == "" {
		return nil, errors.New("address is required")
	}
	member, err := uniqueMember(now)
	if err != nil {
		return nil, err
	}
	key := keyPrefix + address
	minScore := float64(now.Add(-w.window).UnixMicro())

	pipe := w.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("(%f", minScore))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMicro()), Member: member})
	pipe.Expire(ctx, key, w.ttl)
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("view window reserve: %w", err)
	}
	count, err := card.Result()
	if err != nil {
		_ = w.rdb.ZRem(context.WithoutCancel(ctx), key, member).Err()
		return nil, fmt.Errorf("view window count: %w", err)
	}
	return &Reservation{w: w, key: key, member: member, count: count}, nil
}

// uniqueMember is [8 bytes unix nanos | 8 random bytes], base64url encoded.
func uniqueMember(t time.Time) (string, error) {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[0:8], uint64(t.UnixNano()))
	if _, err := rand.Read(b[8:16]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
