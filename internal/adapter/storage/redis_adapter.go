package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

const (
	sessionKeyPrefix     = "bill:"
	leaseKey             = "bills:leases"
	idempotencyKeyPrefix = "idempotency:"
	idempotencyKeyTTL    = 24 * time.Hour
)

// RedisAdapter keeps open bills in Redis so they survive a restart of the
// counter process. Bill keys never expire on their own: a bill holds stock,
// so it has to be cancelled by the counter before it is dropped. The lease
// set scores every bill with its last save time for the idle reaper.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SaveSession(ctx context.Context, s *domain.BillSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode bill: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKeyPrefix+s.ID, data, 0)
		pipe.ZAdd(ctx, leaseKey, redis.Z{Score: float64(time.Now().UnixMilli()), Member: s.ID})
		return nil
	})
	return err
}

func (r *RedisAdapter) LoadSession(ctx context.Context, id string) (*domain.BillSession, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("bill %s: %w", id, domain.ErrSessionNotFound)
	}
	if err != nil {
		return nil, err
	}

	var s domain.BillSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode bill %s: %w", id, err)
	}
	if s.Lines == nil {
		s.Lines = []domain.LineItem{}
	}
	return &s, nil
}

func (r *RedisAdapter) DeleteSession(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKeyPrefix+id)
		pipe.ZRem(ctx, leaseKey, id)
		return nil
	})
	return err
}

func (r *RedisAdapter) IdleSessions(ctx context.Context, savedBefore time.Time) ([]string, error) {
	return r.client.ZRangeByScore(ctx, leaseKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(savedBefore.UnixMilli(), 10),
	}).Result()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}
