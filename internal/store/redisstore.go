package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepbox/examsim-backend/internal/config"
	"github.com/prepbox/examsim-backend/internal/model"
)

// RedisStore persists the two logical records in Redis: the last-login
// key as a plain string, the attempt collection as a list of JSON
// documents trimmed to the retention cap.
type RedisStore struct {
	rdb       *redis.Client
	retention int
}

// NewRedisStore creates and validates a Redis-backed store.
func NewRedisStore(ctx context.Context, redisURL string, retention int, log zerolog.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Redis store connected")

	if retention < 1 {
		retention = 50
	}
	return &RedisStore{rdb: rdb, retention: retention}, nil
}

// LastLogin implements Store.
func (s *RedisStore) LastLogin(ctx context.Context) (string, bool, error) {
	val, err := s.rdb.Get(ctx, config.StoreKey.LastLoginKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get last login: %w", err)
	}
	return val, val != "", nil
}

// SetLastLogin implements Store.
func (s *RedisStore) SetLastLogin(ctx context.Context, username string) error {
	return s.rdb.Set(ctx, config.StoreKey.LastLoginKey(), username, 0).Err()
}

// Attempts implements Store.
func (s *RedisStore) Attempts(ctx context.Context) ([]model.Attempt, error) {
	items, err := s.rdb.LRange(ctx, config.StoreKey.AttemptsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	attempts := make([]model.Attempt, 0, len(items))
	for _, item := range items {
		var a model.Attempt
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			return nil, fmt.Errorf("decode attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

// AppendAttempt implements Store. RPUSH plus LTRIM keeps the newest
// retention entries atomically on the Redis side.
func (s *RedisStore) AppendAttempt(ctx context.Context, attempt model.Attempt) error {
	raw, err := json.Marshal(attempt)
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, config.StoreKey.AttemptsKey(), raw)
	pipe.LTrim(ctx, config.StoreKey.AttemptsKey(), int64(-s.retention), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
