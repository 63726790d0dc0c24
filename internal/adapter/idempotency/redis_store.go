package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "idempotency:booking:"
	defaultTTL = 24 * time.Hour
)

// RedisStore maps client idempotency keys to the booking they created.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, ttl: defaultTTL}
}

func (s *RedisStore) Lookup(ctx context.Context, key string) (uuid.UUID, bool, error) {
	val, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("idempotency lookup: %w", err)
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("idempotency key %q holds %q: %w", key, val, err)
	}
	return id, true, nil
}

// Remember keeps the first booking recorded for a key.
func (s *RedisStore) Remember(ctx context.Context, key string, bookingID uuid.UUID) error {
	if err := s.client.SetNX(ctx, keyPrefix+key, bookingID.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}
