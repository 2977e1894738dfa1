package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/hashgate/core"
	"github.com/layer-3/hashgate/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the NonceStore interface. Records
// are stored JSON-encoded under a prefixed key with a TTL, so expiry needs no
// cleanup code.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis nonce store
func NewRedisStore(client *redis.Client) ports.NonceStore {
	return &RedisStore{
		client: client,
		prefix: "hashgate:nonce:",
	}
}

// Put stores a nonce record with an expiry
func (s *RedisStore) Put(ctx context.Context, nonce string, record core.NonceRecord, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode nonce record: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+nonce, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store nonce: %w", err)
	}

	return nil
}

// Get retrieves a nonce record; the second return value is false when the
// key is absent or expired.
func (s *RedisStore) Get(ctx context.Context, nonce string) (core.NonceRecord, bool, error) {
	payload, err := s.client.Get(ctx, s.prefix+nonce).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.NonceRecord{}, false, nil
	}
	if err != nil {
		return core.NonceRecord{}, false, fmt.Errorf("failed to read nonce: %w", err)
	}

	var record core.NonceRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return core.NonceRecord{}, false, fmt.Errorf("failed to decode nonce record: %w", err)
	}

	return record, true, nil
}

// Delete removes a nonce record and reports whether it was present. The
// removal is a single DEL, so concurrent consumers see exactly one true.
func (s *RedisStore) Delete(ctx context.Context, nonce string) (bool, error) {
	deleted, err := s.client.Del(ctx, s.prefix+nonce).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete nonce: %w", err)
	}

	return deleted > 0, nil
}
