package history

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/autopost/internal/types"
)

// RedisStore keeps history in a Redis list, one JSON record per element.
// RPUSH is atomic, so a record is either in the list or not.
type RedisStore struct {
	rdb    *redis.Client
	corpus string
}

// HistoryKey returns the list key holding a corpus' history.
func HistoryKey(corpus string) string {
	return fmt.Sprintf("autopost:%s:history", corpus)
}

// NewRedisStore creates a store for corpus. The connection is made lazily.
func NewRedisStore(redisOpts *redis.Options, corpus string) (*RedisStore, error) {
	if corpus == "" {
		return nil, fmt.Errorf("corpus name cannot be empty")
	}
	return &RedisStore{rdb: redis.NewClient(redisOpts), corpus: corpus}, nil
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Load reads the whole list.
func (s *RedisStore) Load(ctx context.Context) ([]types.Entry, error) {
	key := HistoryKey(s.corpus)
	values, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history list %s: %w", key, err)
	}

	entries := make([]types.Entry, 0, len(values))
	for i, value := range values {
		entry, err := decodeRecord([]byte(value), key, i+1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Append pushes one record onto the list.
func (s *RedisStore) Append(ctx context.Context, entry types.Entry) error {
	data, err := encodeRecord(entry)
	if err != nil {
		return err
	}
	if err := s.rdb.RPush(ctx, HistoryKey(s.corpus), data).Err(); err != nil {
		return fmt.Errorf("failed to push history record: %w", err)
	}
	return nil
}

// Reset deletes the list.
func (s *RedisStore) Reset(ctx context.Context) error {
	if err := s.rdb.Del(ctx, HistoryKey(s.corpus)).Err(); err != nil {
		return fmt.Errorf("failed to delete history list: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
