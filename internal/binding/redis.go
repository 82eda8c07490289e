package binding

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/mj1618/docbind/internal/model"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ Backend = (*RedisBackend)(nil)

// redisKeyPrefix namespaces the per-session hash.
const redisKeyPrefix = "docbind:bindings:"

// RedisBackend stores a session's binding map in one Redis hash outside the
// process heap. The hash is private to the session that created it and
// expires after ttl.
type RedisBackend struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisBackend returns a backend for session. A zero ttl keeps the hash
// until Clear.
func NewRedisBackend(client *redis.Client, session string, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, key: redisKeyPrefix + session, ttl: ttl}
}

// Key returns the Redis hash holding the session's bindings.
func (r *RedisBackend) Key() string { return r.key }

func (r *RedisBackend) Put(ctx context.Context, key string, rec model.BindingRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal binding: %w", err)
	}
	pipe := r.client.Pipeline()
	pipe.HSet(ctx, r.key, key, data)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save binding: %w", err)
	}
	return nil
}

// All skips values that do not decode.
func (r *RedisBackend) All(ctx context.Context) ([]Entry, error) {
	values, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list bindings: %w", err)
	}
	out := make([]Entry, 0, len(values))
	for k, v := range values {
		var rec model.BindingRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			continue
		}
		out = append(out, Entry{Key: k, Record: rec})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, r.key, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete bindings: %w", err)
	}
	return nil
}

func (r *RedisBackend) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear bindings: %w", err)
	}
	return nil
}
