package repository

import (
	"context"
	"errors"
	"hackassist_web/internal/util"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "hackassist:session:"

type RedisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionRepository ttl 为 0 时快照不过期
func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionRepository) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, sessionKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, util.ErrSessionNotFound
	}
	return data, err
}

func (r *RedisSessionRepository) Save(ctx context.Context, key string, data []byte) error {
	return r.rdb.Set(ctx, sessionKeyPrefix+key, data, r.ttl).Err()
}

func (r *RedisSessionRepository) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, sessionKeyPrefix+key).Err()
}

// MemorySessionRepository 单进程存储，进程重启后丢失
type MemorySessionRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{data: make(map[string][]byte)}
}

func (r *MemorySessionRepository) Load(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.data[key]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return append([]byte(nil), data...), nil
}

func (r *MemorySessionRepository) Save(_ context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = append([]byte(nil), data...)
	return nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}
