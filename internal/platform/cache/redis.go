// Package cache keeps photo records and the shared CSRF signing key in Redis or Valkey
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"photo-gallery/internal/config"
	"photo-gallery/internal/domain/photo"
)

// ErrCacheMiss is returned when a key is not cached
var ErrCacheMiss = errors.New("cache miss")

const (
	photoKeyPrefix     = "photo:"
	photoListKeyPrefix = "photo_list:"
	secretKeyPrefix    = "secret:"
)

// RedisClient wraps the Redis client with gallery-specific operations.
// Works with both Redis and Valkey.
type RedisClient struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedisClient connects and pings the server
func NewRedisClient(ctx context.Context, cfg config.CacheConfig) (*RedisClient, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("cache is disabled")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.Database,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close() //nolint:errcheck // Error path cleanup
		return nil, fmt.Errorf("failed to connect to Redis/Valkey: %w", err)
	}

	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &RedisClient{client: rdb, defaultTTL: ttl}, nil
}

func (r *RedisClient) getJSON(ctx context.Context, key string, result any) error {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(val, result); err != nil {
		return fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	return nil
}

func (r *RedisClient) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return nil
}

func photoKey(id int64) string {
	return fmt.Sprintf("%s%d", photoKeyPrefix, id)
}

// GetPhoto returns a cached photo or ErrCacheMiss
func (r *RedisClient) GetPhoto(ctx context.Context, id int64) (*photo.Photo, error) {
	var p photo.Photo
	if err := r.getJSON(ctx, photoKey(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPhoto caches a photo with the default TTL
func (r *RedisClient) SetPhoto(ctx context.Context, p *photo.Photo) error {
	return r.setJSON(ctx, photoKey(p.ID), p, 0)
}

// DeletePhoto evicts a photo
func (r *RedisClient) DeletePhoto(ctx context.Context, id int64) error {
	if err := r.client.Del(ctx, photoKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete photo from cache: %w", err)
	}
	return nil
}

// GetPhotoList returns a cached listing for sort or ErrCacheMiss
func (r *RedisClient) GetPhotoList(ctx context.Context, sort photo.SortKey) ([]*photo.Photo, error) {
	var photos []*photo.Photo
	if err := r.getJSON(ctx, photoListKeyPrefix+string(sort), &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// SetPhotoList caches a listing for sort
func (r *RedisClient) SetPhotoList(ctx context.Context, sort photo.SortKey, photos []*photo.Photo) error {
	return r.setJSON(ctx, photoListKeyPrefix+string(sort), photos, 0)
}

// InvalidatePhotoLists drops every cached listing
func (r *RedisClient) InvalidatePhotoLists(ctx context.Context) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, photoListKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}
	return nil
}

// SharedKey stores candidate under name unless another replica stored a key
// first, and returns the key every replica should use
func (r *RedisClient) SharedKey(ctx context.Context, name string, candidate []byte) ([]byte, error) {
	key := secretKeyPrefix + name
	if err := r.client.SetNX(ctx, key, candidate, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to store shared key %s: %w", name, err)
	}
	stored, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to load shared key %s: %w", name, err)
	}
	return stored, nil
}

// Health checks if the Redis/Valkey connection is healthy
func (r *RedisClient) Health(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis/valkey health check failed: %w", err)
	}
	return nil
}

// FlushCache clears the selected database
func (r *RedisClient) FlushCache(ctx context.Context) error {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}

// Close closes the Redis/Valkey connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}
