package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	re "github.com/redis/go-redis/v9"
)

// Redis stores blobs as plain string values under a namespaced key.
type Redis struct {
	client    *re.Client
	namespace string
}

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	Namespace string
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is required")
	}
	client := re.NewClient(&re.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisFromClient(client, cfg.Namespace), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *re.Client, namespace string) *Redis {
	return &Redis{client: client, namespace: namespace}
}

func (r *Redis) key(k string) string {
	if r.namespace == "" || strings.HasPrefix(k, r.namespace+":") {
		return k
	}
	return r.namespace + ":" + k
}

// Load implements Store.
func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, re.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Save implements Store.
func (r *Redis) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
