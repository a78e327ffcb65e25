// Package redisrepo keeps the session in a Redis hash, for installs whose
// session must outlive the local disk (shared kiosks, containers).
package redisrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/jrsteele09/go-order-portal/session"
	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 3 * time.Second
	opTimeout   = 2 * time.Second
)

var _ session.Repo = (*Repo)(nil)

// Repo stores every session key as a field of one hash.
type Repo struct {
	client *redis.Client
	key    string
}

// NewClient parses a Redis URL and pings the server.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	options.DialTimeout = dialTimeout
	options.ReadTimeout = opTimeout
	options.WriteTimeout = opTimeout

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping: %w", errors.ErrStorageUnavailable, err)
	}
	return client, nil
}

func New(client *redis.Client, key string) *Repo {
	return &Repo{client: client, key: key}
}

func (r *Repo) Get(field string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	v, err := r.client.HGet(ctx, r.key, field).Result()
	if err == redis.Nil {
		return "", errors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: redis HGET %s: %w", errors.ErrStorageUnavailable, field, err)
	}
	return v, nil
}

func (r *Repo) Set(field, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.client.HSet(ctx, r.key, field, value).Err(); err != nil {
		return fmt.Errorf("%w: redis HSET %s: %w", errors.ErrStorageUnavailable, field, err)
	}
	return nil
}

func (r *Repo) Delete(field string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.client.HDel(ctx, r.key, field).Err(); err != nil {
		return fmt.Errorf("%w: redis HDEL %s: %w", errors.ErrStorageUnavailable, field, err)
	}
	return nil
}

// Close releases the underlying client.
func (r *Repo) Close() error {
	return r.client.Close()
}
