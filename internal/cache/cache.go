// Package cache is a small key/value cache abstraction with a Redis
// implementation for deployments and an in-memory one for local runs.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("key not found in cache")
	ErrInvalidValue = errors.New("invalid value for cache")
)

// DefaultTTL applies when Set is called with a zero ttl.
const DefaultTTL = time.Hour

// Cache stores string or byte values under string keys. Get decodes into a
// *string or *[]byte.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func assign(raw []byte, value interface{}) error {
	switch v := value.(type) {
	case *string:
		*v = string(raw)
	case *[]byte:
		*v = append((*v)[:0], raw...)
	default:
		return ErrInvalidValue
	}
	return nil
}
