// Package kvstore is the device-local durable key-value store shared by the
// session store and the recipient cache.
//
// Values are opaque strings (callers store JSON). A missing key is reported
// as ok == false with a nil error; only I/O failures produce errors.
//
// Implementations:
//   - SQLite: the on-device default, schema managed by goose migrations.
//   - Redis: for shared development environments.
//   - Memory: process-local, used by tests and throwaway sessions.
//   - Sealed: wraps any Store and encrypts values at rest.
package kvstore

import (
	"context"
	"fmt"
)

// Store is the durable key-value contract.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Batcher is implemented by stores that can apply several writes atomically.
type Batcher interface {
	SetMany(ctx context.Context, values map[string]string) error
	RemoveMany(ctx context.Context, keys ...string) error
}

// SetAll writes every pair, atomically when s is a Batcher and one by one
// otherwise.
func SetAll(ctx context.Context, s Store, values map[string]string) error {
	if b, ok := s.(Batcher); ok {
		return b.SetMany(ctx, values)
	}
	for k, v := range values {
		if err := s.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAll removes every key. Without a Batcher it keeps going after a
// failure and returns the first error.
func RemoveAll(ctx context.Context, s Store, keys ...string) error {
	if b, ok := s.(Batcher); ok {
		return b.RemoveMany(ctx, keys...)
	}
	var first error
	for _, k := range keys {
		if err := s.Remove(ctx, k); err != nil && first == nil {
			first = fmt.Errorf("remove %s: %w", k, err)
		}
	}
	return first
}
