package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ============================================================
// JSON-array collections
// ============================================================

// Collection is one entity family serialized as a JSON array under one key.
type Collection[T any] struct {
	kv     KV
	key    string
	logger *zap.Logger
}

func NewCollection[T any](kv KV, key string, logger *zap.Logger) *Collection[T] {
	return &Collection[T]{kv: kv, key: key, logger: logger}
}

// GetAll reads the collection. A missing key, an empty or unparsable payload,
// or a payload that is not an array all read as an empty collection; only
// backend failures are returned as errors.
func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	raw, err := c.kv.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", c.key, err)
	}
	return c.decode(raw), nil
}

// SaveAll replaces the whole collection.
func (c *Collection[T]) SaveAll(ctx context.Context, list []T) error {
	raw, err := encode(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.kv.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	return nil
}

// Mutate runs one read-modify-write cycle. When fn returns an error nothing
// is written. Backends implementing Updater run the cycle atomically.
func (c *Collection[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	u, ok := c.kv.(Updater)
	if !ok {
		list, err := c.GetAll(ctx)
		if err != nil {
			return err
		}
		next, err := fn(list)
		if err != nil {
			return err
		}
		return c.SaveAll(ctx, next)
	}

	return u.Update(ctx, c.key, func(current string, exists bool) (string, error) {
		list := []T{}
		if exists {
			list = c.decode(current)
		}
		next, err := fn(list)
		if err != nil {
			return "", err
		}
		raw, err := encode(next)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", c.key, err)
		}
		return raw, nil
	})
}

func (c *Collection[T]) decode(raw string) []T {
	if raw == "" {
		return []T{}
	}
	var list []T
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		c.logger.Warn("discarding unreadable collection",
			zap.String("key", c.key),
			zap.Int("bytes", len(raw)),
			zap.Error(err),
		)
		return []T{}
	}
	if list == nil {
		return []T{}
	}
	return list
}

func encode[T any](list []T) (string, error) {
	if list == nil {
		list = []T{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReplaceOrAppend returns a new list where the first element matching match
// is replaced by item, or item appended when nothing matches.
func ReplaceOrAppend[T any](list []T, item T, match func(T) bool) []T {
	out := make([]T, len(list), len(list)+1)
	copy(out, list)
	for i, v := range out {
		if match(v) {
			out[i] = item
			return out
		}
	}
	return append(out, item)
}
