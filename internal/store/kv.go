package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by a KV when the key has never been written.
var ErrKeyNotFound = errors.New("key not found")

// KV is the single local key-value store every collection lives in.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}

// UpdateFunc receives the current value (exists=false when missing) and
// returns the value to write.
type UpdateFunc func(current string, exists bool) (string, error)

// Updater is implemented by backends that can run a read-modify-write cycle
// without interleaving with other writers.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// Keys of the two entity namespaces.
const (
	BuildingsKey = "building-management-buildings"
	ParkingsKey  = "building-management-parkings"
)
