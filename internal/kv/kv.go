// Package kv defines the key-value namespace Pulse persists its local state
// into, along with the fire-and-forget write path used by the services.
// Concrete backends live in the boltstore, sqlitestore and redisstore
// subpackages; MemoryStore serves tests and ephemeral runs.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt is wrapped by GetJSON when a stored value cannot be decoded.
var ErrCorrupt = errors.New("corrupt stored value")

// Store is a string-keyed, string-valued persistence service.
// Implementations must be safe for concurrent use. Set is atomic per key,
// but no ordering is guaranteed between concurrent writes to the same key.
type Store interface {
	// Get returns the stored value and true, or "" and false if the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Counter is implemented by stores that can report how many keys they hold.
type Counter interface {
	Count() int
}

// GetJSON loads key from s and decodes it into dest.
// found is false when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, dest any) (found bool, err error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return true, fmt.Errorf("failed to decode %s: %w: %v", key, ErrCorrupt, err)
	}
	return true, nil
}
