package kv

import "context"

// MockStore is a mock implementation of the Store interface for testing.
// Uses function fields to allow tests to inject custom behavior.
// Unset functions fall through to an embedded MemoryStore.
type MockStore struct {
	GetFunc    func(ctx context.Context, key string) (string, bool, error)
	SetFunc    func(ctx context.Context, key, value string) error
	RemoveFunc func(ctx context.Context, key string) error

	mem *MemoryStore
}

// NewMockStore creates a MockStore backed by an empty MemoryStore.
func NewMockStore() *MockStore {
	return &MockStore{mem: NewMemoryStore()}
}

// Memory returns the backing store used when no function is set.
func (m *MockStore) Memory() *MemoryStore {
	return m.mem
}

// Get calls the mock function or reads the backing store if not set
func (m *MockStore) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return m.mem.Get(ctx, key)
}

// Set calls the mock function or writes the backing store if not set
func (m *MockStore) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	return m.mem.Set(ctx, key, value)
}

// Remove calls the mock function or deletes from the backing store if not set
func (m *MockStore) Remove(ctx context.Context, key string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, key)
	}
	return m.mem.Remove(ctx, key)
}
