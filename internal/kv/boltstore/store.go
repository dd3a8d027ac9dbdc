// Package boltstore is the default kv.Store backend. Every Pulse key lives in
// one bbolt bucket, values stored as raw bytes.
package boltstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tangled.org/pulse.social/pulse/internal/kv"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("pulse_kv")

// ErrNoBucket means the database was not created by Open.
var ErrNoBucket = errors.New("boltstore: bucket missing")

var _ kv.Store = (*Store)(nil)
var _ kv.Counter = (*Store)(nil)

// Options configures Open.
type Options struct {
	// Path of the database file. Missing parent directories are created.
	Path string
	// Timeout waiting for the file lock. Zero means 5s.
	Timeout time.Duration
	// FileMode for a newly created file. Zero means 0600.
	FileMode os.FileMode
}

// Store is a bbolt-backed kv.Store.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at opts.Path.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("boltstore: path is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0o600
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(opts.Path, opts.FileMode, &bolt.Options{Timeout: opts.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", opts.Path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) view(ctx context.Context, fn func(b *bolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return ErrNoBucket
		}
		return fn(b)
	})
}

func (s *Store) update(ctx context.Context, fn func(b *bolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return ErrNoBucket
		}
		return fn(b)
	})
}

func (s *Store) Get(ctx context.Context, key string) (value string, found bool, err error) {
	err = s.view(ctx, func(b *bolt.Bucket) error {
		// bbolt memory is only valid inside the transaction; string() copies
		if raw := b.Get([]byte(key)); raw != nil {
			value, found = string(raw), true
		}
		return nil
	})
	return value, found, err
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.update(ctx, func(b *bolt.Bucket) error {
		return b.Put([]byte(key), []byte(value))
	})
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.update(ctx, func(b *bolt.Bucket) error {
		return b.Delete([]byte(key))
	})
}

// Count returns the number of stored keys, or -1 if the bucket cannot be read.
func (s *Store) Count() int {
	count := -1
	s.view(context.Background(), func(b *bolt.Bucket) error {
		count = b.Stats().KeyN
		return nil
	})
	return count
}
