package kv

import (
	"context"
	"encoding/json"
	"sync"

	"tangled.org/pulse.social/pulse/internal/metrics"
	"tangled.org/pulse.social/pulse/internal/tracing"

	"github.com/rs/zerolog/log"
)

// Persister issues fire-and-forget writes against a Store.
// Each write runs in its own goroutine; the caller never waits for it and
// failures are only logged and counted. In-flight writes are not cancellable.
type Persister struct {
	store Store

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPersister creates a persister writing to store.
func NewPersister(store Store) *Persister {
	return &Persister{store: store}
}

// Store returns the underlying store for synchronous reads.
func (p *Persister) Store() Store {
	return p.store
}

// Set schedules an asynchronous write of value under key.
func (p *Persister) Set(key, value string) {
	p.run("set", key, func(ctx context.Context) error {
		return p.store.Set(ctx, key, value)
	})
}

// SetJSON encodes v and schedules an asynchronous write under key.
// Encoding failures are logged and nothing is written.
func (p *Persister) SetJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("kv: failed to encode value")
		metrics.StoreWritesTotal.WithLabelValues("set", "error").Inc()
		return
	}
	p.Set(key, string(data))
}

// Remove schedules an asynchronous delete of key.
func (p *Persister) Remove(key string) {
	p.run("remove", key, func(ctx context.Context) error {
		return p.store.Remove(ctx, key)
	})
}

// Wait blocks until every write scheduled so far has completed.
func (p *Persister) Wait() {
	p.wg.Wait()
}

// Close stops accepting writes and waits for in-flight ones. Writes scheduled
// after Close are dropped and logged, so the store can be closed safely even
// if request handlers are still running.
func (p *Persister) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Persister) run(op, key string, write func(ctx context.Context) error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		log.Warn().Str("operation", op).Str("key", key).Msg("kv: write dropped after shutdown")
		metrics.StoreWritesTotal.WithLabelValues(op, "dropped").Inc()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()

		ctx, span := tracing.StoreSpan(context.Background(), op, key)
		err := write(ctx)
		tracing.Finish(span, err)
		if err != nil {
			log.Error().Err(err).Str("operation", op).Str("key", key).Msg("kv: background write failed")
			metrics.StoreWritesTotal.WithLabelValues(op, "error").Inc()
			return
		}
		metrics.StoreWritesTotal.WithLabelValues(op, "ok").Inc()
	}()
}
