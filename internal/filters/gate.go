// Package filters implements the content filter gate: the viewer's NSFW,
// brainrot and child-mode settings plus the set of allowed content types,
// persisted through the key-value store, and the brainrot predicate applied
// to feed posts.
package filters

import (
	"context"
	"errors"
	"sync"

	"tangled.org/pulse.social/pulse/internal/classifier"
	"tangled.org/pulse.social/pulse/internal/kv"
	"tangled.org/pulse.social/pulse/internal/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// KeyContentFilters is the store key holding the serialized ContentFilters
const KeyContentFilters = "content_filters"

// Gate holds the current filter state. Mutations update memory immediately
// and persist the full state in the background.
type Gate struct {
	mu      sync.RWMutex
	filters ContentFilters

	persister  *kv.Persister
	classifier classifier.Classifier
	inflight   singleflight.Group
}

// NewGate loads the stored filters (or defaults) and returns a ready gate.
// A corrupt stored entry is deleted and defaults are used.
func NewGate(ctx context.Context, persister *kv.Persister, clf classifier.Classifier) *Gate {
	g := &Gate{
		persister:  persister,
		classifier: clf,
	}
	g.filters = g.load(ctx)
	return g
}

func (g *Gate) load(ctx context.Context) ContentFilters {
	var stored ContentFilters
	found, err := kv.GetJSON(ctx, g.persister.Store(), KeyContentFilters, &stored)
	switch {
	case errors.Is(err, kv.ErrCorrupt):
		log.Warn().Err(err).Msg("filters: discarding corrupt stored filters")
		metrics.StoreCorruptEntriesTotal.WithLabelValues(KeyContentFilters).Inc()
		// Removed before any mutation can schedule a write for the same key
		if err := g.persister.Store().Remove(ctx, KeyContentFilters); err != nil {
			log.Error().Err(err).Msg("filters: failed to remove corrupt stored filters")
		}
		return DefaultFilters()
	case err != nil:
		log.Error().Err(err).Msg("filters: failed to load stored filters, using defaults")
		return DefaultFilters()
	case !found:
		return DefaultFilters()
	}

	if stored.ContentTypes == nil {
		// Entries written before content types existed
		stored.ContentTypes = AllContentTypes()
	} else {
		known := make([]ContentType, 0, len(stored.ContentTypes))
		for _, ct := range dedupe(stored.ContentTypes) {
			if _, ok := ParseContentType(string(ct)); ok {
				known = append(known, ct)
			}
		}
		stored.ContentTypes = known
	}
	if stored.ChildrenMode {
		stored.ShowNSFW = false
	}

	log.Debug().
		Bool("show_nsfw", stored.ShowNSFW).
		Bool("block_brainrot", stored.BlockBrainrot).
		Bool("children_mode", stored.ChildrenMode).
		Int("content_types", len(stored.ContentTypes)).
		Msg("filters: loaded stored filters")

	return stored
}

// Filters returns a snapshot of the current state.
func (g *Gate) Filters() ContentFilters {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.filters.clone()
}

// mutate applies fn to a copy of the state. If fn reports a change the copy
// becomes current and is persisted; otherwise the state is left untouched.
// It returns the resulting state.
func (g *Gate) mutate(op string, fn func(f *ContentFilters) bool) ContentFilters {
	g.mu.Lock()
	next := g.filters.clone()
	if !fn(&next) {
		current := g.filters.clone()
		g.mu.Unlock()
		log.Debug().Str("operation", op).Msg("filters: mutation rejected")
		return current
	}
	g.filters = next
	// Writes start in mutation order but may complete in any order
	g.persister.SetJSON(KeyContentFilters, next)
	g.mu.Unlock()

	metrics.FilterChangesTotal.WithLabelValues(op).Inc()
	return next.clone()
}

// UpdateFilters merges a partial update into the current state and persists
// the result. It does not guard against an empty content type set; use
// SetContentTypes or ToggleContentType for that.
func (g *Gate) UpdateFilters(u Update) ContentFilters {
	return g.mutate("update", func(f *ContentFilters) bool {
		if u.ShowNSFW != nil {
			f.ShowNSFW = *u.ShowNSFW
		}
		if u.BlockBrainrot != nil {
			f.BlockBrainrot = *u.BlockBrainrot
		}
		if u.ChildrenMode != nil {
			f.ChildrenMode = *u.ChildrenMode
		}
		if u.ContentTypes != nil {
			f.ContentTypes = dedupe(u.ContentTypes)
		}
		if f.ChildrenMode {
			f.ShowNSFW = false
		}
		return true
	})
}

// ToggleNSFW flips ShowNSFW. It does nothing while children mode is on.
func (g *Gate) ToggleNSFW() ContentFilters {
	return g.mutate("toggle_nsfw", func(f *ContentFilters) bool {
		if f.ChildrenMode {
			return false
		}
		f.ShowNSFW = !f.ShowNSFW
		return true
	})
}

// ToggleBrainrot flips BlockBrainrot.
func (g *Gate) ToggleBrainrot() ContentFilters {
	return g.mutate("toggle_brainrot", func(f *ContentFilters) bool {
		f.BlockBrainrot = !f.BlockBrainrot
		return true
	})
}

// ToggleChildrenMode flips ChildrenMode. Turning it on also hides NSFW and
// blocks brainrot in the same update; turning it off restores neither.
func (g *Gate) ToggleChildrenMode() ContentFilters {
	return g.mutate("toggle_children_mode", func(f *ContentFilters) bool {
		f.ChildrenMode = !f.ChildrenMode
		if f.ChildrenMode {
			f.ShowNSFW = false
			f.BlockBrainrot = true
		}
		return true
	})
}

// SetContentTypes replaces the allowed set. An empty set is ignored.
func (g *Gate) SetContentTypes(types []ContentType) ContentFilters {
	return g.mutate("set_content_types", func(f *ContentFilters) bool {
		if len(types) == 0 {
			return false
		}
		f.ContentTypes = dedupe(types)
		return true
	})
}

// ToggleContentType removes ct from the allowed set, or adds it if absent.
// The last remaining type cannot be removed.
func (g *Gate) ToggleContentType(ct ContentType) ContentFilters {
	return g.mutate("toggle_content_type", func(f *ContentFilters) bool {
		if !f.Allows(ct) {
			f.ContentTypes = append(f.ContentTypes, ct)
			return true
		}
		if len(f.ContentTypes) <= 1 {
			return false
		}
		remaining := f.ContentTypes[:0]
		for _, t := range f.ContentTypes {
			if t != ct {
				remaining = append(remaining, t)
			}
		}
		f.ContentTypes = remaining
		return true
	})
}
