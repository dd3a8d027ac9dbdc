// Package communities keeps the community catalog and the viewer's joined set.
// Seed communities are built in; communities created by the viewer and the
// joined set are persisted through the key-value store under separate keys.
package communities

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"tangled.org/pulse.social/pulse/internal/kv"
	"tangled.org/pulse.social/pulse/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	KeyCustomCommunities = "custom_communities"
	KeyJoinedCommunities = "joined_communities"
)

// Ledger holds every known community plus the joined set.
//
// Member counts are display counters kept in memory only: join and leave
// adjust them but the stored custom records keep the count they were
// created with.
type Ledger struct {
	mu          sync.RWMutex
	communities []Community
	index       map[string]int
	custom      []Community
	joined      map[string]struct{}

	persister *kv.Persister
	now       func() time.Time
	newID     func() string
}

// NewLedger merges seed with the stored custom communities and loads the
// joined set. A corrupt stored entry is deleted and treated as empty.
func NewLedger(ctx context.Context, persister *kv.Persister, seed []Community) *Ledger {
	l := &Ledger{
		index:     make(map[string]int),
		joined:    make(map[string]struct{}),
		persister: persister,
		now:       time.Now,
		newID:     uuid.NewString,
	}

	for _, c := range seed {
		l.add(c.clone())
	}

	for _, c := range l.loadCustom(ctx) {
		if _, exists := l.index[c.ID]; exists || c.ID == "" {
			log.Warn().Str("community_id", c.ID).Msg("communities: skipping stored community with conflicting id")
			continue
		}
		if c.MemberCount < 0 {
			c.MemberCount = 0
		}
		l.custom = append(l.custom, c.clone())
		l.add(c)
	}

	for _, id := range l.loadJoined(ctx) {
		if _, exists := l.index[id]; !exists {
			log.Debug().Str("community_id", id).Msg("communities: ignoring joined id with no community")
			continue
		}
		l.joined[id] = struct{}{}
	}

	log.Debug().
		Int("communities", len(l.communities)).
		Int("custom", len(l.custom)).
		Int("joined", len(l.joined)).
		Msg("communities: ledger loaded")

	return l
}

func (l *Ledger) add(c Community) {
	l.index[c.ID] = len(l.communities)
	l.communities = append(l.communities, c)
}

func (l *Ledger) loadCustom(ctx context.Context) []Community {
	var stored []Community
	if !l.loadKey(ctx, KeyCustomCommunities, &stored) {
		return nil
	}
	return stored
}

func (l *Ledger) loadJoined(ctx context.Context) []string {
	var stored []string
	if !l.loadKey(ctx, KeyJoinedCommunities, &stored) {
		return nil
	}
	return stored
}

// loadKey decodes key into dest and reports whether a usable value was found.
func (l *Ledger) loadKey(ctx context.Context, key string, dest any) bool {
	found, err := kv.GetJSON(ctx, l.persister.Store(), key, dest)
	switch {
	case errors.Is(err, kv.ErrCorrupt):
		log.Warn().Err(err).Str("key", key).Msg("communities: discarding corrupt stored entry")
		metrics.StoreCorruptEntriesTotal.WithLabelValues(key).Inc()
		// Removed before any mutation can schedule a write for the same key
		if err := l.persister.Store().Remove(ctx, key); err != nil {
			log.Error().Err(err).Str("key", key).Msg("communities: failed to remove corrupt stored entry")
		}
		return false
	case err != nil:
		log.Error().Err(err).Str("key", key).Msg("communities: failed to load stored entry")
		return false
	}
	return found
}

// CreateCommunity validates req, adds the new community with a member count
// of one and joins the creator to it.
func (l *Ledger) CreateCommunity(req CreateRequest) (Community, error) {
	if err := req.Validate(); err != nil {
		return Community{}, err
	}

	c := Community{
		ID:               l.newID(),
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		Icon:             req.Icon,
		MemberCount:      1,
		Category:         req.Category,
		Rules:            append([]string(nil), req.Rules...),
		IsNSFW:           req.IsNSFW,
		PointsOfInterest: append([]string(nil), req.PointsOfInterest...),
		CreatorID:        req.CreatorID,
		CreatedAt:        l.now().UTC(),
	}

	l.mu.Lock()
	l.add(c.clone())
	l.custom = append(l.custom, c.clone())
	l.persister.SetJSON(KeyCustomCommunities, l.custom)

	// The creator is the first member, already reflected in the count
	l.joined[c.ID] = struct{}{}
	l.persistJoinedLocked()
	l.mu.Unlock()

	metrics.CommunityActionsTotal.WithLabelValues("create").Inc()
	log.Info().Str("community_id", c.ID).Str("name", c.Name).Msg("communities: community created")

	return c, nil
}

// JoinCommunity adds id to the joined set and increments its member count.
// Joining a community already joined changes nothing.
func (l *Ledger) JoinCommunity(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[id]
	if !ok {
		return ErrCommunityNotFound
	}
	if _, joined := l.joined[id]; joined {
		return nil
	}

	l.joined[id] = struct{}{}
	l.communities[i].MemberCount++
	l.persistJoinedLocked()

	metrics.CommunityActionsTotal.WithLabelValues("join").Inc()
	return nil
}

// LeaveCommunity removes id from the joined set and decrements its member
// count, never below zero. Leaving a community not joined changes nothing.
func (l *Ledger) LeaveCommunity(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[id]
	if !ok {
		return ErrCommunityNotFound
	}
	if _, joined := l.joined[id]; !joined {
		return nil
	}

	delete(l.joined, id)
	if l.communities[i].MemberCount > 0 {
		l.communities[i].MemberCount--
	}
	l.persistJoinedLocked()

	metrics.CommunityActionsTotal.WithLabelValues("leave").Inc()
	return nil
}

func (l *Ledger) persistJoinedLocked() {
	l.persister.SetJSON(KeyJoinedCommunities, slices.Sorted(maps.Keys(l.joined)))
}

// GetCommunitiesWithJoinStatus returns every community, in catalog order,
// with its isJoined flag.
func (l *Ledger) GetCommunitiesWithJoinStatus() []CommunityWithStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]CommunityWithStatus, len(l.communities))
	for i, c := range l.communities {
		_, joined := l.joined[c.ID]
		out[i] = CommunityWithStatus{Community: c.clone(), IsJoined: joined}
	}
	return out
}

// GetCommunity returns a single community with its join status.
func (l *Ledger) GetCommunity(id string) (CommunityWithStatus, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.index[id]
	if !ok {
		return CommunityWithStatus{}, ErrCommunityNotFound
	}
	_, joined := l.joined[id]
	return CommunityWithStatus{Community: l.communities[i].clone(), IsJoined: joined}, nil
}

// JoinedCommunities returns the joined communities in catalog order.
func (l *Ledger) JoinedCommunities() []Community {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Community, 0, len(l.joined))
	for _, c := range l.communities {
		if _, joined := l.joined[c.ID]; joined {
			out = append(out, c.clone())
		}
	}
	return out
}

// IsJoined reports whether id is in the joined set.
func (l *Ledger) IsJoined(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, joined := l.joined[id]
	return joined
}

// Count returns the number of known communities.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.communities)
}

// JoinedCount returns the size of the joined set.
func (l *Ledger) JoinedCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.joined)
}
