package filters

import (
	"context"
	"strconv"

	"tangled.org/pulse.social/pulse/internal/classifier"
	"tangled.org/pulse.social/pulse/internal/metrics"

	"github.com/rs/zerolog/log"
)

const brainrotKeyPrefix = "brainrot_"

// BrainrotCacheKey returns the store key caching the verdict for a post.
func BrainrotCacheKey(postID string) string {
	return brainrotKeyPrefix + postID
}

// DetectBrainrot reports whether post should be suppressed as brainrot.
//
// It answers false without consulting anything when brainrot blocking is off
// or the post is marked high quality. Otherwise the verdict is read from the
// per-post cache, or obtained from the classifier and cached indefinitely.
// Classifier failures fail open: false is returned and nothing is cached.
// Concurrent misses for the same post share one classifier call.
func (g *Gate) DetectBrainrot(ctx context.Context, post Post) bool {
	if !g.Filters().BlockBrainrot || post.IsHighQuality {
		metrics.BrainrotChecksTotal.WithLabelValues("skipped").Inc()
		return false
	}

	store := g.persister.Store()
	key := BrainrotCacheKey(post.ID)

	cached, found, err := store.Get(ctx, key)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("post_id", post.ID).Msg("filters: brainrot cache read failed")
	case found:
		if verdict, perr := strconv.ParseBool(cached); perr == nil {
			metrics.BrainrotChecksTotal.WithLabelValues("cache_hit").Inc()
			return verdict
		}
		log.Warn().Str("post_id", post.ID).Str("value", cached).Msg("filters: discarding corrupt brainrot cache entry")
		metrics.StoreCorruptEntriesTotal.WithLabelValues(brainrotKeyPrefix + "*").Inc()
	}

	v, err, _ := g.inflight.Do(post.ID, func() (any, error) {
		result, err := g.classifier.Classify(ctx, classifier.Input{
			PostID:  post.ID,
			Title:   post.Title,
			Content: post.Content,
			Tags:    post.Tags,
		})
		if err != nil {
			return false, err
		}

		// Written synchronously so the next check for this post is a hit
		if err := store.Set(ctx, key, strconv.FormatBool(result.IsBrainrot)); err != nil {
			log.Warn().Err(err).Str("post_id", post.ID).Msg("filters: failed to cache brainrot verdict")
		}

		log.Debug().
			Str("post_id", post.ID).
			Bool("brainrot", result.IsBrainrot).
			Str("reason", result.Reason).
			Msg("filters: post classified")

		return result.IsBrainrot, nil
	})
	if err != nil {
		log.Warn().Err(err).Str("post_id", post.ID).Msg("filters: brainrot classifier failed, allowing post")
		metrics.BrainrotChecksTotal.WithLabelValues("failed").Inc()
		return false
	}

	metrics.BrainrotChecksTotal.WithLabelValues("classified").Inc()
	return v.(bool)
}

// IsVisible reports whether post passes the viewer's filters: its content
// type must be allowed, NSFW posts need ShowNSFW, and brainrot is suppressed
// when blocking is on. Posts without a type are only checked for NSFW and
// brainrot.
func (g *Gate) IsVisible(ctx context.Context, post Post) bool {
	f := g.Filters()
	if post.Type != "" && !f.Allows(post.Type) {
		return false
	}
	if post.IsNSFW && !f.ShowNSFW {
		return false
	}
	return !g.DetectBrainrot(ctx, post)
}

// FilterPosts returns the posts visible under the current filters, in order.
func (g *Gate) FilterPosts(ctx context.Context, posts []Post) []Post {
	visible := make([]Post, 0, len(posts))
	for _, p := range posts {
		if g.IsVisible(ctx, p) {
			visible = append(visible, p)
		}
	}
	return visible
}
