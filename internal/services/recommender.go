package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vaporworks/gamerec/internal/config"
)

// HybridRecommender blends content and collaborative scores into the final
// ranked list. Params arrive by value on each call; nothing here holds
// mutable configuration.
type HybridRecommender struct {
	catalog       Catalog
	ratings       Ratings
	content       *ContentScorer
	collaborative *CollaborativeScorer
	metrics       *Metrics
	logger        *logrus.Logger
}

func NewHybridRecommender(
	catalog Catalog,
	ratings Ratings,
	content *ContentScorer,
	collaborative *CollaborativeScorer,
	metrics *Metrics,
	logger *logrus.Logger,
) *HybridRecommender {
	return &HybridRecommender{
		catalog:       catalog,
		ratings:       ratings,
		content:       content,
		collaborative: collaborative,
		metrics:       metrics,
		logger:        logger,
	}
}

// Recommend returns up to limit item ids ranked by blended score. An absent
// user (uuid.Nil) gets an empty result; the caller is expected to fall back
// to a non-personalized feed.
func (r *HybridRecommender) Recommend(ctx context.Context, userID uuid.UUID, limit int, params config.Params) ([]int64, error) {
	if userID == uuid.Nil || limit <= 0 {
		return nil, nil
	}

	start := time.Now()
	r.metrics.RecommendationRequests.Inc()
	defer func() {
		r.metrics.RecommendationLatency.Observe(time.Since(start).Seconds())
	}()

	items, err := r.catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	userRatings, err := r.ratings.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ratings for %s: %w", userID, err)
	}
	coldStart := len(userRatings) < params.ColdStartThreshold

	contentWeight := params.ContentWeight
	collabWeight := params.CollaborativeWeight
	if coldStart {
		contentWeight = params.ColdContentWeight
		collabWeight = params.ColdCollabWeight
		r.metrics.ColdStartRequests.Inc()
	}

	contentScores, err := r.content.Score(ctx, userID, items, params, time.Now())
	if err != nil {
		return nil, fmt.Errorf("content scoring: %w", err)
	}

	collabScores, err := r.collaborative.Score(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("collaborative scoring: %w", err)
	}

	type rankedItem struct {
		id    int64
		score float64
	}
	ranked := make([]rankedItem, 0, len(items))
	for _, item := range items {
		score := contentWeight*contentScores.Get(item.ID) + collabWeight*collabScores.GetOrZero(item.ID)
		ranked = append(ranked, rankedItem{id: item.ID, score: score})
	}

	// Stable sort keeps catalog order for equal scores, which makes the
	// ranking deterministic.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	ids := make([]int64, len(ranked))
	for i, entry := range ranked {
		ids[i] = entry.id
	}

	r.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"cold_start": coldStart,
		"ratings":    len(userRatings),
		"returned":   len(ids),
		"latency":    time.Since(start),
	}).Info("Recommendations generated")

	return ids, nil
}
