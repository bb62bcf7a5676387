package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vaporworks/gamerec/internal/config"
	"github.com/vaporworks/gamerec/internal/tags"
	"github.com/vaporworks/gamerec/pkg/models"
)

// ContentScorer scores catalog items by tag overlap with the user's
// preferences, blended with decayed popularity. Output is dense: every item
// passed in gets an entry. Users without a preference vector are delegated to
// the cold-start scorer.
type ContentScorer struct {
	preference *PreferenceService
	coldStart  *ColdStartScorer
	logger     *logrus.Logger
}

func NewContentScorer(preference *PreferenceService, coldStart *ColdStartScorer, logger *logrus.Logger) *ContentScorer {
	return &ContentScorer{
		preference: preference,
		coldStart:  coldStart,
		logger:     logger,
	}
}

func (s *ContentScorer) Score(ctx context.Context, userID uuid.UUID, items []models.Item, params config.Params, now time.Time) (models.DenseScores, error) {
	vector, err := s.preference.Vector(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		return s.coldStart.Score(ctx, userID, items, params)
	}

	prefTags, err := s.preference.PreferenceTags(ctx, userID)
	if err != nil {
		return nil, err
	}

	scores := make(models.DenseScores, len(items))
	for _, item := range items {
		itemTags := tags.NormalizeSet(item.Tags)
		if len(itemTags) == 0 {
			// Untagged items carry no content signal and skip the
			// popularity blend entirely.
			scores[item.ID] = 0.0
			continue
		}

		overlap := 0
		for tag := range itemTags {
			if _, ok := prefTags[tag]; ok {
				overlap++
			}
		}
		similarity := 0.0
		if denom := len(prefTags) + len(itemTags) - overlap; denom > 0 {
			similarity = float64(overlap) / float64(denom)
		}

		popularity := decayedPopularity(item, params.PopularityDecay, now)
		scores[item.ID] = params.OverlapWeight*similarity + params.PopularityWeight*popularity
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"items":   len(items),
	}).Debug("Content scoring completed")

	return scores, nil
}

// decayedPopularity fades an item's popularity counter by the age of its last
// popularity update, so stale counters stop dominating the blend.
func decayedPopularity(item models.Item, decay float64, now time.Time) float64 {
	if item.Popularity <= 0 {
		return 0
	}
	if item.PopularityAt.IsZero() || !item.PopularityAt.Before(now) {
		return float64(item.Popularity)
	}
	ageDays := now.Sub(item.PopularityAt).Hours() / 24
	return float64(item.Popularity) * math.Pow(decay, ageDays)
}
