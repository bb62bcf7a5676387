package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vaporworks/gamerec/internal/config"
	"github.com/vaporworks/gamerec/internal/tags"
	"github.com/vaporworks/gamerec/pkg/models"
)

// ColdStartScorer produces content-side scores for users with no derivable
// preference vector. With declared tags it scores the whole catalog by tag
// match; without them it falls back to the most popular items only, leaving
// the rest of the catalog unscored (callers treat absence as zero).
type ColdStartScorer struct {
	catalog  Catalog
	profiles Profiles
	jitter   func() float64
	logger   *logrus.Logger
}

// NewColdStartScorer builds the scorer. jitter is the random source blended
// into every score; pass nil for the default one, or a seeded func in tests.
func NewColdStartScorer(catalog Catalog, profiles Profiles, jitter func() float64, logger *logrus.Logger) *ColdStartScorer {
	if jitter == nil {
		jitter = rand.Float64
	}
	return &ColdStartScorer{
		catalog:  catalog,
		profiles: profiles,
		jitter:   jitter,
		logger:   logger,
	}
}

func (s *ColdStartScorer) Score(ctx context.Context, userID uuid.UUID, items []models.Item, params config.Params) (models.DenseScores, error) {
	scores := make(models.DenseScores)

	declared := s.declaredTags(ctx, userID)
	if len(declared) > 0 {
		for _, item := range items {
			itemTags := tags.NormalizeSet(item.Tags)
			matched := 0
			for tag := range declared {
				if _, ok := itemTags[tag]; ok {
					matched++
				}
			}
			scores[item.ID] = float64(matched) / float64(len(declared))
		}
	} else {
		hot, err := s.catalog.TopByPopularity(ctx, params.TopPopular)
		if err != nil {
			return nil, fmt.Errorf("top popular items: %w", err)
		}
		for _, item := range hot {
			scores[item.ID] = float64(item.Popularity)
		}
	}

	// Jitter breaks rich-get-richer ties so popular items do not stay
	// wedged in a fixed order.
	blend := params.JitterBlend
	for id, score := range scores {
		scores[id] = score*(1-blend) + s.jitter()*blend
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"declared": len(declared) > 0,
		"scored":   len(scores),
	}).Debug("Cold-start scoring completed")

	return scores, nil
}

func (s *ColdStartScorer) declaredTags(ctx context.Context, userID uuid.UUID) map[string]struct{} {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load profile for cold start")
		}
		return nil
	}
	return tags.Split(profile.DeclaredTags)
}
