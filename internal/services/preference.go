package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vaporworks/gamerec/internal/tags"
	"github.com/vaporworks/gamerec/pkg/models"
)

// PreferenceService derives and maintains user preference state: the
// normalized tag-weight vector built from rating history, the preference tag
// set used by content scoring, and the persisted weight accumulator updated on
// every feedback submission.
type PreferenceService struct {
	catalog  Catalog
	ratings  Ratings
	profiles Profiles
	logger   *logrus.Logger
}

func NewPreferenceService(catalog Catalog, ratings Ratings, profiles Profiles, logger *logrus.Logger) *PreferenceService {
	return &PreferenceService{
		catalog:  catalog,
		ratings:  ratings,
		profiles: profiles,
		logger:   logger,
	}
}

// Vector builds the user's tag-weight vector from their rating history. Every
// rated item contributes its tags as keys; only positive ratings add weight.
// Weights are normalized so the strongest tag is exactly 1.0. A user with no
// ratings gets an empty vector.
func (s *PreferenceService) Vector(ctx context.Context, userID uuid.UUID) (map[string]float64, error) {
	userRatings, err := s.ratings.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ratings for %s: %w", userID, err)
	}
	if len(userRatings) == 0 {
		return map[string]float64{}, nil
	}

	vector := make(map[string]float64)
	itemCache := make(map[int64]*models.Item)

	for _, rating := range userRatings {
		item, ok := itemCache[rating.ItemID]
		if !ok {
			item, err = s.catalog.Get(ctx, rating.ItemID)
			if errors.Is(err, models.ErrItemNotFound) {
				itemCache[rating.ItemID] = nil
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("resolve item %d: %w", rating.ItemID, err)
			}
			itemCache[rating.ItemID] = item
		}
		if item == nil {
			continue
		}

		value := 0.0
		if rating.Recommended {
			value = 1.0
		}
		// Negative ratings add 0 but still register the tag keys.
		for tag := range tags.NormalizeSet(item.Tags) {
			vector[tag] += value
		}
	}

	maxWeight := 0.0
	for _, w := range vector {
		maxWeight = math.Max(maxWeight, w)
	}
	// An all-negative history leaves every weight at 0; skipping the
	// normalization keeps the vector free of NaN.
	if maxWeight > 0 {
		for tag, w := range vector {
			vector[tag] = w / maxWeight
		}
	}

	return vector, nil
}

// PreferenceTags resolves the tag set content scoring compares items against:
// the declared tag string when present, then the tags carrying positive weight
// in the ingestion-maintained accumulator, and as a last resort the tags of
// every item the user rated positively.
func (s *PreferenceService) PreferenceTags(ctx context.Context, userID uuid.UUID) (map[string]struct{}, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		return nil, fmt.Errorf("load profile for %s: %w", userID, err)
	}
	if profile != nil {
		if declared := tags.Split(profile.DeclaredTags); len(declared) > 0 {
			return declared, nil
		}
		derived := make(map[string]struct{})
		for tag, weight := range profile.TagWeights {
			if weight > 0 {
				derived[tag] = struct{}{}
			}
		}
		if len(derived) > 0 {
			return derived, nil
		}
	}

	userRatings, err := s.ratings.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ratings for %s: %w", userID, err)
	}

	extracted := make(map[string]struct{})
	for _, rating := range userRatings {
		if !rating.Recommended {
			continue
		}
		item, err := s.catalog.Get(ctx, rating.ItemID)
		if errors.Is(err, models.ErrItemNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve item %d: %w", rating.ItemID, err)
		}
		for tag := range tags.NormalizeSet(item.Tags) {
			extracted[tag] = struct{}{}
		}
	}
	return extracted, nil
}

// UpdateDeclaredTags replaces the user's declared preference tag string. The
// stored form is normalized and deduplicated.
func (s *PreferenceService) UpdateDeclaredTags(ctx context.Context, userID uuid.UUID, joined string) error {
	if strings.TrimSpace(joined) == "" {
		return fmt.Errorf("declared tags must not be empty")
	}
	normalized := tags.Split(joined)
	if len(normalized) == 0 {
		return fmt.Errorf("declared tags must not be empty")
	}
	if err := s.profiles.SetDeclaredTags(ctx, userID, tags.Join(normalized)); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"tags":    len(normalized),
	}).Info("Updated declared preference tags")
	return nil
}

// Reinforce folds one rated item's tags into the user's persisted weight
// accumulator: existing weights decay, the rated tags gain the rating value,
// and every weight stays within [0, limit]. This replaces unbounded tag-string
// growth with a bounded explicit mapping.
func (s *PreferenceService) Reinforce(ctx context.Context, userID uuid.UUID, itemTags map[string]struct{}, value, decay, limit float64) error {
	if len(itemTags) == 0 {
		return nil
	}

	weights := make(map[string]float64)
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		return fmt.Errorf("load profile for %s: %w", userID, err)
	}
	if profile != nil {
		for tag, w := range profile.TagWeights {
			weights[tag] = w * decay
		}
	}

	for tag := range itemTags {
		weights[tag] = math.Min(limit, weights[tag]+value)
	}

	if err := s.profiles.SetTagWeights(ctx, userID, weights); err != nil {
		return fmt.Errorf("persist tag weights for %s: %w", userID, err)
	}
	return nil
}
