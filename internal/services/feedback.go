package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vaporworks/gamerec/internal/config"
	"github.com/vaporworks/gamerec/internal/tags"
	"github.com/vaporworks/gamerec/pkg/models"
)

// FeedbackService ingests rating submissions: it persists the event, folds
// the item's tags into the user's preference weights, and recomputes the
// item's approval rate. Mutations for the same user or item are serialized
// through striped locks; a failed approval-rate recompute is logged and never
// rolls back the persisted rating.
type FeedbackService struct {
	catalog    Catalog
	ratings    Ratings
	preference *PreferenceService
	params     config.Params
	metrics    *Metrics
	logger     *logrus.Logger
	locks      stripedLocks
}

func NewFeedbackService(
	catalog Catalog,
	ratings Ratings,
	preference *PreferenceService,
	params config.Params,
	metrics *Metrics,
	logger *logrus.Logger,
) *FeedbackService {
	return &FeedbackService{
		catalog:    catalog,
		ratings:    ratings,
		preference: preference,
		params:     params,
		metrics:    metrics,
		logger:     logger,
	}
}

// Submit applies one rating submission. Unknown items fail with
// models.ErrItemNotFound before anything is written.
func (s *FeedbackService) Submit(ctx context.Context, userID uuid.UUID, itemID int64, recommended bool) error {
	if userID == uuid.Nil {
		return fmt.Errorf("user id required")
	}

	unlock := s.locks.lockPair(userID.String(), fmt.Sprintf("item:%d", itemID))
	defer unlock()

	item, err := s.catalog.Get(ctx, itemID)
	if err != nil {
		return err
	}

	rating := &models.Rating{
		UserID:      userID,
		ItemID:      itemID,
		Recommended: recommended,
		Timestamp:   time.Now(),
	}
	if err := s.ratings.Insert(ctx, rating); err != nil {
		s.metrics.FeedbackErrors.WithLabelValues("rating").Inc()
		return fmt.Errorf("persist rating: %w", err)
	}

	// Items without tags contribute no preference signal; skip, not error.
	itemTags := tags.NormalizeSet(item.Tags)
	if len(itemTags) > 0 {
		value := 0.0
		if recommended {
			value = 1.0
		}
		err := s.preference.Reinforce(ctx, userID, itemTags, value,
			s.params.PreferenceWeightDecay, s.params.PreferenceWeightCap)
		if err != nil {
			s.metrics.FeedbackErrors.WithLabelValues("preference").Inc()
			return fmt.Errorf("update preference state: %w", err)
		}
	}

	// The rating event stays authoritative even when the aggregate lags.
	if err := s.refreshItemStats(ctx, itemID); err != nil {
		s.metrics.FeedbackErrors.WithLabelValues("stats").Inc()
		s.logger.WithError(err).WithField("item_id", itemID).Error("Failed to refresh item approval rate")
	}

	s.metrics.FeedbackSubmitted.Inc()
	s.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"item_id":     itemID,
		"recommended": recommended,
	}).Info("Feedback ingested")

	return nil
}

// UserRating returns the caller's most recent rating of an item.
func (s *FeedbackService) UserRating(ctx context.Context, userID uuid.UUID, itemID int64) (*models.Rating, error) {
	return s.ratings.Latest(ctx, userID, itemID)
}

// DeleteRating removes a rating event, but only for its owner. Foreign
// ratings are reported as not found rather than forbidden.
func (s *FeedbackService) DeleteRating(ctx context.Context, userID uuid.UUID, ratingID int64) error {
	rating, err := s.ratings.Get(ctx, ratingID)
	if err != nil {
		return err
	}
	if rating.UserID != userID {
		return models.ErrRatingNotFound
	}
	return s.ratings.Delete(ctx, ratingID)
}

// refreshItemStats recomputes the approval rate from scratch over every
// rating the item has.
func (s *FeedbackService) refreshItemStats(ctx context.Context, itemID int64) error {
	itemRatings, err := s.ratings.ByItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("load item ratings: %w", err)
	}
	total := len(itemRatings)
	if total == 0 {
		return nil
	}

	positive := 0
	for _, r := range itemRatings {
		if r.Recommended {
			positive++
		}
	}
	rate := float64(positive) / float64(total) * 100

	return s.catalog.UpdateStats(ctx, itemID, rate, total)
}

// stripedLocks serializes same-row mutations without a lock per key. Keys
// hash onto a fixed set of mutexes; lockPair acquires in shard order so two
// submissions touching the same shards cannot deadlock.
type stripedLocks struct {
	shards [64]sync.Mutex
}

func (l *stripedLocks) shard(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(l.shards)))
}

func (l *stripedLocks) lockPair(a, b string) func() {
	ia, ib := l.shard(a), l.shard(b)
	if ia == ib {
		l.shards[ia].Lock()
		return l.shards[ia].Unlock
	}
	if ia > ib {
		ia, ib = ib, ia
	}
	l.shards[ia].Lock()
	l.shards[ib].Lock()
	return func() {
		l.shards[ib].Unlock()
		l.shards[ia].Unlock()
	}
}
