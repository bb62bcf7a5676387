package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/vaporworks/gamerec/internal/config"
	"github.com/vaporworks/gamerec/internal/database"
	"github.com/vaporworks/gamerec/internal/stores"
)

// Services wires the recommendation engine against the Postgres-backed
// stores.
type Services struct {
	Preference    *PreferenceService
	ColdStart     *ColdStartScorer
	Content       *ContentScorer
	Collaborative *CollaborativeScorer
	Recommender   *HybridRecommender
	Feedback      *FeedbackService
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database, reg prometheus.Registerer) *Services {
	catalog := stores.NewCatalogStore(db.PG, db.Redis, cfg.Redis.CacheTTL, logger)
	ratings := stores.NewRatingStore(db.PG)
	profiles := stores.NewProfileStore(db.PG)

	metrics := NewMetrics(reg)
	preference := NewPreferenceService(catalog, ratings, profiles, logger)
	coldStart := NewColdStartScorer(catalog, profiles, nil, logger)
	content := NewContentScorer(preference, coldStart, logger)
	collaborative := NewCollaborativeScorer(ratings, logger)
	recommender := NewHybridRecommender(catalog, ratings, content, collaborative, metrics, logger)
	feedback := NewFeedbackService(catalog, ratings, preference, cfg.Recommendation, metrics, logger)

	return &Services{
		Preference:    preference,
		ColdStart:     coldStart,
		Content:       content,
		Collaborative: collaborative,
		Recommender:   recommender,
		Feedback:      feedback,
	}
}
