package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vaporworks/gamerec/internal/config"
	"github.com/vaporworks/gamerec/internal/stores"
	"github.com/vaporworks/gamerec/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func testMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// fixture wires the full service graph over in-memory stores.
type fixture struct {
	catalog       *stores.MemoryCatalog
	ratings       *stores.MemoryRatings
	profiles      *stores.MemoryProfiles
	preference    *PreferenceService
	coldStart     *ColdStartScorer
	content       *ContentScorer
	collaborative *CollaborativeScorer
	recommender   *HybridRecommender
	feedback      *FeedbackService
	params        config.Params
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithJitter(t, func() float64 { return 0 })
}

func newFixtureWithJitter(t *testing.T, jitter func() float64) *fixture {
	t.Helper()

	logger := testLogger()
	metrics := testMetrics()
	params := config.DefaultParams()

	catalog := stores.NewMemoryCatalog()
	ratings := stores.NewMemoryRatings()
	profiles := stores.NewMemoryProfiles()

	preference := NewPreferenceService(catalog, ratings, profiles, logger)
	coldStart := NewColdStartScorer(catalog, profiles, jitter, logger)
	content := NewContentScorer(preference, coldStart, logger)
	collaborative := NewCollaborativeScorer(ratings, logger)
	recommender := NewHybridRecommender(catalog, ratings, content, collaborative, metrics, logger)
	feedback := NewFeedbackService(catalog, ratings, preference, params, metrics, logger)

	return &fixture{
		catalog:       catalog,
		ratings:       ratings,
		profiles:      profiles,
		preference:    preference,
		coldStart:     coldStart,
		content:       content,
		collaborative: collaborative,
		recommender:   recommender,
		feedback:      feedback,
		params:        params,
	}
}

func (f *fixture) addItem(id int64, name string, tags []string, popularity int) {
	f.catalog.Add(models.Item{
		ID:         id,
		Name:       name,
		Tags:       tags,
		Popularity: popularity,
	})
}

// rate seeds a rating event directly, bypassing ingestion.
func (f *fixture) rate(t *testing.T, userID uuid.UUID, itemID int64, recommended bool) {
	t.Helper()
	err := f.ratings.Insert(context.Background(), &models.Rating{
		UserID:      userID,
		ItemID:      itemID,
		Recommended: recommended,
		Timestamp:   time.Now(),
	})
	require.NoError(t, err)
}

func indexOf(ids []int64, target int64) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}
