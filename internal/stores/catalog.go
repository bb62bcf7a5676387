package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/vaporworks/gamerec/pkg/models"
)

// Querier is the subset of pgxpool.Pool the stores use; pgxmock satisfies it
// in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// CatalogStore reads and updates catalog items in PostgreSQL, with an optional
// Redis entity cache in front of the hot lookups (get-by-id, top-N). Score
// maps are never cached here; only catalog rows are.
type CatalogStore struct {
	db       Querier
	redis    *redis.Client
	cacheTTL time.Duration
	logger   *logrus.Logger
}

func NewCatalogStore(db Querier, redisClient *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *CatalogStore {
	return &CatalogStore{
		db:       db,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

const itemColumns = `id, name, tags, popularity, popularity_at, positive_rate, review_count`

// ListAll returns the full catalog ordered by id. The order is deterministic
// on purpose: ranking ties break on catalog iteration order.
func (s *CatalogStore) ListAll(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.Query(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// Get fetches a single item, preferring the cache.
func (s *CatalogStore) Get(ctx context.Context, itemID int64) (*models.Item, error) {
	cacheKey := fmt.Sprintf("item:%d", itemID)
	if item, ok := s.cachedItem(ctx, cacheKey); ok {
		return item, nil
	}

	var item models.Item
	err := s.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, itemID).
		Scan(&item.ID, &item.Name, &item.Tags, &item.Popularity, &item.PopularityAt, &item.PositiveRate, &item.ReviewCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", itemID, err)
	}

	s.cacheItem(ctx, cacheKey, &item)
	return &item, nil
}

// TopByPopularity returns the n most popular items, popularity descending with
// id as the store-defined tie-break.
func (s *CatalogStore) TopByPopularity(ctx context.Context, n int) ([]models.Item, error) {
	cacheKey := fmt.Sprintf("items:top:%d", n)
	if s.redis != nil {
		if cached := s.redis.Get(ctx, cacheKey).Val(); cached != "" {
			var items []models.Item
			if err := json.Unmarshal([]byte(cached), &items); err == nil {
				return items, nil
			}
		}
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY popularity DESC, id LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(items); err == nil {
			s.redis.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}
	return items, nil
}

// UpdateStats persists the recomputed approval rate and review count for an
// item and drops any cached copy. Last write wins.
func (s *CatalogStore) UpdateStats(ctx context.Context, itemID int64, positiveRate float64, reviewCount int) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE items SET positive_rate = $2, review_count = $3 WHERE id = $1`,
		itemID, positiveRate, reviewCount)
	if err != nil {
		return fmt.Errorf("update item %d stats: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrItemNotFound
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, fmt.Sprintf("item:%d", itemID)).Err(); err != nil {
			s.logger.WithError(err).WithField("item_id", itemID).Warn("Failed to invalidate item cache")
		}
	}
	return nil
}

func (s *CatalogStore) cachedItem(ctx context.Context, key string) (*models.Item, bool) {
	if s.redis == nil {
		return nil, false
	}
	cached := s.redis.Get(ctx, key).Val()
	if cached == "" {
		return nil, false
	}
	var item models.Item
	if err := json.Unmarshal([]byte(cached), &item); err != nil {
		return nil, false
	}
	return &item, true
}

func (s *CatalogStore) cacheItem(ctx context.Context, key string, item *models.Item) {
	if s.redis == nil {
		return
	}
	if data, err := json.Marshal(item); err == nil {
		if err := s.redis.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
			s.logger.WithError(err).Warn("Failed to cache item")
		}
	}
}

func scanItems(rows pgx.Rows) ([]models.Item, error) {
	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Tags, &item.Popularity,
			&item.PopularityAt, &item.PositiveRate, &item.ReviewCount); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}
