package stores

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaporworks/gamerec/pkg/models"
)

func newCatalogTestStore(t *testing.T) (*CatalogStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return NewCatalogStore(mockDB, nil, time.Minute, logger), mockDB
}

func itemRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "tags", "popularity", "popularity_at", "positive_rate", "review_count",
	})
}

func TestCatalogStoreListAll(t *testing.T) {
	store, mockDB := newCatalogTestStore(t)
	defer mockDB.Close()

	now := time.Now()
	mockDB.ExpectQuery(`SELECT .+ FROM items ORDER BY id`).
		WillReturnRows(itemRows().
			AddRow(int64(1), "Space Crawler", []string{"action", "indie"}, 42, now, 87.5, 8).
			AddRow(int64(2), "Dungeon Echo", []string{"rpg"}, 10, now, 100.0, 3))

	items, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, []string{"action", "indie"}, items[0].Tags)
	assert.Equal(t, 42, items[0].Popularity)
	assert.Equal(t, int64(2), items[1].ID)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCatalogStoreGet(t *testing.T) {
	t.Run("existing item", func(t *testing.T) {
		store, mockDB := newCatalogTestStore(t)
		defer mockDB.Close()

		mockDB.ExpectQuery(`SELECT .+ FROM items WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnRows(itemRows().
				AddRow(int64(7), "Rogue Winter", []string{"roguelike"}, 5, time.Now(), 0.0, 0))

		item, err := store.Get(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "Rogue Winter", item.Name)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("missing item maps to sentinel", func(t *testing.T) {
		store, mockDB := newCatalogTestStore(t)
		defer mockDB.Close()

		mockDB.ExpectQuery(`SELECT .+ FROM items WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnRows(itemRows())

		_, err := store.Get(context.Background(), 99)
		assert.ErrorIs(t, err, models.ErrItemNotFound)
	})
}

func TestCatalogStoreTopByPopularity(t *testing.T) {
	store, mockDB := newCatalogTestStore(t)
	defer mockDB.Close()

	mockDB.ExpectQuery(`SELECT .+ FROM items ORDER BY popularity DESC, id LIMIT \$1`).
		WithArgs(2).
		WillReturnRows(itemRows().
			AddRow(int64(3), "Crowd Favorite", []string{"action"}, 900, time.Now(), 95.0, 40).
			AddRow(int64(1), "Runner Up", []string{"indie"}, 120, time.Now(), 80.0, 10))

	items, err := store.TopByPopularity(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(3), items[0].ID)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCatalogStoreUpdateStats(t *testing.T) {
	t.Run("updates existing row", func(t *testing.T) {
		store, mockDB := newCatalogTestStore(t)
		defer mockDB.Close()

		mockDB.ExpectExec(`UPDATE items SET positive_rate = \$2, review_count = \$3 WHERE id = \$1`).
			WithArgs(int64(4), 50.0, 2).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := store.UpdateStats(context.Background(), 4, 50.0, 2)
		require.NoError(t, err)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("missing row maps to sentinel", func(t *testing.T) {
		store, mockDB := newCatalogTestStore(t)
		defer mockDB.Close()

		mockDB.ExpectExec(`UPDATE items SET positive_rate = \$2, review_count = \$3 WHERE id = \$1`).
			WithArgs(int64(99), 0.0, 0).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := store.UpdateStats(context.Background(), 99, 0.0, 0)
		assert.ErrorIs(t, err, models.ErrItemNotFound)
	})
}
