package stores

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaporworks/gamerec/pkg/models"
)

func TestProfileStoreGet(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()
	store := NewProfileStore(mockDB)

	userID := uuid.New()

	t.Run("existing profile", func(t *testing.T) {
		mockDB.ExpectQuery(`SELECT declared_tags, tag_weights, updated_at FROM user_profiles WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"declared_tags", "tag_weights", "updated_at"}).
				AddRow("action,indie", map[string]float64{"action": 1.0}, time.Now()))

		profile, err := store.Get(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, "action,indie", profile.DeclaredTags)
		assert.Equal(t, 1.0, profile.TagWeights["action"])
	})

	t.Run("missing profile maps to sentinel", func(t *testing.T) {
		mockDB.ExpectQuery(`SELECT declared_tags, tag_weights, updated_at FROM user_profiles WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"declared_tags", "tag_weights", "updated_at"}))

		_, err := store.Get(context.Background(), userID)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestProfileStoreSetDeclaredTags(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()
	store := NewProfileStore(mockDB)

	userID := uuid.New()

	t.Run("updates existing profile", func(t *testing.T) {
		mockDB.ExpectExec(`UPDATE user_profiles SET declared_tags = \$2`).
			WithArgs(userID, "action,rpg").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, store.SetDeclaredTags(context.Background(), userID, "action,rpg"))
	})

	t.Run("missing profile maps to sentinel", func(t *testing.T) {
		mockDB.ExpectExec(`UPDATE user_profiles SET declared_tags = \$2`).
			WithArgs(userID, "action").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, store.SetDeclaredTags(context.Background(), userID, "action"), models.ErrUserNotFound)
	})
}

func TestProfileStoreSetTagWeights(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()
	store := NewProfileStore(mockDB)

	userID := uuid.New()
	weights := map[string]float64{"action": 1.0, "indie": 0.9}
	mockDB.ExpectExec(`INSERT INTO user_profiles`).
		WithArgs(userID, weights).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, store.SetTagWeights(context.Background(), userID, weights))
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
