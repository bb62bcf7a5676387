package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vaporworks/gamerec/pkg/models"
)

// ProfileStore persists user preference state: the declared tag string and the
// derived tag->weight vector (stored as jsonb).
type ProfileStore struct {
	db Querier
}

func NewProfileStore(db Querier) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	profile := models.UserProfile{UserID: userID}
	err := s.db.QueryRow(ctx,
		`SELECT declared_tags, tag_weights, updated_at FROM user_profiles WHERE user_id = $1`, userID).
		Scan(&profile.DeclaredTags, &profile.TagWeights, &profile.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return &profile, nil
}

// SetDeclaredTags overwrites the declared tag string for an existing profile.
func (s *ProfileStore) SetDeclaredTags(ctx context.Context, userID uuid.UUID, tags string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE user_profiles SET declared_tags = $2, updated_at = now() WHERE user_id = $1`,
		userID, tags)
	if err != nil {
		return fmt.Errorf("set declared tags %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// SetTagWeights upserts the derived weight vector. Ingestion may write before
// any profile row exists, so this creates one on demand.
func (s *ProfileStore) SetTagWeights(ctx context.Context, userID uuid.UUID, weights map[string]float64) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO user_profiles (user_id, declared_tags, tag_weights, updated_at)
		 VALUES ($1, '', $2, now())
		 ON CONFLICT (user_id) DO UPDATE SET tag_weights = $2, updated_at = now()`,
		userID, weights)
	if err != nil {
		return fmt.Errorf("set tag weights %s: %w", userID, err)
	}
	return nil
}
