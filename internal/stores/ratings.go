package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vaporworks/gamerec/pkg/models"
)

// RatingStore persists rating events. Events are append/delete only.
type RatingStore struct {
	db Querier
}

func NewRatingStore(db Querier) *RatingStore {
	return &RatingStore{db: db}
}

const ratingColumns = `id, user_id, item_id, recommended, timestamp`

func (s *RatingStore) ByUser(ctx context.Context, userID uuid.UUID) ([]models.Rating, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE user_id = $1 ORDER BY timestamp`, userID)
	if err != nil {
		return nil, fmt.Errorf("ratings by user: %w", err)
	}
	defer rows.Close()

	return scanRatings(rows)
}

func (s *RatingStore) ByItem(ctx context.Context, itemID int64) ([]models.Rating, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE item_id = $1 ORDER BY timestamp`, itemID)
	if err != nil {
		return nil, fmt.Errorf("ratings by item: %w", err)
	}
	defer rows.Close()

	return scanRatings(rows)
}

// Latest returns the most recent rating a user gave an item.
func (s *RatingStore) Latest(ctx context.Context, userID uuid.UUID, itemID int64) (*models.Rating, error) {
	var r models.Rating
	err := s.db.QueryRow(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE user_id = $1 AND item_id = $2 ORDER BY timestamp DESC LIMIT 1`,
		userID, itemID).
		Scan(&r.ID, &r.UserID, &r.ItemID, &r.Recommended, &r.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrRatingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest rating: %w", err)
	}
	return &r, nil
}

func (s *RatingStore) Get(ctx context.Context, ratingID int64) (*models.Rating, error) {
	var r models.Rating
	err := s.db.QueryRow(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE id = $1`, ratingID).
		Scan(&r.ID, &r.UserID, &r.ItemID, &r.Recommended, &r.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrRatingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rating %d: %w", ratingID, err)
	}
	return &r, nil
}

// AllProjected streams the bulk (user, item, recommended) projection the
// collaborative filter builds its matrix from.
func (s *RatingStore) AllProjected(ctx context.Context) ([]models.RatingProjection, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id, item_id, recommended FROM ratings`)
	if err != nil {
		return nil, fmt.Errorf("ratings projection: %w", err)
	}
	defer rows.Close()

	var projected []models.RatingProjection
	for rows.Next() {
		var p models.RatingProjection
		if err := rows.Scan(&p.UserID, &p.ItemID, &p.Recommended); err != nil {
			return nil, fmt.Errorf("scan rating projection: %w", err)
		}
		projected = append(projected, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating projection: %w", err)
	}
	return projected, nil
}

// Insert persists the event and fills in its generated id.
func (s *RatingStore) Insert(ctx context.Context, rating *models.Rating) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO ratings (user_id, item_id, recommended, timestamp) VALUES ($1, $2, $3, $4) RETURNING id`,
		rating.UserID, rating.ItemID, rating.Recommended, rating.Timestamp).
		Scan(&rating.ID)
	if err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

func (s *RatingStore) Delete(ctx context.Context, ratingID int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM ratings WHERE id = $1`, ratingID)
	if err != nil {
		return fmt.Errorf("delete rating %d: %w", ratingID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrRatingNotFound
	}
	return nil
}

func scanRatings(rows pgx.Rows) ([]models.Rating, error) {
	var ratings []models.Rating
	for rows.Next() {
		var r models.Rating
		if err := rows.Scan(&r.ID, &r.UserID, &r.ItemID, &r.Recommended, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}
