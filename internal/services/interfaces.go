package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vaporworks/gamerec/pkg/models"
)

// Catalog is the read/write contract to the external catalog store.
type Catalog interface {
	ListAll(ctx context.Context) ([]models.Item, error)
	Get(ctx context.Context, itemID int64) (*models.Item, error)
	TopByPopularity(ctx context.Context, n int) ([]models.Item, error)
	UpdateStats(ctx context.Context, itemID int64, positiveRate float64, reviewCount int) error
}

// Ratings is the contract to the rating event store.
type Ratings interface {
	ByUser(ctx context.Context, userID uuid.UUID) ([]models.Rating, error)
	ByItem(ctx context.Context, itemID int64) ([]models.Rating, error)
	Latest(ctx context.Context, userID uuid.UUID, itemID int64) (*models.Rating, error)
	Get(ctx context.Context, ratingID int64) (*models.Rating, error)
	AllProjected(ctx context.Context) ([]models.RatingProjection, error)
	Insert(ctx context.Context, rating *models.Rating) error
	Delete(ctx context.Context, ratingID int64) error
}

// Profiles is the contract to the user preference-state store.
type Profiles interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	SetDeclaredTags(ctx context.Context, userID uuid.UUID, tags string) error
	SetTagWeights(ctx context.Context, userID uuid.UUID, weights map[string]float64) error
}
