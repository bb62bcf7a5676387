package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile holds a user's preference state. DeclaredTags is the coarse
// comma-joined tag string set explicitly by the user (cold-start signal);
// TagWeights is the derived tag->weight accumulator maintained by feedback
// ingestion. Either may be empty.
type UserProfile struct {
	UserID       uuid.UUID          `json:"user_id" db:"user_id"`
	DeclaredTags string             `json:"declared_tags" db:"declared_tags"`
	TagWeights   map[string]float64 `json:"tag_weights,omitempty" db:"tag_weights"`
	UpdatedAt    time.Time          `json:"updated_at" db:"updated_at"`
}
