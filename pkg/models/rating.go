package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a single binary feedback event: a user either recommends an item
// or does not. Events are append/delete only; there are no in-place edits.
type Rating struct {
	ID          int64     `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	ItemID      int64     `json:"item_id" db:"item_id"`
	Recommended bool      `json:"recommended" db:"recommended"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}

// RatingProjection is the bulk row shape collaborative filtering consumes:
// just (user, item, recommended), without ids or timestamps.
type RatingProjection struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	ItemID      int64     `json:"item_id" db:"item_id"`
	Recommended bool      `json:"recommended" db:"recommended"`
}

// Value maps the binary feedback onto the numeric scale the scorers use.
func (p RatingProjection) Value() float64 {
	if p.Recommended {
		return 1.0
	}
	return 0.0
}
