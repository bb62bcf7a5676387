package models

import "time"

// Item is a catalog entry (a game). Tags carry the content signal used by the
// recommender; Popularity is an externally maintained counter. PositiveRate and
// ReviewCount are derived aggregates, recomputed by feedback ingestion.
type Item struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Tags         []string  `json:"tags,omitempty" db:"tags"`
	Popularity   int       `json:"popularity" db:"popularity"`
	PopularityAt time.Time `json:"popularity_at" db:"popularity_at"`
	PositiveRate float64   `json:"positive_rate" db:"positive_rate"`
	ReviewCount  int       `json:"review_count" db:"review_count"`
}
