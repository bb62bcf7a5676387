package models

// DenseScores maps item id -> score where a missing entry means zero. The
// content path returns this shape: every item it was given has a score, and
// anything outside that set is legitimately worth 0 to the blender.
type DenseScores map[int64]float64

// Get returns the score for an item, defaulting to 0 for absent entries.
func (s DenseScores) Get(itemID int64) float64 {
	return s[itemID]
}

// SparseScores maps item id -> score where absence means "no signal", not
// zero. Collaborative filtering returns this shape: items no peer has rated
// are omitted rather than scored.
type SparseScores map[int64]float64

// Lookup returns the score for an item and whether any signal exists for it.
func (s SparseScores) Lookup(itemID int64) (float64, bool) {
	v, ok := s[itemID]
	return v, ok
}

// GetOrZero collapses absence to 0 for weighted blending.
func (s SparseScores) GetOrZero(itemID int64) float64 {
	return s[itemID]
}
