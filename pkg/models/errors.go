package models

import "errors"

// Not-found conditions surfaced to callers. Fallback paths (empty histories,
// empty tag strings) are handled inline by the scorers and never reach these.
var (
	ErrItemNotFound   = errors.New("item not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrRatingNotFound = errors.New("rating not found")
)
