package stores

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/vaporworks/gamerec/pkg/models"
)

// In-memory store implementations. They back the example program and the
// service tests; the mutexes give them the same per-row write discipline the
// SQL stores get from the database.

type MemoryCatalog struct {
	mu    sync.RWMutex
	items []models.Item
}

func NewMemoryCatalog(items ...models.Item) *MemoryCatalog {
	return &MemoryCatalog{items: items}
}

func (c *MemoryCatalog) Add(item models.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

func (c *MemoryCatalog) ListAll(ctx context.Context) ([]models.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Item, len(c.items))
	copy(out, c.items)
	return out, nil
}

func (c *MemoryCatalog) Get(ctx context.Context, itemID int64) (*models.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.items {
		if c.items[i].ID == itemID {
			item := c.items[i]
			return &item, nil
		}
	}
	return nil, models.ErrItemNotFound
}

func (c *MemoryCatalog) TopByPopularity(ctx context.Context, n int) ([]models.Item, error) {
	c.mu.RLock()
	out := make([]models.Item, len(c.items))
	copy(out, c.items)
	c.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Popularity != out[j].Popularity {
			return out[i].Popularity > out[j].Popularity
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (c *MemoryCatalog) UpdateStats(ctx context.Context, itemID int64, positiveRate float64, reviewCount int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == itemID {
			c.items[i].PositiveRate = positiveRate
			c.items[i].ReviewCount = reviewCount
			return nil
		}
	}
	return models.ErrItemNotFound
}

type MemoryRatings struct {
	mu      sync.RWMutex
	nextID  int64
	ratings []models.Rating
}

func NewMemoryRatings() *MemoryRatings {
	return &MemoryRatings{nextID: 1}
}

func (r *MemoryRatings) ByUser(ctx context.Context, userID uuid.UUID) ([]models.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Rating
	for _, rating := range r.ratings {
		if rating.UserID == userID {
			out = append(out, rating)
		}
	}
	return out, nil
}

func (r *MemoryRatings) ByItem(ctx context.Context, itemID int64) ([]models.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Rating
	for _, rating := range r.ratings {
		if rating.ItemID == itemID {
			out = append(out, rating)
		}
	}
	return out, nil
}

func (r *MemoryRatings) Latest(ctx context.Context, userID uuid.UUID, itemID int64) (*models.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *models.Rating
	for i := range r.ratings {
		rating := r.ratings[i]
		if rating.UserID != userID || rating.ItemID != itemID {
			continue
		}
		if latest == nil || rating.Timestamp.After(latest.Timestamp) {
			latest = &rating
		}
	}
	if latest == nil {
		return nil, models.ErrRatingNotFound
	}
	out := *latest
	return &out, nil
}

func (r *MemoryRatings) Get(ctx context.Context, ratingID int64) (*models.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.ratings {
		if r.ratings[i].ID == ratingID {
			out := r.ratings[i]
			return &out, nil
		}
	}
	return nil, models.ErrRatingNotFound
}

func (r *MemoryRatings) AllProjected(ctx context.Context) ([]models.RatingProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.RatingProjection, 0, len(r.ratings))
	for _, rating := range r.ratings {
		out = append(out, models.RatingProjection{
			UserID:      rating.UserID,
			ItemID:      rating.ItemID,
			Recommended: rating.Recommended,
		})
	}
	return out, nil
}

func (r *MemoryRatings) Insert(ctx context.Context, rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rating.ID = r.nextID
	r.nextID++
	r.ratings = append(r.ratings, *rating)
	return nil
}

func (r *MemoryRatings) Delete(ctx context.Context, ratingID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.ratings {
		if r.ratings[i].ID == ratingID {
			r.ratings = append(r.ratings[:i], r.ratings[i+1:]...)
			return nil
		}
	}
	return models.ErrRatingNotFound
}

type MemoryProfiles struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*models.UserProfile
}

func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{profiles: make(map[uuid.UUID]*models.UserProfile)}
}

// Put seeds a profile; tests use this to create users directly.
func (p *MemoryProfiles) Put(profile models.UserProfile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[profile.UserID] = &profile
}

func (p *MemoryProfiles) Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	profile, ok := p.profiles[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	out := *profile
	if profile.TagWeights != nil {
		out.TagWeights = make(map[string]float64, len(profile.TagWeights))
		for k, v := range profile.TagWeights {
			out.TagWeights[k] = v
		}
	}
	return &out, nil
}

func (p *MemoryProfiles) SetDeclaredTags(ctx context.Context, userID uuid.UUID, tags string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	profile, ok := p.profiles[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	profile.DeclaredTags = tags
	return nil
}

func (p *MemoryProfiles) SetTagWeights(ctx context.Context, userID uuid.UUID, weights map[string]float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	profile, ok := p.profiles[userID]
	if !ok {
		profile = &models.UserProfile{UserID: userID}
		p.profiles[userID] = profile
	}
	profile.TagWeights = weights
	return nil
}
