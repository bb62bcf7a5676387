package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/vaporworks/gamerec/internal/config"
	"github.com/vaporworks/gamerec/pkg/models"
)

// CollaborativeScorer implements user-based collaborative filtering over the
// bulk ratings projection. Output is sparse: items no positively-similar peer
// has rated are omitted, not scored zero.
type CollaborativeScorer struct {
	ratings Ratings
	logger  *logrus.Logger
}

func NewCollaborativeScorer(ratings Ratings, logger *logrus.Logger) *CollaborativeScorer {
	return &CollaborativeScorer{ratings: ratings, logger: logger}
}

type peer struct {
	userID     uuid.UUID
	similarity float64
}

func (s *CollaborativeScorer) Score(ctx context.Context, userID uuid.UUID, params config.Params) (models.SparseScores, error) {
	userRatings, err := s.ratings.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ratings for %s: %w", userID, err)
	}
	if len(userRatings) == 0 {
		return models.SparseScores{}, nil
	}

	matrix, err := s.ratingMatrix(ctx)
	if err != nil {
		return nil, err
	}
	current := matrix[userID]

	var peers []peer
	for otherID, otherRatings := range matrix {
		if otherID == userID {
			continue
		}
		similarity, ok := cosineSimilarity(current, otherRatings)
		// Peers with no common item, or a degenerate zero norm, carry no
		// signal and are excluded rather than scored zero.
		if !ok || similarity <= 0 {
			continue
		}
		peers = append(peers, peer{userID: otherID, similarity: similarity})
	}

	peers = capPeers(peers, params.MaxPeers)

	scores := make(models.SparseScores)
	candidates := make(map[int64]struct{})
	for _, p := range peers {
		for itemID := range matrix[p.userID] {
			if _, rated := current[itemID]; !rated {
				candidates[itemID] = struct{}{}
			}
		}
	}

	for itemID := range candidates {
		weightedSum := 0.0
		similaritySum := 0.0
		for _, p := range peers {
			if rating, ok := matrix[p.userID][itemID]; ok {
				weightedSum += p.similarity * rating
				similaritySum += p.similarity
			}
		}
		if similaritySum > 0 {
			scores[itemID] = weightedSum / similaritySum
		}
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"peers":      len(peers),
		"candidates": len(scores),
	}).Debug("Collaborative scoring completed")

	return scores, nil
}

// ratingMatrix groups the bulk projection into per-user rating vectors. For
// duplicate (user, item) pairs the later row wins.
func (s *CollaborativeScorer) ratingMatrix(ctx context.Context) (map[uuid.UUID]map[int64]float64, error) {
	projected, err := s.ratings.AllProjected(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ratings projection: %w", err)
	}

	matrix := make(map[uuid.UUID]map[int64]float64)
	for _, row := range projected {
		vector, ok := matrix[row.UserID]
		if !ok {
			vector = make(map[int64]float64)
			matrix[row.UserID] = vector
		}
		vector[row.ItemID] = row.Value()
	}
	return matrix, nil
}

// cosineSimilarity computes the dot product over the items both users rated,
// normalized by each user's full vector norm. Returns ok=false when the
// intersection is empty or either norm is zero (similarity undefined).
func cosineSimilarity(v1, v2 map[int64]float64) (float64, bool) {
	var a, b []float64
	for itemID, r1 := range v1 {
		if r2, ok := v2[itemID]; ok {
			a = append(a, r1)
			b = append(b, r2)
		}
	}
	if len(a) == 0 {
		return 0, false
	}

	norm1 := floats.Norm(values(v1), 2)
	norm2 := floats.Norm(values(v2), 2)
	if norm1 == 0 || norm2 == 0 {
		return 0, false
	}

	return floats.Dot(a, b) / (norm1 * norm2), true
}

func values(v map[int64]float64) []float64 {
	out := make([]float64, 0, len(v))
	for _, value := range v {
		out = append(out, value)
	}
	return out
}

// capPeers bounds the peer set to the max most similar users so the weighted
// averaging stays cheap on large rating volumes. max <= 0 means unlimited.
func capPeers(peers []peer, max int) []peer {
	if max <= 0 || len(peers) <= max {
		return peers
	}
	sort.Slice(peers, func(i, j int) bool {
		if peers[i].similarity != peers[j].similarity {
			return peers[i].similarity > peers[j].similarity
		}
		return bytes.Compare(peers[i].userID[:], peers[j].userID[:]) < 0
	})
	return peers[:max]
}
