package services

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollaborativeScore(t *testing.T) {
	ctx := context.Background()

	t.Run("no rating history yields empty scores", func(t *testing.T) {
		f := newFixture(t)
		scores, err := f.collaborative.Score(ctx, uuid.New(), f.params)
		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("surfaces items liked by similar users", func(t *testing.T) {
		f := newFixture(t)
		u1, u2 := uuid.New(), uuid.New()
		f.rate(t, u1, 10, true) // shared liked item
		f.rate(t, u2, 10, true)
		f.rate(t, u2, 20, true) // only u2 knows this one

		scores, err := f.collaborative.Score(ctx, u1, f.params)
		require.NoError(t, err)

		score, ok := scores.Lookup(20)
		require.True(t, ok)
		assert.InDelta(t, 1.0, score, 1e-12)
	})

	t.Run("never recommends already rated items", func(t *testing.T) {
		f := newFixture(t)
		u1, u2 := uuid.New(), uuid.New()
		f.rate(t, u1, 10, true)
		f.rate(t, u2, 10, true)

		scores, err := f.collaborative.Score(ctx, u1, f.params)
		require.NoError(t, err)

		_, ok := scores.Lookup(10)
		assert.False(t, ok)
	})

	t.Run("peers with no common items carry no signal", func(t *testing.T) {
		f := newFixture(t)
		u1, u3 := uuid.New(), uuid.New()
		f.rate(t, u1, 10, true)
		f.rate(t, u3, 30, true) // disjoint history

		scores, err := f.collaborative.Score(ctx, u1, f.params)
		require.NoError(t, err)

		_, ok := scores.Lookup(30)
		assert.False(t, ok)
	})

	t.Run("all-negative peers are excluded rather than divided by zero", func(t *testing.T) {
		f := newFixture(t)
		u1, u4 := uuid.New(), uuid.New()
		f.rate(t, u1, 10, true)
		f.rate(t, u4, 10, false) // zero-norm vector
		f.rate(t, u4, 40, true)

		scores, err := f.collaborative.Score(ctx, u1, f.params)
		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("scores are a similarity-weighted average", func(t *testing.T) {
		f := newFixture(t)
		target, p1, p2 := uuid.New(), uuid.New(), uuid.New()
		f.rate(t, target, 1, true)
		f.rate(t, target, 2, true)

		// p1 shares both likes and recommends item 9.
		f.rate(t, p1, 1, true)
		f.rate(t, p1, 2, true)
		f.rate(t, p1, 9, true)
		// p2 shares both likes and rejects item 9.
		f.rate(t, p2, 1, true)
		f.rate(t, p2, 2, true)
		f.rate(t, p2, 9, false)

		scores, err := f.collaborative.Score(ctx, target, f.params)
		require.NoError(t, err)

		// Norms cover the full vectors, so p1's extra like dilutes it:
		// sim(target,p1) = 2/(sqrt2*sqrt3), sim(target,p2) = 2/(sqrt2*sqrt2).
		s1 := 2 / (math.Sqrt2 * math.Sqrt(3))
		s2 := 1.0
		score, ok := scores.Lookup(9)
		require.True(t, ok)
		assert.InDelta(t, s1/(s1+s2), score, 1e-9)
	})

	t.Run("peer cap keeps the most similar users", func(t *testing.T) {
		f := newFixture(t)
		target, near, distant := uuid.New(), uuid.New(), uuid.New()
		f.rate(t, target, 1, true)
		f.rate(t, target, 2, true)

		// Shares both likes.
		f.rate(t, near, 1, true)
		f.rate(t, near, 2, true)
		f.rate(t, near, 50, true)
		// Shares only one.
		f.rate(t, distant, 1, true)
		f.rate(t, distant, 60, true)

		params := f.params
		params.MaxPeers = 1

		scores, err := f.collaborative.Score(ctx, target, params)
		require.NoError(t, err)

		_, hasNear := scores.Lookup(50)
		_, hasDistant := scores.Lookup(60)
		assert.True(t, hasNear)
		assert.False(t, hasDistant)
	})
}
