package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqsOfLengths(lengths ...int) []Sequence {
	seqs := make([]Sequence, len(lengths))
	for i, l := range lengths {
		seq := make(Sequence, l)
		for j := range seq {
			seq[j] = Move((i + j) % MoveCount)
		}
		seqs[i] = seq
	}
	return seqs
}

func TestNewBatchStats(t *testing.T) {
	t.Run("Practical shortest needs three occurrences", func(t *testing.T) {
		seqs := seqsOfLengths(4, 4, 4, 3, 5)
		stats := NewBatchStats(seqs, allIndices(len(seqs)))

		assert.Equal(t, 3, stats.MinLength)
		assert.Equal(t, 5, stats.MaxLength)
		assert.Equal(t, 1, stats.ShortestCount)
		assert.Equal(t, 4, stats.PracticalMinLength)
		assert.Equal(t, 3, stats.PracticalMinCount)
	})

	t.Run("Falls back to the absolute minimum", func(t *testing.T) {
		seqs := seqsOfLengths(3, 5, 5)
		stats := NewBatchStats(seqs, allIndices(len(seqs)))

		assert.Equal(t, 3, stats.PracticalMinLength)
		assert.Equal(t, 1, stats.PracticalMinCount)
	})

	t.Run("Only listed indices count", func(t *testing.T) {
		seqs := seqsOfLengths(1, 4, 4, 4)
		stats := NewBatchStats(seqs, []int{1, 2, 3})

		assert.Equal(t, 4, stats.MinLength)
		assert.Equal(t, 3, stats.ShortestCount)
	})

	t.Run("Empty batch", func(t *testing.T) {
		stats := NewBatchStats(nil, nil)
		assert.Empty(t, stats.LengthCounts)
		assert.Zero(t, stats.MinLength)
	})
}

func TestScoreWeightsCombine(t *testing.T) {
	w := DefaultScoreWeights()
	ones := ScoreTerms{Length: 1, Rank: 1, Size: 1, Distance: 1, Silhouette: 1, Representative: 1}

	assert.InDelta(t, 100.0, w.Combine(ones, false), 1e-9)
	assert.InDelta(t, 100.0, w.Combine(ones, true), 1e-9)
	assert.Zero(t, w.Combine(ScoreTerms{}, false))

	t.Run("Boost raises the length weight to fifty", func(t *testing.T) {
		lengthOnly := ScoreTerms{Length: 1}
		assert.InDelta(t, 40.0, w.Combine(lengthOnly, false), 1e-9)
		assert.InDelta(t, 50.0, w.Combine(lengthOnly, true), 1e-9)

		heavy := ScoreWeights{Length: 60, Rank: 20, Size: 10}
		assert.InDelta(t, 60.0, heavy.Combine(lengthOnly, true), 1e-9)
	})

	t.Run("Remaining points split 50/40/10", func(t *testing.T) {
		assert.InDelta(t, 10.0, w.Combine(ScoreTerms{Distance: 1}, false), 1e-9)
		assert.InDelta(t, 8.0, w.Combine(ScoreTerms{Silhouette: 1}, false), 1e-9)
		assert.InDelta(t, 2.0, w.Combine(ScoreTerms{Representative: 1}, false), 1e-9)
	})

	t.Run("Boost never makes cluster terms negative", func(t *testing.T) {
		full := ScoreWeights{Length: 40, Rank: 30, Size: 30}
		clusterOnly := ScoreTerms{Distance: 1, Silhouette: 1, Representative: 1}
		assert.Zero(t, full.Combine(clusterOnly, true))

		mixed := ScoreTerms{Length: 1, Rank: 1, Distance: 1, Silhouette: 1, Representative: 1}
		assert.InDelta(t, 80.0, full.Combine(mixed, true), 1e-9)
	})

	t.Run("Result is clipped", func(t *testing.T) {
		greedy := ScoreWeights{Length: 90, Rank: 90, Size: 90}
		assert.Equal(t, MaxScore, greedy.Combine(ScoreTerms{Length: 1, Rank: 1, Size: 1}, false))
		assert.Zero(t, greedy.Combine(ScoreTerms{Distance: 1}, false))
	})
}

func TestLengthWeightFavorsShorterCandidates(t *testing.T) {
	shorter := ScoreTerms{Length: 1.0, Rank: 0.5, Size: 0.5, Distance: 0.5, Silhouette: 0.5, Representative: 0.5}
	longer := shorter
	longer.Length = 0.49

	prev := -1.0
	for _, lw := range []float64{20, 30, 40, 45} {
		w := ScoreWeights{Length: lw, Rank: 25, Size: 15}
		gap := w.Combine(shorter, false) - w.Combine(longer, false)
		assert.Greater(t, gap, prev, "length weight %v", lw)
		prev = gap
	}
}

func TestScorer(t *testing.T) {
	engine := newTestEngine()
	seqs := []Sequence{
		Encode("R U R' U'"),
		Encode("R U R' U'"),
		Encode("R U2 R' U'"),
		Encode("F R U R' U' F'"),
	}
	indices := allIndices(len(seqs))

	t.Run("Single family has no silhouette", func(t *testing.T) {
		fam := &Family{Leader: 0, Members: indices, Rank: 1}
		scorer := NewScorer(engine, DefaultScoreWeights(), NewBatchStats(seqs, indices), seqs, []*Family{fam})

		for _, idx := range indices {
			terms := scorer.Terms(idx, fam)
			assert.Zero(t, terms.Silhouette)
			assert.Equal(t, 1.0, terms.Rank)
			assert.Equal(t, 1.0, terms.Size)

			score := scorer.Score(idx, fam)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, MaxScore)
		}

		leader := scorer.Terms(0, fam)
		assert.Equal(t, 1.0, leader.Distance)
		assert.Equal(t, 1.0, leader.Representative)
		assert.Equal(t, 1.0, leader.Length, "length four is the practical shortest")

		long := scorer.Terms(3, fam)
		assert.Zero(t, long.Representative)
		assert.Less(t, long.Length, leader.Length)
	})

	t.Run("Rank and silhouette across families", func(t *testing.T) {
		first := &Family{Leader: 0, Members: []int{0, 1, 2}, Rank: 1}
		second := &Family{Leader: 3, Members: []int{3}, Rank: 2}
		scorer := NewScorer(engine, DefaultScoreWeights(), NewBatchStats(seqs, indices), seqs, []*Family{first, second})

		terms := scorer.Terms(3, second)
		assert.Equal(t, 0.5, terms.Rank)
		assert.InDelta(t, 1.0/3.0, terms.Size, 1e-9)
		assert.Equal(t, 1.0, terms.Silhouette, "a singleton has zero intra distance")

		inner := scorer.Terms(0, first)
		assert.Greater(t, inner.Silhouette, 0.0)
		assert.LessOrEqual(t, inner.Silhouette, 1.0)
	})

	t.Run("Stats are exposed", func(t *testing.T) {
		fam := &Family{Leader: 0, Members: indices, Rank: 1}
		stats := NewBatchStats(seqs, indices)
		scorer := NewScorer(engine, DefaultScoreWeights(), stats, seqs, []*Family{fam})
		require.Equal(t, stats, scorer.Stats())
	})
}
