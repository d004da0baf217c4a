package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainPassLabel(t *testing.T) {
	tests := []struct {
		name          string
		subgroupIndex int
		length        int
		rank          int
		expected      Label
		bonus         float64
		ok            bool
	}{
		{"First subgroup of School 1", 0, 9, 1, LabelRepresentative, 20, true},
		{"First subgroup of School 3", 0, 9, 3, LabelRepresentative, 15, true},
		{"First subgroup of School 4", 0, 9, 4, LabelRepresentative, 10, true},
		{"Shortest in second subgroup", 1, 6, 1, LabelShortestAlternative, 8, true},
		{"Shortest beyond third subgroup", 3, 6, 1, LabelAlternative, 5, true},
		{"Within two moves", 4, 8, 2, LabelAlternative, 5, true},
		{"Member within one move", 5, 7, 1, LabelMember, 2, true},
		{"Too long for member", 6, 8, 1, "", 0, false},
		{"Too far down", 7, 6, 1, "", 0, false},
		{"Too long for alternative", 2, 9, 1, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, bonus, ok := mainPassLabel(tt.subgroupIndex, tt.length, 6, tt.rank)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, label)
			assert.Equal(t, tt.bonus, bonus)
		})
	}
}

func TestLabelHelpers(t *testing.T) {
	assert.True(t, LabelAlternative.IsAlternative())
	assert.True(t, LabelShortestAlternative.IsAlternative())
	assert.False(t, LabelRepresentative.IsAlternative())
	assert.False(t, LabelMember.IsAlternative())

	assert.Equal(t, "School_3", SchoolName(3))

	label, bonus := alternativeLabel(5, 5)
	assert.Equal(t, LabelShortestAlternative, label)
	assert.Equal(t, 8.0, bonus)
	label, bonus = alternativeLabel(6, 5)
	assert.Equal(t, LabelAlternative, label)
	assert.Equal(t, 5.0, bonus)
}

func newTestLabeler(seqs []Sequence, families []*Family, smallBatch bool) *Labeler {
	engine := newTestEngine()
	indices := make([]int, 0, len(seqs))
	for _, fam := range families {
		indices = append(indices, fam.Members...)
	}
	scorer := NewScorer(engine, DefaultScoreWeights(), NewBatchStats(seqs, indices), seqs, families)
	return NewLabeler(scorer, seqs, LabelOptions{
		PrefixLen:       4,
		MinSubgroupSize: 3,
		QTMSubgroup:     0.3,
		QTMCase1:        1.5,
		SmallBatch:      smallBatch,
	})
}

func TestLabelFamily(t *testing.T) {
	ctx := context.Background()
	splitter := NewSubgroupSplitter(newTestEngine(), 2.5)

	t.Run("No valid subgroup falls back to quarter turn order", func(t *testing.T) {
		seqs := []Sequence{Encode("R U R' U'")}
		fam := &Family{Leader: 0, Members: []int{0}, Rank: 1}
		labeler := newTestLabeler(seqs, []*Family{fam}, true)

		subgroups, err := splitter.Split(ctx, fam, seqs)
		require.NoError(t, err)
		out, err := labeler.LabelFamily(ctx, fam, subgroups)
		require.NoError(t, err)

		require.Len(t, out.Labels, 1)
		l := out.Labels[0]
		assert.Equal(t, LabelRepresentative, l.Label)
		assert.Equal(t, "School_1", l.School)
		assert.Equal(t, "R U R' U'", l.Prefix)
		assert.Nil(t, l.Subgroup)
		assert.Zero(t, l.TotalSubgroups)
		// 60 base, minus 4 quarter turns at 1.5, plus 20
		assert.InDelta(t, 74.0, l.Score, 1e-9)
		assert.Zero(t, out.ValidCount)
	})

	t.Run("Single valid subgroup promotes alternatives", func(t *testing.T) {
		seqs := []Sequence{
			Encode("R U R' U'"),
			Encode("R U R' U'"),
			Encode("R U R' U'"),
			Encode("F2 B2 L2 D2"),
			Encode("D' L' F B"),
		}
		fam := &Family{Leader: 0, Members: []int{0, 1, 2, 3, 4}, Rank: 1}
		labeler := newTestLabeler(seqs, []*Family{fam}, true)

		subgroups, err := splitter.Split(ctx, fam, seqs)
		require.NoError(t, err)
		require.Len(t, subgroups, 3)
		out, err := labeler.LabelFamily(ctx, fam, subgroups)
		require.NoError(t, err)

		assert.Equal(t, 1, out.ValidCount)
		require.Len(t, out.Labels, 3)
		require.NotNil(t, out.Labels[0])
		assert.Equal(t, LabelRepresentative, out.Labels[0].Label)
		assert.Equal(t, &SubgroupRef{Index: 0, Size: 3}, out.Labels[0].Subgroup)

		for _, idx := range []int{3, 4} {
			l := out.Labels[idx]
			require.NotNil(t, l, "candidate %d", idx)
			assert.Equal(t, LabelShortestAlternative, l.Label)
			assert.Nil(t, l.Subgroup)
			assert.Equal(t, 1, l.TotalSubgroups)
		}
	})

	t.Run("Multiple subgroups keep prefixes unique", func(t *testing.T) {
		seqs := []Sequence{
			Encode("R U R' U'"),
			Encode("R U R' U'"),
			Encode("R U R' U'"),
			Encode("F2 B2 L2 D2"),
			Encode("F2 B2 L2 D2"),
			Encode("F2 B2 L2 D2"),
			Encode("D' L' F B"),
		}
		fam := &Family{Leader: 0, Members: allIndices(len(seqs)), Rank: 1}
		labeler := newTestLabeler(seqs, []*Family{fam}, false)

		subgroups, err := splitter.Split(ctx, fam, seqs)
		require.NoError(t, err)
		require.Len(t, subgroups, 3)
		out, err := labeler.LabelFamily(ctx, fam, subgroups)
		require.NoError(t, err)

		assert.Equal(t, 2, out.ValidCount)
		require.Len(t, out.Labels, 3)
		require.NotNil(t, out.Labels[0])
		assert.Equal(t, LabelRepresentative, out.Labels[0].Label)
		assert.Equal(t, SubgroupRef{Index: 1, Size: 3}, out.Subgroups[5])
		assert.Equal(t, SubgroupRef{Index: 2, Size: 1}, out.Subgroups[6])

		fromSecond := 0
		for idx := 3; idx <= 5; idx++ {
			if l, ok := out.Labels[idx]; ok {
				fromSecond++
				assert.Equal(t, LabelShortestAlternative, l.Label)
				assert.Equal(t, &SubgroupRef{Index: 1, Size: 3}, l.Subgroup)
				assert.Equal(t, 3, l.TotalSubgroups)
			}
		}
		assert.Equal(t, 1, fromSecond)

		promoted := out.Labels[6]
		require.NotNil(t, promoted)
		assert.Equal(t, LabelShortestAlternative, promoted.Label)
		assert.Nil(t, promoted.Subgroup)
		assert.Equal(t, 2, promoted.TotalSubgroups)

		prefixes := make(map[string]bool)
		for _, l := range out.Labels {
			assert.False(t, prefixes[l.Prefix], "prefix %q reused", l.Prefix)
			prefixes[l.Prefix] = true
		}
	})

	t.Run("Scores stay within bounds", func(t *testing.T) {
		seqs := canonicalSequences()
		fam := &Family{Leader: 0, Members: allIndices(len(seqs)), Rank: 1}
		labeler := newTestLabeler(seqs, []*Family{fam}, true)

		subgroups, err := splitter.Split(ctx, fam, seqs)
		require.NoError(t, err)
		out, err := labeler.LabelFamily(ctx, fam, subgroups)
		require.NoError(t, err)
		for _, l := range out.Labels {
			assert.GreaterOrEqual(t, l.Score, 0.0)
			assert.LessOrEqual(t, l.Score, MaxScore)
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		seqs := repeat("R U R' U'", 3)
		fam := &Family{Leader: 0, Members: []int{0, 1, 2}, Rank: 1}
		labeler := newTestLabeler(seqs, []*Family{fam}, true)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		subgroups := []*Subgroup{{Leader: 0, Members: []int{0, 1, 2}}}
		_, err := labeler.LabelFamily(cancelled, fam, subgroups)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
