package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedoid(t *testing.T) {
	engine := newTestEngine()
	ctx := context.Background()

	t.Run("Single member", func(t *testing.T) {
		got, err := engine.Medoid(ctx, []int{7}, make([]Sequence, 8))
		require.NoError(t, err)
		assert.Equal(t, 7, got)
	})

	t.Run("Empty members", func(t *testing.T) {
		got, err := engine.Medoid(ctx, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, -1, got)
	})

	t.Run("Only shortest members are candidates", func(t *testing.T) {
		seqs := []Sequence{Encode("R U R' U'"), Encode("R U R'"), Encode("R U R")}
		// totals: 1 -> 1.5, 2 -> 2.0
		got, err := engine.Medoid(ctx, []int{0, 1, 2}, seqs)
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	})

	t.Run("Ties go to the earliest member", func(t *testing.T) {
		seqs := []Sequence{Encode("R"), Encode("U")}

		got, err := engine.Medoid(ctx, []int{0, 1}, seqs)
		require.NoError(t, err)
		assert.Equal(t, 0, got)

		got, err = engine.Medoid(ctx, []int{1, 0}, seqs)
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		seqs := []Sequence{Encode("R"), Encode("U"), Encode("F")}
		_, err := engine.Medoid(cancelled, []int{0, 1, 2}, seqs)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
