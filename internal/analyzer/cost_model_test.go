package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhysicalCostModel(t *testing.T) {
	model := NewPhysicalCostModel()

	t.Run("Substitution tiers", func(t *testing.T) {
		tests := []struct {
			a, b     string
			expected float64
		}{
			{"R", "R", SameMoveCost},
			{"R", "R2", SameFaceCost},
			{"R", "R'", SameFaceCost},
			{"R", "L", OppositeFaceCost},
			{"U2", "D'", OppositeFaceCost},
			{"R", "U", CrossAxisCost},
			{"F", "L2", CrossAxisCost},
		}
		for _, tt := range tests {
			a, b := Encode(tt.a)[0], Encode(tt.b)[0]
			assert.Equal(t, tt.expected, model.Substitute(a, b), "%s -> %s", tt.a, tt.b)
		}
	})

	t.Run("Table is symmetric with a zero diagonal", func(t *testing.T) {
		for a := Move(0); a < MoveCount; a++ {
			assert.Zero(t, model.Substitute(a, a))
			for b := Move(0); b < MoveCount; b++ {
				assert.Equal(t, model.Substitute(a, b), model.Substitute(b, a))
			}
		}
	})

	t.Run("Insert and delete cost one", func(t *testing.T) {
		assert.Equal(t, IndelCost, model.Insert(0))
		assert.Equal(t, IndelCost, model.Delete(17))
	})

	t.Run("Out of range ids", func(t *testing.T) {
		assert.Equal(t, 2*IndelCost, model.Substitute(-1, 0))
		assert.Equal(t, 2*IndelCost, model.Substitute(0, MoveCount))
	})
}
