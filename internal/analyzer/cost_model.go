package analyzer

// CostModel defines the interface for calculating edit operation costs
// between moves.
type CostModel interface {
	// Insert returns the cost of inserting a move
	Insert(m Move) float64

	// Delete returns the cost of deleting a move
	Delete(m Move) float64

	// Substitute returns the cost of replacing a with b
	Substitute(a, b Move) float64
}

// Physical substitution costs.
const (
	SameMoveCost     = 0.0
	SameFaceCost     = 0.5
	OppositeFaceCost = 1.0
	CrossAxisCost    = 0.7
	IndelCost        = 1.0
)

// physicalCost is built once and never written afterwards.
var physicalCost = buildPhysicalCost()

func buildPhysicalCost() [MoveCount][MoveCount]float64 {
	var table [MoveCount][MoveCount]float64
	for a := Move(0); a < MoveCount; a++ {
		for b := Move(0); b < MoveCount; b++ {
			switch {
			case a == b:
				table[a][b] = SameMoveCost
			case a.Face() == b.Face():
				table[a][b] = SameFaceCost
			case a.Axis() == b.Axis():
				table[a][b] = OppositeFaceCost
			default:
				table[a][b] = CrossAxisCost
			}
		}
	}
	return table
}

// PhysicalCostModel prices substitutions by how far apart two turns are on
// the puzzle: same face is cheap, opposite face on the same axis is
// expensive and a different axis sits in between.
type PhysicalCostModel struct{}

// NewPhysicalCostModel creates the physical cost model
func NewPhysicalCostModel() *PhysicalCostModel {
	return &PhysicalCostModel{}
}

// Insert returns the cost of inserting a move (always 1.0)
func (c *PhysicalCostModel) Insert(Move) float64 { return IndelCost }

// Delete returns the cost of deleting a move (always 1.0)
func (c *PhysicalCostModel) Delete(Move) float64 { return IndelCost }

// Substitute looks the pair up in the precomputed table. Out of range ids
// are priced like an insert plus a delete.
func (c *PhysicalCostModel) Substitute(a, b Move) float64 {
	if a < 0 || b < 0 || a >= MoveCount || b >= MoveCount {
		return 2 * IndelCost
	}
	return physicalCost[a][b]
}
