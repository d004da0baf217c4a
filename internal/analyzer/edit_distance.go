package analyzer

// DistanceEngine computes the weighted edit distance between move sequences
// and the composite distances derived from it.
//
// The substitution costs are not a metric, so the distances produced here do
// not satisfy the triangle inequality.
type DistanceEngine struct {
	costModel CostModel
	end       EndWeights
}

// NewDistanceEngine creates a distance engine. A nil cost model selects the
// physical cost model.
func NewDistanceEngine(costModel CostModel, end EndWeights) *DistanceEngine {
	if costModel == nil {
		costModel = NewPhysicalCostModel()
	}
	return &DistanceEngine{
		costModel: costModel,
		end:       end,
	}
}

// EndWeights returns the suffix blend weights used by SchoolDistance.
func (d *DistanceEngine) EndWeights() EndWeights {
	return d.end
}

// EditDistance returns the weighted Levenshtein distance between a and b.
// Matching moves are free, substitutions are priced by the cost model and
// insertions and deletions by the model's Insert and Delete.
func (d *DistanceEngine) EditDistance(a, b Sequence) float64 {
	m, n := len(a), len(b)
	cols := n + 1
	dp := make([]float64, (m+1)*cols)

	for i := 1; i <= m; i++ {
		dp[i*cols] = dp[(i-1)*cols] + d.costModel.Delete(a[i-1])
	}
	for j := 1; j <= n; j++ {
		dp[j] = dp[j-1] + d.costModel.Insert(b[j-1])
	}

	for i := 1; i <= m; i++ {
		row := i * cols
		prev := (i - 1) * cols
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[row+j] = dp[prev+j-1]
				continue
			}
			del := dp[prev+j] + d.costModel.Delete(a[i-1])
			ins := dp[row+j-1] + d.costModel.Insert(b[j-1])
			sub := dp[prev+j-1] + d.costModel.Substitute(a[i-1], b[j-1])
			dp[row+j] = min(del, ins, sub)
		}
	}

	return dp[m*cols+n]
}
