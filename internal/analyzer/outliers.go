package analyzer

import (
	"math"
	"sort"
)

const (
	// DefaultOutlierThreshold is the modified z-score above which a member
	// is reported.
	DefaultOutlierThreshold = 3.5

	modifiedZScale = 0.6745
	madEpsilon     = 1e-10
	minOutlierPool = 3
)

// OutlierDetector flags family members unusually far from their leader by
// modified z-score over leader-to-member edit distances. It is a
// diagnostic and never changes labels or scores.
type OutlierDetector struct {
	engine    *DistanceEngine
	threshold float64
}

// NewOutlierDetector creates a detector. A non-positive threshold selects
// DefaultOutlierThreshold.
func NewOutlierDetector(engine *DistanceEngine, threshold float64) *OutlierDetector {
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}
	return &OutlierDetector{engine: engine, threshold: threshold}
}

// Detect returns the members of fam whose modified z-score exceeds the
// threshold, in member order. Families with fewer than three members have
// no outliers.
func (o *OutlierDetector) Detect(fam *Family, seqs []Sequence) []int {
	if fam.Size() < minOutlierPool {
		return []int{}
	}

	leader := seqs[fam.Leader]
	distances := make([]float64, fam.Size())
	for i, m := range fam.Members {
		distances[i] = o.engine.EditDistance(leader, seqs[m])
	}

	median := upperMedian(distances)
	deviations := make([]float64, len(distances))
	for i, d := range distances {
		deviations[i] = math.Abs(d - median)
	}
	mad := upperMedian(deviations)

	outliers := make([]int, 0)
	for i, m := range fam.Members {
		z := modifiedZScale * (distances[i] - median) / (mad + madEpsilon)
		if math.Abs(z) > o.threshold {
			outliers = append(outliers, m)
		}
	}
	return outliers
}

// upperMedian returns the element at len/2 of the sorted values.
func upperMedian(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
