package analyzer

import (
	"context"
	"fmt"
	"math"
	"sort"
)

const (
	// minSplittableFamily is the smallest family split into subgroups.
	minSplittableFamily = 3

	qualitySizeFactor    = 3.0
	qualityLengthFloor   = 4
	qualityLengthPenalty = 0.5
)

// Subgroup is a cluster of family members sharing opening structure.
type Subgroup struct {
	Leader    int
	Members   []int
	MinLength int
	AvgLength float64
	Quality   float64
}

// Size returns the member count.
func (s *Subgroup) Size() int {
	return len(s.Members)
}

// AutoSubgroupThreshold returns the opening distance threshold for a batch
// of n sequences.
func AutoSubgroupThreshold(n int) float64 {
	if n <= smallBatchSize {
		return 2.5
	}
	return 3.0
}

// SubgroupSplitter divides a family by opening similarity.
type SubgroupSplitter struct {
	engine    *DistanceEngine
	threshold float64
}

// NewSubgroupSplitter creates a splitter using the given enhanced distance
// threshold.
func NewSubgroupSplitter(engine *DistanceEngine, threshold float64) *SubgroupSplitter {
	return &SubgroupSplitter{engine: engine, threshold: threshold}
}

// Split returns the subgroups of fam ordered by descending quality. Families
// with fewer than three members come back as a single subgroup led by their
// first member.
func (s *SubgroupSplitter) Split(ctx context.Context, fam *Family, seqs []Sequence) ([]*Subgroup, error) {
	if len(fam.Members) == 0 {
		return []*Subgroup{}, nil
	}
	if len(fam.Members) < minSplittableFamily {
		sg := &Subgroup{Leader: fam.Members[0], Members: append([]int(nil), fam.Members...)}
		sg.measure(seqs)
		return []*Subgroup{sg}, nil
	}

	subgroups := make([]*Subgroup, 0)
	for _, idx := range fam.Members {
		joined := false
		for _, sg := range subgroups {
			if s.engine.EnhancedDistance(seqs[idx], seqs[sg.Leader]) <= s.threshold {
				sg.Members = append(sg.Members, idx)
				joined = true
				break
			}
		}
		if !joined {
			subgroups = append(subgroups, &Subgroup{Leader: idx, Members: []int{idx}})
		}
	}

	for _, sg := range subgroups {
		if sg.Size() >= 2 {
			leader, err := s.engine.Medoid(ctx, sg.Members, seqs)
			if err != nil {
				return nil, fmt.Errorf("subgroup medoid: %w", err)
			}
			sg.Leader = leader
		}
		sg.measure(seqs)
	}

	sort.SliceStable(subgroups, func(i, j int) bool {
		return subgroups[i].Size() > subgroups[j].Size()
	})
	sort.SliceStable(subgroups, func(i, j int) bool {
		return subgroups[i].Quality > subgroups[j].Quality
	})
	return subgroups, nil
}

// measure fills the length statistics and the quality score.
func (sg *Subgroup) measure(seqs []Sequence) {
	minLen := math.MaxInt
	total := 0
	for _, idx := range sg.Members {
		l := len(seqs[idx])
		minLen = min(minLen, l)
		total += l
	}
	sg.MinLength = minLen
	sg.AvgLength = float64(total) / float64(len(sg.Members))
	sg.Quality = float64(sg.Size())*qualitySizeFactor -
		float64(max(0, minLen-qualityLengthFloor))*qualityLengthPenalty
}
