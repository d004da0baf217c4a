package analyzer

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Batch size tiers that tune clustering limits.
const (
	smallBatchSize  = 150
	mediumBatchSize = 500

	// pairMergeDistance is the leader distance under which two small
	// families are folded together after the iterative merge.
	pairMergeDistance = 3.0
	// mergeDistanceSlack widens the clustering threshold for merging.
	mergeDistanceSlack = 2.0
)

// Family is a school: a top-level cluster of sequences with similar endings.
// Members hold input indices in assignment order and always include Leader.
type Family struct {
	Leader  int
	Members []int
	Rank    int // 1-based after sorting, 0 before
}

// Size returns the member count.
func (f *Family) Size() int {
	return len(f.Members)
}

// ClusterOptions holds the school clustering parameters. Zero
// MinClusterSize selects the batch size dependent default.
type ClusterOptions struct {
	Threshold      float64
	MaxClusterSize int
	MinClusterSize int
	MinSchoolSize  int
}

// ClusterLimits are the parameters actually used for a batch.
type ClusterLimits struct {
	Threshold        float64
	MaxClusterSize   int
	MinClusterSize   int
	MaxMergeDistance float64
}

// SchoolClusterer groups a batch into families by ending similarity.
//
// Assignment is sequential leader clustering over the inputs in the order
// given: the result depends on input order and on which member was leader
// at assignment time, not on the final medoids.
type SchoolClusterer struct {
	engine *DistanceEngine
	opts   ClusterOptions
}

// NewSchoolClusterer creates a school clusterer.
func NewSchoolClusterer(engine *DistanceEngine, opts ClusterOptions) *SchoolClusterer {
	return &SchoolClusterer{engine: engine, opts: opts}
}

// Limits resolves the effective clustering parameters for a batch of n
// sequences.
func (c *SchoolClusterer) Limits(n int) ClusterLimits {
	limits := ClusterLimits{
		Threshold:      c.opts.Threshold,
		MaxClusterSize: c.opts.MaxClusterSize,
		MinClusterSize: c.opts.MinClusterSize,
	}
	switch {
	case n <= smallBatchSize:
		limits.Threshold = math.Max(limits.Threshold, 4)
		limits.MaxClusterSize = min(limits.MaxClusterSize, 15)
	case n <= mediumBatchSize:
		limits.Threshold = math.Max(limits.Threshold, 5)
		limits.MaxClusterSize = min(limits.MaxClusterSize, 30)
	}
	if limits.MinClusterSize <= 0 {
		limits.MinClusterSize = AutoMinClusterSize(n)
	}
	limits.MaxMergeDistance = limits.Threshold + mergeDistanceSlack
	return limits
}

// AutoMinClusterSize returns the merge size floor for a batch of n sequences.
func AutoMinClusterSize(n int) int {
	switch {
	case n <= smallBatchSize:
		return 5
	case n <= mediumBatchSize:
		return 3
	default:
		return 2
	}
}

// Cluster builds the ranked families for the sequences at indices. Indices
// not listed never enter a family. The returned families are sorted by size
// descending and already filtered by MinSchoolSize.
func (c *SchoolClusterer) Cluster(ctx context.Context, seqs []Sequence, indices []int) ([]*Family, error) {
	if len(indices) == 0 {
		return []*Family{}, nil
	}
	limits := c.Limits(len(indices))

	// 1. Sequential leader assignment
	families := make([]*Family, 0)
	for _, idx := range indices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		joined := false
		for _, fam := range families {
			if fam.Size() >= limits.MaxClusterSize {
				continue
			}
			if c.engine.SchoolDistance(seqs[idx], seqs[fam.Leader]) <= limits.Threshold {
				fam.Members = append(fam.Members, idx)
				joined = true
				break
			}
		}
		if !joined {
			families = append(families, &Family{Leader: idx, Members: []int{idx}})
		}
	}

	// 2. Medoid leaders
	if err := c.recomputeLeaders(ctx, families, seqs); err != nil {
		return nil, err
	}

	// 3. Merge small families
	families, err := c.mergeSmall(ctx, families, seqs, limits)
	if err != nil {
		return nil, err
	}

	// 4. Rank by size
	sort.SliceStable(families, func(i, j int) bool {
		return families[i].Size() > families[j].Size()
	})

	// 5. Drop small schools, keeping the largest if nothing survives
	kept := make([]*Family, 0, len(families))
	for _, fam := range families {
		if fam.Size() >= c.opts.MinSchoolSize {
			kept = append(kept, fam)
		}
	}
	if len(kept) == 0 && len(families) > 0 {
		kept = append(kept, families[0])
	}
	for i, fam := range kept {
		fam.Rank = i + 1
	}
	return kept, nil
}

func (c *SchoolClusterer) recomputeLeaders(ctx context.Context, families []*Family, seqs []Sequence) error {
	for _, fam := range families {
		leader, err := c.engine.Medoid(ctx, fam.Members, seqs)
		if err != nil {
			return fmt.Errorf("medoid selection: %w", err)
		}
		fam.Leader = leader
	}
	return nil
}

// mergeSmall folds families below the size floor into their nearest large
// neighbour until nothing moves, then joins close pairs of small families.
func (c *SchoolClusterer) mergeSmall(ctx context.Context, families []*Family, seqs []Sequence, limits ClusterLimits) ([]*Family, error) {
	minSize := limits.MinClusterSize
	merged := families

	for changed := true; changed; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		changed = false

		large := make([]*Family, 0, len(merged))
		small := make([]*Family, 0)
		for _, fam := range merged {
			if fam.Size() < minSize {
				small = append(small, fam)
			} else {
				large = append(large, fam)
			}
		}
		// Targets are the families that were large when the pass began.
		targets := large

		next := append([]*Family(nil), large...)
		for _, fam := range small {
			var best *Family
			bestDist := math.Inf(1)
			for _, target := range targets {
				dist := c.engine.EditDistance(seqs[fam.Leader], seqs[target.Leader])
				if dist < bestDist {
					bestDist = dist
					best = target
				}
			}
			if best != nil && bestDist <= limits.MaxMergeDistance {
				best.Members = append(best.Members, fam.Members...)
				changed = true
			} else {
				next = append(next, fam)
			}
		}
		merged = next
	}

	final := make([]*Family, 0, len(merged))
	used := make([]bool, len(merged))
	for i, first := range merged {
		if used[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		combined := &Family{Leader: first.Leader, Members: append([]int(nil), first.Members...)}
		for j := i + 1; j < len(merged); j++ {
			if used[j] {
				continue
			}
			second := merged[j]
			if first.Size() >= 2*minSize || second.Size() >= 2*minSize {
				continue
			}
			if c.engine.EditDistance(seqs[first.Leader], seqs[second.Leader]) <= pairMergeDistance {
				combined.Members = append(combined.Members, second.Members...)
				used[j] = true
			}
		}
		used[i] = true
		final = append(final, combined)
	}

	if err := c.recomputeLeaders(ctx, final, seqs); err != nil {
		return nil, err
	}
	return final, nil
}
