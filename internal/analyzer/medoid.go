package analyzer

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Medoid picks the representative of a cluster. Only members of minimum
// length are candidates; the one with the smallest total edit distance to
// all members wins and ties go to the earliest member.
//
// Candidate totals are computed concurrently. The arg-min runs over the
// candidates in member order afterwards, so the result matches a
// sequential computation exactly.
func (d *DistanceEngine) Medoid(ctx context.Context, members []int, seqs []Sequence) (int, error) {
	if len(members) == 0 {
		return -1, nil
	}
	if len(members) == 1 {
		return members[0], nil
	}

	minLen := math.MaxInt
	for _, idx := range members {
		minLen = min(minLen, len(seqs[idx]))
	}
	candidates := make([]int, 0, len(members))
	for _, idx := range members {
		if len(seqs[idx]) == minLen {
			candidates = append(candidates, idx)
		}
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	totals := make([]float64, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, cand := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			total := 0.0
			for _, other := range members {
				total += d.EditDistance(seqs[cand], seqs[other])
			}
			totals[i] = total
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return -1, err
	}

	best := candidates[0]
	bestTotal := math.Inf(1)
	for i, cand := range candidates {
		if totals[i] < bestTotal {
			bestTotal = totals[i]
			best = cand
		}
	}
	return best, nil
}
