package analyzer

import (
	"math"
	"sort"
)

const (
	lengthDecayBase       = 0.7
	lengthDecayRate       = 1.5
	rankDecayBase         = 0.5
	unreliableShortFactor = 0.2
	// reliableLengthCount is how many sequences must share a length before
	// it counts as a practical shortest length.
	reliableLengthCount = 3
	boostedLengthWeight = 50.0

	distanceShare       = 0.5
	silhouetteShare     = 0.4
	representativeShare = 0.1

	familyShortestBonus = 1.0
	familyLeaderBonus   = 0.7

	MaxScore = 100.0
)

// ScoreWeights are the configurable percentages of the recommendation
// score. What remains of 100 goes to distance, silhouette and
// representativeness in a 50/40/10 split.
type ScoreWeights struct {
	Length float64
	Rank   float64
	Size   float64
}

// DefaultScoreWeights returns the 40/25/15 split.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Length: 40, Rank: 25, Size: 15}
}

// ScoreTerms are the six normalized components of a recommendation score,
// each in [0, 1].
type ScoreTerms struct {
	Length         float64
	Rank           float64
	Size           float64
	Distance       float64
	Silhouette     float64
	Representative float64
}

// Combine weighs terms into a score in [0, 100]. When boost is set the
// length weight is raised to at least 50.
func (w ScoreWeights) Combine(t ScoreTerms, boost bool) float64 {
	lengthWeight := w.Length
	if boost {
		lengthWeight = math.Max(lengthWeight, boostedLengthWeight)
	}
	// The boost can push the fixed weights past 100; cluster terms then
	// get no share.
	remaining := math.Max(MaxScore-lengthWeight-w.Rank-w.Size, 0)

	total := t.Length*lengthWeight +
		t.Rank*w.Rank +
		t.Size*w.Size +
		t.Distance*remaining*distanceShare +
		t.Silhouette*remaining*silhouetteShare +
		t.Representative*remaining*representativeShare
	return clamp(total, 0, MaxScore)
}

// BatchStats are the length statistics shared by every score in a run.
type BatchStats struct {
	LengthCounts       map[int]int
	MinLength          int
	MaxLength          int
	ShortestCount      int
	PracticalMinLength int
	PracticalMinCount  int
}

// NewBatchStats computes the length histogram over the sequences at indices.
// The practical shortest length is the smallest length shared by at least
// three sequences, or the absolute minimum when no length qualifies.
func NewBatchStats(seqs []Sequence, indices []int) BatchStats {
	stats := BatchStats{LengthCounts: make(map[int]int)}
	if len(indices) == 0 {
		return stats
	}
	stats.MinLength = math.MaxInt
	for _, idx := range indices {
		l := len(seqs[idx])
		stats.LengthCounts[l]++
		stats.MinLength = min(stats.MinLength, l)
		stats.MaxLength = max(stats.MaxLength, l)
	}
	stats.ShortestCount = stats.LengthCounts[stats.MinLength]
	stats.PracticalMinLength = stats.MinLength
	stats.PracticalMinCount = stats.ShortestCount

	lengths := make([]int, 0, len(stats.LengthCounts))
	for l := range stats.LengthCounts {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)
	for _, l := range lengths {
		if stats.LengthCounts[l] >= reliableLengthCount {
			stats.PracticalMinLength = l
			stats.PracticalMinCount = stats.LengthCounts[l]
			break
		}
	}
	return stats
}

// Scorer computes recommendation scores for the members of ranked families.
// It memoizes per-family and per-candidate intermediate values and is not
// safe for concurrent use.
type Scorer struct {
	engine        *DistanceEngine
	weights       ScoreWeights
	stats         BatchStats
	seqs          []Sequence
	families      []*Family
	maxFamilySize int

	maxDistance map[int]float64
	silhouettes map[int]float64
}

// NewScorer creates a scorer over the final ranked families.
func NewScorer(engine *DistanceEngine, weights ScoreWeights, stats BatchStats, seqs []Sequence, families []*Family) *Scorer {
	maxSize := 0
	for _, fam := range families {
		maxSize = max(maxSize, fam.Size())
	}
	return &Scorer{
		engine:        engine,
		weights:       weights,
		stats:         stats,
		seqs:          seqs,
		families:      families,
		maxFamilySize: maxSize,
		maxDistance:   make(map[int]float64),
		silhouettes:   make(map[int]float64),
	}
}

// Stats returns the batch statistics the scorer was built with.
func (s *Scorer) Stats() BatchStats {
	return s.stats
}

// Score returns the recommendation score of candidate idx in fam.
func (s *Scorer) Score(idx int, fam *Family) float64 {
	return s.weights.Combine(s.Terms(idx, fam), s.stats.PracticalMinCount >= reliableLengthCount)
}

// Terms computes the normalized score components of candidate idx in fam.
func (s *Scorer) Terms(idx int, fam *Family) ScoreTerms {
	seq := s.seqs[idx]
	var t ScoreTerms

	t.Length = math.Pow(lengthDecayBase, lengthDecayRate*float64(len(seq)-s.stats.PracticalMinLength))
	if len(seq) == s.stats.MinLength && s.stats.ShortestCount < reliableLengthCount {
		t.Length *= unreliableShortFactor
	}

	t.Rank = math.Pow(rankDecayBase, float64(fam.Rank-1))

	if s.maxFamilySize > 0 {
		t.Size = float64(fam.Size()) / float64(s.maxFamilySize)
	}

	leader := s.seqs[fam.Leader]
	maxDist := s.familyMaxDistance(fam)
	if maxDist > 0 {
		t.Distance = 1 - s.engine.EnhancedDistance(seq, leader)/maxDist
	} else {
		t.Distance = 1
	}

	t.Silhouette = s.silhouette(idx, fam)

	familyMin := math.MaxInt
	for _, m := range fam.Members {
		familyMin = min(familyMin, len(s.seqs[m]))
	}
	if len(seq) == familyMin {
		t.Representative = familyShortestBonus
	} else if idx == fam.Leader {
		t.Representative = familyLeaderBonus
	}
	return t
}

func (s *Scorer) familyMaxDistance(fam *Family) float64 {
	if d, ok := s.maxDistance[fam.Rank]; ok {
		return d
	}
	leader := s.seqs[fam.Leader]
	maxDist := 0.0
	for _, m := range fam.Members {
		maxDist = math.Max(maxDist, s.engine.EnhancedDistance(s.seqs[m], leader))
	}
	s.maxDistance[fam.Rank] = maxDist
	return maxDist
}

// silhouette is the standard coefficient using edit distance, clamped to be
// non-negative. It is 0 with a single family or when a and b are both 0.
func (s *Scorer) silhouette(idx int, fam *Family) float64 {
	if v, ok := s.silhouettes[idx]; ok {
		return v
	}

	a := 0.0
	for _, m := range fam.Members {
		if m != idx {
			a += s.engine.EditDistance(s.seqs[idx], s.seqs[m])
		}
	}
	if fam.Size() > 1 {
		a /= float64(fam.Size() - 1)
	}

	b := math.Inf(1)
	for _, other := range s.families {
		if other == fam || other.Size() == 0 {
			continue
		}
		sum := 0.0
		for _, m := range other.Members {
			sum += s.engine.EditDistance(s.seqs[idx], s.seqs[m])
		}
		b = math.Min(b, sum/float64(other.Size()))
	}

	v := 0.0
	if !math.IsInf(b, 1) {
		if denom := math.Max(a, b); denom > 0 {
			v = math.Max(0, (b-a)/denom)
		}
	}
	s.silhouettes[idx] = v
	return v
}
