package analyzer

import (
	"strconv"
	"strings"
)

// EndWeights blends the suffix similarity components used for school
// classification. Both weights are percentages: FaceWeight goes to face set
// overlap, SequenceWeight is split evenly between move set overlap and
// suffix edit similarity. Whatever is left of 100 is not awarded.
type EndWeights struct {
	FaceWeight     float64
	SequenceWeight float64
}

// DefaultEndWeights returns the default 40/40 blend.
func DefaultEndWeights() EndWeights {
	return EndWeights{FaceWeight: 40, SequenceWeight: 40}
}

// Chunk position weights, applied by where a shared n-gram first appears.
const (
	openingChunkWeight = 3.5
	middleChunkWeight  = 2.0
	endingChunkWeight  = 1.5

	openingChunkLimit = 0.4
	middleChunkLimit  = 0.7

	// maxDistanceReduction caps how much shared opening structure may
	// shrink the edit distance.
	maxDistanceReduction = 0.5

	// maxSchoolDistance is the school distance of two unrelated sequences.
	maxSchoolDistance = 10.0
)

var multiScaleChunks = []struct {
	size   int
	weight float64
}{
	{3, 1.5},
	{4, 2.5},
	{5, 3.5},
}

// endChunkSize picks the suffix window from the average length of a and b.
func endChunkSize(a, b Sequence) int {
	avg := float64(len(a)+len(b)) / 2
	switch {
	case avg <= 7:
		return 3
	case avg <= 10:
		return 4
	default:
		return 5
	}
}

func suffix(seq Sequence, n int) Sequence {
	if len(seq) <= n {
		return seq
	}
	return seq[len(seq)-n:]
}

// EndSimilarity scores in [0, 1] how alike the endings of a and b are.
// Suffixes shorter than two moves carry no signal and score 0.
func (d *DistanceEngine) EndSimilarity(a, b Sequence, w EndWeights) float64 {
	size := endChunkSize(a, b)
	endA := suffix(a, size)
	endB := suffix(b, size)

	if len(endA) < 2 || len(endB) < 2 {
		return 0
	}
	if endA.Equal(endB) {
		return 1.0
	}

	moveSetA := make(map[int]struct{}, len(endA))
	moveSetB := make(map[int]struct{}, len(endB))
	faceSetA := make(map[int]struct{}, len(endA))
	faceSetB := make(map[int]struct{}, len(endB))
	for _, mv := range endA {
		moveSetA[int(mv)] = struct{}{}
		faceSetA[mv.Face()] = struct{}{}
	}
	for _, mv := range endB {
		moveSetB[int(mv)] = struct{}{}
		faceSetB[mv.Face()] = struct{}{}
	}

	jaccard := jaccardIndex(moveSetA, moveSetB)
	faceSim := jaccardIndex(faceSetA, faceSetB)

	editSim := 0.0
	if maxCost := float64(max(len(endA), len(endB))) * 3; maxCost > 0 {
		editSim = 1 - d.EditDistance(endA, endB)/maxCost
	}

	half := w.SequenceWeight * 0.5
	sim := (jaccard*half + editSim*half + faceSim*w.FaceWeight) / 100
	return clamp(sim, 0, 1)
}

// SchoolDistance converts the ending similarity into a distance in [0, 10].
func (d *DistanceEngine) SchoolDistance(a, b Sequence) float64 {
	return (1 - d.EndSimilarity(a, b, d.end)) * maxSchoolDistance
}

// ChunkSimilarity compares the n-grams of a and b, weighting shared n-grams
// by how early they first occur. Sequences shorter than size score 0.
func (d *DistanceEngine) ChunkSimilarity(a, b Sequence, size int) float64 {
	if size <= 0 || len(a) < size || len(b) < size {
		return 0
	}

	chunksA, orderA := firstChunkPositions(a, size)
	chunksB, orderB := firstChunkPositions(b, size)

	spanA := float64(max(1, len(a)-size))
	spanB := float64(max(1, len(b)-size))

	weighted := 0.0
	for _, key := range orderA {
		posB, ok := chunksB[key]
		if !ok {
			continue
		}
		avgPos := (float64(chunksA[key])/spanA + float64(posB)/spanB) / 2
		switch {
		case avgPos < openingChunkLimit:
			weighted += openingChunkWeight
		case avgPos < middleChunkLimit:
			weighted += middleChunkWeight
		default:
			weighted += endingChunkWeight
		}
	}

	distinct := len(orderA)
	for _, key := range orderB {
		if _, ok := chunksA[key]; !ok {
			distinct++
		}
	}
	if distinct == 0 {
		return 0
	}
	return weighted / (float64(distinct) * openingChunkWeight)
}

// MultiScaleChunkSimilarity averages ChunkSimilarity over 3, 4 and 5 move
// n-grams, weighting the longer and more specific n-grams higher.
func (d *DistanceEngine) MultiScaleChunkSimilarity(a, b Sequence) float64 {
	total, weights := 0.0, 0.0
	for _, scale := range multiScaleChunks {
		total += d.ChunkSimilarity(a, b, scale.size) * scale.weight
		weights += scale.weight
	}
	if weights == 0 {
		return 0
	}
	return total / weights
}

// EnhancedDistance is the edit distance reduced by up to half when a and b
// share opening structure.
func (d *DistanceEngine) EnhancedDistance(a, b Sequence) float64 {
	return d.EditDistance(a, b) * (1 - d.MultiScaleChunkSimilarity(a, b)*maxDistanceReduction)
}

// firstChunkPositions maps every n-gram of seq to its earliest start. The
// order slice keeps first-seen order for deterministic iteration.
func firstChunkPositions(seq Sequence, size int) (map[string]int, []string) {
	positions := make(map[string]int, len(seq))
	order := make([]string, 0, len(seq))
	for i := 0; i+size <= len(seq); i++ {
		key := chunkKey(seq[i : i+size])
		if _, seen := positions[key]; seen {
			continue
		}
		positions[key] = i
		order = append(order, key)
	}
	return positions, order
}

func chunkKey(chunk Sequence) string {
	var b strings.Builder
	for i, mv := range chunk {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(mv)))
	}
	return b.String()
}

func jaccardIndex(a, b map[int]struct{}) float64 {
	union := len(a)
	inter := 0
	for k := range b {
		if _, ok := a[k]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
