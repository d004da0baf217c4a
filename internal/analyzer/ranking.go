package analyzer

import (
	"sort"
)

const (
	rankBonusRepresentativeFirst = 15.0
	rankBonusRepresentativeTop   = 10.0
	rankBonusRepresentative      = 5.0
	rankBonusShortestFirst       = 8.0
	rankBonusShortest            = 5.0
	rankBonusAlternative         = 3.0

	maxSizeBonus = 20.0
)

// RankingOptions configures global ranking.
type RankingOptions struct {
	// QTMFinal is the per quarter turn penalty on the adjusted score.
	QTMFinal float64
}

// RankLabeled orders every labeled candidate across families. It fills
// AdjustedScore and the 1-based RecommendationRank of each entry and
// returns them in rank order. Ties keep input order.
func RankLabeled(labeled []*Labeled, families []*Family, seqs []Sequence, opts RankingOptions) []*Labeled {
	sizes := make(map[int]int, len(families))
	maxSize := 0
	for _, fam := range families {
		sizes[fam.Rank] = fam.Size()
		maxSize = max(maxSize, fam.Size())
	}

	ranked := append([]*Labeled(nil), labeled...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Index < ranked[j].Index })

	for _, l := range ranked {
		sizeBonus := 0.0
		if maxSize > 0 {
			sizeBonus = float64(sizes[l.SchoolRank]) / float64(maxSize) * maxSizeBonus
		}
		qtmPenalty := float64(QTM(seqs[l.Index])) * opts.QTMFinal
		l.AdjustedScore = l.Score + rankingBonus(l.Label, l.SchoolRank) + sizeBonus - qtmPenalty
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AdjustedScore > ranked[j].AdjustedScore
	})
	for i, l := range ranked {
		l.RecommendationRank = i + 1
	}
	return ranked
}

// rankingBonus tiers the label class by school rank.
func rankingBonus(label Label, schoolRank int) float64 {
	switch label {
	case LabelRepresentative:
		switch {
		case schoolRank == 1:
			return rankBonusRepresentativeFirst
		case schoolRank <= topSchoolRanks:
			return rankBonusRepresentativeTop
		default:
			return rankBonusRepresentative
		}
	case LabelShortestAlternative:
		if schoolRank == 1 {
			return rankBonusShortestFirst
		}
		return rankBonusShortest
	case LabelAlternative:
		return rankBonusAlternative
	default:
		return 0
	}
}
