package analyzer

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Label is the display class of a candidate.
type Label string

const (
	LabelRepresentative      Label = "Representative"
	LabelShortestAlternative Label = "Shortest Alternative"
	LabelAlternative         Label = "Alternative"
	LabelMember              Label = "Member"
	LabelUnlabeled           Label = "Unlabeled"
)

// IsAlternative reports whether the label is one of the alternative classes.
func (l Label) IsAlternative() bool {
	return l == LabelAlternative || l == LabelShortestAlternative
}

// SchoolNone is the school of candidates outside every final family.
const SchoolNone = "None"

// SchoolName returns the display name of the family with the given rank.
func SchoolName(rank int) string {
	return fmt.Sprintf("School_%d", rank)
}

// Subgroup positions and length slack that decide the main pass label.
const (
	shortestAltMaxIndex = 3
	alternativeMaxIndex = 5
	memberMaxIndex      = 7
	alternativeSlack    = 2
	memberSlack         = 1

	// candidateLengthSlack is how much longer than the family minimum a
	// candidate may be before the length penalty applies.
	candidateLengthSlack   = 3
	candidateLengthPenalty = 5.0
	promotionQTMPenalty    = 1.0
)

// Label bonuses added to the stored score.
const (
	bonusRepresentativeFirst = 20.0
	bonusRepresentativeTop   = 15.0
	bonusRepresentative      = 10.0
	bonusShortestAlternative = 8.0
	bonusAlternative         = 5.0
	bonusMember              = 2.0

	topSchoolRanks = 3
)

// SubgroupRef locates a candidate inside the quality ordered subgroups of
// its family.
type SubgroupRef struct {
	Index int
	Size  int
}

// Outcome is the per-candidate result. It is either Labeled or Unlabeled.
type Outcome interface {
	// OriginalIndex returns the input position of the candidate.
	OriginalIndex() int
	outcome()
}

// Labeled is a candidate selected for display.
type Labeled struct {
	Index          int
	School         string
	SchoolRank     int
	Label          Label
	Prefix         string
	Score          float64
	Subgroup       *SubgroupRef
	TotalSubgroups int

	// Filled by global ranking.
	AdjustedScore      float64
	RecommendationRank int
}

// Unlabeled is a candidate not selected for display. SchoolRank is 0 when
// the candidate belongs to no final family.
type Unlabeled struct {
	Index          int
	School         string
	SchoolRank     int
	Subgroup       *SubgroupRef
	TotalSubgroups int
}

func (l *Labeled) OriginalIndex() int   { return l.Index }
func (u *Unlabeled) OriginalIndex() int { return u.Index }
func (*Labeled) outcome()               {}
func (*Unlabeled) outcome()             {}

// LabelOptions configures the labeler.
type LabelOptions struct {
	PrefixLen       int
	MinSubgroupSize int
	QTMSubgroup     float64
	QTMCase1        float64
	// SmallBatch allows School 1 to reuse prefixes in the main pass and in
	// the no-subgroup fallback.
	SmallBatch bool
}

// FamilyLabels is the labeling of one family: labels keyed by input index
// and the subgroup position of every member.
type FamilyLabels struct {
	Labels     map[int]*Labeled
	Subgroups  map[int]SubgroupRef
	Total      int
	ValidCount int
}

// Labeler assigns display labels within families.
type Labeler struct {
	scorer *Scorer
	seqs   []Sequence
	opts   LabelOptions
}

// NewLabeler creates a labeler scoring candidates with scorer.
func NewLabeler(scorer *Scorer, seqs []Sequence, opts LabelOptions) *Labeler {
	return &Labeler{scorer: scorer, seqs: seqs, opts: opts}
}

type candidate struct {
	idx    int
	length int
	qtm    int
	prefix string
	score  float64
}

// familyState tracks what a single family has claimed so far.
type familyState struct {
	fam       *Family
	name      string
	minLength int
	used      map[string]bool
	labels    map[int]*Labeled
}

func (st *familyState) alternatives() int {
	n := 0
	for _, l := range st.labels {
		if l.Label.IsAlternative() {
			n++
		}
	}
	return n
}

// LabelFamily runs the main subgroup pass and the applicable fallback for
// fam. Subgroups must be in descending quality order.
func (l *Labeler) LabelFamily(ctx context.Context, fam *Family, subgroups []*Subgroup) (*FamilyLabels, error) {
	st := &familyState{
		fam:       fam,
		name:      SchoolName(fam.Rank),
		minLength: math.MaxInt,
		used:      make(map[string]bool),
		labels:    make(map[int]*Labeled),
	}
	for _, m := range fam.Members {
		st.minLength = min(st.minLength, len(l.seqs[m]))
	}

	out := &FamilyLabels{
		Labels:    st.labels,
		Subgroups: make(map[int]SubgroupRef, fam.Size()),
		Total:     len(subgroups),
	}
	for i, sg := range subgroups {
		for _, m := range sg.Members {
			out.Subgroups[m] = SubgroupRef{Index: i, Size: sg.Size()}
		}
		if sg.Size() >= l.opts.MinSubgroupSize {
			out.ValidCount++
		}
	}

	prefixReuse := l.opts.SmallBatch && fam.Rank == 1

	for i, sg := range subgroups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sg.Size() < l.opts.MinSubgroupSize {
			continue
		}

		cands := l.candidates(st, sg.Members, l.opts.QTMSubgroup, true)
		sort.SliceStable(cands, func(a, b int) bool { return cands[a].score > cands[b].score })

		var picked *candidate
		for k := range cands {
			if !st.used[cands[k].prefix] || prefixReuse {
				picked = &cands[k]
				break
			}
		}
		if picked == nil {
			continue
		}

		label, bonus, ok := mainPassLabel(i, picked.length, st.minLength, fam.Rank)
		if !ok {
			continue
		}
		st.assign(picked, label, bonus, &SubgroupRef{Index: i, Size: sg.Size()}, len(subgroups))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch out.ValidCount {
	case 0:
		l.fallbackNoSubgroups(st, prefixReuse)
	case 1:
		l.promoteAlternatives(st, 1)
	default:
		l.promoteAlternatives(st, out.ValidCount)
	}
	return out, nil
}

// mainPassLabel applies the subgroup position rules.
func mainPassLabel(subgroupIndex, length, familyMin, rank int) (Label, float64, bool) {
	switch {
	case subgroupIndex == 0:
		return LabelRepresentative, representativeBonus(rank), true
	case length == familyMin && subgroupIndex < shortestAltMaxIndex:
		return LabelShortestAlternative, bonusShortestAlternative, true
	case subgroupIndex < alternativeMaxIndex && length <= familyMin+alternativeSlack:
		return LabelAlternative, bonusAlternative, true
	case subgroupIndex < memberMaxIndex && length <= familyMin+memberSlack:
		return LabelMember, bonusMember, true
	default:
		return "", 0, false
	}
}

func representativeBonus(rank int) float64 {
	switch {
	case rank == 1:
		return bonusRepresentativeFirst
	case rank <= topSchoolRanks:
		return bonusRepresentativeTop
	default:
		return bonusRepresentative
	}
}

func alternativeLabel(length, familyMin int) (Label, float64) {
	if length == familyMin {
		return LabelShortestAlternative, bonusShortestAlternative
	}
	return LabelAlternative, bonusAlternative
}

// fallbackNoSubgroups labels a family that formed no valid subgroup: the
// best candidate by quarter turns then score becomes Representative and up
// to two more (three for School 1) become alternatives.
func (l *Labeler) fallbackNoSubgroups(st *familyState, prefixReuse bool) {
	cands := l.candidates(st, st.fam.Members, l.opts.QTMCase1, true)
	sortByQTM(cands)

	extra := 2
	if st.fam.Rank == 1 {
		extra = 3
	}
	target := 1 + extra

	count := 0
	for k := range cands {
		if count >= target {
			break
		}
		c := &cands[k]
		if st.used[c.prefix] && !prefixReuse {
			continue
		}
		var label Label
		var bonus float64
		if count == 0 {
			label, bonus = LabelRepresentative, representativeBonus(st.fam.Rank)
		} else {
			label, bonus = alternativeLabel(c.length, st.minLength)
		}
		st.assign(c, label, bonus, nil, 0)
		count++
	}
}

// promoteAlternatives tops up alternatives from unlabeled short members
// with unused prefixes when the family is below its target.
func (l *Labeler) promoteAlternatives(st *familyState, totalSubgroups int) {
	target := 1
	if st.fam.Rank == 1 {
		target = 2
	}
	needed := target - st.alternatives()
	if needed <= 0 {
		return
	}

	pool := make([]int, 0, st.fam.Size())
	for _, m := range st.fam.Members {
		if _, labeled := st.labels[m]; labeled {
			continue
		}
		if len(l.seqs[m]) > st.minLength+alternativeSlack {
			continue
		}
		if st.used[Prefix(l.seqs[m], l.opts.PrefixLen)] {
			continue
		}
		pool = append(pool, m)
	}

	cands := l.candidates(st, pool, promotionQTMPenalty, false)
	sortByQTM(cands)

	for k := range cands {
		if needed == 0 {
			break
		}
		c := &cands[k]
		if st.used[c.prefix] {
			continue
		}
		label, bonus := alternativeLabel(c.length, st.minLength)
		st.assign(c, label, bonus, nil, totalSubgroups)
		needed--
	}
}

// candidates scores members for selection. The length penalty applies to
// members longer than the family minimum plus three.
func (l *Labeler) candidates(st *familyState, members []int, qtmWeight float64, lengthPenalty bool) []candidate {
	out := make([]candidate, 0, len(members))
	for _, idx := range members {
		seq := l.seqs[idx]
		c := candidate{
			idx:    idx,
			length: len(seq),
			qtm:    QTM(seq),
			prefix: Prefix(seq, l.opts.PrefixLen),
		}
		score := l.scorer.Score(idx, st.fam)
		if lengthPenalty {
			score -= float64(max(0, c.length-(st.minLength+candidateLengthSlack))) * candidateLengthPenalty
		}
		c.score = score - float64(c.qtm)*qtmWeight
		out = append(out, c)
	}
	return out
}

func sortByQTM(cands []candidate) {
	sort.SliceStable(cands, func(a, b int) bool {
		if cands[a].qtm != cands[b].qtm {
			return cands[a].qtm < cands[b].qtm
		}
		return cands[a].score > cands[b].score
	})
}

func (st *familyState) assign(c *candidate, label Label, bonus float64, sg *SubgroupRef, totalSubgroups int) {
	st.labels[c.idx] = &Labeled{
		Index:          c.idx,
		School:         st.name,
		SchoolRank:     st.fam.Rank,
		Label:          label,
		Prefix:         c.prefix,
		Score:          clamp(c.score+bonus, 0, MaxScore),
		Subgroup:       sg,
		TotalSubgroups: totalSubgroups,
	}
	st.used[c.prefix] = true
}
