package analyzer

import (
	"context"
	"fmt"

	"github.com/cubelab/solfilter/internal/constants"
)

// Stage names a pipeline step reported to an Observer.
type Stage string

const (
	StageEncode  Stage = "encode"
	StageCluster Stage = "cluster"
	StageLabel   Stage = "label"
	StageRank    Stage = "rank"
)

// Observer receives progress callbacks from a pipeline run. Calls happen on
// the goroutine running the pipeline.
type Observer interface {
	StageStarted(stage Stage, total int)
	Progress(stage Stage, done, total int)
}

type nopObserver struct{}

func (nopObserver) StageStarted(Stage, int)  {}
func (nopObserver) Progress(Stage, int, int) {}

// PipelineConfig holds every tunable of a labeling run.
type PipelineConfig struct {
	Threshold       float64
	PrefixLen       int
	MaxClusterSize  int
	MinSchoolSize   int
	MinSubgroupSize int

	// Zero MinClusterSize and SubgroupThreshold select the batch size
	// dependent defaults.
	MinClusterSize    int
	SubgroupThreshold float64

	Weights ScoreWeights
	End     EndWeights

	QTMSubgroup float64
	QTMCase1    float64
	QTMFinal    float64

	OutlierThreshold float64
	ReportOutliers   bool
}

// DefaultPipelineConfig returns default configuration
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Threshold:         constants.DefaultThreshold,
		PrefixLen:         constants.DefaultPrefixLen,
		MinClusterSize:    constants.DefaultMinClusterSize,
		MaxClusterSize:    constants.DefaultMaxClusterSize,
		MinSchoolSize:     constants.DefaultMinSchoolSize,
		SubgroupThreshold: constants.DefaultSubgroupThreshold,
		MinSubgroupSize:   constants.DefaultMinSubgroupSize,
		Weights: ScoreWeights{
			Length: constants.DefaultLengthWeight,
			Rank:   constants.DefaultRankWeight,
			Size:   constants.DefaultSizeWeight,
		},
		End: EndWeights{
			FaceWeight:     constants.DefaultEndFaceWeight,
			SequenceWeight: constants.DefaultEndSequenceWeight,
		},
		QTMSubgroup:      constants.DefaultQTMSubgroup,
		QTMCase1:         constants.DefaultQTMCase1,
		QTMFinal:         constants.DefaultQTMFinal,
		OutlierThreshold: constants.DefaultOutlierThreshold,
	}
}

// Batch is the input of a run. Excluded lists positions holding malformed
// candidates: they keep their slot in the output but never enter
// clustering or scoring.
type Batch struct {
	Solutions []string
	Excluded  []int
}

// Report is the result of a run. Outcomes and Sequences are aligned with
// the input positions.
type Report struct {
	Outcomes  []Outcome
	Sequences []Sequence

	// Ranked holds the labeled outcomes in recommendation order.
	Ranked   []*Labeled
	Families []*Family

	// Subgroups maps a family rank to its quality ordered subgroups.
	Subgroups map[int][]*Subgroup

	Limits            ClusterLimits
	SubgroupThreshold float64
	Lengths           BatchStats

	// Outliers maps a family rank to its flagged members. It is nil unless
	// ReportOutliers is set.
	Outliers map[int][]int
}

// TotalCandidates returns the number of labeled candidates.
func (r *Report) TotalCandidates() int {
	return len(r.Ranked)
}

// Pipeline runs encoding, clustering, splitting, scoring, labeling and
// ranking over a batch.
type Pipeline struct {
	config   *PipelineConfig
	engine   *DistanceEngine
	observer Observer
}

// NewPipeline creates a pipeline. A nil config selects the defaults.
func NewPipeline(config *PipelineConfig) *Pipeline {
	if config == nil {
		config = DefaultPipelineConfig()
	}
	return &Pipeline{
		config:   config,
		engine:   NewDistanceEngine(NewPhysicalCostModel(), config.End),
		observer: nopObserver{},
	}
}

// SetObserver installs a progress observer. Nil restores the no-op observer.
func (p *Pipeline) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	p.observer = o
}

// Engine returns the distance engine used by the pipeline.
func (p *Pipeline) Engine() *DistanceEngine {
	return p.engine
}

// Run labels a batch. The same batch and configuration always yield the
// same report. On cancellation Run returns nil and an error wrapping the
// context error.
func (p *Pipeline) Run(ctx context.Context, batch Batch) (*Report, error) {
	n := len(batch.Solutions)
	excluded := make(map[int]bool, len(batch.Excluded))
	for _, idx := range batch.Excluded {
		if idx >= 0 && idx < n {
			excluded[idx] = true
		}
	}

	// 1. Encode
	p.observer.StageStarted(StageEncode, n)
	seqs := make([]Sequence, n)
	indices := make([]int, 0, n)
	for i, raw := range batch.Solutions {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("encoding aborted: %w", err)
		}
		if excluded[i] {
			seqs[i] = Sequence{}
			continue
		}
		seqs[i] = Encode(raw)
		indices = append(indices, i)
		p.observer.Progress(StageEncode, i+1, n)
	}

	report := &Report{
		Sequences: seqs,
		Subgroups: make(map[int][]*Subgroup),
		Lengths:   NewBatchStats(seqs, indices),
	}

	// 2. Schools
	p.observer.StageStarted(StageCluster, len(indices))
	clusterer := NewSchoolClusterer(p.engine, ClusterOptions{
		Threshold:      p.config.Threshold,
		MaxClusterSize: p.config.MaxClusterSize,
		MinClusterSize: p.config.MinClusterSize,
		MinSchoolSize:  p.config.MinSchoolSize,
	})
	report.Limits = clusterer.Limits(len(indices))
	families, err := clusterer.Cluster(ctx, seqs, indices)
	if err != nil {
		return nil, fmt.Errorf("school clustering aborted: %w", err)
	}
	report.Families = families

	// 3. Subgroups and labels
	report.SubgroupThreshold = p.config.SubgroupThreshold
	if report.SubgroupThreshold <= 0 {
		report.SubgroupThreshold = AutoSubgroupThreshold(len(indices))
	}
	splitter := NewSubgroupSplitter(p.engine, report.SubgroupThreshold)
	scorer := NewScorer(p.engine, p.config.Weights, report.Lengths, seqs, families)
	labeler := NewLabeler(scorer, seqs, LabelOptions{
		PrefixLen:       p.config.PrefixLen,
		MinSubgroupSize: p.config.MinSubgroupSize,
		QTMSubgroup:     p.config.QTMSubgroup,
		QTMCase1:        p.config.QTMCase1,
		SmallBatch:      len(indices) <= smallBatchSize,
	})

	p.observer.StageStarted(StageLabel, len(families))
	labels := make(map[int]*Labeled)
	memberships := make(map[int]*Unlabeled)
	for done, fam := range families {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("labeling aborted: %w", err)
		}
		subgroups, err := splitter.Split(ctx, fam, seqs)
		if err != nil {
			return nil, fmt.Errorf("subgroup split of %s: %w", SchoolName(fam.Rank), err)
		}
		report.Subgroups[fam.Rank] = subgroups

		famLabels, err := labeler.LabelFamily(ctx, fam, subgroups)
		if err != nil {
			return nil, fmt.Errorf("labeling %s: %w", SchoolName(fam.Rank), err)
		}
		for idx, l := range famLabels.Labels {
			labels[idx] = l
		}
		for _, m := range fam.Members {
			u := &Unlabeled{
				Index:      m,
				School:     SchoolName(fam.Rank),
				SchoolRank: fam.Rank,
			}
			if ref, ok := famLabels.Subgroups[m]; ok {
				u.Subgroup = &SubgroupRef{Index: ref.Index, Size: ref.Size}
				u.TotalSubgroups = famLabels.Total
			}
			memberships[m] = u
		}
		p.observer.Progress(StageLabel, done+1, len(families))
	}

	// 4. Global ranking
	p.observer.StageStarted(StageRank, len(labels))
	labeled := make([]*Labeled, 0, len(labels))
	for i := 0; i < n; i++ {
		if l, ok := labels[i]; ok {
			labeled = append(labeled, l)
		}
	}
	report.Ranked = RankLabeled(labeled, families, seqs, RankingOptions{QTMFinal: p.config.QTMFinal})
	p.observer.Progress(StageRank, len(labels), len(labels))

	// 5. Outcomes
	report.Outcomes = make([]Outcome, n)
	for i := 0; i < n; i++ {
		switch {
		case labels[i] != nil:
			report.Outcomes[i] = labels[i]
		case memberships[i] != nil:
			report.Outcomes[i] = memberships[i]
		default:
			report.Outcomes[i] = &Unlabeled{Index: i, School: SchoolNone}
		}
	}

	if p.config.ReportOutliers {
		detector := NewOutlierDetector(p.engine, p.config.OutlierThreshold)
		report.Outliers = make(map[int][]int, len(families))
		for _, fam := range families {
			report.Outliers[fam.Rank] = detector.Detect(fam, seqs)
		}
	}

	return report, nil
}
