package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	stages   []Stage
	progress map[Stage]int
}

func (o *recordingObserver) StageStarted(stage Stage, total int) {
	o.stages = append(o.stages, stage)
}

func (o *recordingObserver) Progress(stage Stage, done, total int) {
	if o.progress == nil {
		o.progress = make(map[Stage]int)
	}
	o.progress[stage] = done
}

func countLabels(report *Report) (labeled, unlabeled int) {
	for _, o := range report.Outcomes {
		switch o.(type) {
		case *Labeled:
			labeled++
		case *Unlabeled:
			unlabeled++
		}
	}
	return labeled, unlabeled
}

func TestPipelineEmptyBatch(t *testing.T) {
	report, err := NewPipeline(nil).Run(context.Background(), Batch{})
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	assert.Empty(t, report.Ranked)
	assert.Empty(t, report.Families)
	assert.Zero(t, report.TotalCandidates())
}

func TestPipelineSingleInput(t *testing.T) {
	for _, input := range []string{"R U R' U'", ""} {
		t.Run(input, func(t *testing.T) {
			report, err := NewPipeline(nil).Run(context.Background(), Batch{Solutions: []string{input}})
			require.NoError(t, err)
			require.Len(t, report.Outcomes, 1)
			require.Len(t, report.Families, 1)

			l, ok := report.Outcomes[0].(*Labeled)
			require.True(t, ok, "single input should be labeled")
			assert.Equal(t, LabelRepresentative, l.Label)
			assert.Equal(t, 1, l.RecommendationRank)
			assert.Equal(t, "School_1", l.School)
			assert.Nil(t, l.Subgroup)
		})
	}
}

func TestPipelineCanonicalSolutions(t *testing.T) {
	pipeline := NewPipeline(nil)
	batch := Batch{Solutions: canonicalSolutions}

	report, err := pipeline.Run(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, report.Outcomes, len(canonicalSolutions))

	for i, o := range report.Outcomes {
		assert.Equal(t, i, o.OriginalIndex())
	}

	require.NotEmpty(t, report.Families)
	require.NotEmpty(t, report.Ranked)
	assert.Equal(t, LabelRepresentative, report.Ranked[0].Label)
	assert.Equal(t, 1, report.Ranked[0].RecommendationRank)

	rankOne := 0
	for _, l := range report.Ranked {
		if l.RecommendationRank == 1 {
			rankOne++
		}
	}
	assert.Equal(t, 1, rankOne)

	labeled, unlabeled := countLabels(report)
	assert.Equal(t, len(canonicalSolutions), labeled+unlabeled)
	assert.Equal(t, report.TotalCandidates(), labeled)

	for _, fam := range report.Families {
		if len(report.Families) > 1 {
			assert.GreaterOrEqual(t, fam.Size(), 3)
		}
	}

	t.Run("Deterministic", func(t *testing.T) {
		again, err := NewPipeline(nil).Run(context.Background(), batch)
		require.NoError(t, err)
		assert.Equal(t, report.Outcomes, again.Outcomes)
	})
}

func TestPipelineLabelsMatchKnownRun(t *testing.T) {
	report, err := NewPipeline(nil).Run(context.Background(), Batch{Solutions: canonicalSolutions})
	require.NoError(t, err)

	require.Len(t, report.Families, 1)
	assert.Equal(t, 8, report.Families[0].Size())
	assert.Equal(t, 0, report.Ranked[0].Index)

	for _, idx := range []int{4, 6} {
		u, ok := report.Outcomes[idx].(*Unlabeled)
		require.True(t, ok, "candidate %d", idx)
		assert.Equal(t, SchoolNone, u.School)
		assert.Zero(t, u.SchoolRank)
		assert.Nil(t, u.Subgroup)
	}
}

func TestPipelineExcludedInputs(t *testing.T) {
	batch := Batch{
		Solutions: []string{"R U R' U'", "", "R U R' U'", "R U R' U'"},
		Excluded:  []int{1, 99},
	}
	report, err := NewPipeline(nil).Run(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 4)

	u, ok := report.Outcomes[1].(*Unlabeled)
	require.True(t, ok)
	assert.Equal(t, SchoolNone, u.School)
	for _, fam := range report.Families {
		assert.NotContains(t, fam.Members, 1)
	}
}

func TestPipelineUnlabeledMembersKeepSubgroup(t *testing.T) {
	report, err := NewPipeline(nil).Run(context.Background(), Batch{Solutions: []string{
		"R U R' U'", "R U R' U'", "R U R' U'", "R U R' U'",
	}})
	require.NoError(t, err)

	u, ok := report.Outcomes[3].(*Unlabeled)
	require.True(t, ok)
	assert.Equal(t, "School_1", u.School)
	assert.Equal(t, 1, u.SchoolRank)
	assert.Equal(t, &SubgroupRef{Index: 0, Size: 4}, u.Subgroup)
	assert.Equal(t, 1, u.TotalSubgroups)
}

func TestPipelineCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewPipeline(nil).Run(ctx, Batch{Solutions: canonicalSolutions})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineObserver(t *testing.T) {
	pipeline := NewPipeline(nil)
	observer := &recordingObserver{}
	pipeline.SetObserver(observer)

	_, err := pipeline.Run(context.Background(), Batch{Solutions: canonicalSolutions})
	require.NoError(t, err)

	assert.Equal(t, []Stage{StageEncode, StageCluster, StageLabel, StageRank}, observer.stages)
	assert.Equal(t, len(canonicalSolutions), observer.progress[StageEncode])

	pipeline.SetObserver(nil)
	assert.IsType(t, nopObserver{}, pipeline.observer)
}

func TestPipelineOutlierReport(t *testing.T) {
	config := DefaultPipelineConfig()

	report, err := NewPipeline(config).Run(context.Background(), Batch{Solutions: canonicalSolutions})
	require.NoError(t, err)
	assert.Nil(t, report.Outliers)

	config.ReportOutliers = true
	report, err = NewPipeline(config).Run(context.Background(), Batch{Solutions: canonicalSolutions})
	require.NoError(t, err)
	require.NotNil(t, report.Outliers)
	for _, fam := range report.Families {
		_, ok := report.Outliers[fam.Rank]
		assert.True(t, ok)
	}
}

func TestPipelineAutoSettings(t *testing.T) {
	report, err := NewPipeline(nil).Run(context.Background(), Batch{Solutions: canonicalSolutions})
	require.NoError(t, err)
	assert.Equal(t, 2.5, report.SubgroupThreshold)
	assert.Equal(t, 5, report.Limits.MinClusterSize)

	config := DefaultPipelineConfig()
	config.SubgroupThreshold = 1.75
	report, err = NewPipeline(config).Run(context.Background(), Batch{Solutions: canonicalSolutions})
	require.NoError(t, err)
	assert.Equal(t, 1.75, report.SubgroupThreshold)
}
