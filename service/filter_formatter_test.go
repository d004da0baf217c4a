package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cubelab/solfilter/domain"
)

func sampleFilterResponse() *domain.FilterResponse {
	return &domain.FilterResponse{
		Results: []domain.CandidateResult{
			{
				Solution:           "R U R' U'",
				School:             "School_1",
				Label:              "Representative",
				Prefix:             "R U R' U'",
				SchoolRank:         domain.IntPtr(1),
				Score:              100,
				AdjustedScore:      domain.Float64Ptr(134.2),
				RecommendationRank: domain.IntPtr(1),
				QTM:                4,
				HTM:                4,
				SubgroupIndex:      domain.IntPtr(0),
				SubgroupSize:       domain.IntPtr(3),
				TotalSubgroups:     2,
				TotalCandidates:    2,
				OriginalIndex:      0,
			},
			{
				Solution:        "R U R' U R U2 R'",
				School:          "None",
				Label:           "Unlabeled",
				QTM:             8,
				HTM:             7,
				TotalCandidates: 2,
				OriginalIndex:   1,
			},
			{
				Solution:           "R U2 R' U'",
				School:             "School_1",
				Label:              "Shortest Alternative",
				Prefix:             "R U2 R' U'",
				SchoolRank:         domain.IntPtr(1),
				Score:              98.46,
				AdjustedScore:      domain.Float64Ptr(125.46),
				RecommendationRank: domain.IntPtr(2),
				QTM:                5,
				HTM:                4,
				TotalSubgroups:     2,
				TotalCandidates:    2,
				OriginalIndex:      2,
			},
		},
		Stats: domain.FilterStats{
			Total: 3, Labeled: 2, Unlabeled: 1, Representative: 1, Alternative: 1, Schools: 1, Score100: 1,
		},
		Schools: []domain.SchoolSummary{
			{Name: "School_1", Rank: 1, Size: 4, Leader: 0, Subgroups: 2, Outliers: []int{3}},
		},
		MinClusterSize:    3,
		SubgroupThreshold: 2.5,
		GeneratedAt:       "2026-01-01T00:00:00Z",
		Version:           "test",
		DurationMs:        7,
	}
}

func TestFilterFormatter_Text(t *testing.T) {
	output, err := NewFilterFormatter().Format(sampleFilterResponse(), domain.OutputFormatText)
	require.NoError(t, err)

	assert.Contains(t, output, "Solution Filter Report")
	assert.Contains(t, output, "SUMMARY")
	assert.Contains(t, output, "  Solutions: 3")
	assert.Contains(t, output, "  School_1: 4 solutions, 2 subgroups, leader #0")
	assert.Contains(t, output, "Outliers: #3")
	assert.Contains(t, output, " 1. School_1  Representative (score 100.0, adjusted 134.2, 4 QTM / 4 HTM)")
	assert.Contains(t, output, " 2. School_1  Shortest Alternative")
	assert.Contains(t, output, "Solution: R U2 R' U'")
	assert.Contains(t, output, "  No. School    Label\n  -------------------\n")
	assert.Contains(t, output, "\n                  Version: test\n")
	assert.Contains(t, output, "\n             Generated at: 2026-01-01T00:00:00Z\n")
	assert.NotContains(t, output, "WARNINGS")
	assert.NotContains(t, output, "\x1b[", "colors are off by default")

	rep := strings.Index(output, "Representative (score")
	alt := strings.Index(output, "Shortest Alternative (score")
	assert.Less(t, rep, alt, "recommendations are listed in rank order")

	t.Run("warnings section", func(t *testing.T) {
		response := sampleFilterResponse()
		response.Warnings = []string{"1 malformed solutions were left unlabeled"}
		output, err := NewFilterFormatter().Format(response, domain.OutputFormatText)
		require.NoError(t, err)
		assert.Contains(t, output, "WARNINGS\n--------\n  !: 1 malformed solutions were left unlabeled\n")
	})

	t.Run("label distribution skips empty labels", func(t *testing.T) {
		assert.Contains(t, output, "LABELS")
		assert.NotContains(t, output, "Member: 0")
	})

	t.Run("colored output", func(t *testing.T) {
		colored, err := NewFilterFormatter().WithColor(true).Format(sampleFilterResponse(), domain.OutputFormatText)
		require.NoError(t, err)
		assert.Contains(t, colored, ColorGreen+"Representative"+ColorReset)
	})
}

func TestFilterFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFilterFormatter().Write(sampleFilterResponse(), domain.OutputFormatJSON, &buf))

	var decoded struct {
		Results []map[string]interface{} `json:"results"`
		Stats   domain.FilterStats       `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Results, 3)
	assert.Equal(t, 3, decoded.Stats.Total)
	assert.Nil(t, decoded.Results[1]["recommendationRank"])
	assert.Equal(t, "Shortest Alternative", decoded.Results[2]["label"])
}

func TestFilterFormatter_YAML(t *testing.T) {
	output, err := NewFilterFormatter().Format(sampleFilterResponse(), domain.OutputFormatYAML)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(output), &decoded))
	assert.Contains(t, decoded, "results")
	assert.Contains(t, decoded, "stats")
	assert.Contains(t, output, "recommendationRank: 1")
}

func TestFilterFormatter_CSV(t *testing.T) {
	output, err := NewFilterFormatter().Format(sampleFilterResponse(), domain.OutputFormatCSV)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(output)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, csvHeader, records[0])

	first := records[1]
	assert.Equal(t, "0", first[0])
	assert.Equal(t, "Representative", first[3])
	assert.Equal(t, "100.0000", first[6])
	assert.Equal(t, "134.2000", first[7])

	unlabeled := records[2]
	assert.Equal(t, "Unlabeled", unlabeled[3])
	assert.Equal(t, "", unlabeled[5], "null schoolRank is an empty cell")
	assert.Equal(t, "", unlabeled[8], "null recommendationRank is an empty cell")
}

func TestFilterFormatter_UnsupportedFormat(t *testing.T) {
	_, err := NewFilterFormatter().Format(sampleFilterResponse(), domain.OutputFormat("html"))
	require.Error(t, err)
	assert.True(t, domain.HasErrorCode(err, domain.ErrCodeUnsupportedFormat))

	err = NewFilterFormatter().Write(sampleFilterResponse(), domain.OutputFormat("xml"), &bytes.Buffer{})
	assert.Error(t, err)
}
