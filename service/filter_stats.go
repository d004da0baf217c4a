package service

import (
	"github.com/cubelab/solfilter/domain"
	"github.com/cubelab/solfilter/internal/analyzer"
)

// ComputeFilterStats aggregates a result list. Schools counts the distinct
// schools among labeled results.
func ComputeFilterStats(results []domain.CandidateResult) domain.FilterStats {
	stats := domain.FilterStats{Total: len(results)}
	schools := make(map[string]struct{})

	for _, r := range results {
		label := analyzer.Label(r.Label)
		if label == analyzer.LabelUnlabeled {
			stats.Unlabeled++
		} else {
			stats.Labeled++
			if r.School != "" && r.School != analyzer.SchoolNone {
				schools[r.School] = struct{}{}
			}
			switch {
			case label == analyzer.LabelRepresentative:
				stats.Representative++
			case label.IsAlternative():
				stats.Alternative++
			case label == analyzer.LabelMember:
				stats.Member++
			}
		}
		if r.Score >= analyzer.MaxScore {
			stats.Score100++
		}
	}

	stats.Schools = len(schools)
	return stats
}
