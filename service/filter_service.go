package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cubelab/solfilter/domain"
	"github.com/cubelab/solfilter/internal/analyzer"
	"github.com/cubelab/solfilter/internal/version"
)

// FilterServiceImpl implements the FilterService interface
type FilterServiceImpl struct {
	logger   *zap.Logger
	progress domain.ProgressManager
}

// NewFilterService creates a new filter service.
// logger and progress can be nil.
func NewFilterService(logger *zap.Logger, progress domain.ProgressManager) *FilterServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilterServiceImpl{
		logger:   logger,
		progress: progress,
	}
}

// Label runs the labeling pipeline over req.Solutions
func (s *FilterServiceImpl) Label(ctx context.Context, req domain.FilterRequest) (*domain.FilterResponse, error) {
	startTime := time.Now()

	if err := req.Config.Validate(); err != nil {
		return nil, err
	}

	pipeline := analyzer.NewPipeline(s.createPipelineConfig(&req.Config))
	if s.progress != nil {
		pipeline.SetObserver(NewPipelineProgress(s.progress))
	}

	s.logger.Debug("labeling batch",
		zap.Int("solutions", len(req.Solutions)),
		zap.Int("excluded", len(req.Excluded)),
		zap.Float64("threshold", req.Config.Threshold),
		zap.Int("prefix_len", req.Config.PrefixLen),
	)

	report, err := pipeline.Run(ctx, analyzer.Batch{
		Solutions: req.Solutions,
		Excluded:  req.Excluded,
	})
	if s.progress != nil {
		s.progress.Complete(err == nil)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("labeling cancelled", zap.Error(err))
			return nil, domain.NewCancelledError(err)
		}
		return nil, domain.NewAnalysisError("labeling failed", err)
	}

	results := s.convertOutcomes(report, req.Solutions)
	stats := ComputeFilterStats(results)

	response := &domain.FilterResponse{
		Results:           results,
		Stats:             stats,
		Schools:           s.summarizeSchools(report),
		Warnings:          s.collectWarnings(&req, report),
		MinClusterSize:    report.Limits.MinClusterSize,
		SubgroupThreshold: report.SubgroupThreshold,
		GeneratedAt:       time.Now().Format(time.RFC3339),
		Version:           version.Version,
		DurationMs:        time.Since(startTime).Milliseconds(),
	}

	if req.LabeledOnly || req.Top > 0 {
		response.Results = s.selectRecommended(response, req.Top)
	}

	s.logger.Info("labeling completed",
		zap.Int("total", stats.Total),
		zap.Int("labeled", stats.Labeled),
		zap.Int("schools", stats.Schools),
		zap.Int64("duration_ms", response.DurationMs),
	)

	return response, nil
}

// createPipelineConfig maps the request configuration onto the pipeline
func (s *FilterServiceImpl) createPipelineConfig(cfg *domain.FilterConfig) *analyzer.PipelineConfig {
	return &analyzer.PipelineConfig{
		Threshold:         cfg.Threshold,
		PrefixLen:         cfg.PrefixLen,
		MaxClusterSize:    cfg.MaxClusterSize,
		MinSchoolSize:     cfg.MinSchoolSize,
		MinSubgroupSize:   cfg.MinSubgroupSize,
		MinClusterSize:    cfg.MinClusterSize,
		SubgroupThreshold: cfg.SubgroupThreshold,
		Weights: analyzer.ScoreWeights{
			Length: cfg.LengthWeight,
			Rank:   cfg.RankWeight,
			Size:   cfg.SizeWeight,
		},
		End: analyzer.EndWeights{
			FaceWeight:     cfg.EndFaceWeight,
			SequenceWeight: cfg.EndSequenceWeight,
		},
		QTMSubgroup:      cfg.QTMSubgroup,
		QTMCase1:         cfg.QTMCase1,
		QTMFinal:         cfg.QTMFinal,
		OutlierThreshold: cfg.OutlierThreshold,
		ReportOutliers:   cfg.ReportOutliers,
	}
}

// convertOutcomes builds one result record per input position
func (s *FilterServiceImpl) convertOutcomes(report *analyzer.Report, solutions []string) []domain.CandidateResult {
	results := make([]domain.CandidateResult, len(report.Outcomes))
	total := report.TotalCandidates()

	for i, outcome := range report.Outcomes {
		seq := report.Sequences[i]
		res := domain.CandidateResult{
			Solution:        solutions[i],
			QTM:             analyzer.QTM(seq),
			HTM:             analyzer.HTM(seq),
			TotalCandidates: total,
			OriginalIndex:   outcome.OriginalIndex(),
		}

		switch o := outcome.(type) {
		case *analyzer.Labeled:
			res.School = o.School
			res.Label = string(o.Label)
			res.Prefix = o.Prefix
			res.SchoolRank = domain.IntPtr(o.SchoolRank)
			res.Score = o.Score
			res.AdjustedScore = domain.Float64Ptr(o.AdjustedScore)
			res.RecommendationRank = domain.IntPtr(o.RecommendationRank)
			res.TotalSubgroups = o.TotalSubgroups
			setSubgroup(&res, o.Subgroup)
		case *analyzer.Unlabeled:
			res.School = o.School
			res.Label = string(analyzer.LabelUnlabeled)
			if o.SchoolRank > 0 {
				res.SchoolRank = domain.IntPtr(o.SchoolRank)
			}
			res.TotalSubgroups = o.TotalSubgroups
			setSubgroup(&res, o.Subgroup)
		}

		results[i] = res
	}
	return results
}

func setSubgroup(res *domain.CandidateResult, ref *analyzer.SubgroupRef) {
	if ref == nil {
		return
	}
	res.SubgroupIndex = domain.IntPtr(ref.Index)
	res.SubgroupSize = domain.IntPtr(ref.Size)
}

// summarizeSchools describes the final families in rank order
func (s *FilterServiceImpl) summarizeSchools(report *analyzer.Report) []domain.SchoolSummary {
	schools := make([]domain.SchoolSummary, 0, len(report.Families))
	for _, fam := range report.Families {
		summary := domain.SchoolSummary{
			Name:      analyzer.SchoolName(fam.Rank),
			Rank:      fam.Rank,
			Size:      fam.Size(),
			Leader:    fam.Leader,
			Subgroups: len(report.Subgroups[fam.Rank]),
		}
		if report.Outliers != nil {
			summary.Outliers = report.Outliers[fam.Rank]
		}
		schools = append(schools, summary)
	}
	return schools
}

// collectWarnings reports excluded inputs and a retained undersized school
func (s *FilterServiceImpl) collectWarnings(req *domain.FilterRequest, report *analyzer.Report) []string {
	var warnings []string
	if n := len(req.Excluded); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d malformed solutions were left unlabeled", n))
	}
	if len(report.Families) == 1 && report.Families[0].Size() < req.Config.MinSchoolSize {
		warnings = append(warnings, fmt.Sprintf("no school reached %d solutions; kept the largest family (%d)",
			req.Config.MinSchoolSize, report.Families[0].Size()))
	}
	return warnings
}

// selectRecommended keeps the labeled results in recommendation order,
// truncated to top when positive
func (s *FilterServiceImpl) selectRecommended(resp *domain.FilterResponse, top int) []domain.CandidateResult {
	recommended := resp.Recommended()
	if top > 0 && top < len(recommended) {
		recommended = recommended[:top]
	}
	return recommended
}
