package service

import (
	"github.com/cubelab/solfilter/domain"
	"github.com/cubelab/solfilter/internal/config"
)

// Flag names understood by MergeConfig. They match the label command flags.
const (
	FlagThreshold         = "threshold"
	FlagPrefixLen         = "prefix-len"
	FlagMinClusterSize    = "min-cluster-size"
	FlagMaxClusterSize    = "max-cluster-size"
	FlagMinSchoolSize     = "min-school-size"
	FlagSubgroupThreshold = "subgroup-threshold"
	FlagMinSubgroupSize   = "min-subgroup-size"
	FlagReportOutliers    = "report-outliers"
	FlagOutlierThreshold  = "outlier-threshold"
	FlagTop               = "top"
	FlagLabeledOnly       = "labeled-only"
	FlagColor             = "color"
)

// FilterConfigLoaderImpl implements the FilterConfigurationLoader interface
type FilterConfigLoaderImpl struct {
	flags *config.FlagTracker
}

// NewFilterConfigLoader creates a configuration loader. Only flags recorded
// in the tracker override file values; a nil tracker ignores every flag.
func NewFilterConfigLoader(flags *config.FlagTracker) *FilterConfigLoaderImpl {
	if flags == nil {
		flags = config.NewFlagTracker()
	}
	return &FilterConfigLoaderImpl{flags: flags}
}

// LoadConfig loads configuration from the specified path
func (l *FilterConfigLoaderImpl) LoadConfig(path string) (*domain.FilterRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return l.toRequest(cfg, path), nil
}

// LoadDefaultConfig discovers a configuration file from the working
// directory, falling back to the built-in defaults.
func (l *FilterConfigLoaderImpl) LoadDefaultConfig() *domain.FilterRequest {
	cfg, err := config.LoadConfig("")
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return l.toRequest(cfg, "")
}

// MergeConfig applies explicitly set command line values over base
func (l *FilterConfigLoaderImpl) MergeConfig(base *domain.FilterRequest, override *domain.FilterRequest) *domain.FilterRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base
	ft := l.flags

	// Inputs always come from the command
	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}
	if len(override.Solutions) > 0 {
		merged.Solutions = override.Solutions
		merged.Excluded = override.Excluded
	}
	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	merged.Top = config.Pick(ft, FlagTop, base.Top, override.Top)
	merged.LabeledOnly = config.Pick(ft, FlagLabeledOnly, base.LabeledOnly, override.LabeledOnly)
	merged.Color = config.Pick(ft, FlagColor, base.Color, override.Color)

	b, o := base.Config, override.Config
	c := &merged.Config
	c.Threshold = config.Pick(ft, FlagThreshold, b.Threshold, o.Threshold)
	c.PrefixLen = config.Pick(ft, FlagPrefixLen, b.PrefixLen, o.PrefixLen)
	c.MinClusterSize = config.Pick(ft, FlagMinClusterSize, b.MinClusterSize, o.MinClusterSize)
	c.MaxClusterSize = config.Pick(ft, FlagMaxClusterSize, b.MaxClusterSize, o.MaxClusterSize)
	c.MinSchoolSize = config.Pick(ft, FlagMinSchoolSize, b.MinSchoolSize, o.MinSchoolSize)
	c.SubgroupThreshold = config.Pick(ft, FlagSubgroupThreshold, b.SubgroupThreshold, o.SubgroupThreshold)
	c.MinSubgroupSize = config.Pick(ft, FlagMinSubgroupSize, b.MinSubgroupSize, o.MinSubgroupSize)
	c.ReportOutliers = config.Pick(ft, FlagReportOutliers, b.ReportOutliers, o.ReportOutliers)
	c.OutlierThreshold = config.Pick(ft, FlagOutlierThreshold, b.OutlierThreshold, o.OutlierThreshold)

	return &merged
}

func (l *FilterConfigLoaderImpl) toRequest(cfg *config.Config, path string) *domain.FilterRequest {
	format, err := domain.ParseOutputFormat(cfg.Output.Format)
	if err != nil {
		format = domain.OutputFormatText
	}
	return &domain.FilterRequest{
		Config:       cfg.Filter.ToFilterConfig(),
		OutputFormat: format,
		Top:          cfg.Output.Top,
		LabeledOnly:  cfg.Output.LabeledOnly,
		Color:        cfg.Output.Color,
		ConfigPath:   path,
	}
}
