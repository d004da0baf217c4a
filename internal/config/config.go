package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/cubelab/solfilter/domain"
)

// EnvPrefix prefixes environment overrides, e.g. SOLFILTER_FILTER_THRESHOLD.
const EnvPrefix = "SOLFILTER"

// Config represents the main configuration structure
type Config struct {
	Filter FilterConfig `mapstructure:"filter" yaml:"filter" toml:"filter"`
	Output OutputConfig `mapstructure:"output" yaml:"output" toml:"output"`
	Server ServerConfig `mapstructure:"server" yaml:"server" toml:"server"`
}

// FilterConfig holds the labeling parameters
type FilterConfig struct {
	Threshold         float64 `mapstructure:"threshold" yaml:"threshold" toml:"threshold"`
	PrefixLen         int     `mapstructure:"prefix_len" yaml:"prefix_len" toml:"prefix_len"`
	MinClusterSize    int     `mapstructure:"min_cluster_size" yaml:"min_cluster_size" toml:"min_cluster_size"`
	MaxClusterSize    int     `mapstructure:"max_cluster_size" yaml:"max_cluster_size" toml:"max_cluster_size"`
	MinSchoolSize     int     `mapstructure:"min_school_size" yaml:"min_school_size" toml:"min_school_size"`
	SubgroupThreshold float64 `mapstructure:"subgroup_threshold" yaml:"subgroup_threshold" toml:"subgroup_threshold"`
	MinSubgroupSize   int     `mapstructure:"min_subgroup_size" yaml:"min_subgroup_size" toml:"min_subgroup_size"`
	LengthWeight      float64 `mapstructure:"length_weight" yaml:"length_weight" toml:"length_weight"`
	RankWeight        float64 `mapstructure:"rank_weight" yaml:"rank_weight" toml:"rank_weight"`
	SizeWeight        float64 `mapstructure:"size_weight" yaml:"size_weight" toml:"size_weight"`
	EndFaceWeight     float64 `mapstructure:"end_face_weight" yaml:"end_face_weight" toml:"end_face_weight"`
	EndSequenceWeight float64 `mapstructure:"end_sequence_weight" yaml:"end_sequence_weight" toml:"end_sequence_weight"`
	QTMSubgroup       float64 `mapstructure:"qtm_subgroup" yaml:"qtm_subgroup" toml:"qtm_subgroup"`
	QTMCase1          float64 `mapstructure:"qtm_case1" yaml:"qtm_case1" toml:"qtm_case1"`
	QTMFinal          float64 `mapstructure:"qtm_final" yaml:"qtm_final" toml:"qtm_final"`
	OutlierThreshold  float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold" toml:"outlier_threshold"`
	ReportOutliers    bool    `mapstructure:"report_outliers" yaml:"report_outliers" toml:"report_outliers"`
}

// OutputConfig holds output formatting settings
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv
	Format string `mapstructure:"format" yaml:"format" toml:"format"`

	// Top limits the output to the best N recommendations (0 = all results)
	Top int `mapstructure:"top" yaml:"top" toml:"top"`

	// LabeledOnly drops unlabeled candidates from the output
	LabeledOnly bool `mapstructure:"labeled_only" yaml:"labeled_only" toml:"labeled_only"`

	// Color enables ANSI colors in text output
	Color bool `mapstructure:"color" yaml:"color" toml:"color"`
}

// ServerConfig holds the HTTP transport settings
type ServerConfig struct {
	Addr                  string `mapstructure:"addr" yaml:"addr" toml:"addr"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" yaml:"request_timeout_seconds" toml:"request_timeout_seconds"`
	MaxBatchSize          int    `mapstructure:"max_batch_size" yaml:"max_batch_size" toml:"max_batch_size"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	def := domain.DefaultFilterConfig()
	return &Config{
		Filter: FromFilterConfig(def),
		Output: OutputConfig{
			Format: string(domain.OutputFormatText),
		},
		Server: ServerConfig{
			Addr:                  domain.DefaultServerAddr,
			RequestTimeoutSeconds: domain.DefaultRequestTimeoutSeconds,
			MaxBatchSize:          domain.DefaultMaxBatchSize,
		},
	}
}

// FromFilterConfig converts a domain configuration into its file form
func FromFilterConfig(c domain.FilterConfig) FilterConfig {
	return FilterConfig{
		Threshold:         c.Threshold,
		PrefixLen:         c.PrefixLen,
		MinClusterSize:    c.MinClusterSize,
		MaxClusterSize:    c.MaxClusterSize,
		MinSchoolSize:     c.MinSchoolSize,
		SubgroupThreshold: c.SubgroupThreshold,
		MinSubgroupSize:   c.MinSubgroupSize,
		LengthWeight:      c.LengthWeight,
		RankWeight:        c.RankWeight,
		SizeWeight:        c.SizeWeight,
		EndFaceWeight:     c.EndFaceWeight,
		EndSequenceWeight: c.EndSequenceWeight,
		QTMSubgroup:       c.QTMSubgroup,
		QTMCase1:          c.QTMCase1,
		QTMFinal:          c.QTMFinal,
		OutlierThreshold:  c.OutlierThreshold,
		ReportOutliers:    c.ReportOutliers,
	}
}

// ToFilterConfig converts the file form into the domain configuration
func (c FilterConfig) ToFilterConfig() domain.FilterConfig {
	return domain.FilterConfig{
		Threshold:         c.Threshold,
		PrefixLen:         c.PrefixLen,
		MinClusterSize:    c.MinClusterSize,
		MaxClusterSize:    c.MaxClusterSize,
		MinSchoolSize:     c.MinSchoolSize,
		SubgroupThreshold: c.SubgroupThreshold,
		MinSubgroupSize:   c.MinSubgroupSize,
		LengthWeight:      c.LengthWeight,
		RankWeight:        c.RankWeight,
		SizeWeight:        c.SizeWeight,
		EndFaceWeight:     c.EndFaceWeight,
		EndSequenceWeight: c.EndSequenceWeight,
		QTMSubgroup:       c.QTMSubgroup,
		QTMCase1:          c.QTMCase1,
		QTMFinal:          c.QTMFinal,
		OutlierThreshold:  c.OutlierThreshold,
		ReportOutliers:    c.ReportOutliers,
	}
}

// LoadConfig loads configuration from file or returns default config.
// An empty configPath discovers .solfilter.toml from the working directory
// upward, then solfilter.yaml/json in the working and home directories.
// SOLFILTER_<SECTION>_<KEY> environment variables override file values.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		configPath = findDefaultConfig()
	}

	v := newViper(config)
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// newViper creates an isolated viper instance seeded with defaults so that
// every key is known to the environment binding.
func newViper(defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	f := defaults.Filter
	v.SetDefault("filter.threshold", f.Threshold)
	v.SetDefault("filter.prefix_len", f.PrefixLen)
	v.SetDefault("filter.min_cluster_size", f.MinClusterSize)
	v.SetDefault("filter.max_cluster_size", f.MaxClusterSize)
	v.SetDefault("filter.min_school_size", f.MinSchoolSize)
	v.SetDefault("filter.subgroup_threshold", f.SubgroupThreshold)
	v.SetDefault("filter.min_subgroup_size", f.MinSubgroupSize)
	v.SetDefault("filter.length_weight", f.LengthWeight)
	v.SetDefault("filter.rank_weight", f.RankWeight)
	v.SetDefault("filter.size_weight", f.SizeWeight)
	v.SetDefault("filter.end_face_weight", f.EndFaceWeight)
	v.SetDefault("filter.end_sequence_weight", f.EndSequenceWeight)
	v.SetDefault("filter.qtm_subgroup", f.QTMSubgroup)
	v.SetDefault("filter.qtm_case1", f.QTMCase1)
	v.SetDefault("filter.qtm_final", f.QTMFinal)
	v.SetDefault("filter.outlier_threshold", f.OutlierThreshold)
	v.SetDefault("filter.report_outliers", f.ReportOutliers)

	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.top", defaults.Output.Top)
	v.SetDefault("output.labeled_only", defaults.Output.LabeledOnly)
	v.SetDefault("output.color", defaults.Output.Color)

	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.request_timeout_seconds", defaults.Server.RequestTimeoutSeconds)
	v.SetDefault("server.max_batch_size", defaults.Server.MaxBatchSize)
	return v
}

// findDefaultConfig looks for default configuration files in common locations
func findDefaultConfig() string {
	if cwd, err := os.Getwd(); err == nil {
		if path, err := FindConfigFile(cwd); err == nil {
			return path
		}
	}

	candidates := []string{
		"solfilter.yaml",
		"solfilter.yml",
		".solfilter.yaml",
		".solfilter.yml",
		"solfilter.json",
		".solfilter.json",
	}

	// Check current directory first
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	// Check home directory
	if home, err := os.UserHomeDir(); err == nil {
		for _, candidate := range candidates {
			path := filepath.Join(home, candidate)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	filter := c.Filter.ToFilterConfig()
	if err := filter.Validate(); err != nil {
		return err
	}

	if _, err := domain.ParseOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if c.Output.Top < 0 {
		return errors.New("output.top must be >= 0")
	}

	if c.Server.RequestTimeoutSeconds < 0 {
		return errors.New("server.request_timeout_seconds must be >= 0")
	}
	if c.Server.MaxBatchSize < 1 {
		return errors.New("server.max_batch_size must be >= 1")
	}

	return nil
}
