package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the dedicated project configuration file
const ConfigFileName = ".solfilter.toml"

// SolfilterTomlConfig represents the structure of .solfilter.toml.
// Pointer fields detect keys that are absent from the file.
type SolfilterTomlConfig struct {
	Filter TomlFilterSection `toml:"filter"`
	Output TomlOutputSection `toml:"output"`
	Server TomlServerSection `toml:"server"`
}

// TomlFilterSection represents the [filter] section
type TomlFilterSection struct {
	// School clustering
	Threshold      *float64 `toml:"threshold"`
	MinClusterSize *int     `toml:"min_cluster_size"`
	MaxClusterSize *int     `toml:"max_cluster_size"`
	MinSchoolSize  *int     `toml:"min_school_size"`

	// Subgroups and labels
	PrefixLen         *int     `toml:"prefix_len"`
	SubgroupThreshold *float64 `toml:"subgroup_threshold"`
	MinSubgroupSize   *int     `toml:"min_subgroup_size"`

	// Scoring
	LengthWeight      *float64 `toml:"length_weight"`
	RankWeight        *float64 `toml:"rank_weight"`
	SizeWeight        *float64 `toml:"size_weight"`
	EndFaceWeight     *float64 `toml:"end_face_weight"`
	EndSequenceWeight *float64 `toml:"end_sequence_weight"`
	QTMSubgroup       *float64 `toml:"qtm_subgroup"`
	QTMCase1          *float64 `toml:"qtm_case1"`
	QTMFinal          *float64 `toml:"qtm_final"`

	// Diagnostics
	OutlierThreshold *float64 `toml:"outlier_threshold"`
	ReportOutliers   *bool    `toml:"report_outliers"`
}

// TomlOutputSection represents the [output] section
type TomlOutputSection struct {
	Format      string `toml:"format"`
	Top         *int   `toml:"top"`
	LabeledOnly *bool  `toml:"labeled_only"`
	Color       *bool  `toml:"color"`
}

// TomlServerSection represents the [server] section
type TomlServerSection struct {
	Addr                  string `toml:"addr"`
	RequestTimeoutSeconds *int   `toml:"request_timeout_seconds"`
	MaxBatchSize          *int   `toml:"max_batch_size"`
}

// TomlConfigLoader handles TOML-only configuration loading
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig loads .solfilter.toml found from startDir upward, merged over
// the defaults. Without a config file the defaults are returned.
func (l *TomlConfigLoader) LoadConfig(startDir string) (*Config, error) {
	configPath, err := FindConfigFile(startDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return l.LoadFile(configPath)
}

// LoadFile loads a specific TOML file merged over the defaults
func (l *TomlConfigLoader) LoadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	return l.Parse(data)
}

// Parse decodes TOML content merged over the defaults
func (l *TomlConfigLoader) Parse(data []byte) (*Config, error) {
	var tomlCfg SolfilterTomlConfig
	if err := toml.Unmarshal(data, &tomlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	defaults := DefaultConfig()
	l.mergeTomlConfig(defaults, &tomlCfg)

	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return defaults, nil
}

// FindConfigFile walks up the directory tree to find .solfilter.toml
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		dir = startDir
	}
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// mergeTomlConfig copies every key present in the file over the defaults
func (l *TomlConfigLoader) mergeTomlConfig(defaults *Config, cfg *SolfilterTomlConfig) {
	f := &defaults.Filter
	src := &cfg.Filter
	mergeFloat(&f.Threshold, src.Threshold)
	mergeInt(&f.MinClusterSize, src.MinClusterSize)
	mergeInt(&f.MaxClusterSize, src.MaxClusterSize)
	mergeInt(&f.MinSchoolSize, src.MinSchoolSize)
	mergeInt(&f.PrefixLen, src.PrefixLen)
	mergeFloat(&f.SubgroupThreshold, src.SubgroupThreshold)
	mergeInt(&f.MinSubgroupSize, src.MinSubgroupSize)
	mergeFloat(&f.LengthWeight, src.LengthWeight)
	mergeFloat(&f.RankWeight, src.RankWeight)
	mergeFloat(&f.SizeWeight, src.SizeWeight)
	mergeFloat(&f.EndFaceWeight, src.EndFaceWeight)
	mergeFloat(&f.EndSequenceWeight, src.EndSequenceWeight)
	mergeFloat(&f.QTMSubgroup, src.QTMSubgroup)
	mergeFloat(&f.QTMCase1, src.QTMCase1)
	mergeFloat(&f.QTMFinal, src.QTMFinal)
	mergeFloat(&f.OutlierThreshold, src.OutlierThreshold)
	mergeBool(&f.ReportOutliers, src.ReportOutliers)

	if cfg.Output.Format != "" {
		defaults.Output.Format = cfg.Output.Format
	}
	mergeInt(&defaults.Output.Top, cfg.Output.Top)
	mergeBool(&defaults.Output.LabeledOnly, cfg.Output.LabeledOnly)
	mergeBool(&defaults.Output.Color, cfg.Output.Color)

	if cfg.Server.Addr != "" {
		defaults.Server.Addr = cfg.Server.Addr
	}
	mergeInt(&defaults.Server.RequestTimeoutSeconds, cfg.Server.RequestTimeoutSeconds)
	mergeInt(&defaults.Server.MaxBatchSize, cfg.Server.MaxBatchSize)
}

func mergeInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func mergeFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func mergeBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
