package domain

import (
	"context"
	"io"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/cubelab/solfilter/internal/constants"
)

// FilterConfig holds every tunable of a labeling run. Zero MinClusterSize and
// SubgroupThreshold select the batch size dependent values.
type FilterConfig struct {
	// School clustering
	Threshold      float64 `json:"threshold" yaml:"threshold" validate:"gte=0"`
	MinClusterSize int     `json:"minClusterSize" yaml:"minClusterSize" validate:"gte=0"`
	MaxClusterSize int     `json:"maxClusterSize" yaml:"maxClusterSize" validate:"gte=1"`
	MinSchoolSize  int     `json:"minSchoolSize" yaml:"minSchoolSize" validate:"gte=1"`

	// Subgroups and labels
	PrefixLen         int     `json:"prefixLen" yaml:"prefixLen" validate:"gte=1"`
	SubgroupThreshold float64 `json:"subgroupThreshold" yaml:"subgroupThreshold" validate:"gte=0"`
	MinSubgroupSize   int     `json:"minSubgroupSize" yaml:"minSubgroupSize" validate:"gte=1"`

	// Score weights, in percent of the final score
	LengthWeight float64 `json:"lengthWeight" yaml:"lengthWeight" validate:"gte=0,lte=100"`
	RankWeight   float64 `json:"rankWeight" yaml:"rankWeight" validate:"gte=0,lte=100"`
	SizeWeight   float64 `json:"sizeWeight" yaml:"sizeWeight" validate:"gte=0,lte=100"`

	// End similarity weights
	EndFaceWeight     float64 `json:"endFaceWeight" yaml:"endFaceWeight" validate:"gte=0,lte=100"`
	EndSequenceWeight float64 `json:"endSequenceWeight" yaml:"endSequenceWeight" validate:"gte=0,lte=100"`

	// Quarter turn penalties
	QTMSubgroup float64 `json:"qtmSubgroup" yaml:"qtmSubgroup" validate:"gte=0"`
	QTMCase1    float64 `json:"qtmCase1" yaml:"qtmCase1" validate:"gte=0"`
	QTMFinal    float64 `json:"qtmFinal" yaml:"qtmFinal" validate:"gte=0"`

	// Outlier diagnostics
	OutlierThreshold float64 `json:"outlierThreshold" yaml:"outlierThreshold" validate:"gte=0"`
	ReportOutliers   bool    `json:"reportOutliers" yaml:"reportOutliers"`
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration ranges.
func (c *FilterConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return NewConfigError("invalid filter configuration", err)
	}
	if c.LengthWeight+c.RankWeight+c.SizeWeight > 100 {
		return NewConfigError("lengthWeight + rankWeight + sizeWeight must not exceed 100", nil)
	}
	return nil
}

// DefaultFilterConfig returns the default configuration.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		Threshold:         constants.DefaultThreshold,
		MinClusterSize:    constants.DefaultMinClusterSize,
		MaxClusterSize:    constants.DefaultMaxClusterSize,
		MinSchoolSize:     constants.DefaultMinSchoolSize,
		PrefixLen:         constants.DefaultPrefixLen,
		SubgroupThreshold: constants.DefaultSubgroupThreshold,
		MinSubgroupSize:   constants.DefaultMinSubgroupSize,
		LengthWeight:      constants.DefaultLengthWeight,
		RankWeight:        constants.DefaultRankWeight,
		SizeWeight:        constants.DefaultSizeWeight,
		EndFaceWeight:     constants.DefaultEndFaceWeight,
		EndSequenceWeight: constants.DefaultEndSequenceWeight,
		QTMSubgroup:       constants.DefaultQTMSubgroup,
		QTMCase1:          constants.DefaultQTMCase1,
		QTMFinal:          constants.DefaultQTMFinal,
		OutlierThreshold:  constants.DefaultOutlierThreshold,
	}
}

// FilterRequest represents a request to label a batch of solutions
type FilterRequest struct {
	// Input files (or glob patterns) holding one solution per line; "-" reads stdin
	Paths []string

	// Solutions to label. When empty the service reads Paths.
	Solutions []string

	// Positions in Solutions holding malformed candidates
	Excluded []int

	Config FilterConfig

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
	Top          int // 0 means all labeled candidates
	LabeledOnly  bool
	Color        bool

	// Configuration
	ConfigPath string
}

// DefaultFilterRequest returns a FilterRequest with default values
func DefaultFilterRequest() *FilterRequest {
	return &FilterRequest{
		Config:       DefaultFilterConfig(),
		OutputFormat: OutputFormatText,
	}
}

// CandidateResult is the per-solution output record. Pointer fields are null
// for unlabeled candidates.
type CandidateResult struct {
	Solution           string   `json:"solution,omitempty" yaml:"solution,omitempty"`
	School             string   `json:"school" yaml:"school"`
	Label              string   `json:"label" yaml:"label"`
	Prefix             string   `json:"prefix" yaml:"prefix"`
	SchoolRank         *int     `json:"schoolRank" yaml:"schoolRank"`
	Score              float64  `json:"score" yaml:"score"`
	AdjustedScore      *float64 `json:"adjustedScore" yaml:"adjustedScore"`
	RecommendationRank *int     `json:"recommendationRank" yaml:"recommendationRank"`
	QTM                int      `json:"qtm" yaml:"qtm"`
	HTM                int      `json:"htm" yaml:"htm"`
	SubgroupIndex      *int     `json:"subgroupIndex" yaml:"subgroupIndex"`
	SubgroupSize       *int     `json:"subgroupSize" yaml:"subgroupSize"`
	TotalSubgroups     int      `json:"totalSubgroups" yaml:"totalSubgroups"`
	TotalCandidates    int      `json:"totalCandidates" yaml:"totalCandidates"`
	OriginalIndex      int      `json:"originalIndex" yaml:"originalIndex"`
}

// IsLabeled reports whether the candidate was selected for display.
func (r *CandidateResult) IsLabeled() bool {
	return r.RecommendationRank != nil
}

// FilterStats summarizes a labeling run.
type FilterStats struct {
	Total          int `json:"total" yaml:"total"`
	Labeled        int `json:"labeled" yaml:"labeled"`
	Unlabeled      int `json:"unlabeled" yaml:"unlabeled"`
	Representative int `json:"representative" yaml:"representative"`
	Alternative    int `json:"alternative" yaml:"alternative"`
	Member         int `json:"member" yaml:"member"`
	Schools        int `json:"schools" yaml:"schools"`
	Score100       int `json:"score100" yaml:"score100"`
}

// SchoolSummary describes one final school.
type SchoolSummary struct {
	Name      string `json:"name" yaml:"name"`
	Rank      int    `json:"rank" yaml:"rank"`
	Size      int    `json:"size" yaml:"size"`
	Leader    int    `json:"leader" yaml:"leader"`
	Subgroups int    `json:"subgroups" yaml:"subgroups"`
	Outliers  []int  `json:"outliers,omitempty" yaml:"outliers,omitempty"`
}

// FilterResponse represents the complete labeling result
type FilterResponse struct {
	Results []CandidateResult `json:"results" yaml:"results"`
	Stats   FilterStats       `json:"stats" yaml:"stats"`
	Schools []SchoolSummary   `json:"schools" yaml:"schools"`

	// Warnings describe inputs or fallbacks worth a look
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Effective batch size dependent settings
	MinClusterSize    int     `json:"minClusterSize" yaml:"minClusterSize"`
	SubgroupThreshold float64 `json:"subgroupThreshold" yaml:"subgroupThreshold"`

	// Metadata
	GeneratedAt string `json:"generatedAt" yaml:"generatedAt"`
	Version     string `json:"version" yaml:"version"`
	DurationMs  int64  `json:"durationMs" yaml:"durationMs"`
}

// Recommended returns the labeled results in recommendation order.
func (r *FilterResponse) Recommended() []CandidateResult {
	out := make([]CandidateResult, 0, r.Stats.Labeled)
	for _, res := range r.Results {
		if res.IsLabeled() {
			out = append(out, res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].RecommendationRank < *out[j].RecommendationRank
	})
	return out
}

// FilterService defines the core business logic for solution labeling
type FilterService interface {
	// Label runs the pipeline over req.Solutions
	Label(ctx context.Context, req FilterRequest) (*FilterResponse, error)
}

// FilterConfigurationLoader defines the interface for loading filter configuration
type FilterConfigurationLoader interface {
	// LoadConfig loads configuration from the specified path
	LoadConfig(path string) (*FilterRequest, error)

	// LoadDefaultConfig loads the default configuration, discovering a
	// project configuration file when one exists
	LoadDefaultConfig() *FilterRequest

	// MergeConfig merges CLI flags with configuration file
	MergeConfig(base *FilterRequest, override *FilterRequest) *FilterRequest
}

// FilterOutputFormatter defines the interface for formatting labeling results
type FilterOutputFormatter interface {
	// Format formats the response according to the specified format
	Format(response *FilterResponse, format OutputFormat) (string, error)

	// Write writes the formatted output to the writer
	Write(response *FilterResponse, format OutputFormat, writer io.Writer) error
}

// ColorizableFormatter is a formatter that can emit ANSI colors in text output
type ColorizableFormatter interface {
	FilterOutputFormatter

	// Colorized returns a formatter with colors enabled or disabled
	Colorized(enabled bool) FilterOutputFormatter
}

// SolutionReader reads solution lines from files and streams.
type SolutionReader interface {
	// CollectFiles expands paths and glob patterns into existing files
	CollectFiles(paths []string) ([]string, error)

	// ReadSolutions reads every solution from the given files. "-" reads stdin.
	ReadSolutions(ctx context.Context, paths []string, stdin io.Reader) ([]string, error)
}
