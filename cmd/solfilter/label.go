package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cubelab/solfilter/app"
	"github.com/cubelab/solfilter/domain"
	"github.com/cubelab/solfilter/internal/config"
	"github.com/cubelab/solfilter/internal/constants"
	"github.com/cubelab/solfilter/service"
)

// labelOptions holds the flags shared by the label and watch commands
type labelOptions struct {
	// Output format flags (only one should be true)
	json bool
	yaml bool
	csv  bool

	outputPath string
	configFile string

	// Labeling parameters
	threshold         float64
	prefixLen         int
	minClusterSize    int
	maxClusterSize    int
	minSchoolSize     int
	subgroupThreshold float64
	minSubgroupSize   int
	reportOutliers    bool
	outlierThreshold  float64

	// Result selection
	top         int
	labeledOnly bool
	color       bool
}

func (o *labelOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&o.yaml, "yaml", false, "Output YAML")
	cmd.Flags().BoolVar(&o.csv, "csv", false, "Output CSV")
	cmd.Flags().StringVarP(&o.outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVarP(&o.configFile, "config", "c", "", "Configuration file path")

	cmd.Flags().Float64Var(&o.threshold, service.FlagThreshold, constants.DefaultThreshold, "School distance threshold")
	cmd.Flags().IntVar(&o.prefixLen, service.FlagPrefixLen, constants.DefaultPrefixLen, "Opening moves compared when forming subgroups")
	cmd.Flags().IntVar(&o.minClusterSize, service.FlagMinClusterSize, constants.DefaultMinClusterSize, "Smallest school kept apart during merging (0 = by batch size)")
	cmd.Flags().IntVar(&o.maxClusterSize, service.FlagMaxClusterSize, constants.DefaultMaxClusterSize, "Largest school accepted during merging")
	cmd.Flags().IntVar(&o.minSchoolSize, service.FlagMinSchoolSize, constants.DefaultMinSchoolSize, "Drop schools smaller than this")
	cmd.Flags().Float64Var(&o.subgroupThreshold, service.FlagSubgroupThreshold, constants.DefaultSubgroupThreshold, "Opening distance threshold (0 = by batch size)")
	cmd.Flags().IntVar(&o.minSubgroupSize, service.FlagMinSubgroupSize, constants.DefaultMinSubgroupSize, "Smallest subgroup that receives a label")
	cmd.Flags().BoolVar(&o.reportOutliers, service.FlagReportOutliers, false, "Report school members far from their medoid")
	cmd.Flags().Float64Var(&o.outlierThreshold, service.FlagOutlierThreshold, constants.DefaultOutlierThreshold, "Medoid distance above which a member is an outlier")

	cmd.Flags().IntVar(&o.top, service.FlagTop, 0, "Only output the best N recommendations (0 = all results)")
	cmd.Flags().BoolVar(&o.labeledOnly, service.FlagLabeledOnly, false, "Only output labeled solutions")
	cmd.Flags().BoolVar(&o.color, service.FlagColor, false, "Colorize labels in text output")
}

// determineOutputFormat returns the format selected by flags, or "" to use
// the configured format
func (o *labelOptions) determineOutputFormat() (domain.OutputFormat, error) {
	formatCount := 0
	var format domain.OutputFormat

	if o.json {
		formatCount++
		format = domain.OutputFormatJSON
	}
	if o.yaml {
		formatCount++
		format = domain.OutputFormatYAML
	}
	if o.csv {
		formatCount++
		format = domain.OutputFormatCSV
	}

	if formatCount > 1 {
		return "", fmt.Errorf("only one output format flag can be specified")
	}
	return format, nil
}

// buildRequest creates the request from command line flags. Paths default
// to stdin.
func (o *labelOptions) buildRequest(cmd *cobra.Command, args []string) (domain.FilterRequest, error) {
	format, err := o.determineOutputFormat()
	if err != nil {
		return domain.FilterRequest{}, err
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{service.StdinPath}
	}

	cfg := domain.DefaultFilterConfig()
	cfg.Threshold = o.threshold
	cfg.PrefixLen = o.prefixLen
	cfg.MinClusterSize = o.minClusterSize
	cfg.MaxClusterSize = o.maxClusterSize
	cfg.MinSchoolSize = o.minSchoolSize
	cfg.SubgroupThreshold = o.subgroupThreshold
	cfg.MinSubgroupSize = o.minSubgroupSize
	cfg.ReportOutliers = o.reportOutliers
	cfg.OutlierThreshold = o.outlierThreshold

	return domain.FilterRequest{
		Paths:        paths,
		Config:       cfg,
		OutputFormat: format,
		OutputWriter: cmd.OutOrStdout(),
		OutputPath:   o.outputPath,
		Top:          o.top,
		LabeledOnly:  o.labeledOnly,
		Color:        o.color,
		ConfigPath:   o.configFile,
	}, nil
}

// shouldUseProgressBars returns true when stderr is an interactive terminal
// and the report is not machine-readable
func (o *labelOptions) shouldUseProgressBars(cmd *cobra.Command, format domain.OutputFormat) bool {
	if format != "" && format != domain.OutputFormatText {
		return false
	}
	if !service.IsInteractiveEnvironment() {
		return false
	}
	if errWriter, ok := cmd.ErrOrStderr().(*os.File); ok {
		return term.IsTerminal(int(errWriter.Fd()))
	}
	return false
}

// buildUseCase wires the labeling workflow for one run
func (o *labelOptions) buildUseCase(cmd *cobra.Command, req domain.FilterRequest) (*app.FilterUseCase, error) {
	var progress domain.ProgressManager
	if o.shouldUseProgressBars(cmd, req.OutputFormat) {
		progress = service.NewProgressManager()
		progress.SetWriter(cmd.ErrOrStderr())
	}

	flags := config.NewFlagTrackerFromFlagSet(cmd.Flags())

	return app.NewFilterUseCaseBuilder().
		WithService(service.NewFilterService(newLogger(cmd), progress)).
		WithSolutionReader(service.NewSolutionReader()).
		WithFormatter(service.NewFilterFormatter()).
		WithConfigLoader(service.NewFilterConfigLoader(flags)).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		WithStdin(cmd.InOrStdin()).
		Build()
}

// LabelCommand represents the label command
type LabelCommand struct {
	labelOptions
}

// NewLabelCommand creates a new label command
func NewLabelCommand() *LabelCommand {
	return &LabelCommand{}
}

// CreateCobraCommand creates the cobra command for labeling solutions
func (c *LabelCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label [files...]",
		Short: "Label and rank a batch of solutions",
		Long: `Label and rank a batch of move sequences for one puzzle case.

Each input file holds one solution per line. Blank lines and lines starting
with '#' are skipped, and a leading "N:" numbering is removed. Directories are
searched for *.txt files, and '-' (or no argument) reads standard input.

Examples:
  # Label solutions from a file
  solfilter label oll27.txt

  # Read from stdin and print the best five as JSON
  cat oll27.txt | solfilter label --json --top 5

  # Compare only the first three opening moves
  solfilter label --prefix-len 3 oll27.txt

  # Write a CSV report
  solfilter label --csv -o report.csv solutions/`,
		Args: cobra.ArbitraryArgs,
		RunE: c.runLabel,
	}

	c.addFlags(cmd)

	return cmd
}

func (c *LabelCommand) runLabel(cmd *cobra.Command, args []string) error {
	req, err := c.buildRequest(cmd, args)
	if err != nil {
		return err
	}

	useCase, err := c.buildUseCase(cmd, req)
	if err != nil {
		return fmt.Errorf("failed to create labeling workflow: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := useCase.Execute(ctx, req); err != nil {
		printCategorizedError(cmd, err)
		return err
	}
	return nil
}

// printCategorizedError prints the error with recovery suggestions to stderr
func printCategorizedError(cmd *cobra.Command, err error) {
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "❌ %s: %v\n", categorized.Message, err)

	suggestions := categorizer.GetRecoverySuggestions(categorized.Category)
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintf(errOut, "\n💡 Suggestions:\n")
	for _, suggestion := range suggestions {
		fmt.Fprintf(errOut, "  • %s\n", suggestion)
	}
}

// NewLabelCmd creates and returns the label cobra command
func NewLabelCmd() *cobra.Command {
	return NewLabelCommand().CreateCobraCommand()
}
