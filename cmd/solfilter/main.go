package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cubelab/solfilter/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "solfilter",
	Short: "Group, label and rank twisty puzzle solutions",
	Long: `solfilter reads batches of move sequences for one puzzle case and
picks the few worth showing to a human.

Sequences are grouped into schools by how they end, split into subgroups
by how they open, then scored and ranked:
  • Representative: the best scoring member of a subgroup
  • Shortest Alt: a shorter variant than the representative
  • Member: the rest of a sizeable subgroup`,
	Version:      version.Short(),
	SilenceUsage: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewLabelCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
}

// newLogger returns a development logger on stderr when --verbose is set
func newLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
