// labelctl is the headless companion to the review server: it loads a
// labeled JSON file, derives auto labels, and prints or exports the result
// without starting an HTTP session.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose   bool
	threshold int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "labelctl",
	Short: "Batch tooling for multi-hop NLI label review files",
	Long: `labelctl runs the label-review engine over a JSON file of multi-hop
NLI examples without the HTTP surface: tally model votes, derive auto
labels, print view and agreement summaries, and write an updated export.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().IntVar(&threshold, "threshold", 2, "minimum agreeing votes for an auto label")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(viewsCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	start := time.Now()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "labelctl: %v\n", err)
		os.Exit(1)
	}
	if logger != nil {
		logger.Debug("done", zap.Duration("elapsed", time.Since(start)))
	}
}
