package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"microcasa/internal/research"
)

var (
	// Global flags
	verbose     bool
	contentPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "microcasa",
	Short: "MICROCASA keynote: interactive slides with a simulated IoT sensor feed",
	Long: `microcasa presents the MICROCASA research keynote.

Each presenter session owns a deck cursor and a synthetic telemetry table
seeded around USM Penang. The deck can be served over HTTP or presented
in the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The terminal presenter owns the screen.
		if cmd.Name() == "present" {
			logger = zap.NewNop()
			return nil
		}

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
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&contentPath, "content", "", "Research YAML replacing the embedded slide content")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(presentCmd)
	rootCmd.AddCommand(seedPreviewCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadResearch prefers an explicit path over the embedded document.
func loadResearch(paths ...string) (*research.Data, error) {
	for _, p := range paths {
		if p != "" {
			return research.LoadFile(p)
		}
	}
	return research.Default(), nil
}
