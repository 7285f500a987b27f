package main

import (
	"fmt"
	"os"

	"rover-backend/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	logFile string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rover",
	Short: "Rover navigation simulation",
	Long: `Single-agent rover simulation: grid reachability check, ray sensors,
blended steering and a blocked-route sequence.

serve exposes it over HTTP and websocket, run plays a scenario headless,
watch renders it in the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var envLoaded bool
		var err error
		cfg, envLoaded, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		zc := zap.NewProductionConfig()
		if verbose || cfg.LogLevel == "debug" {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		if logFile == "" && cmd.Name() == "watch" {
			logFile = "rover-watch.log"
		}
		if logFile != "" {
			zc.OutputPaths = []string{logFile}
			zc.ErrorOutputPaths = []string{logFile}
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if !envLoaded {
			logger.Debug("⚠️ no .env file, using process environment")
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
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to a file instead of stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
