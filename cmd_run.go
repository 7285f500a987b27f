package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rover-backend/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	maxFrames int
	storeRun  bool
)

var runCmd = &cobra.Command{
	Use:   "run [scenario.yaml]",
	Short: "Play a scenario headless and print the outcome as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHeadless,
}

func init() {
	runCmd.Flags().IntVar(&maxFrames, "max-frames", 0, "Frame cap (default: scenario max_frames, else 20000)")
	runCmd.Flags().BoolVar(&storeRun, "store", false, "Write run events to the configured event store")
}

func runHeadless(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := cfg.ScenarioFile
	if len(args) == 1 {
		path = args[0]
	}
	sc, err := loadScenario(path)
	if err != nil {
		return err
	}
	sim, err := services.NewSimulationFromScenario(sc)
	if err != nil {
		return fmt.Errorf("build simulation: %w", err)
	}

	frames := maxFrames
	if frames <= 0 {
		frames = sc.MaxFrames
	}
	if frames <= 0 {
		frames = 20000
	}

	simulator := services.NewSimulator(sim, services.SimulatorConfig{FPS: cfg.Sim.FPS}, logger)

	var events *services.EventLog
	if storeRun {
		db, err := services.OpenDatabase(cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("open event store: %w", err)
		}
		events = services.NewEventLog(db, cfg.Database.FlushSize, cfg.Database.FlushInterval, logger)
		simulator.SetEventRecorder(events)
	}

	outcome, err := simulator.RunHeadless(ctx, frames)
	if events != nil {
		if n, ferr := events.Flush(); ferr != nil {
			logger.Error("❌ event flush failed", zap.Error(ferr))
		} else {
			logger.Info("💾 run events saved", zap.Int("count", n))
		}
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(outcome)
}
