package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"rover-backend/handlers"
	"rover-backend/models"
	"rover-backend/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulation behind HTTP and websocket",
	RunE:  runServe,
}

// loadScenario - SCENARIO_FILE when set, the built-in layout otherwise
func loadScenario(path string) (models.Scenario, error) {
	if path == "" {
		sc := services.DefaultScenario()
		sc.Canvas = models.Canvas{Width: cfg.Sim.CanvasWidth, Height: cfg.Sim.CanvasHeight}
		sc.CellSize = cfg.Sim.CellSize
		return sc, nil
	}
	return services.LoadScenario(path)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sc, err := loadScenario(cfg.ScenarioFile)
	if err != nil {
		return err
	}
	sim, err := services.NewSimulationFromScenario(sc)
	if err != nil {
		return fmt.Errorf("build simulation: %w", err)
	}

	db, err := services.OpenDatabase(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	events := services.NewEventLog(db, cfg.Database.FlushSize, cfg.Database.FlushInterval, logger)

	hub := handlers.NewHub(logger)
	simulator := services.NewSimulator(sim, services.SimulatorConfig{
		FPS:            cfg.Sim.FPS,
		BroadcastEvery: cfg.Sim.BroadcastEvery,
	}, logger)
	simulator.SetBroadcastFunc(hub.BroadcastMessage)
	simulator.SetEventRecorder(events)

	app := handlers.NewApp(&handlers.Handlers{
		Sim:     simulator,
		Events:  events,
		Hub:     hub,
		Layouts: services.NewLayoutGenerator(0),
		Logger:  logger,
	}, cfg.CORSAllowOrigins)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return simulator.Run(gctx) })
	g.Go(func() error { return events.Run(gctx) })
	g.Go(func() error {
		logger.Info("🚀 server started",
			zap.String("http", "http://localhost:"+cfg.Port),
			zap.String("websocket", "ws://localhost:"+cfg.Port+"/websocket/viewer"),
			zap.String("scenario", sc.Name))
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
