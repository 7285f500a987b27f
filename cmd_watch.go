package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"rover-backend/models"
	"rover-backend/render"
	"rover-backend/services"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Pixels per terminal cell when --fit sizes the world to the terminal
const (
	fitCellWidth  = 10.0
	fitCellHeight = 20.0
)

var fitTerminal bool

var watchCmd = &cobra.Command{
	Use:   "watch [scenario.yaml]",
	Short: "Render the simulation in the terminal",
	Long: `Keys: s start/resume, p pause, x stop, e edit mode, r random layout,
q or Esc quit. In edit mode drag obstacles with the mouse. A scenario file
given as argument is reloaded whenever it changes on disk.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&fitTerminal, "fit", false, "Resize the simulation canvas to the terminal")
}

// watchSession - terminal viewer state
type watchSession struct {
	sim     *services.Simulator
	screen  tcell.Screen
	canvas  *render.TerminalCanvas
	layouts *services.LayoutGenerator

	dragging bool
}

func runWatch(cmd *cobra.Command, args []string) error {
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
	simulator := services.NewSimulator(sim, services.SimulatorConfig{FPS: cfg.Sim.FPS}, logger)

	var reloads <-chan fsnotify.Event
	var watchErrs <-chan error
	if path != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("watch scenario: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		reloads, watchErrs = watcher.Events, watcher.Errors
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	w := &watchSession{
		sim:     simulator,
		screen:  screen,
		canvas:  render.NewTerminalCanvas(screen, sc.Canvas.Width, sc.Canvas.Height),
		layouts: services.NewLayoutGenerator(0),
	}
	if fitTerminal {
		w.fit()
	}

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go forwardEvents(screen.PollEvent, events, quit)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.Sim.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if !w.handleEvent(ev) {
				return nil
			}

		case fe, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			if fe.Has(fsnotify.Write) || fe.Has(fsnotify.Create) {
				w.reload(path)
			}

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			logger.Warn("⚠️ scenario watcher error", zap.Error(err))

		case <-ticker.C:
			w.draw(simulator.Step())
		}
	}
}

// forwardEvents pumps poll into out until poll returns nil (screen finalized)
// or quit is closed
func forwardEvents(poll func() tcell.Event, out chan<- tcell.Event, quit <-chan struct{}) {
	for {
		ev := poll()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-quit:
			return
		}
	}
}

func (w *watchSession) draw(frame models.FrameData) {
	var preview *models.PathPreview
	if frame.EditMode {
		p := w.sim.Preview()
		preview = &p
	}
	render.Draw(frame, preview, w.canvas)
	w.screen.Show()
}

// handleEvent returns false when the viewer should quit
func (w *watchSession) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			return w.handleRune(ev.Rune())
		}

	case *tcell.EventMouse:
		w.handleMouse(ev)

	case *tcell.EventResize:
		if fitTerminal {
			w.fit()
		}
		w.screen.Sync()
	}
	return true
}

func (w *watchSession) handleRune(r rune) bool {
	var cmd models.CommandData
	switch r {
	case 'q':
		return false
	case 's':
		cmd.Action = models.ActionStart
	case 'p':
		cmd.Action = models.ActionPause
	case 'x':
		cmd.Action = models.ActionStop
	case 'e':
		cmd = models.CommandData{Action: models.ActionEditMode, Enabled: !w.sim.Snapshot().EditMode}
	case 'r':
		frame := w.sim.Snapshot()
		layout := w.layouts.Generate(frame.Canvas, 0, frame.Agent.AgentSpec)
		if _, err := w.sim.ReplaceLayout(layout); err != nil {
			logger.Warn("⚠️ random layout rejected", zap.Error(err))
		}
		return true
	default:
		return true
	}
	if _, err := w.sim.Apply(cmd); err != nil {
		logger.Debug("command rejected", zap.String("action", cmd.Action), zap.Error(err))
	}
	return true
}

// handleMouse turns button-1 press/drag/release into pointer commands
func (w *watchSession) handleMouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	x, y := w.canvas.ToCanvas(col, row)
	pressed := ev.Buttons()&tcell.Button1 != 0

	var cmd models.CommandData
	switch {
	case pressed && !w.dragging:
		cmd = models.CommandData{Action: models.ActionPointerDown, X: x, Y: y}
		w.dragging = true
	case pressed:
		cmd = models.CommandData{Action: models.ActionPointerMove, X: x, Y: y}
	case w.dragging:
		cmd = models.CommandData{Action: models.ActionPointerUp}
		w.dragging = false
	default:
		return
	}
	if _, err := w.sim.Apply(cmd); err != nil {
		logger.Debug("pointer rejected", zap.String("action", cmd.Action), zap.Error(err))
	}
}

// fit resizes the simulated canvas to the terminal's aspect
func (w *watchSession) fit() {
	cols, rows := w.screen.Size()
	width, height := float64(cols)*fitCellWidth, float64(rows)*fitCellHeight
	if _, err := w.sim.Apply(models.CommandData{Action: models.ActionResize, Width: width, Height: height}); err != nil {
		logger.Warn("⚠️ resize rejected", zap.Error(err))
		return
	}
	w.canvas.SetExtent(width, height)
}

func (w *watchSession) reload(path string) {
	sc, err := services.LoadScenario(path)
	if err != nil {
		logger.Warn("⚠️ scenario reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	if _, err := w.sim.ReplaceLayout(sc.Layout); err != nil {
		logger.Warn("⚠️ scenario layout rejected", zap.Error(err))
		return
	}
	logger.Info("🔄 scenario reloaded", zap.String("path", path), zap.Int("obstacles", len(sc.Layout.Obstacles)))
}
