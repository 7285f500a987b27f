package services

import (
	"os"
	"path/filepath"
	"testing"

	"rover-backend/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayoutIsReachable(t *testing.T) {
	sim, err := NewSimulationFromScenario(DefaultScenario())
	require.NoError(t, err)
	assert.True(t, sim.Reachable())
	assert.Equal(t, models.StateMoving, sim.Start())
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	canvas := models.Canvas{Width: 800, Height: 600}
	agent := models.DefaultAgentSpec()

	a := NewLayoutGenerator(42).Generate(canvas, 8, agent)
	b := NewLayoutGenerator(42).Generate(canvas, 8, agent)

	ignoreIDs := cmpopts.IgnoreFields(models.Obstacle{}, "ID")
	if diff := cmp.Diff(a, b, ignoreIDs); diff != "" {
		t.Errorf("same seed produced different layouts (-a +b):\n%s", diff)
	}
	assert.NotEqual(t, a.Obstacles[0].ID, b.Obstacles[0].ID, "IDs are unique per layout")
}

func TestGenerateRespectsMarginAndClearance(t *testing.T) {
	canvas := models.Canvas{Width: 800, Height: 600}
	agent := models.DefaultAgentSpec()
	gen := NewLayoutGenerator(3)

	for i := 0; i < 20; i++ {
		layout := gen.Generate(canvas, 0, agent)
		require.NoError(t, ValidateLayout(layout))
		assert.LessOrEqual(t, len(layout.Obstacles), defaultRandomCount)
		assert.Equal(t, DefaultLayout().Waypoints, layout.Waypoints)

		for _, o := range layout.Obstacles {
			assert.GreaterOrEqual(t, o.X, layoutMargin)
			assert.LessOrEqual(t, o.X, 1-layoutMargin)
			assert.GreaterOrEqual(t, o.Y, layoutMargin)
			assert.LessOrEqual(t, o.Y, 1-layoutMargin)
			assert.GreaterOrEqual(t, o.Size, minObstacleSize)
			assert.LessOrEqual(t, o.Size, maxObstacleSize)
			assert.True(t, clearOfWaypoints(o, layout.Waypoints, canvas, agent.Size))
		}
	}
}

func TestParseScenarioDefaults(t *testing.T) {
	sc, err := ParseScenario([]byte(`
name: corridor
obstacles:
  - {x: 0.5, y: 0.5, size: 100}
waypoints:
  - {x: 0.1, y: 0.5, label: A}
  - {x: 0.9, y: 0.5, label: B}
`))
	require.NoError(t, err)

	assert.Equal(t, "corridor", sc.Name)
	assert.Equal(t, models.Canvas{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight}, sc.Canvas)
	assert.Equal(t, float64(DefaultCellSize), sc.CellSize)
	assert.Equal(t, models.DefaultAgentSpec(), sc.Agent)
	require.Len(t, sc.Obstacles, 1)
	assert.Empty(t, sc.Obstacles[0].ID, "IDs are assigned when the simulation is built")
}

func TestParseScenarioRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "obstacles: [\n"},
		{"one waypoint", "waypoints:\n  - {x: 0.1, y: 0.1, label: A}\n"},
		{"off canvas", "waypoints:\n  - {x: 0.1, y: 0.1}\n  - {x: 1.5, y: 0.1}\n"},
		{"negative size", "obstacles:\n  - {x: 0.5, y: 0.5, size: -4}\nwaypoints:\n  - {x: 0.1, y: 0.1}\n  - {x: 0.9, y: 0.9}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseScenarioRejectsOversizedGrid(t *testing.T) {
	_, err := ParseScenario([]byte(`
canvas: {width: 1000000000, height: 1000000000}
waypoints:
  - {x: 0.1, y: 0.5}
  - {x: 0.9, y: 0.5}
`))
	assert.ErrorIs(t, err, ErrInvalidCanvas)

	_, err = ParseScenario([]byte(`
cell_size: 0.0001
waypoints:
  - {x: 0.1, y: 0.5}
  - {x: 0.9, y: 0.5}
`))
	assert.ErrorIs(t, err, ErrInvalidCanvas)
}

func TestSaveAndLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	sc := DefaultScenario()
	sc.Name = "saved"
	sc.MaxFrames = 900

	require.NoError(t, SaveScenario(path, sc))
	loaded, err := LoadScenario(path)
	require.NoError(t, err)

	if diff := cmp.Diff(sc, loaded); diff != "" {
		t.Errorf("scenario changed across save/load (-want +got):\n%s", diff)
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
