package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"rover-backend/config"
	"rover-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var logEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenDatabase(config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "events.db"),
	}, zap.NewNop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// newTestEventLog uses a clock that advances one second per call
func newTestEventLog(t *testing.T, db *gorm.DB, flushSize int) *EventLog {
	t.Helper()
	l := NewEventLog(db, flushSize, time.Hour, zap.NewNop())
	tick := 0
	l.now = func() time.Time {
		tick++
		return logEpoch.Add(time.Duration(tick) * time.Second)
	}
	return l
}

func simEvent(runID, eventType string, frame uint64) models.SimEvent {
	return models.SimEvent{Type: eventType, RunID: runID, Frame: frame, State: models.StateMoving, X: 10, Y: 20}
}

func TestEventLogWithoutDatabase(t *testing.T) {
	l := NewEventLog(nil, 10, time.Second, zap.NewNop())
	l.Record(simEvent("r1", models.EventRunStarted, 1))
	assert.Zero(t, l.Pending())

	n, err := l.Flush()
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = l.Recent(10)
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, err = l.ByRun("r1", 10)
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, err = l.ByType(models.EventRunStarted, 10)
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, err = l.ByTimeRange(logEpoch, logEpoch.Add(time.Hour), 10)
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, err = l.Stats(24)
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestOpenDatabaseDisabled(t *testing.T) {
	db, err := OpenDatabase(config.DatabaseConfig{Driver: config.DriverNone}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, db)

	_, err = OpenDatabase(config.DatabaseConfig{Driver: "postgres"}, zap.NewNop())
	assert.Error(t, err)

	_, err = OpenDatabase(config.DatabaseConfig{Driver: config.DriverMySQL}, zap.NewNop())
	assert.ErrorContains(t, err, "mysql config incomplete")
}

func TestEventLogFlushAndQueries(t *testing.T) {
	l := newTestEventLog(t, openTestDB(t), 100)

	l.Record(simEvent("run-a", models.EventRunStarted, 1))
	l.Record(simEvent("run-a", models.EventWaypointReached, 40))
	l.Record(simEvent("run-b", models.EventRunBlocked, 3))
	l.Record(simEvent("run-a", models.EventGoalReached, 90))
	assert.Equal(t, 4, l.Pending())

	n, err := l.Flush()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Zero(t, l.Pending())

	recent, err := l.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, models.EventGoalReached, recent[0].EventType)
	assert.Equal(t, models.EventRunBlocked, recent[1].EventType)

	byRun, err := l.ByRun("run-a", 100)
	require.NoError(t, err)
	require.Len(t, byRun, 3)
	assert.Equal(t, []uint64{1, 40, 90}, []uint64{byRun[0].Frame, byRun[1].Frame, byRun[2].Frame})
	assert.Equal(t, "moving", byRun[0].State)
	assert.InDelta(t, 10, byRun[0].AgentX, 1e-9)

	byType, err := l.ByType(models.EventRunBlocked, 10)
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "run-b", byType[0].RunID)

	// events were stamped at epoch+1s .. epoch+4s
	ranged, err := l.ByTimeRange(logEpoch.Add(2*time.Second), logEpoch.Add(3*time.Second), 0)
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, models.EventRunBlocked, ranged[0].EventType)
}

func TestEventLogStats(t *testing.T) {
	l := newTestEventLog(t, openTestDB(t), 100)

	l.Record(simEvent("run-a", models.EventRunStarted, 1))
	l.Record(simEvent("run-a", models.EventGoalReached, 2))
	l.Record(simEvent("run-b", models.EventRunStarted, 1))
	_, err := l.Flush()
	require.NoError(t, err)

	stats, err := l.Stats(24)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Runs)
	assert.Equal(t, map[string]int64{
		models.EventRunStarted:  2,
		models.EventGoalReached: 1,
	}, stats.EventCounts)
	assert.Equal(t, "Last 24 hours", stats.TimeRange)
}

func TestEventLogFlushesWhenFull(t *testing.T) {
	l := newTestEventLog(t, openTestDB(t), 3)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	for i := 0; i < 3; i++ {
		l.Record(simEvent("run-a", models.EventWaypointReached, uint64(i)))
	}
	require.Eventually(t, func() bool { return l.Pending() == 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	events, err := l.ByRun("run-a", 10)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestEventLogFlushesOnShutdown(t *testing.T) {
	l := newTestEventLog(t, openTestDB(t), 100)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	l.Record(simEvent("run-z", models.EventStopped, 5))
	cancel()
	require.NoError(t, <-done)

	assert.Zero(t, l.Pending())
	events, err := l.ByRun("run-z", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventStopped, events[0].EventType)
}
