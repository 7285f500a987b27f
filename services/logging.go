package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rover-backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const insertBatchSize = 100

// EventLog buffers scenario events and writes them to the database in
// batches: when the buffer reaches flushSize, on every flushInterval, and
// once more on shutdown. A nil db turns it into a discard sink.
type EventLog struct {
	db     *gorm.DB
	logger *zap.Logger

	mu            sync.Mutex
	events        []models.RunEvent
	flushSize     int
	flushInterval time.Duration
	flushCh       chan struct{}
	now           func() time.Time
}

// NewEventLog - buffered run-event store
func NewEventLog(db *gorm.DB, flushSize int, flushInterval time.Duration, logger *zap.Logger) *EventLog {
	if flushSize <= 0 {
		flushSize = 50
	}
	if flushInterval <= 0 {
		flushInterval = 10 * time.Second
	}
	return &EventLog{
		db:            db,
		logger:        logger,
		events:        make([]models.RunEvent, 0, flushSize*2),
		flushSize:     flushSize,
		flushInterval: flushInterval,
		flushCh:       make(chan struct{}, 1),
		now:           time.Now,
	}
}

// Run flushes periodically until ctx is done, then flushes what is left
func (l *EventLog) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.flushInterval)
	defer ticker.Stop()

	l.logger.Info("✅ event log started",
		zap.Int("flush_size", l.flushSize),
		zap.Duration("flush_interval", l.flushInterval))

	for {
		select {
		case <-ticker.C:
			l.flushAndLog()
		case <-l.flushCh:
			l.flushAndLog()
		case <-ctx.Done():
			l.flushAndLog()
			l.logger.Info("🛑 event log stopped")
			return nil
		}
	}
}

func (l *EventLog) flushAndLog() {
	if _, err := l.Flush(); err != nil {
		l.logger.Error("❌ event flush failed", zap.Error(err))
	}
}

// Record buffers one event. A full buffer wakes Run to flush.
func (l *EventLog) Record(ev models.SimEvent) {
	if l.db == nil {
		return
	}

	l.mu.Lock()
	l.events = append(l.events, models.NewRunEvent(ev, l.now()))
	size := len(l.events)
	l.mu.Unlock()

	if size >= l.flushSize {
		select {
		case l.flushCh <- struct{}{}:
		default:
		}
	}
}

// Pending - buffered, not yet written
func (l *EventLog) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Flush writes every buffered event and returns how many were saved.
// On failure the batch is dropped; the events already went to the logger.
func (l *EventLog) Flush() (int, error) {
	l.mu.Lock()
	if len(l.events) == 0 {
		l.mu.Unlock()
		return 0, nil
	}
	toSave := make([]models.RunEvent, len(l.events))
	copy(toSave, l.events)
	l.events = l.events[:0]
	l.mu.Unlock()

	if l.db == nil {
		return 0, nil
	}
	if err := l.db.CreateInBatches(toSave, insertBatchSize).Error; err != nil {
		return 0, fmt.Errorf("save %d events: %w", len(toSave), err)
	}
	l.logger.Debug("💾 events saved", zap.Int("count", len(toSave)))
	return len(toSave), nil
}

// ========================================
// Queries
// ========================================

// Recent - newest events first
func (l *EventLog) Recent(limit int) ([]models.RunEvent, error) {
	if l.db == nil {
		return nil, ErrNoDatabase
	}
	var events []models.RunEvent
	err := l.db.Order("created_at DESC, id DESC").Limit(limit).Find(&events).Error
	return events, err
}

// ByRun - every event of one run in order
func (l *EventLog) ByRun(runID string, limit int) ([]models.RunEvent, error) {
	if l.db == nil {
		return nil, ErrNoDatabase
	}
	var events []models.RunEvent
	err := l.db.Where("run_id = ?", runID).
		Order("frame ASC, id ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// ByType - newest events of one type
func (l *EventLog) ByType(eventType string, limit int) ([]models.RunEvent, error) {
	if l.db == nil {
		return nil, ErrNoDatabase
	}
	var events []models.RunEvent
	err := l.db.Where("event_type = ?", eventType).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// ByTimeRange - events between start and end, newest first
func (l *EventLog) ByTimeRange(start, end time.Time, limit int) ([]models.RunEvent, error) {
	if l.db == nil {
		return nil, ErrNoDatabase
	}
	var events []models.RunEvent
	query := l.db.Where("created_at BETWEEN ? AND ?", start, end)
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Order("created_at DESC, id DESC").Find(&events).Error
	return events, err
}

// Stats - totals per event type over the last hours
func (l *EventLog) Stats(hours int) (models.EventStats, error) {
	stats := models.EventStats{
		EventCounts: make(map[string]int64),
		TimeRange:   fmt.Sprintf("Last %d hours", hours),
	}
	if l.db == nil {
		return stats, ErrNoDatabase
	}
	since := l.now().Add(-time.Duration(hours) * time.Hour)

	base := l.db.Model(&models.RunEvent{}).Where("created_at >= ?", since)
	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return stats, fmt.Errorf("count events: %w", err)
	}
	if err := base.Session(&gorm.Session{}).Distinct("run_id").Count(&stats.Runs).Error; err != nil {
		return stats, fmt.Errorf("count runs: %w", err)
	}

	var eventCounts []struct {
		EventType string
		Count     int64
	}
	err := base.Session(&gorm.Session{}).
		Select("event_type, COUNT(*) as count").
		Group("event_type").
		Scan(&eventCounts).Error
	if err != nil {
		return stats, fmt.Errorf("group events: %w", err)
	}
	for _, ec := range eventCounts {
		stats.EventCounts[ec.EventType] = ec.Count
	}
	return stats, nil
}
