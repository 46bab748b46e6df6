package db

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// InsertForecastHistory stores records in one transaction. CreatedAt is
// filled in when empty.
func (db *DB) InsertForecastHistory(records []ForecastRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning history transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO forecasts_history (sku_id, forecast_date, risk, upper_bound, lower_bound, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing history insert: %w", err)
	}
	defer stmt.Close()

	now := FormatTime(time.Now())
	for _, r := range records {
		createdAt := r.CreatedAt
		if createdAt == "" {
			createdAt = now
		}
		if _, err := stmt.Exec(r.SKUID, r.ForecastDate, r.Risk, r.UpperBound, r.LowerBound, createdAt); err != nil {
			return fmt.Errorf("inserting history for sku %d: %w", r.SKUID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history: %w", err)
	}
	return nil
}

// ListForecastHistory returns up to limit stored points for a SKU, most
// recently recorded first.
func (db *DB) ListForecastHistory(skuID int64, limit int) ([]ForecastRecord, error) {
	rows, err := db.Query(`
		SELECT id, sku_id, forecast_date, risk, upper_bound, lower_bound, created_at
		FROM forecasts_history WHERE sku_id = ?
		ORDER BY created_at DESC, id ASC LIMIT ?`, skuID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing forecast history: %w", err)
	}
	defer rows.Close()

	out := []ForecastRecord{}
	for rows.Next() {
		var r ForecastRecord
		if err := rows.Scan(&r.ID, &r.SKUID, &r.ForecastDate, &r.Risk, &r.UpperBound, &r.LowerBound, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning forecast history: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// HistoryRecorder writes forecast records to forecasts_history off the
// request path. Records are batched and flushed every 500ms or every 32
// forecasts; when the buffer is full new forecasts are dropped.
type HistoryRecorder struct {
	db   *DB
	ch   chan []ForecastRecord
	done chan struct{}
	once sync.Once
}

func NewHistoryRecorder(database *DB) *HistoryRecorder {
	r := &HistoryRecorder{
		db:   database,
		ch:   make(chan []ForecastRecord, 256),
		done: make(chan struct{}),
	}
	go r.flushLoop()
	return r
}

// Record queues one forecast's points. It never blocks.
func (r *HistoryRecorder) Record(records []ForecastRecord) {
	if len(records) == 0 {
		return
	}
	select {
	case r.ch <- records:
	default:
		slog.Warn("forecast history buffer full, dropping forecast", "sku_id", records[0].SKUID)
	}
}

// Close flushes pending records and stops the flush loop. Record must not be
// called after Close.
func (r *HistoryRecorder) Close() error {
	r.once.Do(func() {
		close(r.ch)
		<-r.done
	})
	return nil
}

func (r *HistoryRecorder) flushLoop() {
	defer close(r.done)
	batch := make([]ForecastRecord, 0, 32*30)
	pending := 0
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case recs, ok := <-r.ch:
			if !ok {
				r.flushBatch(batch)
				return
			}
			batch = append(batch, recs...)
			pending++
			if pending >= 32 {
				r.flushBatch(batch)
				batch = batch[:0]
				pending = 0
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.flushBatch(batch)
				batch = batch[:0]
				pending = 0
			}
		}
	}
}

func (r *HistoryRecorder) flushBatch(batch []ForecastRecord) {
	if len(batch) == 0 {
		return
	}
	if err := r.db.InsertForecastHistory(batch); err != nil {
		slog.Error("forecast history write failed", "error", err, "records", len(batch))
	}
}
