package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const eventColumns = `id, title, summary, severity, port, commodity, region, source, sentiment_score, tags, timestamp`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (*Event, error) {
	e := &Event{}
	var region, source, tags sql.NullString
	var sentiment sql.NullFloat64
	err := s.Scan(&e.ID, &e.Title, &e.Summary, &e.Severity, &e.Port, &e.Commodity,
		&region, &source, &sentiment, &tags, &e.Timestamp)
	if err != nil {
		return nil, err
	}
	e.Region = nullString(region)
	e.Source = nullString(source)
	e.SentimentScore = nullFloat(sentiment)
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &e.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags of event %d: %w", e.ID, err)
		}
	}
	return e, nil
}

func (db *DB) queryEvents(query string, args ...any) ([]Event, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// ListEvents returns up to limit events, newest first.
func (db *DB) ListEvents(limit int) ([]Event, error) {
	events, err := db.queryEvents(`SELECT `+eventColumns+` FROM events ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

func (db *DB) GetEvent(id int64) (*Event, error) {
	e, err := scanEvent(db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting event %d: %w", id, err)
	}
	return e, nil
}

// EventsByPort matches on the free-text port name, newest first.
func (db *DB) EventsByPort(port string) ([]Event, error) {
	events, err := db.queryEvents(`SELECT `+eventColumns+` FROM events WHERE port = ? ORDER BY timestamp DESC`, port)
	if err != nil {
		return nil, fmt.Errorf("listing events for port %q: %w", port, err)
	}
	return events, nil
}

// RandomEvent draws one event uniformly from the whole table.
func (db *DB) RandomEvent() (*Event, error) {
	e, err := scanEvent(db.QueryRow(`SELECT ` + eventColumns + ` FROM events ORDER BY RANDOM() LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("drawing random event: %w", err)
	}
	return e, nil
}

// SeveritySample is the slice of an event the risk index needs.
type SeveritySample struct {
	Severity float64
	Port     string
}

// RecentSeverities returns the n most recent events' severity and port, newest first.
func (db *DB) RecentSeverities(n int) ([]SeveritySample, error) {
	rows, err := db.Query(`SELECT severity, port FROM events ORDER BY timestamp DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying recent severities: %w", err)
	}
	defer rows.Close()

	var out []SeveritySample
	for rows.Next() {
		var s SeveritySample
		if err := rows.Scan(&s.Severity, &s.Port); err != nil {
			return nil, fmt.Errorf("scanning severity: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// TimedSeverity pairs an event timestamp with its severity.
type TimedSeverity struct {
	Timestamp string
	Severity  float64
}

// EventsSince returns events with timestamp strictly after cutoff, oldest first.
func (db *DB) EventsSince(cutoff string) ([]TimedSeverity, error) {
	rows, err := db.Query(`SELECT timestamp, severity FROM events WHERE timestamp > ? ORDER BY timestamp`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying events since %s: %w", cutoff, err)
	}
	defer rows.Close()

	var out []TimedSeverity
	for rows.Next() {
		var ts TimedSeverity
		if err := rows.Scan(&ts.Timestamp, &ts.Severity); err != nil {
			return nil, fmt.Errorf("scanning event severity: %w", err)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}
