package db

import (
	"database/sql"
	"errors"
	"fmt"
)

const portColumns = `id, name, country, latitude, longitude, risk_score, active_events`

func scanPort(s rowScanner) (*Port, error) {
	p := &Port{}
	if err := s.Scan(&p.ID, &p.Name, &p.Country, &p.Latitude, &p.Longitude, &p.RiskScore, &p.ActiveEvents); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPorts returns ports in storage order. limit <= 0 returns all.
func (db *DB) ListPorts(limit int) ([]Port, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`SELECT `+portColumns+` FROM ports LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing ports: %w", err)
	}
	defer rows.Close()

	ports := []Port{}
	for rows.Next() {
		p, err := scanPort(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning port: %w", err)
		}
		ports = append(ports, *p)
	}
	return ports, rows.Err()
}

func (db *DB) GetPort(id int64) (*Port, error) {
	p, err := scanPort(db.QueryRow(`SELECT `+portColumns+` FROM ports WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting port %d: %w", id, err)
	}
	return p, nil
}

// PortRiskRanking returns every port ordered by descending risk score.
func (db *DB) PortRiskRanking() ([]PortRisk, error) {
	rows, err := db.Query(`SELECT name, country, risk_score, active_events FROM ports ORDER BY risk_score DESC`)
	if err != nil {
		return nil, fmt.Errorf("ranking ports: %w", err)
	}
	defer rows.Close()

	out := []PortRisk{}
	for rows.Next() {
		var p PortRisk
		if err := rows.Scan(&p.Name, &p.Country, &p.RiskScore, &p.ActiveEvents); err != nil {
			return nil, fmt.Errorf("scanning port risk: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
