package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const skuColumns = `id, name, commodity, ports, risk_level`

func scanSKU(s rowScanner) (*SKU, error) {
	sku := &SKU{}
	if err := s.Scan(&sku.ID, &sku.Name, &sku.Commodity, &sku.Ports, &sku.RiskLevel); err != nil {
		return nil, err
	}
	return sku, nil
}

func (db *DB) querySKUs(query string, args ...any) ([]SKU, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	skus := []SKU{}
	for rows.Next() {
		sku, err := scanSKU(rows)
		if err != nil {
			return nil, err
		}
		skus = append(skus, *sku)
	}
	return skus, rows.Err()
}

// ListSKUs returns SKUs by descending risk level. limit <= 0 returns all.
func (db *DB) ListSKUs(limit int) ([]SKU, error) {
	if limit <= 0 {
		limit = -1
	}
	skus, err := db.querySKUs(`SELECT `+skuColumns+` FROM skus ORDER BY risk_level DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing skus: %w", err)
	}
	return skus, nil
}

func (db *DB) GetSKU(id int64) (*SKU, error) {
	sku, err := scanSKU(db.QueryRow(`SELECT `+skuColumns+` FROM skus WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting sku %d: %w", id, err)
	}
	return sku, nil
}

// GetSKUs returns the SKUs among ids that exist, in the order of ids.
// Unknown ids are skipped.
func (db *DB) GetSKUs(ids []int64) ([]SKU, error) {
	if len(ids) == 0 {
		return []SKU{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	found, err := db.querySKUs(`SELECT `+skuColumns+` FROM skus WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("getting skus: %w", err)
	}

	byID := make(map[int64]SKU, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}
	out := make([]SKU, 0, len(found))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok && !seen[id] {
			out = append(out, s)
			seen[id] = true
		}
	}
	return out, nil
}
