package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ApexYash11/TradeguardAI/internal/db"
	"github.com/ApexYash11/TradeguardAI/internal/forecast"
)

// --- Forecast ---
//
// Every forecast served here is a simulated placeholder series, labelled
// "simulated": true in the response.

func (a *API) handleForecast(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sku_id")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	sku, err := a.db.GetSKU(id)
	if err != nil {
		storeError(w, r, err, "SKU")
		return
	}
	jsonResp(w, http.StatusOK, a.simulate(*sku))
}

type comparisonEntry struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Forecast  []forecast.Point `json:"forecast"`
	Simulated bool             `json:"simulated"`
}

// handleForecastComparison simulates side-by-side series for the SKUs in
// sku_ids (comma-separated), or for every SKU when the parameter is absent.
// Unknown ids are skipped.
func (a *API) handleForecastComparison(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r.URL.Query().Get("sku_ids"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var skus []db.SKU
	if len(ids) == 0 {
		skus, err = a.db.ListSKUs(0)
	} else {
		skus, err = a.db.GetSKUs(ids)
	}
	if err != nil {
		storeError(w, r, err, "SKU")
		return
	}

	entries := make([]comparisonEntry, 0, len(skus))
	for _, sku := range skus {
		f := a.simulate(sku)
		entries = append(entries, comparisonEntry{ID: sku.ID, Name: sku.Name, Forecast: f.Data, Simulated: true})
	}
	jsonResp(w, http.StatusOK, map[string]any{
		"skus":      entries,
		"timestamp": db.FormatTime(time.Now()),
	})
}

func (a *API) handleForecastHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sku_id")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := parseLimit(r, forecast.Days)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := a.db.GetSKU(id); err != nil {
		storeError(w, r, err, "SKU")
		return
	}
	records, err := a.db.ListForecastHistory(id, limit)
	if err != nil {
		storeError(w, r, err, "SKU")
		return
	}
	jsonResp(w, http.StatusOK, records)
}

func (a *API) simulate(sku db.SKU) forecast.SKUForecast {
	f := a.simulator.ForSKU(sku)
	if a.history != nil {
		a.history.Record(f.Records(time.Now()))
	}
	return f
}

var errInvalidIDList = errors.New("sku_ids must be a comma-separated list of positive integers")

func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id < 1 {
			return nil, errInvalidIDList
		}
		ids = append(ids, id)
	}
	return ids, nil
}
