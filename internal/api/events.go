package api

import (
	"net/http"

	"github.com/ApexYash11/TradeguardAI/internal/db"
)

// --- Events ---

func (a *API) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 10)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	events, err := a.db.ListEvents(limit)
	if err != nil {
		storeError(w, r, err, "Event")
		return
	}
	jsonResp(w, http.StatusOK, nonNil(events))
}

func (a *API) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ev, err := a.db.GetEvent(id)
	if err != nil {
		storeError(w, r, err, "Event")
		return
	}
	jsonResp(w, http.StatusOK, ev)
}

// --- Ports ---

func (a *API) handleListPorts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 0)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ports, err := a.db.ListPorts(limit)
	if err != nil {
		storeError(w, r, err, "Port")
		return
	}
	jsonResp(w, http.StatusOK, nonNil(ports))
}

func (a *API) handleGetPort(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	port, err := a.db.GetPort(id)
	if err != nil {
		storeError(w, r, err, "Port")
		return
	}
	jsonResp(w, http.StatusOK, port)
}

// handlePortEvents matches events to the port by name; there is no
// referential link between the two tables.
func (a *API) handlePortEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	port, err := a.db.GetPort(id)
	if err != nil {
		storeError(w, r, err, "Port")
		return
	}
	events, err := a.db.EventsByPort(port.Name)
	if err != nil {
		storeError(w, r, err, "Event")
		return
	}
	jsonResp(w, http.StatusOK, struct {
		Port   string     `json:"port"`
		Events []db.Event `json:"events"`
	}{port.Name, nonNil(events)})
}

// --- SKUs ---

func (a *API) handleListSKUs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 0)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	skus, err := a.db.ListSKUs(limit)
	if err != nil {
		storeError(w, r, err, "SKU")
		return
	}
	jsonResp(w, http.StatusOK, nonNil(skus))
}

func (a *API) handleGetSKU(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	sku, err := a.db.GetSKU(id)
	if err != nil {
		storeError(w, r, err, "SKU")
		return
	}
	jsonResp(w, http.StatusOK, sku)
}

// nonNil makes empty results encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
