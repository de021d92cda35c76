package handlers

import (
	"net/http"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/go-chi/chi"
)

// handleListKeys is the HTTP handler for the GET /attrs/keys route.
func (h *Router) handleListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.Attributes.ListKeys(r.Context())
	if err != nil {
		h.api.err(w, r, err)
		return
	}

	resp := make([]keyResponse, 0, len(keys))
	for _, k := range keys {
		resp = append(resp, keyResponse{Name: k.Key, DataType: k.DataType})
	}
	h.api.respond(w, r, http.StatusOK, resp)
}

// handleValuesForKey is the HTTP handler for the GET /attrs/{key}/values route.
func (h *Router) handleValuesForKey(w http.ResponseWriter, r *http.Request) {
	values, err := h.svc.Attributes.ValuesForKey(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.api.err(w, r, err)
		return
	}
	h.api.respond(w, r, http.StatusOK, values)
}

// handleFilter is the HTTP handler for the POST /attrs/filter route.
// A single requested column is returned as a flat list, several as one array per pulse
// holding the values in the requested column order.
func (h *Router) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := h.api.decodeJSON(r.Body, &req); err != nil {
		h.api.err(w, r, err)
		return
	}

	predicates := make([]entities.Predicate, 0, len(req.KVPairs))
	for _, kv := range req.KVPairs {
		p, err := kv.toPredicate()
		if err != nil {
			h.api.err(w, r, err)
			return
		}
		predicates = append(predicates, p)
	}

	result, err := h.svc.Filter.Filter(r.Context(), predicates, req.Columns)
	if err != nil {
		h.api.err(w, r, err)
		return
	}

	if len(result.Columns) == 1 {
		h.api.respond(w, r, http.StatusOK, result.Flat())
		return
	}
	rows := result.Rows
	if rows == nil {
		rows = [][]any{}
	}
	h.api.respond(w, r, http.StatusOK, rows)
}
