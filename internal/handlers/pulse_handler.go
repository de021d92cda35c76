package handlers

import (
	"net/http"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

// handleCreatePulses is the HTTP handler for the POST /pulses/create route.
// It stores every pulse of the body or none of them.
func (h *Router) handleCreatePulses(w http.ResponseWriter, r *http.Request) {
	var req []pulseCreateRequest
	if err := h.api.decodeJSON(r.Body, &req); err != nil {
		h.api.err(w, r, err)
		return
	}

	specs := make([]*entities.PulseCreate, 0, len(req))
	for i := range req {
		spec, err := req[i].toEntity()
		if err != nil {
			h.api.err(w, r, err)
			return
		}
		specs = append(specs, spec)
	}

	ids, err := h.svc.Pulses.CreatePulsesWithAttributes(r.Context(), specs)
	if err != nil {
		h.api.err(w, r, err)
		return
	}
	h.api.respond(w, r, http.StatusOK, ids)
}

// handleListPulses is the HTTP handler for the GET /pulses route.
func (h *Router) handleListPulses(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := decodePage(r)
	if err != nil {
		h.api.err(w, r, err)
		return
	}

	pulses, err := h.svc.Pulses.ListPulses(r.Context(), offset, limit)
	if err != nil {
		h.api.err(w, r, err)
		return
	}
	h.api.respond(w, r, http.StatusOK, newPulseResponses(pulses))
}

// handleGetPulses is the HTTP handler for the POST /pulses/get route.
func (h *Router) handleGetPulses(w http.ResponseWriter, r *http.Request) {
	var ids []uuid.UUID
	if err := h.api.decodeJSON(r.Body, &ids); err != nil {
		h.api.err(w, r, err)
		return
	}

	pulses, err := h.svc.Pulses.GetPulses(r.Context(), ids)
	if err != nil {
		h.api.err(w, r, err)
		return
	}
	h.api.respond(w, r, http.StatusOK, newPulseResponses(pulses))
}

// handleGetPulse is the HTTP handler for the GET /pulses/{pulseID} route.
func (h *Router) handleGetPulse(w http.ResponseWriter, r *http.Request) {
	id, err := decodeID(chi.URLParam(r, "pulseID"), "pulse_id")
	if err != nil {
		h.api.err(w, r, err)
		return
	}

	pulse, err := h.svc.Pulses.GetPulse(r.Context(), id)
	if err != nil {
		h.api.err(w, r, err)
		return
	}
	h.api.respond(w, r, http.StatusOK, newPulseResponse(pulse))
}

// handleGetAnnotatedPulse is the HTTP handler for the GET /pulses/{pulseID}/annotated route.
func (h *Router) handleGetAnnotatedPulse(w http.ResponseWriter, r *http.Request) {
	id, err := decodeID(chi.URLParam(r, "pulseID"), "pulse_id")
	if err != nil {
		h.api.err(w, r, err)
		return
	}

	annotated, err := h.svc.Pulses.GetAnnotatedPulse(r.Context(), id)
	if err != nil {
		h.api.err(w, r, err)
		return
	}
	h.api.respond(w, r, http.StatusOK, annotatedPulseResponse{
		pulseResponse:   newPulseResponse(&annotated.Pulse),
		PulseAttributes: newAttributeBodies(annotated.Attributes),
	})
}

// handleWriteOne is the HTTP handler for the PUT /pulses/{pulseID}/attrs route.
// It replies with the pulse the attribute was added to.
func (h *Router) handleWriteOne(w http.ResponseWriter, r *http.Request) {
	id, err := decodeID(chi.URLParam(r, "pulseID"), "pulse_id")
	if err != nil {
		h.api.err(w, r, err)
		return
	}

	var body attributeBody
	if err := h.api.decodeJSON(r.Body, &body); err != nil {
		h.api.err(w, r, err)
		return
	}
	attr, err := body.toAttribute()
	if err != nil {
		h.api.err(w, r, err)
		return
	}

	if err := h.svc.Attributes.WriteOne(r.Context(), id, attr); err != nil {
		h.api.err(w, r, err)
		return
	}

	pulse, err := h.svc.Pulses.GetPulse(r.Context(), id)
	if err != nil {
		h.api.err(w, r, err)
		return
	}
	h.api.respond(w, r, http.StatusOK, newPulseResponse(pulse))
}

// handleWriteBulk is the HTTP handler for the PUT /pulses/attrs route.
func (h *Router) handleWriteBulk(w http.ResponseWriter, r *http.Request) {
	var req []pulseAttributesRequest
	if err := h.api.decodeJSON(r.Body, &req); err != nil {
		h.api.err(w, r, err)
		return
	}

	groups := make([]entities.PulseAttributes, 0, len(req))
	for _, g := range req {
		attrs, err := toAttributes(g.PulseAttributes)
		if err != nil {
			h.api.err(w, r, err)
			return
		}
		groups = append(groups, entities.PulseAttributes{PulseID: g.PulseID, Attributes: attrs})
	}

	if err := h.svc.Attributes.WriteBulk(r.Context(), groups); err != nil {
		h.api.err(w, r, err)
		return
	}
	h.api.respond(w, r, http.StatusNoContent, nil)
}

// handleGetPulseAttributes is the HTTP handler for the GET /pulses/{pulseID}/attrs route.
func (h *Router) handleGetPulseAttributes(w http.ResponseWriter, r *http.Request) {
	id, err := decodeID(chi.URLParam(r, "pulseID"), "pulse_id")
	if err != nil {
		h.api.err(w, r, err)
		return
	}

	attrs, err := h.svc.Attributes.ReadPulseAttributes(r.Context(), id)
	if err != nil {
		h.api.err(w, r, err)
		return
	}
	h.api.respond(w, r, http.StatusOK, newAttributeBodies(attrs))
}
