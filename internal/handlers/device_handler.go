package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
)

// handleCreateDevice is the HTTP handler for the POST /devices route.
func (h *Router) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceCreateRequest
	if err := h.api.decodeJSON(r.Body, &req); err != nil {
		h.api.err(w, r, err)
		return
	}

	device, err := h.svc.Devices.CreateDevice(r.Context(), req.FriendlyName)
	if err != nil {
		h.api.err(w, r, err)
		return
	}
	h.api.respond(w, r, http.StatusOK, newDeviceResponse(device))
}

// handleListDevices is the HTTP handler for the GET /devices route.
func (h *Router) handleListDevices(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := decodePage(r)
	if err != nil {
		h.api.err(w, r, err)
		return
	}

	devices, err := h.svc.Devices.ListDevices(r.Context(), offset, limit)
	if err != nil {
		h.api.err(w, r, err)
		return
	}

	resp := make([]deviceResponse, 0, len(devices))
	for _, d := range devices {
		resp = append(resp, newDeviceResponse(d))
	}
	h.api.respond(w, r, http.StatusOK, resp)
}

// handleGetDevice is the HTTP handler for the GET /devices/{deviceID} route.
func (h *Router) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, err := decodeID(chi.URLParam(r, "deviceID"), "device_id")
	if err != nil {
		h.api.err(w, r, err)
		return
	}

	device, err := h.svc.Devices.GetDevice(r.Context(), id)
	if err != nil {
		h.api.err(w, r, err)
		return
	}
	h.api.respond(w, r, http.StatusOK, newDeviceResponse(device))
}
