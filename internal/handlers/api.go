package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const internalErrorDetail = "An internal error has occurred"

// errorResponse is the body of every error reply
type errorResponse struct {
	Detail string `json:"detail"`
}

// statusCodes maps domain sentinels to HTTP status codes. The first match wins.
var statusCodes = []struct {
	err  error
	code int
}{
	{entities.ErrPulseNotFound, http.StatusNotFound},
	{entities.ErrDeviceNotFound, http.StatusNotFound},
	{entities.ErrKeyNotFound, http.StatusNotFound},
	{entities.ErrColumnNotFound, http.StatusNotFound},
	{entities.ErrTypeConflict, http.StatusBadRequest},
	{entities.ErrPredicateShape, http.StatusBadRequest},
	{entities.ErrUnsupportedDataType, http.StatusBadRequest},
	{entities.ErrInvalidInput, http.StatusUnprocessableEntity},
}

// statusCode returns the HTTP status for err and whether err is a domain error
func statusCode(err error) (int, bool) {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.code, true
		}
	}
	return http.StatusInternalServerError, false
}

// api encodes responses and errors
type api struct {
	log *zap.Logger
}

// respond writes v as JSON with the given status
func (a *api) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context(), a.log).Warn("failed to encode response", zap.Error(err))
	}
}

// err writes err with the status of its domain sentinel.
// Errors outside the domain are logged and reported without detail.
func (a *api) err(w http.ResponseWriter, r *http.Request, err error) {
	code, known := statusCode(err)
	detail := err.Error()
	if !known {
		logger.FromContext(r.Context(), a.log).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		detail = internalErrorDetail
	}
	a.respond(w, r, code, errorResponse{Detail: detail})
}

// decodeJSON reads a JSON body into v. Malformed bodies are invalid input.
func (a *api) decodeJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return &entities.ValidationError{Message: fmt.Sprintf("malformed JSON body: %v", err)}
	}
	return nil
}
