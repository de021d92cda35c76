package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/google/uuid"
)

func decodeID(s, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, entities.NewValidationError(field, fmt.Sprintf("invalid id %q", s))
	}
	return id, nil
}

// decodePage reads the offset and limit query parameters. Absent values are 0.
func decodePage(r *http.Request) (offset, limit int, err error) {
	q := r.URL.Query()
	if offset, err = intParam(q.Get("offset"), "offset"); err != nil {
		return 0, 0, err
	}
	if limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return 0, 0, err
	}
	return offset, limit, nil
}

func intParam(s, field string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, entities.NewValidationError(field, fmt.Sprintf("%s must be an integer", field))
	}
	return n, nil
}
