// Package sqlstore implements the repositories on top of database.Store.
// Every query is built with squirrel and runs on the Querier passed by the
// caller, so a whole logical operation can share one transaction.
package sqlstore

import (
	"github.com/google/uuid"
)

// maxBatchRows bounds the rows per INSERT or IN list so statements stay
// below the bind variable limits of both backends.
const maxBatchRows = 500

// idStrings converts ids to their canonical text form.
// UUIDs are bound as strings because squirrel expands array values into lists.
func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// missing returns the ids not present in found, in input order without duplicates
func missing(ids []uuid.UUID, found []uuid.UUID) []uuid.UUID {
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}

	var out []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := present[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
