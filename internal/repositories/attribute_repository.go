package repositories

import (
	"context"
	"iter"

	sq "github.com/Masterminds/squirrel"
	"github.com/asakaida/terastore/internal/entities"
	"github.com/google/uuid"
)

// AttributeStore defines data access for the attribute table of one data type.
// Stores do not check rows against the key registry; callers do.
type AttributeStore interface {
	// DataType returns the type of values held by this store
	DataType() entities.DataType

	// Insert writes rows in one batched statement.
	// Every row's attribute must have the store's data type.
	Insert(ctx context.Context, q Querier, rows []entities.AttributeRow) error

	// ForPulse retrieves all attributes of a pulse held by this store
	ForPulse(ctx context.Context, q Querier, pulseID uuid.UUID) ([]entities.Attribute, error)

	// ValuesForKey yields the distinct values of key in ascending order.
	// The sequence reads lazily from q and can be iterated once.
	ValuesForKey(ctx context.Context, q Querier, key string) iter.Seq2[any, error]

	// EqualsQuery returns a query selecting pulse_id of pulses whose key equals value
	EqualsQuery(key string, value string) (sq.SelectBuilder, error)

	// RangeQuery returns a query selecting pulse_id of pulses whose key lies in [min, max]
	RangeQuery(key string, min, max float64) (sq.SelectBuilder, error)

	// DeleteForPulses removes every row belonging to the given pulses
	DeleteForPulses(ctx context.Context, q Querier, pulseIDs []uuid.UUID) (int64, error)
}

// AttributeStores maps each data type to the store holding its values.
type AttributeStores map[entities.DataType]AttributeStore

// For returns the store for dataType
func (s AttributeStores) For(dataType entities.DataType) (AttributeStore, error) {
	store, ok := s[dataType]
	if !ok {
		return nil, &entities.UnsupportedDataTypeError{DataType: string(dataType)}
	}
	return store, nil
}

// All returns the stores in entities.DataTypes order
func (s AttributeStores) All() []AttributeStore {
	stores := make([]AttributeStore, 0, len(s))
	for _, dt := range entities.DataTypes {
		if store, ok := s[dt]; ok {
			stores = append(stores, store)
		}
	}
	return stores
}
