package sqlstore

import (
	"context"
	"fmt"
	"iter"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/infrastructure/database"
	"github.com/asakaida/terastore/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	stringAttrsTable = "pulse_str_attrs"
	floatAttrsTable  = "pulse_float_attrs"
)

// attributeValue is the Go type of a column in one attribute table
type attributeValue interface {
	string | float64
}

// attributeStore implements repositories.AttributeStore for one table.
type attributeStore[T attributeValue] struct {
	store    *database.Store
	table    string
	dataType entities.DataType

	// wrap builds the attribute variant from a stored row
	wrap func(key string, value T) entities.Attribute
	// unwrap extracts the column value, false if attr has another type
	unwrap func(attr entities.Attribute) (T, bool)
}

type attributeRecord[T attributeValue] struct {
	Key   string `db:"key"`
	Value T      `db:"value"`
}

// NewStringAttributeStore creates the store for STRING attributes
func NewStringAttributeStore(store *database.Store) repositories.AttributeStore {
	return &attributeStore[string]{
		store:    store,
		table:    stringAttrsTable,
		dataType: entities.DataTypeString,
		wrap: func(key string, value string) entities.Attribute {
			return entities.StringAttribute{Key: key, Value: value}
		},
		unwrap: func(attr entities.Attribute) (string, bool) {
			a, ok := attr.(entities.StringAttribute)
			return a.Value, ok
		},
	}
}

// NewFloatAttributeStore creates the store for FLOAT attributes
func NewFloatAttributeStore(store *database.Store) repositories.AttributeStore {
	return &attributeStore[float64]{
		store:    store,
		table:    floatAttrsTable,
		dataType: entities.DataTypeFloat,
		wrap: func(key string, value float64) entities.Attribute {
			return entities.FloatAttribute{Key: key, Value: value}
		},
		unwrap: func(attr entities.Attribute) (float64, bool) {
			a, ok := attr.(entities.FloatAttribute)
			return a.Value, ok
		},
	}
}

// NewAttributeStores returns the store of every supported data type.
// This is the only place mapping a data type to its table.
func NewAttributeStores(store *database.Store) repositories.AttributeStores {
	return repositories.AttributeStores{
		entities.DataTypeString: NewStringAttributeStore(store),
		entities.DataTypeFloat:  NewFloatAttributeStore(store),
	}
}

func (s *attributeStore[T]) DataType() entities.DataType {
	return s.dataType
}

// Insert writes rows in batches of maxBatchRows
func (s *attributeStore[T]) Insert(ctx context.Context, q repositories.Querier, rows []entities.AttributeRow) error {
	for batch := range slices.Chunk(rows, maxBatchRows) {
		builder := s.store.Builder().
			Insert(s.table).
			Columns("id", "pulse_id", "key", "value")

		for _, row := range batch {
			value, ok := s.unwrap(row.Attribute)
			if !ok {
				return fmt.Errorf("%w: attribute %v does not belong in %s", entities.ErrInvalidInput, row.Attribute, s.table)
			}
			builder = builder.Values(uuid.New().String(), row.PulseID.String(), row.Attribute.Name(), value)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert query: %w", err)
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert %s attributes: %w", s.dataType, err)
		}
	}

	return nil
}

// ForPulse retrieves the attributes of a pulse ordered by key and value
func (s *attributeStore[T]) ForPulse(ctx context.Context, q repositories.Querier, pulseID uuid.UUID) ([]entities.Attribute, error) {
	query, args, err := s.store.Builder().
		Select("key", "value").
		From(s.table).
		Where(sq.Eq{"pulse_id": pulseID.String()}).
		OrderBy("key", "value").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attribute query: %w", err)
	}

	var records []attributeRecord[T]
	if err := sqlx.SelectContext(ctx, q, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to read %s attributes: %w", s.dataType, err)
	}

	attrs := make([]entities.Attribute, len(records))
	for i, rec := range records {
		attrs[i] = s.wrap(rec.Key, rec.Value)
	}
	return attrs, nil
}

// ValuesForKey yields distinct values of key in ascending order
func (s *attributeStore[T]) ValuesForKey(ctx context.Context, q repositories.Querier, key string) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		query, args, err := s.store.Builder().
			Select("value").
			Distinct().
			From(s.table).
			Where(sq.Eq{"key": key}).
			OrderBy("value").
			ToSql()
		if err != nil {
			yield(nil, fmt.Errorf("failed to build values query: %w", err))
			return
		}

		rows, err := q.QueryxContext(ctx, query, args...)
		if err != nil {
			yield(nil, fmt.Errorf("failed to read values of key %s: %w", key, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var value T
			if err := rows.Scan(&value); err != nil {
				yield(nil, fmt.Errorf("failed to scan value of key %s: %w", key, err))
				return
			}
			if !yield(value, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("error iterating values of key %s: %w", key, err))
		}
	}
}

// EqualsQuery selects pulses whose key equals value. Only STRING keys support equality.
func (s *attributeStore[T]) EqualsQuery(key string, value string) (sq.SelectBuilder, error) {
	if s.dataType != entities.DataTypeString {
		return sq.SelectBuilder{}, &entities.PredicateShapeError{Key: key, DataType: s.dataType, Shape: entities.StringEquals{}.Shape()}
	}
	return s.pulseIDs(key).Where(sq.Eq{"value": value}), nil
}

// RangeQuery selects pulses whose key lies in [min, max]. Only FLOAT keys support ranges.
func (s *attributeStore[T]) RangeQuery(key string, min, max float64) (sq.SelectBuilder, error) {
	if s.dataType != entities.DataTypeFloat {
		return sq.SelectBuilder{}, &entities.PredicateShapeError{Key: key, DataType: s.dataType, Shape: entities.FloatRange{}.Shape()}
	}
	return s.pulseIDs(key).
		Where(sq.GtOrEq{"value": min}).
		Where(sq.LtOrEq{"value": max}), nil
}

// pulseIDs starts a pulse_id selection for key. The builder uses '?'
// placeholders so it can be embedded in a larger statement.
func (s *attributeStore[T]) pulseIDs(key string) sq.SelectBuilder {
	return sq.Select("pulse_id").
		Distinct().
		From(s.table).
		Where(sq.Eq{"key": key})
}

// DeleteForPulses removes all rows of the given pulses
func (s *attributeStore[T]) DeleteForPulses(ctx context.Context, q repositories.Querier, pulseIDs []uuid.UUID) (int64, error) {
	var deleted int64
	for batch := range slices.Chunk(pulseIDs, maxBatchRows) {
		query, args, err := s.store.Builder().
			Delete(s.table).
			Where(sq.Eq{"pulse_id": idStrings(batch)}).
			ToSql()
		if err != nil {
			return deleted, fmt.Errorf("failed to build delete query: %w", err)
		}

		result, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return deleted, fmt.Errorf("failed to delete %s attributes: %w", s.dataType, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return deleted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted += n
	}
	return deleted, nil
}
