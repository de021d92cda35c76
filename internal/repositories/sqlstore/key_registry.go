package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/infrastructure/database"
	"github.com/asakaida/terastore/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const keyRegistryTable = "pulse_key_registry"

// KeyRegistry implements repositories.KeyRegistry
type KeyRegistry struct {
	store *database.Store
}

var _ repositories.KeyRegistry = (*KeyRegistry)(nil)

// NewKeyRegistry creates a new key registry repository
func NewKeyRegistry(store *database.Store) *KeyRegistry {
	return &KeyRegistry{store: store}
}

// DeclaredType returns the registered type of key
func (r *KeyRegistry) DeclaredType(ctx context.Context, q repositories.Querier, key string) (entities.DataType, error) {
	query, args, err := r.store.Builder().
		Select("data_type").
		From(keyRegistryTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build key query: %w", err)
	}

	var dataType entities.DataType
	err = sqlx.GetContext(ctx, q, &dataType, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &entities.KeyNotFoundError{Key: key}
	}
	if err != nil {
		return "", fmt.Errorf("failed to get declared type of key %s: %w", key, err)
	}

	return dataType, nil
}

// DeclaredTypes returns the registered types of the keys that exist
func (r *KeyRegistry) DeclaredTypes(ctx context.Context, q repositories.Querier, keys []string) (map[string]entities.DataType, error) {
	types := make(map[string]entities.DataType, len(keys))

	for batch := range slices.Chunk(keys, maxBatchRows) {
		query, args, err := r.store.Builder().
			Select("key", "data_type").
			From(keyRegistryTable).
			Where(sq.Eq{"key": batch}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build key query: %w", err)
		}

		var found []entities.AttributeKey
		if err := sqlx.SelectContext(ctx, q, &found, query, args...); err != nil {
			return nil, fmt.Errorf("failed to get declared types: %w", err)
		}
		for _, k := range found {
			types[k.Key] = k.DataType
		}
	}

	return types, nil
}

// Register records key with dataType.
// The insert is a no-op when the key exists; the stored type is then read
// back so a concurrent registration of another type surfaces as a conflict.
func (r *KeyRegistry) Register(ctx context.Context, q repositories.Querier, key string, dataType entities.DataType) error {
	if !dataType.Valid() {
		return &entities.UnsupportedDataTypeError{DataType: string(dataType)}
	}

	query, args, err := r.store.Builder().
		Insert(keyRegistryTable).
		Columns("id", "key", "data_type").
		Values(uuid.New().String(), key, string(dataType)).
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build register query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to register key %s: %w", key, err)
	}

	existing, err := r.DeclaredType(ctx, q, key)
	if err != nil {
		return err
	}
	if existing != dataType {
		return &entities.TypeConflictError{Key: key, Existing: existing, Incoming: dataType}
	}

	return nil
}

// List returns all registered keys ordered by key
func (r *KeyRegistry) List(ctx context.Context, q repositories.Querier) ([]entities.AttributeKey, error) {
	query, args, err := r.store.Builder().
		Select("key", "data_type").
		From(keyRegistryTable).
		OrderBy("key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build key list query: %w", err)
	}

	keys := []entities.AttributeKey{}
	if err := sqlx.SelectContext(ctx, q, &keys, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	return keys, nil
}
