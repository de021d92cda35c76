package repositories

import (
	"context"

	"github.com/asakaida/terastore/internal/entities"
)

// KeyRegistry defines data access for the attribute key registry
type KeyRegistry interface {
	// DeclaredType returns the registered type of key.
	// Returns *entities.KeyNotFoundError if the key is not registered.
	DeclaredType(ctx context.Context, q Querier, key string) (entities.DataType, error)

	// DeclaredTypes returns the registered types of keys.
	// Unregistered keys are absent from the result.
	DeclaredTypes(ctx context.Context, q Querier, keys []string) (map[string]entities.DataType, error)

	// Register records key with dataType. Registering a key again with the
	// same type is a no-op; a different type returns *entities.TypeConflictError.
	Register(ctx context.Context, q Querier, key string, dataType entities.DataType) error

	// List returns all registered keys ordered by key
	List(ctx context.Context, q Querier) ([]entities.AttributeKey, error)
}
