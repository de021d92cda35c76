package services

import (
	"context"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/repositories"
	"github.com/asakaida/terastore/pkg/cache"
)

// KeyResolver looks up declared key types, consulting an optional cache first.
//
// A key's type never changes once committed, so cached entries need no expiry.
// Entries are only added for types read from the registry or for
// registrations whose transaction has committed.
type KeyResolver struct {
	registry repositories.KeyRegistry
	cache    cache.Cache[entities.DataType]
}

// NewKeyResolver creates a new KeyResolver. c may be nil to disable caching.
func NewKeyResolver(registry repositories.KeyRegistry, c cache.Cache[entities.DataType]) *KeyResolver {
	return &KeyResolver{
		registry: registry,
		cache:    c,
	}
}

// Resolve returns the declared type of key, or *entities.KeyNotFoundError
func (r *KeyResolver) Resolve(ctx context.Context, q repositories.Querier, key string) (entities.DataType, error) {
	if r.cache != nil {
		if dt, ok := r.cache.Get(key); ok {
			return dt, nil
		}
	}

	dt, err := r.registry.DeclaredType(ctx, q, key)
	if err != nil {
		return "", err
	}
	if r.cache != nil {
		r.cache.Set(key, dt)
	}
	return dt, nil
}

// ResolveMany returns the declared types of keys. Unregistered keys are absent from the result.
func (r *KeyResolver) ResolveMany(ctx context.Context, q repositories.Querier, keys []string) (map[string]entities.DataType, error) {
	resolved := make(map[string]entities.DataType, len(keys))
	var pending []string
	for _, key := range keys {
		if r.cache != nil {
			if dt, ok := r.cache.Get(key); ok {
				resolved[key] = dt
				continue
			}
		}
		pending = append(pending, key)
	}
	if len(pending) == 0 {
		return resolved, nil
	}

	declared, err := r.registry.DeclaredTypes(ctx, q, pending)
	if err != nil {
		return nil, err
	}
	for key, dt := range declared {
		resolved[key] = dt
	}
	r.Remember(declared)
	return resolved, nil
}

// Remember caches committed key types
func (r *KeyResolver) Remember(keys map[string]entities.DataType) {
	if r.cache == nil {
		return
	}
	for key, dt := range keys {
		r.cache.Set(key, dt)
	}
}
