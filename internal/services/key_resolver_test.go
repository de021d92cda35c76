package services

import (
	"context"
	"testing"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/repositories"
	"github.com/asakaida/terastore/pkg/cache/memorycache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRegistry counts lookups reaching the registry
type countingRegistry struct {
	repositories.KeyRegistry
	types   map[string]entities.DataType
	lookups int
}

func (r *countingRegistry) DeclaredType(ctx context.Context, q repositories.Querier, key string) (entities.DataType, error) {
	r.lookups++
	dt, ok := r.types[key]
	if !ok {
		return "", &entities.KeyNotFoundError{Key: key}
	}
	return dt, nil
}

func (r *countingRegistry) DeclaredTypes(ctx context.Context, q repositories.Querier, keys []string) (map[string]entities.DataType, error) {
	r.lookups++
	found := map[string]entities.DataType{}
	for _, key := range keys {
		if dt, ok := r.types[key]; ok {
			found[key] = dt
		}
	}
	return found, nil
}

func TestKeyResolver_Resolve(t *testing.T) {
	registry := &countingRegistry{types: map[string]entities.DataType{"angle": entities.DataTypeFloat}}
	c := memorycache.New[entities.DataType](&memorycache.Config{EnableMetrics: true})
	resolver := NewKeyResolver(registry, c)
	ctx := context.Background()

	for range 3 {
		dt, err := resolver.Resolve(ctx, nil, "angle")
		require.NoError(t, err)
		assert.Equal(t, entities.DataTypeFloat, dt)
	}
	assert.Equal(t, 1, registry.lookups)
	assert.Equal(t, uint64(2), c.Metrics().Hits)

	// Misses are not cached
	for range 2 {
		_, err := resolver.Resolve(ctx, nil, "missing_key")
		assert.ErrorIs(t, err, entities.ErrKeyNotFound)
	}
	assert.Equal(t, 3, registry.lookups)
}

func TestKeyResolver_ResolveMany(t *testing.T) {
	registry := &countingRegistry{types: map[string]entities.DataType{
		"angle":     entities.DataTypeFloat,
		"substrate": entities.DataTypeString,
	}}
	c := memorycache.New[entities.DataType](&memorycache.Config{})
	resolver := NewKeyResolver(registry, c)
	ctx := context.Background()

	got, err := resolver.ResolveMany(ctx, nil, []string{"angle", "substrate", "missing_key"})
	require.NoError(t, err)
	assert.Equal(t, map[string]entities.DataType{
		"angle":     entities.DataTypeFloat,
		"substrate": entities.DataTypeString,
	}, got)

	// Cached keys skip the registry
	got, err = resolver.ResolveMany(ctx, nil, []string{"angle", "substrate"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, registry.lookups)
}

func TestKeyResolver_NoCache(t *testing.T) {
	registry := &countingRegistry{types: map[string]entities.DataType{"angle": entities.DataTypeFloat}}
	resolver := NewKeyResolver(registry, nil)

	resolver.Remember(map[string]entities.DataType{"angle": entities.DataTypeFloat})
	_, err := resolver.Resolve(context.Background(), nil, "angle")
	require.NoError(t, err)
	_, err = resolver.Resolve(context.Background(), nil, "angle")
	require.NoError(t, err)
	assert.Equal(t, 2, registry.lookups)
}
