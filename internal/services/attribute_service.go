package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/infrastructure/database"
	"github.com/asakaida/terastore/internal/infrastructure/logger"
	"github.com/asakaida/terastore/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// AttributeServiceInterface defines the attribute read and write operations
type AttributeServiceInterface interface {
	WriteOne(ctx context.Context, pulseID uuid.UUID, attr entities.Attribute) error
	WriteBulk(ctx context.Context, groups []entities.PulseAttributes) error
	ReadPulseAttributes(ctx context.Context, pulseID uuid.UUID) ([]entities.Attribute, error)
	ListKeys(ctx context.Context) ([]entities.AttributeKey, error)
	ValuesForKey(ctx context.Context, key string) ([]any, error)
}

// AttributeService writes typed attributes while keeping every key bound to a single type.
type AttributeService struct {
	store    *database.Store
	pulses   repositories.PulseRepository
	registry repositories.KeyRegistry
	stores   repositories.AttributeStores
	keys     *KeyResolver
	logger   *zap.Logger
}

var _ AttributeServiceInterface = (*AttributeService)(nil)

// NewAttributeService creates a new AttributeService
func NewAttributeService(
	store *database.Store,
	pulses repositories.PulseRepository,
	registry repositories.KeyRegistry,
	stores repositories.AttributeStores,
	keys *KeyResolver,
	log *zap.Logger,
) *AttributeService {
	if log == nil {
		log = zap.NewNop()
	}
	if keys == nil {
		keys = NewKeyResolver(registry, nil)
	}
	return &AttributeService{
		store:    store,
		pulses:   pulses,
		registry: registry,
		stores:   stores,
		keys:     keys,
		logger:   log,
	}
}

// WriteOne attaches a single attribute to a pulse.
// The key is registered with the attribute's type on first use.
func (s *AttributeService) WriteOne(ctx context.Context, pulseID uuid.UUID, attr entities.Attribute) error {
	if err := entities.ValidateAttribute(attr); err != nil {
		return err
	}

	registered := map[string]entities.DataType{}
	err := s.store.InTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.pulses.Exists(ctx, tx, pulseID)
		if err != nil {
			return err
		}
		if !ok {
			return &entities.PulseNotFoundError{IDs: []uuid.UUID{pulseID}}
		}

		if err := s.ensureKey(ctx, tx, attr.Name(), attr.Type(), registered); err != nil {
			return err
		}

		store, err := s.stores.For(attr.Type())
		if err != nil {
			return err
		}
		return store.Insert(ctx, tx, []entities.AttributeRow{{PulseID: pulseID, Attribute: attr}})
	})
	if err != nil {
		return s.translateRegistration(ctx, err, map[string]entities.DataType{attr.Name(): attr.Type()})
	}

	s.keys.Remember(registered)
	return nil
}

// WriteBulk attaches attributes to many pulses in one transaction.
// Every key and pulse is checked before any row is written.
func (s *AttributeService) WriteBulk(ctx context.Context, groups []entities.PulseAttributes) error {
	incoming, err := collectKeyTypes(groups)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}

	registered := map[string]entities.DataType{}
	err = s.store.InTx(ctx, func(tx *sqlx.Tx) error {
		return s.writeBulk(ctx, tx, groups, incoming, registered)
	})
	if err != nil {
		return s.translateRegistration(ctx, err, incoming)
	}

	s.keys.Remember(registered)
	return nil
}

func (s *AttributeService) writeBulk(
	ctx context.Context,
	tx *sqlx.Tx,
	groups []entities.PulseAttributes,
	incoming map[string]entities.DataType,
	registered map[string]entities.DataType,
) error {
	ids := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.PulseID)
	}
	missingIDs, err := s.pulses.MissingIDs(ctx, tx, ids)
	if err != nil {
		return err
	}
	if len(missingIDs) > 0 {
		return &entities.PulseNotFoundError{IDs: missingIDs}
	}

	keys := slices.Sorted(maps.Keys(incoming))
	declared, err := s.keys.ResolveMany(ctx, tx, keys)
	if err != nil {
		return err
	}

	// Fail on the first conflicting key before registering anything
	for _, key := range keys {
		if existing, ok := declared[key]; ok && existing != incoming[key] {
			return &entities.TypeConflictError{Key: key, Existing: existing, Incoming: incoming[key]}
		}
	}
	for _, key := range keys {
		if _, ok := declared[key]; ok {
			continue
		}
		if err := s.registry.Register(ctx, tx, key, incoming[key]); err != nil {
			return err
		}
		registered[key] = incoming[key]
	}

	rows := map[entities.DataType][]entities.AttributeRow{}
	for _, g := range groups {
		for _, row := range g.Rows() {
			dt := row.Attribute.Type()
			rows[dt] = append(rows[dt], row)
		}
	}
	for _, store := range s.stores.All() {
		if len(rows[store.DataType()]) == 0 {
			continue
		}
		if err := store.Insert(ctx, tx, rows[store.DataType()]); err != nil {
			return err
		}
	}
	return nil
}

// ReadPulseAttributes returns every attribute of a pulse
func (s *AttributeService) ReadPulseAttributes(ctx context.Context, pulseID uuid.UUID) ([]entities.Attribute, error) {
	var attrs []entities.Attribute
	err := s.store.InTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.pulses.Exists(ctx, tx, pulseID)
		if err != nil {
			return err
		}
		if !ok {
			return &entities.PulseNotFoundError{IDs: []uuid.UUID{pulseID}}
		}

		attrs, err = readAttributes(ctx, tx, s.stores, pulseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

// ListKeys returns the registered keys ordered by name
func (s *AttributeService) ListKeys(ctx context.Context) ([]entities.AttributeKey, error) {
	keys, err := s.registry.List(ctx, s.store.DB)
	if err != nil {
		return nil, err
	}

	declared := make(map[string]entities.DataType, len(keys))
	for _, k := range keys {
		declared[k.Key] = k.DataType
	}
	s.keys.Remember(declared)
	return keys, nil
}

// ValuesForKey returns the distinct values stored for key in ascending order
func (s *AttributeService) ValuesForKey(ctx context.Context, key string) ([]any, error) {
	values := []any{}
	err := s.store.InTx(ctx, func(tx *sqlx.Tx) error {
		dt, err := s.keys.Resolve(ctx, tx, key)
		if err != nil {
			return err
		}
		store, err := s.stores.For(dt)
		if err != nil {
			return err
		}

		for v, err := range store.ValuesForKey(ctx, tx, key) {
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// ensureKey checks key against the registry and registers it when absent
func (s *AttributeService) ensureKey(ctx context.Context, q repositories.Querier, key string, dt entities.DataType, registered map[string]entities.DataType) error {
	existing, err := s.keys.Resolve(ctx, q, key)
	switch {
	case errors.Is(err, entities.ErrKeyNotFound):
		if err := s.registry.Register(ctx, q, key, dt); err != nil {
			return err
		}
		registered[key] = dt
		return nil
	case err != nil:
		return err
	case existing != dt:
		return &entities.TypeConflictError{Key: key, Existing: existing, Incoming: dt}
	}
	return nil
}

// translateRegistration turns a unique violation raised by a racing first
// registration into a type conflict against the now committed type.
func (s *AttributeService) translateRegistration(ctx context.Context, err error, incoming map[string]entities.DataType) error {
	if !database.IsUniqueViolation(err) {
		return err
	}

	log := logger.FromContext(ctx, s.logger)
	committed, lookupErr := s.registry.DeclaredTypes(ctx, s.store.DB, slices.Sorted(maps.Keys(incoming)))
	if lookupErr != nil {
		log.Warn("failed to read committed key types", zap.Error(lookupErr))
		return fmt.Errorf("key registration raced with another writer: %w", entities.ErrTypeConflict)
	}

	for _, key := range slices.Sorted(maps.Keys(incoming)) {
		if existing, ok := committed[key]; ok && existing != incoming[key] {
			return &entities.TypeConflictError{Key: key, Existing: existing, Incoming: incoming[key]}
		}
	}
	log.Info("key registration raced with another writer of the same type", zap.Error(err))
	return fmt.Errorf("key registration raced with another writer, retry the write: %w", entities.ErrTypeConflict)
}

// collectKeyTypes returns the type each key is written with across the batch
func collectKeyTypes(groups []entities.PulseAttributes) (map[string]entities.DataType, error) {
	types := map[string]entities.DataType{}
	for _, g := range groups {
		for _, attr := range g.Attributes {
			if err := entities.ValidateAttribute(attr); err != nil {
				return nil, err
			}
			if first, ok := types[attr.Name()]; ok && first != attr.Type() {
				return nil, &entities.TypeConflictError{Key: attr.Name(), Existing: first, Incoming: attr.Type()}
			}
			types[attr.Name()] = attr.Type()
		}
	}
	return types, nil
}

// readAttributes collects a pulse's attributes from every store
func readAttributes(ctx context.Context, q repositories.Querier, stores repositories.AttributeStores, pulseID uuid.UUID) ([]entities.Attribute, error) {
	attrs := []entities.Attribute{}
	for _, store := range stores.All() {
		found, err := store.ForPulse(ctx, q, pulseID)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, found...)
	}
	return attrs, nil
}
