package services

import (
	"context"
	"fmt"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/infrastructure/database"
	"github.com/asakaida/terastore/internal/infrastructure/logger"
	"github.com/asakaida/terastore/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// DefaultPageSize is used when a list call gives no limit
	DefaultPageSize = 100
	// MaxPageSize is the largest accepted list limit
	MaxPageSize = 100
)

// PulseServiceInterface defines the pulse operations
type PulseServiceInterface interface {
	CreatePulsesWithAttributes(ctx context.Context, specs []*entities.PulseCreate) ([]uuid.UUID, error)
	CreatePulse(ctx context.Context, spec *entities.PulseCreate) (*entities.Pulse, error)
	GetPulse(ctx context.Context, id uuid.UUID) (*entities.Pulse, error)
	GetPulses(ctx context.Context, ids []uuid.UUID) ([]*entities.Pulse, error)
	ListPulses(ctx context.Context, offset, limit int) ([]*entities.Pulse, error)
	GetAnnotatedPulse(ctx context.Context, id uuid.UUID) (*entities.AnnotatedPulse, error)
}

// PulseService creates pulses together with their attributes.
type PulseService struct {
	store      *database.Store
	pulses     repositories.PulseRepository
	devices    repositories.DeviceRepository
	stores     repositories.AttributeStores
	attributes *AttributeService
	logger     *zap.Logger
}

var _ PulseServiceInterface = (*PulseService)(nil)

// NewPulseService creates a new PulseService
func NewPulseService(
	store *database.Store,
	pulses repositories.PulseRepository,
	devices repositories.DeviceRepository,
	stores repositories.AttributeStores,
	attributes *AttributeService,
	log *zap.Logger,
) *PulseService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PulseService{
		store:      store,
		pulses:     pulses,
		devices:    devices,
		stores:     stores,
		attributes: attributes,
		logger:     log,
	}
}

// CreatePulsesWithAttributes stores pulses and then their attributes.
//
// Pulses are committed first. If writing the attributes fails, the new pulses
// are deleted again so that either everything or nothing of the call persists.
// The returned ids are in the order of specs.
func (s *PulseService) CreatePulsesWithAttributes(ctx context.Context, specs []*entities.PulseCreate) ([]uuid.UUID, error) {
	if len(specs) == 0 {
		return []uuid.UUID{}, nil
	}
	for _, spec := range specs {
		if spec == nil {
			return nil, entities.NewValidationError("pulses", "pulse is required")
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
	}
	groups, err := s.createPulses(ctx, specs)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(groups))
	for i, g := range groups {
		ids[i] = g.PulseID
	}

	if err := s.attributes.WriteBulk(ctx, groups); err != nil {
		return nil, s.compensate(ctx, ids, err)
	}
	return ids, nil
}

// createPulses inserts the pulses of specs and returns their attribute groups
func (s *PulseService) createPulses(ctx context.Context, specs []*entities.PulseCreate) ([]entities.PulseAttributes, error) {
	pulses := make([]*entities.Pulse, len(specs))
	groups := make([]entities.PulseAttributes, len(specs))
	for i, spec := range specs {
		pulses[i] = spec.NewPulse()
		groups[i] = entities.PulseAttributes{PulseID: pulses[i].PulseID, Attributes: spec.Attributes}
	}
	// A conflict inside the batch is known before anything is written
	if _, err := collectKeyTypes(groups); err != nil {
		return nil, err
	}

	err := s.store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkDevices(ctx, tx, pulses); err != nil {
			return err
		}
		return s.pulses.BatchCreate(ctx, tx, pulses)
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *PulseService) checkDevices(ctx context.Context, q repositories.Querier, pulses []*entities.Pulse) error {
	ids := make([]uuid.UUID, 0, len(pulses))
	for _, p := range pulses {
		ids = append(ids, p.DeviceID)
	}
	missingIDs, err := s.devices.MissingIDs(ctx, q, ids)
	if err != nil {
		return err
	}
	if len(missingIDs) > 0 {
		return &entities.DeviceNotFoundError{ID: missingIDs[0]}
	}
	return nil
}

// compensate deletes the pulses created by a failed call and returns cause,
// combined with the cleanup error if the delete fails too.
func (s *PulseService) compensate(ctx context.Context, ids []uuid.UUID, cause error) error {
	log := logger.FromContext(ctx, s.logger)

	err := s.store.InTx(ctx, func(tx *sqlx.Tx) error {
		// Stray attribute rows are removed directly for drivers without cascading deletes
		for _, store := range s.stores.All() {
			if _, err := store.DeleteForPulses(ctx, tx, ids); err != nil {
				return err
			}
		}
		deleted, err := s.pulses.DeleteMany(ctx, tx, ids)
		if err != nil {
			return err
		}
		if deleted != int64(len(ids)) {
			log.Warn("compensating delete removed fewer pulses than created",
				zap.Int64("deleted", deleted),
				zap.Int("created", len(ids)))
		}
		return nil
	})
	if err != nil {
		log.Error("failed to delete pulses after attribute write failure",
			zap.Int("pulses", len(ids)),
			zap.NamedError("cause", cause),
			zap.Error(err))
		return multierr.Append(cause, fmt.Errorf("failed to delete created pulses: %w", err))
	}

	log.Debug("rolled back pulse creation", zap.Int("pulses", len(ids)), zap.Error(cause))
	return cause
}

// CreatePulse stores a single pulse without attributes
func (s *PulseService) CreatePulse(ctx context.Context, spec *entities.PulseCreate) (*entities.Pulse, error) {
	if spec == nil {
		return nil, entities.NewValidationError("pulse", "pulse is required")
	}
	if len(spec.Attributes) > 0 {
		return nil, entities.NewValidationError("attributes", "use CreatePulsesWithAttributes to store attributes")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	pulse := spec.NewPulse()
	err := s.store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkDevices(ctx, tx, []*entities.Pulse{pulse}); err != nil {
			return err
		}
		return s.pulses.BatchCreate(ctx, tx, []*entities.Pulse{pulse})
	})
	if err != nil {
		return nil, err
	}
	return pulse, nil
}

// GetPulse retrieves a pulse by id
func (s *PulseService) GetPulse(ctx context.Context, id uuid.UUID) (*entities.Pulse, error) {
	return s.pulses.Get(ctx, s.store.DB, id)
}

// GetPulses retrieves the pulses among ids that exist
func (s *PulseService) GetPulses(ctx context.Context, ids []uuid.UUID) ([]*entities.Pulse, error) {
	return s.pulses.GetMany(ctx, s.store.DB, ids)
}

// ListPulses retrieves a page of pulses. A limit of 0 selects DefaultPageSize.
func (s *PulseService) ListPulses(ctx context.Context, offset, limit int) ([]*entities.Pulse, error) {
	limit, err := pageLimit(offset, limit)
	if err != nil {
		return nil, err
	}
	return s.pulses.List(ctx, s.store.DB, offset, limit)
}

// GetAnnotatedPulse retrieves a pulse with all of its attributes
func (s *PulseService) GetAnnotatedPulse(ctx context.Context, id uuid.UUID) (*entities.AnnotatedPulse, error) {
	var annotated *entities.AnnotatedPulse
	err := s.store.InTx(ctx, func(tx *sqlx.Tx) error {
		pulse, err := s.pulses.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		attrs, err := readAttributes(ctx, tx, s.stores, id)
		if err != nil {
			return err
		}
		annotated = &entities.AnnotatedPulse{Pulse: *pulse, Attributes: attrs}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return annotated, nil
}

func pageLimit(offset, limit int) (int, error) {
	if offset < 0 {
		return 0, entities.NewValidationError("offset", "offset must not be negative")
	}
	switch {
	case limit == 0:
		return DefaultPageSize, nil
	case limit < 0:
		return 0, entities.NewValidationError("limit", "limit must not be negative")
	case limit > MaxPageSize:
		return 0, entities.NewValidationError("limit", fmt.Sprintf("limit must be less than or equal to %d", MaxPageSize))
	}
	return limit, nil
}
