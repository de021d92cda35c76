package repositories

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/asakaida/terastore/internal/entities"
	"github.com/google/uuid"
)

// PulseRepository defines the interface for pulse data access
type PulseRepository interface {
	// BatchCreate inserts pulses in one statement
	BatchCreate(ctx context.Context, q Querier, pulses []*entities.Pulse) error

	// Get retrieves a pulse by id.
	// Returns *entities.PulseNotFoundError if absent.
	Get(ctx context.Context, q Querier, id uuid.UUID) (*entities.Pulse, error)

	// GetMany retrieves the pulses among ids that exist, skipping the rest
	GetMany(ctx context.Context, q Querier, ids []uuid.UUID) ([]*entities.Pulse, error)

	// List retrieves a page of pulses
	List(ctx context.Context, q Querier, offset, limit int) ([]*entities.Pulse, error)

	// Exists checks if a pulse exists
	Exists(ctx context.Context, q Querier, id uuid.UUID) (bool, error)

	// MissingIDs returns the ids that have no pulse, in input order
	MissingIDs(ctx context.Context, q Querier, ids []uuid.UUID) ([]uuid.UUID, error)

	// DeleteMany removes pulses by id
	DeleteMany(ctx context.Context, q Querier, ids []uuid.UUID) (int64, error)

	// CreationTimeQuery returns a query selecting pulse_id of pulses created in [min, max]
	CreationTimeQuery(min, max time.Time) sq.SelectBuilder
}

// DeviceRepository defines the interface for device data access
type DeviceRepository interface {
	// Create inserts a device
	Create(ctx context.Context, q Querier, device *entities.Device) error

	// Get retrieves a device by id.
	// Returns *entities.DeviceNotFoundError if absent.
	Get(ctx context.Context, q Querier, id uuid.UUID) (*entities.Device, error)

	// List retrieves a page of devices
	List(ctx context.Context, q Querier, offset, limit int) ([]*entities.Device, error)

	// MissingIDs returns the ids that have no device, in input order
	MissingIDs(ctx context.Context, q Querier, ids []uuid.UUID) ([]uuid.UUID, error)
}
