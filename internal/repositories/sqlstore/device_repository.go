package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/infrastructure/database"
	"github.com/asakaida/terastore/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const devicesTable = "devices"

// DeviceRepository implements repositories.DeviceRepository
type DeviceRepository struct {
	store *database.Store
}

var _ repositories.DeviceRepository = (*DeviceRepository)(nil)

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(store *database.Store) *DeviceRepository {
	return &DeviceRepository{store: store}
}

// Create inserts a device
func (r *DeviceRepository) Create(ctx context.Context, q repositories.Querier, device *entities.Device) error {
	if err := device.Validate(); err != nil {
		return fmt.Errorf("invalid device: %w", err)
	}

	query, args, err := r.store.Builder().
		Insert(devicesTable).
		Columns("device_id", "friendly_name").
		Values(device.DeviceID.String(), device.FriendlyName).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build device insert query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

// Get retrieves a device by id
func (r *DeviceRepository) Get(ctx context.Context, q repositories.Querier, id uuid.UUID) (*entities.Device, error) {
	query, args, err := r.store.Builder().
		Select("device_id", "friendly_name").
		From(devicesTable).
		Where(sq.Eq{"device_id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build device query: %w", err)
	}

	var device entities.Device
	err = sqlx.GetContext(ctx, q, &device, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entities.DeviceNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return &device, nil
}

// List retrieves a page of devices ordered by name
func (r *DeviceRepository) List(ctx context.Context, q repositories.Querier, offset, limit int) ([]*entities.Device, error) {
	if offset < 0 || limit < 0 {
		return nil, entities.NewValidationError("offset", "offset and limit must not be negative")
	}

	query, args, err := r.store.Builder().
		Select("device_id", "friendly_name").
		From(devicesTable).
		OrderBy("friendly_name", "device_id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build device list query: %w", err)
	}

	devices := []*entities.Device{}
	if err := sqlx.SelectContext(ctx, q, &devices, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

// MissingIDs returns the ids without a device
func (r *DeviceRepository) MissingIDs(ctx context.Context, q repositories.Querier, ids []uuid.UUID) ([]uuid.UUID, error) {
	found, err := existingIDs(ctx, q, r.store, devicesTable, "device_id", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check devices: %w", err)
	}
	return missing(ids, found), nil
}
