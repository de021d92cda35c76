package services

import (
	"context"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/infrastructure/database"
	"github.com/asakaida/terastore/internal/repositories"
	"github.com/google/uuid"
)

// DeviceServiceInterface defines the device operations
type DeviceServiceInterface interface {
	CreateDevice(ctx context.Context, friendlyName string) (*entities.Device, error)
	GetDevice(ctx context.Context, id uuid.UUID) (*entities.Device, error)
	ListDevices(ctx context.Context, offset, limit int) ([]*entities.Device, error)
}

// DeviceService handles device registration
type DeviceService struct {
	store   *database.Store
	devices repositories.DeviceRepository
}

var _ DeviceServiceInterface = (*DeviceService)(nil)

// NewDeviceService creates a new DeviceService
func NewDeviceService(store *database.Store, devices repositories.DeviceRepository) *DeviceService {
	return &DeviceService{
		store:   store,
		devices: devices,
	}
}

// CreateDevice registers a device under a fresh id
func (s *DeviceService) CreateDevice(ctx context.Context, friendlyName string) (*entities.Device, error) {
	device := &entities.Device{DeviceID: uuid.New(), FriendlyName: friendlyName}
	if err := s.devices.Create(ctx, s.store.DB, device); err != nil {
		return nil, err
	}
	return device, nil
}

// GetDevice retrieves a device by id
func (s *DeviceService) GetDevice(ctx context.Context, id uuid.UUID) (*entities.Device, error) {
	return s.devices.Get(ctx, s.store.DB, id)
}

// ListDevices retrieves a page of devices. A limit of 0 selects DefaultPageSize.
func (s *DeviceService) ListDevices(ctx context.Context, offset, limit int) ([]*entities.Device, error) {
	limit, err := pageLimit(offset, limit)
	if err != nil {
		return nil, err
	}
	return s.devices.List(ctx, s.store.DB, offset, limit)
}
