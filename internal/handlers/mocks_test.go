package handlers

import (
	"context"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/services/filter"
	"github.com/google/uuid"
)

// Mock DeviceService
type mockDeviceService struct {
	getDeviceFunc func(ctx context.Context, id uuid.UUID) (*entities.Device, error)
}

func (m *mockDeviceService) CreateDevice(ctx context.Context, friendlyName string) (*entities.Device, error) {
	return &entities.Device{DeviceID: uuid.New(), FriendlyName: friendlyName}, nil
}

func (m *mockDeviceService) GetDevice(ctx context.Context, id uuid.UUID) (*entities.Device, error) {
	if m.getDeviceFunc != nil {
		return m.getDeviceFunc(ctx, id)
	}
	return nil, &entities.DeviceNotFoundError{ID: id}
}

func (m *mockDeviceService) ListDevices(ctx context.Context, offset, limit int) ([]*entities.Device, error) {
	return []*entities.Device{}, nil
}

// Mock PulseService
type mockPulseService struct {
	listPulsesFunc func(ctx context.Context, offset, limit int) ([]*entities.Pulse, error)
}

func (m *mockPulseService) CreatePulsesWithAttributes(ctx context.Context, specs []*entities.PulseCreate) ([]uuid.UUID, error) {
	return []uuid.UUID{}, nil
}

func (m *mockPulseService) CreatePulse(ctx context.Context, spec *entities.PulseCreate) (*entities.Pulse, error) {
	return spec.NewPulse(), nil
}

func (m *mockPulseService) GetPulse(ctx context.Context, id uuid.UUID) (*entities.Pulse, error) {
	return nil, &entities.PulseNotFoundError{IDs: []uuid.UUID{id}}
}

func (m *mockPulseService) GetPulses(ctx context.Context, ids []uuid.UUID) ([]*entities.Pulse, error) {
	return []*entities.Pulse{}, nil
}

func (m *mockPulseService) ListPulses(ctx context.Context, offset, limit int) ([]*entities.Pulse, error) {
	if m.listPulsesFunc != nil {
		return m.listPulsesFunc(ctx, offset, limit)
	}
	return []*entities.Pulse{}, nil
}

func (m *mockPulseService) GetAnnotatedPulse(ctx context.Context, id uuid.UUID) (*entities.AnnotatedPulse, error) {
	return nil, &entities.PulseNotFoundError{IDs: []uuid.UUID{id}}
}

// Mock AttributeService
type mockAttributeService struct {
	listKeysFunc func(ctx context.Context) ([]entities.AttributeKey, error)
}

func (m *mockAttributeService) WriteOne(ctx context.Context, pulseID uuid.UUID, attr entities.Attribute) error {
	return nil
}

func (m *mockAttributeService) WriteBulk(ctx context.Context, groups []entities.PulseAttributes) error {
	return nil
}

func (m *mockAttributeService) ReadPulseAttributes(ctx context.Context, pulseID uuid.UUID) ([]entities.Attribute, error) {
	return []entities.Attribute{}, nil
}

func (m *mockAttributeService) ListKeys(ctx context.Context) ([]entities.AttributeKey, error) {
	if m.listKeysFunc != nil {
		return m.listKeysFunc(ctx)
	}
	return []entities.AttributeKey{}, nil
}

func (m *mockAttributeService) ValuesForKey(ctx context.Context, key string) ([]any, error) {
	return nil, &entities.KeyNotFoundError{Key: key}
}

// Mock Filterer
type mockFilterer struct {
	filterFunc func(ctx context.Context, predicates []entities.Predicate, columns []string) (*filter.Result, error)
}

func (m *mockFilterer) Filter(ctx context.Context, predicates []entities.Predicate, columns []string) (*filter.Result, error) {
	if m.filterFunc != nil {
		return m.filterFunc(ctx, predicates, columns)
	}
	return &filter.Result{Columns: []string{"pulse_id"}, Rows: [][]any{}}, nil
}

// Mock Pinger
type mockPinger struct {
	err error
}

func (m *mockPinger) HealthCheck(ctx context.Context) error {
	return m.err
}

func newMockServices() Services {
	return Services{
		Devices:    &mockDeviceService{},
		Pulses:     &mockPulseService{},
		Attributes: &mockAttributeService{},
		Filter:     &mockFilterer{},
		Health:     &mockPinger{},
	}
}
