package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/infrastructure/database"
	"github.com/google/uuid"
)

func seedDevice(t *testing.T, store *database.Store) *entities.Device {
	t.Helper()

	device := &entities.Device{DeviceID: uuid.New(), FriendlyName: "Glaze I"}
	if err := NewDeviceRepository(store).Create(context.Background(), store.DB, device); err != nil {
		t.Fatalf("Failed to create device: %v", err)
	}
	return device
}

func newTestPulse(deviceID uuid.UUID, created time.Time) *entities.Pulse {
	create := &entities.PulseCreate{
		Delays:            []float64{0, 1e-10, 2e-10},
		Signal:            []float64{0.5, -0.25, 1},
		IntegrationTimeMS: 100,
		CreationTime:      created,
		DeviceID:          deviceID,
	}
	return create.NewPulse()
}

func seedPulses(t *testing.T, store *database.Store, n int) []*entities.Pulse {
	t.Helper()

	device := seedDevice(t, store)
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	pulses := make([]*entities.Pulse, n)
	for i := range pulses {
		pulses[i] = newTestPulse(device.DeviceID, base.Add(time.Duration(i)*time.Hour))
	}
	if err := NewPulseRepository(store).BatchCreate(context.Background(), store.DB, pulses); err != nil {
		t.Fatalf("Failed to create pulses: %v", err)
	}
	return pulses
}

func registerKey(t *testing.T, store *database.Store, key string, dataType entities.DataType) {
	t.Helper()

	if err := NewKeyRegistry(store).Register(context.Background(), store.DB, key, dataType); err != nil {
		t.Fatalf("Failed to register key %s: %v", key, err)
	}
}
