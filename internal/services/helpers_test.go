package services

import (
	"context"
	"testing"
	"time"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/infrastructure/database"
	"github.com/asakaida/terastore/internal/repositories"
	"github.com/asakaida/terastore/internal/repositories/sqlstore"
	"github.com/asakaida/terastore/pkg/cache/memorycache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testEnv struct {
	store      *database.Store
	pulseRepo  repositories.PulseRepository
	registry   repositories.KeyRegistry
	stores     repositories.AttributeStores
	cache      *memorycache.Cache[entities.DataType]
	attributes *AttributeService
	pulses     *PulseService
	devices    *DeviceService
	device     *entities.Device
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := sqlstore.SetupTestStore(t)
	log := zaptest.NewLogger(t)

	pulseRepo := sqlstore.NewPulseRepository(store)
	deviceRepo := sqlstore.NewDeviceRepository(store)
	registry := sqlstore.NewKeyRegistry(store)
	stores := sqlstore.NewAttributeStores(store)
	keyCache := memorycache.New[entities.DataType](&memorycache.Config{MaxEntries: 100, EnableMetrics: true})

	attributes := NewAttributeService(store, pulseRepo, registry, stores, NewKeyResolver(registry, keyCache), log)
	env := &testEnv{
		store:      store,
		pulseRepo:  pulseRepo,
		registry:   registry,
		stores:     stores,
		cache:      keyCache,
		attributes: attributes,
		pulses:     NewPulseService(store, pulseRepo, deviceRepo, stores, attributes, log),
		devices:    NewDeviceService(store, deviceRepo),
	}

	device, err := env.devices.CreateDevice(context.Background(), "Glaze I")
	require.NoError(t, err)
	env.device = device
	return env
}

func (e *testEnv) pulseSpec(created time.Time, attrs ...entities.Attribute) *entities.PulseCreate {
	return &entities.PulseCreate{
		Delays:            []float64{0, 1, 2},
		Signal:            []float64{0.1, 0.4, 0.2},
		IntegrationTimeMS: 100,
		CreationTime:      created,
		DeviceID:          e.device.DeviceID,
		Attributes:        attrs,
	}
}

func (e *testEnv) createPulse(t *testing.T) uuid.UUID {
	t.Helper()

	pulse, err := e.pulses.CreatePulse(context.Background(), e.pulseSpec(time.Now()))
	require.NoError(t, err)
	return pulse.PulseID
}

func (e *testEnv) countPulses(t *testing.T) int {
	t.Helper()

	var n int
	require.NoError(t, e.store.DB.Get(&n, "SELECT COUNT(*) FROM pulses"))
	return n
}

func angle(v float64) entities.Attribute {
	return entities.FloatAttribute{Key: "angle", Value: v}
}

func substrate(v string) entities.Attribute {
	return entities.StringAttribute{Key: "substrate", Value: v}
}
