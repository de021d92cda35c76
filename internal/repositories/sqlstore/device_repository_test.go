package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/google/uuid"
)

func TestDeviceRepository(t *testing.T) {
	store := SetupTestStore(t)
	repo := NewDeviceRepository(store)
	ctx := context.Background()

	glaze := &entities.Device{DeviceID: uuid.New(), FriendlyName: "Glaze I"}
	aurora := &entities.Device{DeviceID: uuid.New(), FriendlyName: "Aurora"}

	t.Run("正常系: デバイスの作成と取得", func(t *testing.T) {
		for _, d := range []*entities.Device{glaze, aurora} {
			if err := repo.Create(ctx, store.DB, d); err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
		}

		got, err := repo.Get(ctx, store.DB, glaze.DeviceID)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if *got != *glaze {
			t.Errorf("Get() = %+v, want %+v", got, glaze)
		}
	})

	t.Run("正常系: 名前順の一覧", func(t *testing.T) {
		devices, err := repo.List(ctx, store.DB, 0, 10)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(devices) != 2 || devices[0].FriendlyName != "Aurora" || devices[1].FriendlyName != "Glaze I" {
			t.Errorf("Unexpected devices: %v", devices)
		}
	})

	t.Run("正常系: MissingIDs", func(t *testing.T) {
		ghost := uuid.New()
		got, err := repo.MissingIDs(ctx, store.DB, []uuid.UUID{glaze.DeviceID, ghost})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(got) != 1 || got[0] != ghost {
			t.Errorf("MissingIDs() = %v, want [%s]", got, ghost)
		}
	})

	t.Run("異常系: 名前なし", func(t *testing.T) {
		err := repo.Create(ctx, store.DB, &entities.Device{DeviceID: uuid.New()})
		if !errors.Is(err, entities.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got: %v", err)
		}
	})

	t.Run("異常系: 存在しないデバイス (DeviceNotFoundErrorを返す)", func(t *testing.T) {
		_, err := repo.Get(ctx, store.DB, uuid.New())
		if !errors.Is(err, entities.ErrDeviceNotFound) {
			t.Errorf("Expected ErrDeviceNotFound, got: %v", err)
		}
	})
}
