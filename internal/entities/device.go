package entities

import (
	"strings"

	"github.com/google/uuid"
)

// Device is an instrument that produces pulses.
type Device struct {
	DeviceID     uuid.UUID `db:"device_id"`
	FriendlyName string    `db:"friendly_name"` // Display name (e.g., "Glaze I")
}

// Validate checks if the device is valid
func (d *Device) Validate() error {
	if strings.TrimSpace(d.FriendlyName) == "" {
		return NewValidationError("friendly_name", "friendly name is required")
	}
	return nil
}
