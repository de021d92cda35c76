package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FloatSeries is a list of floats stored as a JSON array column.
// A nil series is stored as NULL.
type FloatSeries []float64

// Value implements driver.Valuer
func (s FloatSeries) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal([]float64(s))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal float series: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (s *FloatSeries) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into FloatSeries", src)
	}

	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to unmarshal float series: %w", err)
	}
	*s = values
	return nil
}

// Pulse is a single measurement produced by a device.
type Pulse struct {
	PulseID           uuid.UUID   `db:"pulse_id"`
	Delays            FloatSeries `db:"delays"`       // Sample times
	Signal            FloatSeries `db:"signal"`       // Measured values, one per delay
	SignalError       FloatSeries `db:"signal_error"` // Optional, one per delay
	IntegrationTimeMS int64       `db:"integration_time_ms"`
	CreationTime      time.Time   `db:"creation_time"`
	DeviceID          uuid.UUID   `db:"device_id"`
}

// PulseCreate is the payload for creating a pulse, optionally with attributes.
type PulseCreate struct {
	Delays            []float64
	Signal            []float64
	SignalError       []float64
	IntegrationTimeMS int64
	CreationTime      time.Time
	DeviceID          uuid.UUID
	Attributes        []Attribute
}

// Validate checks if the payload describes a storable pulse
func (p *PulseCreate) Validate() error {
	if p.DeviceID == uuid.Nil {
		return NewValidationError("device_id", "device ID is required")
	}
	if len(p.Delays) == 0 {
		return NewValidationError("delays", "delays are required")
	}
	if len(p.Signal) != len(p.Delays) {
		return NewValidationError("signal", fmt.Sprintf("expected %d signal values, got %d", len(p.Delays), len(p.Signal)))
	}
	if p.SignalError != nil && len(p.SignalError) != len(p.Delays) {
		return NewValidationError("signal_error", fmt.Sprintf("expected %d signal error values, got %d", len(p.Delays), len(p.SignalError)))
	}
	if p.IntegrationTimeMS < 0 {
		return NewValidationError("integration_time_ms", "integration time must not be negative")
	}
	if p.CreationTime.IsZero() {
		return NewValidationError("creation_time", "creation time is required")
	}
	for _, attr := range p.Attributes {
		if err := ValidateAttribute(attr); err != nil {
			return err
		}
	}
	return nil
}

// NewPulse builds the stored pulse for a payload with a fresh id.
// Creation time is normalised to UTC so range predicates compare consistently.
func (p *PulseCreate) NewPulse() *Pulse {
	pulse := &Pulse{
		PulseID:           uuid.New(),
		Delays:            FloatSeries(p.Delays),
		Signal:            FloatSeries(p.Signal),
		IntegrationTimeMS: p.IntegrationTimeMS,
		CreationTime:      p.CreationTime.UTC(),
		DeviceID:          p.DeviceID,
	}
	if p.SignalError != nil {
		pulse.SignalError = FloatSeries(p.SignalError)
	}
	return pulse
}

// AnnotatedPulse is a pulse together with all of its attributes.
type AnnotatedPulse struct {
	Pulse
	Attributes []Attribute
}
