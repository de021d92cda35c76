package entities

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors. The typed errors below match them through errors.Is.
var (
	ErrPulseNotFound       = errors.New("pulse not found")
	ErrDeviceNotFound      = errors.New("device not found")
	ErrKeyNotFound         = errors.New("attribute key not found")
	ErrColumnNotFound      = errors.New("pulse column not found")
	ErrTypeConflict        = errors.New("attribute key type conflict")
	ErrPredicateShape      = errors.New("predicate does not match key data type")
	ErrUnsupportedDataType = errors.New("unsupported data type")
	ErrInvalidInput        = errors.New("invalid input")
)

// TypeConflictError is returned when a key is written with a type different
// from the one it was registered with.
type TypeConflictError struct {
	Key      string
	Existing DataType
	Incoming DataType
}

func (e *TypeConflictError) Error() string {
	return fmt.Sprintf("Key %s already exists with data type '%s'. You gave '%s'.", e.Key, e.Existing, e.Incoming)
}

func (e *TypeConflictError) Is(target error) bool {
	return target == ErrTypeConflict
}

// PulseNotFoundError lists the pulse ids that could not be found
type PulseNotFoundError struct {
	IDs []uuid.UUID
}

func (e *PulseNotFoundError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("Pulse not found with id: %s", strings.Join(ids, ", "))
}

func (e *PulseNotFoundError) Is(target error) bool {
	return target == ErrPulseNotFound
}

// DeviceNotFoundError is returned when a pulse references an unknown device
type DeviceNotFoundError struct {
	ID uuid.UUID
}

func (e *DeviceNotFoundError) Error() string {
	if e.ID == uuid.Nil {
		return "Device not found"
	}
	return fmt.Sprintf("Device not found with id: %s", e.ID)
}

func (e *DeviceNotFoundError) Is(target error) bool {
	return target == ErrDeviceNotFound
}

// KeyNotFoundError is returned when a key is absent from the registry
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("Key %s does not exist.", e.Key)
}

func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// ColumnNotFoundError is returned when a filter asks for an unknown output column
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("Pulse column not found: %s", e.Column)
}

func (e *ColumnNotFoundError) Is(target error) bool {
	return target == ErrColumnNotFound
}

// PredicateShapeError is returned when a predicate's shape does not fit the key's type,
// e.g. a range predicate on a STRING key.
type PredicateShapeError struct {
	Key      string
	DataType DataType
	Shape    string
}

func (e *PredicateShapeError) Error() string {
	return fmt.Sprintf("Key %s has data type '%s' and cannot be filtered with a %s predicate.", e.Key, e.DataType, e.Shape)
}

func (e *PredicateShapeError) Is(target error) bool {
	return target == ErrPredicateShape
}

// UnsupportedDataTypeError is returned for type names outside the closed set
type UnsupportedDataTypeError struct {
	DataType string
}

func (e *UnsupportedDataTypeError) Error() string {
	return fmt.Sprintf("Data type %s not supported.", e.DataType)
}

func (e *UnsupportedDataTypeError) Is(target error) bool {
	return target == ErrUnsupportedDataType
}

// ConversionError is returned when a value cannot be represented as the declared type
type ConversionError struct {
	Key      string
	DataType DataType
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("Value of key %s cannot be cast to %s.", e.Key, e.DataType)
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
