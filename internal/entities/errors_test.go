package entities

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestErrors_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{name: "異常系: 型の衝突", err: &TypeConflictError{Key: "angle"}, sentinel: ErrTypeConflict},
		{name: "異常系: パルスが見つからない", err: &PulseNotFoundError{}, sentinel: ErrPulseNotFound},
		{name: "異常系: デバイスが見つからない", err: &DeviceNotFoundError{}, sentinel: ErrDeviceNotFound},
		{name: "異常系: キーが見つからない", err: &KeyNotFoundError{Key: "x"}, sentinel: ErrKeyNotFound},
		{name: "異常系: カラムが見つからない", err: &ColumnNotFoundError{Column: "x"}, sentinel: ErrColumnNotFound},
		{name: "異常系: 条件の形が不正", err: &PredicateShapeError{}, sentinel: ErrPredicateShape},
		{name: "異常系: 未対応の型", err: &UnsupportedDataTypeError{}, sentinel: ErrUnsupportedDataType},
		{name: "異常系: 入力検証", err: NewValidationError("f", "m"), sentinel: ErrInvalidInput},
		{name: "異常系: ラップされたエラー", err: fmt.Errorf("write failed: %w", &TypeConflictError{}), sentinel: ErrTypeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.sentinel)
			}
		})
	}
}

func TestErrors_Messages(t *testing.T) {
	id := uuid.MustParse("0b0c9a4e-3f0e-4f7b-9a53-2f1a8d1f6a10")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "異常系: 型の衝突",
			err:  &TypeConflictError{Key: "angle", Existing: DataTypeFloat, Incoming: DataTypeString},
			want: "Key angle already exists with data type 'float'. You gave 'string'.",
		},
		{
			name: "異常系: キーが見つからない",
			err:  &KeyNotFoundError{Key: "non-existent-key"},
			want: "Key non-existent-key does not exist.",
		},
		{
			name: "異常系: パルスが見つからない",
			err:  &PulseNotFoundError{IDs: []uuid.UUID{id}},
			want: "Pulse not found with id: 0b0c9a4e-3f0e-4f7b-9a53-2f1a8d1f6a10",
		},
		{
			name: "異常系: カラムが見つからない",
			err:  &ColumnNotFoundError{Column: "nonexistent_column"},
			want: "Pulse column not found: nonexistent_column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
