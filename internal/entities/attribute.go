package entities

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// CreationTimeKey is the synthetic attribute backed by the pulse's own
// creation_time column. It cannot be written as a regular attribute.
const CreationTimeKey = "creation_time"

// Attribute is a typed key/value pair attached to a pulse.
// Implementations are StringAttribute and FloatAttribute.
type Attribute interface {
	// Name returns the attribute key (e.g., "angle", "substrate")
	Name() string
	// Type returns the value type the attribute carries
	Type() DataType
	// RawValue returns the value as stored (string or float64)
	RawValue() any

	sealed()
}

// StringAttribute is an attribute stored in the string attribute table.
type StringAttribute struct {
	Key   string
	Value string
}

func (a StringAttribute) Name() string   { return a.Key }
func (a StringAttribute) Type() DataType { return DataTypeString }
func (a StringAttribute) RawValue() any  { return a.Value }
func (StringAttribute) sealed()          {}

func (a StringAttribute) String() string {
	return fmt.Sprintf("%s = %q", a.Key, a.Value)
}

// FloatAttribute is an attribute stored in the float attribute table.
type FloatAttribute struct {
	Key   string
	Value float64
}

func (a FloatAttribute) Name() string   { return a.Key }
func (a FloatAttribute) Type() DataType { return DataTypeFloat }
func (a FloatAttribute) RawValue() any  { return a.Value }
func (FloatAttribute) sealed()          {}

func (a FloatAttribute) String() string {
	return fmt.Sprintf("%s = %g", a.Key, a.Value)
}

// NewAttribute builds the attribute variant matching dataType.
// The value must already have the Go type of dataType; integers are accepted for FLOAT.
func NewAttribute(key string, dataType DataType, value any) (Attribute, error) {
	var attr Attribute
	switch dataType {
	case DataTypeString:
		v, ok := value.(string)
		if !ok {
			return nil, &ConversionError{Key: key, DataType: dataType}
		}
		attr = StringAttribute{Key: key, Value: v}
	case DataTypeFloat:
		var v float64
		switch n := value.(type) {
		case float64:
			v = n
		case float32:
			v = float64(n)
		case int:
			v = float64(n)
		case int64:
			v = float64(n)
		default:
			return nil, &ConversionError{Key: key, DataType: dataType}
		}
		attr = FloatAttribute{Key: key, Value: v}
	default:
		return nil, &UnsupportedDataTypeError{DataType: string(dataType)}
	}

	if err := ValidateAttribute(attr); err != nil {
		return nil, err
	}
	return attr, nil
}

// ValidateAttribute checks that an attribute can be persisted
func ValidateAttribute(attr Attribute) error {
	if attr == nil {
		return NewValidationError("attribute", "attribute is required")
	}
	key := attr.Name()
	if strings.TrimSpace(key) == "" {
		return NewValidationError("key", "attribute key is required")
	}
	if key == CreationTimeKey {
		return NewValidationError("key", fmt.Sprintf("%s is a reserved key", CreationTimeKey))
	}
	if !attr.Type().Valid() {
		return &UnsupportedDataTypeError{DataType: string(attr.Type())}
	}
	if f, ok := attr.(FloatAttribute); ok && (math.IsNaN(f.Value) || math.IsInf(f.Value, 0)) {
		return NewValidationError("value", "float attribute value must be finite")
	}
	return nil
}

// AttributeRow is one physical row of a typed attribute table.
type AttributeRow struct {
	PulseID   uuid.UUID
	Attribute Attribute
}

// PulseAttributes groups the attributes to be written for one pulse.
type PulseAttributes struct {
	PulseID    uuid.UUID
	Attributes []Attribute
}

// Rows flattens the group into table rows
func (p *PulseAttributes) Rows() []AttributeRow {
	rows := make([]AttributeRow, 0, len(p.Attributes))
	for _, attr := range p.Attributes {
		rows = append(rows, AttributeRow{PulseID: p.PulseID, Attribute: attr})
	}
	return rows
}
