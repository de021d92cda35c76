package entities

import (
	"fmt"
	"strings"
)

// DataType is the declared value type of an attribute key.
// The set is closed: adding a type means extending this list,
// the Attribute variants and repositories.AttributeStores.
type DataType string

const (
	DataTypeString DataType = "string"
	DataTypeFloat  DataType = "float"
)

// DataTypes lists every supported attribute type.
var DataTypes = []DataType{DataTypeString, DataTypeFloat}

// ParseDataType converts a user supplied type name into a DataType
func ParseDataType(s string) (DataType, error) {
	switch DataType(strings.ToLower(strings.TrimSpace(s))) {
	case DataTypeString:
		return DataTypeString, nil
	case DataTypeFloat:
		return DataTypeFloat, nil
	}
	return "", &UnsupportedDataTypeError{DataType: s}
}

// Valid reports whether d is one of the supported types
func (d DataType) Valid() bool {
	return d == DataTypeString || d == DataTypeFloat
}

func (d DataType) String() string {
	return string(d)
}

// AttributeKey is a registry entry: one key, one declared type for its whole lifetime.
type AttributeKey struct {
	Key      string   `db:"key"`
	DataType DataType `db:"data_type"`
}

// String returns a string representation of the key
// Format: key:data_type
func (k *AttributeKey) String() string {
	return fmt.Sprintf("%s:%s", k.Key, k.DataType)
}
