package entities

import (
	"fmt"
	"time"
)

// Predicate is one filter condition. Implementations are StringEquals,
// FloatRange and CreationTimeRange.
type Predicate interface {
	// PredicateKey returns the key the predicate targets
	PredicateKey() string
	// Shape names the predicate form for error messages
	Shape() string

	sealedPredicate()
}

// StringEquals matches pulses having a string attribute key = value.
type StringEquals struct {
	Key   string
	Value string
}

func (p StringEquals) PredicateKey() string { return p.Key }
func (StringEquals) Shape() string          { return "string equality" }
func (StringEquals) sealedPredicate()       {}

// FloatRange matches pulses having a float attribute with Min <= value <= Max.
type FloatRange struct {
	Key string
	Min float64
	Max float64
}

func (p FloatRange) PredicateKey() string { return p.Key }
func (FloatRange) Shape() string          { return "float range" }
func (FloatRange) sealedPredicate()       {}

// CreationTimeRange matches pulses created within [Min, Max].
type CreationTimeRange struct {
	Min time.Time
	Max time.Time
}

func (CreationTimeRange) PredicateKey() string { return CreationTimeKey }
func (CreationTimeRange) Shape() string        { return "datetime range" }
func (CreationTimeRange) sealedPredicate()     {}

// ValidatePredicate checks a predicate independently of the registry
func ValidatePredicate(p Predicate) error {
	if p == nil {
		return NewValidationError("kv_pairs", "predicate is required")
	}
	switch pred := p.(type) {
	case StringEquals:
		if pred.Key == "" {
			return NewValidationError("key", "predicate key is required")
		}
		if pred.Key == CreationTimeKey {
			return &PredicateShapeError{Key: CreationTimeKey, DataType: "datetime", Shape: pred.Shape()}
		}
	case FloatRange:
		if pred.Key == "" {
			return NewValidationError("key", "predicate key is required")
		}
		if pred.Key == CreationTimeKey {
			return &PredicateShapeError{Key: CreationTimeKey, DataType: "datetime", Shape: pred.Shape()}
		}
	case CreationTimeRange:
		if pred.Min.IsZero() || pred.Max.IsZero() {
			return NewValidationError(CreationTimeKey, "min_value and max_value are required")
		}
	default:
		return NewValidationError("kv_pairs", fmt.Sprintf("unsupported predicate %T", p))
	}
	return nil
}
