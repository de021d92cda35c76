package filter

import (
	"time"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/google/uuid"
)

// column describes how a pulses column is scanned and presented
type column struct {
	// dest returns a fresh scan destination
	dest func() any
	// value converts a scanned destination to the result value
	value func(dest any) any
}

func uuidColumn() column {
	return column{
		dest:  func() any { return new(uuid.UUID) },
		value: func(d any) any { return *d.(*uuid.UUID) },
	}
}

func seriesColumn() column {
	return column{
		dest: func() any { return new(entities.FloatSeries) },
		value: func(d any) any {
			s := *d.(*entities.FloatSeries)
			if s == nil {
				return nil
			}
			return []float64(s)
		},
	}
}

var columns = map[string]column{
	"pulse_id":     uuidColumn(),
	"delays":       seriesColumn(),
	"signal":       seriesColumn(),
	"signal_error": seriesColumn(),
	"integration_time_ms": {
		dest:  func() any { return new(int64) },
		value: func(d any) any { return *d.(*int64) },
	},
	"creation_time": {
		dest:  func() any { return new(time.Time) },
		value: func(d any) any { return d.(*time.Time).UTC() },
	},
	"device_id": uuidColumn(),
}

// resolveColumns checks names against the pulses columns.
// An empty list selects pulse_id only.
func resolveColumns(names []string) ([]string, error) {
	if len(names) == 0 {
		return []string{"pulse_id"}, nil
	}
	for _, name := range names {
		if _, ok := columns[name]; !ok {
			return nil, &entities.ColumnNotFoundError{Column: name}
		}
	}
	return names, nil
}
