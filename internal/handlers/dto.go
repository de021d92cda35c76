package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/google/uuid"
)

// Request and response bodies of the HTTP API.

type deviceCreateRequest struct {
	FriendlyName string `json:"friendly_name"`
}

type deviceResponse struct {
	DeviceID     uuid.UUID `json:"device_id"`
	FriendlyName string    `json:"friendly_name"`
}

func newDeviceResponse(d *entities.Device) deviceResponse {
	return deviceResponse{DeviceID: d.DeviceID, FriendlyName: d.FriendlyName}
}

// attributeBody is a key/value pair. data_type may be omitted, in which case
// it follows the JSON type of value.
type attributeBody struct {
	Key      string            `json:"key"`
	Value    any               `json:"value"`
	DataType entities.DataType `json:"data_type,omitempty"`
}

func (b attributeBody) toAttribute() (entities.Attribute, error) {
	dt := b.DataType
	if dt == "" {
		switch b.Value.(type) {
		case string:
			dt = entities.DataTypeString
		case float64:
			dt = entities.DataTypeFloat
		default:
			return nil, entities.NewValidationError("value", fmt.Sprintf("value of key %s must be a string or a number", b.Key))
		}
	}
	parsed, err := entities.ParseDataType(string(dt))
	if err != nil {
		return nil, err
	}
	return entities.NewAttribute(b.Key, parsed, b.Value)
}

func toAttributes(bodies []attributeBody) ([]entities.Attribute, error) {
	attrs := make([]entities.Attribute, 0, len(bodies))
	for _, b := range bodies {
		attr, err := b.toAttribute()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func newAttributeBodies(attrs []entities.Attribute) []attributeBody {
	bodies := make([]attributeBody, 0, len(attrs))
	for _, a := range attrs {
		bodies = append(bodies, attributeBody{Key: a.Name(), Value: a.RawValue(), DataType: a.Type()})
	}
	return bodies
}

type pulseCreateRequest struct {
	Delays            []float64       `json:"delays"`
	Signal            []float64       `json:"signal"`
	SignalError       []float64       `json:"signal_error"`
	IntegrationTimeMS int64           `json:"integration_time_ms"`
	CreationTime      flexTime        `json:"creation_time"`
	DeviceID          uuid.UUID       `json:"device_id"`
	PulseAttributes   []attributeBody `json:"pulse_attributes"`
}

func (p *pulseCreateRequest) toEntity() (*entities.PulseCreate, error) {
	attrs, err := toAttributes(p.PulseAttributes)
	if err != nil {
		return nil, err
	}
	return &entities.PulseCreate{
		Delays:            p.Delays,
		Signal:            p.Signal,
		SignalError:       p.SignalError,
		IntegrationTimeMS: p.IntegrationTimeMS,
		CreationTime:      time.Time(p.CreationTime),
		DeviceID:          p.DeviceID,
		Attributes:        attrs,
	}, nil
}

type pulseResponse struct {
	PulseID           uuid.UUID `json:"pulse_id"`
	Delays            []float64 `json:"delays"`
	Signal            []float64 `json:"signal"`
	SignalError       []float64 `json:"signal_error"`
	IntegrationTimeMS int64     `json:"integration_time_ms"`
	CreationTime      time.Time `json:"creation_time"`
	DeviceID          uuid.UUID `json:"device_id"`
}

func newPulseResponse(p *entities.Pulse) pulseResponse {
	return pulseResponse{
		PulseID:           p.PulseID,
		Delays:            p.Delays,
		Signal:            p.Signal,
		SignalError:       p.SignalError,
		IntegrationTimeMS: p.IntegrationTimeMS,
		CreationTime:      p.CreationTime,
		DeviceID:          p.DeviceID,
	}
}

func newPulseResponses(pulses []*entities.Pulse) []pulseResponse {
	resp := make([]pulseResponse, 0, len(pulses))
	for _, p := range pulses {
		resp = append(resp, newPulseResponse(p))
	}
	return resp
}

type annotatedPulseResponse struct {
	pulseResponse
	PulseAttributes []attributeBody `json:"pulse_attributes"`
}

type pulseAttributesRequest struct {
	PulseID         uuid.UUID       `json:"pulse_id"`
	PulseAttributes []attributeBody `json:"pulse_attributes"`
}

type keyResponse struct {
	Name     string            `json:"name"`
	DataType entities.DataType `json:"data_type"`
}

type filterRequest struct {
	KVPairs []predicateBody `json:"kv_pairs"`
	Columns []string        `json:"columns"`
}

// predicateBody is one filter condition. value selects string equality;
// min_value and max_value select a float range, or a datetime range on creation_time.
type predicateBody struct {
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
	MinValue json.RawMessage `json:"min_value"`
	MaxValue json.RawMessage `json:"max_value"`
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func (p predicateBody) toPredicate() (entities.Predicate, error) {
	switch {
	case present(p.Value):
		var value string
		if err := json.Unmarshal(p.Value, &value); err != nil {
			return nil, entities.NewValidationError("value", fmt.Sprintf("value of key %s must be a string", p.Key))
		}
		return entities.StringEquals{Key: p.Key, Value: value}, nil

	case present(p.MinValue) && present(p.MaxValue):
		if p.Key == entities.CreationTimeKey {
			var min, max flexTime
			if err := json.Unmarshal(p.MinValue, &min); err != nil {
				return nil, err
			}
			if err := json.Unmarshal(p.MaxValue, &max); err != nil {
				return nil, err
			}
			return entities.CreationTimeRange{Min: time.Time(min), Max: time.Time(max)}, nil
		}

		var min, max float64
		if json.Unmarshal(p.MinValue, &min) != nil || json.Unmarshal(p.MaxValue, &max) != nil {
			return nil, entities.NewValidationError("min_value", fmt.Sprintf("range bounds of key %s must be numbers", p.Key))
		}
		return entities.FloatRange{Key: p.Key, Min: min, Max: max}, nil
	}
	return nil, entities.NewValidationError("kv_pairs", fmt.Sprintf("predicate on key %s needs value or min_value and max_value", p.Key))
}

// timeLayouts are tried in order. Times without a zone are taken as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// flexTime accepts ISO 8601 timestamps with or without a zone offset
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return entities.NewValidationError("datetime", "datetime must be a string")
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = flexTime(parsed)
			return nil
		}
	}
	return entities.NewValidationError("datetime", fmt.Sprintf("invalid datetime %q", s))
}
