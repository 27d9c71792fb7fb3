package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// SensorReading is one temperature/humidity measurement posted by a device.
// The timestamp is always assigned by the server at insert time; devices
// cannot backdate readings.
type SensorReading struct {
	ID          int64     `json:"id" db:"id"`
	Temperature float64   `json:"temperature" db:"temperature"`
	Humidity    float64   `json:"humidity" db:"humidity"`
	RecordedAt  time.Time `json:"recorded_at" db:"recorded_at"`
}

// SensorPayload is the decoded POST /api/sensor body. Fields stay raw JSON
// so absent, null and wrongly-typed values can each be rejected with a
// precise message instead of being silently coerced.
type SensorPayload struct {
	Temperature json.RawMessage `json:"temperature"`
	Humidity    json.RawMessage `json:"humidity"`
}

// ToReading validates the payload and builds a SensorReading stamped with
// the given server time. Each field must be present and either a JSON
// number or a string holding one; "25.5" is accepted, "abc" is not.
func (p *SensorPayload) ToReading(now time.Time) (*SensorReading, error) {
	temp, err := numberField("temperature", p.Temperature)
	if err != nil {
		return nil, err
	}

	hum, err := numberField("humidity", p.Humidity)
	if err != nil {
		return nil, err
	}

	return &SensorReading{
		Temperature: temp,
		Humidity:    hum,
		RecordedAt:  now.UTC(),
	}, nil
}

// numberField decodes one raw JSON value as a finite float64.
func numberField(field string, raw json.RawMessage) (float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, &ValidationError{
			Field:   field,
			Value:   "",
			Message: field + " is required",
		}
	}

	var n float64
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, &ValidationError{
				Field:   field,
				Value:   s,
				Message: field + " must be numeric",
			}
		}
		return parsed, nil
	}

	return 0, &ValidationError{
		Field:   field,
		Value:   string(trimmed),
		Message: field + " must be a number or numeric string",
	}
}
