package models

import (
	"strconv"
	"strings"
	"time"
)

// WeatherRecord is one weather report for a city. Records are produced by
// the external ingestion path; this service only reads them. NULL columns
// are represented as pointers.
type WeatherRecord struct {
	ID                 int64     `json:"id" db:"id"`
	City               string    `json:"city" db:"city"`
	Region             string    `json:"region" db:"region"`
	TemperatureCelsius *float64  `json:"temperature_celsius,omitempty" db:"temperature_celsius"`
	HumidityPct        *float64  `json:"humidity_pct,omitempty" db:"humidity_pct"`
	Condition          *string   `json:"condition,omitempty" db:"condition"`
	RecordedAt         time.Time `json:"recorded_at" db:"recorded_at"`
}

// RawRecordRow is a single CSV row from an ingestion input file:
// city,region,temperature_celsius,humidity_pct,condition,recorded_at
type RawRecordRow struct {
	City               string
	Region             string
	TemperatureCelsius string
	HumidityPct        string
	Condition          string
	RecordedAt         string
}

// ToRecord converts a RawRecordRow to a WeatherRecord. Empty measurement
// columns become NULL; city, region and recorded_at are mandatory.
func (r *RawRecordRow) ToRecord() (*WeatherRecord, error) {
	city := strings.TrimSpace(r.City)
	if city == "" {
		return nil, &ValidationError{
			Field:   "city",
			Value:   r.City,
			Message: "city is required",
		}
	}

	region := strings.TrimSpace(r.Region)
	if region == "" {
		return nil, &ValidationError{
			Field:   "region",
			Value:   r.Region,
			Message: "region is required",
		}
	}

	recordedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(r.RecordedAt))
	if err != nil {
		return nil, &ValidationError{
			Field:   "recorded_at",
			Value:   r.RecordedAt,
			Message: "invalid timestamp, expected RFC 3339",
		}
	}

	rec := &WeatherRecord{
		City:       city,
		Region:     region,
		RecordedAt: recordedAt.UTC(),
	}

	if v := strings.TrimSpace(r.TemperatureCelsius); v != "" {
		temp, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, &ValidationError{
				Field:   "temperature_celsius",
				Value:   r.TemperatureCelsius,
				Message: "temperature_celsius must be numeric",
			}
		}
		rec.TemperatureCelsius = &temp
	}

	if v := strings.TrimSpace(r.HumidityPct); v != "" {
		hum, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, &ValidationError{
				Field:   "humidity_pct",
				Value:   r.HumidityPct,
				Message: "humidity_pct must be numeric",
			}
		}
		rec.HumidityPct = &hum
	}

	if v := strings.TrimSpace(r.Condition); v != "" {
		rec.Condition = &v
	}

	return rec, nil
}

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
