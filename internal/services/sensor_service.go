package services

import (
	"context"
	"time"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/repository"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

// SensorService validates and persists incoming sensor readings
type SensorService struct {
	repo    repository.WeatherRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewSensorService creates a new sensor service
func NewSensorService(repo repository.WeatherRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *SensorService {
	return &SensorService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// RecordReading validates a sensor payload and stores it with a
// server-assigned timestamp. A *models.ValidationError means the payload
// was rejected and nothing was persisted; any other error is a storage
// failure.
func (s *SensorService) RecordReading(ctx context.Context, payload models.SensorPayload) (*models.SensorReading, error) {
	reading, err := payload.ToReading(time.Now())
	if err != nil {
		s.logger.Warn(ctx, "[SENSOR_REJECTED] Sensor payload failed validation", logging.Fields{
			"reason": err.Error(),
		})
		return nil, err
	}

	if err := s.repo.InsertSensorReading(ctx, reading); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "[SENSOR_STORED] Sensor reading stored", logging.Fields{
		"id":          reading.ID,
		"temperature": reading.Temperature,
		"humidity":    reading.Humidity,
		"recorded_at": reading.RecordedAt,
	})

	return reading, nil
}
