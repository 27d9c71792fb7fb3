package repository

import (
	"context"
	"fmt"
	"time"

	"weather-dashboard/internal/models"
	"weather-dashboard/pkg/database"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

// WeatherRepository provides data access for weather records and sensor
// readings. The dashboard reads records unfiltered; all aggregation happens
// in process, so no query here encodes dashboard semantics.
type WeatherRepository interface {
	// Record operations
	ListWeatherRecords(ctx context.Context) ([]models.WeatherRecord, error)
	CreateWeatherRecordsBatch(ctx context.Context, records []*models.WeatherRecord) error

	// Sensor operations
	InsertSensorReading(ctx context.Context, reading *models.SensorReading) error
	LatestSensorReadings(ctx context.Context, limit int) ([]models.SensorReading, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// weatherRepository implements WeatherRepository
type weatherRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewWeatherRepository creates a new weather repository
func NewWeatherRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) WeatherRepository {
	return &weatherRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListWeatherRecords retrieves every weather record. The result feeds the
// in-process aggregation pipeline, which owns filtering and ordering.
func (r *weatherRepository) ListWeatherRecords(ctx context.Context) ([]models.WeatherRecord, error) {
	query := `
		SELECT id, city, region,
		       temperature_celsius, humidity_pct, condition,
		       recorded_at
		FROM records
	`

	var records []models.WeatherRecord
	err := r.db.SelectContext(ctx, "list_records", &records, query)

	if err != nil {
		return nil, fmt.Errorf("failed to list weather records: %w", err)
	}

	return records, nil
}

// CreateWeatherRecordsBatch inserts multiple records in a single transaction
func (r *weatherRepository) CreateWeatherRecordsBatch(ctx context.Context, records []*models.WeatherRecord) error {
	if len(records) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.IngestionBatchSize.Observe(float64(len(records)))
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch insert completed", logging.Fields{
			"count":       len(records),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	// Begin transaction
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Prepare statement
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (
			city, region,
			temperature_celsius, humidity_pct, condition,
			recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	// Execute batch
	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.City,
			rec.Region,
			rec.TemperatureCelsius,
			rec.HumidityPct,
			rec.Condition,
			rec.RecordedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecordsTotal.Add(float64(len(records)))

	return nil
}

// InsertSensorReading appends one sensor reading and fills in its assigned id
func (r *weatherRepository) InsertSensorReading(ctx context.Context, reading *models.SensorReading) error {
	query := `
		INSERT INTO sensors (temperature, humidity, recorded_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		reading.Temperature,
		reading.Humidity,
		reading.RecordedAt,
	).Scan(&reading.ID)

	if err != nil {
		r.metrics.RecordDBError("insert_sensor_error")
		return fmt.Errorf("failed to insert sensor reading: %w", err)
	}

	r.metrics.RecordSensorReading()

	r.logger.Debug(ctx, "[REPO_INSERT_SENSOR] Sensor reading stored", logging.Fields{
		"id":          reading.ID,
		"recorded_at": reading.RecordedAt,
	})

	return nil
}

// LatestSensorReadings retrieves the most recent readings, newest first.
// Equal timestamps order by insertion id so the result is deterministic.
func (r *weatherRepository) LatestSensorReadings(ctx context.Context, limit int) ([]models.SensorReading, error) {
	query := `
		SELECT id, temperature, humidity, recorded_at
		FROM sensors
		ORDER BY recorded_at DESC, id DESC
		LIMIT $1
	`

	var readings []models.SensorReading
	err := r.db.SelectContext(ctx, "latest_sensor_readings", &readings, query, limit)

	if err != nil {
		return nil, fmt.Errorf("failed to list sensor readings: %w", err)
	}

	return readings, nil
}

// HealthCheck performs a repository health check
func (r *weatherRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
