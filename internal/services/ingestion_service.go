package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/repository"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

// IngestionService loads weather record files into the records table. It
// plays the external producer that owns the records collection; the HTTP
// service itself never writes records.
type IngestionService struct {
	repo    repository.WeatherRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionResult contains ingestion statistics
type IngestionResult struct {
	TotalFiles        int
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
	Duration          time.Duration
	Errors            []string
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.WeatherRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// IngestDirectory ingests all CSV weather record files from a directory.
// Expected columns: city,region,temperature_celsius,humidity_pct,condition,recorded_at
func (s *IngestionService) IngestDirectory(ctx context.Context, dataDir string, batchSize int) (*IngestionResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[INGEST_START] Starting record ingestion", logging.Fields{
		"data_dir":   dataDir,
		"batch_size": batchSize,
		"stage":      "INITIALIZATION",
	})

	result := &IngestionResult{
		Errors: make([]string, 0),
	}

	// Read directory
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no data files found in %s", dataDir)
	}

	result.TotalFiles = len(files)

	s.logger.Info(ctx, "[INGEST_FILES] Found data files", logging.Fields{
		"file_count": len(files),
		"stage":      "FILE_DISCOVERY",
	})

	// Process each file
	for _, filePath := range files {
		fileResult, err := s.ingestFile(ctx, filePath, batchSize)
		if err != nil {
			errMsg := fmt.Sprintf("failed to ingest %s: %v", filePath, err)
			result.Errors = append(result.Errors, errMsg)
			s.logger.Error(ctx, "[INGEST_FILE_ERROR] File ingestion failed", logging.Fields{
				"file_path": filePath,
				"stage":     "FILE_PROCESSING",
			}, err)
			s.metrics.RecordIngestionError("file_error")
			continue
		}

		result.TotalRecords += fileResult.TotalRecords
		result.SuccessfulRecords += fileResult.SuccessfulRecords
		result.FailedRecords += fileResult.FailedRecords

		s.logger.Info(ctx, "[INGEST_FILE_SUCCESS] File ingested successfully", logging.Fields{
			"file_path":          filePath,
			"total_records":      fileResult.TotalRecords,
			"successful_records": fileResult.SuccessfulRecords,
			"failed_records":     fileResult.FailedRecords,
			"stage":              "FILE_COMPLETE",
		})
	}

	result.Duration = time.Since(startTime)
	s.metrics.IngestionDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[INGEST_COMPLETE] Record ingestion completed", logging.Fields{
		"total_files":        result.TotalFiles,
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
		"error_count":        len(result.Errors),
		"stage":              "COMPLETE",
	})

	return result, nil
}

// FileIngestionResult contains per-file ingestion statistics
type FileIngestionResult struct {
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
}

// ingestFile ingests a single CSV record file
func (s *IngestionService) ingestFile(ctx context.Context, filePath string, batchSize int) (*FileIngestionResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 6

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	result := &FileIngestionResult{}
	batch := make([]*models.WeatherRecord, 0, batchSize)

	for i, cols := range rows {
		if i == 0 && isHeaderRow(cols) {
			continue
		}

		result.TotalRecords++

		row := models.RawRecordRow{
			City:               cols[0],
			Region:             cols[1],
			TemperatureCelsius: cols[2],
			HumidityPct:        cols[3],
			Condition:          cols[4],
			RecordedAt:         cols[5],
		}

		record, err := row.ToRecord()
		if err != nil {
			result.FailedRecords++
			s.metrics.RecordIngestionError("conversion_error")
			s.logger.Warn(ctx, "[INGEST_ROW_SKIPPED] Row failed validation", logging.Fields{
				"file_path": filePath,
				"row":       i + 1,
				"reason":    err.Error(),
			})
			continue
		}

		batch = append(batch, record)

		// Flush batch when full
		if len(batch) >= batchSize {
			if err := s.repo.CreateWeatherRecordsBatch(ctx, batch); err != nil {
				return nil, fmt.Errorf("failed to insert batch: %w", err)
			}
			result.SuccessfulRecords += len(batch)
			batch = batch[:0]
		}
	}

	// Flush remaining records
	if len(batch) > 0 {
		if err := s.repo.CreateWeatherRecordsBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to insert final batch: %w", err)
		}
		result.SuccessfulRecords += len(batch)
	}

	return result, nil
}

// isHeaderRow reports whether a first CSV row is the column header.
func isHeaderRow(cols []string) bool {
	return len(cols) > 0 && strings.EqualFold(strings.TrimSpace(cols[0]), "city")
}
