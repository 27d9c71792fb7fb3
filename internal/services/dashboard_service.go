package services

import (
	"context"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/report"
	"weather-dashboard/internal/repository"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

// recentReadingsLimit caps the sensor panel at the five newest readings.
const recentReadingsLimit = 5

// DashboardService assembles the data behind the dashboard page
type DashboardService struct {
	repo    repository.WeatherRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repo repository.WeatherRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *DashboardService {
	return &DashboardService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// RegionViews fetches every weather record and reduces it to the region
// groupings: the latest record per city, cities ascending inside regions,
// regions ascending. A storage failure yields no partial result.
func (s *DashboardService) RegionViews(ctx context.Context, query string) ([]report.RegionView, error) {
	records, err := s.repo.ListWeatherRecords(ctx)
	if err != nil {
		return nil, err
	}

	timer := s.metrics.NewTimer(s.metrics.ReportBuildDuration)
	views := report.BuildRegionViews(records, query)
	timer.ObserveDuration()

	s.logger.Debug(ctx, "[DASHBOARD_REPORT] Region report built", logging.Fields{
		"record_count": len(records),
		"region_count": len(views),
		"query":        query,
	})

	return views, nil
}

// RecentSensorReadings returns the newest sensor readings, newest first.
func (s *DashboardService) RecentSensorReadings(ctx context.Context) ([]models.SensorReading, error) {
	return s.repo.LatestSensorReadings(ctx, recentReadingsLimit)
}

// HealthCheck reports whether the backing store is reachable.
func (s *DashboardService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
