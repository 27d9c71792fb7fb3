package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"

	"weather-dashboard/internal/config"
	"weather-dashboard/internal/repository"
	"weather-dashboard/internal/services"
	"weather-dashboard/pkg/database"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

func main() {
	// Parse command-line flags
	dataDir := flag.String("data-dir", "./wx_data", "Directory containing weather record CSV files")
	batchSize := flag.Int("batch-size", 1000, "Number of records to insert in each batch")
	schedule := flag.String("schedule", "", "Cron expression; when set, ingestion repeats on this schedule")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("weather-ingester", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[INGESTER_START] Starting weather record ingestion", logging.Fields{
		"version":    "1.0.0",
		"data_dir":   *dataDir,
		"batch_size": *batchSize,
		"schedule":   *schedule,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("weather_ingester")

	// Initialize database
	dbConfig := &database.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repository and service
	weatherRepo := repository.NewWeatherRepository(db, logger, metricsCollector)
	ingestionService := services.NewIngestionService(weatherRepo, logger, metricsCollector)

	// One-shot mode
	if *schedule == "" {
		result, err := ingestionService.IngestDirectory(ctx, *dataDir, *batchSize)
		if err != nil {
			logger.Fatal(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{
				"error": err.Error(),
			}, err)
		}

		printSummary(result)

		logger.Info(ctx, "[INGESTER_COMPLETE] Ingestion completed successfully", logging.Fields{
			"total_records":      result.TotalRecords,
			"successful_records": result.SuccessfulRecords,
			"failed_records":     result.FailedRecords,
			"duration_seconds":   result.Duration.Seconds(),
		})
		return
	}

	// Scheduled mode: rerun ingestion on the given cron expression until interrupted
	scheduler := cron.New()
	_, err = scheduler.AddFunc(*schedule, func() {
		result, err := ingestionService.IngestDirectory(ctx, *dataDir, *batchSize)
		if err != nil {
			logger.Error(ctx, "[INGESTION_ERROR] Scheduled ingestion failed", logging.Fields{
				"schedule": *schedule,
			}, err)
			return
		}

		printSummary(result)

		logger.Info(ctx, "[INGESTER_RUN_COMPLETE] Scheduled ingestion run completed", logging.Fields{
			"total_records":      result.TotalRecords,
			"successful_records": result.SuccessfulRecords,
			"failed_records":     result.FailedRecords,
			"duration_seconds":   result.Duration.Seconds(),
		})
	})
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Invalid cron schedule", logging.Fields{
			"schedule": *schedule,
		}, err)
	}

	scheduler.Start()
	logger.Info(ctx, "[INGESTER_SCHEDULED] Ingestion scheduled", logging.Fields{
		"schedule": *schedule,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Let an in-flight run finish before exiting
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	logger.Info(ctx, "[INGESTER_STOPPED] Scheduler stopped", logging.Fields{})
}

func printSummary(result *services.IngestionResult) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INGESTION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Total Files:        %d\n", result.TotalFiles)
	fmt.Printf("Total Records:      %d\n", result.TotalRecords)
	fmt.Printf("Successful Records: %d\n", result.SuccessfulRecords)
	fmt.Printf("Failed Records:     %d\n", result.FailedRecords)
	fmt.Printf("Duration:           %v\n", result.Duration)
	fmt.Printf("Records/Second:     %.2f\n", float64(result.SuccessfulRecords)/result.Duration.Seconds())

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for i, errMsg := range result.Errors {
			if i < 10 {
				fmt.Printf("  - %s\n", errMsg)
			}
		}
		if len(result.Errors) > 10 {
			fmt.Printf("  ... and %d more errors\n", len(result.Errors)-10)
		}
	}
}
