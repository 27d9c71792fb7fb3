package main

import (
	"encoding/json"
	"fmt"
	"time"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/report"
	"weather-dashboard/internal/views"
)

// Demonstrates the report pipeline and display formatting without a database
func main() {
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("WEATHER DASHBOARD - REPORT PIPELINE DEMONSTRATION")
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println()

	records := []models.WeatherRecord{
		{ID: 1, City: "Bangkok", Region: "Central", TemperatureCelsius: f64(30.5), HumidityPct: f64(70), Condition: str("rainy"), RecordedAt: mustTime("2024-03-05T04:00:00Z")},
		{ID: 2, City: "Bangkok", Region: "Central", TemperatureCelsius: f64(32.0), HumidityPct: f64(64), Condition: str("cloudy"), RecordedAt: mustTime("2024-03-05T10:00:00Z")},
		{ID: 3, City: "Ayutthaya", Region: "Central", TemperatureCelsius: f64(31.0), HumidityPct: nil, Condition: str("sunny"), RecordedAt: mustTime("2024-03-05T09:00:00Z")},
		{ID: 4, City: "Chiang Mai", Region: "North", TemperatureCelsius: f64(24.5), HumidityPct: f64(55), Condition: nil, RecordedAt: mustTime("2024-03-05T08:30:00Z")},
		{ID: 5, City: "Chiang Rai", Region: "North", TemperatureCelsius: nil, HumidityPct: f64(60), Condition: str("foggy"), RecordedAt: mustTime("2024-03-05T07:45:00Z")},
		{ID: 6, City: "Phuket", Region: "South", TemperatureCelsius: f64(33.0), HumidityPct: f64(78), Condition: str("sunny"), RecordedAt: mustTime("2024-03-05T09:15:00Z")},
	}

	fmt.Printf("Loaded %d sample records (%d cities)\n\n", len(records), 5)

	// Full report: newest record per city, cities sorted inside sorted regions
	fmt.Println("─────────────────────────────────────────────────────────────")
	fmt.Println("Full report")
	fmt.Println("─────────────────────────────────────────────────────────────")
	printRegions(report.BuildRegionViews(records, ""))

	// Filtered report
	query := "chiang"
	fmt.Println("─────────────────────────────────────────────────────────────")
	fmt.Printf("Filtered report (q=%q)\n", query)
	fmt.Println("─────────────────────────────────────────────────────────────")
	printRegions(report.BuildRegionViews(records, query))

	// Sensor payload validation
	fmt.Println("─────────────────────────────────────────────────────────────")
	fmt.Println("Sensor payload validation")
	fmt.Println("─────────────────────────────────────────────────────────────")

	payloads := []string{
		`{"temperature": 25.5, "humidity": 60}`,
		`{"temperature": "25.5", "humidity": "60"}`,
		`{"humidity": 60}`,
		`{"temperature": "hot", "humidity": 60}`,
	}

	now := time.Now()
	for _, body := range payloads {
		var payload models.SensorPayload
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			fmt.Printf("  %-46s → decode error: %v\n", body, err)
			continue
		}

		reading, err := payload.ToReading(now)
		if err != nil {
			fmt.Printf("  %-46s → rejected: %v\n", body, err)
			continue
		}
		fmt.Printf("  %-46s → accepted: %.1f°C %.1f%%\n", body, reading.Temperature, reading.Humidity)
	}

	fmt.Println()
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("✅ REPORT PIPELINE DEMONSTRATION COMPLETE")
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Println("The pipeline successfully:")
	fmt.Println("  ✓ Kept only the newest record per city")
	fmt.Println("  ✓ Sorted cities inside regions, regions across the page")
	fmt.Println("  ✓ Filtered provinces with a case-insensitive substring match")
	fmt.Println("  ✓ Rendered timestamps in UTC+7 as D/M/YYYY HH:MM:SS")
	fmt.Println("  ✓ Validated sensor payloads, coercing numeric strings")
	fmt.Println()
	fmt.Println("With a database, this would:")
	fmt.Println("  • Read records ingested into the records table")
	fmt.Println("  • Show the five most recent readings from the sensors table")
	fmt.Println("  • Serve the rendered page at GET /")
	fmt.Println()
}

func printRegions(regions []report.RegionView) {
	if len(regions) == 0 {
		fmt.Println("  (no matching provinces)")
		fmt.Println()
		return
	}

	for _, region := range regions {
		fmt.Printf("  %s\n", region.Region)
		for _, province := range region.Provinces {
			display, err := views.FormatDisplayTime(province.RecordedAt)
			if err != nil {
				display = "???"
			}

			temp := "NULL"
			if province.TemperatureCelsius != nil {
				temp = fmt.Sprintf("%.1f°C", *province.TemperatureCelsius)
			}

			condition := "NULL"
			if province.Condition != nil {
				condition = *province.Condition
			}

			fmt.Printf("    %-12s %-8s %-8s %s\n", province.City, temp, condition, display)
		}
	}
	fmt.Println()
}

func f64(v float64) *float64 { return &v }

func str(s string) *string { return &s }

func mustTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}
