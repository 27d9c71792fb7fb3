package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/mux"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/services"
	"weather-dashboard/internal/views"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

// One collector per test binary; registering twice panics.
var testMetrics = metrics.NewCollector("handlers_test")

func testLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("handlers-test", "0.0.0-test", logging.FatalLevel)
	logger.SetOutput(io.Discard)
	return logger
}

type fakeRepo struct {
	records     []models.WeatherRecord
	recordsErr  error
	readings    []models.SensorReading
	readingsErr error
	insertErr   error
	healthErr   error

	inserted  []models.SensorReading
	lastLimit int
}

func (f *fakeRepo) ListWeatherRecords(ctx context.Context) ([]models.WeatherRecord, error) {
	if f.recordsErr != nil {
		return nil, f.recordsErr
	}
	return f.records, nil
}

func (f *fakeRepo) CreateWeatherRecordsBatch(ctx context.Context, records []*models.WeatherRecord) error {
	return nil
}

func (f *fakeRepo) InsertSensorReading(ctx context.Context, reading *models.SensorReading) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	reading.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, *reading)
	return nil
}

func (f *fakeRepo) LatestSensorReadings(ctx context.Context, limit int) ([]models.SensorReading, error) {
	f.lastLimit = limit
	if f.readingsErr != nil {
		return nil, f.readingsErr
	}
	if len(f.readings) > limit {
		return f.readings[:limit], nil
	}
	return f.readings, nil
}

func (f *fakeRepo) HealthCheck(ctx context.Context) error {
	return f.healthErr
}

func newTestRouter(t *testing.T, repo *fakeRepo) *mux.Router {
	t.Helper()

	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}

	logger := testLogger()
	dashboardService := services.NewDashboardService(repo, logger, testMetrics)
	sensorService := services.NewSensorService(repo, logger, testMetrics)
	handler := NewWeatherHandler(dashboardService, sensorService, logger, testMetrics)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func f64(v float64) *float64 { return &v }

func str(s string) *string { return &s }

func utc(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDashboard_GroupsAndOrders(t *testing.T) {
	repo := &fakeRepo{
		records: []models.WeatherRecord{
			{ID: 1, City: "Phuket", Region: "South", TemperatureCelsius: f64(33), Condition: str("sunny"), RecordedAt: utc("2024-03-05T09:00:00Z")},
			{ID: 2, City: "Bangkok", Region: "Central", TemperatureCelsius: f64(30), Condition: str("rainy"), RecordedAt: utc("2024-03-05T08:00:00Z")},
			{ID: 3, City: "Bangkok", Region: "Central", TemperatureCelsius: f64(32), Condition: str("cloudy"), RecordedAt: utc("2024-03-05T10:00:00Z")},
			{ID: 4, City: "Ayutthaya", Region: "Central", TemperatureCelsius: f64(31), RecordedAt: utc("2024-03-05T07:00:00Z")},
			{ID: 5, City: "Chiang Mai", Region: "North", TemperatureCelsius: f64(24), RecordedAt: utc("2024-03-05T06:00:00Z")},
		},
		readings: []models.SensorReading{
			{ID: 9, Temperature: 26.5, Humidity: 70, RecordedAt: utc("2024-03-05T11:00:00Z")},
			{ID: 8, Temperature: 26.0, Humidity: 71, RecordedAt: utc("2024-03-05T10:30:00Z")},
		},
	}
	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q; want text/html", ct)
	}

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("failed to parse response HTML: %v", err)
	}

	if lang, _ := doc.Find("html").Attr("lang"); lang != "th" {
		t.Errorf("html lang = %q; want %q", lang, "th")
	}

	var regionNames []string
	doc.Find(".region .region-name").Each(func(i int, s *goquery.Selection) {
		regionNames = append(regionNames, strings.TrimSpace(s.Text()))
	})
	wantRegions := []string{"Central", "North", "South"}
	if len(regionNames) != len(wantRegions) {
		t.Fatalf("region count = %d (%v); want %d", len(regionNames), regionNames, len(wantRegions))
	}
	for i, want := range wantRegions {
		if regionNames[i] != want {
			t.Errorf("region[%d] = %q; want %q", i, regionNames[i], want)
		}
	}

	var centralCities []string
	doc.Find(".region").First().Find("tr.province td.city").Each(func(i int, s *goquery.Selection) {
		centralCities = append(centralCities, strings.TrimSpace(s.Text()))
	})
	wantCities := []string{"Ayutthaya", "Bangkok"}
	if len(centralCities) != len(wantCities) {
		t.Fatalf("central cities = %v; want %v", centralCities, wantCities)
	}
	for i, want := range wantCities {
		if centralCities[i] != want {
			t.Errorf("central city[%d] = %q; want %q", i, centralCities[i], want)
		}
	}

	// Bangkok appears once, with the newest record's values.
	body := doc.Text()
	if strings.Contains(body, "rainy") {
		t.Error("stale Bangkok record leaked into the page")
	}
	if !strings.Contains(body, "cloudy") {
		t.Error("latest Bangkok record missing from the page")
	}

	// Timestamps render in UTC+7 as D/M/YYYY HH:MM:SS.
	if !strings.Contains(body, "5/3/2024 17:00:00") {
		t.Error("expected Bangkok display time 5/3/2024 17:00:00")
	}

	if got := doc.Find(".sensor-list li.sensor").Length(); got != 2 {
		t.Errorf("sensor rows = %d; want 2", got)
	}
	if !strings.Contains(body, "5/3/2024 18:00:00") {
		t.Error("expected sensor display time 5/3/2024 18:00:00")
	}

	if repo.lastLimit != 5 {
		t.Errorf("sensor reading limit = %d; want 5", repo.lastLimit)
	}
}

func TestDashboard_QueryFilter(t *testing.T) {
	repo := &fakeRepo{
		records: []models.WeatherRecord{
			{ID: 1, City: "Bangkok", Region: "Central", RecordedAt: utc("2024-03-05T08:00:00Z")},
			{ID: 2, City: "Chiang Mai", Region: "North", RecordedAt: utc("2024-03-05T09:00:00Z")},
			{ID: 3, City: "Chiang Rai", Region: "North", RecordedAt: utc("2024-03-05T09:30:00Z")},
		},
	}
	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/?q=chiang", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("failed to parse response HTML: %v", err)
	}

	var cities []string
	doc.Find("tr.province td.city").Each(func(i int, s *goquery.Selection) {
		cities = append(cities, strings.TrimSpace(s.Text()))
	})
	want := []string{"Chiang Mai", "Chiang Rai"}
	if len(cities) != len(want) {
		t.Fatalf("cities = %v; want %v", cities, want)
	}
	for i := range want {
		if cities[i] != want[i] {
			t.Errorf("city[%d] = %q; want %q", i, cities[i], want[i])
		}
	}

	// Bangkok's region drops out entirely once its only city is filtered.
	if got := doc.Find(".region").Length(); got != 1 {
		t.Errorf("region count = %d; want 1", got)
	}

	if value, _ := doc.Find("input[name=q]").Attr("value"); value != "chiang" {
		t.Errorf("search box value = %q; want %q", value, "chiang")
	}
}

func TestDashboard_EmptyStates(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "ไม่พบข้อมูลสภาพอากาศ") {
		t.Error("expected weather empty state")
	}
	if !strings.Contains(body, "ยังไม่มีข้อมูลจากเซ็นเซอร์") {
		t.Error("expected sensor empty state")
	}
}

func TestDashboard_RepositoryFailure(t *testing.T) {
	tests := []struct {
		name string
		repo *fakeRepo
	}{
		{
			name: "record listing fails",
			repo: &fakeRepo{recordsErr: errors.New("connection reset")},
		},
		{
			name: "sensor listing fails",
			repo: &fakeRepo{readingsErr: errors.New("connection reset")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.repo)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q; want text/html", ct)
			}

			body := rec.Body.String()
			if !strings.Contains(body, views.InternalErrorMessage) {
				t.Errorf("body = %q; want localized error message", body)
			}
			if strings.Contains(body, "connection reset") {
				t.Error("internal error detail leaked into the response")
			}
		})
	}
}

func TestIngestSensorReading(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantStatus     int
		wantInserted   int
		wantFieldInMsg string
		checkReading   func(*testing.T, models.SensorReading)
	}{
		{
			name:         "stores numeric values",
			body:         `{"temperature": 25.5, "humidity": 60}`,
			wantStatus:   http.StatusCreated,
			wantInserted: 1,
			checkReading: func(t *testing.T, r models.SensorReading) {
				if r.Temperature != 25.5 {
					t.Errorf("Temperature = %v; want 25.5", r.Temperature)
				}
				if r.Humidity != 60 {
					t.Errorf("Humidity = %v; want 60", r.Humidity)
				}
			},
		},
		{
			name:         "coerces numeric strings",
			body:         `{"temperature": "25", "humidity": "60.5"}`,
			wantStatus:   http.StatusCreated,
			wantInserted: 1,
			checkReading: func(t *testing.T, r models.SensorReading) {
				if r.Temperature != 25 {
					t.Errorf("Temperature = %v; want 25", r.Temperature)
				}
				if r.Humidity != 60.5 {
					t.Errorf("Humidity = %v; want 60.5", r.Humidity)
				}
			},
		},
		{
			name:           "rejects missing temperature",
			body:           `{"humidity": 60}`,
			wantStatus:     http.StatusBadRequest,
			wantFieldInMsg: "temperature",
		},
		{
			name:           "rejects null humidity",
			body:           `{"temperature": 25, "humidity": null}`,
			wantStatus:     http.StatusBadRequest,
			wantFieldInMsg: "humidity",
		},
		{
			name:           "rejects non-numeric string",
			body:           `{"temperature": "hot", "humidity": 60}`,
			wantStatus:     http.StatusBadRequest,
			wantFieldInMsg: "temperature",
		},
		{
			name:           "rejects boolean value",
			body:           `{"temperature": 25, "humidity": true}`,
			wantStatus:     http.StatusBadRequest,
			wantFieldInMsg: "humidity",
		},
		{
			name:       "rejects malformed JSON",
			body:       `{"temperature": 25,`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			router := newTestRouter(t, repo)

			req := httptest.NewRequest(http.MethodPost, "/api/sensor", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("Content-Type = %q; want application/json", ct)
			}
			if len(repo.inserted) != tt.wantInserted {
				t.Fatalf("inserted = %d readings; want %d", len(repo.inserted), tt.wantInserted)
			}

			if tt.wantStatus == http.StatusCreated {
				var resp MessageResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Message != views.SensorStoredMessage {
					t.Errorf("message = %q; want %q", resp.Message, views.SensorStoredMessage)
				}
				if tt.checkReading != nil {
					tt.checkReading(t, repo.inserted[0])
				}
				return
			}

			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Code != tt.wantStatus {
				t.Errorf("error code = %d; want %d", resp.Code, tt.wantStatus)
			}
			if tt.wantFieldInMsg != "" && !strings.Contains(resp.Message, tt.wantFieldInMsg) {
				t.Errorf("message = %q; want mention of %q", resp.Message, tt.wantFieldInMsg)
			}
		})
	}
}

func TestIngestSensorReading_StampsServerTime(t *testing.T) {
	repo := &fakeRepo{}
	router := newTestRouter(t, repo)

	before := time.Now().UTC()
	req := httptest.NewRequest(http.MethodPost, "/api/sensor", strings.NewReader(`{"temperature": 25, "humidity": 60}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	after := time.Now().UTC()

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusCreated)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted = %d readings; want 1", len(repo.inserted))
	}

	got := repo.inserted[0].RecordedAt
	if got.Before(before) || got.After(after) {
		t.Errorf("RecordedAt = %v; want between %v and %v", got, before, after)
	}
	if got.Location() != time.UTC {
		t.Errorf("RecordedAt location = %v; want UTC", got.Location())
	}
}

func TestIngestSensorReading_StorageFailure(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("disk full")}
	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/api/sensor", strings.NewReader(`{"temperature": 25, "humidity": 60}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Message != views.InternalErrorMessage {
		t.Errorf("message = %q; want localized error message", resp.Message)
	}
	if strings.Contains(resp.Message, "disk full") {
		t.Error("internal error detail leaked into the response")
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		repo       *fakeRepo
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthy",
			repo:       &fakeRepo{},
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
		},
		{
			name:       "database unreachable",
			repo:       &fakeRepo{healthErr: errors.New("no route to host")},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.repo)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tt.wantStatus)
			}

			var resp map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["status"] != tt.wantBody {
				t.Errorf("status field = %q; want %q", resp["status"], tt.wantBody)
			}
			if resp["timestamp"] == "" {
				t.Error("timestamp field missing")
			}
		})
	}
}

func TestOpenAPISpec(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/docs/openapi.json", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}

	var spec map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&spec); err != nil {
		t.Fatalf("spec is not valid JSON: %v", err)
	}

	paths, ok := spec["paths"].(map[string]interface{})
	if !ok {
		t.Fatal("spec has no paths object")
	}
	for _, path := range []string{"/", "/api/sensor", "/health", "/metrics"} {
		if _, ok := paths[path]; !ok {
			t.Errorf("spec missing path %q", path)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var gotCtxID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCtxID = logging.RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("generates an id when none is sent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		RequestIDMiddleware(inner).ServeHTTP(rec, req)

		id := rec.Header().Get("X-Request-ID")
		if id == "" {
			t.Fatal("X-Request-ID header not set")
		}
		if gotCtxID != id {
			t.Errorf("context id = %q; want %q", gotCtxID, id)
		}
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-1234")
		rec := httptest.NewRecorder()

		RequestIDMiddleware(inner).ServeHTTP(rec, req)

		if id := rec.Header().Get("X-Request-ID"); id != "req-1234" {
			t.Errorf("X-Request-ID = %q; want %q", id, "req-1234")
		}
		if gotCtxID != "req-1234" {
			t.Errorf("context id = %q; want %q", gotCtxID, "req-1234")
		}
	})
}

func TestSwaggerUI(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/docs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "swagger-ui") {
		t.Error("expected Swagger UI page")
	}
}
