package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"weather-dashboard/internal/services"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

// WeatherHandler handles the dashboard page and the sensor API
type WeatherHandler struct {
	dashboardService *services.DashboardService
	sensorService    *services.SensorService
	logger           *logging.StructuredLogger
	metrics          *metrics.Collector
}

// NewWeatherHandler creates a new weather handler
func NewWeatherHandler(
	dashboardService *services.DashboardService,
	sensorService *services.SensorService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *WeatherHandler {
	return &WeatherHandler{
		dashboardService: dashboardService,
		sensorService:    sensorService,
		logger:           logger,
		metrics:          metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// MessageResponse represents a simple confirmation response
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthCheck handles GET /health
func (h *WeatherHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.dashboardService.HealthCheck(ctx); err != nil {
		h.logger.Error(ctx, "[HEALTH_CHECK_FAILED] Database unreachable", logging.Fields{}, err)
		h.sendJSON(w, map[string]string{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}, http.StatusServiceUnavailable)
		return
	}

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// sendJSON sends a JSON response
func (h *WeatherHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *WeatherHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all routes served by this handler
func (h *WeatherHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Dashboard).Methods("GET")
	router.HandleFunc("/api/sensor", h.IngestSensorReading).Methods("POST")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
}
