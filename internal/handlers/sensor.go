package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/views"
	"weather-dashboard/pkg/logging"
)

// IngestSensorReading handles POST /api/sensor
func (h *WeatherHandler) IngestSensorReading(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/sensor").Observe(time.Since(startTime).Seconds())
	}()

	var payload models.SensorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn(ctx, "[API_SENSOR_BAD_BODY] Request body is not valid JSON", logging.Fields{
			"error": err.Error(),
		})
		h.metrics.RecordAPIError("bad_request", "/api/sensor")
		h.sendError(w, r, "request body must be a JSON object", http.StatusBadRequest)
		return
	}

	reading, err := h.sensorService.RecordReading(ctx, payload)
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			h.metrics.RecordAPIError("validation_error", "/api/sensor")
			h.sendError(w, r, vErr.Error(), http.StatusBadRequest)
			return
		}

		h.logger.Error(ctx, "[API_SENSOR_ERROR] Failed to store sensor reading", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/sensor")
		h.sendError(w, r, views.InternalErrorMessage, http.StatusInternalServerError)
		return
	}

	h.logger.Debug(ctx, "[API_SENSOR_STORED] Sensor reading accepted", logging.Fields{
		"reading_id": reading.ID,
	})
	h.metrics.RecordAPIRequest("/api/sensor", "POST", "201")
	h.sendJSON(w, MessageResponse{Message: views.SensorStoredMessage}, http.StatusCreated)
}
