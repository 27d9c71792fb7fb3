package handlers

import (
	"bytes"
	"net/http"
	"time"

	"weather-dashboard/internal/views"
	"weather-dashboard/pkg/logging"
)

// Dashboard handles GET / and renders the regional weather page.
// The optional q parameter filters provinces by a case-insensitive
// substring match on the city name.
func (h *WeatherHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/").Observe(time.Since(startTime).Seconds())
	}()

	query := r.URL.Query().Get("q")

	regions, err := h.dashboardService.RegionViews(ctx, query)
	if err != nil {
		h.logger.Error(ctx, "[DASHBOARD_ERROR] Failed to build region report", logging.Fields{
			"query": query,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/")
		h.renderErrorPage(w, r)
		return
	}

	readings, err := h.dashboardService.RecentSensorReadings(ctx)
	if err != nil {
		h.logger.Error(ctx, "[DASHBOARD_ERROR] Failed to load sensor readings", logging.Fields{
			"query": query,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/")
		h.renderErrorPage(w, r)
		return
	}

	data, err := views.BuildDashboardData(regions, readings, query)
	if err != nil {
		h.logger.Error(ctx, "[DASHBOARD_ERROR] Failed to build view data", logging.Fields{
			"query": query,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/")
		h.renderErrorPage(w, r)
		return
	}

	// Render into a buffer so a template failure never leaks a partial page.
	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, data); err != nil {
		h.logger.Error(ctx, "[DASHBOARD_ERROR] Failed to render dashboard", logging.Fields{
			"query": query,
		}, err)
		h.metrics.RecordAPIError("render_error", "/")
		h.renderErrorPage(w, r)
		return
	}

	h.metrics.RecordAPIRequest("/", "GET", "200")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// renderErrorPage sends the localized 500 page for browser-facing routes.
func (h *WeatherHandler) renderErrorPage(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, "500")

	var buf bytes.Buffer
	if err := views.RenderErrorPage(&buf); err != nil {
		http.Error(w, views.InternalErrorMessage, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	buf.WriteTo(w)
}
