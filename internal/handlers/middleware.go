package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"weather-dashboard/pkg/logging"
)

// RequestIDMiddleware tags every request with an id for log correlation.
// An incoming X-Request-ID header is kept; otherwise one is generated.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}
