package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// RequestMetricsRecorder interface for recording request metrics
type RequestMetricsRecorder interface {
	RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestMetrics records a counter and duration histogram per request,
// labelled by the route template rather than the raw path so ids do
// not explode the cardinality.
func RequestMetrics(recorder RequestMetricsRecorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			durationMs := float64(time.Since(start).Microseconds()) / 1000.0
			recorder.RecordHTTPRequest(r.Context(), r.Method, route, rec.status, durationMs)
		})
	}
}
