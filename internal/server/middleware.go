package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/redcardinal8/MeetingAgent/internal/instrumentation"
)

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// WithHTTPMetrics wraps a handler and records request count and duration
// per method, path and status. Unmatched paths are collapsed into a single
// label value so arbitrary request paths cannot blow up cardinality.
func WithHTTPMetrics(m *instrumentation.Metrics, next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if rec.status == http.StatusNotFound {
			path = "unmatched"
		}
		m.RecordHTTPRequest(r.Context(), r.Method, path,
			strconv.Itoa(rec.status), time.Since(start))
	})
}
