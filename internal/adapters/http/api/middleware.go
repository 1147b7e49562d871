package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/goalwatch/pkg/metrics"
)

// route binds a path pattern to its handler and the low-cardinality
// endpoint label used in metrics. Paths with ids (/live/{id},
// /profiles/{entity}) share one label.
type route struct {
	pattern  string
	endpoint string
	handler  http.HandlerFunc
}

// statusRecorder remembers the status and, for failures, the error code
// writeError chose, so metrics carry the same code the client saw.
type statusRecorder struct {
	http.ResponseWriter
	status    int
	errorCode string
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// noteErrorCode tags w with code when w is instrumented.
func noteErrorCode(w http.ResponseWriter, code string) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.errorCode = code
	}
}

// instrument records request count, latency and error codes per endpoint.
func instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, float64(time.Since(start).Microseconds())/1000)

		if rec.status < http.StatusBadRequest {
			return
		}
		code := rec.errorCode
		if code == "" {
			// the mux or a handler wrote the status without writeError
			code = "http_" + status
		}
		metrics.RecordErrorByEndpoint(endpoint, r.Method, code)
		metrics.RecordErrorByComponent("http", code)
	}
}
