package httpx

import (
	"net/http"

	"github.com/felixge/httpsnoop"

	"github.com/mbolis/quick-survey-console/log"
)

// LogRequests logs one line per request with its status and duration.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		entry := log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   m.Code,
			"bytes":    m.Written,
			"duration": m.Duration.String(),
			"remote":   r.RemoteAddr,
		})
		switch {
		case m.Code >= 500:
			entry.Error("request")
		case m.Code >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	})
}
