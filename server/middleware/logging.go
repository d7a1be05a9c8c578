package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/echoscribe/echoscribe/logger"
)

// RequestLogger logs every request with method, path, status, and duration.
// Health probes and the SSE stream are skipped: the former is noise, the
// latter stays open for the lifetime of a browser tab.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      sw.status,
				"duration_ms": duration.Milliseconds(),
			}
			if id := r.Header.Get("X-Request-Id"); id != "" {
				fields[logger.FieldRequestID] = id
			}

			switch {
			case sw.status >= 500:
				log.Error("request completed", fields)
			case sw.status >= 400:
				log.Warn("request completed", fields)
			default:
				log.Debug("request completed", fields)
			}
		})
	}
}

func quietPath(path string) bool {
	for _, p := range []string{"/health", "/version", "/api/v1/events"} {
		if path == p || strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}
