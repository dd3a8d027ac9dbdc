package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tangled.org/pulse.social/pulse/internal/metrics"

	"github.com/rs/zerolog"
)

// ViewerHeader optionally identifies the viewer behind a request. It is only
// used for log correlation.
const ViewerHeader = "X-Pulse-Viewer"

// GetClientIP returns the originating client address: the first
// X-Forwarded-For entry, then X-Real-IP, then RemoteAddr without its port.
func GetClientIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LoggingMiddleware logs one line per request at a level chosen from the
// response status, and feeds the HTTP request metrics.
func LoggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			route := metrics.NormalizePath(r.URL.Path)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

			event := levelFor(logger, rec.status).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", rec.status).
				Dur("duration", elapsed).
				Int64("bytes_written", rec.written).
				Str("client_ip", GetClientIP(r))

			if r.URL.RawQuery != "" {
				event.Str("query", r.URL.RawQuery)
			}
			optional := map[string]string{
				"request_id": r.Header.Get("X-Request-ID"),
				"viewer_id":  r.Header.Get(ViewerHeader),
				"user_agent": r.UserAgent(),
			}
			for field, value := range optional {
				if value != "" {
					event.Str(field, value)
				}
			}

			event.Msgf("http: %s %s %d", r.Method, r.URL.Path, rec.status)
		})
	}
}

func levelFor(logger zerolog.Logger, status int) *zerolog.Event {
	if status >= http.StatusInternalServerError {
		return logger.Error()
	}
	if status >= http.StatusBadRequest {
		return logger.Warn()
	}
	return logger.Info()
}

// statusRecorder captures the first status code and the body size.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	written     int64
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.WriteHeader(http.StatusOK)
	n, err := s.ResponseWriter.Write(b)
	s.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
