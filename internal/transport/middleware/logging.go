package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logger emits one structured log line per request. Server errors log at
// error level, client errors at warn, everything else at info.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			switch {
			case rec.status() >= 500:
				level = slog.LevelError
			case rec.status() >= 400:
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "request",
				"request_id", RequestIDFrom(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status(),
				"bytes", rec.written,
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		})
	}
}

// statusRecorder captures the status code and body size for the log line.
// A zero code means the handler never called WriteHeader, which net/http
// treats as 200.
type statusRecorder struct {
	http.ResponseWriter
	code    int
	written int
}

func (rec *statusRecorder) status() int {
	if rec.code == 0 {
		return http.StatusOK
	}
	return rec.code
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.code == 0 {
		rec.code = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.written += n
	return n, err
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}
