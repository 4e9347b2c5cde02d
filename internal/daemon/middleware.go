package daemon

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"tasklist/internal/api"
	"tasklist/internal/logging"
)

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(api.RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(api.RequestIDHeader, rid)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), rid)))
	})
}

func withAccessLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		level := slog.LevelInfo
		if r.URL.Path == api.HealthPath {
			level = slog.LevelDebug
		}
		logging.WithContext(r.Context(), logger).Log(r.Context(), level, "http request",
			logging.Args(
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", sw.status),
				logging.Duration("duration", time.Since(start)),
			)...)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
