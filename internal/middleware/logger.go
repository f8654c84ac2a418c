package middleware

import (
	"net/http"
	"strings"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/ofertas-web/internal/observability"
)

// Logger emits one structured log entry per request.
func Logger(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := NewResponseRecorder(w)
			next.ServeHTTP(rw, r)

			fields := []zap.Field{
				zap.String("method", observability.SanitizeMethod(r.Method)),
				zap.String("path", observability.SanitizeRoute(r.URL.Path)),
				zap.Int("status", rw.Status()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("remote_ip", clientIP(r)),
				zap.Bool("htmx", IsHTMX(r.Context())),
			}
			if rid := chiMid.GetReqID(r.Context()); rid != "" {
				fields = append(fields, zap.String("request_id", rid))
			}
			if sd := GetSession(r); sd.ID != "" {
				fields = append(fields, zap.String("session_id", sd.ID))
			}
			logger.Info("request", fields...)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		p := strings.Split(xff, ",")
		return strings.TrimSpace(p[len(p)-1])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		return host[:i]
	}
	return host
}
