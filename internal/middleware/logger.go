package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"settimohub.it/hub-web/internal/observability"
)

// RequestLogger attaches a request-scoped zap logger to the context and emits
// one structured entry per request.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rid := chiMid.GetReqID(r.Context())
			reqLogger := observability.WithRequestFields(logger, zap.String("request_id", rid))
			ctx, notes := withNotes(observability.WithLogger(r.Context(), reqLogger))
			if rid != "" {
				ctx = WithRequestID(ctx, rid)
			}
			r = r.WithContext(ctx)

			rw := NewResponseRecorder(w)
			next.ServeHTTP(rw, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.Status()),
				zap.Int("bytes", rw.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_ip", clientIP(r)),
				zap.Bool("htmx", notes.htmx),
			}
			if notes.trigger != "" {
				fields = append(fields, zap.String("hx_trigger", notes.trigger))
			}
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if pattern := rc.RoutePattern(); pattern != "" {
					fields = append(fields, zap.String("route", pattern))
				}
			}
			if notes.session != "" {
				fields = append(fields, zap.String("session", notes.session))
			}
			switch {
			case rw.Status() >= http.StatusInternalServerError:
				reqLogger.Error("request", fields...)
			case rw.Status() >= http.StatusBadRequest:
				reqLogger.Warn("request", fields...)
			default:
				reqLogger.Info("request", fields...)
			}
		})
	}
}

func clientIP(r *http.Request) string {
	// last X-Forwarded-For hop is the client seen by the proxy
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		p := strings.Split(xff, ",")
		return strings.TrimSpace(p[len(p)-1])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		return host[:i]
	}
	return host
}
