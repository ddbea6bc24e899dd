package logger

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request and feeds the HTTP counters.
// Requests slower than slow are counted and logged as warnings; a zero
// slow disables the check.
func RequestLogger(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				elapsed := time.Since(start)
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				TotalRequests.Add(1)

				args := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration", elapsed.String(),
					"requestId", middleware.GetReqID(r.Context()),
					"remoteAddr", r.RemoteAddr,
				}

				switch {
				case status >= 500:
					ErrorHttp5xx()
					Logger.Error("request failed", args...)
				case status >= 400:
					WarnHttp4xx(status)
					Logger.Warn("request rejected", args...)
				default:
					Logger.Info("request", args...)
				}

				if slow > 0 && elapsed > slow {
					WarnSlowRequest()
					Logger.Warn("slow request", args...)
				}
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
