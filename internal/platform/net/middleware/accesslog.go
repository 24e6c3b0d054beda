package middleware

import (
	"net/http"
	"time"

	"hostdesk/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// AccessLogOptions configures the access log
type AccessLogOptions struct {
	// Slow logs requests taking at least Slow at warn, 0 disables it
	Slow time.Duration
}

// AccessLog puts the chi request id into the logger context, then logs one line per request
// it must run after RequestID
func AccessLog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.WithRequest(r.Context(), chimw.GetReqID(r.Context()))
			r = r.WithContext(ctx)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			log := logger.C(ctx)
			evt := log.Info()
			switch {
			case status >= http.StatusInternalServerError:
				evt = log.Error()
			case opt.Slow > 0 && elapsed >= opt.Slow:
				evt = log.Warn().Bool("slow", true)
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", elapsed).
				Msg("request done")
		})
	}
}
