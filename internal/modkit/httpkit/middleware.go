package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"hostdesk/internal/platform/config"
	"hostdesk/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	CORSOrigins []string
	Timeout     time.Duration
	SlowRequest time.Duration
}

// StackFromConfig reads CORS_ORIGINS, TIMEOUT and SLOW_REQUEST off an api config view
func StackFromConfig(c config.Conf) StackOptions {
	return StackOptions{
		CORSOrigins: c.MayCSV("CORS_ORIGINS", nil),
		Timeout:     c.MayDuration("TIMEOUT", 30*time.Second),
		SlowRequest: c.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
	}
}

// CommonStack is the middleware every /api/v1 request goes through, in order
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.SlowRequest}),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
}
