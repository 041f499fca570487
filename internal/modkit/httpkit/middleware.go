package httpkit

import (
	"net/http"
	"time"

	"tradepost/internal/platform/net/middleware"
)

// CommonStack returns a baseline per module middleware slice.
// Compose with extra middleware as needed in main
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 2 * time.Second}),

		// cross-origin
		middleware.CORS(middleware.CORSOptions{}),
		middleware.StripSlashes(),
		middleware.Timeout(30 * time.Second),
	}
}

// MountAPIV1 mounts fn under /v1 with the given middleware chain
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, fn func(Router)) {
	MountUnder(r, "/v1", mw, fn)
}
