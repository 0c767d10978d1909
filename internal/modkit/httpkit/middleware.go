package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	phttp "dadhumor/internal/platform/net/http"
	"dadhumor/internal/platform/net/middleware"
)

// CommonStack returns the baseline per-scope middleware slice
// trigger routes add their own bearer guard via Protected
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,
		middleware.NoCache(),

		// observability
		middleware.AccessLog(5 * time.Second),

		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),

		// a run fans out to every topic before answering
		middleware.Timeout(90 * time.Second),
	}
}

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}
