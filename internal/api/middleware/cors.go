package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"

	"github.com/phrazzld/censudex-gateway/internal/config"
)

// corsMaxAge is how long, in seconds, browsers may cache a preflight answer.
const corsMaxAge = 86400

// CORS allows cross-origin requests from the configured origins with every
// method and header. "*" admits any origin; the request origin is echoed
// back so credentials keep working.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions, http.MethodHead,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           corsMaxAge,
	}
	if slices.Contains(cfg.AllowedOrigins, "*") {
		// a literal "*" reply is refused by browsers on credentialed requests
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(_ *http.Request, _ string) bool { return true }
	}
	return cors.Handler(opts)
}
