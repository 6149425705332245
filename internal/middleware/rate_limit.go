package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/userdesk/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitByIP limits each client address to requestsPerMinute requests.
// The client address is resolved through the trusted proxy configuration.
func RateLimitByIP(requestsPerMinute int, resolver *pkghttp.IPResolver) func(next http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return resolver.ClientIP(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests, please try again later")
		}),
	)
}
