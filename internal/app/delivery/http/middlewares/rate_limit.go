package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit limits requests per client IP per second. A non-positive limit disables it.
func (m *Middlewares) RateLimit() func(next http.Handler) http.Handler {
	limit := m.InternalConfig.App.MaxRequests
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(limit, time.Second)
}
