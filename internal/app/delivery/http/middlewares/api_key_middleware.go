package middlewares

import (
	"context"
	"crypto/subtle"
	"net/http"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/exceptions"
	"primarycare-identity-service/internal/pkg/utils"

	"go.uber.org/zap"
)

const (
	HeaderAPIKey      = constvars.HeaderXAPIKey
	ContextAPIKeyAuth = "api_key_auth"
)

// APIKeyAuth guards administrative routes. An unset admin key locks the routes instead of opening them.
func (m *Middlewares) APIKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := utils.GetRequestID(r.Context())
		expected := m.InternalConfig.App.AdminAPIKey

		if expected == "" {
			m.Log.Warn("Middlewares.APIKeyAuth admin api key is not configured",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrAPIKeyNotConfigured(nil))
			return
		}

		apiKey := r.Header.Get(HeaderAPIKey)
		if apiKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			m.Log.Warn("Middlewares.APIKeyAuth rejected request",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
				zap.String(constvars.LoggingMethodKey, r.Method),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrInvalidAPIKey(nil))
			return
		}

		ctx := context.WithValue(r.Context(), ContextAPIKeyAuth, true)

		m.Log.Info("Middlewares.APIKeyAuth succeeded",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
			zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			zap.String(constvars.LoggingMethodKey, r.Method),
			zap.String(constvars.LoggingUserAgentKey, r.UserAgent()),
		)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
