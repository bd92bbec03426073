package middlewares

import (
	"net/http"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Bridge hands every request under its mount point to the compatibility proxy
// and writes back whatever it answers. The query string is passed on untouched.
func (m *Middlewares) Bridge(proxy contracts.CompatibilityProxy) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

		bodyBytes, _ := r.Context().Value(constvars.CONTEXT_RAW_BODY).([]byte)

		response := proxy.Forward(r.Context(), &contracts.ForwardRequest{
			Method:       r.Method,
			ResourcePath: chi.URLParam(r, "*"),
			RawQuery:     r.URL.RawQuery,
			Body:         bodyBytes,
			Header:       r.Header,
		})

		for key, values := range response.Header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		w.WriteHeader(response.StatusCode)
		if _, err := w.Write(response.Body); err != nil {
			m.Log.Warn("Bridge failed to write proxied response",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
		}
	})
}
