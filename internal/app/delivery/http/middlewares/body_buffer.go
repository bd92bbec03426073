package middlewares

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/exceptions"
	"primarycare-identity-service/internal/pkg/utils"
)

// BodyBuffer reads the request body up to the configured limit, stores the raw
// bytes in the context and replaces the request body with a new reader so it
// can be consumed again by subsequent middlewares or handlers.
func (m *Middlewares) BodyBuffer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}

		body := io.Reader(r.Body)
		if limit := m.bodyLimit(); limit > 0 {
			body = http.MaxBytesReader(w, r.Body, limit)
		}

		bodyBytes, err := io.ReadAll(body)
		if err != nil {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrReadBody(err))
			return
		}

		ctx := context.WithValue(r.Context(), constvars.CONTEXT_RAW_BODY, bodyBytes)
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middlewares) bodyLimit() int64 {
	if m.InternalConfig == nil {
		return 0
	}
	return int64(m.InternalConfig.App.RequestBodyLimitInMegabyte) << 20
}
