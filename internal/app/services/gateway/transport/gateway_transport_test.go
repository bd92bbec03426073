package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/app/services/shared/metrics"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func gatewayConfig() models.RemoteGatewayConfig {
	return models.RemoteGatewayConfig{Username: "emr", Password: "secret", Status: constvars.GatewayStatusDefined}
}

func TestDo_Classification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected models.GatewayOutcomeKind
	}{
		{name: "Success", status: http.StatusOK, expected: models.OutcomeSuccess},
		{name: "Created", status: http.StatusCreated, expected: models.OutcomeSuccess},
		{name: "Client error", status: http.StatusNotFound, expected: models.OutcomeClientError},
		{name: "Server error", status: http.StatusBadGateway, expected: models.OutcomeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"ok":true}`))
			}))
			defer server.Close()

			outcome := New(time.Second, metrics.Nop{}, zap.NewNop()).Do(context.Background(), &models.GatewayRequest{
				Target: constvars.GatewayTargetClientRegistry,
				Method: constvars.MethodGet,
				URL:    server.URL,
				Config: gatewayConfig(),
			})

			assert.Equal(t, tt.expected, outcome.Kind)
			assert.Equal(t, tt.status, outcome.StatusCode)
			assert.Equal(t, `{"ok":true}`, string(outcome.Body))
		})
	}
}

func TestDo_NotModifiedIsNotAFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `W/"3"`)
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	outcome := New(time.Second, metrics.Nop{}, zap.NewNop()).Do(context.Background(), &models.GatewayRequest{
		Target: constvars.GatewayTargetClientRegistry,
		Method: constvars.MethodGet,
		URL:    server.URL,
		Config: gatewayConfig(),
	})

	assert.Equal(t, models.OutcomeNotModified, outcome.Kind)
	assert.Equal(t, http.StatusNotModified, outcome.StatusCode)
	assert.Equal(t, `W/"3"`, outcome.Header.Get("ETag"))
	assert.Empty(t, outcome.Body)
}

func TestDo_InjectsBasicAuthOverInboundAuthorization(t *testing.T) {
	var username, password string
	var ok bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok = r.BasicAuth()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	header := http.Header{}
	header.Set(constvars.HeaderAuthorization, "Bearer caller-token")

	New(time.Second, metrics.Nop{}, zap.NewNop()).Do(context.Background(), &models.GatewayRequest{
		Target: constvars.GatewayTargetProxy,
		Method: constvars.MethodGet,
		URL:    server.URL,
		Header: header,
		Config: gatewayConfig(),
	})

	require.True(t, ok)
	assert.Equal(t, "emr", username)
	assert.Equal(t, "secret", password)
}

func TestDo_TimeoutIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	outcome := New(50*time.Millisecond, metrics.Nop{}, zap.NewNop()).Do(context.Background(), &models.GatewayRequest{
		Target: constvars.GatewayTargetPopulationRegistry,
		Method: constvars.MethodPost,
		URL:    server.URL,
		Config: gatewayConfig(),
	})

	assert.Equal(t, models.OutcomeUnreachable, outcome.Kind)
	assert.Error(t, outcome.Cause)
}

func TestErrorFromOutcome(t *testing.T) {
	var customErr *exceptions.CustomError

	err := ErrorFromOutcome(&models.GatewayCallOutcome{Kind: models.OutcomeClientError, StatusCode: 422}, "client_registry")
	require.True(t, errors.As(err, &customErr))
	assert.Equal(t, 422, customErr.StatusCode)

	err = ErrorFromOutcome(&models.GatewayCallOutcome{Kind: models.OutcomeServerError, StatusCode: 500}, "client_registry")
	require.True(t, errors.As(err, &customErr))
	assert.Equal(t, constvars.StatusBadGateway, customErr.StatusCode)

	err = ErrorFromOutcome(&models.GatewayCallOutcome{Kind: models.OutcomeUnreachable, Cause: errors.New("dial tcp")}, "client_registry")
	require.True(t, errors.As(err, &customErr))
	assert.Equal(t, constvars.StatusServiceUnavailable, customErr.StatusCode)

	err = ErrorFromOutcome(&models.GatewayCallOutcome{Kind: models.OutcomeRedirect, StatusCode: 302}, "client_registry")
	require.True(t, errors.As(err, &customErr))
	assert.Equal(t, constvars.StatusBadGateway, customErr.StatusCode)

	assert.NoError(t, ErrorFromOutcome(&models.GatewayCallOutcome{Kind: models.OutcomeSuccess}, "client_registry"))
}
