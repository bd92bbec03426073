package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveGatewayCall(t *testing.T) {
	collector := NewCollector()

	collector.ObserveGatewayCall("client_registry", "success", 120*time.Millisecond)
	collector.ObserveGatewayCall("client_registry", "success", 80*time.Millisecond)
	collector.ObserveGatewayCall("population_registry", "unreachable", time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(collector.GatewayCallsTotal.WithLabelValues("client_registry", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.GatewayCallsTotal.WithLabelValues("population_registry", "unreachable")))
}

func TestCollector_IndependentRegistries(t *testing.T) {
	first := NewCollector()
	second := NewCollector()

	first.IncProvisionalUpi()

	assert.Equal(t, float64(1), testutil.ToFloat64(first.ProvisionalUpisTotal))
	assert.Equal(t, float64(0), testutil.ToFloat64(second.ProvisionalUpisTotal))
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector()
	collector.IncOfflineTransaction("patient_sync_in")

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `primarycare_identity_offline_queue_transactions_enqueued_total{type="patient_sync_in"} 1`))
}
