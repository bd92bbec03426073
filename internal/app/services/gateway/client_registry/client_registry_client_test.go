package client_registry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/app/services/gateway/transport"
	"primarycare-identity-service/internal/app/services/shared/metrics"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/fhir_dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const patientBundle = `{
  "resourceType": "Bundle",
  "type": "searchset",
  "total": 1,
  "entry": [{
    "resource": {
      "resourceType": "Patient",
      "id": "UPI-001",
      "identifier": [{"system": "UPI", "value": "UPI-001"}, {"system": "NID", "value": "1199080012345678"}],
      "name": [{"family": "Uwase", "given": ["Aline"]}],
      "gender": "female",
      "birthDate": "1990-05-17"
    }
  }]
}`

func newTestClient() *clientRegistryClient {
	return newClientRegistryClient(transport.New(time.Second, metrics.Nop{}, zap.NewNop()), zap.NewNop())
}

func gatewayFor(baseURL string) models.RemoteGatewayConfig {
	return models.RemoteGatewayConfig{BaseURL: baseURL, Username: "emr", Password: "secret", Status: constvars.GatewayStatusDefined}
}

func TestFindByIdentifier(t *testing.T) {
	var receivedQuery, receivedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		receivedQuery = r.URL.Query().Get("identifier")
		w.Header().Set("Content-Type", "application/fhir+json")
		w.Write([]byte(patientBundle))
	}))
	defer server.Close()

	patients, err := newTestClient().FindByIdentifier(context.Background(), gatewayFor(server.URL), "1 1990 8 0012345678")

	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "/clientregistry/Patient", receivedPath)
	assert.Equal(t, "1199080012345678", receivedQuery, "spaces should be stripped")
	assert.Equal(t, "Uwase", patients[0].Name[0].Family)
}

func TestFindByIdentifier_EmptyBundle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resourceType":"Bundle","total":0}`))
	}))
	defer server.Close()

	patients, err := newTestClient().FindByIdentifier(context.Background(), gatewayFor(server.URL), "123")

	require.NoError(t, err)
	assert.Nil(t, patients)
}

func TestFindByIdentifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	patients, err := newTestClient().FindByIdentifier(context.Background(), gatewayFor(server.URL), "123")

	assert.Error(t, err)
	assert.Nil(t, patients)
}

func TestSearchByName(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		assert.Equal(t, "/Patient", r.URL.Path)
		w.Write([]byte(patientBundle))
	}))
	defer server.Close()

	patients, err := newTestClient().SearchByName(context.Background(), gatewayFor(server.URL), "Uwase", "Aline", "1990")

	require.NoError(t, err)
	assert.Len(t, patients, 1)
	assert.Equal(t, []string{"Uwase"}, query["family"])
	assert.Equal(t, []string{"Aline"}, query["given"])
	assert.Equal(t, []string{"1990"}, query["birthdate"])
}

func TestSavePatient(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	outcome, err := newTestClient().SavePatient(context.Background(), gatewayFor(server.URL), &fhir_dto.Patient{
		ResourceType: fhir_dto.ResourceTypePatient,
		ID:           "UPI-001",
	})

	require.NoError(t, err)
	assert.True(t, outcome.IsSuccess())
	assert.JSONEq(t, `{"resourceType":"Patient","id":"UPI-001"}`, string(body))
}

func TestSavePatient_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	outcome, err := newTestClient().SavePatient(context.Background(), gatewayFor(server.URL), &fhir_dto.Patient{ResourceType: "Patient"})

	require.NoError(t, err)
	assert.Equal(t, models.OutcomeClientError, outcome.Kind)
}
