package client_registry

import (
	"context"
	"net/http"
	"net/url"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/app/services/gateway/transport"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/exceptions"
	"primarycare-identity-service/internal/pkg/fhir_dto"
	"primarycare-identity-service/internal/pkg/utils"
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	clientRegistryClientInstance contracts.ClientRegistryClient
	onceClientRegistryClient     sync.Once
)

type clientRegistryClient struct {
	Transport contracts.GatewayTransport
	Log       *zap.Logger
}

func NewClientRegistryClient(gatewayTransport contracts.GatewayTransport, logger *zap.Logger) contracts.ClientRegistryClient {
	onceClientRegistryClient.Do(func() {
		clientRegistryClientInstance = newClientRegistryClient(gatewayTransport, logger)
	})
	return clientRegistryClientInstance
}

func newClientRegistryClient(gatewayTransport contracts.GatewayTransport, logger *zap.Logger) *clientRegistryClient {
	return &clientRegistryClient{
		Transport: gatewayTransport,
		Log:       logger,
	}
}

func (c *clientRegistryClient) PatientURL(gateway models.RemoteGatewayConfig) string {
	return gateway.BaseURL + constvars.ClientRegistryPatientPath
}

// FindByIdentifier returns nil when the registry holds no matching patient.
func (c *clientRegistryClient) FindByIdentifier(ctx context.Context, gateway models.RemoteGatewayConfig, value string) ([]fhir_dto.Patient, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("clientRegistryClient.FindByIdentifier called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingIdentifierKey, value),
	)

	query := url.Values{}
	query.Set(constvars.URLQueryParamIdentifier, utils.StripSpaces(value))

	return c.searchPatients(ctx, gateway, c.PatientURL(gateway)+"?"+query.Encode(), "clientRegistryClient.FindByIdentifier")
}

func (c *clientRegistryClient) SearchByName(ctx context.Context, gateway models.RemoteGatewayConfig, family, given, birthDate string) ([]fhir_dto.Patient, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("clientRegistryClient.SearchByName called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	query := url.Values{}
	if family != "" {
		query.Set("family", family)
	}
	if given != "" {
		query.Set("given", given)
	}
	if birthDate != "" {
		query.Set("birthdate", birthDate)
	}

	return c.searchPatients(ctx, gateway, gateway.BaseURL+constvars.ClientRegistrySearchPath+"?"+query.Encode(), "clientRegistryClient.SearchByName")
}

// SavePatient returns the raw outcome; callers decide whether a failure is deferred.
func (c *clientRegistryClient) SavePatient(ctx context.Context, gateway models.RemoteGatewayConfig, patient *fhir_dto.Patient) (*models.GatewayCallOutcome, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("clientRegistryClient.SavePatient called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUPIKey, patient.ID),
	)

	body, err := json.Marshal(patient)
	if err != nil {
		c.Log.Error("clientRegistryClient.SavePatient error marshaling JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	outcome := c.Transport.Do(ctx, &models.GatewayRequest{
		Target: constvars.GatewayTargetClientRegistry,
		Method: constvars.MethodPost,
		URL:    c.PatientURL(gateway),
		Body:   body,
		Header: jsonHeaders(),
		Config: gateway,
	})

	if !outcome.IsSuccess() {
		c.Log.Warn("clientRegistryClient.SavePatient not accepted",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOutcomeKey, string(outcome.Kind)),
			zap.Int(constvars.LoggingStatusCodeKey, outcome.StatusCode),
		)
		return outcome, nil
	}

	c.Log.Info("clientRegistryClient.SavePatient succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingStatusCodeKey, outcome.StatusCode),
	)
	return outcome, nil
}

func (c *clientRegistryClient) searchPatients(ctx context.Context, gateway models.RemoteGatewayConfig, searchURL, caller string) ([]fhir_dto.Patient, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	outcome := c.Transport.Do(ctx, &models.GatewayRequest{
		Target: constvars.GatewayTargetClientRegistry,
		Method: constvars.MethodGet,
		URL:    searchURL,
		Header: jsonHeaders(),
		Config: gateway,
	})
	if !outcome.IsSuccess() {
		err := transport.ErrorFromOutcome(outcome, constvars.GatewayTargetClientRegistry)
		c.Log.Error(caller+" error calling client registry",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	if len(outcome.Body) == 0 {
		return nil, nil
	}

	bundle := new(fhir_dto.PatientBundle)
	err := json.Unmarshal(outcome.Body, bundle)
	if err != nil {
		c.Log.Error(caller+" error decoding bundle",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrDecodeResponse(err, constvars.GatewayTargetClientRegistry)
	}

	if len(bundle.Entry) == 0 {
		c.Log.Info(caller+" no entries",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return nil, nil
	}

	patients := make([]fhir_dto.Patient, 0, len(bundle.Entry))
	for _, entry := range bundle.Entry {
		patients = append(patients, entry.Resource)
	}

	c.Log.Info(caller+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResponseLengthKey, len(patients)),
	)
	return patients, nil
}

func jsonHeaders() http.Header {
	header := http.Header{}
	header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	header.Set(constvars.HeaderAccept, constvars.DefaultFHIRAccept)
	return header
}
