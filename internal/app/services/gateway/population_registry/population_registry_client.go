package population_registry

import (
	"context"
	"net/http"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/app/services/gateway/transport"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/exceptions"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	populationRegistryClientInstance contracts.PopulationRegistryClient
	oncePopulationRegistryClient     sync.Once
)

type populationRegistryClient struct {
	Transport contracts.GatewayTransport
	Limiter   *rate.Limiter
	Log       *zap.Logger
}

func NewPopulationRegistryClient(gatewayTransport contracts.GatewayTransport, requestsPerSecond float64, burst int, logger *zap.Logger) contracts.PopulationRegistryClient {
	oncePopulationRegistryClient.Do(func() {
		populationRegistryClientInstance = newPopulationRegistryClient(gatewayTransport, requestsPerSecond, burst, logger)
	})
	return populationRegistryClientInstance
}

func newPopulationRegistryClient(gatewayTransport contracts.GatewayTransport, requestsPerSecond float64, burst int, logger *zap.Logger) *populationRegistryClient {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &populationRegistryClient{
		Transport: gatewayTransport,
		Limiter:   rate.NewLimiter(limit, burst),
		Log:       logger,
	}
}

func (c *populationRegistryClient) GetCitizen(ctx context.Context, gateway models.RemoteGatewayConfig, request *models.CitizenRequest) (*models.CitizenResponse, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("populationRegistryClient.GetCitizen called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingIdentifierTypeKey, request.DocumentType),
	)

	if request.FosaID == "" {
		request.FosaID = gateway.FacilityID
	}

	response := new(models.CitizenResponse)
	err := c.post(ctx, gateway, request, response, "populationRegistryClient.GetCitizen")
	if err != nil {
		return nil, err
	}

	c.Log.Info("populationRegistryClient.GetCitizen succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOutcomeKey, response.Status),
	)
	return response, nil
}

// SearchByName uses the registry's wildcard matching on both name parts.
func (c *populationRegistryClient) SearchByName(ctx context.Context, gateway models.RemoteGatewayConfig, surName, postNames, yearOfBirth string) ([]models.Citizen, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("populationRegistryClient.SearchByName called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	request := &models.CitizenRequest{
		DocumentType: constvars.NPRDocumentOthers,
		SurName:      "%" + strings.TrimSpace(surName) + "%",
		PostNames:    "%" + strings.TrimSpace(postNames) + "%",
		YearOfBirth:  yearOfBirth,
		FosaID:       gateway.FacilityID,
	}

	response := new(models.CitizenListResponse)
	err := c.post(ctx, gateway, request, response, "populationRegistryClient.SearchByName")
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(response.Status, constvars.NPRStatusOK) {
		c.Log.Info("populationRegistryClient.SearchByName registry answered without results",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOutcomeKey, response.Status),
		)
		return nil, nil
	}

	c.Log.Info("populationRegistryClient.SearchByName succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResponseLengthKey, len(response.Data)),
	)
	return response.Data, nil
}

func (c *populationRegistryClient) post(ctx context.Context, gateway models.RemoteGatewayConfig, request interface{}, response interface{}, caller string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if err := c.Limiter.Wait(ctx); err != nil {
		c.Log.Warn(caller+" rate limiter wait aborted",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrUpstreamUnreachable(err, constvars.GatewayTargetPopulationRegistry)
	}

	body, err := json.Marshal(request)
	if err != nil {
		c.Log.Error(caller+" error marshaling JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrCannotMarshalJSON(err)
	}

	header := http.Header{}
	header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)

	outcome := c.Transport.Do(ctx, &models.GatewayRequest{
		Target: constvars.GatewayTargetPopulationRegistry,
		Method: constvars.MethodPost,
		URL:    gateway.BaseURL + constvars.PopulationRegistryPath,
		Body:   body,
		Header: header,
		Config: gateway,
	})
	if !outcome.IsSuccess() {
		err := transport.ErrorFromOutcome(outcome, constvars.GatewayTargetPopulationRegistry)
		c.Log.Error(caller+" error calling population registry",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}

	err = json.Unmarshal(outcome.Body, response)
	if err != nil {
		c.Log.Error(caller+" error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrDecodeResponse(err, constvars.GatewayTargetPopulationRegistry)
	}
	return nil
}
