package proxy

import (
	"context"
	"fmt"
	"net/http"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/fhir_dto"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	compatibilityProxyInstance contracts.CompatibilityProxy
	onceCompatibilityProxy     sync.Once
)

// forwardedHeaders is the allow-list copied from the caller. Accept-Encoding is
// left out so the registry answers uncompressed whenever it can.
var forwardedHeaders = []string{
	constvars.HeaderContentType,
	constvars.HeaderAccept,
	constvars.HeaderAcceptLanguage,
	constvars.HeaderCacheControl,
	constvars.HeaderIfNoneMatch,
	constvars.HeaderIfModifiedSince,
}

// droppedResponseHeaders never reach the caller; the body may have been
// decoded or re-framed.
var droppedResponseHeaders = []string{
	constvars.HeaderContentEncoding,
	constvars.HeaderContentLength,
	"Transfer-Encoding",
	"Connection",
}

// outboundRequest is one upstream exchange as seen by the transform and retry steps.
type outboundRequest struct {
	Method       string
	ResourcePath string
	RawQuery     string
	Body         []byte
	Header       http.Header
	Config       models.RemoteGatewayConfig
	BaseURL      string
}

func (r *outboundRequest) URL() string {
	url := r.BaseURL + r.ResourcePath
	if r.RawQuery != "" {
		url += "?" + r.RawQuery
	}
	return url
}

// bodyTransform rewrites the outgoing body. It must return the original body
// when it does not apply or cannot parse it.
type bodyTransform func(ctx context.Context, request *outboundRequest) []byte

// retryStep may issue one more upstream call and returns the outcome to keep.
type retryStep func(ctx context.Context, request *outboundRequest, outcome *models.GatewayCallOutcome) *models.GatewayCallOutcome

type compatibilityProxy struct {
	GatewaySettings contracts.GatewaySettingsService
	Transport       contracts.GatewayTransport
	Metrics         contracts.GatewayMetrics
	Log             *zap.Logger
	bodyTransforms  []bodyTransform
	retrySteps      []retryStep
}

func NewCompatibilityProxy(gatewaySettings contracts.GatewaySettingsService, transport contracts.GatewayTransport, metrics contracts.GatewayMetrics, logger *zap.Logger) contracts.CompatibilityProxy {
	onceCompatibilityProxy.Do(func() {
		compatibilityProxyInstance = newCompatibilityProxy(gatewaySettings, transport, metrics, logger)
	})
	return compatibilityProxyInstance
}

func newCompatibilityProxy(gatewaySettings contracts.GatewaySettingsService, transport contracts.GatewayTransport, metrics contracts.GatewayMetrics, logger *zap.Logger) *compatibilityProxy {
	p := &compatibilityProxy{
		GatewaySettings: gatewaySettings,
		Transport:       transport,
		Metrics:         metrics,
		Log:             logger,
	}
	p.bodyTransforms = []bodyTransform{p.patientIDFromUPI}
	p.retrySteps = []retryStep{p.identifierSearchFallback}
	return p
}

// Forward relays one request to the client registry. It always answers:
// configuration gaps and unreachable upstreams become 503 OperationOutcomes,
// anything unexpected becomes a 500 OperationOutcome.
func (p *compatibilityProxy) Forward(ctx context.Context, request *contracts.ForwardRequest) (response *contracts.ForwardResponse) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	p.Log.Info("compatibilityProxy.Forward called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMethodKey, request.Method),
		zap.String(constvars.LoggingEndpointKey, request.ResourcePath),
	)

	defer func() {
		if recovered := recover(); recovered != nil {
			p.Log.Error("compatibilityProxy.Forward unexpected failure",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Any("panic", recovered),
			)
			response = operationOutcomeResponse(constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication)
		}
	}()

	config := p.GatewaySettings.Resolve(ctx)
	if status := config.ProxyStatus(); status != constvars.GatewayStatusDefined {
		p.Log.Warn("compatibilityProxy.Forward gateway not configured",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingGatewayStatusKey, status),
		)
		return operationOutcomeResponse(constvars.StatusServiceUnavailable,
			fmt.Sprintf("%s: %s", constvars.ErrClientGatewayNotConfigured, status))
	}

	outbound := &outboundRequest{
		Method:       strings.ToUpper(request.Method),
		ResourcePath: "/" + strings.TrimLeft(request.ResourcePath, "/"),
		RawQuery:     request.RawQuery,
		Body:         request.Body,
		Header:       filterHeaders(request.Header),
		Config:       config,
		BaseURL:      strings.TrimRight(config.ClientRegistryURL, "/"),
	}
	for _, transform := range p.bodyTransforms {
		outbound.Body = transform(ctx, outbound)
	}

	outcome := p.send(ctx, outbound)
	for _, step := range p.retrySteps {
		outcome = step(ctx, outbound, outcome)
	}

	if outcome.Kind == models.OutcomeUnreachable {
		p.Log.Warn("compatibilityProxy.Forward upstream unreachable",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(outcome.Cause),
		)
		return operationOutcomeResponse(constvars.StatusServiceUnavailable, constvars.ErrClientGatewayUnavailable)
	}

	response = p.relay(ctx, outcome)
	p.Log.Info("compatibilityProxy.Forward succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingStatusCodeKey, response.StatusCode),
	)
	return response
}

func (p *compatibilityProxy) send(ctx context.Context, request *outboundRequest) *models.GatewayCallOutcome {
	return p.Transport.Do(ctx, &models.GatewayRequest{
		Target: constvars.GatewayTargetProxy,
		Method: request.Method,
		URL:    request.URL(),
		Body:   request.Body,
		Header: request.Header,
		Config: request.Config,
	})
}

// relay strips transfer headers and decodes compressed bodies. Error bodies
// are always labelled as JSON.
func (p *compatibilityProxy) relay(ctx context.Context, outcome *models.GatewayCallOutcome) *contracts.ForwardResponse {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	header := http.Header{}
	for key, values := range outcome.Header {
		header[key] = append([]string(nil), values...)
	}
	for _, key := range droppedResponseHeaders {
		header.Del(key)
	}

	body, err := decodedBody(outcome)
	if err != nil {
		p.Log.Warn("compatibilityProxy.Forward could not decode upstream body, relaying raw bytes",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		body = outcome.Body
	}

	if outcome.StatusCode >= constvars.StatusBadRequest {
		header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	}

	return &contracts.ForwardResponse{
		StatusCode: outcome.StatusCode,
		Header:     header,
		Body:       body,
	}
}

func filterHeaders(incoming http.Header) http.Header {
	header := http.Header{}
	for _, key := range forwardedHeaders {
		if value := incoming.Get(key); value != "" {
			header.Set(key, value)
		}
	}
	if header.Get(constvars.HeaderAccept) == "" {
		header.Set(constvars.HeaderAccept, constvars.DefaultFHIRAccept)
	}
	return header
}

func operationOutcomeResponse(statusCode int, diagnostics string) *contracts.ForwardResponse {
	severity := fhir_dto.IssueSeverityWarning
	if statusCode >= constvars.StatusInternalServerError {
		severity = fhir_dto.IssueSeverityError
	}
	body, _ := json.Marshal(fhir_dto.NewOperationOutcome(severity, diagnostics))

	header := http.Header{}
	header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	return &contracts.ForwardResponse{
		StatusCode: statusCode,
		Header:     header,
		Body:       body,
	}
}
