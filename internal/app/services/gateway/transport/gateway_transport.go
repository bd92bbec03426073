package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/exceptions"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	gatewayTransportInstance contracts.GatewayTransport
	onceGatewayTransport     sync.Once
)

type gatewayTransport struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Metrics    contracts.GatewayMetrics
	Log        *zap.Logger
}

func NewGatewayTransport(timeout time.Duration, metrics contracts.GatewayMetrics, logger *zap.Logger) contracts.GatewayTransport {
	onceGatewayTransport.Do(func() {
		gatewayTransportInstance = New(timeout, metrics, logger)
	})
	return gatewayTransportInstance
}

// New builds a transport that leaves compressed bodies untouched, so callers
// decide how to decode them.
func New(timeout time.Duration, metrics contracts.GatewayMetrics, logger *zap.Logger) *gatewayTransport {
	httpTransport := http.DefaultTransport.(*http.Transport).Clone()
	httpTransport.DisableCompression = true

	return &gatewayTransport{
		HTTPClient: &http.Client{Transport: httpTransport},
		Timeout:    timeout,
		Metrics:    metrics,
		Log:        logger,
	}
}

// Do never returns nil. Timeouts and transport failures are classified as unreachable.
func (t *gatewayTransport) Do(ctx context.Context, request *models.GatewayRequest) *models.GatewayCallOutcome {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	t.Log.Info("gatewayTransport.Do called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTargetKey, request.Target),
		zap.String(constvars.LoggingMethodKey, request.Method),
		zap.String(constvars.LoggingURLKey, request.URL),
	)

	start := time.Now()
	outcome := t.do(ctx, request)
	duration := time.Since(start)
	t.Metrics.ObserveGatewayCall(request.Target, string(outcome.Kind), duration)

	fields := []zap.Field{
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTargetKey, request.Target),
		zap.String(constvars.LoggingOutcomeKey, string(outcome.Kind)),
		zap.Int(constvars.LoggingStatusCodeKey, outcome.StatusCode),
		zap.Duration(constvars.LoggingDurationKey, duration),
	}
	if outcome.Kind == models.OutcomeUnreachable {
		t.Log.Warn("gatewayTransport.Do upstream unreachable", append(fields, zap.Error(outcome.Cause))...)
		return outcome
	}
	t.Log.Info("gatewayTransport.Do completed", fields...)
	return outcome
}

func (t *gatewayTransport) do(ctx context.Context, request *models.GatewayRequest) *models.GatewayCallOutcome {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	var body io.Reader
	if request.Body != nil {
		body = bytes.NewReader(request.Body)
	}

	req, err := http.NewRequestWithContext(ctx, request.Method, request.URL, body)
	if err != nil {
		return &models.GatewayCallOutcome{Kind: models.OutcomeUnreachable, Cause: err}
	}
	for key, values := range request.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Del(constvars.HeaderAuthorization)
	req.SetBasicAuth(request.Config.Username, request.Config.Password)

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return &models.GatewayCallOutcome{Kind: models.OutcomeUnreachable, Cause: err}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.GatewayCallOutcome{Kind: models.OutcomeUnreachable, Cause: err}
	}

	return &models.GatewayCallOutcome{
		Kind:       models.ClassifyStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Body:       responseBody,
		Header:     resp.Header,
	}
}

// ErrorFromOutcome maps a non-success outcome onto the error taxonomy.
func ErrorFromOutcome(outcome *models.GatewayCallOutcome, target string) error {
	if outcome == nil {
		return exceptions.ErrUpstreamUnreachable(errors.New("no outcome"), target)
	}
	switch outcome.Kind {
	case models.OutcomeSuccess:
		return nil
	case models.OutcomeClientError:
		return exceptions.ErrUpstreamRejected(fmt.Errorf("%s", truncate(outcome.Body)), target, outcome.StatusCode)
	case models.OutcomeServerError, models.OutcomeNotModified, models.OutcomeRedirect, models.OutcomeUnexpected:
		return exceptions.ErrUpstreamFault(fmt.Errorf("%s", truncate(outcome.Body)), target, outcome.StatusCode)
	default:
		return exceptions.ErrUpstreamUnreachable(outcome.Cause, target)
	}
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
