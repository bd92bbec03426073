package proxy

import (
	"bytes"
	"context"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/fhir_dto"
	"primarycare-identity-service/internal/pkg/utils"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	fallbackRecovered = "recovered"
	fallbackEmpty     = "empty"
	fallbackFailed    = "failed"
)

// identifierSystemValue matches identifier=<system>|<value>, with the pipe
// raw or percent-encoded.
var identifierSystemValue = regexp.MustCompile(`identifier=([^&|%]+)(%7C|%7c|\|)([^&]+)`)

// identifierSearchFallback retries an empty identifier search once with the
// system part removed. The retry is kept only if it found something.
func (p *compatibilityProxy) identifierSearchFallback(ctx context.Context, request *outboundRequest, outcome *models.GatewayCallOutcome) *models.GatewayCallOutcome {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if request.Method != constvars.MethodGet ||
		!strings.Contains(request.ResourcePath, fhir_dto.ResourceTypePatient) ||
		!strings.Contains(request.RawQuery, "identifier=") {
		return outcome
	}
	if !outcome.IsSuccess() || !isEmptySearchResult(outcome) {
		return outcome
	}

	rewritten, ok := valueOnlyIdentifierQuery(request.RawQuery)
	if !ok {
		return outcome
	}

	utils.LogBusinessEvent(p.Log, utils.BusinessEventIdentifierFallback, requestID,
		zap.String(constvars.LoggingQueryKey, rewritten),
	)

	retry := *request
	retry.RawQuery = rewritten
	fallback := p.send(ctx, &retry)

	switch {
	case !fallback.IsSuccess():
		p.Metrics.IncProxyFallback(fallbackFailed)
		p.Log.Warn("compatibilityProxy.identifierSearchFallback retry failed, returning original response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOutcomeKey, string(fallback.Kind)),
		)
		return outcome
	case isEmptySearchResult(fallback):
		p.Metrics.IncProxyFallback(fallbackEmpty)
		return outcome
	}

	p.Metrics.IncProxyFallback(fallbackRecovered)
	p.Log.Info("compatibilityProxy.identifierSearchFallback value-only search found results",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	return fallback
}

// valueOnlyIdentifierQuery rewrites the first identifier=<system>|<value>
// occurrence to identifier=<value>. Later occurrences are left untouched.
func valueOnlyIdentifierQuery(rawQuery string) (string, bool) {
	match := identifierSystemValue.FindStringSubmatchIndex(rawQuery)
	if match == nil {
		return rawQuery, false
	}
	value := rawQuery[match[6]:match[7]]
	return rawQuery[:match[0]] + "identifier=" + value + rawQuery[match[1]:], true
}

func isEmptySearchResult(outcome *models.GatewayCallOutcome) bool {
	body, err := decodedBody(outcome)
	if err != nil {
		body = outcome.Body
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return true
	}
	return bytes.Contains(body, []byte(`"total":0`)) || bytes.Contains(body, []byte(`"total": 0`))
}
