package proxy

import (
	"bytes"
	"context"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/fhir_dto"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// patientIDFromUPI sets Patient.id to the UPI identifier value on writes,
// which the registry requires. Unknown fields are preserved.
func (p *compatibilityProxy) patientIDFromUPI(ctx context.Context, request *outboundRequest) []byte {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	body := request.Body

	if request.Method != constvars.MethodPost && request.Method != constvars.MethodPut {
		return body
	}
	if !strings.Contains(request.ResourcePath, fhir_dto.ResourceTypePatient) || len(body) == 0 {
		return body
	}

	var resource map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&resource); err != nil {
		p.Log.Warn("compatibilityProxy.patientIDFromUPI body is not JSON, forwarding as-is",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return body
	}
	if resourceType, _ := resource["resourceType"].(string); resourceType != fhir_dto.ResourceTypePatient {
		return body
	}

	upi := upiFromIdentifiers(resource["identifier"])
	if upi == "" {
		p.Log.Warn("compatibilityProxy.patientIDFromUPI patient has no UPI identifier, forwarding as-is",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return body
	}

	resource["id"] = upi
	transformed, err := json.Marshal(resource)
	if err != nil {
		p.Log.Warn("compatibilityProxy.patientIDFromUPI could not re-encode patient, forwarding as-is",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return body
	}

	p.Log.Info("compatibilityProxy.patientIDFromUPI set patient id from UPI",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUPIKey, upi),
	)
	return transformed
}

func upiFromIdentifiers(raw interface{}) string {
	identifiers, ok := raw.([]interface{})
	if !ok {
		return ""
	}
	for _, item := range identifiers {
		identifier, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		system, _ := identifier["system"].(string)
		value, _ := identifier["value"].(string)
		if system == constvars.IdentifierSystemUPI && value != "" {
			return value
		}
	}
	return ""
}
