package records

import (
	"context"
	"primarycare-identity-service/internal/app/models"
)

// gatewayResolver resolves the gateway configuration and probes connectivity
// at most once per write, and only when a step actually needs the gateway.
type gatewayResolver struct {
	w       *writer
	gateway *models.GatewayContext
}

func (w *writer) newGatewayResolver() *gatewayResolver {
	return &gatewayResolver{w: w}
}

func (r *gatewayResolver) get(ctx context.Context) models.GatewayContext {
	if r.gateway != nil {
		return *r.gateway
	}
	gateway := models.GatewayContext{Config: r.w.GatewaySettings.Resolve(ctx)}
	if gateway.Config.IsDefined() {
		gateway.Online = r.w.Probe.Check(ctx)
	}
	r.gateway = &gateway
	return gateway
}
