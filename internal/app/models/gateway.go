package models

import (
	"net/http"
	"primarycare-identity-service/internal/pkg/constvars"
)

// RemoteGatewayConfig is resolved per call and passed explicitly to every remote client.
type RemoteGatewayConfig struct {
	BaseURL             string
	ClientRegistryURL   string
	Username            string
	Password            string
	FacilityID          string
	DefaultLocationCode string
	Status              string
}

// GatewaySettings is the administrative override stored in redis.
type GatewaySettings struct {
	BaseURL             string `redis:"baseUrl"`
	ClientRegistryURL   string `redis:"clientRegistryUrl"`
	Username            string `redis:"username"`
	Password            string `redis:"password"`
	FacilityID          string `redis:"facilityId"`
	DefaultLocationCode string `redis:"defaultLocationCode"`
}

func GatewayStatusFor(url, username, password string) string {
	switch {
	case url == "":
		return constvars.GatewayStatusURLUndefined
	case username == "":
		return constvars.GatewayStatusClientIDUndefined
	case password == "":
		return constvars.GatewayStatusPasswordUndefined
	}
	return constvars.GatewayStatusDefined
}

func (c RemoteGatewayConfig) IsDefined() bool {
	return c.Status == constvars.GatewayStatusDefined
}

// ProxyStatus evaluates the proxy's own upstream url instead of the API base url.
func (c RemoteGatewayConfig) ProxyStatus() string {
	return GatewayStatusFor(c.ClientRegistryURL, c.Username, c.Password)
}

// GatewayContext carries the outcome of a single connectivity probe through one decision point.
type GatewayContext struct {
	Config RemoteGatewayConfig
	Online bool
}

func (g GatewayContext) Usable() bool {
	return g.Online && g.Config.IsDefined()
}

type GatewayOutcomeKind string

const (
	OutcomeSuccess     GatewayOutcomeKind = "success"
	OutcomeNotModified GatewayOutcomeKind = "not_modified"
	OutcomeRedirect    GatewayOutcomeKind = "redirect"
	OutcomeClientError GatewayOutcomeKind = "client_error"
	OutcomeServerError GatewayOutcomeKind = "server_error"
	OutcomeUnexpected  GatewayOutcomeKind = "unexpected"
	OutcomeUnreachable GatewayOutcomeKind = "unreachable"
)

type GatewayCallOutcome struct {
	Kind       GatewayOutcomeKind
	StatusCode int
	Body       []byte
	Header     http.Header
	Cause      error
}

func (o *GatewayCallOutcome) IsSuccess() bool {
	return o != nil && o.Kind == OutcomeSuccess
}

// ClassifyStatus buckets a final upstream status. 304 answers a conditional
// proxy GET and is not a failure. Any other 3xx reaching here is a redirect
// the client did not follow, and 1xx never ends an exchange.
func ClassifyStatus(statusCode int) GatewayOutcomeKind {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return OutcomeSuccess
	case statusCode == http.StatusNotModified:
		return OutcomeNotModified
	case statusCode >= 300 && statusCode < 400:
		return OutcomeRedirect
	case statusCode >= 400 && statusCode < 500:
		return OutcomeClientError
	case statusCode >= 500 && statusCode < 600:
		return OutcomeServerError
	}
	return OutcomeUnexpected
}

// GatewayRequest is one outbound call. Credentials come from Config.
type GatewayRequest struct {
	Target string
	Method string
	URL    string
	Body   []byte
	Header http.Header
	Config RemoteGatewayConfig
}
