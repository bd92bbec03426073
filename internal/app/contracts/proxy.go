package contracts

import (
	"context"
	"net/http"
)

type CompatibilityProxy interface {
	Forward(ctx context.Context, request *ForwardRequest) *ForwardResponse
}

// ForwardRequest keeps RawQuery exactly as received.
type ForwardRequest struct {
	Method       string
	ResourcePath string
	RawQuery     string
	Body         []byte
	Header       http.Header
}

type ForwardResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
