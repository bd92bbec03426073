package proxy

import (
	"bytes"
	"compress/gzip"
	"io"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"strings"

	"github.com/andybalholm/brotli"
)

// decodedBody undoes gzip or br content encoding. Other encodings are returned as-is.
func decodedBody(outcome *models.GatewayCallOutcome) ([]byte, error) {
	if outcome.Header == nil || len(outcome.Body) == 0 {
		return outcome.Body, nil
	}

	encoding := strings.ToLower(strings.TrimSpace(outcome.Header.Get(constvars.HeaderContentEncoding)))
	switch {
	case strings.Contains(encoding, constvars.EncodingGzip):
		reader, err := gzip.NewReader(bytes.NewReader(outcome.Body))
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return io.ReadAll(reader)
	case encoding == constvars.EncodingBrotli:
		return io.ReadAll(brotli.NewReader(bytes.NewReader(outcome.Body)))
	}
	return outcome.Body, nil
}
