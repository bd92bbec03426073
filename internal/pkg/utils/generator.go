package utils

import (
	"primarycare-identity-service/internal/pkg/constvars"
	"strings"

	"github.com/google/uuid"
)

func GenerateRequestID() string {
	return uuid.NewString()
}

// GenerateOfflineUPI returns a provisional UPI: the prefix followed by the
// first 12 characters of a random UUID, upper-cased.
func GenerateOfflineUPI() string {
	return constvars.OfflineUpidPrefix + strings.ToUpper(uuid.NewString()[:12])
}

// GenerateTemporaryID returns a temporary document reference used when a
// record has no national document to present to the population registry.
func GenerateTemporaryID() string {
	return constvars.TemporaryIDPrefix + strings.ToUpper(uuid.NewString()[:8])
}

func IsOfflineUPI(value string) bool {
	return strings.HasPrefix(value, constvars.OfflineUpidPrefix)
}
