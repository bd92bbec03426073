package resolution

import (
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/utils"
	"strings"

	"go.uber.org/zap"
)

// mergeRegistryOntoLocal returns the registry view of a locally known person.
// The local id and TRACNET number are carried over, registry address content
// wins while local address ids are kept, and local addresses of types the
// registry does not supply survive.
func mergeRegistryOntoLocal(registry, local *models.PatientIdentity, logger *zap.Logger, requestID string) *models.PatientIdentity {
	merged := *registry
	merged.LocalID = local.LocalID
	merged.OriginRank = constvars.RankCRLocal
	merged.Identifiers = append([]models.Identifier(nil), registry.Identifiers...)

	if tracnet := local.IdentifierValue(constvars.IdentifierSystemTracnetNumber); tracnet != "" &&
		merged.IdentifierValue(constvars.IdentifierSystemTracnetNumber) == "" {
		merged.SetIdentifier(constvars.IdentifierSystemTracnetNumber, tracnet, "")
	}

	if localUPI := local.UPI(); localUPI != "" && localUPI != merged.UPI() {
		switch {
		case merged.UPI() == "":
			merged.SetIdentifier(constvars.IdentifierSystemUPI, localUPI, "")
		case utils.IsOfflineUPI(localUPI):
			logger.Info("resolutionOrchestrator registry UPI supersedes provisional local UPI",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingUPIKey, merged.UPI()),
				zap.String(constvars.LoggingLocalIDKey, local.LocalID),
			)
		default:
			logger.Warn("resolutionOrchestrator registry UPI differs from local UPI, keeping local",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingUPIKey, localUPI),
				zap.String(constvars.LoggingLocalIDKey, local.LocalID),
			)
			merged.ReplaceUPI(localUPI)
		}
	}

	merged.Addresses = mergeAddresses(registry.Addresses, local.Addresses)
	return &merged
}

func mergeAddresses(registry, local []models.Address) []models.Address {
	merged := make([]models.Address, 0, len(registry)+len(local))
	covered := make(map[string]bool, len(registry))

	for _, address := range registry {
		addressType := strings.ToUpper(strings.TrimSpace(address.Type))
		if addressType == "" {
			merged = append(merged, address)
			continue
		}
		covered[addressType] = true
		for _, candidate := range local {
			if strings.EqualFold(candidate.Type, address.Type) && candidate.AddressID != "" {
				address.AddressID = candidate.AddressID
				break
			}
		}
		merged = append(merged, address)
	}

	for _, address := range local {
		if !covered[strings.ToUpper(strings.TrimSpace(address.Type))] {
			merged = append(merged, address)
		}
	}
	return merged
}
