package contracts

import (
	"context"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/dto/requests"
	"primarycare-identity-service/internal/pkg/dto/responses"
	"primarycare-identity-service/internal/pkg/fhir_dto"
	"time"
)

type ConnectivityProbe interface {
	Check(ctx context.Context) bool
}

type GatewaySettingsService interface {
	Resolve(ctx context.Context) models.RemoteGatewayConfig
	GetSettings(ctx context.Context) (*responses.GatewaySettings, error)
	SaveSettings(ctx context.Context, request *requests.GatewaySettings) (*responses.GatewaySettings, error)
}

type GatewayTransport interface {
	Do(ctx context.Context, request *models.GatewayRequest) *models.GatewayCallOutcome
}

type ClientRegistryClient interface {
	FindByIdentifier(ctx context.Context, gateway models.RemoteGatewayConfig, value string) ([]fhir_dto.Patient, error)
	SearchByName(ctx context.Context, gateway models.RemoteGatewayConfig, family, given, birthDate string) ([]fhir_dto.Patient, error)
	SavePatient(ctx context.Context, gateway models.RemoteGatewayConfig, patient *fhir_dto.Patient) (*models.GatewayCallOutcome, error)
	PatientURL(gateway models.RemoteGatewayConfig) string
}

type PopulationRegistryClient interface {
	GetCitizen(ctx context.Context, gateway models.RemoteGatewayConfig, request *models.CitizenRequest) (*models.CitizenResponse, error)
	SearchByName(ctx context.Context, gateway models.RemoteGatewayConfig, surName, postNames, yearOfBirth string) ([]models.Citizen, error)
}

type GatewayMetrics interface {
	ObserveGatewayCall(target, outcome string, duration time.Duration)
	IncOfflineTransaction(transactionType string)
	IncProvisionalUpi()
	IncProxyFallback(result string)
	IncResolution(originRank string)
}
