package contracts

import (
	"context"
	"primarycare-identity-service/internal/app/models"
)

type LocalStore interface {
	FindByIdentifier(ctx context.Context, value string) ([]models.PatientIdentity, error)
	FindByInsurance(ctx context.Context, cardNumber string) (*models.PatientIdentity, error)
	Save(ctx context.Context, patient *models.PatientIdentity) (string, error)
	Search(ctx context.Context, criteria *models.LocalSearchCriteria) ([]models.PatientIdentity, error)
}

type ResolutionOrchestrator interface {
	ResolveByIdentifier(ctx context.Context, input *ResolveByIdentifierInput) (*models.ResolutionResult, error)
	ResolveByName(ctx context.Context, input *ResolveByNameInput) (*models.ResolutionResult, error)
}

type ResolveByIdentifierInput struct {
	Value        string
	Type         string
	FacilityHint string
}

type ResolveByNameInput struct {
	SurName     string
	PostNames   string
	YearOfBirth string
	Origin      string
}

type PatientRecordWriter interface {
	Create(ctx context.Context, input *CreatePatientInput) (*CreatePatientOutput, error)
	Update(ctx context.Context, input *UpdatePatientInput) (*UpdatePatientOutput, error)
	CorrectUpi(ctx context.Context, input *CorrectUpiInput) (*CorrectUpiOutput, error)
}

type CreatePatientInput struct {
	Patient *models.PatientIdentity
}

type CreatePatientOutput struct {
	LocalID       string
	Upi           string
	IsOffline     bool
	TransactionID string
}

type UpdatePatientInput struct {
	Patient              *models.PatientIdentity
	MatchIdentifier      string
	PushToClientRegistry bool
}

type UpdatePatientOutput struct {
	Status        string
	TransactionID string
}

type CorrectUpiInput struct {
	MatchIdentifier string
	Upi             string
}

type CorrectUpiOutput struct {
	Status        string
	PreviousUpi   string
	Upi           string
	TransactionID string
}

type UpidIssuer interface {
	Ensure(ctx context.Context, input *EnsureUpiInput) (*EnsureUpiOutput, error)
	LookupByDocument(ctx context.Context, input *LookupByDocumentInput) (*models.Citizen, error)
	RecordProvisional(ctx context.Context, output *EnsureUpiOutput, patient *models.PatientIdentity, localID string) error
}

type EnsureUpiInput struct {
	Patient *models.PatientIdentity
	Gateway models.GatewayContext
}

type EnsureUpiOutput struct {
	Upi            string
	IsOffline      bool
	Issued         bool
	DocumentType   string
	DocumentNumber string
	FacilityID     string
}

type LookupByDocumentInput struct {
	Gateway      models.RemoteGatewayConfig
	DocumentType string
	Value        string
	FacilityID   string
}
