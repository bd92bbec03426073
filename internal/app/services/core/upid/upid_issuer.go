package upid

import (
	"context"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/exceptions"
	"primarycare-identity-service/internal/pkg/utils"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	upidIssuerInstance contracts.UpidIssuer
	onceUpidIssuer     sync.Once
)

// documentPriority is the order in which a record's national documents are
// presented to the population registry.
var documentPriority = []string{
	constvars.IdentifierSystemNID,
	constvars.IdentifierSystemNIN,
	constvars.IdentifierSystemNIDApplicationNumber,
}

type issuer struct {
	PopulationRegistry contracts.PopulationRegistryClient
	Queue              contracts.OfflineTransactionQueue
	Metrics            contracts.GatewayMetrics
	Log                *zap.Logger
	now                func() time.Time
}

func NewUpidIssuer(
	populationRegistry contracts.PopulationRegistryClient,
	queue contracts.OfflineTransactionQueue,
	metrics contracts.GatewayMetrics,
	logger *zap.Logger,
) contracts.UpidIssuer {
	onceUpidIssuer.Do(func() {
		upidIssuerInstance = newIssuer(populationRegistry, queue, metrics, logger)
	})
	return upidIssuerInstance
}

func newIssuer(
	populationRegistry contracts.PopulationRegistryClient,
	queue contracts.OfflineTransactionQueue,
	metrics contracts.GatewayMetrics,
	logger *zap.Logger,
) *issuer {
	return &issuer{
		PopulationRegistry: populationRegistry,
		Queue:              queue,
		Metrics:            metrics,
		Log:                logger,
		now:                time.Now,
	}
}

// Ensure returns the record's UPI, asking the population registry for one when
// the gateway is usable and falling back to a provisional OFFLINE- value.
// Registry failures never surface to the caller.
func (s *issuer) Ensure(ctx context.Context, input *contracts.EnsureUpiInput) (*contracts.EnsureUpiOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if input == nil || input.Patient == nil {
		return nil, exceptions.ErrInputValidation(nil)
	}

	patient := input.Patient
	documentType, documentNumber := documentFor(patient)
	facilityID := input.Gateway.Config.FacilityID

	if upi := patient.UPI(); upi != "" {
		s.Log.Debug("upidIssuer.Ensure record already carries a UPI",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingUPIKey, upi),
		)
		return &contracts.EnsureUpiOutput{
			Upi:            upi,
			IsOffline:      utils.IsOfflineUPI(upi),
			DocumentType:   documentType,
			DocumentNumber: documentNumber,
			FacilityID:     facilityID,
		}, nil
	}

	s.Log.Info("upidIssuer.Ensure called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingIdentifierTypeKey, documentType),
		zap.Bool(constvars.LoggingOnlineKey, input.Gateway.Online),
		zap.String(constvars.LoggingGatewayStatusKey, input.Gateway.Config.Status),
	)

	if input.Gateway.Usable() {
		upi := s.requestUpi(ctx, input.Gateway.Config, patient, documentType, documentNumber)
		if upi != "" {
			utils.LogBusinessEvent(s.Log, utils.BusinessEventUpiIssued, requestID,
				zap.String(constvars.LoggingUPIKey, upi),
				zap.String(constvars.LoggingIdentifierTypeKey, documentType),
			)
			return &contracts.EnsureUpiOutput{
				Upi:            upi,
				Issued:         true,
				DocumentType:   documentType,
				DocumentNumber: documentNumber,
				FacilityID:     facilityID,
			}, nil
		}
	}

	upi := utils.GenerateOfflineUPI()
	s.Metrics.IncProvisionalUpi()
	utils.LogBusinessEvent(s.Log, utils.BusinessEventProvisionalUpiIssued, requestID,
		zap.String(constvars.LoggingUPIKey, upi),
		zap.String(constvars.LoggingIdentifierTypeKey, documentType),
	)

	return &contracts.EnsureUpiOutput{
		Upi:            upi,
		IsOffline:      true,
		Issued:         true,
		DocumentType:   documentType,
		DocumentNumber: documentNumber,
		FacilityID:     facilityID,
	}, nil
}

func (s *issuer) requestUpi(ctx context.Context, gateway models.RemoteGatewayConfig, patient *models.PatientIdentity, documentType, documentNumber string) string {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	response, err := s.PopulationRegistry.GetCitizen(ctx, gateway, buildIssueRequest(patient, documentType, documentNumber, gateway.FacilityID))
	if err != nil {
		s.Log.Warn("upidIssuer.Ensure population registry call failed, issuing provisional UPI",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return ""
	}
	if !strings.EqualFold(response.Status, constvars.NPRStatusOK) || response.Data.Upi == "" {
		s.Log.Warn("upidIssuer.Ensure population registry returned no UPI, issuing provisional UPI",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOutcomeKey, response.Status),
		)
		return ""
	}
	return response.Data.Upi
}

func (s *issuer) LookupByDocument(ctx context.Context, input *contracts.LookupByDocumentInput) (*models.Citizen, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("upidIssuer.LookupByDocument called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingIdentifierTypeKey, input.DocumentType),
	)

	request := &models.CitizenRequest{
		DocumentType:   input.DocumentType,
		DocumentNumber: input.Value,
		FosaID:         input.FacilityID,
	}
	setDocumentField(request, input.DocumentType, input.Value)

	response, err := s.PopulationRegistry.GetCitizen(ctx, input.Gateway, request)
	if err != nil {
		s.Log.Error("upidIssuer.LookupByDocument error from population registry",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if !strings.EqualFold(response.Status, constvars.NPRStatusOK) || response.Data.Upi == "" {
		s.Log.Info("upidIssuer.LookupByDocument no citizen found",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOutcomeKey, response.Status),
		)
		return nil, nil
	}

	s.Log.Info("upidIssuer.LookupByDocument succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUPIKey, response.Data.Upi),
	)
	return &response.Data, nil
}

// RecordProvisional keeps a provisional UPI for later reconciliation. Registry
// issued UPIs are not recorded.
func (s *issuer) RecordProvisional(ctx context.Context, output *contracts.EnsureUpiOutput, patient *models.PatientIdentity, localID string) error {
	if output == nil || !output.IsOffline || !output.Issued {
		return nil
	}
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	provisional := &models.ProvisionalUpid{
		Upi:            output.Upi,
		DocumentType:   output.DocumentType,
		DocumentNumber: output.DocumentNumber,
		LocalID:        localID,
		SurName:        patient.SurName,
		PostNames:      patient.PostNames,
		DateOfBirth:    patient.DateOfBirth,
		Gender:         patient.Gender,
		FacilityID:     output.FacilityID,
		CreatedAt:      s.now().UTC(),
	}

	err := s.Queue.RecordProvisional(ctx, provisional)
	if err != nil {
		s.Log.Error("upidIssuer.RecordProvisional error recording provisional UPI",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingUPIKey, output.Upi),
			zap.Error(err),
		)
		return err
	}

	s.Log.Info("upidIssuer.RecordProvisional succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUPIKey, output.Upi),
		zap.String(constvars.LoggingLocalIDKey, localID),
	)
	return nil
}

// documentFor picks the first national document the record carries, or a
// generated temporary reference.
func documentFor(patient *models.PatientIdentity) (string, string) {
	for _, system := range documentPriority {
		if value := patient.IdentifierValue(system); value != "" {
			return system, value
		}
	}
	return constvars.SearchTypeTempID, utils.GenerateTemporaryID()
}

func buildIssueRequest(patient *models.PatientIdentity, documentType, documentNumber, facilityID string) *models.CitizenRequest {
	request := &models.CitizenRequest{
		DocumentType:   documentType,
		DocumentNumber: documentNumber,
		FosaID:         facilityID,
		SurName:        patient.SurName,
		PostNames:      patient.PostNames,
		DateOfBirth:    patient.DateOfBirth,
		Sex:            patient.Gender,
		Nationality:    patient.Nationality,
		FatherName:     patient.FatherName,
		MotherName:     patient.MotherName,
		SpouseName:     patient.Spouse,
		PhoneNumber:    patient.PhoneNumber,
	}
	setDocumentField(request, documentType, documentNumber)
	return request
}

func setDocumentField(request *models.CitizenRequest, documentType, value string) {
	switch strings.ToUpper(documentType) {
	case constvars.IdentifierSystemNID:
		request.Nid = value
	case constvars.IdentifierSystemNIN:
		request.Nin = value
	case constvars.IdentifierSystemNIDApplicationNumber:
		request.ApplicationNumber = value
	}
}
