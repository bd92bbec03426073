package records

import (
	"context"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/exceptions"
	"primarycare-identity-service/internal/pkg/fhir_dto"
	"primarycare-identity-service/internal/pkg/utils"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	patientRecordWriterInstance contracts.PatientRecordWriter
	oncePatientRecordWriter     sync.Once
)

type writer struct {
	LocalStore      contracts.LocalStore
	UpidIssuer      contracts.UpidIssuer
	ClientRegistry  contracts.ClientRegistryClient
	Queue           contracts.OfflineTransactionQueue
	GatewaySettings contracts.GatewaySettingsService
	Probe           contracts.ConnectivityProbe
	Log             *zap.Logger
}

func NewPatientRecordWriter(
	localStore contracts.LocalStore,
	upidIssuer contracts.UpidIssuer,
	clientRegistry contracts.ClientRegistryClient,
	queue contracts.OfflineTransactionQueue,
	gatewaySettings contracts.GatewaySettingsService,
	probe contracts.ConnectivityProbe,
	logger *zap.Logger,
) contracts.PatientRecordWriter {
	oncePatientRecordWriter.Do(func() {
		patientRecordWriterInstance = newWriter(localStore, upidIssuer, clientRegistry, queue, gatewaySettings, probe, logger)
	})
	return patientRecordWriterInstance
}

func newWriter(
	localStore contracts.LocalStore,
	upidIssuer contracts.UpidIssuer,
	clientRegistry contracts.ClientRegistryClient,
	queue contracts.OfflineTransactionQueue,
	gatewaySettings contracts.GatewaySettingsService,
	probe contracts.ConnectivityProbe,
	logger *zap.Logger,
) *writer {
	return &writer{
		LocalStore:      localStore,
		UpidIssuer:      upidIssuer,
		ClientRegistry:  clientRegistry,
		Queue:           queue,
		GatewaySettings: gatewaySettings,
		Probe:           probe,
		Log:             logger,
	}
}

// Create saves a new record locally and, for NPR-origin records, pushes it to
// the client registry. A failed push is deferred to the offline queue.
func (w *writer) Create(ctx context.Context, input *contracts.CreatePatientInput) (*contracts.CreatePatientOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if input == nil || input.Patient == nil {
		return nil, exceptions.ErrInputValidation(nil)
	}

	patient := input.Patient
	patient.Origin = strings.ToUpper(patient.Origin)
	patient.PostNames = utils.CapitalizeGivenName(patient.PostNames)
	w.Log.Info("patientRecordWriter.Create called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOriginKey, patient.Origin),
	)

	gateway := w.newGatewayResolver()

	ensured, err := w.ensureUpi(ctx, patient, gateway)
	if err != nil {
		return nil, err
	}

	localID, err := w.LocalStore.Save(ctx, patient)
	if err != nil {
		w.Log.Error("patientRecordWriter.Create error saving local record",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	w.recordProvisional(ctx, ensured, patient, localID)

	output := &contracts.CreatePatientOutput{
		LocalID:   localID,
		Upi:       ensured.Upi,
		IsOffline: ensured.IsOffline,
	}

	if patient.Origin == constvars.OriginNPR {
		output.TransactionID = w.pushOrDefer(ctx, gateway.get(ctx), patient, localID, syncIn)
	}

	w.Log.Info("patientRecordWriter.Create succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingLocalIDKey, localID),
		zap.String(constvars.LoggingUPIKey, output.Upi),
		zap.String(constvars.LoggingTransactionIDKey, output.TransactionID),
	)
	return output, nil
}

// Update overwrites the local record matched by MatchIdentifier. Local ids,
// address ids, the TRACNET number and an established UPI carry over from
// the stored record.
func (w *writer) Update(ctx context.Context, input *contracts.UpdatePatientInput) (*contracts.UpdatePatientOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if input == nil || input.Patient == nil || strings.TrimSpace(input.MatchIdentifier) == "" {
		return nil, exceptions.ErrInputValidation(nil)
	}

	patient := input.Patient
	patient.Origin = strings.ToUpper(patient.Origin)
	patient.PostNames = utils.CapitalizeGivenName(patient.PostNames)
	w.Log.Info("patientRecordWriter.Update called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOriginKey, patient.Origin),
		zap.Bool("push_to_client_registry", input.PushToClientRegistry),
	)

	matches, err := w.LocalStore.FindByIdentifier(ctx, input.MatchIdentifier)
	if err != nil {
		w.Log.Error("patientRecordWriter.Update error finding local record",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if len(matches) == 0 {
		w.Log.Info("patientRecordWriter.Update no local record matched",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return nil, exceptions.ErrPatientNotFound(nil, input.MatchIdentifier)
	}
	w.carryOver(requestID, patient, &matches[0])

	gateway := w.newGatewayResolver()

	ensured, err := w.ensureUpi(ctx, patient, gateway)
	if err != nil {
		return nil, err
	}

	localID, err := w.LocalStore.Save(ctx, patient)
	if err != nil {
		w.Log.Error("patientRecordWriter.Update error saving local record",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	w.recordProvisional(ctx, ensured, patient, localID)

	output := &contracts.UpdatePatientOutput{Status: constvars.StatusCompleted}
	if patient.Origin == constvars.OriginNPR || input.PushToClientRegistry {
		output.TransactionID = w.pushOrDefer(ctx, gateway.get(ctx), patient, localID, syncUp)
	}

	w.Log.Info("patientRecordWriter.Update succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingLocalIDKey, localID),
		zap.String(constvars.LoggingTransactionIDKey, output.TransactionID),
	)
	return output, nil
}

// CorrectUpi replaces the UPI of the record matched by MatchIdentifier and
// pushes the corrected record to the client registry. It is the only path
// that overwrites an established UPI.
func (w *writer) CorrectUpi(ctx context.Context, input *contracts.CorrectUpiInput) (*contracts.CorrectUpiOutput, error) {
	requestID := utils.GetRequestID(ctx)
	if input == nil || strings.TrimSpace(input.MatchIdentifier) == "" || strings.TrimSpace(input.Upi) == "" {
		return nil, exceptions.ErrInputValidation(nil)
	}
	upi := strings.TrimSpace(input.Upi)
	if utils.IsOfflineUPI(upi) {
		w.Log.Warn("patientRecordWriter.CorrectUpi refusing provisional UPI as correction",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingUPIKey, upi),
		)
		return nil, exceptions.ErrInputValidation(nil)
	}

	w.Log.Info("patientRecordWriter.CorrectUpi called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingIdentifierKey, input.MatchIdentifier),
	)

	matches, err := w.LocalStore.FindByIdentifier(ctx, input.MatchIdentifier)
	if err != nil {
		w.Log.Error("patientRecordWriter.CorrectUpi error finding local record",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if len(matches) == 0 {
		return nil, exceptions.ErrPatientNotFound(nil, input.MatchIdentifier)
	}

	patient := &matches[0]
	output := &contracts.CorrectUpiOutput{
		Status:      constvars.StatusCompleted,
		PreviousUpi: patient.UPI(),
		Upi:         upi,
	}
	if output.PreviousUpi == upi {
		w.Log.Info("patientRecordWriter.CorrectUpi UPI already current",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingLocalIDKey, patient.LocalID),
		)
		return output, nil
	}

	patient.ReplaceUPI(upi)
	localID, err := w.LocalStore.Save(ctx, patient)
	if err != nil {
		w.Log.Error("patientRecordWriter.CorrectUpi error saving local record",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	gateway := w.newGatewayResolver()
	output.TransactionID = w.pushOrDefer(ctx, gateway.get(ctx), patient, localID, syncUp)

	utils.LogBusinessEvent(w.Log, utils.BusinessEventUpiCorrected, requestID,
		zap.String(constvars.LoggingLocalIDKey, localID),
		zap.String("previous_upi", output.PreviousUpi),
		zap.String(constvars.LoggingUPIKey, upi),
		zap.String(constvars.LoggingTransactionIDKey, output.TransactionID),
	)
	return output, nil
}

func (w *writer) carryOver(requestID string, patient, stored *models.PatientIdentity) {
	patient.LocalID = stored.LocalID

	if tracnet := stored.IdentifierValue(constvars.IdentifierSystemTracnetNumber); tracnet != "" &&
		patient.IdentifierValue(constvars.IdentifierSystemTracnetNumber) == "" {
		patient.SetIdentifier(constvars.IdentifierSystemTracnetNumber, tracnet, "")
	}

	if storedUPI := stored.UPI(); storedUPI != "" {
		incoming := patient.UPI()
		switch {
		case incoming == "":
			patient.SetIdentifier(constvars.IdentifierSystemUPI, storedUPI, "")
		case incoming != storedUPI && !utils.IsOfflineUPI(storedUPI):
			w.Log.Warn("patientRecordWriter.Update incoming UPI differs from stored UPI, keeping stored",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingUPIKey, storedUPI),
			)
			patient.ReplaceUPI(storedUPI)
		}
	}

	for i := range patient.Addresses {
		if patient.Addresses[i].AddressID != "" {
			continue
		}
		if existing := stored.AddressOfType(patient.Addresses[i].Type); existing != nil {
			patient.Addresses[i].AddressID = existing.AddressID
		}
	}
}

func (w *writer) ensureUpi(ctx context.Context, patient *models.PatientIdentity, gateway *gatewayResolver) (*contracts.EnsureUpiOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	input := &contracts.EnsureUpiInput{Patient: patient}
	if patient.UPI() == "" {
		input.Gateway = gateway.get(ctx)
	}

	ensured, err := w.UpidIssuer.Ensure(ctx, input)
	if err != nil {
		w.Log.Error("patientRecordWriter error ensuring UPI",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	patient.SetIdentifier(constvars.IdentifierSystemUPI, ensured.Upi, "")
	return ensured, nil
}

func (w *writer) recordProvisional(ctx context.Context, ensured *contracts.EnsureUpiOutput, patient *models.PatientIdentity, localID string) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	err := w.UpidIssuer.RecordProvisional(ctx, ensured, patient, localID)
	if err != nil {
		w.Log.Warn("patientRecordWriter provisional UPI not recorded",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingUPIKey, ensured.Upi),
			zap.Error(err),
		)
	}
}

type syncDirection struct {
	transactionType string
	nationalID      func(patient *models.PatientIdentity) (string, string)
}

var (
	syncIn = syncDirection{
		transactionType: constvars.OfflineTransactionTypeSyncIn,
		nationalID: func(patient *models.PatientIdentity) (string, string) {
			if len(patient.Identifiers) == 0 {
				return "", ""
			}
			return patient.Identifiers[0].System, patient.Identifiers[0].Value
		},
	}
	syncUp = syncDirection{
		transactionType: constvars.OfflineTransactionTypeSyncUp,
		nationalID: func(patient *models.PatientIdentity) (string, string) {
			return constvars.IdentifierSystemNID, patient.IdentifierValue(constvars.IdentifierSystemNID)
		},
	}
)

// pushOrDefer sends the record to the client registry and enqueues it when
// the push fails. It returns the offline transaction uuid, if any.
func (w *writer) pushOrDefer(ctx context.Context, gateway models.GatewayContext, patient *models.PatientIdentity, localID string, direction syncDirection) string {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	resource := utils.IdentityToFHIRPatient(patient)
	if w.push(ctx, gateway, resource) {
		return ""
	}

	if patient.UPI() == "" {
		w.Log.Warn("patientRecordWriter record without UPI not deferred",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingLocalIDKey, localID),
		)
		return ""
	}

	body, err := json.Marshal(resource)
	if err != nil {
		w.Log.Error("patientRecordWriter error marshaling deferred payload",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return ""
	}

	nationalIDType, nationalID := direction.nationalID(patient)
	output, err := w.Queue.Enqueue(ctx, &contracts.EnqueueOfflineTransactionInput{
		Type: direction.transactionType,
		Payload: models.OfflinePayload{
			URL:     w.ClientRegistry.PatientURL(gateway.Config),
			Method:  constvars.MethodPost,
			Body:    string(body),
			Kind:    constvars.OfflinePayloadKindPatientSync,
			LocalID: localID,
		},
		NationalIDType: nationalIDType,
		NationalID:     nationalID,
	})
	if err != nil {
		w.Log.Error("patientRecordWriter error deferring client registry write",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingLocalIDKey, localID),
			zap.Error(err),
		)
		return ""
	}
	return output.UUID
}

func (w *writer) push(ctx context.Context, gateway models.GatewayContext, resource *fhir_dto.Patient) bool {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if !gateway.Usable() {
		w.Log.Info("patientRecordWriter client registry unavailable, deferring write",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingGatewayStatusKey, gateway.Config.Status),
			zap.Bool(constvars.LoggingOnlineKey, gateway.Online),
		)
		return false
	}

	outcome, err := w.ClientRegistry.SavePatient(ctx, gateway.Config, resource)
	if err != nil {
		w.Log.Error("patientRecordWriter error preparing client registry write",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return false
	}
	if !outcome.IsSuccess() {
		w.Log.Warn("patientRecordWriter client registry write failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOutcomeKey, string(outcome.Kind)),
			zap.Int(constvars.LoggingStatusCodeKey, outcome.StatusCode),
		)
		return false
	}

	w.Log.Info("patientRecordWriter client registry write succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUPIKey, resource.ID),
	)
	return true
}
