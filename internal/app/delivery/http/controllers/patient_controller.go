package controllers

import (
	"context"
	"errors"
	"net/http"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/dto/requests"
	"primarycare-identity-service/internal/pkg/dto/responses"
	"primarycare-identity-service/internal/pkg/exceptions"
	"primarycare-identity-service/internal/pkg/utils"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type PatientController struct {
	Log                    *zap.Logger
	ResolutionOrchestrator contracts.ResolutionOrchestrator
	PatientRecordWriter    contracts.PatientRecordWriter
	RequestTimeout         time.Duration
}

var (
	patientControllerInstance *PatientController
	oncePatientController     sync.Once
)

func NewPatientController(logger *zap.Logger, orchestrator contracts.ResolutionOrchestrator, writer contracts.PatientRecordWriter, requestTimeout time.Duration) *PatientController {
	oncePatientController.Do(func() {
		patientControllerInstance = &PatientController{
			Log:                    logger,
			ResolutionOrchestrator: orchestrator,
			PatientRecordWriter:    writer,
			RequestTimeout:         requestTimeout,
		}
	})
	return patientControllerInstance
}

func (ctrl *PatientController) SearchByIdentifier(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := utils.GetRequestID(r.Context())

	query := r.URL.Query()
	request := &requests.SearchPatientByIdentifier{
		Identifier: strings.TrimSpace(query.Get(constvars.URLQueryParamIdentifier)),
		Type:       strings.ToUpper(strings.TrimSpace(query.Get(constvars.URLQueryParamType))),
		FosaID:     strings.TrimSpace(query.Get(constvars.URLQueryParamFosaID)),
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := ctrl.withTimeout(r.Context())
	defer cancel()

	result, err := ctrl.ResolutionOrchestrator.ResolveByIdentifier(ctx, &contracts.ResolveByIdentifierInput{
		Value:        request.Identifier,
		Type:         request.Type,
		FacilityHint: request.FosaID,
	})
	if err != nil {
		ctrl.fail(w, requestID, "SearchByIdentifier", start, err)
		return
	}

	ctrl.Log.Info("PatientController.SearchByIdentifier succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingIdentifierTypeKey, request.Type),
		zap.Int(constvars.LoggingResponseLengthKey, result.RecordsCount),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResolvePatientSuccessMessage, result)
}

func (ctrl *PatientController) SearchByName(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := utils.GetRequestID(r.Context())

	query := r.URL.Query()
	request := &requests.SearchPatientByName{
		Surname:     strings.TrimSpace(query.Get(constvars.URLQueryParamSurname)),
		PostNames:   strings.TrimSpace(query.Get(constvars.URLQueryParamPostNames)),
		YearOfBirth: strings.TrimSpace(query.Get(constvars.URLQueryParamYearOfBirth)),
		Origin:      strings.ToUpper(strings.TrimSpace(query.Get(constvars.URLQueryParamOrigin))),
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := ctrl.withTimeout(r.Context())
	defer cancel()

	result, err := ctrl.ResolutionOrchestrator.ResolveByName(ctx, &contracts.ResolveByNameInput{
		SurName:     request.Surname,
		PostNames:   request.PostNames,
		YearOfBirth: request.YearOfBirth,
		Origin:      request.Origin,
	})
	if err != nil {
		ctrl.fail(w, requestID, "SearchByName", start, err)
		return
	}

	ctrl.Log.Info("PatientController.SearchByName succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOriginKey, request.Origin),
		zap.Int(constvars.LoggingResponseLengthKey, result.RecordsCount),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.SearchPatientSuccessMessage, result)
}

func (ctrl *PatientController) CreatePatient(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := utils.GetRequestID(r.Context())

	request := new(requests.CreatePatient)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	request.Origin = strings.ToUpper(strings.TrimSpace(request.Origin))
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := ctrl.withTimeout(r.Context())
	defer cancel()

	output, err := ctrl.PatientRecordWriter.Create(ctx, &contracts.CreatePatientInput{
		Patient: utils.PatientRecordRequestToIdentity(&request.PatientRecord),
	})
	if err != nil {
		ctrl.fail(w, requestID, "CreatePatient", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "patient_created", requestID,
		zap.String(constvars.LoggingLocalIDKey, output.LocalID),
		zap.Bool("is_offline", output.IsOffline),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CreatePatientSuccessMessage, &responses.PatientCreated{
		LocalID:   output.LocalID,
		Upi:       output.Upi,
		IsOffline: output.IsOffline,
	})
}

func (ctrl *PatientController) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := utils.GetRequestID(r.Context())

	request := new(requests.UpdatePatient)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	request.MatchIdentifier = strings.TrimSpace(chi.URLParam(r, constvars.URLParamIdentifier))
	request.Origin = strings.ToUpper(strings.TrimSpace(request.Origin))
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := ctrl.withTimeout(r.Context())
	defer cancel()

	output, err := ctrl.PatientRecordWriter.Update(ctx, &contracts.UpdatePatientInput{
		Patient:              utils.PatientRecordRequestToIdentity(&request.PatientRecord),
		MatchIdentifier:      request.MatchIdentifier,
		PushToClientRegistry: request.PushToClientRegistry,
	})
	if err != nil {
		ctrl.fail(w, requestID, "UpdatePatient", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "patient_updated", requestID,
		zap.String(constvars.LoggingIdentifierKey, request.MatchIdentifier),
		zap.String(constvars.LoggingTransactionIDKey, output.TransactionID),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.UpdatePatientSuccessMessage, &responses.PatientUpdated{
		Status: output.Status,
	})
}

func (ctrl *PatientController) CorrectUpi(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := utils.GetRequestID(r.Context())

	request := new(requests.CorrectPatientUpi)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	request.MatchIdentifier = strings.TrimSpace(chi.URLParam(r, constvars.URLParamIdentifier))
	request.Upi = strings.TrimSpace(request.Upi)
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := ctrl.withTimeout(r.Context())
	defer cancel()

	output, err := ctrl.PatientRecordWriter.CorrectUpi(ctx, &contracts.CorrectUpiInput{
		MatchIdentifier: request.MatchIdentifier,
		Upi:             request.Upi,
	})
	if err != nil {
		ctrl.fail(w, requestID, "CorrectUpi", start, err)
		return
	}

	ctrl.Log.Info("PatientController.CorrectUpi succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingIdentifierKey, request.MatchIdentifier),
		zap.String(constvars.LoggingTransactionIDKey, output.TransactionID),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CorrectUpiSuccessMessage, &responses.UpiCorrected{
		Status:        output.Status,
		PreviousUpi:   output.PreviousUpi,
		Upi:           output.Upi,
		TransactionID: output.TransactionID,
	})
}

func (ctrl *PatientController) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctrl.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, ctrl.RequestTimeout)
}

func (ctrl *PatientController) fail(w http.ResponseWriter, requestID, operation string, start time.Time, err error) {
	ctrl.Log.Error("PatientController."+operation+" error",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(ctrl.Log, w, err)
}
