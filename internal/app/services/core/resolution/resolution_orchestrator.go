package resolution

import (
	"context"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/exceptions"
	"primarycare-identity-service/internal/pkg/utils"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	stageLocal              = "local"
	stageClientRegistry     = "client_registry"
	stagePopulationRegistry = "population_registry"

	rankNotFound = "NOT_FOUND"
)

var (
	resolutionOrchestratorInstance contracts.ResolutionOrchestrator
	onceResolutionOrchestrator     sync.Once
)

type Config struct {
	AgeToleranceYears  int
	DefaultNationality string
}

type orchestrator struct {
	LocalStore       contracts.LocalStore
	ClientRegistry   contracts.ClientRegistryClient
	Population       contracts.PopulationRegistryClient
	UpidIssuer       contracts.UpidIssuer
	GatewaySettings  contracts.GatewaySettingsService
	Probe            contracts.ConnectivityProbe
	Metrics          contracts.GatewayMetrics
	Config           Config
	Log              *zap.Logger
	identifierStages []identifierStage
}

func NewResolutionOrchestrator(
	localStore contracts.LocalStore,
	clientRegistry contracts.ClientRegistryClient,
	population contracts.PopulationRegistryClient,
	upidIssuer contracts.UpidIssuer,
	gatewaySettings contracts.GatewaySettingsService,
	probe contracts.ConnectivityProbe,
	metrics contracts.GatewayMetrics,
	config Config,
	logger *zap.Logger,
) contracts.ResolutionOrchestrator {
	onceResolutionOrchestrator.Do(func() {
		resolutionOrchestratorInstance = newOrchestrator(localStore, clientRegistry, population, upidIssuer, gatewaySettings, probe, metrics, config, logger)
	})
	return resolutionOrchestratorInstance
}

func newOrchestrator(
	localStore contracts.LocalStore,
	clientRegistry contracts.ClientRegistryClient,
	population contracts.PopulationRegistryClient,
	upidIssuer contracts.UpidIssuer,
	gatewaySettings contracts.GatewaySettingsService,
	probe contracts.ConnectivityProbe,
	metrics contracts.GatewayMetrics,
	config Config,
	logger *zap.Logger,
) *orchestrator {
	o := &orchestrator{
		LocalStore:      localStore,
		ClientRegistry:  clientRegistry,
		Population:      population,
		UpidIssuer:      upidIssuer,
		GatewaySettings: gatewaySettings,
		Probe:           probe,
		Metrics:         metrics,
		Config:          config,
		Log:             logger,
	}
	o.identifierStages = []identifierStage{
		{Name: stageLocal, Run: o.localStage},
		{Name: stageClientRegistry, Run: o.clientRegistryStage},
		{Name: stagePopulationRegistry, Run: o.populationRegistryStage},
	}
	return o
}

// ResolveByIdentifier folds the stages left to right. A stage that finds
// records replaces what earlier stages produced; remote failures never
// escape this method.
func (o *orchestrator) ResolveByIdentifier(ctx context.Context, input *contracts.ResolveByIdentifierInput) (*models.ResolutionResult, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if input == nil || strings.TrimSpace(input.Value) == "" || input.Type == "" {
		return nil, exceptions.ErrInputValidation(nil)
	}
	o.Log.Info("resolutionOrchestrator.ResolveByIdentifier called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingIdentifierTypeKey, input.Type),
	)

	state := &identifierResolution{Input: input}
	var resolved []models.PatientIdentity

	for _, stage := range o.identifierStages {
		result := stage.Run(ctx, state, resolved)
		o.Log.Debug("resolutionOrchestrator.ResolveByIdentifier stage finished",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingStageKey, stage.Name),
			zap.String(constvars.LoggingOutcomeKey, string(result.Kind)),
			zap.String(constvars.LoggingReasonKey, result.Reason),
		)
		if result.Kind == stageFound {
			resolved = result.Patients
		}
	}

	return o.finish(ctx, "resolutionOrchestrator.ResolveByIdentifier", resolved), nil
}

// ResolveByName searches a single source chosen by origin. Offline or an
// unconfigured gateway degrades CR and NPR to the local store.
func (o *orchestrator) ResolveByName(ctx context.Context, input *contracts.ResolveByNameInput) (*models.ResolutionResult, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if input == nil || (strings.TrimSpace(input.SurName) == "" && strings.TrimSpace(input.PostNames) == "") {
		return nil, exceptions.ErrInputValidation(nil)
	}

	origin := strings.ToUpper(strings.TrimSpace(input.Origin))
	if origin == "" {
		origin = constvars.OriginLocal
	}
	o.Log.Info("resolutionOrchestrator.ResolveByName called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOriginKey, origin),
	)

	var gateway models.GatewayContext
	if origin != constvars.OriginLocal {
		gateway = o.gatewayContext(ctx)
		if !gateway.Usable() {
			o.Log.Info("resolutionOrchestrator.ResolveByName degrading to local search",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingGatewayStatusKey, gateway.Config.Status),
				zap.Bool(constvars.LoggingOnlineKey, gateway.Online),
			)
			origin = constvars.OriginLocal
		}
	}

	var resolved []models.PatientIdentity
	switch origin {
	case constvars.OriginCR:
		resolved = o.searchClientRegistryByName(ctx, gateway.Config, input)
	case constvars.OriginNPR:
		resolved = o.searchPopulationRegistryByName(ctx, gateway.Config, input)
	default:
		resolved = o.searchLocalByName(ctx, input)
	}

	return o.finish(ctx, "resolutionOrchestrator.ResolveByName", resolved), nil
}

func (o *orchestrator) finish(ctx context.Context, caller string, resolved []models.PatientIdentity) *models.ResolutionResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if len(resolved) == 0 {
		o.Metrics.IncResolution(rankNotFound)
		o.Log.Info(caller+" nothing matched",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return models.NewNotFoundResult()
	}

	o.Metrics.IncResolution(resolved[0].OriginRank)
	o.Log.Info(caller+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOriginRankKey, resolved[0].OriginRank),
		zap.Int(constvars.LoggingResponseLengthKey, len(resolved)),
	)
	return models.NewFoundResult(resolved...)
}

// gatewayContext resolves the configuration and probes only when it is defined.
func (o *orchestrator) gatewayContext(ctx context.Context) models.GatewayContext {
	gateway := models.GatewayContext{Config: o.GatewaySettings.Resolve(ctx)}
	if gateway.Config.IsDefined() {
		gateway.Online = o.Probe.Check(ctx)
	}
	return gateway
}

func (s *identifierResolution) gatewayContext(ctx context.Context, o *orchestrator) models.GatewayContext {
	if s.gateway == nil {
		gateway := o.gatewayContext(ctx)
		s.gateway = &gateway
	}
	return *s.gateway
}

func unusableReason(gateway models.GatewayContext) string {
	if !gateway.Config.IsDefined() {
		return reasonGatewayUndefined
	}
	return reasonGatewayOffline
}

func (o *orchestrator) localStage(ctx context.Context, state *identifierResolution, _ []models.PatientIdentity) stageResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	input := state.Input

	if input.Type == constvars.SearchTypeTempID {
		return skipped(reasonTemporaryID)
	}

	var patients []models.PatientIdentity
	if input.Type == constvars.IdentifierSystemInsurancePolicyNumber {
		patient, err := o.LocalStore.FindByInsurance(ctx, input.Value)
		if err != nil {
			o.Log.Error("resolutionOrchestrator.localStage error finding by insurance",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return notFound(err.Error())
		}
		if patient != nil {
			patients = append(patients, *patient)
		}
	} else {
		var err error
		patients, err = o.LocalStore.FindByIdentifier(ctx, input.Value)
		if err != nil {
			o.Log.Error("resolutionOrchestrator.localStage error finding by identifier",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return notFound(err.Error())
		}
	}

	if len(patients) == 0 {
		return notFound("")
	}

	local := patients[0]
	local.Origin = constvars.OriginLocal
	local.OriginRank = constvars.RankLocalOnly
	state.Local = []models.PatientIdentity{local}
	return found(local)
}

func (o *orchestrator) clientRegistryStage(ctx context.Context, state *identifierResolution, _ []models.PatientIdentity) stageResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if state.Input.Type == constvars.IdentifierSystemPrimaryCareID {
		return skipped(reasonLocalOnlyType)
	}
	gateway := state.gatewayContext(ctx, o)
	if !gateway.Usable() {
		return skipped(unusableReason(gateway))
	}

	entries, err := o.ClientRegistry.FindByIdentifier(ctx, gateway.Config, state.Input.Value)
	if err != nil {
		o.Log.Warn("resolutionOrchestrator.clientRegistryStage registry lookup failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return notFound(reasonRemoteCallFailure)
	}
	if len(entries) == 0 {
		return notFound("")
	}

	if len(state.Local) > 0 {
		registry := utils.FHIRPatientToIdentity(&entries[0], o.Config.DefaultNationality)
		return found(*mergeRegistryOntoLocal(registry, &state.Local[0], o.Log, requestID))
	}

	patients := make([]models.PatientIdentity, 0, len(entries))
	for i := range entries {
		patients = append(patients, *utils.FHIRPatientToIdentity(&entries[i], o.Config.DefaultNationality))
	}
	return found(patients...)
}

func (o *orchestrator) populationRegistryStage(ctx context.Context, state *identifierResolution, resolved []models.PatientIdentity) stageResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if len(resolved) > 0 {
		return skipped(reasonAlreadyResolved)
	}
	switch state.Input.Type {
	case constvars.IdentifierSystemPrimaryCareID:
		return skipped(reasonLocalOnlyType)
	case constvars.IdentifierSystemInsurancePolicyNumber, constvars.IdentifierSystemPassport:
		return skipped(reasonUnsupportedType)
	}
	gateway := state.gatewayContext(ctx, o)
	if !gateway.Usable() {
		return skipped(unusableReason(gateway))
	}

	facilityID := state.Input.FacilityHint
	if facilityID == "" {
		facilityID = gateway.Config.FacilityID
	}

	citizen, err := o.UpidIssuer.LookupByDocument(ctx, &contracts.LookupByDocumentInput{
		Gateway:      gateway.Config,
		DocumentType: state.Input.Type,
		Value:        state.Input.Value,
		FacilityID:   facilityID,
	})
	if err != nil {
		o.Log.Warn("resolutionOrchestrator.populationRegistryStage registry lookup failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return notFound(reasonRemoteCallFailure)
	}
	if citizen == nil {
		return notFound("")
	}
	return found(*utils.CitizenToIdentity(citizen))
}

func (o *orchestrator) searchClientRegistryByName(ctx context.Context, gateway models.RemoteGatewayConfig, input *contracts.ResolveByNameInput) []models.PatientIdentity {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	entries, err := o.ClientRegistry.SearchByName(ctx, gateway, input.SurName, input.PostNames, input.YearOfBirth)
	if err != nil {
		o.Log.Warn("resolutionOrchestrator.ResolveByName client registry search failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil
	}

	patients := make([]models.PatientIdentity, 0, len(entries))
	for i := range entries {
		patients = append(patients, *utils.FHIRPatientToIdentity(&entries[i], o.Config.DefaultNationality))
	}
	return patients
}

func (o *orchestrator) searchPopulationRegistryByName(ctx context.Context, gateway models.RemoteGatewayConfig, input *contracts.ResolveByNameInput) []models.PatientIdentity {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	citizens, err := o.Population.SearchByName(ctx, gateway, input.SurName, input.PostNames, input.YearOfBirth)
	if err != nil {
		o.Log.Warn("resolutionOrchestrator.ResolveByName population registry search failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil
	}

	patients := make([]models.PatientIdentity, 0, len(citizens))
	for i := range citizens {
		patients = append(patients, *utils.CitizenToIdentity(&citizens[i]))
	}
	return patients
}

// searchLocalByName applies a birth-year window of yearOfBirth plus or minus
// the configured tolerance.
func (o *orchestrator) searchLocalByName(ctx context.Context, input *contracts.ResolveByNameInput) []models.PatientIdentity {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	criteria := &models.LocalSearchCriteria{
		SurName:   input.SurName,
		PostNames: input.PostNames,
	}
	if year, err := strconv.Atoi(strings.TrimSpace(input.YearOfBirth)); err == nil && year > 0 {
		criteria.BirthYearFrom = year - o.Config.AgeToleranceYears
		criteria.BirthYearTo = year + o.Config.AgeToleranceYears
	}

	patients, err := o.LocalStore.Search(ctx, criteria)
	if err != nil {
		o.Log.Error("resolutionOrchestrator.ResolveByName local search failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil
	}

	for i := range patients {
		patients[i].Origin = constvars.OriginLocal
		patients[i].OriginRank = constvars.RankLocalOnly
	}
	return patients
}
