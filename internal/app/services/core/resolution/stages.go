package resolution

import (
	"context"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
)

type stageKind string

const (
	stageFound    stageKind = "found"
	stageNotFound stageKind = "not_found"
	stageSkipped  stageKind = "skipped"
)

const (
	reasonTemporaryID       = "temporary_id_not_stored_locally"
	reasonLocalOnlyType     = "identifier_type_is_local_only"
	reasonUnsupportedType   = "identifier_type_not_issued_by_registry"
	reasonAlreadyResolved   = "already_resolved"
	reasonGatewayUndefined  = "gateway_not_configured"
	reasonGatewayOffline    = "offline"
	reasonRemoteCallFailure = "remote_call_failed"
)

type stageResult struct {
	Kind     stageKind
	Patients []models.PatientIdentity
	Reason   string
}

func found(patients ...models.PatientIdentity) stageResult {
	return stageResult{Kind: stageFound, Patients: patients}
}

func notFound(reason string) stageResult {
	return stageResult{Kind: stageNotFound, Reason: reason}
}

func skipped(reason string) stageResult {
	return stageResult{Kind: stageSkipped, Reason: reason}
}

// identifierResolution is the state threaded through one identifier lookup.
// The gateway context is resolved lazily so that lookups which never reach a
// remote stage never probe.
type identifierResolution struct {
	Input   *contracts.ResolveByIdentifierInput
	Local   []models.PatientIdentity
	gateway *models.GatewayContext
}

type identifierStage struct {
	Name string
	Run  func(ctx context.Context, state *identifierResolution, resolved []models.PatientIdentity) stageResult
}
