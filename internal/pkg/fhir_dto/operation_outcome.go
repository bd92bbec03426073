package fhir_dto

const (
	ResourceTypePatient          = "Patient"
	ResourceTypeOperationOutcome = "OperationOutcome"

	IssueSeverityError   = "error"
	IssueSeverityWarning = "warning"
	IssueCodeProcessing  = "processing"
)

type OperationOutcome struct {
	ResourceType string  `json:"resourceType"`
	Issue        []Issue `json:"issue"`
}

type Issue struct {
	Severity    string `json:"severity"`
	Code        string `json:"code"`
	Diagnostics string `json:"diagnostics,omitempty"`
}

func NewOperationOutcome(severity, diagnostics string) *OperationOutcome {
	return &OperationOutcome{
		ResourceType: ResourceTypeOperationOutcome,
		Issue: []Issue{
			{
				Severity:    severity,
				Code:        IssueCodeProcessing,
				Diagnostics: diagnostics,
			},
		},
	}
}
