package models

import "primarycare-identity-service/internal/pkg/constvars"

// ResolutionResult keeps "nothing matched" (FAILURE, no results) apart from a match.
type ResolutionResult struct {
	Status       string            `json:"status"`
	Results      []PatientIdentity `json:"results"`
	RecordsCount int               `json:"recordsCount"`
}

func NewFoundResult(results ...PatientIdentity) *ResolutionResult {
	return &ResolutionResult{
		Status:       constvars.ResponseSuccess,
		Results:      results,
		RecordsCount: len(results),
	}
}

func NewNotFoundResult() *ResolutionResult {
	return &ResolutionResult{
		Status:  constvars.ResponseFailure,
		Results: []PatientIdentity{},
	}
}

func (r *ResolutionResult) Found() bool {
	return r != nil && r.Status == constvars.ResponseSuccess && len(r.Results) > 0
}
