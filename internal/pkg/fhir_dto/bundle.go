package fhir_dto

type PatientBundle struct {
	ResourceType string         `json:"resourceType"`
	ID           string         `json:"id,omitempty"`
	Type         string         `json:"type,omitempty"`
	Total        int            `json:"total"`
	Entry        []PatientEntry `json:"entry,omitempty"`
}

type PatientEntry struct {
	FullUrl  string  `json:"fullUrl,omitempty"`
	Resource Patient `json:"resource"`
}
