package fhir_dto

type Patient struct {
	ResourceType    string           `json:"resourceType"`
	ID              string           `json:"id,omitempty"`
	Active          bool             `json:"active,omitempty"`
	Identifier      []Identifier     `json:"identifier,omitempty"`
	Name            []HumanName      `json:"name,omitempty"`
	Telecom         []ContactPoint   `json:"telecom,omitempty"`
	Gender          string           `json:"gender,omitempty"`
	BirthDate       string           `json:"birthDate,omitempty"`
	DeceasedBoolean *bool            `json:"deceasedBoolean,omitempty"`
	Address         []Address        `json:"address,omitempty"`
	MaritalStatus   *CodeableConcept `json:"maritalStatus,omitempty"`
	Contact         []PatientContact `json:"contact,omitempty"`
	Extension       []Extension      `json:"extension,omitempty"`
}

type PatientContact struct {
	Relationship []CodeableConcept `json:"relationship,omitempty"`
	Name         *HumanName        `json:"name,omitempty"`
	Telecom      []ContactPoint    `json:"telecom,omitempty"`
}
