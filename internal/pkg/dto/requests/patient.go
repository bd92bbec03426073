package requests

type SearchPatientByIdentifier struct {
	Identifier string `validate:"required"`
	Type       string `validate:"required,identifier_type"`
	FosaID     string
}

type SearchPatientByName struct {
	Surname     string `validate:"required_without=PostNames"`
	PostNames   string
	YearOfBirth string `validate:"omitempty,year"`
	Origin      string `validate:"omitempty,origin"`
}

type Identifier struct {
	System string `json:"system" validate:"required,identifier_type"`
	Value  string `json:"value" validate:"required"`
	Use    string `json:"use,omitempty"`
}

type Address struct {
	AddressID  string `json:"addressId,omitempty"`
	Type       string `json:"type" validate:"required,oneof=DOMICILE RESIDENTIAL POSTAL"`
	Use        string `json:"use,omitempty"`
	Text       string `json:"text,omitempty"`
	Country    string `json:"country,omitempty"`
	State      string `json:"state,omitempty"`
	District   string `json:"district,omitempty"`
	Sector     string `json:"sector,omitempty"`
	Cell       string `json:"cell,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

type PatientRecord struct {
	SurName          string       `json:"surName" validate:"required"`
	PostNames        string       `json:"postNames" validate:"required"`
	Gender           string       `json:"gender" validate:"required"`
	DateOfBirth      string       `json:"dateOfBirth" validate:"required"`
	MaritalStatus    string       `json:"maritalStatus,omitempty"`
	Nationality      string       `json:"nationality,omitempty"`
	EducationalLevel string       `json:"educationalLevel,omitempty"`
	Profession       string       `json:"profession,omitempty"`
	Religion         string       `json:"religion,omitempty"`
	PhoneNumber      string       `json:"phoneNumber,omitempty"`
	FatherName       string       `json:"fatherName,omitempty"`
	MotherName       string       `json:"motherName,omitempty"`
	Spouse           string       `json:"spouse,omitempty"`
	RegisteredOn     string       `json:"registeredOn,omitempty"`
	CitizenStatus    bool         `json:"citizenStatus"`
	Origin           string       `json:"origin" validate:"required,origin"`
	Identifiers      []Identifier `json:"identifiers" validate:"dive"`
	Addresses        []Address    `json:"addresses" validate:"dive"`
}

type CreatePatient struct {
	PatientRecord
}

type UpdatePatient struct {
	PatientRecord
	MatchIdentifier      string `json:"-"`
	PushToClientRegistry bool   `json:"pushToClientRegistry"`
}

type CorrectPatientUpi struct {
	MatchIdentifier string `json:"-" validate:"required"`
	Upi             string `json:"upi" validate:"required"`
}
