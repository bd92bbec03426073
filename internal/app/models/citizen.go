package models

// Citizen is the population registry's person record.
type Citizen struct {
	Upi               string `json:"upi"`
	Nid               string `json:"nid"`
	Nin               string `json:"nin"`
	ApplicationNumber string `json:"applicationNumber"`
	SurName           string `json:"surName"`
	PostNames         string `json:"postNames"`
	Sex               string `json:"sex"`
	Nationality       string `json:"nationality"`
	MaritalStatus     string `json:"maritalStatus"`
	DateOfBirth       string `json:"dateOfBirth"`
	FatherName        string `json:"fatherName"`
	MotherName        string `json:"motherName"`
	Spouse            string `json:"spouse"`
	PhoneNumber       string `json:"phoneNumber"`
	CitizenStatus     string `json:"citizenStatus"`
	VillageID         string `json:"villageId"`
	DomicileVillage   string `json:"domicileVillage"`
	DomicileCell      string `json:"domicileCell"`
	DomicileSector    string `json:"domicileSector"`
	DomicileDistrict  string `json:"domicileDistrict"`
	DomicileProvince  string `json:"domicileProvince"`
	DomicileCountry   string `json:"domicileCountry"`
}

type CitizenResponse struct {
	Status string  `json:"status"`
	Data   Citizen `json:"data"`
}

type CitizenListResponse struct {
	Status string    `json:"status"`
	Data   []Citizen `json:"data"`
}

type CitizenRequest struct {
	DocumentType      string `json:"documentType"`
	DocumentNumber    string `json:"documentNumber,omitempty"`
	Nid               string `json:"nid,omitempty"`
	Nin               string `json:"nin,omitempty"`
	ApplicationNumber string `json:"applicationNumber,omitempty"`
	FosaID            string `json:"fosaid,omitempty"`
	SurName           string `json:"surName,omitempty"`
	PostNames         string `json:"postNames,omitempty"`
	YearOfBirth       string `json:"yearOfBirth,omitempty"`
	DateOfBirth       string `json:"dateOfBirth,omitempty"`
	Sex               string `json:"sex,omitempty"`
	Nationality       string `json:"nationality,omitempty"`
	FatherName        string `json:"fatherName,omitempty"`
	MotherName        string `json:"motherName,omitempty"`
	SpouseName        string `json:"spouseName,omitempty"`
	PhoneNumber       string `json:"phoneNumber,omitempty"`
}
