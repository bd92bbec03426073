package models

import (
	"primarycare-identity-service/internal/pkg/constvars"
	"strings"
)

type Identifier struct {
	System string `json:"system" bson:"system"`
	Value  string `json:"value" bson:"value"`
	Use    string `json:"use,omitempty" bson:"use,omitempty"`
}

type Address struct {
	AddressID  string `json:"addressId,omitempty" bson:"addressId,omitempty"`
	Type       string `json:"type" bson:"type"`
	Use        string `json:"use,omitempty" bson:"use,omitempty"`
	Text       string `json:"text,omitempty" bson:"text,omitempty"`
	Country    string `json:"country,omitempty" bson:"country,omitempty"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	District   string `json:"district,omitempty" bson:"district,omitempty"`
	Sector     string `json:"sector,omitempty" bson:"sector,omitempty"`
	Cell       string `json:"cell,omitempty" bson:"cell,omitempty"`
	City       string `json:"city,omitempty" bson:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty" bson:"postalCode,omitempty"`
}

// PatientIdentity is the merged view of a person across the local store and the registries.
type PatientIdentity struct {
	LocalID          string       `json:"localId,omitempty" bson:"-"`
	SurName          string       `json:"surName" bson:"surName"`
	PostNames        string       `json:"postNames" bson:"postNames"`
	Gender           string       `json:"gender" bson:"gender"`
	DateOfBirth      string       `json:"dateOfBirth" bson:"dateOfBirth"`
	MaritalStatus    string       `json:"maritalStatus,omitempty" bson:"maritalStatus,omitempty"`
	Nationality      string       `json:"nationality,omitempty" bson:"nationality,omitempty"`
	EducationalLevel string       `json:"educationalLevel,omitempty" bson:"educationalLevel,omitempty"`
	Profession       string       `json:"profession,omitempty" bson:"profession,omitempty"`
	Religion         string       `json:"religion,omitempty" bson:"religion,omitempty"`
	PhoneNumber      string       `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	FatherName       string       `json:"fatherName,omitempty" bson:"fatherName,omitempty"`
	MotherName       string       `json:"motherName,omitempty" bson:"motherName,omitempty"`
	Spouse           string       `json:"spouse,omitempty" bson:"spouse,omitempty"`
	RegisteredOn     string       `json:"registeredOn,omitempty" bson:"registeredOn,omitempty"`
	CitizenStatus    bool         `json:"citizenStatus" bson:"citizenStatus"`
	Identifiers      []Identifier `json:"identifiers" bson:"identifiers"`
	Addresses        []Address    `json:"addresses" bson:"addresses"`
	Origin           string       `json:"origin" bson:"origin"`
	OriginRank       string       `json:"originRank,omitempty" bson:"-"`
}

func (p *PatientIdentity) IdentifierValue(system string) string {
	for _, identifier := range p.Identifiers {
		if identifier.System == system {
			return identifier.Value
		}
	}
	return ""
}

func (p *PatientIdentity) UPI() string {
	return p.IdentifierValue(constvars.IdentifierSystemUPI)
}

// SetIdentifier replaces the value held for system or appends a new one.
// An existing non-empty UPI is kept and false is returned.
func (p *PatientIdentity) SetIdentifier(system, value, use string) bool {
	if value == "" {
		return false
	}
	for i := range p.Identifiers {
		if p.Identifiers[i].System != system {
			continue
		}
		if system == constvars.IdentifierSystemUPI && p.Identifiers[i].Value != "" && p.Identifiers[i].Value != value {
			return false
		}
		p.Identifiers[i].Value = value
		if use != "" {
			p.Identifiers[i].Use = use
		}
		return true
	}
	p.Identifiers = append(p.Identifiers, Identifier{System: system, Value: value, Use: use})
	return true
}

// ReplaceUPI is the explicit correction path for a UPI.
func (p *PatientIdentity) ReplaceUPI(value string) {
	for i := range p.Identifiers {
		if p.Identifiers[i].System == constvars.IdentifierSystemUPI {
			p.Identifiers[i].Value = value
			return
		}
	}
	p.Identifiers = append(p.Identifiers, Identifier{System: constvars.IdentifierSystemUPI, Value: value})
}

// IdentifiersExcept returns a copy without the given systems.
func (p *PatientIdentity) IdentifiersExcept(systems ...string) []Identifier {
	excluded := make(map[string]bool, len(systems))
	for _, system := range systems {
		excluded[system] = true
	}
	result := make([]Identifier, 0, len(p.Identifiers))
	for _, identifier := range p.Identifiers {
		if excluded[identifier.System] || identifier.Value == "" {
			continue
		}
		result = append(result, identifier)
	}
	return result
}

func (p *PatientIdentity) AddressOfType(addressType string) *Address {
	for i := range p.Addresses {
		if strings.EqualFold(p.Addresses[i].Type, addressType) {
			return &p.Addresses[i]
		}
	}
	return nil
}

// PreferredAddress returns the RESIDENTIAL address when present, else the first one.
func (p *PatientIdentity) PreferredAddress() *Address {
	if residential := p.AddressOfType(constvars.AddressTypeResidential); residential != nil {
		return residential
	}
	if len(p.Addresses) > 0 {
		return &p.Addresses[0]
	}
	return nil
}

type LocalSearchCriteria struct {
	SurName       string
	PostNames     string
	BirthYearFrom int
	BirthYearTo   int
	Limit         int
}
