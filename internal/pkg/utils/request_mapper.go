package utils

import (
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/dto/requests"
	"strings"
)

func PatientRecordRequestToIdentity(request *requests.PatientRecord) *models.PatientIdentity {
	patient := &models.PatientIdentity{
		SurName:          strings.TrimSpace(request.SurName),
		PostNames:        strings.TrimSpace(request.PostNames),
		Gender:           strings.ToUpper(strings.TrimSpace(request.Gender)),
		DateOfBirth:      strings.TrimSpace(request.DateOfBirth),
		MaritalStatus:    request.MaritalStatus,
		Nationality:      request.Nationality,
		EducationalLevel: request.EducationalLevel,
		Profession:       request.Profession,
		Religion:         request.Religion,
		PhoneNumber:      request.PhoneNumber,
		FatherName:       request.FatherName,
		MotherName:       request.MotherName,
		Spouse:           request.Spouse,
		RegisteredOn:     request.RegisteredOn,
		CitizenStatus:    request.CitizenStatus,
		Origin:           request.Origin,
	}
	for _, identifier := range request.Identifiers {
		patient.Identifiers = append(patient.Identifiers, models.Identifier{
			System: identifier.System,
			Value:  strings.TrimSpace(identifier.Value),
			Use:    identifier.Use,
		})
	}
	for _, address := range request.Addresses {
		patient.Addresses = append(patient.Addresses, models.Address{
			AddressID:  address.AddressID,
			Type:       address.Type,
			Use:        address.Use,
			Text:       address.Text,
			Country:    address.Country,
			State:      address.State,
			District:   address.District,
			Sector:     address.Sector,
			Cell:       address.Cell,
			City:       address.City,
			PostalCode: address.PostalCode,
		})
	}
	return patient
}
