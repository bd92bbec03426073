package utils

import (
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"strings"
)

// CitizenToIdentity maps a population registry record. The address comes
// from the domicile hierarchy.
func CitizenToIdentity(citizen *models.Citizen) *models.PatientIdentity {
	patient := &models.PatientIdentity{
		SurName:       citizen.SurName,
		PostNames:     citizen.PostNames,
		Gender:        strings.ToUpper(citizen.Sex),
		DateOfBirth:   citizen.DateOfBirth,
		MaritalStatus: citizen.MaritalStatus,
		Nationality:   citizen.Nationality,
		PhoneNumber:   citizen.PhoneNumber,
		FatherName:    citizen.FatherName,
		MotherName:    citizen.MotherName,
		Spouse:        citizen.Spouse,
		CitizenStatus: citizen.CitizenStatus == constvars.NPRCitizenCode,
		Origin:        constvars.OriginNPR,
		OriginRank:    constvars.RankNPROnly,
	}

	patient.SetIdentifier(constvars.IdentifierSystemUPI, citizen.Upi, "")
	patient.SetIdentifier(constvars.IdentifierSystemNID, citizen.Nid, "")
	patient.SetIdentifier(constvars.IdentifierSystemNIN, citizen.Nin, "")
	patient.SetIdentifier(constvars.IdentifierSystemNIDApplicationNumber, citizen.ApplicationNumber, "")

	patient.Addresses = []models.Address{
		{
			Type:       constvars.AddressTypeDomicile,
			PostalCode: citizen.VillageID,
			City:       citizen.DomicileVillage,
			Cell:       citizen.DomicileCell,
			Sector:     citizen.DomicileSector,
			District:   citizen.DomicileDistrict,
			State:      citizen.DomicileProvince,
			Country:    citizen.DomicileCountry,
		},
	}
	return patient
}
