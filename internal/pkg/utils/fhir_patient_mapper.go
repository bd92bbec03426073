package utils

import (
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/fhir_dto"
	"strconv"
	"strings"
)

// extensionSetters maps an extension code to the attribute it fills.
// Codes outside the table are ignored.
var extensionSetters = map[string]func(patient *models.PatientIdentity, value string){
	constvars.ExtensionEducationalLevel: func(p *models.PatientIdentity, v string) { p.EducationalLevel = v },
	constvars.ExtensionProfession:       func(p *models.PatientIdentity, v string) { p.Profession = v },
	constvars.ExtensionReligion:         func(p *models.PatientIdentity, v string) { p.Religion = v },
	constvars.ExtensionNationality:      func(p *models.PatientIdentity, v string) { p.Nationality = v },
	constvars.ExtensionRegisteredOn:     func(p *models.PatientIdentity, v string) { p.RegisteredOn = v },
}

// ExtensionCodeValue splits an extension into the last url path segment and
// its first present typed value.
func ExtensionCodeValue(extension fhir_dto.Extension) (string, string, bool) {
	if extension.Url == "" {
		return "", "", false
	}
	code := extension.Url[strings.LastIndex(extension.Url, "/")+1:]

	switch {
	case extension.ValueString != "":
		return code, extension.ValueString, true
	case extension.ValueCode != "":
		return code, extension.ValueCode, true
	case extension.ValueInteger != nil:
		return code, strconv.Itoa(*extension.ValueInteger), true
	case extension.ValueBoolean != nil:
		return code, strconv.FormatBool(*extension.ValueBoolean), true
	case extension.ValueDate != "":
		return code, extension.ValueDate, true
	case extension.ValueDateTime != "":
		return code, extension.ValueDateTime, true
	}
	return code, "", false
}

func ApplyExtensions(patient *models.PatientIdentity, extensions []fhir_dto.Extension) {
	for _, extension := range extensions {
		code, value, ok := ExtensionCodeValue(extension)
		if !ok {
			continue
		}
		if setter, known := extensionSetters[code]; known {
			setter(patient, value)
		}
	}
}

// FHIRPatientToIdentity maps a registry Patient. defaultNationality is used
// when the registry sends no nationality extension.
func FHIRPatientToIdentity(resource *fhir_dto.Patient, defaultNationality string) *models.PatientIdentity {
	patient := &models.PatientIdentity{
		Gender:      strings.ToUpper(resource.Gender),
		DateOfBirth: resource.BirthDate,
		Origin:      constvars.OriginCR,
		OriginRank:  constvars.RankCROnly,
	}

	if len(resource.Name) > 0 {
		patient.SurName = resource.Name[0].Family
		if len(resource.Name[0].Given) > 0 {
			patient.PostNames = resource.Name[0].Given[0]
		}
	}

	for _, identifier := range resource.Identifier {
		patient.SetIdentifier(identifier.System, identifier.Value, identifier.Use)
	}

	ApplyExtensions(patient, resource.Extension)
	if patient.Nationality == "" {
		patient.Nationality = defaultNationality
	}

	if len(resource.Telecom) > 0 {
		patient.PhoneNumber = resource.Telecom[0].Value
	}

	for _, address := range resource.Address {
		patient.Addresses = append(patient.Addresses, fhirAddressToAddress(address))
	}

	if resource.DeceasedBoolean != nil {
		patient.CitizenStatus = *resource.DeceasedBoolean
	}

	for _, contact := range resource.Contact {
		if contact.Name == nil || len(contact.Name.Given) == 0 {
			continue
		}
		given := contact.Name.Given[0]
		switch contact.Name.Family {
		case constvars.ContactFather:
			patient.FatherName = given
		case constvars.ContactMother:
			patient.MotherName = given
		case constvars.ContactSpouse:
			patient.Spouse = given
		}
	}

	if resource.MaritalStatus != nil && len(resource.MaritalStatus.Coding) > 0 {
		patient.MaritalStatus = resource.MaritalStatus.Coding[0].Display
	}

	return patient
}

// The first address line carries "sector|cell|type".
func fhirAddressToAddress(address fhir_dto.Address) models.Address {
	result := models.Address{
		Use:        address.Use,
		Text:       address.Text,
		City:       address.City,
		District:   address.District,
		State:      address.State,
		PostalCode: address.PostalCode,
		Country:    address.Country,
	}
	if len(address.Line) > 0 {
		parts := strings.Split(address.Line[0], "|")
		if len(parts) > 0 {
			result.Sector = parts[0]
		}
		if len(parts) > 1 {
			result.Cell = parts[1]
		}
		if len(parts) > 2 {
			result.Type = parts[2]
		}
	}
	return result
}

// IdentityToFHIRPatient builds the registry-bound Patient. PRIMARY_CARE_ID is
// local-only and never leaves the facility; the resource id is the UPI.
func IdentityToFHIRPatient(patient *models.PatientIdentity) *fhir_dto.Patient {
	resource := &fhir_dto.Patient{
		ResourceType: fhir_dto.ResourceTypePatient,
		ID:           patient.UPI(),
		Active:       true,
		Gender:       strings.ToLower(patient.Gender),
		BirthDate:    FormatFHIRDate(patient.DateOfBirth),
		Name: []fhir_dto.HumanName{
			{
				Use:    "official",
				Family: patient.SurName,
				Given:  nonEmpty(patient.PostNames),
			},
		},
	}

	for _, identifier := range patient.IdentifiersExcept(constvars.IdentifierSystemPrimaryCareID) {
		resource.Identifier = append(resource.Identifier, fhir_dto.Identifier{
			System: identifier.System,
			Value:  identifier.Value,
			Use:    identifier.Use,
		})
	}

	if patient.PhoneNumber != "" {
		resource.Telecom = []fhir_dto.ContactPoint{{System: "phone", Value: patient.PhoneNumber, Use: "mobile"}}
	}

	for _, extension := range []struct{ code, value string }{
		{constvars.ExtensionEducationalLevel, patient.EducationalLevel},
		{constvars.ExtensionProfession, patient.Profession},
		{constvars.ExtensionReligion, patient.Religion},
		{constvars.ExtensionNationality, patient.Nationality},
		{constvars.ExtensionRegisteredOn, patient.RegisteredOn},
	} {
		if extension.value == "" {
			continue
		}
		resource.Extension = append(resource.Extension, fhir_dto.Extension{
			Url:         constvars.ExtensionBaseURL + extension.code,
			ValueString: extension.value,
		})
	}

	for _, contact := range []struct{ role, name string }{
		{constvars.ContactFather, patient.FatherName},
		{constvars.ContactMother, patient.MotherName},
		{constvars.ContactSpouse, patient.Spouse},
	} {
		if contact.name == "" {
			continue
		}
		resource.Contact = append(resource.Contact, fhir_dto.PatientContact{
			Relationship: []fhir_dto.CodeableConcept{{Text: contact.role}},
			Name:         &fhir_dto.HumanName{Family: contact.role, Given: []string{contact.name}},
		})
	}

	if patient.MaritalStatus != "" {
		resource.MaritalStatus = &fhir_dto.CodeableConcept{
			Coding: []fhir_dto.Coding{{Display: patient.MaritalStatus}},
			Text:   patient.MaritalStatus,
		}
	}

	citizen := patient.CitizenStatus
	resource.DeceasedBoolean = &citizen

	for _, address := range patient.Addresses {
		resource.Address = append(resource.Address, fhir_dto.Address{
			Use:        address.Use,
			Text:       address.Text,
			Line:       []string{address.Sector + "|" + address.Cell + "|" + address.Type},
			City:       address.City,
			District:   address.District,
			State:      address.State,
			PostalCode: address.PostalCode,
			Country:    address.Country,
		})
	}

	return resource
}

func nonEmpty(values ...string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if value != "" {
			result = append(result, value)
		}
	}
	return result
}
