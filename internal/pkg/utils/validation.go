package utils

import (
	"primarycare-identity-service/internal/pkg/constvars"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var yearPattern = regexp.MustCompile(`^\d{4}$`)

var identifierTypes = map[string]bool{
	constvars.IdentifierSystemUPI:                   true,
	constvars.IdentifierSystemNID:                   true,
	constvars.IdentifierSystemNIN:                   true,
	constvars.IdentifierSystemNIDApplicationNumber:  true,
	constvars.IdentifierSystemPassport:              true,
	constvars.IdentifierSystemForeignerID:           true,
	constvars.IdentifierSystemTracnetNumber:         true,
	constvars.IdentifierSystemPrimaryCareID:         true,
	constvars.IdentifierSystemInsurancePolicyNumber: true,
	constvars.SearchTypeTempID:                      true,
}

func init() {
	validate = validator.New()
	validate.RegisterValidation("identifier_type", validateIdentifierType)
	validate.RegisterValidation("origin", validateOrigin)
	validate.RegisterValidation("year", validateYear)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func IsKnownIdentifierType(value string) bool {
	return identifierTypes[value]
}

func validateIdentifierType(fl validator.FieldLevel) bool {
	return IsKnownIdentifierType(fl.Field().String())
}

func validateOrigin(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case constvars.OriginCR, constvars.OriginNPR, constvars.OriginLocal:
		return true
	}
	return false
}

func validateYear(fl validator.FieldLevel) bool {
	return yearPattern.MatchString(fl.Field().String())
}
