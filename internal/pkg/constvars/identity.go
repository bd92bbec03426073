package constvars

// Identifier systems.
const (
	IdentifierSystemUPI                   = "UPI"
	IdentifierSystemNID                   = "NID"
	IdentifierSystemNIN                   = "NIN"
	IdentifierSystemNIDApplicationNumber  = "NID_APPLICATION_NUMBER"
	IdentifierSystemPassport              = "PASSPORT"
	IdentifierSystemForeignerID           = "FOREIGNER_ID"
	IdentifierSystemTracnetNumber         = "TRACNET_NUMBER"
	IdentifierSystemPrimaryCareID         = "PRIMARY_CARE_ID"
	IdentifierSystemInsurancePolicyNumber = "INSURANCE_POLICY_NUMBER"

	// SearchTypeTempID is a search-only type for temporary references.
	SearchTypeTempID = "TEMPID"
)

const (
	OriginCR    = "CR"
	OriginNPR   = "NPR"
	OriginLocal = "LOCAL"
)

const (
	RankCRLocal   = "CR_LOCAL"
	RankCROnly    = "CR_ONLY"
	RankNPROnly   = "NPR_ONLY"
	RankLocalOnly = "LOCAL_ONLY"
)

const (
	ResponseSuccess = "SUCCESS"
	ResponseFailure = "FAILURE"

	StatusCompleted = "COMPLETED"
)

const (
	AddressTypeDomicile    = "DOMICILE"
	AddressTypeResidential = "RESIDENTIAL"
	AddressTypePostal      = "POSTAL"
)

const (
	ContactFather = "Father"
	ContactMother = "Mother"
	ContactSpouse = "Spouse"
)

// Extension codes, taken from the last path segment of the extension url.
const (
	ExtensionEducationalLevel = "educationalLevel"
	ExtensionProfession       = "profession"
	ExtensionReligion         = "religion"
	ExtensionNationality      = "nationality"
	ExtensionRegisteredOn     = "registeredOn"
)

const (
	ExtensionBaseURL = "http://fhir.moh.gov.rw/StructureDefinition/"
)

const (
	GatewayStatusDefined           = "DEFINED"
	GatewayStatusURLUndefined      = "URL_UNDEFINED"
	GatewayStatusClientIDUndefined = "CLIENT_ID_UNDEFINED"
	GatewayStatusPasswordUndefined = "PASSWORD_UNDEFINED"
)

const (
	OfflineTransactionTypeSyncIn = "patient_sync_in"
	OfflineTransactionTypeSyncUp = "patient_sync_up"

	OfflinePayloadKindPatientSync = "patient_sync"
)

const (
	OfflineUpidPrefix = "OFFLINE-"
	TemporaryIDPrefix = "TEMP-"
	NPRStatusOK       = "ok"
	NPRCitizenCode    = "13"
	NPRDocumentOthers = "OTHERS"
)

const (
	ClientRegistryPatientPath = "/clientregistry/Patient"
	ClientRegistrySearchPath  = "/Patient"
	PopulationRegistryPath    = "/api/v1/citizens/getCitizen"
)

const (
	GatewayTargetClientRegistry     = "client_registry"
	GatewayTargetPopulationRegistry = "population_registry"
	GatewayTargetProxy              = "proxy"
)
