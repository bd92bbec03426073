package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required":         "is required",
	"required_without": "is required",
	"min":              "must be at least %s characters long",
	"max":              "maximum at %s characters long",
	"numeric":          "must be a number",
	"len":              "must be %s characters long",
	"oneof":            "must be one of [%s]",
	"url":              "must be a valid URL",
	"identifier_type":  "must be a known identifier type",
	"origin":           "must be one of [CR, NPR, LOCAL]",
	"year":             "must be a four digit year",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"len":   true,
	"oneof": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "cannot process request"
	ErrClientSomethingWrongWithApplication = "something went wrong with the application"
	ErrClientServerLongRespond             = "server took too long to respond"
	ErrClientPatientNotFound               = "no patient found with the given identifier"
	ErrClientIdentifierAlreadyUsed         = "identifier is already used by another patient"
	ErrClientGatewayNotConfigured          = "identity exchange gateway is not configured"
	ErrClientGatewayUnavailable            = "identity exchange gateway is unavailable"
	ErrClientNotAuthorized                 = "you are not authorized to access this resource"
)

// Error messages for developers
const (
	ErrDevValidationFailed          = "validation failed"
	ErrDevInvalidAPIKey             = "missing or invalid api key"
	ErrDevAPIKeyNotConfigured       = "admin api key is not configured"
	ErrDevInvalidInput              = "invalid input"
	ErrDevCannotParseJSON           = "cannot parse JSON"
	ErrDevCannotMarshalJSON         = "cannot marshal JSON"
	ErrDevReadBody                  = "failed to read body"
	ErrDevServerDeadlineExceeded    = "server deadline exceeded"
	ErrDevCreateHTTPRequest         = "failed to create HTTP request"
	ErrDevSendHTTPRequest           = "failed to send HTTP request"
	ErrDevDecodeResponse            = "failed to decode %s response"
	ErrDevGatewayConfiguration      = "gateway configuration status %s"
	ErrDevUpstreamRejected          = "%s rejected the request with status %d"
	ErrDevUpstreamFault             = "%s failed with status %d"
	ErrDevUpstreamUnreachable       = "%s is unreachable"
	ErrDevPatientNotFound           = "patient not found for identifier %s"
	ErrDevIdentifierConflict        = "identifier collision in local store"
	ErrDevDBFailedToFindDocument    = "failed to find document"
	ErrDevDBFailedToInsertDocument  = "failed to insert document"
	ErrDevDBFailedToUpdateDocument  = "failed to update document"
	ErrDevDBFailedToIterateDocument = "failed to iterate documents"
	ErrDevDBFailedToCreateIndex     = "failed to create index on %s"
	ErrDevDBStringNotObjectID       = "given string is not a valid object id"
	ErrDevRedisGetData              = "failed to get data from redis"
	ErrDevRedisSetData              = "failed to set data in redis"
	ErrDevRabbitMQPublishMessage    = "failed to publish message to queue %s"
)
