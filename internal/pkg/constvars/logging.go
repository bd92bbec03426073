package constvars

const (
	LoggingRequestIDKey      = "request_id"
	LoggingMethodKey         = "method"
	LoggingEndpointKey       = "endpoint"
	LoggingRemoteAddrKey     = "remote_addr"
	LoggingUserAgentKey      = "user_agent"
	LoggingQueryKey          = "query"
	LoggingStatusCodeKey     = "status_code"
	LoggingDurationKey       = "duration"
	LoggingSuccessKey        = "success"
	LoggingOperationKey      = "operation"
	LoggingErrorCodeKey      = "error_code"
	LoggingErrorMessageKey   = "error_message"
	LoggingURLKey            = "url"
	LoggingTargetKey         = "target"
	LoggingOutcomeKey        = "outcome"
	LoggingIdentifierKey     = "identifier"
	LoggingIdentifierTypeKey = "identifier_type"
	LoggingOriginKey         = "origin"
	LoggingOriginRankKey     = "origin_rank"
	LoggingStageKey          = "stage"
	LoggingReasonKey         = "reason"
	LoggingLocalIDKey        = "local_id"
	LoggingUPIKey            = "upi"
	LoggingGatewayStatusKey  = "gateway_status"
	LoggingOnlineKey         = "online"
	LoggingTransactionIDKey  = "transaction_id"
	LoggingTransactionType   = "transaction_type"
	LoggingResponseLengthKey = "response_length"
)
