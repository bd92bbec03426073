package constvars

const ServiceName = "primarycare-identity-service"

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_RAW_BODY                 ContextKey = "raw_body"
)

const (
	ResourcePatients       = "patients"
	ResourceSettings       = "settings"
	ResourceClientRegistry = "clientregistry"
)

const (
	MongoCollectionPatients            = "patients"
	MongoCollectionOfflineTransactions = "offline_transactions"
	MongoCollectionProvisionalUpids    = "provisional_upids"
)

const (
	RedisKeyGatewaySettings = "gateway:settings"
)

const (
	RabbitMQOfflineTransactionQueue = "offline_transaction_events"
)

const (
	AppEnvProduction  = "production"
	AppEnvDevelopment = "development"
)
