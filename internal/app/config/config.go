package config

import (
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "primarycare"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", constvars.AppEnvDevelopment),
			Port:                       utils.GetEnvString("APP_PORT", "8080"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1"),
			Address:                    utils.GetEnvString("APP_ADDRESS", "0.0.0.0"),
			EndpointPrefix:             utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUEST", 100),
			ShutdownTimeout:            utils.GetEnvSeconds("APP_SHUTDOWN_TIMEOUT_IN_SECONDS", 10),
			MaxTimeRequestsPerSeconds:  utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 60),
			RequestTimeout:             utils.GetEnvSeconds("APP_REQUEST_TIMEOUT_IN_SECONDS", 60),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 6),
			AdminAPIKey:                utils.GetEnvString("APP_ADMIN_API_KEY", ""),
		},
		Gateway: Gateway{
			BaseURL:                 utils.GetEnvString("GATEWAY_BASE_URL", ""),
			ClientRegistryURL:       utils.GetEnvString("GATEWAY_CLIENT_REGISTRY_URL", ""),
			Username:                utils.GetEnvString("GATEWAY_USERNAME", ""),
			Password:                utils.GetEnvString("GATEWAY_PASSWORD", ""),
			FacilityID:              utils.GetEnvString("GATEWAY_FACILITY_ID", ""),
			DefaultLocationCode:     utils.GetEnvString("GATEWAY_DEFAULT_LOCATION_CODE", ""),
			DefaultNationality:      utils.GetEnvString("GATEWAY_DEFAULT_NATIONALITY", "Rwanda"),
			RequestTimeout:          utils.GetEnvSeconds("GATEWAY_REQUEST_TIMEOUT_IN_SECONDS", 30),
			NPRMaxRequestsPerSecond: utils.GetEnvFloat("NPR_MAX_REQUESTS_PER_SECOND", 5),
			NPRBurst:                utils.GetEnvInt("NPR_BURST", 5),
			SettingsCacheKey:        utils.GetEnvString("GATEWAY_SETTINGS_REDIS_KEY", constvars.RedisKeyGatewaySettings),
			SettingsReadTimeout:     utils.GetEnvMillis("GATEWAY_SETTINGS_READ_TIMEOUT_IN_MILLIS", 500),
		},
		Connectivity: Connectivity{
			ProbeAddress: utils.GetEnvString("CONNECTIVITY_PROBE_ADDRESS", "8.8.8.8:53"),
			ProbeTimeout: utils.GetEnvSeconds("CONNECTIVITY_PROBE_TIMEOUT_IN_SECONDS", 3),
			ForceOffline: utils.GetEnvBool("CONNECTIVITY_FORCE_OFFLINE", false),
		},
		Resolution: Resolution{
			AgeToleranceYears: utils.GetEnvInt("AGE_TOLERANCE_YEARS", 2),
		},
		Queue: Queue{
			NotificationQueue: utils.GetEnvString("QUEUE_NOTIFICATION_NAME", constvars.RabbitMQOfflineTransactionQueue),
			PublishTimeout:    utils.GetEnvSeconds("QUEUE_PUBLISH_TIMEOUT_IN_SECONDS", 5),
		},
	}
}
