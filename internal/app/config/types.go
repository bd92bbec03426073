package config

import "time"

type (
	DriverConfig struct {
		MongoDB  MongoDB
		Redis    Redis
		Logger   Logger
		RabbitMQ RabbitMQ
	}
	MongoDB struct {
		Port     string
		Host     string
		Username string
		Password string
		DbName   string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
		DB       int
	}
	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}
	RabbitMQ struct {
		Port     string
		Host     string
		Username string
		Password string
	}
)

type InternalConfig struct {
	App          App
	Gateway      Gateway
	Connectivity Connectivity
	Resolution   Resolution
	Queue        Queue
}

type App struct {
	Env                        string
	Port                       string
	Version                    string
	Address                    string
	EndpointPrefix             string
	MaxRequests                int
	ShutdownTimeout            time.Duration
	MaxTimeRequestsPerSeconds  int
	RequestTimeout             time.Duration
	RequestBodyLimitInMegabyte int
	AdminAPIKey                string
}

// Gateway holds the environment defaults used when no administrative override is stored.
type Gateway struct {
	BaseURL                 string
	ClientRegistryURL       string
	Username                string
	Password                string
	FacilityID              string
	DefaultLocationCode     string
	DefaultNationality      string
	RequestTimeout          time.Duration
	NPRMaxRequestsPerSecond float64
	NPRBurst                int
	SettingsCacheKey        string
	SettingsReadTimeout     time.Duration
}

type Connectivity struct {
	ProbeAddress string
	ProbeTimeout time.Duration
	ForceOffline bool
}

type Resolution struct {
	AgeToleranceYears int
}

type Queue struct {
	NotificationQueue string
	PublishTimeout    time.Duration
}
