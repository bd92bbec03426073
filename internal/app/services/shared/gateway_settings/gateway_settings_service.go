package gateway_settings

import (
	"context"
	"primarycare-identity-service/internal/app/config"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/dto/requests"
	"primarycare-identity-service/internal/pkg/dto/responses"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	fieldBaseURL             = "baseUrl"
	fieldClientRegistryURL   = "clientRegistryUrl"
	fieldUsername            = "username"
	fieldPassword            = "password"
	fieldFacilityID          = "facilityId"
	fieldDefaultLocationCode = "defaultLocationCode"
)

var (
	gatewaySettingsServiceInstance contracts.GatewaySettingsService
	onceGatewaySettingsService     sync.Once
)

type gatewaySettingsService struct {
	RedisRepository contracts.RedisRepository
	Defaults        config.Gateway
	Log             *zap.Logger
}

func NewGatewaySettingsService(redisRepository contracts.RedisRepository, internalConfig *config.InternalConfig, logger *zap.Logger) contracts.GatewaySettingsService {
	onceGatewaySettingsService.Do(func() {
		gatewaySettingsServiceInstance = newGatewaySettingsService(redisRepository, internalConfig.Gateway, logger)
	})
	return gatewaySettingsServiceInstance
}

func newGatewaySettingsService(redisRepository contracts.RedisRepository, defaults config.Gateway, logger *zap.Logger) *gatewaySettingsService {
	return &gatewaySettingsService{
		RedisRepository: redisRepository,
		Defaults:        defaults,
		Log:             logger,
	}
}

// Resolve reads the stored override on every call and falls back to the
// environment defaults field by field. A redis failure yields the defaults.
func (s *gatewaySettingsService) Resolve(ctx context.Context) models.RemoteGatewayConfig {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	stored := s.readStored(ctx, requestID)
	gateway := models.RemoteGatewayConfig{
		BaseURL:             trimURL(firstNonEmpty(stored[fieldBaseURL], s.Defaults.BaseURL)),
		ClientRegistryURL:   trimURL(firstNonEmpty(stored[fieldClientRegistryURL], s.Defaults.ClientRegistryURL)),
		Username:            firstNonEmpty(stored[fieldUsername], s.Defaults.Username),
		Password:            firstNonEmpty(stored[fieldPassword], s.Defaults.Password),
		FacilityID:          firstNonEmpty(stored[fieldFacilityID], s.Defaults.FacilityID),
		DefaultLocationCode: firstNonEmpty(stored[fieldDefaultLocationCode], s.Defaults.DefaultLocationCode),
	}
	gateway.Status = models.GatewayStatusFor(gateway.BaseURL, gateway.Username, gateway.Password)

	s.Log.Debug("gatewaySettingsService.Resolve succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingGatewayStatusKey, gateway.Status),
	)
	return gateway
}

func (s *gatewaySettingsService) GetSettings(ctx context.Context) (*responses.GatewaySettings, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("gatewaySettingsService.GetSettings called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	return buildSettingsResponse(s.Resolve(ctx)), nil
}

func (s *gatewaySettingsService) SaveSettings(ctx context.Context, request *requests.GatewaySettings) (*responses.GatewaySettings, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("gatewaySettingsService.SaveSettings called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	values := map[string]interface{}{}
	setIfPresent(values, fieldBaseURL, request.BaseURL)
	setIfPresent(values, fieldClientRegistryURL, request.ClientRegistryURL)
	setIfPresent(values, fieldUsername, request.Username)
	setIfPresent(values, fieldPassword, request.Password)
	setIfPresent(values, fieldFacilityID, request.FacilityID)
	setIfPresent(values, fieldDefaultLocationCode, request.DefaultLocationCode)

	err := s.RedisRepository.SetHash(ctx, s.Defaults.SettingsCacheKey, values)
	if err != nil {
		s.Log.Error("gatewaySettingsService.SaveSettings error storing settings",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	response := buildSettingsResponse(s.Resolve(ctx))
	s.Log.Info("gatewaySettingsService.SaveSettings succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingGatewayStatusKey, response.Status),
	)
	return response, nil
}

func (s *gatewaySettingsService) readStored(ctx context.Context, requestID string) map[string]string {
	if s.RedisRepository == nil {
		return map[string]string{}
	}

	readCtx := ctx
	if s.Defaults.SettingsReadTimeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, s.Defaults.SettingsReadTimeout)
		defer cancel()
	}

	stored, err := s.RedisRepository.GetHash(readCtx, s.Defaults.SettingsCacheKey)
	if err != nil {
		s.Log.Warn("gatewaySettingsService.readStored falling back to environment defaults",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return map[string]string{}
	}
	return stored
}

func buildSettingsResponse(gateway models.RemoteGatewayConfig) *responses.GatewaySettings {
	return &responses.GatewaySettings{
		BaseURL:             gateway.BaseURL,
		ClientRegistryURL:   gateway.ClientRegistryURL,
		Username:            gateway.Username,
		PasswordDefined:     gateway.Password != "",
		FacilityID:          gateway.FacilityID,
		DefaultLocationCode: gateway.DefaultLocationCode,
		Status:              gateway.Status,
	}
}

func setIfPresent(values map[string]interface{}, field, value string) {
	value = strings.TrimSpace(value)
	if value != "" {
		values[field] = value
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func trimURL(url string) string {
	return strings.TrimRight(url, "/")
}
