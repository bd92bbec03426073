package controllers

import (
	"net/http"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/dto/requests"
	"primarycare-identity-service/internal/pkg/exceptions"
	"primarycare-identity-service/internal/pkg/utils"
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type SettingsController struct {
	Log                    *zap.Logger
	GatewaySettingsService contracts.GatewaySettingsService
}

var (
	settingsControllerInstance *SettingsController
	onceSettingsController     sync.Once
)

func NewSettingsController(logger *zap.Logger, gatewaySettingsService contracts.GatewaySettingsService) *SettingsController {
	onceSettingsController.Do(func() {
		settingsControllerInstance = &SettingsController{
			Log:                    logger,
			GatewaySettingsService: gatewaySettingsService,
		}
	})
	return settingsControllerInstance
}

func (ctrl *SettingsController) GetGatewaySettings(w http.ResponseWriter, r *http.Request) {
	response, err := ctrl.GatewaySettingsService.GetSettings(r.Context())
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetGatewaySettingsSuccessMessage, response)
}

func (ctrl *SettingsController) SaveGatewaySettings(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())

	request := new(requests.GatewaySettings)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	response, err := ctrl.GatewaySettingsService.SaveSettings(r.Context(), request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "gateway_settings_saved", requestID,
		zap.String(constvars.LoggingGatewayStatusKey, response.Status),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.SaveGatewaySettingsSuccessMessage, response)
}
