package routers

import (
	"primarycare-identity-service/internal/app/delivery/http/controllers"
	"primarycare-identity-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachSettingsRoutes(router chi.Router, middlewares *middlewares.Middlewares, settingsController *controllers.SettingsController) {
	router.Use(middlewares.APIKeyAuth)

	router.Get("/gateway", settingsController.GetGatewaySettings)
	router.With(middlewares.BodyBuffer).Put("/gateway", settingsController.SaveGatewaySettings)
}
