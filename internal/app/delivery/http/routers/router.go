package routers

import (
	"fmt"
	"net/http"
	"primarycare-identity-service/internal/app/config"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/delivery/http/controllers"
	"primarycare-identity-service/internal/app/delivery/http/middlewares"
	"primarycare-identity-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	middlewares *middlewares.Middlewares,
	patientController *controllers.PatientController,
	settingsController *controllers.SettingsController,
	compatibilityProxy contracts.CompatibilityProxy,
	metricsHandler http.Handler,
) {

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "If-None-Match", "If-Modified-Since", constvars.HeaderXAPIKey},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	router.Use(cors.Handler(corsOptions))

	router.Use(middlewares.RateLimit())
	router.Use(middlewares.RequestIDMiddleware)
	router.Use(middlewares.Logging)
	router.Use(middlewares.ErrorHandler)
	router.Use(middlewares.ObserveRequests)

	router.Method(http.MethodGet, "/metrics", metricsHandler)

	endpointPrefix := fmt.Sprintf("/%s", internalConfig.App.EndpointPrefix)
	versionPrefix := fmt.Sprintf("/%s", internalConfig.App.Version)

	router.Route(endpointPrefix, func(r chi.Router) {
		r.Route(versionPrefix, func(r chi.Router) {
			r.Route("/"+constvars.ResourcePatients, func(r chi.Router) {
				attachPatientRoutes(r, middlewares, patientController)
			})

			r.Route("/"+constvars.ResourceSettings, func(r chi.Router) {
				attachSettingsRoutes(r, middlewares, settingsController)
			})

			r.Route("/"+constvars.ResourceClientRegistry, func(r chi.Router) {
				attachClientRegistryRoutes(r, middlewares, compatibilityProxy)
			})
		})
	})
}
