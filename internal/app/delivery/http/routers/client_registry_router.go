package routers

import (
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachClientRegistryRoutes(router chi.Router, middlewares *middlewares.Middlewares, compatibilityProxy contracts.CompatibilityProxy) {
	router.With(middlewares.BodyBuffer).Handle("/*", middlewares.Bridge(compatibilityProxy))
}
