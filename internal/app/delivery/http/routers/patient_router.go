package routers

import (
	"primarycare-identity-service/internal/app/delivery/http/controllers"
	"primarycare-identity-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachPatientRoutes(router chi.Router, middlewares *middlewares.Middlewares, patientController *controllers.PatientController) {
	router.Get("/search/identifier", patientController.SearchByIdentifier)
	router.Get("/search/name", patientController.SearchByName)
	router.With(middlewares.BodyBuffer).Post("/", patientController.CreatePatient)
	router.With(middlewares.BodyBuffer).Put("/{identifier}", patientController.UpdatePatient)
	router.With(middlewares.BodyBuffer).Put("/{identifier}/upi", patientController.CorrectUpi)
}
