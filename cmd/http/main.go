package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"primarycare-identity-service/internal/app/config"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/delivery/http/controllers"
	"primarycare-identity-service/internal/app/delivery/http/middlewares"
	"primarycare-identity-service/internal/app/delivery/http/routers"
	"primarycare-identity-service/internal/app/drivers/database"
	"primarycare-identity-service/internal/app/drivers/logger"
	"primarycare-identity-service/internal/app/drivers/messaging"
	"primarycare-identity-service/internal/app/services/core/proxy"
	"primarycare-identity-service/internal/app/services/core/records"
	"primarycare-identity-service/internal/app/services/core/resolution"
	"primarycare-identity-service/internal/app/services/core/upid"
	"primarycare-identity-service/internal/app/services/gateway/client_registry"
	"primarycare-identity-service/internal/app/services/gateway/population_registry"
	"primarycare-identity-service/internal/app/services/gateway/transport"
	"primarycare-identity-service/internal/app/services/patients"
	"primarycare-identity-service/internal/app/services/shared/connectivity"
	"primarycare-identity-service/internal/app/services/shared/gateway_settings"
	"primarycare-identity-service/internal/app/services/shared/metrics"
	"primarycare-identity-service/internal/app/services/shared/offline_queue"
	"primarycare-identity-service/internal/app/services/shared/redis"
	"primarycare-identity-service/internal/pkg/utils"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log, err := logger.NewZapLogger(driverConfig, internalConfig)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig)
	chiRouter := chi.NewRouter()

	bootstrap := &config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		Logger:         log,
		RabbitMQ:       rabbitMQ,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}
	if err := bootstrapingTheApp(bootstrap); err != nil {
		log.Fatal("Failed to bootstrap the application", zap.Error(err))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", internalConfig.App.Address, internalConfig.App.Port),
		Handler:           chiRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("address", server.Addr))
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		internalConfig.App.ShutdownTimeout,
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to release drivers", zap.Error(err))
	}

	fmt.Println("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) error {
	internalConfig := bootstrap.InternalConfig
	log := bootstrap.Logger

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := utils.LogOperation(log, "ensure_patient_indexes", "", func() error {
		return patients.EnsureIndexes(indexCtx, bootstrap.MongoDB)
	})
	if err != nil {
		return err
	}
	err = utils.LogOperation(log, "ensure_offline_queue_indexes", "", func() error {
		return offline_queue.EnsureIndexes(indexCtx, bootstrap.MongoDB)
	})
	if err != nil {
		return err
	}

	// Shared
	collector := metrics.NewCollector()
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	gatewaySettingsService := gateway_settings.NewGatewaySettingsService(redisRepository, internalConfig, log)
	var probe contracts.ConnectivityProbe = connectivity.NewProbe(
		internalConfig.Connectivity.ProbeAddress,
		internalConfig.Connectivity.ProbeTimeout,
		log,
	)
	if internalConfig.Connectivity.ForceOffline {
		log.Warn("Connectivity forced offline, remote registries will not be called")
		probe = connectivity.Static(false)
	}

	notifier, err := offline_queue.NewNotifier(
		bootstrap.RabbitMQ,
		internalConfig.Queue.NotificationQueue,
		internalConfig.Queue.PublishTimeout,
		log,
	)
	if err != nil {
		return err
	}
	offlineQueue := offline_queue.NewOfflineTransactionQueue(bootstrap.MongoDB, notifier, collector, log)

	// Gateway clients
	gatewayTransport := transport.NewGatewayTransport(
		internalConfig.Gateway.RequestTimeout,
		collector,
		log,
	)
	clientRegistryClient := client_registry.NewClientRegistryClient(gatewayTransport, log)
	populationRegistryClient := population_registry.NewPopulationRegistryClient(
		gatewayTransport,
		internalConfig.Gateway.NPRMaxRequestsPerSecond,
		internalConfig.Gateway.NPRBurst,
		log,
	)

	// Core
	localStore := patients.NewPatientMongoRepository(bootstrap.MongoDB, log)
	upidIssuer := upid.NewUpidIssuer(populationRegistryClient, offlineQueue, collector, log)
	resolutionOrchestrator := resolution.NewResolutionOrchestrator(
		localStore,
		clientRegistryClient,
		populationRegistryClient,
		upidIssuer,
		gatewaySettingsService,
		probe,
		collector,
		resolution.Config{
			AgeToleranceYears:  internalConfig.Resolution.AgeToleranceYears,
			DefaultNationality: internalConfig.Gateway.DefaultNationality,
		},
		log,
	)
	patientRecordWriter := records.NewPatientRecordWriter(
		localStore,
		upidIssuer,
		clientRegistryClient,
		offlineQueue,
		gatewaySettingsService,
		probe,
		log,
	)
	compatibilityProxy := proxy.NewCompatibilityProxy(gatewaySettingsService, gatewayTransport, collector, log)

	// Delivery
	middlewareInstance := middlewares.NewMiddlewares(log, internalConfig, collector)
	patientController := controllers.NewPatientController(
		log,
		resolutionOrchestrator,
		patientRecordWriter,
		internalConfig.App.RequestTimeout,
	)
	settingsController := controllers.NewSettingsController(log, gatewaySettingsService)

	routers.SetupRoutes(
		bootstrap.Router,
		internalConfig,
		middlewareInstance,
		patientController,
		settingsController,
		compatibilityProxy,
		collector.Handler(),
	)
	return nil
}
