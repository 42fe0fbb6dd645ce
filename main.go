package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"injaaz-backend/controller"
	"injaaz-backend/dal"
	"injaaz-backend/infrastructure"
	"injaaz-backend/middelware"
	"injaaz-backend/models"
	"injaaz-backend/repository"
	"injaaz-backend/services"
	"injaaz-backend/utils"
	"injaaz-backend/utils/logger"
	"injaaz-backend/worker"
	"injaaz-backend/worker/render"
)

var config *models.Config

func Init() {
	var err error
	config, err = utils.GetConfig()
	if err != nil {
		log.Fatal(err)
	}
}

// @title Injaaz Site Visit API
// @version 1.0
// @description Backend for the field technician site visit report form.
// @description
// @description Submission runs in three phases: metadata submit, direct photo
// @description upload to Cloudinary, then finalize. Report generation produces
// @description a PDF and an Excel workbook, either synchronously or through a
// @description background worker with a pollable status endpoint.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /api/v1
func main() {
	Init()

	appLogger := logger.NewLogger(config.LogLevel, config.LogFormat)
	appLogger.Infof("Config loaded: %s", utils.PrintPrettyJSON(config))

	ctx := context.Background()

	dbClient, err := dal.NewDynamoDBClient(config, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to initialize DynamoDB client: %v", err)
	}

	if err := infrastructure.EnsureTables(ctx, dbClient, config, appLogger); err != nil {
		appLogger.Fatalf("Failed to provision DynamoDB tables: %v", err)
	}

	statusRepo, err := repository.NewJobStatusRepository(config, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to initialize job status repository: %v", err)
	}

	visitRepo := repository.NewVisitRepository(dbClient, config, appLogger)

	catalogService, err := services.NewCatalogService(appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to load dropdown catalog: %v", err)
	}

	renderer := render.NewEngine(config, appLogger)
	visitService := services.NewVisitService(visitRepo, statusRepo, catalogService, renderer, config, appLogger)

	r := gin.New()
	logMw := middelware.NewLoggingMiddleware(appLogger)
	corsMw := middelware.NewCORSMiddleware(config)
	r.Use(logMw.Recovery(), logMw.RequestLogger(), corsMw.CORS())

	c := controller.NewController(ctx, config, appLogger, visitService, catalogService)

	// Start server (this is blocking)
	go func() {
		if err := c.RegisterRoutes(ctx, config, r, config.BasePath); err != nil {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	var renderWorker *worker.Service
	if config.WorkerEnabled {
		renderWorker, err = worker.NewService(config, appLogger, visitRepo, statusRepo, renderer)
		if err != nil {
			appLogger.Fatalf("Failed to create render worker: %v", err)
		}
		if err := renderWorker.StartInBackground(); err != nil {
			appLogger.Fatalf("Failed to start render worker: %v", err)
		}
	}

	// Block until shutdown is requested.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("Shutdown signal received")
	if renderWorker != nil {
		renderWorker.Stop()
	}
	if err := statusRepo.Close(); err != nil {
		appLogger.Errorf("Failed to close Redis connection: %v", err)
	}
}
