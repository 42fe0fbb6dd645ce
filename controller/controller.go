package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"injaaz-backend/models"
	"injaaz-backend/services"
	"injaaz-backend/utils/logger"
)

type Controller struct {
	Visit *VisitController
}

func NewController(ctx context.Context, cfg *models.Config, log logger.Logger,
	visitService services.VisitServiceInterface, catalog services.CatalogServiceInterface) *Controller {
	return &Controller{
		Visit: NewVisitController(ctx, visitService, catalog, cfg, log),
	}
}

func (c *Controller) RegisterRoutes(ctx context.Context, config *models.Config, r *gin.Engine, basePath string) error {
	v1 := r.Group(basePath)

	// Health check endpoint
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": config.AppVersion,
			"service": config.AppName,
		})
	})

	sv := v1.Group("/site-visit")

	sv.GET("/dropdowns", c.Visit.GetDropdowns)
	sv.POST("/submit/metadata", c.Visit.SubmitMetadata)
	sv.POST("/submit/photos", c.Visit.AttachPhotos)
	sv.GET("/finalize", c.Visit.Finalize)
	sv.GET("/status/:visit_id", c.Visit.JobStatus)
	sv.GET("/generated/:filename", c.Visit.DownloadGenerated)

	srv := &http.Server{
		Addr:    config.AppHost + ":" + config.AppPort,
		Handler: r,
	}

	log := logger.NewLogger(config.LogLevel, config.LogFormat)
	log.Infof("Starting server on %s:%s", config.AppHost, config.AppPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
