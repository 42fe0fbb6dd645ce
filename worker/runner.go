package worker

import (
	"fmt"

	"injaaz-backend/models"
	"injaaz-backend/repository"
	"injaaz-backend/services"
	"injaaz-backend/utils/logger"
)

// Service wraps the render worker for easy integration
type Service struct {
	worker *Worker
	logger logger.Logger
}

func NewService(cfg *models.Config, log logger.Logger,
	visitRepo repository.VisitRepositoryInterface,
	statusRepo repository.JobStatusRepositoryInterface,
	renderer services.ReportRendererInterface) (*Service, error) {
	w, err := NewWorker(cfg, log, visitRepo, statusRepo, renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to create render worker: %w", err)
	}

	return &Service{worker: w, logger: log}, nil
}

// StartInBackground starts the render worker without blocking the caller.
func (s *Service) StartInBackground() error {
	s.logger.Info("Starting render worker service in background")
	return s.worker.Start()
}

// Stop stops the render worker service
func (s *Service) Stop() {
	s.logger.Info("Stopping render worker service")
	s.worker.Stop()
}

// GetHealthStatus returns a health status for monitoring
func (s *Service) GetHealthStatus() map[string]interface{} {
	return map[string]interface{}{
		"worker_running": s.worker.IsRunning(),
	}
}
