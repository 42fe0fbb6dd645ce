package repository

import (
	"context"
	"time"

	"injaaz-backend/models"
)

// VisitRepositoryInterface defines the contract for visit record operations
type VisitRepositoryInterface interface {
	CreateVisit(ctx context.Context, visit *models.Visit) (*models.Visit, error)
	GetVisit(ctx context.Context, visitID string) (*models.Visit, error)
	AttachPhotoURLs(ctx context.Context, visitID string, records []models.PhotoUploadRecord) (*models.Visit, error)
	MarkFinalized(ctx context.Context, visitID string) error
	GetVisitsByStatus(ctx context.Context, status models.VisitStatus) ([]*models.Visit, error)
}

// JobStatusRepositoryInterface defines the contract for report-job status
// tracking and the render queue
type JobStatusRepositoryInterface interface {
	SetStatus(ctx context.Context, visitID string, job *models.ReportJob) error
	GetStatus(ctx context.Context, visitID string) (*models.ReportJob, error)
	DeleteStatus(ctx context.Context, visitID string) error
	StaleStatusKeys(ctx context.Context, olderThan time.Duration) ([]string, error)

	Enqueue(ctx context.Context, visitID string) error
	Dequeue(ctx context.Context, timeout time.Duration) (string, error)
}
