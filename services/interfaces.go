package services

import (
	"context"

	"injaaz-backend/models"
)

// VisitServiceInterface defines the contract for the site visit service
type VisitServiceInterface interface {
	SubmitMetadata(ctx context.Context, payload *models.SubmissionPayload) (*models.SubmissionAccepted, error)
	AttachPhotos(ctx context.Context, visitID string, req *models.AttachPhotosRequest) error
	Finalize(ctx context.Context, visitID string) (*models.FinalizeResponse, error)
	JobStatus(ctx context.Context, visitID string) (*models.ReportJob, error)
}

// CatalogServiceInterface defines the contract for the dropdown catalog
type CatalogServiceInterface interface {
	Catalog() models.Catalog
	ValidateItem(item *models.ReportItem) error
}

// ReportRendererInterface renders a finalized visit into downloadable
// documents. Implemented by the worker's render engine; the visit service
// uses it directly when the background worker is disabled.
type ReportRendererInterface interface {
	Render(ctx context.Context, visit *models.Visit) (pdfURL, excelURL string, err error)
}
