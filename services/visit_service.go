package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"injaaz-backend/models"
	"injaaz-backend/repository"
	"injaaz-backend/utils/logger"
)


var (
	// ErrPhotosNotAttached is returned by Finalize when the attach-photos
	// phase has not run for the visit. The attach call is required even
	// when the visit has zero photos.
	ErrPhotosNotAttached = errors.New("photo URLs have not been attached to this visit")

	// ErrAlreadyFinalized is returned when finalize is called twice.
	ErrAlreadyFinalized = errors.New("visit has already been finalized")
)

// ValidationError wraps a user-correctable submission problem.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type VisitService struct {
	visitRepo  repository.VisitRepositoryInterface
	statusRepo repository.JobStatusRepositoryInterface
	catalog    CatalogServiceInterface
	renderer   ReportRendererInterface
	config     *models.Config
	logger     logger.Logger
}

func NewVisitService(visitRepo repository.VisitRepositoryInterface, statusRepo repository.JobStatusRepositoryInterface,
	catalog CatalogServiceInterface, renderer ReportRendererInterface, cfg *models.Config, log logger.Logger) *VisitService {
	return &VisitService{
		visitRepo:  visitRepo,
		statusRepo: statusRepo,
		catalog:    catalog,
		renderer:   renderer,
		config:     cfg,
		logger:     log,
	}
}

// SubmitMetadata is phase 1: validate the payload, persist the visit record,
// and hand the client everything it needs to upload photos directly to
// Cloudinary.
func (s *VisitService) SubmitMetadata(ctx context.Context, payload *models.SubmissionPayload) (*models.SubmissionAccepted, error) {
	if err := s.validatePayload(payload); err != nil {
		return nil, err
	}

	if s.config.CloudinaryCloudName == "" || s.config.CloudinaryUploadPreset == "" {
		return nil, fmt.Errorf("cloudinary upload configuration is missing on the server")
	}

	visit := &models.Visit{
		VisitInfo:      payload.VisitInfo,
		ReportItems:    payload.ReportItems,
		TechSignature:  payload.Signatures.TechSignature,
		OpManSignature: payload.Signatures.OpManSignature,
	}

	visit, err := s.visitRepo.CreateVisit(ctx, visit)
	if err != nil {
		return nil, fmt.Errorf("failed to store visit: %w", err)
	}

	return &models.SubmissionAccepted{
		Status:                 "success",
		VisitID:                visit.VisitID,
		CloudinaryCloudName:    s.config.CloudinaryCloudName,
		CloudinaryUploadPreset: s.config.CloudinaryUploadPreset,
	}, nil
}

func (s *VisitService) validatePayload(payload *models.SubmissionPayload) error {
	if strings.TrimSpace(payload.TechnicianName()) == "" {
		return validationErrorf("technician_name is required")
	}

	if len(payload.Signatures.TechSignature) < models.MinSignatureLength {
		return validationErrorf("technician signature is missing or too short")
	}

	if len(payload.ReportItems) == 0 {
		return validationErrorf("at least one report item is required")
	}

	for i, item := range payload.ReportItems {
		if item.PhotoCount < 0 || item.PhotoCount > models.MaxPhotosPerItem {
			return validationErrorf("item %d declares %d photos, maximum is %d",
				i, item.PhotoCount, models.MaxPhotosPerItem)
		}
		if err := s.catalog.ValidateItem(&payload.ReportItems[i]); err != nil {
			return validationErrorf("item %d: %v", i, err)
		}
		if item.Quantity < 1 {
			payload.ReportItems[i].Quantity = 1
		}
	}

	return nil
}

// AttachPhotos is phase 2: record the uploaded photo URLs against the visit.
// Must be called exactly once per visit, even with an empty record list.
func (s *VisitService) AttachPhotos(ctx context.Context, visitID string, req *models.AttachPhotosRequest) error {
	visit, err := s.visitRepo.GetVisit(ctx, visitID)
	if err != nil {
		return err
	}

	if visit.Status == models.VisitStatusFinalized {
		return ErrAlreadyFinalized
	}

	if len(req.PhotoURLs) > visit.PhotoCount {
		return validationErrorf("received %d photo URLs, visit declared %d photos",
			len(req.PhotoURLs), visit.PhotoCount)
	}

	for _, rec := range req.PhotoURLs {
		if rec.ItemIndex < 0 || rec.ItemIndex >= len(visit.ReportItems) {
			return validationErrorf("photo record references item %d, visit has %d items",
				rec.ItemIndex, len(visit.ReportItems))
		}
		if rec.PhotoIndex < 0 || rec.PhotoIndex >= visit.ReportItems[rec.ItemIndex].PhotoCount {
			return validationErrorf("photo record references photo %d of item %d, item declared %d photos",
				rec.PhotoIndex, rec.ItemIndex, visit.ReportItems[rec.ItemIndex].PhotoCount)
		}
	}

	if _, err := s.visitRepo.AttachPhotoURLs(ctx, visitID, req.PhotoURLs); err != nil {
		return fmt.Errorf("failed to attach photo URLs: %w", err)
	}

	return nil
}

// Finalize is phase 3: enqueue report generation for the visit. When the
// background worker is disabled the documents are rendered inline and the
// response carries their URLs directly.
func (s *VisitService) Finalize(ctx context.Context, visitID string) (*models.FinalizeResponse, error) {
	visit, err := s.visitRepo.GetVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}

	switch visit.Status {
	case models.VisitStatusMetadataReceived:
		return nil, ErrPhotosNotAttached
	case models.VisitStatusFinalized:
		return nil, ErrAlreadyFinalized
	}

	if err := s.visitRepo.MarkFinalized(ctx, visitID); err != nil {
		return nil, fmt.Errorf("failed to mark visit finalized: %w", err)
	}

	if !s.config.WorkerEnabled {
		return s.renderInline(ctx, visit)
	}

	job := &models.ReportJob{
		VisitID:   visitID,
		Status:    models.JobStatusQueued,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.statusRepo.SetStatus(ctx, visitID, job); err != nil {
		return nil, fmt.Errorf("failed to record job status: %w", err)
	}
	if err := s.statusRepo.Enqueue(ctx, visitID); err != nil {
		return nil, fmt.Errorf("failed to enqueue render job: %w", err)
	}

	return &models.FinalizeResponse{
		Status:    "accepted",
		StatusURL: fmt.Sprintf("%s%s/site-visit/status/%s", s.config.AppBaseURL, s.config.BasePath, visitID),
	}, nil
}

func (s *VisitService) renderInline(ctx context.Context, visit *models.Visit) (*models.FinalizeResponse, error) {
	s.logger.Infof("Worker disabled, rendering visit %s inline", visit.VisitID)

	pdfURL, excelURL, err := s.renderer.Render(ctx, visit)
	if err != nil {
		return nil, fmt.Errorf("report generation failed: %w", err)
	}

	return &models.FinalizeResponse{
		Status:   "success",
		PDFURL:   pdfURL,
		ExcelURL: excelURL,
	}, nil
}

// JobStatus returns the report job record the client polls.
func (s *VisitService) JobStatus(ctx context.Context, visitID string) (*models.ReportJob, error) {
	return s.statusRepo.GetStatus(ctx, visitID)
}
