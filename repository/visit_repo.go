package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"injaaz-backend/dal"
	"injaaz-backend/models"
	"injaaz-backend/utils"
	"injaaz-backend/utils/logger"
)

// ErrVisitNotFound is returned when no visit record exists for a visit ID.
var ErrVisitNotFound = errors.New("visit not found")

type VisitRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewVisitRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *VisitRepository {
	return &VisitRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

func (r *VisitRepository) tableName() string {
	return r.config.DynamoDBTablePrefix + "_visits"
}

func (r *VisitRepository) CreateVisit(ctx context.Context, visit *models.Visit) (*models.Visit, error) {
	now := time.Now()
	visit.VisitID = utils.GenerateUUID()
	visit.CreatedAt = now
	visit.UpdatedAt = now
	visit.Status = models.VisitStatusMetadataReceived

	photoCount := 0
	for _, item := range visit.ReportItems {
		photoCount += item.PhotoCount
	}
	visit.PhotoCount = photoCount

	if err := r.db.PutItem(ctx, r.tableName(), visit); err != nil {
		r.logger.Errorf("Failed to create visit: %v", err)
		return nil, err
	}

	r.logger.Infof("Visit created successfully: %s (%d expected photos)", visit.VisitID, photoCount)
	return visit, nil
}

func (r *VisitRepository) GetVisit(ctx context.Context, visitID string) (*models.Visit, error) {
	if visitID == "" {
		return nil, errors.New("visit ID is required")
	}

	visit := models.Visit{}
	lk := models.Lookup{
		Table: r.tableName(),
		Key:   "visitID",
		Value: visitID,
	}

	if err := r.db.GetItem(ctx, lk, &visit); err != nil {
		r.logger.Errorf("Failed to get visit %s: %v", visitID, err)
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}

	if visit.VisitID == "" {
		return nil, ErrVisitNotFound
	}

	return &visit, nil
}

// AttachPhotoURLs re-attaches uploaded photo URLs to their item slots using
// the positional (item_index, photo_index) references from submission time.
func (r *VisitRepository) AttachPhotoURLs(ctx context.Context, visitID string, records []models.PhotoUploadRecord) (*models.Visit, error) {
	visit, err := r.GetVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}

	for i := range visit.ReportItems {
		visit.ReportItems[i].PhotoURLs = make([]string, visit.ReportItems[i].PhotoCount)
	}

	for _, rec := range records {
		if rec.ItemIndex < 0 || rec.ItemIndex >= len(visit.ReportItems) {
			return nil, fmt.Errorf("photo record references item %d, visit has %d items",
				rec.ItemIndex, len(visit.ReportItems))
		}
		item := &visit.ReportItems[rec.ItemIndex]
		if rec.PhotoIndex < 0 || rec.PhotoIndex >= item.PhotoCount {
			return nil, fmt.Errorf("photo record references photo %d of item %d, item declared %d photos",
				rec.PhotoIndex, rec.ItemIndex, item.PhotoCount)
		}
		item.PhotoURLs[rec.PhotoIndex] = rec.PhotoURL
	}

	visit.Status = models.VisitStatusPhotosAttached
	visit.UpdatedAt = time.Now()

	if err := r.db.PutItem(ctx, r.tableName(), visit); err != nil {
		r.logger.Errorf("Failed to attach photo URLs to visit %s: %v", visitID, err)
		return nil, err
	}

	r.logger.Infof("Attached %d photo URLs to visit %s", len(records), visitID)
	return visit, nil
}

func (r *VisitRepository) MarkFinalized(ctx context.Context, visitID string) error {
	err := r.db.UpdateItem(ctx, r.tableName(), "visitID", visitID, map[string]interface{}{
		"visitStatus": string(models.VisitStatusFinalized),
		"updatedAt":   time.Now(),
	})
	if err != nil {
		r.logger.Errorf("Failed to mark visit %s finalized: %v", visitID, err)
		return err
	}

	return nil
}

func (r *VisitRepository) GetVisitsByStatus(ctx context.Context, status models.VisitStatus) ([]*models.Visit, error) {
	var visits []*models.Visit
	err := r.db.QueryByIndex(ctx, models.Lookup{
		Table: r.tableName(),
		Index: "visitStatus-index",
		Key:   "visitStatus",
		Value: string(status),
	}, &visits)
	if err != nil {
		r.logger.Errorf("Failed to get visits by status %s: %v", status, err)
		return nil, err
	}

	return visits, nil
}
