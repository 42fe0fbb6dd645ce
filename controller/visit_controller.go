package controller

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"injaaz-backend/models"
	"injaaz-backend/repository"
	"injaaz-backend/services"
	"injaaz-backend/utils/logger"
)

type VisitController struct {
	ctx          context.Context
	visitService services.VisitServiceInterface
	catalog      services.CatalogServiceInterface
	config       *models.Config
	logger       logger.Logger
	validator    *validator.Validate
}

func NewVisitController(ctx context.Context, visitService services.VisitServiceInterface,
	catalog services.CatalogServiceInterface, cfg *models.Config, log logger.Logger) *VisitController {
	return &VisitController{
		ctx:          ctx,
		visitService: visitService,
		catalog:      catalog,
		config:       cfg,
		logger:       log,
		validator:    validator.New(),
	}
}

// formatValidationErrors formats validation errors into readable messages
func (h *VisitController) formatValidationErrors(err error) string {
	var errorMessages []string

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			switch fieldError.Tag() {
			case "required":
				errorMessages = append(errorMessages, fieldError.Field()+" is required")
			case "min":
				errorMessages = append(errorMessages, fieldError.Field()+" must be at least "+fieldError.Param())
			case "max":
				errorMessages = append(errorMessages, fieldError.Field()+" must be at most "+fieldError.Param())
			case "uuid4":
				errorMessages = append(errorMessages, fieldError.Field()+" must be a valid UUID")
			default:
				errorMessages = append(errorMessages, fieldError.Field()+" is invalid")
			}
		}
	}

	return strings.Join(errorMessages, "; ")
}

// GetDropdowns handles GET /api/v1/site-visit/dropdowns
// @Summary Get the dropdown catalog
// @Description Retrieve the asset/system/description lookup table the form is built from
// @Tags Site Visit
// @Produce json
// @Success 200 {object} models.Catalog "Dropdown catalog"
// @Router /site-visit/dropdowns [get]
func (h *VisitController) GetDropdowns(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Catalog())
}

// SubmitMetadata handles POST /api/v1/site-visit/submit/metadata
// @Summary Submit visit metadata
// @Description Phase 1 of the submission protocol: validate and store the report payload, returning the visit ID and upload credentials
// @Tags Site Visit
// @Accept json
// @Produce json
// @Param request body models.SubmissionPayload true "Visit metadata"
// @Success 200 {object} models.SubmissionAccepted "Metadata accepted"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid payload"
// @Failure 500 {object} models.APIResponse "Internal Server Error"
// @Router /site-visit/submit/metadata [post]
func (h *VisitController) SubmitMetadata(c *gin.Context) {
	var payload models.SubmissionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Error("Failed to bind submission payload:", err)
		h.respondError(c, http.StatusBadRequest, "Invalid request body", "ValidationError", err.Error())
		return
	}

	if err := h.validator.Struct(&payload); err != nil {
		h.logger.Error("Payload validation failed:", err)
		h.respondError(c, http.StatusBadRequest, "Validation failed", "ValidationError", h.formatValidationErrors(err))
		return
	}

	accepted, err := h.visitService.SubmitMetadata(h.ctx, &payload)
	if err != nil {
		h.respondServiceError(c, "Failed to submit visit metadata", err)
		return
	}

	c.JSON(http.StatusOK, accepted)
}

// AttachPhotos handles POST /api/v1/site-visit/submit/photos
// @Summary Attach uploaded photo URLs
// @Description Phase 2 of the submission protocol: record the storage URLs of photos the client uploaded directly
// @Tags Site Visit
// @Accept json
// @Produce json
// @Param visit_id query string true "Visit ID from the metadata phase"
// @Param request body models.AttachPhotosRequest true "Uploaded photo records"
// @Success 200 {object} map[string]string "Photos attached"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid records"
// @Failure 404 {object} models.APIResponse "Not Found - Unknown visit"
// @Failure 409 {object} models.APIResponse "Conflict - Visit already finalized"
// @Router /site-visit/submit/photos [post]
func (h *VisitController) AttachPhotos(c *gin.Context) {
	visitID := c.Query("visit_id")
	if visitID == "" {
		h.respondError(c, http.StatusBadRequest, "visit_id query parameter is required", "ValidationError", "")
		return
	}

	var req models.AttachPhotosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind photo records:", err)
		h.respondError(c, http.StatusBadRequest, "Invalid request body", "ValidationError", err.Error())
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		h.logger.Error("Photo record validation failed:", err)
		h.respondError(c, http.StatusBadRequest, "Validation failed", "ValidationError", h.formatValidationErrors(err))
		return
	}

	if err := h.visitService.AttachPhotos(h.ctx, visitID, &req); err != nil {
		h.respondServiceError(c, "Failed to attach photos", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Finalize handles GET /api/v1/site-visit/finalize
// @Summary Finalize a visit
// @Description Phase 3 of the submission protocol: trigger report generation. Returns document URLs synchronously or a status URL to poll
// @Tags Site Visit
// @Produce json
// @Param visit_id query string true "Visit ID from the metadata phase"
// @Success 200 {object} models.FinalizeResponse "Reports generated"
// @Success 202 {object} models.FinalizeResponse "Report generation queued"
// @Failure 404 {object} models.APIResponse "Not Found - Unknown visit"
// @Failure 409 {object} models.APIResponse "Conflict - Photos not attached or already finalized"
// @Router /site-visit/finalize [get]
func (h *VisitController) Finalize(c *gin.Context) {
	visitID := c.Query("visit_id")
	if visitID == "" {
		h.respondError(c, http.StatusBadRequest, "visit_id query parameter is required", "ValidationError", "")
		return
	}

	resp, err := h.visitService.Finalize(h.ctx, visitID)
	if err != nil {
		h.respondServiceError(c, "Failed to finalize visit", err)
		return
	}

	if resp.Status == "accepted" {
		c.JSON(http.StatusAccepted, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// JobStatus handles GET /api/v1/site-visit/status/:visit_id
// @Summary Poll report generation status
// @Description Return the current state of a queued report job
// @Tags Site Visit
// @Produce json
// @Param visit_id path string true "Visit ID"
// @Success 200 {object} models.ReportJob "Job status"
// @Failure 404 {object} models.APIResponse "Not Found - No job for this visit"
// @Router /site-visit/status/{visit_id} [get]
func (h *VisitController) JobStatus(c *gin.Context) {
	visitID := c.Param("visit_id")

	job, err := h.visitService.JobStatus(h.ctx, visitID)
	if err != nil {
		h.respondServiceError(c, "Failed to get job status", err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// DownloadGenerated handles GET /api/v1/site-visit/generated/:filename
// @Summary Download a generated report
// @Description Serve a generated PDF or Excel file as an attachment
// @Tags Site Visit
// @Produce application/octet-stream
// @Param filename path string true "Generated file name"
// @Success 200 {file} binary "Report file"
// @Failure 404 {object} models.APIResponse "Not Found"
// @Router /site-visit/generated/{filename} [get]
func (h *VisitController) DownloadGenerated(c *gin.Context) {
	filename := c.Param("filename")

	// Reject anything that could escape the generated directory.
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		h.respondError(c, http.StatusBadRequest, "Invalid file name", "ValidationError", "")
		return
	}
	if ext := filepath.Ext(filename); ext != ".pdf" && ext != ".xlsx" {
		h.respondError(c, http.StatusBadRequest, "Invalid file name", "ValidationError", "")
		return
	}

	c.FileAttachment(filepath.Join(h.config.GeneratedDir, filename), filename)
}

// respondServiceError maps service-layer errors to HTTP responses.
func (h *VisitController) respondServiceError(c *gin.Context, msg string, err error) {
	var valErr *services.ValidationError
	switch {
	case errors.As(err, &valErr):
		h.respondError(c, http.StatusBadRequest, msg, "ValidationError", valErr.Msg)
	case errors.Is(err, repository.ErrVisitNotFound):
		h.respondError(c, http.StatusNotFound, "Visit not found", "NotFoundError", err.Error())
	case errors.Is(err, repository.ErrStatusNotFound):
		h.respondError(c, http.StatusNotFound, "No report job for this visit", "NotFoundError", err.Error())
	case errors.Is(err, services.ErrPhotosNotAttached), errors.Is(err, services.ErrAlreadyFinalized):
		h.respondError(c, http.StatusConflict, msg, "StateError", err.Error())
	default:
		h.logger.Errorf("%s: %v", msg, err)
		h.respondError(c, http.StatusInternalServerError, msg, "InternalError", err.Error())
	}
}

func (h *VisitController) respondError(c *gin.Context, code int, msg, errType, details string) {
	resp := models.APIResponse{
		Status:  "error",
		Code:    code,
		Message: msg,
	}
	if errType != "" {
		resp.Error = &models.APIError{Type: errType, Details: details}
	}
	c.JSON(code, resp)
}
