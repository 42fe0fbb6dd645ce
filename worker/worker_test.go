package worker

import (
	"context"
	"testing"
	"time"

	"injaaz-backend/models"
	"injaaz-backend/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockVisitRepo implements repository.VisitRepositoryInterface for testing
type MockVisitRepo struct {
	mock.Mock
}

func (m *MockVisitRepo) CreateVisit(ctx context.Context, visit *models.Visit) (*models.Visit, error) {
	args := m.Called(ctx, visit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Visit), args.Error(1)
}

func (m *MockVisitRepo) GetVisit(ctx context.Context, visitID string) (*models.Visit, error) {
	args := m.Called(ctx, visitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Visit), args.Error(1)
}

func (m *MockVisitRepo) AttachPhotoURLs(ctx context.Context, visitID string, records []models.PhotoUploadRecord) (*models.Visit, error) {
	args := m.Called(ctx, visitID, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Visit), args.Error(1)
}

func (m *MockVisitRepo) MarkFinalized(ctx context.Context, visitID string) error {
	args := m.Called(ctx, visitID)
	return args.Error(0)
}

func (m *MockVisitRepo) GetVisitsByStatus(ctx context.Context, status models.VisitStatus) ([]*models.Visit, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Visit), args.Error(1)
}

// MockRenderer implements services.ReportRendererInterface for testing
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, visit *models.Visit) (string, string, error) {
	args := m.Called(ctx, visit)
	return args.String(0), args.String(1), args.Error(2)
}

// WorkerTestSuite defines a test suite for the render worker
type WorkerTestSuite struct {
	suite.Suite
	config     *models.Config
	logger     *MockWorkerLogger
	visitRepo  *MockVisitRepo
	statusRepo *MockStatusRepo
	renderer   *MockRenderer
}

func (suite *WorkerTestSuite) SetupTest() {
	suite.config = &models.Config{
		GeneratedDir:    suite.T().TempDir(),
		CleanupSchedule: "0 0 * * * *",
		RenderTimeout:   time.Minute,
	}

	suite.logger = new(MockWorkerLogger)
	suite.logger.On("Debug", mock.Anything).Maybe()
	suite.logger.On("Debugf", mock.Anything, mock.Anything).Maybe()
	suite.logger.On("Info", mock.Anything).Maybe()
	suite.logger.On("Infof", mock.Anything, mock.Anything).Maybe()
	suite.logger.On("Infof", mock.Anything, mock.Anything, mock.Anything).Maybe()
	suite.logger.On("Warnf", mock.Anything, mock.Anything).Maybe()
	suite.logger.On("Error", mock.Anything).Maybe()
	suite.logger.On("Errorf", mock.Anything, mock.Anything).Maybe()
	suite.logger.On("Errorf", mock.Anything, mock.Anything, mock.Anything).Maybe()

	suite.visitRepo = new(MockVisitRepo)
	suite.statusRepo = new(MockStatusRepo)
	suite.renderer = new(MockRenderer)
}

func (suite *WorkerTestSuite) newWorker() *Worker {
	w, err := NewWorker(suite.config, suite.logger, suite.visitRepo, suite.statusRepo, suite.renderer)
	suite.Require().NoError(err)
	return w
}

func TestWorkerTestSuite(t *testing.T) {
	suite.Run(t, new(WorkerTestSuite))
}

// TestNewWorkerRejectsNilConfig tests constructor validation
func (suite *WorkerTestSuite) TestNewWorkerRejectsNilConfig() {
	_, err := NewWorker(nil, suite.logger, suite.visitRepo, suite.statusRepo, suite.renderer)
	assert.Error(suite.T(), err)
}

// TestNewWorkerRejectsInvalidSchedule tests cron expression validation
func (suite *WorkerTestSuite) TestNewWorkerRejectsInvalidSchedule() {
	suite.config.CleanupSchedule = "not a cron expression"
	_, err := NewWorker(suite.config, suite.logger, suite.visitRepo, suite.statusRepo, suite.renderer)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "invalid cleanup schedule")
}

// TestRecoverOrphanedJobsRequeuesProcessing tests that visits stuck in
// processing from a dead worker are re-enqueued
func (suite *WorkerTestSuite) TestRecoverOrphanedJobsRequeuesProcessing() {
	visits := []*models.Visit{
		{VisitID: "visit-stuck", Status: models.VisitStatusFinalized},
		{VisitID: "visit-done", Status: models.VisitStatusFinalized},
		{VisitID: "visit-queued", Status: models.VisitStatusFinalized},
	}
	suite.visitRepo.On("GetVisitsByStatus", mock.Anything, models.VisitStatusFinalized).Return(visits, nil)

	suite.statusRepo.On("GetStatus", mock.Anything, "visit-stuck").
		Return(&models.ReportJob{VisitID: "visit-stuck", Status: models.JobStatusProcessing}, nil)
	suite.statusRepo.On("GetStatus", mock.Anything, "visit-done").
		Return(&models.ReportJob{VisitID: "visit-done", Status: models.JobStatusDone}, nil)
	suite.statusRepo.On("GetStatus", mock.Anything, "visit-queued").
		Return(&models.ReportJob{VisitID: "visit-queued", Status: models.JobStatusQueued}, nil)
	suite.statusRepo.On("Enqueue", mock.Anything, "visit-stuck").Return(nil)

	w := suite.newWorker()
	w.recoverOrphanedJobs()

	suite.statusRepo.AssertCalled(suite.T(), "Enqueue", mock.Anything, "visit-stuck")
	suite.statusRepo.AssertNotCalled(suite.T(), "Enqueue", mock.Anything, "visit-done")
	suite.statusRepo.AssertNotCalled(suite.T(), "Enqueue", mock.Anything, "visit-queued")
}

// TestRecoverOrphanedJobsSkipsMissingStatus tests that visits with no job
// record are left alone
func (suite *WorkerTestSuite) TestRecoverOrphanedJobsSkipsMissingStatus() {
	visits := []*models.Visit{{VisitID: "visit-1", Status: models.VisitStatusFinalized}}
	suite.visitRepo.On("GetVisitsByStatus", mock.Anything, models.VisitStatusFinalized).Return(visits, nil)
	suite.statusRepo.On("GetStatus", mock.Anything, "visit-1").Return(nil, repository.ErrStatusNotFound)

	w := suite.newWorker()
	w.recoverOrphanedJobs()

	suite.statusRepo.AssertNotCalled(suite.T(), "Enqueue", mock.Anything, mock.Anything)
}

// TestProcessJobRendersAndMarksDone tests the happy path through processJob
func (suite *WorkerTestSuite) TestProcessJobRendersAndMarksDone() {
	visit := &models.Visit{VisitID: "visit-1", Status: models.VisitStatusFinalized}

	suite.statusRepo.On("SetStatus", mock.Anything, "visit-1", mock.MatchedBy(func(j *models.ReportJob) bool {
		return j.Status == models.JobStatusProcessing
	})).Return(nil)
	suite.visitRepo.On("GetVisit", mock.Anything, "visit-1").Return(visit, nil)
	suite.renderer.On("Render", mock.Anything, visit).Return("http://x/report.pdf", "http://x/report.xlsx", nil)
	suite.statusRepo.On("SetStatus", mock.Anything, "visit-1", mock.MatchedBy(func(j *models.ReportJob) bool {
		return j.Status == models.JobStatusDone && j.PDFURL == "http://x/report.pdf" && j.ExcelURL == "http://x/report.xlsx"
	})).Return(nil)

	w := suite.newWorker()
	w.processJob("visit-1")

	suite.statusRepo.AssertExpectations(suite.T())
	suite.renderer.AssertExpectations(suite.T())
}

// TestProcessJobMarksFailedOnRenderError tests the failure path
func (suite *WorkerTestSuite) TestProcessJobMarksFailedOnRenderError() {
	visit := &models.Visit{VisitID: "visit-1", Status: models.VisitStatusFinalized}

	suite.statusRepo.On("SetStatus", mock.Anything, "visit-1", mock.MatchedBy(func(j *models.ReportJob) bool {
		return j.Status == models.JobStatusProcessing
	})).Return(nil)
	suite.visitRepo.On("GetVisit", mock.Anything, "visit-1").Return(visit, nil)
	suite.renderer.On("Render", mock.Anything, visit).Return("", "", assert.AnError)
	suite.statusRepo.On("SetStatus", mock.Anything, "visit-1", mock.MatchedBy(func(j *models.ReportJob) bool {
		return j.Status == models.JobStatusFailed && j.Error != ""
	})).Return(nil)

	w := suite.newWorker()
	w.processJob("visit-1")

	suite.statusRepo.AssertExpectations(suite.T())
}

// TestProcessJobMarksFailedWhenVisitMissing tests rendering an unknown visit
func (suite *WorkerTestSuite) TestProcessJobMarksFailedWhenVisitMissing() {
	suite.statusRepo.On("SetStatus", mock.Anything, "visit-x", mock.MatchedBy(func(j *models.ReportJob) bool {
		return j.Status == models.JobStatusProcessing
	})).Return(nil)
	suite.visitRepo.On("GetVisit", mock.Anything, "visit-x").Return(nil, repository.ErrVisitNotFound)
	suite.statusRepo.On("SetStatus", mock.Anything, "visit-x", mock.MatchedBy(func(j *models.ReportJob) bool {
		return j.Status == models.JobStatusFailed
	})).Return(nil)

	w := suite.newWorker()
	w.processJob("visit-x")

	suite.statusRepo.AssertExpectations(suite.T())
	suite.renderer.AssertNotCalled(suite.T(), "Render", mock.Anything, mock.Anything)
}
