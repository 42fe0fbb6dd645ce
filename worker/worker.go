package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"

	"injaaz-backend/models"
	"injaaz-backend/repository"
	"injaaz-backend/services"
	"injaaz-backend/utils/logger"
)

const dequeueTimeout = 5 * time.Second

// Worker consumes the render queue and turns finalized visits into
// report documents, updating the job status record as it goes. It also
// owns the cron-driven cleanup of expired generated files.
type Worker struct {
	config    *models.Config
	logger    logger.Logger
	visitRepo repository.VisitRepositoryInterface
	statusRepo repository.JobStatusRepositoryInterface
	renderer  services.ReportRendererInterface
	cleanup   *Cleanup

	cronJob   *cron.Cron
	mu        sync.Mutex
	isRunning bool
	stopOnce  sync.Once
	stopChan  chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	done      sync.WaitGroup
}

func NewWorker(cfg *models.Config, log logger.Logger,
	visitRepo repository.VisitRepositoryInterface,
	statusRepo repository.JobStatusRepositoryInterface,
	renderer services.ReportRendererInterface) (*Worker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	if cfg.CleanupSchedule != "" {
		cronParser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := cronParser.Parse(cfg.CleanupSchedule); err != nil {
			return nil, fmt.Errorf("invalid cleanup schedule '%s': %w", cfg.CleanupSchedule, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		config:     cfg,
		logger:     log,
		visitRepo:  visitRepo,
		statusRepo: statusRepo,
		renderer:   renderer,
		cleanup:    NewCleanup(cfg, log, statusRepo),
		cronJob:    cron.New(),
		stopChan:   make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start launches the queue consumer loop and schedules the cleanup job.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("worker is already running")
	}

	select {
	case <-w.ctx.Done():
		return fmt.Errorf("worker context is cancelled, cannot start")
	default:
	}

	w.logger.Info("Starting report render worker")

	if w.config.CleanupSchedule != "" {
		if err := w.cronJob.AddFunc(w.config.CleanupSchedule, w.runCleanup); err != nil {
			return fmt.Errorf("failed to schedule cleanup job: %w", err)
		}
		w.cronJob.Start()
		w.logger.Infof("Cleanup job scheduled: %s", w.config.CleanupSchedule)
	}

	w.done.Add(1)
	go func() {
		defer w.done.Done()
		w.recoverOrphanedJobs()
		w.consumeLoop()
	}()

	w.isRunning = true
	w.logger.Info("Report render worker started")
	return nil
}

// recoverOrphanedJobs re-enqueues finalized visits whose job record was left
// non-terminal by a previous process, e.g. a crash mid-render.
func (w *Worker) recoverOrphanedJobs() {
	ctx, cancel := context.WithTimeout(w.ctx, 30*time.Second)
	defer cancel()

	visits, err := w.visitRepo.GetVisitsByStatus(ctx, models.VisitStatusFinalized)
	if err != nil {
		w.logger.Errorf("Failed to scan for orphaned render jobs: %v", err)
		return
	}

	recovered := 0
	for _, visit := range visits {
		job, err := w.statusRepo.GetStatus(ctx, visit.VisitID)
		if err != nil {
			if !errors.Is(err, repository.ErrStatusNotFound) {
				w.logger.Errorf("Failed to read job status for visit %s: %v", visit.VisitID, err)
			}
			continue
		}
		// Queued jobs are still on the Redis list; only jobs caught
		// mid-processing were lost with the previous process.
		if job.Status != models.JobStatusProcessing {
			continue
		}
		if err := w.statusRepo.Enqueue(ctx, visit.VisitID); err != nil {
			w.logger.Errorf("Failed to re-enqueue visit %s: %v", visit.VisitID, err)
			continue
		}
		recovered++
	}

	if recovered > 0 {
		w.logger.Infof("Re-enqueued %d orphaned render job(s)", recovered)
	}
}

// Stop shuts the worker down and waits for an in-flight job to finish.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		if !w.isRunning {
			w.mu.Unlock()
			return
		}
		w.logger.Info("Stopping report render worker")
		w.cancel()
		w.cronJob.Stop()
		w.isRunning = false
		close(w.stopChan)
		w.mu.Unlock()

		w.done.Wait()
		w.logger.Info("Report render worker stopped")
	})
}

// IsRunning reports whether the consumer loop is active.
func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

// consumeLoop blocks on the render queue and processes one visit at a time.
func (w *Worker) consumeLoop() {
	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		visitID, err := w.statusRepo.Dequeue(w.ctx, dequeueTimeout)
		if err != nil {
			if errors.Is(err, repository.ErrQueueEmpty) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Errorf("Render queue dequeue failed: %v", err)
			// Back off so a dead Redis does not spin the loop.
			select {
			case <-w.ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
			continue
		}

		w.processJob(visitID)
	}
}

// processJob renders a single visit, moving its status record through
// processing and into done or failed.
func (w *Worker) processJob(visitID string) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Errorf("Render job for visit %s panicked: %v", visitID, r)
			w.markFailed(visitID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	w.logger.Infof("Render job started for visit %s", visitID)

	ctx, cancel := context.WithTimeout(w.ctx, w.renderTimeout())
	defer cancel()

	now := time.Now().UTC().Format(time.RFC3339)
	if err := w.statusRepo.SetStatus(ctx, visitID, &models.ReportJob{
		VisitID:   visitID,
		Status:    models.JobStatusProcessing,
		StartedAt: now,
	}); err != nil {
		w.logger.Errorf("Failed to mark visit %s as processing: %v", visitID, err)
	}

	visit, err := w.visitRepo.GetVisit(ctx, visitID)
	if err != nil {
		w.logger.Errorf("Failed to load visit %s for rendering: %v", visitID, err)
		w.markFailed(visitID, "visit record not found")
		return
	}

	pdfURL, excelURL, err := w.renderer.Render(ctx, visit)
	if err != nil {
		w.logger.Errorf("Render failed for visit %s: %v", visitID, err)
		w.markFailed(visitID, err.Error())
		return
	}

	job := &models.ReportJob{
		VisitID:     visitID,
		Status:      models.JobStatusDone,
		PDFURL:      pdfURL,
		ExcelURL:    excelURL,
		StartedAt:   now,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := w.statusRepo.SetStatus(context.Background(), visitID, job); err != nil {
		w.logger.Errorf("Failed to mark visit %s as done: %v", visitID, err)
		return
	}

	w.logger.Infof("Render job completed for visit %s", visitID)
}

func (w *Worker) markFailed(visitID, reason string) {
	// Status writes on the failure path must not inherit a cancelled
	// render context.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	job := &models.ReportJob{
		VisitID:     visitID,
		Status:      models.JobStatusFailed,
		Error:       reason,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := w.statusRepo.SetStatus(ctx, visitID, job); err != nil {
		w.logger.Errorf("Failed to mark visit %s as failed: %v", visitID, err)
	}
}

func (w *Worker) renderTimeout() time.Duration {
	if w.config.RenderTimeout > 0 {
		return w.config.RenderTimeout
	}
	return 5 * time.Minute
}

func (w *Worker) runCleanup() {
	ctx, cancel := context.WithTimeout(w.ctx, 2*time.Minute)
	defer cancel()

	if err := w.cleanup.Run(ctx); err != nil {
		w.logger.Errorf("Cleanup run failed: %v", err)
	}
}
