package worker

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"injaaz-backend/models"
	"injaaz-backend/repository"
	"injaaz-backend/utils/logger"
)

// Cleanup removes generated report files past their TTL and the Redis
// status records of jobs that finished long enough ago.
type Cleanup struct {
	config     *models.Config
	logger     logger.Logger
	statusRepo repository.JobStatusRepositoryInterface
}

func NewCleanup(cfg *models.Config, log logger.Logger, statusRepo repository.JobStatusRepositoryInterface) *Cleanup {
	return &Cleanup{config: cfg, logger: log, statusRepo: statusRepo}
}

// Run executes one cleanup pass. File and status cleanup are independent;
// a failure in one does not abort the other.
func (c *Cleanup) Run(ctx context.Context) error {
	ttl := c.config.GeneratedFileTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	removed := c.removeExpiredFiles(ttl)
	if removed > 0 {
		c.logger.Infof("Cleanup removed %d expired generated file(s)", removed)
	}

	stale, err := c.statusRepo.StaleStatusKeys(ctx, ttl)
	if err != nil {
		c.logger.Errorf("Failed to scan for stale job statuses: %v", err)
		return err
	}
	for _, visitID := range stale {
		if err := c.statusRepo.DeleteStatus(ctx, visitID); err != nil {
			c.logger.Errorf("Failed to delete stale job status for %s: %v", visitID, err)
			continue
		}
		c.logger.Debugf("Deleted stale job status for visit %s", visitID)
	}

	return nil
}

func (c *Cleanup) removeExpiredFiles(ttl time.Duration) int {
	entries, err := os.ReadDir(c.config.GeneratedDir)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Errorf("Failed to read generated dir: %v", err)
		}
		return 0
	}

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(c.config.GeneratedDir, entry.Name())
		if err := os.Remove(path); err != nil {
			c.logger.Errorf("Failed to remove expired file %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed
}
