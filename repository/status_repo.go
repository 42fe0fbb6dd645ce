package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"injaaz-backend/models"
	"injaaz-backend/utils/logger"

	"github.com/redis/go-redis/v9"
)

const (
	statusKeyPrefix = "report:"
	renderQueueKey  = "report:queue"
)

// ErrQueueEmpty is returned by Dequeue when no job arrived within the timeout.
var ErrQueueEmpty = errors.New("render queue empty")

// ErrStatusNotFound is returned when no job status exists for a visit ID.
var ErrStatusNotFound = errors.New("job status not found")

// JobStatusRepository keeps report-job status records and the render queue
// in Redis so the status endpoint survives across workers and restarts.
type JobStatusRepository struct {
	client *redis.Client
	logger logger.Logger
}

func NewJobStatusRepository(cfg *models.Config, log logger.Logger) (*JobStatusRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Infof("Redis connected successfully: %s", cfg.RedisAddr)
	return &JobStatusRepository{client: client, logger: log}, nil
}

func statusKey(visitID string) string {
	return statusKeyPrefix + visitID
}

func (r *JobStatusRepository) SetStatus(ctx context.Context, visitID string, job *models.ReportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job status: %w", err)
	}

	if err := r.client.Set(ctx, statusKey(visitID), data, 0).Err(); err != nil {
		r.logger.Errorf("Failed to set job status for %s: %v", visitID, err)
		return err
	}

	return nil
}

func (r *JobStatusRepository) GetStatus(ctx context.Context, visitID string) (*models.ReportJob, error) {
	raw, err := r.client.Get(ctx, statusKey(visitID)).Result()
	if err == redis.Nil {
		return nil, ErrStatusNotFound
	}
	if err != nil {
		return nil, err
	}

	var job models.ReportJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job status: %w", err)
	}

	return &job, nil
}

func (r *JobStatusRepository) DeleteStatus(ctx context.Context, visitID string) error {
	return r.client.Del(ctx, statusKey(visitID)).Err()
}

// StaleStatusKeys returns visit IDs whose job reached a terminal state longer
// than olderThan ago. Used by the cleanup job.
func (r *JobStatusRepository) StaleStatusKeys(ctx context.Context, olderThan time.Duration) ([]string, error) {
	var stale []string
	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, statusKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}

		for _, key := range keys {
			if key == renderQueueKey {
				continue
			}
			visitID := key[len(statusKeyPrefix):]
			job, err := r.GetStatus(ctx, visitID)
			if err != nil {
				continue
			}
			if !job.Terminal() || job.CompletedAt == "" {
				continue
			}
			completed, err := time.Parse(time.RFC3339, job.CompletedAt)
			if err != nil {
				continue
			}
			if time.Since(completed) > olderThan {
				stale = append(stale, visitID)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return stale, nil
}

func (r *JobStatusRepository) Enqueue(ctx context.Context, visitID string) error {
	if err := r.client.LPush(ctx, renderQueueKey, visitID).Err(); err != nil {
		r.logger.Errorf("Failed to enqueue render job for %s: %v", visitID, err)
		return err
	}

	r.logger.Infof("Render job enqueued: %s", visitID)
	return nil
}

// Dequeue blocks up to timeout waiting for the next render job.
func (r *JobStatusRepository) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := r.client.BRPop(ctx, timeout, renderQueueKey).Result()
	if err == redis.Nil {
		return "", ErrQueueEmpty
	}
	if err != nil {
		return "", err
	}
	if len(res) != 2 {
		return "", fmt.Errorf("unexpected BRPOP reply length %d", len(res))
	}

	return res[1], nil
}

// Close closes the underlying Redis connection.
func (r *JobStatusRepository) Close() error {
	return r.client.Close()
}
