package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"injaaz-backend/models"
)

// ProgressFunc receives the job status observed on each poll tick. Transport
// failures report the marker "unknown" and polling continues.
type ProgressFunc func(status string)

// TerminalFunc receives the final outcome exactly once: a terminal job
// record, or a nil record with ErrPollTimeout when the wall-clock bound
// elapsed first.
type TerminalFunc func(job *models.ReportJob, err error)

// Poll repeatedly checks statusURL until the job reaches a terminal state or
// timeout elapses. Ticks never overlap: a check still in flight causes the
// next scheduled tick to be skipped. The returned cancel func stops all
// future ticks and is a harmless no-op after a terminal outcome.
func (c *Client) Poll(ctx context.Context, statusURL string, interval, timeout time.Duration,
	onProgress ProgressFunc, onTerminal TerminalFunc) (cancel func()) {
	if onProgress == nil {
		onProgress = func(string) {}
	}
	if onTerminal == nil {
		onTerminal = func(*models.ReportJob, error) {}
	}

	stopChan := make(chan struct{})
	var stopOnce sync.Once
	stop := func() { stopOnce.Do(func() { close(stopChan) }) }

	var terminalOnce sync.Once
	terminal := func(job *models.ReportJob, err error) {
		terminalOnce.Do(func() {
			stop()
			onTerminal(job, err)
		})
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		deadline := time.NewTimer(timeout)
		defer deadline.Stop()

		for {
			select {
			case <-stopChan:
				return
			case <-ctx.Done():
				terminal(nil, ctx.Err())
				return
			case <-deadline.C:
				terminal(nil, ErrPollTimeout)
				return
			case <-ticker.C:
				// The check runs inline, so a slow response delays the loop
				// and the ticker silently drops the ticks that pile up
				// behind it. That is the no-overlap guarantee.
				job, err := c.checkStatus(ctx, statusURL)
				if err != nil {
					c.logger.Warnf("Status check failed, will retry: %v", err)
					onProgress("unknown")
					continue
				}

				onProgress(string(job.Status))
				if job.Terminal() {
					terminal(job, nil)
					return
				}
			}
		}
	}()

	return stop
}

func (c *Client) checkStatus(ctx context.Context, statusURL string) (*models.ReportJob, error) {
	status, raw, err := c.getJSON(ctx, statusURL)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &ServerError{StatusCode: status, Message: serverMessage(raw, status)}
	}
	if !gjson.ValidBytes(raw) {
		return nil, &ServerError{StatusCode: status, Message: "malformed status response"}
	}

	var job models.ReportJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
