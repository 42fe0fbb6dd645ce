package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"injaaz-backend/models"
)

func newPollClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(Config{BaseURL: "http://unused"}, nopLogger{})
}

func TestPollReachesTerminalExactlyOnce(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		job := models.ReportJob{Status: models.JobStatusProcessing}
		if n >= 3 {
			job = models.ReportJob{Status: models.JobStatusDone, PDFURL: "p", ExcelURL: "e"}
		}
		writeJSON(w, http.StatusOK, job)
	}))
	defer server.Close()

	terminalCh := make(chan *models.ReportJob, 4)
	var terminalCount int32

	cancel := newPollClient(t).Poll(context.Background(), server.URL,
		10*time.Millisecond, 5*time.Second,
		nil,
		func(job *models.ReportJob, err error) {
			atomic.AddInt32(&terminalCount, 1)
			terminalCh <- job
		})
	defer cancel()

	select {
	case job := <-terminalCh:
		require.NotNil(t, job)
		assert.Equal(t, models.JobStatusDone, job.Status)
		assert.Equal(t, "p", job.PDFURL)
	case <-time.After(5 * time.Second):
		t.Fatal("poller never reached terminal state")
	}

	// No further terminal callbacks, and cancel after terminal is a no-op.
	cancel()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&terminalCount))
}

func TestPollTransientErrorsKeepPolling(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, models.ReportJob{Status: models.JobStatusDone})
	}))
	defer server.Close()

	progressCh := make(chan string, 16)
	terminalCh := make(chan struct{})

	cancel := newPollClient(t).Poll(context.Background(), server.URL,
		10*time.Millisecond, 5*time.Second,
		func(status string) { progressCh <- status },
		func(job *models.ReportJob, err error) {
			require.NoError(t, err)
			close(terminalCh)
		})
	defer cancel()

	select {
	case <-terminalCh:
	case <-time.After(5 * time.Second):
		t.Fatal("poller never recovered from transient errors")
	}

	close(progressCh)
	var sawUnknown bool
	for status := range progressCh {
		if status == "unknown" {
			sawUnknown = true
		}
	}
	assert.True(t, sawUnknown, "transport failures must report the unknown marker")
}

func TestPollWallClockTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ReportJob{Status: models.JobStatusProcessing})
	}))
	defer server.Close()

	errCh := make(chan error, 1)
	start := time.Now()

	cancel := newPollClient(t).Poll(context.Background(), server.URL,
		10*time.Millisecond, 80*time.Millisecond,
		nil,
		func(job *models.ReportJob, err error) {
			assert.Nil(t, job)
			errCh <- err
		})
	defer cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrPollTimeout)
		assert.Less(t, time.Since(start), 2*time.Second)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout never fired")
	}
}

func TestPollCancelStopsTicks(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusOK, models.ReportJob{Status: models.JobStatusQueued})
	}))
	defer server.Close()

	var terminalCount int32
	cancel := newPollClient(t).Poll(context.Background(), server.URL,
		10*time.Millisecond, 5*time.Second,
		nil,
		func(*models.ReportJob, error) { atomic.AddInt32(&terminalCount, 1) })

	time.Sleep(50 * time.Millisecond)
	cancel()
	cancel() // idempotent

	settled := atomic.LoadInt32(&hits)
	time.Sleep(100 * time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt32(&hits), settled+1, "no new ticks after cancel")
	assert.Zero(t, atomic.LoadInt32(&terminalCount), "cancel is not a terminal outcome")
}
