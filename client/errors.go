package client

import (
	"errors"
	"fmt"
)

// ErrPollTimeout is the terminal outcome when the status poller's wall-clock
// bound elapses before the job reaches done or failed.
var ErrPollTimeout = errors.New("timed out waiting for report generation")

// ValidationError is a local, pre-network failure: the submission never
// starts.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConfigError means the metadata response was missing a field the upload
// phase cannot proceed without. It indicates a server misconfiguration, not
// a transient fault, and is reported distinctly.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("server response missing required field %q", e.Missing)
}

// PhotoUploadError is one failed direct upload, identified by its position
// in the submission ordering.
type PhotoUploadError struct {
	ItemIndex  int
	PhotoIndex int
	Err        error
}

func (e *PhotoUploadError) Error() string {
	return fmt.Sprintf("photo %d of item %d failed to upload: %v", e.PhotoIndex, e.ItemIndex, e.Err)
}

func (e *PhotoUploadError) Unwrap() error { return e.Err }

// UploadPhaseError aggregates every failed upload of the fan-out phase. The
// phase fails as a whole if any upload failed, after all attempts settled.
type UploadPhaseError struct {
	Failures []*PhotoUploadError
	Total    int
}

func (e *UploadPhaseError) Error() string {
	return fmt.Sprintf("%d of %d photo uploads failed", len(e.Failures), e.Total)
}

// ServerError carries an error the server reported explicitly, with its
// message surfaced verbatim where available.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// TransportError wraps a network-level failure (the request never produced
// an HTTP response).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
