package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"injaaz-backend/models"
)

// Session is the client-held form state: the visit info fields, the two
// signature captures, and the pending-item store. It is owned by the
// orchestrator and mutated only on terminal submission outcomes.
type Session struct {
	VisitInfo      map[string]string
	TechSignature  string
	OpManSignature string
	Store          *PendingStore
}

func NewSession(store *PendingStore) *Session {
	return &Session{
		VisitInfo: make(map[string]string),
		Store:     store,
	}
}

// Reset clears everything a successful submission consumes, deliberately
// preserving the technician name so consecutive visits by the same person
// do not retype it.
func (s *Session) Reset() {
	name := s.VisitInfo["technician_name"]
	s.VisitInfo = make(map[string]string)
	if name != "" {
		s.VisitInfo["technician_name"] = name
	}
	s.TechSignature = ""
	s.OpManSignature = ""
	s.Store.Clear()
}

// Documents is the pair of download URLs a completed submission produces.
type Documents struct {
	PDFURL   string
	ExcelURL string
}

// Orchestrator drives the three-phase submission protocol: metadata submit,
// parallel direct photo upload, then finalize with an optional status poll.
type Orchestrator struct {
	client   *Client
	session  *Session
	notifier Notifier

	// OnDocuments is invoked with the generated document URLs on success,
	// before local state is cleared. Typically triggers the two downloads.
	OnDocuments func(docs Documents)

	mu            sync.Mutex
	submitEnabled bool
	inFlight      bool
}

func NewOrchestrator(c *Client, session *Session, notifier Notifier) *Orchestrator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Orchestrator{
		client:        c,
		session:       session,
		notifier:      notifier,
		submitEnabled: true,
	}
}

// SubmitEnabled reports whether a new submission may start.
func (o *Orchestrator) SubmitEnabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.submitEnabled
}

// Submit runs the whole protocol to completion. Whatever happens, the submit
// control is re-enabled before Submit returns: this is the single outermost
// boundary of the state machine. On success the session is reset (technician
// name preserved); on any failure all local state is kept so the user can
// retry without re-entering anything. A retry always starts over from the
// metadata phase and obtains a fresh visit_id.
func (o *Orchestrator) Submit(ctx context.Context) (err error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return validationErrorf("a submission is already in progress")
	}
	o.inFlight = true
	o.submitEnabled = false
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.submitEnabled = true
		o.mu.Unlock()

		if err != nil {
			o.reportFailure(err)
		}
	}()

	// Phase 1: local validation. Pure, re-run identically on every retry.
	items := o.session.Store.Items()
	if err := o.validate(items); err != nil {
		return err
	}

	// Phase 2: metadata submit.
	o.notifier.Notify(SeverityInfo, "Submitting", "Sending report data...")
	accepted, err := o.submitMetadata(ctx, items)
	if err != nil {
		return err
	}

	// Phase 3: photo fan-out, then attach. The attach call happens even when
	// there are no photos at all.
	records, err := o.uploadAllPhotos(ctx, accepted, items)
	if err != nil {
		return err
	}
	if err := o.attachPhotos(ctx, accepted.VisitID, records); err != nil {
		return err
	}

	// Phase 4: finalize, possibly handing off to the status poller.
	docs, err := o.finalize(ctx, accepted.VisitID)
	if err != nil {
		return err
	}

	o.complete(docs)
	return nil
}

func (o *Orchestrator) validate(items []Item) error {
	if strings.TrimSpace(o.session.VisitInfo["technician_name"]) == "" {
		return validationErrorf("technician name is required")
	}
	if len(o.session.TechSignature) < models.MinSignatureLength {
		return validationErrorf("technician signature is missing")
	}
	if len(items) == 0 {
		return validationErrorf("add at least one report item before submitting")
	}
	return nil
}

func (o *Orchestrator) submitMetadata(ctx context.Context, items []Item) (*models.SubmissionAccepted, error) {
	payload := models.SubmissionPayload{
		VisitInfo:   o.session.VisitInfo,
		ReportItems: make([]models.ReportItem, 0, len(items)),
		Signatures: models.Signatures{
			TechSignature:  o.session.TechSignature,
			OpManSignature: o.session.OpManSignature,
		},
	}
	for _, item := range items {
		payload.ReportItems = append(payload.ReportItems, models.ReportItem{
			Asset:       item.Asset,
			System:      item.System,
			Description: item.Description,
			Quantity:    item.Quantity,
			Brand:       item.Brand,
			Comments:    item.Comments,
			PhotoCount:  len(item.Photos),
		})
	}

	status, raw, err := o.client.postJSON(ctx, o.client.url("/site-visit/submit/metadata"), payload)
	if err != nil {
		return nil, err
	}
	body := gjson.ParseBytes(raw)
	if status < 200 || status >= 300 || body.Get("status").String() != "success" {
		return nil, &ServerError{StatusCode: status, Message: serverMessage(raw, status)}
	}

	// All three fields are load-bearing for the upload phase. Missing any
	// one is a configuration fault, never something to guess around.
	accepted := &models.SubmissionAccepted{
		Status:                 body.Get("status").String(),
		VisitID:                body.Get("visit_id").String(),
		CloudinaryCloudName:    body.Get("cloudinary_cloud_name").String(),
		CloudinaryUploadPreset: body.Get("cloudinary_upload_preset").String(),
	}
	switch {
	case accepted.VisitID == "":
		return nil, &ConfigError{Missing: "visit_id"}
	case accepted.CloudinaryCloudName == "":
		return nil, &ConfigError{Missing: "cloudinary_cloud_name"}
	case accepted.CloudinaryUploadPreset == "":
		return nil, &ConfigError{Missing: "cloudinary_upload_preset"}
	}

	return accepted, nil
}

type photoSlot struct {
	itemIndex  int
	photoIndex int
	file       NormalizedFile
}

// uploadAllPhotos fans out one upload per photo and waits for every attempt
// to settle. Failure of one upload never cancels the others; partial
// results are collected, and the phase fails as a whole only after
// everything finished.
func (o *Orchestrator) uploadAllPhotos(ctx context.Context, accepted *models.SubmissionAccepted, items []Item) ([]models.PhotoUploadRecord, error) {
	var slots []photoSlot
	for i, item := range items {
		for j, f := range item.Photos {
			slots = append(slots, photoSlot{itemIndex: i, photoIndex: j, file: f})
		}
	}
	if len(slots) == 0 {
		return []models.PhotoUploadRecord{}, nil
	}

	o.notifier.Notify(SeverityInfo, "Uploading", fmt.Sprintf("Uploading %d photo(s)...", len(slots)))

	type outcome struct {
		record models.PhotoUploadRecord
		err    *PhotoUploadError
	}
	outcomes := make([]outcome, len(slots))

	var wg sync.WaitGroup
	for idx, slot := range slots {
		wg.Add(1)
		go func(idx int, slot photoSlot) {
			defer wg.Done()
			url, err := o.client.uploadPhoto(ctx, accepted.CloudinaryCloudName, accepted.CloudinaryUploadPreset, slot.file)
			if err != nil {
				outcomes[idx] = outcome{err: &PhotoUploadError{
					ItemIndex:  slot.itemIndex,
					PhotoIndex: slot.photoIndex,
					Err:        err,
				}}
				return
			}
			outcomes[idx] = outcome{record: models.PhotoUploadRecord{
				ItemIndex:  slot.itemIndex,
				PhotoIndex: slot.photoIndex,
				PhotoURL:   url,
			}}
		}(idx, slot)
	}
	wg.Wait()

	var failures []*PhotoUploadError
	records := make([]models.PhotoUploadRecord, 0, len(slots))
	for _, out := range outcomes {
		if out.err != nil {
			o.client.logger.Errorf("Photo upload failed: %v", out.err)
			failures = append(failures, out.err)
			continue
		}
		records = append(records, out.record)
	}
	if len(failures) > 0 {
		return nil, &UploadPhaseError{Failures: failures, Total: len(slots)}
	}

	// Completion order is arbitrary; re-impose submission order once, here.
	sort.Slice(records, func(a, b int) bool {
		if records[a].ItemIndex != records[b].ItemIndex {
			return records[a].ItemIndex < records[b].ItemIndex
		}
		return records[a].PhotoIndex < records[b].PhotoIndex
	})
	return records, nil
}

func (o *Orchestrator) attachPhotos(ctx context.Context, visitID string, records []models.PhotoUploadRecord) error {
	req := models.AttachPhotosRequest{PhotoURLs: records}
	url := o.client.url("/site-visit/submit/photos?visit_id=" + visitID)

	status, raw, err := o.client.postJSON(ctx, url, req)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 || gjson.GetBytes(raw, "status").String() != "success" {
		return &ServerError{StatusCode: status, Message: serverMessage(raw, status)}
	}
	return nil
}

func (o *Orchestrator) finalize(ctx context.Context, visitID string) (Documents, error) {
	o.notifier.Notify(SeverityInfo, "Generating", "Generating report documents...")

	status, raw, err := o.client.getJSON(ctx, o.client.url("/site-visit/finalize?visit_id="+visitID))
	if err != nil {
		return Documents{}, err
	}
	body := gjson.ParseBytes(raw)

	switch {
	case status == http.StatusAccepted || body.Get("status").String() == "accepted":
		statusURL := body.Get("status_url").String()
		if statusURL == "" {
			statusURL = o.client.url("/site-visit/status/" + visitID)
		}
		return o.awaitJob(ctx, statusURL)

	case status >= 200 && status < 300:
		docs := Documents{
			PDFURL:   body.Get("pdf_url").String(),
			ExcelURL: body.Get("excel_url").String(),
		}
		if docs.PDFURL == "" || docs.ExcelURL == "" {
			return Documents{}, &ServerError{StatusCode: status, Message: "finalize response missing document URLs"}
		}
		return docs, nil

	default:
		return Documents{}, &ServerError{StatusCode: status, Message: serverMessage(raw, status)}
	}
}

// awaitJob hands off to the status poller and blocks until its terminal
// callback fires.
func (o *Orchestrator) awaitJob(ctx context.Context, statusURL string) (Documents, error) {
	type result struct {
		job *models.ReportJob
		err error
	}
	resultChan := make(chan result, 1)

	cancel := o.client.Poll(ctx, statusURL,
		o.client.config.PollInterval, o.client.config.PollTimeout,
		func(status string) {
			o.notifier.Notify(SeverityInfo, "Generating", "Report status: "+status)
		},
		func(job *models.ReportJob, err error) {
			resultChan <- result{job: job, err: err}
		})
	defer cancel()

	res := <-resultChan
	if res.err != nil {
		return Documents{}, res.err
	}
	if res.job.Status == models.JobStatusFailed {
		msg := res.job.Error
		if msg == "" {
			msg = "report generation failed"
		}
		return Documents{}, &ServerError{StatusCode: http.StatusInternalServerError, Message: msg}
	}

	return Documents{PDFURL: res.job.PDFURL, ExcelURL: res.job.ExcelURL}, nil
}

func (o *Orchestrator) complete(docs Documents) {
	if o.OnDocuments != nil {
		o.OnDocuments(docs)
	}
	o.notifier.Notify(SeveritySuccess, "Submitted", "Report generated successfully.")
	o.session.Reset()
}

// reportFailure maps the error taxonomy onto user notifications. Local state
// is untouched on every failure path.
func (o *Orchestrator) reportFailure(err error) {
	var valErr *ValidationError
	var cfgErr *ConfigError
	var upErr *UploadPhaseError
	var srvErr *ServerError
	var tpErr *TransportError

	switch {
	case errors.As(err, &valErr):
		o.notifier.Notify(SeverityWarning, "Cannot submit", valErr.Msg)
	case errors.As(err, &cfgErr):
		o.notifier.Notify(SeverityError, "Server misconfigured", cfgErr.Error())
	case errors.As(err, &upErr):
		o.notifier.Notify(SeverityError, "Upload failed",
			fmt.Sprintf("%d photo upload(s) failed; nothing was submitted. Please try again.", len(upErr.Failures)))
	case errors.Is(err, ErrPollTimeout):
		o.notifier.Notify(SeverityError, "Timed out", ErrPollTimeout.Error())
	case errors.As(err, &srvErr):
		o.notifier.Notify(SeverityError, "Submission failed", srvErr.Error())
	case errors.As(err, &tpErr):
		o.notifier.Notify(SeverityError, "Submission interrupted", tpErr.Error())
	default:
		o.notifier.Notify(SeverityError, "Submission interrupted", err.Error())
	}
}
