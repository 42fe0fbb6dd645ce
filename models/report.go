package models

import "time"

// MaxPhotosPerItem bounds how many photos a single report item may carry.
const MaxPhotosPerItem = 10

// MinSignatureLength is the shortest data URI accepted as a real signature.
// A blank canvas export is shorter than this.
const MinSignatureLength = 100

// VisitStatus tracks how far a visit has progressed through the
// three-phase submission protocol on the server side.
type VisitStatus string

const (
	VisitStatusMetadataReceived VisitStatus = "metadata_received"
	VisitStatusPhotosAttached   VisitStatus = "photos_attached"
	VisitStatusFinalized        VisitStatus = "finalized"
)

// JobStatus is the state of a background report-generation job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

// ReportItem is one catalogued defect/observation line in a site visit report.
// PhotoURLs is empty until the attach-photos phase fills it in.
type ReportItem struct {
	Asset       string   `json:"asset" dynamodbav:"asset" validate:"required"`
	System      string   `json:"system" dynamodbav:"system" validate:"required"`
	Description string   `json:"description" dynamodbav:"description" validate:"required"`
	Quantity    int      `json:"quantity" dynamodbav:"quantity" validate:"omitempty,min=1"`
	Brand       string   `json:"brand,omitempty" dynamodbav:"brand,omitempty"`
	Comments    string   `json:"comments,omitempty" dynamodbav:"comments,omitempty"`
	PhotoCount  int      `json:"photo_count" dynamodbav:"photoCount" validate:"min=0,max=10"`
	PhotoURLs   []string `json:"photo_urls,omitempty" dynamodbav:"photoURLs,omitempty"`
}

// Signatures carries the two signature-pad exports as image data URIs.
type Signatures struct {
	TechSignature  string `json:"tech_signature" validate:"required,min=100"`
	OpManSignature string `json:"opMan_signature"`
}

// SubmissionPayload is the metadata envelope the client sends in phase 1.
// Photos are never part of it; each item carries only its photo_count.
type SubmissionPayload struct {
	VisitInfo   map[string]string `json:"visit_info" validate:"required"`
	ReportItems []ReportItem      `json:"report_items" validate:"required,min=1,dive"`
	Signatures  Signatures        `json:"signatures" validate:"required"`
}

// TechnicianName returns the technician_name field of the visit info.
func (p *SubmissionPayload) TechnicianName() string {
	return p.VisitInfo["technician_name"]
}

// PhotoUploadRecord maps one successfully uploaded photo back to its slot
// in the report_items ordering at submission time.
type PhotoUploadRecord struct {
	ItemIndex  int    `json:"item_index" validate:"min=0"`
	PhotoIndex int    `json:"photo_index" validate:"min=0"`
	PhotoURL   string `json:"photo_url" validate:"required,url"`
}

// AttachPhotosRequest is the phase-2 attach call body.
type AttachPhotosRequest struct {
	PhotoURLs []PhotoUploadRecord `json:"photo_urls" validate:"dive"`
}

// Visit is the server-side record correlating all phases of one submission.
type Visit struct {
	VisitID        string            `json:"visit_id" dynamodbav:"visitID" validate:"omitempty,uuid4"`
	VisitInfo      map[string]string `json:"visit_info" dynamodbav:"visitInfo"`
	ReportItems    []ReportItem      `json:"report_items" dynamodbav:"reportItems"`
	TechSignature  string            `json:"tech_signature,omitempty" dynamodbav:"techSignature,omitempty"`
	OpManSignature string            `json:"opMan_signature,omitempty" dynamodbav:"opManSignature,omitempty"`
	Status         VisitStatus       `json:"visit_status" dynamodbav:"visitStatus"`
	PhotoCount     int               `json:"photo_count" dynamodbav:"photoCount"`
	CreatedAt      time.Time         `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt      time.Time         `json:"updated_at,omitempty" dynamodbav:"updatedAt,omitempty"`
}

// ReportJob is the status record the client polls, stored in Redis under
// report:<visit_id>.
type ReportJob struct {
	VisitID     string    `json:"visit_id,omitempty"`
	Status      JobStatus `json:"status"`
	PDFURL      string    `json:"pdf_url,omitempty"`
	ExcelURL    string    `json:"excel_url,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   string    `json:"started_at,omitempty"`
	CompletedAt string    `json:"completed_at,omitempty"`
}

// Terminal reports whether the job reached a final state.
func (j *ReportJob) Terminal() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusFailed
}

// SubmissionAccepted is the phase-1 success response body. The client must
// not proceed to the upload phase if any of the three fields is missing.
type SubmissionAccepted struct {
	Status                 string `json:"status"`
	VisitID                string `json:"visit_id"`
	CloudinaryCloudName    string `json:"cloudinary_cloud_name"`
	CloudinaryUploadPreset string `json:"cloudinary_upload_preset"`
}

// FinalizeResponse covers both legal finalize outcomes: synchronous
// completion (pdf_url/excel_url set) and asynchronous acceptance
// (status "accepted" plus a status_url to poll).
type FinalizeResponse struct {
	Status    string `json:"status"`
	PDFURL    string `json:"pdf_url,omitempty"`
	ExcelURL  string `json:"excel_url,omitempty"`
	StatusURL string `json:"status_url,omitempty"`
}
