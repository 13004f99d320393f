package dto

import (
	"io"

	"github.com/stanleysydney/anonsafety-api/internal/models"
)

// CreateReportRequest is the submit payload. Multipart submissions carry the
// same fields as form values plus an optional evidence file part.
type CreateReportRequest struct {
	AuthorLabel string `form:"author_label" json:"author_label"`
	Description string `form:"description" json:"description" validate:"required"`
	Region      string `form:"region" json:"region" validate:"required"`
}

// EvidenceFile describes an uploaded attachment before it is stored.
type EvidenceFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// CommentRequest appends a comment to a report.
type CommentRequest struct {
	AuthorLabel string `json:"author_label"`
	Text        string `json:"text" validate:"required"`
	IsOfficial  bool   `json:"is_official"`
}

// ReportEvent is the frame pushed to live feed subscribers.
type ReportEvent struct {
	Event string        `json:"event"`
	Data  models.Report `json:"data"`
}

// NewReportEvent names the only event type the live feed emits.
const NewReportEvent = "new_report"
