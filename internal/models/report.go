package models

import "time"

// ReportStatus tracks the investigation state of a report.
type ReportStatus string

const (
	ReportStatusPending       ReportStatus = "Pending"
	ReportStatusInvestigating ReportStatus = "Investigating"
	ReportStatusResolved      ReportStatus = "Resolved"
)

// AnonymousAuthor is the display name stored when a submitter withholds theirs.
const AnonymousAuthor = "Anonymous"

// Report represents a persisted incident report row.
type Report struct {
	ID          string       `db:"id" json:"id"`
	AuthorLabel string       `db:"author_label" json:"author_label"`
	Description string       `db:"description" json:"description"`
	Region      string       `db:"region" json:"region"`
	Status      ReportStatus `db:"status" json:"status"`
	EvidenceRef *string      `db:"evidence_ref" json:"evidence_ref,omitempty"`
	LikeCount   int          `db:"like_count" json:"like_count"`
	Comments    []Comment    `db:"-" json:"comments"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`

	// Ordinal is a monotonically increasing insertion marker used to break
	// created_at ties when ordering the feed. Not exposed over the API.
	Ordinal int64 `db:"ordinal" json:"-"`
}

// Comment is a single append-only entry on a report.
type Comment struct {
	ID          string    `db:"id" json:"id"`
	ReportID    string    `db:"report_id" json:"-"`
	AuthorLabel string    `db:"author_label" json:"author_label"`
	Text        string    `db:"text" json:"text"`
	IsOfficial  bool      `db:"is_official" json:"is_official"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	Seq         int64     `db:"seq" json:"-"`
}
