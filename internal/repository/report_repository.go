package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/stanleysydney/anonsafety-api/internal/models"
)

const reportColumns = "id, author_label, description, region, status, evidence_ref, like_count, created_at, updated_at, ordinal"

// ReportRepository provides persistence for incident reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report. The database assigns the insertion ordinal used
// to break created_at ties in the feed.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = report.CreatedAt
	if report.Status == "" {
		report.Status = models.ReportStatusPending
	}
	if report.Comments == nil {
		report.Comments = []models.Comment{}
	}

	const query = `INSERT INTO reports (id, author_label, description, region, status, evidence_ref, like_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ordinal`
	if err := r.db.QueryRowxContext(ctx, query,
		report.ID,
		report.AuthorLabel,
		report.Description,
		report.Region,
		report.Status,
		report.EvidenceRef,
		report.LikeCount,
		report.CreatedAt,
		report.UpdatedAt,
	).Scan(&report.Ordinal); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// ListRecent returns every report ordered newest first. Reports created in the
// same instant keep reverse insertion order via the ordinal tiebreak.
func (r *ReportRepository) ListRecent(ctx context.Context) ([]models.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM reports ORDER BY created_at DESC, ordinal DESC`, reportColumns)
	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	if err := r.attachComments(ctx, reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// GetByID returns a report with its comments. sql.ErrNoRows when absent.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM reports WHERE id = $1`, reportColumns)
	var report models.Report
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, err
	}
	reports := []models.Report{report}
	if err := r.attachComments(ctx, reports); err != nil {
		return nil, err
	}
	return &reports[0], nil
}

// IncrementLike bumps like_count by exactly one as a single UPDATE so
// concurrent likers never lose updates. sql.ErrNoRows when absent.
func (r *ReportRepository) IncrementLike(ctx context.Context, id string) error {
	const query = `UPDATE reports SET like_count = like_count + 1, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("increment like: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment like rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AppendComment inserts one comment row; the sequence column preserves append
// order under concurrent commenters. Returns the refreshed report.
// sql.ErrNoRows when the report is absent.
func (r *ReportRepository) AppendComment(ctx context.Context, reportID string, comment *models.Comment) (*models.Report, error) {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.ReportID = reportID
	comment.CreatedAt = time.Now().UTC()

	const insert = `INSERT INTO report_comments (id, report_id, author_label, text, is_official, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING seq`
	if err := r.db.QueryRowxContext(ctx, insert,
		comment.ID,
		comment.ReportID,
		comment.AuthorLabel,
		comment.Text,
		comment.IsOfficial,
		comment.CreatedAt,
	).Scan(&comment.Seq); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("append comment: %w", err)
	}

	const touch = `UPDATE reports SET updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, touch, reportID, comment.CreatedAt); err != nil {
		return nil, fmt.Errorf("touch report: %w", err)
	}

	return r.GetByID(ctx, reportID)
}

// attachComments loads comments for the given reports in one query and fills
// each report's slice in seq order.
func (r *ReportRepository) attachComments(ctx context.Context, reports []models.Report) error {
	ids := make([]string, len(reports))
	for i := range reports {
		ids[i] = reports[i].ID
		reports[i].Comments = []models.Comment{}
	}
	if len(ids) == 0 {
		return nil
	}

	const query = `SELECT id, report_id, author_label, text, is_official, created_at, seq
FROM report_comments WHERE report_id = ANY($1) ORDER BY seq ASC`
	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list comments: %w", err)
	}

	byReport := make(map[string][]models.Comment, len(reports))
	for _, c := range comments {
		byReport[c.ReportID] = append(byReport[c.ReportID], c)
	}
	for i := range reports {
		if list, ok := byReport[reports[i].ID]; ok {
			reports[i].Comments = list
		}
	}
	return nil
}
