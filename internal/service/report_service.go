package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/stanleysydney/anonsafety-api/internal/dto"
	"github.com/stanleysydney/anonsafety-api/internal/models"
	"github.com/stanleysydney/anonsafety-api/internal/realtime"
	appErrors "github.com/stanleysydney/anonsafety-api/pkg/errors"
	"github.com/stanleysydney/anonsafety-api/pkg/export"
	"github.com/stanleysydney/anonsafety-api/pkg/storage"
)

const feedCacheKey = "reports:feed"

type reportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	ListRecent(ctx context.Context) ([]models.Report, error)
	GetByID(ctx context.Context, id string) (*models.Report, error)
	IncrementLike(ctx context.Context, id string) error
	AppendComment(ctx context.Context, reportID string, comment *models.Comment) (*models.Report, error)
}

type feedCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type evidenceStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
}

// AlertNotifier is told about every published report; implementations must
// never block and never return control-flow errors to the submit path.
type AlertNotifier interface {
	ReportCreated(report models.Report)
}

// ReportServiceConfig carries the tunables for report handling.
type ReportServiceConfig struct {
	AllowedMIMEs     []string
	PublicPath       string
	CacheTTL         time.Duration
	MaxFileSizeBytes int64
}

// ReportService owns the submit/list/like/comment workflows.
type ReportService struct {
	repo      reportRepository
	cache     feedCache
	store     evidenceStore
	publisher realtime.Publisher
	notifier  AlertNotifier
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// NewReportService constructs the service.
func NewReportService(
	repo reportRepository,
	cache feedCache,
	store evidenceStore,
	publisher realtime.Publisher,
	notifier AlertNotifier,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ReportServiceConfig,
) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/", "video/"}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Second
	}
	return &ReportService{
		repo:      repo,
		cache:     cache,
		store:     store,
		publisher: publisher,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Create validates and persists a submission, then fans it out to live
// viewers. The publish happens strictly after the durable write so no
// subscriber ever sees a report the store cannot return yet. Fan-out and
// alerting failures never reach the submitter.
func (s *ReportService) Create(ctx context.Context, req dto.CreateReportRequest, evidence *dto.EvidenceFile, claims *models.JWTClaims) (*models.Report, error) {
	req.Description = strings.TrimSpace(req.Description)
	req.Region = strings.TrimSpace(req.Region)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "description and region are required")
	}

	report := &models.Report{
		AuthorLabel: s.resolveAuthor(req.AuthorLabel, claims),
		Description: req.Description,
		Region:      req.Region,
		Status:      models.ReportStatusPending,
	}

	var storedName string
	if evidence != nil {
		if !s.allowedEvidence(evidence.ContentType) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "only image and video evidence is accepted")
		}
		if s.cfg.MaxFileSizeBytes > 0 && evidence.Size > s.cfg.MaxFileSizeBytes {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("evidence file exceeds the %d byte limit", s.cfg.MaxFileSizeBytes))
		}
		name := storage.UniqueName(evidence.Name)
		saved, err := s.store.SaveStream(name, evidence.Reader)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store evidence")
		}
		storedName = saved
		ref := storage.NormalizeRef(strings.TrimRight(s.cfg.PublicPath, "/") + "/" + saved)
		report.EvidenceRef = &ref
	}

	if err := s.repo.Create(ctx, report); err != nil {
		if storedName != "" {
			if cleanupErr := s.store.Delete(storedName); cleanupErr != nil {
				s.logger.Warn("orphaned evidence file left behind", zap.String("file", storedName), zap.Error(cleanupErr))
			}
		}
		return nil, s.storeError(err, "failed to persist report")
	}

	s.publisher.Publish(*report)
	if s.notifier != nil {
		s.notifier.ReportCreated(*report)
	}
	s.invalidateFeed(ctx)

	return report, nil
}

// ListRecent returns the feed newest first, served from cache when warm.
func (s *ReportService) ListRecent(ctx context.Context) ([]models.Report, error) {
	var cached []models.Report
	if err := s.cache.Get(ctx, feedCacheKey, &cached); err == nil {
		return cached, nil
	}

	reports, err := s.repo.ListRecent(ctx)
	if err != nil {
		return nil, s.storeError(err, "failed to list reports")
	}

	if err := s.cache.Set(ctx, feedCacheKey, reports, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("feed cache write failed", zap.Error(err))
	}
	return reports, nil
}

// Get returns a single report with its comments.
func (s *ReportService) Get(ctx context.Context, id string) (*models.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, s.storeError(err, "failed to load report")
	}
	return report, nil
}

// Like bumps the like counter by one.
func (s *ReportService) Like(ctx context.Context, id string) error {
	if err := s.repo.IncrementLike(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return s.storeError(err, "failed to like report")
	}
	s.invalidateFeed(ctx)
	return nil
}

// Comment appends a comment and returns the updated report. Official flags
// are only honored for official accounts.
func (s *ReportService) Comment(ctx context.Context, id string, req dto.CommentRequest, claims *models.JWTClaims) (*models.Report, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "comment text is required")
	}

	comment := &models.Comment{
		AuthorLabel: s.resolveAuthor(req.AuthorLabel, claims),
		Text:        req.Text,
		IsOfficial:  req.IsOfficial && claims.IsOfficial(),
	}

	report, err := s.repo.AppendComment(ctx, id, comment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, s.storeError(err, "failed to append comment")
	}
	s.invalidateFeed(ctx)
	return report, nil
}

// ExportFeed renders the current feed as a CSV or PDF digest.
func (s *ReportService) ExportFeed(ctx context.Context, format string) ([]byte, string, string, error) {
	reports, err := s.ListRecent(ctx)
	if err != nil {
		return nil, "", "", err
	}

	headers := []string{"ID", "Author", "Region", "Status", "Likes", "Comments", "Created", "Description"}
	rows := make([]map[string]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, map[string]string{
			"ID":          r.ID,
			"Author":      r.AuthorLabel,
			"Region":      r.Region,
			"Status":      string(r.Status),
			"Likes":       fmt.Sprintf("%d", r.LikeCount),
			"Comments":    fmt.Sprintf("%d", len(r.Comments)),
			"Created":     r.CreatedAt.UTC().Format(time.RFC3339),
			"Description": r.Description,
		})
	}
	dataset := export.Dataset{Headers: headers, Rows: rows}

	switch strings.ToLower(format) {
	case "", "csv":
		payload, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv export failed")
		}
		return payload, "text/csv", "reports.csv", nil
	case "pdf":
		payload, err := export.NewPDFExporter().Render(dataset, "Incident Report Digest")
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf export failed")
		}
		return payload, "application/pdf", "reports.pdf", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// resolveAuthor applies the explicit defaulting rule: submitted label, then
// the authenticated username, then Anonymous.
func (s *ReportService) resolveAuthor(label string, claims *models.JWTClaims) string {
	label = strings.TrimSpace(label)
	if label != "" {
		return label
	}
	if claims != nil && claims.Username != "" {
		return claims.Username
	}
	return models.AnonymousAuthor
}

func (s *ReportService) allowedEvidence(contentType string) bool {
	for _, prefix := range s.cfg.AllowedMIMEs {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

// invalidateFeed runs after a committed write. The write, not the response,
// is the point of commitment, so the invalidation is detached from the
// request context: a submitter hanging up must not leave a stale feed cached.
func (s *ReportService) invalidateFeed(ctx context.Context) {
	if err := s.cache.Delete(context.WithoutCancel(ctx), feedCacheKey); err != nil {
		s.logger.Warn("feed cache invalidation failed", zap.Error(err))
	}
}

// storeError distinguishes an unreachable store from other failures so
// clients know a retry is worthwhile.
func (s *ReportService) storeError(err error, message string) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
