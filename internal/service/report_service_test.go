package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stanleysydney/anonsafety-api/internal/dto"
	"github.com/stanleysydney/anonsafety-api/internal/models"
	appErrors "github.com/stanleysydney/anonsafety-api/pkg/errors"
)

type mockReportRepo struct {
	items     map[string]*models.Report
	createErr error
	nextOrd   int64
}

func (m *mockReportRepo) Create(ctx context.Context, report *models.Report) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.items == nil {
		m.items = make(map[string]*models.Report)
	}
	if report.ID == "" {
		report.ID = "generated"
	}
	m.nextOrd++
	report.Ordinal = m.nextOrd
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	if report.Comments == nil {
		report.Comments = []models.Comment{}
	}
	cp := *report
	m.items[report.ID] = &cp
	return nil
}

func (m *mockReportRepo) ListRecent(ctx context.Context) ([]models.Report, error) {
	out := make([]models.Report, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockReportRepo) GetByID(ctx context.Context, id string) (*models.Report, error) {
	if r, ok := m.items[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportRepo) IncrementLike(ctx context.Context, id string) error {
	r, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.LikeCount++
	return nil
}

func (m *mockReportRepo) AppendComment(ctx context.Context, reportID string, comment *models.Comment) (*models.Report, error) {
	r, ok := m.items[reportID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	comment.ReportID = reportID
	comment.Seq = int64(len(r.Comments) + 1)
	r.Comments = append(r.Comments, *comment)
	cp := *r
	return &cp, nil
}

type mockFeedCache struct {
	store map[string][]byte
}

func (m *mockFeedCache) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (m *mockFeedCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (m *mockFeedCache) Delete(ctx context.Context, key string) error {
	return nil
}

// cancelSensitiveCache fails any operation whose context is already done,
// the way a real Redis client would.
type cancelSensitiveCache struct {
	deletes int
}

func (m *cancelSensitiveCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return appErrors.ErrCacheMiss
}

func (m *cancelSensitiveCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return ctx.Err()
}

func (m *cancelSensitiveCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.deletes++
	return nil
}

type mockEvidenceStore struct {
	saved   []string
	deleted []string
	saveErr error
}

func (m *mockEvidenceStore) SaveStream(filename string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved = append(m.saved, filename)
	return filename, nil
}

func (m *mockEvidenceStore) Delete(filename string) error {
	m.deleted = append(m.deleted, filename)
	return nil
}

type recordingPublisher struct {
	published []models.Report
}

func (p *recordingPublisher) Publish(report models.Report) {
	p.published = append(p.published, report)
}

type recordingNotifier struct {
	reports []models.Report
}

func (n *recordingNotifier) ReportCreated(report models.Report) {
	n.reports = append(n.reports, report)
}

func newReportService(repo *mockReportRepo, store *mockEvidenceStore, pub *recordingPublisher, notif *recordingNotifier) *ReportService {
	return NewReportService(repo, &mockFeedCache{}, store, pub, notif, validator.New(), zap.NewNop(), ReportServiceConfig{
		AllowedMIMEs: []string{"image/", "video/"},
		PublicPath:   "/uploads",
	})
}

func TestReportServiceCreateDefaultsToAnonymous(t *testing.T) {
	repo := &mockReportRepo{}
	pub := &recordingPublisher{}
	svc := newReportService(repo, &mockEvidenceStore{}, pub, &recordingNotifier{})

	report, err := svc.Create(context.Background(), dto.CreateReportRequest{
		Description: "broken streetlight near the market",
		Region:      "Nairobi",
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousAuthor, report.AuthorLabel)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.Nil(t, report.EvidenceRef)
	assert.Len(t, repo.items, 1)
}

func TestReportServiceCreateUsesClaimsUsername(t *testing.T) {
	repo := &mockReportRepo{}
	svc := newReportService(repo, &mockEvidenceStore{}, &recordingPublisher{}, &recordingNotifier{})

	report, err := svc.Create(context.Background(), dto.CreateReportRequest{
		Description: "harassment at the bus stop",
		Region:      "Mombasa",
	}, nil, &models.JWTClaims{Username: "wanjiku"})
	require.NoError(t, err)
	assert.Equal(t, "wanjiku", report.AuthorLabel)
}

func TestReportServiceCreateValidationRejectsBlankFields(t *testing.T) {
	repo := &mockReportRepo{}
	pub := &recordingPublisher{}
	svc := newReportService(repo, &mockEvidenceStore{}, pub, &recordingNotifier{})

	_, err := svc.Create(context.Background(), dto.CreateReportRequest{
		Description: "   ",
		Region:      "Nairobi",
	}, nil, nil)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.items)
	assert.Empty(t, pub.published)
}

func TestReportServiceCreateRejectsNonMediaEvidence(t *testing.T) {
	repo := &mockReportRepo{}
	store := &mockEvidenceStore{}
	svc := newReportService(repo, store, &recordingPublisher{}, &recordingNotifier{})

	_, err := svc.Create(context.Background(), dto.CreateReportRequest{
		Description: "illegal dumping",
		Region:      "Kisumu",
	}, &dto.EvidenceFile{
		Name:        "notes.txt",
		ContentType: "text/plain",
		Reader:      strings.NewReader("not media"),
	}, nil)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, store.saved)
	assert.Empty(t, repo.items)
}

func TestReportServiceCreateStoresImageEvidence(t *testing.T) {
	repo := &mockReportRepo{}
	store := &mockEvidenceStore{}
	svc := newReportService(repo, store, &recordingPublisher{}, &recordingNotifier{})

	report, err := svc.Create(context.Background(), dto.CreateReportRequest{
		Description: "pothole photo attached",
		Region:      "Nakuru",
	}, &dto.EvidenceFile{
		Name:        "pothole.png",
		ContentType: "image/png",
		Reader:      strings.NewReader("fake image bytes"),
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, report.EvidenceRef)
	assert.True(t, strings.HasPrefix(*report.EvidenceRef, "/uploads/"))
	assert.True(t, strings.HasSuffix(*report.EvidenceRef, ".png"))
	assert.Len(t, store.saved, 1)
}

func TestReportServiceCreatePublishesAfterPersist(t *testing.T) {
	repo := &mockReportRepo{}
	pub := &recordingPublisher{}
	notif := &recordingNotifier{}
	svc := newReportService(repo, &mockEvidenceStore{}, pub, notif)

	report, err := svc.Create(context.Background(), dto.CreateReportRequest{
		Description: "suspicious activity",
		Region:      "Nairobi",
	}, nil, nil)
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	assert.Equal(t, report.ID, pub.published[0].ID)
	assert.NotZero(t, pub.published[0].Ordinal)
	require.Len(t, notif.reports, 1)
	assert.Equal(t, report.ID, notif.reports[0].ID)
}

func TestReportServiceCreateNoPublishOnStoreFailure(t *testing.T) {
	repo := &mockReportRepo{createErr: driver.ErrBadConn}
	pub := &recordingPublisher{}
	store := &mockEvidenceStore{}
	svc := newReportService(repo, store, pub, &recordingNotifier{})

	_, err := svc.Create(context.Background(), dto.CreateReportRequest{
		Description: "will not persist",
		Region:      "Nairobi",
	}, &dto.EvidenceFile{
		Name:        "clip.mp4",
		ContentType: "video/mp4",
		Reader:      strings.NewReader("fake video"),
	}, nil)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErr.Code)
	assert.Empty(t, pub.published)
	// Orphaned evidence is cleaned up when the write fails.
	assert.Equal(t, store.saved, store.deleted)
}

func TestReportServiceCreateInvalidatesFeedWhenSubmitterHangsUp(t *testing.T) {
	repo := &mockReportRepo{}
	cache := &cancelSensitiveCache{}
	svc := NewReportService(repo, cache, &mockEvidenceStore{}, &recordingPublisher{}, &recordingNotifier{}, validator.New(), zap.NewNop(), ReportServiceConfig{})

	// The client disconnects right after the durable write; the request
	// context is gone but the committed report must still evict the cached
	// feed so list callers see it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Create(ctx, dto.CreateReportRequest{
		Description: "water main burst",
		Region:      "Eldoret",
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.deletes)
}

func TestReportServiceCreateRejectsOversizedEvidence(t *testing.T) {
	repo := &mockReportRepo{}
	store := &mockEvidenceStore{}
	svc := NewReportService(repo, &mockFeedCache{}, store, &recordingPublisher{}, &recordingNotifier{}, validator.New(), zap.NewNop(), ReportServiceConfig{
		AllowedMIMEs:     []string{"image/", "video/"},
		PublicPath:       "/uploads",
		MaxFileSizeBytes: 1024,
	})

	_, err := svc.Create(context.Background(), dto.CreateReportRequest{
		Description: "dashcam footage",
		Region:      "Nairobi",
	}, &dto.EvidenceFile{
		Name:        "dashcam.mp4",
		ContentType: "video/mp4",
		Size:        2048,
		Reader:      strings.NewReader("too big"),
	}, nil)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, store.saved)
	assert.Empty(t, repo.items)
}

func TestReportServiceLikeMissingReport(t *testing.T) {
	svc := newReportService(&mockReportRepo{}, &mockEvidenceStore{}, &recordingPublisher{}, &recordingNotifier{})

	err := svc.Like(context.Background(), "missing")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestReportServiceCommentOfficialFlagRequiresOfficialRole(t *testing.T) {
	repo := &mockReportRepo{items: map[string]*models.Report{
		"r1": {ID: "r1", AuthorLabel: "Anonymous", Description: "a", Region: "Nairobi", Status: models.ReportStatusPending},
	}}
	svc := newReportService(repo, &mockEvidenceStore{}, &recordingPublisher{}, &recordingNotifier{})

	report, err := svc.Comment(context.Background(), "r1", dto.CommentRequest{
		Text:       "we are aware",
		IsOfficial: true,
	}, &models.JWTClaims{Username: "rando", Role: models.RoleUser})
	require.NoError(t, err)
	require.Len(t, report.Comments, 1)
	assert.False(t, report.Comments[0].IsOfficial)

	report, err = svc.Comment(context.Background(), "r1", dto.CommentRequest{
		Text:       "investigation opened",
		IsOfficial: true,
	}, &models.JWTClaims{Username: "chief", Role: models.RoleOfficial})
	require.NoError(t, err)
	require.Len(t, report.Comments, 2)
	assert.True(t, report.Comments[1].IsOfficial)
}

func TestReportServiceExportFeedUnknownFormat(t *testing.T) {
	svc := newReportService(&mockReportRepo{}, &mockEvidenceStore{}, &recordingPublisher{}, &recordingNotifier{})

	_, _, _, err := svc.ExportFeed(context.Background(), "xlsx")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestReportServiceExportFeedCSV(t *testing.T) {
	repo := &mockReportRepo{}
	svc := newReportService(repo, &mockEvidenceStore{}, &recordingPublisher{}, &recordingNotifier{})

	_, err := svc.Create(context.Background(), dto.CreateReportRequest{
		Description: "noise complaint",
		Region:      "Nairobi",
	}, nil, nil)
	require.NoError(t, err)

	payload, contentType, filename, err := svc.ExportFeed(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "reports.csv", filename)
	assert.Contains(t, string(payload), "noise complaint")
}

func TestReportServiceStoreErrorMapping(t *testing.T) {
	svc := newReportService(&mockReportRepo{}, &mockEvidenceStore{}, &recordingPublisher{}, &recordingNotifier{})

	err := svc.storeError(driver.ErrBadConn, "x")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErr.Code)

	err = svc.storeError(errors.New("boom"), "x")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}
