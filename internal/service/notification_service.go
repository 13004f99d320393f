package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stanleysydney/anonsafety-api/internal/models"
	"github.com/stanleysydney/anonsafety-api/pkg/jobs"
	"github.com/stanleysydney/anonsafety-api/pkg/mailer"
)

type notifiableUserRepository interface {
	ListNotifiable(ctx context.Context, region string) ([]models.User, error)
}

// NotificationService emails opted-in users about reports in their region.
// Delivery runs on a background queue so it never touches the submit path.
type NotificationService struct {
	repo   notifiableUserRepository
	mailer mailer.Mailer
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService builds the service and its dispatch queue.
func NewNotificationService(repo notifiableUserRepository, m mailer.Mailer, workers, maxRetries int, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{repo: repo, mailer: m, logger: logger}
	s.queue = jobs.NewQueue("report-alerts", s.dispatch, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: maxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// ReportCreated enqueues an alert for the report's region. Errors are logged
// and swallowed; alerting must never affect report submission.
func (s *NotificationService) ReportCreated(report models.Report) {
	if err := s.queue.Enqueue(jobs.Job{
		ID:      report.ID,
		Type:    "region-alert",
		Payload: report,
	}); err != nil {
		s.logger.Warn("alert enqueue failed", zap.String("report_id", report.ID), zap.Error(err))
	}
}

func (s *NotificationService) dispatch(ctx context.Context, job jobs.Job) error {
	report, ok := job.Payload.(models.Report)
	if !ok {
		s.logger.Error("alert job carries unexpected payload", zap.String("job_id", job.ID))
		return nil
	}

	users, err := s.repo.ListNotifiable(ctx, report.Region)
	if err != nil {
		return fmt.Errorf("load alert recipients: %w", err)
	}
	if len(users) == 0 {
		return nil
	}

	recipients := make([]string, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, u.Email)
	}

	subject := fmt.Sprintf("New incident reported in %s", report.Region)
	body := fmt.Sprintf("A new incident was just reported in %s:\r\n\r\n%s\r\n\r\nStatus: %s\r\nReported by: %s\r\n",
		report.Region, report.Description, report.Status, report.AuthorLabel)

	if err := s.mailer.Send(recipients, subject, body); err != nil {
		return fmt.Errorf("send region alert: %w", err)
	}

	s.logger.Info("region alert sent",
		zap.String("report_id", report.ID),
		zap.String("region", report.Region),
		zap.Int("recipients", len(recipients)))
	return nil
}
