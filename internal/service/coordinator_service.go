package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/stanleysydney/anonsafety-api/internal/models"
	appErrors "github.com/stanleysydney/anonsafety-api/pkg/errors"
)

type coordinatorRepository interface {
	List(ctx context.Context, region string) ([]models.Coordinator, error)
}

// CoordinatorService serves the regional coordinator directory.
type CoordinatorService struct {
	repo   coordinatorRepository
	logger *zap.Logger
}

// NewCoordinatorService constructs the service.
func NewCoordinatorService(repo coordinatorRepository, logger *zap.Logger) *CoordinatorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoordinatorService{repo: repo, logger: logger}
}

// List returns the directory, optionally narrowed to one region.
func (s *CoordinatorService) List(ctx context.Context, region string) ([]models.Coordinator, error) {
	coordinators, err := s.repo.List(ctx, strings.TrimSpace(region))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list coordinators")
	}
	return coordinators, nil
}
