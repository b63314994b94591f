package service

import (
	"context"
	"time"

	"github.com/campuskit/virtualta/internal/domain"
)

// StatusCheckRepositoryInterface defines the repository interface for status checks
type StatusCheckRepositoryInterface interface {
	Create(ctx context.Context, s *domain.StatusCheck) error
	List(ctx context.Context, limit int) ([]*domain.StatusCheck, error)
}

// StatusCheckService records client liveness pings.
type StatusCheckService struct {
	repo    StatusCheckRepositoryInterface
	uuidGen UUIDGenerator
}

// NewStatusCheckService creates a new StatusCheckService instance
func NewStatusCheckService(repo StatusCheckRepositoryInterface) *StatusCheckService {
	return &StatusCheckService{
		repo:    repo,
		uuidGen: &DefaultUUIDGenerator{},
	}
}

// NewStatusCheckServiceWithUUIDGen creates a StatusCheckService with a custom UUID generator (for testing)
func NewStatusCheckServiceWithUUIDGen(repo StatusCheckRepositoryInterface, uuidGen UUIDGenerator) *StatusCheckService {
	return &StatusCheckService{repo: repo, uuidGen: uuidGen}
}

// Create persists a new status check for the given client name.
func (s *StatusCheckService) Create(ctx context.Context, clientName string) (*domain.StatusCheck, error) {
	check := &domain.StatusCheck{
		ID:         s.uuidGen.NewString(),
		ClientName: clientName,
		CreatedAt:  time.Now().UTC(),
	}

	if err := domain.ValidateStatusCheck(check); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, check); err != nil {
		return nil, err
	}

	return check, nil
}

// List returns recent status checks, newest first.
func (s *StatusCheckService) List(ctx context.Context, limit int) ([]*domain.StatusCheck, error) {
	return s.repo.List(ctx, limit)
}
