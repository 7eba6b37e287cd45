package service

import (
	"context"
	"errors"

	"liftlog/internal/models"
	"liftlog/internal/repository"
	"liftlog/internal/vote"
)

type CatalogService struct {
	templates repository.TemplateRepository
	starter   func() ([]models.WorkoutTemplate, error)
}

// NewCatalogService creates the catalog service. starter supplies the
// templates written by SeedStarter.
func NewCatalogService(templates repository.TemplateRepository, starter func() ([]models.WorkoutTemplate, error)) *CatalogService {
	return &CatalogService{templates: templates, starter: starter}
}

func (s *CatalogService) List(ctx context.Context) ([]models.WorkoutTemplate, error) {
	return s.templates.List(ctx)
}

// Get returns a NOT_FOUND AppError for a missing template and an
// INTERNAL_ERROR one for any other failure.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.WorkoutTemplate, error) {
	if id == "" {
		return nil, models.NewValidationError("Template id is required")
	}
	t, err := s.templates.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("Workout template", id)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return t, nil
}

// SeedStarter writes the starter catalog and returns the refreshed listing.
func (s *CatalogService) SeedStarter(ctx context.Context) ([]models.WorkoutTemplate, error) {
	templates, err := s.starter()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.templates.Seed(ctx, templates); err != nil {
		return nil, err
	}
	return s.templates.List(ctx)
}

// Vote casts one optimistic vote on board.
func (s *CatalogService) Vote(ctx context.Context, board *vote.Board, id string, kind models.VoteKind) error {
	if !kind.Valid() {
		return models.NewValidationError("kind must be like or dislike")
	}
	return board.Cast(ctx, id, kind, s.templates)
}
