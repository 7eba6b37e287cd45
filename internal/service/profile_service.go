package service

import (
	"context"
	"strings"

	"liftlog/internal/models"
	"liftlog/internal/repository"
)

type ProfileService struct {
	profiles repository.ProfileRepository
}

func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Load returns the user's profile, or nil when none has been written yet.
func (s *ProfileService) Load(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.profiles.Get(ctx, userID)
}

// CreateOnSignUp merge-writes {username, email, createdAt}. A blank
// username is stored as null.
func (s *ProfileService) CreateOnSignUp(ctx context.Context, userID, username, email string) error {
	return s.profiles.Merge(ctx, userID, models.ProfilePatch{
		SetUsername:    true,
		Username:       optional(strings.TrimSpace(username)),
		Email:          &email,
		StampCreatedAt: true,
	})
}

// MarkOnboarded merge-writes {hasOnboarded: true}.
func (s *ProfileService) MarkOnboarded(ctx context.Context, userID string) error {
	onboarded := true
	return s.profiles.Merge(ctx, userID, models.ProfilePatch{HasOnboarded: &onboarded})
}
