package service

import (
	"context"

	"liftlog/internal/auth"
	"liftlog/internal/models"
)

// templateRepoStub is a stub for repository.TemplateRepository.
type templateRepoStub struct {
	listFn      func(context.Context) ([]models.WorkoutTemplate, error)
	getByIDFn   func(context.Context, string) (*models.WorkoutTemplate, error)
	incrementFn func(context.Context, string, models.VoteKind) error
	seedFn      func(context.Context, []models.WorkoutTemplate) error
}

func (s *templateRepoStub) List(ctx context.Context) ([]models.WorkoutTemplate, error) {
	return s.listFn(ctx)
}
func (s *templateRepoStub) GetByID(ctx context.Context, id string) (*models.WorkoutTemplate, error) {
	return s.getByIDFn(ctx, id)
}
func (s *templateRepoStub) IncrementVote(ctx context.Context, id string, kind models.VoteKind) error {
	return s.incrementFn(ctx, id, kind)
}
func (s *templateRepoStub) Seed(ctx context.Context, templates []models.WorkoutTemplate) error {
	return s.seedFn(ctx, templates)
}

func noopTemplateRepo() *templateRepoStub {
	return &templateRepoStub{
		listFn:      func(_ context.Context) ([]models.WorkoutTemplate, error) { return nil, nil },
		getByIDFn:   func(_ context.Context, id string) (*models.WorkoutTemplate, error) { return &models.WorkoutTemplate{ID: id}, nil },
		incrementFn: func(_ context.Context, _ string, _ models.VoteKind) error { return nil },
		seedFn:      func(_ context.Context, _ []models.WorkoutTemplate) error { return nil },
	}
}

// logRepoStub is a stub for repository.WorkoutLogRepository.
type logRepoStub struct {
	listByUserFn func(context.Context, string) ([]models.WorkoutLogEntry, error)
	appendFn     func(context.Context, string, *models.WorkoutLogEntry) error
}

func (s *logRepoStub) ListByUser(ctx context.Context, userID string) ([]models.WorkoutLogEntry, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *logRepoStub) Append(ctx context.Context, userID string, entry *models.WorkoutLogEntry) error {
	return s.appendFn(ctx, userID, entry)
}

func noopLogRepo() *logRepoStub {
	return &logRepoStub{
		listByUserFn: func(_ context.Context, _ string) ([]models.WorkoutLogEntry, error) { return nil, nil },
		appendFn:     func(_ context.Context, _ string, _ *models.WorkoutLogEntry) error { return nil },
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getFn   func(context.Context, string) (*models.UserProfile, error)
	mergeFn func(context.Context, string, models.ProfilePatch) error
}

func (s *profileRepoStub) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.getFn(ctx, userID)
}
func (s *profileRepoStub) Merge(ctx context.Context, userID string, patch models.ProfilePatch) error {
	return s.mergeFn(ctx, userID, patch)
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		getFn:   func(_ context.Context, _ string) (*models.UserProfile, error) { return nil, nil },
		mergeFn: func(_ context.Context, _ string, _ models.ProfilePatch) error { return nil },
	}
}

// authStub is a stub for Authenticator.
type authStub struct {
	signUpFn     func(context.Context, string, string, string) (*auth.Credential, error)
	signInFn     func(context.Context, string, string, string) (*auth.Credential, error)
	signOutFn    func(context.Context, string) error
	updateNameFn func(context.Context, string, string, string) (*auth.Credential, error)
}

func (s *authStub) SignUp(ctx context.Context, visitor, email, password string) (*auth.Credential, error) {
	return s.signUpFn(ctx, visitor, email, password)
}
func (s *authStub) SignIn(ctx context.Context, visitor, email, password string) (*auth.Credential, error) {
	return s.signInFn(ctx, visitor, email, password)
}
func (s *authStub) SignOut(ctx context.Context, visitor string) error {
	return s.signOutFn(ctx, visitor)
}
func (s *authStub) UpdateDisplayName(ctx context.Context, visitor, userID, name string) (*auth.Credential, error) {
	return s.updateNameFn(ctx, visitor, userID, name)
}

func credentialFor(uid, email, name string) *auth.Credential {
	return &auth.Credential{
		Token:    "token-" + uid,
		Identity: auth.Identity{UserID: uid, Email: email, DisplayName: name},
	}
}

func noopAuth() *authStub {
	return &authStub{
		signUpFn: func(_ context.Context, _, email, _ string) (*auth.Credential, error) {
			return credentialFor("u-1", email, ""), nil
		},
		signInFn: func(_ context.Context, _, email, _ string) (*auth.Credential, error) {
			return credentialFor("u-1", email, ""), nil
		},
		signOutFn: func(_ context.Context, _ string) error { return nil },
		updateNameFn: func(_ context.Context, _, uid, name string) (*auth.Credential, error) {
			return credentialFor(uid, "a@b.co", name), nil
		},
	}
}

func ptr[T any](v T) *T { return &v }
