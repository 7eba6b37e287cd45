package service

import (
	"context"
	"strings"

	"liftlog/internal/auth"
)

// Authenticator is the part of the authentication provider the account
// flows drive.
type Authenticator interface {
	SignUp(ctx context.Context, visitor, email, password string) (*auth.Credential, error)
	SignIn(ctx context.Context, visitor, email, password string) (*auth.Credential, error)
	SignOut(ctx context.Context, visitor string) error
	UpdateDisplayName(ctx context.Context, visitor, userID, name string) (*auth.Credential, error)
}

// SignUpForm is the sign-up form as submitted.
type SignUpForm struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// SignInForm is the login form as submitted.
type SignInForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type AccountService struct {
	auth     Authenticator
	profiles *ProfileService
}

func NewAccountService(authn Authenticator, profiles *ProfileService) *AccountService {
	return &AccountService{auth: authn, profiles: profiles}
}

// SignUp creates the account, sets the display name when a username was
// given and merge-writes the profile. Once the account exists the visitor
// stays signed in, so a later failure returns the credential together with
// the error.
func (s *AccountService) SignUp(ctx context.Context, visitor string, form SignUpForm) (*auth.Credential, error) {
	cred, err := s.auth.SignUp(ctx, visitor, strings.TrimSpace(form.Email), form.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(form.Username)
	if name != "" {
		renamed, err := s.auth.UpdateDisplayName(ctx, visitor, cred.Identity.UserID, name)
		if err != nil {
			return cred, err
		}
		cred = renamed
	}

	if err := s.profiles.CreateOnSignUp(ctx, cred.Identity.UserID, name, cred.Identity.Email); err != nil {
		return cred, err
	}
	return cred, nil
}

func (s *AccountService) SignIn(ctx context.Context, visitor string, form SignInForm) (*auth.Credential, error) {
	return s.auth.SignIn(ctx, visitor, strings.TrimSpace(form.Email), form.Password)
}

func (s *AccountService) SignOut(ctx context.Context, visitor string) error {
	return s.auth.SignOut(ctx, visitor)
}
