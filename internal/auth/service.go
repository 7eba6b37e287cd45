// Package auth signs visitors in and out and broadcasts every change of a
// visitor's signed-in identity.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"liftlog/internal/models"
	"liftlog/internal/observability"
	"liftlog/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the signed-in user as seen by the rest of the application.
type Identity struct {
	UserID      string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email"`
}

// Credential is an issued ID token.
type Credential struct {
	Token     string
	Identity  Identity
	ExpiresAt time.Time
}

// Reason says why a StateChange was emitted.
type Reason string

const (
	ReasonRestore Reason = "restore"
	ReasonSignUp  Reason = "sign_up"
	ReasonSignIn  Reason = "sign_in"
	ReasonSignOut Reason = "sign_out"
	ReasonProfile Reason = "profile"
)

// StateChange reports the identity a visitor is now signed in as. A nil
// Identity means signed out.
type StateChange struct {
	Visitor  string    `json:"visitor"`
	Identity *Identity `json:"identity"`
	Reason   Reason    `json:"reason"`
	// Origin is the instance that produced the change.
	Origin string `json:"origin"`
}

// Config configures a Service.
type Config struct {
	Secret     string
	TokenTTL   time.Duration
	InstanceID string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Service is the authentication provider.
type Service struct {
	accounts repository.AccountRepository
	cfg      Config
	now      func() time.Time

	mu     sync.RWMutex
	subs   map[uint64]func(StateChange)
	nextID uint64
}

// NewService creates an authentication provider over accounts.
func NewService(accounts repository.AccountRepository, cfg Config) *Service {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		accounts: accounts,
		cfg:      cfg,
		now:      time.Now,
		subs:     make(map[uint64]func(StateChange)),
	}
}

// InstanceID identifies this process in relayed changes.
func (s *Service) InstanceID() string {
	return s.cfg.InstanceID
}

// SignUp creates an account and signs visitor in as it.
func (s *Service) SignUp(ctx context.Context, visitor, email, password string) (*Credential, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	account := &models.Account{ID: uuid.NewString(), Email: email, Password: string(hashed)}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			observability.AuthEventsTotal.WithLabelValues(string(ReasonSignUp), "conflict").Inc()
			return nil, models.NewConflictError("email already in use")
		}
		return nil, models.NewInternalError(err)
	}

	cred, err := s.issueToken(identityOf(account))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.AuthEventsTotal.WithLabelValues(string(ReasonSignUp), "ok").Inc()
	s.emit(visitor, &cred.Identity, ReasonSignUp)
	return cred, nil
}

// SignIn checks email and password and signs visitor in.
func (s *Service) SignIn(ctx context.Context, visitor, email, password string) (*Credential, error) {
	account, err := s.accounts.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		observability.AuthEventsTotal.WithLabelValues(string(ReasonSignIn), "rejected").Inc()
		return nil, models.NewUnauthorizedError("invalid credentials")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		observability.AuthEventsTotal.WithLabelValues(string(ReasonSignIn), "rejected").Inc()
		return nil, models.NewUnauthorizedError("invalid credentials")
	}

	cred, err := s.issueToken(identityOf(account))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.AuthEventsTotal.WithLabelValues(string(ReasonSignIn), "ok").Inc()
	s.emit(visitor, &cred.Identity, ReasonSignIn)
	return cred, nil
}

// SignOut signs visitor out. Tokens are stateless, so this only broadcasts.
func (s *Service) SignOut(_ context.Context, visitor string) error {
	observability.AuthEventsTotal.WithLabelValues(string(ReasonSignOut), "ok").Inc()
	s.emit(visitor, nil, ReasonSignOut)
	return nil
}

// UpdateDisplayName stores a new display name and reissues the token that
// carries it.
func (s *Service) UpdateDisplayName(ctx context.Context, visitor, userID, name string) (*Credential, error) {
	if err := s.accounts.UpdateDisplayName(ctx, userID, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewNotFoundError("account", userID)
		}
		return nil, models.NewInternalError(err)
	}
	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	cred, err := s.issueToken(identityOf(account))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	s.emit(visitor, &cred.Identity, ReasonProfile)
	return cred, nil
}

// Restore resolves the identity carried by token and reports it for
// visitor. A missing or invalid token reports signed out and returns
// ErrInvalidToken (nil for an empty token).
func (s *Service) Restore(_ context.Context, visitor, token string) (*Identity, error) {
	if token == "" {
		s.emit(visitor, nil, ReasonRestore)
		return nil, nil
	}
	id, err := s.Verify(token)
	if err != nil {
		s.emit(visitor, nil, ReasonRestore)
		return nil, err
	}
	s.emit(visitor, id, ReasonRestore)
	return id, nil
}

// Subscribe registers fn for every state change. fn runs synchronously on
// the emitting goroutine.
func (s *Service) Subscribe(fn func(StateChange)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Deliver re-broadcasts a change produced by another instance.
func (s *Service) Deliver(change StateChange) {
	s.broadcast(change)
}

func (s *Service) emit(visitor string, id *Identity, reason Reason) {
	if visitor == "" {
		return
	}
	s.broadcast(StateChange{Visitor: visitor, Identity: id, Reason: reason, Origin: s.cfg.InstanceID})
}

func (s *Service) broadcast(change StateChange) {
	s.mu.RLock()
	fns := make([]func(StateChange), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(change)
	}
}

func identityOf(a *models.Account) Identity {
	return Identity{UserID: a.ID, DisplayName: a.DisplayName, Email: a.Email}
}
